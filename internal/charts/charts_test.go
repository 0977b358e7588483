package charts

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"bizai/internal/core"
)

func lv(label string, v int64) core.LabeledValue {
	return core.LabeledValue{Label: label, Value: decimal.NewFromInt(v)}
}

func TestPie(t *testing.T) {
	svg, err := Pie([]core.LabeledValue{lv("Food", 120), lv("Rent", 800), lv("Zero", 0)}, nil, SizeCard)
	if err != nil {
		t.Fatalf("Pie() error = %v", err)
	}
	out := string(svg)
	if !strings.HasPrefix(out, "<svg") {
		t.Errorf("output does not start with <svg: %.40q", out)
	}
	if !strings.Contains(out, "Rent: 800") {
		t.Error("expected exact value in slice label")
	}
	if strings.Contains(out, "Zero: 0") {
		t.Error("zero slice should be skipped")
	}
}

func TestPie_NoData(t *testing.T) {
	tests := []struct {
		name   string
		points []core.LabeledValue
	}{
		{"nil", nil},
		{"all zero", []core.LabeledValue{lv("a", 0), lv("b", 0)}},
		{"negative", []core.LabeledValue{lv("a", -5)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Pie(tt.points, Palette, SizeCard); !errors.Is(err, ErrNoData) {
				t.Errorf("Pie() error = %v, want ErrNoData", err)
			}
		})
	}
}

func TestBar(t *testing.T) {
	svg, err := Bar([]core.LabeledValue{lv("Widget", 40), lv("Gadget", 0)}, "#34D399", SizeWide)
	if err != nil {
		t.Fatalf("Bar() error = %v", err)
	}
	if !strings.HasPrefix(string(svg), "<svg") {
		t.Error("expected svg output")
	}

	// all-zero bars still render thanks to the padded range
	if _, err := Bar([]core.LabeledValue{lv("a", 0)}, "#34D399", SizeWide); err != nil {
		t.Errorf("Bar(all zero) error = %v", err)
	}
	if _, err := Bar(nil, "#34D399", SizeWide); !errors.Is(err, ErrNoData) {
		t.Errorf("Bar(nil) error = %v, want ErrNoData", err)
	}
}

func TestArea(t *testing.T) {
	tests := []struct {
		name   string
		points []core.LabeledValue
		labels []string
	}{
		{"single point", []core.LabeledValue{lv("00:00", 12)}, []string{"00:00"}},
		{"single zero point", []core.LabeledValue{lv("Jan", 0)}, []string{"Jan"}},
		{"series", []core.LabeledValue{lv("00:00", 3), lv("01:00", 5), lv("02:00", 4)}, []string{"00:00", "01:00", "02:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svg, err := Area(tt.points, "#4ADE80", SizeWide)
			if err != nil {
				t.Fatalf("Area() error = %v", err)
			}
			if !strings.HasPrefix(string(svg), "<svg") {
				t.Error("expected svg output")
			}
			for _, label := range tt.labels {
				if !strings.Contains(string(svg), ">"+label+"<") {
					t.Errorf("svg missing tick label %q", label)
				}
			}
		})
	}
	if _, err := Area(nil, "#4ADE80", SizeWide); !errors.Is(err, ErrNoData) {
		t.Errorf("Area(nil) error = %v, want ErrNoData", err)
	}
}

func TestLabelsAreEscaped(t *testing.T) {
	svg, err := Bar([]core.LabeledValue{lv("<script>", 3)}, "#34D399", SizeWide)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(svg), "<script>") {
		t.Error("label was not escaped")
	}
}

func TestValueRange(t *testing.T) {
	tests := []struct {
		name   string
		ys     []float64
		wantLo float64
	}{
		{"empty", nil, 0},
		{"all zero", []float64{0, 0}, 0},
		{"positive", []float64{2, 10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valueRange(tt.ys)
			if r.Min != tt.wantLo {
				t.Errorf("Min = %v, want %v", r.Min, tt.wantLo)
			}
			if r.Max <= r.Min {
				t.Errorf("range is empty: [%v, %v]", r.Min, r.Max)
			}
		})
	}
	if r := valueRange([]float64{-4, 2}); r.Min >= -4 {
		t.Errorf("negative values should extend Min, got %v", r.Min)
	}
}
