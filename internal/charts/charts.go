// Package charts renders module data as SVG with go-chart. It only reshapes
// the numbers it is given; every label shows the exact backend value.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"bizai/internal/core"
)

// ErrNoData is returned when there is nothing meaningful to draw.
var ErrNoData = errors.New("charts: no data")

// Palette is the default slice color order.
var Palette = []string{"#38BDF8", "#34D399", "#2DD4BF", "#4ADE80", "#22D3EE", "#A78BFA"}

var (
	textColor   = drawing.ColorFromHex("94A3B8")
	gridColor   = drawing.ColorFromHex("1E293B")
	transparent = drawing.ColorTransparent
)

// Size is the rendered pixel size.
type Size struct {
	Width  int
	Height int
}

// Standard sizes used by the templates.
var (
	SizeCard = Size{Width: 420, Height: 280}
	SizeWide = Size{Width: 720, Height: 300}
)

func background() chart.Style {
	return chart.Style{
		FillColor: transparent,
		Padding:   chart.Box{Top: 16, Left: 16, Right: 16, Bottom: 16},
	}
}

func axisStyle() chart.Style {
	return chart.Style{FontColor: textColor, StrokeColor: gridColor, FontSize: 9}
}

// Pie renders a pie chart. Slices with a value of zero or less are skipped;
// if none remain ErrNoData is returned.
func Pie(points []core.LabeledValue, palette []string, size Size) ([]byte, error) {
	if len(palette) == 0 {
		palette = Palette
	}
	var values []chart.Value
	for i, p := range points {
		v := p.Value.InexactFloat64()
		if v <= 0 || math.IsNaN(v) {
			continue
		}
		col := drawing.ColorFromHex(palette[i%len(palette)])
		values = append(values, chart.Value{
			Value: v,
			Label: svgText(fmt.Sprintf("%s: %s", p.Label, p.Value.String())),
			Style: chart.Style{
				FillColor:   col,
				StrokeColor: drawing.ColorFromHex("0F172A"),
				StrokeWidth: 1,
				FontColor:   drawing.ColorFromHex("0F172A"),
				FontSize:    9,
			},
		})
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}

	pc := chart.PieChart{
		Width:      size.Width,
		Height:     size.Height,
		Background: background(),
		Canvas:     chart.Style{FillColor: transparent},
		Values:     values,
	}
	return render(pc.Render)
}

// Bar renders one bar per point in the accent color.
func Bar(points []core.LabeledValue, accent string, size Size) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}
	col := drawing.ColorFromHex(accent)

	bars := make([]chart.Value, 0, len(points))
	ys := make([]float64, 0, len(points))
	for _, p := range points {
		v := p.Value.InexactFloat64()
		ys = append(ys, v)
		bars = append(bars, chart.Value{
			Value: v,
			Label: svgText(p.Label),
			Style: chart.Style{FillColor: col, StrokeColor: col, StrokeWidth: 1},
		})
	}

	barWidth := (size.Width - 80) / (2 * len(points))
	if barWidth < 8 {
		barWidth = 8
	}
	if barWidth > 60 {
		barWidth = 60
	}

	bc := chart.BarChart{
		Width:      size.Width,
		Height:     size.Height,
		BarWidth:   barWidth,
		Background: background(),
		Canvas:     chart.Style{FillColor: transparent},
		XAxis:      axisStyle(),
		YAxis: chart.YAxis{
			Style: axisStyle(),
			Range: valueRange(ys),
		},
		Bars: bars,
	}
	return render(bc.Render)
}

// Area renders points as a filled line over evenly spaced labels.
func Area(points []core.LabeledValue, accent string, size Size) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}
	col := drawing.ColorFromHex(accent)

	xs := make([]float64, 0, len(points))
	ys := make([]float64, 0, len(points))
	ticks := make([]chart.Tick, 0, len(points))
	for i, p := range points {
		xs = append(xs, float64(i))
		ys = append(ys, p.Value.InexactFloat64())
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: svgText(p.Label)})
	}
	// the X range comes from the ticks and must not be zero wide
	if len(xs) == 1 {
		xs = append(xs, 1)
		ys = append(ys, ys[0])
		ticks = append(ticks, chart.Tick{Value: 1})
	}

	ch := chart.Chart{
		Width:      size.Width,
		Height:     size.Height,
		Background: background(),
		Canvas:     chart.Style{FillColor: transparent},
		XAxis: chart.XAxis{
			Style: axisStyle(),
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Style: axisStyle(),
			Range: valueRange(ys),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: col,
					StrokeWidth: 2,
					FillColor:   col.WithAlpha(64),
				},
			},
		},
	}
	return render(ch.Render)
}

// valueRange always spans a non-empty interval that includes zero.
func valueRange(ys []float64) *chart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, y := range ys {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		lo = math.Min(lo, y)
		hi = math.Max(hi, y)
	}
	if hi == lo {
		hi = lo + 1
	}
	pad := (hi - lo) * 0.1
	if hi > 0 {
		hi += pad
	}
	if lo < 0 {
		lo -= pad
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

// svgText escapes a label; the SVG renderer writes text bodies verbatim.
func svgText(s string) string {
	return html.EscapeString(s)
}

func render(fn func(chart.RendererProvider, io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := fn(chart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("charts: render: %w", err)
	}
	return buf.Bytes(), nil
}
