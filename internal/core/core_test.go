package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseModule(t *testing.T) {
	tests := []struct {
		in      string
		want    Module
		wantErr bool
	}{
		{"expense", ModuleExpense, false},
		{" Fraud ", ModuleFraud, false},
		{"inventory", ModuleInventory, false},
		{"green-grid", ModuleGreenGrid, false},
		{"green_grid", ModuleGreenGrid, false},
		{"greengrid", ModuleGreenGrid, false},
		{"sales", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseModule(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseModule(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseModule(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestModule_UploadPath(t *testing.T) {
	if got := ModuleGreenGrid.UploadPath(); got != "/green-grid/upload-csv" {
		t.Errorf("UploadPath() = %q", got)
	}
	if len(Modules()) != 4 {
		t.Errorf("Modules() len = %d, want 4", len(Modules()))
	}
}

func TestUploadControl_DropRequiresCSV(t *testing.T) {
	names := []string{"data.txt", "report.csv.bak", "csv", "image.png", "noext"}
	for _, name := range names {
		calls := 0
		c := UploadControl{OnUpload: func(File) { calls++ }}
		if c.Drop(&File{Name: name}) {
			t.Errorf("Drop(%q) accepted", name)
		}
		if calls != 0 {
			t.Errorf("Drop(%q) invoked handler %d times", name, calls)
		}
	}

	calls := 0
	c := UploadControl{OnUpload: func(File) { calls++ }}
	if !c.Drop(&File{Name: "Expenses.CSV"}) {
		t.Error("Drop(Expenses.CSV) rejected")
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
}

func TestUploadControl_PickerHasNoExtensionRule(t *testing.T) {
	var got []string
	c := UploadControl{OnUpload: func(f File) { got = append(got, f.Name) }}

	c.Select(&File{Name: "notes.txt"})
	c.Select(nil)
	c.Select(&File{})

	if len(got) != 1 || got[0] != "notes.txt" {
		t.Errorf("handled = %v, want [notes.txt]", got)
	}
}

func TestUploadControl_SameFileTwice(t *testing.T) {
	calls := 0
	c := UploadControl{OnUpload: func(File) { calls++ }}
	f := &File{Name: "a.csv"}

	c.Accept(SourcePicker, f)
	c.Accept(SourcePicker, f)

	if calls != 2 {
		t.Errorf("handler calls = %d, want 2", calls)
	}
}

func TestUploadControl_Disabled(t *testing.T) {
	calls := 0
	c := UploadControl{Disabled: true, OnUpload: func(File) { calls++ }}
	c.Select(&File{Name: "a.csv"})
	c.Drop(&File{Name: "a.csv"})
	if calls != 0 {
		t.Errorf("disabled control invoked handler %d times", calls)
	}
}

func TestParseUploadSource(t *testing.T) {
	if ParseUploadSource("DROP") != SourceDrop {
		t.Error("expected drop")
	}
	if ParseUploadSource("") != SourcePicker || ParseUploadSource("other") != SourcePicker {
		t.Error("expected picker fallback")
	}
}

type messageErr struct{ msg string }

func (e messageErr) Error() string       { return "status 500: " + e.msg }
func (e messageErr) UserMessage() string { return e.msg }

func TestViewState_Transitions(t *testing.T) {
	var v ViewState[FraudUpload]
	if v.Phase() != PhaseEmpty || !v.PreInsight() {
		t.Fatalf("initial phase = %v, pre-insight %v", v.Phase(), v.PreInsight())
	}

	v.Begin()
	v.Reject(errors.New("timeout"))
	if !v.PreInsight() {
		t.Error("failure before any data left the pre-insight state")
	}

	v.Begin()
	if v.Phase() != PhaseLoading || v.Error != "" {
		t.Fatalf("after Begin: %+v", v)
	}

	v.Resolve(FraudUpload{FraudCount: decimal.NewFromInt(1)})
	if v.Phase() != PhaseLoaded || v.Error != "" || v.Data == nil {
		t.Fatalf("after Resolve: %+v", v)
	}

	v.Begin()
	v.Reject(messageErr{msg: "bad csv"})
	if v.Phase() != PhaseError {
		t.Fatalf("after Reject phase = %v", v.Phase())
	}
	if v.Data != nil {
		t.Error("Reject kept data")
	}
	if v.Error != "bad csv" {
		t.Errorf("Error = %q, want %q", v.Error, "bad csv")
	}
	if v.PreInsight() {
		t.Error("failure after data returned to the pre-insight state")
	}

	v.Begin()
	if v.Error != "" || !v.Loading {
		t.Errorf("Begin did not clear error: %+v", v)
	}
}

func TestErrorMessage_Fallback(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"empty user message", messageErr{}, "Upload failed"},
		{"empty error text", errors.New(""), "Upload failed"},
		{"upload failed sentinel", fmt.Errorf("inventory: %w", ErrUploadFailed), "Upload failed"},
		{"wrapped user message", fmt.Errorf("upload: %w", messageErr{msg: "Invalid columns"}), "Invalid columns"},
		{"plain error", errors.New("connection refused"), "connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage(tt.err); got != tt.want {
				t.Errorf("ErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
	if ErrorMessage(nil) != "" {
		t.Error("ErrorMessage(nil) should be empty")
	}
}

func TestFraudUpload_LowRiskScenario(t *testing.T) {
	var f FraudUpload
	if err := json.Unmarshal([]byte(`{"fraud_count":3,"normal_count":97,"fraud_percentage":3}`), &f); err != nil {
		t.Fatal(err)
	}
	if got := f.RiskLabel(); got != "Low (3%)" {
		t.Errorf("RiskLabel() = %q, want %q", got, "Low (3%)")
	}
	if f.FraudCount.String() != "3" || f.NormalCount.String() != "97" {
		t.Errorf("counts = %s/%s", f.FraudCount, f.NormalCount)
	}
}

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		pct  string
		want string
	}{
		{"0", "Low"},
		{"19.99", "Low"},
		{"20", "Medium"},
		{"50", "Medium"},
		{"50.01", "High"},
		{"100", "High"},
	}
	for _, tt := range tests {
		if got := RiskLevel(decimal.RequireFromString(tt.pct)); got != tt.want {
			t.Errorf("RiskLevel(%s) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}

func TestExpenseUpload_Derivations(t *testing.T) {
	var e ExpenseUpload
	body := `{"labels":["Rent","Food","Travel"],"values":[1200,310.5],"total":1510.5,"trend":"down","trend_percent":-4.5}`
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		t.Fatal(err)
	}

	cats := e.Categories()
	if len(cats) != 3 {
		t.Fatalf("Categories() len = %d", len(cats))
	}
	if !cats[2].Value.IsZero() {
		t.Errorf("missing value = %s, want 0", cats[2].Value)
	}
	if cats[1].Value.String() != "310.5" {
		t.Errorf("Food = %s", cats[1].Value)
	}

	trend := e.MonthlyTrend()
	if len(trend) != 1 || trend[0].Label != "Upload" || trend[0].Value.String() != "1510.5" {
		t.Errorf("MonthlyTrend() fallback = %+v", trend)
	}

	if got := e.TrendArrow(); got != "↓ 4.5%" {
		t.Errorf("TrendArrow() = %q", got)
	}
}

func TestExpenseUpload_TrendsAndNulls(t *testing.T) {
	var e ExpenseUpload
	body := `{"labels":[],"values":[],"total":0,"trends":[{"month":"Jan","amount":10},{"month":"Feb","amount":12}],"trend_percent":null}`
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		t.Fatal(err)
	}
	if e.Categories() != nil {
		t.Error("expected no categories")
	}
	if got := e.MonthlyTrend(); len(got) != 2 || got[1].Label != "Feb" {
		t.Errorf("MonthlyTrend() = %+v", got)
	}
	if e.HasTrend() || e.TrendArrow() != "" {
		t.Error("null trend_percent should hide the arrow")
	}

	var empty ExpenseUpload
	if empty.MonthlyTrend() != nil {
		t.Error("empty upload should have no trend")
	}
}

func TestGreenGridUpload_AverageLabel(t *testing.T) {
	var g GreenGridUpload
	if err := json.Unmarshal([]byte(`{"labels":["0","1"],"values":[1.25,2],"average":1.625}`), &g); err != nil {
		t.Fatal(err)
	}
	if got := g.AverageLabel(); got != "1.625 kWh" {
		t.Errorf("AverageLabel() = %q", got)
	}
	if len(g.Points()) != 2 {
		t.Errorf("Points() = %+v", g.Points())
	}

	var none GreenGridUpload
	if err := json.Unmarshal([]byte(`{"labels":[],"values":[],"average":null}`), &none); err != nil {
		t.Fatal(err)
	}
	if got := none.AverageLabel(); got != "—" {
		t.Errorf("AverageLabel() = %q, want dash", got)
	}
}

func TestInventoryView(t *testing.T) {
	v := InventoryView{
		Upload:   InventoryUpload{Success: true, RecordsAdded: 12},
		Forecast: []ForecastPoint{{Week: "W1", PredictedStock: decimal.NewFromInt(40)}},
	}
	if got := v.SuccessMessage(); got != "Successfully added 12 records" {
		t.Errorf("SuccessMessage() = %q", got)
	}
	if len(v.ForecastBars()) != 1 {
		t.Errorf("ForecastBars() = %+v", v.ForecastBars())
	}
	item := InventoryItem{Stock: decimal.NewFromInt(3), ReorderAt: decimal.NewFromInt(5)}
	if !item.BelowReorder() {
		t.Error("expected BelowReorder")
	}
}

func TestPhaseString(t *testing.T) {
	for _, p := range []Phase{PhaseEmpty, PhaseLoading, PhaseLoaded, PhaseError} {
		if strings.Contains(p.String(), "unknown") {
			t.Errorf("phase %d has no name", p)
		}
	}
}
