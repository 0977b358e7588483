package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Derivations used by the module views. None of them computes new numbers:
// they only reshape what the backend returned.

// LabeledValue is a single chart point with its exact backend value.
type LabeledValue struct {
	Label string
	Value decimal.Decimal
}

// zip pairs each label with the value at the same index, or 0 when the
// values slice is shorter.
func zip(labels []string, values []decimal.Decimal) []LabeledValue {
	if len(labels) == 0 {
		return nil
	}
	out := make([]LabeledValue, 0, len(labels))
	for i, label := range labels {
		v := decimal.Zero
		if i < len(values) {
			v = values[i]
		}
		out = append(out, LabeledValue{Label: label, Value: v})
	}
	return out
}

// Categories returns the category breakdown, nil when there are no labels.
func (e ExpenseUpload) Categories() []LabeledValue {
	return zip(e.Labels, e.Values)
}

// MonthlyTrend returns the trend bars: the backend series when present,
// else a single "Upload" bar carrying the total when the upload had data.
func (e ExpenseUpload) MonthlyTrend() []LabeledValue {
	if len(e.Trends) > 0 {
		out := make([]LabeledValue, 0, len(e.Trends))
		for _, t := range e.Trends {
			out = append(out, LabeledValue{Label: t.Month, Value: t.Amount})
		}
		return out
	}
	if len(e.Labels) > 0 && len(e.Values) > 0 {
		return []LabeledValue{{Label: "Upload", Value: e.Total}}
	}
	return nil
}

// HasTrend reports whether both trend direction and percentage were returned.
func (e ExpenseUpload) HasTrend() bool {
	return e.Trend != "" && e.TrendPercent.Valid
}

// TrendArrow renders "↑ 12%" or "↓ 4.5%".
func (e ExpenseUpload) TrendArrow() string {
	if !e.HasTrend() {
		return ""
	}
	return trendArrow(e.Trend, e.TrendPercent.Decimal)
}

// TrendArrow renders the summary trend the same way as an upload trend.
func (s ExpenseSummary) TrendArrow() string {
	if s.Trend == "" {
		return ""
	}
	return trendArrow(s.Trend, s.TrendPercent)
}

// TrendUp reports an upward trend.
func (s ExpenseSummary) TrendUp() bool { return s.Trend == "up" }

// TrendUp reports an upward trend.
func (e ExpenseUpload) TrendUp() bool { return e.Trend == "up" }

func trendArrow(direction string, pct decimal.Decimal) string {
	arrow := "↓"
	if direction == "up" {
		arrow = "↑"
	}
	return fmt.Sprintf("%s %s%%", arrow, pct.Abs().String())
}

// CategorySlices converts a summary breakdown into chart points.
func (s ExpenseSummary) CategorySlices() []LabeledValue {
	if len(s.ByCategory) == 0 {
		return nil
	}
	out := make([]LabeledValue, 0, len(s.ByCategory))
	for _, c := range s.ByCategory {
		out = append(out, LabeledValue{Label: c.Name, Value: c.Value})
	}
	return out
}

// Risk thresholds on the fraud percentage.
var (
	lowRiskBelow     = decimal.NewFromInt(20)
	mediumRiskAtMost = decimal.NewFromInt(50)
)

// RiskLevel classifies a fraud percentage: Low under 20, Medium up to and
// including 50, High above.
func RiskLevel(pct decimal.Decimal) string {
	switch {
	case pct.LessThan(lowRiskBelow):
		return "Low"
	case pct.LessThanOrEqual(mediumRiskAtMost):
		return "Medium"
	default:
		return "High"
	}
}

// RiskLabel renders "Low (3%)".
func RiskLabel(pct decimal.Decimal) string {
	return fmt.Sprintf("%s (%s%%)", RiskLevel(pct), pct.String())
}

// RiskLabel renders the risk card text for this upload.
func (f FraudUpload) RiskLabel() string {
	return RiskLabel(f.FraudPercentage)
}

// Split returns the Normal/Fraud pie slices.
func (f FraudUpload) Split() []LabeledValue {
	return []LabeledValue{
		{Label: "Normal", Value: f.NormalCount},
		{Label: "Fraud", Value: f.FraudCount},
	}
}

// Points zips hours and usage.
func (g GreenGridUpload) Points() []LabeledValue {
	return zip(g.Labels, g.Values)
}

// AverageLabel renders "12.5 kWh", or an em dash when no average was returned.
func (g GreenGridUpload) AverageLabel() string {
	if !g.Average.Valid {
		return "—"
	}
	return g.Average.Decimal.String() + " kWh"
}

// ForecastBars converts the forecast into chart points.
func (v InventoryView) ForecastBars() []LabeledValue {
	if len(v.Forecast) == 0 {
		return nil
	}
	out := make([]LabeledValue, 0, len(v.Forecast))
	for _, p := range v.Forecast {
		out = append(out, LabeledValue{Label: p.Week, Value: p.PredictedStock})
	}
	return out
}

// SuccessMessage renders the inventory success banner.
func (v InventoryView) SuccessMessage() string {
	return fmt.Sprintf("Successfully added %d records", v.Upload.RecordsAdded)
}
