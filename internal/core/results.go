package core

import (
	"github.com/shopspring/decimal"
)

// Backend response records. Field names follow the analytics API JSON
// contract; missing fields decode to zero values.

// MonthAmount is one bar of the expense trend.
type MonthAmount struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// ExpenseUpload is returned by POST /expense/upload-csv.
type ExpenseUpload struct {
	Labels       []string            `json:"labels"`
	Values       []decimal.Decimal   `json:"values"`
	Total        decimal.Decimal     `json:"total"`
	Trends       []MonthAmount       `json:"trends,omitempty"`
	Trend        string              `json:"trend,omitempty"`
	TrendPercent decimal.NullDecimal `json:"trend_percent"`
}

// CategoryValue is one slice of a category breakdown.
type CategoryValue struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// ExpenseSummary is returned by GET /expense/summary.
type ExpenseSummary struct {
	ByCategory   []CategoryValue `json:"by_category"`
	Total        decimal.Decimal `json:"total"`
	Trend        string          `json:"trend"`
	TrendPercent decimal.Decimal `json:"trend_percent"`
}

// FraudUpload is returned by POST /fraud/upload-csv.
type FraudUpload struct {
	FraudCount      decimal.Decimal `json:"fraud_count"`
	NormalCount     decimal.Decimal `json:"normal_count"`
	FraudPercentage decimal.Decimal `json:"fraud_percentage"`
}

// FraudAlert is a single flagged transaction.
type FraudAlert struct {
	ID    int64           `json:"id"`
	Type  string          `json:"type"`
	Score decimal.Decimal `json:"score"`
}

// FraudInsights is returned by GET /fraud/insights.
type FraudInsights struct {
	AnomaliesDetected decimal.Decimal `json:"anomalies_detected"`
	TotalTransactions decimal.Decimal `json:"total_transactions"`
	RiskLevel         string          `json:"risk_level"`
	Alerts            []FraudAlert    `json:"alerts"`
}

// FraudDay is one point of GET /fraud/chart.
type FraudDay struct {
	Day     string          `json:"day"`
	Normal  decimal.Decimal `json:"normal"`
	Flagged decimal.Decimal `json:"flagged"`
}

// InventoryUpload is returned by POST /inventory/upload-csv.
type InventoryUpload struct {
	Success      bool     `json:"success"`
	RecordsAdded int64    `json:"records_added"`
	Errors       []string `json:"errors"`
}

// InventoryItem is one stock line.
type InventoryItem struct {
	Name      string          `json:"name"`
	Stock     decimal.Decimal `json:"stock"`
	ReorderAt decimal.Decimal `json:"reorder_at"`
}

// BelowReorder reports whether stock has dropped under the reorder point.
func (i InventoryItem) BelowReorder() bool {
	return i.Stock.LessThan(i.ReorderAt)
}

// InventorySummary is returned by GET /inventory/summary.
type InventorySummary struct {
	Items         []InventoryItem `json:"items"`
	LowStockCount decimal.Decimal `json:"low_stock_count"`
	Suggestions   []string        `json:"suggestions"`
}

// ForecastPoint is one week of GET /inventory/forecast.
type ForecastPoint struct {
	Week           string          `json:"week"`
	PredictedStock decimal.Decimal `json:"predicted_stock"`
}

// InventoryView is the loaded state of Smart Inventory: the upload outcome
// plus whatever summary and forecast could be fetched afterwards.
type InventoryView struct {
	Upload   InventoryUpload
	Summary  *InventorySummary
	Forecast []ForecastPoint
}

// GreenGridUpload is returned by POST /green-grid/upload-csv.
type GreenGridUpload struct {
	Labels  []string            `json:"labels"`
	Values  []decimal.Decimal   `json:"values"`
	Average decimal.NullDecimal `json:"average"`
}

// GreenGridData is returned by GET /green-grid/data.
type GreenGridData struct {
	CurrentUsageKWh         decimal.Decimal `json:"current_usage_kwh"`
	SuggestedPeakShift      decimal.Decimal `json:"suggested_peak_shift"`
	PotentialSavingsPercent decimal.Decimal `json:"potential_savings_percent"`
	Recommendations         []string        `json:"recommendations"`
}

// HourUsage is one point of GET /green-grid/chart.
type HourUsage struct {
	Hour  string          `json:"hour"`
	Usage decimal.Decimal `json:"usage"`
}

// User is the identity returned by the login endpoint.
type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// LoginResult is returned by POST /auth/login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}
