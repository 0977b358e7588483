package ctl

import (
	"strconv"
	"strings"

	"bizai/internal/catalog"
	"bizai/internal/core"
)

// renderModule prints the settled view of one module the way the dashboard
// panel lays it out: heading, cards, then the chart data as tables.
func renderModule(entry catalog.Entry, views core.Views) string {
	var b strings.Builder
	phase := views.PhaseOf(entry.Slug)
	b.WriteString(renderTitle(entry.HeadingFor(phase == core.PhaseLoaded), entry.Accent))

	switch entry.Slug {
	case core.ModuleExpense:
		if d := views.Expense.Data; d != nil {
			b.WriteString(renderExpense(entry, *d))
		}
		if e := views.Expense.Error; e != "" {
			b.WriteString(renderError(e))
		}
	case core.ModuleFraud:
		if d := views.Fraud.Data; d != nil {
			b.WriteString(renderFraud(entry, *d))
		}
		if e := views.Fraud.Error; e != "" {
			b.WriteString(renderError(e))
		}
	case core.ModuleInventory:
		if d := views.Inventory.Data; d != nil {
			b.WriteString(renderInventory(entry, *d))
		}
		if e := views.Inventory.Error; e != "" {
			b.WriteString(renderError(e))
		}
	case core.ModuleGreenGrid:
		if d := views.GreenGrid.Data; d != nil {
			b.WriteString(renderGreenGrid(entry, *d))
		}
		if e := views.GreenGrid.Error; e != "" {
			b.WriteString(renderError(e))
		}
	}
	return b.String()
}

func renderExpense(entry catalog.Entry, d core.ExpenseUpload) string {
	trend := d.TrendArrow()
	if trend == "" {
		trend = "—"
	}
	categories := d.Categories()
	return renderCards([]card{
		{Label: "Total", Value: num(d.Total)},
		{Label: "Trend", Value: trend, Highlight: d.TrendUp()},
		{Label: "Categories", Value: strconv.Itoa(len(categories))},
	}, entry.Accent) +
		renderTable(table{Title: "Expense Categories", Headers: []string{"Category", "Amount"}, Rows: valueRows(categories)}, "No category data") +
		renderTable(table{Title: "Monthly Trend", Headers: []string{"Month", "Amount"}, Rows: valueRows(d.MonthlyTrend())}, "No trend data")
}

func renderFraud(entry catalog.Entry, d core.FraudUpload) string {
	return renderCards([]card{
		{Label: "Fraud count", Value: num(d.FraudCount)},
		{Label: "Normal count", Value: num(d.NormalCount)},
		{Label: "Risk level", Value: d.RiskLabel(), Highlight: core.RiskLevel(d.FraudPercentage) != "Low"},
	}, entry.Accent)
}

func renderInventory(entry catalog.Entry, d core.InventoryView) string {
	var b strings.Builder
	if d.Upload.Success {
		b.WriteString(okStyle.Render("✓ "+d.SuccessMessage()) + "\n")
	}
	b.WriteString(renderList("Row errors", d.Upload.Errors, warnStyle))
	b.WriteString(renderInventoryState(entry, d.Summary, d.Forecast))
	return b.String()
}

// renderInventoryState is shared by upload and insights, which both end with
// a summary and a forecast.
func renderInventoryState(entry catalog.Entry, summary *core.InventorySummary, forecast []core.ForecastPoint) string {
	var b strings.Builder
	totalItems, lowStock := "0", "0"
	var rows [][]string
	var suggestions []string
	if summary != nil {
		totalItems = strconv.Itoa(len(summary.Items))
		lowStock = num(summary.LowStockCount)
		for _, item := range summary.Items {
			status := "ok"
			if item.BelowReorder() {
				status = "reorder"
			}
			rows = append(rows, []string{item.Name, num(item.Stock), num(item.ReorderAt), status})
		}
		suggestions = summary.Suggestions
	}
	b.WriteString(renderCards([]card{
		{Label: "Total items", Value: totalItems},
		{Label: "Low stock items", Value: lowStock, Highlight: true},
		{Label: "Forecast weeks", Value: strconv.Itoa(len(forecast))},
	}, entry.Accent))
	b.WriteString(renderTable(table{Title: "Stock Levels", Headers: []string{"Item", "Stock", "Reorder at", "Status"}, Rows: rows}, "No stock data"))
	b.WriteString(renderList("Reorder Suggestions", suggestions, mutedStyle))

	view := core.InventoryView{Forecast: forecast}
	b.WriteString(renderTable(table{Title: "Demand Forecast", Headers: []string{"Week", "Predicted stock"}, Rows: valueRows(view.ForecastBars())}, "No forecast data"))
	return b.String()
}

func renderGreenGrid(entry catalog.Entry, d core.GreenGridUpload) string {
	points := d.Points()
	status := "Awaiting upload"
	if len(points) > 0 {
		status = "Data loaded"
	}
	return renderCards([]card{
		{Label: "Average usage", Value: d.AverageLabel()},
		{Label: "Data points", Value: strconv.Itoa(len(points))},
		{Label: "Status", Value: status, Highlight: len(points) > 0},
	}, entry.Accent) +
		renderTable(table{Title: "Energy Usage", Headers: []string{"Hour", "kWh"}, Rows: valueRows(points)}, "No usage data")
}

func renderExpenseInsights(entry catalog.Entry, s core.ExpenseSummary, trends []core.MonthAmount) string {
	trend := s.TrendArrow()
	if trend == "" {
		trend = "—"
	}
	rows := make([][]string, 0, len(trends))
	for _, t := range trends {
		rows = append(rows, []string{t.Month, num(t.Amount)})
	}
	return renderCards([]card{
		{Label: "Total", Value: num(s.Total)},
		{Label: "Trend", Value: trend, Highlight: s.TrendUp()},
		{Label: "Categories", Value: strconv.Itoa(len(s.ByCategory))},
	}, entry.Accent) +
		renderTable(table{Title: "Expense Categories", Headers: []string{"Category", "Amount"}, Rows: valueRows(s.CategorySlices())}, "No category data") +
		renderTable(table{Title: "Monthly Trend", Headers: []string{"Month", "Amount"}, Rows: rows}, "No trend data")
}

func renderFraudInsights(entry catalog.Entry, ins core.FraudInsights, days []core.FraudDay) string {
	alerts := make([][]string, 0, len(ins.Alerts))
	for _, al := range ins.Alerts {
		alerts = append(alerts, []string{strconv.FormatInt(al.ID, 10), al.Type, num(al.Score)})
	}
	daily := make([][]string, 0, len(days))
	for _, d := range days {
		daily = append(daily, []string{d.Day, num(d.Normal), num(d.Flagged)})
	}
	return renderCards([]card{
		{Label: "Anomalies detected", Value: num(ins.AnomaliesDetected)},
		{Label: "Transactions", Value: num(ins.TotalTransactions)},
		{Label: "Risk level", Value: ins.RiskLevel, Highlight: ins.RiskLevel != "" && ins.RiskLevel != "Low"},
	}, entry.Accent) +
		renderTable(table{Title: "Recent Alerts", Headers: []string{"ID", "Type", "Score"}, Rows: alerts}, "No alerts") +
		renderTable(table{Title: "Daily Activity", Headers: []string{"Day", "Normal", "Flagged"}, Rows: daily}, "No chart data")
}

func renderGreenGridInsights(entry catalog.Entry, d core.GreenGridData, hours []core.HourUsage) string {
	rows := make([][]string, 0, len(hours))
	for _, h := range hours {
		rows = append(rows, []string{h.Hour, num(h.Usage)})
	}
	return renderCards([]card{
		{Label: "Current usage", Value: num(d.CurrentUsageKWh) + " kWh"},
		{Label: "Peak shift", Value: num(d.SuggestedPeakShift) + " kWh"},
		{Label: "Potential savings", Value: num(d.PotentialSavingsPercent) + "%", Highlight: true},
	}, entry.Accent) +
		renderList("Recommendations", d.Recommendations, mutedStyle) +
		renderTable(table{Title: "Hourly Usage", Headers: []string{"Hour", "kWh"}, Rows: rows}, "No usage data")
}
