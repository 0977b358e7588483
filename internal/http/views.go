package http

import (
	"context"
	"errors"
	"html/template"
	"strconv"
	"time"

	"bizai/internal/catalog"
	"bizai/internal/charts"
	"bizai/internal/core"
	"bizai/internal/journal"
	"bizai/internal/log"
	"bizai/internal/services"
)

// Template data. Chart fields hold rendered SVG; an empty value makes the
// template fall back to its placeholder text.

type navView struct {
	Modules       []catalog.Entry
	Active        core.Module
	User          core.User
	Authenticated bool
	RequireLogin  bool
}

type card struct {
	Label     string
	Value     string
	Highlight bool
}

type landingPage struct {
	Nav navView
}

type loginPage struct {
	Nav      navView
	Email    string
	Password string
	Next     string
	Error    string
}

type activityRow struct {
	Module   string
	Accent   string
	FileName string
	Size     string
	Source   string
	Outcome  string
	Failed   bool
	Error    string
	When     string
}

// moduleTile is a dashboard link with the module's recent upload tally.
type moduleTile struct {
	catalog.Entry
	Loaded int
	Failed int
}

type dashboardPage struct {
	Nav          navView
	Modules      []moduleTile
	ExpenseTotal string
	ExpensePie   template.HTML
	Activity     []activityRow
	ActivityErr  bool
}

type modulePage struct {
	Nav   navView
	Panel panelView
}

type panelView struct {
	Entry      catalog.Entry
	Heading    string
	Phase      string
	Loading    bool
	Error      string
	PreInsight bool

	Expense   *expenseView
	Fraud     *fraudView
	Inventory *inventoryView
	GreenGrid *greenGridView
}

type expenseView struct {
	HasSummary bool
	Total      string
	TrendArrow string
	TrendUp    bool
	Categories template.HTML
	Trend      template.HTML
}

type fraudView struct {
	Cards []card
	Split template.HTML
}

type stockLine struct {
	Name  string
	Level string
	Low   bool
}

type inventoryView struct {
	Message     string
	Errors      []string
	Cards       []card
	HasSummary  bool
	Stock       []stockLine
	Suggestions []string
	Forecast    template.HTML
}

type greenGridView struct {
	Cards []card
	Usage template.HTML
}

// chartHTML turns renderer output into template markup. ErrNoData is the
// normal empty case; any other failure is logged and also shows the
// placeholder.
func chartHTML(ctx context.Context, logger *log.Logger, svg []byte, err error) template.HTML {
	if err != nil {
		if !errors.Is(err, charts.ErrNoData) {
			logger.ErrorContext(ctx, "Chart render failed", log.FieldError, err, log.FieldOperation, log.OpRender)
		}
		return ""
	}
	return template.HTML(svg)
}

// buildPanel derives the module panel from the visitor's view state. A failed
// upload after a successful one keeps the loaded layout with zeroed values.
func buildPanel(ctx context.Context, logger *log.Logger, entry catalog.Entry, views core.Views) panelView {
	p := panelView{
		Entry:   entry,
		Phase:   views.PhaseOf(entry.Slug).String(),
		Loading: views.Loading(entry.Slug),
	}

	switch entry.Slug {
	case core.ModuleExpense:
		p.Error = views.Expense.Error
		p.PreInsight = views.Expense.PreInsight()
		p.Expense = buildExpense(ctx, logger, entry, views.Expense.Data)
	case core.ModuleFraud:
		p.Error = views.Fraud.Error
		p.PreInsight = views.Fraud.PreInsight()
		if d := views.Fraud.Data; d != nil {
			p.Fraud = buildFraud(ctx, logger, *d)
		} else if !p.PreInsight {
			p.Fraud = buildFraud(ctx, logger, core.FraudUpload{})
		}
	case core.ModuleInventory:
		p.Error = views.Inventory.Error
		p.PreInsight = views.Inventory.PreInsight()
		if d := views.Inventory.Data; d != nil {
			p.Inventory = buildInventory(ctx, logger, entry, *d)
		} else if !p.PreInsight {
			p.Inventory = buildInventory(ctx, logger, entry, core.InventoryView{})
			p.Inventory.Message = ""
		}
	case core.ModuleGreenGrid:
		p.Error = views.GreenGrid.Error
		p.PreInsight = views.GreenGrid.PreInsight()
		if d := views.GreenGrid.Data; d != nil {
			p.GreenGrid = buildGreenGrid(ctx, logger, entry, *d)
		} else if !p.PreInsight {
			p.GreenGrid = buildGreenGrid(ctx, logger, entry, core.GreenGridUpload{})
		}
	}
	p.Heading = entry.HeadingFor(!p.PreInsight)
	return p
}

// buildExpense always returns a view: before any upload its charts are empty
// and the template shows the three placeholder cards.
func buildExpense(ctx context.Context, logger *log.Logger, entry catalog.Entry, d *core.ExpenseUpload) *expenseView {
	v := &expenseView{}
	if d == nil {
		return v
	}
	v.HasSummary = true
	v.Total = formatNumber(d.Total)
	v.TrendArrow = d.TrendArrow()
	v.TrendUp = d.TrendUp()

	svg, err := charts.Pie(d.Categories(), charts.Palette, charts.SizeCard)
	v.Categories = chartHTML(ctx, logger, svg, err)
	svg, err = charts.Bar(d.MonthlyTrend(), entry.Accent, charts.SizeWide)
	v.Trend = chartHTML(ctx, logger, svg, err)
	return v
}

func buildFraud(ctx context.Context, logger *log.Logger, d core.FraudUpload) *fraudView {
	svg, err := charts.Pie(d.Split(), []string{"#2DD4BF", "#F87171"}, charts.SizeCard)
	return &fraudView{
		Cards: []card{
			{Label: "Fraud count", Value: formatNumber(d.FraudCount)},
			{Label: "Normal count", Value: formatNumber(d.NormalCount)},
			{Label: "Risk level", Value: d.RiskLabel(), Highlight: core.RiskLevel(d.FraudPercentage) != "Low"},
		},
		Split: chartHTML(ctx, logger, svg, err),
	}
}

func buildInventory(ctx context.Context, logger *log.Logger, entry catalog.Entry, d core.InventoryView) *inventoryView {
	v := &inventoryView{
		Message: d.SuccessMessage(),
		Errors:  d.Upload.Errors,
	}

	totalItems, lowStock := "0", "0"
	if s := d.Summary; s != nil {
		v.HasSummary = true
		totalItems = strconv.Itoa(len(s.Items))
		lowStock = formatNumber(s.LowStockCount)
		for _, item := range s.Items {
			v.Stock = append(v.Stock, stockLine{
				Name:  item.Name,
				Level: formatNumber(item.Stock) + " / reorder at " + formatNumber(item.ReorderAt),
				Low:   item.BelowReorder(),
			})
		}
		v.Suggestions = s.Suggestions
	}
	v.Cards = []card{
		{Label: "Total items", Value: totalItems},
		{Label: "Low stock items", Value: lowStock, Highlight: true},
		{Label: "Forecast weeks", Value: strconv.Itoa(len(d.Forecast))},
	}

	svg, err := charts.Bar(d.ForecastBars(), entry.Accent, charts.SizeWide)
	v.Forecast = chartHTML(ctx, logger, svg, err)
	return v
}

func buildGreenGrid(ctx context.Context, logger *log.Logger, entry catalog.Entry, d core.GreenGridUpload) *greenGridView {
	points := d.Points()
	status := "Awaiting upload"
	if len(points) > 0 {
		status = "Data loaded"
	}
	svg, err := charts.Area(points, entry.Accent, charts.SizeWide)
	return &greenGridView{
		Cards: []card{
			{Label: "Average usage", Value: d.AverageLabel()},
			{Label: "Data points", Value: strconv.Itoa(len(points))},
			{Label: "Status", Value: status, Highlight: len(points) > 0},
		},
		Usage: chartHTML(ctx, logger, svg, err),
	}
}

// buildDashboard shapes the dashboard service result.
func buildDashboard(ctx context.Context, logger *log.Logger, cat *catalog.Catalog, d services.Dashboard, now time.Time) dashboardPage {
	page := dashboardPage{ActivityErr: d.ActivityErr != nil}
	counts := journal.Counts(d.Recent)
	for _, entry := range cat.All() {
		page.Modules = append(page.Modules, moduleTile{
			Entry:  entry,
			Loaded: counts[entry.Slug][journal.OutcomeLoaded],
			Failed: counts[entry.Slug][journal.OutcomeError],
		})
	}
	if d.Summary != nil {
		page.ExpenseTotal = formatNumber(d.Summary.Total)
		svg, err := charts.Pie(d.Summary.CategorySlices(), charts.Palette, charts.SizeCard)
		page.ExpensePie = chartHTML(ctx, logger, svg, err)
	}
	for _, e := range d.Recent {
		page.Activity = append(page.Activity, activityFor(cat, e, now))
	}
	return page
}

func activityFor(cat *catalog.Catalog, e journal.Entry, now time.Time) activityRow {
	row := activityRow{
		Module:   e.Module.String(),
		FileName: e.FileName,
		Size:     formatSize(e.SizeBytes),
		Source:   e.Source.String(),
		Outcome:  e.Outcome,
		Failed:   !e.Succeeded(),
		Error:    e.Error,
		When:     formatWhen(e.CreatedAt, now),
	}
	if entry, err := cat.Get(e.Module); err == nil {
		row.Module = entry.Name
		row.Accent = entry.Accent
	}
	return row
}
