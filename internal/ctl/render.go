package ctl

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"bizai/internal/core"
)

// Theme colors, matching the dashboard.
var (
	colorBorder = lipgloss.Color("#334155")
	colorText   = lipgloss.Color("#F8FAFC")
	colorMuted  = lipgloss.Color("#94A3B8")
	colorRed    = lipgloss.Color("#F87171")
	colorGreen  = lipgloss.Color("#4ADE80")
	colorOrange = lipgloss.Color("#FB923C")
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(colorMuted)
	valueStyle = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	okStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	warnStyle  = lipgloss.NewStyle().Foreground(colorOrange)
	dimStyle   = lipgloss.NewStyle().Foreground(colorBorder)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1).
			Width(24)
)

type card struct {
	Label     string
	Value     string
	Highlight bool
}

type table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// renderTitle renders a bordered heading in the module accent.
func renderTitle(title, accent string) string {
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(accent)).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(accent)).
		Padding(0, 1)
	return style.Render(title) + "\n"
}

// renderCards lays the stat cards out side by side.
func renderCards(cards []card, accent string) string {
	if len(cards) == 0 {
		return ""
	}
	boxes := make([]string, 0, len(cards))
	for _, c := range cards {
		value := valueStyle
		if c.Highlight {
			value = value.Foreground(lipgloss.Color(accent))
		}
		boxes = append(boxes, cardStyle.Render(labelStyle.Render(c.Label)+"\n"+value.Render(c.Value)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...) + "\n"
}

// renderTable renders a bordered table. An empty table renders its title and
// the placeholder instead.
func renderTable(t table, placeholder string) string {
	var b strings.Builder
	if t.Title != "" {
		b.WriteString(lipgloss.NewStyle().Bold(true).Render(t.Title))
		b.WriteString("\n")
	}
	if len(t.Rows) == 0 {
		b.WriteString(mutedStyle.Render(placeholder))
		b.WriteString("\n")
		return b.String()
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	rule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < len(widths)-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}
	line := func(cells []string, style lipgloss.Style) {
		b.WriteString(dimStyle.Render("│"))
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := w - lipgloss.Width(cell)
			b.WriteString(" " + style.Render(cell) + strings.Repeat(" ", pad) + " ")
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")
	line(t.Headers, labelStyle)
	rule("├", "┼", "┤")
	for _, row := range t.Rows {
		line(row, lipgloss.NewStyle())
	}
	rule("╰", "┴", "╯")
	return b.String()
}

// renderList renders a titled bullet list, or nothing when items is empty.
func renderList(title string, items []string, style lipgloss.Style) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	b.WriteString("\n")
	for _, item := range items {
		fmt.Fprintf(&b, "  • %s\n", style.Render(item))
	}
	return b.String()
}

func renderError(msg string) string {
	return errorStyle.Render("✗ "+msg) + "\n"
}

func valueRows(points []core.LabeledValue) [][]string {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{p.Label, p.Value.String()})
	}
	return rows
}

func num(d decimal.Decimal) string { return d.String() }
