package catalog

import (
	"errors"
	"testing"

	"bizai/internal/core"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if c.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", c.Len())
	}

	tests := []struct {
		module  core.Module
		title   string
		accent  string
		columns int
	}{
		{core.ModuleExpense, "Expense Sense", "#38BDF8", 3},
		{core.ModuleFraud, "Fraud Lens", "#2DD4BF", 3},
		{core.ModuleInventory, "Smart Inventory", "#34D399", 3},
		{core.ModuleGreenGrid, "Green Grid Optimizer", "#4ADE80", 2},
	}
	for _, tt := range tests {
		e, err := c.Get(tt.module)
		if err != nil {
			t.Fatalf("Get(%s) error = %v", tt.module, err)
		}
		if e.Title != tt.title || e.Accent != tt.accent || len(e.CSVColumns) != tt.columns {
			t.Errorf("Get(%s) = %+v", tt.module, e)
		}
		if len(e.Bullets) != 3 || len(e.LockedMetrics) != 3 {
			t.Errorf("%s: bullets/metrics = %d/%d", tt.module, len(e.Bullets), len(e.LockedMetrics))
		}
	}

	inv, _ := c.Get(core.ModuleInventory)
	if inv.HeadingFor(true) != "Smart Inventory AI" || inv.HeadingFor(false) != "Smart Inventory" {
		t.Errorf("inventory headings = %q/%q", inv.HeadingFor(true), inv.HeadingFor(false))
	}
	if inv.Path() != "/modules/inventory" {
		t.Errorf("Path() = %q", inv.Path())
	}

	all := c.All()
	if all[0].Slug != core.ModuleExpense || all[3].Slug != core.ModuleGreenGrid {
		t.Errorf("All() order = %v", all)
	}
}

func TestGet_Unknown(t *testing.T) {
	c := MustDefault()
	if _, err := c.Get(core.Module("sales")); !errors.Is(err, ErrUnknownModule) {
		t.Errorf("Get(sales) error = %v, want ErrUnknownModule", err)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad yaml", "modules: ["},
		{"unknown slug", "modules:\n  - slug: sales\n    title: Sales\n    accent: '#fff'\n"},
		{"missing modules", "modules:\n  - slug: fraud\n    title: Fraud Lens\n    accent: '#2DD4BF'\n"},
		{"missing accent", "modules:\n  - slug: fraud\n    title: Fraud Lens\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
