// Package core holds the dashboard domain: the four analytics modules, their
// backend result records, the per-module view state machine and the upload
// control rules shared by the web view, the CLI and the drop-folder watcher.
package core

import (
	"fmt"
	"strings"
)

// Module identifies one analytics feature area. The value is the URL slug.
type Module string

const (
	ModuleExpense   Module = "expense"
	ModuleFraud     Module = "fraud"
	ModuleInventory Module = "inventory"
	ModuleGreenGrid Module = "green-grid"
)

// Modules lists every module in navigation order.
func Modules() []Module {
	return []Module{ModuleExpense, ModuleFraud, ModuleInventory, ModuleGreenGrid}
}

// String implements fmt.Stringer
func (m Module) String() string {
	return string(m)
}

// IsValid reports whether m is a known module.
func (m Module) IsValid() bool {
	switch m {
	case ModuleExpense, ModuleFraud, ModuleInventory, ModuleGreenGrid:
		return true
	default:
		return false
	}
}

// UploadPath is the backend endpoint that accepts this module's CSV.
func (m Module) UploadPath() string {
	return "/" + string(m) + "/upload-csv"
}

// ParseModule accepts a slug ("green-grid") or a loose alias ("greengrid", "green_grid").
func ParseModule(s string) (Module, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "_", "-")
	if norm == "greengrid" {
		norm = string(ModuleGreenGrid)
	}
	m := Module(norm)
	if !m.IsValid() {
		return "", fmt.Errorf("unknown module %q: must be one of expense, fraud, inventory, green-grid", s)
	}
	return m, nil
}
