package api

import (
	"context"
	"fmt"

	"bizai/internal/core"
)

// UploadExpenses posts a CSV to /expense/upload-csv.
func (c *Client) UploadExpenses(ctx context.Context, f core.File) (core.ExpenseUpload, error) {
	var out core.ExpenseUpload
	if err := c.UploadCSV(ctx, core.ModuleExpense.UploadPath(), f, &out); err != nil {
		return core.ExpenseUpload{}, err
	}
	return out, nil
}

// ExpenseSummary fetches GET /expense/summary.
func (c *Client) ExpenseSummary(ctx context.Context) (core.ExpenseSummary, error) {
	var out core.ExpenseSummary
	err := c.get(ctx, "/expense/summary", &out)
	return out, err
}

// ExpenseTrends fetches GET /expense/trends.
func (c *Client) ExpenseTrends(ctx context.Context) ([]core.MonthAmount, error) {
	var out []core.MonthAmount
	err := c.get(ctx, "/expense/trends", &out)
	return out, err
}

// UploadTransactions posts a CSV to /fraud/upload-csv.
func (c *Client) UploadTransactions(ctx context.Context, f core.File) (core.FraudUpload, error) {
	var out core.FraudUpload
	if err := c.UploadCSV(ctx, core.ModuleFraud.UploadPath(), f, &out); err != nil {
		return core.FraudUpload{}, err
	}
	return out, nil
}

// FraudInsights fetches GET /fraud/insights.
func (c *Client) FraudInsights(ctx context.Context) (core.FraudInsights, error) {
	var out core.FraudInsights
	err := c.get(ctx, "/fraud/insights", &out)
	return out, err
}

// FraudChart fetches GET /fraud/chart.
func (c *Client) FraudChart(ctx context.Context) ([]core.FraudDay, error) {
	var out []core.FraudDay
	err := c.get(ctx, "/fraud/chart", &out)
	return out, err
}

// UploadInventory posts a CSV to /inventory/upload-csv. A response with
// success=false is returned as core.ErrUploadFailed.
func (c *Client) UploadInventory(ctx context.Context, f core.File) (core.InventoryUpload, error) {
	var out core.InventoryUpload
	if err := c.UploadCSV(ctx, core.ModuleInventory.UploadPath(), f, &out); err != nil {
		return core.InventoryUpload{}, err
	}
	if !out.Success {
		return out, fmt.Errorf("inventory upload: %w", core.ErrUploadFailed)
	}
	return out, nil
}

// InventorySummary fetches GET /inventory/summary.
func (c *Client) InventorySummary(ctx context.Context) (core.InventorySummary, error) {
	var out core.InventorySummary
	err := c.get(ctx, "/inventory/summary", &out)
	return out, err
}

// InventoryForecast fetches GET /inventory/forecast.
func (c *Client) InventoryForecast(ctx context.Context) ([]core.ForecastPoint, error) {
	var out []core.ForecastPoint
	err := c.get(ctx, "/inventory/forecast", &out)
	return out, err
}

// UploadGridUsage posts a CSV to /green-grid/upload-csv.
func (c *Client) UploadGridUsage(ctx context.Context, f core.File) (core.GreenGridUpload, error) {
	var out core.GreenGridUpload
	if err := c.UploadCSV(ctx, core.ModuleGreenGrid.UploadPath(), f, &out); err != nil {
		return core.GreenGridUpload{}, err
	}
	return out, nil
}

// GreenGridData fetches GET /green-grid/data.
func (c *Client) GreenGridData(ctx context.Context) (core.GreenGridData, error) {
	var out core.GreenGridData
	err := c.get(ctx, "/green-grid/data", &out)
	return out, err
}

// GreenGridChart fetches GET /green-grid/chart.
func (c *Client) GreenGridChart(ctx context.Context) ([]core.HourUsage, error) {
	var out []core.HourUsage
	err := c.get(ctx, "/green-grid/chart", &out)
	return out, err
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (core.LoginResult, error) {
	var out core.LoginResult
	in := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}
	if err := c.postJSON(ctx, "/auth/login", in, &out); err != nil {
		return core.LoginResult{}, err
	}
	return out, nil
}
