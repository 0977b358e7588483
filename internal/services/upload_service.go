package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"bizai/internal/core"
	"bizai/internal/journal"
	"bizai/internal/log"
)

// Backend is the subset of the analytics client used by module uploads.
type Backend interface {
	UploadExpenses(ctx context.Context, f core.File) (core.ExpenseUpload, error)
	UploadTransactions(ctx context.Context, f core.File) (core.FraudUpload, error)
	UploadInventory(ctx context.Context, f core.File) (core.InventoryUpload, error)
	InventorySummary(ctx context.Context) (core.InventorySummary, error)
	InventoryForecast(ctx context.Context) ([]core.ForecastPoint, error)
	UploadGridUsage(ctx context.Context, f core.File) (core.GreenGridUpload, error)
}

// Result is the settled outcome of one upload. Exactly one of the data
// pointers is set on success; Err is set on failure.
type Result struct {
	Module    core.Module
	Expense   *core.ExpenseUpload
	Fraud     *core.FraudUpload
	Inventory *core.InventoryView
	GreenGrid *core.GreenGridUpload
	Err       error
}

// Failed reports whether the upload ended in an error.
func (r Result) Failed() bool { return r.Err != nil }

// Apply settles the matching module state in v.
func (r Result) Apply(v *core.Views) {
	switch r.Module {
	case core.ModuleExpense:
		if r.Err != nil || r.Expense == nil {
			v.Expense.Reject(r.Err)
			return
		}
		v.Expense.Resolve(*r.Expense)
	case core.ModuleFraud:
		if r.Err != nil || r.Fraud == nil {
			v.Fraud.Reject(r.Err)
			return
		}
		v.Fraud.Resolve(*r.Fraud)
	case core.ModuleInventory:
		if r.Err != nil || r.Inventory == nil {
			v.Inventory.Reject(r.Err)
			return
		}
		v.Inventory.Resolve(*r.Inventory)
	case core.ModuleGreenGrid:
		if r.Err != nil || r.GreenGrid == nil {
			v.GreenGrid.Reject(r.Err)
			return
		}
		v.GreenGrid.Resolve(*r.GreenGrid)
	}
}

// Begin moves module m of v into Loading.
func Begin(v *core.Views, m core.Module) {
	switch m {
	case core.ModuleExpense:
		v.Expense.Begin()
	case core.ModuleFraud:
		v.Fraud.Begin()
	case core.ModuleInventory:
		v.Inventory.Begin()
	case core.ModuleGreenGrid:
		v.GreenGrid.Begin()
	}
}

// UploadService runs the upload cycle of a module against the backend and
// records each attempt in the journal.
type UploadService struct {
	journal journal.Recorder
	logger  *log.Logger
	slog    *log.StructuredLogger
	now     func() time.Time
}

// NewUploadService creates an upload service. recorder may be nil.
func NewUploadService(recorder journal.Recorder, logger *log.Logger) *UploadService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentUpload)
	return &UploadService{
		journal: recorder,
		logger:  logger,
		slog:    log.NewStructuredLogger(logger),
		now:     time.Now,
	}
}

// Upload sends file to the module's upload endpoint and returns the settled
// result. It never returns an unsettled state: transport errors, backend
// errors and cancelled contexts all come back as Result.Err.
func (s *UploadService) Upload(ctx context.Context, backend Backend, module core.Module, file core.File, source core.UploadSource) Result {
	start := s.now()
	res := Result{Module: module}

	switch module {
	case core.ModuleExpense:
		out, err := backend.UploadExpenses(ctx, file)
		res.Expense, res.Err = settle(out, err)
	case core.ModuleFraud:
		out, err := backend.UploadTransactions(ctx, file)
		res.Fraud, res.Err = settle(out, err)
	case core.ModuleInventory:
		view, err := s.uploadInventory(ctx, backend, file)
		res.Inventory, res.Err = settle(view, err)
	case core.ModuleGreenGrid:
		out, err := backend.UploadGridUsage(ctx, file)
		res.GreenGrid, res.Err = settle(out, err)
	default:
		res.Err = fmt.Errorf("upload %q: unknown module", module)
	}

	took := s.now().Sub(start)
	s.record(ctx, module, file, source, res.Err, took)
	return res
}

func settle[T any](out T, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// uploadInventory posts the CSV and, when the backend accepted it, fetches
// summary and forecast concurrently. Either refresh may fail without failing
// the upload; the failed part is left nil.
func (s *UploadService) uploadInventory(ctx context.Context, backend Backend, file core.File) (core.InventoryView, error) {
	up, err := backend.UploadInventory(ctx, file)
	if err != nil {
		return core.InventoryView{}, err
	}

	view := core.InventoryView{Upload: up}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sum, err := backend.InventorySummary(gctx)
		if err != nil {
			s.logger.WarnContext(ctx, "Inventory summary refresh failed", log.FieldError, err)
			return nil
		}
		view.Summary = &sum
		return nil
	})
	g.Go(func() error {
		fc, err := backend.InventoryForecast(gctx)
		if err != nil {
			s.logger.WarnContext(ctx, "Inventory forecast refresh failed", log.FieldError, err)
			return nil
		}
		view.Forecast = fc
		return nil
	})
	_ = g.Wait()
	return view, nil
}

func (s *UploadService) record(ctx context.Context, module core.Module, file core.File, source core.UploadSource, err error, took time.Duration) {
	entry := journal.NewEntry(module, file, source)
	entry.Duration = took
	entry.Outcome = journal.OutcomeLoaded
	if err != nil {
		entry.Outcome = journal.OutcomeError
		entry.Error = core.ErrorMessage(err)
	}

	s.slog.LogUploadCompleted(ctx, module.String(), file.Name, file.Size, source.String(), entry.Outcome, took)

	if s.journal == nil {
		return
	}
	// the visitor may have gone away; the attempt is still recorded
	if rerr := s.journal.Record(context.WithoutCancel(ctx), entry); rerr != nil {
		s.slog.LogError(ctx, "Failed to record upload", rerr, log.ComponentJournal, log.OpRecord, nil)
	}
}
