package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"bizai/internal/amqp"
	"bizai/internal/cli"
	"bizai/internal/log"
	"bizai/internal/sheets"
	gsheet "bizai/internal/sheets/google"
	mem "bizai/internal/sheets/memory"
	"bizai/internal/storage"
	"bizai/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting bizai-worker")
	cfg := cli.LoadAndValidateConfig(logger)

	// The worker always keeps its own SQLite copy of the journal: it is the
	// export bookkeeping and the target of the retention job.
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()
	if pending, err := repo.PendingExport(context.Background()); err != nil {
		logger.Warn("Could not count journal entries awaiting export", log.FieldError, err)
	} else {
		logger.Info("Journal opened", "path", cfg.SQLiteDBPath, "pending_export", pending)
	}

	var exporter sheets.UploadExporter
	if cfg.SheetsEnabled() {
		client, err := gsheet.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		exporter = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", client.SheetName())
	} else {
		exporter = mem.New()
		logger.Info("Google Sheets disabled - exported rows are kept in memory")
	}

	retention, err := worker.NewRetentionJob(repo, cfg.RetentionSchedule, cfg.JournalRetention)
	if err != nil {
		logger.Error("Invalid retention settings", log.FieldError, err)
		os.Exit(1)
	}

	runCtx, stopRun := context.WithCancel(context.Background())
	defer stopRun()
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return retention.Run(gctx) })

	if cfg.AMQPEnabled() {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		exportWorker := worker.NewExportWorker(exporter, repo, repo)
		g.Go(func() error { return amqpClient.ConsumeUploadEvents(gctx, exportWorker.HandleUploadEvent) })
		logger.Info("Consuming upload events", "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - running journal retention only")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		stopRun()
		_ = g.Wait()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
