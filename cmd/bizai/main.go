package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"bizai/internal/api"
	"bizai/internal/cli"
	apphttp "bizai/internal/http"
	"bizai/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	journalBackend := cli.InitJournal(context.Background(), logger, cfg)

	// every visitor talks to the same backend host
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 32
	apiClient := api.NewClient(cfg.AnalyticsAPIURL,
		api.WithHTTPClient(&http.Client{Transport: transport}),
		api.WithTimeout(cfg.BackendTimeout))

	srv := apphttp.NewServer(apphttp.Deps{
		Config:  cfg,
		Logger:  logger,
		API:     apiClient,
		Journal: journalBackend.Journal,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err, log.FieldOperation, log.OpShutdown)
		}
		if err := journalBackend.Close(); err != nil {
			logger.Error("Journal close error", log.FieldError, err, log.FieldOperation, log.OpShutdown)
		}
	})

	logger.Info("Starting bizai server",
		"addr", srv.Addr,
		"analytics_api", apiClient.BaseURL(),
		"journal", cfg.JournalBackend,
		"publishing", journalBackend.Publishing,
		"require_login", cfg.RequireLogin)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "addr", srv.Addr)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
