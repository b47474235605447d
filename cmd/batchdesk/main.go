package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"batchdesk/internal/auth"
	"batchdesk/internal/cli"
	"batchdesk/internal/core"
	apphttp "batchdesk/internal/http"
	applog "batchdesk/internal/log"
	"batchdesk/internal/repository"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	backend := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	dateOrder, err := repository.ParseDateOrder(cfg.SheetDateOrder)
	if err != nil {
		cli.Fatal(logger, "Invalid SHEET_DATE_ORDER", err)
	}
	opts := []repository.Option{
		repository.WithCatalog(core.NewCatalog(cfg.BatchCategories)),
		repository.WithDateOrder(dateOrder),
		repository.WithLogger(logger),
	}
	if backend.Notifier != nil {
		opts = append(opts, repository.WithNotifier(backend.Notifier))
	}
	repo := repository.New(backend.Store, opts...)

	gate := auth.NewGate(cli.InitCredentials(logger, cfg),
		auth.WithTTL(cfg.SessionTTL),
		auth.WithGateLogger(logger))

	srv := apphttp.NewServer(":"+cfg.Port, repo, gate,
		apphttp.WithLogger(logger),
		apphttp.WithSessionTTL(cfg.SessionTTL),
		apphttp.WithLoginRateLimit(cfg.LoginRateLimit))

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting batchdesk server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"mirror_events", backend.Notifier != nil,
			applog.FieldOperation, applog.OpStartup)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			cli.Fatal(logger, "Server error", err, "port", cfg.Port)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", applog.FieldError, err)
	}
	logger.Info("Server stopped gracefully")
}
