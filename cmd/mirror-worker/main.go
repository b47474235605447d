package main

import (
	"errors"

	"batchdesk/internal/amqp"
	"batchdesk/internal/backend"
	"batchdesk/internal/cli"
	applog "batchdesk/internal/log"
	gsheet "batchdesk/internal/sheets/google"
	"batchdesk/internal/storage"
	"batchdesk/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)

	cfg := cli.LoadAndValidateConfig(logger)
	if !cfg.MirrorEnabled() {
		cli.Fatal(logger, "Mirror worker needs DATA_BACKEND=sqlite, AMQP_URL and GOOGLE_SPREADSHEET_ID",
			errors.New("mirror disabled"), "backend", cfg.DataBackend)
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	source, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		cli.Fatal(logger, "Failed to open SQLite store", err, "db_path", cfg.SQLiteDBPath)
	}
	defer source.Close()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}
	target, err := gsheet.New(ctx, bcfg.SheetsConfig())
	if err != nil {
		cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer client.Close()

	w := worker.NewMirrorWorker(source, target)

	logger.Info("Running startup sync", applog.FieldOperation, applog.OpSync)
	if err := w.StartupSync(ctx); err != nil {
		// The broker or the periodic resync will catch up later.
		logger.Warn("Startup sync failed", applog.FieldError, err)
	}

	logger.Info("Starting mirror worker",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue,
		"sync_interval", cfg.SyncInterval,
		applog.FieldOperation, applog.OpStartup)

	if err := w.Run(ctx, client, cfg.SyncInterval); err != nil {
		cli.Fatal(logger, "Mirror worker stopped", err)
	}
	logger.Info("Mirror worker stopped gracefully")
}
