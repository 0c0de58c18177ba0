package main

import (
	"context"
	"os"
	"time"

	"pennie/internal/amqp"
	"pennie/internal/cli"
	"pennie/internal/config"
	"pennie/internal/log"
	"pennie/internal/sheets"
	gsheet "pennie/internal/sheets/google"
	mem "pennie/internal/sheets/memory"
	"pennie/internal/worker"
)

// pennie-worker mirrors new transactions to a spreadsheet. It never writes
// to the ledger; the server process owns all mutations.
func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(log.ComponentWorker, cfg.LogLevel)

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}
	if cfg.DataBackend == config.BackendMemory {
		logger.Warn("Memory backend cannot see transactions written by the server; use sqlite for mirroring")
	}

	ctx := context.Background()
	st, res, err := cli.OpenState(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to open ledger", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	var writer sheets.TransactionWriter
	if cfg.SheetsEnabled() {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets mirror enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		writer = mem.New()
		logger.Info("Google Sheets disabled, mirroring to memory")
	}

	queue := cfg.AMQPQueue + ".mirror"
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, queue, amqp.TransactionCreated, amqp.TransactionsImported)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	w := worker.NewLedgerWorker(st, client, writer, worker.Config{ReloadState: true})

	ctx, done := cli.GracefulShutdown(logger, 15*time.Second, func(context.Context) {
		if err := client.Close(); err != nil {
			logger.Error("AMQP close error", log.FieldError, err)
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting pennie-worker", "queue", queue, "backend", cfg.DataBackend)
	if err := w.Run(ctx); err != nil {
		logger.Error("Worker stopped", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
