package main

import (
	"context"
	"os"
	"time"

	"pennie/internal/amqp"
	"pennie/internal/cache"
	"pennie/internal/cli"
	apphttp "pennie/internal/http"
	"pennie/internal/log"
	"pennie/internal/services"
	"pennie/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(log.ComponentApp, cfg.LogLevel)

	ctx := context.Background()
	st, res, err := cli.OpenState(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to open ledger", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	logger.Info("Ledger loaded",
		"backend", cfg.DataBackend,
		"transactions", len(st.Transactions()),
		"accounts", len(st.Accounts()))

	opts := []services.Option{
		services.WithCacheTTL(cfg.CacheTTL),
		services.WithImportChunkSize(cfg.ImportChunkSize),
	}

	// Categorization requests go through the broker when one is configured;
	// this process owns the writes, so it also consumes them.
	var ledgerWorker *worker.LedgerWorker
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue+".categorize", amqp.CategorizeRequested)
		if err != nil {
			logger.Error("Failed to connect to AMQP broker", log.FieldError, err)
			os.Exit(1)
		}
		opts = append(opts, services.WithPublisher(client), services.WithCloser("amqp", client))
		ledgerWorker = worker.NewLedgerWorker(st, client, nil, worker.Config{SweepInterval: cfg.SyncInterval})
		logger.Info("AMQP publisher enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue+".categorize")
	} else {
		logger.Info("AMQP disabled, categorization runs inline")
	}

	svc := services.NewFinanceService(st, opts...)

	caches := cache.NewManager()
	caches.Register(svc.SummaryCache())
	caches.StartCleanup(time.Minute)

	srv := apphttp.NewServer(":"+cfg.Port, svc,
		apphttp.WithLogger(logger),
		apphttp.WithReadiness(res.Ping),
		apphttp.WithRateLimit(cfg.RateLimitPerMinute))

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		caches.Stop()
		if err := svc.Close(); err != nil {
			logger.Error("Service close error", log.FieldError, err)
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	if ledgerWorker != nil {
		go func() {
			if err := ledgerWorker.Run(ctx); err != nil {
				logger.Error("Ledger worker stopped", log.FieldError, err)
			}
		}()
	}

	logger.Info("Starting pennie server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
