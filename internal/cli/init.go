// Package cli holds the startup and shutdown steps shared by cmd/pennie and
// cmd/pennie-worker.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pennie/internal/backend"
	"pennie/internal/categorize"
	"pennie/internal/config"
	"pennie/internal/log"
	"pennie/internal/state"
)

// SetupLogger builds the process logger at levelName and makes it the
// slog default. An unknown level falls back to info.
func SetupLogger(component, levelName string) *log.Logger {
	level, err := log.ParseLevel(levelName)
	cfg := log.DefaultConfig()
	cfg.Level = level
	cfg.Component = component
	logger := log.New(cfg)
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Falling back to info log level", log.FieldError, err)
	}
	return logger
}

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and exits the process if it is
// unusable.
func LoadAndValidateConfig() *config.Config {
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		slog.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenState creates the configured backend and loads the ledger from it.
// The returned cleanup closes the backend.
func OpenState(ctx context.Context, logger *log.Logger, cfg *config.Config, opts ...state.Option) (*state.Store, *backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create backend: %w", err)
	}

	if cfg.MerchantRulesFile != "" {
		m, err := categorize.LoadFile(cfg.MerchantRulesFile)
		if err != nil {
			res.Cleanup()
			return nil, nil, fmt.Errorf("load merchant rules: %w", err)
		}
		logger.InfoContext(ctx, "Merchant rules loaded", "file", cfg.MerchantRulesFile)
		opts = append(opts, state.WithMatcher(m))
	}

	st, err := state.Open(ctx, res.Store, opts...)
	if err != nil {
		res.Cleanup()
		return nil, nil, fmt.Errorf("open state: %w", err)
	}
	return st, res, nil
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. After
// the signal, cleanup runs with a context bounded by timeout and done is
// closed once it returns.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		finished := make(chan struct{})
		go func() {
			defer close(finished)
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		}
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup ended.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
