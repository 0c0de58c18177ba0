// Package worker reacts to ledger events delivered over AMQP.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"pennie/internal/amqp"
	"pennie/internal/sheets"
	"pennie/internal/state"
)

// Consumer is satisfied by *amqp.Client.
type Consumer interface {
	Consume(ctx context.Context, handler func(context.Context, *amqp.LedgerEvent) error) error
}

type Config struct {
	// SweepInterval schedules a BulkCategorize pass as a backup for lost
	// categorize requests. Zero disables the sweep.
	SweepInterval time.Duration
	// ReloadState re-reads persisted state before handling each event.
	// Set it when another process owns the writes.
	ReloadState bool
}

// LedgerWorker categorizes on request and mirrors new transactions to a
// spreadsheet when a writer is configured.
type LedgerWorker struct {
	state    *state.Store
	consumer Consumer
	writer   sheets.TransactionWriter
	config   Config
}

func NewLedgerWorker(st *state.Store, consumer Consumer, writer sheets.TransactionWriter, config Config) *LedgerWorker {
	return &LedgerWorker{
		state:    st,
		consumer: consumer,
		writer:   writer,
		config:   config,
	}
}

// HandleEvent processes a single event. A returned error causes the message
// to be requeued.
func (w *LedgerWorker) HandleEvent(ctx context.Context, e *amqp.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"event_id", e.ID,
		"type", e.Type,
		"transactions", len(e.TransactionIDs))

	if w.config.ReloadState {
		if err := w.state.Reload(ctx); err != nil {
			return fmt.Errorf("reload state: %w", err)
		}
	}

	switch e.Type {
	case amqp.CategorizeRequested:
		if w.config.ReloadState {
			// Writes belong to the server process.
			slog.WarnContext(ctx, "Ignoring categorize request in read-only worker", "event_id", e.ID)
			return nil
		}
		_, err := w.Sweep(ctx)
		return err
	case amqp.TransactionCreated, amqp.TransactionsImported:
		return w.mirror(ctx, e)
	default:
		slog.DebugContext(ctx, "Ignoring ledger event", "type", e.Type)
		return nil
	}
}

// Sweep categorizes every transaction still in Other.
func (w *LedgerWorker) Sweep(ctx context.Context) (int, error) {
	n, err := w.state.BulkCategorize(ctx)
	if err != nil {
		return 0, fmt.Errorf("sweep: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Categorization sweep applied", "changed", n)
	}
	return n, nil
}

func (w *LedgerWorker) mirror(ctx context.Context, e *amqp.LedgerEvent) error {
	if w.writer == nil {
		return nil
	}
	txs := w.state.TransactionsByID(e.TransactionIDs)
	if len(txs) == 0 {
		// Deleted before we got here.
		slog.WarnContext(ctx, "No transactions left to mirror", "event_id", e.ID)
		return nil
	}
	ref, err := w.writer.AppendTransactions(ctx, txs)
	if err != nil {
		return fmt.Errorf("mirror transactions: %w", err)
	}
	slog.InfoContext(ctx, "Mirrored transactions",
		"event_id", e.ID,
		"count", len(txs),
		"ref", ref)
	return nil
}

// Run consumes events and runs the periodic sweep until ctx ends or either
// loop fails.
func (w *LedgerWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if w.consumer != nil {
		g.Go(func() error {
			return w.consumer.Consume(ctx, w.HandleEvent)
		})
	}
	if w.config.SweepInterval > 0 && !w.config.ReloadState {
		g.Go(func() error {
			return w.sweepLoop(ctx)
		})
	}

	slog.InfoContext(ctx, "Ledger worker started",
		"sweep_interval", w.config.SweepInterval,
		"mirror", w.writer != nil,
		"read_only", w.config.ReloadState)

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *LedgerWorker) sweepLoop(ctx context.Context) error {
	ticker := time.NewTicker(w.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Sweep(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic sweep failed", "error", err)
			}
		}
	}
}
