package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"pennie/internal/amqp"
	"pennie/internal/analytics"
	"pennie/internal/cache"
	"pennie/internal/core"
	"pennie/internal/csvio"
	"pennie/internal/ledger"
	"pennie/internal/progress"
	"pennie/internal/state"
)

const (
	defaultCacheTTL  = 5 * time.Minute
	summaryCacheSize = 64
)

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	Publish(ctx context.Context, e *amqp.LedgerEvent) error
}

// FinanceService orchestrates ledger mutations, derived views and event
// publishing. Mutations are committed to the state store first; events are
// published afterwards on a best-effort basis.
type FinanceService struct {
	state      *state.Store
	publisher  EventPublisher
	aggregator *analytics.Aggregator
	summaries  *cache.LRUCache[analytics.Summary]
	group      singleflight.Group
	chunkSize  int
	now        func() time.Time
	closers    []namedCloser
}

type namedCloser struct {
	name string
	c    io.Closer
}

type Option func(*FinanceService)

// WithPublisher enables event publishing. A nil publisher disables it.
func WithPublisher(p EventPublisher) Option {
	return func(s *FinanceService) { s.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *FinanceService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCacheTTL sets how long a computed summary may be served.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *FinanceService) {
		if ttl > 0 {
			s.summaries = cache.NewLRUCache[analytics.Summary](summaryCacheSize, ttl)
		}
	}
}

func WithImportChunkSize(n int) Option {
	return func(s *FinanceService) { s.chunkSize = n }
}

// WithCloser registers a resource released by Close.
func WithCloser(name string, c io.Closer) Option {
	return func(s *FinanceService) {
		if c != nil {
			s.closers = append(s.closers, namedCloser{name, c})
		}
	}
}

func NewFinanceService(st *state.Store, opts ...Option) *FinanceService {
	s := &FinanceService{
		state:     st,
		summaries: cache.NewLRUCache[analytics.Summary](summaryCacheSize, defaultCacheTTL),
		chunkSize: csvio.DefaultChunkSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.aggregator = &analytics.Aggregator{Now: s.now}
	if c, ok := s.publisher.(io.Closer); ok {
		s.closers = append(s.closers, namedCloser{"amqp", c})
	}
	return s
}

// State exposes the underlying store for components that read it directly.
func (s *FinanceService) State() *state.Store { return s.state }

// SummaryCache is exposed so the cache manager can clean it.
func (s *FinanceService) SummaryCache() *cache.LRUCache[analytics.Summary] { return s.summaries }

// Transactions returns the ledger view for f.
func (s *FinanceService) Transactions(f ledger.Filters) []core.Transaction {
	return ledger.FilterAndSort(s.state.Transactions(), f, s.now())
}

// Analytics summarizes the transactions selected by f. Flow figures come
// from the filtered view; month-over-month and net worth always use the
// full collection. Results are cached per data generation.
func (s *FinanceService) Analytics(ctx context.Context, f ledger.Filters) (analytics.Summary, error) {
	txs, accounts, gen := s.state.View()
	now := s.now()
	f = f.Normalize()
	key := fmt.Sprintf("%d|%s|%+v", gen, now.Format(core.DateLayout), f)

	if sum, ok := s.summaries.Get(key); ok {
		return sum, nil
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		view := txs
		if !f.IsZero() {
			view = ledger.Filter(txs, f, now)
		}
		sum := s.aggregator.AggregateView(view, txs, accounts)
		s.summaries.Set(key, sum)
		return sum, nil
	})
	if err != nil {
		return analytics.Summary{}, fmt.Errorf("aggregate analytics: %w", err)
	}
	slog.DebugContext(ctx, "Analytics computed", "generation", gen, "shared", shared)
	return v.(analytics.Summary), nil
}

// AddTransaction validates tx against the entry kind and records it.
func (s *FinanceService) AddTransaction(ctx context.Context, tx core.Transaction, kind core.Kind, autoCategorize bool) (core.Transaction, error) {
	if tx.Category == "" {
		tx.Category = core.Other
	}
	if err := tx.ValidateEntry(kind); err != nil {
		return core.Transaction{}, fmt.Errorf("validate entry: %w", err)
	}
	added, err := s.state.AddTransaction(ctx, tx, state.AddOptions{AutoCategorize: autoCategorize})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction added",
		"id", added.ID,
		"merchant", added.Merchant,
		"amount", added.Amount.String(),
		"category", added.Category)

	s.publish(ctx, amqp.NewLedgerEvent(amqp.TransactionCreated, added.ID))
	return added, nil
}

func (s *FinanceService) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	updated, err := s.state.UpdateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.TransactionsUpdated, updated.ID))
	return updated, nil
}

// BulkEdit is a batch operation on a set of transaction IDs.
type BulkEdit struct {
	IDs      []int64       `json:"ids"`
	Category core.Category `json:"category,omitempty"`
	Tags     []string      `json:"tags,omitempty"`
	Delete   bool          `json:"delete,omitempty"`
}

// BulkResult reports how many transactions each part of a BulkEdit touched.
type BulkResult struct {
	Categorized int `json:"categorized"`
	Tagged      int `json:"tagged"`
	Deleted     int `json:"deleted"`
}

// ApplyBulk applies a category change, tag additions or a deletion to every
// listed transaction. Deletion takes precedence and is irreversible.
func (s *FinanceService) ApplyBulk(ctx context.Context, edit BulkEdit) (BulkResult, error) {
	var res BulkResult
	if len(edit.IDs) == 0 {
		return res, nil
	}

	if edit.Delete {
		n, err := s.state.DeleteTransactions(ctx, edit.IDs)
		if err != nil {
			return res, fmt.Errorf("delete transactions: %w", err)
		}
		res.Deleted = n
		if n > 0 {
			slog.InfoContext(ctx, "Transactions deleted", "count", n)
			s.publish(ctx, amqp.NewLedgerEvent(amqp.TransactionsDeleted, edit.IDs...))
		}
		return res, nil
	}

	if edit.Category != "" {
		n, err := s.state.UpdateCategory(ctx, edit.IDs, edit.Category)
		if err != nil {
			return res, fmt.Errorf("update category: %w", err)
		}
		res.Categorized = n
	}
	if len(edit.Tags) > 0 {
		n, err := s.state.AddTags(ctx, edit.IDs, edit.Tags)
		if err != nil {
			return res, fmt.Errorf("add tags: %w", err)
		}
		res.Tagged = n
	}
	if res.Categorized > 0 || res.Tagged > 0 {
		s.publish(ctx, amqp.NewLedgerEvent(amqp.TransactionsUpdated, edit.IDs...))
	}
	return res, nil
}

func (s *FinanceService) SetNotes(ctx context.Context, id int64, notes string) error {
	if err := s.state.SetNotes(ctx, id, notes); err != nil {
		return fmt.Errorf("set notes: %w", err)
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.TransactionsUpdated, id))
	return nil
}

func (s *FinanceService) DeleteTransaction(ctx context.Context, id int64) error {
	n, err := s.state.DeleteTransactions(ctx, []int64{id})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.TransactionsDeleted, id))
	return nil
}

// Categorize previews the category the matcher would assign.
func (s *FinanceService) Categorize(merchant string) core.Category {
	return s.state.Matcher().Categorize(merchant)
}

// BulkCategorize runs the matcher over every uncategorized transaction now.
func (s *FinanceService) BulkCategorize(ctx context.Context) (int, error) {
	n, err := s.state.BulkCategorize(ctx)
	if err != nil {
		return 0, fmt.Errorf("bulk categorize: %w", err)
	}
	if n > 0 {
		s.publish(ctx, amqp.NewLedgerEvent(amqp.TransactionsUpdated))
	}
	return n, nil
}

// RequestCategorize hands bulk categorization to the worker when events are
// enabled, and runs it inline otherwise. queued reports which path ran.
func (s *FinanceService) RequestCategorize(ctx context.Context) (changed int, queued bool, err error) {
	if s.publisher != nil {
		perr := s.publisher.Publish(ctx, amqp.NewLedgerEvent(amqp.CategorizeRequested))
		if perr == nil {
			return 0, true, nil
		}
		slog.WarnContext(ctx, "Failed to queue categorization, running inline", "error", perr)
	}
	changed, err = s.BulkCategorize(ctx)
	return changed, false, err
}

type importSink struct {
	state *state.Store
	ids   []int64
}

func (k *importSink) MergeImported(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	added, err := k.state.MergeImported(ctx, txs)
	for _, tx := range added {
		k.ids = append(k.ids, tx.ID)
	}
	return added, err
}

// ImportCSV merges a CSV file into the ledger. A cancelled ctx yields a
// partial report rather than an error.
func (s *FinanceService) ImportCSV(ctx context.Context, r io.Reader, onProgress csvio.Progress) (csvio.ImportReport, error) {
	im := csvio.Importer{
		Matcher:    s.state.Matcher(),
		ChunkSize:  s.chunkSize,
		OnProgress: onProgress,
	}
	sink := &importSink{state: s.state}
	report, err := im.Import(ctx, r, sink)
	if len(sink.ids) > 0 {
		s.publish(context.WithoutCancel(ctx), amqp.NewLedgerEvent(amqp.TransactionsImported, sink.ids...))
	}
	if err != nil {
		return report, fmt.Errorf("import csv: %w", err)
	}
	return report, nil
}

// ExportCSV writes the ledger view for f.
func (s *FinanceService) ExportCSV(w io.Writer, f ledger.Filters) error {
	return csvio.Export(w, s.Transactions(f))
}

func (s *FinanceService) ExportXLSX(w io.Writer, f ledger.Filters) error {
	return csvio.ExportXLSX(w, s.Transactions(f))
}

func (s *FinanceService) Accounts() []core.Account { return s.state.Accounts() }

func (s *FinanceService) AddAccount(ctx context.Context, a core.Account) (core.Account, error) {
	added, err := s.state.AddAccount(ctx, a)
	if err != nil {
		return core.Account{}, fmt.Errorf("add account: %w", err)
	}
	slog.InfoContext(ctx, "Account added", "id", added.ID, "name", added.Name, "type", added.Type)
	return added, nil
}

func (s *FinanceService) UpdateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	updated, err := s.state.UpdateAccount(ctx, a)
	if err != nil {
		return core.Account{}, fmt.Errorf("update account: %w", err)
	}
	return updated, nil
}

func (s *FinanceService) DeleteAccount(ctx context.Context, id int64) error {
	if err := s.state.DeleteAccount(ctx, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

// GoalView pairs a goal with its derived progress.
type GoalView struct {
	core.Goal
	Progress progress.GoalProgress `json:"progress"`
}

func (s *FinanceService) Goals() []GoalView {
	goals := s.state.Goals()
	out := make([]GoalView, len(goals))
	for i, g := range goals {
		out[i] = GoalView{Goal: g, Progress: progress.Goal(g)}
	}
	return out
}

func (s *FinanceService) AddGoal(ctx context.Context, g core.Goal) (GoalView, error) {
	added, err := s.state.AddGoal(ctx, g)
	if err != nil {
		return GoalView{}, fmt.Errorf("add goal: %w", err)
	}
	return GoalView{Goal: added, Progress: progress.Goal(added)}, nil
}

func (s *FinanceService) ContributeToGoal(ctx context.Context, id int64, amount decimal.Decimal) (GoalView, error) {
	g, err := s.state.ContributeToGoal(ctx, id, amount)
	if err != nil {
		return GoalView{}, fmt.Errorf("contribute to goal: %w", err)
	}
	slog.InfoContext(ctx, "Goal contribution", "goal_id", id, "amount", amount.String(), "current", g.Current.String())
	return GoalView{Goal: g, Progress: progress.Goal(g)}, nil
}

func (s *FinanceService) DeleteGoal(ctx context.Context, id int64) error {
	if err := s.state.DeleteGoal(ctx, id); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return nil
}

// BudgetView pairs a budget category with its utilization.
type BudgetView struct {
	core.BudgetCategory
	Progress progress.BudgetProgress `json:"progress"`
}

func (s *FinanceService) Budgets() []BudgetView {
	budgets := s.state.Budgets()
	out := make([]BudgetView, len(budgets))
	for i, b := range budgets {
		out[i] = BudgetView{BudgetCategory: b, Progress: progress.Budget(b)}
	}
	return out
}

func (s *FinanceService) SetBudget(ctx context.Context, b core.BudgetCategory) (BudgetView, error) {
	saved, err := s.state.SetBudget(ctx, b)
	if err != nil {
		return BudgetView{}, fmt.Errorf("set budget: %w", err)
	}
	return BudgetView{BudgetCategory: saved, Progress: progress.Budget(saved)}, nil
}

func (s *FinanceService) DeleteBudget(ctx context.Context, name string) error {
	if err := s.state.DeleteBudget(ctx, name); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

func (s *FinanceService) publish(ctx context.Context, e *amqp.LedgerEvent) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "Event publishing disabled, skipping", "type", e.Type)
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", e.Type,
			"event_id", e.ID,
			"error", err)
	}
}

// Close releases the publisher and any registered resources.
func (s *FinanceService) Close() error {
	var errs []error
	for _, nc := range s.closers {
		if err := nc.c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", nc.name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close finance service: %w", err)
	}
	return nil
}
