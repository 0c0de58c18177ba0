// Package state owns the canonical finance collections.
//
// Every mutation copies the current snapshot, applies the change, persists
// the touched collections and then swaps the snapshot in under a lock, so a
// reader never observes a half-applied change. Readers receive copies.
package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pennie/internal/categorize"
	"pennie/internal/core"
	"pennie/internal/kv"
)

// errNoChange aborts a mutation without persisting or bumping the
// generation.
var errNoChange = errors.New("no change")

type snapshot struct {
	transactions []core.Transaction
	accounts     []core.Account
	goals        []core.Goal
	budgets      []core.BudgetCategory
}

func (s snapshot) clone() snapshot {
	out := snapshot{
		transactions: make([]core.Transaction, len(s.transactions)),
		accounts:     append([]core.Account(nil), s.accounts...),
		goals:        make([]core.Goal, len(s.goals)),
		budgets:      append([]core.BudgetCategory(nil), s.budgets...),
	}
	for i, tx := range s.transactions {
		out.transactions[i] = tx.Clone()
	}
	for i, g := range s.goals {
		g.LinkedAccounts = append([]string(nil), g.LinkedAccounts...)
		out.goals[i] = g
	}
	return out
}

// Store is safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	snap       snapshot
	generation uint64
	lastID     int64

	kv      kv.Store
	matcher *categorize.Matcher
	now     func() time.Time
}

type Option func(*Store)

// WithMatcher replaces the default merchant matcher.
func WithMatcher(m *categorize.Matcher) Option {
	return func(s *Store) {
		if m != nil {
			s.matcher = m
		}
	}
}

// WithClock overrides the time source used for IDs and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open loads every collection from store.
func Open(ctx context.Context, store kv.Store, opts ...Option) (*Store, error) {
	s := &Store{
		kv:      store,
		matcher: categorize.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	snap, err := load(ctx, store)
	if err != nil {
		return nil, err
	}
	s.snap = snap
	s.lastID = maxID(s.snap)

	slog.InfoContext(ctx, "State loaded",
		"transactions", len(s.snap.transactions),
		"accounts", len(s.snap.accounts),
		"goals", len(s.snap.goals),
		"budgets", len(s.snap.budgets))
	return s, nil
}

// Reload replaces the in-memory collections with the persisted ones. It is
// meant for processes that only read state written by another process.
func (s *Store) Reload(ctx context.Context) error {
	snap, err := load(ctx, s.kv)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	s.lastID = max(s.lastID, maxID(snap))
	s.generation++
	return nil
}

func load(ctx context.Context, store kv.Store) (snapshot, error) {
	var (
		snap snapshot
		err  error
	)
	if snap.transactions, err = kv.Load[core.Transaction](ctx, store, kv.KeyTransactions); err != nil {
		return snapshot{}, fmt.Errorf("load transactions: %w", err)
	}
	if snap.accounts, err = kv.Load[core.Account](ctx, store, kv.KeyAccounts); err != nil {
		return snapshot{}, fmt.Errorf("load accounts: %w", err)
	}
	if snap.goals, err = kv.Load[core.Goal](ctx, store, kv.KeyGoals); err != nil {
		return snapshot{}, fmt.Errorf("load goals: %w", err)
	}
	if snap.budgets, err = kv.Load[core.BudgetCategory](ctx, store, kv.KeyBudgets); err != nil {
		return snapshot{}, fmt.Errorf("load budget categories: %w", err)
	}
	for i := range snap.transactions {
		if snap.transactions[i].Category == "" {
			snap.transactions[i].Category = core.Other
		}
	}
	// Stored remaining values are not trusted.
	for i := range snap.budgets {
		snap.budgets[i] = snap.budgets[i].Recompute()
	}
	return snap, nil
}

// Matcher returns the matcher used for auto-categorization.
func (s *Store) Matcher() *categorize.Matcher { return s.matcher }

// Generation increases with every committed mutation.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

func (s *Store) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, len(s.snap.transactions))
	for i, tx := range s.snap.transactions {
		out[i] = tx.Clone()
	}
	return out
}

func (s *Store) Accounts() []core.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Account(nil), s.snap.accounts...)
}

func (s *Store) Goals() []core.Goal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone().goals
}

func (s *Store) Budgets() []core.BudgetCategory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.BudgetCategory(nil), s.snap.budgets...)
}

// View returns consistent copies of transactions and accounts taken under a
// single read lock, along with the generation they belong to.
func (s *Store) View() (txs []core.Transaction, accounts []core.Account, generation uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.snap.clone()
	return c.transactions, c.accounts, s.generation
}

// nextID must be called with mu held.
func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// mutate applies fn to a copy of the snapshot and commits it once the
// collections named in keys have been persisted. When fn or persistence
// fails the live snapshot is untouched.
func (s *Store) mutate(ctx context.Context, keys []string, fn func(*snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lastID := s.lastID
	next := s.snap.clone()
	if err := fn(&next); err != nil {
		s.lastID = lastID
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}
	if err := persist(ctx, s.kv, next, keys); err != nil {
		s.lastID = lastID
		return err
	}
	s.snap = next
	s.generation++
	return nil
}

func persist(ctx context.Context, store kv.Store, snap snapshot, keys []string) error {
	for _, key := range keys {
		var err error
		switch key {
		case kv.KeyTransactions:
			err = kv.Save(ctx, store, key, snap.transactions)
		case kv.KeyAccounts:
			err = kv.Save(ctx, store, key, snap.accounts)
		case kv.KeyGoals:
			err = kv.Save(ctx, store, key, snap.goals)
		case kv.KeyBudgets:
			err = kv.Save(ctx, store, key, snap.budgets)
		default:
			err = fmt.Errorf("unknown collection %q", key)
		}
		if err != nil {
			return fmt.Errorf("persist %s: %w", key, err)
		}
	}
	return nil
}

func maxID(s snapshot) int64 {
	var id int64
	for _, tx := range s.transactions {
		id = max(id, tx.ID)
	}
	for _, a := range s.accounts {
		id = max(id, a.ID)
	}
	for _, g := range s.goals {
		id = max(id, g.ID)
	}
	return id
}

func idSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
