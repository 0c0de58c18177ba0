package state

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"pennie/internal/core"
	"pennie/internal/kv"
	"pennie/internal/progress"
)

// AddAccount stores a with a fresh ID. Names are unique because legacy
// transactions still reference accounts by name.
func (s *Store) AddAccount(ctx context.Context, a core.Account) (core.Account, error) {
	a.Name = strings.TrimSpace(a.Name)
	if err := a.Validate(); err != nil {
		return core.Account{}, fmt.Errorf("validate account: %w", err)
	}
	a.AccountNumber = core.MaskAccountNumber(a.AccountNumber)

	err := s.mutate(ctx, []string{kv.KeyAccounts}, func(next *snapshot) error {
		if accountByName(next.accounts, a.Name) >= 0 {
			return fmt.Errorf("account %q: %w", a.Name, core.ErrDuplicateName)
		}
		a.ID = s.nextID()
		if a.LastUpdate == "" {
			a.LastUpdate = s.now().Format(core.DateLayout)
		}
		next.accounts = append(next.accounts, a)
		return nil
	})
	if err != nil {
		return core.Account{}, err
	}
	return a, nil
}

// UpdateAccount replaces the account with the same ID. Renaming an account
// also rewrites the display name on transactions linked to it by ID.
func (s *Store) UpdateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	a.Name = strings.TrimSpace(a.Name)
	if err := a.Validate(); err != nil {
		return core.Account{}, fmt.Errorf("validate account: %w", err)
	}
	a.AccountNumber = core.MaskAccountNumber(a.AccountNumber)

	keys := []string{kv.KeyAccounts, kv.KeyTransactions}
	err := s.mutate(ctx, keys, func(next *snapshot) error {
		i := slices.IndexFunc(next.accounts, func(x core.Account) bool { return x.ID == a.ID })
		if i < 0 {
			return fmt.Errorf("account %d: %w", a.ID, core.ErrNotFound)
		}
		if j := accountByName(next.accounts, a.Name); j >= 0 && j != i {
			return fmt.Errorf("account %q: %w", a.Name, core.ErrDuplicateName)
		}
		old := next.accounts[i].Name
		next.accounts[i] = a
		if old != a.Name {
			for k := range next.transactions {
				if next.transactions[k].AccountID == a.ID {
					next.transactions[k].Account = a.Name
				}
			}
		}
		return nil
	})
	if err != nil {
		return core.Account{}, err
	}
	return a, nil
}

// DeleteAccount removes the account. Transactions keep their account name
// for display.
func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	return s.mutate(ctx, []string{kv.KeyAccounts}, func(next *snapshot) error {
		before := len(next.accounts)
		next.accounts = slices.DeleteFunc(next.accounts, func(a core.Account) bool { return a.ID == id })
		if len(next.accounts) == before {
			return fmt.Errorf("account %d: %w", id, core.ErrNotFound)
		}
		return nil
	})
}

// AccountByName looks an account up by its display name.
func (s *Store) AccountByName(name string) (core.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := accountByName(s.snap.accounts, name); i >= 0 {
		return s.snap.accounts[i], true
	}
	return core.Account{}, false
}

func accountByName(accounts []core.Account, name string) int {
	return slices.IndexFunc(accounts, func(a core.Account) bool { return a.Name == name })
}

func (s *Store) AddGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	g.Name = strings.TrimSpace(g.Name)
	if err := g.Validate(); err != nil {
		return core.Goal{}, fmt.Errorf("validate goal: %w", err)
	}
	g.Current = decimal.Max(g.Current, decimal.Zero)
	g.LinkedAccounts = append([]string(nil), g.LinkedAccounts...)

	err := s.mutate(ctx, []string{kv.KeyGoals}, func(next *snapshot) error {
		g.ID = s.nextID()
		next.goals = append(next.goals, g)
		return nil
	})
	if err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

// ContributeToGoal adds amount (negative to withdraw) to the goal's current
// value, never letting it drop below zero.
func (s *Store) ContributeToGoal(ctx context.Context, id int64, amount decimal.Decimal) (core.Goal, error) {
	var out core.Goal
	err := s.mutate(ctx, []string{kv.KeyGoals}, func(next *snapshot) error {
		i := slices.IndexFunc(next.goals, func(g core.Goal) bool { return g.ID == id })
		if i < 0 {
			return fmt.Errorf("goal %d: %w", id, core.ErrNotFound)
		}
		next.goals[i] = progress.Contribute(next.goals[i], amount)
		out = next.goals[i]
		return nil
	})
	if err != nil {
		return core.Goal{}, err
	}
	out.LinkedAccounts = append([]string(nil), out.LinkedAccounts...)
	return out, nil
}

func (s *Store) DeleteGoal(ctx context.Context, id int64) error {
	return s.mutate(ctx, []string{kv.KeyGoals}, func(next *snapshot) error {
		before := len(next.goals)
		next.goals = slices.DeleteFunc(next.goals, func(g core.Goal) bool { return g.ID == id })
		if len(next.goals) == before {
			return fmt.Errorf("goal %d: %w", id, core.ErrNotFound)
		}
		return nil
	})
}

// SetBudget creates or replaces the budget category keyed by b.Name.
// Remaining is always recomputed from Budgeted and Spent.
func (s *Store) SetBudget(ctx context.Context, b core.BudgetCategory) (core.BudgetCategory, error) {
	b.Name = strings.TrimSpace(b.Name)
	if err := b.Validate(); err != nil {
		return core.BudgetCategory{}, fmt.Errorf("validate budget: %w", err)
	}
	if b.Trend == "" {
		b.Trend = core.TrendStable
	}
	b = b.Recompute()

	err := s.mutate(ctx, []string{kv.KeyBudgets}, func(next *snapshot) error {
		if i := findBudget(next.budgets, b.Name); i >= 0 {
			next.budgets[i] = b
			return nil
		}
		next.budgets = append(next.budgets, b)
		return nil
	})
	if err != nil {
		return core.BudgetCategory{}, err
	}
	return b, nil
}

func (s *Store) DeleteBudget(ctx context.Context, name string) error {
	return s.mutate(ctx, []string{kv.KeyBudgets}, func(next *snapshot) error {
		i := findBudget(next.budgets, name)
		if i < 0 {
			return fmt.Errorf("budget %q: %w", name, core.ErrNotFound)
		}
		next.budgets = slices.Delete(next.budgets, i, i+1)
		return nil
	})
}
