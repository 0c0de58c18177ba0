package state

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"pennie/internal/core"
	"pennie/internal/kv"
)

type AddOptions struct {
	// AutoCategorize runs the merchant matcher when the category is Other.
	AutoCategorize bool
}

// AddTransaction records tx with a fresh ID. The linked account balance is
// adjusted by the amount, and for expenses the budget category named after
// the transaction category has its spend increased. A missing account or
// budget is not an error.
func (s *Store) AddTransaction(ctx context.Context, tx core.Transaction, opts AddOptions) (core.Transaction, error) {
	tx = tx.Clone()
	tx.Merchant = strings.TrimSpace(tx.Merchant)
	if tx.Category == "" {
		tx.Category = core.Other
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	err := s.mutate(ctx, []string{kv.KeyTransactions, kv.KeyAccounts, kv.KeyBudgets}, func(next *snapshot) error {
		tx.ID = s.nextID()
		if opts.AutoCategorize && tx.Category == core.Other {
			tx.Category = s.matcher.Categorize(tx.Merchant)
		}

		if i := findAccount(next.accounts, tx); i >= 0 {
			acc := &next.accounts[i]
			acc.Balance = acc.Balance.Add(tx.Amount)
			acc.LastUpdate = s.now().Format(core.DateLayout)
			tx.AccountID = acc.ID
			tx.Account = acc.Name
		} else {
			slog.DebugContext(ctx, "No account matched transaction", "account", tx.Account, "account_id", tx.AccountID)
		}

		if tx.IsExpense() {
			if i := findBudget(next.budgets, string(tx.Category)); i >= 0 {
				next.budgets[i] = next.budgets[i].AddSpend(tx.Amount.Abs())
			}
		}

		next.transactions = append(next.transactions, tx)
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return tx.Clone(), nil
}

// MergeImported appends a batch of already-parsed transactions, assigning
// IDs. Balances and budgets are not adjusted for imported history.
func (s *Store) MergeImported(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	if len(txs) == 0 {
		return nil, nil
	}
	added := make([]core.Transaction, 0, len(txs))
	err := s.mutate(ctx, []string{kv.KeyTransactions}, func(next *snapshot) error {
		for _, tx := range txs {
			tx = tx.Clone()
			if !tx.Category.Valid() {
				tx.Category = core.Other
			}
			tx.ID = s.nextID()
			if tx.AccountID == 0 && tx.Account != "" {
				if i := findAccount(next.accounts, tx); i >= 0 {
					tx.AccountID = next.accounts[i].ID
				}
			}
			next.transactions = append(next.transactions, tx)
			added = append(added, tx.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// UpdateTransaction replaces the stored transaction with the same ID.
// Balances and budgets are left as they are.
func (s *Store) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx = tx.Clone()
	if tx.Category == "" {
		tx.Category = core.Other
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}
	err := s.mutate(ctx, []string{kv.KeyTransactions}, func(next *snapshot) error {
		i := findTransaction(next.transactions, tx.ID)
		if i < 0 {
			return fmt.Errorf("transaction %d: %w", tx.ID, core.ErrNotFound)
		}
		next.transactions[i] = tx
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return tx.Clone(), nil
}

// UpdateCategory sets c on every listed transaction and returns how many
// were found.
func (s *Store) UpdateCategory(ctx context.Context, ids []int64, c core.Category) (int, error) {
	if !c.Valid() {
		return 0, core.ErrUnknownCategory
	}
	return s.updateEach(ctx, ids, func(tx *core.Transaction) {
		tx.Category = c
	})
}

// AddTags appends tags to every listed transaction, skipping tags already
// present (case-insensitively).
func (s *Store) AddTags(ctx context.Context, ids []int64, tags []string) (int, error) {
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}
	return s.updateEach(ctx, ids, func(tx *core.Transaction) {
		for _, t := range clean {
			if !tx.HasTag(t) {
				tx.Tags = append(tx.Tags, t)
			}
		}
	})
}

func (s *Store) SetNotes(ctx context.Context, id int64, notes string) error {
	n, err := s.updateEach(ctx, []int64{id}, func(tx *core.Transaction) {
		tx.Notes = notes
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func (s *Store) updateEach(ctx context.Context, ids []int64, fn func(*core.Transaction)) (int, error) {
	want := idSet(ids)
	n := 0
	err := s.mutate(ctx, []string{kv.KeyTransactions}, func(next *snapshot) error {
		for i := range next.transactions {
			if _, ok := want[next.transactions[i].ID]; ok {
				fn(&next.transactions[i])
				n++
			}
		}
		if n == 0 {
			return errNoChange
		}
		return nil
	})
	return n, err
}

// DeleteTransactions removes the listed transactions immediately and returns
// how many were removed.
func (s *Store) DeleteTransactions(ctx context.Context, ids []int64) (int, error) {
	want := idSet(ids)
	removed := 0
	err := s.mutate(ctx, []string{kv.KeyTransactions}, func(next *snapshot) error {
		before := len(next.transactions)
		next.transactions = slices.DeleteFunc(next.transactions, func(tx core.Transaction) bool {
			_, ok := want[tx.ID]
			return ok
		})
		removed = before - len(next.transactions)
		if removed == 0 {
			return errNoChange
		}
		return nil
	})
	return removed, err
}

// BulkCategorize categorizes every transaction still in Other.
func (s *Store) BulkCategorize(ctx context.Context) (int, error) {
	changed := 0
	err := s.mutate(ctx, []string{kv.KeyTransactions}, func(next *snapshot) error {
		next.transactions, changed = s.matcher.BulkCategorize(next.transactions)
		if changed == 0 {
			return errNoChange
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		slog.InfoContext(ctx, "Bulk categorization applied", "changed", changed)
	}
	return changed, nil
}

// Transaction returns a copy of the transaction with id.
func (s *Store) Transaction(id int64) (core.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := findTransaction(s.snap.transactions, id); i >= 0 {
		return s.snap.transactions[i].Clone(), true
	}
	return core.Transaction{}, false
}

// TransactionsByID returns copies of the listed transactions in stored
// order. Unknown IDs are ignored.
func (s *Store) TransactionsByID(ids []int64) []core.Transaction {
	want := idSet(ids)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Transaction
	for _, tx := range s.snap.transactions {
		if _, ok := want[tx.ID]; ok {
			out = append(out, tx.Clone())
		}
	}
	return out
}

func findTransaction(txs []core.Transaction, id int64) int {
	return slices.IndexFunc(txs, func(tx core.Transaction) bool { return tx.ID == id })
}

// findAccount prefers the account ID and falls back to exact name equality.
func findAccount(accounts []core.Account, tx core.Transaction) int {
	if tx.AccountID != 0 {
		if i := slices.IndexFunc(accounts, func(a core.Account) bool { return a.ID == tx.AccountID }); i >= 0 {
			return i
		}
	}
	if tx.Account == "" {
		return -1
	}
	return slices.IndexFunc(accounts, func(a core.Account) bool { return a.Name == tx.Account })
}

func findBudget(budgets []core.BudgetCategory, name string) int {
	return slices.IndexFunc(budgets, func(b core.BudgetCategory) bool { return b.Name == name })
}
