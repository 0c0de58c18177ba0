package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"pennie/internal/core"
)

func TestWriter_AppendTransactions(t *testing.T) {
	w := New()
	ctx := context.Background()

	ref, err := w.AppendTransactions(ctx, nil)
	if err != nil || ref != "" {
		t.Fatalf("empty append = %q, %v; want empty ref", ref, err)
	}

	txs := []core.Transaction{
		{ID: 1, Merchant: "Starbucks", Amount: decimal.RequireFromString("-4.75"), Category: core.FoodDining, Date: "2025-01-15", Tags: []string{"coffee", "work"}},
		{ID: 2, Merchant: "Employer", Amount: decimal.RequireFromString("2500"), Category: core.Income, Date: "2025-01-31"},
	}
	ref, err = w.AppendTransactions(ctx, txs)
	if err != nil {
		t.Fatalf("AppendTransactions: %v", err)
	}
	if ref != "mem:1-2" {
		t.Errorf("ref = %q, want mem:1-2", ref)
	}

	ref, _ = w.AppendTransactions(ctx, txs[:1])
	if ref != "mem:3-3" {
		t.Errorf("second ref = %q, want mem:3-3", ref)
	}

	rows := w.Rows()
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][3] != -4.75 {
		t.Errorf("amount cell = %v, want -4.75", rows[0][3])
	}
	if rows[0][6] != "coffee, work" {
		t.Errorf("tags cell = %v, want %q", rows[0][6], "coffee, work")
	}
}
