// Package sheets mirrors ledger transactions into a spreadsheet.
package sheets

import (
	"context"
	"strings"

	"pennie/internal/core"
)

// TransactionWriter appends transactions to an external spreadsheet and
// returns a reference to the written range.
type TransactionWriter interface {
	AppendTransactions(ctx context.Context, txs []core.Transaction) (ref string, err error)
}

// Header is the column layout of a mirrored row.
var Header = []any{"ID", "Date", "Merchant", "Amount", "Category", "Account", "Tags"}

// Row renders tx in Header order. Amounts are written as numbers so the
// spreadsheet can sum them.
func Row(tx core.Transaction) []any {
	amount, _ := tx.Amount.Float64()
	return []any{
		tx.ID,
		tx.Date,
		tx.Merchant,
		amount,
		string(tx.Category),
		tx.Account,
		strings.Join(tx.Tags, ", "),
	}
}
