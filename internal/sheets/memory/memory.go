package memory

import (
	"context"
	"fmt"
	"sync"

	"pennie/internal/core"
	"pennie/internal/sheets"
)

var _ sheets.TransactionWriter = (*Writer)(nil)

// Writer keeps mirrored rows in memory. It is used by the memory backend
// and in tests.
type Writer struct {
	mu   sync.Mutex
	rows [][]any
}

func New() *Writer { return &Writer{} }

func (w *Writer) AppendTransactions(_ context.Context, txs []core.Transaction) (string, error) {
	if len(txs) == 0 {
		return "", nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	first := len(w.rows) + 1
	for _, tx := range txs {
		w.rows = append(w.rows, sheets.Row(tx))
	}
	return fmt.Sprintf("mem:%d-%d", first, len(w.rows)), nil
}

// Rows returns a copy of every appended row.
func (w *Writer) Rows() [][]any {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([][]any, len(w.rows))
	for i, r := range w.rows {
		out[i] = append([]any(nil), r...)
	}
	return out
}
