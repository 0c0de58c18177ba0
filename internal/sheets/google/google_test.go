package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"pennie/internal/core"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "missing spreadsheet",
			cfg:     Config{ServiceAccountJSON: "{}"},
			wantErr: "missing spreadsheet ID",
		},
		{
			name:    "missing credentials",
			cfg:     Config{SpreadsheetID: "sheet-1"},
			wantErr: "missing service account credentials",
		},
		{
			name:    "unreadable credentials file",
			cfg:     Config{SpreadsheetID: "sheet-1", ServiceAccountFile: "/nonexistent/sa.json"},
			wantErr: "read service account file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(context.Background(), tt.cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Transactions", 2025, "2025 Transactions"},
		{"  Ledger ", 2024, "2024 Ledger"},
		{"2023 Ledger", 2025, "2023 Ledger"},
		{"", 2025, ""},
		{"1800 Old", 2025, "2025 1800 Old"},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
		}
	}
}

type appendCall struct {
	path string
	rows [][]any
}

func newTestClient(t *testing.T) (*Client, *[]appendCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []appendCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, ":append") {
			http.Error(w, "unexpected request", http.StatusBadRequest)
			return
		}
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mu.Lock()
		calls = append(calls, appendCall{path: r.URL.Path, rows: vr.Values})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"updates": map[string]any{"updatedRange": "Sheet!A1:G1"},
		})
	}))
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return NewWithService(svc, "sheet-1", ""), &calls
}

func TestClient_AppendTransactions(t *testing.T) {
	c, calls := newTestClient(t)
	txs := []core.Transaction{
		{ID: 1, Merchant: "Starbucks", Amount: decimal.RequireFromString("-4.75"), Category: core.FoodDining, Date: "2025-01-15"},
		{ID: 2, Merchant: "Hotel", Amount: decimal.RequireFromString("-300"), Category: core.Travel, Date: "2024-12-30"},
		{ID: 3, Merchant: "Employer", Amount: decimal.RequireFromString("2500"), Category: core.Income, Date: "2025-01-31"},
	}

	ref, err := c.AppendTransactions(context.Background(), txs)
	if err != nil {
		t.Fatalf("AppendTransactions: %v", err)
	}
	if ref != "Sheet!A1:G1,Sheet!A1:G1" {
		t.Errorf("ref = %q", ref)
	}

	if len(*calls) != 2 {
		t.Fatalf("append calls = %d, want one per year", len(*calls))
	}
	first, second := (*calls)[0], (*calls)[1]
	if !strings.Contains(first.path, "2024 Transactions") || len(first.rows) != 1 {
		t.Errorf("first call = %s with %d rows, want 2024 sheet with 1 row", first.path, len(first.rows))
	}
	if !strings.Contains(second.path, "2025 Transactions") || len(second.rows) != 2 {
		t.Errorf("second call = %s with %d rows, want 2025 sheet with 2 rows", second.path, len(second.rows))
	}
	if second.rows[0][2] != "Starbucks" {
		t.Errorf("merchant cell = %v, want Starbucks", second.rows[0][2])
	}
}

func TestClient_AppendNothing(t *testing.T) {
	c, calls := newTestClient(t)
	ref, err := c.AppendTransactions(context.Background(), nil)
	if err != nil || ref != "" {
		t.Fatalf("AppendTransactions(nil) = %q, %v", ref, err)
	}
	if len(*calls) != 0 {
		t.Errorf("append calls = %d, want 0", len(*calls))
	}
}

func TestClient_NilService(t *testing.T) {
	c := &Client{spreadsheetID: "x"}
	_, err := c.AppendTransactions(context.Background(), []core.Transaction{{ID: 1, Merchant: "m", Date: "2025-01-01"}})
	if err == nil {
		t.Fatal("expected error with nil service")
	}
}
