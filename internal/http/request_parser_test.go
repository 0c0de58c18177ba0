package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"pennie/internal/core"
)

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func decimalFrom(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int // 0 means success
	}{
		{"valid", `{"amount":"12.50"}`, 0},
		{"empty", ``, http.StatusBadRequest},
		{"malformed", `{"amount":`, http.StatusBadRequest},
		{"unknown field", `{"amount":"1","extra":true}`, http.StatusBadRequest},
		{"trailing object", `{"amount":"1"}{"amount":"2"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var req contributionRequest
			err := decodeJSON(r, &req)
			if tt.wantStatus == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !req.Amount.Equal(decimalFrom(t, "12.50")) {
					t.Errorf("amount = %s", req.Amount)
				}
				return
			}
			status, _ := errorStatus(err)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d (err %v)", status, tt.wantStatus, err)
			}
		})
	}
}

func TestDecodeJSONTooLarge(t *testing.T) {
	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":"123456789"}`))
	r.Body = http.MaxBytesReader(rr, r.Body, 4)

	var req contributionRequest
	err := decodeJSON(r, &req)
	var tooLarge *http.MaxBytesError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("err = %v, want MaxBytesError", err)
	}
}

func TestPathID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"42", 42, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.SetPathValue("id", tt.raw)
			got, err := pathID(r)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("id = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRequireMethod(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if resp := RequireMethod(r, http.MethodGet, http.MethodPost); resp != nil {
		t.Fatal("GET should be allowed")
	}

	r = httptest.NewRequest(http.MethodDelete, "/", nil)
	resp := RequireMethod(r, http.MethodGet, http.MethodPost)
	if resp == nil {
		t.Fatal("DELETE should be rejected")
	}
	rr := httptest.NewRecorder()
	resp.Write(rr)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rr.Code)
	}
	if got := rr.Header().Get("Allow"); got != "GET, POST" {
		t.Errorf("Allow = %q", got)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Starbucks  ", "Starbucks"},
		{"Coffee\x00Shop", "CoffeeShop"},
		{"line one\nline two", "line one\nline two"},
		{"tab\there", "tab\there"},
		{"\x07bell", "bell"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeTagsDropsEmpty(t *testing.T) {
	got := sanitizeTags([]string{" travel ", "", "  ", "work"})
	if len(got) != 2 || got[0] != "travel" || got[1] != "work" {
		t.Errorf("tags = %q", got)
	}
}

func TestTransactionRequestSanitize(t *testing.T) {
	req := transactionRequest{Transaction: core.Transaction{
		ID:       99,
		Merchant: "  Shop\x00 ",
		Date:     " 2024-12-18 ",
		Tags:     []string{"", " gift "},
	}}
	req.sanitize()
	if req.ID != 0 {
		t.Errorf("ID = %d, want 0", req.ID)
	}
	if req.Merchant != "Shop" || req.Date != "2024-12-18" {
		t.Errorf("merchant %q date %q", req.Merchant, req.Date)
	}
	if len(req.Tags) != 1 || req.Tags[0] != "gift" {
		t.Errorf("tags = %q", req.Tags)
	}
}

func TestTransactionPatchApply(t *testing.T) {
	base := core.Transaction{
		ID:       7,
		Merchant: "Shop",
		Amount:   decimal.NewFromInt(-10),
		Category: core.Other,
		Date:     "2024-12-18",
		Tags:     []string{"old"},
	}

	category := core.Shopping
	notes := "  birthday  "
	verified := true
	got := transactionPatch{Category: &category, Notes: &notes, Verified: &verified}.apply(base)

	if got.Category != core.Shopping || got.Notes != "birthday" || !got.Verified {
		t.Errorf("patched = %+v", got)
	}
	if got.Merchant != "Shop" || !got.Amount.Equal(base.Amount) || got.ID != 7 {
		t.Errorf("untouched fields changed: %+v", got)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "old" {
		t.Errorf("tags = %q, want unchanged", got.Tags)
	}

	cleared := transactionPatch{Tags: []string{}}.apply(base)
	if len(cleared.Tags) != 0 {
		t.Errorf("empty tag list should clear tags, got %q", cleared.Tags)
	}
}
