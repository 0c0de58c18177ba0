package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"pennie/internal/core"
)

// decodeJSON decodes a single JSON object from the request body into v.
// Unknown fields are rejected.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return err
		case errors.Is(err, io.EOF):
			return badRequest("request body is empty")
		default:
			return badRequest("invalid JSON body: " + err.Error())
		}
	}
	if dec.More() {
		return badRequest("request body must contain a single JSON object")
	}
	return nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest(fmt.Sprintf("invalid id '%s'", raw))
	}
	return id, nil
}

// RequireMethod returns a 405 response unless r uses one of methods.
func RequireMethod(r *http.Request, methods ...string) *ResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// sanitizeInput trims whitespace and drops control characters other than
// tab and newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func sanitizeTags(tags []string) []string {
	out := tags[:0:0]
	for _, t := range tags {
		if t = sanitizeInput(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// transactionRequest is the entry form payload. The ID is assigned by the
// server and ignored when sent.
type transactionRequest struct {
	core.Transaction
	Kind           core.Kind `json:"kind"`
	AutoCategorize bool      `json:"autoCategorize"`
}

func (req *transactionRequest) sanitize() {
	req.ID = 0
	req.Merchant = sanitizeInput(req.Merchant)
	req.Account = sanitizeInput(req.Account)
	req.Location = sanitizeInput(req.Location)
	req.Notes = sanitizeInput(req.Notes)
	req.Date = strings.TrimSpace(req.Date)
	req.Tags = sanitizeTags(req.Tags)
}

// transactionPatch updates individual fields of a stored transaction.
// Omitted fields are left unchanged.
type transactionPatch struct {
	Merchant  *string          `json:"merchant"`
	Amount    *decimal.Decimal `json:"amount"`
	Category  *core.Category   `json:"category"`
	Account   *string          `json:"account"`
	AccountID *int64           `json:"accountId"`
	Date      *string          `json:"date"`
	Location  *string          `json:"location"`
	Notes     *string          `json:"notes"`
	Tags      []string         `json:"tags"`
	Recurring *bool            `json:"recurring"`
	Verified  *bool            `json:"verified"`
}

func (p transactionPatch) apply(tx core.Transaction) core.Transaction {
	if p.Merchant != nil {
		tx.Merchant = sanitizeInput(*p.Merchant)
	}
	if p.Amount != nil {
		tx.Amount = *p.Amount
	}
	if p.Category != nil {
		tx.Category = *p.Category
	}
	if p.Account != nil {
		tx.Account = sanitizeInput(*p.Account)
	}
	if p.AccountID != nil {
		tx.AccountID = *p.AccountID
	}
	if p.Date != nil {
		tx.Date = strings.TrimSpace(*p.Date)
	}
	if p.Location != nil {
		tx.Location = sanitizeInput(*p.Location)
	}
	if p.Notes != nil {
		tx.Notes = sanitizeInput(*p.Notes)
	}
	if p.Tags != nil {
		tx.Tags = sanitizeTags(p.Tags)
	}
	if p.Recurring != nil {
		tx.Recurring = *p.Recurring
	}
	if p.Verified != nil {
		tx.Verified = *p.Verified
	}
	return tx
}

type contributionRequest struct {
	Amount decimal.Decimal `json:"amount"`
}
