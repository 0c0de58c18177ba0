package http

import (
	"net/http"
	"strings"

	"pennie/internal/core"
	"pennie/internal/ledger"
	"pennie/internal/log"
	"pennie/internal/services"
)

type transactionList struct {
	Transactions []core.Transaction `json:"transactions"`
	Count        int                `json:"count"`
	Filters      ledger.Filters     `json:"filters"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		f := ledger.ParseFilters(r.URL.Query())
		txs := s.svc.Transactions(f)
		if txs == nil {
			txs = []core.Transaction{}
		}
		writeJSON(w, http.StatusOK, transactionList{Transactions: txs, Count: len(txs), Filters: f})
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.sanitize()

	tx, err := s.svc.AddTransaction(r.Context(), req.Transaction, req.Kind, req.AutoCategorize)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	fields := log.NewFields().
		WithOperation(log.OpCreate).
		WithTransaction(tx.ID, tx.Merchant, tx.Amount.String(), string(tx.Category))
	log.FromContext(r.Context()).WithComponent(log.ComponentLedger).InfoContext(r.Context(), "Transaction created via API", fields.ToSlice()...)

	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodPatch, http.MethodDelete); resp != nil {
		resp.Write(w)
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		tx, ok := s.svc.State().Transaction(id)
		if !ok {
			NotFoundError("transaction not found").Write(w)
			return
		}
		writeJSON(w, http.StatusOK, tx)

	case http.MethodPatch:
		var patch transactionPatch
		if err := decodeJSON(r, &patch); err != nil {
			s.writeError(w, r, err)
			return
		}
		current, ok := s.svc.State().Transaction(id)
		if !ok {
			NotFoundError("transaction not found").Write(w)
			return
		}
		updated, err := s.svc.UpdateTransaction(r.Context(), patch.apply(current))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := s.svc.DeleteTransaction(r.Context(), id); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}
	var edit services.BulkEdit
	if err := decodeJSON(r, &edit); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(edit.IDs) == 0 {
		BadRequestError("ids must not be empty").Write(w)
		return
	}
	if !edit.Delete && edit.Category == "" && len(edit.Tags) == 0 {
		BadRequestError("nothing to do: set category, tags or delete").Write(w)
		return
	}
	edit.Tags = sanitizeTags(edit.Tags)

	res, err := s.svc.ApplyBulk(r.Context(), edit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type categorizeResult struct {
	Changed int  `json:"changed"`
	Queued  bool `json:"queued"`
}

// handleBulkCategorize queues a categorization sweep, or runs it inline when
// no broker is reachable. A queued request answers 202.
func (s *Server) handleBulkCategorize(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}
	changed, queued, err := s.svc.RequestCategorize(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if queued {
		status = http.StatusAccepted
	}
	writeJSON(w, status, categorizeResult{Changed: changed, Queued: queued})
}

type categoryPreview struct {
	Merchant string        `json:"merchant"`
	Category core.Category `json:"category"`
}

func (s *Server) handleCategorizePreview(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	merchant := sanitizeInput(r.URL.Query().Get("merchant"))
	if merchant == "" {
		BadRequestError("merchant query parameter is required").Write(w)
		return
	}
	writeJSON(w, http.StatusOK, categoryPreview{Merchant: merchant, Category: s.svc.Categorize(merchant)})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	sum, err := s.svc.Analytics(r.Context(), ledger.ParseFilters(r.URL.Query()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// contentTypeIs reports whether the request media type equals want.
func contentTypeIs(r *http.Request, want string) bool {
	ct := r.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.EqualFold(strings.TrimSpace(ct), want)
}
