package http

import (
	"net/http"

	"pennie/internal/core"
	"pennie/internal/services"
)

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		accounts := s.svc.Accounts()
		if accounts == nil {
			accounts = []core.Account{}
		}
		writeJSON(w, http.StatusOK, accounts)
	case http.MethodPost:
		var a core.Account
		if err := decodeJSON(r, &a); err != nil {
			s.writeError(w, r, err)
			return
		}
		a.ID = 0
		a.Name = sanitizeInput(a.Name)
		a.Institution = sanitizeInput(a.Institution)
		added, err := s.svc.AddAccount(r.Context(), a)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, added)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPatch, http.MethodDelete); resp != nil {
		resp.Write(w)
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if r.Method == http.MethodDelete {
		if err := s.svc.DeleteAccount(r.Context(), id); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var a core.Account
	if err := decodeJSON(r, &a); err != nil {
		s.writeError(w, r, err)
		return
	}
	a.ID = id
	a.Name = sanitizeInput(a.Name)
	a.Institution = sanitizeInput(a.Institution)
	updated, err := s.svc.UpdateAccount(r.Context(), a)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		goals := s.svc.Goals()
		if goals == nil {
			goals = []services.GoalView{}
		}
		writeJSON(w, http.StatusOK, goals)
	case http.MethodPost:
		var g core.Goal
		if err := decodeJSON(r, &g); err != nil {
			s.writeError(w, r, err)
			return
		}
		g.ID = 0
		g.Name = sanitizeInput(g.Name)
		added, err := s.svc.AddGoal(r.Context(), g)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, added)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handleGoal(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodDelete); resp != nil {
		resp.Write(w)
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.DeleteGoal(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGoalContribute(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req contributionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !req.Amount.IsPositive() {
		UnprocessableEntityError("contribution amount must be positive").Write(w)
		return
	}
	view, err := s.svc.ContributeToGoal(r.Context(), id, req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		budgets := s.svc.Budgets()
		if budgets == nil {
			budgets = []services.BudgetView{}
		}
		writeJSON(w, http.StatusOK, budgets)
	case http.MethodPost:
		var b core.BudgetCategory
		if err := decodeJSON(r, &b); err != nil {
			s.writeError(w, r, err)
			return
		}
		b.Name = sanitizeInput(b.Name)
		view, err := s.svc.SetBudget(r.Context(), b)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodDelete); resp != nil {
		resp.Write(w)
		return
	}
	if err := s.svc.DeleteBudget(r.Context(), r.PathValue("name")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
