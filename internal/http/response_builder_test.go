package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"pennie/internal/core"
	"pennie/internal/csvio"
)

func TestResponseBuilderJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	NewResponse().
		Status(http.StatusCreated).
		Header("X-Custom", "yes").
		JSON(map[string]int{"count": 3}).
		Write(rr)

	if rr.Code != http.StatusCreated {
		t.Errorf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
	if rr.Header().Get("X-Custom") != "yes" {
		t.Error("custom header missing")
	}
	var body map[string]int
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body["count"] != 3 {
		t.Errorf("body = %s (err %v)", rr.Body.String(), err)
	}
}

func TestResponseBuilderMarshalFailure(t *testing.T) {
	rr := httptest.NewRecorder()
	NewResponse().JSON(map[string]any{"bad": make(chan int)}).Write(rr)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
}

func TestResponseBuilderRawBody(t *testing.T) {
	rr := httptest.NewRecorder()
	NewResponse().Body([]byte("a,b\n"), "text/csv").Write(rr)
	if rr.Body.String() != "a,b\n" || rr.Header().Get("Content-Type") != "text/csv" {
		t.Errorf("body %q content type %q", rr.Body.String(), rr.Header().Get("Content-Type"))
	}
}

func TestErrorResponse(t *testing.T) {
	rr := httptest.NewRecorder()
	NotFoundError("transaction not found").Write(rr)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d", rr.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "transaction not found" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"request error", badRequest("invalid id"), http.StatusBadRequest, "invalid id"},
		{"too large", fmt.Errorf("read: %w", &http.MaxBytesError{Limit: 10}), http.StatusRequestEntityTooLarge, "request body too large"},
		{"not found", fmt.Errorf("delete transaction: %w", core.ErrNotFound), http.StatusNotFound, ""},
		{"validation", fmt.Errorf("validate entry: %w", core.ErrSignMismatch), http.StatusUnprocessableEntity, ""},
		{"duplicate", core.ErrDuplicateName, http.StatusUnprocessableEntity, ""},
		{"csv", fmt.Errorf("import: %w", csvio.ErrMissingColumns), http.StatusUnprocessableEntity, ""},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			FromError(tt.err).Write(rr)
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			var body errorBody
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			want := tt.wantMsg
			if want == "" {
				want = tt.err.Error()
			}
			if body.Error != want {
				t.Errorf("message = %q, want %q", body.Error, want)
			}
		})
	}
}
