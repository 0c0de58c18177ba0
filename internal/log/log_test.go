package log

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: ComponentLedger, Output: &buf})

	l.Info("Transaction added", FieldTransaction, 42)
	l.Debug("hidden")
	l.WithComponent(ComponentWorker).Warn("Sweep slow")

	out := buf.String()
	for _, want := range []string{"component=ledger", "transaction_id=42", "component=worker"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug record written at info level")
	}
}

func TestFields(t *testing.T) {
	f := NewFields().
		WithComponent(ComponentHTTP).
		WithRequestID("").
		WithError(nil).
		WithTransaction(7, "Starbucks", "-4.50", "Food & Dining").
		WithHTTPResponse(404, 3)

	if _, ok := f[FieldRequestID]; ok {
		t.Error("empty request ID should be omitted")
	}
	if _, ok := f[FieldError]; ok {
		t.Error("nil error should be omitted")
	}
	if f[FieldSuccess] != false {
		t.Errorf("success = %v, want false for 404", f[FieldSuccess])
	}
	if got := len(f.ToSlice()); got != 2*len(f) {
		t.Errorf("ToSlice() len = %d, want %d", got, 2*len(f))
	}
}

func TestMiddlewareAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: slog.LevelInfo, Component: ComponentHTTP, Output: &buf})

	var got *Logger
	h := Middleware(base)(RequestIDMiddleware(func(context.Context) string { return "req_1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = FromContext(r.Context())
			got.Info("handled")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got == nil || got.Component() != ComponentHTTP {
		t.Fatalf("FromContext returned %+v", got)
	}
	if !strings.Contains(buf.String(), "request_id=req_1") {
		t.Errorf("request ID not attached:\n%s", buf.String())
	}
}

func TestFromContextDefault(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != ComponentApp {
		t.Errorf("FromContext(background) = %+v", l)
	}
}
