// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"pennie/internal/log"
	"pennie/internal/middleware/ratelimit"
	"pennie/internal/middleware/security"
	"pennie/internal/middleware/trace"
	"pennie/internal/services"
)

const (
	defaultMaxBodyBytes   = 1 << 20
	defaultMaxImportBytes = 32 << 20
)

type Server struct {
	http.Server
	svc    *services.FinanceService
	logger *log.Logger
	ready  func(context.Context) error

	tracer   *trace.Middleware
	limiter  *ratelimit.Limiter
	detector *security.Detector

	maxBodyBytes   int64
	maxImportBytes int64

	shutdownOnce sync.Once
}

type Option func(*Server)

// WithReadiness sets the check behind /readyz.
func WithReadiness(check func(context.Context) error) Option {
	return func(s *Server) { s.ready = check }
}

// WithRateLimit limits mutating requests per client per minute. Zero
// disables limiting.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) {
		if perMinute > 0 {
			s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: perMinute, WritesOnly: true})
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBodyLimits overrides the request body caps for JSON and CSV uploads.
func WithBodyLimits(body, importBody int64) Option {
	return func(s *Server) {
		if body > 0 {
			s.maxBodyBytes = body
		}
		if importBody > 0 {
			s.maxImportBytes = importBody
		}
	}
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, svc *services.FinanceService, opts ...Option) *Server {
	s := &Server{
		svc:            svc,
		logger:         log.New(log.DefaultConfig()),
		ready:          func(context.Context) error { return nil },
		detector:       security.NewDetector(),
		maxBodyBytes:   defaultMaxBodyBytes,
		maxImportBytes: defaultMaxImportBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(log.ComponentHTTP)
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	mux.HandleFunc("/api/transactions", s.handleTransactions)
	mux.HandleFunc("/api/transactions/{id}", s.handleTransaction)
	mux.HandleFunc("/api/transactions/bulk", s.handleBulk)
	mux.HandleFunc("/api/transactions/categorize", s.handleBulkCategorize)
	mux.HandleFunc("/api/categorize", s.handleCategorizePreview)
	mux.HandleFunc("/api/analytics", s.handleAnalytics)

	mux.HandleFunc("/api/accounts", s.handleAccounts)
	mux.HandleFunc("/api/accounts/{id}", s.handleAccount)
	mux.HandleFunc("/api/goals", s.handleGoals)
	mux.HandleFunc("/api/goals/{id}", s.handleGoal)
	mux.HandleFunc("/api/goals/{id}/contribute", s.handleGoalContribute)
	mux.HandleFunc("/api/budgets", s.handleBudgets)
	mux.HandleFunc("/api/budgets/{name}", s.handleBudget)

	mux.HandleFunc("/api/import", s.handleImport)
	mux.HandleFunc("/api/export.csv", s.handleExportCSV)
	mux.HandleFunc("/api/export.xlsx", s.handleExportXLSX)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("no route for " + r.URL.Path).Write(w)
	})

	var h http.Handler = mux
	h = s.limitBody(h)
	if s.limiter != nil {
		h = s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
		})(h)
	}
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.detector.Middleware(h)
	h = log.RequestIDMiddleware(trace.GetRequestID)(h)
	h = s.tracer.Middleware(h)
	h = log.Middleware(s.logger)(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// limitBody caps request bodies; CSV uploads get a larger allowance.
func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			limit := s.maxBodyBytes
			if r.URL.Path == "/api/import" {
				limit = s.maxImportBytes
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// ListenAndServe treats http.ErrServerClosed as a clean stop.
func (s *Server) ListenAndServe() error {
	err := s.Server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// writeError logs server-side failures and writes the mapped response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, _ := errorStatus(err)
	logger := log.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", log.FieldPath, r.URL.Path, log.FieldError, err)
	} else {
		logger.DebugContext(r.Context(), "Request rejected", log.FieldPath, r.URL.Path, log.FieldError, err)
	}
	FromError(err).Write(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewResponse().Status(status).JSON(v).Write(w)
}
