package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead); resp != nil {
		resp.Write(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead); resp != nil {
		resp.Write(w)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.ready(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", "error", err)
		ErrorResponse(http.StatusServiceUnavailable, "not ready").Write(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleMetrics writes counters in the Prometheus text exposition format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	var b strings.Builder
	gauge := func(name string, v any) {
		fmt.Fprintf(&b, "%s %v\n", name, v)
	}

	tm := s.tracer.GetMetrics()
	gauge("pennie_http_requests_total", tm.TotalRequests)
	gauge("pennie_http_server_errors_total", tm.ServerErrors)
	gauge("pennie_http_response_time_avg_microseconds", tm.AverageResponseTime)

	if s.limiter != nil {
		rm := s.limiter.GetMetrics()
		gauge("pennie_rate_limit_hits_total", rm.TotalHits)
		gauge("pennie_rate_limit_clients", rm.ClientCount)
	}

	dm := s.detector.GetMetrics()
	gauge("pennie_suspicious_requests_total", dm.SuspiciousRequests)
	gauge("pennie_invalid_ip_attempts_total", dm.InvalidIPAttempts)

	cs := s.svc.SummaryCache().Stats()
	gauge("pennie_analytics_cache_hits_total", cs.Hits)
	gauge("pennie_analytics_cache_misses_total", cs.Misses)
	gauge("pennie_analytics_cache_entries", cs.Size)

	st := s.svc.State()
	gauge("pennie_ledger_generation", st.Generation())
	gauge("pennie_ledger_transactions", len(st.Transactions()))
	gauge("pennie_ledger_accounts", len(st.Accounts()))

	NewResponse().Body([]byte(b.String()), "text/plain; version=0.0.4; charset=utf-8").Write(w)
}
