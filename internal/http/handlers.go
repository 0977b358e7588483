package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"bizai/internal/core"
)

var errTemplatesNotLoaded = errors.New("templates not loaded")

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(health)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})
	fail := func(name string, reason string) {
		checks[name] = "failed: " + reason
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	if s.templates == nil {
		fail("templates", "templates not loaded")
	} else {
		checks["templates"] = "ok"
	}

	if s.catalog == nil || s.catalog.Len() != len(core.Modules()) {
		fail("catalog", "module catalog incomplete")
	} else {
		checks["catalog"] = "ok"
	}

	if _, err := s.journal.Recent(ctx, 1); err != nil {
		fail("journal", err.Error())
	} else {
		checks["journal"] = "ok"
	}

	if err := s.api.Ping(ctx); err != nil {
		fail("analytics_api", err.Error())
	} else {
		checks["analytics_api"] = "ok"
	}

	checks["sessions"] = map[string]interface{}{
		"active": s.sessions.Len(),
		"status": "ok",
	}
	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(response)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()
	uptime := time.Since(s.appMetrics.uptime)

	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP http_server_errors_total Responses with a 5xx status\n")
	fmt.Fprintf(w, "# TYPE http_server_errors_total counter\n")
	fmt.Fprintf(w, "http_server_errors_total %d\n\n", traceMetrics.ServerErrors)

	fmt.Fprintf(w, "# HELP http_requests_in_flight Requests currently being served\n")
	fmt.Fprintf(w, "# TYPE http_requests_in_flight gauge\n")
	fmt.Fprintf(w, "http_requests_in_flight %d\n\n", traceMetrics.InFlight)

	fmt.Fprintf(w, "# HELP http_response_time_microseconds Smoothed average response time\n")
	fmt.Fprintf(w, "# TYPE http_response_time_microseconds gauge\n")
	fmt.Fprintf(w, "http_response_time_microseconds %d\n\n", traceMetrics.AverageResponseTime)

	fmt.Fprintf(w, "# HELP uploads_total Upload attempts by module and outcome\n")
	fmt.Fprintf(w, "# TYPE uploads_total counter\n")
	for _, m := range core.Modules() {
		c := s.appMetrics.uploads[m]
		fmt.Fprintf(w, "uploads_total{module=%q,outcome=\"loaded\"} %d\n", m.String(), atomic.LoadInt64(&c.loaded))
		fmt.Fprintf(w, "uploads_total{module=%q,outcome=\"error\"} %d\n", m.String(), atomic.LoadInt64(&c.failed))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP sessions_active Live visitor sessions\n")
	fmt.Fprintf(w, "# TYPE sessions_active gauge\n")
	fmt.Fprintf(w, "sessions_active %d\n\n", s.sessions.Len())

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", rateLimitMetrics.TotalHits)

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", rateLimitMetrics.ClientCount)

	fmt.Fprintf(w, "# HELP suspicious_requests_total Total suspicious requests detected\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", securityMetrics.SuspiciousRequests)

	fmt.Fprintf(w, "# HELP invalid_ip_attempts_total Requests with an unparsable client address\n")
	fmt.Fprintf(w, "# TYPE invalid_ip_attempts_total counter\n")
	fmt.Fprintf(w, "invalid_ip_attempts_total %d\n\n", securityMetrics.InvalidIPAttempts)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n\n", uptime.Seconds())
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession(w, r)
	s.writePage(w, r, http.StatusOK, "landing.html", landingPage{Nav: s.nav(sess, "")})
}
