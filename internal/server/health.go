package server

import (
	"net/http"
	"sync/atomic"
	"time"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
)

// HealthChecker serves the liveness and readiness endpoints. Readiness drops
// when SetReady(false) is called at the start of a graceful shutdown, or when
// the ServerContext has been shut down.
type HealthChecker struct {
	ready     atomic.Bool
	sc        *ServerContext // may be nil in tests
	startTime time.Time
	version   string
}

// NewHealthChecker returns a checker that starts out ready.
func NewHealthChecker(sc *ServerContext, version string) *HealthChecker {
	h := &HealthChecker{sc: sc, startTime: time.Now(), version: version}
	h.ready.Store(true)
	return h
}

func (h *HealthChecker) SetReady(ready bool) { h.ready.Store(ready) }

func (h *HealthChecker) IsReady() bool { return h.ready.Load() }

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse is the body of /healthz/detailed. OAuth reports
// whether the Google sign-in routes are configured.
type DetailedHealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Uptime  string `json:"uptime"`
	OAuth   string `json:"oauth"`
}

// checks evaluates each readiness condition and returns the overall status.
func (h *HealthChecker) checks() (string, map[string]string) {
	checks := map[string]string{"ready": healthStatusOK, "shutdown": healthStatusOK}
	status := healthStatusOK

	if !h.ready.Load() {
		checks["ready"] = healthStatusNotReady
		status = healthStatusNotReady
	}
	if h.sc != nil && h.sc.IsShutdown() {
		checks["shutdown"] = healthStatusShuttingDown
		if status == healthStatusOK {
			status = healthStatusShuttingDown
		}
	}
	return status, checks
}

func statusCode(status string) int {
	if status == healthStatusOK {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

// LivenessHandler always answers 200 while the process can serve HTTP.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler answers 503 with the failing checks once the server
// stops accepting traffic.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status, checks := h.checks()
		// /readyz reports every failure as "not ready"; the per-check map
		// carries the reason.
		overall := healthStatusOK
		if status != healthStatusOK {
			overall = healthStatusNotReady
		}
		writeJSON(w, statusCode(status), HealthResponse{Status: overall, Checks: checks})
	})
}

func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status, _ := h.checks()
		oauth := "disabled"
		if h.sc != nil && h.sc.OAuth() != nil {
			oauth = "enabled"
		}
		writeJSON(w, statusCode(status), DetailedHealthResponse{
			Status:  status,
			Version: h.version,
			Uptime:  time.Since(h.startTime).Truncate(time.Second).String(),
			OAuth:   oauth,
		})
	})
}

// RegisterHealthEndpoints mounts /healthz, /readyz and /healthz/detailed.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("GET /healthz", h.LivenessHandler())
	mux.Handle("GET /readyz", h.ReadinessHandler())
	mux.Handle("GET /healthz/detailed", h.DetailedHealthHandler())
}
