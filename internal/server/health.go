package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
)

// HealthChecker serves the Kubernetes probes of the HTTP transport.
// Readiness goes down on Shutdown and when the ServerContext is shut down.
type HealthChecker struct {
	ready     atomic.Bool
	sc        *ServerContext // may be nil
	startedAt time.Time
}

func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{sc: sc, startedAt: time.Now()}
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

// DetailedHealthResponse is the body of /healthz/detailed. It names the
// configured Box accounts, never their credentials.
type DetailedHealthResponse struct {
	Status   string   `json:"status"`
	Uptime   string   `json:"uptime"`
	Accounts []string `json:"accounts,omitempty"`
}

// RegisterHealthEndpoints mounts /healthz, /readyz and /healthz/detailed.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", h.serveLiveness)
	mux.HandleFunc("/readyz", h.serveReadiness)
	mux.HandleFunc("/healthz/detailed", h.serveDetailed)
}

// checks evaluates the readiness conditions. The overall status is the
// first failing check, or ok.
func (h *HealthChecker) checks() (status string, checks map[string]string) {
	checks = map[string]string{"ready": healthStatusOK, "shutdown": healthStatusOK}
	status = healthStatusOK

	if h.sc != nil && h.sc.IsShutdown() {
		checks["shutdown"] = healthStatusShuttingDown
		status = healthStatusShuttingDown
	}
	if !h.ready.Load() {
		checks["ready"] = healthStatusNotReady
		status = healthStatusNotReady
	}
	return status, checks
}

// The process is alive as long as it answers.
func (h *HealthChecker) serveLiveness(w http.ResponseWriter, _ *http.Request) {
	writeHealth(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
}

func (h *HealthChecker) serveReadiness(w http.ResponseWriter, _ *http.Request) {
	status, checks := h.checks()
	if status != healthStatusOK {
		// Readiness reports a single not-ready state to the probe.
		status = healthStatusNotReady
	}
	writeHealth(w, statusCode(status), HealthResponse{Status: status, Checks: checks})
}

func (h *HealthChecker) serveDetailed(w http.ResponseWriter, _ *http.Request) {
	status, _ := h.checks()
	resp := DetailedHealthResponse{
		Status: status,
		Uptime: time.Since(h.startedAt).Truncate(time.Second).String(),
	}
	if h.sc != nil {
		resp.Accounts = h.sc.Accounts()
	}
	writeHealth(w, statusCode(status), resp)
}

func statusCode(status string) int {
	if status == healthStatusOK {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

func writeHealth(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
