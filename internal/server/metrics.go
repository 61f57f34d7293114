package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teemow/boxmcp/internal/instrumentation"
)

const (
	// DefaultMetricsAddr keeps /metrics off the MCP listener.
	DefaultMetricsAddr = ":9090"

	DefaultShutdownTimeout = 30 * time.Second
)

// MetricsServer exposes the Prometheus registry on its own address, so the
// MCP port never serves operational data.
type MetricsServer struct {
	addr string
	srv  *http.Server
}

// NewMetricsServer returns a server for addr, or DefaultMetricsAddr when
// addr is empty. provider must export to Prometheus.
func NewMetricsServer(addr string, provider *instrumentation.Provider) (*MetricsServer, error) {
	switch {
	case provider == nil:
		return nil, errors.New("instrumentation provider is required for metrics server")
	case !provider.Enabled():
		return nil, errors.New("instrumentation provider is not enabled")
	case !provider.PrometheusEnabled():
		return nil, errors.New("metrics server requires the prometheus exporter")
	}
	if addr == "" {
		addr = DefaultMetricsAddr
	}
	return &MetricsServer{addr: addr}, nil
}

func (s *MetricsServer) Addr() string { return s.addr }

// Handler serves /metrics and a /healthz of its own.
func (s *MetricsServer) Handler() http.Handler {
	mux := http.NewServeMux()
	// The OpenTelemetry Prometheus exporter registers with the default
	// registry, which is what promhttp.Handler serves.
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Start blocks until the server stops. It returns http.ErrServerClosed
// after Shutdown.
func (s *MetricsServer) Start() error {
	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       time.Minute,
	}
	slog.Info("starting metrics server", "addr", s.addr)
	return s.srv.ListenAndServe()
}

func (s *MetricsServer) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	slog.Info("shutting down metrics server")
	return s.srv.Shutdown(ctx)
}
