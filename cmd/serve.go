package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/teemow/boxmcp/internal/box"
	"github.com/teemow/boxmcp/internal/instrumentation"
	"github.com/teemow/boxmcp/internal/server"
	"github.com/teemow/boxmcp/internal/tools/collections_tools"
	"github.com/teemow/boxmcp/internal/tools/tasks_tools"
)

const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

// MetricsConfig holds configuration for the dedicated metrics server.
type MetricsConfig struct {
	// Enabled starts the metrics server on Addr.
	Enabled bool

	// Addr is the listen address of the metrics server (default ":9090").
	Addr string
}

// serveOptions collects the flags of the serve command.
type serveOptions struct {
	transport        string
	httpAddr         string
	yolo             bool
	disableStreaming bool
	sessionTimeout   time.Duration
	metrics          MetricsConfig
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP (Model Context Protocol) server to provide Box task and
collection tools for AI assistants.

Supports multiple transports:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP server on /mcp

Accounts are read from the --config file; the default account can also be
configured with BOX_* environment variables.

Write operations (creating, updating and deleting tasks, assignments and
folder collections) are only registered with --yolo.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.applyEnv(cmd)
			return runServe(opts)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&opts.yolo, "yolo", false, "Enable write operations (task creation, assignment, deletion). Default is read-only mode.")
	cmd.Flags().BoolVar(&opts.disableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")
	cmd.Flags().DurationVar(&opts.sessionTimeout, "session-timeout", server.DefaultSessionTimeout, "Idle time after which an HTTP session expires (for streamable-http transport)")
	cmd.Flags().BoolVar(&opts.metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// applyEnv fills metrics settings from the environment unless the flag was
// given explicitly.
func (o *serveOptions) applyEnv(cmd *cobra.Command) {
	if !cmd.Flags().Changed("metrics-enabled") {
		if v, ok := os.LookupEnv("METRICS_ENABLED"); ok {
			o.metrics.Enabled = cast.ToBool(v)
		}
	}
	if !cmd.Flags().Changed("metrics-addr") {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			o.metrics.Addr = addr
		}
	}
}

func runServe(opts serveOptions) error {
	if opts.transport != transportStdio && opts.transport != transportStreamableHTTP {
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.transport)
	}

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.Service.Version = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("error during instrumentation shutdown", "error", err)
		}
	}()

	// The metrics server has its own port and is pointless for stdio.
	var metricsServer *server.MetricsServer
	if opts.transport != transportStdio && opts.metrics.Enabled && provider.PrometheusEnabled() {
		metricsServer, err = server.NewMetricsServer(opts.metrics.Addr, provider)
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("error during metrics server shutdown", "error", err)
			}
		}()
	}

	accounts, err := box.LoadFile(rootOpts.configPath)
	if err != nil {
		return err
	}

	ctxOpts := []server.ContextOption{
		server.WithLogger(logger),
		server.WithAuditLogger(provider.AuditLogger(logger)),
	}
	if provider.Enabled() {
		ctxOpts = append(ctxOpts, server.WithMetrics(provider.Metrics()))
	}

	serverContext, err := server.NewServerContext(shutdownCtx, accounts, ctxOpts...)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("error during server context shutdown", "error", err)
		}
	}()

	mcpSrv := mcpserver.NewMCPServer("boxmcp", version,
		mcpserver.WithToolCapabilities(true),
	)

	// readOnly is the inverse of yolo
	readOnly := !opts.yolo
	if readOnly {
		logger.Info("starting server in read-only mode (use --yolo to enable write operations)")
	} else {
		logger.Info("starting server with write operations enabled")
	}

	if err := registerAllTools(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}

	if opts.transport == transportStdio {
		return runStdioServer(mcpSrv)
	}
	return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, opts)
}

// runStdioServer blocks until stdin is closed.
func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools adds the task and collection tools. With readOnly only
// the tools that cannot change Box data are registered.
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	groups := []struct {
		name     string
		register func(*mcpserver.MCPServer, *server.ServerContext, bool) error
	}{
		{"tasks", tasks_tools.RegisterTasksTools},
		{"collections", collections_tools.RegisterCollectionsTools},
	}
	for _, g := range groups {
		if err := g.register(mcpSrv, sc, readOnly); err != nil {
			return fmt.Errorf("failed to register %s tools: %w", g.name, err)
		}
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, opts serveOptions) error {
	httpServer, err := server.NewHTTPServer(mcpSrv, opts.disableStreaming)
	if err != nil {
		return err
	}
	httpServer.SetHealthChecker(server.NewHealthChecker(sc))
	httpServer.SetSessionManager(server.NewSessionIDManagerWithLogger(opts.sessionTimeout, sc.Logger()))
	if m := sc.Metrics(); m != nil {
		httpServer.SetMetrics(m)
	}

	slog.Info("starting boxmcp MCP server",
		"transport", opts.transport,
		"addr", opts.httpAddr,
		"endpoint", server.MCPEndpointPath,
	)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(opts.httpAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
	}

	slog.Info("HTTP server stopped")
	return nil
}
