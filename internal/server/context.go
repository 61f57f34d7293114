package server

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/teemow/boxmcp/internal/box"
	"github.com/teemow/boxmcp/internal/collections"
	"github.com/teemow/boxmcp/internal/instrumentation"
	"github.com/teemow/boxmcp/internal/logging"
	"github.com/teemow/boxmcp/internal/tasks"
)

// ServerContext holds the shared state of the MCP server: one Box client per
// configured account, created on first use, plus the instrumentation the
// tool handlers report to.
type ServerContext struct {
	ctx         context.Context
	cancel      context.CancelFunc
	config      *box.File
	clients     map[string]box.Requester // Maps account name to Box client
	clientOpts  []box.Option
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	logger      *slog.Logger
	mu          sync.RWMutex
	shutdown    bool
}

// ContextOption configures a ServerContext.
type ContextOption func(*ServerContext)

// WithMetrics sets the metrics recorder shared by tools and Box clients.
func WithMetrics(m *instrumentation.Metrics) ContextOption {
	return func(sc *ServerContext) {
		sc.metrics = m
	}
}

// WithAuditLogger sets the audit logger used for tool invocations.
func WithAuditLogger(al *instrumentation.AuditLogger) ContextOption {
	return func(sc *ServerContext) {
		sc.auditLogger = al
	}
}

// WithLogger sets the logger for the server and its Box clients.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(sc *ServerContext) {
		sc.logger = logger
	}
}

// WithClientOptions adds options applied to every Box client the context creates.
func WithClientOptions(opts ...box.Option) ContextOption {
	return func(sc *ServerContext) {
		sc.clientOpts = append(sc.clientOpts, opts...)
	}
}

// NewServerContext creates a new server context. config may be nil, in
// which case only the default account configured from the environment is
// available.
func NewServerContext(ctx context.Context, config *box.File, opts ...ContextOption) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	if config == nil {
		config = &box.File{Accounts: map[string]box.Config{}}
	}

	sc := &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		config:  config,
		clients: make(map[string]box.Requester),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(sc)
	}

	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Logger returns the server logger
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Metrics returns the metrics recorder, or nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, or nil when none is configured.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// Accounts lists the configured account names, always including the default.
func (sc *ServerContext) Accounts() []string {
	names := sc.config.AccountNames()
	if _, ok := sc.config.Accounts[box.DefaultAccount]; !ok {
		names = append(names, box.DefaultAccount)
	}
	sort.Strings(names)
	return names
}

// ClientForAccount returns the Box client for an account.
// Creates and caches the client if it doesn't exist yet.
func (sc *ServerContext) ClientForAccount(account string) (box.Requester, error) {
	if account == "" {
		account = box.DefaultAccount
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil, fmt.Errorf("server is shutting down")
	}
	if client, ok := sc.clients[account]; ok {
		return client, nil
	}

	cfg, err := sc.config.Account(account)
	if err != nil {
		return nil, err
	}
	if !cfg.HasCredentials() {
		return nil, fmt.Errorf("no Box credentials for account %s: set a developer token or client credentials in %s", account, box.DefaultConfigPath())
	}

	opts := []box.Option{
		box.WithLogger(sc.logger.With(logging.Account(account))),
		box.WithMetrics(sc.metrics),
	}
	opts = append(opts, sc.clientOpts...)

	client, err := box.NewClient(sc.ctx, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Box client for account %s: %w", account, err)
	}

	sc.logger.Debug("created Box client", logging.Account(account))
	sc.clients[account] = client
	return client, nil
}

// SetClientForAccount sets the Box client for an account
func (sc *ServerContext) SetClientForAccount(account string, client box.Requester) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.clients[account] = client
}

// TasksForAccount returns a task manager bound to the account's client.
func (sc *ServerContext) TasksForAccount(account string) (*tasks.Manager, error) {
	client, err := sc.ClientForAccount(account)
	if err != nil {
		return nil, err
	}
	return tasks.NewManager(client), nil
}

// CollectionsForAccount returns a collection manager bound to the account's client.
func (sc *ServerContext) CollectionsForAccount(account string) (*collections.Manager, error) {
	client, err := sc.ClientForAccount(account)
	if err != nil {
		return nil, err
	}
	return collections.NewManager(client), nil
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context and waits for in-flight Box requests.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	if sc.shutdown {
		sc.mu.Unlock()
		return nil
	}
	sc.shutdown = true
	sc.cancel()
	clients := make([]box.Requester, 0, len(sc.clients))
	for _, c := range sc.clients {
		clients = append(clients, c)
	}
	sc.mu.Unlock()

	for _, c := range clients {
		if w, ok := c.(interface{ Wait() }); ok {
			w.Wait()
		}
	}
	return nil
}
