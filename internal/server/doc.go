// Package server provides the MCP server context, health checks and the
// metrics endpoint for boxmcp.
//
// # Key Components
//
// ServerContext manages Box API clients with lazy initialization and caching,
// one per configured account. Tool handlers obtain task and collection
// managers from it.
//
// HealthChecker serves Kubernetes-style probes (/healthz, /readyz,
// /healthz/detailed) next to the streamable HTTP MCP endpoint.
//
// MetricsServer exposes Prometheus metrics on a dedicated port so that
// operational data stays off the MCP listener.
package server
