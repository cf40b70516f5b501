// Package server provides the HTTP API of inboxsort: message fetching,
// classification, the Google OAuth handoff, health checks, and a dedicated
// Prometheus metrics server.
//
// # Routes
//
//   - GET  /emails/fetch?access_token=...&count=N
//   - POST /emails/classify  {"emails": [...], "openaiKey": "..."}
//   - GET  /auth/google and /auth/google/callback
//   - GET  /healthz, /readyz, /healthz/detailed
//
// Errors are returned as {"message": "..."}; a model answer that could not
// be parsed additionally carries the raw text in "raw".
//
// # Key Components
//
// ServerContext holds the stateless pipeline components shared by the HTTP
// handlers and the MCP tools. NewHandler assembles the routes behind CORS
// for the configured frontend origin, request metrics, and otelhttp tracing.
// MetricsServer exposes /metrics on its own port.
package server
