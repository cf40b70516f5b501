package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/inboxsort/internal/config"
	"github.com/teemow/inboxsort/internal/instrumentation"
	"github.com/teemow/inboxsort/internal/logging"
	"github.com/teemow/inboxsort/internal/server"
)

// Transport names accepted by --transport.
const (
	transportHTTP           = "http"
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

const shutdownTimeout = 30 * time.Second

type serveOptions struct {
	transport      string
	port           int
	httpAddr       string
	metricsEnabled bool
	metricsAddr    string
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API or an MCP server",
		Long: `Start the inboxsort server.

Supports multiple transport types:
  - http: JSON API for the web dashboard (default)
      GET  /emails/fetch?access_token=...&count=...
      POST /emails/classify
      GET  /auth/google, /auth/google/callback (when GOOGLE_CLIENT_ID is set)
  - stdio: MCP over standard input/output
  - streamable-http: MCP over Streamable HTTP on /mcp

The Google OAuth endpoints need GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET.
Model API keys are supplied per request and never configured on the server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			if cmd.Flags().Changed("port") {
				cfg.App.Port = opts.port
			}
			if cmd.Flags().Changed("metrics-enabled") {
				cfg.Metrics.Enabled = opts.metricsEnabled
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.Metrics.Addr = opts.metricsAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", transportHTTP, "Transport type: http, stdio or streamable-http")
	cmd.Flags().IntVar(&opts.port, "port", 5000, "Port for the HTTP API. Can also use PORT env var.")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&opts.metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func validateTransport(transport string) error {
	switch transport {
	case transportHTTP, transportStdio, transportStreamableHTTP:
		return nil
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: http, stdio, streamable-http)", transport)
	}
}

func runServe(ctx context.Context, cfg *config.Config, opts *serveOptions) error {
	if err := validateTransport(opts.transport); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrConfig, err := instrumentation.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load instrumentation config: %w", err)
	}
	instrConfig.ServiceVersion = version
	if instrConfig.Enabled {
		if err := instrConfig.Validate(); err != nil {
			return fmt.Errorf("invalid instrumentation config: %w", err)
		}
	}

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			slog.Warn("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	var metrics *instrumentation.Metrics
	if provider.Enabled() {
		metrics = provider.Metrics()
	}

	// The metrics port is not opened for stdio; the process belongs to the MCP client.
	if opts.transport != transportStdio && cfg.Metrics.Enabled && provider.Enabled() && provider.UsesPrometheus() {
		metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.Metrics.Addr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil {
				slog.Error("metrics server stopped", logging.Err(err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				slog.Warn("error during metrics server shutdown", logging.Err(err))
			}
		}()
	}

	sc, err := newServerContext(shutdownCtx, cfg, metrics)
	if err != nil {
		return err
	}
	defer func() { _ = sc.Shutdown() }()

	health := server.NewHealthChecker(sc, version)

	switch opts.transport {
	case transportStdio:
		mcpSrv, err := newMCPServer(sc)
		if err != nil {
			return err
		}
		return runStdioServer(mcpSrv)

	case transportStreamableHTTP:
		mcpSrv, err := newMCPServer(sc)
		if err != nil {
			return err
		}
		mux := http.NewServeMux()
		mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(mcpSrv,
			mcpserver.WithEndpointPath("/mcp"),
		))
		health.RegisterHealthEndpoints(mux)

		slog.Info("starting MCP server",
			"transport", opts.transport,
			"addr", opts.httpAddr,
			"endpoint", "/mcp")
		return runHTTPServer(shutdownCtx, server.NewHTTPServer(opts.httpAddr, mux), health)

	default:
		slog.Info("starting inboxsort API",
			"port", cfg.App.Port,
			"frontend_url", cfg.App.FrontendURL,
			"oauth", sc.OAuth() != nil)
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		return runHTTPServer(shutdownCtx, server.NewHTTPServer(addr, server.NewHandler(sc, health)), health)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// runHTTPServer serves until ctx is cancelled or the server fails. Readiness
// is withdrawn before the graceful shutdown starts.
func runHTTPServer(ctx context.Context, srv *server.HTTPServer, health *server.HealthChecker) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := srv.Start(); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping HTTP server")
		health.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	slog.Info("HTTP server gracefully stopped")
	return nil
}
