package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

const (
	// DefaultReadHeaderTimeout is the read header timeout for the API server.
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultWriteTimeout covers the slowest request: a full fetch followed
	// by a model call.
	DefaultWriteTimeout = 3 * time.Minute

	// DefaultIdleTimeout is the idle timeout for the API server.
	DefaultIdleTimeout = 120 * time.Second
)

type api struct {
	sc *ServerContext
}

// NewHandler returns the API handler with CORS, request metrics and tracing.
func NewHandler(sc *ServerContext, health *HealthChecker) http.Handler {
	a := &api{sc: sc}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /emails/fetch", a.handleFetch)
	mux.HandleFunc("POST /emails/classify", a.handleClassify)
	mux.HandleFunc("GET /auth/google", a.handleGoogleAuth)
	mux.HandleFunc("GET /auth/google/callback", a.handleGoogleCallback)
	if health != nil {
		health.RegisterHealthEndpoints(mux)
	}

	var h http.Handler = metricsMiddleware(sc.Metrics(), mux)
	h = corsMiddleware(sc.FrontendURL(), h)
	return tracingMiddleware(h)
}

// HTTPServer runs the API handler.
type HTTPServer struct {
	httpServer *http.Server

	mu       sync.Mutex
	listener net.Listener
}

// NewHTTPServer creates an HTTPServer listening on addr.
func NewHTTPServer(addr string, handler http.Handler) *HTTPServer {
	return &HTTPServer{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: DefaultReadHeaderTimeout,
			WriteTimeout:      DefaultWriteTimeout,
			IdleTimeout:       DefaultIdleTimeout,
		},
	}
}

// Start listens and serves until Shutdown is called. It returns nil after a
// graceful shutdown.
func (s *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	slog.Info("starting HTTP API server", "addr", ln.Addr().String())
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the bound address once Start is listening, otherwise the
// configured address.
func (s *HTTPServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Shutdown gracefully stops the server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	slog.Info("shutting down HTTP API server")
	return s.httpServer.Shutdown(ctx)
}
