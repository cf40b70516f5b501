package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"

	"github.com/teemow/inboxsort/internal/email"
	"github.com/teemow/inboxsort/internal/instrumentation"
)

// Fetcher retrieves recent messages for an access token.
type Fetcher interface {
	Fetch(ctx context.Context, token string, count int64) ([]email.Record, error)
}

// Classifier labels records with the caller's model API key.
type Classifier interface {
	Classify(ctx context.Context, records []email.Record, apiKey string) ([]email.Classified, error)
}

// OAuthFlow runs the Google authorization-code exchange.
type OAuthFlow interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

// Options holds the dependencies of a ServerContext.
type Options struct {
	Fetcher    Fetcher
	Classifier Classifier

	// OAuth is optional; without it the /auth routes answer 503.
	OAuth OAuthFlow

	// FrontendURL receives the access token after the OAuth callback.
	FrontendURL string

	// DefaultCount is used when /emails/fetch has no count parameter.
	DefaultCount int64

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
}

// ServerContext holds the pipeline components shared by all surfaces.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   Options

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, opts Options) (*ServerContext, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if opts.Classifier == nil {
		return nil, errors.New("classifier is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.DefaultCount <= 0 {
		opts.DefaultCount = 15
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		opts:   opts,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

func (sc *ServerContext) Fetcher() Fetcher {
	return sc.opts.Fetcher
}

func (sc *ServerContext) Classifier() Classifier {
	return sc.opts.Classifier
}

// OAuth returns the OAuth flow, or nil when Google OAuth is not configured.
func (sc *ServerContext) OAuth() OAuthFlow {
	return sc.opts.OAuth
}

func (sc *ServerContext) FrontendURL() string {
	return sc.opts.FrontendURL
}

func (sc *ServerContext) DefaultCount() int64 {
	return sc.opts.DefaultCount
}

func (sc *ServerContext) Logger() *slog.Logger {
	return sc.opts.Logger
}

// Metrics returns the metrics recorder. It may be nil; Metrics methods are
// nil-safe.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.opts.Metrics
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
