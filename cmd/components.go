package cmd

import (
	"context"
	"fmt"
	"log/slog"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/inboxsort/internal/classifier"
	"github.com/teemow/inboxsort/internal/config"
	"github.com/teemow/inboxsort/internal/gmail"
	"github.com/teemow/inboxsort/internal/google"
	"github.com/teemow/inboxsort/internal/instrumentation"
	"github.com/teemow/inboxsort/internal/llm"
	"github.com/teemow/inboxsort/internal/resources"
	"github.com/teemow/inboxsort/internal/server"
	"github.com/teemow/inboxsort/internal/tools/classify_tools"
	"github.com/teemow/inboxsort/internal/tools/gmail_tools"
)

// newFetcher builds the Gmail fetcher from configuration.
func newFetcher(cfg *config.Config, metrics *instrumentation.Metrics) *gmail.Fetcher {
	return gmail.NewFetcher(gmail.ClientConfig{
		Endpoint: cfg.Gmail.Endpoint,
		Metrics:  metrics,
	},
		gmail.WithLogger(slog.Default()),
		gmail.WithMetrics(metrics),
	)
}

// newClassifier builds the classifier backed by the chat-completion client.
func newClassifier(cfg *config.Config, metrics *instrumentation.Metrics) *classifier.Classifier {
	chat := llm.NewChatClient(llm.Config{
		BaseURL:   cfg.OpenAI.BaseURL,
		Model:     cfg.OpenAI.Model,
		MaxTokens: cfg.OpenAI.MaxTokens,
		Metrics:   metrics,
	})
	return classifier.New(chat,
		classifier.WithLogger(slog.Default()),
		classifier.WithMetrics(metrics),
	)
}

// newOAuthFlow returns nil when Google OAuth credentials are not configured.
func newOAuthFlow(cfg *config.Config) (server.OAuthFlow, error) {
	if !cfg.Google.Configured() {
		return nil, nil
	}
	flow, err := google.NewFlow(google.OAuthConfig{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to configure Google OAuth: %w", err)
	}
	return flow, nil
}

// newServerContext wires the pipeline components into a ServerContext.
func newServerContext(ctx context.Context, cfg *config.Config, metrics *instrumentation.Metrics) (*server.ServerContext, error) {
	flow, err := newOAuthFlow(cfg)
	if err != nil {
		return nil, err
	}

	opts := server.Options{
		Fetcher:      newFetcher(cfg, metrics),
		Classifier:   newClassifier(cfg, metrics),
		OAuth:        flow,
		FrontendURL:  cfg.App.FrontendURL,
		DefaultCount: cfg.Gmail.DefaultCount,
		Logger:       slog.Default(),
		Metrics:      metrics,
	}
	sc, err := server.NewServerContext(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}
	return sc, nil
}

// newMCPServer creates the MCP server with all tools registered.
func newMCPServer(sc *server.ServerContext) (*mcpserver.MCPServer, error) {
	mcpSrv := mcpserver.NewMCPServer("inboxsort", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)
	if err := registerAllTools(mcpSrv, sc); err != nil {
		return nil, err
	}
	return mcpSrv, nil
}

// registerAllTools registers all MCP tools and resources.
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Gmail tools",
			register: func() error {
				return gmail_tools.RegisterGmailTools(mcpSrv, sc)
			},
		},
		{
			name: "Classify tools",
			register: func() error {
				return classify_tools.RegisterClassifyTools(mcpSrv, sc)
			},
		},
		{
			name: "Classification Resources",
			register: func() error {
				return resources.RegisterClassificationResources(mcpSrv)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}
