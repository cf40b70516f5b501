package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/inboxsort/internal/classifier"
	"github.com/teemow/inboxsort/internal/email"
)

// Resource URIs.
const (
	CategoriesURI   = "inboxsort://categories"
	InstructionsURI = "inboxsort://instructions"
)

type categoriesData struct {
	Categories  []string `json:"categories"`
	Default     string   `json:"default"`
	Description string   `json:"description"`
}

// RegisterClassificationResources registers the category vocabulary and the
// model instructions as resources.
func RegisterClassificationResources(s *mcpserver.MCPServer) error {
	categoriesResource := mcp.NewResource(
		CategoriesURI,
		"Email Categories",
		mcp.WithResourceDescription("Categories the model chooses from and the default for missing ones"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(categoriesResource, handleCategories)

	instructionsResource := mcp.NewResource(
		InstructionsURI,
		"Classification Instructions",
		mcp.WithResourceDescription("Instructions sent to the model ahead of the email list"),
		mcp.WithMIMEType("text/plain"),
	)
	s.AddResource(instructionsResource, handleInstructions)

	return nil
}

func handleCategories(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(categoriesData{
		Categories:  email.Categories,
		Default:     email.DefaultCategory,
		Description: "Model answers outside this list are passed through unchanged",
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal categories: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}

func handleInstructions(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "text/plain",
			Text:     classifier.Instructions(),
		},
	}, nil
}
