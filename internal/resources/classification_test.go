package resources

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/inboxsort/internal/classifier"
	"github.com/teemow/inboxsort/internal/email"
)

func readRequest(uri string) mcp.ReadResourceRequest {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	return req
}

func TestRegisterClassificationResources(t *testing.T) {
	s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithResourceCapabilities(false, false))
	require.NoError(t, RegisterClassificationResources(s))
}

func TestHandleCategories(t *testing.T) {
	contents, err := handleCategories(context.Background(), readRequest(CategoriesURI))
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(*mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, CategoriesURI, text.URI)
	assert.Equal(t, "application/json", text.MIMEType)

	var got categoriesData
	require.NoError(t, json.Unmarshal([]byte(text.Text), &got))
	assert.Equal(t, email.Categories, got.Categories)
	assert.Equal(t, "General", got.Default)
}

func TestHandleInstructions(t *testing.T) {
	contents, err := handleInstructions(context.Background(), readRequest(InstructionsURI))
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(*mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, classifier.Instructions(), text.Text)
	for _, c := range email.Categories {
		assert.Contains(t, text.Text, c)
	}
}
