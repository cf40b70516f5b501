package gmail_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/inboxsort/internal/email"
	"github.com/teemow/inboxsort/internal/gmail"
	"github.com/teemow/inboxsort/internal/server"
	"github.com/teemow/inboxsort/internal/tools/common"
)

// ToolFetchMessages is the name of the fetch tool.
const ToolFetchMessages = "gmail_fetch_messages"

type fetchResult struct {
	Emails []email.Record `json:"emails"`
}

// RegisterGmailTools registers the Gmail tools with the MCP server.
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	fetchTool := mcp.NewTool(ToolFetchMessages,
		mcp.WithDescription("Fetch the sender and snippet of the most recent Gmail messages"),
		mcp.WithString("access_token",
			mcp.Required(),
			mcp.Description("Google OAuth access token with the gmail.readonly scope"),
		),
		mcp.WithNumber("count",
			mcp.Description(fmt.Sprintf("Number of messages to fetch (default: %d)", sc.DefaultCount())),
		),
	)

	s.AddTool(fetchTool, common.InstrumentedToolHandler(ToolFetchMessages, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFetchMessages(ctx, request, sc)
		}))

	return nil
}

func handleFetchMessages(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	token, _ := args["access_token"].(string)
	if token == "" {
		return mcp.NewToolResultError("access_token is required"), nil
	}

	count, ok, err := common.OptionalPositiveInt(args, "count")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		count = sc.DefaultCount()
	}

	records, err := sc.Fetcher().Fetch(ctx, token, count)
	if err != nil {
		if gmail.IsMissingToken(err) {
			return mcp.NewToolResultError("access_token is required"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch messages: %v", err)), nil
	}

	return common.JSONResult(fetchResult{Emails: records})
}
