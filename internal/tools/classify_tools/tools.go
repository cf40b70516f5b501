package classify_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/inboxsort/internal/classifier"
	"github.com/teemow/inboxsort/internal/email"
	"github.com/teemow/inboxsort/internal/server"
	"github.com/teemow/inboxsort/internal/tools/common"
)

// ToolClassifyMessages is the name of the classification tool.
const ToolClassifyMessages = "classify_messages"

type classifyResult struct {
	Classified []email.Classified `json:"classified"`
}

// RegisterClassifyTools registers the classification tools with the MCP server.
func RegisterClassifyTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	classifyTool := mcp.NewTool(ToolClassifyMessages,
		mcp.WithDescription("Assign each message one of Important, Promotions, Social, Marketing, Spam or General"),
		mcp.WithArray("emails",
			mcp.Required(),
			mcp.Description("Messages to classify, each with id, from and snippet"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":      map[string]any{"type": "string"},
					"from":    map[string]any{"type": "string"},
					"snippet": map[string]any{"type": "string"},
				},
			}),
		),
		mcp.WithString("openai_key",
			mcp.Required(),
			mcp.Description("API key for the chat-completion service"),
		),
	)

	s.AddTool(classifyTool, common.InstrumentedToolHandler(ToolClassifyMessages, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleClassifyMessages(ctx, request, sc)
		}))

	return nil
}

func handleClassifyMessages(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	records, err := recordsFromArg(args["emails"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	key, _ := args["openai_key"].(string)
	if key == "" {
		return mcp.NewToolResultError("openai_key is required"), nil
	}

	classified, err := sc.Classifier().Classify(ctx, records, key)
	if err != nil {
		return errorResult(err), nil
	}

	return common.JSONResult(classifyResult{Classified: classified})
}

// recordsFromArg accepts the emails argument as an array or as a JSON string
// holding an array.
func recordsFromArg(v any) ([]email.Record, error) {
	var raw []byte
	switch arg := v.(type) {
	case nil:
		return nil, errors.New("emails array is required")
	case string:
		raw = []byte(arg)
	case []any:
		b, err := json.Marshal(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid emails: %w", err)
		}
		raw = b
	default:
		return nil, errors.New("emails must be an array")
	}

	var records []email.Record
	if err := json.Unmarshal(raw, &records); err != nil || records == nil {
		return nil, errors.New("emails must be an array of objects with id, from and snippet")
	}
	return records, nil
}

func errorResult(err error) *mcp.CallToolResult {
	var ce *classifier.Error
	if !errors.As(err, &ce) {
		return mcp.NewToolResultError(fmt.Sprintf("Classification failed: %v", err))
	}

	switch ce.Kind {
	case classifier.KindMalformedModelOutput:
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse model response as JSON. Raw response:\n%s", ce.Raw))
	case classifier.KindEmptyModelResponse:
		return mcp.NewToolResultError("Model returned no text")
	default:
		return mcp.NewToolResultError(fmt.Sprintf("Classification failed: %v", err))
	}
}
