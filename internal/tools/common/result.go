package common

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// JSONResult encodes v as an indented JSON text result.
func JSONResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// OptionalPositiveInt reads an optional positive integer argument. JSON
// numbers arrive as float64; fractional values are rejected.
func OptionalPositiveInt(args map[string]any, name string) (int64, bool, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return 0, false, nil
	}

	var n int64
	switch v := raw.(type) {
	case float64:
		if v != float64(int64(v)) {
			return 0, false, fmt.Errorf("%s must be an integer", name)
		}
		n = int64(v)
	case int:
		n = int64(v)
	case int64:
		n = v
	default:
		return 0, false, fmt.Errorf("%s must be a number", name)
	}

	if n <= 0 {
		return 0, false, fmt.Errorf("%s must be a positive integer", name)
	}
	return n, true, nil
}
