package logging

import (
	"fmt"
	"log/slog"
)

// Attribute keys shared by every package that logs.
const (
	KeyOperation = "operation"
	KeyMessageID = "message_id"
	KeyCount     = "count"
	KeyCategory  = "category"
	KeyStatus    = "status"
	KeyError     = "error"
	KeyTool      = "tool"
	KeyTraceID   = "trace_id"
)

// WithOperation scopes logger to one operation, e.g. "gmail.fetch".
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

func MessageID(id string) slog.Attr { return slog.String(KeyMessageID, id) }

func Count(n int) slog.Attr { return slog.Int(KeyCount, n) }

func Category(category string) slog.Attr { return slog.String(KeyCategory, category) }

func Tool(name string) slog.Attr { return slog.String(KeyTool, name) }

func Status(status string) slog.Attr { return slog.String(KeyStatus, status) }

func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }

// Err returns the error attribute. For a nil err it returns an empty group,
// which handlers drop, so callers can pass a possibly nil error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// SanitizeToken describes a bearer token by length only.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}

// Truncate cuts s to n bytes and marks the cut. n <= 0 disables it.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "...[truncated]"
}
