package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for the inboxsort package.
const TracerName = "github.com/teemow/inboxsort"

// Span attribute keys.
const (
	// SpanAttrTool is the MCP tool name attribute.
	SpanAttrTool = "mcp.tool"

	// SpanAttrOperation is the Gmail API operation attribute.
	SpanAttrOperation = "gmail.operation"

	// SpanAttrMessageID is the Gmail message identifier.
	SpanAttrMessageID = "gmail.message_id"

	// SpanAttrCount is the number of records requested or processed.
	SpanAttrCount = "inboxsort.count"

	// SpanAttrModel is the chat-completion model name.
	SpanAttrModel = "llm.model"

	// SpanAttrPromptBytes is the prompt size sent to the model.
	SpanAttrPromptBytes = "llm.prompt_bytes"
)

// SpanAttributeBuilder collects span attributes, skipping empty values.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 4),
	}
}

// WithMessageID adds the message id attribute.
func (b *SpanAttributeBuilder) WithMessageID(id string) *SpanAttributeBuilder {
	if id != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrMessageID, id))
	}
	return b
}

// WithCount adds the record count attribute.
func (b *SpanAttributeBuilder) WithCount(count int) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.Int(SpanAttrCount, count))
	return b
}

// WithPromptBytes adds the prompt size attribute.
func (b *SpanAttributeBuilder) WithPromptBytes(n int) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.Int(SpanAttrPromptBytes, n))
	return b
}

// Build returns the collected attributes.
func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

// StartSpan starts an internal span. The caller ends it.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return startSpan(ctx, name, trace.SpanKindInternal, attrs)
}

// StartToolSpan starts a server span for an MCP tool invocation.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return startSpan(ctx, "tool."+toolName, trace.SpanKindServer,
		prepend(attribute.String(SpanAttrTool, toolName), attrs))
}

// StartGmailSpan starts a client span for a Gmail API call.
func StartGmailSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return startSpan(ctx, "gmail."+operation, trace.SpanKindClient,
		prepend(attribute.String(SpanAttrOperation, operation), attrs))
}

// StartLLMSpan starts a client span for a chat-completion call.
func StartLLMSpan(ctx context.Context, model string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return startSpan(ctx, "llm.chat_completion", trace.SpanKindClient,
		prepend(attribute.String(SpanAttrModel, model), attrs))
}

// startSpan resolves the tracer on every call so that a provider installed
// after package init is picked up.
func startSpan(ctx context.Context, name string, kind trace.SpanKind, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(kind),
	)
}

func prepend(first attribute.KeyValue, rest []attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(rest)+1)
	out = append(out, first)
	return append(out, rest...)
}

// SetSpanError marks the span failed. A nil err is ignored.
func SetSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanSuccess marks the span OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddSpanEvent adds a named event to the span.
func AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// GetTraceID returns the hex trace id of the span in ctx, or "" when ctx
// carries none.
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}
