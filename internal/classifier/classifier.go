package classifier

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/inboxsort/internal/email"
	"github.com/teemow/inboxsort/internal/instrumentation"
	"github.com/teemow/inboxsort/internal/llm"
	"github.com/teemow/inboxsort/internal/logging"
)

// Completer sends one prompt to a chat model and returns its text.
type Completer interface {
	Complete(ctx context.Context, apiKey, prompt string) (string, error)
}

// Classifier labels email records through a Completer.
type Classifier struct {
	completer Completer
	extract   Extractor
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithExtractor replaces the default BracketSpan extractor.
func WithExtractor(extract Extractor) Option {
	return func(c *Classifier) {
		if extract != nil {
			c.extract = extract
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(c *Classifier) {
		c.metrics = metrics
	}
}

// New creates a Classifier.
func New(completer Completer, opts ...Option) *Classifier {
	c := &Classifier{
		completer: completer,
		extract:   BracketSpan,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify assigns a category to each record.
//
// Failure policy:
//   - records == nil or an empty apiKey is KindInvalidRequest; no call is made
//   - a failed model call is KindUpstreamCallFailed, an answer without text
//     is KindEmptyModelResponse
//   - model text without a parseable JSON array is KindMalformedModelOutput,
//     with the text in Error.Raw
//
// Everything else is repaired rather than rejected: missing or mistyped
// fields take defaults, unknown categories pass through, and the result is
// aligned to records by Reconcile. An empty records slice returns an empty
// result without calling the model.
func (c *Classifier) Classify(ctx context.Context, records []email.Record, apiKey string) ([]email.Classified, error) {
	if records == nil {
		return nil, invalidRequest("emails array is required")
	}
	if apiKey == "" {
		return nil, invalidRequest("model API key is required")
	}
	if len(records) == 0 {
		return []email.Classified{}, nil
	}

	ctx, span := instrumentation.StartSpan(ctx, "classifier.classify",
		instrumentation.NewSpanAttributeBuilder().WithCount(len(records)).Build()...)
	defer span.End()

	logger := logging.WithOperation(c.logger, "classify")
	if traceID := instrumentation.GetTraceID(ctx); traceID != "" {
		logger = logger.With(logging.TraceID(traceID))
	}

	out, err := c.classify(ctx, logger, records, apiKey)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}
	instrumentation.SetSpanSuccess(span)
	return out, nil
}

func (c *Classifier) classify(ctx context.Context, logger *slog.Logger, records []email.Record, apiKey string) ([]email.Classified, error) {
	text, err := c.completer.Complete(ctx, apiKey, BuildPrompt(records))
	if err != nil {
		if errors.Is(err, llm.ErrEmptyResponse) {
			logger.Error("model returned no text")
			return nil, &Error{Kind: KindEmptyModelResponse, Err: err}
		}
		attrs := []any{logging.Err(err)}
		var apiErr *llm.APIError
		if errors.As(err, &apiErr) {
			attrs = append(attrs, "http_status", apiErr.StatusCode)
		}
		logger.Error("model call failed", attrs...)
		return nil, &Error{Kind: KindUpstreamCallFailed, Err: err}
	}

	items, err := Parse(text, c.extract)
	if err != nil {
		logger.Error("failed to parse model output",
			logging.Err(err),
			slog.String("raw", logging.Truncate(text, 500)))
		return nil, &Error{Kind: KindMalformedModelOutput, Err: err, Raw: text}
	}

	out, unmatched := Reconcile(records, items)
	instrumentation.AddSpanEvent(trace.SpanFromContext(ctx), "reconciled",
		attribute.Int("parsed", len(items)),
		attribute.Int("unmatched", len(unmatched)))
	if len(unmatched) > 0 {
		logger.Warn("dropping model items that match no input record",
			logging.Count(len(unmatched)))
	}

	for _, r := range out {
		known := email.IsKnownCategory(r.Category)
		if !known {
			logger.Debug("model returned unknown category",
				logging.MessageID(r.ID),
				logging.Category(r.Category))
		}
		c.metrics.RecordClassified(ctx, r.Category, known)
	}

	logger.Debug("classified messages", logging.Count(len(out)))
	return out, nil
}
