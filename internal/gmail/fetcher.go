package gmail

import (
	"context"
	"log/slog"

	"github.com/teemow/inboxsort/internal/email"
	"github.com/teemow/inboxsort/internal/instrumentation"
	"github.com/teemow/inboxsort/internal/logging"
)

// DefaultCount is the number of messages fetched when no positive count is given.
const DefaultCount int64 = 15

// ServiceFactory builds a MessageService authenticated with token.
type ServiceFactory func(ctx context.Context, token string) (MessageService, error)

// Outcome is the result of the detail request for one listed message.
// Exactly one of Record or Err is meaningful.
type Outcome struct {
	ID     string
	Record email.Record
	Err    error
}

// Partition splits outcomes into successful records and failures. Both
// slices keep the order of outcomes.
func Partition(outcomes []Outcome) (records []email.Record, failures []Outcome) {
	records = make([]email.Record, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			failures = append(failures, o)
			continue
		}
		records = append(records, o.Record)
	}
	return records, failures
}

// Fetcher retrieves recent messages for the owner of an access token.
type Fetcher struct {
	newService ServiceFactory
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithLogger sets the logger used for skipped messages and listing failures.
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics *instrumentation.Metrics) FetcherOption {
	return func(f *Fetcher) {
		f.metrics = metrics
	}
}

// WithServiceFactory replaces the Gmail client constructor.
func WithServiceFactory(factory ServiceFactory) FetcherOption {
	return func(f *Fetcher) {
		if factory != nil {
			f.newService = factory
		}
	}
}

// NewFetcher creates a Fetcher that builds Gmail clients from cfg.
func NewFetcher(cfg ClientConfig, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.newService == nil {
		if cfg.Metrics == nil {
			cfg.Metrics = f.metrics
		}
		f.newService = func(ctx context.Context, token string) (MessageService, error) {
			return NewClientForToken(ctx, token, cfg)
		}
	}
	return f
}

// Fetch returns up to count of the most recent messages, newest first.
// A count of zero or less means DefaultCount. Messages whose detail request
// fails are left out of the result.
func (f *Fetcher) Fetch(ctx context.Context, token string, count int64) ([]email.Record, error) {
	if token == "" {
		return nil, &FetchError{Kind: KindMissingToken, Err: ErrMissingToken}
	}
	if count <= 0 {
		count = DefaultCount
	}

	logger := logging.WithOperation(f.logger, "gmail.fetch")

	svc, err := f.newService(ctx, token)
	if err != nil {
		logger.Error("failed to create Gmail client", logging.Err(err))
		return nil, &FetchError{Kind: KindFetchFailed, Err: err}
	}

	ids, err := svc.ListMessageIDs(ctx, count)
	if err != nil {
		attrs := []any{logging.Err(err)}
		if code, msg, ok := apiErrorDetails(err); ok {
			attrs = append(attrs, "http_status", code, "api_message", msg)
		}
		logger.Error("failed to list messages", attrs...)
		return nil, &FetchError{Kind: KindFetchFailed, Err: err}
	}
	if int64(len(ids)) > count {
		ids = ids[:count]
	}

	outcomes, err := collect(ctx, svc, ids)
	if err != nil {
		return nil, &FetchError{Kind: KindFetchFailed, Err: err}
	}

	records, failures := Partition(outcomes)
	for _, failed := range failures {
		logger.Warn("skipping message, detail request failed",
			logging.MessageID(failed.ID),
			logging.Err(failed.Err))
	}
	f.metrics.RecordSkippedMessages(ctx, len(failures))

	logger.Debug("fetched messages",
		logging.Count(len(records)),
		slog.Int("listed", len(ids)),
		slog.Int("skipped", len(failures)))

	return records, nil
}

// collect requests the details of every listed id, one at a time and in
// order. Per-message failures are recorded in the outcome. Cancellation of
// ctx stops the loop and is returned as an error.
func collect(ctx context.Context, svc MessageService, ids []string) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msg, err := svc.GetMessage(ctx, id)
		if err != nil {
			outcomes = append(outcomes, Outcome{ID: id, Err: err})
			continue
		}
		outcomes = append(outcomes, Outcome{ID: id, Record: ToRecord(id, msg)})
	}
	return outcomes, nil
}
