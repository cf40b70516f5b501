package gmail

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/inboxsort/internal/instrumentation"
)

// gmailUser is the special user id addressing the token owner's mailbox.
const gmailUser = "me"

// MessageService is the subset of the Gmail API used by the Fetcher.
type MessageService interface {
	// ListMessageIDs returns the ids of the most recent messages, newest first,
	// at most maxResults of them.
	ListMessageIDs(ctx context.Context, maxResults int64) ([]string, error)

	// GetMessage returns the full representation of one message.
	GetMessage(ctx context.Context, id string) (*gmail.Message, error)
}

// ClientConfig configures how Gmail clients are built.
type ClientConfig struct {
	// Endpoint overrides the Gmail API base URL. Empty means the production endpoint.
	Endpoint string

	// HTTPClient is the base client that carries the OAuth transport.
	// Defaults to a client with timeouts and an otelhttp transport.
	HTTPClient *http.Client

	// Metrics records Gmail API calls. May be nil.
	Metrics *instrumentation.Metrics
}

// defaultHTTPClient is a configured HTTP client with proper timeouts and
// tracing on the outbound transport.
func defaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: otelhttp.NewTransport(&http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}),
	}
}

// Client wraps the Gmail Users service for a single access token.
type Client struct {
	svc     *gmail.UsersService
	metrics *instrumentation.Metrics
}

var _ MessageService = (*Client)(nil)

// NewClientForToken creates a Gmail client that authenticates every request
// with the given access token. The token is not refreshed.
func NewClientForToken(ctx context.Context, token string, cfg ClientConfig) (*Client, error) {
	base := cfg.HTTPClient
	if base == nil {
		base = defaultHTTPClient()
	}

	// oauth2.NewClient wraps the transport of the client stored under oauth2.HTTPClient
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	httpClient.Timeout = base.Timeout

	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{
		svc:     svc.Users,
		metrics: cfg.Metrics,
	}, nil
}

// ListMessageIDs lists at most maxResults message ids with a single call.
func (c *Client) ListMessageIDs(ctx context.Context, maxResults int64) (ids []string, err error) {
	ctx, span := instrumentation.StartGmailSpan(ctx, instrumentation.OperationList,
		instrumentation.NewSpanAttributeBuilder().WithCount(int(maxResults)).Build()...)
	defer span.End()

	start := time.Now()
	defer func() { c.observe(ctx, instrumentation.OperationList, start, err) }()

	res, err := c.svc.Messages.List(gmailUser).MaxResults(maxResults).Context(ctx).Do()
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}

	ids = make([]string, 0, len(res.Messages))
	for _, m := range res.Messages {
		ids = append(ids, m.Id)
	}
	instrumentation.SetSpanSuccess(span)
	return ids, nil
}

// GetMessage fetches one message in full format.
func (c *Client) GetMessage(ctx context.Context, id string) (msg *gmail.Message, err error) {
	ctx, span := instrumentation.StartGmailSpan(ctx, instrumentation.OperationGet,
		instrumentation.NewSpanAttributeBuilder().WithMessageID(id).Build()...)
	defer span.End()

	start := time.Now()
	defer func() { c.observe(ctx, instrumentation.OperationGet, start, err) }()

	msg, err = c.svc.Messages.Get(gmailUser, id).Format("full").Context(ctx).Do()
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}
	instrumentation.SetSpanSuccess(span)
	return msg, nil
}

func (c *Client) observe(ctx context.Context, operation string, start time.Time, err error) {
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	c.metrics.RecordGmailOperation(ctx, operation, status, time.Since(start))
}
