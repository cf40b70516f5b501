package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/teemow/inboxsort/internal/instrumentation"
)

const (
	// DefaultBaseURL is the OpenAI API root.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "gpt-4o"

	// DefaultMaxTokens caps the completion length.
	DefaultMaxTokens = 2000

	// maxErrorBody limits how much of an error response is kept.
	maxErrorBody = 4096
)

// ErrEmptyResponse is returned when the provider answers without any text.
var ErrEmptyResponse = errors.New("model returned no text")

// APIError is a non-2xx response from the chat-completion endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("chat completion failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("chat completion failed with status %d: %s", e.StatusCode, e.Message)
}

// Config configures a ChatClient.
type Config struct {
	// BaseURL is the API root, without the /chat/completions suffix.
	BaseURL string

	// Model is the chat model name.
	Model string

	// MaxTokens caps the completion length.
	MaxTokens int

	// HTTPClient is used for requests. Defaults to a client with a two minute
	// timeout and an otelhttp transport.
	HTTPClient *http.Client

	// Metrics records request counts and durations. May be nil.
	Metrics *instrumentation.Metrics
}

// ChatClient sends chat-completion requests through the langchaingo OpenAI
// provider. A provider is built per call because the API key belongs to the
// caller.
type ChatClient struct {
	baseURL   string
	model     string
	maxTokens int
	doer      *statusDoer
	metrics   *instrumentation.Metrics
}

// NewChatClient creates a ChatClient, filling in defaults for zero values.
func NewChatClient(cfg Config) *ChatClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{
			Timeout:   2 * time.Minute,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &ChatClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		doer:      &statusDoer{client: cfg.HTTPClient},
		metrics:   cfg.Metrics,
	}
}

// Model returns the configured model name.
func (c *ChatClient) Model() string {
	return c.model
}

// Complete sends prompt as a single user message with temperature 0 and
// returns the content of the first choice.
func (c *ChatClient) Complete(ctx context.Context, apiKey, prompt string) (text string, err error) {
	ctx, span := instrumentation.StartLLMSpan(ctx, c.model,
		instrumentation.NewSpanAttributeBuilder().WithPromptBytes(len(prompt)).Build()...)
	defer span.End()

	start := time.Now()
	defer func() {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		c.metrics.RecordLLMRequest(ctx, c.model, status, time.Since(start))
	}()

	model, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithBaseURL(c.baseURL),
		openai.WithModel(c.model),
		openai.WithHTTPClient(c.doer),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create chat model: %w", err)
	}

	resp, err := model.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)},
		llms.WithTemperature(0),
		llms.WithMaxTokens(c.maxTokens),
	)
	if err != nil {
		if errors.Is(err, openai.ErrEmptyResponse) {
			return "", ErrEmptyResponse
		}
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}

// statusDoer sends requests for the provider and turns non-2xx answers into
// *APIError, so callers keep the status code and the provider's message.
type statusDoer struct {
	client *http.Client
}

func (d *statusDoer) Do(req *http.Request) (*http.Response, error) {
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, newAPIError(resp)
	}
	return resp, nil
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// newAPIError builds an APIError, preferring the provider's error.message
// over the raw body.
func newAPIError(resp *http.Response) *APIError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var er errorResponse
	if err := json.Unmarshal(raw, &er); err == nil && er.Error.Message != "" {
		apiErr.Message = er.Error.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}
