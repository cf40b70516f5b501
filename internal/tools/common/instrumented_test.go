package common

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/teemow/inboxsort/internal/email"
	"github.com/teemow/inboxsort/internal/instrumentation"
	"github.com/teemow/inboxsort/internal/server"
)

type nopFetcher struct{}

func (nopFetcher) Fetch(context.Context, string, int64) ([]email.Record, error) { return nil, nil }

type nopClassifier struct{}

func (nopClassifier) Classify(context.Context, []email.Record, string) ([]email.Classified, error) {
	return nil, nil
}

func newServerContext(t *testing.T, metrics *instrumentation.Metrics) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), server.Options{
		Fetcher:    nopFetcher{},
		Classifier: nopClassifier{},
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:    metrics,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func newTestMetrics(t *testing.T) (*instrumentation.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := instrumentation.NewMetrics(mp.Meter("test"), false)
	require.NoError(t, err)
	return m, reader
}

// invocations returns mcp_tool_invocations_total keyed by status.
func invocations(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "mcp_tool_invocations_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, p := range sum.DataPoints {
				status, _ := p.Attributes.Value(attribute.Key("status"))
				out[status.AsString()] += p.Value
			}
		}
	}
	return out
}

func TestInstrumentedToolHandler(t *testing.T) {
	errTool := errors.New("test error")

	tests := []struct {
		name       string
		handler    ToolHandler
		wantErr    error
		wantStatus string
	}{
		{
			name: "success",
			handler: func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return mcp.NewToolResultText("success"), nil
			},
			wantStatus: instrumentation.StatusSuccess,
		},
		{
			name: "go error",
			handler: func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return nil, errTool
			},
			wantErr:    errTool,
			wantStatus: instrumentation.StatusError,
		},
		{
			name: "error result",
			handler: func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return mcp.NewToolResultError("error message"), nil
			},
			wantStatus: instrumentation.StatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics, reader := newTestMetrics(t)
			sc := newServerContext(t, metrics)

			called := false
			wrapped := InstrumentedToolHandler("test_tool", sc, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				called = true
				return tt.handler(ctx, req)
			})

			_, err := wrapped(context.Background(), mcp.CallToolRequest{})
			assert.True(t, called)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, map[string]int64{tt.wantStatus: 1}, invocations(t, reader))
		})
	}
}

func TestInstrumentedToolHandler_NilMetrics(t *testing.T) {
	sc := newServerContext(t, nil)

	wrapped := InstrumentedToolHandler("test_tool", sc, func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	})

	result, err := wrapped(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)
}
