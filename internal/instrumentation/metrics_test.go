package instrumentation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics recorder backed by a manual reader so that
// tests can inspect the recorded data points.
func newTestMetrics(t *testing.T, detailedLabels bool) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"), detailedLabels)
	require.NoError(t, err)
	return m, reader
}

// sumPoints returns the int64 sum data points recorded for the named metric.
func sumPoints(t *testing.T, reader *sdkmetric.ManualReader, name string) []metricdata.DataPoint[int64] {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			return sum.DataPoints
		}
	}
	return nil
}

func total(points []metricdata.DataPoint[int64]) int64 {
	var n int64
	for _, p := range points {
		n += p.Value
	}
	return n
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.RecordHTTPRequest(ctx, "GET", "/emails/fetch", 200, 100*time.Millisecond)
	m.RecordHTTPRequest(ctx, "POST", "/emails/classify", 500, 50*time.Millisecond)

	points := sumPoints(t, reader, "http_requests_total")
	assert.Len(t, points, 2)
	assert.Equal(t, int64(2), total(points))
}

func TestMetrics_RecordGmailOperation(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.RecordGmailOperation(ctx, OperationList, StatusSuccess, 200*time.Millisecond)
	m.RecordGmailOperation(ctx, OperationGet, StatusSuccess, 50*time.Millisecond)
	m.RecordGmailOperation(ctx, OperationGet, StatusError, 50*time.Millisecond)

	points := sumPoints(t, reader, "gmail_api_operations_total")
	assert.Len(t, points, 3)
	assert.Equal(t, int64(3), total(points))
}

func TestMetrics_RecordSkippedMessages(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.RecordSkippedMessages(ctx, 2)
	m.RecordSkippedMessages(ctx, 0)
	m.RecordSkippedMessages(ctx, -1)

	assert.Equal(t, int64(2), total(sumPoints(t, reader, "gmail_messages_skipped_total")))
}

func TestMetrics_RecordLLMRequest(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.RecordLLMRequest(ctx, "gpt-4o", StatusSuccess, 2*time.Second)

	points := sumPoints(t, reader, "llm_requests_total")
	require.Len(t, points, 1)
	model, ok := points[0].Attributes.Value(attribute.Key(attrModel))
	require.True(t, ok)
	assert.Equal(t, "gpt-4o", model.AsString())
}

func TestMetrics_RecordClassified(t *testing.T) {
	tests := []struct {
		name           string
		detailedLabels bool
		wantCategory   bool
	}{
		{name: "aggregated labels", detailedLabels: false, wantCategory: false},
		{name: "detailed labels", detailedLabels: true, wantCategory: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, reader := newTestMetrics(t, tt.detailedLabels)
			m.RecordClassified(context.Background(), "Spam", false)

			points := sumPoints(t, reader, "classified_records_total")
			require.Len(t, points, 1)

			known, ok := points[0].Attributes.Value(attribute.Key(attrKnown))
			require.True(t, ok)
			assert.False(t, known.AsBool())

			_, hasCategory := points[0].Attributes.Value(attribute.Key(attrCategory))
			assert.Equal(t, tt.wantCategory, hasCategory)
		})
	}
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.RecordToolInvocation(ctx, "gmail_fetch_messages", StatusSuccess, 100*time.Millisecond)
	m.RecordToolInvocation(ctx, "classify_messages", StatusError, 50*time.Millisecond)

	assert.Equal(t, int64(2), total(sumPoints(t, reader, "mcp_tool_invocations_total")))
}

func TestMetrics_NoOp_WhenDisabled(t *testing.T) {
	ctx := context.Background()

	provider, err := NewProvider(ctx, Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	metrics := provider.Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil even when disabled")
	}

	// All these should not panic even with nil underlying metrics
	metrics.RecordHTTPRequest(ctx, "GET", "/emails/fetch", 200, 100*time.Millisecond)
	metrics.RecordGmailOperation(ctx, OperationList, StatusSuccess, 200*time.Millisecond)
	metrics.RecordSkippedMessages(ctx, 1)
	metrics.RecordLLMRequest(ctx, "gpt-4o", StatusSuccess, time.Second)
	metrics.RecordClassified(ctx, "Work", true)
	metrics.RecordToolInvocation(ctx, "test_tool", StatusSuccess, 100*time.Millisecond)

	var nilMetrics *Metrics
	nilMetrics.RecordHTTPRequest(ctx, "GET", "/", 200, time.Millisecond)
	nilMetrics.RecordClassified(ctx, "Work", true)
}
