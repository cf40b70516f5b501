// Package instrumentation provides OpenTelemetry instrumentation for inboxsort.
//
// A Provider owns the meter and tracer providers. With the prometheus
// exporter it keeps a private registry, served by PrometheusHandler on the
// dedicated metrics port. The stdout exporters write to stderr, since stdout
// carries command output and the MCP stdio stream. Outbound requests
// propagate W3C trace context.
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Gmail API Metrics:
//   - gmail_api_operations_total: Counter of Gmail API calls by operation and status
//   - gmail_api_operation_duration_seconds: Histogram of Gmail API call durations
//   - gmail_messages_skipped_total: Counter of messages dropped from a fetch because
//     their detail request failed
//
// Model Metrics:
//   - llm_requests_total: Counter of chat-completion calls by model and status
//   - llm_request_duration_seconds: Histogram of chat-completion call durations,
//     with buckets up to two minutes
//   - classified_records_total: Counter of classified records by whether the
//     category is in the known label set
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Spans are created for:
//   - HTTP request handling (otelhttp)
//   - Gmail API calls (gmail.<operation>)
//   - Chat-completion calls (llm.chat_completion)
//   - MCP tool invocations (tool.<name>)
//   - Classification of a batch (classifier.classify), with a "reconciled" event
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: inboxsort)
//   - METRICS_DETAILED_LABELS: Add the raw category label to classified_records_total
//
// # Example Usage
//
//	config, err := instrumentation.LoadConfig()
//	if err != nil {
//		return err
//	}
//	provider, err := instrumentation.NewProvider(ctx, config)
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordGmailOperation(ctx, instrumentation.OperationList, instrumentation.StatusSuccess, time.Since(start))
package instrumentation
