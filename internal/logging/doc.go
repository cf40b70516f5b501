// Package logging provides structured logging utilities for inboxsort.
//
// Logging goes through the standard library's slog package. This package
// builds the process-wide handler from configuration and centralizes the
// attribute names used across the fetch and classify pipeline so that log
// lines can be correlated and queried consistently.
//
// # Usage Patterns
//
// Build and install the default logger once at startup:
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
// Attach standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "gmail.fetch")
//	logger.Warn("skipping message",
//	    logging.MessageID(id),
//	    logging.Err(err))
//
// # Security Considerations
//
// Bearer tokens and model API keys are never logged. Use SanitizeToken when a
// log line needs to show whether a credential was present.
package logging
