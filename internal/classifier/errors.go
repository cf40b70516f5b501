package classifier

import (
	"errors"
	"fmt"
)

// ErrorKind classifies classification failures.
type ErrorKind string

const (
	// KindInvalidRequest means the caller supplied no records or no API key.
	KindInvalidRequest ErrorKind = "invalid_request"

	// KindUpstreamCallFailed means the model call failed at the transport
	// level or returned a non-2xx status.
	KindUpstreamCallFailed ErrorKind = "upstream_call_failed"

	// KindEmptyModelResponse means the model answered without text.
	KindEmptyModelResponse ErrorKind = "empty_model_response"

	// KindMalformedModelOutput means the model text held no JSON array.
	KindMalformedModelOutput ErrorKind = "malformed_model_output"
)

// Sentinel errors, one per kind, for use with errors.Is.
var (
	ErrInvalidRequest       = errors.New("invalid classification request")
	ErrUpstreamCallFailed   = errors.New("model call failed")
	ErrEmptyModelResponse   = errors.New("model returned no text")
	ErrMalformedModelOutput = errors.New("model output is not a JSON array")
)

var sentinels = map[ErrorKind]error{
	KindInvalidRequest:       ErrInvalidRequest,
	KindUpstreamCallFailed:   ErrUpstreamCallFailed,
	KindEmptyModelResponse:   ErrEmptyModelResponse,
	KindMalformedModelOutput: ErrMalformedModelOutput,
}

// Error is the error type returned by Classify.
type Error struct {
	Kind ErrorKind
	Err  error

	// Raw is the model text, set only for KindMalformedModelOutput.
	Raw string
}

func (e *Error) Error() string {
	if e.Err == nil {
		return sentinels[e.Kind].Error()
	}
	return fmt.Sprintf("%s: %v", sentinels[e.Kind], e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error of the same kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && target == s
}

// IsCallerError reports whether err was caused by invalid caller input.
func IsCallerError(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == KindInvalidRequest
}

func invalidRequest(msg string) *Error {
	return &Error{Kind: KindInvalidRequest, Err: errors.New(msg)}
}
