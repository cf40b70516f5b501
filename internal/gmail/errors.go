package gmail

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// ErrorKind classifies fetch failures.
type ErrorKind string

const (
	// KindMissingToken means no access token was supplied.
	KindMissingToken ErrorKind = "missing_token"

	// KindFetchFailed means the listing call (or client construction) failed.
	KindFetchFailed ErrorKind = "fetch_failed"
)

// ErrMissingToken is returned (wrapped in a FetchError) when Fetch is called
// with an empty access token.
var ErrMissingToken = errors.New("access token is required")

// FetchError is the error type returned by Fetcher.Fetch.
type FetchError struct {
	Kind ErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsMissingToken reports whether err is a missing-token fetch error.
func IsMissingToken(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == KindMissingToken
}

// apiErrorDetails extracts the HTTP status and message from a Gmail API
// error. ok is false if err does not wrap a *googleapi.Error.
func apiErrorDetails(err error) (code int, message string, ok bool) {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return 0, "", false
	}
	return gerr.Code, gerr.Message, true
}
