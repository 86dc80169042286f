// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrNoCommit is returned by the extractor when the page has no commit block.
// It is an expected, empty result rather than a failure.
var ErrNoCommit = errors.New("no commit found on page")

// ErrMissingConfig is wrapped with the name of a required configuration key.
var ErrMissingConfig = errors.New("missing required configuration")

// FetchError is returned when the source page could not be retrieved.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError is returned when the commit block exists but a required field
// is missing or malformed.
type ParseError struct {
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse commit field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("parse commit field %q: missing", e.Field)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DeliveryError is returned when the webhook rejected or never received a notification.
type DeliveryError struct {
	CommitID   int64
	StatusCode int
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("deliver commit %d: webhook returned status %d", e.CommitID, e.StatusCode)
	}
	return fmt.Sprintf("deliver commit %d: %v", e.CommitID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// MissingConfig reports a required configuration key that was not set.
func MissingConfig(key string) error {
	return fmt.Errorf("%w: %s", ErrMissingConfig, key)
}
