package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorType categorizes fetch failures
type ErrorType string

const (
	ErrorTypeNetwork         ErrorType = "network"
	ErrorTypeTimeout         ErrorType = "timeout"
	ErrorTypeStatus          ErrorType = "status"
	ErrorTypeInvalidResponse ErrorType = "invalid_response"
	ErrorTypeCancelled       ErrorType = "cancelled"
)

// FetchError is returned by every Scraper. All types are recoverable at the item level.
type FetchError struct {
	Type       ErrorType
	URL        string
	StatusCode int
	Cause      error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	switch {
	case e.Type == ErrorTypeStatus:
		return fmt.Sprintf("%s: %s returned status %d", e.Type, e.URL, e.StatusCode)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.URL, e.Cause)
	default:
		return fmt.Sprintf("%s: %s", e.Type, e.URL)
	}
}

// Unwrap returns the underlying error
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// classify wraps a transport error in a FetchError
func classify(url string, err error) *FetchError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return &FetchError{Type: ErrorTypeCancelled, URL: url, Cause: err}
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return &FetchError{Type: ErrorTypeTimeout, URL: url, Cause: err}
	default:
		return &FetchError{Type: ErrorTypeNetwork, URL: url, Cause: err}
	}
}
