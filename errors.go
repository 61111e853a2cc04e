package aigen

import (
	"errors"
	"fmt"

	"github.com/feitianbubu/aigen/adapters"
)

// Common errors
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrCapabilityMismatch   = errors.New("capability mismatch")
	ErrUnrecognizedImage    = errors.New("unrecognized image response")
	ErrNoStatusURL          = errors.New("job has no status url")
)

// TransportError is a failure before a complete response arrived: DNS, connect, timeout or a
// broken stream.
type TransportError struct {
	Op      string
	URL     string
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	kind := "transport error"
	if e.Timeout {
		kind = "transport timeout"
	}
	return fmt.Sprintf("%s: %s %s: %v", kind, e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a non-2xx response from a provider. Message holds the start of the body.
type APIError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Provider string `json:"provider,omitempty"`
}

func (e *APIError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("[%s] API error %d: %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// ParseError means a response was not JSON or lacked the field its shape requires.
type ParseError = adapters.ParseError

// ValidationError represents a request or configuration validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsRetryableError determines if an error is retryable
func IsRetryableError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		// Retry on server errors (5xx) and rate limiting (429)
		return apiErr.Code >= 500 || apiErr.Code == 429
	}

	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// fromStatusError converts a parser status failure into an APIError for the named provider.
func fromStatusError(err error, provider string) error {
	var se *adapters.StatusError
	if errors.As(err, &se) {
		return &APIError{Code: se.Code, Message: se.Body, Provider: provider}
	}
	return err
}
