package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized indicates a missing or rejected authority credential.
// Authenticated workflows must react by clearing the session and
// returning to the unauthenticated entry point.
var ErrUnauthorized = errors.New("unauthorized")

// NetworkError represents a transport-level failure (DNS, timeout,
// connection reset) where no response was received.
type NetworkError struct {
	err error
}

func (e *NetworkError) Error() string {
	return "network error: " + e.err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.err
}

// NewNetworkError wraps a transport failure.
func NewNetworkError(err error) error {
	return &NetworkError{err: err}
}

// ServerError represents a non-2xx response. The body is carried
// verbatim for diagnostics; it is never retried.
type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Body)
}

// DecodeError represents a malformed response body or a missing
// expected field.
type DecodeError struct {
	Field string
	err   error
}

func (e *DecodeError) Error() string {
	if e.err != nil {
		return "decode " + e.Field + ": " + e.err.Error()
	}
	return "missing or malformed field: " + e.Field
}

func (e *DecodeError) Unwrap() error {
	return e.err
}

// NewDecodeError reports a field that was absent or unreadable.
func NewDecodeError(field string, err error) error {
	return &DecodeError{Field: field, err: err}
}

// ValidationError represents a local form-gate failure. It never
// reaches the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

// IsUnauthorized returns true if the error is the unauthorized sentinel.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsNetwork returns true if the error is a transport-level failure.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsServer returns true if the error is a non-2xx server response.
func IsServer(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}

// IsDecode returns true if the error is a response decoding failure.
func IsDecode(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// IsValidation returns true if the error is a local validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
