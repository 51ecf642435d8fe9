package util

import (
	"errors"
	"fmt"
)

// NetworkError represents a transport-level failure: the request never
// produced an HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying transport error
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError represents a non-2xx HTTP response from the backend
type ServerError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface
func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("server error: status %d: %s", e.StatusCode, e.Message)
}

// ParseError represents a malformed payload, either an HTTP body or a
// push channel frame
type ParseError struct {
	What string
	Err  error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.What, e.Err)
}

// Unwrap returns the underlying decode error
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewNetworkError wraps a transport failure
func NewNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err}
}

// NewServerError builds an error from a non-success HTTP status
func NewServerError(status int, message string) *ServerError {
	return &ServerError{StatusCode: status, Message: message}
}

// NewParseError wraps a decode failure
func NewParseError(what string, err error) *ParseError {
	return &ParseError{What: what, Err: err}
}

// IsNetworkError checks if an error is a NetworkError
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsServerError checks if an error is a ServerError
func IsServerError(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}

// AsServerError extracts a ServerError from an error chain
func AsServerError(err error) *ServerError {
	var se *ServerError
	if errors.As(err, &se) {
		return se
	}
	return nil
}
