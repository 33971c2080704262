// Package errors provides custom error types for the localchat API client.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// User-facing messages shared by the CLI and the TUI.
const (
	// FallbackMessage is shown when a failed request carries no usable error message.
	FallbackMessage = "An error occurred"
	// ConnectMessage is shown when the chat request could not reach the server.
	ConnectMessage = "Failed to connect to API server. Please ensure it is running."
	// ProbeMessage is shown when the startup connectivity probe fails.
	ProbeMessage = "Cannot connect to API server. Please ensure the server is running."
	// TimeoutMessage is shown when a request outlives the configured timeout.
	TimeoutMessage = "Request timed out"
)

// Sentinel errors for common cases
var (
	ErrRequestFailed = errors.New("request failed")
	ErrNotConnected  = errors.New("api server not reachable")
	ErrEmptyMessage  = errors.New("message is empty")
	ErrNoModel       = errors.New("no model selected")
	ErrBusy          = errors.New("a request is already in flight")
)

// RequestError represents a failed chat request: either the transport failed
// or the server answered with a non-success status.
type RequestError struct {
	StatusCode int
	Endpoint   string
	Message    string
	Cause      error
}

func (e *RequestError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("request error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("request error at %s: %s", e.Endpoint, e.Message)
}

// Unwrap exposes the transport error, if any.
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// Is allows comparison with sentinel errors
func (e *RequestError) Is(target error) bool {
	if target == ErrRequestFailed {
		return true
	}
	_, ok := target.(*RequestError)
	return ok
}

// NewRequestError creates a RequestError for a non-success HTTP status.
// An empty message is replaced with FallbackMessage.
func NewRequestError(statusCode int, endpoint, message string) *RequestError {
	if message == "" {
		message = FallbackMessage
	}
	return &RequestError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// NewTransportError creates a RequestError for a request that never got a response.
func NewTransportError(endpoint string, cause error) *RequestError {
	return &RequestError{
		Endpoint: endpoint,
		Message:  ConnectMessage,
		Cause:    cause,
	}
}

// ConnectivityError represents a failed health probe.
type ConnectivityError struct {
	StatusCode int
	Endpoint   string
	Cause      error
}

func (e *ConnectivityError) Error() string {
	switch {
	case e.StatusCode > 0:
		return fmt.Sprintf("api server at %s responded with status %d", e.Endpoint, e.StatusCode)
	case e.Cause != nil:
		return fmt.Sprintf("api server at %s not reachable: %v", e.Endpoint, e.Cause)
	default:
		return fmt.Sprintf("api server at %s not reachable", e.Endpoint)
	}
}

func (e *ConnectivityError) Unwrap() error {
	return e.Cause
}

// Is allows comparison with sentinel errors
func (e *ConnectivityError) Is(target error) bool {
	if target == ErrNotConnected {
		return true
	}
	_, ok := target.(*ConnectivityError)
	return ok
}

// NewConnectivityError creates a new ConnectivityError
func NewConnectivityError(endpoint string, statusCode int, cause error) *ConnectivityError {
	return &ConnectivityError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Cause:      cause,
	}
}

// ValidationError represents input rejected before any I/O happened.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

// IsRequestError reports whether err is (or wraps) a RequestError.
func IsRequestError(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr)
}

// IsConnectivityError reports whether err is (or wraps) a ConnectivityError.
func IsConnectivityError(err error) bool {
	var connErr *ConnectivityError
	return errors.As(err, &connErr)
}

// IsCanceled reports whether err comes from a cancelled or expired context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// GetHTTPStatus extracts the HTTP status code carried by err, or 0.
func GetHTTPStatus(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode
	}
	var connErr *ConnectivityError
	if errors.As(err, &connErr) {
		return connErr.StatusCode
	}
	return 0
}

// NoticeText returns the single line shown to the user for err.
// Request errors show the server-supplied message, connectivity failures the
// probe warning, and everything else the generic fallback.
func NoticeText(err error) string {
	if err == nil {
		return ""
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		if reqErr.Message == "" {
			return FallbackMessage
		}
		return reqErr.Message
	}
	if IsConnectivityError(err) {
		return ProbeMessage
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return TimeoutMessage
	}
	if IsCanceled(err) {
		return "Request cancelled"
	}
	return FallbackMessage
}
