// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrEmptySymbol        = errors.New("symbol is empty")
	ErrConnectionFailed   = errors.New("connection failed")
	ErrDecode             = errors.New("malformed response")
	ErrNoData             = errors.New("no price data")
	ErrStaleResponse      = errors.New("response superseded by a newer request")
	ErrChartDestroyed     = errors.New("chart instance destroyed")
	ErrConfigInvalid      = errors.New("invalid configuration")
	ErrSessionStore       = errors.New("session store error")
	ErrCatalogUnavailable = errors.New("ticker catalog unavailable")
)

// APIError is a domain error reported by the backend in an {"error": ...} payload.
// The request itself succeeded; the backend refused it.
type APIError struct {
	Endpoint string
	Symbol   string
	Message  string
}

func (e *APIError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("api error [%s] %s: %s", e.Endpoint, e.Symbol, e.Message)
	}
	return fmt.Sprintf("api error [%s]: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError.
func NewAPIError(endpoint, symbol, message string) *APIError {
	return &APIError{
		Endpoint: endpoint,
		Symbol:   symbol,
		Message:  message,
	}
}

// RequestError represents a transport or decoding failure talking to the backend.
type RequestError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("request error [%s] status %d: %v", e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("request error [%s]: %v", e.Endpoint, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// NewRequestError creates a new RequestError.
func NewRequestError(endpoint string, status int, err error) *RequestError {
	return &RequestError{
		Endpoint: endpoint,
		Status:   status,
		Err:      err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrConfigInvalid
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// IsDomain reports whether err is a backend-reported domain error, which the UI
// surfaces as an alert rather than a log line.
func IsDomain(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
