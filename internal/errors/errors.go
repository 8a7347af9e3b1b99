// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrRateLimited    = errors.New("rate limited")
	ErrSymbolNotFound = errors.New("symbol not found")
	ErrNoData         = errors.New("no data returned")
	ErrConfigInvalid  = errors.New("invalid configuration")
	ErrMissingColumn  = errors.New("required column not found")
	ErrCircuitOpen    = errors.New("circuit breaker is open")
)

// ProviderError represents an error from a market-data provider endpoint.
type ProviderError struct {
	Provider string
	Endpoint string
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("provider error [%s] %s: status %d: %v", e.Provider, e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("provider error [%s] %s: %v", e.Provider, e.Endpoint, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new ProviderError. The HTTP status is mapped onto
// a sentinel when err is nil: 429 becomes ErrRateLimited and 404 becomes
// ErrSymbolNotFound.
func NewProviderError(provider, endpoint string, status int, err error) *ProviderError {
	if err == nil {
		switch status {
		case 429:
			err = ErrRateLimited
		case 404:
			err = ErrSymbolNotFound
		default:
			err = fmt.Errorf("unexpected status %d", status)
		}
	}
	return &ProviderError{
		Provider: provider,
		Endpoint: endpoint,
		Status:   status,
		Err:      err,
	}
}

// DataError represents a data-related error.
type DataError struct {
	DataType string
	Symbol   string
	Message  string
	Err      error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s] %s: %s: %v", e.DataType, e.Symbol, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s] %s: %s", e.DataType, e.Symbol, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(dataType, symbol, message string, err error) *DataError {
	return &DataError{
		DataType: dataType,
		Symbol:   symbol,
		Message:  message,
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

// Unwrap lets callers match configuration failures with ErrConfigInvalid.
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

// SourceError is a fatal failure to read a symbol source.
type SourceError struct {
	Source string
	Path   string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("symbol source [%s] %s: %v", e.Source, e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError creates a new SourceError.
func NewSourceError(source, path string, err error) *SourceError {
	return &SourceError{
		Source: source,
		Path:   path,
		Err:    err,
	}
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

// IsRateLimited reports whether err signals provider throttling.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsFatal reports whether err means the run cannot continue: an unreadable
// symbol source or an invalid configuration. Retrying the next cycle would
// fail the same way.
func IsFatal(err error) bool {
	var se *SourceError
	return errors.As(err, &se) || errors.Is(err, ErrConfigInvalid)
}
