// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrNoData        = errors.New("no data available")
	ErrConfigInvalid = errors.New("invalid configuration")
)

// DataError represents a failure loading or saving series data.
type DataError struct {
	Source  string
	Ref     string
	Message string
	Err     error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s] %s: %s: %v", e.Source, e.Ref, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s] %s: %s", e.Source, e.Ref, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError. Source names the storage layer
// ("sqlite", "csv"); Ref identifies the symbol or file involved.
func NewDataError(source, ref, message string, err error) *DataError {
	return &DataError{
		Source:  source,
		Ref:     ref,
		Message: message,
		Err:     err,
	}
}

// BacktestError represents a failure during a backtest run.
type BacktestError struct {
	Strategy string
	Message  string
	Err      error
}

func (e *BacktestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backtest error [%s]: %s: %v", e.Strategy, e.Message, e.Err)
	}
	return fmt.Sprintf("backtest error [%s]: %s", e.Strategy, e.Message)
}

func (e *BacktestError) Unwrap() error {
	return e.Err
}

// NewBacktestError creates a new BacktestError.
func NewBacktestError(strategy, message string, err error) *BacktestError {
	return &BacktestError{
		Strategy: strategy,
		Message:  message,
		Err:      err,
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
