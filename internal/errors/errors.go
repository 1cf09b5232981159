// Package errors provides structured error types for the tabshift engine.
// All errors include a category, code, message, and retryable flag for
// consistent error handling across components.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by failure class.
type ErrorCategory string

const (
	// ErrCategoryValidation marks malformed requests: the caller can
	// recover by fixing the request. Never retried automatically.
	ErrCategoryValidation ErrorCategory = "VALIDATION"

	// ErrCategoryComputation marks internal invariant violations during
	// reduction, surfaced with the offending column/operation.
	ErrCategoryComputation ErrorCategory = "COMPUTATION"

	// ErrCategorySource marks dataset loading failures (file, database,
	// object storage).
	ErrCategorySource ErrorCategory = "SOURCE"

	// ErrCategoryInternal marks unexpected failures.
	ErrCategoryInternal ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Validation codes
	CodeUnknownTransformation = "UNKNOWN_TRANSFORMATION"
	CodeMissingParameter      = "MISSING_PARAMETER"
	CodeParameterMismatch     = "PARAMETER_MISMATCH"
	CodeUnknownColumn         = "UNKNOWN_COLUMN"
	CodeEmptyGroupBy          = "EMPTY_GROUP_BY"
	CodeUnknownOperator       = "UNKNOWN_OPERATOR"
	CodeUnknownStatistic      = "UNKNOWN_STATISTIC"
	CodeUnknownMethod         = "UNKNOWN_METHOD"
	CodeNonNumericColumn      = "NON_NUMERIC_COLUMN"
	CodeColumnCollision       = "COLUMN_COLLISION"
	CodeTooManyRows           = "TOO_MANY_ROWS"

	// Computation codes
	CodeReductionFailed = "REDUCTION_FAILED"

	// Source codes
	CodeLoadFailed = "LOAD_FAILED"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// TransformError is the structured error type used throughout the engine.
type TransformError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Details   map[string]interface{}
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *TransformError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *TransformError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *TransformError) Is(target error) bool {
	var t *TransformError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new TransformError.
func New(category ErrorCategory, code, message string) *TransformError {
	return &TransformError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// Validation creates a validation error with a formatted message.
func Validation(code, format string, args ...interface{}) *TransformError {
	return New(ErrCategoryValidation, code, fmt.Sprintf(format, args...))
}

// Computation creates a computation error with a formatted message.
func Computation(code, format string, args ...interface{}) *TransformError {
	return New(ErrCategoryComputation, code, fmt.Sprintf(format, args...))
}

// Source creates a source error wrapping a cause. Source errors are
// retryable: transient storage and network failures dominate this category.
func Source(code, message string, cause error) *TransformError {
	return &TransformError{
		Category:  ErrCategorySource,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: true,
	}
}

// WithDetail attaches a key/value pair to the error's details.
func (e *TransformError) WithDetail(key string, value interface{}) *TransformError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithCause attaches an underlying cause.
func (e *TransformError) WithCause(cause error) *TransformError {
	e.Cause = cause
	return e
}

// IsValidation reports whether err is (or wraps) a validation error.
func IsValidation(err error) bool {
	return hasCategory(err, ErrCategoryValidation)
}

// IsComputation reports whether err is (or wraps) a computation error.
func IsComputation(err error) bool {
	return hasCategory(err, ErrCategoryComputation)
}

func hasCategory(err error, cat ErrorCategory) bool {
	var te *TransformError
	if errors.As(err, &te) {
		return te.Category == cat
	}
	return false
}

// HasCode reports whether err is (or wraps) a TransformError with the
// given code.
func HasCode(err error, code string) bool {
	var te *TransformError
	if errors.As(err, &te) {
		return te.Code == code
	}
	return false
}
