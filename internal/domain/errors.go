package domain

import (
	"errors"
	"fmt"
	"time"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeTimeout             = "TIMEOUT"
	ErrCodeUpstream            = "UPSTREAM_ERROR"
	ErrCodeUnsupportedProvider = "UNSUPPORTED_PROVIDER"
	ErrCodeStorage             = "STORAGE_ERROR"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrMissingOrgID            = NewDomainError(ErrCodeValidation, "org tier requires a non-empty org_id")
	ErrInvalidEmbeddingShape   = NewDomainError(ErrCodeValidation, "embedding must be an array of numbers")
	ErrEmptyQuestion           = NewDomainError(ErrCodeValidation, "question is required")
	ErrEmptyDocument           = NewDomainError(ErrCodeValidation, "document body is empty")
	ErrInvalidConcurrencyLimit = NewDomainError(ErrCodeValidation, "concurrency limit must be at least 1")
)

// Upstream errors
var (
	ErrEmbeddingUnavailable = NewDomainError(ErrCodeUpstream, "embedding service unavailable")
	ErrEmbeddingShape       = NewDomainError(ErrCodeValidation, "embedding response has invalid shape")
	ErrUnsupportedProvider  = NewDomainError(ErrCodeUnsupportedProvider, "unsupported generation provider")
)

// StepTimeoutError reports that an orchestration stage missed its deadline.
// It carries the stage label so a failed request is attributable.
type StepTimeoutError struct {
	Step    string
	Timeout time.Duration
}

func (e *StepTimeoutError) Error() string {
	return fmt.Sprintf("[%s] step %q exceeded its deadline of %s", ErrCodeTimeout, e.Step, e.Timeout)
}

// NewStepTimeout creates a StepTimeoutError for the given stage.
func NewStepTimeout(step string, timeout time.Duration) *StepTimeoutError {
	return &StepTimeoutError{Step: step, Timeout: timeout}
}

// IsTimeout reports whether err is a stage timeout or a TIMEOUT-coded
// domain error.
func IsTimeout(err error) bool {
	var st *StepTimeoutError
	if errors.As(err, &st) {
		return true
	}
	var de *DomainError
	return errors.As(err, &de) && de.Code == ErrCodeTimeout
}
