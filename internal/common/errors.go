package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// NewAppError builds an AppError with an optional cause.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// FailureKind is the closed set of pipeline-fatal failure classes. Providers
// tag their errors with a kind at the point of failure, so no caller ever has
// to sniff error text.
type FailureKind int

const (
	FailureInternal FailureKind = iota // generic processing error
	FailureEndpointConfig              // recognition endpoint is a placeholder or unusable
	FailureAuth                        // recognition provider rejected the credentials
	FailureLLMAuth                     // structuring provider rejected the credentials
)

func (k FailureKind) String() string {
	switch k {
	case FailureEndpointConfig:
		return "endpoint_config"
	case FailureAuth:
		return "auth"
	case FailureLLMAuth:
		return "llm_auth"
	default:
		return "internal"
	}
}

// ProviderError wraps an error from an external provider with its failure kind.
type ProviderError struct {
	Kind FailureKind
	Op   string
	Err  error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError tags err with a failure kind.
func NewProviderError(kind FailureKind, op string, err error) *ProviderError {
	return &ProviderError{Kind: kind, Op: op, Err: err}
}

// ClassifyFailure extracts the failure kind from an error chain, defaulting to
// FailureInternal for untagged errors.
func ClassifyFailure(err error) FailureKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return FailureInternal
}
