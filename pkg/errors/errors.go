// Package errors provides structured error handling for the application
// Following enterprise patterns for error management and observability
package errors

import (
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorCode represents an error code
type ErrorCode string

// Common error codes following RESTful API conventions
const (
	// Client errors (4xx)
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	CodeForbidden        ErrorCode = "FORBIDDEN"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Server errors (5xx)
	CodeInternal      ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError ErrorCode = "DATABASE_ERROR"

	// Generation orchestration errors
	CodeRateLimited         ErrorCode = "RATE_LIMITED"
	CodeQuotaExceeded       ErrorCode = "QUOTA_EXCEEDED"
	CodeProviderTimeout     ErrorCode = "PROVIDER_TIMEOUT"
	CodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	CodeParseFailure        ErrorCode = "PARSE_FAILURE"
	CodeQualityRejected     ErrorCode = "QUALITY_REJECTED"
	CodeCallerNotFound      ErrorCode = "CALLER_NOT_FOUND"
)

// AppError represents an application error with structured information
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the appropriate HTTP status code
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidationFailed:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound, CodeCallerNotFound:
		return http.StatusNotFound
	case CodeRateLimited, CodeQuotaExceeded:
		return http.StatusTooManyRequests
	case CodeQualityRejected:
		return http.StatusUnprocessableEntity
	case CodeProviderTimeout:
		return http.StatusRequestTimeout
	case CodeProviderUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WithMetadata adds metadata to the error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Details:    details,
		StackTrace: getStackTrace(),
	}
}

// Predefined error constructors for common scenarios

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, message, "")
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return NewAppError(CodeInternal, message, "")
}

// NewDatabaseError creates a database error
func NewDatabaseError(operation string, cause error) *AppError {
	return NewAppError(
		CodeDatabaseError,
		"Database operation failed",
		fmt.Sprintf("Failed to %s", operation),
	).WithCause(cause)
}

// Generation orchestration errors

// NewRateLimitedError creates a rate limit rejection with a retry hint
func NewRateLimitedError(retryAfterSeconds int) *AppError {
	return NewAppError(
		CodeRateLimited,
		"Rate limit exceeded",
		fmt.Sprintf("Too many generation requests. Please wait %d seconds before trying again", retryAfterSeconds),
	).WithMetadata("retry_after_seconds", retryAfterSeconds)
}

// NewQuotaExceededError creates a monthly quota rejection. The message states
// how many generations the request needs versus how many remain this month.
func NewQuotaExceededError(requested int, remaining int64, limit int64) *AppError {
	return NewAppError(
		CodeQuotaExceeded,
		"Monthly generation limit reached",
		fmt.Sprintf("need %d more, only %d remaining", requested, remaining),
	).WithMetadata("requested", requested).
		WithMetadata("remaining", remaining).
		WithMetadata("limit", limit)
}

// NewProviderTimeoutError creates a completion deadline error
func NewProviderTimeoutError(cause error) *AppError {
	return NewAppError(
		CodeProviderTimeout,
		"Generation timed out",
		"The completion provider did not respond before the deadline",
	).WithCause(cause).WithMetadata("retry_after_seconds", 30)
}

// NewProviderUnavailableError creates a provider transport/availability error
func NewProviderUnavailableError(cause error) *AppError {
	return NewAppError(
		CodeProviderUnavailable,
		"Completion provider unavailable",
		"The provider is unreachable or throttling requests",
	).WithCause(cause).WithMetadata("retry_after_seconds", 300)
}

// NewParseFailureError creates a response decoding error
func NewParseFailureError(cause error) *AppError {
	return NewAppError(
		CodeParseFailure,
		"Failed to parse provider response",
		"The completion could not be decoded into a recipe",
	).WithCause(cause)
}

// NewQualityRejectedError creates a quality gate rejection carrying the
// failing rule reasons
func NewQualityRejectedError(reasons []string) *AppError {
	return NewAppError(
		CodeQualityRejected,
		"Generated recipe failed quality checks",
		strings.Join(reasons, "; "),
	).WithMetadata("reasons", reasons)
}

// NewBatchSizeLimitError creates a rejection for a batch larger than the
// caller's tier allows
func NewBatchSizeLimitError(requested, max int) *AppError {
	return NewAppError(
		CodeForbidden,
		"Batch size limit exceeded",
		fmt.Sprintf("Free users can generate up to %d recipes at once. Upgrade to Premium for larger batches", max),
	).WithMetadata("requested", requested).WithMetadata("max_batch_size", max)
}

// NewCallerNotFoundError creates a caller record lookup error
func NewCallerNotFoundError(callerID string) *AppError {
	return NewAppError(
		CodeCallerNotFound,
		"Caller not found",
		fmt.Sprintf("No account record exists for caller %s", callerID),
	).WithMetadata("caller_id", callerID)
}

// Utility functions

// Wrap wraps an error as an internal error if it's not already an AppError
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := err.(*AppError); ok {
		return appErr
	}

	return NewInternalError(message).WithCause(err)
}

// Is checks if an error is of a specific error code
func Is(err error, code ErrorCode) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return CodeInternal
}

// getStackTrace captures the current stack trace
func getStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var builder strings.Builder
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "pkg/errors") {
			builder.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}

	return builder.String()
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails represents the error details in API responses
type ErrorDetails struct {
	Code     ErrorCode              `json:"code"`
	Message  string                 `json:"message"`
	Details  string                 `json:"details,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ToErrorResponse converts an AppError to an API error response
func ToErrorResponse(err *AppError) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetails{
			Code:     err.Code,
			Message:  err.Message,
			Details:  err.Details,
			Metadata: err.Metadata,
		},
	}
}
