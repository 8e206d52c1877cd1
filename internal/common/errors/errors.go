// Package errors provides standardized error handling for the analysis engine.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeNetworkFailure    ErrorCode = "NETWORK_FAILURE"
	ErrCodeAuthRequired      ErrorCode = "AUTH_REQUIRED"
	ErrCodeBackendRejected   ErrorCode = "BACKEND_REJECTED"
	ErrCodeMalformedPayload  ErrorCode = "MALFORMED_PAYLOAD"
	ErrCodeAnalyzeFailed     ErrorCode = "ANALYZE_FAILED"
	ErrCodeOptimizeFailed    ErrorCode = "OPTIMIZE_FAILED"
	ErrCodeRescoreFailed     ErrorCode = "RESCORE_FAILED"
	ErrCodeDeleteFailed      ErrorCode = "DELETE_FAILED"
	ErrCodeStorageReadFailed ErrorCode = "STORAGE_READ_FAILED"
	ErrCodeStorageWriteFail  ErrorCode = "STORAGE_WRITE_FAILED"
	ErrCodeNoAnalysis        ErrorCode = "NO_ANALYSIS_AVAILABLE"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Status    int                    `json:"status,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is makes StandardError comparable by code via errors.Is.
func (e *StandardError) Is(target error) bool {
	var se *StandardError
	if errors.As(target, &se) {
		return e.Code == se.Code
	}
	return false
}

// CodeOf extracts the error code, or empty when err is not a StandardError.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsRetryable reports whether the error is safe to retry as-is.
func IsRetryable(err error) bool {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// NewNetworkFailureError creates a retryable transport-level error.
func NewNetworkFailureError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNetworkFailure,
		Message:   "Network error while contacting backend",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuthRequiredError creates a non-retryable error that forces re-authentication.
func NewAuthRequiredError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthRequired,
		Message:   "Authentication required",
		Details:   details,
		Retryable: false,
		Status:    401,
		Timestamp: time.Now().UTC(),
	}
}

// NewBackendRejectedError creates a non-retryable error from a backend error body.
func NewBackendRejectedError(status int, detail string) *StandardError {
	if detail == "" {
		detail = "An error occurred"
	}
	return &StandardError{
		Code:      ErrCodeBackendRejected,
		Message:   detail,
		Details:   fmt.Sprintf("status: %d", status),
		Retryable: false,
		Status:    status,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedPayloadError creates a non-retryable payload error.
func NewMalformedPayloadError(field string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedPayload,
		Message:   "Persisted payload could not be decoded",
		Details:   fmt.Sprintf("field: %s, error: %s", field, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAnalyzeFailedError creates a retryable scoring error.
func NewAnalyzeFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalyzeFailed,
		Message:   "Resume analysis failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewOptimizeFailedError creates a retryable optimization error.
func NewOptimizeFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeOptimizeFailed,
		Message:   "Resume optimization failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRescoreFailedError creates a retryable re-score error. The optimized
// text is still usable when this error is reported.
func NewRescoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRescoreFailed,
		Message:   "Re-scoring of optimized resume failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDeleteFailedError creates a retryable history delete error.
func NewDeleteFailedError(id int64, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDeleteFailed,
		Message:   "Failed to delete analysis",
		Details:   fmt.Sprintf("analysisId: %d, error: %s", id, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStorageReadFailedError creates a retryable storage tier error.
func NewStorageReadFailedError(scope, key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageReadFailed,
		Message:   "Storage tier read failed",
		Details:   fmt.Sprintf("scope: %s, key: %s, error: %s", scope, key, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStorageWriteFailedError creates a retryable storage tier error. A
// failed tier write leaves that tier stale, not the record inconsistent.
func NewStorageWriteFailedError(scope, key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageWriteFail,
		Message:   "Storage tier write failed",
		Details:   fmt.Sprintf("scope: %s, key: %s, error: %s", scope, key, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoAnalysisError creates a non-retryable error marking the Absent state.
func NewNoAnalysisError() *StandardError {
	return &StandardError{
		Code:      ErrCodeNoAnalysis,
		Message:   "No analysis available in any storage tier",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
