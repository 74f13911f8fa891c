// Package errors provides error code definitions for the edusync engine.
package errors

import "fmt"

// ErrorCode represents a unique error code surfaced to the embedding UI.
type ErrorCode string

const (
	// General errors
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
	ErrInvalid    ErrorCode = "INVALID_INPUT"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrValidation ErrorCode = "VALIDATION_ERROR"

	// Storage errors. ErrStorageFull is fatal and user-visible: the
	// submission could not even be queued, distinct from queued-but-pending.
	ErrStorage     ErrorCode = "STORAGE_ERROR"
	ErrStorageFull ErrorCode = "STORAGE_FULL"

	// Queue errors
	ErrUnknownTopic ErrorCode = "UNKNOWN_TOPIC"
	ErrQuarantined  ErrorCode = "ITEM_QUARANTINED"

	// Sync errors
	ErrSyncFailed ErrorCode = "SYNC_FAILED"
	ErrRemote     ErrorCode = "REMOTE_ERROR"
	ErrOffline    ErrorCode = "OFFLINE"

	// Cache / content errors
	ErrCacheWrite  ErrorCode = "CACHE_WRITE_FAILED"
	ErrFetchFailed ErrorCode = "FETCH_FAILED"

	// Configuration errors
	ErrConfig ErrorCode = "CONFIG_INVALID"
)

// AppError represents an engine error with code and message.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an error code.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Is checks if an error or any error it wraps carries a specific code.
func Is(err error, code ErrorCode) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
