package errors

import (
	"fmt"
	"net/http"
)

// Collaboration error constructors. These map one-to-one onto the error
// kinds carried on the session channel, so the websocket layer can report
// them back to the originating session without inspecting messages.

// NewMalformedOperationError indicates a structurally invalid operation.
// The operation is rejected outright and never partially applied.
func NewMalformedOperationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeMalformedOperation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// NewFutureVersionError indicates a submission based on a version the
// server has not reached yet. The client must resync before retrying.
func NewFutureVersionError(baseVersion, currentVersion int64) *AppError {
	return &AppError{
		Type:       ErrorTypeFutureVersion,
		Message:    fmt.Sprintf("base version %d is ahead of current version %d", baseVersion, currentVersion),
		HTTPStatus: http.StatusConflict,
		StackTrace: captureStackTrace(),
	}
}

// NewHistoryTruncatedError indicates the submission is based on a version
// older than the retained history. The client must reload the document.
func NewHistoryTruncatedError(baseVersion, oldestRetained int64) *AppError {
	return &AppError{
		Type:       ErrorTypeHistoryTruncated,
		Message:    fmt.Sprintf("base version %d predates retained history (oldest %d)", baseVersion, oldestRetained),
		HTTPStatus: http.StatusGone,
		StackTrace: captureStackTrace(),
	}
}

// NewSessionTimeoutError indicates a session was torn down for missing
// heartbeats. Any pending edits are surfaced, never silently dropped.
func NewSessionTimeoutError(sessionID string, pendingCount int) *AppError {
	return &AppError{
		Type:       ErrorTypeSessionTimeout,
		Message:    fmt.Sprintf("session %s timed out with %d unsaved edits", sessionID, pendingCount),
		HTTPStatus: http.StatusRequestTimeout,
		StackTrace: captureStackTrace(),
	}
}
