package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	ErrCodeInvalidName         = "INVALID_NAME"
	ErrCodeInsufficientPlayers = "INSUFFICIENT_PLAYERS"
	ErrCodeNotParticipant      = "NOT_PARTICIPANT"
	ErrCodeGameFinished        = "GAME_FINISHED"
	ErrCodeNoActiveSession     = "NO_ACTIVE_SESSION"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// Sentinels for errors.Is. Only the code is compared.
var (
	ErrInvalidName         = &AppError{Code: ErrCodeInvalidName}
	ErrInsufficientPlayers = &AppError{Code: ErrCodeInsufficientPlayers}
	ErrNotParticipant      = &AppError{Code: ErrCodeNotParticipant}
	ErrGameFinished        = &AppError{Code: ErrCodeGameFinished}
	ErrNoActiveSession     = &AppError{Code: ErrCodeNoActiveSession}
	ErrNotFound            = &AppError{Code: ErrCodeNotFound}
	ErrValidation          = &AppError{Code: ErrCodeValidation}
	ErrInternal            = &AppError{Code: ErrCodeInternal}
)

// AppError represents an application error with a stable code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "INVALID_NAME")
	Message string // Human-readable error message
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError carrying the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Code extracts the AppError code from err, or "" when err is not an AppError.
func Code(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// NewInvalidNameError is returned when a player name is blank or already registered.
func NewInvalidNameError(name, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidName,
		Message: fmt.Sprintf("player name %q %s", name, reason),
	}
}

// NewInsufficientPlayersError is returned when a game has fewer than two participants.
func NewInsufficientPlayersError(got int) *AppError {
	return &AppError{
		Code:    ErrCodeInsufficientPlayers,
		Message: fmt.Sprintf("at least 2 players are required, got %d", got),
	}
}

func NewNotParticipantError(name string) *AppError {
	return &AppError{
		Code:    ErrCodeNotParticipant,
		Message: fmt.Sprintf("%q is not playing this game", name),
	}
}

func NewGameFinishedError(id string) *AppError {
	return &AppError{
		Code:    ErrCodeGameFinished,
		Message: fmt.Sprintf("game %s is already finished", id),
	}
}

func NewNoActiveSessionError() *AppError {
	return &AppError{
		Code:    ErrCodeNoActiveSession,
		Message: "no game in progress",
	}
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal error",
		Err:     err,
	}
}
