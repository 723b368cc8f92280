package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation builds a one-off validation error with a caller-facing message.
func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// Common error codes
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeRequestConflict = "REQUEST_CONFLICT"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeAlreadyExists   = "ALREADY_EXISTS"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

var (
	ErrSelfRequest      = New(ErrCodeValidation, "Cannot send friend request to yourself")
	ErrAlreadyFriends   = New(ErrCodeRequestConflict, "You are already friends")
	ErrDuplicateRequest = New(ErrCodeRequestConflict, "Friend request already exists")
	ErrRequestNotFound  = New(ErrCodeNotFound, "Friend request not found")
	ErrNotFriends       = New(ErrCodeForbidden, "Not friends with this user")

	ErrInvalidScore  = New(ErrCodeValidation, "Valid score (0-100) required")
	ErrScoreNotFound = New(ErrCodeNotFound, "Score not found or unauthorized")

	ErrInvalidUsername  = New(ErrCodeValidation, "Username must be 3-20 characters and contain only letters, numbers, underscores, and dashes")
	ErrUsernameTaken    = New(ErrCodeAlreadyExists, "Username is already taken")
	ErrUserNotFound     = New(ErrCodeNotFound, "User not found")
	ErrUsernameNotFound = New(ErrCodeNotFound, "Username not found")

	ErrUnauthenticated = New(ErrCodeUnauthorized, "User not authenticated")
	ErrForbidden       = New(ErrCodeForbidden, "Forbidden")
)

// HTTPStatus maps an error chain to the status code the API answers with.
// Anything that is not an *AppError is treated as an internal failure.
func HTTPStatus(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}

	switch appErr.Code {
	case ErrCodeValidation, ErrCodeRequestConflict:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message that is safe to show to a caller.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != ErrCodeInternalError {
		return appErr.Message
	}
	return "Internal server error"
}
