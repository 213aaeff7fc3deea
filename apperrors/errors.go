package apperrors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorCode represents application-specific error codes
type ErrorCode string

const (
	// Authentication
	ErrCodeUnauthenticated   ErrorCode = "UNAUTHENTICATED"
	ErrCodeInvalidCredential ErrorCode = "INVALID_CREDENTIAL"
	ErrCodeInvalidLogin      ErrorCode = "INVALID_LOGIN"
	ErrCodeForbidden         ErrorCode = "FORBIDDEN"

	// Users
	ErrCodeUserNotFound ErrorCode = "USER_NOT_FOUND"
	ErrCodeUserExists   ErrorCode = "USER_EXISTS"

	// Chat
	ErrCodeUnknownParticipant ErrorCode = "UNKNOWN_PARTICIPANT"
	ErrCodeMessageEmpty       ErrorCode = "MESSAGE_EMPTY"

	// Storage
	ErrCodeStoreFailure ErrorCode = "STORE_FAILURE"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"

	// Rate limiting
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"

	// Validation
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"

	// Internal
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"
	ErrCodeServiceUnavail ErrorCode = "SERVICE_UNAVAILABLE"
)

// AppError represents a structured application error
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	StatusCode int            `json:"-"`
	Internal   error          `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// WithDetails adds contextual details to the error
func (e *AppError) WithDetails(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithInternal wraps an internal error
func (e *AppError) WithInternal(err error) *AppError {
	e.Internal = err
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func NewUnauthenticated(message string) *AppError {
	if message == "" {
		message = "Authentication required"
	}
	return New(ErrCodeUnauthenticated, message, fiber.StatusUnauthorized)
}

func NewInvalidCredential() *AppError {
	return New(ErrCodeInvalidCredential, "Invalid or expired token", fiber.StatusUnauthorized)
}

func NewInvalidLogin() *AppError {
	return New(ErrCodeInvalidLogin, "Invalid email or password", fiber.StatusUnauthorized)
}

func NewForbidden(message string) *AppError {
	if message == "" {
		message = "Not authorized to perform this action"
	}
	return New(ErrCodeForbidden, message, fiber.StatusForbidden)
}

func NewUserNotFound() *AppError {
	return New(ErrCodeUserNotFound, "User not found", fiber.StatusNotFound)
}

func NewUserExists() *AppError {
	return New(ErrCodeUserExists, "Username or email already exists", fiber.StatusConflict)
}

func NewUnknownParticipant(senderID, receiverID string) *AppError {
	return New(ErrCodeUnknownParticipant, "Sender or receiver not found", fiber.StatusNotFound).
		WithDetails("sender_id", senderID).
		WithDetails("receiver_id", receiverID)
}

func NewMessageEmpty() *AppError {
	return New(ErrCodeMessageEmpty, "Message body cannot be empty", fiber.StatusBadRequest)
}

func NewStoreFailure(operation string, err error) *AppError {
	return New(ErrCodeStoreFailure, fmt.Sprintf("Storage error during %s", operation), fiber.StatusInternalServerError).
		WithInternal(err)
}

func NewNotFound(resource string) *AppError {
	return New(ErrCodeNotFound, resource+" not found", fiber.StatusNotFound)
}

func NewValidationError(message string) *AppError {
	return New(ErrCodeValidationFailed, message, fiber.StatusBadRequest)
}

func NewBadRequest(message string) *AppError {
	if message == "" {
		message = "Bad request"
	}
	return New(ErrCodeInvalidInput, message, fiber.StatusBadRequest)
}

func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An internal error occurred"
	}
	return New(ErrCodeInternal, message, fiber.StatusInternalServerError)
}

func NewRateLimitError() *AppError {
	return New(ErrCodeRateLimited, "Too many requests. Please try again later.", fiber.StatusTooManyRequests)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// FromError converts a standard error to AppError if possible
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusUnauthorized:
			return NewUnauthenticated("")
		case fiber.StatusNotFound:
			return New(ErrCodeNotFound, "Resource not found", fiber.StatusNotFound)
		case fiber.StatusBadRequest:
			return NewValidationError("Invalid request")
		}
	}

	return NewInternalError("").WithInternal(err)
}
