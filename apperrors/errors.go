package apperrors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies every failure the application can surface.
type ErrorCode string

const (
	// Gateway errors, classified once at the HTTP boundary.
	ErrCodeNetwork        ErrorCode = "NETWORK_ERROR"
	ErrCodeAuthRequired   ErrorCode = "AUTH_REQUIRED"
	ErrCodeForbidden      ErrorCode = "FORBIDDEN"
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrCodeServer         ErrorCode = "SERVER_ERROR"
	ErrCodeUnknown        ErrorCode = "UNKNOWN"

	// Client-side form-rule violations. Never sent to the network.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
)

// FieldError carries a field-level validation message from the backend.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"msg"`
}

// AppError is the application error type. Gateway responses and local
// validation failures are both expressed as AppErrors so callers switch on
// Code instead of parsing messages.
type AppError struct {
	Code    ErrorCode
	Message string
	Fields  []FieldError
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// CodeOf extracts the error code, or ErrCodeUnknown for foreign errors.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeUnknown
}

// MessageOf extracts the user-facing message, falling back to Error().
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// FieldsOf extracts backend field-level messages, if any.
func FieldsOf(err error) []FieldError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}

func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
