package error

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode string

// Error codes for different categories
const (
	// Authentication Errors (1xxx)
	ErrCodeInvalidCredentials  ErrorCode = "AUTH_1001"
	ErrCodeUserNotFound        ErrorCode = "AUTH_1002"
	ErrCodeInvalidToken        ErrorCode = "AUTH_1003"
	ErrCodeTokenExpired        ErrorCode = "AUTH_1004"
	ErrCodeUserMismatch        ErrorCode = "AUTH_1005"
	ErrCodeInvalidRefreshToken ErrorCode = "AUTH_1006"
	ErrCodeForbidden           ErrorCode = "AUTH_1007"

	// Validation Errors (2xxx)
	ErrCodeInvalidEmail     ErrorCode = "VALID_2001"
	ErrCodeInvalidPassword  ErrorCode = "VALID_2002"
	ErrCodeInvalidRequest   ErrorCode = "VALID_2005"
	ErrCodeIdentityCreation ErrorCode = "VALID_2006"

	// Database Errors (5xxx)
	ErrCodeStoreUnavailable ErrorCode = "DB_5001"

	// Server Errors (6xxx)
	ErrCodeInternalServerError ErrorCode = "SERVER_6001"
	ErrCodeConfigurationError  ErrorCode = "SERVER_6003"
)

// AppError represents a structured application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on code so wrapped copies of a sentinel compare equal to it.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// Sentinels. Compare with errors.Is.
var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = NewAppError(ErrCodeInvalidCredentials, "Invalid email or password", "", nil)
	ErrUserMismatch       = NewAppError(ErrCodeUserMismatch, "User does not match token", "", nil)
	ErrInvalidToken       = NewAppError(ErrCodeInvalidToken, "Invalid token", "", nil)
	ErrTokenExpired       = NewAppError(ErrCodeTokenExpired, "Token has expired", "", nil)
	ErrForbidden          = NewAppError(ErrCodeForbidden, "Forbidden", "", nil)
	ErrConfiguration      = NewAppError(ErrCodeConfigurationError, "Configuration error", "", nil)
	ErrStoreUnavailable   = NewAppError(ErrCodeStoreUnavailable, "Identity store unavailable", "", nil)
)

// Common error constructors

func ErrConfigurationError(details string) *AppError {
	return NewAppError(ErrCodeConfigurationError, "Configuration error", details, nil)
}

// ErrStore wraps an identity-store I/O failure.
func ErrStore(operation string, cause error) *AppError {
	return NewAppError(ErrCodeStoreUnavailable, "Identity store unavailable", fmt.Sprintf("Operation: %s", operation), cause)
}

func ErrInvalidTokenDetails(details string, cause error) *AppError {
	return NewAppError(ErrCodeInvalidToken, "Invalid token", details, cause)
}

func ErrUserMismatchFor(claimedUserID string) *AppError {
	return NewAppError(ErrCodeUserMismatch, "User does not match token", fmt.Sprintf("User ID: %s", claimedUserID), nil)
}

func ErrInvalidRequest(details string) *AppError {
	return NewAppError(ErrCodeInvalidRequest, "Invalid request", details, nil)
}

func ErrInternalServerError(details string, cause error) *AppError {
	return NewAppError(ErrCodeInternalServerError, "Internal server error", details, cause)
}

// GetHTTPStatusCode maps an error to the status the account API answers with.
func GetHTTPStatusCode(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Code {
	case ErrCodeInvalidCredentials, ErrCodeUserNotFound, ErrCodeInvalidToken,
		ErrCodeTokenExpired, ErrCodeUserMismatch, ErrCodeInvalidRefreshToken:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeInvalidEmail, ErrCodeInvalidPassword, ErrCodeInvalidRequest, ErrCodeIdentityCreation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
