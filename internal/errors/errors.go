package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a categorized error code
type ErrorCode string

const (
	// Validation errors
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// Config errors
	CodeConfig        ErrorCode = "CONFIG_ERROR"
	CodeMissingConfig ErrorCode = "MISSING_CONFIG"
	CodeInvalidConfig ErrorCode = "INVALID_CONFIG"

	// Filesystem errors
	CodeFilesystem   ErrorCode = "FILESYSTEM_ERROR"
	CodeTargetExists ErrorCode = "TARGET_EXISTS"
	CodeLocked       ErrorCode = "LOCKED"

	// Internal errors
	CodeInternal ErrorCode = "INTERNAL_ERROR"
	CodeUnknown  ErrorCode = "UNKNOWN_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError creates a validation error
func ValidationError(message string) *AppError {
	return New(CodeValidation, message)
}

// ConfigError creates a configuration error
func ConfigError(message string, err error) *AppError {
	if err != nil {
		return Wrap(err, CodeConfig, message)
	}
	return New(CodeConfig, message)
}

// MissingConfigError reports a required configuration key that was not set
func MissingConfigError(key string) *AppError {
	return New(CodeMissingConfig, fmt.Sprintf("%s is required", key)).
		WithContext("key", key)
}

// InvalidConfigError reports a configuration key with an unusable value
func InvalidConfigError(key, message string, err error) *AppError {
	var appErr *AppError
	if err != nil {
		appErr = Wrap(err, CodeInvalidConfig, fmt.Sprintf("%s %s", key, message))
	} else {
		appErr = New(CodeInvalidConfig, fmt.Sprintf("%s %s", key, message))
	}
	return appErr.WithContext("key", key)
}

// FilesystemError wraps a failed filesystem operation on path
func FilesystemError(op, path string, err error) *AppError {
	return Wrap(err, CodeFilesystem, fmt.Sprintf("%s %s", op, path)).
		WithContext("op", op).
		WithContext("path", path)
}

// TargetExistsError reports a move whose destination is already occupied
func TargetExistsError(source, target string) *AppError {
	return New(CodeTargetExists, fmt.Sprintf("target already exists: %s", target)).
		WithContext("source", source).
		WithContext("path", target)
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// IsConfigError checks if an error comes from configuration loading
func IsConfigError(err error) bool {
	switch GetErrorCode(err) {
	case CodeConfig, CodeMissingConfig, CodeInvalidConfig:
		return true
	}
	return false
}

// IsFilesystemError checks if an error was raised by a filesystem operation
func IsFilesystemError(err error) bool {
	switch GetErrorCode(err) {
	case CodeFilesystem, CodeTargetExists:
		return true
	}
	return false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == CodeValidation || appErr.Code == CodeInvalidInput
	}
	return false
}
