package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeDocumentUnreadable ErrorType = "DOCUMENT_UNREADABLE"
	ErrTypeLineUnparsable     ErrorType = "LINE_UNPARSABLE"
	ErrTypeParsing            ErrorType = "PARSING"
	ErrTypeStorage            ErrorType = "STORAGE"
	ErrTypeValidation         ErrorType = "VALIDATION"
	ErrTypeNotFound           ErrorType = "NOT_FOUND"
	ErrTypeConfig             ErrorType = "CONFIG"
	ErrTypeTimeout            ErrorType = "TIMEOUT"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewDocumentUnreadableError marks a document the extraction backend could not read
func NewDocumentUnreadableError(file string, cause error) *AppError {
	return NewAppError(ErrTypeDocumentUnreadable, fmt.Sprintf("could not read %s", file), cause).
		WithContext("source_file", file)
}

// NewLineUnparsableError marks a candidate line whose fields could not be recovered
func NewLineUnparsableError(file string, lineNumber int, cause error) *AppError {
	return NewAppError(ErrTypeLineUnparsable, fmt.Sprintf("could not parse name data in %s", file), cause).
		WithContext("source_file", file).
		WithContext("line_number", lineNumber)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// IsType reports whether err wraps an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}
