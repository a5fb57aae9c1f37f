package errors

import (
	"fmt"
)

// ErrorType classifies an AppError
type ErrorType string

const (
	ErrTypeDataset ErrorType = "DATASET"
	ErrTypeAuth    ErrorType = "AUTH"
)

// AppError is an internal failure with a type and loggable context
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key that is copied into the problem response
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates an AppError
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Cause: cause}
}

// NewDatasetError reports a workbook that could not be loaded
func NewDatasetError(message string, cause error) *AppError {
	return NewAppError(ErrTypeDataset, message, cause)
}

// NewAuthError reports a failure inside the login gate
func NewAuthError(message string, cause error) *AppError {
	return NewAppError(ErrTypeAuth, message, cause)
}
