package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError is a client-facing error with a stable code
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError is one rejected field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors groups every rejected field of a request
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// New creates an APIError
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message}
}

// NewWithDetails creates an APIError carrying details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	e := New(statusCode, errorCode, message)
	e.Details = details
	return e
}

var (
	ErrInvalidRequest     = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrDatasetUnavailable = New(http.StatusServiceUnavailable, "DATASET_UNAVAILABLE", "Dataset is not loaded")
)

// NewValidationErrors reports the rejected fields of a selection or form
func NewValidationErrors(errs []ValidationError) *APIError {
	return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed",
		ValidationErrors{Errors: errs})
}

// InvalidParameter reports a malformed query parameter
func InvalidParameter(name string, value string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "INVALID_PARAMETER",
		fmt.Sprintf("Invalid value for %s", name), ValidationError{Field: name, Message: fmt.Sprintf("cannot use %q", value)})
}
