package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Problem types (RFC 7807 "type" member)
const (
	TypeValidation      = "/errors/validation"
	TypeNotFound        = "/errors/not-found"
	TypeMethod          = "/errors/method-not-allowed"
	TypeUnauthorized    = "/errors/unauthorized"
	TypeRateLimit       = "/errors/rate-limit"
	TypeInternal        = "/errors/internal"
	TypeTimeout         = "/errors/timeout"
	TypeDataUnavailable = "/errors/data/unavailable"
)

const internalDetail = "An unexpected error occurred while processing your request"

// apiCodeTypes maps APIError codes onto problem types
var apiCodeTypes = map[string]string{
	"VALIDATION_FAILED":   TypeValidation,
	"INVALID_REQUEST":     TypeValidation,
	"INVALID_PARAMETER":   TypeValidation,
	"DATASET_UNAVAILABLE": TypeDataUnavailable,
}

// ErrorHandler turns handler errors into problem+json responses and logs them
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates an ErrorHandler. includeStack adds goroutine
// stacks to responses and belongs in development only.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError logs err and writes the matching problem response.
// A nil error writes nothing.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	problem := h.ErrorToProblem(err, r)
	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path))

	if h.includeStack {
		problem.WithExtension("stack", string(debug.Stack()))
	}
	h.respond(w, r, problem)
}

// ErrorToProblem classifies err: context errors become 504, APIError and
// AppError keep their status, anything else is an opaque 500.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(http.StatusGatewayTimeout, TypeTimeout, "Request Timeout",
			"The request took too long to process and was cancelled", r.URL.Path)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		problemType, ok := apiCodeTypes[apiErr.ErrorCode]
		if !ok {
			problemType = TypeInternal
		}
		problem := NewProblemDetails(apiErr.StatusCode, problemType, http.StatusText(apiErr.StatusCode),
			apiErr.Message, r.URL.Path).WithExtension("error_code", apiErr.ErrorCode)
		if apiErr.Details != nil {
			problem.WithExtension("details", apiErr.Details)
		}
		return problem
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		var problem *ProblemDetails
		switch appErr.Type {
		case ErrTypeAuth:
			problem = NewProblemDetails(http.StatusUnauthorized, TypeUnauthorized, "Unauthorized", appErr.Message, r.URL.Path)
		case ErrTypeDataset:
			problem = NewProblemDetails(http.StatusServiceUnavailable, TypeDataUnavailable, "Dataset Unavailable", appErr.Error(), r.URL.Path)
		default:
			problem = NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error", internalDetail, r.URL.Path)
		}
		problem.WithExtension("error_type", string(appErr.Type))
		for k, v := range appErr.Context {
			problem.WithExtension(k, v)
		}
		return problem
	}

	return NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error", internalDetail, r.URL.Path)
}

// HandlePanic answers a recovered panic with a 500
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	stack := string(debug.Stack())
	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", stack))

	problem := NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
		"An unexpected error occurred", r.URL.Path)
	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprint(recovered)).WithExtension("stack", stack)
	}
	h.respond(w, r, problem)
}

// NotFound is the router's 404 handler
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found",
		"The requested resource was not found", r.URL.Path))
}

// MethodNotAllowed is the router's 405 handler
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, NewProblemDetails(http.StatusMethodNotAllowed, TypeMethod, "Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method), r.URL.Path))
}

func (h *ErrorHandler) respond(w http.ResponseWriter, r *http.Request, problem *ProblemDetails) {
	problem.WithExtension("trace_id", middleware.GetReqID(r.Context()))
	_ = render.Render(w, r, problem)
}
