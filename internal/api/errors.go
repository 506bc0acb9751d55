package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/good-yellow-bee/grantdoc/internal/convert"
	"github.com/good-yellow-bee/grantdoc/internal/generator"
	"github.com/good-yellow-bee/grantdoc/internal/upstream"
)

// Error represents an API error response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

// Common error codes
const (
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeUpstreamFailed   = "UPSTREAM_FAILED"
	ErrCodeConversionFailed = "CONVERSION_FAILED"
	ErrCodeUnavailable      = "UNAVAILABLE"
	ErrCodeTimeout          = "TIMEOUT"
)

// Standard errors
var (
	ErrNotFound = &Error{
		Code:    ErrCodeNotFound,
		Message: "Resource not found",
		Status:  http.StatusNotFound,
	}

	ErrNoSubmittedRecord = &Error{
		Code:    ErrCodeNotFound,
		Message: "No submitted application found",
		Status:  http.StatusNotFound,
	}

	ErrInternalServer = &Error{
		Code:    ErrCodeInternalError,
		Message: "Internal server error",
		Status:  http.StatusInternalServerError,
	}

	ErrUpstreamFailed = &Error{
		Code:    ErrCodeUpstreamFailed,
		Message: "Failed to fetch submissions",
		Status:  http.StatusBadGateway,
	}

	ErrUpstreamDisabled = &Error{
		Code:    ErrCodeUnavailable,
		Message: "Submissions API is not configured",
		Status:  http.StatusServiceUnavailable,
	}

	ErrAuditDisabled = &Error{
		Code:    ErrCodeUnavailable,
		Message: "Generation audit store is not enabled",
		Status:  http.StatusServiceUnavailable,
	}

	ErrConversionFailed = &Error{
		Code:    ErrCodeConversionFailed,
		Message: "Failed to convert document to PDF",
		Status:  http.StatusInternalServerError,
	}

	ErrTimeout = &Error{
		Code:    ErrCodeTimeout,
		Message: "Request timed out",
		Status:  http.StatusGatewayTimeout,
	}
)

// NewBadRequest creates a bad request error with custom message.
func NewBadRequest(message string) *Error {
	return &Error{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error with custom message.
func NewNotFound(message string) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: message,
		Status:  http.StatusNotFound,
	}
}

// errorFor maps a pipeline error to its API error.
func errorFor(err error) *Error {
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, upstream.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, upstream.ErrUpstream):
		return ErrUpstreamFailed
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, convert.ErrConversion):
		return ErrConversionFailed
	case errors.Is(err, generator.ErrFileIO):
		return ErrInternalServer
	default:
		return ErrInternalServer
	}
}
