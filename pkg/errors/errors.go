// Package errors provides the unified application error type.
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode identifies an application error class.
type ErrorCode string

const (
	// Generic (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeNotFound           ErrorCode = "1004"
	CodeTooManyRequests    ErrorCode = "1006"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	// Resources (3xxx)
	CodeSessionNotFound ErrorCode = "3001"
	CodeTeamNotFound    ErrorCode = "3002"
	CodePlayerNotFound  ErrorCode = "3003"

	// Pipeline (4xxx)
	CodeNoData          ErrorCode = "4001"
	CodeRetrievalFailed ErrorCode = "4002"
	CodeLLMCallFailed   ErrorCode = "4003"
	CodeEmbeddingFailed ErrorCode = "4004"

	// External services (5xxx)
	CodeCacheError       ErrorCode = "5001"
	CodeVectorDBError    ErrorCode = "5002"
	CodeLLMProviderError ErrorCode = "5003"
)

// AppError is the error type surfaced across layer boundaries.
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail attaches detail text.
func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail
	return e
}

// WithError attaches the underlying error.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// New creates an AppError for the given code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap wraps err into an AppError.
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeNotFound, CodeSessionNotFound, CodeTeamNotFound, CodePlayerNotFound:
		return http.StatusNotFound
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeNoData, CodeServiceUnavailable, CodeVectorDBError, CodeCacheError:
		return http.StatusServiceUnavailable
	case CodeLLMCallFailed, CodeLLMProviderError, CodeEmbeddingFailed, CodeRetrievalFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
