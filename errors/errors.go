package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// FetchFailed wraps a page fetcher failure for the page identified by key.
// Fetch failures are retryable by requesting the same page again.
func FetchFailed(key string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeFetchFailed, Message: fmt.Sprintf("Failed to fetch page %s.", key),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"key": key}, Cause: cause,
	}
}

// MalformedPage reports a page payload that is missing its required shape.
func MalformedPage(key, reason string) *AppError {
	return &AppError{
		Code: ErrCodeMalformedPage, Message: fmt.Sprintf("Malformed page %s: %s", key, reason),
		HTTPStatus: http.StatusBadGateway, Retryable: false,
		Details: map[string]any{"key": key},
	}
}

// StorageFailure reports a deletion store read or write failure.
func StorageFailure(op string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeStorage, Message: fmt.Sprintf("Deletion store %s failed.", op),
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
		Details: map[string]any{"operation": op}, Cause: cause,
	}
}

// ServiceUnavailable creates a new AppError for a service that is temporarily unavailable.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// Timeout creates a new AppError for a request that timed out.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long. Please try again.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Retryable: false, Details: details,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for struct validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// Internal creates a new AppError for an internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// HasCode reports whether err is (or wraps) an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}

// IsFetchError reports whether err is a page fetch failure.
func IsFetchError(err error) bool { return HasCode(err, ErrCodeFetchFailed) }

// IsMalformedPage reports whether err is a malformed page payload.
func IsMalformedPage(err error) bool { return HasCode(err, ErrCodeMalformedPage) }

// IsStorageError reports whether err is a deletion store failure.
func IsStorageError(err error) bool { return HasCode(err, ErrCodeStorage) }
