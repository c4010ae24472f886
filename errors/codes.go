package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Pagination errors
const (
	// ErrCodeFetchFailed indicates the page fetcher could not deliver a page.
	ErrCodeFetchFailed ErrorCode = "FETCH_FAILED"
	// ErrCodeMalformedPage indicates a page payload is missing its required shape.
	ErrCodeMalformedPage ErrorCode = "MALFORMED_PAGE"
	// ErrCodeStorage indicates the deletion store could not be read or written.
	ErrCodeStorage ErrorCode = "STORAGE_ERROR"
)

// Availability errors
const (
	// ErrCodeServiceUnavailable indicates the service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Request errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeFetchFailed:        true,
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeMalformedPage:      false,
	ErrCodeStorage:            false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
