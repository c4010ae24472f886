// Package httpclient is the outbound HTTP transport used by the upstream
// product client. Responses with non-2xx status codes are returned as
// classified *Error values so callers can tell retryable transport failures
// (timeouts, connection errors, 5xx, 429) from permanent ones.
package httpclient
