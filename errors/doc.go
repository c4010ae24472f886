// Package errors provides the structured error type shared by the feed,
// the page cache and the HTTP handlers.
//
// Every error carries a machine-readable code, an HTTP status and a
// retryable flag. The pagination taxonomy is:
//
//   - FETCH_FAILED: the page fetcher failed; retry by requesting the page again.
//   - MALFORMED_PAGE: the payload is missing its required shape; not retried.
//   - STORAGE_ERROR: the deletion store failed; callers degrade to an empty set.
package errors
