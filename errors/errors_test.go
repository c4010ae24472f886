package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeFetchFailed, "boom", http.StatusBadGateway)
	if !err.Retryable {
		t.Error("FETCH_FAILED should be retryable")
	}
	err = New(ErrCodeMalformedPage, "bad", http.StatusBadGateway)
	if err.Retryable {
		t.Error("MALFORMED_PAGE should not be retryable")
	}
}

func TestAppError_FetchFailed_Success(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := FetchFailed("/api/products?page=1&limit=10", cause)
	if err.Code != ErrCodeFetchFailed {
		t.Errorf("expected FETCH_FAILED, got %s", err.Code)
	}
	if !err.Retryable {
		t.Error("expected fetch failure to be retryable")
	}
	if err.Details["key"] != "/api/products?page=1&limit=10" {
		t.Errorf("expected key detail, got %v", err.Details["key"])
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		status    int
		retryable bool
	}{
		{"FetchFailed", FetchFailed("k", nil), ErrCodeFetchFailed, http.StatusBadGateway, true},
		{"MalformedPage", MalformedPage("k", "missing products"), ErrCodeMalformedPage, http.StatusBadGateway, false},
		{"StorageFailure", StorageFailure("load", nil), ErrCodeStorage, http.StatusInternalServerError, false},
		{"ServiceUnavailable", ServiceUnavailable("upstream"), ErrCodeServiceUnavailable, http.StatusServiceUnavailable, true},
		{"Timeout", Timeout("fetch"), ErrCodeTimeout, http.StatusGatewayTimeout, true},
		{"NotFound", NotFound("product", "1"), ErrCodeNotFound, http.StatusNotFound, false},
		{"InvalidInput", InvalidInput("limit", "must be positive"), ErrCodeInvalidInput, http.StatusBadRequest, false},
		{"Internal", Internal(nil), ErrCodeInternal, http.StatusInternalServerError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.HTTPStatus != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.HTTPStatus)
			}
			if tt.err.Retryable != tt.retryable {
				t.Errorf("expected retryable=%v, got %v", tt.retryable, tt.err.Retryable)
			}
		})
	}
}

func TestPredicates_WrappedErrors(t *testing.T) {
	fetch := fmt.Errorf("page 2: %w", FetchFailed("k", nil))
	malformed := fmt.Errorf("page 2: %w", MalformedPage("k", "nil page"))
	storage := fmt.Errorf("add: %w", StorageFailure("add", nil))

	if !IsFetchError(fetch) || IsFetchError(malformed) {
		t.Error("IsFetchError misclassified")
	}
	if !IsMalformedPage(malformed) || IsMalformedPage(storage) {
		t.Error("IsMalformedPage misclassified")
	}
	if !IsStorageError(storage) || IsStorageError(fetch) {
		t.Error("IsStorageError misclassified")
	}
	if IsFetchError(nil) {
		t.Error("nil must not classify as fetch error")
	}
}

func TestAppError_Error_Format(t *testing.T) {
	err := MalformedPage("k", "nil page")
	if !strings.HasPrefix(err.Error(), "MALFORMED_PAGE: ") {
		t.Errorf("unexpected format %q", err.Error())
	}
	withCause := StorageFailure("load", fmt.Errorf("disk full"))
	if !strings.Contains(withCause.Error(), "(cause: disk full)") {
		t.Errorf("expected cause in message, got %q", withCause.Error())
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := New(ErrCodeInternal, "x", http.StatusInternalServerError)
	err.WithDetail("page", 3)
	if err.Details["page"] != 3 {
		t.Errorf("expected detail page=3, got %v", err.Details["page"])
	}
}

func TestAppError_ToResponse_Success(t *testing.T) {
	resp := FetchFailed("k", nil).ToResponse()
	if resp.Error.Code != ErrCodeFetchFailed {
		t.Errorf("expected FETCH_FAILED, got %s", resp.Error.Code)
	}
	if !resp.Error.Retryable {
		t.Error("expected retryable in response")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("expected nil for nil error")
	}
	original := NotFound("product", "7")
	if Wrap(fmt.Errorf("outer: %w", original)) != original {
		t.Error("expected wrapped AppError to pass through")
	}
	plain := Wrap(fmt.Errorf("plain"))
	if plain.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", plain.Code)
	}
}
