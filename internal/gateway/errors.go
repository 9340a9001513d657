package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Wire error codes carried in the "error" field of failure bodies.
const (
	CodeFolderNotEmpty = "FOLDER_NOT_EMPTY"
	CodeNotFound       = "NOT_FOUND"
	CodeDuplicate      = "DUPLICATE"
	CodeValidation     = "VALIDATION"
	CodeUnauthorized   = "UNAUTHORIZED"
)

var (
	ErrFolderNotEmpty = errors.New("folder not empty")
	ErrNotFound       = errors.New("not found")
	ErrDuplicate      = errors.New("duplicate")
	ErrValidation     = errors.New("validation failed")
	ErrUnauthorized   = errors.New("unauthorized")
)

// APIError represents a non-2xx response from the gateway.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" && e.Message != "" {
		return fmt.Sprintf("gateway error: %s (%d): %s", e.Code, e.Status, e.Message)
	}
	if e.Code != "" {
		return fmt.Sprintf("gateway error: %s (%d)", e.Code, e.Status)
	}
	if e.Message != "" {
		return fmt.Sprintf("gateway error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("gateway error (%d)", e.Status)
}

// Is maps wire codes and statuses onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrFolderNotEmpty:
		return e.Code == CodeFolderNotEmpty
	case ErrNotFound:
		return e.Code == CodeNotFound || (e.Code == "" && e.Status == http.StatusNotFound)
	case ErrDuplicate:
		return e.Code == CodeDuplicate
	case ErrValidation:
		return e.Code == CodeValidation || (e.Code == "" && e.Status == http.StatusBadRequest)
	case ErrUnauthorized:
		return e.Code == CodeUnauthorized || e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}

// Recoverable reports whether the failure is transient and worth retrying.
// Request timeouts, rate limits and server errors are recoverable.
func (e *APIError) Recoverable() bool {
	switch {
	case e.Status == http.StatusRequestTimeout, e.Status == http.StatusTooManyRequests:
		return true
	case e.Status >= 500:
		return true
	}
	return false
}
