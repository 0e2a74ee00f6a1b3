package types

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput covers empty text, unknown field types and dimension mismatches.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderUnavailable is a transient upstream failure; the caller may retry.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrProviderRejected means the provider declined this input. Not retryable.
	ErrProviderRejected = errors.New("embedding provider rejected input")

	// ErrCapacityExceeded means an entry cannot fit even in an empty store.
	ErrCapacityExceeded = errors.New("cache capacity exceeded")
)

// ProviderError carries the failure kind together with the upstream cause.
// errors.Is matches both Kind and Err.
type ProviderError struct {
	Provider   string
	StatusCode int
	Kind       error
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %v (status %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Unavailable wraps err as a transient provider failure.
func Unavailable(provider string, status int, err error) error {
	return &ProviderError{Provider: provider, StatusCode: status, Kind: ErrProviderUnavailable, Err: err}
}

// Rejected wraps err as a permanent provider rejection.
func Rejected(provider string, status int, err error) error {
	return &ProviderError{Provider: provider, StatusCode: status, Kind: ErrProviderRejected, Err: err}
}

// ClassifyStatus maps an upstream HTTP status to a failure kind.
// 408, 429 and 5xx are transient; any other 4xx is a rejection.
func ClassifyStatus(status int) error {
	switch {
	case status == 408 || status == 429:
		return ErrProviderUnavailable
	case status >= 400 && status < 500:
		return ErrProviderRejected
	default:
		return ErrProviderUnavailable
	}
}

// IsRetryable reports whether the caller may retry the failed call.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrProviderUnavailable)
}
