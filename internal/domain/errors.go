package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput signals a request that fails validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidSchema signals an invalid index definition.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrUnauthenticated signals a request without a resolvable owner.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrItemNotFound signals a missing item or one owned by someone else.
	ErrItemNotFound = errors.New("item not found")
	// ErrStoreFailure signals a metadata store error.
	ErrStoreFailure = errors.New("store failure")

	// ErrOracleUnavailable signals that the language model could not be reached.
	ErrOracleUnavailable = errors.New("oracle unavailable")
	// ErrOracleBudgetExceeded signals an exhausted oracle token budget.
	ErrOracleBudgetExceeded = errors.New("oracle budget exceeded")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrRateLimited signals a rate limit hit on a remote provider.
	ErrRateLimited = errors.New("rate limited")
)

// ValidationError wraps ErrInvalidInput with the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError creates a validation error for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
