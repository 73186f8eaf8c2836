package mindvault

import "github.com/kailas-cloud/mindvault/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidInput    = domain.ErrInvalidInput
	ErrUnauthenticated = domain.ErrUnauthenticated
	ErrItemNotFound    = domain.ErrItemNotFound
	ErrStoreFailure    = domain.ErrStoreFailure
)
