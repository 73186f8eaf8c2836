package health

import (
	"context"

	"github.com/kailas-cloud/mindvault/internal/domain"
)

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingStatus reports which embedding mode is active.
type EmbeddingStatus interface {
	Mode() domain.EmbeddingMode
}

// OracleStatus reports language model availability.
type OracleStatus interface {
	Enabled() bool
	Available() bool
}
