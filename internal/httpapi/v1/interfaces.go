package v1

import (
	"context"

	"github.com/tinoosan/networth/internal/service/snapshot"
)

// Store composes what the services need from a backend.
// It is satisfied by the memory, postgres and sqlite stores.
type Store interface {
	snapshot.Repo
	snapshot.Writer
	snapshot.IdempotencyStore
}

// ReadyChecker is optionally implemented by stores to indicate readiness.
type ReadyChecker interface {
	Ready(ctx context.Context) error
}
