package memory

import (
	"github.com/tinoosan/networth/internal/service/dashboard"
	"github.com/tinoosan/networth/internal/service/snapshot"
)

// Compile-time interface assertions documenting which interfaces Store satisfies.
var (
	// Service layer repos and writers
	_ snapshot.Repo             = (*Store)(nil)
	_ snapshot.Writer           = (*Store)(nil)
	_ snapshot.IdempotencyStore = (*Store)(nil)
	_ dashboard.Repo            = (*Store)(nil)
)
