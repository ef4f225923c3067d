package v1

import (
	"github.com/tinoosan/networth/internal/storage/memory"
	"github.com/tinoosan/networth/internal/storage/postgres"
	"github.com/tinoosan/networth/internal/storage/sqlite"
)

// Compile-time interface assertions for the stores against HTTP API interfaces.
var (
	_ Store        = (*memory.Store)(nil)
	_ Store        = (*postgres.Store)(nil)
	_ Store        = (*sqlite.Store)(nil)
	_ ReadyChecker = (*postgres.Store)(nil)
	_ ReadyChecker = (*sqlite.Store)(nil)
)
