// Package memory provides a simple in-memory implementation used for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/networth/internal/errs"
	"github.com/tinoosan/networth/internal/networth"
)

// snapshotKey tracks ordering for snapshots per owner: sorted asc by (Date, ID).
type snapshotKey struct {
	Date time.Time
	ID   uuid.UUID
}

// Store is an in-memory implementation of the snapshot repository and writer.
// It is guarded by an RWMutex for concurrent reads/writes.
type Store struct {
	mu        sync.RWMutex
	snapshots map[uuid.UUID]networth.Snapshot
	// Per-owner date-sorted index
	keysByOwner map[uuid.UUID][]snapshotKey
	// Idempotency: ownerID -> key -> snapshot and request fingerprint
	idem map[uuid.UUID]map[string]idemEntry
}

type idemEntry struct {
	SnapshotID  uuid.UUID
	Fingerprint string
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		snapshots:   make(map[uuid.UUID]networth.Snapshot),
		keysByOwner: make(map[uuid.UUID][]snapshotKey),
		idem:        make(map[uuid.UUID]map[string]idemEntry),
	}
}

// CreateSnapshot implements snapshot.Writer.
func (s *Store) CreateSnapshot(_ context.Context, snap networth.Snapshot) (networth.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day := networth.NormalizeDate(snap.Date)
	for _, k := range s.keysByOwner[snap.OwnerID] {
		if k.Date.Equal(day) {
			return networth.Snapshot{}, errs.ErrDuplicateDate
		}
	}
	snap.Date = day
	snap = clone(snap)
	s.snapshots[snap.ID] = snap
	s.insertIndexLocked(snap.OwnerID, snapshotKey{Date: day, ID: snap.ID})
	return clone(snap), nil
}

// DeleteSnapshot implements snapshot.Writer. Accounts go with the snapshot.
func (s *Store) DeleteSnapshot(_ context.Context, ownerID, snapshotID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[snapshotID]
	if !ok || snap.OwnerID != ownerID {
		return errs.ErrNotFound
	}
	delete(s.snapshots, snapshotID)
	keys := s.keysByOwner[ownerID]
	for i, k := range keys {
		if k.ID == snapshotID {
			s.keysByOwner[ownerID] = append(keys[:i:i], keys[i+1:]...)
			break
		}
	}
	for key, e := range s.idem[ownerID] {
		if e.SnapshotID == snapshotID {
			delete(s.idem[ownerID], key)
		}
	}
	return nil
}

// ListSnapshots returns the owner's snapshots newest first.
func (s *Store) ListSnapshots(_ context.Context, ownerID uuid.UUID) ([]networth.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := s.keysByOwner[ownerID]
	out := make([]networth.Snapshot, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		if snap, ok := s.snapshots[keys[i].ID]; ok {
			out = append(out, clone(snap))
		}
	}
	return out, nil
}

// GetSnapshot returns a single snapshot for an owner.
func (s *Store) GetSnapshot(_ context.Context, ownerID, snapshotID uuid.UUID) (networth.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[snapshotID]
	if !ok || snap.OwnerID != ownerID {
		return networth.Snapshot{}, errs.ErrNotFound
	}
	return clone(snap), nil
}

// PreviousSnapshot returns the latest snapshot dated strictly before the given day.
func (s *Store) PreviousSnapshot(_ context.Context, ownerID uuid.UUID, before time.Time) (networth.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	day := networth.NormalizeDate(before)
	keys := s.keysByOwner[ownerID]
	// first index with Date >= day; the one before it is the predecessor
	i := sort.Search(len(keys), func(i int) bool { return !keys[i].Date.Before(day) })
	if i == 0 {
		return networth.Snapshot{}, false, nil
	}
	snap, ok := s.snapshots[keys[i-1].ID]
	if !ok {
		return networth.Snapshot{}, false, nil
	}
	return clone(snap), true, nil
}

// SnapshotByDate returns the owner's snapshot for a calendar day.
func (s *Store) SnapshotByDate(_ context.Context, ownerID uuid.UUID, date time.Time) (networth.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	day := networth.NormalizeDate(date)
	for _, k := range s.keysByOwner[ownerID] {
		if k.Date.Equal(day) {
			return clone(s.snapshots[k.ID]), true, nil
		}
	}
	return networth.Snapshot{}, false, nil
}

// GetSnapshotByIdempotencyKey implements snapshot.IdempotencyStore. It also returns the
// fingerprint of the request that claimed the key.
func (s *Store) GetSnapshotByIdempotencyKey(_ context.Context, ownerID uuid.UUID, key string) (networth.Snapshot, string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.idem[ownerID][key]
	if !ok {
		return networth.Snapshot{}, "", false, nil
	}
	snap, ok := s.snapshots[e.SnapshotID]
	if !ok {
		return networth.Snapshot{}, "", false, nil
	}
	return clone(snap), e.Fingerprint, true, nil
}

// SaveIdempotencyKey implements snapshot.IdempotencyStore.
func (s *Store) SaveIdempotencyKey(_ context.Context, ownerID uuid.UUID, key, fingerprint string, snapshotID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.idem[ownerID]
	if !ok {
		m = make(map[string]idemEntry)
		s.idem[ownerID] = m
	}
	// Only set if absent to preserve idempotency
	if _, exists := m[key]; !exists {
		m[key] = idemEntry{SnapshotID: snapshotID, Fingerprint: fingerprint}
	}
	return nil
}

// insertIndexLocked inserts k into the per-owner sorted index, keeping order asc by (Date, ID).
// Caller must hold s.mu (write lock).
func (s *Store) insertIndexLocked(ownerID uuid.UUID, k snapshotKey) {
	keys := s.keysByOwner[ownerID]
	i := sort.Search(len(keys), func(i int) bool {
		if keys[i].Date.After(k.Date) {
			return true
		}
		if keys[i].Date.Equal(k.Date) {
			return keys[i].ID.String() > k.ID.String()
		}
		return false
	})
	if i == len(keys) {
		s.keysByOwner[ownerID] = append(keys, k)
		return
	}
	keys = append(keys, snapshotKey{})
	copy(keys[i+1:], keys[i:])
	keys[i] = k
	s.keysByOwner[ownerID] = keys
}

// clone copies the accounts slice so callers cannot mutate stored state.
func clone(snap networth.Snapshot) networth.Snapshot {
	accounts := make([]networth.Account, len(snap.Accounts))
	copy(accounts, snap.Accounts)
	snap.Accounts = accounts
	return snap
}
