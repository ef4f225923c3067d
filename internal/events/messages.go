// Package events announces domain changes to other processes. Only snapshot creation
// is published today.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/networth/internal/networth"
)

// SnapshotCreated is a lightweight notice. Consumers fetch the full snapshot by id.
type SnapshotCreated struct {
	SnapshotID   uuid.UUID `json:"snapshot_id"`
	OwnerID      uuid.UUID `json:"user_id"`
	Date         string    `json:"date"`
	NetWorth     string    `json:"net_worth"`
	AccountCount int       `json:"account_count"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewSnapshotCreated builds the message for snap.
func NewSnapshotCreated(snap networth.Snapshot) *SnapshotCreated {
	return &SnapshotCreated{
		SnapshotID:   snap.ID,
		OwnerID:      snap.OwnerID,
		Date:         snap.DateString(),
		NetWorth:     snap.Totals.NetWorth.String(),
		AccountCount: len(snap.Accounts),
		Timestamp:    time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SnapshotCreated) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotCreatedFromJSON decodes a message published by ToJSON.
func SnapshotCreatedFromJSON(data []byte) (*SnapshotCreated, error) {
	var msg SnapshotCreated
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
