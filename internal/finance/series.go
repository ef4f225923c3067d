package finance

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/networth/internal/networth"
)

// Point is one snapshot on a chart: live totals and live metrics against the
// chronologically previous point.
type Point struct {
	SnapshotID uuid.UUID
	Date       time.Time
	Totals     networth.Totals
	Metrics    networth.Metrics
}

// Series returns chart points in chronological order. The input order does not matter.
func Series(snapshots []networth.Snapshot, categories map[string]networth.Category) []Point {
	asc := SortedAscending(snapshots)
	out := make([]Point, len(asc))
	for i := range asc {
		var prev *networth.Snapshot
		if i > 0 {
			prev = &asc[i-1]
		}
		out[i] = Point{
			SnapshotID: asc[i].ID,
			Date:       asc[i].Date,
			Totals:     ComputeTotals(asc[i].Accounts, categories),
			Metrics:    SnapshotMetrics(asc[i], prev, categories),
		}
	}
	return out
}

// SortedDescending returns a copy ordered newest first, the order "latest/previous"
// comparisons use. Equal dates fall back to creation time, then id.
func SortedDescending(snapshots []networth.Snapshot) []networth.Snapshot {
	out := make([]networth.Snapshot, len(snapshots))
	copy(out, snapshots)
	sort.SliceStable(out, func(i, j int) bool { return newer(out[i], out[j]) })
	return out
}

// SortedAscending returns a copy ordered oldest first.
func SortedAscending(snapshots []networth.Snapshot) []networth.Snapshot {
	out := make([]networth.Snapshot, len(snapshots))
	copy(out, snapshots)
	sort.SliceStable(out, func(i, j int) bool { return newer(out[j], out[i]) })
	return out
}

func newer(a, b networth.Snapshot) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() > b.ID.String()
}
