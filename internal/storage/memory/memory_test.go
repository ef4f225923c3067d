package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"

	"github.com/tinoosan/networth/internal/errs"
	"github.com/tinoosan/networth/internal/networth"
)

func mk(owner uuid.UUID, date string) networth.Snapshot {
	d, _ := networth.ParseDate(date)
	id := uuid.New()
	return networth.Snapshot{
		ID:       id,
		OwnerID:  owner,
		Date:     d,
		Accounts: []networth.Account{{ID: uuid.New(), SnapshotID: id, Name: "Cash", Type: networth.AccountTypeChecking, CategoryID: "cash", Balance: decimal.MustNew(1, 0)}},
	}
}

func TestStore_OrderAndPrevious(t *testing.T) {
	ctx := context.Background()
	s := New()
	owner := uuid.New()
	for _, d := range []string{"2024-02-01", "2024-01-01", "2024-03-01"} {
		if _, err := s.CreateSnapshot(ctx, mk(owner, d)); err != nil {
			t.Fatalf("create %s: %v", d, err)
		}
	}
	list, _ := s.ListSnapshots(ctx, owner)
	if len(list) != 3 || list[0].DateString() != "2024-03-01" || list[2].DateString() != "2024-01-01" {
		t.Fatalf("unexpected order")
	}
	feb, _ := networth.ParseDate("2024-02-01")
	prev, ok, err := s.PreviousSnapshot(ctx, owner, feb)
	if err != nil || !ok || prev.DateString() != "2024-01-01" {
		t.Fatalf("previous of feb: %v %v %s", err, ok, prev.DateString())
	}
	jan, _ := networth.ParseDate("2024-01-01")
	if _, ok, _ := s.PreviousSnapshot(ctx, owner, jan); ok {
		t.Fatalf("jan has no predecessor")
	}
	mid, _ := networth.ParseDate("2024-02-15")
	prev, ok, _ = s.PreviousSnapshot(ctx, owner, mid)
	if !ok || prev.DateString() != "2024-02-01" {
		t.Fatalf("previous of mid-feb: %s", prev.DateString())
	}
}

func TestStore_DuplicateDateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	owner := uuid.New()
	a, err := s.CreateSnapshot(ctx, mk(owner, "2024-01-01"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateSnapshot(ctx, mk(owner, "2024-01-01")); !errors.Is(err, errs.ErrDuplicateDate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	_ = s.SaveIdempotencyKey(ctx, owner, "k", "fp", a.ID)
	if err := s.DeleteSnapshot(ctx, uuid.New(), a.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("foreign delete: %v", err)
	}
	if err := s.DeleteSnapshot(ctx, owner, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, ok, _ := s.GetSnapshotByIdempotencyKey(ctx, owner, "k"); ok {
		t.Fatalf("idempotency key should go with the snapshot")
	}
	// the day is free again
	if _, err := s.CreateSnapshot(ctx, mk(owner, "2024-01-01")); err != nil {
		t.Fatalf("recreate: %v", err)
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	owner := uuid.New()
	a, _ := s.CreateSnapshot(ctx, mk(owner, "2024-01-01"))
	a.Accounts[0].Name = "mutated"
	got, _ := s.GetSnapshot(ctx, owner, a.ID)
	if got.Accounts[0].Name != "Cash" {
		t.Fatalf("store state leaked")
	}
}

func TestStore_IdempotencyFirstWriteWins(t *testing.T) {
	ctx := context.Background()
	s := New()
	owner := uuid.New()
	a, _ := s.CreateSnapshot(ctx, mk(owner, "2024-01-01"))
	b, _ := s.CreateSnapshot(ctx, mk(owner, "2024-01-02"))
	_ = s.SaveIdempotencyKey(ctx, owner, "k", "fp-a", a.ID)
	_ = s.SaveIdempotencyKey(ctx, owner, "k", "fp-b", b.ID)
	got, fp, ok, _ := s.GetSnapshotByIdempotencyKey(ctx, owner, "k")
	if !ok || got.ID != a.ID || fp != "fp-a" {
		t.Fatalf("expected first mapping to win")
	}
}

func TestStore_ConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	s := New()
	owner := uuid.New()
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap := mk(owner, start.AddDate(0, 0, i%25).Format(networth.DateLayout))
			_, _ = s.CreateSnapshot(ctx, snap)
		}(i)
	}
	wg.Wait()
	list, _ := s.ListSnapshots(ctx, owner)
	if len(list) != 25 {
		t.Fatalf("expected 25 distinct days, got %d", len(list))
	}
}
