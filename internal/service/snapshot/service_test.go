package snapshot_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"

	"github.com/tinoosan/networth/internal/errs"
	"github.com/tinoosan/networth/internal/finance"
	"github.com/tinoosan/networth/internal/networth"
	"github.com/tinoosan/networth/internal/service/snapshot"
	"github.com/tinoosan/networth/internal/storage/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type fakePublisher struct {
	mu   sync.Mutex
	got  []networth.Snapshot
	fail bool
}

func (p *fakePublisher) PublishSnapshotCreated(_ context.Context, s networth.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, s)
	if p.fail {
		return errors.New("broker down")
	}
	return nil
}

type countingObserver map[finance.ClassificationSource]int

func (o countingObserver) ObserveClassification(src finance.ClassificationSource) { o[src]++ }

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := networth.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	return d
}

func setup(t *testing.T, opts ...snapshot.Option) (snapshot.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	opts = append([]snapshot.Option{snapshot.WithLogger(testLogger()), snapshot.WithIdempotency(store)}, opts...)
	return snapshot.New(store, store, opts...), store
}

func cash(balance any) snapshot.AccountInput {
	return snapshot.AccountInput{Name: "Checking", Type: "checking", CategoryID: "cash", Balance: balance}
}

func TestCreate_ComputesTotalsAndMetadata(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc, _ := setup(t, snapshot.WithPublisher(pub))
	owner := uuid.New()

	first, replay, err := svc.Create(ctx, snapshot.Input{OwnerID: owner, Date: day(t, "2024-01-31"), Accounts: []snapshot.AccountInput{cash("800")}})
	if err != nil || replay {
		t.Fatalf("create first: %v replay=%v", err, replay)
	}
	if !first.Metadata.IsEmpty() {
		t.Fatalf("first snapshot should have no metrics: %+v", first.Metadata)
	}
	if first.Metadata.HoursInPeriod != finance.DefaultHoursInPeriod {
		t.Fatalf("hours default: %d", first.Metadata.HoursInPeriod)
	}

	second, _, err := svc.Create(ctx, snapshot.Input{
		OwnerID:  owner,
		Date:     day(t, "2024-02-29"),
		Accounts: []snapshot.AccountInput{cash(1000.0), {Name: "Visa", Type: "Credit Card", CategoryID: "Credit Cards", Balance: "250"}},
	})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.Accounts[1].Type != networth.AccountTypeCreditCard || second.Accounts[1].CategoryID != "credit-cards" {
		t.Fatalf("tokens not normalised: %+v", second.Accounts[1])
	}
	if second.Totals.NetWorth.Cmp(decimal.MustNew(750, 0)) != 0 {
		t.Fatalf("net worth %s", second.Totals.NetWorth)
	}
	if second.Metadata.MonthlyGain == nil || second.Metadata.MonthlyGain.Cmp(decimal.MustNew(-50, 0)) != 0 {
		t.Fatalf("gain %v", second.Metadata.MonthlyGain)
	}
	if len(pub.got) != 2 || pub.got[1].ID != second.ID {
		t.Fatalf("expected two published events, got %d", len(pub.got))
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := setup(t)
	owner := uuid.New()
	hours := -1
	cases := []struct {
		name string
		in   snapshot.Input
		want error
	}{
		{"no owner", snapshot.Input{Date: day(t, "2024-01-01"), Accounts: []snapshot.AccountInput{}}, errs.ErrInvalid},
		{"no date", snapshot.Input{OwnerID: owner, Accounts: []snapshot.AccountInput{}}, errs.ErrInvalid},
		{"nil accounts", snapshot.Input{OwnerID: owner, Date: day(t, "2024-01-01")}, errs.ErrInvalid},
		{"negative hours", snapshot.Input{OwnerID: owner, Date: day(t, "2024-01-01"), HoursInPeriod: &hours, Accounts: []snapshot.AccountInput{}}, errs.ErrUnprocessable},
		{"blank name", snapshot.Input{OwnerID: owner, Date: day(t, "2024-01-01"), Accounts: []snapshot.AccountInput{{Name: " "}}}, errs.ErrUnprocessable},
	}
	for _, tc := range cases {
		if _, _, err := svc.Create(context.Background(), tc.in); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v want %v", tc.name, err, tc.want)
		}
	}
}

func TestCreate_EmptyAccountsAndBadBalance(t *testing.T) {
	svc, _ := setup(t)
	owner := uuid.New()
	snap, _, err := svc.Create(context.Background(), snapshot.Input{OwnerID: owner, Date: day(t, "2024-01-01"), Accounts: []snapshot.AccountInput{}})
	if err != nil {
		t.Fatalf("empty accounts: %v", err)
	}
	if !snap.Totals.NetWorth.IsZero() {
		t.Fatalf("net %s", snap.Totals.NetWorth)
	}
	snap, _, err = svc.Create(context.Background(), snapshot.Input{OwnerID: owner, Date: day(t, "2024-01-02"), Accounts: []snapshot.AccountInput{cash("not a number")}})
	if err != nil {
		t.Fatalf("bad balance: %v", err)
	}
	if !snap.Accounts[0].Balance.IsZero() {
		t.Fatalf("bad balance should be 0, got %s", snap.Accounts[0].Balance)
	}
}

func TestCreate_DuplicateDate(t *testing.T) {
	svc, _ := setup(t)
	owner := uuid.New()
	in := snapshot.Input{OwnerID: owner, Date: day(t, "2024-03-01"), Accounts: []snapshot.AccountInput{cash("1")}}
	if _, _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("create: %v", err)
	}
	in.Date = in.Date.Add(15 * time.Hour)
	_, _, err := svc.Create(context.Background(), in)
	if !errors.Is(err, errs.ErrConflict) || !errors.Is(err, errs.ErrDuplicateDate) {
		t.Fatalf("expected duplicate conflict, got %v", err)
	}
	// another owner may use the same day
	in.OwnerID = uuid.New()
	if _, _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("other owner: %v", err)
	}
}

func TestCreate_IdempotencyReplay(t *testing.T) {
	pub := &fakePublisher{}
	svc, store := setup(t, snapshot.WithPublisher(pub))
	owner := uuid.New()
	in := snapshot.Input{OwnerID: owner, Date: day(t, "2024-03-01"), Accounts: []snapshot.AccountInput{cash("1")}, IdempotencyKey: "k-1"}
	a, replay, err := svc.Create(context.Background(), in)
	if err != nil || replay {
		t.Fatalf("first: %v %v", err, replay)
	}
	b, replay, err := svc.Create(context.Background(), in)
	if err != nil || !replay || b.ID != a.ID {
		t.Fatalf("replay: err=%v replay=%v id=%s want %s", err, replay, b.ID, a.ID)
	}
	all, _ := store.ListSnapshots(context.Background(), owner)
	if len(all) != 1 || len(pub.got) != 1 {
		t.Fatalf("replay must not write or publish: %d snapshots, %d events", len(all), len(pub.got))
	}
}

func TestCreate_IdempotencyKeyReusedForDifferentRequest(t *testing.T) {
	svc, store := setup(t)
	owner := uuid.New()
	jan := snapshot.Input{OwnerID: owner, Date: day(t, "2024-01-31"), Accounts: []snapshot.AccountInput{cash("100")}, IdempotencyKey: "k"}
	first, _, err := svc.Create(context.Background(), jan)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	// same request after normalisation still replays
	same := jan
	same.Accounts = []snapshot.AccountInput{{Name: " Checking ", Type: "Checking", CategoryID: "CASH", Balance: "100.00"}}
	got, replay, err := svc.Create(context.Background(), same)
	if err != nil || !replay || got.ID != first.ID {
		t.Fatalf("normalised replay: err=%v replay=%v", err, replay)
	}

	feb := snapshot.Input{OwnerID: owner, Date: day(t, "2024-02-29"), Accounts: []snapshot.AccountInput{cash("250")}, IdempotencyKey: "k"}
	_, replay, err = svc.Create(context.Background(), feb)
	if !errors.Is(err, errs.ErrConflict) || !errors.Is(err, errs.ErrIdempotencyMismatch) || replay {
		t.Fatalf("expected idempotency mismatch, got err=%v replay=%v", err, replay)
	}
	all, _ := store.ListSnapshots(context.Background(), owner)
	if len(all) != 1 {
		t.Fatalf("mismatched request must not write, got %d snapshots", len(all))
	}
	// a fresh key stores the February snapshot
	feb.IdempotencyKey = "k2"
	if _, replay, err := svc.Create(context.Background(), feb); err != nil || replay {
		t.Fatalf("fresh key: err=%v replay=%v", err, replay)
	}
}

func TestCreate_UsesClockForCreatedAt(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.FixedZone("CET", 3600))
	svc, _ := setup(t, snapshot.WithClock(func() time.Time { return at }))
	snap, _, err := svc.Create(context.Background(), snapshot.Input{OwnerID: uuid.New(), Date: day(t, "2024-03-01"), Accounts: []snapshot.AccountInput{cash("1")}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !snap.CreatedAt.Equal(at) || snap.CreatedAt.Location() != time.UTC {
		t.Fatalf("created_at %v, want %v in UTC", snap.CreatedAt, at)
	}
}

func TestCreate_PublishFailureIsNotAnError(t *testing.T) {
	svc, _ := setup(t, snapshot.WithPublisher(&fakePublisher{fail: true}))
	_, _, err := svc.Create(context.Background(), snapshot.Input{OwnerID: uuid.New(), Date: day(t, "2024-03-01"), Accounts: []snapshot.AccountInput{cash("1")}})
	if err != nil {
		t.Fatalf("publish failure leaked: %v", err)
	}
}

func TestCreate_ObservesFallbacks(t *testing.T) {
	obs := countingObserver{}
	svc, _ := setup(t, snapshot.WithObserver(obs))
	accounts := []snapshot.AccountInput{
		cash("1"),
		{Name: "Car loan", Type: "loan", CategoryID: "retired-category", Balance: "10"},
		{Name: "Mystery", Type: "other-asset", CategoryID: "unknown-id", Balance: "-50"},
	}
	snap, _, err := svc.Create(context.Background(), snapshot.Input{OwnerID: uuid.New(), Date: day(t, "2024-03-01"), Accounts: accounts})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if obs[finance.SourceCategory] != 1 || obs[finance.SourceType] != 1 || obs[finance.SourceBalance] != 1 {
		t.Fatalf("observed %+v", obs)
	}
	if snap.Totals.LiabilitiesTotal.Cmp(decimal.MustNew(60, 0)) != 0 {
		t.Fatalf("liabilities %s", snap.Totals.LiabilitiesTotal)
	}
}

func TestList_LiveMetricsAgainstPredecessor(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)
	owner := uuid.New()
	// created out of order on purpose
	for _, c := range []struct{ date, bal string }{{"2024-03-31", "1300"}, {"2024-01-31", "1000"}, {"2024-02-29", "1100"}} {
		if _, _, err := svc.Create(ctx, snapshot.Input{OwnerID: owner, Date: day(t, c.date), Accounts: []snapshot.AccountInput{cash(c.bal)}}); err != nil {
			t.Fatalf("create %s: %v", c.date, err)
		}
	}
	views, err := svc.List(ctx, owner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 3 || views[0].Snapshot.DateString() != "2024-03-31" || views[2].Snapshot.DateString() != "2024-01-31" {
		t.Fatalf("unexpected order")
	}
	// the March snapshot was stored before any predecessor existed
	if !views[0].Snapshot.Metadata.IsEmpty() {
		t.Fatalf("stored metadata should reflect creation time")
	}
	if views[0].Metrics.MonthlyGain == nil || views[0].Metrics.MonthlyGain.Cmp(decimal.MustNew(200, 0)) != 0 {
		t.Fatalf("live gain %v", views[0].Metrics.MonthlyGain)
	}
	if views[2].PreviousID != nil || !views[2].Metrics.IsEmpty() {
		t.Fatalf("oldest view should have no predecessor")
	}

	got, err := svc.Get(ctx, owner, views[1].Snapshot.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PreviousID == nil || *got.PreviousID != views[2].Snapshot.ID {
		t.Fatalf("get predecessor mismatch")
	}
	if got.Metrics.MonthlyGain.Cmp(decimal.MustNew(100, 0)) != 0 {
		t.Fatalf("get gain %s", got.Metrics.MonthlyGain)
	}
}

func TestGetDelete_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)
	owner := uuid.New()
	snap, _, err := svc.Create(ctx, snapshot.Input{OwnerID: owner, Date: day(t, "2024-01-01"), Accounts: []snapshot.AccountInput{cash("1")}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Get(ctx, uuid.New(), snap.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("other owner get: %v", err)
	}
	if err := svc.Delete(ctx, owner, snap.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, owner, snap.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := svc.Get(ctx, owner, snap.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
}
