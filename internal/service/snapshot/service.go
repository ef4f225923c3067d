// Package snapshot implements snapshot ingestion and the read paths that recompute totals
// and metrics from each snapshot's own accounts.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/networth/internal/dictionary"
	"github.com/tinoosan/networth/internal/errs"
	"github.com/tinoosan/networth/internal/finance"
	"github.com/tinoosan/networth/internal/networth"
	"github.com/tinoosan/networth/internal/slug"
)

// Repo defines read operations needed by the service.
type Repo interface {
	// ListSnapshots returns the owner's snapshots, newest first.
	ListSnapshots(ctx context.Context, ownerID uuid.UUID) ([]networth.Snapshot, error)
	GetSnapshot(ctx context.Context, ownerID, snapshotID uuid.UUID) (networth.Snapshot, error)
	// PreviousSnapshot returns the latest snapshot dated strictly before the given day.
	PreviousSnapshot(ctx context.Context, ownerID uuid.UUID, before time.Time) (networth.Snapshot, bool, error)
	SnapshotByDate(ctx context.Context, ownerID uuid.UUID, date time.Time) (networth.Snapshot, bool, error)
}

// Writer defines write operations needed by the service.
type Writer interface {
	// CreateSnapshot persists the snapshot and its accounts atomically. A second snapshot for
	// the same owner and day fails with errs.ErrDuplicateDate.
	CreateSnapshot(ctx context.Context, s networth.Snapshot) (networth.Snapshot, error)
	// DeleteSnapshot removes the snapshot and its accounts.
	DeleteSnapshot(ctx context.Context, ownerID, snapshotID uuid.UUID) error
}

// IdempotencyStore maps a client key to the snapshot it created and the fingerprint of
// the request that created it. The first save for a key wins.
type IdempotencyStore interface {
	GetSnapshotByIdempotencyKey(ctx context.Context, ownerID uuid.UUID, key string) (networth.Snapshot, string, bool, error)
	SaveIdempotencyKey(ctx context.Context, ownerID uuid.UUID, key, fingerprint string, snapshotID uuid.UUID) error
}

// Publisher announces created snapshots.
type Publisher interface {
	PublishSnapshotCreated(ctx context.Context, s networth.Snapshot) error
}

// Observer is told how each ingested account was classified.
type Observer interface {
	ObserveClassification(source finance.ClassificationSource)
}

// AccountInput is one account as submitted. Balance is the raw payload value and goes
// through finance.ParseBalance.
type AccountInput struct {
	Name       string
	Type       string
	CategoryID string
	Balance    any
}

// Input is a snapshot submission.
type Input struct {
	OwnerID uuid.UUID
	Date    time.Time
	// HoursInPeriod defaults to finance.DefaultHoursInPeriod when nil.
	HoursInPeriod  *int
	Accounts       []AccountInput
	IdempotencyKey string
}

// View is a stored snapshot with totals and metrics recomputed live.
type View struct {
	Snapshot networth.Snapshot
	Totals   networth.Totals
	Metrics  networth.Metrics
	// PreviousID is the predecessor the metrics were computed against.
	PreviousID *uuid.UUID
}

// Service exposes snapshot ingestion and read operations.
type Service interface {
	Validate(in Input) error
	Create(ctx context.Context, in Input) (networth.Snapshot, bool, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]View, error)
	Get(ctx context.Context, ownerID, snapshotID uuid.UUID) (View, error)
	Delete(ctx context.Context, ownerID, snapshotID uuid.UUID) error
}

// Option configures optional collaborators.
type Option func(*service)

// WithIdempotency enables Idempotency-Key replays.
func WithIdempotency(store IdempotencyStore) Option { return func(s *service) { s.idem = store } }

// WithPublisher publishes SnapshotCreated after every successful create.
func WithPublisher(p Publisher) Option { return func(s *service) { s.pub = p } }

// WithObserver reports each account's classification source.
func WithObserver(o Observer) Option { return func(s *service) { s.obs = o } }

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option { return func(s *service) { s.log = l } }

// WithClock overrides time.Now for CreatedAt.
func WithClock(now func() time.Time) Option { return func(s *service) { s.now = now } }

type service struct {
	repo       Repo
	writer     Writer
	idem       IdempotencyStore
	pub        Publisher
	obs        Observer
	log        *slog.Logger
	now        func() time.Time
	categories map[string]networth.Category
}

func New(repo Repo, writer Writer, opts ...Option) Service {
	s := &service{
		repo:       repo,
		writer:     writer,
		log:        slog.Default(),
		now:        time.Now,
		categories: dictionary.ByID(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const maxAccounts = 500

// Validate checks the structural rules of a submission. Bad balances are not an error;
// they count as 0.
func (s *service) Validate(in Input) error {
	if in.OwnerID == uuid.Nil {
		return fmt.Errorf("%w: user_id is required", errs.ErrInvalid)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("%w: date is required", errs.ErrInvalid)
	}
	if in.Accounts == nil {
		return fmt.Errorf("%w: accounts must be an array", errs.ErrInvalid)
	}
	if len(in.Accounts) > maxAccounts {
		return fmt.Errorf("%w: too many accounts", errs.ErrUnprocessable)
	}
	if in.HoursInPeriod != nil && *in.HoursInPeriod < 0 {
		return fmt.Errorf("%w: hours_in_period must be >= 0", errs.ErrUnprocessable)
	}
	for i, a := range in.Accounts {
		if strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("%w: accounts[%d]: name is required", errs.ErrUnprocessable, i)
		}
	}
	return nil
}

// Create validates and stores a new snapshot. The bool reports an idempotent replay, in
// which case the original snapshot is returned and nothing is written.
func (s *service) Create(ctx context.Context, in Input) (networth.Snapshot, bool, error) {
	if err := s.Validate(in); err != nil {
		return networth.Snapshot{}, false, err
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	var fp string
	if key != "" && s.idem != nil {
		fp = fingerprint(in)
		prev, prevFP, ok, err := s.idem.GetSnapshotByIdempotencyKey(ctx, in.OwnerID, key)
		if err != nil {
			return networth.Snapshot{}, false, err
		}
		if ok {
			if prevFP != "" && prevFP != fp {
				return networth.Snapshot{}, false, fmt.Errorf("%w: %w: key %q was used for a different snapshot", errs.ErrConflict, errs.ErrIdempotencyMismatch, key)
			}
			return prev, true, nil
		}
	}

	date := networth.NormalizeDate(in.Date)
	if _, exists, err := s.repo.SnapshotByDate(ctx, in.OwnerID, date); err != nil {
		return networth.Snapshot{}, false, err
	} else if exists {
		return networth.Snapshot{}, false, duplicate(date)
	}

	hours := finance.DefaultHoursInPeriod
	if in.HoursInPeriod != nil {
		hours = *in.HoursInPeriod
	}
	snap := networth.Snapshot{
		ID:        uuid.New(),
		OwnerID:   in.OwnerID,
		Date:      date,
		CreatedAt: s.now().UTC(),
		Accounts:  make([]networth.Account, 0, len(in.Accounts)),
	}
	for _, a := range in.Accounts {
		snap.Accounts = append(snap.Accounts, networth.Account{
			ID:         uuid.New(),
			SnapshotID: snap.ID,
			Name:       strings.TrimSpace(a.Name),
			Type:       networth.AccountType(slug.Slugify(a.Type)),
			CategoryID: slug.Slugify(a.CategoryID),
			Balance:    finance.ParseBalance(a.Balance),
		})
	}

	var prevPeriod *finance.Period
	prev, hasPrev, err := s.repo.PreviousSnapshot(ctx, in.OwnerID, date)
	if err != nil {
		return networth.Snapshot{}, false, err
	}
	if hasPrev {
		p := finance.PeriodOf(prev)
		prevPeriod = &p
	}
	snap.Totals = finance.ComputeTotals(snap.Accounts, s.categories)
	snap.Metadata = networth.SnapshotMetadata{
		HoursInPeriod: hours,
		Metrics:       finance.DeriveMetrics(finance.Period{Accounts: snap.Accounts, HoursInPeriod: hours}, prevPeriod, s.categories),
	}
	s.observe(snap.Accounts)

	created, err := s.writer.CreateSnapshot(ctx, snap)
	if err != nil {
		if errors.Is(err, errs.ErrDuplicateDate) {
			return networth.Snapshot{}, false, duplicate(date)
		}
		return networth.Snapshot{}, false, err
	}
	if key != "" && s.idem != nil {
		if err := s.idem.SaveIdempotencyKey(ctx, in.OwnerID, key, fp, created.ID); err != nil {
			s.log.Warn("idempotency key not saved", "user_id", in.OwnerID, "snapshot_id", created.ID, "err", err)
		}
	}
	s.log.Info("snapshot created",
		"user_id", created.OwnerID,
		"snapshot_id", created.ID,
		"date", created.DateString(),
		"accounts", len(created.Accounts),
		"net_worth", created.Totals.NetWorth.String(),
	)
	if s.pub != nil {
		if err := s.pub.PublishSnapshotCreated(ctx, created); err != nil {
			s.log.Error("publish snapshot created", "snapshot_id", created.ID, "err", err)
		}
	}
	return created, false, nil
}

func duplicate(date time.Time) error {
	return fmt.Errorf("%w: %w: snapshot already exists for %s", errs.ErrConflict, errs.ErrDuplicateDate, date.Format(networth.DateLayout))
}

func (s *service) observe(accounts []networth.Account) {
	for i, c := range finance.ClassifyAll(accounts, s.categories) {
		if c.Ambiguous() {
			s.log.Debug("account classified by fallback", "account", accounts[i].Name, "category_id", accounts[i].CategoryID, "source", string(c.Source))
		}
		if s.obs != nil {
			s.obs.ObserveClassification(c.Source)
		}
	}
}

func (s *service) List(ctx context.Context, ownerID uuid.UUID) ([]View, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("%w: user_id is required", errs.ErrInvalid)
	}
	snaps, err := s.repo.ListSnapshots(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	desc := finance.SortedDescending(snaps)
	out := make([]View, len(desc))
	for i := range desc {
		var prev *networth.Snapshot
		if i+1 < len(desc) {
			prev = &desc[i+1]
		}
		out[i] = s.view(desc[i], prev)
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, ownerID, snapshotID uuid.UUID) (View, error) {
	if ownerID == uuid.Nil || snapshotID == uuid.Nil {
		return View{}, fmt.Errorf("%w: user_id and id are required", errs.ErrInvalid)
	}
	snap, err := s.repo.GetSnapshot(ctx, ownerID, snapshotID)
	if err != nil {
		return View{}, err
	}
	prev, ok, err := s.repo.PreviousSnapshot(ctx, ownerID, snap.Date)
	if err != nil {
		return View{}, err
	}
	if !ok {
		return s.view(snap, nil), nil
	}
	return s.view(snap, &prev), nil
}

func (s *service) Delete(ctx context.Context, ownerID, snapshotID uuid.UUID) error {
	if ownerID == uuid.Nil || snapshotID == uuid.Nil {
		return fmt.Errorf("%w: user_id and id are required", errs.ErrInvalid)
	}
	if err := s.writer.DeleteSnapshot(ctx, ownerID, snapshotID); err != nil {
		return err
	}
	s.log.Info("snapshot deleted", "user_id", ownerID, "snapshot_id", snapshotID)
	return nil
}

func (s *service) view(snap networth.Snapshot, prev *networth.Snapshot) View {
	v := View{
		Snapshot: snap,
		Totals:   finance.ComputeTotals(snap.Accounts, s.categories),
		Metrics:  finance.SnapshotMetrics(snap, prev, s.categories),
	}
	if prev != nil {
		id := prev.ID
		v.PreviousID = &id
	}
	return v
}
