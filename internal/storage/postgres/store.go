package postgres

// Package postgres provides a pgx-backed storage implementation that satisfies
// the repository and writer interfaces used by the services.
//
// Migrations that create the expected schema live under db/migrations. Numeric
// columns travel as text in both directions so decimals keep their exact digits.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tinoosan/networth/internal/errs"
	"github.com/tinoosan/networth/internal/networth"
)

// uniqueViolation is the SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

// Store holds a pgx connection pool and implements the read/write interfaces
// used across the service layer. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

const snapshotColumns = `id, owner_id, date, hours_in_period,
	assets_total::text, liabilities_total::text, net_worth::text,
	monthly_gain::text, dollars_per_hour::text, portfolio_change::text, created_at`

// --- Snapshot reads ---

// ListSnapshots returns the owner's snapshots newest first, accounts populated.
func (s *Store) ListSnapshots(ctx context.Context, ownerID uuid.UUID) ([]networth.Snapshot, error) {
	rows, err := s.pool.Query(ctx, `
		select `+snapshotColumns+`
		from snapshots
		where owner_id = $1
		order by date desc, created_at desc, id desc
	`, ownerID)
	if err != nil {
		return nil, err
	}
	snaps, err := collectSnapshots(rows)
	if err != nil {
		return nil, err
	}
	if err := s.loadAccounts(ctx, snaps); err != nil {
		return nil, err
	}
	return snaps, nil
}

// GetSnapshot returns a snapshot by id for an owner.
func (s *Store) GetSnapshot(ctx context.Context, ownerID, snapshotID uuid.UUID) (networth.Snapshot, error) {
	return s.one(ctx, `
		select `+snapshotColumns+`
		from snapshots
		where id = $1 and owner_id = $2
	`, snapshotID, ownerID)
}

// PreviousSnapshot returns the latest snapshot dated strictly before the given day.
func (s *Store) PreviousSnapshot(ctx context.Context, ownerID uuid.UUID, before time.Time) (networth.Snapshot, bool, error) {
	snap, err := s.one(ctx, `
		select `+snapshotColumns+`
		from snapshots
		where owner_id = $1 and date < $2
		order by date desc, created_at desc, id desc
		limit 1
	`, ownerID, networth.NormalizeDate(before))
	return found(snap, err)
}

// SnapshotByDate returns the owner's snapshot for a calendar day.
func (s *Store) SnapshotByDate(ctx context.Context, ownerID uuid.UUID, date time.Time) (networth.Snapshot, bool, error) {
	snap, err := s.one(ctx, `
		select `+snapshotColumns+`
		from snapshots
		where owner_id = $1 and date = $2
	`, ownerID, networth.NormalizeDate(date))
	return found(snap, err)
}

func found(snap networth.Snapshot, err error) (networth.Snapshot, bool, error) {
	if errors.Is(err, errs.ErrNotFound) {
		return networth.Snapshot{}, false, nil
	}
	if err != nil {
		return networth.Snapshot{}, false, err
	}
	return snap, true, nil
}

func (s *Store) one(ctx context.Context, query string, args ...any) (networth.Snapshot, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return networth.Snapshot{}, err
	}
	snaps, err := collectSnapshots(rows)
	if err != nil {
		return networth.Snapshot{}, err
	}
	if len(snaps) == 0 {
		return networth.Snapshot{}, errs.ErrNotFound
	}
	if err := s.loadAccounts(ctx, snaps[:1]); err != nil {
		return networth.Snapshot{}, err
	}
	return snaps[0], nil
}

func collectSnapshots(rows pgx.Rows) ([]networth.Snapshot, error) {
	defer rows.Close()
	out := make([]networth.Snapshot, 0)
	for rows.Next() {
		var (
			snap                     networth.Snapshot
			assets, liabilities, net string
			gain, dph, portfolio     *string
		)
		if err := rows.Scan(&snap.ID, &snap.OwnerID, &snap.Date, &snap.Metadata.HoursInPeriod,
			&assets, &liabilities, &net, &gain, &dph, &portfolio, &snap.CreatedAt); err != nil {
			return nil, err
		}
		var err error
		if snap.Totals, err = parseTotals(assets, liabilities, net); err != nil {
			return nil, err
		}
		if snap.Metadata.Metrics, err = parseMetrics(gain, dph, portfolio); err != nil {
			return nil, err
		}
		snap.Date = networth.NormalizeDate(snap.Date)
		snap.CreatedAt = snap.CreatedAt.UTC()
		snap.Accounts = []networth.Account{}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// loadAccounts fills Accounts for the given snapshots with one query.
func (s *Store) loadAccounts(ctx context.Context, snaps []networth.Snapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(snaps))
	idx := make(map[uuid.UUID]*networth.Snapshot, len(snaps))
	for i := range snaps {
		ids[i] = snaps[i].ID
		idx[snaps[i].ID] = &snaps[i]
	}
	rows, err := s.pool.Query(ctx, `
		select id, snapshot_id, name, type, category_id, balance::text
		from snapshot_accounts
		where snapshot_id = any($1)
		order by snapshot_id, position asc
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var a networth.Account
		var typ, balance string
		if err := rows.Scan(&a.ID, &a.SnapshotID, &a.Name, &typ, &a.CategoryID, &balance); err != nil {
			return err
		}
		a.Type = networth.AccountType(typ)
		if a.Balance, err = decimal.Parse(balance); err != nil {
			return fmt.Errorf("account %s balance: %w", a.ID, err)
		}
		if snap := idx[a.SnapshotID]; snap != nil {
			snap.Accounts = append(snap.Accounts, a)
		}
	}
	return rows.Err()
}

// --- Snapshot writes ---

// CreateSnapshot inserts a snapshot + its accounts in a transaction.
func (s *Store) CreateSnapshot(ctx context.Context, snap networth.Snapshot) (networth.Snapshot, error) {
	snap.Date = networth.NormalizeDate(snap.Date)
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return networth.Snapshot{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	m := snap.Metadata
	if _, err := tx.Exec(ctx, `
		insert into snapshots (id, owner_id, date, hours_in_period, assets_total, liabilities_total, net_worth,
			monthly_gain, dollars_per_hour, portfolio_change, created_at)
		values ($1,$2,$3,$4,$5::numeric,$6::numeric,$7::numeric,$8::numeric,$9::numeric,$10::numeric,$11)
	`, snap.ID, snap.OwnerID, snap.Date, m.HoursInPeriod,
		snap.Totals.AssetsTotal.String(), snap.Totals.LiabilitiesTotal.String(), snap.Totals.NetWorth.String(),
		text(m.MonthlyGain), text(m.DollarsPerHour), text(m.PortfolioChange), snap.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return networth.Snapshot{}, errs.ErrDuplicateDate
		}
		return networth.Snapshot{}, err
	}
	batch := &pgx.Batch{}
	for i, a := range snap.Accounts {
		batch.Queue(`
			insert into snapshot_accounts (id, snapshot_id, position, name, type, category_id, balance)
			values ($1,$2,$3,$4,$5,$6,$7::numeric)
		`, a.ID, snap.ID, i, a.Name, string(a.Type), a.CategoryID, a.Balance.String())
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return networth.Snapshot{}, fmt.Errorf("insert accounts: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return networth.Snapshot{}, err
	}
	return snap, nil
}

// DeleteSnapshot removes a snapshot; accounts and idempotency keys cascade.
func (s *Store) DeleteSnapshot(ctx context.Context, ownerID, snapshotID uuid.UUID) error {
	ct, err := s.pool.Exec(ctx, `delete from snapshots where id = $1 and owner_id = $2`, snapshotID, ownerID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// --- Idempotency ---

// GetSnapshotByIdempotencyKey resolves a snapshot by idempotency key for the owner,
// along with the fingerprint of the request that claimed the key.
func (s *Store) GetSnapshotByIdempotencyKey(ctx context.Context, ownerID uuid.UUID, key string) (networth.Snapshot, string, bool, error) {
	var (
		id          uuid.UUID
		fingerprint string
	)
	err := s.pool.QueryRow(ctx, `
		select snapshot_id, fingerprint from snapshot_idempotency where owner_id=$1 and key=$2
	`, ownerID, key).Scan(&id, &fingerprint)
	if errors.Is(err, pgx.ErrNoRows) {
		return networth.Snapshot{}, "", false, nil
	}
	if err != nil {
		return networth.Snapshot{}, "", false, err
	}
	snap, ok, err := found(s.GetSnapshot(ctx, ownerID, id))
	if !ok || err != nil {
		return networth.Snapshot{}, "", false, err
	}
	return snap, fingerprint, true, nil
}

// SaveIdempotencyKey stores a mapping from (owner,key) to snapshot id.
func (s *Store) SaveIdempotencyKey(ctx context.Context, ownerID uuid.UUID, key, fingerprint string, snapshotID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		insert into snapshot_idempotency (owner_id, key, snapshot_id, fingerprint)
		values ($1,$2,$3,$4)
		on conflict (owner_id, key) do nothing
	`, ownerID, key, snapshotID, fingerprint)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func text(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func parseTotals(assets, liabilities, net string) (networth.Totals, error) {
	var t networth.Totals
	var err error
	if t.AssetsTotal, err = decimal.Parse(assets); err != nil {
		return t, fmt.Errorf("assets_total: %w", err)
	}
	if t.LiabilitiesTotal, err = decimal.Parse(liabilities); err != nil {
		return t, fmt.Errorf("liabilities_total: %w", err)
	}
	if t.NetWorth, err = decimal.Parse(net); err != nil {
		return t, fmt.Errorf("net_worth: %w", err)
	}
	return t, nil
}

func parseMetrics(gain, dph, portfolio *string) (networth.Metrics, error) {
	var m networth.Metrics
	for _, f := range []struct {
		dst **decimal.Decimal
		src *string
	}{{&m.MonthlyGain, gain}, {&m.DollarsPerHour, dph}, {&m.PortfolioChange, portfolio}} {
		if f.src == nil {
			continue
		}
		d, err := decimal.Parse(*f.src)
		if err != nil {
			return m, err
		}
		*f.dst = &d
	}
	return m, nil
}
