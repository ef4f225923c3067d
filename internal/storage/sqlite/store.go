// Package sqlite is a single-file storage backend on modernc.org/sqlite. The schema is
// embedded and applied with golang-migrate when the store opens.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	_ "modernc.org/sqlite"

	"github.com/tinoosan/networth/internal/errs"
	"github.com/tinoosan/networth/internal/networth"
)

// Store implements the snapshot repository, writer and idempotency store.
type Store struct {
	db *sql.DB
}

// Open creates the database file if needed, applies migrations and returns a store.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ready pings the database.
func (s *Store) Ready(ctx context.Context) error { return s.db.PingContext(ctx) }

const selectSnapshot = `SELECT id, owner_id, date, hours_in_period, assets_total, liabilities_total, net_worth,
	monthly_gain, dollars_per_hour, portfolio_change, created_at FROM snapshots`

// ListSnapshots returns the owner's snapshots newest first.
func (s *Store) ListSnapshots(ctx context.Context, ownerID uuid.UUID) ([]networth.Snapshot, error) {
	return s.query(ctx, selectSnapshot+` WHERE owner_id = ? ORDER BY date DESC, created_at DESC, id DESC`, ownerID.String())
}

func (s *Store) GetSnapshot(ctx context.Context, ownerID, snapshotID uuid.UUID) (networth.Snapshot, error) {
	snaps, err := s.query(ctx, selectSnapshot+` WHERE id = ? AND owner_id = ?`, snapshotID.String(), ownerID.String())
	if err != nil {
		return networth.Snapshot{}, err
	}
	if len(snaps) == 0 {
		return networth.Snapshot{}, errs.ErrNotFound
	}
	return snaps[0], nil
}

func (s *Store) PreviousSnapshot(ctx context.Context, ownerID uuid.UUID, before time.Time) (networth.Snapshot, bool, error) {
	return s.first(ctx, selectSnapshot+` WHERE owner_id = ? AND date < ? ORDER BY date DESC, created_at DESC, id DESC LIMIT 1`,
		ownerID.String(), networth.NormalizeDate(before).Format(networth.DateLayout))
}

func (s *Store) SnapshotByDate(ctx context.Context, ownerID uuid.UUID, date time.Time) (networth.Snapshot, bool, error) {
	return s.first(ctx, selectSnapshot+` WHERE owner_id = ? AND date = ?`,
		ownerID.String(), networth.NormalizeDate(date).Format(networth.DateLayout))
}

func (s *Store) first(ctx context.Context, query string, args ...any) (networth.Snapshot, bool, error) {
	snaps, err := s.query(ctx, query, args...)
	if err != nil || len(snaps) == 0 {
		return networth.Snapshot{}, false, err
	}
	return snaps[0], true, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]networth.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	out := make([]networth.Snapshot, 0)
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()
	// accounts are loaded after the cursor closes; the pool has a single connection
	for i := range out {
		if out[i].Accounts, err = s.accounts(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func scanSnapshot(rows *sql.Rows) (networth.Snapshot, error) {
	var (
		snap                     networth.Snapshot
		id, owner, date, created string
		assets, liabilities, net string
		gain, dph, portfolio     sql.NullString
	)
	if err := rows.Scan(&id, &owner, &date, &snap.Metadata.HoursInPeriod, &assets, &liabilities, &net, &gain, &dph, &portfolio, &created); err != nil {
		return snap, fmt.Errorf("scan snapshot: %w", err)
	}
	var err error
	if snap.ID, err = uuid.Parse(id); err != nil {
		return snap, err
	}
	if snap.OwnerID, err = uuid.Parse(owner); err != nil {
		return snap, err
	}
	if snap.Date, err = networth.ParseDate(date); err != nil {
		return snap, err
	}
	if snap.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return snap, err
	}
	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{{&snap.Totals.AssetsTotal, assets}, {&snap.Totals.LiabilitiesTotal, liabilities}, {&snap.Totals.NetWorth, net}} {
		if *f.dst, err = decimal.Parse(f.src); err != nil {
			return snap, fmt.Errorf("parse total: %w", err)
		}
	}
	for _, f := range []struct {
		dst **decimal.Decimal
		src sql.NullString
	}{{&snap.Metadata.MonthlyGain, gain}, {&snap.Metadata.DollarsPerHour, dph}, {&snap.Metadata.PortfolioChange, portfolio}} {
		if !f.src.Valid {
			continue
		}
		d, err := decimal.Parse(f.src.String)
		if err != nil {
			return snap, fmt.Errorf("parse metric: %w", err)
		}
		*f.dst = &d
	}
	return snap, nil
}

func (s *Store) accounts(ctx context.Context, snapshotID uuid.UUID) ([]networth.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, type, category_id, balance FROM snapshot_accounts WHERE snapshot_id = ? ORDER BY position`, snapshotID.String())
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()
	out := make([]networth.Account, 0)
	for rows.Next() {
		var id, typ, balance string
		a := networth.Account{SnapshotID: snapshotID}
		if err := rows.Scan(&id, &a.Name, &typ, &a.CategoryID, &balance); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		if a.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if a.Balance, err = decimal.Parse(balance); err != nil {
			return nil, fmt.Errorf("account %s balance: %w", id, err)
		}
		a.Type = networth.AccountType(typ)
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateSnapshot inserts the snapshot and its accounts in one transaction.
func (s *Store) CreateSnapshot(ctx context.Context, snap networth.Snapshot) (networth.Snapshot, error) {
	snap.Date = networth.NormalizeDate(snap.Date)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return networth.Snapshot{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	m := snap.Metadata
	_, err = tx.ExecContext(ctx, `INSERT INTO snapshots (id, owner_id, date, hours_in_period, assets_total, liabilities_total, net_worth,
		monthly_gain, dollars_per_hour, portfolio_change, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID.String(), snap.OwnerID.String(), snap.DateString(), m.HoursInPeriod,
		snap.Totals.AssetsTotal.String(), snap.Totals.LiabilitiesTotal.String(), snap.Totals.NetWorth.String(),
		nullable(m.MonthlyGain), nullable(m.DollarsPerHour), nullable(m.PortfolioChange),
		snap.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return networth.Snapshot{}, errs.ErrDuplicateDate
		}
		return networth.Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}
	for i, a := range snap.Accounts {
		if _, err := tx.ExecContext(ctx, `INSERT INTO snapshot_accounts (id, snapshot_id, position, name, type, category_id, balance) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID.String(), snap.ID.String(), i, a.Name, string(a.Type), a.CategoryID, a.Balance.String()); err != nil {
			return networth.Snapshot{}, fmt.Errorf("insert account: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return networth.Snapshot{}, fmt.Errorf("commit: %w", err)
	}
	return snap, nil
}

// DeleteSnapshot removes the snapshot with its accounts and idempotency keys. Children are
// deleted explicitly because foreign keys are off by default in sqlite.
func (s *Store) DeleteSnapshot(ctx context.Context, ownerID, snapshotID uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	res, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ? AND owner_id = ?`, snapshotID.String(), ownerID.String())
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_accounts WHERE snapshot_id = ?`, snapshotID.String()); err != nil {
		return fmt.Errorf("delete accounts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_idempotency WHERE snapshot_id = ?`, snapshotID.String()); err != nil {
		return fmt.Errorf("delete idempotency keys: %w", err)
	}
	return tx.Commit()
}

func (s *Store) GetSnapshotByIdempotencyKey(ctx context.Context, ownerID uuid.UUID, key string) (networth.Snapshot, string, bool, error) {
	var id, fingerprint string
	err := s.db.QueryRowContext(ctx, `SELECT snapshot_id, fingerprint FROM snapshot_idempotency WHERE owner_id = ? AND key = ?`, ownerID.String(), key).Scan(&id, &fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return networth.Snapshot{}, "", false, nil
	}
	if err != nil {
		return networth.Snapshot{}, "", false, err
	}
	snapID, err := uuid.Parse(id)
	if err != nil {
		return networth.Snapshot{}, "", false, err
	}
	snap, err := s.GetSnapshot(ctx, ownerID, snapID)
	if errors.Is(err, errs.ErrNotFound) {
		return networth.Snapshot{}, "", false, nil
	}
	if err != nil {
		return networth.Snapshot{}, "", false, err
	}
	return snap, fingerprint, true, nil
}

func (s *Store) SaveIdempotencyKey(ctx context.Context, ownerID uuid.UUID, key, fingerprint string, snapshotID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO snapshot_idempotency (owner_id, key, snapshot_id, fingerprint) VALUES (?, ?, ?, ?) ON CONFLICT (owner_id, key) DO NOTHING`,
		ownerID.String(), key, snapshotID.String(), fingerprint)
	return err
}

func nullable(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}
