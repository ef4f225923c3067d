// Package networth holds the domain entities shared by the finance engine,
// the services and the storage backends.
package networth

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
)

// DateLayout is the calendar-date wire and storage format for snapshots.
const DateLayout = "2006-01-02"

// CategoryKind classifies an account category as an asset or a liability.
type CategoryKind string

const (
	// KindAsset marks categories whose balances add to net worth.
	KindAsset CategoryKind = "asset"
	// KindLiability marks categories whose balances are amounts owed.
	KindLiability CategoryKind = "liability"
)

// AccountType is the finer-grained tag a user picks for an account.
type AccountType string

const (
	AccountTypeChecking       AccountType = "checking"
	AccountTypeSavings        AccountType = "savings"
	AccountTypeInvestment     AccountType = "investment"
	AccountTypeRetirement     AccountType = "retirement"
	AccountTypeRealEstate     AccountType = "real-estate"
	AccountTypeVehicle        AccountType = "vehicle"
	AccountTypeCreditCard     AccountType = "credit-card"
	AccountTypeLoan           AccountType = "loan"
	AccountTypeMortgage       AccountType = "mortgage"
	AccountTypeOtherAsset     AccountType = "other-asset"
	AccountTypeOtherLiability AccountType = "other-liability"
)

// Category is static reference data describing a group of accounts.
type Category struct {
	ID          string       `json:"id"`
	DisplayName string       `json:"display_name"`
	Kind        CategoryKind `json:"kind"`
	Description string       `json:"description"`
	Icon        string       `json:"icon"`
}

// Account is a single balance entry inside a snapshot.
type Account struct {
	ID         uuid.UUID
	SnapshotID uuid.UUID
	Name       string
	Type       AccountType
	CategoryID string
	// Balance is signed. For liabilities a positive value is the amount owed.
	Balance decimal.Decimal
}

// Totals are always derived from a snapshot's accounts.
type Totals struct {
	AssetsTotal      decimal.Decimal
	LiabilitiesTotal decimal.Decimal
	NetWorth         decimal.Decimal
}

// Metrics are the deltas between a snapshot and its predecessor.
// A nil field means the value is not defined, never zero.
type Metrics struct {
	MonthlyGain     *decimal.Decimal
	DollarsPerHour  *decimal.Decimal
	PortfolioChange *decimal.Decimal
}

// IsEmpty reports whether no metric is defined.
func (m Metrics) IsEmpty() bool {
	return m.MonthlyGain == nil && m.DollarsPerHour == nil && m.PortfolioChange == nil
}

// SnapshotMetadata is what was known when the snapshot was created.
type SnapshotMetadata struct {
	HoursInPeriod int
	Metrics
}

// Snapshot is an immutable, dated statement of account balances for one owner.
type Snapshot struct {
	ID       uuid.UUID
	OwnerID  uuid.UUID
	Date     time.Time
	Accounts []Account
	// Totals as computed at creation. Readers recompute them from Accounts.
	Totals    Totals
	Metadata  SnapshotMetadata
	CreatedAt time.Time
}

// DateString returns the snapshot date in DateLayout.
func (s Snapshot) DateString() string { return s.Date.Format(DateLayout) }

// NormalizeDate drops the clock part so dates compare as calendar days.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return NormalizeDate(t), nil
}
