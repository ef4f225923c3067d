package finance

import (
	"time"

	"github.com/govalues/decimal"

	"github.com/tinoosan/networth/internal/networth"
)

// DefaultHoursInPeriod is a 31-day month.
const DefaultHoursInPeriod = 744

// Period is the engine's view of one snapshot.
type Period struct {
	Accounts      []networth.Account
	HoursInPeriod int
}

// PeriodOf adapts a stored snapshot.
func PeriodOf(s networth.Snapshot) Period {
	return Period{Accounts: s.Accounts, HoursInPeriod: s.Metadata.HoursInPeriod}
}

// investment-like types, matched on the account type rather than the category.
var investmentTypes = map[networth.AccountType]struct{}{
	networth.AccountTypeInvestment: {},
	networth.AccountTypeRetirement: {},
}

// DeriveMetrics compares current against previous. With no previous every metric is
// absent. Each metric is independent: an undefined portfolio change leaves monthly gain in
// place.
func DeriveMetrics(current Period, previous *Period, categories map[string]networth.Category) networth.Metrics {
	var m networth.Metrics
	if previous == nil {
		return m
	}

	now := ComputeTotals(current.Accounts, categories)
	before := ComputeTotals(previous.Accounts, categories)
	if gain, ok := sub(now.NetWorth, before.NetWorth); ok {
		m.MonthlyGain = ptr(gain)
		if current.HoursInPeriod > 0 {
			if dph, ok := quo(gain, intDec(current.HoursInPeriod)); ok {
				m.DollarsPerHour = ptr(dph)
			}
		}
	}

	currVal := investmentValue(current.Accounts)
	prevVal := investmentValue(previous.Accounts)
	if prevVal.IsPos() {
		if delta, ok := sub(currVal, prevVal); ok {
			if ratio, ok := quo(delta, prevVal); ok {
				if pct, ok := mul(ratio, hundred); ok {
					m.PortfolioChange = ptr(pct)
				}
			}
		}
	}
	return m
}

// SnapshotMetrics derives metrics for a stored snapshot and its predecessor, if any.
func SnapshotMetrics(current networth.Snapshot, previous *networth.Snapshot, categories map[string]networth.Category) networth.Metrics {
	if previous == nil {
		return DeriveMetrics(PeriodOf(current), nil, categories)
	}
	prev := PeriodOf(*previous)
	return DeriveMetrics(PeriodOf(current), &prev, categories)
}

func investmentValue(accounts []networth.Account) decimal.Decimal {
	total := zero
	for _, a := range accounts {
		if _, ok := investmentTypes[a.Type]; ok {
			total = add(total, a.Balance)
		}
	}
	return total
}

// HoursInMonth is the number of hours in the given calendar month.
func HoursInMonth(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	days := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return days * 24
}
