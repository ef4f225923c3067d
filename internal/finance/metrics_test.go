package finance

import (
	"testing"
	"time"

	"github.com/tinoosan/networth/internal/dictionary"
	"github.com/tinoosan/networth/internal/networth"
)

func period(hours int, accounts ...networth.Account) Period {
	return Period{Accounts: accounts, HoursInPeriod: hours}
}

func TestDeriveMetrics_NoPrevious(t *testing.T) {
	m := DeriveMetrics(period(744, acct(networth.AccountTypeChecking, dictionary.CategoryCash, "10")), nil, dictionary.ByID())
	if !m.IsEmpty() {
		t.Fatalf("expected empty metrics, got %+v", m)
	}
}

func TestScenarioA_MonthlyGainAndDollarsPerHour(t *testing.T) {
	cur := period(744, acct(networth.AccountTypeChecking, dictionary.CategoryCash, "1000"))
	prev := period(744, acct(networth.AccountTypeChecking, dictionary.CategoryCash, "800"))
	m := DeriveMetrics(cur, &prev, dictionary.ByID())
	if m.MonthlyGain == nil || m.DollarsPerHour == nil {
		t.Fatalf("missing metrics: %+v", m)
	}
	assertDec(t, "gain", *m.MonthlyGain, "200")
	if got := m.DollarsPerHour.Round(4); got.Cmp(d("0.2688")) != 0 {
		t.Fatalf("dph: got %s", got)
	}
	if m.PortfolioChange != nil {
		t.Fatalf("portfolio change should be absent, got %s", m.PortfolioChange)
	}
}

func TestScenarioB_PortfolioChange(t *testing.T) {
	cur := period(744, acct(networth.AccountTypeInvestment, dictionary.CategoryInvestments, "1100"))
	prev := period(744, acct(networth.AccountTypeInvestment, dictionary.CategoryInvestments, "1000"))
	m := DeriveMetrics(cur, &prev, dictionary.ByID())
	if m.PortfolioChange == nil {
		t.Fatalf("portfolio change missing")
	}
	assertDec(t, "portfolio", *m.PortfolioChange, "10")
}

func TestDeriveMetrics_ZeroHours(t *testing.T) {
	cur := period(0, acct(networth.AccountTypeChecking, dictionary.CategoryCash, "5"))
	prev := period(744, acct(networth.AccountTypeChecking, dictionary.CategoryCash, "1"))
	m := DeriveMetrics(cur, &prev, dictionary.ByID())
	if m.MonthlyGain == nil || m.DollarsPerHour != nil {
		t.Fatalf("got %+v", m)
	}
	assertDec(t, "gain", *m.MonthlyGain, "4")
}

func TestDeriveMetrics_ZeroPreviousInvestment(t *testing.T) {
	cur := period(744,
		acct(networth.AccountTypeRetirement, dictionary.CategoryRetirement, "5000"),
		acct(networth.AccountTypeChecking, dictionary.CategoryCash, "10"))
	prev := period(744, acct(networth.AccountTypeChecking, dictionary.CategoryCash, "10"))
	m := DeriveMetrics(cur, &prev, dictionary.ByID())
	if m.PortfolioChange != nil {
		t.Fatalf("portfolio change should be absent, got %s", m.PortfolioChange)
	}
	if m.MonthlyGain == nil {
		t.Fatalf("gain must survive an undefined portfolio change")
	}
	assertDec(t, "gain", *m.MonthlyGain, "5000")
}

func TestDeriveMetrics_InvestmentMatchedByType(t *testing.T) {
	// retirement-typed account filed under other-assets still counts
	cur := period(744, acct(networth.AccountTypeRetirement, dictionary.CategoryOtherAssets, "150"))
	prev := period(744, acct(networth.AccountTypeRetirement, dictionary.CategoryOtherAssets, "200"))
	m := DeriveMetrics(cur, &prev, dictionary.ByID())
	if m.PortfolioChange == nil {
		t.Fatalf("portfolio change missing")
	}
	assertDec(t, "portfolio", *m.PortfolioChange, "-25")
}

func TestSnapshotMetrics_UsesCurrentHours(t *testing.T) {
	cur := networth.Snapshot{
		Accounts: []networth.Account{acct(networth.AccountTypeChecking, dictionary.CategoryCash, "100")},
		Metadata: networth.SnapshotMetadata{HoursInPeriod: 10},
	}
	prev := networth.Snapshot{
		Accounts: []networth.Account{acct(networth.AccountTypeChecking, dictionary.CategoryCash, "50")},
		Metadata: networth.SnapshotMetadata{HoursInPeriod: 0},
	}
	m := SnapshotMetrics(cur, &prev, dictionary.ByID())
	if m.DollarsPerHour == nil {
		t.Fatalf("dph missing")
	}
	assertDec(t, "dph", *m.DollarsPerHour, "5")
	if !SnapshotMetrics(cur, nil, dictionary.ByID()).IsEmpty() {
		t.Fatalf("no predecessor should give empty metrics")
	}
}

func TestHoursInMonth(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.January, 744},
		{2024, time.February, 696},
		{2023, time.February, 672},
		{2024, time.April, 720},
		{2024, time.December, 744},
	}
	for _, tc := range cases {
		if got := HoursInMonth(tc.year, tc.month); got != tc.want {
			t.Fatalf("%d-%s: got %d want %d", tc.year, tc.month, got, tc.want)
		}
	}
}
