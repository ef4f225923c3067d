package dashboard_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"

	"github.com/tinoosan/networth/internal/errs"
	"github.com/tinoosan/networth/internal/finance"
	"github.com/tinoosan/networth/internal/networth"
	"github.com/tinoosan/networth/internal/service/dashboard"
	"github.com/tinoosan/networth/internal/storage/memory"
)

func seed(t *testing.T, store *memory.Store, owner uuid.UUID, date string, accounts ...networth.Account) {
	t.Helper()
	d, err := networth.ParseDate(date)
	if err != nil {
		t.Fatalf("date: %v", err)
	}
	snap := networth.Snapshot{ID: uuid.New(), OwnerID: owner, Date: d, Accounts: accounts, CreatedAt: time.Now(), Metadata: networth.SnapshotMetadata{HoursInPeriod: 744}}
	if _, err := store.CreateSnapshot(context.Background(), snap); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func account(typ networth.AccountType, category string, balance int64) networth.Account {
	return networth.Account{ID: uuid.New(), Name: string(typ), Type: typ, CategoryID: category, Balance: decimal.MustNew(balance, 0)}
}

func usd(t *testing.T) finance.Formatter {
	t.Helper()
	f, err := finance.NewFormatter("USD", "en-US")
	if err != nil {
		t.Fatalf("formatter: %v", err)
	}
	return f
}

func populated(t *testing.T) (dashboard.Service, uuid.UUID) {
	t.Helper()
	store := memory.New()
	owner := uuid.New()
	seed(t, store, owner, "2024-01-31", account(networth.AccountTypeChecking, "cash", 10000), account(networth.AccountTypeInvestment, "investments", 40000))
	seed(t, store, owner, "2024-02-29", account(networth.AccountTypeChecking, "cash", 12000), account(networth.AccountTypeInvestment, "investments", 44000), account(networth.AccountTypeCreditCard, "credit-cards", 2000))
	seed(t, store, owner, "2023-12-31", account(networth.AccountTypeChecking, "cash", 9000), account(networth.AccountTypeInvestment, "investments", 38000))
	return dashboard.New(store, usd(t)), owner
}

func TestSummary(t *testing.T) {
	svc, owner := populated(t)
	sum, err := svc.Summary(context.Background(), owner)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Count != 3 || sum.Latest == nil {
		t.Fatalf("summary %+v", sum)
	}
	if sum.Latest.Totals.NetWorth.Cmp(decimal.MustNew(54000, 0)) != 0 {
		t.Fatalf("net %s", sum.Latest.Totals.NetWorth)
	}
	if sum.Latest.Metrics.MonthlyGain == nil || sum.Latest.Metrics.MonthlyGain.Cmp(decimal.MustNew(4000, 0)) != 0 {
		t.Fatalf("gain %v", sum.Latest.Metrics.MonthlyGain)
	}
	if sum.First.Format(networth.DateLayout) != "2023-12-31" || sum.Last.Format(networth.DateLayout) != "2024-02-29" {
		t.Fatalf("range %s..%s", sum.First, sum.Last)
	}

	empty, err := svc.Summary(context.Background(), uuid.New())
	if err != nil || empty.Count != 0 || empty.Latest != nil {
		t.Fatalf("empty summary %+v %v", empty, err)
	}
	if _, err := svc.Summary(context.Background(), uuid.Nil); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("nil owner: %v", err)
	}
}

func TestModules(t *testing.T) {
	svc, owner := populated(t)
	m, err := svc.Modules(context.Background(), owner)
	if err != nil {
		t.Fatalf("modules: %v", err)
	}
	if m.EmergencyFund == nil || m.SavingsRate == nil || m.AssetAllocation == nil || m.FinancialIndependence == nil || m.DebtToIncome == nil {
		t.Fatalf("missing module %+v", m)
	}
	if len(m.SavingsRate.Trend) != 3 {
		t.Fatalf("trend %d", len(m.SavingsRate.Trend))
	}

	none, err := svc.Modules(context.Background(), uuid.New())
	if err != nil || none.EmergencyFund != nil || none.DebtToIncome != nil {
		t.Fatalf("no data modules %+v %v", none, err)
	}
}

func TestInsights(t *testing.T) {
	svc, owner := populated(t)
	all, err := svc.Insights(context.Background(), owner, nil)
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	if len(all) != 5 || all[0].Priority != finance.PriorityHigh {
		t.Fatalf("insights %+v", all)
	}
	for _, in := range all {
		// 6 x 8000 estimated expenses minus 12000 cash
		if in.ModuleID == finance.ModuleEmergencyFund && !strings.Contains(in.Recommendation, "36,000.00") {
			t.Fatalf("shortfall not formatted: %q", in.Recommendation)
		}
	}
	one, _ := svc.Insights(context.Background(), owner, []string{finance.ModuleDebtToIncome})
	if len(one) != 1 || one[0].ModuleID != finance.ModuleDebtToIncome {
		t.Fatalf("filtered %+v", one)
	}
	none, _ := svc.Insights(context.Background(), owner, []string{})
	if len(none) != 1 || none[0].ModuleID != finance.InsightNoModules {
		t.Fatalf("no modules %+v", none)
	}
}

func TestSeries_Limit(t *testing.T) {
	svc, owner := populated(t)
	pts, err := svc.Series(context.Background(), owner, 2)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if len(pts) != 2 || pts[0].Date.Format(networth.DateLayout) != "2024-01-31" {
		t.Fatalf("points %+v", pts)
	}
	// the oldest returned point still has its real predecessor
	if pts[0].Metrics.MonthlyGain == nil || pts[0].Metrics.MonthlyGain.Cmp(decimal.MustNew(3000, 0)) != 0 {
		t.Fatalf("gain %v", pts[0].Metrics.MonthlyGain)
	}
	all, _ := svc.Series(context.Background(), owner, 0)
	if len(all) != 3 {
		t.Fatalf("all %d", len(all))
	}
}
