package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/networth/internal/dictionary"
	"github.com/tinoosan/networth/internal/networth"
)

func snap(date string, accounts ...networth.Account) networth.Snapshot {
	dt, err := networth.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return networth.Snapshot{
		ID:        uuid.New(),
		Date:      dt,
		Accounts:  accounts,
		Metadata:  networth.SnapshotMetadata{HoursInPeriod: DefaultHoursInPeriod},
		CreatedAt: dt.Add(time.Hour),
	}
}

// twoMonths is newest first: net worth 50000 -> 54000.
func twoMonths() []networth.Snapshot {
	older := snap("2024-01-31",
		acct(networth.AccountTypeChecking, dictionary.CategoryCash, "10000"),
		acct(networth.AccountTypeInvestment, dictionary.CategoryInvestments, "40000"))
	newer := snap("2024-02-29",
		acct(networth.AccountTypeChecking, dictionary.CategoryCash, "12000"),
		acct(networth.AccountTypeInvestment, dictionary.CategoryInvestments, "44000"),
		acct(networth.AccountTypeCreditCard, dictionary.CategoryCreditCards, "2000"))
	return []networth.Snapshot{newer, older}
}

func TestEstimateEmergencyFund(t *testing.T) {
	if _, ok := EstimateEmergencyFund(nil, dictionary.ByID()); ok {
		t.Fatalf("expected no estimate without snapshots")
	}
	ef, ok := EstimateEmergencyFund(twoMonths(), dictionary.ByID())
	if !ok {
		t.Fatalf("expected estimate")
	}
	assertDec(t, "liquid", ef.LiquidAssets, "12000")
	assertDec(t, "expenses", ef.EstimatedMonthlyExpenses, "8000")
	assertDec(t, "months", ef.MonthsCovered, "1.5")
	assertDec(t, "progress", ef.ProgressPercent, "25")
	assertDec(t, "shortfall", ef.Shortfall, "36000")
}

func TestEstimateEmergencyFund_MinimumExpenses(t *testing.T) {
	one := []networth.Snapshot{snap("2024-01-31", acct(networth.AccountTypeSavings, dictionary.CategoryCash, "30000"))}
	ef, ok := EstimateEmergencyFund(one, dictionary.ByID())
	if !ok {
		t.Fatalf("expected estimate")
	}
	assertDec(t, "expenses", ef.EstimatedMonthlyExpenses, "2000")
	assertDec(t, "months", ef.MonthsCovered, "15")
	assertDec(t, "progress", ef.ProgressPercent, "100")
	assertDec(t, "shortfall", ef.Shortfall, "0")
}

func TestEstimateSavingsRate(t *testing.T) {
	if _, ok := EstimateSavingsRate(twoMonths()[:1], dictionary.ByID()); ok {
		t.Fatalf("one snapshot should give no rate")
	}
	sr, ok := EstimateSavingsRate(twoMonths(), dictionary.ByID())
	if !ok {
		t.Fatalf("expected rate")
	}
	if len(sr.Trend) != 2 {
		t.Fatalf("trend len %d", len(sr.Trend))
	}
	assertDec(t, "first point", sr.Trend[0].Rate, "0")
	assertDec(t, "current", sr.Current.Round(2), "33.33")
	assertDec(t, "average", sr.Average.Round(2), "16.67")
	assertDec(t, "income", sr.LatestIncome, "12000")
	assertDec(t, "savings", sr.LatestSavings, "4000")
}

func TestEstimateSavingsRate_WindowAndClamp(t *testing.T) {
	var snaps []networth.Snapshot
	bal := []string{"100", "200", "150", "300", "400", "500", "450", "900"}
	for i, b := range bal {
		date := time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC).Format(networth.DateLayout)
		snaps = append(snaps, snap(date, acct(networth.AccountTypeChecking, dictionary.CategoryCash, b)))
	}
	sr, ok := EstimateSavingsRate(snaps, dictionary.ByID())
	if !ok {
		t.Fatalf("expected rate")
	}
	if len(sr.Trend) != SavingsRateWindow {
		t.Fatalf("trend len %d", len(sr.Trend))
	}
	if !sr.Trend[0].Date.Equal(snaps[2].Date) {
		t.Fatalf("window should start at the third snapshot, got %s", sr.Trend[0].Date)
	}
	for i, p := range sr.Trend {
		if p.Rate.IsNeg() || p.Rate.Cmp(hundred) > 0 {
			t.Fatalf("point %d: rate %s out of range", i, p.Rate)
		}
	}
	// 450 is a loss against 500
	assertDec(t, "loss month", sr.Trend[4].Rate, "0")
}

func TestEstimateFinancialIndependence(t *testing.T) {
	fi, ok := EstimateFinancialIndependence(twoMonths(), dictionary.ByID())
	if !ok {
		t.Fatalf("expected estimate")
	}
	assertDec(t, "expenses", fi.EstimatedAnnualExpenses, "96000")
	assertDec(t, "target", fi.Target, "2400000")
	assertDec(t, "progress", fi.ProgressPercent, "2.25")
	if fi.YearsToTarget == nil {
		t.Fatalf("years missing")
	}
	assertDec(t, "years", *fi.YearsToTarget, "48.875")
	assertDec(t, "passive monthly", fi.PassiveIncomeMonthly, "180")
	assertDec(t, "passive daily", fi.PassiveIncomeDaily, "6")
	if fi.Status != "Getting Started" {
		t.Fatalf("status %q", fi.Status)
	}
	if len(fi.Milestones) != 4 || fi.Milestones[0].Reached {
		t.Fatalf("milestones %+v", fi.Milestones)
	}
	assertDec(t, "full fi", fi.Milestones[2].Amount, "2400000")
}

func TestEstimateFinancialIndependence_NoYearsWithoutPredecessor(t *testing.T) {
	fi, ok := EstimateFinancialIndependence(twoMonths()[:1], dictionary.ByID())
	if !ok {
		t.Fatalf("expected estimate")
	}
	if fi.YearsToTarget != nil {
		t.Fatalf("years should be absent, got %s", fi.YearsToTarget)
	}
	assertDec(t, "expenses", fi.EstimatedAnnualExpenses, "50000")
}

func TestEstimateDebtToIncome(t *testing.T) {
	if _, ok := EstimateDebtToIncome(twoMonths()[:1], dictionary.ByID()); ok {
		t.Fatalf("zero income should give no ratio")
	}
	dti, ok := EstimateDebtToIncome(twoMonths(), dictionary.ByID())
	if !ok {
		t.Fatalf("expected ratio")
	}
	assertDec(t, "debt", dti.MonthlyDebt, "60")
	assertDec(t, "income", dti.MonthlyIncome, "12000")
	assertDec(t, "ratio", dti.Ratio, "0.5")
	if dti.Band != "excellent" {
		t.Fatalf("band %q", dti.Band)
	}
}

func TestDebtBand(t *testing.T) {
	cases := map[string]string{"20": "excellent", "20.01": "good", "36": "good", "50": "poor", "50.5": "very poor"}
	for in, want := range cases {
		if got := debtBand(d(in)); got != want {
			t.Fatalf("%s: got %q want %q", in, got, want)
		}
	}
}

func TestAssetAllocation(t *testing.T) {
	alloc, ok := AssetAllocation(twoMonths(), dictionary.ByID())
	if !ok {
		t.Fatalf("expected allocation")
	}
	assertDec(t, "total", alloc.Total, "56000")
	if len(alloc.Slices) != 2 || alloc.Slices[0].CategoryID != dictionary.CategoryCash || alloc.Slices[1].CategoryID != dictionary.CategoryInvestments {
		t.Fatalf("slices %+v", alloc.Slices)
	}
	assertDec(t, "cash pct", alloc.Slices[0].Percent.Round(2), "21.43")

	onlyDebt := []networth.Snapshot{snap("2024-01-01", acct(networth.AccountTypeLoan, dictionary.CategoryLoans, "100"))}
	if _, ok := AssetAllocation(onlyDebt, dictionary.ByID()); ok {
		t.Fatalf("no assets should give no allocation")
	}
}
