package finance

import (
	"time"

	"github.com/govalues/decimal"

	"github.com/tinoosan/networth/internal/dictionary"
	"github.com/tinoosan/networth/internal/networth"
)

// The estimates below are rough heuristics shown to users as approximations, not
// financial advice. Expenses and income are guessed from assets and from the monthly
// gain because the product never asks for them. The constants are product choices and
// are kept as they are.
//
// Every estimate takes the owner's snapshots (any order) and reads only live totals
// and live metrics.

var (
	emergencyExpenseShare   = decimal.MustParse("0.03")
	emergencyGainMultiplier = decimal.MustNew(2, 0)
	emergencyMinExpenses    = decimal.MustNew(2000, 0)

	incomeGainMultiplier = decimal.MustNew(3, 0)

	fiExpenseShare   = decimal.MustParse("0.04")
	fiGainMultiplier = decimal.MustNew(24, 0) // twice the annualised gain
	fiMinExpenses    = decimal.MustNew(50000, 0)
	fiTargetMultiple = decimal.MustNew(25, 0)
	fiWithdrawalRate = decimal.MustParse("0.04")
	weeksPerMonth    = decimal.MustParse("4.33")
	daysPerMonth     = decimal.MustNew(30, 0)
	monthsPerYear    = decimal.MustNew(12, 0)
	debtPaymentShare = decimal.MustParse("0.03")
)

// EmergencyFundTargetMonths is the recommended cover.
const EmergencyFundTargetMonths = 6

// SavingsRateWindow is how many recent snapshots the savings trend covers.
const SavingsRateWindow = 6

// latest returns the newest snapshot and its predecessor.
func latest(snapshots []networth.Snapshot) (networth.Snapshot, *networth.Snapshot, bool) {
	if len(snapshots) == 0 {
		return networth.Snapshot{}, nil, false
	}
	desc := SortedDescending(snapshots)
	if len(desc) == 1 {
		return desc[0], nil, true
	}
	return desc[0], &desc[1], true
}

// monthlyGainOf is the latest monthly gain, or 0 when undefined.
func monthlyGainOf(cur networth.Snapshot, prev *networth.Snapshot, categories map[string]networth.Category) decimal.Decimal {
	return or(SnapshotMetrics(cur, prev, categories).MonthlyGain)
}

// EmergencyFund estimates how many months of expenses the cash category covers.
type EmergencyFund struct {
	LiquidAssets             decimal.Decimal
	EstimatedMonthlyExpenses decimal.Decimal
	MonthsCovered            decimal.Decimal
	TargetMonths             int
	ProgressPercent          decimal.Decimal
	Shortfall                decimal.Decimal
}

// EstimateEmergencyFund returns false when there are no snapshots.
func EstimateEmergencyFund(snapshots []networth.Snapshot, categories map[string]networth.Category) (EmergencyFund, bool) {
	cur, prev, ok := latest(snapshots)
	if !ok {
		return EmergencyFund{}, false
	}
	liquid := liquidAssets(cur.Accounts)
	gain := monthlyGainOf(cur, prev, categories)
	assets := ComputeTotals(cur.Accounts, categories).AssetsTotal

	expenses := maxDec(mulOr(assets, emergencyExpenseShare), mulOr(gain.Abs(), emergencyGainMultiplier), emergencyMinExpenses)
	months := quoOr(liquid, expenses)
	target := intDec(EmergencyFundTargetMonths)
	progress := minDec(mulOr(quoOr(months, target), hundred), hundred)
	shortfall := maxDec(subOr(mulOr(target, expenses), liquid), zero)

	return EmergencyFund{
		LiquidAssets:             liquid,
		EstimatedMonthlyExpenses: expenses,
		MonthsCovered:            months,
		TargetMonths:             EmergencyFundTargetMonths,
		ProgressPercent:          progress,
		Shortfall:                shortfall,
	}, true
}

func liquidAssets(accounts []networth.Account) decimal.Decimal {
	total := zero
	for _, a := range accounts {
		if a.CategoryID == dictionary.CategoryCash {
			total = add(total, a.Balance)
		}
	}
	return total
}

// SavingsPoint is one month of the savings-rate trend.
type SavingsPoint struct {
	Date            time.Time
	MonthlyGain     decimal.Decimal
	EstimatedIncome decimal.Decimal
	Rate            decimal.Decimal
}

// SavingsRate is the estimated share of income saved over the recent window.
type SavingsRate struct {
	Current       decimal.Decimal
	Average       decimal.Decimal
	LatestIncome  decimal.Decimal
	LatestSavings decimal.Decimal
	Trend         []SavingsPoint
}

// EstimateSavingsRate needs at least two snapshots. Within the window the oldest point
// has no predecessor, so its gain is 0.
func EstimateSavingsRate(snapshots []networth.Snapshot, categories map[string]networth.Category) (SavingsRate, bool) {
	if len(snapshots) < 2 {
		return SavingsRate{}, false
	}
	desc := SortedDescending(snapshots)
	if len(desc) > SavingsRateWindow {
		desc = desc[:SavingsRateWindow]
	}
	window := SortedAscending(desc)

	trend := make([]SavingsPoint, len(window))
	sum := zero
	for i := range window {
		var prev *networth.Snapshot
		if i > 0 {
			prev = &window[i-1]
		}
		gain := monthlyGainOf(window[i], prev, categories)
		income := mulOr(gain.Abs(), incomeGainMultiplier)
		rate := zero
		if income.IsPos() {
			rate = mulOr(quoOr(gain, income), hundred)
		}
		rate = clamp(rate, zero, hundred)
		trend[i] = SavingsPoint{Date: window[i].Date, MonthlyGain: gain, EstimatedIncome: income, Rate: rate}
		sum = add(sum, rate)
	}
	last := trend[len(trend)-1]
	return SavingsRate{
		Current:       last.Rate,
		Average:       quoOr(sum, intDec(len(trend))),
		LatestIncome:  last.EstimatedIncome,
		LatestSavings: last.MonthlyGain,
		Trend:         trend,
	}, true
}

// Milestone is a named fraction of the financial-independence target.
type Milestone struct {
	Label       string
	Description string
	Amount      decimal.Decimal
	Reached     bool
}

// FinancialIndependence estimates progress toward a 25x-expenses portfolio.
type FinancialIndependence struct {
	NetWorth                decimal.Decimal
	EstimatedAnnualExpenses decimal.Decimal
	Target                  decimal.Decimal
	ProgressPercent         decimal.Decimal
	Shortfall               decimal.Decimal
	// YearsToTarget is nil when the gain is not positive or the target is reached.
	YearsToTarget        *decimal.Decimal
	PassiveIncomeMonthly decimal.Decimal
	PassiveIncomeWeekly  decimal.Decimal
	PassiveIncomeDaily   decimal.Decimal
	Status               string
	Recommendation       string
	Milestones           []Milestone
}

var milestoneDefs = []struct {
	label, description string
	fraction           decimal.Decimal
}{
	{"Lean FI", "Basic expenses covered", decimal.MustParse("0.5")},
	{"Flex FI", "Some flexibility in spending", decimal.MustParse("0.75")},
	{"Full FI", "Complete financial independence", decimal.MustNew(1, 0)},
	{"Fat FI", "Comfortable lifestyle maintained", decimal.MustParse("1.5")},
}

// EstimateFinancialIndependence returns false when there are no snapshots.
func EstimateFinancialIndependence(snapshots []networth.Snapshot, categories map[string]networth.Category) (FinancialIndependence, bool) {
	cur, prev, ok := latest(snapshots)
	if !ok {
		return FinancialIndependence{}, false
	}
	totals := ComputeTotals(cur.Accounts, categories)
	nw := totals.NetWorth
	gain := monthlyGainOf(cur, prev, categories)

	expenses := maxDec(mulOr(totals.AssetsTotal, fiExpenseShare), mulOr(gain.Abs(), fiGainMultiplier), fiMinExpenses)
	target := mulOr(expenses, fiTargetMultiple)
	progress := minDec(mulOr(quoOr(nw, target), hundred), hundred)

	out := FinancialIndependence{
		NetWorth:                nw,
		EstimatedAnnualExpenses: expenses,
		Target:                  target,
		ProgressPercent:         progress,
		Shortfall:               maxDec(subOr(target, nw), zero),
		Status:                  fiStatus(progress),
		Recommendation:          fiRecommendation(progress),
	}
	if prev != nil && gain.IsPos() {
		remaining := subOr(target, nw)
		annual := mulOr(gain, monthsPerYear)
		if remaining.IsPos() && annual.IsPos() {
			if years, ok := quo(remaining, annual); ok {
				out.YearsToTarget = ptr(years)
			}
		}
	}
	out.PassiveIncomeMonthly = quoOr(mulOr(nw, fiWithdrawalRate), monthsPerYear)
	out.PassiveIncomeWeekly = quoOr(out.PassiveIncomeMonthly, weeksPerMonth)
	out.PassiveIncomeDaily = quoOr(out.PassiveIncomeMonthly, daysPerMonth)
	for _, m := range milestoneDefs {
		amount := mulOr(target, m.fraction)
		out.Milestones = append(out.Milestones, Milestone{Label: m.label, Description: m.description, Amount: amount, Reached: nw.Cmp(amount) >= 0})
	}
	return out, true
}

func fiStatus(progress decimal.Decimal) string {
	switch {
	case progress.Cmp(hundred) >= 0:
		return "Financially Independent"
	case progress.Cmp(intDec(75)) >= 0:
		return "Almost There"
	case progress.Cmp(intDec(50)) >= 0:
		return "Halfway Point"
	case progress.Cmp(intDec(25)) >= 0:
		return "Good Progress"
	default:
		return "Getting Started"
	}
}

func fiRecommendation(progress decimal.Decimal) string {
	switch {
	case progress.Cmp(hundred) >= 0:
		return "Congratulations! You've achieved financial independence!"
	case progress.Cmp(intDec(75)) >= 0:
		return "You're so close! Stay the course for just a bit longer."
	case progress.Cmp(intDec(50)) >= 0:
		return "Great progress! You're over halfway to financial independence."
	case progress.Cmp(intDec(25)) >= 0:
		return "Solid foundation! Consider increasing your savings rate to accelerate progress."
	default:
		return "Every journey starts with a single step. Focus on building your savings rate!"
	}
}

// DebtToIncome compares an assumed monthly debt payment to an assumed income.
type DebtToIncome struct {
	Ratio            decimal.Decimal
	MonthlyDebt      decimal.Decimal
	MonthlyIncome    decimal.Decimal
	TotalLiabilities decimal.Decimal
	Band             string
}

// EstimateDebtToIncome returns false without snapshots or when the estimated income is 0.
func EstimateDebtToIncome(snapshots []networth.Snapshot, categories map[string]networth.Category) (DebtToIncome, bool) {
	cur, prev, ok := latest(snapshots)
	if !ok {
		return DebtToIncome{}, false
	}
	liabilities := ComputeTotals(cur.Accounts, categories).LiabilitiesTotal
	debt := mulOr(liabilities, debtPaymentShare)
	income := mulOr(monthlyGainOf(cur, prev, categories).Abs(), incomeGainMultiplier)
	if income.IsZero() {
		return DebtToIncome{}, false
	}
	ratio := minDec(mulOr(quoOr(debt, income), hundred), hundred)
	return DebtToIncome{
		Ratio:            ratio,
		MonthlyDebt:      debt,
		MonthlyIncome:    income,
		TotalLiabilities: liabilities,
		Band:             debtBand(ratio),
	}, true
}

func debtBand(ratio decimal.Decimal) string {
	switch {
	case ratio.Cmp(intDec(20)) <= 0:
		return "excellent"
	case ratio.Cmp(intDec(36)) <= 0:
		return "good"
	case ratio.Cmp(intDec(50)) <= 0:
		return "poor"
	default:
		return "very poor"
	}
}
