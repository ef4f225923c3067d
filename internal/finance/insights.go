package finance

import (
	"fmt"
	"sort"

	"github.com/govalues/decimal"

	"github.com/tinoosan/networth/internal/networth"
)

// Dashboard module ids.
const (
	ModuleEmergencyFund         = "emergency-fund"
	ModuleSavingsRate           = "savings-rate"
	ModuleAssetAllocation       = "asset-allocation"
	ModuleFinancialIndependence = "financial-independence"
	ModuleDebtToIncome          = "debt-to-income"
)

// Placeholder insight ids.
const (
	InsightNoData    = "no-data"
	InsightNoModules = "no-modules"
)

// Modules lists every module id in display order.
func Modules() []string {
	return []string{ModuleEmergencyFund, ModuleSavingsRate, ModuleAssetAllocation, ModuleFinancialIndependence, ModuleDebtToIncome}
}

// Priority orders insights; higher comes first.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	}
	return "unknown"
}

// MarshalText renders the lowercase name.
func (p Priority) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Insight is a status and recommendation for one dashboard module.
type Insight struct {
	ModuleID       string
	Title          string
	Status         string
	Recommendation string
	Priority       Priority
	// Breakdown holds the figures behind the status, keyed for display.
	Breakdown []Figure
}

// Figure is a labelled value. Percent marks values already expressed in percent.
type Figure struct {
	Label   string
	Value   decimal.Decimal
	Percent bool
}

var (
	fiExcellent = decimal.MustParse("0.8")
	fiGood      = decimal.MustParse("0.6")
	fiFair      = decimal.MustParse("0.4")
	lowDebt     = decimal.MustNew(10000, 0)
	modDebt     = decimal.MustNew(50000, 0)
)

// Insights evaluates the enabled modules against the owner's snapshots, highest
// priority first. Unknown module ids are ignored. Without snapshots, or with no
// modules enabled, a single placeholder is returned. Amounts quoted in
// recommendations are rendered with format.
func Insights(snapshots []networth.Snapshot, categories map[string]networth.Category, enabled []string, format Formatter) []Insight {
	if len(snapshots) == 0 {
		return []Insight{{
			ModuleID:       InsightNoData,
			Title:          "No Data Available",
			Status:         "No snapshots found",
			Recommendation: "Add financial snapshots to see insights and recommendations.",
			Priority:       PriorityMedium,
		}}
	}
	if len(enabled) == 0 {
		return []Insight{{
			ModuleID:       InsightNoModules,
			Title:          "No Metrics Enabled",
			Status:         "No modules enabled",
			Recommendation: "Enable some metric modules in the dashboard customizer to see insights.",
			Priority:       PriorityMedium,
		}}
	}

	on := make(map[string]bool, len(enabled))
	for _, id := range enabled {
		on[id] = true
	}

	var out []Insight
	for _, id := range Modules() {
		if !on[id] {
			continue
		}
		var (
			in Insight
			ok bool
		)
		switch id {
		case ModuleEmergencyFund:
			in, ok = emergencyInsight(snapshots, categories, format)
		case ModuleSavingsRate:
			in, ok = savingsInsight(snapshots, categories)
		case ModuleAssetAllocation:
			in, ok = allocationInsight(snapshots, categories)
		case ModuleFinancialIndependence:
			in, ok = independenceInsight(snapshots, categories)
		case ModuleDebtToIncome:
			in, ok = debtInsight(snapshots, categories)
		}
		if ok {
			out = append(out, in)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}

func emergencyInsight(snapshots []networth.Snapshot, categories map[string]networth.Category, format Formatter) (Insight, bool) {
	ef, ok := EstimateEmergencyFund(snapshots, categories)
	if !ok {
		return Insight{}, false
	}
	in := Insight{
		ModuleID: ModuleEmergencyFund,
		Title:    "Emergency Fund",
		Breakdown: []Figure{
			{Label: "Liquid Assets", Value: ef.LiquidAssets},
			{Label: "Months Covered", Value: ef.MonthsCovered},
			{Label: "Est. Monthly Expenses", Value: ef.EstimatedMonthlyExpenses},
		},
	}
	short := format.Money(ef.Shortfall)
	switch {
	case ef.MonthsCovered.Cmp(intDec(6)) >= 0:
		in.Status, in.Priority = "Excellent", PriorityLow
		in.Recommendation = "You have a solid emergency fund! Consider investing excess cash."
	case ef.MonthsCovered.Cmp(intDec(3)) >= 0:
		in.Status, in.Priority = "Good", PriorityMedium
		in.Recommendation = fmt.Sprintf("You're halfway there! Try to save an additional %s.", short)
	case ef.MonthsCovered.Cmp(intDec(1)) >= 0:
		in.Status, in.Priority = "Fair", PriorityHigh
		in.Recommendation = fmt.Sprintf("Build your emergency fund. You need %s more.", short)
	default:
		in.Status, in.Priority = "Critical", PriorityHigh
		in.Recommendation = fmt.Sprintf("Start building an emergency fund immediately. Target: %s.", short)
	}
	return in, true
}

func savingsInsight(snapshots []networth.Snapshot, categories map[string]networth.Category) (Insight, bool) {
	sr, ok := EstimateSavingsRate(snapshots, categories)
	if !ok {
		return Insight{}, false
	}
	in := Insight{
		ModuleID: ModuleSavingsRate,
		Title:    "Savings Rate",
		Breakdown: []Figure{
			{Label: "Current Rate", Value: sr.Current, Percent: true},
			{Label: "Monthly Savings", Value: maxDec(sr.LatestSavings, zero)},
			{Label: "Est. Monthly Income", Value: sr.LatestIncome},
		},
	}
	switch {
	case sr.Current.Cmp(intDec(20)) >= 0:
		in.Status, in.Priority = "Excellent", PriorityLow
		in.Recommendation = "Outstanding savings rate! You're on track for early retirement."
	case sr.Current.Cmp(intDec(10)) >= 0:
		in.Status, in.Priority = "Good", PriorityMedium
		in.Recommendation = "Good savings rate! Consider increasing to 20% for faster wealth building."
	case sr.Current.Cmp(intDec(5)) >= 0:
		in.Status, in.Priority = "Fair", PriorityHigh
		in.Recommendation = "Aim to increase your savings rate to at least 10% of income."
	default:
		in.Status, in.Priority = "Needs Improvement", PriorityHigh
		in.Recommendation = "Focus on reducing expenses and increasing savings. Start with 5%."
	}
	return in, true
}

func allocationInsight(snapshots []networth.Snapshot, categories map[string]networth.Category) (Insight, bool) {
	cur, _, ok := latest(snapshots)
	if !ok {
		return Insight{}, false
	}
	assets := ComputeTotals(cur.Accounts, categories).AssetsTotal
	cashPct, ok := quo(liquidAssets(cur.Accounts), assets)
	if !ok {
		return Insight{}, false
	}
	cashPct = mulOr(cashPct, hundred)
	in := Insight{
		ModuleID: ModuleAssetAllocation,
		Title:    "Asset Allocation",
		Breakdown: []Figure{
			{Label: "Cash", Value: cashPct, Percent: true},
			{Label: "Total Assets", Value: assets},
			{Label: "Cash Amount", Value: liquidAssets(cur.Accounts)},
		},
	}
	switch {
	case cashPct.Cmp(intDec(10)) <= 0:
		in.Status, in.Priority = "Good", PriorityLow
		in.Recommendation = "Good asset allocation! Low cash percentage suggests proper investment."
	case cashPct.Cmp(intDec(20)) <= 0:
		in.Status, in.Priority = "Fair", PriorityMedium
		in.Recommendation = "Consider investing some excess cash for better returns."
	default:
		in.Status, in.Priority = "High Cash", PriorityMedium
		in.Recommendation = "High cash percentage. Consider investing excess funds."
	}
	return in, true
}

func independenceInsight(snapshots []networth.Snapshot, categories map[string]networth.Category) (Insight, bool) {
	cur, _, ok := latest(snapshots)
	if !ok {
		return Insight{}, false
	}
	t := ComputeTotals(cur.Accounts, categories)
	if t.NetWorth.IsZero() || t.AssetsTotal.IsZero() {
		return Insight{}, false
	}
	ratio := zero
	if t.AssetsTotal.IsPos() {
		ratio = quoOr(t.NetWorth, t.AssetsTotal)
	}
	in := Insight{
		ModuleID: ModuleFinancialIndependence,
		Title:    "Financial Independence",
		Breakdown: []Figure{
			{Label: "FI Ratio", Value: mulOr(ratio, hundred), Percent: true},
			{Label: "Net Worth", Value: t.NetWorth},
			{Label: "Total Assets", Value: t.AssetsTotal},
		},
	}
	switch {
	case ratio.Cmp(fiExcellent) >= 0:
		in.Status, in.Priority = "Excellent", PriorityLow
		in.Recommendation = "You're close to financial independence!"
	case ratio.Cmp(fiGood) >= 0:
		in.Status, in.Priority = "Good", PriorityMedium
		in.Recommendation = "Good progress! Focus on debt reduction and asset building."
	case ratio.Cmp(fiFair) >= 0:
		in.Status, in.Priority = "Fair", PriorityHigh
		in.Recommendation = "Build assets and reduce debt to improve your FI ratio."
	default:
		in.Status, in.Priority = "Needs Work", PriorityHigh
		in.Recommendation = "Focus on building assets and reducing debt significantly."
	}
	return in, true
}

func debtInsight(snapshots []networth.Snapshot, categories map[string]networth.Category) (Insight, bool) {
	cur, _, ok := latest(snapshots)
	if !ok {
		return Insight{}, false
	}
	t := ComputeTotals(cur.Accounts, categories)
	debt := t.LiabilitiesTotal
	if !debt.IsPos() {
		return Insight{}, false
	}
	in := Insight{
		ModuleID: ModuleDebtToIncome,
		Title:    "Debt Level",
		Breakdown: []Figure{
			{Label: "Total Debt", Value: debt},
			{Label: "Net Worth", Value: t.NetWorth},
		},
	}
	if pct, ok := quo(debt, t.NetWorth); ok {
		in.Breakdown = append(in.Breakdown, Figure{Label: "Debt-to-Net-Worth", Value: mulOr(pct, hundred), Percent: true})
	}
	switch {
	case debt.Cmp(lowDebt) <= 0:
		in.Status, in.Priority = "Low Debt", PriorityLow
		in.Recommendation = "Low debt level. You're in good financial shape."
	case debt.Cmp(modDebt) <= 0:
		in.Status, in.Priority = "Moderate Debt", PriorityMedium
		in.Recommendation = "Moderate debt. Consider debt reduction strategies."
	default:
		in.Status, in.Priority = "High Debt", PriorityHigh
		in.Recommendation = "High debt level. Prioritize debt reduction."
	}
	return in, true
}
