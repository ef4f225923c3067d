package v1

import (
	"log/slog"

	"github.com/govalues/decimal"
	"github.com/govalues/money"

	"github.com/tinoosan/networth/internal/dictionary"
	"github.com/tinoosan/networth/internal/finance"
	"github.com/tinoosan/networth/internal/networth"
	"github.com/tinoosan/networth/internal/service/dashboard"
	"github.com/tinoosan/networth/internal/service/snapshot"
)

// presenter turns engine values into response shapes for one currency and locale.
type presenter struct {
	curr       money.Currency
	format     finance.Formatter
	categories map[string]networth.Category
}

func newPresenter(format finance.Formatter, logger *slog.Logger) presenter {
	curr, err := money.ParseCurr(format.Currency())
	if err != nil {
		logger.Warn("currency has no minor units table, using USD", "currency", format.Currency(), "err", err)
		curr = money.USD
	}
	return presenter{curr: curr, format: format, categories: dictionary.ByID()}
}

func (p presenter) amount(d decimal.Decimal) amountResponse {
	out := amountResponse{Amount: d.String(), Currency: p.curr.Code(), Display: p.format.Money(d)}
	if a, err := money.NewAmountFromDecimal(p.curr, d); err == nil {
		out.AmountMinor, _ = a.MinorUnits()
	}
	return out
}

func (p presenter) optAmount(d *decimal.Decimal) *amountResponse {
	if d == nil {
		return nil
	}
	a := p.amount(*d)
	return &a
}

func percent(d decimal.Decimal) percentResponse {
	return percentResponse{Value: d.Round(2).String(), Display: finance.FormatPercent(d)}
}

func optPercent(d *decimal.Decimal) *percentResponse {
	if d == nil {
		return nil
	}
	pr := percent(*d)
	return &pr
}

func (p presenter) totals(t networth.Totals) totalsResponse {
	return totalsResponse{
		AssetsTotal:      p.amount(t.AssetsTotal),
		LiabilitiesTotal: p.amount(t.LiabilitiesTotal),
		NetWorth:         p.amount(t.NetWorth),
	}
}

func (p presenter) metrics(m networth.Metrics) metricsResponse {
	return metricsResponse{
		MonthlyGain:     p.optAmount(m.MonthlyGain),
		DollarsPerHour:  p.optAmount(m.DollarsPerHour),
		PortfolioChange: optPercent(m.PortfolioChange),
	}
}

func (p presenter) snapshot(v snapshot.View) snapshotResponse {
	snap := v.Snapshot
	accounts := make([]accountResponse, 0, len(snap.Accounts))
	for _, a := range snap.Accounts {
		accounts = append(accounts, accountResponse{
			ID:         a.ID,
			Name:       a.Name,
			Type:       a.Type,
			CategoryID: a.CategoryID,
			Balance:    p.amount(a.Balance),
			Liability:  finance.IsLiability(a, p.categories),
		})
	}
	return snapshotResponse{
		ID:        snap.ID,
		UserID:    snap.OwnerID,
		Date:      snap.DateString(),
		Accounts:  accounts,
		Totals:    p.totals(v.Totals),
		Metrics:   p.metrics(v.Metrics),
		Metadata:  metadataResponse{HoursInPeriod: snap.Metadata.HoursInPeriod, Metrics: p.metrics(snap.Metadata.Metrics)},
		CreatedAt: snap.CreatedAt,

		PreviousSnapshotID: v.PreviousID,
	}
}

// created renders a freshly created snapshot. Its live values equal what was recorded.
func (p presenter) created(snap networth.Snapshot) snapshotResponse {
	return p.snapshot(snapshot.View{Snapshot: snap, Totals: snap.Totals, Metrics: snap.Metadata.Metrics})
}

func (p presenter) point(pt finance.Point) pointResponse {
	return pointResponse{
		SnapshotID: pt.SnapshotID,
		Date:       pt.Date.Format(networth.DateLayout),
		Totals:     p.totals(pt.Totals),
		Metrics:    p.metrics(pt.Metrics),
	}
}

func (p presenter) modules(m dashboard.Modules) modulesResponse {
	out := modulesResponse{Approximate: true}
	if ef := m.EmergencyFund; ef != nil {
		out.EmergencyFund = &emergencyFundResponse{
			LiquidAssets:             p.amount(ef.LiquidAssets),
			EstimatedMonthlyExpenses: p.amount(ef.EstimatedMonthlyExpenses),
			MonthsCovered:            ef.MonthsCovered.Round(1).String(),
			TargetMonths:             ef.TargetMonths,
			Progress:                 percent(ef.ProgressPercent),
			Shortfall:                p.amount(ef.Shortfall),
		}
	}
	if sr := m.SavingsRate; sr != nil {
		trend := make([]savingsPointResponse, 0, len(sr.Trend))
		for _, pt := range sr.Trend {
			trend = append(trend, savingsPointResponse{
				Date:            pt.Date.Format(networth.DateLayout),
				MonthlyGain:     p.amount(pt.MonthlyGain),
				EstimatedIncome: p.amount(pt.EstimatedIncome),
				Rate:            percent(pt.Rate),
			})
		}
		out.SavingsRate = &savingsRateResponse{
			Current:       percent(sr.Current),
			Average:       percent(sr.Average),
			LatestIncome:  p.amount(sr.LatestIncome),
			LatestSavings: p.amount(sr.LatestSavings),
			Trend:         trend,
		}
	}
	if al := m.AssetAllocation; al != nil {
		slices := make([]allocationSliceResponse, 0, len(al.Slices))
		for _, sl := range al.Slices {
			name := sl.CategoryID
			if c, ok := p.categories[sl.CategoryID]; ok {
				name = c.DisplayName
			}
			slices = append(slices, allocationSliceResponse{CategoryID: sl.CategoryID, DisplayName: name, Amount: p.amount(sl.Amount), Percent: percent(sl.Percent)})
		}
		out.AssetAllocation = &allocationResponse{Total: p.amount(al.Total), Slices: slices}
	}
	if fi := m.FinancialIndependence; fi != nil {
		milestones := make([]milestoneResponse, 0, len(fi.Milestones))
		for _, ms := range fi.Milestones {
			milestones = append(milestones, milestoneResponse{Label: ms.Label, Description: ms.Description, Amount: p.amount(ms.Amount), Reached: ms.Reached})
		}
		var years *string
		if fi.YearsToTarget != nil {
			y := fi.YearsToTarget.Round(1).String()
			years = &y
		}
		out.FinancialIndependence = &financialIndependenceResponse{
			NetWorth:                p.amount(fi.NetWorth),
			EstimatedAnnualExpenses: p.amount(fi.EstimatedAnnualExpenses),
			Target:                  p.amount(fi.Target),
			Progress:                percent(fi.ProgressPercent),
			Shortfall:               p.amount(fi.Shortfall),
			YearsToTarget:           years,
			PassiveIncomeMonthly:    p.amount(fi.PassiveIncomeMonthly),
			PassiveIncomeWeekly:     p.amount(fi.PassiveIncomeWeekly),
			PassiveIncomeDaily:      p.amount(fi.PassiveIncomeDaily),
			Status:                  fi.Status,
			Recommendation:          fi.Recommendation,
			Milestones:              milestones,
		}
	}
	if dti := m.DebtToIncome; dti != nil {
		out.DebtToIncome = &debtToIncomeResponse{
			Ratio:            percent(dti.Ratio),
			MonthlyDebt:      p.amount(dti.MonthlyDebt),
			MonthlyIncome:    p.amount(dti.MonthlyIncome),
			TotalLiabilities: p.amount(dti.TotalLiabilities),
			Band:             dti.Band,
		}
	}
	return out
}

func (p presenter) insight(in finance.Insight) insightResponse {
	out := insightResponse{
		ModuleID:       in.ModuleID,
		Title:          in.Title,
		Status:         in.Status,
		Recommendation: in.Recommendation,
		Priority:       in.Priority.String(),
	}
	for _, f := range in.Breakdown {
		fr := figureResponse{Label: f.Label, Value: f.Value.String()}
		if f.Percent {
			fr.Display = finance.FormatPercent(f.Value)
		} else {
			fr.Display = p.format.Money(f.Value)
		}
		out.Breakdown = append(out.Breakdown, fr)
	}
	return out
}
