// Package dashboard builds the presentation views: summary cards, the per-metric modules,
// insights and chart series. Everything is recomputed from stored accounts on each call.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/networth/internal/dictionary"
	"github.com/tinoosan/networth/internal/errs"
	"github.com/tinoosan/networth/internal/finance"
	"github.com/tinoosan/networth/internal/networth"
)

// Repo defines read operations needed by the service.
type Repo interface {
	ListSnapshots(ctx context.Context, ownerID uuid.UUID) ([]networth.Snapshot, error)
}

// Summary backs the dashboard cards.
type Summary struct {
	Count  int
	Latest *finance.Point
	First  *time.Time
	Last   *time.Time
}

// Modules holds every extended estimate. A nil field has no data.
type Modules struct {
	EmergencyFund         *finance.EmergencyFund
	SavingsRate           *finance.SavingsRate
	AssetAllocation       *finance.Allocation
	FinancialIndependence *finance.FinancialIndependence
	DebtToIncome          *finance.DebtToIncome
}

// Service exposes the dashboard read models.
type Service interface {
	Summary(ctx context.Context, ownerID uuid.UUID) (Summary, error)
	Modules(ctx context.Context, ownerID uuid.UUID) (Modules, error)
	Insights(ctx context.Context, ownerID uuid.UUID, modules []string) ([]finance.Insight, error)
	Series(ctx context.Context, ownerID uuid.UUID, limit int) ([]finance.Point, error)
}

type service struct {
	repo       Repo
	format     finance.Formatter
	categories map[string]networth.Category
}

// New builds the dashboard service. format renders amounts quoted in insight text.
func New(repo Repo, format finance.Formatter) Service {
	return &service{repo: repo, format: format, categories: dictionary.ByID()}
}

func (s *service) load(ctx context.Context, ownerID uuid.UUID) ([]networth.Snapshot, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("%w: user_id is required", errs.ErrInvalid)
	}
	snaps, err := s.repo.ListSnapshots(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return finance.SortedDescending(snaps), nil
}

func (s *service) Summary(ctx context.Context, ownerID uuid.UUID) (Summary, error) {
	snaps, err := s.load(ctx, ownerID)
	if err != nil {
		return Summary{}, err
	}
	out := Summary{Count: len(snaps)}
	if len(snaps) == 0 {
		return out, nil
	}
	var prev *networth.Snapshot
	if len(snaps) > 1 {
		prev = &snaps[1]
	}
	cur := snaps[0]
	out.Latest = &finance.Point{
		SnapshotID: cur.ID,
		Date:       cur.Date,
		Totals:     finance.ComputeTotals(cur.Accounts, s.categories),
		Metrics:    finance.SnapshotMetrics(cur, prev, s.categories),
	}
	first, last := snaps[len(snaps)-1].Date, cur.Date
	out.First, out.Last = &first, &last
	return out, nil
}

func (s *service) Modules(ctx context.Context, ownerID uuid.UUID) (Modules, error) {
	snaps, err := s.load(ctx, ownerID)
	if err != nil {
		return Modules{}, err
	}
	var out Modules
	if ef, ok := finance.EstimateEmergencyFund(snaps, s.categories); ok {
		out.EmergencyFund = &ef
	}
	if sr, ok := finance.EstimateSavingsRate(snaps, s.categories); ok {
		out.SavingsRate = &sr
	}
	if al, ok := finance.AssetAllocation(snaps, s.categories); ok {
		out.AssetAllocation = &al
	}
	if fi, ok := finance.EstimateFinancialIndependence(snaps, s.categories); ok {
		out.FinancialIndependence = &fi
	}
	if dti, ok := finance.EstimateDebtToIncome(snaps, s.categories); ok {
		out.DebtToIncome = &dti
	}
	return out, nil
}

// Insights evaluates the given modules; nil means every module.
func (s *service) Insights(ctx context.Context, ownerID uuid.UUID, modules []string) ([]finance.Insight, error) {
	snaps, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if modules == nil {
		modules = finance.Modules()
	}
	return finance.Insights(snaps, s.categories, modules, s.format), nil
}

// Series returns the newest limit points in chronological order; limit <= 0 means all.
// Metrics of the oldest returned point still use its real predecessor.
func (s *service) Series(ctx context.Context, ownerID uuid.UUID, limit int) ([]finance.Point, error) {
	snaps, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	pts := finance.Series(snaps, s.categories)
	if limit > 0 && len(pts) > limit {
		pts = pts[len(pts)-limit:]
	}
	return pts, nil
}
