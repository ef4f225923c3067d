package v1

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/networth/internal/networth"
)

// Snapshots

type postSnapshotRequest struct {
	UserID        uuid.UUID `json:"user_id"`
	Date          string    `json:"date"`
	HoursInPeriod *int      `json:"hours_in_period,omitempty"`
	// Accounts is kept raw so a non-array value is a 400, not a decode error
	Accounts json.RawMessage `json:"accounts"`
}

type postSnapshotAccount struct {
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	CategoryID string          `json:"category_id"`
	Balance    json.RawMessage `json:"balance"`
}

// ownerQuery holds the validated user_id query param.
type ownerQuery struct {
	UserID uuid.UUID
}

type snapshotResponse struct {
	ID        uuid.UUID         `json:"id"`
	UserID    uuid.UUID         `json:"user_id"`
	Date      string            `json:"date"`
	Accounts  []accountResponse `json:"accounts"`
	Totals    totalsResponse    `json:"totals"`
	Metrics   metricsResponse   `json:"metrics"`
	Metadata  metadataResponse  `json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
	// PreviousSnapshotID is the predecessor live metrics were computed against
	PreviousSnapshotID *uuid.UUID `json:"previous_snapshot_id,omitempty"`
}

type accountResponse struct {
	ID         uuid.UUID            `json:"id"`
	Name       string               `json:"name"`
	Type       networth.AccountType `json:"type"`
	CategoryID string               `json:"category_id"`
	Balance    amountResponse       `json:"balance"`
	Liability  bool                 `json:"liability"`
}

// metadataResponse is what was recorded when the snapshot was created.
type metadataResponse struct {
	HoursInPeriod int             `json:"hours_in_period"`
	Metrics       metricsResponse `json:"metrics"`
}

type listSnapshotsResponse struct {
	Items []snapshotResponse `json:"items"`
}

// Shared value shapes

type amountResponse struct {
	Amount      string `json:"amount"`
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
	Display     string `json:"display"`
}

type percentResponse struct {
	Value   string `json:"value"`
	Display string `json:"display"`
}

type totalsResponse struct {
	AssetsTotal      amountResponse `json:"assets_total"`
	LiabilitiesTotal amountResponse `json:"liabilities_total"`
	NetWorth         amountResponse `json:"net_worth"`
}

// metricsResponse omits metrics that are not defined.
type metricsResponse struct {
	MonthlyGain     *amountResponse  `json:"monthly_gain,omitempty"`
	DollarsPerHour  *amountResponse  `json:"dollars_per_hour,omitempty"`
	PortfolioChange *percentResponse `json:"portfolio_change,omitempty"`
}

// Dashboard

type pointResponse struct {
	SnapshotID uuid.UUID       `json:"snapshot_id"`
	Date       string          `json:"date"`
	Totals     totalsResponse  `json:"totals"`
	Metrics    metricsResponse `json:"metrics"`
}

type summaryResponse struct {
	UserID        uuid.UUID      `json:"user_id"`
	SnapshotCount int            `json:"snapshot_count"`
	Latest        *pointResponse `json:"latest,omitempty"`
	FirstDate     *string        `json:"first_date,omitempty"`
	LastDate      *string        `json:"last_date,omitempty"`
}

type seriesQuery struct {
	Limit int
}

type seriesResponse struct {
	UserID uuid.UUID       `json:"user_id"`
	Points []pointResponse `json:"points"`
}

type emergencyFundResponse struct {
	LiquidAssets             amountResponse  `json:"liquid_assets"`
	EstimatedMonthlyExpenses amountResponse  `json:"estimated_monthly_expenses"`
	MonthsCovered            string          `json:"months_covered"`
	TargetMonths             int             `json:"target_months"`
	Progress                 percentResponse `json:"progress"`
	Shortfall                amountResponse  `json:"shortfall"`
}

type savingsPointResponse struct {
	Date            string          `json:"date"`
	MonthlyGain     amountResponse  `json:"monthly_gain"`
	EstimatedIncome amountResponse  `json:"estimated_income"`
	Rate            percentResponse `json:"rate"`
}

type savingsRateResponse struct {
	Current       percentResponse        `json:"current"`
	Average       percentResponse        `json:"average"`
	LatestIncome  amountResponse         `json:"latest_income"`
	LatestSavings amountResponse         `json:"latest_savings"`
	Trend         []savingsPointResponse `json:"trend"`
}

type allocationSliceResponse struct {
	CategoryID  string          `json:"category_id"`
	DisplayName string          `json:"display_name"`
	Amount      amountResponse  `json:"amount"`
	Percent     percentResponse `json:"percent"`
}

type allocationResponse struct {
	Total  amountResponse            `json:"total"`
	Slices []allocationSliceResponse `json:"slices"`
}

type milestoneResponse struct {
	Label       string         `json:"label"`
	Description string         `json:"description"`
	Amount      amountResponse `json:"amount"`
	Reached     bool           `json:"reached"`
}

type financialIndependenceResponse struct {
	NetWorth                amountResponse      `json:"net_worth"`
	EstimatedAnnualExpenses amountResponse      `json:"estimated_annual_expenses"`
	Target                  amountResponse      `json:"target"`
	Progress                percentResponse     `json:"progress"`
	Shortfall               amountResponse      `json:"shortfall"`
	YearsToTarget           *string             `json:"years_to_target,omitempty"`
	PassiveIncomeMonthly    amountResponse      `json:"passive_income_monthly"`
	PassiveIncomeWeekly     amountResponse      `json:"passive_income_weekly"`
	PassiveIncomeDaily      amountResponse      `json:"passive_income_daily"`
	Status                  string              `json:"status"`
	Recommendation          string              `json:"recommendation"`
	Milestones              []milestoneResponse `json:"milestones"`
}

type debtToIncomeResponse struct {
	Ratio            percentResponse `json:"ratio"`
	MonthlyDebt      amountResponse  `json:"monthly_debt"`
	MonthlyIncome    amountResponse  `json:"monthly_income"`
	TotalLiabilities amountResponse  `json:"total_liabilities"`
	Band             string          `json:"band"`
}

// modulesResponse omits modules without data.
type modulesResponse struct {
	UserID                uuid.UUID                      `json:"user_id"`
	Approximate           bool                           `json:"approximate"`
	EmergencyFund         *emergencyFundResponse         `json:"emergency_fund,omitempty"`
	SavingsRate           *savingsRateResponse           `json:"savings_rate,omitempty"`
	AssetAllocation       *allocationResponse            `json:"asset_allocation,omitempty"`
	FinancialIndependence *financialIndependenceResponse `json:"financial_independence,omitempty"`
	DebtToIncome          *debtToIncomeResponse          `json:"debt_to_income,omitempty"`
}

type insightsQuery struct {
	// Modules is nil when the query did not name any
	Modules []string
}

type figureResponse struct {
	Label   string `json:"label"`
	Value   string `json:"value"`
	Display string `json:"display"`
}

type insightResponse struct {
	ModuleID       string           `json:"module_id"`
	Title          string           `json:"title"`
	Status         string           `json:"status"`
	Recommendation string           `json:"recommendation"`
	Priority       string           `json:"priority"`
	Breakdown      []figureResponse `json:"breakdown,omitempty"`
}

type insightsResponse struct {
	UserID uuid.UUID         `json:"user_id"`
	Items  []insightResponse `json:"items"`
}

// Dictionary

type categoriesResponse struct {
	Items []networth.Category `json:"items"`
}
