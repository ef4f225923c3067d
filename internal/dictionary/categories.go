// Package dictionary is the single owner of the account category table.
// Every collaborator (ingestion, presentation, HTTP) reads it from here.
package dictionary

import "github.com/tinoosan/networth/internal/networth"

// Category ids referenced by the finance engine.
const (
	CategoryCash             = "cash"
	CategoryInvestments      = "investments"
	CategoryRetirement       = "retirement"
	CategoryRealEstate       = "real-estate"
	CategoryVehicles         = "vehicles"
	CategoryOtherAssets      = "other-assets"
	CategoryCreditCards      = "credit-cards"
	CategoryLoans            = "loans"
	CategoryMortgages        = "mortgages"
	CategoryOtherLiabilities = "other-liabilities"
)

var curated = []networth.Category{
	{ID: CategoryCash, DisplayName: "Cash & Bank Accounts", Kind: networth.KindAsset, Description: "Checking accounts, savings accounts, money market accounts", Icon: "wallet"},
	{ID: CategoryInvestments, DisplayName: "Investment Accounts", Kind: networth.KindAsset, Description: "Brokerage accounts, stocks, bonds, mutual funds", Icon: "trending-up"},
	{ID: CategoryRetirement, DisplayName: "Retirement Accounts", Kind: networth.KindAsset, Description: "401(k), IRA, Roth IRA, pension accounts", Icon: "piggy-bank"},
	{ID: CategoryRealEstate, DisplayName: "Real Estate", Kind: networth.KindAsset, Description: "Primary residence, rental properties, land", Icon: "home"},
	{ID: CategoryVehicles, DisplayName: "Vehicles", Kind: networth.KindAsset, Description: "Cars, trucks, motorcycles, boats", Icon: "car"},
	{ID: CategoryOtherAssets, DisplayName: "Other Assets", Kind: networth.KindAsset, Description: "Jewelry, collectibles, business assets", Icon: "package"},
	{ID: CategoryCreditCards, DisplayName: "Credit Cards", Kind: networth.KindLiability, Description: "Credit card balances and outstanding debt", Icon: "credit-card"},
	{ID: CategoryLoans, DisplayName: "Personal Loans", Kind: networth.KindLiability, Description: "Personal loans, student loans, auto loans", Icon: "file-text"},
	{ID: CategoryMortgages, DisplayName: "Mortgages", Kind: networth.KindLiability, Description: "Home mortgages, HELOC, second mortgages", Icon: "building"},
	{ID: CategoryOtherLiabilities, DisplayName: "Other Liabilities", Kind: networth.KindLiability, Description: "Other debts and obligations", Icon: "alert-triangle"},
}

var byID = func() map[string]networth.Category {
	m := make(map[string]networth.Category, len(curated))
	for _, c := range curated {
		m[c.ID] = c
	}
	return m
}()

// Categories returns the registry in display order. The slice is a copy.
func Categories() []networth.Category {
	out := make([]networth.Category, len(curated))
	copy(out, curated)
	return out
}

// ByID returns a fresh id -> category map.
func ByID() map[string]networth.Category {
	out := make(map[string]networth.Category, len(byID))
	for k, v := range byID {
		out[k] = v
	}
	return out
}

// CategoriesOf returns the categories of one kind, in display order.
func CategoriesOf(kind networth.CategoryKind) []networth.Category {
	out := make([]networth.Category, 0, len(curated))
	for _, c := range curated {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}
