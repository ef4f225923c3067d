// Package finance is the calculation core: account classification, totals, and the
// metrics derived between consecutive snapshots. Every function is pure and total; bad
// or missing data degrades to a documented fallback instead of an error.
package finance

import (
	"strings"

	"github.com/tinoosan/networth/internal/dictionary"
	"github.com/tinoosan/networth/internal/networth"
)

// ClassificationSource names the rule that decided an account's kind.
type ClassificationSource string

const (
	// SourceCategory means the account's category resolved in the registry.
	SourceCategory ClassificationSource = "category"
	// SourceType means the category was unknown and a liability type tag matched.
	SourceType ClassificationSource = "type"
	// SourceBalance means nothing else matched and the sign of the balance decided.
	SourceBalance ClassificationSource = "balance"
)

// Classification is the outcome of classifying one account.
type Classification struct {
	Liability bool
	Source    ClassificationSource
}

// Ambiguous reports whether the category did not resolve and a fallback rule was used.
func (c Classification) Ambiguous() bool { return c.Source != SourceCategory }

// Type tags that mark a liability when the category is unknown, including the
// category-id spellings users tend to put in the type field.
var liabilityTypeTags = map[string]struct{}{
	string(networth.AccountTypeCreditCard):     {},
	string(networth.AccountTypeLoan):           {},
	string(networth.AccountTypeMortgage):       {},
	string(networth.AccountTypeOtherLiability): {},
	dictionary.CategoryCreditCards:             {},
	dictionary.CategoryLoans:                   {},
	dictionary.CategoryMortgages:               {},
	dictionary.CategoryOtherLiabilities:        {},
}

// Classify decides whether an account is a liability. The registry kind is
// authoritative; then the type tag; then a negative balance.
func Classify(a networth.Account, categories map[string]networth.Category) Classification {
	if c, ok := categories[a.CategoryID]; ok && c.Kind != "" {
		return Classification{Liability: c.Kind == networth.KindLiability, Source: SourceCategory}
	}
	if _, ok := liabilityTypeTags[strings.ToLower(strings.TrimSpace(string(a.Type)))]; ok {
		return Classification{Liability: true, Source: SourceType}
	}
	return Classification{Liability: a.Balance.IsNeg(), Source: SourceBalance}
}

// IsLiability is Classify without the provenance.
func IsLiability(a networth.Account, categories map[string]networth.Category) bool {
	return Classify(a, categories).Liability
}

// ClassifyAll classifies each account; the result is index-aligned with accounts.
func ClassifyAll(accounts []networth.Account, categories map[string]networth.Category) []Classification {
	out := make([]Classification, len(accounts))
	for i, a := range accounts {
		out[i] = Classify(a, categories)
	}
	return out
}
