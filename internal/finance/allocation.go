package finance

import (
	"github.com/govalues/decimal"

	"github.com/tinoosan/networth/internal/dictionary"
	"github.com/tinoosan/networth/internal/networth"
)

// Slice is one asset category's share of the positive asset balances.
type Slice struct {
	CategoryID string
	Amount     decimal.Decimal
	Percent    decimal.Decimal
}

// Allocation lists non-empty slices in registry order.
type Allocation struct {
	Total  decimal.Decimal
	Slices []Slice
}

// AssetAllocation groups the latest snapshot's asset accounts with a positive balance by
// asset category. Accounts without a registered asset category count toward the total but
// have no slice. It returns false when there is nothing to allocate.
func AssetAllocation(snapshots []networth.Snapshot, categories map[string]networth.Category) (Allocation, bool) {
	cur, _, ok := latest(snapshots)
	if !ok {
		return Allocation{}, false
	}
	total := zero
	amounts := make(map[string]decimal.Decimal)
	for _, a := range cur.Accounts {
		if IsLiability(a, categories) || !a.Balance.IsPos() {
			continue
		}
		total = add(total, a.Balance)
		amounts[a.CategoryID] = add(amounts[a.CategoryID], a.Balance)
	}
	if total.IsZero() {
		return Allocation{}, false
	}

	out := Allocation{Total: total}
	for _, c := range dictionary.CategoriesOf(networth.KindAsset) {
		amount, ok := amounts[c.ID]
		if !ok || !amount.IsPos() {
			continue
		}
		out.Slices = append(out.Slices, Slice{
			CategoryID: c.ID,
			Amount:     amount,
			Percent:    mulOr(quoOr(amount, total), hundred),
		})
	}
	return out, true
}
