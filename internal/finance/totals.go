package finance

import (
	"github.com/tinoosan/networth/internal/networth"
)

// ComputeTotals is the only place totals are computed. Asset balances are summed as
// entered; liability balances are summed by magnitude so the liabilities total is never
// negative, whichever sign convention the user typed.
func ComputeTotals(accounts []networth.Account, categories map[string]networth.Category) networth.Totals {
	var assets, liabilities = zero, zero
	for _, a := range accounts {
		if IsLiability(a, categories) {
			liabilities = add(liabilities, a.Balance.Abs())
		} else {
			assets = add(assets, a.Balance)
		}
	}
	net, ok := sub(assets, liabilities)
	if !ok {
		net = zero
	}
	return networth.Totals{AssetsTotal: assets, LiabilitiesTotal: liabilities, NetWorth: net}
}
