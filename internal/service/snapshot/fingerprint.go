package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/tinoosan/networth/internal/finance"
	"github.com/tinoosan/networth/internal/networth"
	"github.com/tinoosan/networth/internal/slug"
)

type normAccount struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	CategoryID string `json:"category_id"`
	Balance    string `json:"balance"`
}

type normSnapshot struct {
	Date          string        `json:"date"`
	HoursInPeriod int           `json:"hours_in_period"`
	Accounts      []normAccount `json:"accounts"`
}

// fingerprint hashes the normalised submission, so "Cash" and "cash" or 100 and "100.00"
// produce the same value.
func fingerprint(in Input) string {
	n := normSnapshot{
		Date:          networth.NormalizeDate(in.Date).Format(networth.DateLayout),
		HoursInPeriod: finance.DefaultHoursInPeriod,
		Accounts:      make([]normAccount, 0, len(in.Accounts)),
	}
	if in.HoursInPeriod != nil {
		n.HoursInPeriod = *in.HoursInPeriod
	}
	for _, a := range in.Accounts {
		n.Accounts = append(n.Accounts, normAccount{
			Name:       strings.TrimSpace(a.Name),
			Type:       slug.Slugify(a.Type),
			CategoryID: slug.Slugify(a.CategoryID),
			Balance:    finance.ParseBalance(a.Balance).Trim(0).String(),
		})
	}
	b, _ := json.Marshal(n)
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}
