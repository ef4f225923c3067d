package slug

import (
	"regexp"
	"strings"
)

var reSlug = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// MaxLen bounds category ids and account type tags.
const MaxLen = 40

// IsSlug returns true if s is lowercase kebab-case of at most MaxLen characters.
func IsSlug(s string) bool {
	return len(s) <= MaxLen && reSlug.MatchString(s)
}

// Slugify converts s to kebab-case: lowercase, runs of anything outside [a-z0-9] become a
// single '-', trimmed to MaxLen with no leading or trailing '-'.
// "Credit Card", "credit_card" and " CREDIT-CARD " all become "credit-card".
func Slugify(s string) string {
	if s == "" {
		return s
	}
	out := make([]rune, 0, len(s))
	prevDash := true
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			out = append(out, r)
			prevDash = false
		} else if !prevDash {
			out = append(out, '-')
			prevDash = true
		}
		if len(out) >= MaxLen {
			break
		}
	}
	return strings.Trim(string(out), "-")
}
