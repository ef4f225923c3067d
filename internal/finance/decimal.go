package finance

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/govalues/decimal"
)

// Arithmetic helpers. govalues/decimal reports overflow as an error; the engine is
// total, so each helper degrades instead of failing.

var (
	zero    decimal.Decimal
	hundred = decimal.MustNew(100, 0)
)

// add returns a+b, or a unchanged when the sum does not fit.
func add(a, b decimal.Decimal) decimal.Decimal {
	if r, err := a.Add(b); err == nil {
		return r
	}
	return a
}

func sub(a, b decimal.Decimal) (decimal.Decimal, bool) {
	r, err := a.Sub(b)
	return r, err == nil
}

func mul(a, b decimal.Decimal) (decimal.Decimal, bool) {
	r, err := a.Mul(b)
	return r, err == nil
}

// quo returns a/b and false when b is zero or the quotient overflows.
func quo(a, b decimal.Decimal) (decimal.Decimal, bool) {
	if b.IsZero() {
		return zero, false
	}
	r, err := a.Quo(b)
	return r, err == nil
}

// mulOr and quoOr fall back to zero.
func mulOr(a, b decimal.Decimal) decimal.Decimal {
	r, _ := mul(a, b)
	return r
}

func quoOr(a, b decimal.Decimal) decimal.Decimal {
	r, _ := quo(a, b)
	return r
}

func subOr(a, b decimal.Decimal) decimal.Decimal {
	r, _ := sub(a, b)
	return r
}

func maxDec(first decimal.Decimal, rest ...decimal.Decimal) decimal.Decimal {
	out := first
	for _, d := range rest {
		if d.Cmp(out) > 0 {
			out = d
		}
	}
	return out
}

func minDec(a, b decimal.Decimal) decimal.Decimal {
	if b.Cmp(a) < 0 {
		return b
	}
	return a
}

func clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	return minDec(maxDec(d, lo), hi)
}

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func intDec(n int) decimal.Decimal { return decimal.MustNew(int64(n), 0) }

// or returns *p, or zero when p is nil.
func or(p *decimal.Decimal) decimal.Decimal {
	if p == nil {
		return zero
	}
	return *p
}

// ParseBalance coerces a loosely-typed balance from a transport payload into a decimal.
// Numbers, numeric strings and raw JSON are accepted; anything else is 0.
func ParseBalance(raw any) decimal.Decimal {
	switch v := raw.(type) {
	case nil:
		return zero
	case decimal.Decimal:
		return v
	case *decimal.Decimal:
		if v == nil {
			return zero
		}
		return *v
	case json.Number:
		return parseNumeric(v.String())
	case json.RawMessage:
		return parseRaw(v)
	case []byte:
		return parseRaw(v)
	case string:
		return parseNumeric(v)
	case float64:
		return fromFloat(v)
	case float32:
		return fromFloat(float64(v))
	case int:
		return decimal.MustNew(int64(v), 0)
	case int64:
		return decimal.MustNew(v, 0)
	case int32:
		return decimal.MustNew(int64(v), 0)
	default:
		return zero
	}
}

func parseRaw(b []byte) decimal.Decimal {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return zero
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal([]byte(s), &str); err != nil {
			return zero
		}
		return parseNumeric(str)
	}
	return parseNumeric(s)
}

func parseNumeric(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return zero
	}
	if d, err := decimal.Parse(s); err == nil {
		return d
	}
	// exponents and other float spellings
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return zero
	}
	return fromFloat(f)
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return zero
	}
	d, err := decimal.NewFromFloat64(f)
	if err != nil {
		return zero
	}
	return d
}
