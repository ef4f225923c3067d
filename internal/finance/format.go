package finance

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/govalues/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders amounts for one currency and locale.
type Formatter struct {
	unit    currency.Unit
	printer *message.Printer
}

// NewFormatter builds a formatter for an ISO 4217 code and a BCP 47 locale.
func NewFormatter(code, locale string) (Formatter, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return Formatter{}, fmt.Errorf("currency %q: %w", code, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return Formatter{}, fmt.Errorf("locale %q: %w", locale, err)
	}
	return Formatter{unit: unit, printer: message.NewPrinter(tag)}, nil
}

// Currency is the ISO code the formatter renders.
func (f Formatter) Currency() string { return f.unit.String() }

// Money renders d with the locale's currency symbol.
func (f Formatter) Money(d decimal.Decimal) string {
	return FormatCurrency(d, f.unit, f.printer)
}

// FormatCurrency renders value in unit with the printer's locale, rounded to the
// currency's standard scale. Digits come from the decimal itself, not a float.
func FormatCurrency(value decimal.Decimal, unit currency.Unit, p *message.Printer) string {
	scale, _ := currency.Standard.Rounding(unit)
	r := value.Round(scale)
	whole, frac, ok := r.Abs().Int64(scale)
	if !ok {
		v, _ := r.Float64()
		return p.Sprint(currency.Symbol(unit.Amount(v)))
	}
	var b strings.Builder
	if r.Sign() < 0 {
		b.WriteByte('-')
	}
	b.WriteString(p.Sprint(whole))
	if scale > 0 {
		b.WriteString(decimalSeparator(p))
		fmt.Fprintf(&b, "%0*d", scale, frac)
	}
	return p.Sprint(currency.Symbol(unit)) + " " + b.String()
}

// decimalSeparator is the printer locale's separator between whole and fractional digits.
func decimalSeparator(p *message.Printer) string {
	s := []rune(p.Sprintf("%.1f", 1.5))
	if len(s) < 3 {
		return "."
	}
	return string(s[1 : len(s)-1])
}

// FormatPercent renders a percentage with two decimals.
func FormatPercent(value decimal.Decimal) string {
	v, _ := value.Round(2).Float64()
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}
