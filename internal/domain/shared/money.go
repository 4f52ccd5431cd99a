package shared

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ══════════════════════════════════════════════════════════════════════════════
// MONEY
// All tuition amounts are fixed-point decimals. Floats are never used for
// currency; 2 decimal places is the ledger-wide scale.
// ══════════════════════════════════════════════════════════════════════════════

// CurrencySymbol is the naira sign used on receipts and reminders.
const CurrencySymbol = "₦"

// Zero is the zero amount.
var Zero = decimal.Zero

// NewAmount builds an amount from integer naira (convenience for tests and
// fee catalogues).
func NewAmount(naira int64) decimal.Decimal {
	return decimal.NewFromInt(naira)
}

// ParseAmount parses a decimal string such as "150000" or "2500.50".
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, WrapError("money", "Parse", ErrInvalidFormat, "invalid amount", err)
	}
	return d, nil
}

// IsPositive reports whether the amount is strictly greater than zero.
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(decimal.Zero)
}

// FormatAmount renders an amount with the currency symbol and thousands
// separators, e.g. "₦150,000.00". Matches the format printed on receipts.
func FormatAmount(d decimal.Decimal) string {
	return CurrencySymbol + GroupDigits(d.StringFixed(2))
}

// GroupDigits inserts comma separators into the integer part of a plain
// decimal string. The input must already be a valid decimal representation.
func GroupDigits(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	if len(intPart) > 3 {
		var b strings.Builder
		lead := len(intPart) % 3
		if lead > 0 {
			b.WriteString(intPart[:lead])
		}
		for i := lead; i < len(intPart); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}

	out := intPart + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
