package shared

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGroupDigits(t *testing.T) {
	cases := map[string]string{
		"0":           "0",
		"999":         "999",
		"1000":        "1,000",
		"150000":      "150,000",
		"1234567":     "1,234,567",
		"1000.50":     "1,000.50",
		"150000.00":   "150,000.00",
		"-2500.25":    "-2,500.25",
		"-999":        "-999",
		"12345678.90": "12,345,678.90",
	}
	for in, want := range cases {
		assert.Equal(t, want, GroupDigits(in), "GroupDigits(%q)", in)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "₦150,000.00", FormatAmount(decimal.NewFromInt(150000)))
	assert.Equal(t, "₦0.00", FormatAmount(decimal.Zero))
	assert.Equal(t, "₦2,500.50", FormatAmount(decimal.RequireFromString("2500.5")))
	assert.Equal(t, "₦-50,000.00", FormatAmount(decimal.NewFromInt(-50000)))
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount(" 2500.50 ")
	assert.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("2500.50")))

	_, err = ParseAmount("not money")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestIsPositive(t *testing.T) {
	assert.True(t, IsPositive(decimal.NewFromInt(1)))
	assert.False(t, IsPositive(decimal.Zero))
	assert.False(t, IsPositive(decimal.NewFromInt(-1)))
}
