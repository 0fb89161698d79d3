package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencySymbol is prefixed to every displayed amount.
const CurrencySymbol = "₹"

// minorUnitExp is the decimal exponent of one minor unit (paise).
const minorUnitExp = -2

// MaxAmount is the largest single amount accepted, in minor units.
const MaxAmount int64 = 100_000_000_000

// ErrInvalidAmount is returned when an amount cannot be used for an expense.
var ErrInvalidAmount = errors.New("invalid amount")

// FormatAmount renders minor units as a major-unit string like "₹25.50".
func FormatAmount(minor int64) string {
	return CurrencySymbol + decimal.New(minor, minorUnitExp).StringFixed(2)
}

// ParseAmount converts user text such as "25", "25.5" or "25,50" into minor
// units. Amounts must be positive with at most two fractional digits.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), CurrencySymbol))
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}

	minor := d.Shift(-minorUnitExp)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("%w: more than two decimal places", ErrInvalidAmount)
	}
	if minor.GreaterThan(decimal.NewFromInt(MaxAmount)) {
		return 0, fmt.Errorf("%w: exceeds %s", ErrInvalidAmount, FormatAmount(MaxAmount))
	}
	return minor.IntPart(), nil
}
