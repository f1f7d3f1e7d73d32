package testing

import (
	"fmt"
	"strings"

	"github.com/LeJamon/goAMMd/internal/core/amount"
)

// Units converts a whole-token count to base units for a mint with the given
// number of decimals. For example, Units(100, 6) returns 100,000,000.
// Panics on overflow so a bad test constant fails loudly.
func Units(n uint64, decimals uint8) uint64 {
	scale, err := amount.Pow10(decimals)
	if err != nil {
		panic(fmt.Sprintf("invalid decimals %d: %v", decimals, err))
	}
	v, err := amount.CheckedMul(n, scale)
	if err != nil {
		panic(fmt.Sprintf("%d tokens at %d decimals overflows uint64", n, decimals))
	}
	return v
}

// BaseUnits returns the base unit amount unchanged. This is a convenience
// function for clarity when a test specifies amounts in base units directly.
func BaseUnits(n uint64) uint64 {
	return n
}

// FormatAmount renders a base unit amount as a decimal string for failure
// messages. For example, FormatAmount(1_500_000, 6) returns "1.5".
func FormatAmount(amt uint64, decimals uint8) string {
	if decimals == 0 {
		return fmt.Sprintf("%d", amt)
	}
	scale, err := amount.Pow10(decimals)
	if err != nil {
		return fmt.Sprintf("%d (at %d decimals)", amt, decimals)
	}
	whole := amt / scale
	frac := amt % scale
	if frac == 0 {
		return fmt.Sprintf("%d", whole)
	}
	s := fmt.Sprintf("%d.%0*d", whole, decimals, frac)
	return strings.TrimRight(s, "0")
}
