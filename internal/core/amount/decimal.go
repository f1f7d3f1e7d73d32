package amount

// MaxDecimals is the largest decimal precision a token mint may declare.
// 10^19 does not fit in uint64, so scale factors stop at 10^19-1 digits.
const MaxDecimals uint8 = 19

var pow10 = [MaxDecimals + 1]uint64{
	1,
	10,
	100,
	1_000,
	10_000,
	100_000,
	1_000_000,
	10_000_000,
	100_000_000,
	1_000_000_000,
	10_000_000_000,
	100_000_000_000,
	1_000_000_000_000,
	10_000_000_000_000,
	100_000_000_000_000,
	1_000_000_000_000_000,
	10_000_000_000_000_000,
	100_000_000_000_000_000,
	1_000_000_000_000_000_000,
	10_000_000_000_000_000_000,
}

// Pow10 returns 10^n for n <= MaxDecimals. Larger exponents overflow uint64.
func Pow10(n uint8) (uint64, error) {
	if n > MaxDecimals {
		return 0, ErrOverflow
	}
	return pow10[n], nil
}

// Rescale converts value from one decimal precision to another.
//
// Scaling down divides by the power-of-ten difference and truncates toward
// zero. Scaling up multiplies and is checked, since a value near the top of
// the uint64 range cannot gain digits.
func Rescale(value uint64, fromDecimals, toDecimals uint8) (uint64, error) {
	if fromDecimals == toDecimals {
		return value, nil
	}
	if fromDecimals > toDecimals {
		factor, err := Pow10(fromDecimals - toDecimals)
		if err != nil {
			return 0, err
		}
		return value / factor, nil
	}
	factor, err := Pow10(toDecimals - fromDecimals)
	if err != nil {
		return 0, err
	}
	return CheckedMul(value, factor)
}
