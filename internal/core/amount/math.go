// Package amount provides checked unsigned integer arithmetic for pool
// accounting. All value math in the engine goes through these helpers so
// that overflow is detected explicitly instead of wrapping.
package amount

import (
	"errors"
	"math"
)

var (
	// ErrOverflow is returned when a checked operation would exceed uint64.
	ErrOverflow = errors.New("arithmetic overflow")

	// ErrUnderflow is returned when a checked subtraction would go negative.
	ErrUnderflow = errors.New("arithmetic underflow")

	// ErrDivideByZero is returned when a divisor is zero.
	ErrDivideByZero = errors.New("division by zero")
)

// CheckedAdd returns a+b, or ErrOverflow if the sum exceeds uint64.
func CheckedAdd(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// CheckedSub returns a-b, or ErrUnderflow if b > a.
func CheckedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrUnderflow
	}
	return a - b, nil
}

// CheckedMul returns a*b, or ErrOverflow if the product exceeds uint64.
func CheckedMul(a, b uint64) (uint64, error) {
	if a != 0 && b > math.MaxUint64/a {
		return 0, ErrOverflow
	}
	return a * b, nil
}

// CheckedDiv returns a/b, or ErrDivideByZero if b is zero.
func CheckedDiv(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, ErrDivideByZero
	}
	return a / b, nil
}

// MulDiv returns floor(a*b/den). The multiplication is checked: callers that
// need graceful degradation on large operands use MulDivScaled instead.
func MulDiv(a, b, den uint64) (uint64, error) {
	product, err := CheckedMul(a, b)
	if err != nil {
		return 0, err
	}
	return CheckedDiv(product, den)
}

// PrecisionScale is the fixed scale used by MulDivScaled. Dividing before
// multiplying loses up to 1/PrecisionScale of relative precision, which is
// the documented trade for staying inside 64 bits.
const PrecisionScale uint64 = 1_000_000_000

// MulDivScaled returns an approximation of floor(a*b/den) computed as
// ((a*PrecisionScale)/den)*b/PrecisionScale. It is used when a*b would not
// fit in 64 bits. The scaled intermediate products are still checked.
func MulDivScaled(a, b, den uint64) (uint64, error) {
	if den == 0 {
		return 0, ErrDivideByZero
	}
	scaled, err := CheckedMul(a, PrecisionScale)
	if err != nil {
		return 0, err
	}
	scaled /= den
	out, err := CheckedMul(scaled, b)
	if err != nil {
		return 0, err
	}
	return out / PrecisionScale, nil
}

// WouldOverflowMul reports whether a*b exceeds uint64 without computing it.
func WouldOverflowMul(a, b uint64) bool {
	return a != 0 && b > math.MaxUint64/a
}
