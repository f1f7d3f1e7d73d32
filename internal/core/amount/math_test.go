package amount_test

import (
	"math"
	"math/big"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goAMMd/internal/core/amount"
)

func TestCheckedAdd(t *testing.T) {
	tests := []struct {
		name    string
		a, b    uint64
		want    uint64
		wantErr error
	}{
		{name: "simple", a: 2, b: 3, want: 5},
		{name: "zero", a: 0, b: 0, want: 0},
		{name: "max plus zero", a: math.MaxUint64, b: 0, want: math.MaxUint64},
		{name: "overflow", a: math.MaxUint64, b: 1, wantErr: amount.ErrOverflow},
		{name: "overflow both large", a: math.MaxUint64 / 2, b: math.MaxUint64/2 + 2, wantErr: amount.ErrOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := amount.CheckedAdd(tt.a, tt.b)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckedSub(t *testing.T) {
	got, err := amount.CheckedSub(10, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), got)

	_, err = amount.CheckedSub(4, 10)
	require.ErrorIs(t, err, amount.ErrUnderflow)

	got, err = amount.CheckedSub(7, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got)
}

func TestCheckedMul(t *testing.T) {
	tests := []struct {
		name    string
		a, b    uint64
		want    uint64
		wantErr error
	}{
		{name: "simple", a: 6, b: 7, want: 42},
		{name: "zero left", a: 0, b: math.MaxUint64, want: 0},
		{name: "zero right", a: math.MaxUint64, b: 0, want: 0},
		{name: "max times one", a: math.MaxUint64, b: 1, want: math.MaxUint64},
		{name: "overflow", a: math.MaxUint64, b: 2, wantErr: amount.ErrOverflow},
		{name: "overflow square", a: 1 << 32, b: 1 << 32, wantErr: amount.ErrOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := amount.CheckedMul(tt.a, tt.b)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckedDiv(t *testing.T) {
	got, err := amount.CheckedDiv(10, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), got, "division truncates toward zero")

	_, err = amount.CheckedDiv(10, 0)
	require.ErrorIs(t, err, amount.ErrDivideByZero)
}

func TestMulDiv(t *testing.T) {
	// The constant-product quote from the reference scenario: a 10_000 unit
	// swap against 1_000_000/1_000_000 reserves with a 3/1000 fee pays 30 in
	// fees and nets 9_871 out.
	fee, err := amount.MulDiv(10_000, 3, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), fee)

	out, err := amount.MulDiv(1_000_000, 9_970, 1_000_000+9_970)
	require.NoError(t, err)
	assert.Equal(t, uint64(9_871), out)

	_, err = amount.MulDiv(math.MaxUint64, 2, 3)
	require.ErrorIs(t, err, amount.ErrOverflow)

	_, err = amount.MulDiv(1, 1, 0)
	require.ErrorIs(t, err, amount.ErrDivideByZero)
}

func TestMulDivScaled(t *testing.T) {
	// Operands chosen so a*b overflows uint64 but the scaled path fits.
	a := uint64(5_000_000)
	b := uint64(10_000_000_000_000)
	den := uint64(12_000_000)

	require.True(t, amount.WouldOverflowMul(a, b))

	got, err := amount.MulDivScaled(a, b, den)
	require.NoError(t, err)

	exact := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	exact.Div(exact, new(big.Int).SetUint64(den))
	require.True(t, exact.IsUint64())

	// The scaled path truncates before multiplying, so it may round down
	// further than the exact quotient but never up.
	assert.LessOrEqual(t, got, exact.Uint64())
	lost := exact.Uint64() - got
	assert.Less(t, lost, exact.Uint64()/1_000_000+b/amount.PrecisionScale+1,
		"scaled division should stay close to the exact quotient")

	_, err = amount.MulDivScaled(1, 1, 0)
	require.ErrorIs(t, err, amount.ErrDivideByZero)

	// a*PrecisionScale itself can overflow; that is still an error.
	_, err = amount.MulDivScaled(math.MaxUint64/2, 2, 1)
	require.ErrorIs(t, err, amount.ErrOverflow)
}

func TestCheckedMulMatchesBigInt(t *testing.T) {
	f := func(a, b uint64) bool {
		exact := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
		got, err := amount.CheckedMul(a, b)
		if exact.IsUint64() {
			return err == nil && got == exact.Uint64()
		}
		return err != nil
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestMulDivNeverRoundsUp(t *testing.T) {
	f := func(a, b, den uint64) bool {
		if den == 0 {
			den = 1
		}
		got, err := amount.MulDiv(a, b, den)
		if err != nil {
			return true
		}
		exact := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
		exact.Div(exact, new(big.Int).SetUint64(den))
		return exact.IsUint64() && got == exact.Uint64()
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}
