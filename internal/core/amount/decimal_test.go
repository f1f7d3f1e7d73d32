package amount_test

import (
	"math"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goAMMd/internal/core/amount"
)

func TestPow10(t *testing.T) {
	got, err := amount.Pow10(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got)

	got, err = amount.Pow10(9)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000_000), got)

	got, err = amount.Pow10(19)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000_000_000_000_000), got)

	_, err = amount.Pow10(20)
	require.ErrorIs(t, err, amount.ErrOverflow)
}

func TestRescale(t *testing.T) {
	tests := []struct {
		name     string
		value    uint64
		from, to uint8
		want     uint64
		wantErr  error
	}{
		{name: "equal scales pass through", value: 123_456, from: 6, to: 6, want: 123_456},
		{name: "scale down truncates", value: 1_999_999, from: 9, to: 6, want: 1_999},
		{name: "scale down to zero", value: 999, from: 6, to: 3, want: 0},
		{name: "scale up", value: 1_999, from: 6, to: 9, want: 1_999_000},
		{name: "scale up overflow", value: math.MaxUint64 / 10, from: 0, to: 2, wantErr: amount.ErrOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := amount.Rescale(tt.value, tt.from, tt.to)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRescaleRoundTripNeverGains(t *testing.T) {
	f := func(value uint64, from, to uint8) bool {
		from %= amount.MaxDecimals + 1
		to %= amount.MaxDecimals + 1
		scaled, err := amount.Rescale(value, from, to)
		if err != nil {
			return true
		}
		back, err := amount.Rescale(scaled, to, from)
		if err != nil {
			return true
		}
		return back <= value
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}
