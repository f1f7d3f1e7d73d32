package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goAMMd/internal/core/tx/pool"
)

func TestParseFee(t *testing.T) {
	tests := []struct {
		input   string
		num     uint64
		den     uint64
		wantErr bool
	}{
		{input: "3/1000", num: 3, den: 1000},
		{input: "0/1", num: 0, den: 1},
		{input: " 25 / 10000 ", num: 25, den: 10000},
		{input: "3", wantErr: true},
		{input: "a/b", wantErr: true},
		{input: "3/", wantErr: true},
	}

	for _, tc := range tests {
		num, den, err := parseFee(tc.input)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.input)
			continue
		}
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.num, num)
		assert.Equal(t, tc.den, den)
	}
}

func TestQuoteCommand(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{
		"quote", "10000",
		"--reserve-in", "1000000",
		"--reserve-out", "1000000",
		"--fee", "3/1000",
	})
	require.NoError(t, rootCmd.Execute())

	var quote pool.QuoteResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &quote))
	assert.Equal(t, uint64(30), quote.Fee)
	assert.Equal(t, uint64(9970), quote.NetIn)
	assert.Equal(t, uint64(9871), quote.AmountOut)
}

func TestQuoteCommandRejectsBadFee(t *testing.T) {
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{
		"quote", "10000",
		"--reserve-in", "1000000",
		"--reserve-out", "1000000",
		"--fee", "basis-points",
	})
	assert.Error(t, rootCmd.Execute())
}
