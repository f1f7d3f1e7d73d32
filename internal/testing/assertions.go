package testing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goAMMd/internal/core/tx"
)

// RequireBalance asserts that an account holds the expected base unit
// balance of a mint. This is a convenience wrapper around require.Equal
// for balance checks.
func RequireBalance(t *testing.T, env *TestEnv, acc *Account, mint *Mint, expected uint64) {
	t.Helper()
	actual := env.Balance(acc, mint)
	require.Equal(t, expected, actual,
		"Account %s balance mismatch for %s: expected %s, got %s",
		acc.Name, mint.Name, FormatAmount(expected, mint.Decimals), FormatAmount(actual, mint.Decimals))
}

// RequireSupply asserts that a mint has the expected issued supply.
func RequireSupply(t *testing.T, env *TestEnv, mint *Mint, expected uint64) {
	t.Helper()
	actual := env.Supply(mint)
	require.Equal(t, expected, actual,
		"Mint %s supply mismatch: expected %d, got %d", mint.Name, expected, actual)
}

// RequireReserves asserts that a pool holds the expected reserves, given in
// the same asset order as the arguments.
func RequireReserves(t *testing.T, env *TestEnv, assetA, assetB *Mint, expectedA, expectedB uint64) {
	t.Helper()
	actualA, actualB := env.Reserves(assetA, assetB)
	require.Equal(t, expectedA, actualA,
		"Pool %s reserve mismatch: expected %d, got %d", assetA.Name, expectedA, actualA)
	require.Equal(t, expectedB, actualB,
		"Pool %s reserve mismatch: expected %d, got %d", assetB.Name, expectedB, actualB)
}

// RequireTxSuccess asserts that a transaction result indicates success.
func RequireTxSuccess(t *testing.T, result TxResult) {
	t.Helper()
	require.True(t, result.Success,
		"Expected transaction success, got %s: %s", result.Code, result.Message)
	require.Equal(t, tx.TesSUCCESS, result.Result,
		"Expected tesSUCCESS, got %s: %s", result.Code, result.Message)
}

// RequireTxResult asserts that a transaction produced a specific result code.
func RequireTxResult(t *testing.T, result TxResult, expected tx.Result) {
	t.Helper()
	require.Equal(t, expected, result.Result,
		"Expected result %s, got %s: %s", expected.String(), result.Code, result.Message)
}

// RequireTxFail asserts that a transaction failed with a specific code.
func RequireTxFail(t *testing.T, result TxResult, expected tx.Result) {
	t.Helper()
	require.False(t, result.Success,
		"Expected transaction failure with code %s, but transaction succeeded", expected.String())
	require.Equal(t, expected, result.Result,
		"Expected failure code %s, got %s: %s", expected.String(), result.Code, result.Message)
}

// RequirePoolExists asserts that a pool exists for the asset pair.
func RequirePoolExists(t *testing.T, env *TestEnv, assetA, assetB *Mint) {
	t.Helper()
	require.NotNil(t, env.Pool(assetA, assetB),
		"Expected pool %s/%s to exist, but it does not", assetA.Name, assetB.Name)
}

// RequirePoolNotExists asserts that no pool exists for the asset pair.
func RequirePoolNotExists(t *testing.T, env *TestEnv, assetA, assetB *Mint) {
	t.Helper()
	require.Nil(t, env.Pool(assetA, assetB),
		"Expected no pool for %s/%s, but one exists", assetA.Name, assetB.Name)
}

// RequireEvent asserts that a transaction emitted an event of the given type
// and returns it for further inspection.
func RequireEvent(t *testing.T, result TxResult, eventType string) tx.Event {
	t.Helper()
	ev := result.EventOfType(eventType)
	require.NotNil(t, ev,
		"Expected an emitted %s event, got %d events", eventType, len(result.Events))
	return ev
}

// RequireNoEvents asserts that a transaction emitted no events.
func RequireNoEvents(t *testing.T, result TxResult) {
	t.Helper()
	require.Empty(t, result.Events,
		"Expected no emitted events, got %d", len(result.Events))
}

// AssertBalanceChange runs a function and asserts the expected balance change
// for an account's holding of a mint. The change can be positive (increase)
// or negative (decrease).
func AssertBalanceChange(t *testing.T, env *TestEnv, acc *Account, mint *Mint, expectedChange int64, fn func()) {
	t.Helper()
	before := env.Balance(acc, mint)
	fn()
	after := env.Balance(acc, mint)

	actualChange := int64(after) - int64(before)
	require.Equal(t, expectedChange, actualChange,
		"Account %s balance change mismatch for %s: expected %d change, got %d change (before: %d, after: %d)",
		acc.Name, mint.Name, expectedChange, actualChange, before, after)
}

// AssertNoBalanceChange runs a function and asserts the balance stays the same.
func AssertNoBalanceChange(t *testing.T, env *TestEnv, acc *Account, mint *Mint, fn func()) {
	t.Helper()
	AssertBalanceChange(t, env, acc, mint, 0, fn)
}
