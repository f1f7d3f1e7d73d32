package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goAMMd/internal/core/ledger/genesis"
	"github.com/LeJamon/goAMMd/internal/core/tx"
)

func TestNewAccount(t *testing.T) {
	// Test deterministic account creation
	alice1 := NewAccount("alice")
	alice2 := NewAccount("alice")

	// Same name should produce same account
	assert.Equal(t, alice1.Address, alice2.Address)
	assert.Equal(t, alice1.ID, alice2.ID)

	// Different name should produce different account
	bob := NewAccount("bob")
	assert.NotEqual(t, alice1.Address, bob.Address)
}

func TestAuthorityAccount(t *testing.T) {
	authority := AuthorityAccount()

	// Should be the well-known genesis authority
	assert.Equal(t, genesis.AuthorityID(), authority.ID)
	assert.Equal(t, "authority", authority.Name)
}

func TestAccountString(t *testing.T) {
	alice := NewAccount("alice")

	// String() should include name and address
	str := alice.String()
	assert.Contains(t, str, "alice")
	assert.Contains(t, str, alice.Address)
}

func TestNewMint(t *testing.T) {
	// Same name should produce the same mint
	base1 := NewMint("base", 6)
	base2 := NewMint("base", 6)
	assert.Equal(t, base1.ID, base2.ID)
	assert.Equal(t, base1.Address, base2.Address)

	// Different name should produce a different mint
	quote := NewMint("quote", 9)
	assert.NotEqual(t, base1.ID, quote.ID)

	// Derivation should match the genesis development mints
	assert.Equal(t, genesis.DevMintID("base"), base1.Address)
}

func TestMintSeed(t *testing.T) {
	base := NewMint("base", 6)
	seed := base.Seed()

	assert.Equal(t, base.Address, seed.ID)
	assert.Equal(t, uint8(6), seed.Decimals)
}

func TestUnitsConversion(t *testing.T) {
	// 1 token at 6 decimals = 1,000,000 base units
	assert.Equal(t, uint64(1_000_000), Units(1, 6))
	assert.Equal(t, uint64(100_000_000), Units(100, 6))
	assert.Equal(t, uint64(5_000_000_000_000), Units(5_000, 9))

	// Zero decimals should pass through unchanged
	assert.Equal(t, uint64(42), Units(42, 0))
}

func TestBaseUnits(t *testing.T) {
	// Base units should pass through unchanged
	assert.Equal(t, uint64(1000), BaseUnits(1000))
	assert.Equal(t, uint64(0), BaseUnits(0))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1.5", FormatAmount(1_500_000, 6))
	assert.Equal(t, "1", FormatAmount(1_000_000, 6))
	assert.Equal(t, "0.000001", FormatAmount(1, 6))
	assert.Equal(t, "42", FormatAmount(42, 0))
}

func TestManualClock(t *testing.T) {
	clock := NewManualClock()

	// Default time should be Jan 2, 2024
	now := clock.Now()
	assert.Equal(t, 2024, now.Year())
	assert.Equal(t, time.January, now.Month())
	assert.Equal(t, 2, now.Day())

	// Advance time
	clock.Advance(10 * time.Second)
	now2 := clock.Now()
	assert.Equal(t, 10*time.Second, now2.Sub(now))

	// Set time
	newTime := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	clock.Set(newTime)
	assert.Equal(t, newTime, clock.Now())
}

func TestManualClockAt(t *testing.T) {
	startTime := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	clock := NewManualClockAt(startTime)

	assert.Equal(t, startTime, clock.Now())
}

func TestTxResultCategories(t *testing.T) {
	// Success
	success := TxResult{Result: tx.TesSUCCESS, Code: "tesSUCCESS", Success: true}
	assert.False(t, success.IsTec())
	assert.False(t, success.IsTer())
	assert.False(t, success.IsTem())

	// Claimed (tec)
	claimed := TxResult{Result: tx.TecUNFUNDED, Code: "tecUNFUNDED"}
	assert.True(t, claimed.IsTec())
	assert.False(t, claimed.IsTer())

	// Retry (ter)
	retry := TxResult{Result: tx.TerNO_POOL, Code: "terNO_POOL"}
	assert.True(t, retry.IsTer())
	assert.False(t, retry.IsTec())

	// Malformed (tem)
	malformed := TxResult{Result: tx.TemMALFORMED, Code: "temMALFORMED"}
	assert.True(t, malformed.IsTem())
	assert.False(t, malformed.IsTec())
}

func TestNewTestEnv(t *testing.T) {
	env := NewTestEnv(t)
	require.NotNil(t, env)

	// Should start at ledger sequence 2, the first open ledger over genesis
	assert.Equal(t, uint32(2), env.LedgerSeq())

	// Should default to the hardened policy
	assert.Equal(t, tx.PolicyHardened, env.Policy())

	// Default genesis should seed the development mints with no issued supply
	base := NewMint("base", 6)
	quote := NewMint("quote", 9)
	assert.Equal(t, uint64(0), env.Supply(base))
	assert.Equal(t, uint64(0), env.Supply(quote))
}

func TestSetPolicy(t *testing.T) {
	env := NewTestEnv(t)

	env.SetPolicy(tx.PolicyNaive)
	assert.Equal(t, tx.PolicyNaive, env.Policy())

	env.SetPolicy(tx.PolicyHardened)
	assert.Equal(t, tx.PolicyHardened, env.Policy())
}

func TestFundAndBalance(t *testing.T) {
	env := NewTestEnv(t)
	alice := NewAccount("alice")
	base := NewMint("base", 6)

	// Unfunded accounts read as zero
	assert.Equal(t, uint64(0), env.Balance(alice, base))

	supplyBefore := env.Supply(base)

	env.Fund(alice, base, Units(100, 6))
	assert.Equal(t, Units(100, 6), env.Balance(alice, base))

	// Funding counts as issued supply
	assert.Equal(t, supplyBefore+Units(100, 6), env.Supply(base))

	// Funding again accumulates
	env.Fund(alice, base, Units(50, 6))
	assert.Equal(t, Units(150, 6), env.Balance(alice, base))
}

func TestClose(t *testing.T) {
	env := NewTestEnv(t)
	alice := NewAccount("alice")
	base := NewMint("base", 6)

	env.Fund(alice, base, Units(10, 6))

	seq := env.LedgerSeq()
	env.Close()

	// Closing opens a successor ledger
	assert.Equal(t, seq+1, env.LedgerSeq())

	// State carries across the close
	assert.Equal(t, Units(10, 6), env.Balance(alice, base))
}
