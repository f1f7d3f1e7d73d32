// Package pool provides test helpers and builders for pool transaction testing.
package pool

import (
	"testing"

	"github.com/LeJamon/goAMMd/internal/core/tx"
	jtx "github.com/LeJamon/goAMMd/internal/testing"
)

// Result codes pool tests assert on.
const (
	TesSUCCESS = tx.TesSUCCESS

	TecSLIPPAGE_EXCEEDED   = tx.TecSLIPPAGE_EXCEEDED
	TecARITHMETIC_OVERFLOW = tx.TecARITHMETIC_OVERFLOW
	TecINVALID_AMOUNT      = tx.TecINVALID_AMOUNT
	TecUNFUNDED            = tx.TecUNFUNDED
	TecNO_PERMISSION       = tx.TecNO_PERMISSION
	TecDUPLICATE           = tx.TecDUPLICATE

	TerNO_POOL    = tx.TerNO_POOL
	TerNO_MINT    = tx.TerNO_MINT
	TerNO_ACCOUNT = tx.TerNO_ACCOUNT

	TemMALFORMED      = tx.TemMALFORMED
	TemINVALID_AMOUNT = tx.TemINVALID_AMOUNT
	TemBAD_FEE        = tx.TemBAD_FEE
	TemREDUNDANT_PAIR = tx.TemREDUNDANT_PAIR
	TemINVALID_FLAG   = tx.TemINVALID_FLAG
)

// InitialReserve is the per-side bootstrap deposit used by the standard pool.
const InitialReserve uint64 = 1_000_000

// FundedBalance is what Fund seeds each standard account with, per asset.
const FundedBalance uint64 = 1_000_000_000

// PoolTestEnv wraps TestEnv with pool-specific helpers: standard accounts,
// the genesis development pair, and a share mint for the standard pool.
type PoolTestEnv struct {
	*jtx.TestEnv
	T *testing.T

	// Standard test accounts
	Alice *jtx.Account // pool creator and first liquidity provider
	Carol *jtx.Account // second liquidity provider
	Bob   *jtx.Account // trader

	// Standard mints
	Base   *jtx.Mint // 6 decimals, seeded by the default genesis
	Quote  *jtx.Mint // 9 decimals, seeded by the default genesis
	Shares *jtx.Mint // created by PoolCreate for the standard pool
}

// NewPoolTestEnv creates a pool test environment with standard accounts and
// the default genesis mints.
func NewPoolTestEnv(t *testing.T) *PoolTestEnv {
	t.Helper()

	env := jtx.NewTestEnv(t)

	return &PoolTestEnv{
		TestEnv: env,
		T:       t,
		Alice:   jtx.NewAccount("alice"),
		Carol:   jtx.NewAccount("carol"),
		Bob:     jtx.NewAccount("bob"),
		Base:    jtx.NewMint("base", 6),
		Quote:   jtx.NewMint("quote", 9),
		Shares:  jtx.NewMint("pool-shares", jtx.ShareDecimals),
	}
}

// Fund seeds the standard accounts with both pool assets and closes a ledger.
func (e *PoolTestEnv) Fund() {
	e.T.Helper()

	for _, acc := range []*jtx.Account{e.Alice, e.Carol, e.Bob} {
		e.TestEnv.Fund(acc, e.Base, FundedBalance)
		e.TestEnv.Fund(acc, e.Quote, FundedBalance)
	}
	e.Close()
}

// CreateStandardPool creates the Base/Quote pool at the standard 3/1000 fee
// and bootstraps it with InitialReserve on each side. Alice provides the
// initial liquidity and holds the bootstrap shares.
func (e *PoolTestEnv) CreateStandardPool() {
	e.T.Helper()

	result := e.Submit(PoolCreate(e.Alice, e.Base, e.Quote, e.Shares).Build())
	if !result.Success {
		e.T.Fatalf("Failed to create pool: %s - %s", result.Code, result.Message)
	}
	e.Close()

	result = e.Submit(PoolDeposit(e.Alice, e.Base, e.Quote, InitialReserve, InitialReserve).Build())
	if !result.Success {
		e.T.Fatalf("Failed to bootstrap pool: %s - %s", result.Code, result.Message)
	}
	e.Close()
}

// ExpectResult checks that the result matches one of the expected codes.
func ExpectResult(t *testing.T, result jtx.TxResult, expected ...tx.Result) {
	t.Helper()

	for _, code := range expected {
		if result.Result == code {
			return
		}
	}

	if len(expected) == 1 {
		t.Fatalf("Expected %s, got %s: %s", expected[0].String(), result.Code, result.Message)
		return
	}
	names := make([]string, 0, len(expected))
	for _, code := range expected {
		names = append(names, code.String())
	}
	t.Fatalf("Expected one of %v, got %s: %s", names, result.Code, result.Message)
}

// PoolTestCallback is the function signature for pool test callbacks.
type PoolTestCallback func(env *PoolTestEnv)

// WithStandardPool funds the standard accounts, creates the bootstrapped
// Base/Quote pool under the given policy, and invokes the callback.
func WithStandardPool(t *testing.T, policy tx.Policy, callback PoolTestCallback) {
	t.Helper()

	env := NewPoolTestEnv(t)
	env.SetPolicy(policy)
	env.Fund()
	env.CreateStandardPool()

	callback(env)
}
