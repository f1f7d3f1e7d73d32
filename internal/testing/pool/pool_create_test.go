// Package pool_test contains scenario tests for pool transactions.
package pool_test

import (
	"testing"

	"github.com/LeJamon/goAMMd/internal/core/ledger/genesis"
	corepool "github.com/LeJamon/goAMMd/internal/core/tx/pool"
	jtx "github.com/LeJamon/goAMMd/internal/testing"
	"github.com/LeJamon/goAMMd/internal/testing/pool"
)

// setupFunded creates a pool test environment with funded accounts and no
// pool yet.
func setupFunded(t *testing.T) *pool.PoolTestEnv {
	t.Helper()

	env := pool.NewPoolTestEnv(t)
	env.Fund()
	return env
}

func TestPoolCreate(t *testing.T) {
	t.Run("CreatesPoolEntry", func(t *testing.T) {
		env := setupFunded(t)

		result := env.Submit(pool.PoolCreate(env.Alice, env.Base, env.Quote, env.Shares).Build())
		jtx.RequireTxSuccess(t, result)

		entry := env.Pool(env.Base, env.Quote)
		if entry == nil {
			t.Fatal("Pool entry should exist after PoolCreate")
		}
		if entry.FeeNumerator != 3 || entry.FeeDenominator != 1000 {
			t.Errorf("Fee terms mismatch: got %d/%d, want 3/1000", entry.FeeNumerator, entry.FeeDenominator)
		}

		// Reserves start empty
		reserveBase, reserveQuote := env.Reserves(env.Base, env.Quote)
		if reserveBase != 0 || reserveQuote != 0 {
			t.Errorf("Fresh pool should have empty reserves, got %d/%d", reserveBase, reserveQuote)
		}

		// The share mint is created with zero supply, and the creator holds
		// none of it until a deposit
		jtx.RequireSupply(t, env.TestEnv, env.Shares, 0)
		jtx.RequireBalance(t, env.TestEnv, env.Alice, env.Shares, 0)
	})

	t.Run("EmitsPoolCreated", func(t *testing.T) {
		env := setupFunded(t)

		result := env.Submit(pool.PoolCreate(env.Alice, env.Base, env.Quote, env.Shares).Fee(5, 100).Build())
		jtx.RequireTxSuccess(t, result)

		ev := jtx.RequireEvent(t, result, "PoolCreated")
		created, ok := ev.(corepool.PoolCreatedEvent)
		if !ok {
			t.Fatalf("Unexpected event payload type %T", ev)
		}

		if created.FeeNumerator != 5 || created.FeeDenominator != 100 {
			t.Errorf("Event fee terms mismatch: got %d/%d, want 5/100", created.FeeNumerator, created.FeeDenominator)
		}
		if created.ShareToken != env.Shares.Address {
			t.Errorf("Event share token mismatch: got %s, want %s", created.ShareToken, env.Shares.Address)
		}
		if created.Authority == "" {
			t.Error("Event should carry the derived pool authority")
		}

		// The event reports the pair in canonical order, so the caller's
		// assets appear as an unordered set
		pair := map[string]bool{created.AssetA: true, created.AssetB: true}
		if !pair[env.Base.Address] || !pair[env.Quote.Address] {
			t.Errorf("Event pair mismatch: got %s/%s", created.AssetA, created.AssetB)
		}
	})

	t.Run("PairOrderDoesNotMatter", func(t *testing.T) {
		env := setupFunded(t)

		// Create with the pair reversed
		result := env.Submit(pool.PoolCreate(env.Alice, env.Quote, env.Base, env.Shares).Build())
		jtx.RequireTxSuccess(t, result)

		// The pool is found under either order
		jtx.RequirePoolExists(t, env.TestEnv, env.Base, env.Quote)
		jtx.RequirePoolExists(t, env.TestEnv, env.Quote, env.Base)

		// And the pair identifies the same pool: a second create in the
		// opposite order collides
		result = env.Submit(pool.PoolCreate(env.Carol, env.Base, env.Quote, jtx.NewMint("other-shares", jtx.ShareDecimals)).Build())
		pool.ExpectResult(t, result, pool.TecDUPLICATE)
	})
}

func TestInvalidPoolCreate(t *testing.T) {
	t.Run("IdenticalAssets", func(t *testing.T) {
		env := setupFunded(t)

		result := env.Submit(pool.PoolCreate(env.Alice, env.Base, env.Base, env.Shares).Build())
		pool.ExpectResult(t, result, pool.TemREDUNDANT_PAIR)
	})

	t.Run("ShareTokenMatchesAsset", func(t *testing.T) {
		env := setupFunded(t)

		result := env.Submit(pool.PoolCreate(env.Alice, env.Base, env.Quote, env.Quote).Build())
		pool.ExpectResult(t, result, pool.TemMALFORMED)
	})

	t.Run("MalformedAssetID", func(t *testing.T) {
		env := setupFunded(t)

		createTx := corepool.NewPoolCreate(env.Alice.Address, "not-a-mint", env.Quote.Address, env.Shares.Address, 3, 1000)
		result := env.Submit(createTx)
		pool.ExpectResult(t, result, pool.TemMALFORMED)
	})

	t.Run("ZeroFeeDenominator", func(t *testing.T) {
		env := setupFunded(t)

		result := env.Submit(pool.PoolCreate(env.Alice, env.Base, env.Quote, env.Shares).Fee(0, 0).Build())
		pool.ExpectResult(t, result, pool.TemBAD_FEE)
	})

	t.Run("FeeAboveUnity", func(t *testing.T) {
		env := setupFunded(t)

		result := env.Submit(pool.PoolCreate(env.Alice, env.Base, env.Quote, env.Shares).Fee(1001, 1000).Build())
		pool.ExpectResult(t, result, pool.TemBAD_FEE)
	})

	t.Run("FullFeeAllowed", func(t *testing.T) {
		env := setupFunded(t)

		// A 100% fee is degenerate but well-formed
		result := env.Submit(pool.PoolCreate(env.Alice, env.Base, env.Quote, env.Shares).Fee(1, 1).Build())
		jtx.RequireTxSuccess(t, result)
	})

	t.Run("InvalidFlags", func(t *testing.T) {
		env := setupFunded(t)

		result := env.Submit(pool.PoolCreate(env.Alice, env.Base, env.Quote, env.Shares).Flags(0x00010000).Build())
		pool.ExpectResult(t, result, pool.TemINVALID_FLAG)
	})

	t.Run("MissingMint", func(t *testing.T) {
		env := setupFunded(t)

		missing := jtx.NewMint("never-seeded", 6)
		result := env.Submit(pool.PoolCreate(env.Alice, env.Base, missing, env.Shares).Build())
		pool.ExpectResult(t, result, pool.TerNO_MINT)
	})

	t.Run("DuplicatePool", func(t *testing.T) {
		env := setupFunded(t)

		result := env.Submit(pool.PoolCreate(env.Alice, env.Base, env.Quote, env.Shares).Build())
		jtx.RequireTxSuccess(t, result)
		env.Close()

		// The duplicate fails and the original terms survive
		result = env.Submit(pool.PoolCreate(env.Carol, env.Base, env.Quote, jtx.NewMint("other-shares", jtx.ShareDecimals)).Fee(5, 100).Build())
		pool.ExpectResult(t, result, pool.TecDUPLICATE)

		entry := env.Pool(env.Base, env.Quote)
		if entry.FeeNumerator != 3 || entry.FeeDenominator != 1000 {
			t.Errorf("Failed create must not alter the pool: got %d/%d", entry.FeeNumerator, entry.FeeDenominator)
		}
	})

	t.Run("ShareMintAlreadyExists", func(t *testing.T) {
		// A third tradable mint so the existing quote mint can be offered
		// as a share token for a different pair
		base := jtx.NewMint("base", 6)
		quote := jtx.NewMint("quote", 9)
		third := jtx.NewMint("third", 6)
		env := jtx.NewTestEnvWithConfig(t, genesis.Config{
			Mints: []genesis.MintSeed{base.Seed(), quote.Seed(), third.Seed()},
		})

		alice := jtx.NewAccount("alice")
		result := env.Submit(pool.PoolCreate(alice, base, third, quote).Build())
		pool.ExpectResult(t, result, pool.TecDUPLICATE)
	})
}
