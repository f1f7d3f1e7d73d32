package pool_test

import (
	"testing"

	"github.com/LeJamon/goAMMd/internal/core/tx"
	corepool "github.com/LeJamon/goAMMd/internal/core/tx/pool"
	jtx "github.com/LeJamon/goAMMd/internal/testing"
	"github.com/LeJamon/goAMMd/internal/testing/pool"
)

func TestSwapPricing(t *testing.T) {
	// Reserves 1,000,000/1,000,000 at a 3/1000 fee. 10,000 in pays a fee of
	// 30, prices 9,970 against the product, and buys 9,871 out.
	const (
		amountIn  = 10_000
		fee       = 30
		netIn     = 9_970
		amountOut = 9_871
	)

	t.Run("Hardened", func(t *testing.T) {
		pool.WithStandardPool(t, tx.PolicyHardened, func(env *pool.PoolTestEnv) {
			result := env.Swap(env.Bob, env.Base, env.Quote, amountIn, amountOut)
			jtx.RequireTxSuccess(t, result)

			jtx.RequireBalance(t, env.TestEnv, env.Bob, env.Base, pool.FundedBalance-amountIn)
			jtx.RequireBalance(t, env.TestEnv, env.Bob, env.Quote, pool.FundedBalance+amountOut)

			// The fee is a side payment; only the net grows the reserve
			jtx.RequireBalance(t, env.TestEnv, env.FeeCollector(), env.Base, fee)
			jtx.RequireReserves(t, env.TestEnv, env.Base, env.Quote,
				pool.InitialReserve+netIn, pool.InitialReserve-amountOut)
		})
	})

	t.Run("Naive", func(t *testing.T) {
		pool.WithStandardPool(t, tx.PolicyNaive, func(env *pool.PoolTestEnv) {
			result := env.Swap(env.Bob, env.Base, env.Quote, amountIn, amountOut)
			jtx.RequireTxSuccess(t, result)

			jtx.RequireBalance(t, env.TestEnv, env.Bob, env.Base, pool.FundedBalance-amountIn)
			jtx.RequireBalance(t, env.TestEnv, env.Bob, env.Quote, pool.FundedBalance+amountOut)

			// The fee stays inside the input reserve
			jtx.RequireReserves(t, env.TestEnv, env.Base, env.Quote,
				pool.InitialReserve+amountIn, pool.InitialReserve-amountOut)
		})
	})
}

func TestSwapReverseDirection(t *testing.T) {
	pool.WithStandardPool(t, tx.PolicyHardened, func(env *pool.PoolTestEnv) {
		// Direction follows the transaction's in/out assets, not the pool's
		// canonical side order
		result := env.Swap(env.Bob, env.Quote, env.Base, 10_000, 9_871)
		jtx.RequireTxSuccess(t, result)

		jtx.RequireBalance(t, env.TestEnv, env.Bob, env.Quote, pool.FundedBalance-10_000)
		jtx.RequireBalance(t, env.TestEnv, env.Bob, env.Base, pool.FundedBalance+9_871)
		jtx.RequireReserves(t, env.TestEnv, env.Base, env.Quote, 990_129, 1_009_970)
	})
}

func TestSwapEvent(t *testing.T) {
	pool.WithStandardPool(t, tx.PolicyHardened, func(env *pool.PoolTestEnv) {
		result := env.Swap(env.Bob, env.Base, env.Quote, 10_000, 0)
		jtx.RequireTxSuccess(t, result)

		ev := jtx.RequireEvent(t, result, "SwapExecuted")
		swapped, ok := ev.(corepool.SwapExecutedEvent)
		if !ok {
			t.Fatalf("Unexpected event payload type %T", ev)
		}
		if swapped.AmountIn != 10_000 || swapped.AmountOut != 9_871 || swapped.Fee != 30 {
			t.Errorf("Event amounts mismatch: in=%d out=%d fee=%d",
				swapped.AmountIn, swapped.AmountOut, swapped.Fee)
		}
		if swapped.AssetIn == swapped.AssetOut {
			t.Error("Event must carry distinct in/out assets")
		}
	})
}

func TestSwapConstantProduct(t *testing.T) {
	// With no fee the reserve product never decreases; with a fee retained
	// in the reserve it strictly grows.
	setup := func(t *testing.T, policy tx.Policy, feeNum, feeDen uint64) *pool.PoolTestEnv {
		t.Helper()

		env := pool.NewPoolTestEnv(t)
		env.SetPolicy(policy)
		env.Fund()

		result := env.Submit(pool.PoolCreate(env.Alice, env.Base, env.Quote, env.Shares).Fee(feeNum, feeDen).Build())
		jtx.RequireTxSuccess(t, result)
		env.Close()

		result = env.Submit(pool.PoolDeposit(env.Alice, env.Base, env.Quote, pool.InitialReserve, pool.InitialReserve).Build())
		jtx.RequireTxSuccess(t, result)
		env.Close()
		return env
	}

	t.Run("ZeroFeeNeverDecreases", func(t *testing.T) {
		env := setup(t, tx.PolicyHardened, 0, 1)

		for _, amountIn := range []uint64{1, 7, 999, 10_000, 123_456} {
			beforeA, beforeB := env.Reserves(env.Base, env.Quote)
			result := env.Swap(env.Bob, env.Base, env.Quote, amountIn, 0)
			jtx.RequireTxSuccess(t, result)

			afterA, afterB := env.Reserves(env.Base, env.Quote)
			if afterA*afterB < beforeA*beforeB {
				t.Fatalf("Reserve product decreased on %d in: %d*%d -> %d*%d",
					amountIn, beforeA, beforeB, afterA, afterB)
			}
		}
	})

	t.Run("RetainedFeeStrictlyGrows", func(t *testing.T) {
		env := setup(t, tx.PolicyNaive, 3, 1000)

		beforeA, beforeB := env.Reserves(env.Base, env.Quote)
		result := env.Swap(env.Bob, env.Base, env.Quote, 10_000, 0)
		jtx.RequireTxSuccess(t, result)

		afterA, afterB := env.Reserves(env.Base, env.Quote)
		if afterA*afterB <= beforeA*beforeB {
			t.Fatalf("Retained fee must grow the product: %d*%d -> %d*%d",
				beforeA, beforeB, afterA, afterB)
		}
	})
}

func TestSwapSlippage(t *testing.T) {
	for _, policy := range []tx.Policy{tx.PolicyHardened, tx.PolicyNaive} {
		t.Run(policy.String(), func(t *testing.T) {
			pool.WithStandardPool(t, policy, func(env *pool.PoolTestEnv) {
				// The swap would deliver 9,871; the floor asks for one more
				jtx.AssertNoBalanceChange(t, env.TestEnv, env.Bob, env.Base, func() {
					result := env.Swap(env.Bob, env.Base, env.Quote, 10_000, 9_872)
					pool.ExpectResult(t, result, pool.TecSLIPPAGE_EXCEEDED)
				})

				jtx.RequireBalance(t, env.TestEnv, env.Bob, env.Quote, pool.FundedBalance)
				jtx.RequireReserves(t, env.TestEnv, env.Base, env.Quote, pool.InitialReserve, pool.InitialReserve)
			})
		})
	}
}

func TestSwapFeeTruncation(t *testing.T) {
	pool.WithStandardPool(t, tx.PolicyHardened, func(env *pool.PoolTestEnv) {
		// 333 * 3/1000 floors to zero: the whole input prices against the
		// product and the fee recipient gets nothing
		result := env.Swap(env.Bob, env.Base, env.Quote, 333, 0)
		jtx.RequireTxSuccess(t, result)

		jtx.RequireBalance(t, env.TestEnv, env.FeeCollector(), env.Base, 0)

		ev := jtx.RequireEvent(t, result, "SwapExecuted")
		if swapped := ev.(corepool.SwapExecutedEvent); swapped.Fee != 0 {
			t.Errorf("Fee should truncate to zero, got %d", swapped.Fee)
		}
	})
}

func TestSwapValidation(t *testing.T) {
	pool.WithStandardPool(t, tx.PolicyHardened, func(env *pool.PoolTestEnv) {
		t.Run("ZeroAmountIn", func(t *testing.T) {
			result := env.Swap(env.Bob, env.Base, env.Quote, 0, 0)
			pool.ExpectResult(t, result, pool.TemINVALID_AMOUNT)
		})

		t.Run("SameAsset", func(t *testing.T) {
			result := env.Swap(env.Bob, env.Base, env.Base, 10_000, 0)
			pool.ExpectResult(t, result, pool.TemREDUNDANT_PAIR)
		})

		t.Run("InvalidFlags", func(t *testing.T) {
			swapTx := pool.PoolSwap(env.Bob, env.Base, env.Quote, 10_000).
				FeeTo(env.FeeCollector()).
				Flags(0x00010000).
				Build()
			result := env.Submit(swapTx)
			pool.ExpectResult(t, result, pool.TemINVALID_FLAG)
		})

		t.Run("HardenedRequiresFeeAccount", func(t *testing.T) {
			swapTx := pool.PoolSwap(env.Bob, env.Base, env.Quote, 10_000).Build()
			result := env.Submit(swapTx)
			pool.ExpectResult(t, result, pool.TemMALFORMED)
		})
	})
}

func TestSwapNoPool(t *testing.T) {
	env := setupFunded(t)

	result := env.Swap(env.Bob, env.Base, env.Quote, 10_000, 0)
	pool.ExpectResult(t, result, pool.TerNO_POOL)
}

func TestSwapUnfunded(t *testing.T) {
	pool.WithStandardPool(t, tx.PolicyHardened, func(env *pool.PoolTestEnv) {
		result := env.Swap(env.Bob, env.Base, env.Quote, pool.FundedBalance+1, 0)
		pool.ExpectResult(t, result, pool.TecUNFUNDED)
	})
}

func TestSwapEmptyReserves(t *testing.T) {
	t.Run("HardenedRejects", func(t *testing.T) {
		env := setupEmptyPool(t, tx.PolicyHardened)

		result := env.Swap(env.Bob, env.Base, env.Quote, 10_000, 0)
		pool.ExpectResult(t, result, pool.TecINVALID_AMOUNT)
	})

	t.Run("NaiveDeliversNothing", func(t *testing.T) {
		// The naive variant has no live-reserve gate: the swap succeeds,
		// the input lands in the reserve, and zero comes back
		env := setupEmptyPool(t, tx.PolicyNaive)

		result := env.Swap(env.Bob, env.Base, env.Quote, 10_000, 0)
		jtx.RequireTxSuccess(t, result)

		jtx.RequireBalance(t, env.TestEnv, env.Bob, env.Base, pool.FundedBalance-10_000)
		jtx.RequireBalance(t, env.TestEnv, env.Bob, env.Quote, pool.FundedBalance)
		jtx.RequireReserves(t, env.TestEnv, env.Base, env.Quote, 10_000, 0)
	})
}

func TestSwapOverflowBoundary(t *testing.T) {
	// reserveOut*netIn overruns 64 bits: the hardened policy degrades to the
	// scaled computation, the naive policy reports the overflow. Reserves
	// are donated directly so the share side plays no part.
	const (
		reserveIn  = 1_000_000_000_000     // 1e12
		reserveOut = 1_000_000_000_000_000 // 1e15
		amountIn   = 100_000
	)

	seed := func(t *testing.T, policy tx.Policy) *pool.PoolTestEnv {
		t.Helper()

		env := pool.NewPoolTestEnv(t)
		env.SetPolicy(policy)
		env.Fund()

		result := env.Submit(pool.PoolCreate(env.Alice, env.Base, env.Quote, env.Shares).Fee(0, 1).Build())
		jtx.RequireTxSuccess(t, result)
		env.Close()

		authority := env.PoolAuthority(env.Base, env.Quote)
		env.TestEnv.Fund(authority, env.Base, reserveIn)
		env.TestEnv.Fund(authority, env.Quote, reserveOut)
		env.Close()
		return env
	}

	t.Run("HardenedScaledFallback", func(t *testing.T) {
		env := seed(t, tx.PolicyHardened)

		// floor((100,000*1e9)/(1e12+100,000)) = 99, times the out reserve,
		// scaled back down: exactly 99,000,000. The precise quotient would
		// be 99,999,990; the difference is the documented precision trade.
		result := env.Swap(env.Bob, env.Base, env.Quote, amountIn, 0)
		jtx.RequireTxSuccess(t, result)

		jtx.RequireBalance(t, env.TestEnv, env.Bob, env.Quote, pool.FundedBalance+99_000_000)
	})

	t.Run("NaiveOverflows", func(t *testing.T) {
		env := seed(t, tx.PolicyNaive)

		jtx.AssertNoBalanceChange(t, env.TestEnv, env.Bob, env.Base, func() {
			result := env.Swap(env.Bob, env.Base, env.Quote, amountIn, 0)
			pool.ExpectResult(t, result, pool.TecARITHMETIC_OVERFLOW)
		})
	})
}
