package pool

import (
	"github.com/LeJamon/goAMMd/internal/core/amount"
	"github.com/LeJamon/goAMMd/internal/core/ledger/sle"
	"github.com/LeJamon/goAMMd/internal/core/tx"
)

// policyRules captures every point where the naive and hardened accounting
// variants diverge. Operations branch through the active rule set instead of
// switching on the policy inline, so each difference is visible in one place.
type policyRules struct {
	// bootstrapDeposit reports whether a deposit issues the fixed
	// bootstrap share amount instead of pricing against the reserves.
	bootstrapDeposit func(reserveA, reserveB uint64) bool

	// depositShares prices one side of a proportional deposit. The
	// hardened variant normalizes amounts to the share mint's scale first.
	depositShares func(amountIn, reserve, supply uint64, assetDecimals, shareDecimals uint8) (uint64, tx.Result)

	// requireLiveReserves rejects swaps while either reserve is empty.
	requireLiveReserves bool

	// swapOutput prices a swap after the fee has been taken.
	swapOutput func(reserveIn, reserveOut, netIn uint64) (uint64, tx.Result)

	// feeIntoReserve folds the swap fee into the input reserve instead of
	// routing it to a separate recipient.
	feeIntoReserve bool

	// burnAuthority selects who authorizes the share burn on withdrawal.
	burnAuthority func(pool *sle.PoolData, submitter [20]byte) [20]byte
}

// rulesFor returns the rule set for the engine's active policy.
func rulesFor(p tx.Policy) policyRules {
	if p == tx.PolicyNaive {
		return naiveRules
	}
	return hardenedRules
}

// naiveRules prices on raw amounts and keeps fees inside the reserves. The
// original design trusted inputs to stay small; here every step is still
// checked and failures surface as tecARITHMETIC_OVERFLOW.
var naiveRules = policyRules{
	bootstrapDeposit: func(reserveA, reserveB uint64) bool {
		return reserveA == 0
	},

	depositShares: func(amountIn, reserve, supply uint64, _, _ uint8) (uint64, tx.Result) {
		shares, err := amount.MulDiv(amountIn, supply, reserve)
		if err != nil {
			return 0, TecARITHMETIC_OVERFLOW
		}
		return shares, tx.TesSUCCESS
	},

	requireLiveReserves: false,

	swapOutput: func(reserveIn, reserveOut, netIn uint64) (uint64, tx.Result) {
		denom, err := amount.CheckedAdd(reserveIn, netIn)
		if err != nil {
			return 0, TecARITHMETIC_OVERFLOW
		}
		out, err := amount.MulDiv(reserveOut, netIn, denom)
		if err != nil {
			return 0, TecARITHMETIC_OVERFLOW
		}
		return out, tx.TesSUCCESS
	},

	feeIntoReserve: true,

	burnAuthority: func(pool *sle.PoolData, _ [20]byte) [20]byte {
		return pool.Authority
	},
}

// hardenedRules normalizes deposits to the share scale, requires live
// reserves for swaps, degrades to scaled arithmetic on large operands, and
// routes fees out of the pool.
var hardenedRules = policyRules{
	bootstrapDeposit: func(reserveA, reserveB uint64) bool {
		return reserveA == 0 && reserveB == 0
	},

	depositShares: func(amountIn, reserve, supply uint64, assetDecimals, shareDecimals uint8) (uint64, tx.Result) {
		normAmount, err := amount.Rescale(amountIn, assetDecimals, shareDecimals)
		if err != nil {
			return 0, TecARITHMETIC_OVERFLOW
		}
		normReserve, err := amount.Rescale(reserve, assetDecimals, shareDecimals)
		if err != nil {
			return 0, TecARITHMETIC_OVERFLOW
		}
		// A reserve that normalizes to zero contributes no issuance, so
		// the min() in the caller settles at zero.
		if normReserve == 0 {
			return 0, tx.TesSUCCESS
		}
		shares, err := amount.MulDiv(normAmount, supply, normReserve)
		if err != nil {
			return 0, TecARITHMETIC_OVERFLOW
		}
		return shares, tx.TesSUCCESS
	},

	requireLiveReserves: true,

	swapOutput: func(reserveIn, reserveOut, netIn uint64) (uint64, tx.Result) {
		denom, err := amount.CheckedAdd(reserveIn, netIn)
		if err != nil {
			return 0, TecARITHMETIC_OVERFLOW
		}
		if amount.WouldOverflowMul(reserveOut, netIn) {
			// Scaled fallback: divide first at fixed precision, then
			// multiply. Trades up to 1e-9 relative rounding for staying
			// inside 64 bits.
			out, err := amount.MulDivScaled(netIn, reserveOut, denom)
			if err != nil {
				return 0, TecARITHMETIC_OVERFLOW
			}
			return out, tx.TesSUCCESS
		}
		out, err := amount.MulDiv(reserveOut, netIn, denom)
		if err != nil {
			return 0, TecARITHMETIC_OVERFLOW
		}
		return out, tx.TesSUCCESS
	},

	feeIntoReserve: false,

	burnAuthority: func(_ *sle.PoolData, submitter [20]byte) [20]byte {
		return submitter
	},
}
