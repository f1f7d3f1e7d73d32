package pool

import (
	"github.com/LeJamon/goAMMd/internal/core/amount"
	"github.com/LeJamon/goAMMd/internal/core/ledger/sle"
	"github.com/LeJamon/goAMMd/internal/core/tx"
)

// QuoteResult describes the outcome a PoolSwap would have against the
// current reserves, without applying anything.
type QuoteResult struct {
	AssetIn        string `json:"asset_in"`
	AssetOut       string `json:"asset_out"`
	AmountIn       uint64 `json:"amount_in"`
	Fee            uint64 `json:"fee"`
	NetIn          uint64 `json:"net_in"`
	AmountOut      uint64 `json:"amount_out"`
	ReserveIn      uint64 `json:"reserve_in"`
	ReserveOut     uint64 `json:"reserve_out"`
	FeeNumerator   uint64 `json:"fee_numerator"`
	FeeDenominator uint64 `json:"fee_denominator"`
}

// Quote prices a swap of amountIn of assetIn for assetOut under the given
// policy. It reads the same state a PoolSwap would and applies the same
// pricing rules, so a quote followed immediately by a swap in the same
// ledger returns exactly the quoted amount.
func Quote(view tx.LedgerView, policy tx.Policy, assetIn, assetOut [32]byte, amountIn uint64) (*QuoteResult, tx.Result) {
	if assetIn == assetOut {
		return nil, tx.TemREDUNDANT_PAIR
	}

	pool, result := loadPool(view, assetIn, assetOut)
	if result != tx.TesSUCCESS {
		return nil, result
	}

	reserveInKey, ok := pool.ReserveKeyFor(assetIn)
	if !ok {
		return nil, tx.TefINTERNAL
	}
	reserveOutKey, ok := pool.ReserveKeyFor(assetOut)
	if !ok {
		return nil, tx.TefINTERNAL
	}

	reserveInAcct, result := loadReserve(view, reserveInKey)
	if result != tx.TesSUCCESS {
		return nil, result
	}
	reserveOutAcct, result := loadReserve(view, reserveOutKey)
	if result != tx.TesSUCCESS {
		return nil, result
	}

	quote, result := Price(policy, reserveInAcct.Balance, reserveOutAcct.Balance,
		amountIn, pool.FeeNumerator, pool.FeeDenominator)
	if result != tx.TesSUCCESS {
		return nil, result
	}
	quote.AssetIn = sle.EncodeMintID(assetIn)
	quote.AssetOut = sle.EncodeMintID(assetOut)
	return quote, tx.TesSUCCESS
}

// Price prices a swap from explicit reserves and fee terms, without ledger
// state. The fee guard matches PoolCreate validation, so any stored pool
// prices cleanly.
func Price(policy tx.Policy, reserveIn, reserveOut, amountIn, feeNumerator, feeDenominator uint64) (*QuoteResult, tx.Result) {
	if amountIn == 0 {
		return nil, TecINVALID_AMOUNT
	}
	if feeDenominator == 0 || feeNumerator > feeDenominator {
		return nil, TecINVALID_AMOUNT
	}

	rules := rulesFor(policy)
	if rules.requireLiveReserves && (reserveIn == 0 || reserveOut == 0) {
		return nil, TecINVALID_AMOUNT
	}

	fee, err := amount.MulDiv(amountIn, feeNumerator, feeDenominator)
	if err != nil {
		return nil, TecARITHMETIC_OVERFLOW
	}
	netIn := amountIn - fee

	out, result := rules.swapOutput(reserveIn, reserveOut, netIn)
	if result != tx.TesSUCCESS {
		return nil, result
	}

	return &QuoteResult{
		AmountIn:       amountIn,
		Fee:            fee,
		NetIn:          netIn,
		AmountOut:      out,
		ReserveIn:      reserveIn,
		ReserveOut:     reserveOut,
		FeeNumerator:   feeNumerator,
		FeeDenominator: feeDenominator,
	}, tx.TesSUCCESS
}
