package pool

import (
	"errors"

	"github.com/LeJamon/goAMMd/internal/core/amount"
	"github.com/LeJamon/goAMMd/internal/core/ledger/sle"
	"github.com/LeJamon/goAMMd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypePoolSwap, func() tx.Transaction {
		return &PoolSwap{BaseTx: *tx.NewBaseTx(tx.TypePoolSwap, "")}
	})
}

// PoolSwap trades one pool asset for the other at the constant-product
// price. The fee comes off the input before pricing; where it ends up
// depends on the engine policy.
type PoolSwap struct {
	tx.BaseTx

	// AssetIn is the mint paid in, AssetOut the mint received (required)
	AssetIn  string `json:"AssetIn" tx:"AssetIn"`
	AssetOut string `json:"AssetOut" tx:"AssetOut"`

	// AmountIn is the gross input amount (required, positive)
	AmountIn uint64 `json:"AmountIn" tx:"AmountIn"`

	// MinAmountOut is the output slippage floor
	MinAmountOut uint64 `json:"MinAmountOut,omitempty" tx:"MinAmountOut,omitempty"`

	// FeeAccount receives the fee under the hardened policy. Required
	// there; ignored under the naive policy.
	FeeAccount string `json:"FeeAccount,omitempty" tx:"FeeAccount,omitempty"`
}

// NewPoolSwap creates a new PoolSwap transaction
func NewPoolSwap(account, assetIn, assetOut string, amountIn, minAmountOut uint64) *PoolSwap {
	return &PoolSwap{
		BaseTx:       *tx.NewBaseTx(tx.TypePoolSwap, account),
		AssetIn:      assetIn,
		AssetOut:     assetOut,
		AmountIn:     amountIn,
		MinAmountOut: minAmountOut,
	}
}

// TxType returns the transaction type
func (s *PoolSwap) TxType() tx.Type {
	return tx.TypePoolSwap
}

// Validate validates the PoolSwap transaction
func (s *PoolSwap) Validate() error {
	if err := s.BaseTx.Validate(); err != nil {
		return err
	}

	if s.GetFlags()&tfPoolSwapMask != 0 {
		return errors.New("temINVALID_FLAG: invalid flags for PoolSwap")
	}

	assetIn, err := sle.DecodeMintID(s.AssetIn)
	if err != nil {
		return errors.New("temMALFORMED: AssetIn is not a valid mint ID")
	}
	assetOut, err := sle.DecodeMintID(s.AssetOut)
	if err != nil {
		return errors.New("temMALFORMED: AssetOut is not a valid mint ID")
	}
	if assetIn == assetOut {
		return errors.New("temREDUNDANT_PAIR: swap assets must differ")
	}

	if s.AmountIn == 0 {
		return errors.New("temINVALID_AMOUNT: AmountIn must be positive")
	}

	if s.FeeAccount != "" {
		if _, err := sle.DecodeAccountID(s.FeeAccount); err != nil {
			return errors.New("temMALFORMED: FeeAccount is not a valid account ID")
		}
	}

	return nil
}

// Flatten returns a flat map of all transaction fields
func (s *PoolSwap) Flatten() (map[string]any, error) {
	return tx.ReflectFlatten(s)
}

// Apply applies the PoolSwap transaction to ledger state.
func (s *PoolSwap) Apply(ctx *tx.ApplyContext) tx.Result {
	trader := ctx.AccountID
	rules := rulesFor(ctx.Policy())

	assetIn, _ := sle.DecodeMintID(s.AssetIn)
	assetOut, _ := sle.DecodeMintID(s.AssetOut)

	// =====================================================================
	// PRECLAIM CHECKS
	// =====================================================================

	pool, result := loadPool(ctx.View, assetIn, assetOut)
	if result != tx.TesSUCCESS {
		return result
	}

	reserveInKey, ok := pool.ReserveKeyFor(assetIn)
	if !ok {
		return tx.TefINTERNAL
	}
	reserveOutKey, ok := pool.ReserveKeyFor(assetOut)
	if !ok {
		return tx.TefINTERNAL
	}

	// The hardened policy pays the fee to an explicit recipient
	var feeRecipient [20]byte
	if !rules.feeIntoReserve {
		if s.FeeAccount == "" {
			return tx.TemMALFORMED
		}
		feeRecipient, _ = sle.DecodeAccountID(s.FeeAccount)
	}

	// Single snapshot of both reserves
	reserveInAcct, result := loadReserve(ctx.View, reserveInKey)
	if result != tx.TesSUCCESS {
		return result
	}
	reserveOutAcct, result := loadReserve(ctx.View, reserveOutKey)
	if result != tx.TesSUCCESS {
		return result
	}
	reserveIn := reserveInAcct.Balance
	reserveOut := reserveOutAcct.Balance

	if rules.requireLiveReserves && (reserveIn == 0 || reserveOut == 0) {
		return TecINVALID_AMOUNT
	}

	if tokenBalance(ctx.View, trader, assetIn) < s.AmountIn {
		return TecUNFUNDED
	}

	// =====================================================================
	// APPLY
	// =====================================================================

	fee, err := amount.MulDiv(s.AmountIn, pool.FeeNumerator, pool.FeeDenominator)
	if err != nil {
		return TecARITHMETIC_OVERFLOW
	}
	// The numerator never exceeds the denominator, so fee <= AmountIn
	netIn := s.AmountIn - fee

	out, result := rules.swapOutput(reserveIn, reserveOut, netIn)
	if result != tx.TesSUCCESS {
		return result
	}

	if out < s.MinAmountOut {
		return TecSLIPPAGE_EXCEEDED
	}

	if rules.feeIntoReserve {
		// The whole input, fee included, grows the reserve
		if result := transferTokens(ctx.View, assetIn, trader, pool.Authority, s.AmountIn); result != tx.TesSUCCESS {
			return result
		}
	} else {
		// Fee is an explicit side payment; only the net reaches the pool
		if result := transferTokens(ctx.View, assetIn, trader, feeRecipient, fee); result != tx.TesSUCCESS {
			return result
		}
		if result := transferTokens(ctx.View, assetIn, trader, pool.Authority, netIn); result != tx.TesSUCCESS {
			return result
		}
	}

	if result := transferTokens(ctx.View, assetOut, pool.Authority, trader, out); result != tx.TesSUCCESS {
		return result
	}

	ctx.EmitEvent(SwapExecutedEvent{
		AssetIn:   sle.EncodeMintID(assetIn),
		AssetOut:  sle.EncodeMintID(assetOut),
		Trader:    sle.EncodeAccountID(trader),
		AmountIn:  s.AmountIn,
		AmountOut: out,
		Fee:       fee,
	})

	return tx.TesSUCCESS
}
