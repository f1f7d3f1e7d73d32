package pool

import (
	"errors"

	"github.com/LeJamon/goAMMd/internal/core/amount"
	"github.com/LeJamon/goAMMd/internal/core/ledger/sle"
	"github.com/LeJamon/goAMMd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypePoolWithdraw, func() tx.Transaction {
		return &PoolWithdraw{BaseTx: *tx.NewBaseTx(tx.TypePoolWithdraw, "")}
	})
}

// PoolWithdraw redeems share tokens for a proportional cut of both reserves.
type PoolWithdraw struct {
	tx.BaseTx

	// AssetA and AssetB identify the pool's pair (required)
	AssetA string `json:"AssetA" tx:"AssetA"`
	AssetB string `json:"AssetB" tx:"AssetB"`

	// ShareAmount is the number of share tokens to redeem (required,
	// positive)
	ShareAmount uint64 `json:"ShareAmount" tx:"ShareAmount"`

	// MinAmountA and MinAmountB are per-asset slippage floors, keyed to
	// AssetA and AssetB as given in this transaction
	MinAmountA uint64 `json:"MinAmountA,omitempty" tx:"MinAmountA,omitempty"`
	MinAmountB uint64 `json:"MinAmountB,omitempty" tx:"MinAmountB,omitempty"`
}

// NewPoolWithdraw creates a new PoolWithdraw transaction
func NewPoolWithdraw(account, assetA, assetB string, shareAmount, minAmountA, minAmountB uint64) *PoolWithdraw {
	return &PoolWithdraw{
		BaseTx:      *tx.NewBaseTx(tx.TypePoolWithdraw, account),
		AssetA:      assetA,
		AssetB:      assetB,
		ShareAmount: shareAmount,
		MinAmountA:  minAmountA,
		MinAmountB:  minAmountB,
	}
}

// TxType returns the transaction type
func (p *PoolWithdraw) TxType() tx.Type {
	return tx.TypePoolWithdraw
}

// Validate validates the PoolWithdraw transaction
func (p *PoolWithdraw) Validate() error {
	if err := p.BaseTx.Validate(); err != nil {
		return err
	}

	if p.GetFlags()&tfPoolWithdrawMask != 0 {
		return errors.New("temINVALID_FLAG: invalid flags for PoolWithdraw")
	}

	assetA, err := sle.DecodeMintID(p.AssetA)
	if err != nil {
		return errors.New("temMALFORMED: AssetA is not a valid mint ID")
	}
	assetB, err := sle.DecodeMintID(p.AssetB)
	if err != nil {
		return errors.New("temMALFORMED: AssetB is not a valid mint ID")
	}
	if assetA == assetB {
		return errors.New("temREDUNDANT_PAIR: pool assets must differ")
	}

	if p.ShareAmount == 0 {
		return errors.New("temINVALID_AMOUNT: ShareAmount must be positive")
	}

	return nil
}

// Flatten returns a flat map of all transaction fields
func (p *PoolWithdraw) Flatten() (map[string]any, error) {
	return tx.ReflectFlatten(p)
}

// Apply applies the PoolWithdraw transaction to ledger state.
func (p *PoolWithdraw) Apply(ctx *tx.ApplyContext) tx.Result {
	withdrawer := ctx.AccountID
	rules := rulesFor(ctx.Policy())

	assetA, _ := sle.DecodeMintID(p.AssetA)
	assetB, _ := sle.DecodeMintID(p.AssetB)

	// =====================================================================
	// PRECLAIM CHECKS
	// =====================================================================

	pool, result := loadPool(ctx.View, assetA, assetB)
	if result != tx.TesSUCCESS {
		return result
	}

	// Map the caller's floors onto the pool's canonical side order
	minAmountA, minAmountB := p.MinAmountA, p.MinAmountB
	if assetA != pool.AssetA {
		minAmountA, minAmountB = minAmountB, minAmountA
	}

	shareMint, result := loadMint(ctx.View, pool.ShareMint)
	if result != tx.TesSUCCESS {
		return result
	}
	if shareMint.Supply == 0 {
		return TecINVALID_AMOUNT
	}

	if tokenBalance(ctx.View, withdrawer, pool.ShareMint) < p.ShareAmount {
		return TecUNFUNDED
	}

	// Single snapshot of both reserves
	reserveAAcct, result := loadReserve(ctx.View, pool.ReserveA)
	if result != tx.TesSUCCESS {
		return result
	}
	reserveBAcct, result := loadReserve(ctx.View, pool.ReserveB)
	if result != tx.TesSUCCESS {
		return result
	}
	reserveA := reserveAAcct.Balance
	reserveB := reserveBAcct.Balance

	// =====================================================================
	// APPLY
	// =====================================================================

	amountA, err := amount.MulDiv(p.ShareAmount, reserveA, shareMint.Supply)
	if err != nil {
		return TecARITHMETIC_OVERFLOW
	}
	amountB, err := amount.MulDiv(p.ShareAmount, reserveB, shareMint.Supply)
	if err != nil {
		return TecARITHMETIC_OVERFLOW
	}

	// Both floors must hold before anything moves
	if amountA < minAmountA {
		return TecSLIPPAGE_EXCEEDED
	}
	if amountB < minAmountB {
		return TecSLIPPAGE_EXCEEDED
	}

	if result := transferTokens(ctx.View, pool.AssetA, pool.Authority, withdrawer, amountA); result != tx.TesSUCCESS {
		return result
	}
	if result := transferTokens(ctx.View, pool.AssetB, pool.Authority, withdrawer, amountB); result != tx.TesSUCCESS {
		return result
	}

	burnAs := rules.burnAuthority(pool, withdrawer)
	if result := burnTokens(ctx.View, pool.ShareMint, withdrawer, p.ShareAmount, burnAs); result != tx.TesSUCCESS {
		return result
	}

	ctx.EmitEvent(LiquidityRemovedEvent{
		AssetA:       sle.EncodeMintID(pool.AssetA),
		AssetB:       sle.EncodeMintID(pool.AssetB),
		Provider:     sle.EncodeAccountID(withdrawer),
		AmountA:      amountA,
		AmountB:      amountB,
		SharesBurned: p.ShareAmount,
		ReserveA:     tokenBalance(ctx.View, pool.Authority, pool.AssetA),
		ReserveB:     tokenBalance(ctx.View, pool.Authority, pool.AssetB),
	})

	return tx.TesSUCCESS
}
