package pool

import (
	"errors"

	"github.com/LeJamon/goAMMd/internal/core/ledger/sle"
	"github.com/LeJamon/goAMMd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypePoolDeposit, func() tx.Transaction {
		return &PoolDeposit{BaseTx: *tx.NewBaseTx(tx.TypePoolDeposit, "")}
	})
}

// PoolDeposit adds liquidity to a pool in exchange for share tokens. The
// issue is priced at the smaller of the two per-side ratios, so imbalanced
// deposits settle at the worse rate.
type PoolDeposit struct {
	tx.BaseTx

	// AssetA and AssetB identify the pool's pair (required)
	AssetA string `json:"AssetA" tx:"AssetA"`
	AssetB string `json:"AssetB" tx:"AssetB"`

	// AmountA and AmountB are the deposits in each asset's native scale.
	// AmountA belongs to AssetA as given in this transaction.
	AmountA uint64 `json:"AmountA" tx:"AmountA"`
	AmountB uint64 `json:"AmountB" tx:"AmountB"`

	// MinShares is the issuance slippage floor
	MinShares uint64 `json:"MinShares,omitempty" tx:"MinShares,omitempty"`
}

// NewPoolDeposit creates a new PoolDeposit transaction
func NewPoolDeposit(account, assetA, assetB string, amountA, amountB, minShares uint64) *PoolDeposit {
	return &PoolDeposit{
		BaseTx:    *tx.NewBaseTx(tx.TypePoolDeposit, account),
		AssetA:    assetA,
		AssetB:    assetB,
		AmountA:   amountA,
		AmountB:   amountB,
		MinShares: minShares,
	}
}

// TxType returns the transaction type
func (p *PoolDeposit) TxType() tx.Type {
	return tx.TypePoolDeposit
}

// Validate validates the PoolDeposit transaction
func (p *PoolDeposit) Validate() error {
	if err := p.BaseTx.Validate(); err != nil {
		return err
	}

	if p.GetFlags()&tfPoolDepositMask != 0 {
		return errors.New("temINVALID_FLAG: invalid flags for PoolDeposit")
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

	return nil
}

// Flatten returns a flat map of all transaction fields
func (p *PoolDeposit) Flatten() (map[string]any, error) {
	return tx.ReflectFlatten(p)
}

// Apply applies the PoolDeposit transaction to ledger state.
func (p *PoolDeposit) Apply(ctx *tx.ApplyContext) tx.Result {
	depositor := ctx.AccountID
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

	// Map the caller's amounts onto the pool's canonical side order
	amountA, amountB := p.AmountA, p.AmountB
	if assetA != pool.AssetA {
		amountA, amountB = amountB, amountA
	}

	shareMint, result := loadMint(ctx.View, pool.ShareMint)
	if result != tx.TesSUCCESS {
		return result
	}
	mintA, result := loadMint(ctx.View, pool.AssetA)
	if result != tx.TesSUCCESS {
		return result
	}
	mintB, result := loadMint(ctx.View, pool.AssetB)
	if result != tx.TesSUCCESS {
		return result
	}

	// Single snapshot of both reserves and the share supply
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

	// The depositor must hold both legs
	if tokenBalance(ctx.View, depositor, pool.AssetA) < amountA {
		return TecUNFUNDED
	}
	if tokenBalance(ctx.View, depositor, pool.AssetB) < amountB {
		return TecUNFUNDED
	}

	// =====================================================================
	// APPLY
	// =====================================================================

	var sharesToMint uint64
	if rules.bootstrapDeposit(reserveA, reserveB) {
		sharesToMint = BootstrapShares
	} else {
		sharesA, res := rules.depositShares(amountA, reserveA, shareMint.Supply, mintA.Decimals, shareMint.Decimals)
		if res != tx.TesSUCCESS {
			return res
		}
		sharesB, res := rules.depositShares(amountB, reserveB, shareMint.Supply, mintB.Decimals, shareMint.Decimals)
		if res != tx.TesSUCCESS {
			return res
		}
		sharesToMint = sharesA
		if sharesB < sharesToMint {
			sharesToMint = sharesB
		}
	}

	// Slippage floor is checked before anything moves
	if sharesToMint < p.MinShares {
		return TecSLIPPAGE_EXCEEDED
	}

	if result := transferTokens(ctx.View, pool.AssetA, depositor, pool.Authority, amountA); result != tx.TesSUCCESS {
		return result
	}
	if result := transferTokens(ctx.View, pool.AssetB, depositor, pool.Authority, amountB); result != tx.TesSUCCESS {
		return result
	}

	if result := mintTokens(ctx.View, pool.ShareMint, depositor, sharesToMint, pool.Authority); result != tx.TesSUCCESS {
		return result
	}

	ctx.EmitEvent(LiquidityAddedEvent{
		AssetA:       sle.EncodeMintID(pool.AssetA),
		AssetB:       sle.EncodeMintID(pool.AssetB),
		Provider:     sle.EncodeAccountID(depositor),
		AmountA:      amountA,
		AmountB:      amountB,
		SharesMinted: sharesToMint,
		ReserveA:     tokenBalance(ctx.View, pool.Authority, pool.AssetA),
		ReserveB:     tokenBalance(ctx.View, pool.Authority, pool.AssetB),
	})

	return tx.TesSUCCESS
}
