package pool

import (
	"errors"

	"github.com/LeJamon/goAMMd/internal/core/ledger/keylet"
	"github.com/LeJamon/goAMMd/internal/core/ledger/sle"
	"github.com/LeJamon/goAMMd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypePoolCreate, func() tx.Transaction {
		return &PoolCreate{BaseTx: *tx.NewBaseTx(tx.TypePoolCreate, "")}
	})
}

// PoolCreate initializes a constant-product pool over two token mints. The
// pool's custody accounts and share mint are created under an authority
// derived from the pool key, so no caller ever holds them.
type PoolCreate struct {
	tx.BaseTx

	// AssetA and AssetB identify the tradable mints (required)
	AssetA string `json:"AssetA" tx:"AssetA"`
	AssetB string `json:"AssetB" tx:"AssetB"`

	// ShareToken is the mint ID to create for pool shares (required)
	ShareToken string `json:"ShareToken" tx:"ShareToken"`

	// FeeNumerator and FeeDenominator fix the swap fee for the pool's
	// lifetime
	FeeNumerator   uint64 `json:"FeeNumerator" tx:"FeeNumerator"`
	FeeDenominator uint64 `json:"FeeDenominator" tx:"FeeDenominator"`
}

// NewPoolCreate creates a new PoolCreate transaction
func NewPoolCreate(account, assetA, assetB, shareToken string, feeNumerator, feeDenominator uint64) *PoolCreate {
	return &PoolCreate{
		BaseTx:         *tx.NewBaseTx(tx.TypePoolCreate, account),
		AssetA:         assetA,
		AssetB:         assetB,
		ShareToken:     shareToken,
		FeeNumerator:   feeNumerator,
		FeeDenominator: feeDenominator,
	}
}

// TxType returns the transaction type
func (p *PoolCreate) TxType() tx.Type {
	return tx.TypePoolCreate
}

// Validate validates the PoolCreate transaction
func (p *PoolCreate) Validate() error {
	if err := p.BaseTx.Validate(); err != nil {
		return err
	}

	if p.GetFlags()&tfPoolCreateMask != 0 {
		return errors.New("temINVALID_FLAG: invalid flags for PoolCreate")
	}

	assetA, err := sle.DecodeMintID(p.AssetA)
	if err != nil {
		return errors.New("temMALFORMED: AssetA is not a valid mint ID")
	}
	assetB, err := sle.DecodeMintID(p.AssetB)
	if err != nil {
		return errors.New("temMALFORMED: AssetB is not a valid mint ID")
	}
	shareToken, err := sle.DecodeMintID(p.ShareToken)
	if err != nil {
		return errors.New("temMALFORMED: ShareToken is not a valid mint ID")
	}

	if assetA == assetB {
		return errors.New("temREDUNDANT_PAIR: pool assets must differ")
	}
	if shareToken == assetA || shareToken == assetB {
		return errors.New("temMALFORMED: ShareToken must differ from pool assets")
	}

	if p.FeeDenominator == 0 {
		return errors.New("temBAD_FEE: fee denominator is zero")
	}
	if p.FeeNumerator > p.FeeDenominator {
		return errors.New("temBAD_FEE: fee numerator exceeds denominator")
	}

	return nil
}

// Flatten returns a flat map of all transaction fields
func (p *PoolCreate) Flatten() (map[string]any, error) {
	return tx.ReflectFlatten(p)
}

// Apply applies the PoolCreate transaction to ledger state.
func (p *PoolCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	assetA, _ := sle.DecodeMintID(p.AssetA)
	assetB, _ := sle.DecodeMintID(p.AssetB)
	shareToken, _ := sle.DecodeMintID(p.ShareToken)

	// =====================================================================
	// PRECLAIM CHECKS
	// =====================================================================

	// Both tradable mints must exist
	if exists, _ := ctx.View.Exists(keylet.Mint(assetA)); !exists {
		return TerNO_MINT
	}
	if exists, _ := ctx.View.Exists(keylet.Mint(assetB)); !exists {
		return TerNO_MINT
	}

	// One pool per asset pair
	poolKey := keylet.Pool(assetA, assetB)
	if exists, _ := ctx.View.Exists(poolKey); exists {
		return TecDUPLICATE
	}

	// The share mint must be fresh
	if exists, _ := ctx.View.Exists(keylet.Mint(shareToken)); exists {
		return TecDUPLICATE
	}

	// =====================================================================
	// APPLY
	// =====================================================================

	// Derive the pool's signing authority from the pool key, recording the
	// bump so the derivation can be replayed later.
	authority, bump := keylet.FindPoolAuthority(poolKey.Key)

	// Canonical ordering: the low mint of the pair is side A
	low, high := keylet.OrderedPair(assetA, assetB)

	// Custody accounts for both reserves, owned by the derived authority
	for _, mintID := range [][32]byte{low, high} {
		reserve := &sle.TokenAccountData{Owner: authority, Mint: mintID}
		data, err := sle.SerializeTokenAccount(reserve)
		if err != nil {
			return tx.TefINTERNAL
		}
		if err := ctx.View.Insert(keylet.TokenAccount(authority, mintID), data); err != nil {
			return tx.TefINTERNAL
		}
	}

	// The share mint is held by the pool authority
	shareMint := &sle.MintData{
		ID:        shareToken,
		Authority: authority,
		Supply:    0,
		Decimals:  ShareDecimals,
	}
	shareData, err := sle.SerializeMint(shareMint)
	if err != nil {
		return tx.TefINTERNAL
	}
	if err := ctx.View.Insert(keylet.Mint(shareToken), shareData); err != nil {
		return tx.TefINTERNAL
	}

	pool := &sle.PoolData{
		AssetA:         low,
		AssetB:         high,
		ReserveA:       keylet.TokenAccount(authority, low).Key,
		ReserveB:       keylet.TokenAccount(authority, high).Key,
		ShareMint:      shareToken,
		FeeNumerator:   p.FeeNumerator,
		FeeDenominator: p.FeeDenominator,
		Authority:      authority,
		Bump:           bump,
	}
	poolData, err := sle.SerializePool(pool)
	if err != nil {
		return tx.TefINTERNAL
	}
	if err := ctx.View.Insert(poolKey, poolData); err != nil {
		return tx.TefINTERNAL
	}

	ctx.EmitEvent(PoolCreatedEvent{
		AssetA:         sle.EncodeMintID(pool.AssetA),
		AssetB:         sle.EncodeMintID(pool.AssetB),
		ShareToken:     sle.EncodeMintID(shareToken),
		Authority:      sle.EncodeAccountID(authority),
		FeeRate:        pool.FeeRatio(),
		FeeNumerator:   p.FeeNumerator,
		FeeDenominator: p.FeeDenominator,
	})

	return tx.TesSUCCESS
}
