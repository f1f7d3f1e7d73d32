// Package pool provides test builders for pool transactions.
package pool

import (
	corepool "github.com/LeJamon/goAMMd/internal/core/tx/pool"
	jtx "github.com/LeJamon/goAMMd/internal/testing"
)

// PoolCreateBuilder provides a fluent interface for building PoolCreate transactions.
type PoolCreateBuilder struct {
	account        *jtx.Account
	assetA         *jtx.Mint
	assetB         *jtx.Mint
	shares         *jtx.Mint
	feeNumerator   uint64
	feeDenominator uint64
	flags          uint32
}

// PoolCreate creates a new PoolCreateBuilder with the standard 3/1000 fee.
func PoolCreate(account *jtx.Account, assetA, assetB, shares *jtx.Mint) *PoolCreateBuilder {
	return &PoolCreateBuilder{
		account:        account,
		assetA:         assetA,
		assetB:         assetB,
		shares:         shares,
		feeNumerator:   3,
		feeDenominator: 1000,
	}
}

// Fee sets the pool's swap fee as an integer numerator/denominator pair.
func (b *PoolCreateBuilder) Fee(numerator, denominator uint64) *PoolCreateBuilder {
	b.feeNumerator = numerator
	b.feeDenominator = denominator
	return b
}

// Flags sets the transaction flags.
func (b *PoolCreateBuilder) Flags(flags uint32) *PoolCreateBuilder {
	b.flags = flags
	return b
}

// Build creates the PoolCreate transaction.
func (b *PoolCreateBuilder) Build() *corepool.PoolCreate {
	poolTx := corepool.NewPoolCreate(b.account.Address, b.assetA.Address, b.assetB.Address, b.shares.Address, b.feeNumerator, b.feeDenominator)
	if b.flags != 0 {
		poolTx.SetFlags(b.flags)
	}
	return poolTx
}

// PoolDepositBuilder provides a fluent interface for building PoolDeposit transactions.
type PoolDepositBuilder struct {
	account   *jtx.Account
	assetA    *jtx.Mint
	assetB    *jtx.Mint
	amountA   uint64
	amountB   uint64
	minShares uint64
	flags     uint32
}

// PoolDeposit creates a new PoolDepositBuilder.
func PoolDeposit(account *jtx.Account, assetA, assetB *jtx.Mint, amountA, amountB uint64) *PoolDepositBuilder {
	return &PoolDepositBuilder{
		account: account,
		assetA:  assetA,
		assetB:  assetB,
		amountA: amountA,
		amountB: amountB,
	}
}

// MinShares sets the issuance slippage floor.
func (b *PoolDepositBuilder) MinShares(min uint64) *PoolDepositBuilder {
	b.minShares = min
	return b
}

// Flags sets the transaction flags.
func (b *PoolDepositBuilder) Flags(flags uint32) *PoolDepositBuilder {
	b.flags = flags
	return b
}

// Build creates the PoolDeposit transaction.
func (b *PoolDepositBuilder) Build() *corepool.PoolDeposit {
	poolTx := corepool.NewPoolDeposit(b.account.Address, b.assetA.Address, b.assetB.Address, b.amountA, b.amountB, b.minShares)
	if b.flags != 0 {
		poolTx.SetFlags(b.flags)
	}
	return poolTx
}

// PoolSwapBuilder provides a fluent interface for building PoolSwap transactions.
type PoolSwapBuilder struct {
	account      *jtx.Account
	assetIn      *jtx.Mint
	assetOut     *jtx.Mint
	amountIn     uint64
	minAmountOut uint64
	feeAccount   string
	flags        uint32
}

// PoolSwap creates a new PoolSwapBuilder. The fee recipient is left unset;
// hardened-policy tests set one with FeeTo.
func PoolSwap(account *jtx.Account, assetIn, assetOut *jtx.Mint, amountIn uint64) *PoolSwapBuilder {
	return &PoolSwapBuilder{
		account:  account,
		assetIn:  assetIn,
		assetOut: assetOut,
		amountIn: amountIn,
	}
}

// MinOut sets the output slippage floor.
func (b *PoolSwapBuilder) MinOut(min uint64) *PoolSwapBuilder {
	b.minAmountOut = min
	return b
}

// FeeTo sets the fee recipient account.
func (b *PoolSwapBuilder) FeeTo(acc *jtx.Account) *PoolSwapBuilder {
	b.feeAccount = acc.Address
	return b
}

// Flags sets the transaction flags.
func (b *PoolSwapBuilder) Flags(flags uint32) *PoolSwapBuilder {
	b.flags = flags
	return b
}

// Build creates the PoolSwap transaction.
func (b *PoolSwapBuilder) Build() *corepool.PoolSwap {
	poolTx := corepool.NewPoolSwap(b.account.Address, b.assetIn.Address, b.assetOut.Address, b.amountIn, b.minAmountOut)
	poolTx.FeeAccount = b.feeAccount
	if b.flags != 0 {
		poolTx.SetFlags(b.flags)
	}
	return poolTx
}

// PoolWithdrawBuilder provides a fluent interface for building PoolWithdraw transactions.
type PoolWithdrawBuilder struct {
	account     *jtx.Account
	assetA      *jtx.Mint
	assetB      *jtx.Mint
	shareAmount uint64
	minAmountA  uint64
	minAmountB  uint64
	flags       uint32
}

// PoolWithdraw creates a new PoolWithdrawBuilder.
func PoolWithdraw(account *jtx.Account, assetA, assetB *jtx.Mint, shareAmount uint64) *PoolWithdrawBuilder {
	return &PoolWithdrawBuilder{
		account:     account,
		assetA:      assetA,
		assetB:      assetB,
		shareAmount: shareAmount,
	}
}

// MinAmounts sets the per-asset slippage floors, keyed to the builder's
// asset order.
func (b *PoolWithdrawBuilder) MinAmounts(minA, minB uint64) *PoolWithdrawBuilder {
	b.minAmountA = minA
	b.minAmountB = minB
	return b
}

// Flags sets the transaction flags.
func (b *PoolWithdrawBuilder) Flags(flags uint32) *PoolWithdrawBuilder {
	b.flags = flags
	return b
}

// Build creates the PoolWithdraw transaction.
func (b *PoolWithdrawBuilder) Build() *corepool.PoolWithdraw {
	poolTx := corepool.NewPoolWithdraw(b.account.Address, b.assetA.Address, b.assetB.Address, b.shareAmount, b.minAmountA, b.minAmountB)
	if b.flags != 0 {
		poolTx.SetFlags(b.flags)
	}
	return poolTx
}
