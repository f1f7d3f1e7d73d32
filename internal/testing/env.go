package testing

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/LeJamon/goAMMd/internal/core/amount"
	"github.com/LeJamon/goAMMd/internal/core/ledger"
	"github.com/LeJamon/goAMMd/internal/core/ledger/genesis"
	"github.com/LeJamon/goAMMd/internal/core/ledger/keylet"
	"github.com/LeJamon/goAMMd/internal/core/ledger/sle"
	"github.com/LeJamon/goAMMd/internal/core/tx"
	"github.com/LeJamon/goAMMd/internal/core/tx/pool"
)

// TestEnv manages a test ledger environment for transaction testing. It
// provides a simplified interface for seeding balances, submitting pool
// transactions through the engine, and closing ledgers.
type TestEnv struct {
	t      *testing.T
	ledger *ledger.Ledger
	clock  *ManualClock

	// policy selects the accounting variant for every submission
	policy tx.Policy

	// feeCollector receives swap fees under the hardened policy when the
	// test did not name a recipient itself
	feeCollector *Account
}

// NewTestEnv creates a test environment over the default genesis, which
// seeds the "base" and "quote" development mints. Transactions run under
// the hardened policy until SetPolicy changes it.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	return NewTestEnvWithConfig(t, genesis.DefaultConfig())
}

// NewTestEnvWithConfig creates a test environment with custom genesis
// configuration.
func NewTestEnvWithConfig(t *testing.T, cfg genesis.Config) *TestEnv {
	t.Helper()

	genesisLedger, err := genesis.Create(cfg)
	if err != nil {
		t.Fatalf("Failed to create genesis ledger: %v", err)
	}

	openLedger, err := ledger.NewOpen(genesisLedger)
	if err != nil {
		t.Fatalf("Failed to create open ledger: %v", err)
	}

	return &TestEnv{
		t:            t,
		ledger:       openLedger,
		clock:        NewManualClock(),
		policy:       tx.PolicyHardened,
		feeCollector: NewAccount("fee-collector"),
	}
}

// SetPolicy switches the accounting policy for subsequent submissions.
func (e *TestEnv) SetPolicy(p tx.Policy) {
	e.policy = p
}

// Policy returns the accounting policy submissions currently run under.
func (e *TestEnv) Policy() tx.Policy {
	return e.policy
}

// FeeCollector returns the account that receives swap fees under the
// hardened policy when a test does not name its own recipient.
func (e *TestEnv) FeeCollector() *Account {
	return e.feeCollector
}

// Fund writes a token balance directly into ledger state, the way genesis
// seeding does. The amount counts as issued supply. The mint must exist.
func (e *TestEnv) Fund(acc *Account, mint *Mint, amt uint64) {
	e.t.Helper()

	mintKey := keylet.Mint(mint.ID)
	raw, err := e.ledger.Read(mintKey)
	if err != nil {
		e.t.Fatalf("Failed to read mint %s: %v", mint.Name, err)
	}
	if raw == nil {
		e.t.Fatalf("Cannot fund %s: mint %s does not exist in the ledger", acc.Name, mint.Name)
	}
	mintData, err := sle.ParseMint(raw)
	if err != nil {
		e.t.Fatalf("Failed to parse mint %s: %v", mint.Name, err)
	}

	newSupply, err := amount.CheckedAdd(mintData.Supply, amt)
	if err != nil {
		e.t.Fatalf("Funding %s overflows the supply of %s", acc.Name, mint.Name)
	}
	mintData.Supply = newSupply

	data, err := sle.SerializeMint(mintData)
	if err != nil {
		e.t.Fatalf("Failed to serialize mint %s: %v", mint.Name, err)
	}
	if err := e.ledger.Update(mintKey, data); err != nil {
		e.t.Fatalf("Failed to update mint %s: %v", mint.Name, err)
	}

	acctKey := keylet.TokenAccount(acc.ID, mint.ID)
	rawAcct, err := e.ledger.Read(acctKey)
	if err != nil {
		e.t.Fatalf("Failed to read token account: %v", err)
	}

	if rawAcct == nil {
		acctData, err := sle.SerializeTokenAccount(&sle.TokenAccountData{
			Owner:   acc.ID,
			Mint:    mint.ID,
			Balance: amt,
		})
		if err != nil {
			e.t.Fatalf("Failed to serialize token account: %v", err)
		}
		if err := e.ledger.Insert(acctKey, acctData); err != nil {
			e.t.Fatalf("Failed to insert token account: %v", err)
		}
		return
	}

	acct, err := sle.ParseTokenAccount(rawAcct)
	if err != nil {
		e.t.Fatalf("Failed to parse token account: %v", err)
	}
	newBalance, err := amount.CheckedAdd(acct.Balance, amt)
	if err != nil {
		e.t.Fatalf("Funding %s overflows its %s balance", acc.Name, mint.Name)
	}
	acct.Balance = newBalance

	acctData, err := sle.SerializeTokenAccount(acct)
	if err != nil {
		e.t.Fatalf("Failed to serialize token account: %v", err)
	}
	if err := e.ledger.Update(acctKey, acctData); err != nil {
		e.t.Fatalf("Failed to update token account: %v", err)
	}
}

// Submit applies a transaction to the current open ledger under the
// environment's policy. Applied transactions are recorded in the ledger
// with their metadata, matching the daemon's submit path.
func (e *TestEnv) Submit(transaction tx.Transaction) TxResult {
	e.t.Helper()

	engine := tx.NewEngine(e.ledger, tx.EngineConfig{
		Policy:         e.policy,
		LedgerSequence: e.ledger.Sequence(),
		Standalone:     true,
	})

	applied := engine.Apply(transaction)

	result := TxResult{
		Result:  applied.Result,
		Code:    applied.Result.String(),
		Success: applied.Applied,
		Message: applied.Message,
	}
	if applied.Metadata != nil {
		result.Events = applied.Metadata.Events
	}

	if !applied.Applied {
		return result
	}

	txHash, err := tx.HashTransaction(transaction)
	if err != nil {
		e.t.Fatalf("Failed to hash transaction: %v", err)
	}
	txJSON, err := tx.CanonicalJSON(transaction)
	if err != nil {
		e.t.Fatalf("Failed to encode transaction: %v", err)
	}
	applied.Metadata.TransactionIndex = uint32(len(e.ledger.Transactions()))
	metaJSON, err := json.Marshal(applied.Metadata)
	if err != nil {
		e.t.Fatalf("Failed to encode metadata: %v", err)
	}
	if err := e.ledger.AddTransaction(txHash, applied.Result.String(), txJSON, metaJSON); err != nil {
		e.t.Fatalf("Failed to record transaction: %v", err)
	}

	return result
}

// Close closes the current ledger, validates it, and opens its successor.
// This is equivalent to "ledger_accept" on the daemon.
func (e *TestEnv) Close() {
	e.t.Helper()

	e.clock.Advance(10 * time.Second)

	if err := e.ledger.Close(e.clock.Now()); err != nil {
		e.t.Fatalf("Failed to close ledger: %v", err)
	}
	if err := e.ledger.SetValidated(); err != nil {
		e.t.Fatalf("Failed to validate ledger: %v", err)
	}

	next, err := ledger.NewOpen(e.ledger)
	if err != nil {
		e.t.Fatalf("Failed to open next ledger: %v", err)
	}
	e.ledger = next
}

// Balance returns an account's balance of a mint. Accounts with no token
// account for the mint read as zero.
func (e *TestEnv) Balance(acc *Account, mint *Mint) uint64 {
	e.t.Helper()
	return e.balanceOf(acc.ID, mint.ID)
}

func (e *TestEnv) balanceOf(owner [20]byte, mintID [32]byte) uint64 {
	e.t.Helper()

	raw, err := e.ledger.Read(keylet.TokenAccount(owner, mintID))
	if err != nil {
		e.t.Fatalf("Failed to read token account: %v", err)
	}
	if raw == nil {
		return 0
	}
	acct, err := sle.ParseTokenAccount(raw)
	if err != nil {
		e.t.Fatalf("Failed to parse token account: %v", err)
	}
	return acct.Balance
}

// Supply returns the issued supply of a mint.
func (e *TestEnv) Supply(mint *Mint) uint64 {
	e.t.Helper()

	raw, err := e.ledger.Read(keylet.Mint(mint.ID))
	if err != nil {
		e.t.Fatalf("Failed to read mint %s: %v", mint.Name, err)
	}
	if raw == nil {
		e.t.Fatalf("Mint %s does not exist in the ledger", mint.Name)
	}
	mintData, err := sle.ParseMint(raw)
	if err != nil {
		e.t.Fatalf("Failed to parse mint %s: %v", mint.Name, err)
	}
	return mintData.Supply
}

// Pool returns the pool entry for an asset pair, or nil when no pool exists.
func (e *TestEnv) Pool(assetA, assetB *Mint) *sle.PoolData {
	e.t.Helper()

	raw, err := e.ledger.Read(keylet.Pool(assetA.ID, assetB.ID))
	if err != nil {
		e.t.Fatalf("Failed to read pool: %v", err)
	}
	if raw == nil {
		return nil
	}
	poolData, err := sle.ParsePool(raw)
	if err != nil {
		e.t.Fatalf("Failed to parse pool: %v", err)
	}
	return poolData
}

// PoolAuthority returns the derived authority account of an existing pool.
func (e *TestEnv) PoolAuthority(assetA, assetB *Mint) *Account {
	e.t.Helper()

	poolData := e.Pool(assetA, assetB)
	if poolData == nil {
		e.t.Fatalf("No pool exists for %s/%s", assetA.Name, assetB.Name)
	}
	return AccountFromID("pool-authority", poolData.Authority)
}

// Reserves returns the pool's reserve balances in the order the assets are
// given, regardless of the pool's canonical side order.
func (e *TestEnv) Reserves(assetA, assetB *Mint) (uint64, uint64) {
	e.t.Helper()

	poolData := e.Pool(assetA, assetB)
	if poolData == nil {
		e.t.Fatalf("No pool exists for %s/%s", assetA.Name, assetB.Name)
	}

	reserveA := e.balanceOf(poolData.Authority, poolData.AssetA)
	reserveB := e.balanceOf(poolData.Authority, poolData.AssetB)
	if assetA.ID != poolData.AssetA {
		reserveA, reserveB = reserveB, reserveA
	}
	return reserveA, reserveB
}

// CreatePool submits a PoolCreate for the pair with the given fee terms.
func (e *TestEnv) CreatePool(creator *Account, assetA, assetB, shares *Mint, feeNumerator, feeDenominator uint64) TxResult {
	e.t.Helper()
	return e.Submit(pool.NewPoolCreate(creator.Address, assetA.Address, assetB.Address, shares.Address, feeNumerator, feeDenominator))
}

// Deposit submits a PoolDeposit of both legs with a share floor.
func (e *TestEnv) Deposit(provider *Account, assetA, assetB *Mint, amountA, amountB, minShares uint64) TxResult {
	e.t.Helper()
	return e.Submit(pool.NewPoolDeposit(provider.Address, assetA.Address, assetB.Address, amountA, amountB, minShares))
}

// Swap submits a PoolSwap. Under the hardened policy the fee recipient is
// filled in from the environment's fee collector; tests that care about the
// recipient build the transaction themselves.
func (e *TestEnv) Swap(trader *Account, assetIn, assetOut *Mint, amountIn, minAmountOut uint64) TxResult {
	e.t.Helper()

	swap := pool.NewPoolSwap(trader.Address, assetIn.Address, assetOut.Address, amountIn, minAmountOut)
	if e.policy == tx.PolicyHardened {
		swap.FeeAccount = e.feeCollector.Address
	}
	return e.Submit(swap)
}

// Withdraw submits a PoolWithdraw redeeming shares with per-asset floors.
func (e *TestEnv) Withdraw(provider *Account, assetA, assetB *Mint, shareAmount, minAmountA, minAmountB uint64) TxResult {
	e.t.Helper()
	return e.Submit(pool.NewPoolWithdraw(provider.Address, assetA.Address, assetB.Address, shareAmount, minAmountA, minAmountB))
}

// Now returns the current time on the test clock.
func (e *TestEnv) Now() time.Time {
	return e.clock.Now()
}

// AdvanceTime advances the test clock by the specified duration.
func (e *TestEnv) AdvanceTime(d time.Duration) {
	e.clock.Advance(d)
}

// SetTime sets the test clock to a specific time.
func (e *TestEnv) SetTime(t time.Time) {
	e.clock.Set(t)
}

// Ledger returns the current open ledger.
func (e *TestEnv) Ledger() *ledger.Ledger {
	return e.ledger
}

// LedgerSeq returns the current ledger sequence number.
func (e *TestEnv) LedgerSeq() uint32 {
	return e.ledger.Sequence()
}
