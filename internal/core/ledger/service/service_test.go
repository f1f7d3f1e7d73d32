package service

import (
	"context"
	"encoding/hex"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/LeJamon/goAMMd/internal/core/ledger/genesis"
	"github.com/LeJamon/goAMMd/internal/core/tx"
	"github.com/LeJamon/goAMMd/internal/core/tx/pool"
	"github.com/LeJamon/goAMMd/internal/storage/database"
	_ "github.com/LeJamon/goAMMd/internal/storage/database/pebble"
	"github.com/LeJamon/goAMMd/internal/storage/history"
	_ "github.com/LeJamon/goAMMd/internal/storage/history/sqlite"
	"github.com/LeJamon/goAMMd/internal/storage/ledgerstore"
)

var (
	baseMint  = genesis.DevMintID("base")
	quoteMint = genesis.DevMintID("quote")

	provider   = strings.Repeat("AB", 20)
	trader     = strings.Repeat("CD", 20)
	feeAccount = strings.Repeat("EF", 20)

	shareToken = strings.Repeat("5A", 32)
)

// seededGenesis funds the provider with both legs and the trader with the
// input leg, at matching decimals so the numbers stay easy to follow.
func seededGenesis() genesis.Config {
	return genesis.Config{
		Mints: []genesis.MintSeed{
			{ID: baseMint, Decimals: 6},
			{ID: quoteMint, Decimals: 6},
		},
		Accounts: []genesis.BalanceSeed{
			{Account: provider, Mint: baseMint, Balance: 2_000_000},
			{Account: provider, Mint: quoteMint, Balance: 2_000_000},
			{Account: trader, Mint: baseMint, Balance: 100_000},
		},
	}
}

func newTestService(t *testing.T, mutate func(*Config)) *Service {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Genesis = seededGenesis()
	if mutate != nil {
		mutate(&cfg)
	}

	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return svc
}

func mustSubmit(t *testing.T, svc *Service, transaction tx.Transaction) *SubmitResult {
	t.Helper()
	result, err := svc.SubmitTransaction(transaction)
	if err != nil {
		t.Fatalf("SubmitTransaction: %v", err)
	}
	if !result.Applied {
		t.Fatalf("transaction not applied: %s (%s)", result.Result, result.Message)
	}
	return result
}

func mustAccept(t *testing.T, svc *Service) uint32 {
	t.Helper()
	seq, err := svc.AcceptLedger(context.Background())
	if err != nil {
		t.Fatalf("AcceptLedger: %v", err)
	}
	return seq
}

func TestStartCreatesGenesisAndOpen(t *testing.T) {
	svc := newTestService(t, nil)

	validated := svc.GetValidatedLedger()
	if validated == nil || validated.Sequence() != 1 {
		t.Fatalf("validated ledger should be genesis, got %v", validated)
	}
	if !validated.IsValidated() {
		t.Error("genesis ledger should be validated")
	}

	open := svc.GetOpenLedger()
	if open == nil || open.Sequence() != 2 {
		t.Fatalf("open ledger should be seq 2, got %v", open)
	}
	if open.ParentHash() != validated.Hash() {
		t.Error("open ledger parent hash should match genesis hash")
	}
}

func TestAcceptLedgerAdvancesChain(t *testing.T) {
	svc := newTestService(t, nil)

	for i := 0; i < 5; i++ {
		seq := mustAccept(t, svc)
		if want := uint32(2 + i); seq != want {
			t.Errorf("accepted seq = %d, want %d", seq, want)
		}
	}

	if got := svc.GetOpenLedger().Sequence(); got != 7 {
		t.Errorf("open ledger seq = %d, want 7", got)
	}
	if got := svc.GetValidatedLedger().Sequence(); got != 6 {
		t.Errorf("validated ledger seq = %d, want 6", got)
	}

	info := svc.GetServerInfo()
	if info.CompleteLedgers != "1-6" {
		t.Errorf("complete ledgers = %q, want \"1-6\"", info.CompleteLedgers)
	}
}

func TestAcceptLedgerRequiresStandalone(t *testing.T) {
	svc := newTestService(t, func(cfg *Config) {
		cfg.Standalone = false
	})

	if _, err := svc.AcceptLedger(context.Background()); err != ErrNotStandalone {
		t.Errorf("AcceptLedger error = %v, want ErrNotStandalone", err)
	}
}

func TestPoolLifecycle(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	mustSubmit(t, svc, pool.NewPoolCreate(provider, baseMint, quoteMint, shareToken, 3, 1000))
	mustSubmit(t, svc, pool.NewPoolDeposit(provider, baseMint, quoteMint, 1_000_000, 1_000_000, 1_000_000))
	mustAccept(t, svc)

	info, err := svc.GetPoolInfo(ctx, baseMint, quoteMint, "validated")
	if err != nil {
		t.Fatalf("GetPoolInfo: %v", err)
	}
	if info.ReserveA != 1_000_000 || info.ReserveB != 1_000_000 {
		t.Errorf("reserves = %d/%d, want 1000000/1000000", info.ReserveA, info.ReserveB)
	}
	if info.ShareSupply != 1_000_000 {
		t.Errorf("share supply = %d, want 1000000 (bootstrap issue)", info.ShareSupply)
	}
	if info.FeeNumerator != 3 || info.FeeDenominator != 1000 {
		t.Errorf("fee = %d/%d, want 3/1000", info.FeeNumerator, info.FeeDenominator)
	}

	// Quote first, then execute the identical swap in the same ledger.
	quote, err := svc.GetQuote(baseMint, quoteMint, 10_000)
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	if quote.Fee != 30 || quote.NetIn != 9_970 {
		t.Errorf("quote fee/net = %d/%d, want 30/9970", quote.Fee, quote.NetIn)
	}
	if quote.AmountOut != 9_871 {
		t.Errorf("quote out = %d, want 9871", quote.AmountOut)
	}

	swap := pool.NewPoolSwap(trader, baseMint, quoteMint, 10_000, quote.AmountOut)
	swap.FeeAccount = feeAccount
	mustSubmit(t, svc, swap)
	mustAccept(t, svc)

	traderInfo, err := svc.GetAccountInfo(ctx, trader, "validated")
	if err != nil {
		t.Fatalf("GetAccountInfo(trader): %v", err)
	}
	if got := balanceOf(traderInfo, quoteMint); got != 9_871 {
		t.Errorf("trader quote balance = %d, want 9871", got)
	}
	if got := balanceOf(traderInfo, baseMint); got != 90_000 {
		t.Errorf("trader base balance = %d, want 90000", got)
	}

	feeInfo, err := svc.GetAccountInfo(ctx, feeAccount, "validated")
	if err != nil {
		t.Fatalf("GetAccountInfo(feeAccount): %v", err)
	}
	if got := balanceOf(feeInfo, baseMint); got != 30 {
		t.Errorf("fee account balance = %d, want 30", got)
	}

	info, err = svc.GetPoolInfo(ctx, baseMint, quoteMint, "validated")
	if err != nil {
		t.Fatalf("GetPoolInfo after swap: %v", err)
	}
	if got := poolReserveOf(info, baseMint); got != 1_009_970 {
		t.Errorf("base reserve = %d, want 1009970 (fee excluded)", got)
	}
	if got := poolReserveOf(info, quoteMint); got != 990_129 {
		t.Errorf("quote reserve = %d, want 990129", got)
	}
}

func balanceOf(info *AccountInfoResult, mint string) uint64 {
	for _, b := range info.Balances {
		if b.Mint == mint {
			return b.Balance
		}
	}
	return 0
}

func poolReserveOf(info *PoolInfoResult, mint string) uint64 {
	if info.AssetA == mint {
		return info.ReserveA
	}
	if info.AssetB == mint {
		return info.ReserveB
	}
	return 0
}

func TestSubmitRejectsDuplicate(t *testing.T) {
	svc := newTestService(t, nil)

	create := pool.NewPoolCreate(provider, baseMint, quoteMint, shareToken, 3, 1000)
	mustSubmit(t, svc, create)

	again, err := svc.SubmitTransaction(pool.NewPoolCreate(provider, baseMint, quoteMint, shareToken, 3, 1000))
	if err != nil {
		t.Fatalf("SubmitTransaction: %v", err)
	}
	if again.Result != tx.TecDUPLICATE {
		t.Errorf("duplicate submit result = %s, want tecDUPLICATE", again.Result)
	}
	if again.Applied {
		t.Error("duplicate submit must not apply")
	}
}

func TestSubmitFailureLeavesNoTrace(t *testing.T) {
	svc := newTestService(t, nil)

	// No pool exists yet, so the swap fails with terNO_POOL.
	swap := pool.NewPoolSwap(trader, baseMint, quoteMint, 10_000, 0)
	swap.FeeAccount = feeAccount
	result, err := svc.SubmitTransaction(swap)
	if err != nil {
		t.Fatalf("SubmitTransaction: %v", err)
	}
	if result.Result != tx.TerNO_POOL {
		t.Errorf("result = %s, want terNO_POOL", result.Result)
	}
	if result.Applied {
		t.Error("failed transaction must not apply")
	}

	if got := len(svc.GetOpenLedger().Transactions()); got != 0 {
		t.Errorf("open ledger holds %d transactions, want 0", got)
	}
}

func TestGetTransaction(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	result := mustSubmit(t, svc, pool.NewPoolCreate(provider, baseMint, quoteMint, shareToken, 3, 1000))
	if result.Hash == "" {
		t.Fatal("submit result missing transaction hash")
	}

	raw, err := hex.DecodeString(result.Hash)
	if err != nil || len(raw) != 32 {
		t.Fatalf("submit hash %q is not a 32-byte hex string", result.Hash)
	}
	var txHash [32]byte
	copy(txHash[:], raw)

	// Pending: in the open ledger, not yet validated.
	pending, err := svc.GetTransaction(ctx, txHash)
	if err != nil {
		t.Fatalf("GetTransaction (pending): %v", err)
	}
	if pending.Validated {
		t.Error("pending transaction must not be validated")
	}

	seq := mustAccept(t, svc)

	validated, err := svc.GetTransaction(ctx, txHash)
	if err != nil {
		t.Fatalf("GetTransaction (validated): %v", err)
	}
	if !validated.Validated {
		t.Error("accepted transaction should be validated")
	}
	if validated.LedgerSeq != seq {
		t.Errorf("transaction ledger seq = %d, want %d", validated.LedgerSeq, seq)
	}
	if validated.Result != "tesSUCCESS" {
		t.Errorf("transaction result = %q, want tesSUCCESS", validated.Result)
	}

	var missing [32]byte
	missing[0] = 0xFF
	if _, err := svc.GetTransaction(ctx, missing); err != ErrTransactionNotFound {
		t.Errorf("missing transaction error = %v, want ErrTransactionNotFound", err)
	}
}

func TestEventsPublished(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	publisher := NewMockEventPublisher(ctrl)
	svc := newTestService(t, func(cfg *Config) {
		cfg.Publisher = publisher
	})

	publisher.EXPECT().PublishLedgerClosed(gomock.Any()).Do(func(ev LedgerClosedEvent) {
		if ev.LedgerSeq != 2 || ev.TxCount != 1 {
			t.Errorf("ledger closed event = %+v, want seq 2 with 1 txn", ev)
		}
	})
	publisher.EXPECT().PublishTransaction(gomock.Any()).Do(func(ev TransactionEvent) {
		if !ev.Validated || ev.Result != "tesSUCCESS" {
			t.Errorf("transaction event = %+v, want validated tesSUCCESS", ev)
		}
	})
	publisher.EXPECT().PublishPoolEvent(gomock.Any()).Do(func(ev PoolEvent) {
		if ev.EventType != "PoolCreated" {
			t.Errorf("pool event type = %q, want PoolCreated", ev.EventType)
		}
		if ev.Pool == "" {
			t.Error("pool event missing pool identifier")
		}
	})

	mustSubmit(t, svc, pool.NewPoolCreate(provider, baseMint, quoteMint, shareToken, 3, 1000))
	mustAccept(t, svc)
}

func TestPersistenceAndRecovery(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	manager, err := database.OpenBackend("pebble", dir)
	if err != nil {
		t.Fatalf("OpenBackend: %v", err)
	}
	defer manager.Close()

	db, err := manager.OpenDB("ledgers")
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}

	store, err := ledgerstore.New(db, "lz4")
	if err != nil {
		t.Fatalf("ledgerstore.New: %v", err)
	}

	historyConfig := history.NewConfig()
	historyConfig.Path = filepath.Join(dir, "history.db")
	historyStore, err := history.Open(historyConfig)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	if err := historyStore.Open(ctx); err != nil {
		t.Fatalf("historyStore.Open: %v", err)
	}
	defer historyStore.Close(ctx)

	withStores := func(cfg *Config) {
		cfg.LedgerStore = store
		cfg.History = historyStore
	}

	first := newTestService(t, withStores)
	mustSubmit(t, first, pool.NewPoolCreate(provider, baseMint, quoteMint, shareToken, 3, 1000))
	mustSubmit(t, first, pool.NewPoolDeposit(provider, baseMint, quoteMint, 1_000_000, 1_000_000, 0))
	mustAccept(t, first)
	mustAccept(t, first)

	// A second service over the same stores resumes from the snapshot.
	second := newTestService(t, withStores)

	validated := second.GetValidatedLedger()
	if validated == nil || validated.Sequence() != 3 {
		t.Fatalf("recovered validated seq = %v, want 3", validated)
	}
	if open := second.GetOpenLedger(); open.Sequence() != 4 {
		t.Errorf("recovered open seq = %d, want 4", open.Sequence())
	}
	if info := second.GetServerInfo(); info.CompleteLedgers != "1-3" {
		t.Errorf("recovered complete ledgers = %q, want \"1-3\"", info.CompleteLedgers)
	}

	// Pool state survives in the restored ledger.
	poolInfo, err := second.GetPoolInfo(ctx, baseMint, quoteMint, "validated")
	if err != nil {
		t.Fatalf("GetPoolInfo after recovery: %v", err)
	}
	if poolInfo.ReserveA != 1_000_000 || poolInfo.ReserveB != 1_000_000 {
		t.Errorf("recovered reserves = %d/%d, want 1000000/1000000", poolInfo.ReserveA, poolInfo.ReserveB)
	}

	// Older ledgers come back from the snapshot store.
	old, err := second.GetLedgerBySequence(ctx, 2)
	if err != nil {
		t.Fatalf("GetLedgerBySequence(2): %v", err)
	}
	if old.Sequence() != 2 || !old.IsValidated() {
		t.Errorf("restored ledger 2 = seq %d validated %v", old.Sequence(), old.IsValidated())
	}

	// Event history survives across restarts.
	events, err := second.EventsByPool(ctx, baseMint, quoteMint, history.EventQuery{})
	if err != nil {
		t.Fatalf("EventsByPool: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("pool events = %d, want 2 (created, liquidity added)", len(events))
	}
	if events[0].EventType != "PoolCreated" || events[1].EventType != "LiquidityAdded" {
		t.Errorf("event order = %s, %s", events[0].EventType, events[1].EventType)
	}
}

func TestQuoteErrors(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.GetQuote(baseMint, quoteMint, 10_000)
	var resultErr *ResultError
	if !errors.As(err, &resultErr) || resultErr.Result != tx.TerNO_POOL {
		t.Errorf("quote without pool = %v, want terNO_POOL", err)
	}

	if _, err := svc.GetQuote("nothex", quoteMint, 1); err == nil {
		t.Error("quote with malformed asset should fail")
	}
}
