package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/LeJamon/goAMMd/internal/core/ledger"
	"github.com/LeJamon/goAMMd/internal/core/ledger/entry"
	"github.com/LeJamon/goAMMd/internal/core/ledger/keylet"
	"github.com/LeJamon/goAMMd/internal/core/ledger/sle"
	"github.com/LeJamon/goAMMd/internal/core/tx"
	"github.com/LeJamon/goAMMd/internal/core/tx/pool"
	"github.com/LeJamon/goAMMd/internal/storage/history"
	"github.com/LeJamon/goAMMd/internal/storage/ledgerstore"
)

// ResultError wraps a non-success engine result as an error, so RPC
// handlers can map engine codes onto wire errors.
type ResultError struct {
	Result tx.Result
}

func (e *ResultError) Error() string {
	return e.Result.String() + ": " + e.Result.Message()
}

// GetLedgerBySequence returns a closed ledger by sequence, checking the
// in-memory chain, then the cache, then the snapshot store.
func (s *Service) GetLedgerBySequence(ctx context.Context, seq uint32) (*ledger.Ledger, error) {
	s.mu.RLock()
	for _, l := range []*ledger.Ledger{s.closedLedger, s.genesisLedger} {
		if l != nil && l.Sequence() == seq {
			s.mu.RUnlock()
			return l, nil
		}
	}
	s.mu.RUnlock()

	if l, ok := s.cache.Get(seq); ok {
		return l, nil
	}

	if s.store != nil {
		snap, err := s.store.LoadLedger(ctx, seq)
		if err == nil {
			l := snapshotLedger(snap)
			s.cache.Put(l)
			return l, nil
		}
		if !errors.Is(err, ledgerstore.ErrLedgerNotFound) {
			return nil, err
		}
	}

	return nil, ErrLedgerNotFound
}

// GetLedgerByHash returns a closed ledger by hash.
func (s *Service) GetLedgerByHash(ctx context.Context, hash [32]byte) (*ledger.Ledger, error) {
	s.mu.RLock()
	for _, l := range []*ledger.Ledger{s.closedLedger, s.genesisLedger} {
		if l != nil && l.Hash() == hash {
			s.mu.RUnlock()
			return l, nil
		}
	}
	s.mu.RUnlock()

	if l, ok := s.cache.GetByHash(hash); ok {
		return l, nil
	}

	if s.store != nil {
		snap, err := s.store.LoadLedgerByHash(ctx, hash[:])
		if err == nil {
			l := snapshotLedger(snap)
			s.cache.Put(l)
			return l, nil
		}
		if !errors.Is(err, ledgerstore.ErrLedgerNotFound) {
			return nil, err
		}
	}

	return nil, ErrLedgerNotFound
}

// ResolveLedger maps a ledger selector to a ledger. Selectors are
// "current" (or empty), "closed", "validated", or a sequence number.
func (s *Service) ResolveLedger(ctx context.Context, selector string) (*ledger.Ledger, error) {
	switch selector {
	case "", "current":
		if l := s.GetOpenLedger(); l != nil {
			return l, nil
		}
		return nil, ErrNoOpenLedger
	case "closed":
		if l := s.GetClosedLedger(); l != nil {
			return l, nil
		}
		return nil, ErrLedgerNotFound
	case "validated":
		if l := s.GetValidatedLedger(); l != nil {
			return l, nil
		}
		return nil, ErrLedgerNotFound
	default:
		seq, err := strconv.ParseUint(selector, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid ledger selector %q", selector)
		}
		return s.GetLedgerBySequence(ctx, uint32(seq))
	}
}

// TransactionResult is a stored transaction with its ledger context.
type TransactionResult struct {
	Hash       string          `json:"hash"`
	LedgerSeq  uint32          `json:"ledger_index"`
	LedgerHash string          `json:"ledger_hash,omitempty"`
	TxIndex    uint32          `json:"tx_index"`
	Result     string          `json:"engine_result"`
	TxJSON     json.RawMessage `json:"tx_json"`
	MetaJSON   json.RawMessage `json:"meta"`
	Validated  bool            `json:"validated"`
}

// GetTransaction retrieves a transaction by hash. It checks ledgers closed
// this run, then the open ledger, then the snapshot store.
func (s *Service) GetTransaction(ctx context.Context, txHash [32]byte) (*TransactionResult, error) {
	s.mu.RLock()
	seq, indexed := s.txSeq[txHash]
	s.mu.RUnlock()

	if indexed {
		l, err := s.GetLedgerBySequence(ctx, seq)
		if err == nil {
			if t, found := l.GetTransaction(txHash); found {
				return txResult(t, l.Sequence(), hashHex(l.Hash()), l.IsValidated()), nil
			}
		}
	}

	if open := s.GetOpenLedger(); open != nil {
		if t, found := open.GetTransaction(txHash); found {
			// Pending: applied to the open ledger but not yet closed
			return txResult(t, open.Sequence(), "", false), nil
		}
	}

	if s.store != nil {
		rec, err := s.store.LoadTransaction(ctx, txHash[:])
		if err == nil {
			result := &TransactionResult{
				Hash:      hashHex(txHash),
				LedgerSeq: rec.LedgerSeq,
				TxIndex:   rec.TxIndex,
				Result:    rec.Result,
				TxJSON:    rec.TxJSON,
				MetaJSON:  rec.MetaJSON,
				Validated: true,
			}
			if l, lerr := s.GetLedgerBySequence(ctx, rec.LedgerSeq); lerr == nil {
				result.LedgerHash = hashHex(l.Hash())
			}
			return result, nil
		}
		if !errors.Is(err, ledgerstore.ErrTransactionNotFound) {
			return nil, err
		}
	}

	return nil, ErrTransactionNotFound
}

func txResult(t ledger.TxEntry, seq uint32, ledgerHash string, validated bool) *TransactionResult {
	return &TransactionResult{
		Hash:       hashHex(t.Hash),
		LedgerSeq:  seq,
		LedgerHash: ledgerHash,
		TxIndex:    t.Index,
		Result:     t.Result,
		TxJSON:     t.TxJSON,
		MetaJSON:   t.MetaJSON,
		Validated:  validated,
	}
}

// LedgerSummary identifies one closed ledger in ServerInfo.
type LedgerSummary struct {
	Seq       uint32 `json:"seq"`
	Hash      string `json:"hash"`
	CloseTime int64  `json:"close_time"`
	TxCount   uint32 `json:"txn_count"`
}

// ServerInfo is a snapshot of node state for the server_info RPC.
type ServerInfo struct {
	Standalone      bool           `json:"standalone"`
	Policy          string         `json:"pool_policy"`
	OpenLedgerSeq   uint32         `json:"open_ledger_seq"`
	PendingTxCount  int            `json:"pending_txn_count"`
	ClosedLedger    *LedgerSummary `json:"closed_ledger,omitempty"`
	ValidatedLedger *LedgerSummary `json:"validated_ledger,omitempty"`
	CompleteLedgers string         `json:"complete_ledgers"`
	CacheHitRate    float64        `json:"cache_hit_rate"`
}

// GetServerInfo returns the node status.
func (s *Service) GetServerInfo() ServerInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := ServerInfo{
		Standalone:      s.config.Standalone,
		Policy:          s.config.Policy.String(),
		CompleteLedgers: s.cache.CompleteString(),
		CacheHitRate:    s.cache.Stats().HitRate,
	}

	if s.openLedger != nil {
		info.OpenLedgerSeq = s.openLedger.Sequence()
		info.PendingTxCount = len(s.openLedger.Transactions())
	}
	if s.closedLedger != nil {
		info.ClosedLedger = ledgerSummary(s.closedLedger)
	}
	if s.validatedLedger != nil {
		info.ValidatedLedger = ledgerSummary(s.validatedLedger)
	}

	return info
}

func ledgerSummary(l *ledger.Ledger) *LedgerSummary {
	h := l.Header()
	return &LedgerSummary{
		Seq:       h.Sequence,
		Hash:      hashHex(h.Hash),
		CloseTime: h.CloseTime.Unix(),
		TxCount:   h.TxCount,
	}
}

// TokenBalance is one mint's balance held by an account.
type TokenBalance struct {
	Mint    string `json:"mint"`
	Balance uint64 `json:"balance"`
}

// AccountInfoResult lists every token balance an account holds.
type AccountInfoResult struct {
	Account     string         `json:"account"`
	Balances    []TokenBalance `json:"balances"`
	LedgerIndex uint32         `json:"ledger_index"`
	LedgerHash  string         `json:"ledger_hash,omitempty"`
	Validated   bool           `json:"validated"`
}

// GetAccountInfo returns the token balances an account holds in the
// selected ledger. An account with no token accounts does not exist.
func (s *Service) GetAccountInfo(ctx context.Context, account, selector string) (*AccountInfoResult, error) {
	accountID, err := sle.DecodeAccountID(strings.ToUpper(account))
	if err != nil {
		return nil, fmt.Errorf("invalid account: %w", err)
	}

	l, err := s.ResolveLedger(ctx, selector)
	if err != nil {
		return nil, err
	}

	var balances []TokenBalance
	for _, e := range l.Entries() {
		if e.EntryType != entry.TypeTokenAccount {
			continue
		}
		acct, err := sle.ParseTokenAccount(e.Data)
		if err != nil {
			return nil, fmt.Errorf("parse token account: %w", err)
		}
		if acct.Owner != accountID {
			continue
		}
		balances = append(balances, TokenBalance{
			Mint:    sle.EncodeMintID(acct.Mint),
			Balance: acct.Balance,
		})
	}

	if len(balances) == 0 {
		return nil, ErrAccountNotFound
	}

	sort.Slice(balances, func(i, j int) bool {
		return balances[i].Mint < balances[j].Mint
	})

	result := &AccountInfoResult{
		Account:     sle.EncodeAccountID(accountID),
		Balances:    balances,
		LedgerIndex: l.Sequence(),
		Validated:   l.IsValidated(),
	}
	if l.IsClosed() {
		result.LedgerHash = hashHex(l.Hash())
	}
	return result, nil
}

// PoolInfoResult is the full state of one pool.
type PoolInfoResult struct {
	Pool           string  `json:"pool"`
	AssetA         string  `json:"asset_a"`
	AssetB         string  `json:"asset_b"`
	ReserveA       uint64  `json:"reserve_a"`
	ReserveB       uint64  `json:"reserve_b"`
	ShareMint      string  `json:"share_mint"`
	ShareSupply    uint64  `json:"share_supply"`
	ShareDecimals  uint8   `json:"share_decimals"`
	FeeNumerator   uint64  `json:"fee_numerator"`
	FeeDenominator uint64  `json:"fee_denominator"`
	FeeRate        float64 `json:"fee_rate"`
	Authority      string  `json:"authority"`
	LedgerIndex    uint32  `json:"ledger_index"`
	Validated      bool    `json:"validated"`
}

// GetPoolInfo returns the pool over an asset pair in the selected ledger,
// with live reserve balances and share supply.
func (s *Service) GetPoolInfo(ctx context.Context, assetA, assetB, selector string) (*PoolInfoResult, error) {
	a, err := sle.DecodeMintID(strings.ToUpper(assetA))
	if err != nil {
		return nil, fmt.Errorf("invalid asset_a: %w", err)
	}
	b, err := sle.DecodeMintID(strings.ToUpper(assetB))
	if err != nil {
		return nil, fmt.Errorf("invalid asset_b: %w", err)
	}

	l, err := s.ResolveLedger(ctx, selector)
	if err != nil {
		return nil, err
	}

	poolKey := keylet.Pool(a, b)
	raw, err := l.Read(poolKey)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, ErrPoolNotFound
	}

	p, err := sle.ParsePool(raw)
	if err != nil {
		return nil, fmt.Errorf("parse pool: %w", err)
	}

	reserveA, err := readReserve(l, p.ReserveA)
	if err != nil {
		return nil, err
	}
	reserveB, err := readReserve(l, p.ReserveB)
	if err != nil {
		return nil, err
	}

	mintRaw, err := l.Read(keylet.Mint(p.ShareMint))
	if err != nil {
		return nil, err
	}
	if mintRaw == nil {
		return nil, fmt.Errorf("pool share mint missing from ledger %d", l.Sequence())
	}
	shareMint, err := sle.ParseMint(mintRaw)
	if err != nil {
		return nil, fmt.Errorf("parse share mint: %w", err)
	}

	return &PoolInfoResult{
		Pool:           hashHex(poolKey.Key),
		AssetA:         sle.EncodeMintID(p.AssetA),
		AssetB:         sle.EncodeMintID(p.AssetB),
		ReserveA:       reserveA,
		ReserveB:       reserveB,
		ShareMint:      sle.EncodeMintID(p.ShareMint),
		ShareSupply:    shareMint.Supply,
		ShareDecimals:  shareMint.Decimals,
		FeeNumerator:   p.FeeNumerator,
		FeeDenominator: p.FeeDenominator,
		FeeRate:        p.FeeRatio(),
		Authority:      sle.EncodeAccountID(p.Authority),
		LedgerIndex:    l.Sequence(),
		Validated:      l.IsValidated(),
	}, nil
}

// readReserve reads a pool custody account's balance by its state key.
// Pool creation inserts both custody accounts, so a missing entry means
// corrupted state.
func readReserve(l *ledger.Ledger, key [32]byte) (uint64, error) {
	raw, err := l.Read(keylet.Keylet{Type: entry.TypeTokenAccount, Key: key})
	if err != nil {
		return 0, err
	}
	if raw == nil {
		return 0, fmt.Errorf("pool reserve account missing from ledger %d", l.Sequence())
	}
	acct, err := sle.ParseTokenAccount(raw)
	if err != nil {
		return 0, fmt.Errorf("parse reserve account: %w", err)
	}
	return acct.Balance, nil
}

// GetQuote prices a swap against the open ledger without applying it. A
// quote followed immediately by the same swap in the same ledger returns
// exactly the quoted amount.
func (s *Service) GetQuote(assetIn, assetOut string, amountIn uint64) (*pool.QuoteResult, error) {
	in, err := sle.DecodeMintID(strings.ToUpper(assetIn))
	if err != nil {
		return nil, fmt.Errorf("invalid asset_in: %w", err)
	}
	out, err := sle.DecodeMintID(strings.ToUpper(assetOut))
	if err != nil {
		return nil, fmt.Errorf("invalid asset_out: %w", err)
	}

	s.mu.RLock()
	open := s.openLedger
	policy := s.config.Policy
	s.mu.RUnlock()

	if open == nil {
		return nil, ErrNoOpenLedger
	}

	quote, result := pool.Quote(open, policy, in, out, amountIn)
	if !result.IsSuccess() {
		return nil, &ResultError{Result: result}
	}
	return quote, nil
}

// EventsByPool lists a pool's history in emission order, narrowed by the
// query bounds. The pool is addressed by its asset pair.
func (s *Service) EventsByPool(ctx context.Context, assetA, assetB string, query history.EventQuery) ([]history.EventRecord, error) {
	if s.history == nil {
		return nil, ErrNoHistory
	}

	a, err := sle.DecodeMintID(strings.ToUpper(assetA))
	if err != nil {
		return nil, fmt.Errorf("invalid asset_a: %w", err)
	}
	b, err := sle.DecodeMintID(strings.ToUpper(assetB))
	if err != nil {
		return nil, fmt.Errorf("invalid asset_b: %w", err)
	}

	return s.history.EventsByPool(ctx, PoolID(a, b), query)
}

// EventsByTransaction lists the events one transaction emitted.
func (s *Service) EventsByTransaction(ctx context.Context, txHash string) ([]history.EventRecord, error) {
	if s.history == nil {
		return nil, ErrNoHistory
	}
	return s.history.EventsByTransaction(ctx, strings.ToUpper(txHash))
}
