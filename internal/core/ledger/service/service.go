// Package service drives the ledger lifecycle of the pool daemon. It owns
// the open ledger, applies submitted transactions through the engine,
// closes and validates ledgers on accept, and fans the results out to the
// snapshot store, the history database, and event subscribers.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/LeJamon/goAMMd/internal/core/ledger"
	"github.com/LeJamon/goAMMd/internal/core/ledger/entry"
	"github.com/LeJamon/goAMMd/internal/core/ledger/genesis"
	"github.com/LeJamon/goAMMd/internal/core/ledger/header"
	"github.com/LeJamon/goAMMd/internal/core/ledger/manager"
	"github.com/LeJamon/goAMMd/internal/core/tx"
	"github.com/LeJamon/goAMMd/internal/storage/history"
	"github.com/LeJamon/goAMMd/internal/storage/ledgerstore"
)

// Common errors
var (
	ErrNotStandalone       = errors.New("operation only valid in standalone mode")
	ErrNoOpenLedger        = errors.New("no open ledger")
	ErrLedgerNotFound      = errors.New("ledger not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrPoolNotFound        = errors.New("pool not found")
	ErrNoHistory           = errors.New("history store not configured")
)

// Config holds service configuration and injected stores. The stores are
// optional: a nil LedgerStore keeps ledgers in memory only, and a nil
// History disables event queries. The service does not own the stores;
// the caller opens and closes them.
type Config struct {
	// Standalone enables manual ledger acceptance via AcceptLedger.
	Standalone bool

	// Policy selects the accounting variant the engine runs under.
	Policy tx.Policy

	// Genesis seeds the first ledger when no snapshot exists.
	Genesis genesis.Config

	// CacheSize bounds the in-memory ledger cache. Zero selects the
	// default.
	CacheSize int

	// LedgerStore persists closed ledger snapshots and transactions.
	LedgerStore *ledgerstore.Store

	// History records closed headers and pool events relationally.
	History history.Store

	// Publisher receives events as ledgers are accepted.
	Publisher EventPublisher
}

// DefaultConfig returns a standalone, hardened, in-memory configuration.
func DefaultConfig() Config {
	return Config{
		Standalone: true,
		Policy:     tx.PolicyHardened,
		Genesis:    genesis.DefaultConfig(),
	}
}

// Service manages the ledger lifecycle.
type Service struct {
	mu sync.RWMutex

	config Config

	store     *ledgerstore.Store
	history   history.Store
	publisher EventPublisher

	// Current open ledger, accepting transactions
	openLedger *ledger.Ledger

	// Last closed ledger
	closedLedger *ledger.Ledger

	// Highest validated ledger; tracks closedLedger in standalone mode
	validatedLedger *ledger.Ledger

	// Genesis ledger, when this run created or loaded it
	genesisLedger *ledger.Ledger

	// Recently closed ledgers plus completeness tracking
	cache *manager.LedgerCache

	// Transaction hash to ledger sequence, for closed ledgers seen this run
	txSeq map[[32]byte]uint32
}

// New creates a service. Call Start before submitting transactions.
func New(cfg Config) (*Service, error) {
	cache, err := manager.NewLedgerCache(cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	publisher := cfg.Publisher
	if publisher == nil {
		publisher = NoOpPublisher{}
	}

	return &Service{
		config:    cfg,
		store:     cfg.LedgerStore,
		history:   cfg.History,
		publisher: publisher,
		cache:     cache,
		txSeq:     make(map[[32]byte]uint32),
	}, nil
}

// Start initializes the chain. It restores the latest persisted snapshot
// when one exists, creates and persists the genesis ledger otherwise, and
// opens the next ledger for transactions.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	base, err := s.restoreLatest(ctx)
	if err != nil {
		return err
	}

	if base == nil {
		base, err = genesis.Create(s.config.Genesis)
		if err != nil {
			return fmt.Errorf("create genesis ledger: %w", err)
		}
		if err := s.persistLedger(ctx, base); err != nil {
			return err
		}
	}

	if base.Sequence() == 1 {
		s.genesisLedger = base
	}

	s.closedLedger = base
	s.validatedLedger = base
	s.cache.Put(base)

	open, err := ledger.NewOpen(base)
	if err != nil {
		return fmt.Errorf("open ledger %d: %w", base.Sequence()+1, err)
	}
	s.openLedger = open

	return nil
}

// restoreLatest loads the newest snapshot from the ledger store. It
// returns nil when the store is absent or empty.
func (s *Service) restoreLatest(ctx context.Context) (*ledger.Ledger, error) {
	if s.store == nil {
		return nil, nil
	}

	seq, err := s.store.LatestSequence(ctx)
	if errors.Is(err, ledgerstore.ErrEmptyStore) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read latest snapshot: %w", err)
	}

	snap, err := s.store.LoadLedger(ctx, seq)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %d: %w", seq, err)
	}

	// The daemon persists every accepted ledger, so the stored range is
	// contiguous from genesis.
	s.cache.MarkCompleteRange(1, seq)

	return snapshotLedger(snap), nil
}

// SubmitResult is the outcome of submitting one transaction.
type SubmitResult struct {
	// Result is the engine result code
	Result tx.Result

	// Applied reports whether ledger state changed
	Applied bool

	// Hash identifies the transaction, set when it was recorded
	Hash string

	// Metadata describes the changes and emitted events
	Metadata *tx.Metadata

	// Message is the human-readable result message
	Message string

	// OpenLedger is the sequence the transaction was applied against
	OpenLedger uint32

	// ValidatedLedger is the highest validated sequence
	ValidatedLedger uint32
}

// SubmitTransaction applies a transaction to the open ledger. Successful
// transactions are recorded in the ledger with their metadata; failures of
// any class leave the ledger untouched and are not recorded. Submitting a
// byte-identical transaction twice into one open ledger fails with
// tecDUPLICATE.
func (s *Service) SubmitTransaction(transaction tx.Transaction) (*SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.openLedger == nil {
		return nil, ErrNoOpenLedger
	}

	txHash, err := tx.HashTransaction(transaction)
	if err != nil {
		return nil, fmt.Errorf("hash transaction: %w", err)
	}

	result := &SubmitResult{
		OpenLedger:      s.openLedger.Sequence(),
		ValidatedLedger: s.validatedSeqLocked(),
	}

	if _, exists := s.openLedger.GetTransaction(txHash); exists {
		result.Result = tx.TecDUPLICATE
		result.Message = tx.TecDUPLICATE.Message()
		return result, nil
	}

	engine := tx.NewEngine(s.openLedger, tx.EngineConfig{
		Policy:         s.config.Policy,
		LedgerSequence: s.openLedger.Sequence(),
		Standalone:     s.config.Standalone,
	})

	applied := engine.Apply(transaction)

	result.Result = applied.Result
	result.Applied = applied.Applied
	result.Metadata = applied.Metadata
	result.Message = applied.Message

	if !applied.Applied {
		return result, nil
	}

	txJSON, err := tx.CanonicalJSON(transaction)
	if err != nil {
		return nil, fmt.Errorf("encode transaction: %w", err)
	}

	applied.Metadata.TransactionIndex = uint32(len(s.openLedger.Transactions()))
	metaJSON, err := json.Marshal(applied.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	if err := s.openLedger.AddTransaction(txHash, applied.Result.String(), txJSON, metaJSON); err != nil {
		return nil, fmt.Errorf("record transaction: %w", err)
	}

	result.Hash = hashHex(txHash)
	return result, nil
}

// AcceptLedger closes the open ledger, validates it, persists it, fans out
// events, and opens the successor. It backs the ledger_accept RPC and is
// only valid in standalone mode.
func (s *Service) AcceptLedger(ctx context.Context) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.config.Standalone {
		return 0, ErrNotStandalone
	}
	if s.openLedger == nil {
		return 0, ErrNoOpenLedger
	}

	closing := s.openLedger
	seq := closing.Sequence()

	if err := closing.Close(time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("close ledger %d: %w", seq, err)
	}
	if err := closing.SetValidated(); err != nil {
		return 0, fmt.Errorf("validate ledger %d: %w", seq, err)
	}

	if err := s.persistLedger(ctx, closing); err != nil {
		return 0, err
	}

	s.closedLedger = closing
	s.validatedLedger = closing
	s.cache.Put(closing)

	for _, t := range closing.Transactions() {
		s.txSeq[t.Hash] = seq
	}

	s.publishLedger(closing)

	next, err := ledger.NewOpen(closing)
	if err != nil {
		return 0, fmt.Errorf("open ledger %d: %w", seq+1, err)
	}
	s.openLedger = next

	return seq, nil
}

// persistLedger writes a closed ledger to the snapshot store and the
// history database, then marks its sequence complete.
func (s *Service) persistLedger(ctx context.Context, l *ledger.Ledger) error {
	if s.store != nil {
		snap, txs := snapshotRecord(l)
		if err := s.store.SaveLedger(ctx, snap, txs); err != nil {
			return fmt.Errorf("persist ledger %d: %w", l.Sequence(), err)
		}
	}

	if s.history != nil {
		record, events := historyRecords(l)
		if err := s.history.SaveLedger(ctx, record, events); err != nil {
			return fmt.Errorf("record ledger %d history: %w", l.Sequence(), err)
		}
	}

	s.cache.MarkComplete(l.Sequence())
	return nil
}

// publishLedger emits the closed-ledger event, one event per transaction,
// and the pool events recovered from each transaction's metadata.
func (s *Service) publishLedger(l *ledger.Ledger) {
	h := l.Header()
	ledgerHash := hashHex(h.Hash)

	s.publisher.PublishLedgerClosed(LedgerClosedEvent{
		LedgerSeq:        h.Sequence,
		LedgerHash:       ledgerHash,
		CloseTime:        h.CloseTime.Unix(),
		TxCount:          int(h.TxCount),
		ValidatedLedgers: s.cache.CompleteString(),
	})

	for _, t := range l.Transactions() {
		txHash := hashHex(t.Hash)

		s.publisher.PublishTransaction(TransactionEvent{
			Hash:       txHash,
			LedgerSeq:  h.Sequence,
			LedgerHash: ledgerHash,
			CloseTime:  h.CloseTime.Unix(),
			Result:     t.Result,
			Tx:         t.TxJSON,
			Meta:       t.MetaJSON,
			Validated:  true,
		})

		for _, ev := range poolEventsFromMeta(txHash, h.Sequence, t.MetaJSON) {
			s.publisher.PublishPoolEvent(ev)
		}
	}
}

// IsStandalone reports whether the node runs in standalone mode.
func (s *Service) IsStandalone() bool {
	return s.config.Standalone
}

// Policy returns the accounting policy the node runs under.
func (s *Service) Policy() tx.Policy {
	return s.config.Policy
}

// GetOpenLedger returns the current open ledger.
func (s *Service) GetOpenLedger() *ledger.Ledger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.openLedger
}

// GetClosedLedger returns the last closed ledger.
func (s *Service) GetClosedLedger() *ledger.Ledger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closedLedger
}

// GetValidatedLedger returns the highest validated ledger.
func (s *Service) GetValidatedLedger() *ledger.Ledger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validatedLedger
}

func (s *Service) validatedSeqLocked() uint32 {
	if s.validatedLedger == nil {
		return 0
	}
	return s.validatedLedger.Sequence()
}

// snapshotLedger reconstructs a ledger from a stored snapshot. Snapshots
// only ever hold closed, validated ledgers.
func snapshotLedger(snap *ledgerstore.SnapshotRecord) *ledger.Ledger {
	h := header.Header{
		Sequence:  snap.Seq,
		CloseTime: time.Unix(snap.CloseTime, 0).UTC(),
		TxCount:   snap.TxCount,
		Closed:    true,
		Validated: true,
	}
	copy(h.Hash[:], snap.Hash)
	copy(h.ParentHash[:], snap.ParentHash)
	copy(h.StateHash[:], snap.StateHash)

	entries := make([]ledger.StateEntry, 0, len(snap.State))
	for _, e := range snap.State {
		var key [32]byte
		copy(key[:], e.Key)
		entries = append(entries, ledger.StateEntry{
			Key:       key,
			EntryType: entry.Type(e.EntryType),
			Data:      e.Data,
		})
	}

	return ledger.FromSnapshot(h, entries)
}

// snapshotRecord converts a closed ledger into its storage form.
func snapshotRecord(l *ledger.Ledger) (*ledgerstore.SnapshotRecord, []*ledgerstore.TxRecord) {
	h := l.Header()

	entries := l.Entries()
	state := make([]ledgerstore.StateEntry, 0, len(entries))
	for _, e := range entries {
		state = append(state, ledgerstore.StateEntry{
			Key:       append([]byte(nil), e.Key[:]...),
			EntryType: uint16(e.EntryType),
			Data:      e.Data,
		})
	}

	snap := &ledgerstore.SnapshotRecord{
		Seq:        h.Sequence,
		Hash:       append([]byte(nil), h.Hash[:]...),
		ParentHash: append([]byte(nil), h.ParentHash[:]...),
		StateHash:  append([]byte(nil), h.StateHash[:]...),
		CloseTime:  h.CloseTime.Unix(),
		TxCount:    h.TxCount,
		State:      state,
	}

	txEntries := l.Transactions()
	txs := make([]*ledgerstore.TxRecord, 0, len(txEntries))
	for _, t := range txEntries {
		txs = append(txs, &ledgerstore.TxRecord{
			Hash:      append([]byte(nil), t.Hash[:]...),
			LedgerSeq: h.Sequence,
			TxIndex:   t.Index,
			Result:    t.Result,
			TxJSON:    t.TxJSON,
			MetaJSON:  t.MetaJSON,
		})
	}

	return snap, txs
}

// historyRecords converts a closed ledger into its relational form: one
// header row plus one row per emitted pool event.
func historyRecords(l *ledger.Ledger) (*history.LedgerRecord, []history.EventRecord) {
	h := l.Header()

	record := &history.LedgerRecord{
		Seq:        h.Sequence,
		Hash:       hashHex(h.Hash),
		ParentHash: hashHex(h.ParentHash),
		StateHash:  hashHex(h.StateHash),
		CloseTime:  h.CloseTime.Unix(),
		TxCount:    int(h.TxCount),
	}

	var events []history.EventRecord
	for _, t := range l.Transactions() {
		txHash := hashHex(t.Hash)
		for i, ev := range poolEventsFromMeta(txHash, h.Sequence, t.MetaJSON) {
			events = append(events, history.EventRecord{
				LedgerSeq:  h.Sequence,
				TxIndex:    t.Index,
				EventIndex: uint32(i),
				TxHash:     txHash,
				EventType:  ev.EventType,
				Pool:       ev.Pool,
				Account:    ev.Account,
				Payload:    ev.Event,
			})
		}
	}

	return record, events
}
