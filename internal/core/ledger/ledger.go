// Package ledger holds the in-memory ledger: a state map of serialized
// entries addressed by keylet, plus the transactions applied since the
// ledger opened. A ledger is open while it accepts transactions and
// closed once its hashes are computed; closed ledgers never change.
package ledger

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/LeJamon/goAMMd/internal/core/ledger/entry"
	"github.com/LeJamon/goAMMd/internal/core/ledger/header"
	"github.com/LeJamon/goAMMd/internal/core/ledger/keylet"
	crypto "github.com/LeJamon/goAMMd/internal/crypto/common"
)

var (
	// ErrClosed is returned when writing to a closed ledger
	ErrClosed = errors.New("ledger is closed")

	// ErrEntryExists is returned when inserting over an existing entry
	ErrEntryExists = errors.New("entry already exists")

	// ErrEntryNotFound is returned when updating or erasing a missing entry
	ErrEntryNotFound = errors.New("entry not found")

	// ErrTxExists is returned when adding a transaction twice
	ErrTxExists = errors.New("transaction already in ledger")
)

// stateItem is one entry in the state map.
type stateItem struct {
	entryType entry.Type
	data      []byte
}

// StateEntry is the exported form of a state map entry, used for
// snapshots.
type StateEntry struct {
	Key       [32]byte
	EntryType entry.Type
	Data      []byte
}

// TxEntry is one transaction applied to a ledger, with its metadata.
type TxEntry struct {
	Hash     [32]byte
	Index    uint32
	Result   string
	TxJSON   []byte
	MetaJSON []byte
}

// Ledger is one ledger in the chain.
type Ledger struct {
	mu sync.RWMutex

	header header.Header
	state  map[[32]byte]stateItem

	txs     []TxEntry
	txIndex map[[32]byte]int
}

// NewGenesis creates an empty open ledger with sequence 1. The caller
// seeds state and closes it.
func NewGenesis(closeTime time.Time) *Ledger {
	return &Ledger{
		header: header.Header{
			Sequence:        1,
			ParentCloseTime: closeTime,
		},
		state:   make(map[[32]byte]stateItem),
		txIndex: make(map[[32]byte]int),
	}
}

// NewOpen creates the next open ledger on top of a closed parent. The
// parent's state is carried over.
func NewOpen(parent *Ledger) (*Ledger, error) {
	parent.mu.RLock()
	defer parent.mu.RUnlock()

	if !parent.header.Closed {
		return nil, errors.New("parent ledger is not closed")
	}

	state := make(map[[32]byte]stateItem, len(parent.state))
	for key, item := range parent.state {
		state[key] = item
	}

	return &Ledger{
		header: header.Header{
			Sequence:        parent.header.Sequence + 1,
			ParentHash:      parent.header.Hash,
			ParentCloseTime: parent.header.CloseTime,
		},
		state:   state,
		txIndex: make(map[[32]byte]int),
	}, nil
}

// FromSnapshot reconstructs a closed ledger from stored header fields and
// state entries.
func FromSnapshot(h header.Header, entries []StateEntry) *Ledger {
	state := make(map[[32]byte]stateItem, len(entries))
	for _, e := range entries {
		data := make([]byte, len(e.Data))
		copy(data, e.Data)
		state[e.Key] = stateItem{entryType: e.EntryType, data: data}
	}

	return &Ledger{
		header:  h,
		state:   state,
		txIndex: make(map[[32]byte]int),
	}
}

// Read returns the entry data at k, or nil if no entry exists.
func (l *Ledger) Read(k keylet.Keylet) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	item, ok := l.state[k.Key]
	if !ok {
		return nil, nil
	}

	data := make([]byte, len(item.data))
	copy(data, item.data)
	return data, nil
}

// Exists checks whether an entry exists at k.
func (l *Ledger) Exists(k keylet.Keylet) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.state[k.Key]
	return ok, nil
}

// Insert adds a new entry at k.
func (l *Ledger) Insert(k keylet.Keylet, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.header.Closed {
		return ErrClosed
	}
	if _, ok := l.state[k.Key]; ok {
		return ErrEntryExists
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	l.state[k.Key] = stateItem{entryType: k.Type, data: stored}
	return nil
}

// Update replaces the entry at k.
func (l *Ledger) Update(k keylet.Keylet, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.header.Closed {
		return ErrClosed
	}
	item, ok := l.state[k.Key]
	if !ok {
		return ErrEntryNotFound
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	item.data = stored
	l.state[k.Key] = item
	return nil
}

// Erase removes the entry at k.
func (l *Ledger) Erase(k keylet.Keylet) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.header.Closed {
		return ErrClosed
	}
	if _, ok := l.state[k.Key]; !ok {
		return ErrEntryNotFound
	}

	delete(l.state, k.Key)
	return nil
}

// ForEach iterates over all state entries. Iteration stops when fn
// returns false.
func (l *Ledger) ForEach(fn func(key [32]byte, data []byte) bool) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for key, item := range l.state {
		if !fn(key, item.data) {
			break
		}
	}
	return nil
}

// AddTransaction records an applied transaction on the open ledger.
func (l *Ledger) AddTransaction(txHash [32]byte, result string, txJSON, metaJSON []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.header.Closed {
		return ErrClosed
	}
	if _, ok := l.txIndex[txHash]; ok {
		return ErrTxExists
	}

	index := uint32(len(l.txs))
	l.txs = append(l.txs, TxEntry{
		Hash:     txHash,
		Index:    index,
		Result:   result,
		TxJSON:   txJSON,
		MetaJSON: metaJSON,
	})
	l.txIndex[txHash] = int(index)
	return nil
}

// GetTransaction returns an applied transaction by hash.
func (l *Ledger) GetTransaction(txHash [32]byte) (TxEntry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, ok := l.txIndex[txHash]
	if !ok {
		return TxEntry{}, false
	}
	return l.txs[i], true
}

// Transactions returns the applied transactions in order.
func (l *Ledger) Transactions() []TxEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	txs := make([]TxEntry, len(l.txs))
	copy(txs, l.txs)
	return txs
}

// Close seals the ledger: the state hash, transaction hash and ledger
// hash are computed and no further writes are accepted.
func (l *Ledger) Close(closeTime time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.header.Closed {
		return ErrClosed
	}

	l.header.CloseTime = closeTime
	l.header.TxCount = uint32(len(l.txs))
	l.header.StateHash = l.stateHashLocked()
	l.header.TxHash = l.txHashLocked()
	l.header.Closed = true
	l.header.Hash = l.header.ComputeHash()
	return nil
}

// SetValidated marks a closed ledger validated.
func (l *Ledger) SetValidated() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.header.Closed {
		return errors.New("cannot validate an open ledger")
	}
	l.header.Validated = true
	return nil
}

// stateHashLocked folds the state map in key order into one digest.
func (l *Ledger) stateHashLocked() [32]byte {
	keys := make([][32]byte, 0, len(l.state))
	for key := range l.state {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return compareKeys(keys[i], keys[j]) < 0
	})

	parts := make([][]byte, 0, 2*len(keys)+1)
	parts = append(parts, []byte{'S', 'T', 'M', 0x00})
	for i := range keys {
		item := l.state[keys[i]]
		parts = append(parts, keys[i][:], item.data)
	}
	return crypto.Sha512Half(parts...)
}

// txHashLocked folds the applied transaction hashes in order.
func (l *Ledger) txHashLocked() [32]byte {
	parts := make([][]byte, 0, len(l.txs)+1)
	parts = append(parts, []byte{'T', 'X', 'S', 0x00})
	for i := range l.txs {
		parts = append(parts, l.txs[i].Hash[:])
	}
	return crypto.Sha512Half(parts...)
}

func compareKeys(a, b [32]byte) int {
	for i := 0; i < 32; i++ {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}

// Header returns a copy of the ledger header.
func (l *Ledger) Header() header.Header {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.header
}

// Sequence returns the ledger index.
func (l *Ledger) Sequence() uint32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.header.Sequence
}

// Hash returns the ledger hash. Zero until the ledger closes.
func (l *Ledger) Hash() [32]byte {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.header.Hash
}

// ParentHash returns the parent ledger hash.
func (l *Ledger) ParentHash() [32]byte {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.header.ParentHash
}

// CloseTime returns when the ledger closed.
func (l *Ledger) CloseTime() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.header.CloseTime
}

// IsClosed reports whether the ledger is closed.
func (l *Ledger) IsClosed() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.header.Closed
}

// IsValidated reports whether the ledger is validated.
func (l *Ledger) IsValidated() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.header.Validated
}

// EntryCount returns the number of state entries.
func (l *Ledger) EntryCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.state)
}

// Entries returns the state map as a sorted slice for persistence.
func (l *Ledger) Entries() []StateEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]StateEntry, 0, len(l.state))
	for key, item := range l.state {
		data := make([]byte, len(item.data))
		copy(data, item.data)
		entries = append(entries, StateEntry{Key: key, EntryType: item.entryType, Data: data})
	}
	sort.Slice(entries, func(i, j int) bool {
		return compareKeys(entries[i].Key, entries[j].Key) < 0
	})
	return entries
}
