// Package ledgerstore persists closed ledgers and their transactions in a
// key-value backend. Records are CBOR encoded and wrapped in a small
// envelope that names the compressor and the raw size, so snapshots can
// be stored with lz4 block compression and read back without guessing
// buffer sizes.
package ledgerstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/LeJamon/goAMMd/internal/storage/compression"
	"github.com/LeJamon/goAMMd/internal/storage/database"
)

var (
	// ErrLedgerNotFound is returned when no ledger exists for a sequence or hash
	ErrLedgerNotFound = errors.New("ledger not found in store")

	// ErrTransactionNotFound is returned when no transaction exists for a hash
	ErrTransactionNotFound = errors.New("transaction not found in store")

	// ErrEmptyStore is returned when the store holds no ledgers yet
	ErrEmptyStore = errors.New("ledger store is empty")
)

// Key prefixes. Sequence keys are big-endian so iteration order matches
// ledger order.
var (
	prefixLedger = []byte("l/")
	prefixHash   = []byte("h/")
	prefixTx     = []byte("t/")
	keyLatest    = []byte("meta/latest")
)

// StateEntry is one ledger state entry in a snapshot.
type StateEntry struct {
	Key       []byte `codec:"k"`
	EntryType uint16 `codec:"e"`
	Data      []byte `codec:"d"`
}

// SnapshotRecord is a closed ledger with its full state.
type SnapshotRecord struct {
	Seq        uint32       `codec:"s"`
	Hash       []byte       `codec:"h"`
	ParentHash []byte       `codec:"p"`
	StateHash  []byte       `codec:"a"`
	CloseTime  int64        `codec:"c"`
	TxCount    uint32       `codec:"n"`
	State      []StateEntry `codec:"st"`
}

// TxRecord is a processed transaction with its result and metadata.
type TxRecord struct {
	Hash      []byte `codec:"h"`
	LedgerSeq uint32 `codec:"s"`
	TxIndex   uint32 `codec:"i"`
	Result    string `codec:"r"`
	TxJSON    []byte `codec:"t"`
	MetaJSON  []byte `codec:"m"`
}

// Store reads and writes ledger snapshots and transactions.
type Store struct {
	db         database.DB
	compressor compression.Compressor
}

// New creates a store over db using the named compressor.
func New(db database.DB, compressorName string) (*Store, error) {
	comp, err := compression.Get(compressorName)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, compressor: comp}, nil
}

// SaveLedger writes a snapshot, its hash index, its transactions and the
// latest-sequence marker in one batch.
func (s *Store) SaveLedger(ctx context.Context, snapshot *SnapshotRecord, txs []*TxRecord) error {
	if len(snapshot.Hash) != 32 {
		return fmt.Errorf("snapshot hash must be 32 bytes, got %d", len(snapshot.Hash))
	}

	ledgerBlob, err := s.encodeRecord(snapshot)
	if err != nil {
		return fmt.Errorf("encode ledger %d: %w", snapshot.Seq, err)
	}

	seqKey := makeSeqKey(prefixLedger, snapshot.Seq)

	ops := []database.BatchOperation{
		{Type: database.BatchPut, Key: seqKey, Value: ledgerBlob},
		{Type: database.BatchPut, Key: makeHashKey(prefixHash, snapshot.Hash), Value: seqBytes(snapshot.Seq)},
		{Type: database.BatchPut, Key: keyLatest, Value: seqBytes(snapshot.Seq)},
	}

	for _, tx := range txs {
		if len(tx.Hash) != 32 {
			return fmt.Errorf("transaction hash must be 32 bytes, got %d", len(tx.Hash))
		}
		txBlob, err := s.encodeRecord(tx)
		if err != nil {
			return fmt.Errorf("encode transaction %x: %w", tx.Hash, err)
		}
		ops = append(ops, database.BatchOperation{
			Type:  database.BatchPut,
			Key:   makeHashKey(prefixTx, tx.Hash),
			Value: txBlob,
		})
	}

	return s.db.Batch(ctx, ops)
}

// LoadLedger reads the snapshot stored for a sequence.
func (s *Store) LoadLedger(ctx context.Context, seq uint32) (*SnapshotRecord, error) {
	blob, err := s.db.Read(ctx, makeSeqKey(prefixLedger, seq))
	if err != nil {
		if errors.Is(err, database.ErrKeyNotFound) {
			return nil, ErrLedgerNotFound
		}
		return nil, err
	}

	var snapshot SnapshotRecord
	if err := s.decodeRecord(blob, &snapshot); err != nil {
		return nil, fmt.Errorf("decode ledger %d: %w", seq, err)
	}
	return &snapshot, nil
}

// LoadLedgerByHash resolves a ledger hash to its sequence, then loads it.
func (s *Store) LoadLedgerByHash(ctx context.Context, hash []byte) (*SnapshotRecord, error) {
	seqValue, err := s.db.Read(ctx, makeHashKey(prefixHash, hash))
	if err != nil {
		if errors.Is(err, database.ErrKeyNotFound) {
			return nil, ErrLedgerNotFound
		}
		return nil, err
	}
	return s.LoadLedger(ctx, binary.BigEndian.Uint32(seqValue))
}

// LoadTransaction reads the record stored for a transaction hash.
func (s *Store) LoadTransaction(ctx context.Context, hash []byte) (*TxRecord, error) {
	blob, err := s.db.Read(ctx, makeHashKey(prefixTx, hash))
	if err != nil {
		if errors.Is(err, database.ErrKeyNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	var tx TxRecord
	if err := s.decodeRecord(blob, &tx); err != nil {
		return nil, fmt.Errorf("decode transaction %x: %w", hash, err)
	}
	return &tx, nil
}

// LatestSequence returns the sequence of the most recently saved ledger.
func (s *Store) LatestSequence(ctx context.Context) (uint32, error) {
	value, err := s.db.Read(ctx, keyLatest)
	if err != nil {
		if errors.Is(err, database.ErrKeyNotFound) {
			return 0, ErrEmptyStore
		}
		return 0, err
	}
	return binary.BigEndian.Uint32(value), nil
}

// ForEachLedger walks stored snapshots in sequence order over [from, to].
// The callback returns false to stop early.
func (s *Store) ForEachLedger(ctx context.Context, from, to uint32, fn func(*SnapshotRecord) bool) error {
	if to < from {
		return nil
	}

	// The KV iterator upper bound is exclusive. For the maximum sequence
	// the bound is the last key plus a trailing zero byte.
	var upper []byte
	if to == ^uint32(0) {
		upper = append(makeSeqKey(prefixLedger, to), 0)
	} else {
		upper = makeSeqKey(prefixLedger, to+1)
	}

	iter, err := s.db.Iterator(ctx, makeSeqKey(prefixLedger, from), upper)
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.Next() {
		var snapshot SnapshotRecord
		if err := s.decodeRecord(iter.Value(), &snapshot); err != nil {
			return err
		}
		if !fn(&snapshot) {
			break
		}
	}
	return iter.Error()
}

func makeSeqKey(prefix []byte, seq uint32) []byte {
	key := make([]byte, len(prefix)+4)
	copy(key, prefix)
	binary.BigEndian.PutUint32(key[len(prefix):], seq)
	return key
}

func makeHashKey(prefix, hash []byte) []byte {
	key := make([]byte, len(prefix)+len(hash))
	copy(key, prefix)
	copy(key[len(prefix):], hash)
	return key
}

func seqBytes(seq uint32) []byte {
	value := make([]byte, 4)
	binary.BigEndian.PutUint32(value, seq)
	return value
}
