// Package header defines the ledger header and its hash.
package header

import (
	"encoding/binary"
	"time"

	crypto "github.com/LeJamon/goAMMd/internal/crypto/common"
)

// Header describes one ledger. Sequence 1 is the genesis ledger; every
// later ledger links to its parent by hash.
type Header struct {
	// Sequence is the ledger index, starting at 1 for genesis
	Sequence uint32

	// Hash is the ledger hash, set when the ledger closes
	Hash [32]byte

	// ParentHash is the hash of the previous ledger
	ParentHash [32]byte

	// StateHash covers the full state map at close
	StateHash [32]byte

	// TxHash covers the transactions applied in this ledger
	TxHash [32]byte

	// CloseTime is when the ledger closed (zero while open)
	CloseTime time.Time

	// ParentCloseTime is when the parent ledger closed
	ParentCloseTime time.Time

	// TxCount is the number of transactions applied
	TxCount uint32

	// Closed means the transaction set is final
	Closed bool

	// Validated is set once and never cleared
	Validated bool
}

// ComputeHash computes the ledger hash over the header fields that are
// fixed at close. The prefix keeps ledger hashes from colliding with
// transaction hashes built over the same function.
func (h *Header) ComputeHash() [32]byte {
	var seq [4]byte
	binary.BigEndian.PutUint32(seq[:], h.Sequence)

	var txCount [4]byte
	binary.BigEndian.PutUint32(txCount[:], h.TxCount)

	var closeTime [8]byte
	binary.BigEndian.PutUint64(closeTime[:], uint64(h.CloseTime.Unix()))

	prefix := []byte{'L', 'G', 'R', 0x00}
	return crypto.Sha512Half(prefix, seq[:], h.ParentHash[:], h.StateHash[:], h.TxHash[:], txCount[:], closeTime[:])
}
