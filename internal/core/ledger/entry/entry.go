package entry

import (
	"errors"
	"fmt"
)

// Type represents a ledger entry type
type Type uint16

// All known ledger entry types
const (
	// Token state
	TypeTokenMint    Type = 0x004d // Fungible token definition (supply, decimals, authority)
	TypeTokenAccount Type = 0x0054 // Per-owner token balance

	// Pool state
	TypePool Type = 0x0070 // Constant-product pool record

	// System singletons
	TypeLedgerHashes Type = 0x0068 // Historical hashes (singleton)
)

// String returns the string representation of the Type
func (t Type) String() string {
	switch t {
	case TypeTokenMint:
		return "TokenMint"
	case TypeTokenAccount:
		return "TokenAccount"
	case TypePool:
		return "Pool"
	case TypeLedgerHashes:
		return "LedgerHashes"
	default:
		return fmt.Sprintf("Unknown(0x%04x)", uint16(t))
	}
}

// Errors returned by entry operations
var (
	ErrInvalidEntry = errors.New("invalid entry")
	ErrInvalidHash  = errors.New("invalid hash")
)
