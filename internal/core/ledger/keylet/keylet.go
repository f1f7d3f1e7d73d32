package keylet

import (
	"github.com/LeJamon/goAMMd/internal/core/ledger/entry"
	crypto "github.com/LeJamon/goAMMd/internal/crypto/common"
)

// Space identifiers for keylet generation.
// Each entry family hashes under its own namespace byte so keys for
// different families can never collide.
const (
	spaceMint         uint16 = 'm' // Token mint
	spaceTokenAccount uint16 = 't' // Token account (owner, mint)
	spacePool         uint16 = 'p' // Pool record
	spaceAuthority    uint16 = 'A' // Pool authority derivation
	spaceSkip         uint16 = 's' // Skip list / ledger hashes
)

// Keylet represents an addressable location in the ledger state.
// It combines a type identifier with a 256-bit key.
type Keylet struct {
	Type entry.Type
	Key  [32]byte
}

// indexHash computes a keylet key by hashing the space and provided data.
// The key is the first half of a SHA-512 digest.
func indexHash(space uint16, data ...[]byte) [32]byte {
	inputs := make([][]byte, 0, len(data)+1)
	inputs = append(inputs, []byte{byte(space >> 8), byte(space)})
	inputs = append(inputs, data...)
	return crypto.Sha512Half(inputs...)
}

// Mint returns the keylet for a token mint entry.
func Mint(mintID [32]byte) Keylet {
	return Keylet{
		Type: entry.TypeTokenMint,
		Key:  indexHash(spaceMint, mintID[:]),
	}
}

// TokenAccount returns the keylet for an owner's balance in a given mint.
func TokenAccount(owner [20]byte, mintID [32]byte) Keylet {
	return Keylet{
		Type: entry.TypeTokenAccount,
		Key:  indexHash(spaceTokenAccount, owner[:], mintID[:]),
	}
}

// Pool returns the keylet for the pool over an asset pair. The pair is
// ordered canonically so (a, b) and (b, a) address the same pool.
func Pool(assetA, assetB [32]byte) Keylet {
	low, high := OrderedPair(assetA, assetB)
	return Keylet{
		Type: entry.TypePool,
		Key:  indexHash(spacePool, low[:], high[:]),
	}
}

// PoolAuthority derives the pool's signing authority from its key and a
// bump byte. The authority is the first 20 bytes of the derivation hash.
func PoolAuthority(poolKey [32]byte, bump uint8) [20]byte {
	h := indexHash(spaceAuthority, poolKey[:], []byte{bump})
	var authority [20]byte
	copy(authority[:], h[:20])
	return authority
}

// FindPoolAuthority searches bump values from 255 downward for a usable
// authority derivation. A derivation is rejected only if it produces the
// zero account, which is reserved.
func FindPoolAuthority(poolKey [32]byte) ([20]byte, uint8) {
	for bump := 255; bump >= 0; bump-- {
		authority := PoolAuthority(poolKey, uint8(bump))
		if authority != ([20]byte{}) {
			return authority, uint8(bump)
		}
	}
	// Unreachable in practice: 256 hashes cannot all be zero.
	return [20]byte{}, 0
}

// LedgerHashes returns the keylet for the skip list / ledger hashes entry.
func LedgerHashes() Keylet {
	return Keylet{
		Type: entry.TypeLedgerHashes,
		Key:  indexHash(spaceSkip),
	}
}

// OrderedPair returns the two mint IDs in canonical (ascending) order.
func OrderedPair(a, b [32]byte) ([32]byte, [32]byte) {
	if CompareMintIDs(a, b) <= 0 {
		return a, b
	}
	return b, a
}

// CompareMintIDs compares two mint IDs lexicographically.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func CompareMintIDs(a, b [32]byte) int {
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
