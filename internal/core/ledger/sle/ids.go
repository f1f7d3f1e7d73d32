// Package sle defines the serialized ledger entries of the pool daemon:
// token mints, token accounts, and pool records. Entries are stored as
// fixed-layout big-endian binary and addressed by keylet.
package sle

import (
	"encoding/hex"
	"errors"
	"strings"
)

var (
	ErrBadAccountID = errors.New("account ID must be 40 hex characters")
	ErrBadMintID    = errors.New("mint ID must be 64 hex characters")
)

// EncodeAccountID encodes a 20-byte account ID to its hex string form.
func EncodeAccountID(accountID [20]byte) string {
	return strings.ToUpper(hex.EncodeToString(accountID[:]))
}

// DecodeAccountID decodes a hex string to a 20-byte account ID.
func DecodeAccountID(s string) ([20]byte, error) {
	var result [20]byte
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 20 {
		return result, ErrBadAccountID
	}
	copy(result[:], raw)
	return result, nil
}

// EncodeMintID encodes a 32-byte mint ID to its hex string form.
func EncodeMintID(mintID [32]byte) string {
	return strings.ToUpper(hex.EncodeToString(mintID[:]))
}

// DecodeMintID decodes a hex string to a 32-byte mint ID.
func DecodeMintID(s string) ([32]byte, error) {
	var result [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 32 {
		return result, ErrBadMintID
	}
	copy(result[:], raw)
	return result, nil
}

// CompareAccountIDs compares two account IDs lexicographically.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func CompareAccountIDs(a, b [20]byte) int {
	for i := 0; i < 20; i++ {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}
