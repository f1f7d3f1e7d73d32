package sle

import (
	"encoding/binary"
	"fmt"
)

// tokenAccountDataSize is the serialized size of a TokenAccount entry:
// Owner (20) + Mint (32) + Balance (8).
const tokenAccountDataSize = 20 + 32 + 8

// TokenAccountData holds a TokenAccount ledger entry: one owner's balance
// in one mint.
type TokenAccountData struct {
	Owner   [20]byte
	Mint    [32]byte
	Balance uint64
}

// ParseTokenAccount deserializes a TokenAccount entry from binary data.
func ParseTokenAccount(data []byte) (*TokenAccountData, error) {
	if len(data) < tokenAccountDataSize {
		return nil, fmt.Errorf("token account data too short: %d bytes", len(data))
	}

	account := &TokenAccountData{}
	offset := 0

	copy(account.Owner[:], data[offset:offset+20])
	offset += 20

	copy(account.Mint[:], data[offset:offset+32])
	offset += 32

	account.Balance = binary.BigEndian.Uint64(data[offset : offset+8])

	return account, nil
}

// SerializeTokenAccount serializes a TokenAccount entry to binary.
func SerializeTokenAccount(account *TokenAccountData) ([]byte, error) {
	data := make([]byte, tokenAccountDataSize)
	offset := 0

	copy(data[offset:offset+20], account.Owner[:])
	offset += 20

	copy(data[offset:offset+32], account.Mint[:])
	offset += 32

	binary.BigEndian.PutUint64(data[offset:offset+8], account.Balance)

	return data, nil
}
