package sle

import (
	"encoding/binary"
	"fmt"
)

// mintDataSize is the serialized size of a TokenMint entry:
// ID (32) + Authority (20) + Supply (8) + Decimals (1).
const mintDataSize = 32 + 20 + 8 + 1

// MintData holds a TokenMint ledger entry: the definition of one fungible
// token. Supply is the live circulating amount and changes on every mint
// and burn.
type MintData struct {
	ID        [32]byte
	Authority [20]byte
	Supply    uint64
	Decimals  uint8
}

// ParseMint deserializes a TokenMint entry from binary data.
func ParseMint(data []byte) (*MintData, error) {
	if len(data) < mintDataSize {
		return nil, fmt.Errorf("mint data too short: %d bytes", len(data))
	}

	mint := &MintData{}
	offset := 0

	copy(mint.ID[:], data[offset:offset+32])
	offset += 32

	copy(mint.Authority[:], data[offset:offset+20])
	offset += 20

	mint.Supply = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8

	mint.Decimals = data[offset]

	return mint, nil
}

// SerializeMint serializes a TokenMint entry to binary.
func SerializeMint(mint *MintData) ([]byte, error) {
	data := make([]byte, mintDataSize)
	offset := 0

	copy(data[offset:offset+32], mint.ID[:])
	offset += 32

	copy(data[offset:offset+20], mint.Authority[:])
	offset += 20

	binary.BigEndian.PutUint64(data[offset:offset+8], mint.Supply)
	offset += 8

	data[offset] = mint.Decimals

	return data, nil
}
