package sle

import (
	"encoding/binary"
	"fmt"
)

// poolDataSize is the serialized size of a Pool entry:
// AssetA (32) + AssetB (32) + ReserveA (32) + ReserveB (32) +
// ShareMint (32) + FeeNumerator (8) + FeeDenominator (8) +
// Authority (20) + Bump (1).
const poolDataSize = 32*5 + 8*2 + 20 + 1

// PoolData holds a Pool ledger entry. Reserve balances and share supply are
// never stored here: they live in the referenced token accounts and the
// share mint and are read fresh on every operation.
type PoolData struct {
	AssetA         [32]byte // mint ID, canonically first in the pair
	AssetB         [32]byte // mint ID, canonically second
	ReserveA       [32]byte // token account key custodying asset A
	ReserveB       [32]byte // token account key custodying asset B
	ShareMint      [32]byte // mint ID of the pool share token
	FeeNumerator   uint64
	FeeDenominator uint64
	Authority      [20]byte // derived signing authority over reserves and share mint
	Bump           uint8    // derivation nonce reproducing Authority
}

// FeeRatio returns the fee as a display ratio. Never used in value math.
func (p *PoolData) FeeRatio() float64 {
	if p.FeeDenominator == 0 {
		return 0
	}
	return float64(p.FeeNumerator) / float64(p.FeeDenominator)
}

// ReserveKeyFor returns the reserve token-account key holding the given
// mint, or false when the mint is not part of the pair.
func (p *PoolData) ReserveKeyFor(mintID [32]byte) ([32]byte, bool) {
	switch mintID {
	case p.AssetA:
		return p.ReserveA, true
	case p.AssetB:
		return p.ReserveB, true
	default:
		return [32]byte{}, false
	}
}

// ParsePool deserializes a Pool entry from binary data.
func ParsePool(data []byte) (*PoolData, error) {
	if len(data) < poolDataSize {
		return nil, fmt.Errorf("pool data too short: %d bytes", len(data))
	}

	pool := &PoolData{}
	offset := 0

	copy(pool.AssetA[:], data[offset:offset+32])
	offset += 32

	copy(pool.AssetB[:], data[offset:offset+32])
	offset += 32

	copy(pool.ReserveA[:], data[offset:offset+32])
	offset += 32

	copy(pool.ReserveB[:], data[offset:offset+32])
	offset += 32

	copy(pool.ShareMint[:], data[offset:offset+32])
	offset += 32

	pool.FeeNumerator = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8

	pool.FeeDenominator = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8

	copy(pool.Authority[:], data[offset:offset+20])
	offset += 20

	pool.Bump = data[offset]

	return pool, nil
}

// SerializePool serializes a Pool entry to binary.
func SerializePool(pool *PoolData) ([]byte, error) {
	data := make([]byte, poolDataSize)
	offset := 0

	copy(data[offset:offset+32], pool.AssetA[:])
	offset += 32

	copy(data[offset:offset+32], pool.AssetB[:])
	offset += 32

	copy(data[offset:offset+32], pool.ReserveA[:])
	offset += 32

	copy(data[offset:offset+32], pool.ReserveB[:])
	offset += 32

	copy(data[offset:offset+32], pool.ShareMint[:])
	offset += 32

	binary.BigEndian.PutUint64(data[offset:offset+8], pool.FeeNumerator)
	offset += 8

	binary.BigEndian.PutUint64(data[offset:offset+8], pool.FeeDenominator)
	offset += 8

	copy(data[offset:offset+20], pool.Authority[:])
	offset += 20

	data[offset] = pool.Bump

	return data, nil
}
