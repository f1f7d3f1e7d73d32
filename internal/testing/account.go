package testing

import (
	"github.com/LeJamon/goAMMd/internal/core/ledger/genesis"
	"github.com/LeJamon/goAMMd/internal/core/ledger/sle"
	"github.com/LeJamon/goAMMd/internal/core/tx/pool"
	crypto "github.com/LeJamon/goAMMd/internal/crypto/common"
)

// ShareDecimals is the decimal scale of pool share mints, re-exported so
// tests building share mints do not need the pool package for one constant.
const ShareDecimals = pool.ShareDecimals

// Account represents a test account. The ID is derived from the name, so
// the same name always produces the same account and tests stay
// reproducible.
type Account struct {
	// Name is a human-readable identifier for the account (used for debugging).
	Name string

	// Address is the 40-hex-character account ID string.
	Address string

	// ID is the 20-byte account ID.
	ID [20]byte
}

// NewAccount creates a test account derived deterministically from the name.
func NewAccount(name string) *Account {
	digest := crypto.Sha512Half([]byte("ammd.test.account." + name))
	var id [20]byte
	copy(id[:], digest[:20])

	return &Account{
		Name:    name,
		Address: sle.EncodeAccountID(id),
		ID:      id,
	}
}

// AccountFromID wraps an existing 20-byte ID as a test account. Useful for
// asserting on derived accounts such as pool authorities.
func AccountFromID(name string, id [20]byte) *Account {
	return &Account{
		Name:    name,
		Address: sle.EncodeAccountID(id),
		ID:      id,
	}
}

// AuthorityAccount returns the well-known genesis authority. It owns the
// default mints, so tests that need an issuer-side account use it.
func AuthorityAccount() *Account {
	return AccountFromID("authority", genesis.AuthorityID())
}

// String implements the Stringer interface for debugging.
func (a *Account) String() string {
	return a.Name + " (" + a.Address + ")"
}

// Mint represents a test token mint. The ID derivation matches the one
// genesis uses for development mints, so NewMint("base", 6) refers to the
// same mint the default genesis creates.
type Mint struct {
	// Name is a human-readable identifier for the mint.
	Name string

	// Address is the 64-hex-character mint ID string.
	Address string

	// ID is the 32-byte mint ID.
	ID [32]byte

	// Decimals is the mint's display scale.
	Decimals uint8
}

// NewMint creates a test mint derived deterministically from the name.
func NewMint(name string, decimals uint8) *Mint {
	address := genesis.DevMintID(name)
	id, err := sle.DecodeMintID(address)
	if err != nil {
		panic("derived mint ID is malformed: " + err.Error())
	}

	return &Mint{
		Name:     name,
		Address:  address,
		ID:       id,
		Decimals: decimals,
	}
}

// Seed returns the genesis seed entry for this mint, for tests that build
// custom genesis configurations.
func (m *Mint) Seed() genesis.MintSeed {
	return genesis.MintSeed{ID: m.Address, Decimals: m.Decimals}
}

// String implements the Stringer interface for debugging.
func (m *Mint) String() string {
	return m.Name + " (" + m.Address + ")"
}
