// Package genesis builds ledger 1. In standalone mode the genesis ledger
// seeds the token mints and funded accounts that make the daemon usable
// without any external setup.
package genesis

import (
	"fmt"
	"time"

	"github.com/LeJamon/goAMMd/internal/core/amount"
	"github.com/LeJamon/goAMMd/internal/core/ledger"
	"github.com/LeJamon/goAMMd/internal/core/ledger/keylet"
	"github.com/LeJamon/goAMMd/internal/core/ledger/sle"
	crypto "github.com/LeJamon/goAMMd/internal/crypto/common"
)

// MintSeed declares one token mint created at genesis.
type MintSeed struct {
	// ID is the 64-hex-character mint identifier
	ID string `mapstructure:"id" toml:"id"`

	// Decimals is the mint's display scale (0-19)
	Decimals uint8 `mapstructure:"decimals" toml:"decimals"`

	// Authority may override the genesis authority (40 hex characters)
	Authority string `mapstructure:"authority" toml:"authority"`
}

// BalanceSeed funds one account with an initial balance at genesis.
type BalanceSeed struct {
	// Account is the 40-hex-character account ID
	Account string `mapstructure:"account" toml:"account"`

	// Mint is the mint being funded
	Mint string `mapstructure:"mint" toml:"mint"`

	// Balance is the starting balance
	Balance uint64 `mapstructure:"balance" toml:"balance"`
}

// Config declares the genesis state.
type Config struct {
	// CloseTime stamps the genesis ledger. Zero means 2024-01-01 UTC,
	// so default genesis ledgers hash identically across runs.
	CloseTime time.Time `mapstructure:"-" toml:"-"`

	// Mints created at genesis
	Mints []MintSeed `mapstructure:"mints" toml:"mints"`

	// Accounts funded at genesis
	Accounts []BalanceSeed `mapstructure:"accounts" toml:"accounts"`
}

// DefaultConfig seeds two development mints so a standalone node can
// create pools and trade immediately.
func DefaultConfig() Config {
	return Config{
		Mints: []MintSeed{
			{ID: DevMintID("base"), Decimals: 6},
			{ID: DevMintID("quote"), Decimals: 9},
		},
	}
}

// AuthorityID returns the well-known genesis authority account. It owns
// the default mints and any seed balances are minted through it.
func AuthorityID() [20]byte {
	digest := crypto.Sha512Half([]byte("ammd.genesis.authority"))
	var id [20]byte
	copy(id[:], digest[:20])
	return id
}

// Authority returns the genesis authority in its hex string form.
func Authority() string {
	return sle.EncodeAccountID(AuthorityID())
}

// DevMintID derives a stable mint ID from a short name. Development and
// test setups use it so mint IDs stay recognizable across runs.
func DevMintID(name string) string {
	id := crypto.Sha512Half([]byte("ammd.genesis.mint." + name))
	return sle.EncodeMintID(id)
}

// Create builds, closes and validates the genesis ledger.
func Create(config Config) (*ledger.Ledger, error) {
	closeTime := config.CloseTime
	if closeTime.IsZero() {
		closeTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	l := ledger.NewGenesis(closeTime)
	authority := AuthorityID()

	supplies := make(map[[32]byte]uint64, len(config.Mints))
	decimals := make(map[[32]byte]uint8, len(config.Mints))

	for _, seed := range config.Mints {
		mintID, err := sle.DecodeMintID(seed.ID)
		if err != nil {
			return nil, fmt.Errorf("genesis mint %q: %w", seed.ID, err)
		}
		if seed.Decimals > amount.MaxDecimals {
			return nil, fmt.Errorf("genesis mint %q: decimals %d out of range", seed.ID, seed.Decimals)
		}

		mintAuthority := authority
		if seed.Authority != "" {
			mintAuthority, err = sle.DecodeAccountID(seed.Authority)
			if err != nil {
				return nil, fmt.Errorf("genesis mint %q authority: %w", seed.ID, err)
			}
		}

		supplies[mintID] = 0
		decimals[mintID] = seed.Decimals

		data, err := sle.SerializeMint(&sle.MintData{
			ID:        mintID,
			Authority: mintAuthority,
			Supply:    0,
			Decimals:  seed.Decimals,
		})
		if err != nil {
			return nil, err
		}
		if err := l.Insert(keylet.Mint(mintID), data); err != nil {
			return nil, fmt.Errorf("genesis mint %q: %w", seed.ID, err)
		}
	}

	for _, seed := range config.Accounts {
		owner, err := sle.DecodeAccountID(seed.Account)
		if err != nil {
			return nil, fmt.Errorf("genesis account %q: %w", seed.Account, err)
		}
		mintID, err := sle.DecodeMintID(seed.Mint)
		if err != nil {
			return nil, fmt.Errorf("genesis account %q mint: %w", seed.Account, err)
		}
		if _, ok := supplies[mintID]; !ok {
			return nil, fmt.Errorf("genesis account %q funds undeclared mint %s", seed.Account, seed.Mint)
		}

		data, err := sle.SerializeTokenAccount(&sle.TokenAccountData{
			Owner:   owner,
			Mint:    mintID,
			Balance: seed.Balance,
		})
		if err != nil {
			return nil, err
		}
		if err := l.Insert(keylet.TokenAccount(owner, mintID), data); err != nil {
			return nil, fmt.Errorf("genesis account %q: %w", seed.Account, err)
		}

		supplies[mintID] += seed.Balance
	}

	// Seeded balances count as issued supply
	for mintID, supply := range supplies {
		if supply == 0 {
			continue
		}
		raw, err := l.Read(keylet.Mint(mintID))
		if err != nil || raw == nil {
			return nil, fmt.Errorf("genesis mint lookup failed")
		}
		mint, err := sle.ParseMint(raw)
		if err != nil {
			return nil, err
		}
		mint.Supply = supply
		data, err := sle.SerializeMint(mint)
		if err != nil {
			return nil, err
		}
		if err := l.Update(keylet.Mint(mintID), data); err != nil {
			return nil, err
		}
	}

	if err := l.Close(closeTime); err != nil {
		return nil, err
	}
	if err := l.SetValidated(); err != nil {
		return nil, err
	}
	return l, nil
}
