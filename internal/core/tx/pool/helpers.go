package pool

import (
	"github.com/LeJamon/goAMMd/internal/core/amount"
	"github.com/LeJamon/goAMMd/internal/core/ledger/entry"
	"github.com/LeJamon/goAMMd/internal/core/ledger/keylet"
	"github.com/LeJamon/goAMMd/internal/core/ledger/sle"
	"github.com/LeJamon/goAMMd/internal/core/tx"
)

// loadPool reads and parses the pool entry for an asset pair.
func loadPool(view tx.LedgerView, assetA, assetB [32]byte) (*sle.PoolData, tx.Result) {
	raw, err := view.Read(keylet.Pool(assetA, assetB))
	if err != nil {
		return nil, tx.TefINTERNAL
	}
	if raw == nil {
		return nil, TerNO_POOL
	}
	pool, err := sle.ParsePool(raw)
	if err != nil {
		return nil, tx.TefINTERNAL
	}
	return pool, tx.TesSUCCESS
}

// loadMint reads and parses a token mint entry.
func loadMint(view tx.LedgerView, mintID [32]byte) (*sle.MintData, tx.Result) {
	raw, err := view.Read(keylet.Mint(mintID))
	if err != nil {
		return nil, tx.TefINTERNAL
	}
	if raw == nil {
		return nil, TerNO_MINT
	}
	mint, err := sle.ParseMint(raw)
	if err != nil {
		return nil, tx.TefINTERNAL
	}
	return mint, tx.TesSUCCESS
}

// saveMint serializes and writes back an existing mint entry.
func saveMint(view tx.LedgerView, mint *sle.MintData) tx.Result {
	raw, err := sle.SerializeMint(mint)
	if err != nil {
		return tx.TefINTERNAL
	}
	if err := view.Update(keylet.Mint(mint.ID), raw); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}

// reserveKeylet rebuilds the keylet for a reserve account key recorded in a
// pool entry.
func reserveKeylet(key [32]byte) keylet.Keylet {
	return keylet.Keylet{Type: entry.TypeTokenAccount, Key: key}
}

// loadReserve reads the token account at a reserve key recorded in the pool.
// A missing reserve account is a ledger inconsistency, not a caller error.
func loadReserve(view tx.LedgerView, key [32]byte) (*sle.TokenAccountData, tx.Result) {
	raw, err := view.Read(reserveKeylet(key))
	if err != nil || raw == nil {
		return nil, tx.TefINTERNAL
	}
	acct, err := sle.ParseTokenAccount(raw)
	if err != nil {
		return nil, tx.TefINTERNAL
	}
	return acct, tx.TesSUCCESS
}

// tokenBalance reads an owner's balance of a mint. Accounts that do not
// exist read as zero.
func tokenBalance(view tx.LedgerView, owner [20]byte, mintID [32]byte) uint64 {
	raw, err := view.Read(keylet.TokenAccount(owner, mintID))
	if err != nil || raw == nil {
		return 0
	}
	acct, err := sle.ParseTokenAccount(raw)
	if err != nil {
		return 0
	}
	return acct.Balance
}

// creditTokens adds amount to the (owner, mint) token account, creating the
// account on first use. Zero credits are no-ops and create nothing.
func creditTokens(view tx.LedgerView, owner [20]byte, mintID [32]byte, amt uint64) tx.Result {
	if amt == 0 {
		return tx.TesSUCCESS
	}

	key := keylet.TokenAccount(owner, mintID)
	raw, err := view.Read(key)
	if err != nil {
		return tx.TefINTERNAL
	}
	if raw == nil {
		acct := &sle.TokenAccountData{Owner: owner, Mint: mintID, Balance: amt}
		data, err := sle.SerializeTokenAccount(acct)
		if err != nil {
			return tx.TefINTERNAL
		}
		if err := view.Insert(key, data); err != nil {
			return tx.TefINTERNAL
		}
		return tx.TesSUCCESS
	}

	acct, err := sle.ParseTokenAccount(raw)
	if err != nil {
		return tx.TefINTERNAL
	}
	newBalance, err := amount.CheckedAdd(acct.Balance, amt)
	if err != nil {
		return TecARITHMETIC_OVERFLOW
	}
	acct.Balance = newBalance

	data, err := sle.SerializeTokenAccount(acct)
	if err != nil {
		return tx.TefINTERNAL
	}
	if err := view.Update(key, data); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}

// debitTokens removes amount from the (owner, mint) token account. The
// account must exist and hold at least amount.
func debitTokens(view tx.LedgerView, owner [20]byte, mintID [32]byte, amt uint64) tx.Result {
	if amt == 0 {
		return tx.TesSUCCESS
	}

	key := keylet.TokenAccount(owner, mintID)
	raw, err := view.Read(key)
	if err != nil {
		return tx.TefINTERNAL
	}
	if raw == nil {
		return TerNO_ACCOUNT
	}
	acct, err := sle.ParseTokenAccount(raw)
	if err != nil {
		return tx.TefINTERNAL
	}

	newBalance, err := amount.CheckedSub(acct.Balance, amt)
	if err != nil {
		return TecUNFUNDED
	}
	acct.Balance = newBalance

	data, err := sle.SerializeTokenAccount(acct)
	if err != nil {
		return tx.TefINTERNAL
	}
	if err := view.Update(key, data); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}

// transferTokens moves amount of one mint between owners. The destination
// account is created on first use.
func transferTokens(view tx.LedgerView, mintID [32]byte, from, to [20]byte, amt uint64) tx.Result {
	if amt == 0 {
		return tx.TesSUCCESS
	}
	if result := debitTokens(view, from, mintID, amt); result != tx.TesSUCCESS {
		return result
	}
	return creditTokens(view, to, mintID, amt)
}

// mintTokens issues new supply of a mint to an owner. The acting authority
// must hold the mint.
func mintTokens(view tx.LedgerView, mintID [32]byte, to [20]byte, amt uint64, authority [20]byte) tx.Result {
	if amt == 0 {
		return tx.TesSUCCESS
	}

	mint, result := loadMint(view, mintID)
	if result != tx.TesSUCCESS {
		return result
	}
	if mint.Authority != authority {
		return TecNO_PERMISSION
	}

	newSupply, err := amount.CheckedAdd(mint.Supply, amt)
	if err != nil {
		return TecARITHMETIC_OVERFLOW
	}
	mint.Supply = newSupply

	if result := saveMint(view, mint); result != tx.TesSUCCESS {
		return result
	}
	return creditTokens(view, to, mintID, amt)
}

// burnTokens destroys supply of a mint held by holder. The burn is permitted
// when the acting authority is the holder or the mint authority.
func burnTokens(view tx.LedgerView, mintID [32]byte, holder [20]byte, amt uint64, authority [20]byte) tx.Result {
	if amt == 0 {
		return tx.TesSUCCESS
	}

	mint, result := loadMint(view, mintID)
	if result != tx.TesSUCCESS {
		return result
	}
	if authority != holder && authority != mint.Authority {
		return TecNO_PERMISSION
	}

	if result := debitTokens(view, holder, mintID, amt); result != tx.TesSUCCESS {
		return result
	}

	// Supply can never be below the holdings just debited
	newSupply, err := amount.CheckedSub(mint.Supply, amt)
	if err != nil {
		return tx.TefINTERNAL
	}
	mint.Supply = newSupply

	return saveMint(view, mint)
}
