package pool

import (
	"github.com/LeJamon/goAMMd/internal/core/tx"
)

// Pool accounting constants
const (
	// BootstrapShares is the fixed issue for the first deposit into an
	// empty pool: 1.0 share token at ShareDecimals.
	BootstrapShares uint64 = 1_000_000

	// ShareDecimals is the decimal scale of every pool share mint.
	ShareDecimals uint8 = 6
)

// Transaction flags
const (
	// Pool transactions define no flags
	tfPoolCreateMask   uint32 = 0xFFFFFFFF
	tfPoolDepositMask  uint32 = 0xFFFFFFFF
	tfPoolSwapMask     uint32 = 0xFFFFFFFF
	tfPoolWithdrawMask uint32 = 0xFFFFFFFF
)

// Result code aliases for pool-specific codes
var (
	TecSLIPPAGE_EXCEEDED   = tx.TecSLIPPAGE_EXCEEDED
	TecARITHMETIC_OVERFLOW = tx.TecARITHMETIC_OVERFLOW
	TecINVALID_AMOUNT      = tx.TecINVALID_AMOUNT
	TecUNFUNDED            = tx.TecUNFUNDED
	TecNO_PERMISSION       = tx.TecNO_PERMISSION
	TecDUPLICATE           = tx.TecDUPLICATE
	TerNO_POOL             = tx.TerNO_POOL
	TerNO_MINT             = tx.TerNO_MINT
	TerNO_ACCOUNT          = tx.TerNO_ACCOUNT
)
