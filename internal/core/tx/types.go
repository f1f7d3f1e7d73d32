package tx

import "fmt"

// Type represents a transaction type code
type Type uint16

// All transaction type codes
const (
	TypeInvalid Type = 0xFFFF // Invalid/unknown type

	TypePoolCreate   Type = 1 // Initialize a pool over an asset pair
	TypePoolDeposit  Type = 2 // Add liquidity for pool shares
	TypePoolSwap     Type = 3 // Trade one pool asset for the other
	TypePoolWithdraw Type = 4 // Burn pool shares for reserves
)

// String returns the string name of the transaction type
func (t Type) String() string {
	switch t {
	case TypePoolCreate:
		return "PoolCreate"
	case TypePoolDeposit:
		return "PoolDeposit"
	case TypePoolSwap:
		return "PoolSwap"
	case TypePoolWithdraw:
		return "PoolWithdraw"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// typeNameMap maps transaction type names to their codes
var typeNameMap = map[string]Type{
	"PoolCreate":   TypePoolCreate,
	"PoolDeposit":  TypePoolDeposit,
	"PoolSwap":     TypePoolSwap,
	"PoolWithdraw": TypePoolWithdraw,
}

// TypeFromName returns the transaction type for a given name
func TypeFromName(name string) (Type, bool) {
	t, ok := typeNameMap[name]
	return t, ok
}
