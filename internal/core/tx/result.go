package tx

import "fmt"

// Result represents a transaction result code
type Result int

// Transaction result codes, organized by category: tes, tec, tem, ter, tef.
// The class encodes how the engine treated the transaction:
//
//	tes — applied, state changed
//	tec — claimed failure against live state, no state change
//	tem — malformed, rejected before touching state
//	ter — missing prerequisite state, retry may succeed
//	tef — internal failure
const (
	// tesSUCCESS and related (0-99)
	TesSUCCESS Result = 0

	// tec codes (100-199): the transaction was well formed but failed
	// against current state. Nothing was applied.
	TecSLIPPAGE_EXCEEDED   Result = 100
	TecARITHMETIC_OVERFLOW Result = 101
	TecINVALID_AMOUNT      Result = 102
	TecUNFUNDED            Result = 103
	TecNO_PERMISSION       Result = 104
	TecDUPLICATE           Result = 105
	TecINTERNAL            Result = 144

	// tef codes (-199 to -100): engine or invariant failure
	TefFAILURE  Result = -199
	TefINTERNAL Result = -192

	// tem codes (-299 to -200): malformed transaction
	TemMALFORMED       Result = -299
	TemINVALID_AMOUNT  Result = -298
	TemBAD_FEE         Result = -295
	TemBAD_SRC_ACCOUNT Result = -281
	TemREDUNDANT_PAIR  Result = -279
	TemINVALID         Result = -277
	TemINVALID_FLAG    Result = -276

	// ter codes (-99 to -1): retry later
	TerRETRY      Result = -99
	TerNO_ACCOUNT Result = -96
	TerNO_MINT    Result = -90
	TerNO_POOL    Result = -87
)

// String returns the string representation of the result code
func (r Result) String() string {
	switch r {
	case TesSUCCESS:
		return "tesSUCCESS"
	case TecSLIPPAGE_EXCEEDED:
		return "tecSLIPPAGE_EXCEEDED"
	case TecARITHMETIC_OVERFLOW:
		return "tecARITHMETIC_OVERFLOW"
	case TecINVALID_AMOUNT:
		return "tecINVALID_AMOUNT"
	case TecUNFUNDED:
		return "tecUNFUNDED"
	case TecNO_PERMISSION:
		return "tecNO_PERMISSION"
	case TecDUPLICATE:
		return "tecDUPLICATE"
	case TecINTERNAL:
		return "tecINTERNAL"
	case TefFAILURE:
		return "tefFAILURE"
	case TefINTERNAL:
		return "tefINTERNAL"
	case TemMALFORMED:
		return "temMALFORMED"
	case TemINVALID_AMOUNT:
		return "temINVALID_AMOUNT"
	case TemBAD_FEE:
		return "temBAD_FEE"
	case TemREDUNDANT_PAIR:
		return "temREDUNDANT_PAIR"
	case TemINVALID:
		return "temINVALID"
	case TemINVALID_FLAG:
		return "temINVALID_FLAG"
	case TemBAD_SRC_ACCOUNT:
		return "temBAD_SRC_ACCOUNT"
	case TerRETRY:
		return "terRETRY"
	case TerNO_ACCOUNT:
		return "terNO_ACCOUNT"
	case TerNO_MINT:
		return "terNO_MINT"
	case TerNO_POOL:
		return "terNO_POOL"
	default:
		return fmt.Sprintf("Unknown(%d)", int(r))
	}
}

// IsSuccess returns true if the result indicates success
func (r Result) IsSuccess() bool {
	return r == TesSUCCESS
}

// IsTec returns true if this is a tec (claimed failure) code
func (r Result) IsTec() bool {
	return r >= 100 && r < 200
}

// IsTef returns true if this is a tef (failure) code
func (r Result) IsTef() bool {
	return r >= -199 && r <= -100
}

// IsTem returns true if this is a tem (malformed) code
func (r Result) IsTem() bool {
	return r >= -299 && r <= -200
}

// IsTer returns true if this is a ter (retry) code
func (r Result) IsTer() bool {
	return r >= -99 && r <= -1
}

// ShouldRetry returns true if the transaction should be retried later
func (r Result) ShouldRetry() bool {
	return r.IsTer()
}

// Message returns a human-readable message for the result
func (r Result) Message() string {
	switch r {
	case TesSUCCESS:
		return "The transaction was applied."
	case TecSLIPPAGE_EXCEEDED:
		return "Computed output is below the caller's minimum."
	case TecARITHMETIC_OVERFLOW:
		return "Value arithmetic exceeded the 64-bit range."
	case TecINVALID_AMOUNT:
		return "Amount is invalid against current pool state."
	case TecUNFUNDED:
		return "Insufficient token balance."
	case TecNO_PERMISSION:
		return "Account is not authorized for this operation."
	case TecDUPLICATE:
		return "An identical object or submission already exists."
	case TemINVALID_AMOUNT:
		return "Amounts must be positive."
	case TemBAD_FEE:
		return "Fee rate is malformed: denominator must be positive and not below the numerator."
	case TemREDUNDANT_PAIR:
		return "A pool requires two distinct assets."
	case TemINVALID:
		return "The transaction is ill-formed."
	case TemINVALID_FLAG:
		return "Invalid flags."
	case TemBAD_SRC_ACCOUNT:
		return "Malformed source account."
	case TerNO_ACCOUNT:
		return "A referenced token account does not exist."
	case TerNO_MINT:
		return "A referenced token mint does not exist."
	case TerNO_POOL:
		return "The pool does not exist."
	default:
		return r.String()
	}
}
