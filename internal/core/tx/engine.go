package tx

import (
	"encoding/json"
	"sort"

	"github.com/LeJamon/goAMMd/internal/core/ledger/keylet"
	"github.com/LeJamon/goAMMd/internal/core/ledger/sle"
	crypto "github.com/LeJamon/goAMMd/internal/crypto/common"
)

// Engine processes transactions against a ledger
type Engine struct {
	// View provides access to ledger state
	view LedgerView

	// Config holds engine configuration
	config EngineConfig
}

// EngineConfig holds configuration for the transaction engine
type EngineConfig struct {
	// Policy selects the accounting variant (hardened by default)
	Policy Policy

	// LedgerSequence is the current ledger sequence
	LedgerSequence uint32

	// Standalone indicates if running in standalone mode
	Standalone bool
}

// LedgerView provides read/write access to ledger state
type LedgerView interface {
	// Read reads a ledger entry
	Read(k keylet.Keylet) ([]byte, error)

	// Exists checks if an entry exists
	Exists(k keylet.Keylet) (bool, error)

	// Insert adds a new entry
	Insert(k keylet.Keylet, data []byte) error

	// Update modifies an existing entry
	Update(k keylet.Keylet, data []byte) error

	// Erase removes an entry
	Erase(k keylet.Keylet) error

	// ForEach iterates over all state entries
	// If fn returns false, iteration stops early
	ForEach(fn func(key [32]byte, data []byte) bool) error
}

// ApplyResult contains the result of applying a transaction
type ApplyResult struct {
	// Result is the transaction result code
	Result Result

	// Applied indicates if the transaction changed ledger state
	Applied bool

	// Metadata contains the changes made by the transaction
	Metadata *Metadata

	// Message is a human-readable result message
	Message string
}

// Metadata tracks changes made by a transaction
type Metadata struct {
	// AffectedNodes lists all entries that were created, modified, or deleted
	AffectedNodes []AffectedNode

	// Events lists the domain events emitted by the transaction
	Events []Event

	// TransactionIndex is the index in the ledger
	TransactionIndex uint32

	// TransactionResult is the result code
	TransactionResult Result
}

// AffectedNode describes one ledger entry touched by a transaction
type AffectedNode struct {
	NodeType        string // CreatedNode, ModifiedNode, DeletedNode
	LedgerEntryType string
	LedgerIndex     string
}

// MarshalJSON renders metadata with each affected node nested under its
// node type, and the result code as its string name.
func (m Metadata) MarshalJSON() ([]byte, error) {
	sorted := make([]AffectedNode, len(m.AffectedNodes))
	copy(sorted, m.AffectedNodes)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LedgerIndex < sorted[j].LedgerIndex
	})

	nodes := make([]map[string]any, 0, len(sorted))
	for _, node := range sorted {
		nodes = append(nodes, map[string]any{
			node.NodeType: map[string]any{
				"LedgerEntryType": node.LedgerEntryType,
				"LedgerIndex":     node.LedgerIndex,
			},
		})
	}

	events := make([]map[string]any, 0, len(m.Events))
	for _, ev := range m.Events {
		events = append(events, map[string]any{
			"EventType": ev.EventType(),
			"Event":     ev,
		})
	}

	return json.Marshal(map[string]any{
		"AffectedNodes":     nodes,
		"Events":            events,
		"TransactionIndex":  m.TransactionIndex,
		"TransactionResult": m.TransactionResult.String(),
	})
}

// NewEngine creates a new transaction engine
func NewEngine(view LedgerView, config EngineConfig) *Engine {
	return &Engine{
		view:   view,
		config: config,
	}
}

// Policy returns the accounting policy the engine runs under.
func (e *Engine) Policy() Policy {
	return e.config.Policy
}

// CanonicalJSON returns the canonical JSON encoding of a transaction's
// flattened fields. json.Marshal sorts map keys, so the encoding is stable
// and suitable for hashing and storage.
func CanonicalJSON(tx Transaction) ([]byte, error) {
	txMap, err := tx.Flatten()
	if err != nil {
		return nil, err
	}
	return json.Marshal(txMap)
}

// HashTransaction computes the hash of a transaction: SHA512Half of the
// "TXN\x00" prefix plus the canonical JSON.
func HashTransaction(tx Transaction) ([32]byte, error) {
	var hash [32]byte

	txBytes, err := CanonicalJSON(tx)
	if err != nil {
		return hash, err
	}

	prefix := []byte{0x54, 0x58, 0x4E, 0x00}
	return crypto.Sha512Half(prefix, txBytes), nil
}

// Apply processes a transaction and applies it to the ledger.
//
// The pipeline is preflight (stateless checks), then the operation's own
// Apply over an ApplyStateTable. State reaches the base view only on
// tesSUCCESS; every failure class leaves the ledger untouched.
func (e *Engine) Apply(tx Transaction) ApplyResult {
	// Step 1: Preflight checks (syntax validation)
	result := e.preflight(tx)
	if !result.IsSuccess() {
		return ApplyResult{
			Result:  result,
			Applied: false,
			Message: result.Message(),
		}
	}

	// Step 2: Compute transaction hash
	txHash, err := HashTransaction(tx)
	if err != nil {
		return ApplyResult{
			Result:  TefINTERNAL,
			Applied: false,
			Message: "failed to compute transaction hash: " + err.Error(),
		}
	}

	// Step 3: Apply the transaction over a tracked table
	metadata := &Metadata{
		AffectedNodes:     make([]AffectedNode, 0),
		TransactionResult: TesSUCCESS,
	}

	accountID, err := sle.DecodeAccountID(tx.GetCommon().Account)
	if err != nil {
		return ApplyResult{
			Result:  TemBAD_SRC_ACCOUNT,
			Applied: false,
			Message: TemBAD_SRC_ACCOUNT.Message(),
		}
	}

	table := NewApplyStateTable(e.view, txHash, e.config.LedgerSequence)

	ctx := &ApplyContext{
		View:      table,
		AccountID: accountID,
		Config:    e.config,
		TxHash:    txHash,
		Metadata:  metadata,
		Engine:    e,
	}

	if appliable, ok := tx.(Appliable); ok {
		result = appliable.Apply(ctx)
	} else {
		result = TefINTERNAL
	}

	metadata.TransactionResult = result

	// Commit only on success. A failed transaction's table is discarded,
	// along with any events it emitted.
	if result.IsSuccess() {
		generatedMeta, err := table.Apply()
		if err != nil {
			return ApplyResult{
				Result:   TefINTERNAL,
				Applied:  false,
				Metadata: metadata,
				Message:  "failed to apply state changes: " + err.Error(),
			}
		}
		metadata.AffectedNodes = generatedMeta.AffectedNodes
	} else {
		metadata.Events = nil
	}

	return ApplyResult{
		Result:   result,
		Applied:  result.IsSuccess(),
		Metadata: metadata,
		Message:  result.Message(),
	}
}

// preflight performs stateless validation on the transaction
func (e *Engine) preflight(tx Transaction) Result {
	common := tx.GetCommon()

	if common.Account == "" {
		return TemBAD_SRC_ACCOUNT
	}
	if _, err := sle.DecodeAccountID(common.Account); err != nil {
		return TemBAD_SRC_ACCOUNT
	}

	if common.TransactionType == "" {
		return TemINVALID
	}
	if _, ok := TypeFromName(common.TransactionType); !ok {
		return TemINVALID
	}

	// No transaction flags are defined yet
	if common.GetFlags() != 0 {
		return TemINVALID_FLAG
	}

	// Transaction-specific validation
	if err := tx.Validate(); err != nil {
		return parseValidationError(err)
	}

	return TesSUCCESS
}

// parseValidationError extracts a result code from a validation error
// message. Validate() implementations prefix their errors with the code
// (e.g. "temBAD_FEE: fee denominator is zero"); anything unprefixed maps
// to temINVALID.
func parseValidationError(err error) Result {
	msg := err.Error()

	codes := map[string]Result{
		"temMALFORMED":       TemMALFORMED,
		"temINVALID_AMOUNT":  TemINVALID_AMOUNT,
		"temBAD_FEE":         TemBAD_FEE,
		"temBAD_SRC_ACCOUNT": TemBAD_SRC_ACCOUNT,
		"temREDUNDANT_PAIR":  TemREDUNDANT_PAIR,
		"temINVALID_FLAG":    TemINVALID_FLAG,
		"temINVALID":         TemINVALID,
	}

	for code, result := range codes {
		if len(msg) >= len(code) && msg[:len(code)] == code {
			if len(msg) == len(code) || msg[len(code)] == ':' || msg[len(code)] == ' ' {
				return result
			}
		}
	}

	return TemINVALID
}
