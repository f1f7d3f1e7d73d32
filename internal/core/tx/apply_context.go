package tx

// ApplyContext provides all the state and helpers needed to apply a
// transaction. It is passed to Appliable.Apply() instead of individual
// parameters.
type ApplyContext struct {
	// View provides read/write access to ledger state (the ApplyStateTable)
	View LedgerView

	// AccountID is the decoded source account ID
	AccountID [20]byte

	// Config holds engine configuration (policy, ledger sequence)
	Config EngineConfig

	// TxHash is the hash of the current transaction
	TxHash [32]byte

	// Metadata collects affected entries and emitted events
	Metadata *Metadata

	// Engine provides access to shared engine state
	Engine *Engine
}

// Policy returns the accounting policy the engine was built with.
func (ctx *ApplyContext) Policy() Policy {
	return ctx.Config.Policy
}

// EmitEvent appends a domain event to the transaction metadata. Events are
// published and persisted only if the transaction succeeds.
func (ctx *ApplyContext) EmitEvent(ev Event) {
	if ctx.Metadata != nil {
		ctx.Metadata.Events = append(ctx.Metadata.Events, ev)
	}
}
