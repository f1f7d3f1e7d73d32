package testing

import "github.com/LeJamon/goAMMd/internal/core/tx"

// TxResult represents the result of applying a transaction.
type TxResult struct {
	// Result is the engine result code.
	Result tx.Result

	// Code is the string form of the result code (e.g. "tesSUCCESS").
	Code string

	// Success indicates whether the transaction was applied.
	Success bool

	// Message provides additional details about the result.
	Message string

	// Events holds the domain events the transaction emitted. Failed
	// transactions emit nothing.
	Events []tx.Event
}

// IsTec reports whether the transaction failed against live state.
func (r TxResult) IsTec() bool {
	return r.Result.IsTec()
}

// IsTer reports whether the transaction hit missing prerequisite state.
func (r TxResult) IsTer() bool {
	return r.Result.IsTer()
}

// IsTem reports whether the transaction was rejected as malformed.
func (r TxResult) IsTem() bool {
	return r.Result.IsTem()
}

// EventOfType returns the first emitted event with the given type name, or
// nil when the transaction emitted none.
func (r TxResult) EventOfType(eventType string) tx.Event {
	for _, ev := range r.Events {
		if ev.EventType() == eventType {
			return ev
		}
	}
	return nil
}
