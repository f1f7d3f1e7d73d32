package tx

// Event is a domain event emitted by a successfully applied transaction.
// Concrete event types live next to the operations that emit them; each
// carries json tags for the subscription stream and the history store.
type Event interface {
	// EventType returns the stable event name, e.g. "PoolCreated".
	EventType() string
}
