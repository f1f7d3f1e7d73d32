// Package history stores closed ledger headers and the domain events each
// transaction emitted in a relational database, so pool activity can be
// replayed and queried long after the ledgers themselves rotate out of the
// key-value store. Drivers for SQLite and PostgreSQL live in subpackages
// and register themselves here.
package history

import (
	"context"
	"fmt"
	"sync"
)

// LedgerRecord is one closed ledger header row.
type LedgerRecord struct {
	Seq        uint32
	Hash       string
	ParentHash string
	StateHash  string
	CloseTime  int64
	TxCount    int
}

// EventRecord is one domain event emitted by a transaction.
type EventRecord struct {
	LedgerSeq  uint32
	TxIndex    uint32
	EventIndex uint32
	TxHash     string
	EventType  string
	Pool       string
	Account    string
	Payload    []byte
}

// EventQuery bounds an event lookup. Zero values mean unbounded.
type EventQuery struct {
	MinLedger uint32
	MaxLedger uint32
	Limit     int
}

// Store is the interface every history driver implements.
type Store interface {
	// Open establishes the connection and creates the schema.
	Open(ctx context.Context) error

	// Close releases the connection.
	Close(ctx context.Context) error

	// Ping checks the connection.
	Ping(ctx context.Context) error

	// SaveLedger writes a ledger header and its events in one transaction.
	SaveLedger(ctx context.Context, ledger *LedgerRecord, events []EventRecord) error

	// LedgerBySeq reads one ledger header.
	LedgerBySeq(ctx context.Context, seq uint32) (*LedgerRecord, error)

	// LatestLedgerSeq returns the highest stored ledger sequence.
	LatestLedgerSeq(ctx context.Context) (uint32, error)

	// EventsByPool lists a pool's events in (ledger, tx, event) order.
	EventsByPool(ctx context.Context, pool string, query EventQuery) ([]EventRecord, error)

	// EventsByTransaction lists the events one transaction emitted.
	EventsByTransaction(ctx context.Context, txHash string) ([]EventRecord, error)
}

// DriverFactory creates a store from a validated configuration.
type DriverFactory func(config *Config) (Store, error)

var (
	driverMu sync.RWMutex
	drivers  = make(map[string]DriverFactory)
)

// RegisterDriver registers a history driver. Drivers call this from init.
func RegisterDriver(name string, factory DriverFactory) {
	driverMu.Lock()
	defer driverMu.Unlock()
	drivers[name] = factory
}

// Open creates a store for the driver named in the configuration.
// The caller still has to call Store.Open.
func Open(config *Config) (Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	driverMu.RLock()
	factory, ok := drivers[config.Driver]
	driverMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown history driver: %s", config.Driver)
	}
	return factory(config)
}

// AvailableDrivers returns the registered driver names.
func AvailableDrivers() []string {
	driverMu.RLock()
	defer driverMu.RUnlock()

	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	return names
}
