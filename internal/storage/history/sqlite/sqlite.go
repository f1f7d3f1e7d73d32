// Package sqlite provides the SQLite history driver. It is the default
// driver and needs no external server.
package sqlite

import (
	"github.com/LeJamon/goAMMd/internal/storage/history"
	_ "modernc.org/sqlite" // sqlite driver
)

func init() {
	history.RegisterDriver("sqlite", func(config *history.Config) (history.Store, error) {
		return history.NewSQLStore(config, dialect{}), nil
	})
}

type dialect struct{}

func (dialect) DriverName() string { return "sqlite" }

// Rebind is the identity: SQLite understands ? placeholders natively.
func (dialect) Rebind(query string) string { return query }

func (dialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS ledgers (
			seq         INTEGER PRIMARY KEY,
			hash        TEXT NOT NULL UNIQUE,
			parent_hash TEXT NOT NULL,
			state_hash  TEXT NOT NULL,
			close_time  INTEGER NOT NULL,
			tx_count    INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			ledger_seq  INTEGER NOT NULL,
			tx_index    INTEGER NOT NULL,
			event_index INTEGER NOT NULL,
			tx_hash     TEXT NOT NULL,
			event_type  TEXT NOT NULL,
			pool        TEXT NOT NULL,
			account     TEXT NOT NULL,
			payload     BLOB NOT NULL,
			PRIMARY KEY (ledger_seq, tx_index, event_index)
		)`,
		`CREATE INDEX IF NOT EXISTS events_by_pool ON events (pool, ledger_seq, tx_index)`,
		`CREATE INDEX IF NOT EXISTS events_by_tx ON events (tx_hash)`,
	}
}
