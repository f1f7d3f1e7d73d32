// Package postgres provides the PostgreSQL history driver.
package postgres

import (
	"github.com/LeJamon/goAMMd/internal/storage/history"
	_ "github.com/lib/pq" // postgres driver
)

func init() {
	history.RegisterDriver("postgres", func(config *history.Config) (history.Store, error) {
		return history.NewSQLStore(config, dialect{}), nil
	})
}

type dialect struct{}

func (dialect) DriverName() string { return "postgres" }

// Rebind rewrites ? placeholders as $1, $2, ... for lib/pq.
func (dialect) Rebind(query string) string {
	return history.RebindPositional(query)
}

func (dialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS ledgers (
			seq         BIGINT PRIMARY KEY,
			hash        TEXT NOT NULL UNIQUE,
			parent_hash TEXT NOT NULL,
			state_hash  TEXT NOT NULL,
			close_time  BIGINT NOT NULL,
			tx_count    INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			ledger_seq  BIGINT NOT NULL,
			tx_index    INTEGER NOT NULL,
			event_index INTEGER NOT NULL,
			tx_hash     TEXT NOT NULL,
			event_type  TEXT NOT NULL,
			pool        TEXT NOT NULL,
			account     TEXT NOT NULL,
			payload     BYTEA NOT NULL,
			PRIMARY KEY (ledger_seq, tx_index, event_index)
		)`,
		`CREATE INDEX IF NOT EXISTS events_by_pool ON events (pool, ledger_seq, tx_index)`,
		`CREATE INDEX IF NOT EXISTS events_by_tx ON events (tx_hash)`,
	}
}
