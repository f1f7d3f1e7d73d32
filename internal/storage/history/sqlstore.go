package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Query limits applied when EventQuery.Limit is zero or out of range.
const (
	defaultEventLimit = 256
	maxEventLimit     = 1000
)

// Dialect captures the differences between the supported SQL engines.
type Dialect interface {
	// DriverName is the database/sql driver to open.
	DriverName() string

	// Rebind rewrites ? placeholders into the engine's form.
	Rebind(query string) string

	// Schema returns the statements that create the tables and indexes.
	Schema() []string
}

// SQLStore implements Store over database/sql. The driver subpackages
// supply the dialect.
type SQLStore struct {
	config  *Config
	dialect Dialect
	db      *sql.DB
}

// NewSQLStore creates a store for the given dialect. The connection is
// established by Open.
func NewSQLStore(config *Config, dialect Dialect) *SQLStore {
	return &SQLStore{config: config, dialect: dialect}
}

// Open opens the connection, configures the pool and creates the schema.
func (s *SQLStore) Open(ctx context.Context) error {
	dsn, err := s.config.BuildDSN()
	if err != nil {
		return err
	}

	db, err := sql.Open(s.dialect.DriverName(), dsn)
	if err != nil {
		return fmt.Errorf("open history database: %w", err)
	}

	db.SetMaxOpenConns(s.config.MaxOpenConns)
	db.SetMaxIdleConns(s.config.MaxIdleConns)
	db.SetConnMaxLifetime(s.config.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, s.config.DefaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return fmt.Errorf("ping history database: %w", err)
	}

	for _, stmt := range s.dialect.Schema() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return fmt.Errorf("create history schema: %w", err)
		}
	}

	s.db = db
	return nil
}

// Close releases the connection.
func (s *SQLStore) Close(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Ping checks the connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	if s.db == nil {
		return ErrStoreClosed
	}
	return s.db.PingContext(ctx)
}

// SaveLedger writes the ledger header and its events in one transaction.
func (s *SQLStore) SaveLedger(ctx context.Context, ledger *LedgerRecord, events []EventRecord) error {
	if s.db == nil {
		return ErrStoreClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history transaction: %w", err)
	}
	defer tx.Rollback()

	insertLedger := s.dialect.Rebind(`
		INSERT INTO ledgers (seq, hash, parent_hash, state_hash, close_time, tx_count)
		VALUES (?, ?, ?, ?, ?, ?)`)

	if _, err := tx.ExecContext(ctx, insertLedger,
		int64(ledger.Seq), ledger.Hash, ledger.ParentHash, ledger.StateHash,
		ledger.CloseTime, ledger.TxCount); err != nil {
		return fmt.Errorf("insert ledger %d: %w", ledger.Seq, err)
	}

	insertEvent := s.dialect.Rebind(`
		INSERT INTO events (ledger_seq, tx_index, event_index, tx_hash, event_type, pool, account, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	for _, ev := range events {
		if _, err := tx.ExecContext(ctx, insertEvent,
			int64(ev.LedgerSeq), int64(ev.TxIndex), int64(ev.EventIndex),
			ev.TxHash, ev.EventType, ev.Pool, ev.Account, ev.Payload); err != nil {
			return fmt.Errorf("insert event %s/%d: %w", ev.TxHash, ev.EventIndex, err)
		}
	}

	return tx.Commit()
}

// LedgerBySeq reads one ledger header.
func (s *SQLStore) LedgerBySeq(ctx context.Context, seq uint32) (*LedgerRecord, error) {
	if s.db == nil {
		return nil, ErrStoreClosed
	}

	query := s.dialect.Rebind(`
		SELECT seq, hash, parent_hash, state_hash, close_time, tx_count
		FROM ledgers WHERE seq = ?`)

	var rec LedgerRecord
	var seq64 int64
	err := s.db.QueryRowContext(ctx, query, int64(seq)).Scan(
		&seq64, &rec.Hash, &rec.ParentHash, &rec.StateHash, &rec.CloseTime, &rec.TxCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLedgerNotFound
		}
		return nil, err
	}
	rec.Seq = uint32(seq64)
	return &rec, nil
}

// LatestLedgerSeq returns the highest stored ledger sequence.
func (s *SQLStore) LatestLedgerSeq(ctx context.Context) (uint32, error) {
	if s.db == nil {
		return 0, ErrStoreClosed
	}

	var seq64 int64
	err := s.db.QueryRowContext(ctx, `SELECT seq FROM ledgers ORDER BY seq DESC LIMIT 1`).Scan(&seq64)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNoLedgers
		}
		return 0, err
	}
	return uint32(seq64), nil
}

// EventsByPool lists a pool's events in (ledger, tx, event) order.
func (s *SQLStore) EventsByPool(ctx context.Context, pool string, query EventQuery) ([]EventRecord, error) {
	if s.db == nil {
		return nil, ErrStoreClosed
	}

	maxLedger := int64(query.MaxLedger)
	if query.MaxLedger == 0 {
		maxLedger = int64(^uint32(0))
	}

	stmt := s.dialect.Rebind(`
		SELECT ledger_seq, tx_index, event_index, tx_hash, event_type, pool, account, payload
		FROM events
		WHERE pool = ? AND ledger_seq >= ? AND ledger_seq <= ?
		ORDER BY ledger_seq, tx_index, event_index
		LIMIT ?`)

	rows, err := s.db.QueryContext(ctx, stmt,
		pool, int64(query.MinLedger), maxLedger, clampLimit(query.Limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// EventsByTransaction lists the events one transaction emitted.
func (s *SQLStore) EventsByTransaction(ctx context.Context, txHash string) ([]EventRecord, error) {
	if s.db == nil {
		return nil, ErrStoreClosed
	}

	stmt := s.dialect.Rebind(`
		SELECT ledger_seq, tx_index, event_index, tx_hash, event_type, pool, account, payload
		FROM events
		WHERE tx_hash = ?
		ORDER BY ledger_seq, tx_index, event_index`)

	rows, err := s.db.QueryContext(ctx, stmt, txHash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]EventRecord, error) {
	var events []EventRecord
	for rows.Next() {
		var ev EventRecord
		var ledgerSeq, txIndex, eventIndex int64
		if err := rows.Scan(&ledgerSeq, &txIndex, &eventIndex,
			&ev.TxHash, &ev.EventType, &ev.Pool, &ev.Account, &ev.Payload); err != nil {
			return nil, err
		}
		ev.LedgerSeq = uint32(ledgerSeq)
		ev.TxIndex = uint32(txIndex)
		ev.EventIndex = uint32(eventIndex)
		events = append(events, ev)
	}
	return events, rows.Err()
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultEventLimit
	}
	if limit > maxEventLimit {
		return maxEventLimit
	}
	return limit
}

// RebindPositional rewrites ? placeholders as $1, $2, ... for engines that
// use numbered placeholders.
func RebindPositional(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
