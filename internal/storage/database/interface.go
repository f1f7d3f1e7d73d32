// Package database defines the key-value storage contract used by the
// ledger store. Concrete backends (pebble, leveldb) live in subpackages
// and register themselves with this package, so callers select a backend
// by name the same way database/sql selects a driver.
package database

import (
	"context"
)

// DB defines the basic operations any database implementation must support
type DB interface {
	// Basic operations
	Read(ctx context.Context, key []byte) ([]byte, error)
	Write(ctx context.Context, key []byte, value []byte) error
	Delete(ctx context.Context, key []byte) error

	// Batch operations
	Batch(ctx context.Context, ops []BatchOperation) error

	// Iteration
	Iterator(ctx context.Context, start, end []byte) (Iterator, error)
}

// Iterator allows traversing over database entries
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Close() error
}

// BatchOperation represents a single operation in a batch
type BatchOperation struct {
	Type  BatchOpType
	Key   []byte
	Value []byte
}

type BatchOpType int

const (
	BatchPut BatchOpType = iota
	BatchDelete
)

// Manager owns a set of named databases under a common directory.
// Each backend provides its own Manager implementation.
type Manager interface {
	// OpenDB opens (or returns the already open) database with the given name.
	OpenDB(name string) (DB, error)

	// CloseDB closes the named database.
	CloseDB(name string) error

	// Close closes every open database.
	Close() error
}
