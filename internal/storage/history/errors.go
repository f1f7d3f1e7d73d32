package history

import "errors"

var (
	// Configuration errors
	ErrMissingPath           = errors.New("history database path is required")
	ErrMissingHost           = errors.New("history database host is required")
	ErrMissingDatabase       = errors.New("history database name is required")
	ErrMissingUsername       = errors.New("history database username is required")
	ErrInvalidPort           = errors.New("invalid history database port")
	ErrInvalidMaxOpenConns   = errors.New("max open connections must be >= 0")
	ErrInvalidMaxIdleConns   = errors.New("max idle connections must be >= 0")
	ErrMaxIdleExceedsMaxOpen = errors.New("max idle connections cannot exceed max open connections")
	ErrInvalidTimeout        = errors.New("timeout must be positive")

	// Connection errors
	ErrStoreClosed = errors.New("history store is closed")

	// Data errors
	ErrLedgerNotFound = errors.New("ledger not found in history")
	ErrNoLedgers      = errors.New("history holds no ledgers")
)
