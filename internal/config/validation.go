package config

import (
	"encoding/hex"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/LeJamon/goAMMd/internal/core/tx"
)

// ValidateConfig checks the complete configuration.
func ValidateConfig(config *Config) error {
	if err := validateServer(&config.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := validateGRPC(&config.GRPC); err != nil {
		return fmt.Errorf("grpc config validation failed: %w", err)
	}
	if err := validatePool(&config.Pool); err != nil {
		return fmt.Errorf("pool config validation failed: %w", err)
	}
	if err := validateDatabase(&config.Database); err != nil {
		return fmt.Errorf("database config validation failed: %w", err)
	}
	if err := validateHistory(config); err != nil {
		return fmt.Errorf("history config validation failed: %w", err)
	}
	if err := validateGenesis(config); err != nil {
		return fmt.Errorf("genesis config validation failed: %w", err)
	}
	return nil
}

func validateServer(server *ServerConfig) error {
	if server.IP == "" {
		return fmt.Errorf("server.ip must not be empty")
	}
	if net.ParseIP(server.IP) == nil {
		return fmt.Errorf("server.ip is not a valid IP address: %s", server.IP)
	}
	if server.HTTPPort < 1 || server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port must be between 1 and 65535, got %d", server.HTTPPort)
	}
	if server.WSPort < 1 || server.WSPort > 65535 {
		return fmt.Errorf("server.ws_port must be between 1 and 65535, got %d", server.WSPort)
	}
	if server.HTTPPort == server.WSPort {
		return fmt.Errorf("server.http_port and server.ws_port conflict on %d", server.HTTPPort)
	}
	if server.RPCTimeout < 0 {
		return fmt.Errorf("server.rpc_timeout must not be negative")
	}
	return nil
}

func validateGRPC(grpc *GRPCConfig) error {
	if !grpc.Enabled {
		return nil
	}
	host, port, err := net.SplitHostPort(grpc.Address)
	if err != nil {
		return fmt.Errorf("grpc.address is not host:port: %s", grpc.Address)
	}
	if host == "" {
		return fmt.Errorf("grpc.address has no host: %s", grpc.Address)
	}
	if p, err := strconv.Atoi(port); err != nil || p < 0 || p > 65535 {
		return fmt.Errorf("grpc.address has an invalid port: %s", grpc.Address)
	}
	if grpc.MaxRecvMsgSize <= 0 || grpc.MaxSendMsgSize <= 0 {
		return fmt.Errorf("grpc message size limits must be positive")
	}
	return nil
}

func validatePool(pool *PoolConfig) error {
	if _, err := tx.ParsePolicy(pool.Policy); err != nil {
		return err
	}
	return nil
}

func validateDatabase(db *DatabaseConfig) error {
	switch strings.ToLower(db.Backend) {
	case "", "memory", "pebble", "leveldb":
	default:
		return fmt.Errorf("database.backend must be pebble, leveldb or memory, got %q", db.Backend)
	}
	if db.Persistent() && db.Path == "" {
		return fmt.Errorf("database.path must be set for backend %q", db.Backend)
	}
	switch strings.ToLower(db.Compression) {
	case "", "none", "lz4":
	default:
		return fmt.Errorf("database.compression must be none or lz4, got %q", db.Compression)
	}
	if db.CacheSize < 0 {
		return fmt.Errorf("database.cache_size must not be negative")
	}
	return nil
}

func validateHistory(config *Config) error {
	switch strings.ToLower(config.History.Driver) {
	case "", "sqlite", "sqlite3", "postgres", "postgresql":
	default:
		return fmt.Errorf("history.driver must be sqlite, postgres or empty, got %q", config.History.Driver)
	}

	// The store config carries the detailed per-driver rules.
	if hc, enabled := config.HistoryStoreConfig(); enabled {
		if err := hc.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// validateGenesis checks seed shapes early so a typo fails at load time
// with the file context instead of deep inside ledger creation.
func validateGenesis(config *Config) error {
	mints := make(map[string]bool, len(config.Genesis.Mints))
	for _, mint := range config.Genesis.Mints {
		id := strings.ToUpper(mint.ID)
		if !isHex(id, 64) {
			return fmt.Errorf("genesis mint id must be 64 hex characters, got %q", mint.ID)
		}
		if mints[id] {
			return fmt.Errorf("genesis mint %s declared twice", mint.ID)
		}
		mints[id] = true
		if mint.Authority != "" && !isHex(strings.ToUpper(mint.Authority), 40) {
			return fmt.Errorf("genesis mint %s authority must be 40 hex characters", mint.ID)
		}
	}

	for _, account := range config.Genesis.Accounts {
		if !isHex(strings.ToUpper(account.Account), 40) {
			return fmt.Errorf("genesis account must be 40 hex characters, got %q", account.Account)
		}
		if !mints[strings.ToUpper(account.Mint)] {
			return fmt.Errorf("genesis account %s funds undeclared mint %s", account.Account, account.Mint)
		}
	}
	return nil
}

func isHex(s string, length int) bool {
	if len(s) != length {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
