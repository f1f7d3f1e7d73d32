// Package config loads the daemon configuration from an ammd.toml file,
// AMMD_ environment variables and built-in defaults, in that priority
// order, and validates the result.
package config

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/LeJamon/goAMMd/internal/core/ledger/genesis"
	"github.com/LeJamon/goAMMd/internal/core/tx"
	"github.com/LeJamon/goAMMd/internal/storage/history"
)

// Config is the complete ammd configuration.
type Config struct {
	// Standalone closes ledgers on demand via ledger_accept instead of
	// a consensus round.
	Standalone bool `toml:"standalone" mapstructure:"standalone"`

	// [server] JSON-RPC and WebSocket endpoints
	Server ServerConfig `toml:"server" mapstructure:"server"`

	// [grpc] query endpoint
	GRPC GRPCConfig `toml:"grpc" mapstructure:"grpc"`

	// [pool] accounting policy
	Pool PoolConfig `toml:"pool" mapstructure:"pool"`

	// [database] ledger snapshot persistence
	Database DatabaseConfig `toml:"database" mapstructure:"database"`

	// [history] relational event history
	History HistoryConfig `toml:"history" mapstructure:"history"`

	// [genesis] mints and balances seeded into ledger 1
	Genesis genesis.Config `toml:"genesis" mapstructure:"genesis"`

	configPath string `toml:"-" mapstructure:"-"`
}

// ServerConfig holds the HTTP and WebSocket listener settings.
type ServerConfig struct {
	// IP both listeners bind to.
	IP string `toml:"ip" mapstructure:"ip"`

	// HTTPPort serves the JSON-RPC envelope.
	HTTPPort int `toml:"http_port" mapstructure:"http_port"`

	// WSPort serves WebSocket commands and subscriptions.
	WSPort int `toml:"ws_port" mapstructure:"ws_port"`

	// RPCTimeout bounds a single method call. Zero disables the limit.
	RPCTimeout time.Duration `toml:"rpc_timeout" mapstructure:"rpc_timeout"`
}

// GRPCConfig holds the gRPC listener settings.
type GRPCConfig struct {
	Enabled        bool   `toml:"enabled" mapstructure:"enabled"`
	Address        string `toml:"address" mapstructure:"address"`
	MaxRecvMsgSize int    `toml:"max_recv_msg_size" mapstructure:"max_recv_msg_size"`
	MaxSendMsgSize int    `toml:"max_send_msg_size" mapstructure:"max_send_msg_size"`
}

// PoolConfig selects the pool accounting variant.
type PoolConfig struct {
	// Policy is "naive" or "hardened".
	Policy string `toml:"policy" mapstructure:"policy"`
}

// DatabaseConfig holds the key-value store settings for ledger snapshots.
type DatabaseConfig struct {
	// Backend is "pebble", "leveldb" or "memory". Memory keeps ledgers
	// in process only; restarts lose closed history.
	Backend string `toml:"backend" mapstructure:"backend"`

	// Path is the on-disk database directory.
	Path string `toml:"path" mapstructure:"path"`

	// Compression of stored values: "lz4" or "none".
	Compression string `toml:"compression" mapstructure:"compression"`

	// CacheSize bounds the in-memory closed-ledger cache. Zero selects
	// the built-in default.
	CacheSize int `toml:"cache_size" mapstructure:"cache_size"`
}

// HistoryConfig holds the relational event history settings.
type HistoryConfig struct {
	// Driver is "sqlite", "postgres" or empty to disable history.
	Driver string `toml:"driver" mapstructure:"driver"`

	// Path is the sqlite database file.
	Path string `toml:"path" mapstructure:"path"`

	// DSN overrides the generated postgres connection string.
	DSN string `toml:"dsn" mapstructure:"dsn"`

	// Postgres connection settings.
	Host     string `toml:"host" mapstructure:"host"`
	Port     int    `toml:"port" mapstructure:"port"`
	Database string `toml:"database" mapstructure:"database"`
	Username string `toml:"username" mapstructure:"username"`
	Password string `toml:"password" mapstructure:"password"`
	SSLMode  string `toml:"sslmode" mapstructure:"sslmode"`
}

// GetConfigPath returns the file the configuration was loaded from, or
// empty when only defaults and environment variables applied.
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// HTTPAddr returns the JSON-RPC listen address.
func (c *Config) HTTPAddr() string {
	return net.JoinHostPort(c.Server.IP, strconv.Itoa(c.Server.HTTPPort))
}

// WSAddr returns the WebSocket listen address.
func (c *Config) WSAddr() string {
	return net.JoinHostPort(c.Server.IP, strconv.Itoa(c.Server.WSPort))
}

// PoolPolicy returns the parsed accounting policy. Validation guarantees
// the value parses; the zero fallback keeps callers total.
func (c *Config) PoolPolicy() tx.Policy {
	policy, err := tx.ParsePolicy(c.Pool.Policy)
	if err != nil {
		return tx.PolicyHardened
	}
	return policy
}

// Persistent reports whether ledger snapshots go to disk.
func (d *DatabaseConfig) Persistent() bool {
	backend := strings.ToLower(d.Backend)
	return backend != "" && backend != "memory"
}

// HistoryEnabled reports whether an event history store is configured.
func (c *Config) HistoryEnabled() bool {
	return c.History.Driver != ""
}

// HistoryStoreConfig builds the history store configuration. The second
// return is false when history is disabled.
func (c *Config) HistoryStoreConfig() (*history.Config, bool) {
	switch strings.ToLower(c.History.Driver) {
	case "":
		return nil, false

	case "sqlite", "sqlite3":
		hc := history.NewConfig()
		if c.History.Path != "" {
			hc.Path = c.History.Path
		}
		return hc, true

	default:
		hc := history.PostgresConfig()
		if c.History.DSN != "" {
			hc.ConnectionString = c.History.DSN
		}
		if c.History.Host != "" {
			hc.Host = c.History.Host
		}
		if c.History.Port != 0 {
			hc.Port = c.History.Port
		}
		if c.History.Database != "" {
			hc.Database = c.History.Database
		}
		if c.History.Username != "" {
			hc.Username = c.History.Username
		}
		if c.History.Password != "" {
			hc.Password = c.History.Password
		}
		if c.History.SSLMode != "" {
			hc.SSLMode = c.History.SSLMode
		}
		return hc, true
	}
}
