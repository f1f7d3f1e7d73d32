package history

import (
	"fmt"
	"net/url"
	"time"
)

// Config contains history database settings.
type Config struct {
	// Driver selects the history backend: "sqlite" or "postgres".
	Driver string

	// Path is the database file path (sqlite only).
	Path string

	// Connection settings (postgres only).
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// ConnectionString overrides the generated DSN when set.
	ConnectionString string

	// Connection pool settings.
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// DefaultTimeout bounds individual statements.
	DefaultTimeout time.Duration
}

// NewConfig returns a sqlite configuration with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Driver:          "sqlite",
		Path:            "history.db",
		SSLMode:         "prefer",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		DefaultTimeout:  30 * time.Second,
	}
}

// PostgresConfig returns a postgres configuration with sensible defaults.
func PostgresConfig() *Config {
	return &Config{
		Driver:          "postgres",
		Host:            "localhost",
		Port:            5432,
		Database:        "ammd",
		Username:        "ammd",
		SSLMode:         "prefer",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		DefaultTimeout:  30 * time.Second,
	}
}

// Validate checks the configuration for common errors.
func (c *Config) Validate() error {
	switch c.Driver {
	case "sqlite", "sqlite3":
		c.Driver = "sqlite"
		if c.Path == "" {
			return ErrMissingPath
		}
	case "postgres", "postgresql":
		c.Driver = "postgres"
		if c.ConnectionString != "" {
			break
		}
		if c.Host == "" {
			return ErrMissingHost
		}
		if c.Port <= 0 || c.Port > 65535 {
			return ErrInvalidPort
		}
		if c.Database == "" {
			return ErrMissingDatabase
		}
		if c.Username == "" {
			return ErrMissingUsername
		}
		switch c.SSLMode {
		case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
		default:
			return fmt.Errorf("invalid SSL mode: %s", c.SSLMode)
		}
	default:
		return fmt.Errorf("unsupported history driver: %s", c.Driver)
	}

	if c.MaxOpenConns < 0 {
		return ErrInvalidMaxOpenConns
	}
	if c.MaxIdleConns < 0 {
		return ErrInvalidMaxIdleConns
	}
	if c.MaxIdleConns > c.MaxOpenConns && c.MaxOpenConns > 0 {
		return ErrMaxIdleExceedsMaxOpen
	}
	if c.DefaultTimeout <= 0 {
		return ErrInvalidTimeout
	}

	return nil
}

// BuildDSN builds a driver connection string from the config.
func (c *Config) BuildDSN() (string, error) {
	if c.ConnectionString != "" {
		return c.ConnectionString, nil
	}

	switch c.Driver {
	case "sqlite":
		// Busy timeout keeps concurrent readers from failing while a
		// write transaction holds the file.
		return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)", c.Path), nil

	case "postgres":
		params := url.Values{}
		params.Set("sslmode", c.SSLMode)
		params.Set("connect_timeout", "30")
		params.Set("application_name", "ammd-history")

		dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?%s",
			url.QueryEscape(c.Username), url.QueryEscape(c.Password),
			c.Host, c.Port, c.Database, params.Encode())
		return dsn, nil

	default:
		return "", fmt.Errorf("unsupported history driver: %s", c.Driver)
	}
}
