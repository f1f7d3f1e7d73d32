package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/LeJamon/goAMMd/internal/core/ledger/genesis"
)

// LoadConfig loads configuration in priority order:
//  1. Default values
//  2. Configuration file (when path is non-empty)
//  3. Environment variables (AMMD_ prefix)
//
// An empty path skips the file and runs on defaults plus environment,
// which is how tests and throwaway standalone nodes start.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		if err := loadConfigFile(v, path); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	v.SetEnvPrefix("AMMD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.configPath = path

	// An empty [genesis] section seeds the development mints, so a bare
	// config file still produces a usable standalone chain.
	if len(config.Genesis.Mints) == 0 && len(config.Genesis.Accounts) == 0 {
		config.Genesis = genesis.DefaultConfig()
	}

	if err := ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}

// DefaultConfig returns the built-in defaults without touching the
// filesystem or environment.
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		// Defaults always unmarshal; a failure here is a programming error.
		panic(fmt.Sprintf("config: default unmarshal failed: %v", err))
	}
	config.Genesis = genesis.DefaultConfig()
	return &config
}

// loadConfigFile reads one TOML file into the viper instance.
func loadConfigFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", path)
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}
