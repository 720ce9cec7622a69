package config

import "time"

// Config is the root configuration for the enricher process.
type Config struct {
	Chain    ChainConfig    `yaml:"chain"`
	Database DatabaseConfig `yaml:"database"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	Logging  LoggingConfig  `yaml:"logging"`
	Health   HealthConfig   `yaml:"health"`
}

// ChainConfig holds the Ethereum node and contract addresses.
type ChainConfig struct {
	RPCURL      string        `yaml:"rpc_url"`
	Comptroller string        `yaml:"comptroller"` // Compound comptroller (Unitroller proxy)
	Oracle      string        `yaml:"oracle"`      // Open price feed, 6-decimal prices
	CallTimeout time.Duration `yaml:"call_timeout"`
}

// DatabaseConfig holds both PostgreSQL targets.
type DatabaseConfig struct {
	Primary   DBConfig `yaml:"primary"`
	Alternate DBConfig `yaml:"alternate"`

	// ReadTarget selects the pool snapshot reads go to: "primary" or "alternate".
	ReadTarget string `yaml:"read_target"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	Name        string        `yaml:"name"`
	User        string        `yaml:"user"`
	Password    string        `yaml:"password"`
	SSLMode     string        `yaml:"ssl_mode"`
	MaxConns    int           `yaml:"max_conns"`
	MinConns    int           `yaml:"min_conns"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// RefreshConfig controls enrichment passes.
type RefreshConfig struct {
	Interval time.Duration `yaml:"interval"` // 0 runs a single pass
	Persist  bool          `yaml:"persist"`
}

// LoggingConfig controls the slog handler and optional file rotation.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // "text" or "json"
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// HealthConfig holds the health server settings.
type HealthConfig struct {
	Port int `yaml:"port"` // 0 disables the server
}
