package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultComptroller   = "0x3d9819210A31b4961b30EF54bE2aeD79B9c9Cd3B"
	DefaultOracle        = "0x922018674c12a7F0D394ebEEf9B58F186CdE13c1"
	DefaultCallTimeout   = 15 * time.Second
	DefaultDBPort        = 5432
	DefaultDBSSLMode     = "prefer"
	DefaultMaxConns      = 10
	DefaultMinConns      = 0
	DefaultIdleTimeout   = 30 * time.Second
	DefaultReadTarget    = "primary"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28
)

func (c *Config) applyDefaults() {
	// Chain defaults
	if c.Chain.Comptroller == "" {
		c.Chain.Comptroller = DefaultComptroller
	}
	if c.Chain.Oracle == "" {
		c.Chain.Oracle = DefaultOracle
	}
	if c.Chain.CallTimeout == 0 {
		c.Chain.CallTimeout = DefaultCallTimeout
	}

	// Database defaults
	applyDBDefaults(&c.Database.Primary)
	applyDBDefaults(&c.Database.Alternate)
	if c.Database.ReadTarget == "" {
		c.Database.ReadTarget = DefaultReadTarget
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = DefaultLogMaxBackups
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = DefaultLogMaxAgeDays
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
	if db.IdleTimeout == 0 {
		db.IdleTimeout = DefaultIdleTimeout
	}
}
