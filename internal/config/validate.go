package config

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Chain.RPCURL == "" {
		return errors.New("chain.rpc_url is required")
	}
	if !common.IsHexAddress(c.Chain.Comptroller) {
		return fmt.Errorf("chain.comptroller is not a hex address: %q", c.Chain.Comptroller)
	}
	if !common.IsHexAddress(c.Chain.Oracle) {
		return fmt.Errorf("chain.oracle is not a hex address: %q", c.Chain.Oracle)
	}
	if c.Chain.CallTimeout < 0 {
		return errors.New("chain.call_timeout must be >= 0")
	}

	if err := c.Database.Primary.validate("database.primary"); err != nil {
		return err
	}
	if err := c.Database.Alternate.validate("database.alternate"); err != nil {
		return err
	}
	switch c.Database.ReadTarget {
	case "primary", "alternate":
	default:
		return fmt.Errorf("database.read_target must be primary or alternate, got %q", c.Database.ReadTarget)
	}

	if c.Refresh.Interval < 0 {
		return errors.New("refresh.interval must be >= 0")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	if c.Health.Port < 0 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port must be between 0 and 65535, got %d", c.Health.Port)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	if db.IdleTimeout < 0 {
		return fmt.Errorf("%s.idle_timeout must be >= 0", prefix)
	}
	return nil
}
