package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// AppName names the XDG data directory
const AppName = "checkoutprobe"

// Supported history drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// StoreConfig holds configuration for the run history database
type StoreConfig struct {
	Driver   string
	DSN      string
	Postgres *PostgresConfig
}

// PostgresConfig holds configuration for PostgreSQL database connection
type PostgresConfig struct {
	User     string
	Password string
	Database string
	Host     string
}

// LoadStoreConfig loads history storage configuration from environment variables
func LoadStoreConfig(getenv func(string) string) (*StoreConfig, error) {
	config := &StoreConfig{
		Driver: strings.ToLower(strings.TrimSpace(getenv("HISTORY_DRIVER"))),
		DSN:    getenv("HISTORY_DSN"),
	}
	if config.Driver == "" {
		config.Driver = DriverSQLite
	}

	switch config.Driver {
	case DriverNone:
		return config, nil
	case DriverSQLite:
		if config.DSN == "" {
			config.DSN = filepath.Join(XDGDataDir(), "history.db")
		}
		return config, nil
	case DriverPostgres:
		if config.DSN != "" {
			return config, nil
		}
		pg, err := LoadPostgresConfig(getenv)
		if err != nil {
			return nil, err
		}
		config.Postgres = pg
		config.DSN = pg.ConnectionString()
		return config, nil
	default:
		return nil, fmt.Errorf("HISTORY_DRIVER must be one of sqlite, postgres, none; got %q", config.Driver)
	}
}

// Enabled reports whether run history should be persisted
func (c *StoreConfig) Enabled() bool {
	return c.Driver != DriverNone
}

// XDGDataDir returns the data directory used for the default sqlite history.
// On Linux: ~/.local/share/checkoutprobe
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// LoadPostgresConfig loads PostgreSQL configuration from environment variables
func LoadPostgresConfig(getenv func(string) string) (*PostgresConfig, error) {
	config := &PostgresConfig{
		User:     getenv("POSTGRES_USER"),
		Password: getenv("POSTGRES_PASSWORD"),
		Database: getenv("POSTGRES_DB"),
		Host:     getenv("POSTGRES_HOSTNAME"),
	}

	// Validate required fields
	if config.User == "" {
		return nil, fmt.Errorf("POSTGRES_USER is required")
	}
	if config.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if config.Database == "" {
		return nil, fmt.Errorf("POSTGRES_DB is required")
	}
	if config.Host == "" {
		return nil, fmt.Errorf("POSTGRES_HOSTNAME is required")
	}

	return config, nil
}

// ConnectionString returns a PostgreSQL connection string
func (c *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.User, c.Password, c.Database)
}
