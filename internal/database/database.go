package database

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/checkoutprobe/checkoutprobe/internal/config"
)

var (
	DB     *sql.DB
	Driver string
)

// Connect opens the run history store described by cfg and sets DB
func Connect(cfg *config.StoreConfig) error {
	db, err := Open(cfg)
	if err != nil {
		return err
	}
	DB = db
	Driver = cfg.Driver
	return nil
}

// Open opens and pings a history database without touching the package globals
func Open(cfg *config.StoreConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return openPostgres(cfg.DSN)
	case config.DriverSQLite:
		return openSQLite(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported history driver %q", cfg.Driver)
	}
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// Rebind rewrites ? placeholders into the $n form postgres expects.
// Queries are written with ? so the same text serves both drivers.
func Rebind(driver, query string) string {
	if driver != config.DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
