package db

import (
	"fmt"
	"strings"

	"github.com/vvka-141/dbhandler/pkg/dbhandler"
)

// NewDriver returns the driver registered under name. The empty name selects PostgreSQL.
func NewDriver(name string, logger dbhandler.Logger) (dbhandler.Driver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", dbhandler.DriverPostgres, "postgresql", dbhandler.DriverPgx:
		return NewPgxDriver(logger), nil
	case dbhandler.DriverSQLite, "sqlite":
		return NewSQLDriver(dbhandler.DriverSQLite, logger), nil
	default:
		return nil, fmt.Errorf("%q: %w", name, dbhandler.ErrUnsupportedDriver)
	}
}
