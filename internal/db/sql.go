package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/vvka-141/csvingest/pkg/csvingest"
)

// OpenSQL opens a single-connection database/sql handle for the mysql and
// sqlite drivers and pings it.
func OpenSQL(ctx context.Context, cfg *csvingest.ConnectionConfig) (*sql.DB, error) {
	var driverName, dsn string
	switch cfg.Driver {
	case csvingest.DriverMySQL:
		driverName, dsn = "mysql", BuildMySQLDSN(cfg)
	case csvingest.DriverSQLite:
		driverName, dsn = "sqlite", BuildSQLiteDSN(cfg)
	default:
		return nil, fmt.Errorf("database/sql driver %s: %w", cfg.Driver, csvingest.ErrUnsupportedDriver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %w", cfg.Driver, err, csvingest.ErrConnectionFailed)
	}
	db.SetMaxOpenConns(DefaultMaxConns)
	db.SetMaxIdleConns(DefaultMaxConns)
	db.SetConnMaxIdleTime(DefaultMaxConnIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		if cfg.Driver == csvingest.DriverSQLite {
			return nil, fmt.Errorf("open sqlite database %q: %w: %w", cfg.Database, err, csvingest.ErrConnectionFailed)
		}
		return nil, wrapConnectionError(err, cfg.Host, cfg.Port, cfg.Database)
	}
	return db, nil
}
