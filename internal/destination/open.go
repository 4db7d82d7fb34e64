package destination

import (
	"context"
	"fmt"
	"io"

	"github.com/vvka-141/csvingest/internal/db"
	"github.com/vvka-141/csvingest/pkg/csvingest"
)

// Open connects to the database described by cfg and returns a destination
// owning that single connection. The caller must Close it.
func Open(ctx context.Context, cfg *csvingest.ConnectionConfig, logger csvingest.Logger) (csvingest.Destination, error) {
	switch cfg.Driver {
	case csvingest.DriverPostgres:
		connector, err := db.NewConnector(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create connector: %w", err)
		}
		pool, err := connector.Connect(ctx)
		if err != nil {
			if c, ok := connector.(io.Closer); ok {
				c.Close()
			}
			return nil, fmt.Errorf("failed to connect to database %q: %w", cfg.Database, err)
		}
		closer, _ := connector.(io.Closer)
		return NewPostgres(pool, closer), nil

	case csvingest.DriverMySQL, csvingest.DriverSQLite:
		dialect, err := DialectFor(cfg.Driver)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.OpenSQL(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database %q: %w", cfg.Database, err)
		}
		return NewSQL(sqlDB, dialect), nil

	default:
		return nil, fmt.Errorf("destination for driver %q: %w", cfg.Driver, csvingest.ErrUnsupportedDriver)
	}
}
