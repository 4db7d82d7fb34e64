package destination

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/csvingest/pkg/csvingest"
)

// PostgresDestination writes through a single-connection pgx pool.
type PostgresDestination struct {
	pool *pgxpool.Pool

	// closer releases resources tied to the pool, such as a Cloud SQL dialer.
	closer io.Closer
}

var _ csvingest.Destination = (*PostgresDestination)(nil)

// NewPostgres wraps pool. closer, if not nil, is closed after the pool.
func NewPostgres(pool *pgxpool.Pool, closer io.Closer) *PostgresDestination {
	return &PostgresDestination{pool: pool, closer: closer}
}

// CreateOrReplaceTable drops table if it exists and creates it empty.
func (p *PostgresDestination) CreateOrReplaceTable(ctx context.Context, table string, columns []csvingest.Column) error {
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, dropSQL(Postgres, table)); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
		if _, err := tx.Exec(ctx, DDL(Postgres, table, columns)); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace table %s: %w: %w", table, err, csvingest.ErrWriteFailed)
	}
	return nil
}

// CreateTable creates table unless it already exists.
func (p *PostgresDestination) CreateTable(ctx context.Context, table string, columns []csvingest.Column) error {
	if _, err := p.pool.Exec(ctx, createSQL(Postgres, table, columns, true)); err != nil {
		return fmt.Errorf("create table %s: %w: %w", table, err, csvingest.ErrWriteFailed)
	}
	return nil
}

// AppendRows copies batch into table in one transaction.
func (p *PostgresDestination) AppendRows(ctx context.Context, table string, batch *csvingest.Batch) (int64, error) {
	if batch.Len() == 0 {
		return 0, nil
	}

	var n int64
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		var err error
		n, err = tx.CopyFrom(ctx,
			pgx.Identifier(strings.Split(table, ".")),
			batch.ColumnNames(),
			pgx.CopyFromRows(batch.Rows),
		)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("append %d rows to %s: %w: %w", batch.Len(), table, err, csvingest.ErrWriteFailed)
	}
	return n, nil
}

// Close closes the pool, then the companion closer.
func (p *PostgresDestination) Close() error {
	p.pool.Close()
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}

// Pool exposes the underlying pool for verification queries.
func (p *PostgresDestination) Pool() *pgxpool.Pool {
	return p.pool
}
