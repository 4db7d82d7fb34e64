package destination

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vvka-141/csvingest/pkg/csvingest"
)

// SQLDestination writes through database/sql for the MySQL and SQLite dialects.
type SQLDestination struct {
	db      *sql.DB
	dialect Dialect
}

var _ csvingest.Destination = (*SQLDestination)(nil)

// NewSQL wraps db. The destination owns db and closes it.
func NewSQL(db *sql.DB, dialect Dialect) *SQLDestination {
	return &SQLDestination{db: db, dialect: dialect}
}

// CreateOrReplaceTable drops table if it exists and creates it empty.
// MySQL commits DDL implicitly, so there the two statements are not atomic.
func (s *SQLDestination) CreateOrReplaceTable(ctx context.Context, table string, columns []csvingest.Column) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, dropSQL(s.dialect, table)); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
		if _, err := tx.ExecContext(ctx, DDL(s.dialect, table, columns)); err != nil {
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
func (s *SQLDestination) CreateTable(ctx context.Context, table string, columns []csvingest.Column) error {
	if _, err := s.db.ExecContext(ctx, createSQL(s.dialect, table, columns, true)); err != nil {
		return fmt.Errorf("create table %s: %w: %w", table, err, csvingest.ErrWriteFailed)
	}
	return nil
}

// AppendRows inserts batch into table in one transaction, using multi-row
// INSERT statements sized under the dialect's placeholder limit.
func (s *SQLDestination) AppendRows(ctx context.Context, table string, batch *csvingest.Batch) (int64, error) {
	if batch.Len() == 0 {
		return 0, nil
	}

	per := s.dialect.rowsPerInsert(len(batch.Columns))
	var total int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var full *sql.Stmt
		if len(batch.Rows) >= per {
			stmt, err := tx.PrepareContext(ctx, insertSQL(s.dialect, table, batch.Columns, per))
			if err != nil {
				return fmt.Errorf("prepare insert: %w", err)
			}
			defer stmt.Close()
			full = stmt
		}

		args := make([]any, 0, per*len(batch.Columns))
		for start := 0; start < len(batch.Rows); start += per {
			end := min(start+per, len(batch.Rows))
			args = args[:0]
			for _, row := range batch.Rows[start:end] {
				args = append(args, row...)
			}

			var res sql.Result
			var err error
			if end-start == per {
				res, err = full.ExecContext(ctx, args...)
			} else {
				res, err = tx.ExecContext(ctx, insertSQL(s.dialect, table, batch.Columns, end-start), args...)
			}
			if err != nil {
				return fmt.Errorf("insert rows %d-%d: %w", start, end-1, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				n = int64(end - start)
			}
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("append %d rows to %s: %w: %w", batch.Len(), table, err, csvingest.ErrWriteFailed)
	}
	return total, nil
}

// Close closes the database handle.
func (s *SQLDestination) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for verification queries.
func (s *SQLDestination) DB() *sql.DB {
	return s.db
}

func (s *SQLDestination) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
