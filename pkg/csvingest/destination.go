package csvingest

import "context"

// Destination is the relational database a load writes into.
// A Destination owns exactly one database connection; it is not safe for
// concurrent use.
type Destination interface {
	// CreateOrReplaceTable drops table if it exists and creates it with the
	// given columns, in order.
	CreateOrReplaceTable(ctx context.Context, table string, columns []Column) error

	// CreateTable creates table with the given columns unless a table of that
	// name already exists, in which case it is left untouched.
	CreateTable(ctx context.Context, table string, columns []Column) error

	// AppendRows inserts every row of batch into table. Either the whole batch
	// is committed or none of it is. Returns the number of rows written.
	AppendRows(ctx context.Context, table string, batch *Batch) (int64, error)

	// Close releases the connection.
	Close() error
}
