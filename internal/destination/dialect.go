// Package destination writes decoded batches into relational tables.
//
// Postgres is written through pgx with COPY; MySQL and SQLite through
// database/sql with multi-row INSERT statements. Every destination creates
// tables with DROP + CREATE in one transaction and appends each batch in its
// own transaction.
package destination

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/csvingest/pkg/csvingest"
)

// Dialect is the SQL flavor of a destination.
type Dialect struct {
	Driver csvingest.Driver

	// maxPlaceholders bounds the bind parameters of one statement.
	maxPlaceholders int
	types           map[csvingest.ColumnType]string
}

var (
	Postgres = Dialect{
		Driver:          csvingest.DriverPostgres,
		maxPlaceholders: 65535,
		types: map[csvingest.ColumnType]string{
			csvingest.TypeText:      "TEXT",
			csvingest.TypeInteger:   "BIGINT",
			csvingest.TypeFloat:     "DOUBLE PRECISION",
			csvingest.TypeTimestamp: "TIMESTAMP",
		},
	}
	MySQL = Dialect{
		Driver:          csvingest.DriverMySQL,
		maxPlaceholders: 65535,
		types: map[csvingest.ColumnType]string{
			csvingest.TypeText:      "TEXT",
			csvingest.TypeInteger:   "BIGINT",
			csvingest.TypeFloat:     "DOUBLE",
			csvingest.TypeTimestamp: "DATETIME(6)",
		},
	}
	SQLite = Dialect{
		Driver:          csvingest.DriverSQLite,
		maxPlaceholders: 32766,
		types: map[csvingest.ColumnType]string{
			csvingest.TypeText:      "TEXT",
			csvingest.TypeInteger:   "INTEGER",
			csvingest.TypeFloat:     "REAL",
			csvingest.TypeTimestamp: "TIMESTAMP",
		},
	}
)

// maxRowsPerInsert caps a multi-row INSERT regardless of placeholder room so
// statements stay well under server packet limits.
const maxRowsPerInsert = 1000

// DialectFor returns the dialect of driver.
func DialectFor(driver csvingest.Driver) (Dialect, error) {
	switch driver {
	case csvingest.DriverPostgres:
		return Postgres, nil
	case csvingest.DriverMySQL:
		return MySQL, nil
	case csvingest.DriverSQLite:
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("dialect %q: %w", driver, csvingest.ErrUnsupportedDriver)
	}
}

// SQLType returns the column type used for t.
func (d Dialect) SQLType(t csvingest.ColumnType) string {
	if s, ok := d.types[t]; ok {
		return s
	}
	return d.types[csvingest.TypeText]
}

// QuoteTable quotes a table name. A dot separates the schema from the table.
func (d Dialect) QuoteTable(table string) string {
	parts := strings.Split(table, ".")
	if d.Driver == csvingest.DriverPostgres {
		return pgx.Identifier(parts).Sanitize()
	}
	for i, p := range parts {
		parts[i] = d.QuoteIdent(p)
	}
	return strings.Join(parts, ".")
}

// QuoteIdent quotes a single identifier.
func (d Dialect) QuoteIdent(name string) string {
	switch d.Driver {
	case csvingest.DriverMySQL:
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	case csvingest.DriverPostgres:
		return pgx.Identifier{name}.Sanitize()
	default:
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
}

// DDL renders the CREATE TABLE statement for columns.
func DDL(d Dialect, table string, columns []csvingest.Column) string {
	return createSQL(d, table, columns, false)
}

func createSQL(d Dialect, table string, columns []csvingest.Column, ifNotExists bool) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if ifNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	fmt.Fprintf(&b, "%s (\n", d.QuoteTable(table))
	for i, c := range columns {
		fmt.Fprintf(&b, "  %s %s", d.QuoteIdent(c.Name), d.SQLType(c.Type))
		if i < len(columns)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(")")
	return b.String()
}

func dropSQL(d Dialect, table string) string {
	return "DROP TABLE IF EXISTS " + d.QuoteTable(table)
}

// rowsPerInsert returns how many rows of width columns fit one INSERT.
func (d Dialect) rowsPerInsert(columns int) int {
	if columns == 0 {
		return maxRowsPerInsert
	}
	n := d.maxPlaceholders / columns
	if n > maxRowsPerInsert {
		n = maxRowsPerInsert
	}
	if n < 1 {
		n = 1
	}
	return n
}

// insertSQL renders an INSERT of rows rows with positional placeholders.
func insertSQL(d Dialect, table string, columns []csvingest.Column, rows int) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(d.QuoteTable(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.QuoteIdent(c.Name))
	}
	b.WriteString(") VALUES ")

	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteString(tuple)
	}
	return b.String()
}
