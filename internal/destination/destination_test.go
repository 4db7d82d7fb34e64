package destination_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/csvingest/internal/destination"
	"github.com/vvka-141/csvingest/internal/logging"
	testhelpers "github.com/vvka-141/csvingest/internal/testing"
	"github.com/vvka-141/csvingest/pkg/csvingest"
)

var tripColumns = []csvingest.Column{
	{Name: "VendorID", Type: csvingest.TypeInteger},
	{Name: "store_and_fwd_flag", Type: csvingest.TypeText},
	{Name: "fare_amount", Type: csvingest.TypeFloat},
}

func tripBatch(n int) *csvingest.Batch {
	rows := make([][]any, n)
	for i := range rows {
		var flag any = "N"
		if i%10 == 0 {
			flag = nil
		}
		rows[i] = []any{int64(i % 3), flag, float64(i) / 4}
	}
	return &csvingest.Batch{Columns: tripColumns, Rows: rows}
}

func countRows(t *testing.T, dest *destination.SQLDestination, table string) int64 {
	t.Helper()
	var n int64
	err := dest.DB().QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM %s`, destination.SQLite.QuoteTable(table))).Scan(&n)
	require.NoError(t, err)
	return n
}

func TestSQLite_CreateAndAppend(t *testing.T) {
	ctx := context.Background()
	dest, _ := testhelpers.OpenSQLite(t)

	require.NoError(t, dest.CreateOrReplaceTable(ctx, "yellow_taxi_data", tripColumns))
	assert.Equal(t, int64(0), countRows(t, dest, "yellow_taxi_data"))

	// 2500 rows cross two full INSERT chunks and a remainder.
	n, err := dest.AppendRows(ctx, "yellow_taxi_data", tripBatch(2500))
	require.NoError(t, err)
	assert.Equal(t, int64(2500), n)

	n, err = dest.AppendRows(ctx, "yellow_taxi_data", tripBatch(7))
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, int64(2507), countRows(t, dest, "yellow_taxi_data"))

	var nulls int64
	err = dest.DB().QueryRow(`SELECT COUNT(*) FROM yellow_taxi_data WHERE store_and_fwd_flag IS NULL`).Scan(&nulls)
	require.NoError(t, err)
	assert.Equal(t, int64(250+1), nulls)

	var fare float64
	err = dest.DB().QueryRow(`SELECT fare_amount FROM yellow_taxi_data WHERE rowid = 6`).Scan(&fare)
	require.NoError(t, err)
	assert.InDelta(t, 1.25, fare, 1e-9)
}

func TestSQLite_ColumnTypes(t *testing.T) {
	ctx := context.Background()
	dest, _ := testhelpers.OpenSQLite(t)

	cols := append([]csvingest.Column{}, tripColumns...)
	cols = append(cols, csvingest.Column{Name: "tpep_pickup_datetime", Type: csvingest.TypeTimestamp})
	require.NoError(t, dest.CreateOrReplaceTable(ctx, "trips", cols))

	rows, err := dest.DB().Query(`SELECT name, type FROM pragma_table_info('trips') ORDER BY cid`)
	require.NoError(t, err)
	defer rows.Close()

	var got []string
	for rows.Next() {
		var name, typ string
		require.NoError(t, rows.Scan(&name, &typ))
		got = append(got, name+" "+typ)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{
		"VendorID INTEGER",
		"store_and_fwd_flag TEXT",
		"fare_amount REAL",
		"tpep_pickup_datetime TIMESTAMP",
	}, got)

	batch := &csvingest.Batch{
		Columns: cols,
		Rows:    [][]any{{int64(1), "N", 9.5, time.Date(2021, 1, 1, 0, 30, 10, 0, time.UTC)}},
	}
	n, err := dest.AppendRows(ctx, "trips", batch)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSQLite_ReplaceDropsExistingRows(t *testing.T) {
	ctx := context.Background()
	dest, _ := testhelpers.OpenSQLite(t)

	for i := 0; i < 2; i++ {
		require.NoError(t, dest.CreateOrReplaceTable(ctx, "zones", tripColumns))
		_, err := dest.AppendRows(ctx, "zones", tripBatch(265))
		require.NoError(t, err)
		assert.Equal(t, int64(265), countRows(t, dest, "zones"), "after replace #%d", i+1)
	}
}

func TestSQLite_CreateTableKeepsExisting(t *testing.T) {
	ctx := context.Background()
	dest, _ := testhelpers.OpenSQLite(t)

	require.NoError(t, dest.CreateTable(ctx, "trips", tripColumns))
	_, err := dest.AppendRows(ctx, "trips", tripBatch(5))
	require.NoError(t, err)

	require.NoError(t, dest.CreateTable(ctx, "trips", tripColumns))
	assert.Equal(t, int64(5), countRows(t, dest, "trips"))
}

func TestSQLite_ReplaceWithDifferentShape(t *testing.T) {
	ctx := context.Background()
	dest, _ := testhelpers.OpenSQLite(t)

	require.NoError(t, dest.CreateOrReplaceTable(ctx, "zones", tripColumns))
	require.NoError(t, dest.CreateOrReplaceTable(ctx, "zones", tripColumns[:1]))

	_, err := dest.AppendRows(ctx, "zones", &csvingest.Batch{
		Columns: tripColumns[:1],
		Rows:    [][]any{{int64(1)}},
	})
	require.NoError(t, err)
}

func TestSQLite_AppendEmptyBatch(t *testing.T) {
	ctx := context.Background()
	dest, _ := testhelpers.OpenSQLite(t)

	n, err := dest.AppendRows(ctx, "never_created", &csvingest.Batch{Columns: tripColumns})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestSQLite_AppendToMissingTable(t *testing.T) {
	ctx := context.Background()
	dest, _ := testhelpers.OpenSQLite(t)

	_, err := dest.AppendRows(ctx, "missing", tripBatch(3))
	require.Error(t, err)
	assert.ErrorIs(t, err, csvingest.ErrWriteFailed)
	assert.Equal(t, csvingest.ExitWriteError, csvingest.ExitCodeForError(err))
}

func TestSQLite_FailedBatchLeavesNoRows(t *testing.T) {
	ctx := context.Background()
	dest, _ := testhelpers.OpenSQLite(t)

	require.NoError(t, dest.CreateOrReplaceTable(ctx, "zones", tripColumns))

	// Row 1200 holds a value no driver can bind, failing the second
	// INSERT after the first chunk has already executed.
	batch := tripBatch(1500)
	batch.Rows[1200][0] = make(chan int)

	_, err := dest.AppendRows(ctx, "zones", batch)
	require.ErrorIs(t, err, csvingest.ErrWriteFailed)
	assert.Equal(t, int64(0), countRows(t, dest, "zones"))
}

func TestSQLite_CanceledContext(t *testing.T) {
	dest, _ := testhelpers.OpenSQLite(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := dest.CreateOrReplaceTable(ctx, "zones", tripColumns)
	require.Error(t, err)
	assert.ErrorIs(t, err, csvingest.ErrWriteFailed)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := destination.Open(context.Background(),
		&csvingest.ConnectionConfig{Driver: "oracle", Database: "x"},
		logging.NewNullLogger())
	assert.ErrorIs(t, err, csvingest.ErrUnsupportedDriver)
}

func TestPostgres_CreateAndAppend(t *testing.T) {
	table := testhelpers.UniqueTable("yellow_taxi_data")
	dest := testhelpers.OpenPostgres(t, table)
	ctx := context.Background()

	require.NoError(t, dest.CreateOrReplaceTable(ctx, table, tripColumns))

	n, err := dest.AppendRows(ctx, table, tripBatch(2500))
	require.NoError(t, err)
	assert.Equal(t, int64(2500), n)

	var count int64
	err = dest.Pool().QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", destination.Postgres.QuoteTable(table))).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), count)

	require.NoError(t, dest.CreateTable(ctx, table, tripColumns))
	err = dest.Pool().QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", destination.Postgres.QuoteTable(table))).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), count)

	require.NoError(t, dest.CreateOrReplaceTable(ctx, table, tripColumns))
	err = dest.Pool().QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", destination.Postgres.QuoteTable(table))).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestPostgres_ColumnTypes(t *testing.T) {
	table := testhelpers.UniqueTable("trips")
	dest := testhelpers.OpenPostgres(t, table)
	ctx := context.Background()

	cols := append([]csvingest.Column{}, tripColumns...)
	cols = append(cols, csvingest.Column{Name: "tpep_pickup_datetime", Type: csvingest.TypeTimestamp})
	require.NoError(t, dest.CreateOrReplaceTable(ctx, table, cols))

	pickup := time.Date(2021, 1, 1, 0, 30, 10, 0, time.UTC)
	_, err := dest.AppendRows(ctx, table, &csvingest.Batch{
		Columns: cols,
		Rows:    [][]any{{int64(2), nil, 14.5, pickup}},
	})
	require.NoError(t, err)

	var (
		vendor int64
		flag   *string
		fare   float64
		at     time.Time
	)
	err = dest.Pool().QueryRow(ctx, fmt.Sprintf(
		`SELECT "VendorID", store_and_fwd_flag, fare_amount, tpep_pickup_datetime FROM %s`,
		destination.Postgres.QuoteTable(table))).Scan(&vendor, &flag, &fare, &at)
	require.NoError(t, err)
	assert.Equal(t, int64(2), vendor)
	assert.Nil(t, flag)
	assert.Equal(t, 14.5, fare)
	assert.True(t, pickup.Equal(at), "got %v", at)

	var dataType string
	err = dest.Pool().QueryRow(ctx,
		`SELECT data_type FROM information_schema.columns WHERE table_name = $1 AND column_name = 'tpep_pickup_datetime'`,
		table).Scan(&dataType)
	require.NoError(t, err)
	assert.Equal(t, "timestamp without time zone", dataType)
}

func TestPostgres_AppendToMissingTable(t *testing.T) {
	table := testhelpers.UniqueTable("missing")
	dest := testhelpers.OpenPostgres(t, table)

	_, err := dest.AppendRows(context.Background(), table, tripBatch(1))
	assert.ErrorIs(t, err, csvingest.ErrWriteFailed)
}
