package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/csvingest/internal/csvdecode"
	"github.com/vvka-141/csvingest/internal/destination"
	"github.com/vvka-141/csvingest/internal/logging"
	testhelpers "github.com/vvka-141/csvingest/internal/testing"
	"github.com/vvka-141/csvingest/pkg/csvingest"
)

const zonesCSV = `"LocationID","Borough","Zone","service_zone"
1,"EWR","Newark Airport","EWR"
2,"Queens","Jamaica Bay","Boro Zone"
3,"Bronx","Allerton/Pelham Gardens","Boro Zone"
264,"Unknown","NV",
`

var zonesSchema = csvingest.Schema{{Name: "LocationID", Type: csvingest.TypeInteger}}

func TestSQLite_ReplaceTwiceIsIdempotent(t *testing.T) {
	dest, _ := testhelpers.OpenSQLite(t)
	ing := NewIngester(csvdecode.New(), dest, logging.NewNullLogger(), nil)
	req := csvingest.LoadRequest{Source: writeSource(t, zonesCSV), Table: "zones", Schema: zonesSchema}

	for i := 0; i < 2; i++ {
		result, err := ing.LoadReplace(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, int64(4), result.Rows)
	}

	rows, err := dest.DB().Query(`SELECT "LocationID", "Borough", "service_zone" FROM zones ORDER BY rowid`)
	require.NoError(t, err)
	defer rows.Close()

	var got []string
	for rows.Next() {
		var (
			id      int64
			borough string
			service *string
		)
		require.NoError(t, rows.Scan(&id, &borough, &service))
		s := "<nil>"
		if service != nil {
			s = *service
		}
		got = append(got, fmt.Sprintf("%d|%s|%s", id, borough, s))
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{
		"1|EWR|EWR",
		"2|Queens|Boro Zone",
		"3|Bronx|Boro Zone",
		"264|Unknown|<nil>",
	}, got)
}

func TestSQLite_AppendTwiceDoublesRows(t *testing.T) {
	dest, _ := testhelpers.OpenSQLite(t)
	ing := NewIngester(csvdecode.New(), dest, logging.NewNullLogger(), nil)
	req := csvingest.LoadRequest{
		Source: writeTrips(t, 2345), Table: "yellow_taxi_data", Schema: tripSchema, BatchSize: 1000,
	}

	for i := 0; i < 2; i++ {
		result, err := ing.LoadAppend(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, int64(2345), result.Rows)
		assert.Equal(t, 3, result.Batches)
	}
	assert.Equal(t, int64(4690), countTable(t, dest, "yellow_taxi_data"))

	req.Recreate = true
	_, err := ing.LoadAppend(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(2345), countTable(t, dest, "yellow_taxi_data"))
}

func TestSQLite_AppendColumnsMatchProbe(t *testing.T) {
	source := writeTrips(t, 40)
	probe, err := csvdecode.New().Probe(context.Background(), source, tripSchema)
	require.NoError(t, err)

	for _, size := range []int{1, 3, 40, 1000} {
		t.Run(fmt.Sprintf("batch_%d", size), func(t *testing.T) {
			dest, _ := testhelpers.OpenSQLite(t)
			ing := NewIngester(csvdecode.New(), dest, logging.NewNullLogger(), nil)

			_, err := ing.LoadAppend(context.Background(), csvingest.LoadRequest{
				Source: source, Table: "trips", Schema: tripSchema, BatchSize: size,
			})
			require.NoError(t, err)

			rows, err := dest.DB().Query(`SELECT name, type FROM pragma_table_info('trips') ORDER BY cid`)
			require.NoError(t, err)
			defer rows.Close()

			var got []csvingest.Column
			for rows.Next() {
				var name, typ string
				require.NoError(t, rows.Scan(&name, &typ))
				got = append(got, csvingest.Column{Name: name, Type: sqliteType(t, typ)})
			}
			require.NoError(t, rows.Err())
			assert.Equal(t, probe.Columns, got)
		})
	}
}

func TestPostgres_AppendThenReplace(t *testing.T) {
	table := testhelpers.UniqueTable("yellow_taxi_data")
	dest := testhelpers.OpenPostgres(t, table)
	ing := NewIngester(csvdecode.New(), dest, logging.NewNullLogger(), nil)
	source := writeTrips(t, 2500)
	ctx := context.Background()

	result, err := ing.LoadAppend(ctx, csvingest.LoadRequest{
		Source: source, Table: table, Schema: tripSchema, BatchSize: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Batches)

	replaced, err := ing.LoadReplace(ctx, csvingest.LoadRequest{Source: source, Table: table, Schema: tripSchema})
	require.NoError(t, err)
	assert.Equal(t, result.Rows, replaced.Rows)

	var n int64
	err = dest.Pool().QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", destination.Postgres.QuoteTable(table))).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), n)
}

func countTable(t *testing.T, dest *destination.SQLDestination, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, dest.DB().QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", destination.SQLite.QuoteTable(table))).Scan(&n))
	return n
}

func sqliteType(t *testing.T, typ string) csvingest.ColumnType {
	t.Helper()
	switch typ {
	case "INTEGER":
		return csvingest.TypeInteger
	case "REAL":
		return csvingest.TypeFloat
	case "TIMESTAMP":
		return csvingest.TypeTimestamp
	case "TEXT":
		return csvingest.TypeText
	}
	t.Fatalf("unexpected sqlite type %q", typ)
	return csvingest.TypeText
}
