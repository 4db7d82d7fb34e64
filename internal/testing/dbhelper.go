// Package testing holds helpers shared by integration tests.
package testing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/csvingest/internal/db"
	"github.com/vvka-141/csvingest/internal/destination"
	"github.com/vvka-141/csvingest/internal/logging"
	"github.com/vvka-141/csvingest/internal/testinfra"
	"github.com/vvka-141/csvingest/pkg/csvingest"
)

// TestConnEnv names the environment variable that points tests at an existing server.
const TestConnEnv = "CSVINGEST_TEST_CONN"

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		container, err := testinfra.StartPostgres(context.Background())
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns the test database connection string.
// Priority: CSVINGEST_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv(TestConnEnv); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", TestConnEnv, err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString for convenience.
// Returns the test connection string if available, otherwise skips the test.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// UniqueTable returns a table name no other test uses.
func UniqueTable(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString()[:8], "-", "")
}

// OpenPostgres opens a Postgres destination on the test database and drops
// table when the test ends.
func OpenPostgres(t *testing.T, table string) *destination.PostgresDestination {
	t.Helper()

	connString := RequireDatabase(t)
	cfg, err := db.ParseConnectionString(connString)
	if err != nil {
		t.Fatalf("parse %s: %v", TestConnEnv, err)
	}

	ctx := context.Background()
	dest, err := destination.Open(ctx, cfg, logging.NewNullLogger())
	if err != nil {
		t.Fatalf("open postgres destination: %v", err)
	}
	pg := dest.(*destination.PostgresDestination)

	t.Cleanup(func() {
		DropPostgresTable(t, connString, table)
		pg.Close()
	})
	return pg
}

// DropPostgresTable drops table through a separate connection.
func DropPostgresTable(t *testing.T, connString, table string) {
	t.Helper()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Logf("Warning: Failed to connect for cleanup: %v", err)
		return
	}
	defer pool.Close()

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", pgx.Identifier(strings.Split(table, ".")).Sanitize())
	if _, err := pool.Exec(ctx, query); err != nil {
		t.Logf("Warning: Failed to drop table %s: %v", table, err)
	}
}

// OpenSQLite opens a SQLite destination on a fresh file in the test's temp dir.
func OpenSQLite(t *testing.T) (*destination.SQLDestination, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ny_taxi.db")
	cfg := &csvingest.ConnectionConfig{Driver: csvingest.DriverSQLite, Database: path}
	dest, err := destination.Open(context.Background(), cfg, logging.NewNullLogger())
	if err != nil {
		t.Fatalf("open sqlite destination: %v", err)
	}
	sqlDest := dest.(*destination.SQLDestination)
	t.Cleanup(func() { sqlDest.Close() })
	return sqlDest, path
}
