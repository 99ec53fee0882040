// Package testdb provides utilities for database-backed integration tests.
// Tests that need a live database call Get, which skips the test when no
// database URL is configured so the unit suite runs without one.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/stretchr/testify/require"

	"github.com/workstreamhq/recur-api/internal/platform/postgres"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

// GetTestDatabaseURL returns the database URL for tests. It checks
// DATABASE_URL and RECUR_TEST_DB_URL in that order, returning the first
// non-empty value.
func GetTestDatabaseURL() string {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("RECUR_TEST_DB_URL")
	}
	return dbURL
}

// ShouldSkipDatabaseTest returns true if no database URL is configured,
// indicating that database integration tests should be skipped.
func ShouldSkipDatabaseTest() bool {
	return GetTestDatabaseURL() == ""
}

// Get opens a connection to the configured test database, applies the
// embedded migrations and registers cleanup. The test is skipped when no
// database URL is configured.
func Get(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		t.Skip("skipping database test: DATABASE_URL not set")
	}

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "Failed to open test database connection")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "Failed to ping test database")

	migrationLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, postgres.RunMigrations(db, "up", migrationLogger),
		"Failed to apply migrations to test database")

	return db
}

// WithTx executes a test function within a transaction, automatically
// rolling back after the test completes. This ensures test isolation and
// prevents side effects between tests sharing a database.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "Failed to begin transaction")

	defer func() {
		err := tx.Rollback()
		if err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Errorf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// Truncate removes all rows from the given tables. Useful for tests that
// must commit and therefore cannot rely on WithTx rollback.
func Truncate(t *testing.T, db *sql.DB, tables ...string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	for _, table := range tables {
		_, err := db.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "Failed to truncate table %s", table)
	}
}
