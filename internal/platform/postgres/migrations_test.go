package postgres

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := embeddedMigrations.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries, "at least one migration must be embedded")

	for _, entry := range entries {
		assert.True(t, strings.HasSuffix(entry.Name(), ".sql"),
			"unexpected non-SQL file in migrations: %s", entry.Name())
	}
}

func TestCreateTasksMigrationShape(t *testing.T) {
	content, err := embeddedMigrations.ReadFile("migrations/20260301000001_create_tasks.sql")
	require.NoError(t, err)

	sql := string(content)
	assert.Contains(t, sql, "+goose Up")
	assert.Contains(t, sql, "+goose Down")
	assert.Contains(t, sql, "CREATE TABLE tasks")

	// The materializer's ON CONFLICT target depends on this exact index.
	assert.Contains(t, sql, "CREATE UNIQUE INDEX tasks_parent_due_unique")
	assert.Contains(t, sql, "WHERE parent_task_id IS NOT NULL AND due_date IS NOT NULL")
}

func TestRunMigrationsRejectsUnknownCommand(t *testing.T) {
	err := RunMigrations(nil, "sideways", slog.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migration command")
}
