package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"greekgeeks/internal/platform/config"
)

func TestMigrate(t *testing.T) {
	db, err := Open(config.DatabaseConfig{DSN: "file::memory:?_foreign_keys=on", MaxConnections: 1})
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db))

	// Running twice is a no-op.
	require.NoError(t, Migrate(ctx, db))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)

	for _, table := range []string{"organizations", "users", "organization_members", "contacts",
		"contact_methods", "contact_ranks", "contact_notes", "membership_requests", "notifications", "audit_logs"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		assert.NoError(t, err, table)
	}
}

func TestOpen_ForeignKeysEnabled(t *testing.T) {
	db, err := Open(config.DatabaseConfig{DSN: "file::memory:?_foreign_keys=on", MaxConnections: 1})
	require.NoError(t, err)
	defer db.Close()

	var enabled int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&enabled))
	assert.Equal(t, 1, enabled)
}
