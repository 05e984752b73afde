package audit

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"greekgeeks/internal/platform/config"
	"greekgeeks/internal/platform/database"
)

func TestLogger(t *testing.T) {
	db, err := database.Open(config.DatabaseConfig{DSN: "file::memory:?_foreign_keys=on", MaxConnections: 1})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))

	l := NewLogger(db)
	ctx := context.Background()

	l.Log(ctx, Entry{OrganizationID: "org_1", UserID: "usr_1", Action: ActionRankCreated, ResourceType: "rank", ResourceID: "rnk_1",
		Metadata: map[string]interface{}{"name": "Brother"}})
	l.Log(ctx, Entry{OrganizationID: "org_1", UserID: "usr_1", Action: ActionRankDeleted, ResourceType: "rank", ResourceID: "rnk_1"})
	l.Log(ctx, Entry{OrganizationID: "org_2", UserID: "usr_2", Action: ActionContactDeleted, ResourceType: "contact", ResourceID: "con_1"})

	logs, err := l.List(ctx, "org_1", 100)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, ActionRankDeleted, logs[0].Action)
	assert.Equal(t, "Brother", logs[1].Metadata["name"])

	logs, err = l.List(ctx, "org_1", 1)
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	logs, err = l.List(ctx, "org_3", 100)
	require.NoError(t, err)
	assert.NotNil(t, logs)
	assert.Empty(t, logs)
}

func TestLogger_InsertFailureIsSwallowed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO audit_logs").WillReturnError(assert.AnError)

	NewLogger(db).Log(context.Background(), Entry{OrganizationID: "org_1", Action: ActionMemberRemoved})
	assert.NoError(t, mock.ExpectationsWereMet())
}
