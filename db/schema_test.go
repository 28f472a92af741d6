// ABOUTME: Tests for database schema creation
// ABOUTME: Uses in-memory SQLite for fast isolated tests
package db

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSchema(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, InitSchema(db))
	require.NoError(t, InitSchema(db), "schema must be re-appliable")

	for _, table := range []string{"people", "sync_state", "sync_log"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}

	for _, idx := range []string{"idx_people_created_at", "idx_people_email", "idx_people_status", "idx_sync_log_person"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name=?", idx).Scan(&name)
		assert.NoError(t, err, "index %s", idx)
	}
}

func TestSchemaRejectsNegativeCounters(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.Exec(`INSERT INTO people (id, engagement, created_at, updated_at)
		VALUES ('x', -1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	assert.Error(t, err)

	_, err = db.Exec(`INSERT INTO people (id, connection_degree, created_at, updated_at)
		VALUES ('y', -2, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	assert.Error(t, err)
}
