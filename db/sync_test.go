// ABOUTME: Tests for import sync state and the import log
// ABOUTME: Covers status transitions, sync tokens and duplicate source records
package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncStateLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := t.Context()

	state, err := GetSyncState(ctx, db, "google-contacts")
	require.NoError(t, err)
	assert.Nil(t, state)

	require.NoError(t, UpdateSyncStatus(ctx, db, "google-contacts", SyncStatusSyncing, nil))
	state, err = GetSyncState(ctx, db, "google-contacts")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, SyncStatusSyncing, state.Status)
	assert.Nil(t, state.LastSyncTime)

	msg := "quota exceeded"
	require.NoError(t, UpdateSyncStatus(ctx, db, "google-contacts", SyncStatusError, &msg))
	state, err = GetSyncState(ctx, db, "google-contacts")
	require.NoError(t, err)
	assert.Equal(t, SyncStatusError, state.Status)
	require.NotNil(t, state.ErrorMessage)
	assert.Equal(t, msg, *state.ErrorMessage)

	require.NoError(t, MarkSynced(ctx, db, "google-contacts", "token-1"))
	state, err = GetSyncState(ctx, db, "google-contacts")
	require.NoError(t, err)
	assert.Equal(t, SyncStatusIdle, state.Status)
	assert.Nil(t, state.ErrorMessage)
	require.NotNil(t, state.LastSyncToken)
	assert.Equal(t, "token-1", *state.LastSyncToken)
	assert.NotNil(t, state.LastSyncTime)
}

func TestSyncStatusRejectsUnknown(t *testing.T) {
	db := setupTestDB(t)

	err := UpdateSyncStatus(t.Context(), db, "google-contacts", "paused", nil)
	assert.Error(t, err)
}

func TestRecordImport(t *testing.T) {
	db := setupTestDB(t)
	ctx := t.Context()

	imported, err := WasImported(ctx, db, "google-contacts", "people/c1")
	require.NoError(t, err)
	assert.False(t, imported)

	require.NoError(t, RecordImport(ctx, db, "google-contacts", "people/c1", "person-1"))

	imported, err = WasImported(ctx, db, "google-contacts", "people/c1")
	require.NoError(t, err)
	assert.True(t, imported)

	assert.Error(t, RecordImport(ctx, db, "google-contacts", "people/c1", "person-2"), "source records import once")
}
