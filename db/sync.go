// ABOUTME: Database operations for sync_state and sync_log tables
// ABOUTME: Tracks import status per external service and which source records were imported
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SyncState is the import status of one external service.
type SyncState struct {
	Service       string
	LastSyncTime  *time.Time
	LastSyncToken *string
	Status        string
	ErrorMessage  *string
	UpdatedAt     time.Time
}

// Sync status values.
const (
	SyncStatusIdle    = "idle"
	SyncStatusSyncing = "syncing"
	SyncStatusError   = "error"
)

// GetSyncState returns nil when the service has never been synced.
func GetSyncState(ctx context.Context, db *sql.DB, service string) (*SyncState, error) {
	var state SyncState
	var lastSyncTime sql.NullTime
	var lastSyncToken, errorMessage sql.NullString

	err := db.QueryRowContext(ctx, `
		SELECT service, last_sync_time, last_sync_token, status, error_message, updated_at
		FROM sync_state
		WHERE service = ?
	`, service).Scan(&state.Service, &lastSyncTime, &lastSyncToken, &state.Status, &errorMessage, &state.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}

	if lastSyncTime.Valid {
		state.LastSyncTime = &lastSyncTime.Time
	}
	state.LastSyncToken = nullToPtr(lastSyncToken)
	state.ErrorMessage = nullToPtr(errorMessage)

	return &state, nil
}

// UpdateSyncStatus records the status (and optional error) for a service.
func UpdateSyncStatus(ctx context.Context, db *sql.DB, service, status string, errorMsg *string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sync_state (service, status, error_message, created_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(service) DO UPDATE SET
			status = excluded.status,
			error_message = excluded.error_message,
			updated_at = CURRENT_TIMESTAMP
	`, service, status, errorMsg)
	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}
	return nil
}

// MarkSynced stores the token of a completed sync and resets the status to idle.
func MarkSynced(ctx context.Context, db *sql.DB, service, token string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sync_state (service, last_sync_time, last_sync_token, status, created_at, updated_at)
		VALUES (?, CURRENT_TIMESTAMP, ?, 'idle', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(service) DO UPDATE SET
			last_sync_time = CURRENT_TIMESTAMP,
			last_sync_token = excluded.last_sync_token,
			status = 'idle',
			error_message = NULL,
			updated_at = CURRENT_TIMESTAMP
	`, service, token)
	if err != nil {
		return fmt.Errorf("failed to mark sync complete: %w", err)
	}
	return nil
}

// WasImported reports whether a source record was already turned into a person.
func WasImported(ctx context.Context, db *sql.DB, sourceService, sourceID string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sync_log WHERE source_service = ? AND source_id = ?
	`, sourceService, sourceID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check sync log: %w", err)
	}
	return count > 0, nil
}

// RecordImport links a source record to the person created from it.
func RecordImport(ctx context.Context, db *sql.DB, sourceService, sourceID, personID string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sync_log (id, source_service, source_id, person_id, imported_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, uuid.New().String(), sourceService, sourceID, personID)
	if err != nil {
		return fmt.Errorf("failed to create sync log: %w", err)
	}
	return nil
}
