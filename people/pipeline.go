// ABOUTME: Pipeline moves that work against any record store
// ABOUTME: Shared by the CLI, the MCP tools and the local service
package people

import (
	"context"
	"fmt"

	"github.com/harperreed/leadbook/models"
)

// Advance moves a record to the next pipeline stage. Records already at a
// terminal stage return ErrTerminalStatus.
func Advance(ctx context.Context, store Store, id string) (*models.Person, error) {
	current, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s", ErrTerminalStatus, current.Status)
	}
	next := current.Status.Next()
	return store.Update(ctx, id, models.PersonPatch{Status: &next})
}

// Cancel moves a record out of the pipeline from any stage.
func Cancel(ctx context.Context, store Store, id string) (*models.Person, error) {
	status := models.StatusCancelled
	return store.Update(ctx, id, models.PersonPatch{Status: &status})
}

// AdjustEngagement adds delta to the engagement counter, never going below zero.
func AdjustEngagement(ctx context.Context, store Store, id string, delta int) (*models.Person, error) {
	current, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return store.Update(ctx, id, models.PersonPatch{Engagement: models.Int(max(0, current.Engagement+delta))})
}
