// ABOUTME: Image store maintenance subcommand
// ABOUTME: Removes stored profile images no record points at any more
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/harperreed/leadbook/people"
)

// PruneImagesCommand deletes orphaned images from the local store.
func PruneImagesCommand(ctx context.Context, svc *people.Service, w io.Writer) error {
	removed, err := svc.PruneImages(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "✓ Removed %d unused images\n", removed)
	return nil
}
