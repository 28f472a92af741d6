// ABOUTME: Google contact import into the record store
// ABOUTME: Skips contacts already imported or already present by email and logs every import
package importer

import (
	"context"
	"database/sql"

	"github.com/charmbracelet/log"
	"google.golang.org/api/people/v1"

	"github.com/harperreed/leadbook/db"
	"github.com/harperreed/leadbook/models"
)

// ServiceName keys the sync_state and sync_log rows written by the import.
const ServiceName = "google-contacts"

// Target is where imported people go. people.Service satisfies it.
type Target interface {
	Create(ctx context.Context, patch models.PersonPatch) (*models.Person, error)
	FindByEmail(ctx context.Context, email string) (*models.Person, error)
}

// Result counts what happened to each fetched contact.
type Result struct {
	Fetched  int
	Imported int
	Skipped  int
	Failed   int
}

type Importer struct {
	db     *sql.DB
	target Target
	logger *log.Logger
}

func New(database *sql.DB, target Target, logger *log.Logger) *Importer {
	if logger == nil {
		logger = log.Default()
	}
	return &Importer{db: database, target: target, logger: logger.WithPrefix("import")}
}

// Run pages through src and creates a person for every new contact.
// Per-contact failures are logged and counted; only source and bookkeeping
// failures abort the run.
func (im *Importer) Run(ctx context.Context, src Source) (Result, error) {
	var res Result

	if err := db.UpdateSyncStatus(ctx, im.db, ServiceName, db.SyncStatusSyncing, nil); err != nil {
		return res, err
	}

	fail := func(err error) (Result, error) {
		msg := err.Error()
		if serr := db.UpdateSyncStatus(context.WithoutCancel(ctx), im.db, ServiceName, db.SyncStatusError, &msg); serr != nil {
			im.logger.Warn("could not record import failure", "err", serr)
		}
		return res, err
	}

	pageToken := ""
	syncToken := ""
	for {
		page, err := src.Connections(ctx, pageToken)
		if err != nil {
			return fail(err)
		}

		res.Fetched += len(page.Connections)
		for _, contact := range page.Connections {
			if err := ctx.Err(); err != nil {
				return fail(err)
			}

			imported, err := im.importOne(ctx, contact)
			switch {
			case err != nil:
				res.Failed++
				im.logger.Warn("contact import failed", "resource", contact.ResourceName, "err", err)
			case imported:
				res.Imported++
			default:
				res.Skipped++
			}
		}

		if page.NextSyncToken != "" {
			syncToken = page.NextSyncToken
		}
		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
		im.logger.Info("import progress", "fetched", res.Fetched, "imported", res.Imported)
	}

	if err := db.MarkSynced(ctx, im.db, ServiceName, syncToken); err != nil {
		return res, err
	}

	im.logger.Info("import finished", "fetched", res.Fetched, "imported", res.Imported,
		"skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}

// importOne reports whether a new person was created.
func (im *Importer) importOne(ctx context.Context, contact *people.Person) (bool, error) {
	seen, err := db.WasImported(ctx, im.db, ServiceName, contact.ResourceName)
	if err != nil {
		return false, err
	}
	if seen {
		return false, nil
	}

	patch, email, ok := ToPatch(contact)
	if !ok {
		return false, nil
	}

	if email != "" {
		existing, err := im.target.FindByEmail(ctx, email)
		if err != nil {
			return false, err
		}
		if existing != nil {
			im.logger.Debug("contact already present", "email", email, "id", existing.ID)
			return false, nil
		}
	}

	person, err := im.target.Create(ctx, patch)
	if err != nil && patch.ProfileImage != nil {
		// Google photo URLs expire; keep the contact even if its photo is gone.
		im.logger.Warn("retrying without photo", "resource", contact.ResourceName, "err", err)
		patch.ProfileImage = nil
		person, err = im.target.Create(ctx, patch)
	}
	if err != nil {
		return false, err
	}

	if err := db.RecordImport(ctx, im.db, ServiceName, contact.ResourceName, person.ID); err != nil {
		return false, err
	}
	return true, nil
}
