// ABOUTME: Record service combining the sqlite store with the image store
// ABOUTME: Validates and normalizes input and keeps stored images in step with records
package people

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/harperreed/leadbook/db"
	"github.com/harperreed/leadbook/models"
	"github.com/harperreed/leadbook/tablestate"
)

var (
	// ErrNotFound is returned when a record id is unknown.
	ErrNotFound = db.ErrPersonNotFound

	// ErrTerminalStatus is returned when advancing a record that cannot move on.
	ErrTerminalStatus = errors.New("status cannot advance further")
)

// Store is the record store contract shared by the local service and the HTTP client.
type Store interface {
	List(ctx context.Context) ([]models.Person, error)
	Get(ctx context.Context, id string) (*models.Person, error)
	Create(ctx context.Context, patch models.PersonPatch) (*models.Person, error)
	Update(ctx context.Context, id string, patch models.PersonPatch) (*models.Person, error)
	Delete(ctx context.Context, id string) error
	BulkUpdate(ctx context.Context, changes []models.Change) ([]models.Person, error)
}

// Blobs stores profile images and hands back stable URLs.
type Blobs interface {
	Store(ctx context.Context, sourceURL string) (string, error)
	Delete(ctx context.Context, url string) error
	Owns(url string) bool
}

type pruner interface {
	Prune(ctx context.Context, keep map[string]bool) (int, error)
}

// Service implements Store on top of sqlite and an optional image store.
type Service struct {
	db     *sql.DB
	blobs  Blobs
	logger *log.Logger
}

var _ Store = (*Service)(nil)

// NewService wires the service. blobs may be nil, in which case image URLs
// are stored exactly as given.
func NewService(database *sql.DB, blobs Blobs, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{db: database, blobs: blobs, logger: logger.WithPrefix("people")}
}

// cleanupStep is a compensating image delete. It runs even when the
// request context is already cancelled and never fails the caller.
type cleanupStep struct {
	reason string
	url    string
}

func (s *Service) compensate(ctx context.Context, step cleanupStep) {
	if step.url == "" || s.blobs == nil {
		return
	}
	if err := s.blobs.Delete(context.WithoutCancel(ctx), step.url); err != nil {
		s.logger.Warn("image cleanup failed", "reason", step.reason, "url", step.url, "err", err)
		return
	}
	s.logger.Debug("image cleaned up", "reason", step.reason, "url", step.url)
}

// storeImage copies a source image into the blob store. It returns the URL to
// persist and, when a new object was written, that object's URL.
func (s *Service) storeImage(ctx context.Context, source string) (stable, created string, err error) {
	if s.blobs == nil || source == "" || s.blobs.Owns(source) {
		return source, "", nil
	}
	stable, err = s.blobs.Store(ctx, source)
	if err != nil {
		return "", "", fmt.Errorf("failed to upload profile image: %w", err)
	}
	return stable, stable, nil
}

func (s *Service) List(ctx context.Context) ([]models.Person, error) {
	return db.ListPeople(ctx, s.db, 0)
}

func (s *Service) Get(ctx context.Context, id string) (*models.Person, error) {
	return db.GetPerson(ctx, s.db, id)
}

// Find returns up to limit records matching query. A limit <= 0 means no limit.
func (s *Service) Find(ctx context.Context, query string, limit int) ([]models.Person, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	found := tablestate.Filter(all, query)
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

// FindByEmail returns nil when nobody has that address.
func (s *Service) FindByEmail(ctx context.Context, email string) (*models.Person, error) {
	return db.FindPersonByEmail(ctx, s.db, email)
}

// CountByStatus reports how many records sit in each pipeline stage.
func (s *Service) CountByStatus(ctx context.Context) (map[models.ContactStatus]int, error) {
	return db.CountByStatus(ctx, s.db)
}

// Create validates and normalizes patch, uploads its image if any, then inserts.
// A failed upload aborts the create; a failed insert removes the uploaded image.
func (s *Service) Create(ctx context.Context, patch models.PersonPatch) (*models.Person, error) {
	if err := ValidatePatch(patch); err != nil {
		return nil, err
	}
	patch = models.NormalizePatch(patch)

	var created string
	if patch.ProfileImage != nil && *patch.ProfileImage != "" {
		stable, c, err := s.storeImage(ctx, *patch.ProfileImage)
		if err != nil {
			return nil, err
		}
		patch.ProfileImage = &stable
		created = c
	}

	p, err := db.InsertPerson(ctx, s.db, patch)
	if err != nil {
		s.compensate(ctx, cleanupStep{reason: "insert failed", url: created})
		return nil, err
	}

	s.logger.Info("created person", "id", p.ID, "name", p.DisplayName())
	return p, nil
}

// Update applies patch to an existing record. A replaced or removed image is
// deleted only once the row is written; a failed write removes the new image.
func (s *Service) Update(ctx context.Context, id string, patch models.PersonPatch) (*models.Person, error) {
	if err := ValidatePatch(patch); err != nil {
		return nil, err
	}

	current, err := db.GetPerson(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	patch = models.NormalizePatch(completeConnection(patch, *current))

	oldImage := models.Deref(current.ProfileImage)
	var created, stale string
	if patch.ProfileImage != nil && *patch.ProfileImage != oldImage {
		if *patch.ProfileImage != "" {
			stable, c, err := s.storeImage(ctx, *patch.ProfileImage)
			if err != nil {
				return nil, err
			}
			patch.ProfileImage = &stable
			created = c
		}
		if models.Deref(patch.ProfileImage) != oldImage {
			stale = oldImage
		}
	}

	updated, err := db.UpdatePerson(ctx, s.db, id, patch)
	if err != nil {
		s.compensate(ctx, cleanupStep{reason: "update failed", url: created})
		return nil, err
	}

	s.compensate(ctx, cleanupStep{reason: "image replaced", url: stale})
	s.logger.Debug("updated person", "id", id)
	return updated, nil
}

// completeConnection fills the connection fields a partial update left out so
// that normalizing it cannot reset the stored degree.
func completeConnection(patch models.PersonPatch, current models.Person) models.PersonPatch {
	degree, degreeSet := patch.ConnectionDegree.Get()
	switch {
	case patch.Connected == nil && !degreeSet:
		patch.Connected = models.Bool(current.Connected)
		patch.ConnectionDegree = models.DegreeOf(current.ConnectionDegree)
	case patch.Connected == nil:
		patch.Connected = models.Bool(degree == 1)
	}
	return patch
}

// Delete removes the record, then its image. An image failure is only logged.
func (s *Service) Delete(ctx context.Context, id string) error {
	current, err := db.GetPerson(ctx, s.db, id)
	if err != nil {
		return err
	}

	if err := db.DeletePerson(ctx, s.db, id); err != nil {
		return err
	}

	s.compensate(ctx, cleanupStep{reason: "record deleted", url: models.Deref(current.ProfileImage)})
	s.logger.Info("deleted person", "id", id)
	return nil
}

// BulkUpdate applies each change independently. Records that saved are
// returned alongside the joined errors of those that did not.
func (s *Service) BulkUpdate(ctx context.Context, changes []models.Change) ([]models.Person, error) {
	updated := make([]models.Person, 0, len(changes))
	var errs []error

	for _, c := range changes {
		p, err := s.Update(ctx, c.ID, c.Changes)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.ID, err))
			continue
		}
		updated = append(updated, *p)
	}

	if err := errors.Join(errs...); err != nil {
		s.logger.Warn("bulk update incomplete", "saved", len(updated), "failed", len(errs))
		return updated, err
	}
	return updated, nil
}

// PruneImages deletes stored images no record references any more.
func (s *Service) PruneImages(ctx context.Context) (int, error) {
	p, ok := s.blobs.(pruner)
	if !ok {
		return 0, nil
	}

	all, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	keep := make(map[string]bool, len(all))
	for _, person := range all {
		if img := models.Deref(person.ProfileImage); img != "" {
			keep[img] = true
		}
	}

	removed, err := p.Prune(ctx, keep)
	if err != nil {
		return removed, fmt.Errorf("failed to prune images: %w", err)
	}
	if removed > 0 {
		s.logger.Info("pruned images", "removed", removed)
	}
	return removed, nil
}
