// ABOUTME: Application state for the record table: base records, pending edits and saves
// ABOUTME: Coordinates the tracker with a bulk-updating store and reports Clean/Dirty/Saving
package tablestate

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/harperreed/leadbook/models"
)

var (
	// ErrSaveInProgress is returned when Save is called while another save runs.
	ErrSaveInProgress = errors.New("save already in progress")

	// ErrUnknownRecord is returned when editing an id that is not loaded.
	ErrUnknownRecord = errors.New("record not loaded")
)

// State describes where the table is in its edit/save cycle.
type State int

const (
	Clean State = iota
	Dirty
	Saving
)

func (s State) String() string {
	switch s {
	case Clean:
		return "clean"
	case Dirty:
		return "dirty"
	case Saving:
		return "saving"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// BulkUpdater persists a batch of record changes.
type BulkUpdater interface {
	BulkUpdate(ctx context.Context, changes []models.Change) ([]models.Person, error)
}

// Lister loads every record.
type Lister interface {
	List(ctx context.Context) ([]models.Person, error)
}

// Orchestrator owns the loaded records and their pending edits.
type Orchestrator struct {
	mu      sync.Mutex
	base    []models.Person
	tracker *Tracker
	saving  bool
	lastErr error

	store  BulkUpdater
	logger *log.Logger
}

// NewOrchestrator creates an empty orchestrator that saves through store.
func NewOrchestrator(store BulkUpdater, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		tracker: NewTracker(),
		store:   store,
		logger:  logger.WithPrefix("table"),
	}
}

// Hydrate replaces the base records with a fresh load. Pending edits for
// records that disappeared are dropped; the rest are kept.
func (o *Orchestrator) Hydrate(ctx context.Context, l Lister) error {
	records, err := l.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}
	o.SetBase(records)
	return nil
}

// SetBase installs records as the current base.
func (o *Orchestrator) SetBase(records []models.Person) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.base = make([]models.Person, 0, len(records))
	present := make(map[string]bool, len(records))
	for _, p := range records {
		o.base = append(o.base, p.Clone())
		present[p.ID] = true
	}
	for _, c := range o.tracker.ChangedRecords() {
		if !present[c.ID] {
			o.tracker.Forget(c.ID)
		}
	}
	o.tracker.prune(o.lookup)
}

// Tracker exposes the underlying diff tracker.
func (o *Orchestrator) Tracker() *Tracker {
	return o.tracker
}

// State reports Saving while a save runs, otherwise Dirty or Clean.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.saving {
		return Saving
	}
	if o.tracker.HasChanges() {
		return Dirty
	}
	return Clean
}

// LastError is the error from the most recent failed save, nil after a success.
func (o *Orchestrator) LastError() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// Records returns the base merged with pending edits.
func (o *Orchestrator) Records() []models.Person {
	o.mu.Lock()
	base := slices.Clone(o.base)
	o.mu.Unlock()
	return View(base, o.tracker)
}

// Search returns the reconciled records that match query.
func (o *Orchestrator) Search(query string) []models.Person {
	return Filter(o.Records(), query)
}

// Base returns the last saved version of a record.
func (o *Orchestrator) Base(id string) (models.Person, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	p, ok := o.lookup(id)
	if !ok {
		return models.Person{}, false
	}
	return p.Clone(), true
}

func (o *Orchestrator) lookup(id string) (models.Person, bool) {
	i := slices.IndexFunc(o.base, func(p models.Person) bool { return p.ID == id })
	if i < 0 {
		return models.Person{}, false
	}
	return o.base[i], true
}

// Edit sets one field of a loaded record.
func (o *Orchestrator) Edit(id string, field Field, value any) error {
	o.mu.Lock()
	p, ok := o.lookup(id)
	o.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRecord, id)
	}

	base, err := field.Value(p)
	if err != nil {
		return err
	}
	return o.tracker.SetField(id, field, value, base)
}

// Upsert puts a record created or fetched elsewhere into the base, newest first.
func (o *Orchestrator) Upsert(p models.Person) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if i := slices.IndexFunc(o.base, func(b models.Person) bool { return b.ID == p.ID }); i >= 0 {
		o.base[i] = p.Clone()
	} else {
		o.base = append([]models.Person{p.Clone()}, o.base...)
	}
	o.tracker.prune(o.lookup)
}

// Remove drops a deleted record and any edits pending on it.
func (o *Orchestrator) Remove(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.base = slices.DeleteFunc(o.base, func(p models.Person) bool { return p.ID == id })
	o.tracker.Forget(id)
}

// Save sends the pending edits as one batch. Nothing pending is a no-op.
// On failure every edit stays pending; on success only the edits that were
// sent are cleared, so anything typed during the save remains.
func (o *Orchestrator) Save(ctx context.Context) ([]models.Person, error) {
	o.mu.Lock()
	if o.saving {
		o.mu.Unlock()
		return nil, ErrSaveInProgress
	}
	changes := o.tracker.ChangedRecords()
	if len(changes) == 0 {
		o.mu.Unlock()
		return nil, nil
	}
	o.saving = true
	o.mu.Unlock()

	o.logger.Debug("saving changes", "records", len(changes))
	updated, err := o.store.BulkUpdate(ctx, changes)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.saving = false

	if err != nil {
		o.lastErr = err
		o.logger.Error("save failed", "records", len(changes), "err", err)
		return nil, fmt.Errorf("failed to save changes: %w", err)
	}

	o.lastErr = nil
	o.tracker.Discard(changes)
	for _, p := range updated {
		if i := slices.IndexFunc(o.base, func(b models.Person) bool { return b.ID == p.ID }); i >= 0 {
			o.base[i] = p.Clone()
		}
	}
	o.tracker.prune(o.lookup)

	o.logger.Info("saved changes", "records", len(updated))
	return updated, nil
}
