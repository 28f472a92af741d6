// ABOUTME: Tracks pending per-field edits against the loaded records
// ABOUTME: Stores only effective deltas and snapshots them into batch changes
package tablestate

import (
	"slices"
	"sync"

	"github.com/google/go-cmp/cmp"

	"github.com/harperreed/leadbook/models"
)

// Tracker holds id -> field -> value for every field that differs from its base.
type Tracker struct {
	mu    sync.Mutex
	diffs map[string]map[Field]any
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{diffs: make(map[string]map[Field]any)}
}

// SetField records value for id/field. A value equal to base removes the
// entry instead, and a record left with no entries is dropped.
func (t *Tracker) SetField(id string, field Field, value, base any) error {
	v, err := field.canonical(value)
	if err != nil {
		return err
	}
	b, baseErr := field.canonical(base)

	t.mu.Lock()
	defer t.mu.Unlock()

	if baseErr == nil && cmp.Equal(v, b) {
		if rec, ok := t.diffs[id]; ok {
			delete(rec, field)
			if len(rec) == 0 {
				delete(t.diffs, id)
			}
		}
		return nil
	}

	rec, ok := t.diffs[id]
	if !ok {
		rec = make(map[Field]any)
		t.diffs[id] = rec
	}
	rec[field] = v
	return nil
}

// Clear drops every pending edit.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.diffs = make(map[string]map[Field]any)
}

// HasChanges reports whether any edit is pending.
func (t *Tracker) HasChanges() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.diffs) > 0
}

// Len is the number of records with pending edits.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.diffs)
}

// ChangedRecords snapshots the pending edits as one Change per record,
// ordered by id. Later edits do not affect the returned slice.
func (t *Tracker) ChangedRecords() []models.Change {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]string, 0, len(t.diffs))
	for id := range t.diffs {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	changes := make([]models.Change, 0, len(ids))
	for _, id := range ids {
		changes = append(changes, models.Change{ID: id, Changes: buildPatch(t.diffs[id])})
	}
	return changes
}

// Pending returns the merged patch for one record.
func (t *Tracker) Pending(id string) (models.PersonPatch, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.diffs[id]
	if !ok {
		return models.PersonPatch{}, false
	}
	return buildPatch(rec), true
}

// Discard removes the entries captured in changes, keeping any field whose
// value was edited again after the snapshot was taken.
func (t *Tracker) Discard(changes []models.Change) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, c := range changes {
		rec, ok := t.diffs[c.ID]
		if !ok {
			continue
		}
		for field, current := range rec {
			saved, ok := field.FromPatch(c.Changes)
			if ok && cmp.Equal(saved, current) {
				delete(rec, field)
			}
		}
		if len(rec) == 0 {
			delete(t.diffs, c.ID)
		}
	}
}

// Forget drops every pending edit for id.
func (t *Tracker) Forget(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.diffs, id)
}

// prune removes entries that now equal their base value.
func (t *Tracker) prune(baseOf func(id string) (models.Person, bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, rec := range t.diffs {
		p, ok := baseOf(id)
		if !ok {
			continue
		}
		for field, current := range rec {
			b, err := field.Value(p)
			if err == nil && cmp.Equal(b, current) {
				delete(rec, field)
			}
		}
		if len(rec) == 0 {
			delete(t.diffs, id)
		}
	}
}

// patches copies every pending record patch, for the reconciler.
func (t *Tracker) patches() map[string]models.PersonPatch {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]models.PersonPatch, len(t.diffs))
	for id, rec := range t.diffs {
		out[id] = buildPatch(rec)
	}
	return out
}

func buildPatch(rec map[Field]any) models.PersonPatch {
	var patch models.PersonPatch
	for field, v := range rec {
		// values were canonicalized on the way in
		p, _ := field.Patch(v)
		patch = patch.Merge(p)
	}
	return patch
}
