// ABOUTME: Produces the displayed record list from base records plus pending edits
// ABOUTME: Also holds the free-text search filter used by every front end
package tablestate

import (
	"strings"

	"github.com/harperreed/leadbook/models"
)

// View overlays the tracker's pending edits onto base. Output order follows
// base and every element is a fresh copy. A nil tracker yields plain copies.
func View(base []models.Person, t *Tracker) []models.Person {
	var patches map[string]models.PersonPatch
	if t != nil {
		patches = t.patches()
	}

	out := make([]models.Person, 0, len(base))
	for _, p := range base {
		if patch, ok := patches[p.ID]; ok {
			out = append(out, p.Apply(patch))
			continue
		}
		out = append(out, p.Clone())
	}
	return out
}

// Matches reports whether query appears, case-insensitively, in any of the
// searchable text fields of p. An empty query matches everything.
func Matches(p models.Person, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}

	for _, s := range []*string{p.Name, p.Location, p.Headline, p.CurrentPosition,
		p.CurrentCompany, p.Email, p.Phone, p.About} {
		if s != nil && strings.Contains(strings.ToLower(*s), q) {
			return true
		}
	}
	for _, w := range p.Websites {
		if strings.Contains(strings.ToLower(w), q) {
			return true
		}
	}
	return false
}

// Filter keeps the records matching query, preserving order.
func Filter(records []models.Person, query string) []models.Person {
	out := make([]models.Person, 0, len(records))
	for _, p := range records {
		if Matches(p, query) {
			out = append(out, p)
		}
	}
	return out
}
