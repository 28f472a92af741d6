// ABOUTME: Data models for CRM prospects
// ABOUTME: Defines Person, PersonPatch and the merge of a patch onto a record
package models

import (
	"slices"
	"time"
)

// Person is a prospect record. Optional text fields are nil when absent.
type Person struct {
	ID               string        `json:"id"`
	Name             *string       `json:"name,omitempty"`
	URL              *string       `json:"url,omitempty"`
	ProfileImage     *string       `json:"profileImage,omitempty"`
	Location         *string       `json:"location,omitempty"`
	Headline         *string       `json:"headline,omitempty"`
	About            *string       `json:"about,omitempty"`
	CurrentPosition  *string       `json:"currentPosition,omitempty"`
	CurrentCompany   *string       `json:"currentCompany,omitempty"`
	Email            *string       `json:"email,omitempty"`
	Phone            *string       `json:"phone,omitempty"`
	Websites         []string      `json:"websites"`
	Connected        bool          `json:"connected"`
	ConnectionDegree int           `json:"connectionDegree"`
	Status           ContactStatus `json:"status"`
	Engagement       int           `json:"engagement"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// PersonPatch carries only the fields being changed.
type PersonPatch struct {
	Name             *string        `json:"name,omitempty" validate:"omitempty,max=200"`
	URL              *string        `json:"url,omitempty" validate:"omitempty,url"`
	ProfileImage     *string        `json:"profileImage,omitempty" validate:"omitempty,url"`
	Location         *string        `json:"location,omitempty"`
	Headline         *string        `json:"headline,omitempty"`
	About            *string        `json:"about,omitempty"`
	CurrentPosition  *string        `json:"currentPosition,omitempty"`
	CurrentCompany   *string        `json:"currentCompany,omitempty"`
	Email            *string        `json:"email,omitempty" validate:"omitempty,email"`
	Phone            *string        `json:"phone,omitempty"`
	Websites         *[]string      `json:"websites,omitempty" validate:"omitempty,dive,url"`
	Connected        *bool          `json:"connected,omitempty"`
	ConnectionDegree Degree         `json:"connectionDegree,omitzero"`
	Status           *ContactStatus `json:"status,omitempty" validate:"omitempty,contact_status"`
	Engagement       *int           `json:"engagement,omitempty" validate:"omitempty,min=0"`
}

// String returns a pointer to s, for building patches.
func String(s string) *string {
	return &s
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}

// Int returns a pointer to n.
func Int(n int) *int {
	return &n
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// DisplayName is the name shown in lists, falling back to the profile URL.
func (p Person) DisplayName() string {
	if p.Name != nil && *p.Name != "" {
		return *p.Name
	}
	if p.URL != nil && *p.URL != "" {
		return *p.URL
	}
	return "(unnamed)"
}

// Clone returns a deep copy so callers never alias slices or pointers.
func (p Person) Clone() Person {
	out := p
	out.Name = cloneString(p.Name)
	out.URL = cloneString(p.URL)
	out.ProfileImage = cloneString(p.ProfileImage)
	out.Location = cloneString(p.Location)
	out.Headline = cloneString(p.Headline)
	out.About = cloneString(p.About)
	out.CurrentPosition = cloneString(p.CurrentPosition)
	out.CurrentCompany = cloneString(p.CurrentCompany)
	out.Email = cloneString(p.Email)
	out.Phone = cloneString(p.Phone)
	out.Websites = slices.Clone(p.Websites)
	if out.Websites == nil {
		out.Websites = []string{}
	}
	return out
}

// Apply shallow-merges patch onto a copy of p. Patch fields win.
func (p Person) Apply(patch PersonPatch) Person {
	out := p.Clone()
	if patch.Name != nil {
		out.Name = cloneString(patch.Name)
	}
	if patch.URL != nil {
		out.URL = cloneString(patch.URL)
	}
	if patch.ProfileImage != nil {
		out.ProfileImage = cloneString(patch.ProfileImage)
	}
	if patch.Location != nil {
		out.Location = cloneString(patch.Location)
	}
	if patch.Headline != nil {
		out.Headline = cloneString(patch.Headline)
	}
	if patch.About != nil {
		out.About = cloneString(patch.About)
	}
	if patch.CurrentPosition != nil {
		out.CurrentPosition = cloneString(patch.CurrentPosition)
	}
	if patch.CurrentCompany != nil {
		out.CurrentCompany = cloneString(patch.CurrentCompany)
	}
	if patch.Email != nil {
		out.Email = cloneString(patch.Email)
	}
	if patch.Phone != nil {
		out.Phone = cloneString(patch.Phone)
	}
	if patch.Websites != nil {
		out.Websites = slices.Clone(*patch.Websites)
		if out.Websites == nil {
			out.Websites = []string{}
		}
	}
	if patch.Connected != nil {
		out.Connected = *patch.Connected
	}
	if v, ok := patch.ConnectionDegree.Get(); ok {
		out.ConnectionDegree = v
	}
	if patch.Status != nil {
		out.Status = *patch.Status
	}
	if patch.Engagement != nil {
		out.Engagement = *patch.Engagement
	}
	return out
}

// IsEmpty reports whether the patch changes nothing.
func (pp PersonPatch) IsEmpty() bool {
	return pp.Name == nil && pp.URL == nil && pp.ProfileImage == nil && pp.Location == nil &&
		pp.Headline == nil && pp.About == nil && pp.CurrentPosition == nil && pp.CurrentCompany == nil &&
		pp.Email == nil && pp.Phone == nil && pp.Websites == nil && pp.Connected == nil &&
		!pp.ConnectionDegree.IsSet() && pp.Status == nil && pp.Engagement == nil
}

// Merge overlays other onto pp; fields set in other win.
func (pp PersonPatch) Merge(other PersonPatch) PersonPatch {
	out := pp
	if other.Name != nil {
		out.Name = other.Name
	}
	if other.URL != nil {
		out.URL = other.URL
	}
	if other.ProfileImage != nil {
		out.ProfileImage = other.ProfileImage
	}
	if other.Location != nil {
		out.Location = other.Location
	}
	if other.Headline != nil {
		out.Headline = other.Headline
	}
	if other.About != nil {
		out.About = other.About
	}
	if other.CurrentPosition != nil {
		out.CurrentPosition = other.CurrentPosition
	}
	if other.CurrentCompany != nil {
		out.CurrentCompany = other.CurrentCompany
	}
	if other.Email != nil {
		out.Email = other.Email
	}
	if other.Phone != nil {
		out.Phone = other.Phone
	}
	if other.Websites != nil {
		out.Websites = other.Websites
	}
	if other.Connected != nil {
		out.Connected = other.Connected
	}
	if other.ConnectionDegree.IsSet() {
		out.ConnectionDegree = other.ConnectionDegree
	}
	if other.Status != nil {
		out.Status = other.Status
	}
	if other.Engagement != nil {
		out.Engagement = other.Engagement
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Change is one record's pending edits in a batch update.
type Change struct {
	ID      string      `json:"id"`
	Changes PersonPatch `json:"changes"`
}
