// ABOUTME: Editable person fields addressed by name
// ABOUTME: Converts between dynamic field values, records and patches
package tablestate

import (
	"errors"
	"fmt"
	"slices"

	"github.com/harperreed/leadbook/models"
)

// ErrUnknownField is returned for field names the table cannot edit.
var ErrUnknownField = errors.New("unknown field")

// ErrFieldType is returned when a value does not fit the field.
var ErrFieldType = errors.New("wrong value type for field")

// Field names a single editable column. Values match the JSON keys.
type Field string

const (
	FieldName             Field = "name"
	FieldURL              Field = "url"
	FieldProfileImage     Field = "profileImage"
	FieldLocation         Field = "location"
	FieldHeadline         Field = "headline"
	FieldAbout            Field = "about"
	FieldCurrentPosition  Field = "currentPosition"
	FieldCurrentCompany   Field = "currentCompany"
	FieldEmail            Field = "email"
	FieldPhone            Field = "phone"
	FieldWebsites         Field = "websites"
	FieldConnected        Field = "connected"
	FieldConnectionDegree Field = "connectionDegree"
	FieldStatus           Field = "status"
	FieldEngagement       Field = "engagement"
)

var fields = []Field{
	FieldName, FieldURL, FieldProfileImage, FieldLocation, FieldHeadline, FieldAbout,
	FieldCurrentPosition, FieldCurrentCompany, FieldEmail, FieldPhone, FieldWebsites,
	FieldConnected, FieldConnectionDegree, FieldStatus, FieldEngagement,
}

// Fields lists every editable field.
func Fields() []Field {
	return slices.Clone(fields)
}

// Valid reports whether f is an editable field.
func (f Field) Valid() bool {
	return slices.Contains(fields, f)
}

func (f Field) isText() bool {
	switch f {
	case FieldName, FieldURL, FieldProfileImage, FieldLocation, FieldHeadline, FieldAbout,
		FieldCurrentPosition, FieldCurrentCompany, FieldEmail, FieldPhone:
		return true
	}
	return false
}

// canonical coerces value into the single representation used for comparison:
// string for text, []string for websites, bool, int or ContactStatus.
func (f Field) canonical(value any) (any, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}

	switch {
	case f.isText():
		switch v := value.(type) {
		case string:
			return v, nil
		case *string:
			return models.Deref(v), nil
		case nil:
			return "", nil
		}
	case f == FieldWebsites:
		switch v := value.(type) {
		case []string:
			if v == nil {
				return []string{}, nil
			}
			return slices.Clone(v), nil
		case nil:
			return []string{}, nil
		}
	case f == FieldConnected:
		if v, ok := value.(bool); ok {
			return v, nil
		}
	case f == FieldConnectionDegree, f == FieldEngagement:
		if v, ok := value.(int); ok {
			if v < 0 {
				return nil, fmt.Errorf("%w: %s must not be negative", ErrFieldType, f)
			}
			return v, nil
		}
	case f == FieldStatus:
		switch v := value.(type) {
		case models.ContactStatus:
			if !v.Valid() {
				return nil, fmt.Errorf("%w: unknown status %q", ErrFieldType, v)
			}
			return v, nil
		case string:
			s := models.ContactStatus(v)
			if !s.Valid() {
				return nil, fmt.Errorf("%w: unknown status %q", ErrFieldType, v)
			}
			return s, nil
		}
	}

	return nil, fmt.Errorf("%w: %s got %T", ErrFieldType, f, value)
}

// Value reads the field from a record in canonical form.
func (f Field) Value(p models.Person) (any, error) {
	switch f {
	case FieldName:
		return models.Deref(p.Name), nil
	case FieldURL:
		return models.Deref(p.URL), nil
	case FieldProfileImage:
		return models.Deref(p.ProfileImage), nil
	case FieldLocation:
		return models.Deref(p.Location), nil
	case FieldHeadline:
		return models.Deref(p.Headline), nil
	case FieldAbout:
		return models.Deref(p.About), nil
	case FieldCurrentPosition:
		return models.Deref(p.CurrentPosition), nil
	case FieldCurrentCompany:
		return models.Deref(p.CurrentCompany), nil
	case FieldEmail:
		return models.Deref(p.Email), nil
	case FieldPhone:
		return models.Deref(p.Phone), nil
	case FieldWebsites:
		return f.canonical(p.Websites)
	case FieldConnected:
		return p.Connected, nil
	case FieldConnectionDegree:
		return p.ConnectionDegree, nil
	case FieldStatus:
		return p.Status, nil
	case FieldEngagement:
		return p.Engagement, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownField, f)
}

// Patch builds a single-field patch from a canonical value.
func (f Field) Patch(value any) (models.PersonPatch, error) {
	v, err := f.canonical(value)
	if err != nil {
		return models.PersonPatch{}, err
	}

	var p models.PersonPatch
	switch f {
	case FieldName:
		p.Name = models.String(v.(string))
	case FieldURL:
		p.URL = models.String(v.(string))
	case FieldProfileImage:
		p.ProfileImage = models.String(v.(string))
	case FieldLocation:
		p.Location = models.String(v.(string))
	case FieldHeadline:
		p.Headline = models.String(v.(string))
	case FieldAbout:
		p.About = models.String(v.(string))
	case FieldCurrentPosition:
		p.CurrentPosition = models.String(v.(string))
	case FieldCurrentCompany:
		p.CurrentCompany = models.String(v.(string))
	case FieldEmail:
		p.Email = models.String(v.(string))
	case FieldPhone:
		p.Phone = models.String(v.(string))
	case FieldWebsites:
		w := v.([]string)
		p.Websites = &w
	case FieldConnected:
		p.Connected = models.Bool(v.(bool))
	case FieldConnectionDegree:
		p.ConnectionDegree = models.DegreeOf(v.(int))
	case FieldStatus:
		s := v.(models.ContactStatus)
		p.Status = &s
	case FieldEngagement:
		p.Engagement = models.Int(v.(int))
	}
	return p, nil
}

// FromPatch extracts the field from a patch, reporting whether it was set.
func (f Field) FromPatch(p models.PersonPatch) (any, bool) {
	switch f {
	case FieldName:
		return textFromPatch(p.Name)
	case FieldURL:
		return textFromPatch(p.URL)
	case FieldProfileImage:
		return textFromPatch(p.ProfileImage)
	case FieldLocation:
		return textFromPatch(p.Location)
	case FieldHeadline:
		return textFromPatch(p.Headline)
	case FieldAbout:
		return textFromPatch(p.About)
	case FieldCurrentPosition:
		return textFromPatch(p.CurrentPosition)
	case FieldCurrentCompany:
		return textFromPatch(p.CurrentCompany)
	case FieldEmail:
		return textFromPatch(p.Email)
	case FieldPhone:
		return textFromPatch(p.Phone)
	case FieldWebsites:
		if p.Websites == nil {
			return nil, false
		}
		v, _ := f.canonical(*p.Websites)
		return v, true
	case FieldConnected:
		if p.Connected == nil {
			return nil, false
		}
		return *p.Connected, true
	case FieldConnectionDegree:
		return p.ConnectionDegree.Get()
	case FieldStatus:
		if p.Status == nil {
			return nil, false
		}
		return *p.Status, true
	case FieldEngagement:
		if p.Engagement == nil {
			return nil, false
		}
		return *p.Engagement, true
	}
	return nil, false
}

func textFromPatch(s *string) (any, bool) {
	if s == nil {
		return nil, false
	}
	return *s, true
}
