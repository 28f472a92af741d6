// ABOUTME: Google People API source for the contact import
// ABOUTME: Pages through the user's connections and maps them onto person patches
package importer

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"

	"github.com/harperreed/leadbook/models"
)

// PersonFields is the field mask requested from the People API.
const PersonFields = "names,emailAddresses,phoneNumbers,organizations,urls,addresses,photos,biographies"

const pageSize = 1000

// Page is one page of connections.
type Page struct {
	Connections   []*people.Person
	NextPageToken string
	NextSyncToken string
}

// Source yields pages of Google contacts.
type Source interface {
	Connections(ctx context.Context, pageToken string) (*Page, error)
}

// GoogleSource reads connections through the People API.
type GoogleSource struct {
	svc *people.Service
}

// NewGoogleSource creates a People API client. Pass option.WithHTTPClient with
// an OAuth2 client in production.
func NewGoogleSource(ctx context.Context, opts ...option.ClientOption) (*GoogleSource, error) {
	svc, err := people.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create People service: %w", err)
	}
	return &GoogleSource{svc: svc}, nil
}

func (s *GoogleSource) Connections(ctx context.Context, pageToken string) (*Page, error) {
	call := s.svc.People.Connections.List("people/me").
		PageSize(pageSize).
		PersonFields(PersonFields).
		RequestSyncToken(true).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	return &Page{
		Connections:   resp.Connections,
		NextPageToken: resp.NextPageToken,
		NextSyncToken: resp.NextSyncToken,
	}, nil
}

// ToPatch maps a Google contact onto a person patch and returns the email
// used for de-duplication. ok is false when the contact has neither a name
// nor an email.
func ToPatch(p *people.Person) (patch models.PersonPatch, email string, ok bool) {
	for _, n := range p.Names {
		if n.DisplayName != "" {
			patch.Name = models.String(n.DisplayName)
			if isPrimary(n.Metadata) {
				break
			}
		}
	}

	for _, e := range p.EmailAddresses {
		if e.Value == "" {
			continue
		}
		if email == "" || isPrimary(e.Metadata) {
			email = e.Value
		}
		if isPrimary(e.Metadata) {
			break
		}
	}
	if email != "" {
		patch.Email = models.String(email)
	}

	for _, ph := range p.PhoneNumbers {
		if ph.Value != "" {
			patch.Phone = models.String(ph.Value)
			if isPrimary(ph.Metadata) {
				break
			}
		}
	}

	if len(p.Organizations) > 0 {
		org := p.Organizations[0]
		if org.Name != "" {
			patch.CurrentCompany = models.String(org.Name)
		}
		if org.Title != "" {
			patch.CurrentPosition = models.String(org.Title)
		}
	}

	for _, a := range p.Addresses {
		if a.FormattedValue != "" {
			patch.Location = models.String(a.FormattedValue)
			break
		}
	}

	var websites []string
	for _, u := range p.Urls {
		if u.Value == "" {
			continue
		}
		v := u.Value
		if !strings.Contains(v, "://") {
			v = "https://" + v
		}
		if patch.URL == nil && strings.Contains(u.Value, "linkedin.com/") {
			patch.URL = models.String(v)
			continue
		}
		websites = append(websites, v)
	}
	if len(websites) > 0 {
		patch.Websites = &websites
	}

	for _, ph := range p.Photos {
		if ph.Url != "" && !ph.Default {
			patch.ProfileImage = models.String(ph.Url)
			break
		}
	}

	if len(p.Biographies) > 0 && p.Biographies[0].Value != "" {
		patch.About = models.String(p.Biographies[0].Value)
	}

	return patch, email, patch.Name != nil || email != ""
}

func isPrimary(m *people.FieldMetadata) bool {
	return m != nil && m.Primary
}
