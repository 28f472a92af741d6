// ABOUTME: Person MCP tool handlers
// ABOUTME: Implements add, find, get, update, delete, bulk update and advance tools over a people.Store
package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/leadbook/models"
	"github.com/harperreed/leadbook/people"
	"github.com/harperreed/leadbook/tablestate"
)

type PeopleHandlers struct {
	store  people.Store
	logger *log.Logger
}

func NewPeopleHandlers(store people.Store, logger *log.Logger) *PeopleHandlers {
	if logger == nil {
		logger = log.Default()
	}
	return &PeopleHandlers{store: store, logger: logger.WithPrefix("mcp")}
}

// PersonFields are the editable fields shared by add and update. Empty values are left alone.
type PersonFields struct {
	Name             string   `json:"name,omitempty" jsonschema:"Full name"`
	URL              string   `json:"url,omitempty" jsonschema:"Profile URL"`
	ProfileImage     string   `json:"profile_image,omitempty" jsonschema:"Profile image URL (copied into local storage)"`
	Location         string   `json:"location,omitempty" jsonschema:"Location"`
	Headline         string   `json:"headline,omitempty" jsonschema:"Profile headline"`
	About            string   `json:"about,omitempty" jsonschema:"About text"`
	CurrentPosition  string   `json:"current_position,omitempty" jsonschema:"Current job title"`
	CurrentCompany   string   `json:"current_company,omitempty" jsonschema:"Current company"`
	Email            string   `json:"email,omitempty" jsonschema:"Email address"`
	Phone            string   `json:"phone,omitempty" jsonschema:"Phone number"`
	Websites         []string `json:"websites,omitempty" jsonschema:"Website URLs (replaces the existing list)"`
	Connected        *bool    `json:"connected,omitempty" jsonschema:"Whether this is a direct connection"`
	ConnectionDegree *int     `json:"connection_degree,omitempty" jsonschema:"Network distance: 1, 2, 3 or 0 for out of network"`
	Status           string   `json:"status,omitempty" jsonschema:"Pipeline status, e.g. 'Sent Connection (2/12)'"`
	Engagement       *int     `json:"engagement,omitempty" jsonschema:"Engagement score (non-negative)"`
}

func (f PersonFields) patch() models.PersonPatch {
	var p models.PersonPatch
	text := func(v string) *string {
		if v == "" {
			return nil
		}
		return models.String(v)
	}

	p.Name = text(f.Name)
	p.URL = text(f.URL)
	p.ProfileImage = text(f.ProfileImage)
	p.Location = text(f.Location)
	p.Headline = text(f.Headline)
	p.About = text(f.About)
	p.CurrentPosition = text(f.CurrentPosition)
	p.CurrentCompany = text(f.CurrentCompany)
	p.Email = text(f.Email)
	p.Phone = text(f.Phone)

	if f.Websites != nil {
		w := f.Websites
		p.Websites = &w
	}
	p.Connected = f.Connected
	if f.ConnectionDegree != nil {
		p.ConnectionDegree = models.DegreeOf(*f.ConnectionDegree)
	}
	if f.Status != "" {
		s := models.ContactStatus(f.Status)
		p.Status = &s
	}
	p.Engagement = f.Engagement
	return p
}

type PersonOutput struct {
	ID               string   `json:"id"`
	Name             string   `json:"name,omitempty"`
	URL              string   `json:"url,omitempty"`
	ProfileImage     string   `json:"profile_image,omitempty"`
	Location         string   `json:"location,omitempty"`
	Headline         string   `json:"headline,omitempty"`
	About            string   `json:"about,omitempty"`
	CurrentPosition  string   `json:"current_position,omitempty"`
	CurrentCompany   string   `json:"current_company,omitempty"`
	Email            string   `json:"email,omitempty"`
	Phone            string   `json:"phone,omitempty"`
	Websites         []string `json:"websites"`
	Connected        bool     `json:"connected"`
	ConnectionDegree int      `json:"connection_degree"`
	Status           string   `json:"status"`
	Engagement       int      `json:"engagement"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

func personToOutput(p *models.Person) PersonOutput {
	websites := p.Websites
	if websites == nil {
		websites = []string{}
	}
	return PersonOutput{
		ID:               p.ID,
		Name:             models.Deref(p.Name),
		URL:              models.Deref(p.URL),
		ProfileImage:     models.Deref(p.ProfileImage),
		Location:         models.Deref(p.Location),
		Headline:         models.Deref(p.Headline),
		About:            models.Deref(p.About),
		CurrentPosition:  models.Deref(p.CurrentPosition),
		CurrentCompany:   models.Deref(p.CurrentCompany),
		Email:            models.Deref(p.Email),
		Phone:            models.Deref(p.Phone),
		Websites:         websites,
		Connected:        p.Connected,
		ConnectionDegree: p.ConnectionDegree,
		Status:           string(p.Status),
		Engagement:       p.Engagement,
		CreatedAt:        p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        p.UpdatedAt.Format(time.RFC3339),
	}
}

type AddPersonInput = PersonFields

func (h *PeopleHandlers) AddPerson(ctx context.Context, _ *mcp.CallToolRequest, input AddPersonInput) (*mcp.CallToolResult, PersonOutput, error) {
	patch := input.patch()
	if patch.IsEmpty() {
		return nil, PersonOutput{}, fmt.Errorf("at least one field is required")
	}

	person, err := h.store.Create(ctx, patch)
	if err != nil {
		return nil, PersonOutput{}, fmt.Errorf("failed to add person: %w", err)
	}

	h.logger.Info("person added", "id", person.ID)
	return nil, personToOutput(person), nil
}

type FindPeopleInput struct {
	Query  string `json:"query,omitempty" jsonschema:"Search text matched against name, company, position, location, email and more"`
	Status string `json:"status,omitempty" jsonschema:"Only return people in this pipeline status"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindPeopleOutput struct {
	People []PersonOutput `json:"people"`
	Total  int            `json:"total"`
}

func (h *PeopleHandlers) FindPeople(ctx context.Context, _ *mcp.CallToolRequest, input FindPeopleInput) (*mcp.CallToolResult, FindPeopleOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	if input.Status != "" && !models.ContactStatus(input.Status).Valid() {
		return nil, FindPeopleOutput{}, fmt.Errorf("unknown status %q", input.Status)
	}

	all, err := h.store.List(ctx)
	if err != nil {
		return nil, FindPeopleOutput{}, fmt.Errorf("failed to list people: %w", err)
	}

	matches := tablestate.Filter(all, input.Query)
	result := []PersonOutput{}
	total := 0
	for i := range matches {
		if input.Status != "" && string(matches[i].Status) != input.Status {
			continue
		}
		total++
		if len(result) < limit {
			result = append(result, personToOutput(&matches[i]))
		}
	}

	return nil, FindPeopleOutput{People: result, Total: total}, nil
}

type GetPersonInput struct {
	ID string `json:"id" jsonschema:"Person ID (required)"`
}

func (h *PeopleHandlers) GetPerson(ctx context.Context, _ *mcp.CallToolRequest, input GetPersonInput) (*mcp.CallToolResult, PersonOutput, error) {
	if input.ID == "" {
		return nil, PersonOutput{}, fmt.Errorf("id is required")
	}

	person, err := h.store.Get(ctx, input.ID)
	if err != nil {
		return nil, PersonOutput{}, fmt.Errorf("failed to get person: %w", err)
	}
	return nil, personToOutput(person), nil
}

type UpdatePersonInput struct {
	ID      string       `json:"id" jsonschema:"Person ID (required)"`
	Changes PersonFields `json:"changes" jsonschema:"Fields to change; omitted fields are left alone"`
}

func (h *PeopleHandlers) UpdatePerson(ctx context.Context, _ *mcp.CallToolRequest, input UpdatePersonInput) (*mcp.CallToolResult, PersonOutput, error) {
	if input.ID == "" {
		return nil, PersonOutput{}, fmt.Errorf("id is required")
	}

	patch := input.Changes.patch()
	if patch.IsEmpty() {
		return nil, PersonOutput{}, fmt.Errorf("no fields to update")
	}

	person, err := h.store.Update(ctx, input.ID, patch)
	if err != nil {
		return nil, PersonOutput{}, fmt.Errorf("failed to update person: %w", err)
	}
	return nil, personToOutput(person), nil
}

type DeletePersonInput struct {
	ID string `json:"id" jsonschema:"Person ID (required)"`
}

type DeletePersonOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

func (h *PeopleHandlers) DeletePerson(ctx context.Context, _ *mcp.CallToolRequest, input DeletePersonInput) (*mcp.CallToolResult, DeletePersonOutput, error) {
	if input.ID == "" {
		return nil, DeletePersonOutput{}, fmt.Errorf("id is required")
	}

	if err := h.store.Delete(ctx, input.ID); err != nil {
		return nil, DeletePersonOutput{}, fmt.Errorf("failed to delete person: %w", err)
	}

	h.logger.Info("person deleted", "id", input.ID)
	return nil, DeletePersonOutput{ID: input.ID, Deleted: true}, nil
}

type BulkChange struct {
	ID      string       `json:"id" jsonschema:"Person ID"`
	Changes PersonFields `json:"changes" jsonschema:"Fields to change"`
}

type BulkUpdateInput struct {
	Records []BulkChange `json:"records" jsonschema:"Per-person changes; each record is updated independently"`
}

type BulkUpdateOutput struct {
	Updated []PersonOutput `json:"updated"`
	Errors  []string       `json:"errors,omitempty"`
}

func (h *PeopleHandlers) BulkUpdatePeople(ctx context.Context, _ *mcp.CallToolRequest, input BulkUpdateInput) (*mcp.CallToolResult, BulkUpdateOutput, error) {
	if len(input.Records) == 0 {
		return nil, BulkUpdateOutput{}, fmt.Errorf("records is required")
	}

	changes := make([]models.Change, 0, len(input.Records))
	for _, r := range input.Records {
		if r.ID == "" {
			return nil, BulkUpdateOutput{}, fmt.Errorf("every record needs an id")
		}
		changes = append(changes, models.Change{ID: r.ID, Changes: r.Changes.patch()})
	}

	updated, err := h.store.BulkUpdate(ctx, changes)

	out := BulkUpdateOutput{Updated: make([]PersonOutput, 0, len(updated))}
	for i := range updated {
		out.Updated = append(out.Updated, personToOutput(&updated[i]))
	}
	if err != nil {
		out.Errors = splitJoined(err)
		h.logger.Warn("bulk update partially failed", "updated", len(updated), "failed", len(out.Errors))
	}
	return nil, out, nil
}

type AdvanceStatusInput struct {
	ID     string `json:"id" jsonschema:"Person ID (required)"`
	Cancel bool   `json:"cancel,omitempty" jsonschema:"Move the person to Cancelled instead of the next stage"`
}

type AdvanceStatusOutput struct {
	Person   PersonOutput `json:"person"`
	Previous string       `json:"previous"`
}

func (h *PeopleHandlers) AdvanceStatus(ctx context.Context, _ *mcp.CallToolRequest, input AdvanceStatusInput) (*mcp.CallToolResult, AdvanceStatusOutput, error) {
	if input.ID == "" {
		return nil, AdvanceStatusOutput{}, fmt.Errorf("id is required")
	}

	current, err := h.store.Get(ctx, input.ID)
	if err != nil {
		return nil, AdvanceStatusOutput{}, fmt.Errorf("failed to get person: %w", err)
	}

	var person *models.Person
	if input.Cancel {
		person, err = people.Cancel(ctx, h.store, input.ID)
	} else {
		person, err = people.Advance(ctx, h.store, input.ID)
	}
	if err != nil {
		return nil, AdvanceStatusOutput{}, fmt.Errorf("failed to update status: %w", err)
	}

	return nil, AdvanceStatusOutput{Person: personToOutput(person), Previous: string(current.Status)}, nil
}

// splitJoined flattens an errors.Join result into one message per failure.
func splitJoined(err error) []string {
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		return []string{err.Error()}
	}
	var msgs []string
	for _, e := range joined.Unwrap() {
		msgs = append(msgs, e.Error())
	}
	return msgs
}
