// ABOUTME: Tests for person MCP tool handlers
// ABOUTME: Validates tool input/output and error handling against a temp sqlite store
package handlers

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/leadbook/db"
	"github.com/harperreed/leadbook/logging"
	"github.com/harperreed/leadbook/models"
	"github.com/harperreed/leadbook/people"
)

func setupStore(t *testing.T) *people.Service {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "mcp.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return people.NewService(database, nil, logging.Discard())
}

func addPerson(t *testing.T, h *PeopleHandlers, input AddPersonInput) PersonOutput {
	t.Helper()
	_, out, err := h.AddPerson(context.Background(), nil, input)
	require.NoError(t, err)
	return out
}

func TestAddPersonHandler(t *testing.T) {
	h := NewPeopleHandlers(setupStore(t), logging.Discard())

	degree := 1
	out := addPerson(t, h, AddPersonInput{
		Name:             "Ada Lovelace",
		Email:            "ada@example.com",
		CurrentCompany:   "Analytical Engines",
		ConnectionDegree: &degree,
	})

	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "Ada Lovelace", out.Name)
	assert.Equal(t, "ada@example.com", out.Email)
	assert.True(t, out.Connected, "first degree implies connected")
	assert.Equal(t, string(models.StatusNotStarted), out.Status)
	assert.Equal(t, []string{}, out.Websites)
	assert.NotEmpty(t, out.CreatedAt)
}

func TestAddPersonRejectsEmptyAndInvalidInput(t *testing.T) {
	h := NewPeopleHandlers(setupStore(t), logging.Discard())

	_, _, err := h.AddPerson(context.Background(), nil, AddPersonInput{})
	assert.Error(t, err)

	_, _, err = h.AddPerson(context.Background(), nil, AddPersonInput{Name: "Bad", Email: "nope"})
	assert.ErrorIs(t, err, people.ErrInvalidPatch)

	_, _, err = h.AddPerson(context.Background(), nil, AddPersonInput{Name: "Bad", Status: "Maybe"})
	assert.ErrorIs(t, err, people.ErrInvalidPatch)
}

func TestFindPeopleHandler(t *testing.T) {
	h := NewPeopleHandlers(setupStore(t), logging.Discard())

	addPerson(t, h, AddPersonInput{Name: "Ada Lovelace", CurrentCompany: "Analytical Engines"})
	addPerson(t, h, AddPersonInput{Name: "Grace Hopper", CurrentCompany: "Navy", Status: string(models.StatusSentConnection)})
	addPerson(t, h, AddPersonInput{Name: "Alan Turing", Location: "Bletchley"})

	_, out, err := h.FindPeople(context.Background(), nil, FindPeopleInput{Query: "navy"})
	require.NoError(t, err)
	require.Len(t, out.People, 1)
	assert.Equal(t, "Grace Hopper", out.People[0].Name)

	_, out, err = h.FindPeople(context.Background(), nil, FindPeopleInput{Status: string(models.StatusNotStarted)})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Total)

	_, out, err = h.FindPeople(context.Background(), nil, FindPeopleInput{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, out.People, 1)
	assert.Equal(t, 3, out.Total)

	_, _, err = h.FindPeople(context.Background(), nil, FindPeopleInput{Status: "Unknown"})
	assert.Error(t, err)
}

func TestGetAndUpdatePersonHandlers(t *testing.T) {
	h := NewPeopleHandlers(setupStore(t), logging.Discard())
	created := addPerson(t, h, AddPersonInput{Name: "Ada Lovelace", Email: "ada@example.com"})

	engagement := 3
	_, updated, err := h.UpdatePerson(context.Background(), nil, UpdatePersonInput{
		ID:      created.ID,
		Changes: PersonFields{Headline: "First programmer", Engagement: &engagement},
	})
	require.NoError(t, err)
	assert.Equal(t, "First programmer", updated.Headline)
	assert.Equal(t, 3, updated.Engagement)
	assert.Equal(t, "ada@example.com", updated.Email, "untouched fields survive")

	_, got, err := h.GetPerson(context.Background(), nil, GetPersonInput{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	_, _, err = h.GetPerson(context.Background(), nil, GetPersonInput{ID: "missing"})
	assert.ErrorIs(t, err, people.ErrNotFound)

	_, _, err = h.UpdatePerson(context.Background(), nil, UpdatePersonInput{ID: created.ID})
	assert.Error(t, err, "empty changes are rejected")

	_, _, err = h.GetPerson(context.Background(), nil, GetPersonInput{})
	assert.Error(t, err)
}

func TestDeletePersonHandler(t *testing.T) {
	h := NewPeopleHandlers(setupStore(t), logging.Discard())
	created := addPerson(t, h, AddPersonInput{Name: "Ada Lovelace"})

	_, out, err := h.DeletePerson(context.Background(), nil, DeletePersonInput{ID: created.ID})
	require.NoError(t, err)
	assert.True(t, out.Deleted)

	_, _, err = h.DeletePerson(context.Background(), nil, DeletePersonInput{ID: created.ID})
	assert.ErrorIs(t, err, people.ErrNotFound)
}

func TestBulkUpdateReportsPerRecordFailures(t *testing.T) {
	h := NewPeopleHandlers(setupStore(t), logging.Discard())
	ada := addPerson(t, h, AddPersonInput{Name: "Ada Lovelace"})
	grace := addPerson(t, h, AddPersonInput{Name: "Grace Hopper"})

	one := 1
	_, out, err := h.BulkUpdatePeople(context.Background(), nil, BulkUpdateInput{Records: []BulkChange{
		{ID: ada.ID, Changes: PersonFields{Engagement: &one}},
		{ID: "missing", Changes: PersonFields{Engagement: &one}},
		{ID: grace.ID, Changes: PersonFields{Status: string(models.StatusSentConnection)}},
	}})
	require.NoError(t, err)

	require.Len(t, out.Updated, 2)
	assert.Equal(t, 1, out.Updated[0].Engagement)
	assert.Equal(t, string(models.StatusSentConnection), out.Updated[1].Status)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "missing")

	_, _, err = h.BulkUpdatePeople(context.Background(), nil, BulkUpdateInput{})
	assert.Error(t, err)
}

func TestAdvanceStatusHandler(t *testing.T) {
	h := NewPeopleHandlers(setupStore(t), logging.Discard())
	created := addPerson(t, h, AddPersonInput{Name: "Ada Lovelace"})

	_, out, err := h.AdvanceStatus(context.Background(), nil, AdvanceStatusInput{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, string(models.StatusNotStarted), out.Previous)
	assert.Equal(t, string(models.StatusSentConnection), out.Person.Status)

	_, out, err = h.AdvanceStatus(context.Background(), nil, AdvanceStatusInput{ID: created.ID, Cancel: true})
	require.NoError(t, err)
	assert.Equal(t, string(models.StatusCancelled), out.Person.Status)

	_, _, err = h.AdvanceStatus(context.Background(), nil, AdvanceStatusInput{ID: created.ID})
	assert.ErrorIs(t, err, people.ErrTerminalStatus)
}

func TestResourcesAndPrompts(t *testing.T) {
	store := setupStore(t)
	h := NewPeopleHandlers(store, logging.Discard())
	ada := addPerson(t, h, AddPersonInput{Name: "Ada Lovelace", CurrentCompany: "Analytical Engines"})

	resources := NewResourceHandlers(store)
	read := func(uri string) (*mcp.ReadResourceResult, error) {
		return resources.ReadResource(context.Background(), &mcp.ReadResourceRequest{
			Params: &mcp.ReadResourceParams{URI: uri},
		})
	}

	res, err := read("leadbook://people")
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Contains(t, res.Contents[0].Text, "Ada Lovelace")

	res, err = read("leadbook://people/" + ada.ID)
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, ada.ID)

	res, err = read("leadbook://pipeline")
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, `"total": 1`)

	_, err = read("leadbook://people/missing")
	assert.Error(t, err)
	_, err = read("crm://people")
	assert.Error(t, err)

	prompts := NewPromptHandlers(store)
	prompt, err := prompts.GetPrompt(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Name: "prospect-summary", Arguments: map[string]string{"person_id": ada.ID}},
	})
	require.NoError(t, err)
	require.Len(t, prompt.Messages, 1)
	assert.Contains(t, prompt.Messages[0].Content.(*mcp.TextContent).Text, "Company: Analytical Engines")

	prompt, err = prompts.GetPrompt(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Name: "outreach-suggestions"},
	})
	require.NoError(t, err)
	assert.Contains(t, prompt.Messages[0].Content.(*mcp.TextContent).Text, "Ada Lovelace")

	_, err = prompts.GetPrompt(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Name: "prospect-summary"},
	})
	assert.Error(t, err)
}

func TestServerExposesTools(t *testing.T) {
	ctx := context.Background()
	server := NewServer(setupStore(t), "test", logging.Discard())

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"add_person", "find_people", "get_person", "update_person",
		"delete_person", "bulk_update_people", "advance_status",
	}, names)

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "add_person",
		Arguments: map[string]any{"name": "Ada Lovelace"},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
}
