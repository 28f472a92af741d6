// ABOUTME: Tests for person database operations
// ABOUTME: Covers insert defaults, partial updates, clearing fields and deletes
package db

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/leadbook/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testPatch(name string) models.PersonPatch {
	return models.PersonPatch{Name: models.String(name)}
}

func TestInsertPersonDefaults(t *testing.T) {
	db := setupTestDB(t)

	p, err := InsertPerson(t.Context(), db, testPatch("Ada Lovelace"))
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, models.StatusNotStarted, p.Status)
	assert.Equal(t, []string{}, p.Websites)
	assert.False(t, p.Connected)
	assert.Zero(t, p.Engagement)
	assert.Nil(t, p.Email)

	got, err := GetPerson(t.Context(), db, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", models.Deref(got.Name))
	assert.Equal(t, []string{}, got.Websites)
	assert.Equal(t, models.StatusNotStarted, got.Status)
}

func TestInsertPersonAllFields(t *testing.T) {
	db := setupTestDB(t)
	status := models.StatusSentReport
	websites := []string{"https://ada.dev", "https://blog.ada.dev"}

	p, err := InsertPerson(t.Context(), db, models.PersonPatch{
		Name:             models.String("Ada"),
		Email:            models.String("ada@example.com"),
		CurrentCompany:   models.String("Analytical Engines"),
		Websites:         &websites,
		Connected:        models.Bool(true),
		ConnectionDegree: models.DegreeOf(1),
		Status:           &status,
		Engagement:       models.Int(4),
	})
	require.NoError(t, err)

	got, err := GetPerson(t.Context(), db, p.ID)
	require.NoError(t, err)
	assert.Equal(t, websites, got.Websites)
	assert.True(t, got.Connected)
	assert.Equal(t, 1, got.ConnectionDegree)
	assert.Equal(t, status, got.Status)
	assert.Equal(t, 4, got.Engagement)
	assert.Equal(t, "Analytical Engines", models.Deref(got.CurrentCompany))
}

func TestInsertPersonEmptyTextIsNull(t *testing.T) {
	db := setupTestDB(t)

	p, err := InsertPerson(t.Context(), db, models.PersonPatch{
		Name:  models.String("Ada"),
		Email: models.String(""),
		Phone: models.String(""),
	})
	require.NoError(t, err)
	assert.Nil(t, p.Email)

	got, err := GetPerson(t.Context(), db, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Email)
	assert.Nil(t, got.Phone)

	var nulls int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM people WHERE email IS NULL AND phone IS NULL`).Scan(&nulls))
	assert.Equal(t, 1, nulls)
}

func TestGetPersonNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := GetPerson(t.Context(), db, "missing")
	assert.ErrorIs(t, err, ErrPersonNotFound)
}

func TestListPeopleNewestFirst(t *testing.T) {
	db := setupTestDB(t)

	first, err := InsertPerson(t.Context(), db, testPatch("first"))
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := InsertPerson(t.Context(), db, testPatch("second"))
	require.NoError(t, err)

	people, err := ListPeople(t.Context(), db, 0)
	require.NoError(t, err)
	require.Len(t, people, 2)
	assert.Equal(t, second.ID, people[0].ID)
	assert.Equal(t, first.ID, people[1].ID)

	limited, err := ListPeople(t.Context(), db, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestListPeopleEmpty(t *testing.T) {
	db := setupTestDB(t)

	people, err := ListPeople(t.Context(), db, 0)
	require.NoError(t, err)
	assert.NotNil(t, people)
	assert.Empty(t, people)
}

func TestUpdatePersonPartial(t *testing.T) {
	db := setupTestDB(t)
	p, err := InsertPerson(t.Context(), db, models.PersonPatch{
		Name:     models.String("Ada"),
		Headline: models.String("Mathematician"),
	})
	require.NoError(t, err)

	updated, err := UpdatePerson(t.Context(), db, p.ID, models.PersonPatch{Engagement: models.Int(3)})
	require.NoError(t, err)

	assert.Equal(t, 3, updated.Engagement)
	assert.Equal(t, "Ada", models.Deref(updated.Name))
	assert.Equal(t, "Mathematician", models.Deref(updated.Headline))
	assert.False(t, updated.UpdatedAt.Before(p.UpdatedAt))
}

func TestUpdatePersonClearsText(t *testing.T) {
	db := setupTestDB(t)
	p, err := InsertPerson(t.Context(), db, models.PersonPatch{
		Name:  models.String("Ada"),
		Email: models.String("ada@example.com"),
	})
	require.NoError(t, err)

	empty := []string{}
	updated, err := UpdatePerson(t.Context(), db, p.ID, models.PersonPatch{
		Email:    models.String(""),
		Websites: &empty,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Email)
	assert.Equal(t, []string{}, updated.Websites)
}

func TestUpdatePersonExplicitZeroDegree(t *testing.T) {
	db := setupTestDB(t)
	p, err := InsertPerson(t.Context(), db, models.PersonPatch{ConnectionDegree: models.DegreeOf(2)})
	require.NoError(t, err)

	updated, err := UpdatePerson(t.Context(), db, p.ID, models.PersonPatch{ConnectionDegree: models.DegreeOf(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.ConnectionDegree)
}

func TestUpdatePersonNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := UpdatePerson(t.Context(), db, "missing", testPatch("x"))
	assert.ErrorIs(t, err, ErrPersonNotFound)
}

func TestDeletePerson(t *testing.T) {
	db := setupTestDB(t)
	p, err := InsertPerson(t.Context(), db, testPatch("Ada"))
	require.NoError(t, err)
	require.NoError(t, RecordImport(t.Context(), db, "google-contacts", "people/c1", p.ID))

	require.NoError(t, DeletePerson(t.Context(), db, p.ID))

	_, err = GetPerson(t.Context(), db, p.ID)
	assert.ErrorIs(t, err, ErrPersonNotFound)

	imported, err := WasImported(t.Context(), db, "google-contacts", "people/c1")
	require.NoError(t, err)
	assert.False(t, imported, "import log entries go with the person")

	assert.ErrorIs(t, DeletePerson(t.Context(), db, p.ID), ErrPersonNotFound)
}

func TestFindPersonByEmail(t *testing.T) {
	db := setupTestDB(t)
	p, err := InsertPerson(t.Context(), db, models.PersonPatch{Email: models.String("Ada@Example.com")})
	require.NoError(t, err)

	found, err := FindPersonByEmail(t.Context(), db, "ada@example.COM")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, p.ID, found.ID)

	missing, err := FindPersonByEmail(t.Context(), db, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCountByStatus(t *testing.T) {
	db := setupTestDB(t)
	sent := models.StatusSentConnection

	_, err := InsertPerson(t.Context(), db, testPatch("a"))
	require.NoError(t, err)
	_, err = InsertPerson(t.Context(), db, models.PersonPatch{Status: &sent})
	require.NoError(t, err)
	_, err = InsertPerson(t.Context(), db, models.PersonPatch{Status: &sent})
	require.NoError(t, err)

	counts, err := CountByStatus(t.Context(), db)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[models.StatusNotStarted])
	assert.Equal(t, 2, counts[models.StatusSentConnection])
}
