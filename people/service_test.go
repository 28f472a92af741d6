// ABOUTME: Tests for the record service
// ABOUTME: Runs against a temp sqlite file and an in-memory image store
package people

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/leadbook/blobs"
	"github.com/harperreed/leadbook/db"
	"github.com/harperreed/leadbook/logging"
	"github.com/harperreed/leadbook/models"
	"github.com/harperreed/leadbook/tablestate"
)

const publicURL = "http://leadbook.test"

type fixture struct {
	db     *sql.DB
	blobs  *blobs.Store
	svc    *Service
	images *httptest.Server
}

func setup(t *testing.T) *fixture {
	t.Helper()

	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	store, err := blobs.Open(blobs.Config{PublicURL: publicURL, Logger: logging.Discard()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	images := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ".png") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("image:" + r.URL.Path))
	}))
	t.Cleanup(images.Close)

	return &fixture{
		db:     database,
		blobs:  store,
		svc:    NewService(database, store, logging.Discard()),
		images: images,
	}
}

func (f *fixture) storedNames(t *testing.T) []string {
	t.Helper()
	names, err := f.blobs.Names()
	require.NoError(t, err)
	return names
}

// failingDeletes wraps a blob store and refuses every delete.
type failingDeletes struct {
	store *blobs.Store
}

func (b failingDeletes) Store(ctx context.Context, sourceURL string) (string, error) {
	return b.store.Store(ctx, sourceURL)
}

func (b failingDeletes) Owns(url string) bool {
	return b.store.Owns(url)
}

func (failingDeletes) Delete(context.Context, string) error {
	return errors.New("object store unavailable")
}

func TestCreateAppliesDefaults(t *testing.T) {
	f := setup(t)

	p, err := f.svc.Create(context.Background(), models.PersonPatch{Name: models.String("Ada Lovelace")})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, models.StatusNotStarted, p.Status)
	assert.Equal(t, []string{}, p.Websites)
	assert.False(t, p.Connected)
	assert.Equal(t, 0, p.ConnectionDegree)

	got, err := f.svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", *got.Name)
}

func TestCreateNormalizesConnection(t *testing.T) {
	f := setup(t)

	p, err := f.svc.Create(context.Background(), models.PersonPatch{ConnectionDegree: models.DegreeOf(1)})
	require.NoError(t, err)
	assert.True(t, p.Connected)
	assert.Equal(t, 1, p.ConnectionDegree)

	p, err = f.svc.Create(context.Background(), models.PersonPatch{Connected: models.Bool(true)})
	require.NoError(t, err)
	assert.Equal(t, 1, p.ConnectionDegree)

	p, err = f.svc.Create(context.Background(), models.PersonPatch{ConnectionDegree: models.DegreeOf(2)})
	require.NoError(t, err)
	assert.False(t, p.Connected)
	assert.Equal(t, 2, p.ConnectionDegree)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Create(context.Background(), models.PersonPatch{Email: models.String("not-an-email")})
	assert.ErrorIs(t, err, ErrInvalidPatch)
	assert.ErrorContains(t, err, "email must be a valid email")

	bad := models.ContactStatus("Thinking About It")
	_, err = f.svc.Create(context.Background(), models.PersonPatch{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidPatch)

	all, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateCopiesExternalImage(t *testing.T) {
	f := setup(t)
	source := f.images.URL + "/ada.png"

	p, err := f.svc.Create(context.Background(), models.PersonPatch{
		Name:         models.String("Ada"),
		ProfileImage: models.String(source),
	})
	require.NoError(t, err)

	require.NotNil(t, p.ProfileImage)
	assert.NotEqual(t, source, *p.ProfileImage)
	assert.True(t, strings.HasPrefix(*p.ProfileImage, publicURL+blobs.PublicPath))

	name := strings.TrimPrefix(*p.ProfileImage, publicURL+blobs.PublicPath)
	data, _, err := f.blobs.Open(name)
	require.NoError(t, err)
	assert.Equal(t, "image:/ada.png", string(data))
}

func TestCreateKeepsStorageURL(t *testing.T) {
	f := setup(t)
	owned := f.blobs.URLFor("already.jpg")

	p, err := f.svc.Create(context.Background(), models.PersonPatch{ProfileImage: models.String(owned)})
	require.NoError(t, err)
	assert.Equal(t, owned, *p.ProfileImage)
	assert.Empty(t, f.storedNames(t))
}

func TestCreateAbortsWhenUploadFails(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Create(context.Background(), models.PersonPatch{
		ProfileImage: models.String(f.images.URL + "/missing.gif"),
	})
	assert.ErrorContains(t, err, "failed to upload profile image")

	all, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateRemovesImageWhenInsertFails(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.db.Close())

	_, err := f.svc.Create(context.Background(), models.PersonPatch{
		ProfileImage: models.String(f.images.URL + "/ada.png"),
	})
	require.Error(t, err)
	assert.Empty(t, f.storedNames(t))
}

func TestUpdatePartialKeepsDegree(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, models.PersonPatch{ConnectionDegree: models.DegreeOf(2)})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, p.ID, models.PersonPatch{Engagement: models.Int(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Engagement)
	assert.Equal(t, 2, updated.ConnectionDegree)
	assert.False(t, updated.Connected)
}

func TestUpdateConnectedToggle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, models.PersonPatch{ConnectionDegree: models.DegreeOf(2)})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, p.ID, models.PersonPatch{Connected: models.Bool(true)})
	require.NoError(t, err)
	assert.True(t, updated.Connected)
	assert.Equal(t, 1, updated.ConnectionDegree)

	updated, err = f.svc.Update(ctx, p.ID, models.PersonPatch{Connected: models.Bool(false)})
	require.NoError(t, err)
	assert.False(t, updated.Connected)
	assert.Equal(t, 0, updated.ConnectionDegree)

	updated, err = f.svc.Update(ctx, p.ID, models.PersonPatch{ConnectionDegree: models.DegreeOf(3)})
	require.NoError(t, err)
	assert.False(t, updated.Connected)
	assert.Equal(t, 3, updated.ConnectionDegree)
}

func TestUpdateNotFound(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Update(context.Background(), "missing", models.PersonPatch{Engagement: models.Int(1)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateReplacesImage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, models.PersonPatch{ProfileImage: models.String(f.images.URL + "/old.png")})
	require.NoError(t, err)
	oldURL := *p.ProfileImage

	updated, err := f.svc.Update(ctx, p.ID, models.PersonPatch{ProfileImage: models.String(f.images.URL + "/new.png")})
	require.NoError(t, err)

	assert.NotEqual(t, oldURL, *updated.ProfileImage)
	assert.True(t, f.blobs.Owns(*updated.ProfileImage))
	names := f.storedNames(t)
	require.Len(t, names, 1)
	assert.Equal(t, publicURL+blobs.PublicPath+names[0], *updated.ProfileImage)
}

func TestUpdateUnchangedImageDoesNoBlobWork(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, models.PersonPatch{ProfileImage: models.String(f.images.URL + "/a.png")})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, p.ID, models.PersonPatch{
		ProfileImage: p.ProfileImage,
		Headline:     models.String("Mathematician"),
	})
	require.NoError(t, err)
	assert.Equal(t, *p.ProfileImage, *updated.ProfileImage)
	assert.Len(t, f.storedNames(t), 1)
}

func TestUpdateRemovesImage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, models.PersonPatch{ProfileImage: models.String(f.images.URL + "/a.png")})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, p.ID, models.PersonPatch{ProfileImage: models.String("")})
	require.NoError(t, err)
	assert.Nil(t, updated.ProfileImage)
	assert.Empty(t, f.storedNames(t))
}

func TestUpdateClearsTextFields(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, models.PersonPatch{
		Name:  models.String("Ada"),
		Email: models.String("ada@example.com"),
		URL:   models.String("https://linkedin.com/in/ada"),
	})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, p.ID, models.PersonPatch{
		Email: models.String(""),
		URL:   models.String(""),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Email)
	assert.Nil(t, updated.URL)
	assert.Equal(t, "Ada", models.Deref(updated.Name))
}

func TestCreateStoresEmptyTextAsAbsent(t *testing.T) {
	f := setup(t)

	p, err := f.svc.Create(context.Background(), models.PersonPatch{
		Name:  models.String("Ada"),
		Email: models.String(""),
	})
	require.NoError(t, err)
	assert.Nil(t, p.Email)

	got, err := f.svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Email)
}

func TestTableSaveClearsFields(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, models.PersonPatch{
		Name:         models.String("Ada"),
		Email:        models.String("ada@example.com"),
		ProfileImage: models.String(f.images.URL + "/a.png"),
	})
	require.NoError(t, err)
	require.Len(t, f.storedNames(t), 1)

	table := tablestate.NewOrchestrator(f.svc, logging.Discard())
	require.NoError(t, table.Hydrate(ctx, f.svc))
	require.NoError(t, table.Edit(p.ID, tablestate.FieldEmail, ""))
	require.NoError(t, table.Edit(p.ID, tablestate.FieldProfileImage, ""))

	saved, err := table.Save(ctx)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, tablestate.Clean, table.State())

	got, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Email)
	assert.Nil(t, got.ProfileImage)
	assert.Empty(t, f.storedNames(t))
}

func TestUpdateFailedUploadLeavesRecord(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, models.PersonPatch{ProfileImage: models.String(f.images.URL + "/a.png")})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, p.ID, models.PersonPatch{ProfileImage: models.String(f.images.URL + "/nope.txt")})
	require.Error(t, err)

	got, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, *p.ProfileImage, *got.ProfileImage)
	assert.Len(t, f.storedNames(t), 1)
}

func TestDeleteRemovesImage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, models.PersonPatch{ProfileImage: models.String(f.images.URL + "/a.png")})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, p.ID))
	_, err = f.svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.storedNames(t))

	assert.ErrorIs(t, f.svc.Delete(ctx, p.ID), ErrNotFound)
}

func TestDeleteSurvivesImageCleanupFailure(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	svc := NewService(f.db, failingDeletes{f.blobs}, logging.Discard())

	p, err := svc.Create(ctx, models.PersonPatch{ProfileImage: models.String(f.images.URL + "/a.png")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID))
	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceWithoutBlobsStoresURLs(t *testing.T) {
	f := setup(t)
	svc := NewService(f.db, nil, logging.Discard())

	p, err := svc.Create(context.Background(), models.PersonPatch{ProfileImage: models.String("https://cdn.example/a.png")})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/a.png", *p.ProfileImage)
}

func TestBulkUpdate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	a, err := f.svc.Create(ctx, models.PersonPatch{Name: models.String("A")})
	require.NoError(t, err)
	b, err := f.svc.Create(ctx, models.PersonPatch{Name: models.String("B")})
	require.NoError(t, err)

	updated, err := f.svc.BulkUpdate(ctx, []models.Change{
		{ID: a.ID, Changes: models.PersonPatch{Engagement: models.Int(2)}},
		{ID: b.ID, Changes: models.PersonPatch{Location: models.String("Oslo")}},
	})
	require.NoError(t, err)
	require.Len(t, updated, 2)
	assert.Equal(t, 2, updated[0].Engagement)
	assert.Equal(t, "Oslo", *updated[1].Location)
}

func TestBulkUpdatePartialFailure(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	a, err := f.svc.Create(ctx, models.PersonPatch{Name: models.String("A")})
	require.NoError(t, err)

	updated, err := f.svc.BulkUpdate(ctx, []models.Change{
		{ID: a.ID, Changes: models.PersonPatch{Engagement: models.Int(2)}},
		{ID: "ghost", Changes: models.PersonPatch{Engagement: models.Int(2)}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorContains(t, err, "ghost")
	assert.Len(t, updated, 1)
}

func TestAdvance(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, models.PersonPatch{})
	require.NoError(t, err)

	p, err = Advance(ctx, f.svc, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSentConnection, p.Status)

	p, err = Cancel(ctx, f.svc, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, p.Status)

	_, err = Advance(ctx, f.svc, p.ID)
	assert.ErrorIs(t, err, ErrTerminalStatus)

	_, err = Advance(ctx, f.svc, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdjustEngagementFloorsAtZero(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, models.PersonPatch{Engagement: models.Int(1)})
	require.NoError(t, err)

	p, err = AdjustEngagement(ctx, f.svc, p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Engagement)

	p, err = AdjustEngagement(ctx, f.svc, p.ID, -5)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Engagement)
}

func TestFind(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, name := range []string{"Ada Lovelace", "Grace Hopper", "Ada Yonath"} {
		_, err := f.svc.Create(ctx, models.PersonPatch{Name: models.String(name)})
		require.NoError(t, err)
	}

	found, err := f.svc.Find(ctx, "ada", 0)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = f.svc.Find(ctx, "ada", 1)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestPruneImages(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, models.PersonPatch{ProfileImage: models.String(f.images.URL + "/a.png")})
	require.NoError(t, err)
	require.NoError(t, f.blobs.Put("orphan.jpg", []byte("x"), "image/jpeg"))

	removed, err := f.svc.PruneImages(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Len(t, f.storedNames(t), 1)
}
