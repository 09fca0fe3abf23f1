package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"recipehub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRecipes is an in-memory RecipeStore recording call order so ordering
// invariants can be asserted.
type fakeRecipes struct {
	byID    map[uint]*models.Recipe
	nextID  uint
	calls   *[]string
	saveErr error
	crtErr  error
}

func newFakeRecipes(calls *[]string) *fakeRecipes {
	return &fakeRecipes{byID: map[uint]*models.Recipe{}, nextID: 1, calls: calls}
}

func (f *fakeRecipes) Get(ctx context.Context, id uint) (*models.Recipe, error) {
	rec, ok := f.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "Recipe"}
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeRecipes) Create(ctx context.Context, r *models.Recipe) error {
	*f.calls = append(*f.calls, "record-create")
	if f.crtErr != nil {
		return f.crtErr
	}
	r.ID = f.nextID
	f.nextID++
	cp := *r
	f.byID[r.ID] = &cp
	return nil
}

func (f *fakeRecipes) Save(ctx context.Context, r *models.Recipe) error {
	*f.calls = append(*f.calls, "record-save")
	if f.saveErr != nil {
		return f.saveErr
	}
	cp := *r
	f.byID[r.ID] = &cp
	return nil
}

func (f *fakeRecipes) Delete(ctx context.Context, id uint) error {
	*f.calls = append(*f.calls, "record-delete")
	delete(f.byID, id)
	return nil
}

func (f *fakeRecipes) Search(ctx context.Context, q string, limit int) ([]models.Recipe, error) {
	var out []models.Recipe
	for _, r := range f.byID {
		if strings.Contains(strings.ToLower(r.Title), strings.ToLower(q)) {
			out = append(out, *r)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRecipes) List(ctx context.Context, username, category string) ([]models.Recipe, error) {
	var out []models.Recipe
	for _, r := range f.byID {
		switch {
		case username != "" && r.Username != username:
		case username == "" && category != "" && r.Category != category:
		default:
			out = append(out, *r)
		}
	}
	return out, nil
}

// fakeObjects is an in-memory ObjectStore.
type fakeObjects struct {
	stored    map[string][]byte
	calls     *[]string
	uploadErr error
	deleteErr error
}

func newFakeObjects(calls *[]string) *fakeObjects {
	return &fakeObjects{stored: map[string][]byte{}, calls: calls}
}

func (f *fakeObjects) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	*f.calls = append(*f.calls, "object-upload")
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	data, _ := io.ReadAll(r)
	f.stored[key] = data
	return "http://store.test/" + key, nil
}

func (f *fakeObjects) Delete(ctx context.Context, key string) error {
	*f.calls = append(*f.calls, "object-delete:"+key)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.stored, key)
	return nil
}

func testCoordinator() (*Coordinator, *fakeRecipes, *fakeObjects, *[]string) {
	calls := &[]string{}
	recipes := newFakeRecipes(calls)
	objects := newFakeObjects(calls)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCoordinator(recipes, objects, log), recipes, objects, calls
}

var (
	chefUser  = &models.User{ID: 1, Username: "alice", Permissions: []string{"chef", "user"}}
	otherChef = &models.User{ID: 2, Username: "bob", Permissions: []string{"chef", "user"}}
	adminUser = &models.User{ID: 9, Username: "root", Permissions: []string{"admin", "chef", "user"}}
)

func validInput() RecipeInput {
	return RecipeInput{
		Title:            "Chocolate Cake",
		Description:      "Rich and moist",
		Category:         "Dessert",
		Ingredients:      []string{"flour", "cocoa"},
		PreparationSteps: []string{"mix", "bake"},
	}
}

func testImage() *ImageUpload {
	return &ImageUpload{Reader: strings.NewReader("img-bytes"), Size: 9, ContentType: "image/jpeg"}
}

func TestCreateRequiresImage(t *testing.T) {
	co, _, _, _ := testCoordinator()

	_, err := co.Create(context.Background(), chefUser, validInput(), nil)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestCreateItemizesMissingFields(t *testing.T) {
	co, _, _, _ := testCoordinator()

	in := validInput()
	in.Title = ""
	in.Ingredients = nil
	_, err := co.Create(context.Background(), chefUser, in, testImage())

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.ElementsMatch(t, []string{"title", "ingredients"}, ve.Fields)
}

func TestCreateStoresImageAndRecord(t *testing.T) {
	co, recipes, objects, _ := testCoordinator()

	rec, err := co.Create(context.Background(), chefUser, validInput(), testImage())
	require.NoError(t, err)
	assert.Equal(t, chefUser.ID, rec.UserID)
	assert.Equal(t, "alice", rec.Username)
	assert.NotEmpty(t, rec.ImageKey)
	assert.Equal(t, "http://store.test/"+rec.ImageKey, rec.ImageURL)
	assert.Contains(t, objects.stored, rec.ImageKey)
	assert.Contains(t, recipes.byID, rec.ID)
}

func TestCreateCleansUpImageWhenRecordFails(t *testing.T) {
	co, recipes, objects, _ := testCoordinator()
	recipes.crtErr = errors.New("db down")

	_, err := co.Create(context.Background(), chefUser, validInput(), testImage())
	require.Error(t, err)
	assert.Empty(t, objects.stored, "uploaded object should be removed after record failure")
}

func TestUpdateRejectsNonOwner(t *testing.T) {
	co, recipes, _, _ := testCoordinator()
	rec, err := co.Create(context.Background(), chefUser, validInput(), testImage())
	require.NoError(t, err)

	in := validInput()
	in.Title = "Stolen Cake"
	_, err = co.Update(context.Background(), otherChef, rec.ID, in, nil)

	var ae *AuthorizationError
	require.ErrorAs(t, err, &ae)
	// Record unchanged.
	assert.Equal(t, "Chocolate Cake", recipes.byID[rec.ID].Title)
}

func TestUpdateUnknownRecipeIsNotFound(t *testing.T) {
	co, _, _, _ := testCoordinator()
	_, err := co.Update(context.Background(), chefUser, 404, validInput(), nil)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestUpdateWithoutImageKeepsExistingObject(t *testing.T) {
	co, _, objects, _ := testCoordinator()
	rec, err := co.Create(context.Background(), chefUser, validInput(), testImage())
	require.NoError(t, err)

	in := RecipeInput{Title: "Chocolate Cake v2"}
	updated, err := co.Update(context.Background(), chefUser, rec.ID, in, nil)
	require.NoError(t, err)
	assert.Equal(t, "Chocolate Cake v2", updated.Title)
	assert.Equal(t, rec.ImageKey, updated.ImageKey)
	assert.Contains(t, objects.stored, rec.ImageKey)
}

func TestUpdateReplacesImageThenDeletesOld(t *testing.T) {
	co, _, objects, calls := testCoordinator()
	rec, err := co.Create(context.Background(), chefUser, validInput(), testImage())
	require.NoError(t, err)
	oldKey := rec.ImageKey
	*calls = (*calls)[:0]

	updated, err := co.Update(context.Background(), chefUser, rec.ID, RecipeInput{}, testImage())
	require.NoError(t, err)
	assert.NotEqual(t, oldKey, updated.ImageKey)
	assert.NotContains(t, objects.stored, oldKey)
	assert.Contains(t, objects.stored, updated.ImageKey)

	// Upload new, persist record, only then delete the superseded object.
	require.Equal(t, []string{"object-upload", "record-save", "object-delete:" + oldKey}, *calls)
}

func TestUpdateOldImageDeleteFailureDoesNotFailUpdate(t *testing.T) {
	co, recipes, objects, _ := testCoordinator()
	rec, err := co.Create(context.Background(), chefUser, validInput(), testImage())
	require.NoError(t, err)

	objects.deleteErr = errors.New("store flake")
	updated, err := co.Update(context.Background(), chefUser, rec.ID, RecipeInput{}, testImage())
	require.NoError(t, err, "cleanup failure must not roll back a durable record update")
	assert.Equal(t, updated.ImageKey, recipes.byID[rec.ID].ImageKey)
}

func TestUpdateSaveFailureCleansUpNewImage(t *testing.T) {
	co, recipes, objects, calls := testCoordinator()
	rec, err := co.Create(context.Background(), chefUser, validInput(), testImage())
	require.NoError(t, err)
	oldKey := rec.ImageKey
	recipes.saveErr = errors.New("db down")
	*calls = (*calls)[:0]

	_, err = co.Update(context.Background(), chefUser, rec.ID, RecipeInput{}, testImage())
	require.Error(t, err)
	// The old, still-referenced object survives; the new one is removed.
	assert.Contains(t, objects.stored, oldKey)
	assert.Len(t, objects.stored, 1)
}

func TestDeleteByOwner(t *testing.T) {
	co, recipes, objects, _ := testCoordinator()
	rec, err := co.Create(context.Background(), chefUser, validInput(), testImage())
	require.NoError(t, err)

	require.NoError(t, co.Delete(context.Background(), chefUser, rec.ID))
	assert.NotContains(t, recipes.byID, rec.ID)
	assert.Empty(t, objects.stored)
}

func TestDeleteByAdminNonOwner(t *testing.T) {
	co, recipes, _, _ := testCoordinator()
	rec, err := co.Create(context.Background(), chefUser, validInput(), testImage())
	require.NoError(t, err)

	require.NoError(t, co.Delete(context.Background(), adminUser, rec.ID))
	assert.NotContains(t, recipes.byID, rec.ID)
}

func TestDeleteRejectsNonOwnerNonAdmin(t *testing.T) {
	co, recipes, _, _ := testCoordinator()
	rec, err := co.Create(context.Background(), chefUser, validInput(), testImage())
	require.NoError(t, err)

	err = co.Delete(context.Background(), otherChef, rec.ID)
	var ae *AuthorizationError
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, recipes.byID, rec.ID)
}

func TestDeleteImageFailureIsSwallowed(t *testing.T) {
	co, recipes, objects, _ := testCoordinator()
	rec, err := co.Create(context.Background(), chefUser, validInput(), testImage())
	require.NoError(t, err)
	objects.deleteErr = errors.New("store flake")

	require.NoError(t, co.Delete(context.Background(), chefUser, rec.ID))
	assert.NotContains(t, recipes.byID, rec.ID)
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	co, _, _, _ := testCoordinator()
	ctx := context.Background()
	for _, title := range []string{"Chocolate Cake", "Choco Bites", "Vanilla Cake"} {
		in := validInput()
		in.Title = title
		_, err := co.Create(ctx, chefUser, in, testImage())
		require.NoError(t, err)
	}

	for _, q := range []string{"choco", "CHOCO"} {
		got, err := co.Search(ctx, q)
		require.NoError(t, err)
		titles := make([]string, 0, len(got))
		for _, r := range got {
			titles = append(titles, r.Title)
		}
		assert.ElementsMatch(t, []string{"Chocolate Cake", "Choco Bites"}, titles, "query %q", q)
	}
}

func TestListFiltersAreMutuallyExclusive(t *testing.T) {
	co, _, _, _ := testCoordinator()
	ctx := context.Background()

	in := validInput()
	_, err := co.Create(ctx, chefUser, in, testImage())
	require.NoError(t, err)
	in2 := validInput()
	in2.Title = "Bob Bread"
	in2.Category = "Bakery"
	_, err = co.Create(ctx, otherChef, in2, testImage())
	require.NoError(t, err)

	byUser, err := co.List(ctx, "alice", "")
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, "Chocolate Cake", byUser[0].Title)

	byCat, err := co.List(ctx, "", "Bakery")
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	assert.Equal(t, "Bob Bread", byCat[0].Title)

	// Username filter wins when both are supplied.
	both, err := co.List(ctx, "alice", "Bakery")
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "alice", both[0].Username)

	all, err := co.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
