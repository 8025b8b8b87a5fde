package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elimS2/prompt-manager/database"
	"github.com/elimS2/prompt-manager/errs"
	"github.com/elimS2/prompt-manager/models"
)

func createUser(t *testing.T, db database.Database, email string) *models.User {
	t.Helper()

	user := &models.User{
		GoogleSub: "sub-" + email,
		Email:     email,
		Role:      models.RoleUser,
		Status:    models.StatusActive,
	}
	require.NoError(t, db.UserRepo().Add(user))
	return user
}

func TestCreateFavoriteSet(t *testing.T) {
	db := newTestDB(t)
	svc := NewFavoriteSetService(db.FavoriteSetRepo(), db.PromptRepo())

	user := createUser(t, db, "owner@example.com")
	a := createPrompt(t, db, "A", "body")
	b := createPrompt(t, db, "B", "body")

	set, err := svc.Create(user.ID, "  Daily Drivers ", "my usual prompts", []uuid.UUID{b.ID, a.ID})
	require.NoError(t, err)

	assert.Equal(t, "Daily Drivers", set.Name)
	assert.True(t, set.IsActive)
	require.Len(t, set.Items, 2)
	assert.Equal(t, b.ID, set.Items[0].PromptID)
	assert.Equal(t, 0, set.Items[0].Position)
	assert.Equal(t, a.ID, set.Items[1].PromptID)
	assert.Equal(t, 1, set.Items[1].Position)
}

func TestCreateFavoriteSetNormalizesPromptIDs(t *testing.T) {
	db := newTestDB(t)
	svc := NewFavoriteSetService(db.FavoriteSetRepo(), db.PromptRepo())

	user := createUser(t, db, "owner@example.com")
	a := createPrompt(t, db, "A", "body")

	// Duplicates collapse and unknown ids are dropped.
	set, err := svc.Create(user.ID, "Set", "", []uuid.UUID{a.ID, a.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, set.Items, 1)
	assert.Equal(t, a.ID, set.Items[0].PromptID)
}

func TestCreateFavoriteSetNameRules(t *testing.T) {
	db := newTestDB(t)
	svc := NewFavoriteSetService(db.FavoriteSetRepo(), db.PromptRepo())

	user := createUser(t, db, "owner@example.com")

	_, err := svc.Create(user.ID, "   ", "", nil)
	require.Error(t, err)
	assert.True(t, errs.IsBadRequest(err))

	_, err = svc.Create(user.ID, strings.Repeat("x", 151), "", nil)
	require.Error(t, err)
	assert.True(t, errs.IsBadRequest(err))

	_, err = svc.Create(user.ID, "Mine", "", nil)
	require.NoError(t, err)
	_, err = svc.Create(user.ID, "Mine", "", nil)
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))

	// Another user may reuse the name.
	other := createUser(t, db, "other@example.com")
	_, err = svc.Create(other.ID, "Mine", "", nil)
	require.NoError(t, err)
}

func TestFavoriteSetOwnershipIsolation(t *testing.T) {
	db := newTestDB(t)
	svc := NewFavoriteSetService(db.FavoriteSetRepo(), db.PromptRepo())

	owner := createUser(t, db, "owner@example.com")
	intruder := createUser(t, db, "intruder@example.com")

	set, err := svc.Create(owner.ID, "Private", "", nil)
	require.NoError(t, err)

	_, err = svc.Get(intruder.ID, set.ID)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))

	err = svc.Delete(intruder.ID, set.ID)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))

	// Still intact for the owner.
	fetched, err := svc.Get(owner.ID, set.ID)
	require.NoError(t, err)
	assert.Equal(t, "Private", fetched.Name)
}

func TestUpdateFavoriteSet(t *testing.T) {
	db := newTestDB(t)
	svc := NewFavoriteSetService(db.FavoriteSetRepo(), db.PromptRepo())

	user := createUser(t, db, "owner@example.com")
	a := createPrompt(t, db, "A", "body")
	b := createPrompt(t, db, "B", "body")

	set, err := svc.Create(user.ID, "Set", "", []uuid.UUID{a.ID})
	require.NoError(t, err)

	newName := "Renamed"
	newItems := []uuid.UUID{b.ID, a.ID}
	updated, err := svc.Update(user.ID, set.ID, UpdateFavoriteSetInput{
		Name:      &newName,
		PromptIDs: &newItems,
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Name)
	require.Len(t, updated.Items, 2)
	assert.Equal(t, b.ID, updated.Items[0].PromptID)
	assert.Equal(t, a.ID, updated.Items[1].PromptID)
}

func TestUpdateFavoriteSetNameConflict(t *testing.T) {
	db := newTestDB(t)
	svc := NewFavoriteSetService(db.FavoriteSetRepo(), db.PromptRepo())

	user := createUser(t, db, "owner@example.com")

	_, err := svc.Create(user.ID, "First", "", nil)
	require.NoError(t, err)
	second, err := svc.Create(user.ID, "Second", "", nil)
	require.NoError(t, err)

	conflict := "First"
	_, err = svc.Update(user.ID, second.ID, UpdateFavoriteSetInput{Name: &conflict})
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))

	// Re-submitting the current name is a no-op, not a conflict.
	same := "Second"
	_, err = svc.Update(user.ID, second.ID, UpdateFavoriteSetInput{Name: &same})
	require.NoError(t, err)
}

func TestDeleteFavoriteSet(t *testing.T) {
	db := newTestDB(t)
	svc := NewFavoriteSetService(db.FavoriteSetRepo(), db.PromptRepo())

	user := createUser(t, db, "owner@example.com")
	a := createPrompt(t, db, "A", "body")

	set, err := svc.Create(user.ID, "Set", "", []uuid.UUID{a.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(user.ID, set.ID))

	_, err = svc.Get(user.ID, set.ID)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))

	// The referenced prompt is untouched.
	prompt, err := db.PromptRepo().FindByID(a.ID)
	require.NoError(t, err)
	assert.NotNil(t, prompt)
}

func TestListFavoriteSetsForUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewFavoriteSetService(db.FavoriteSetRepo(), db.PromptRepo())

	user := createUser(t, db, "owner@example.com")
	other := createUser(t, db, "other@example.com")

	_, err := svc.Create(user.ID, "Beta", "", nil)
	require.NoError(t, err)
	_, err = svc.Create(user.ID, "Alpha", "", nil)
	require.NoError(t, err)
	_, err = svc.Create(other.ID, "Theirs", "", nil)
	require.NoError(t, err)

	sets, err := svc.ListForUser(user.ID)
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, "Alpha", sets[0].Name)
	assert.Equal(t, "Beta", sets[1].Name)
}
