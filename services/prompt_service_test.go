package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elimS2/prompt-manager/database"
	"github.com/elimS2/prompt-manager/errs"
)

func TestCreatePrompt(t *testing.T) {
	db := newTestDB(t)
	svc := NewPromptService(db.PromptRepo(), db.TagRepo())

	prompt, err := svc.CreatePrompt(CreatePromptInput{
		Title:       "  Code Review  ",
		Content:     " Review the following code. ",
		Description: "reusable reviewer",
		Tags:        []string{"Code Quality", "review"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Code Review", prompt.Title)
	assert.Equal(t, "Review the following code.", prompt.Content)
	assert.True(t, prompt.IsActive)
	require.Len(t, prompt.Tags, 2)
	assert.Equal(t, "code-quality", prompt.Tags[0].Name)
	assert.Equal(t, "review", prompt.Tags[1].Name)
}

func TestCreatePromptValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewPromptService(db.PromptRepo(), db.TagRepo())

	_, err := svc.CreatePrompt(CreatePromptInput{Title: "   ", Content: "body"})
	require.Error(t, err)
	assert.True(t, errs.IsBadRequest(err))

	_, err = svc.CreatePrompt(CreatePromptInput{Title: "Title", Content: "  "})
	require.Error(t, err)
	assert.True(t, errs.IsBadRequest(err))

	_, err = svc.CreatePrompt(CreatePromptInput{Title: strings.Repeat("x", 256), Content: "body"})
	require.Error(t, err)
	assert.True(t, errs.IsBadRequest(err))
}

func TestCreatePromptReusesExistingTags(t *testing.T) {
	db := newTestDB(t)
	svc := NewPromptService(db.PromptRepo(), db.TagRepo())

	first, err := svc.CreatePrompt(CreatePromptInput{Title: "One", Content: "body", Tags: []string{"shared"}})
	require.NoError(t, err)
	second, err := svc.CreatePrompt(CreatePromptInput{Title: "Two", Content: "body", Tags: []string{"  SHARED  "}})
	require.NoError(t, err)

	require.Len(t, first.Tags, 1)
	require.Len(t, second.Tags, 1)
	assert.Equal(t, first.Tags[0].ID, second.Tags[0].ID)
}

func TestUpdatePrompt(t *testing.T) {
	db := newTestDB(t)
	svc := NewPromptService(db.PromptRepo(), db.TagRepo())

	prompt, err := svc.CreatePrompt(CreatePromptInput{Title: "Old", Content: "old body", Tags: []string{"a"}})
	require.NoError(t, err)

	newTitle := "New"
	newTags := []string{"b", "c"}
	updated, err := svc.UpdatePrompt(prompt.ID, UpdatePromptInput{Title: &newTitle, Tags: &newTags})
	require.NoError(t, err)

	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "old body", updated.Content)
	require.Len(t, updated.Tags, 2)
}

func TestUpdatePromptValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewPromptService(db.PromptRepo(), db.TagRepo())

	prompt, err := svc.CreatePrompt(CreatePromptInput{Title: "Title", Content: "body"})
	require.NoError(t, err)

	empty := "   "
	_, err = svc.UpdatePrompt(prompt.ID, UpdatePromptInput{Title: &empty})
	require.Error(t, err)
	assert.True(t, errs.IsBadRequest(err))

	_, err = svc.UpdatePrompt(uuid.New(), UpdatePromptInput{Title: &empty})
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestDeleteAndRestorePrompt(t *testing.T) {
	db := newTestDB(t)
	svc := NewPromptService(db.PromptRepo(), db.TagRepo())

	prompt, err := svc.CreatePrompt(CreatePromptInput{Title: "Title", Content: "body"})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePrompt(prompt.ID, false))

	// Soft-deleted prompts are still fetchable directly.
	fetched, err := svc.GetPrompt(prompt.ID)
	require.NoError(t, err)
	assert.False(t, fetched.IsActive)

	require.NoError(t, svc.RestorePrompt(prompt.ID))
	fetched, err = svc.GetPrompt(prompt.ID)
	require.NoError(t, err)
	assert.True(t, fetched.IsActive)
}

func TestHardDeletePrompt(t *testing.T) {
	db := newTestDB(t)
	svc := NewPromptService(db.PromptRepo(), db.TagRepo())

	prompt, err := svc.CreatePrompt(CreatePromptInput{Title: "Title", Content: "body"})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePrompt(prompt.ID, true))

	_, err = svc.GetPrompt(prompt.ID)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))

	err = svc.DeletePrompt(prompt.ID, true)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestDuplicatePrompt(t *testing.T) {
	db := newTestDB(t)
	svc := NewPromptService(db.PromptRepo(), db.TagRepo())

	original, err := svc.CreatePrompt(CreatePromptInput{
		Title:       "Original",
		Content:     "body",
		Description: "desc",
		Tags:        []string{"keep"},
	})
	require.NoError(t, err)

	copy, err := svc.DuplicatePrompt(original.ID, "")
	require.NoError(t, err)

	assert.Equal(t, "Copy of Original", copy.Title)
	assert.Equal(t, original.Content, copy.Content)
	assert.Equal(t, original.Description, copy.Description)
	assert.True(t, copy.IsActive)
	require.Len(t, copy.Tags, 1)
	assert.Equal(t, "keep", copy.Tags[0].Name)
	assert.NotEqual(t, original.ID, copy.ID)

	named, err := svc.DuplicatePrompt(original.ID, "Named Copy")
	require.NoError(t, err)
	assert.Equal(t, "Named Copy", named.Title)
}

func TestBulkReorderIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewPromptService(db.PromptRepo(), db.TagRepo())

	a := createPrompt(t, db, "A", "body")
	b := createPrompt(t, db, "B", "body")
	c := createPrompt(t, db, "C", "body")

	order := []uuid.UUID{c.ID, a.ID, b.ID}
	require.NoError(t, svc.BulkReorder(order))
	require.NoError(t, svc.BulkReorder(order))

	prompts, err := db.PromptRepo().FindAll(false)
	require.NoError(t, err)
	require.Len(t, prompts, 3)
	assert.Equal(t, c.ID, prompts[0].ID)
	assert.Equal(t, a.ID, prompts[1].ID)
	assert.Equal(t, b.ID, prompts[2].ID)
}

func TestBulkReorderSkipsUnknownIDs(t *testing.T) {
	db := newTestDB(t)
	svc := NewPromptService(db.PromptRepo(), db.TagRepo())

	a := createPrompt(t, db, "A", "body")

	require.NoError(t, svc.BulkReorder([]uuid.UUID{uuid.New(), a.ID}))

	prompts, err := db.PromptRepo().FindAll(false)
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Equal(t, 1, prompts[0].Position)
}

func TestBulkReorderRejectsBadInput(t *testing.T) {
	db := newTestDB(t)
	svc := NewPromptService(db.PromptRepo(), db.TagRepo())

	a := createPrompt(t, db, "A", "body")

	err := svc.BulkReorder(nil)
	require.Error(t, err)
	assert.True(t, errs.IsBadRequest(err))

	err = svc.BulkReorder([]uuid.UUID{a.ID, a.ID})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrDuplicatePromptIDs)
}

func TestSearchPrompts(t *testing.T) {
	db := newTestDB(t)
	svc := NewPromptService(db.PromptRepo(), db.TagRepo())

	createPrompt(t, db, "Refactoring guide", "how to refactor")
	createPrompt(t, db, "Testing guide", "how to test")
	createInactivePrompt(t, db, "Old refactor notes", "stale")

	found, err := svc.SearchPrompts("refactor", false)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Refactoring guide", found[0].Title)

	found, err = svc.SearchPrompts("refactor", true)
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestListPromptsWithFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewPromptService(db.PromptRepo(), db.TagRepo())

	_, err := svc.CreatePrompt(CreatePromptInput{Title: "Go tips", Content: "body", Tags: []string{"golang"}})
	require.NoError(t, err)
	_, err = svc.CreatePrompt(CreatePromptInput{Title: "SQL tips", Content: "body", Tags: []string{"sql"}})
	require.NoError(t, err)

	prompts, total, err := svc.ListPrompts(database.PromptFilters{TagNames: []string{"golang"}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, prompts, 1)
	assert.Equal(t, "Go tips", prompts[0].Title)
}

func TestGetPromptsByTags(t *testing.T) {
	db := newTestDB(t)
	svc := NewPromptService(db.PromptRepo(), db.TagRepo())

	_, err := svc.CreatePrompt(CreatePromptInput{Title: "Go tips", Content: "body", Tags: []string{"golang"}})
	require.NoError(t, err)
	both, err := svc.CreatePrompt(CreatePromptInput{Title: "Go SQL tips", Content: "body", Tags: []string{"golang", "sql"}})
	require.NoError(t, err)
	_, err = svc.CreatePrompt(CreatePromptInput{Title: "SQL tips", Content: "body", Tags: []string{"sql"}})
	require.NoError(t, err)

	var golangID, sqlID uuid.UUID
	for _, tag := range both.Tags {
		switch tag.Name {
		case "golang":
			golangID = tag.ID
		case "sql":
			sqlID = tag.ID
		}
	}
	require.NotEqual(t, uuid.Nil, golangID)
	require.NotEqual(t, uuid.Nil, sqlID)

	prompts, err := svc.GetPromptsByTags([]uuid.UUID{golangID, sqlID}, false)
	require.NoError(t, err)
	assert.Len(t, prompts, 3)

	prompts, err = svc.GetPromptsByTags([]uuid.UUID{golangID, sqlID}, true)
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Equal(t, "Go SQL tips", prompts[0].Title)

	_, err = svc.GetPromptsByTags(nil, false)
	require.Error(t, err)
	assert.True(t, errs.IsBadRequest(err))
}

func TestGetStatistics(t *testing.T) {
	db := newTestDB(t)
	svc := NewPromptService(db.PromptRepo(), db.TagRepo())

	createPrompt(t, db, "A", "body")
	createPrompt(t, db, "B", "body")
	createInactivePrompt(t, db, "C", "body")

	stats, err := svc.GetStatistics()
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalPrompts)
	assert.EqualValues(t, 2, stats.ActivePrompts)
	assert.EqualValues(t, 1, stats.InactivePrompts)
	assert.Len(t, stats.RecentPrompts, 2)
}
