package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elimS2/prompt-manager/errs"
)

func TestMergePromptsSimple(t *testing.T) {
	db := newTestDB(t)
	svc := NewMergeService(db.PromptRepo())

	a := createPrompt(t, db, "Alpha", "first body")
	b := createPrompt(t, db, "Beta", "second body")

	result, err := svc.MergePrompts([]uuid.UUID{a.ID, b.ID}, StrategySimple, nil)
	require.NoError(t, err)

	assert.Equal(t, "## Alpha\n\nfirst body\n\n## Beta\n\nsecond body", result.MergedContent)
	assert.Equal(t, StrategySimple, result.Metadata.Strategy)
	assert.Equal(t, 2, result.Metadata.PromptCount)
	assert.Equal(t, []string{"Alpha", "Beta"}, result.Metadata.PromptTitles)
}

func TestMergePromptsSimpleWithoutTitles(t *testing.T) {
	db := newTestDB(t)
	svc := NewMergeService(db.PromptRepo())

	contents := []string{"one", "two", "three"}
	ids := make([]uuid.UUID, 0, len(contents))
	for i, content := range contents {
		p := createPrompt(t, db, fmt.Sprintf("P%d", i), content)
		ids = append(ids, p.ID)
	}

	result, err := svc.MergePrompts(ids, StrategySimple, MergeOptions{"include_title": false})
	require.NoError(t, err)
	assert.Equal(t, strings.Join(contents, "\n\n"), result.MergedContent)
}

func TestMergePromptsPreservesInputOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewMergeService(db.PromptRepo())

	a := createPrompt(t, db, "A", "body a")
	b := createPrompt(t, db, "B", "body b")
	c := createPrompt(t, db, "C", "body c")

	// Request in an order unrelated to creation order.
	result, err := svc.MergePrompts([]uuid.UUID{c.ID, a.ID, b.ID}, StrategySimple, MergeOptions{"include_title": false})
	require.NoError(t, err)
	assert.Equal(t, "body c\n\nbody a\n\nbody b", result.MergedContent)
	assert.Equal(t, []string{"C", "A", "B"}, result.Metadata.PromptTitles)
}

func TestMergePromptsSeparator(t *testing.T) {
	db := newTestDB(t)
	svc := NewMergeService(db.PromptRepo())

	a := createPrompt(t, db, "A", "body a")
	b := createPrompt(t, db, "B", "body b")

	result, err := svc.MergePrompts([]uuid.UUID{a.ID, b.ID}, StrategySeparator, MergeOptions{"include_title": false})
	require.NoError(t, err)
	assert.Equal(t, "body a\n\n---\n\nbody b", result.MergedContent)

	result, err = svc.MergePrompts([]uuid.UUID{a.ID, b.ID}, StrategySeparator, MergeOptions{
		"include_title": false,
		"separator":     "\n===\n",
	})
	require.NoError(t, err)
	assert.Equal(t, "body a\n===\nbody b", result.MergedContent)
}

func TestMergePromptsSeparatorWithDescription(t *testing.T) {
	db := newTestDB(t)
	svc := NewMergeService(db.PromptRepo())

	a := createPrompt(t, db, "A", "body a")
	b := createPrompt(t, db, "B", "body b")
	b.Description = "about b"
	require.NoError(t, db.PromptRepo().Update(b))

	result, err := svc.MergePrompts([]uuid.UUID{a.ID, b.ID}, StrategySeparator, MergeOptions{
		"include_description": true,
	})
	require.NoError(t, err)
	assert.Equal(t, "## A\n\nbody a\n\n---\n\n## B\n\n*about b*\n\nbody b", result.MergedContent)
}

func TestMergePromptsHonorsExplicitEmptyOptions(t *testing.T) {
	db := newTestDB(t)
	svc := NewMergeService(db.PromptRepo())

	a := createPrompt(t, db, "A", "body a")
	b := createPrompt(t, db, "B", "body b")

	// An explicit empty separator joins the blocks directly.
	result, err := svc.MergePrompts([]uuid.UUID{a.ID, b.ID}, StrategySeparator, MergeOptions{
		"include_title": false,
		"separator":     "",
	})
	require.NoError(t, err)
	assert.Equal(t, "body abody b", result.MergedContent)

	result, err = svc.MergePrompts([]uuid.UUID{a.ID, b.ID}, StrategyBulleted, MergeOptions{
		"include_title": false,
		"bullet":        "",
	})
	require.NoError(t, err)
	assert.Equal(t, "body a\n\nbody b", result.MergedContent)
}

func TestMergePromptsNumbered(t *testing.T) {
	db := newTestDB(t)
	svc := NewMergeService(db.PromptRepo())

	a := createPrompt(t, db, "A", "body a")
	b := createPrompt(t, db, "B", "body b")

	result, err := svc.MergePrompts([]uuid.UUID{a.ID, b.ID}, StrategyNumbered, nil)
	require.NoError(t, err)
	assert.Equal(t, "1. **A**\n\nbody a\n\n2. **B**\n\nbody b", result.MergedContent)

	result, err = svc.MergePrompts([]uuid.UUID{a.ID, b.ID}, StrategyNumbered, MergeOptions{"include_title": false})
	require.NoError(t, err)
	assert.Equal(t, "1. body a\n\n2. body b", result.MergedContent)
}

func TestMergePromptsBulleted(t *testing.T) {
	db := newTestDB(t)
	svc := NewMergeService(db.PromptRepo())

	a := createPrompt(t, db, "A", "line one\nline two")
	b := createPrompt(t, db, "B", "body b")

	result, err := svc.MergePrompts([]uuid.UUID{a.ID, b.ID}, StrategyBulleted, MergeOptions{"include_title": false})
	require.NoError(t, err)
	assert.Equal(t, "• line one\n  line two\n\n• body b", result.MergedContent)

	result, err = svc.MergePrompts([]uuid.UUID{a.ID, b.ID}, StrategyBulleted, nil)
	require.NoError(t, err)
	assert.Equal(t, "• **A**\n  line one\n  line two\n\n• **B**\n  body b", result.MergedContent)
}

func TestMergePromptsTemplate(t *testing.T) {
	db := newTestDB(t)
	svc := NewMergeService(db.PromptRepo())

	a := createPrompt(t, db, "A", "body a")
	b := createPrompt(t, db, "B", "body b")

	result, err := svc.MergePrompts([]uuid.UUID{a.ID, b.ID}, StrategyTemplate, MergeOptions{
		"template": "{count}:{title_1}",
	})
	require.NoError(t, err)
	assert.Equal(t, "2:A", result.MergedContent)

	result, err = svc.MergePrompts([]uuid.UUID{a.ID, b.ID}, StrategyTemplate, MergeOptions{
		"template": "{titles} -> {content_2}",
	})
	require.NoError(t, err)
	assert.Equal(t, "A, B -> body b", result.MergedContent)
}

func TestMergePromptsTemplateDoesNotReexpand(t *testing.T) {
	db := newTestDB(t)
	svc := NewMergeService(db.PromptRepo())

	// A substituted value containing placeholder text must stay literal.
	a := createPrompt(t, db, "{count}", "body a")
	b := createPrompt(t, db, "B", "body b")

	result, err := svc.MergePrompts([]uuid.UUID{a.ID, b.ID}, StrategyTemplate, MergeOptions{
		"template": "{title_1}|{count}",
	})
	require.NoError(t, err)
	assert.Equal(t, "{count}|2", result.MergedContent)
}

func TestMergePromptsTemplateRequiresTemplate(t *testing.T) {
	db := newTestDB(t)
	svc := NewMergeService(db.PromptRepo())

	a := createPrompt(t, db, "A", "body a")
	b := createPrompt(t, db, "B", "body b")

	_, err := svc.MergePrompts([]uuid.UUID{a.ID, b.ID}, StrategyTemplate, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrEmptyTemplate)
}

func TestMergePromptsUnknownStrategy(t *testing.T) {
	db := newTestDB(t)
	svc := NewMergeService(db.PromptRepo())

	a := createPrompt(t, db, "A", "body a")
	b := createPrompt(t, db, "B", "body b")

	_, err := svc.MergePrompts([]uuid.UUID{a.ID, b.ID}, "zigzag", nil)
	require.Error(t, err)
	assert.True(t, errs.IsUnsupportedStrategy(err))
}

func TestMergePromptsRequiresTwoIDs(t *testing.T) {
	db := newTestDB(t)
	svc := NewMergeService(db.PromptRepo())

	a := createPrompt(t, db, "A", "body a")

	_, err := svc.MergePrompts([]uuid.UUID{a.ID}, StrategySimple, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrTooFewPrompts)

	_, err = svc.MergePrompts(nil, StrategySimple, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrTooFewPrompts)
}

func TestMergePromptsRejectsDuplicates(t *testing.T) {
	db := newTestDB(t)
	svc := NewMergeService(db.PromptRepo())

	a := createPrompt(t, db, "A", "body a")

	_, err := svc.MergePrompts([]uuid.UUID{a.ID, a.ID}, StrategySimple, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrDuplicatePromptIDs)
}

func TestMergePromptsMissingID(t *testing.T) {
	db := newTestDB(t)
	svc := NewMergeService(db.PromptRepo())

	a := createPrompt(t, db, "A", "body a")
	missing := uuid.New()

	_, err := svc.MergePrompts([]uuid.UUID{a.ID, missing}, StrategySimple, nil)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
	assert.Contains(t, err.Error(), missing.String())
}

func TestValidateMerge(t *testing.T) {
	db := newTestDB(t)
	svc := NewMergeService(db.PromptRepo())

	a := createPrompt(t, db, "A", "body a")
	b := createPrompt(t, db, "B", "body b")

	v, err := svc.ValidateMerge([]uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Empty(t, v.Errors)
	assert.Empty(t, v.Warnings)
}

func TestValidateMergeTooFew(t *testing.T) {
	db := newTestDB(t)
	svc := NewMergeService(db.PromptRepo())

	a := createPrompt(t, db, "A", "body a")

	v, err := svc.ValidateMerge([]uuid.UUID{a.ID})
	require.NoError(t, err)
	assert.False(t, v.Valid)
	require.Len(t, v.Errors, 1)
	assert.Contains(t, v.Errors[0], "at least 2 prompts")

	v, err = svc.ValidateMerge(nil)
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Contains(t, v.Errors[0], "at least 2 prompts")
}

func TestValidateMergeWarnsAboutInactive(t *testing.T) {
	db := newTestDB(t)
	svc := NewMergeService(db.PromptRepo())

	a := createPrompt(t, db, "A", "body a")
	b := createInactivePrompt(t, db, "B", "body b")

	v, err := svc.ValidateMerge([]uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	assert.True(t, v.Valid)
	require.Len(t, v.Warnings, 1)
	assert.Contains(t, v.Warnings[0], "1 inactive prompt")
}

func TestValidateMergeWarnsAboutSize(t *testing.T) {
	db := newTestDB(t)
	svc := NewMergeService(db.PromptRepo())

	big := strings.Repeat("x", mergeSizeWarning/2+1)
	a := createPrompt(t, db, "A", big)
	b := createPrompt(t, db, "B", big)

	v, err := svc.ValidateMerge([]uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	assert.True(t, v.Valid)
	require.Len(t, v.Warnings, 1)
	assert.Contains(t, v.Warnings[0], "large merged content")
}

func TestMergeHistory(t *testing.T) {
	db := newTestDB(t)
	svc := NewMergeService(db.PromptRepo())

	a := createPrompt(t, db, "A", "body a")
	b := createPrompt(t, db, "B", "body b")
	c := createPrompt(t, db, "C", "body c")

	_, err := svc.MergePrompts([]uuid.UUID{a.ID, b.ID}, StrategySimple, nil)
	require.NoError(t, err)
	_, err = svc.MergePrompts([]uuid.UUID{b.ID, c.ID}, StrategyNumbered, nil)
	require.NoError(t, err)
	_, err = svc.MergePrompts([]uuid.UUID{a.ID, c.ID}, StrategyBulleted, nil)
	require.NoError(t, err)

	history := svc.GetMergeHistory(0)
	require.Len(t, history, 3)
	// Newest first.
	assert.Equal(t, StrategyBulleted, history[0].Metadata.Strategy)
	assert.Equal(t, StrategyNumbered, history[1].Metadata.Strategy)
	assert.Equal(t, StrategySimple, history[2].Metadata.Strategy)

	limited := svc.GetMergeHistory(2)
	require.Len(t, limited, 2)
	assert.Equal(t, StrategyBulleted, limited[0].Metadata.Strategy)
}

func TestMergeHistoryCapped(t *testing.T) {
	db := newTestDB(t)
	svc := NewMergeService(db.PromptRepo())

	a := createPrompt(t, db, "A", "body a")
	b := createPrompt(t, db, "B", "body b")

	for i := 0; i < mergeHistoryCap+5; i++ {
		_, err := svc.MergePrompts([]uuid.UUID{a.ID, b.ID}, StrategySimple, nil)
		require.NoError(t, err)
	}

	history := svc.GetMergeHistory(0)
	assert.Len(t, history, mergeHistoryCap)
}
