package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/elimS2/prompt-manager/database"
	"github.com/elimS2/prompt-manager/models"
)

// newTestDB opens a fresh in-memory database with the full schema.
func newTestDB(t *testing.T) database.Database {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	return database.New(db)
}

func createPrompt(t *testing.T, db database.Database, title, content string) *models.Prompt {
	t.Helper()

	prompt := &models.Prompt{Title: title, Content: content, IsActive: true}
	require.NoError(t, db.PromptRepo().Add(prompt))
	return prompt
}

func createInactivePrompt(t *testing.T, db database.Database, title, content string) *models.Prompt {
	t.Helper()

	prompt := &models.Prompt{Title: title, Content: content, IsActive: false}
	require.NoError(t, db.PromptRepo().Add(prompt))
	return prompt
}
