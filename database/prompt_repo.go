package database

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elimS2/prompt-manager/models"
)

// PromptFilters narrows and orders FindWithFilters results.
type PromptFilters struct {
	Search          string
	TagIDs          []uuid.UUID
	TagNames        []string
	TagMatchAll     bool
	IncludeInactive bool
	SortBy          string // "order", "created", "updated", "title"
	SortDesc        bool
	Page            int // 1-based; 0 disables pagination
	PerPage         int
}

type PromptRepo struct {
	db *gorm.DB
}

func NewPromptRepo(db *gorm.DB) *PromptRepo {
	return &PromptRepo{db}
}

// FindAll returns all prompts, optionally including soft-deleted ones,
// ordered by manual position.
func (r *PromptRepo) FindAll(includeInactive bool) ([]models.Prompt, error) {
	var prompts []models.Prompt
	query := r.db.Preload("Tags").Order("position ASC")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	err := query.Find(&prompts).Error
	return prompts, err
}

// FindByID returns a prompt by its ID, or nil when it does not exist.
func (r *PromptRepo) FindByID(id uuid.UUID) (*models.Prompt, error) {
	var prompt models.Prompt
	err := r.db.Preload("Tags").First(&prompt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &prompt, nil
}

// FindByIDs returns the prompts matching the given IDs. Order of the result
// is not guaranteed; callers must re-sort.
func (r *PromptRepo) FindByIDs(ids []uuid.UUID) ([]models.Prompt, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var prompts []models.Prompt
	err := r.db.Preload("Tags").Where("id IN ?", ids).Find(&prompts).Error
	return prompts, err
}

// Search matches query against title, content, and description.
func (r *PromptRepo) Search(query string, includeInactive bool) ([]models.Prompt, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	term := "%" + query + "%"
	q := r.db.Preload("Tags").
		Where("title LIKE ? OR content LIKE ? OR description LIKE ?", term, term, term)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var prompts []models.Prompt
	err := q.Find(&prompts).Error
	return prompts, err
}

// FindByTagIDs returns active prompts carrying any of the given tags, or all
// of them when matchAll is set.
func (r *PromptRepo) FindByTagIDs(tagIDs []uuid.UUID, matchAll bool) ([]models.Prompt, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}

	var prompts []models.Prompt
	base := r.db.Preload("Tags").
		Joins("JOIN prompt_tags ON prompt_tags.prompt_id = prompts.id").
		Where("prompt_tags.tag_id IN ?", tagIDs).
		Where("prompts.is_active = ?", true).
		Group("prompts.id")

	if matchAll {
		base = base.Having("COUNT(DISTINCT prompt_tags.tag_id) = ?", len(tagIDs))
	}

	err := base.Find(&prompts).Error
	return prompts, err
}

// FindWithFilters applies search, tag, activity, sorting, and pagination
// criteria in one query.
func (r *PromptRepo) FindWithFilters(f PromptFilters) ([]models.Prompt, int64, error) {
	query := r.db.Model(&models.Prompt{}).Preload("Tags")

	if !f.IncludeInactive {
		query = query.Where("prompts.is_active = ?", true)
	}
	if strings.TrimSpace(f.Search) != "" {
		term := "%" + f.Search + "%"
		query = query.Where("title LIKE ? OR content LIKE ? OR description LIKE ?", term, term, term)
	}
	if len(f.TagIDs) > 0 {
		query = query.
			Joins("JOIN prompt_tags ON prompt_tags.prompt_id = prompts.id").
			Where("prompt_tags.tag_id IN ?", f.TagIDs).
			Group("prompts.id")
		if f.TagMatchAll {
			query = query.Having("COUNT(DISTINCT prompt_tags.tag_id) = ?", len(f.TagIDs))
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(sortClause(f.SortBy, f.SortDesc))
	if f.Page > 0 && f.PerPage > 0 {
		query = query.Offset((f.Page - 1) * f.PerPage).Limit(f.PerPage)
	}

	var prompts []models.Prompt
	err := query.Find(&prompts).Error
	return prompts, total, err
}

func sortClause(sortBy string, desc bool) string {
	var col string
	switch sortBy {
	case "created":
		col = "created_at"
	case "updated":
		col = "updated_at"
	case "title":
		col = "title"
	default:
		col = "position"
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}

// Recent returns the most recently created prompts.
func (r *PromptRepo) Recent(limit int, includeInactive bool) ([]models.Prompt, error) {
	query := r.db.Preload("Tags").Order("created_at DESC").Limit(limit)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	var prompts []models.Prompt
	err := query.Find(&prompts).Error
	return prompts, err
}

// Add inserts a new prompt into the database
func (r *PromptRepo) Add(prompt *models.Prompt) error {
	return r.db.Create(prompt).Error
}

// Update saves all fields of an existing prompt
func (r *PromptRepo) Update(prompt *models.Prompt) error {
	return r.db.Save(prompt).Error
}

// UpdateFields applies a partial update to a prompt.
func (r *PromptRepo) UpdateFields(id uuid.UUID, fields map[string]any) error {
	return r.db.Model(&models.Prompt{}).Where("id = ?", id).Updates(fields).Error
}

// MarkInactive soft-deletes a prompt by clearing its active flag. Returns
// false when the prompt does not exist.
func (r *PromptRepo) MarkInactive(id uuid.UUID) (bool, error) {
	res := r.db.Model(&models.Prompt{}).Where("id = ?", id).Update("is_active", false)
	return res.RowsAffected > 0, res.Error
}

// Restore reactivates a soft-deleted prompt. Returns false when the prompt
// does not exist.
func (r *PromptRepo) Restore(id uuid.UUID) (bool, error) {
	res := r.db.Model(&models.Prompt{}).Where("id = ?", id).Update("is_active", true)
	return res.RowsAffected > 0, res.Error
}

// Remove hard-deletes a prompt. Attachment edges and tag associations go with
// it via ON DELETE CASCADE.
func (r *PromptRepo) Remove(id uuid.UUID) (bool, error) {
	res := r.db.Delete(&models.Prompt{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

// ReplaceTags swaps the prompt's tag associations for the given set.
func (r *PromptRepo) ReplaceTags(prompt *models.Prompt, tags []models.Tag) error {
	return r.db.Model(prompt).Association("Tags").Replace(tags)
}

// BulkReorder assigns position = index for each id in the supplied sequence,
// inside a single transaction. IDs not present in storage are skipped.
func (r *PromptRepo) BulkReorder(orderedIDs []uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			if err := tx.Model(&models.Prompt{}).
				Where("id = ?", id).
				Update("position", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// AvailableForAttachment returns active prompts that may still be attached to
// mainID: the main prompt itself, anything already attached to it, and any
// caller-supplied exclusions are filtered out. Ordered by title.
func (r *PromptRepo) AvailableForAttachment(mainID uuid.UUID, excludeIDs []uuid.UUID) ([]models.Prompt, error) {
	query := r.db.
		Where("is_active = ?", true).
		Where("id <> ?", mainID).
		Where("id NOT IN (?)", r.db.Model(&models.AttachedPrompt{}).
			Select("attached_prompt_id").
			Where("main_prompt_id = ?", mainID)).
		Order("title ASC")
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}

	var prompts []models.Prompt
	err := query.Find(&prompts).Error
	return prompts, err
}

// Count returns total and active prompt counts.
func (r *PromptRepo) Count() (total int64, active int64, err error) {
	if err = r.db.Model(&models.Prompt{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = r.db.Model(&models.Prompt{}).Where("is_active = ?", true).Count(&active).Error; err != nil {
		return 0, 0, err
	}
	return total, active, nil
}
