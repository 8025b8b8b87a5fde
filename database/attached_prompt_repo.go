package database

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elimS2/prompt-manager/models"
)

// PopularCombination is one row of the usage ranking: an edge annotated with
// both endpoint titles.
type PopularCombination struct {
	MainPromptID     uuid.UUID `json:"main_prompt_id"`
	AttachedPromptID uuid.UUID `json:"attached_prompt_id"`
	UsageCount       int       `json:"usage_count"`
	MainTitle        string    `json:"main_title"`
	AttachedTitle    string    `json:"attached_title"`
}

type AttachedPromptRepo struct {
	db *gorm.DB
}

func NewAttachedPromptRepo(db *gorm.DB) *AttachedPromptRepo {
	return &AttachedPromptRepo{db}
}

// FindByMain returns all edges for a main prompt ordered by position.
func (r *AttachedPromptRepo) FindByMain(mainID uuid.UUID) ([]models.AttachedPrompt, error) {
	var edges []models.AttachedPrompt
	err := r.db.Preload("AttachedPrompt").
		Where("main_prompt_id = ?", mainID).
		Order("position ASC").
		Find(&edges).Error
	return edges, err
}

// FindByAttached returns all edges where the given prompt is the attached
// endpoint, i.e. the prompts that have it attached to them. This is the
// adjacency query the cycle guard walks.
func (r *AttachedPromptRepo) FindByAttached(attachedID uuid.UUID) ([]models.AttachedPrompt, error) {
	var edges []models.AttachedPrompt
	err := r.db.Where("attached_prompt_id = ?", attachedID).
		Order("position ASC").
		Find(&edges).Error
	return edges, err
}

// Find returns the edge for an ordered pair, or nil when absent.
func (r *AttachedPromptRepo) Find(mainID, attachedID uuid.UUID) (*models.AttachedPrompt, error) {
	var edge models.AttachedPrompt
	err := r.db.Where("main_prompt_id = ? AND attached_prompt_id = ?", mainID, attachedID).
		First(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &edge, nil
}

// Exists reports whether an edge already exists for the ordered pair.
func (r *AttachedPromptRepo) Exists(mainID, attachedID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.AttachedPrompt{}).
		Where("main_prompt_id = ? AND attached_prompt_id = ?", mainID, attachedID).
		Count(&count).Error
	return count > 0, err
}

// Count returns the out-degree of a main prompt.
func (r *AttachedPromptRepo) Count(mainID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.AttachedPrompt{}).
		Where("main_prompt_id = ?", mainID).
		Count(&count).Error
	return count, err
}

// MaxPosition returns the highest position among a main prompt's edges, or -1
// when it has none.
func (r *AttachedPromptRepo) MaxPosition(mainID uuid.UUID) (int, error) {
	var max *int
	err := r.db.Model(&models.AttachedPrompt{}).
		Where("main_prompt_id = ?", mainID).
		Select("MAX(position)").
		Scan(&max).Error
	if err != nil {
		return -1, err
	}
	if max == nil {
		return -1, nil
	}
	return *max, nil
}

// Add inserts a new edge. The unique constraint on the ordered pair turns a
// concurrent duplicate insert into a constraint violation.
func (r *AttachedPromptRepo) Add(edge *models.AttachedPrompt) error {
	return r.db.Create(edge).Error
}

// Delete removes the edge for an ordered pair. Returns false when no such
// edge existed.
func (r *AttachedPromptRepo) Delete(mainID, attachedID uuid.UUID) (bool, error) {
	res := r.db.Where("main_prompt_id = ? AND attached_prompt_id = ?", mainID, attachedID).
		Delete(&models.AttachedPrompt{})
	return res.RowsAffected > 0, res.Error
}

// Reorder applies the attached-id -> position map to the main prompt's edges
// in one transaction. Pairs referencing non-existent edges are skipped.
func (r *AttachedPromptRepo) Reorder(mainID uuid.UUID, positions map[uuid.UUID]int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for attachedID, position := range positions {
			if err := tx.Model(&models.AttachedPrompt{}).
				Where("main_prompt_id = ? AND attached_prompt_id = ?", mainID, attachedID).
				Update("position", position).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// IncrementUsage atomically bumps the edge's usage counter. Returns false
// when the edge does not exist.
func (r *AttachedPromptRepo) IncrementUsage(mainID, attachedID uuid.UUID) (bool, error) {
	res := r.db.Model(&models.AttachedPrompt{}).
		Where("main_prompt_id = ? AND attached_prompt_id = ?", mainID, attachedID).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1))
	return res.RowsAffected > 0, res.Error
}

// PopularCombinations returns the top edges by usage count, excluding unused
// ones, annotated with both endpoint titles.
func (r *AttachedPromptRepo) PopularCombinations(limit int) ([]PopularCombination, error) {
	var rows []PopularCombination
	err := r.db.Table("attached_prompts").
		Select("attached_prompts.main_prompt_id, attached_prompts.attached_prompt_id, attached_prompts.usage_count, main.title AS main_title, attached.title AS attached_title").
		Joins("JOIN prompts main ON main.id = attached_prompts.main_prompt_id").
		Joins("JOIN prompts attached ON attached.id = attached_prompts.attached_prompt_id").
		Where("attached_prompts.usage_count > 0").
		Order("attached_prompts.usage_count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
