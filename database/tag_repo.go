package database

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elimS2/prompt-manager/models"
)

// TagUsage pairs a tag with the number of prompts carrying it.
type TagUsage struct {
	Tag        models.Tag `json:"tag"`
	UsageCount int        `json:"usage_count"`
}

type TagRepo struct {
	db *gorm.DB
}

func NewTagRepo(db *gorm.DB) *TagRepo {
	return &TagRepo{db}
}

// FindAll returns all tags ordered by name.
func (r *TagRepo) FindAll() ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.Order("name ASC").Find(&tags).Error
	return tags, err
}

// FindByID returns a tag by its ID, or nil when it does not exist.
func (r *TagRepo) FindByID(id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.First(&tag, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// FindByName returns a tag by its normalized name, or nil when absent.
func (r *TagRepo) FindByName(name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.First(&tag, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// Search matches tags by name substring.
func (r *TagRepo) Search(query string) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.Where("name LIKE ?", "%"+query+"%").Order("name ASC").Find(&tags).Error
	return tags, err
}

// Add inserts a new tag into the database
func (r *TagRepo) Add(tag *models.Tag) error {
	return r.db.Create(tag).Error
}

// Update saves all fields of an existing tag
func (r *TagRepo) Update(tag *models.Tag) error {
	return r.db.Save(tag).Error
}

// Delete hard-deletes a tag and its prompt associations. Returns false when
// the tag does not exist.
func (r *TagRepo) Delete(id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM prompt_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Tag{}, "id = ?", id)
		deleted = res.RowsAffected > 0
		return res.Error
	})
	return deleted, err
}

// Popular returns the most used tags with their usage counts.
func (r *TagRepo) Popular(limit int) ([]TagUsage, error) {
	type row struct {
		models.Tag
		UsageCount int
	}
	var rows []row
	err := r.db.Table("tags").
		Select("tags.*, COUNT(prompt_tags.prompt_id) AS usage_count").
		Joins("JOIN prompt_tags ON prompt_tags.tag_id = tags.id").
		Group("tags.id").
		Order("usage_count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	usages := make([]TagUsage, 0, len(rows))
	for _, row := range rows {
		usages = append(usages, TagUsage{Tag: row.Tag, UsageCount: row.UsageCount})
	}
	return usages, nil
}

// Unused returns tags not associated with any prompt.
func (r *TagRepo) Unused() ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.Where("id NOT IN (?)",
		r.db.Table("prompt_tags").Select("DISTINCT tag_id")).
		Find(&tags).Error
	return tags, err
}

// Merge moves every prompt association from the source tag to the target tag
// and deletes the source, in one transaction. Associations the target already
// has are not duplicated.
func (r *TagRepo) Merge(sourceID, targetID uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
			UPDATE prompt_tags SET tag_id = ?
			WHERE tag_id = ?
			  AND prompt_id NOT IN (SELECT prompt_id FROM (SELECT prompt_id FROM prompt_tags WHERE tag_id = ?) AS existing)`,
			targetID, sourceID, targetID).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM prompt_tags WHERE tag_id = ?", sourceID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Tag{}, "id = ?", sourceID).Error
	})
}
