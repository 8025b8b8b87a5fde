package database

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elimS2/prompt-manager/models"
)

type FavoriteSetRepo struct {
	db *gorm.DB
}

func NewFavoriteSetRepo(db *gorm.DB) *FavoriteSetRepo {
	return &FavoriteSetRepo{db}
}

// FindByUser returns all sets owned by a user, items included, ordered by name.
func (r *FavoriteSetRepo) FindByUser(userID uuid.UUID) ([]models.FavoriteSet, error) {
	var sets []models.FavoriteSet
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Preload("Items.Prompt").
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&sets).Error
	return sets, err
}

// FindWithItems returns a set with its ordered items, scoped by owner.
// Returns nil when the set does not exist or is owned by someone else.
func (r *FavoriteSetRepo) FindWithItems(id, userID uuid.UUID) (*models.FavoriteSet, error) {
	var set models.FavoriteSet
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Preload("Items.Prompt").
		First(&set, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &set, nil
}

// ExistsByName reports whether the user already owns a set with the name,
// ignoring excludeID (pass uuid.Nil to check all).
func (r *FavoriteSetRepo) ExistsByName(userID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	query := r.db.Model(&models.FavoriteSet{}).
		Where("user_id = ? AND name = ?", userID, name)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

// Add inserts a new favorite set with its items.
func (r *FavoriteSetRepo) Add(set *models.FavoriteSet) error {
	return r.db.Create(set).Error
}

// UpdateFields applies a partial update to a set.
func (r *FavoriteSetRepo) UpdateFields(id uuid.UUID, fields map[string]any) error {
	return r.db.Model(&models.FavoriteSet{}).Where("id = ?", id).Updates(fields).Error
}

// ReplaceItems swaps the set's items for a new ordered list, in one
// transaction.
func (r *FavoriteSetRepo) ReplaceItems(setID uuid.UUID, promptIDs []uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("favorite_set_id = ?", setID).
			Delete(&models.FavoriteSetItem{}).Error; err != nil {
			return err
		}
		for i, pid := range promptIDs {
			item := models.FavoriteSetItem{
				FavoriteSetID: setID,
				PromptID:      pid,
				Position:      i,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a set and its items. Returns false when the set does not
// exist.
func (r *FavoriteSetRepo) Delete(id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("favorite_set_id = ?", id).
			Delete(&models.FavoriteSetItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.FavoriteSet{}, "id = ?", id)
		deleted = res.RowsAffected > 0
		return res.Error
	})
	return deleted, err
}
