package database

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elimS2/prompt-manager/models"
)

type AllowlistRepo struct {
	db *gorm.DB
}

func NewAllowlistRepo(db *gorm.DB) *AllowlistRepo {
	return &AllowlistRepo{db}
}

// FindAll returns all allowlist entries ordered by email.
func (r *AllowlistRepo) FindAll() ([]models.EmailAllowlist, error) {
	var entries []models.EmailAllowlist
	err := r.db.Order("email ASC").Find(&entries).Error
	return entries, err
}

// FindByEmail returns an allowlist entry by email, or nil when absent.
func (r *AllowlistRepo) FindByEmail(email string) (*models.EmailAllowlist, error) {
	var entry models.EmailAllowlist
	err := r.db.First(&entry, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Add inserts a new allowlist entry into the database
func (r *AllowlistRepo) Add(entry *models.EmailAllowlist) error {
	return r.db.Create(entry).Error
}

// Delete removes an allowlist entry by id. Returns false when no such entry
// existed.
func (r *AllowlistRepo) Delete(id uuid.UUID) (bool, error) {
	res := r.db.Delete(&models.EmailAllowlist{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}
