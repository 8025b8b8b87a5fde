package database

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elimS2/prompt-manager/models"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db}
}

// FindByID returns a user by ID, or nil when absent.
func (r *UserRepo) FindByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByGoogleSub returns a user by external identity, or nil when absent.
func (r *UserRepo) FindByGoogleSub(sub string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "google_sub = ?", sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail returns a user by email, or nil when absent.
func (r *UserRepo) FindByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListByStatus returns users with the given status, oldest first.
func (r *UserRepo) ListByStatus(status string) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("status = ?", status).Order("created_at ASC").Find(&users).Error
	return users, err
}

// Add inserts a new user into the database
func (r *UserRepo) Add(user *models.User) error {
	return r.db.Create(user).Error
}

// Update saves all fields of an existing user
func (r *UserRepo) Update(user *models.User) error {
	return r.db.Save(user).Error
}
