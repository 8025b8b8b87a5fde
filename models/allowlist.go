package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmailAllowlist stores pre-approved emails: users logging in with a listed
// email become active immediately instead of waiting for admin approval.
type EmailAllowlist struct {
	ID          uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Email       string    `json:"email" db:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	DefaultRole string    `json:"default_role" db:"default_role" gorm:"type:varchar(50);not null;default:'user'"`
	Note        string    `json:"note,omitempty" db:"note" gorm:"type:varchar(255)"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" gorm:"not null"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at" gorm:"not null"`
}

func (e *EmailAllowlist) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
