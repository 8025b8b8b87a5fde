package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Prompt represents a reusable text prompt with metadata
type Prompt struct {
	ID          uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Title       string     `json:"title" db:"title" gorm:"type:varchar(255);not null"`
	Content     string     `json:"content" db:"content" gorm:"type:text;not null"`
	Description string     `json:"description,omitempty" db:"description" gorm:"type:text"`
	IsActive    bool       `json:"is_active" db:"is_active" gorm:"not null;default:true"`
	Position    int        `json:"order" db:"position" gorm:"column:position;not null;default:0"`
	UserID      *uuid.UUID `json:"user_id,omitempty" db:"user_id" gorm:"type:uuid;index"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at" gorm:"not null"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at" gorm:"not null"`
	Tags        []Tag      `json:"tags,omitempty" gorm:"many2many:prompt_tags;constraint:OnDelete:CASCADE"`
}

func (p *Prompt) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Validate returns human-readable violations for the prompt's own invariants.
// Title and content must be non-empty after trimming.
func (p *Prompt) Validate() []string {
	var errs []string

	if strings.TrimSpace(p.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(p.Content) == "" {
		errs = append(errs, "content is required")
	}
	if len(p.Title) > 255 {
		errs = append(errs, "title must be less than 255 characters")
	}

	return errs
}
