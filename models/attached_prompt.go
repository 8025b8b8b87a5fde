package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttachedPrompt is a directed edge in the attachment graph: the attached
// prompt is bundled under the main prompt. Each ordered pair is unique and
// the graph as a whole stays acyclic (enforced by the service layer).
type AttachedPrompt struct {
	ID               uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	MainPromptID     uuid.UUID `json:"main_prompt_id" db:"main_prompt_id" gorm:"type:uuid;not null;index;uniqueIndex:uq_attached_prompt_pair"`
	AttachedPromptID uuid.UUID `json:"attached_prompt_id" db:"attached_prompt_id" gorm:"type:uuid;not null;index;uniqueIndex:uq_attached_prompt_pair"`
	Position         int       `json:"order" db:"position" gorm:"column:position;not null;default:0"`
	UsageCount       int       `json:"usage_count" db:"usage_count" gorm:"not null;default:0;index"`
	CreatedAt        time.Time `json:"created_at" db:"created_at" gorm:"not null"`

	MainPrompt     *Prompt `json:"main_prompt,omitempty" gorm:"foreignKey:MainPromptID;constraint:OnDelete:CASCADE"`
	AttachedPrompt *Prompt `json:"attached_prompt,omitempty" gorm:"foreignKey:AttachedPromptID;constraint:OnDelete:CASCADE"`
}

func (a *AttachedPrompt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Validate returns human-readable violations for the edge's own invariants.
// Graph-level invariants (cycles, degree limit) live in the service layer.
func (a *AttachedPrompt) Validate() []string {
	var errs []string

	if a.MainPromptID == uuid.Nil {
		errs = append(errs, "main prompt ID is required")
	}
	if a.AttachedPromptID == uuid.Nil {
		errs = append(errs, "attached prompt ID is required")
	}
	if a.MainPromptID != uuid.Nil && a.MainPromptID == a.AttachedPromptID {
		errs = append(errs, "cannot attach prompt to itself")
	}
	if a.Position < 0 {
		errs = append(errs, "order must be non-negative")
	}

	return errs
}
