package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FavoriteSet is a user-owned, named, ordered collection of prompt references.
// Names are unique per user.
type FavoriteSet struct {
	ID          uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	UserID      uuid.UUID `json:"user_id" db:"user_id" gorm:"type:uuid;not null;index;uniqueIndex:uq_favorite_set_user_name"`
	Name        string    `json:"name" db:"name" gorm:"type:varchar(150);not null;uniqueIndex:uq_favorite_set_user_name"`
	Description string    `json:"description,omitempty" db:"description" gorm:"type:text"`
	IsActive    bool      `json:"is_active" db:"is_active" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" gorm:"not null"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at" gorm:"not null"`

	Items []FavoriteSetItem `json:"items,omitempty" gorm:"foreignKey:FavoriteSetID;constraint:OnDelete:CASCADE"`
}

func (f *FavoriteSet) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// FavoriteSetItem references one prompt inside a set and preserves its
// position. A prompt appears at most once per set.
type FavoriteSetItem struct {
	ID            uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	FavoriteSetID uuid.UUID `json:"favorite_set_id" db:"favorite_set_id" gorm:"type:uuid;not null;index;uniqueIndex:uq_favorite_item_prompt"`
	PromptID      uuid.UUID `json:"prompt_id" db:"prompt_id" gorm:"type:uuid;not null;index;uniqueIndex:uq_favorite_item_prompt"`
	Position      int       `json:"position" db:"position" gorm:"not null;default:0"`
	CreatedAt     time.Time `json:"created_at" db:"created_at" gorm:"not null"`

	Prompt *Prompt `json:"prompt,omitempty" gorm:"foreignKey:PromptID;constraint:OnDelete:CASCADE"`
}

func (i *FavoriteSetItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
