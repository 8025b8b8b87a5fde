package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultTagColor is applied when a tag is created without an explicit color.
const DefaultTagColor = "#3B82F6"

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	invalidRunes  = regexp.MustCompile(`[^a-z0-9\-]`)
	hyphenRun     = regexp.MustCompile(`-+`)
	hexColor      = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// Tag categorizes prompts. Names are stored normalized and are globally unique.
type Tag struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Name      string    `json:"name" db:"name" gorm:"type:varchar(100);not null;uniqueIndex"`
	Color     string    `json:"color" db:"color" gorm:"type:varchar(7);not null;default:'#3B82F6'"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"not null"`

	Prompts []Prompt `json:"prompts,omitempty" gorm:"many2many:prompt_tags"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Color == "" {
		t.Color = DefaultTagColor
	}
	return nil
}

// NormalizeTagName lowercases the name, collapses whitespace runs into single
// hyphens, strips everything outside [a-z0-9-], collapses hyphen runs, and
// trims leading/trailing hyphens. Deterministic: equal inputs map to equal
// normalized names.
func NormalizeTagName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = whitespaceRun.ReplaceAllString(name, "-")
	name = invalidRunes.ReplaceAllString(name, "")
	name = hyphenRun.ReplaceAllString(name, "-")
	return strings.Trim(name, "-")
}

// IsValidHexColor reports whether color is a #RRGGBB hex string.
func IsValidHexColor(color string) bool {
	return hexColor.MatchString(color)
}

// Validate returns human-readable violations for the tag's own invariants.
func (t *Tag) Validate() []string {
	var errs []string

	if strings.TrimSpace(t.Name) == "" {
		errs = append(errs, "tag name is required")
	}
	if len(t.Name) > 100 {
		errs = append(errs, "tag name must be less than 100 characters")
	}
	if t.Color != "" && !IsValidHexColor(t.Color) {
		errs = append(errs, "color must be a valid hex color (e.g., #FF5733)")
	}

	return errs
}
