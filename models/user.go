package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User statuses. Lifecycle: created pending or active depending on the access
// policy at first login; pending -> active by admin approval; any -> disabled
// by admin action. Disabled users never auto-reactivate.
const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// User is keyed by the external Google identity (the OIDC `sub` claim).
type User struct {
	ID               uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	GoogleSub        string     `json:"google_sub" db:"google_sub" gorm:"type:varchar(255);not null;uniqueIndex"`
	Email            string     `json:"email" db:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	Name             string     `json:"name,omitempty" db:"name" gorm:"type:varchar(255)"`
	PictureURL       string     `json:"picture_url,omitempty" db:"picture_url" gorm:"type:varchar(512)"`
	Role             string     `json:"role" db:"role" gorm:"type:varchar(50);not null;default:'user'"`
	Status           string     `json:"status" db:"status" gorm:"type:varchar(20);not null;default:'active';index"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty" db:"approved_at"`
	ApprovedByUserID *uuid.UUID `json:"approved_by_user_id,omitempty" db:"approved_by_user_id" gorm:"type:uuid"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at" gorm:"not null"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at" gorm:"not null"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
