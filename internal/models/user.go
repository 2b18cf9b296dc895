package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User owns collections, folders, community shares and a wishlist.
// Achievements holds the unlocked achievement ids as a JSON string array.
// The array is append-only: an id is never removed once present.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password     string         `gorm:"not null" json:"-"`
	Role         string         `gorm:"size:20;default:'user'" json:"role"`
	DisplayName  string         `gorm:"size:100" json:"display_name"`
	Badge        string         `gorm:"size:50" json:"badge"`
	Verified     bool           `gorm:"default:false" json:"verified"`
	Private      bool           `gorm:"default:false" json:"private"`
	Achievements datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"achievements"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}
