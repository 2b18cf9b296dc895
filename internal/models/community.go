package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CommunityCollection is an independently-owned structural copy of a
// collection shared to the marketplace. Edits to the source collection never
// propagate here; the copy is severed at share time.
type CommunityCollection struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string         `gorm:"not null;size:200" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Category    string         `gorm:"size:100" json:"category"`
	Template    string         `gorm:"size:100" json:"template"`
	FieldSchema datatypes.JSON `gorm:"type:jsonb" json:"field_schema"`
	CoverImage  string         `gorm:"type:text" json:"cover_image"`
	CoverFit    string         `gorm:"size:20;default:'cover'" json:"cover_fit"`
	Tags        datatypes.JSON `gorm:"type:jsonb" json:"tags"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	User        User           `gorm:"foreignKey:UserID" json:"-"`
}

func (c *CommunityCollection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CommunityItem struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CollectionID uuid.UUID      `gorm:"type:uuid;not null;index" json:"collection_id"`
	Name         string         `gorm:"not null;size:200" json:"name"`
	Number       *int           `json:"number"`
	Notes        string         `gorm:"type:text" json:"notes"`
	Image        string         `gorm:"type:text" json:"image"`
	CustomFields datatypes.JSON `gorm:"type:jsonb" json:"custom_fields"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (i *CommunityItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
