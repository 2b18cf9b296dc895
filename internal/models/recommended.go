package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RecommendedCollection is an admin-curated catalog entry visible to all
// users. Adding it to an account clones it; nothing ever references it live.
type RecommendedCollection struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
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
}

func (c *RecommendedCollection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type RecommendedItem struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CollectionID uuid.UUID      `gorm:"type:uuid;not null;index:idx_recommended_items_coll;uniqueIndex:idx_recommended_items_coll_name" json:"collection_id"`
	Name         string         `gorm:"not null;size:200;uniqueIndex:idx_recommended_items_coll_name" json:"name"`
	Number       *int           `json:"number"`
	Notes        string         `gorm:"type:text" json:"notes"`
	Image        string         `gorm:"type:text" json:"image"`
	CustomFields datatypes.JSON `gorm:"type:jsonb" json:"custom_fields"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (i *RecommendedItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
