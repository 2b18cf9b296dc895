package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Collection is a user-owned named set of tracked items.
//
// FolderID is a weak reference: deleting a folder nulls it, it never cascades.
// SharedCommunityID points at the live community fork, if any; re-sharing
// overwrites the pointer without deleting the previous fork.
// SourceRecommendedID / SourceCommunityID record lineage only, never ownership.
type Collection struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name                string         `gorm:"not null;size:200" json:"name"`
	Description         string         `gorm:"type:text" json:"description"`
	Category            string         `gorm:"size:100" json:"category"`
	Template            string         `gorm:"size:100" json:"template"`
	FieldSchema         datatypes.JSON `gorm:"type:jsonb" json:"field_schema"`
	CoverImage          string         `gorm:"type:text" json:"cover_image"`
	CoverFit            string         `gorm:"size:20;default:'cover'" json:"cover_fit"`
	Tags                datatypes.JSON `gorm:"type:jsonb" json:"tags"`
	FolderID            *uuid.UUID     `gorm:"type:uuid;index" json:"folder_id"`
	SourceRecommendedID *uuid.UUID     `gorm:"type:uuid" json:"source_recommended_id"`
	SourceCommunityID   *uuid.UUID     `gorm:"type:uuid" json:"source_community_id"`
	SharedCommunityID   *uuid.UUID     `gorm:"type:uuid" json:"shared_community_id"`
	ShareToken          *string        `gorm:"size:64;uniqueIndex" json:"share_token"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	User                User           `gorm:"foreignKey:UserID" json:"-"`
}

func (c *Collection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Item belongs to exactly one collection. CustomFields is a JSON object keyed
// by the owning collection's field schema.
type Item struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CollectionID uuid.UUID      `gorm:"type:uuid;not null;index" json:"collection_id"`
	Name         string         `gorm:"not null;size:200" json:"name"`
	Number       *int           `json:"number"`
	Notes        string         `gorm:"type:text" json:"notes"`
	Image        string         `gorm:"type:text" json:"image"`
	Owned        bool           `gorm:"default:false" json:"owned"`
	CustomFields datatypes.JSON `gorm:"type:jsonb" json:"custom_fields"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
