package dto

import (
	"github.com/collectiq/collectiq-backend/internal/models"
	"github.com/google/uuid"
)

type CreateCollectionRequest struct {
	Name        string            `json:"name" validate:"required,max=200"`
	Description string            `json:"description"`
	Category    string            `json:"category" validate:"max=100"`
	Template    string            `json:"template" validate:"max=100"`
	FieldSchema []models.FieldDef `json:"field_schema"`
	Tags        []string          `json:"tags"`
	CoverImage  string            `json:"cover_image"`
	CoverFit    string            `json:"cover_fit" validate:"omitempty,oneof=cover contain"`
	FolderID    *uuid.UUID        `json:"folder_id"`
}

type UpdateCollectionRequest struct {
	Name        *string            `json:"name" validate:"omitempty,max=200"`
	Description *string            `json:"description"`
	Category    *string            `json:"category" validate:"omitempty,max=100"`
	Template    *string            `json:"template" validate:"omitempty,max=100"`
	FieldSchema *[]models.FieldDef `json:"field_schema"`
	Tags        *[]string          `json:"tags"`
	CoverImage  *string            `json:"cover_image"`
	CoverFit    *string            `json:"cover_fit" validate:"omitempty,oneof=cover contain"`
	FolderID    *uuid.UUID         `json:"folder_id"`
}

type CreateItemRequest struct {
	Name         string            `json:"name" validate:"required,max=200"`
	Number       *int              `json:"number"`
	Notes        string            `json:"notes"`
	Image        string            `json:"image"`
	Owned        bool              `json:"owned"`
	CustomFields map[string]string `json:"custom_fields"`
}

type UpdateItemRequest struct {
	Name         *string            `json:"name" validate:"omitempty,max=200"`
	Number       *int               `json:"number"`
	Notes        *string            `json:"notes"`
	Image        *string            `json:"image"`
	Owned        *bool              `json:"owned"`
	CustomFields *map[string]string `json:"custom_fields"`
}

type CollectionResponse struct {
	Collection models.Collection `json:"collection"`
	Items      []models.Item     `json:"items"`
	OwnedCount int64             `json:"owned_count"`
}

type CollectionListResponse struct {
	Collections []models.Collection `json:"collections"`
	Total       int64               `json:"total"`
}

type ShareTokenResponse struct {
	ShareToken string `json:"share_token"`
}

type CreateFolderRequest struct {
	Name     string     `json:"name" validate:"required,max=100"`
	ParentID *uuid.UUID `json:"parent_id"`
}

type UpdateFolderRequest struct {
	Name     *string    `json:"name" validate:"omitempty,max=100"`
	ParentID *uuid.UUID `json:"parent_id"`
}

type CreateWishlistEntryRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Notes string `json:"notes"`
	Link  string `json:"link"`
	Image string `json:"image"`
}
