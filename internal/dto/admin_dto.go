package dto

import (
	"github.com/collectiq/collectiq-backend/internal/models"
	"github.com/google/uuid"
)

type ItemImageUpdate struct {
	ItemID uuid.UUID `json:"item_id" validate:"required"`
	Image  string    `json:"image" validate:"required"`
}

type BulkUpdateItemImagesRequest struct {
	CollectionID uuid.UUID         `json:"collection_id" validate:"required"`
	Updates      []ItemImageUpdate `json:"updates" validate:"required,min=1,dive"`
}

type BulkUpdateItemImagesResponse struct {
	Updated int           `json:"updated"`
	Items   []models.Item `json:"items"`
}

// CoverError records one collection whose cover generation or persistence
// failed during a bulk run.
type CoverError struct {
	Collection string `json:"collection"`
	Error      string `json:"error"`
}

type BulkGenerateCoversResponse struct {
	Generated int          `json:"generated"`
	Updated   int          `json:"updated"`
	Errors    []CoverError `json:"errors"`
}

type SetVerifiedRequest struct {
	Verified *bool `json:"verified" validate:"required"`
}

type SetBadgeRequest struct {
	Badge string `json:"badge" validate:"max=50"`
}

type CreateRecommendedRequest struct {
	Name        string            `json:"name" validate:"required,max=200"`
	Description string            `json:"description"`
	Category    string            `json:"category" validate:"max=100"`
	Template    string            `json:"template" validate:"max=100"`
	FieldSchema []models.FieldDef `json:"field_schema"`
	Tags        []string          `json:"tags"`
	CoverImage  string            `json:"cover_image"`
	CoverFit    string            `json:"cover_fit" validate:"omitempty,oneof=cover contain"`
}

type UpdateRecommendedRequest struct {
	Name        *string            `json:"name" validate:"omitempty,max=200"`
	Description *string            `json:"description"`
	Category    *string            `json:"category" validate:"omitempty,max=100"`
	Template    *string            `json:"template" validate:"omitempty,max=100"`
	FieldSchema *[]models.FieldDef `json:"field_schema"`
	Tags        *[]string          `json:"tags"`
	CoverImage  *string            `json:"cover_image"`
	CoverFit    *string            `json:"cover_fit" validate:"omitempty,oneof=cover contain"`
}

type RecommendedItemInput struct {
	Name         string            `json:"name" validate:"required,max=200"`
	Number       *int              `json:"number"`
	Notes        string            `json:"notes"`
	Image        string            `json:"image"`
	CustomFields map[string]string `json:"custom_fields"`
}

type BulkImportItemsRequest struct {
	Items []RecommendedItemInput `json:"items" validate:"required,min=1,dive"`
}

type BulkImportItemsResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

type RecommendedCollectionResponse struct {
	Collection models.RecommendedCollection `json:"collection"`
	Items      []models.RecommendedItem     `json:"items"`
}

type RecommendedListResponse struct {
	Collections []models.RecommendedCollection `json:"collections"`
	Total       int64                          `json:"total"`
}
