package dto

import (
	"github.com/collectiq/collectiq-backend/internal/models"
	"github.com/google/uuid"
)

type ShareRequest struct {
	CollectionID uuid.UUID `json:"collection_id" validate:"required"`
}

type UnshareRequest struct {
	CollectionID uuid.UUID `json:"collection_id" validate:"required"`
}

type AddToAccountRequest struct {
	SourceID uuid.UUID `json:"source_id" validate:"required"`
}

// AuthorSummary is the public slice of the sharing user.
type AuthorSummary struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Badge       string    `json:"badge,omitempty"`
	Verified    bool      `json:"verified"`
}

type CommunityCollectionResponse struct {
	Collection models.CommunityCollection `json:"collection"`
	Items      []models.CommunityItem     `json:"items"`
	Author     AuthorSummary              `json:"author"`
}

type CommunityListResponse struct {
	Collections []models.CommunityCollection `json:"collections"`
	Total       int64                        `json:"total"`
}

type UnshareResponse struct {
	Success bool `json:"success"`
}

type AddToAccountResponse struct {
	Collection                  models.Collection `json:"collection"`
	Items                       []models.Item     `json:"items"`
	NewlyUnlockedAchievements   []string          `json:"newly_unlocked_achievements"`
}
