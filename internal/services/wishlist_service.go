package services

import (
	"context"
	"fmt"

	"github.com/collectiq/collectiq-backend/internal/apperr"
	"github.com/collectiq/collectiq-backend/internal/dto"
	"github.com/collectiq/collectiq-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WishlistService struct {
	db           *gorm.DB
	achievements *AchievementService
}

func NewWishlistService(db *gorm.DB, achievements *AchievementService) *WishlistService {
	return &WishlistService{db: db, achievements: achievements}
}

func (s *WishlistService) List(ctx context.Context, userID uuid.UUID) ([]models.WishlistEntry, error) {
	var entries []models.WishlistEntry
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	return entries, nil
}

func (s *WishlistService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateWishlistEntryRequest) (*models.WishlistEntry, []string, error) {
	entry := models.WishlistEntry{
		ID:     uuid.New(),
		UserID: userID,
		Name:   req.Name,
		Notes:  req.Notes,
		Link:   req.Link,
		Image:  req.Image,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, nil, fmt.Errorf("create wishlist entry: %w", err)
	}

	newly := s.achievements.CheckBestEffort(userID, "create_wishlist_entry")
	return &entry, newly, nil
}

func (s *WishlistService) Delete(ctx context.Context, userID, entryID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", entryID, userID).
		Delete(&models.WishlistEntry{})
	if result.Error != nil {
		return fmt.Errorf("delete wishlist entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("wishlist entry %s: %w", entryID, apperr.ErrNotFound)
	}
	return nil
}
