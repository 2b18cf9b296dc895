package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/collectiq/collectiq-backend/internal/achievements"
	"github.com/collectiq/collectiq-backend/internal/apperr"
	"github.com/collectiq/collectiq-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AchievementService loads user statistics, runs the pure rule engine and
// persists newly unlocked achievement ids. Unlocks are monotonic: the stored
// set only ever grows.
type AchievementService struct {
	db *gorm.DB
}

func NewAchievementService(db *gorm.DB) *AchievementService {
	return &AchievementService{db: db}
}

// CollectStats aggregates the statistics the rule engine evaluates.
func (s *AchievementService) CollectStats(userID uuid.UUID) (achievements.Stats, error) {
	var stats achievements.Stats

	if err := s.db.Model(&models.Collection{}).
		Where("user_id = ?", userID).
		Count(&stats.TotalCollections).Error; err != nil {
		return stats, fmt.Errorf("count collections: %w", err)
	}

	if err := s.db.Model(&models.Item{}).
		Joins("JOIN collections ON collections.id = items.collection_id").
		Where("collections.user_id = ?", userID).
		Count(&stats.TotalItems).Error; err != nil {
		return stats, fmt.Errorf("count items: %w", err)
	}

	if err := s.db.Model(&models.Item{}).
		Joins("JOIN collections ON collections.id = items.collection_id").
		Where("collections.user_id = ? AND items.owned = ?", userID, true).
		Count(&stats.OwnedItems).Error; err != nil {
		return stats, fmt.Errorf("count owned items: %w", err)
	}

	// A collection is complete when it has items and none of them is unowned.
	if err := s.db.Model(&models.Collection{}).
		Where("user_id = ?", userID).
		Where("EXISTS (SELECT 1 FROM items WHERE items.collection_id = collections.id)").
		Where("NOT EXISTS (SELECT 1 FROM items WHERE items.collection_id = collections.id AND items.owned = ?)", false).
		Count(&stats.CompletedCollections).Error; err != nil {
		return stats, fmt.Errorf("count completed collections: %w", err)
	}

	if err := s.db.Model(&models.CommunityCollection{}).
		Where("user_id = ?", userID).
		Count(&stats.CommunityShares).Error; err != nil {
		return stats, fmt.Errorf("count community shares: %w", err)
	}

	if err := s.db.Model(&models.Folder{}).
		Where("user_id = ?", userID).
		Count(&stats.Folders).Error; err != nil {
		return stats, fmt.Errorf("count folders: %w", err)
	}

	if err := s.db.Model(&models.WishlistEntry{}).
		Where("user_id = ?", userID).
		Count(&stats.WishlistEntries).Error; err != nil {
		return stats, fmt.Errorf("count wishlist entries: %w", err)
	}

	// Tag and schema columns are JSON; inspect them in Go rather than leaning
	// on dialect-specific jsonb operators.
	var colls []models.Collection
	if err := s.db.Select("id", "tags", "field_schema").
		Where("user_id = ?", userID).
		Find(&colls).Error; err != nil {
		return stats, fmt.Errorf("load collections for stats: %w", err)
	}
	for _, c := range colls {
		if models.NonEmptyJSONArray(c.Tags) {
			stats.TaggedCollections++
		}
		if models.NonEmptyJSONArray(c.FieldSchema) {
			stats.CustomSchemaCollections++
		}
	}

	return stats, nil
}

// ApplyUnlocks re-evaluates the user's achievements and persists any newly
// unlocked ids in one atomic write. Calling it again without a state change
// returns an empty list. Stored ids are never removed, even when stats
// regress below a threshold.
func (s *AchievementService) ApplyUnlocks(userID uuid.UUID) ([]string, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	stats, err := s.CollectStats(userID)
	if err != nil {
		return nil, err
	}

	should := achievements.Evaluate(stats)

	already, err := models.DecodeAchievements(user.Achievements)
	if err != nil {
		return nil, fmt.Errorf("decode achievement set: %w", err)
	}

	newly := achievements.Diff(should, already)
	if len(newly) == 0 {
		return []string{}, nil
	}

	merged := append(already, newly...)
	encoded, err := models.EncodeAchievements(merged)
	if err != nil {
		return nil, fmt.Errorf("encode achievement set: %w", err)
	}

	if err := s.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("achievements", encoded).Error; err != nil {
		return nil, fmt.Errorf("persist achievement set: %w", err)
	}

	return newly, nil
}

// CheckBestEffort runs ApplyUnlocks as a side effect of another action.
// Failures are logged and converted to an empty list; the primary action must
// never fail because achievement checking did.
func (s *AchievementService) CheckBestEffort(userID uuid.UUID, action string) []string {
	newly, err := s.ApplyUnlocks(userID)
	if err != nil {
		slog.Error("achievement check failed",
			"action", action,
			"user_id", userID.String(),
			"error", err.Error(),
		)
		return []string{}
	}
	return newly
}

// Unlocked returns the user's stored achievement-id set.
func (s *AchievementService) Unlocked(userID uuid.UUID) ([]string, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return models.DecodeAchievements(user.Achievements)
}
