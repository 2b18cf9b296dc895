package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/collectiq/collectiq-backend/internal/apperr"
	"github.com/collectiq/collectiq-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CloneKind tags the source variant for AddToAccount.
type CloneKind string

const (
	CloneCommunity   CloneKind = "community"
	CloneRecommended CloneKind = "recommended"
)

// CloneSource names a collection to clone into a user's account.
type CloneSource struct {
	Kind CloneKind
	ID   uuid.UUID
}

// CommunityService forks collections across ownership boundaries: personal to
// community (share), back out again (unshare) and community/recommended to
// personal (add to account). Every fork is a structural copy with fresh row
// identities; nothing is shared by reference.
type CommunityService struct {
	db           *gorm.DB
	achievements *AchievementService
}

func NewCommunityService(db *gorm.DB, achievements *AchievementService) *CommunityService {
	return &CommunityService{db: db, achievements: achievements}
}

// Share deep-copies the collection and its items into a new community
// collection owned by the same user, then points the source collection's
// SharedCommunityID at the fork. Re-sharing an already shared collection
// creates another fork and overwrites the pointer; the earlier fork stays in
// the marketplace unreferenced (see the orphan test in
// community_service_test.go before changing this).
//
// Returned alongside the fork: the newly unlocked achievements, empty when
// the best-effort check fails.
func (s *CommunityService) Share(ctx context.Context, userID, collectionID uuid.UUID) (*models.CommunityCollection, []models.CommunityItem, []string, error) {
	var source models.Collection
	if err := s.db.WithContext(ctx).First(&source, "id = ?", collectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, fmt.Errorf("collection %s: %w", collectionID, apperr.ErrNotFound)
		}
		return nil, nil, nil, fmt.Errorf("load collection: %w", err)
	}
	if source.UserID != userID {
		return nil, nil, nil, fmt.Errorf("collection %s: %w", collectionID, apperr.ErrForbidden)
	}

	var items []models.Item
	if err := s.db.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Order("number ASC, name ASC").
		Find(&items).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("load items: %w", err)
	}

	fork := models.CommunityCollection{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        source.Name,
		Description: source.Description,
		Category:    source.Category,
		Template:    source.Template,
		FieldSchema: source.FieldSchema,
		CoverImage:  source.CoverImage,
		CoverFit:    source.CoverFit,
		Tags:        source.Tags,
	}

	forkItems := make([]models.CommunityItem, len(items))
	for i, item := range items {
		forkItems[i] = models.CommunityItem{
			ID:           uuid.New(),
			CollectionID: fork.ID,
			Name:         item.Name,
			Number:       item.Number,
			Notes:        item.Notes,
			Image:        item.Image,
			CustomFields: item.CustomFields,
		}
	}

	// Fork creation and the pointer update are one transaction: a community
	// collection must never be visible with a partial item set.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&fork).Error; err != nil {
			return fmt.Errorf("create community collection: %w", err)
		}
		if len(forkItems) > 0 {
			if err := tx.CreateInBatches(forkItems, 100).Error; err != nil {
				return fmt.Errorf("copy items: %w", err)
			}
		}
		if err := tx.Model(&models.Collection{}).
			Where("id = ?", source.ID).
			Update("shared_community_id", fork.ID).Error; err != nil {
			return fmt.Errorf("link community fork: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}

	newly := s.achievements.CheckBestEffort(userID, "share")
	return &fork, forkItems, newly, nil
}

// Unshare deletes the live community fork and clears the source collection's
// pointer. The fork's items go with it atomically. A pointer referencing a
// fork that no longer exists reports NotFound; a fork owned by someone else
// reports Forbidden.
func (s *CommunityService) Unshare(ctx context.Context, userID, collectionID uuid.UUID) error {
	var source models.Collection
	if err := s.db.WithContext(ctx).First(&source, "id = ?", collectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("collection %s: %w", collectionID, apperr.ErrNotFound)
		}
		return fmt.Errorf("load collection: %w", err)
	}
	if source.UserID != userID {
		return fmt.Errorf("collection %s: %w", collectionID, apperr.ErrForbidden)
	}
	if source.SharedCommunityID == nil {
		return apperr.Validationf("collection %s is not shared", collectionID)
	}

	var fork models.CommunityCollection
	if err := s.db.WithContext(ctx).First(&fork, "id = ?", *source.SharedCommunityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("community collection %s: %w", *source.SharedCommunityID, apperr.ErrNotFound)
		}
		return fmt.Errorf("load community collection: %w", err)
	}
	// Guards against cross-account tampering if the link were ever corrupted.
	if fork.UserID != userID {
		return fmt.Errorf("community collection %s: %w", fork.ID, apperr.ErrForbidden)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection_id = ?", fork.ID).Delete(&models.CommunityItem{}).Error; err != nil {
			return fmt.Errorf("delete community items: %w", err)
		}
		if err := tx.Delete(&fork).Error; err != nil {
			return fmt.Errorf("delete community collection: %w", err)
		}
		if err := tx.Model(&models.Collection{}).
			Where("id = ?", source.ID).
			Update("shared_community_id", nil).Error; err != nil {
			return fmt.Errorf("clear community link: %w", err)
		}
		return nil
	})
}

// AddToAccount clones a community or recommended collection into a new
// personal collection. Template, field schema, cover fit, tags and per-item
// custom fields survive verbatim; every cloned item starts unowned. Only a
// lineage pointer records where the clone came from.
func (s *CommunityService) AddToAccount(ctx context.Context, userID uuid.UUID, src CloneSource) (*models.Collection, []models.Item, []string, error) {
	blueprint, blueprintItems, err := s.loadCloneSource(ctx, src)
	if err != nil {
		return nil, nil, nil, err
	}

	clone := models.Collection{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        blueprint.Name,
		Description: blueprint.Description,
		Category:    blueprint.Category,
		Template:    blueprint.Template,
		FieldSchema: blueprint.FieldSchema,
		CoverImage:  blueprint.CoverImage,
		CoverFit:    blueprint.CoverFit,
		Tags:        blueprint.Tags,
	}
	switch src.Kind {
	case CloneCommunity:
		clone.SourceCommunityID = &src.ID
	case CloneRecommended:
		clone.SourceRecommendedID = &src.ID
	}

	cloneItems := make([]models.Item, len(blueprintItems))
	for i, item := range blueprintItems {
		cloneItems[i] = models.Item{
			ID:           uuid.New(),
			CollectionID: clone.ID,
			Name:         item.Name,
			Number:       item.Number,
			Notes:        item.Notes,
			Image:        item.Image,
			Owned:        false,
			CustomFields: item.CustomFields,
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&clone).Error; err != nil {
			return fmt.Errorf("create collection: %w", err)
		}
		if len(cloneItems) > 0 {
			if err := tx.CreateInBatches(cloneItems, 100).Error; err != nil {
				return fmt.Errorf("copy items: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}

	newly := s.achievements.CheckBestEffort(userID, "add_to_account")
	return &clone, cloneItems, newly, nil
}

// loadCloneSource reduces both source variants to one kind-independent shape
// (a community collection mirrors all descriptive fields, so it serves as the
// common blueprint for recommended sources too).
func (s *CommunityService) loadCloneSource(ctx context.Context, src CloneSource) (*models.CommunityCollection, []models.CommunityItem, error) {
	switch src.Kind {
	case CloneCommunity:
		var coll models.CommunityCollection
		if err := s.db.WithContext(ctx).First(&coll, "id = ?", src.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, fmt.Errorf("community collection %s: %w", src.ID, apperr.ErrNotFound)
			}
			return nil, nil, fmt.Errorf("load community collection: %w", err)
		}
		var items []models.CommunityItem
		if err := s.db.WithContext(ctx).
			Where("collection_id = ?", src.ID).
			Order("number ASC, name ASC").
			Find(&items).Error; err != nil {
			return nil, nil, fmt.Errorf("load community items: %w", err)
		}
		return &coll, items, nil

	case CloneRecommended:
		var coll models.RecommendedCollection
		if err := s.db.WithContext(ctx).First(&coll, "id = ?", src.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, fmt.Errorf("recommended collection %s: %w", src.ID, apperr.ErrNotFound)
			}
			return nil, nil, fmt.Errorf("load recommended collection: %w", err)
		}
		var items []models.RecommendedItem
		if err := s.db.WithContext(ctx).
			Where("collection_id = ?", src.ID).
			Order("number ASC, name ASC").
			Find(&items).Error; err != nil {
			return nil, nil, fmt.Errorf("load recommended items: %w", err)
		}
		mirror := models.CommunityCollection{
			Name:        coll.Name,
			Description: coll.Description,
			Category:    coll.Category,
			Template:    coll.Template,
			FieldSchema: coll.FieldSchema,
			CoverImage:  coll.CoverImage,
			CoverFit:    coll.CoverFit,
			Tags:        coll.Tags,
		}
		mirrorItems := make([]models.CommunityItem, len(items))
		for i, item := range items {
			mirrorItems[i] = models.CommunityItem{
				Name:         item.Name,
				Number:       item.Number,
				Notes:        item.Notes,
				Image:        item.Image,
				CustomFields: item.CustomFields,
			}
		}
		return &mirror, mirrorItems, nil

	default:
		return nil, nil, apperr.Validationf("unknown clone source kind %q", src.Kind)
	}
}

// Browse lists community collections newest first.
func (s *CommunityService) Browse(ctx context.Context, limit, offset int) ([]models.CommunityCollection, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.CommunityCollection{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count community collections: %w", err)
	}

	var colls []models.CommunityCollection
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&colls).Error; err != nil {
		return nil, 0, fmt.Errorf("list community collections: %w", err)
	}
	return colls, total, nil
}

// Get loads one community collection with its items and author.
func (s *CommunityService) Get(ctx context.Context, id uuid.UUID) (*models.CommunityCollection, []models.CommunityItem, *models.User, error) {
	var coll models.CommunityCollection
	if err := s.db.WithContext(ctx).First(&coll, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, fmt.Errorf("community collection %s: %w", id, apperr.ErrNotFound)
		}
		return nil, nil, nil, fmt.Errorf("load community collection: %w", err)
	}

	var items []models.CommunityItem
	if err := s.db.WithContext(ctx).
		Where("collection_id = ?", id).
		Order("number ASC, name ASC").
		Find(&items).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("load community items: %w", err)
	}

	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", coll.UserID).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("load author: %w", err)
	}
	return &coll, items, &author, nil
}
