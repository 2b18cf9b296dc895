package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/collectiq/collectiq-backend/internal/apperr"
	"github.com/collectiq/collectiq-backend/internal/cache"
	"github.com/collectiq/collectiq-backend/internal/dto"
	"github.com/collectiq/collectiq-backend/internal/models"
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CollectionService covers personal collection and item CRUD. List reads go
// through the advisory request cache; every mutation invalidates the caller's
// list key and re-checks achievements best effort.
type CollectionService struct {
	db           *gorm.DB
	achievements *AchievementService
	cache        *cache.RequestCache
}

func NewCollectionService(db *gorm.DB, achievements *AchievementService, reqCache *cache.RequestCache) *CollectionService {
	return &CollectionService{db: db, achievements: achievements, cache: reqCache}
}

func listKey(userID uuid.UUID) string {
	return "collections:" + userID.String()
}

// ListForUser returns the user's collections, deduplicating concurrent
// identical reads.
func (s *CollectionService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Collection, int64, error) {
	type listResult struct {
		colls []models.Collection
		total int64
	}

	v, err := s.cache.Do(listKey(userID), func() (any, error) {
		var colls []models.Collection
		if err := s.db.WithContext(ctx).
			Where("user_id = ?", userID).
			Order("name ASC").
			Find(&colls).Error; err != nil {
			return nil, fmt.Errorf("list collections: %w", err)
		}
		return listResult{colls: colls, total: int64(len(colls))}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	res := v.(listResult)
	return res.colls, res.total, nil
}

// Get loads one collection with its items ordered by (number, name), checking
// ownership unless the collection is fetched through a public share token.
func (s *CollectionService) Get(ctx context.Context, userID, collectionID uuid.UUID) (*models.Collection, []models.Item, int64, error) {
	coll, err := s.ownedCollection(ctx, userID, collectionID)
	if err != nil {
		return nil, nil, 0, err
	}

	items, owned, err := s.loadItems(ctx, coll.ID)
	if err != nil {
		return nil, nil, 0, err
	}
	return coll, items, owned, nil
}

// GetByShareToken resolves a public share link without authentication.
func (s *CollectionService) GetByShareToken(ctx context.Context, token string) (*models.Collection, []models.Item, int64, error) {
	var coll models.Collection
	if err := s.db.WithContext(ctx).First(&coll, "share_token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, 0, fmt.Errorf("share token: %w", apperr.ErrNotFound)
		}
		return nil, nil, 0, fmt.Errorf("load shared collection: %w", err)
	}

	items, owned, err := s.loadItems(ctx, coll.ID)
	if err != nil {
		return nil, nil, 0, err
	}
	return &coll, items, owned, nil
}

func (s *CollectionService) loadItems(ctx context.Context, collectionID uuid.UUID) ([]models.Item, int64, error) {
	var items []models.Item
	if err := s.db.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Order("number ASC, name ASC").
		Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("load items: %w", err)
	}
	var owned int64
	for _, it := range items {
		if it.Owned {
			owned++
		}
	}
	return items, owned, nil
}

// Create makes a new collection for the user.
func (s *CollectionService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateCollectionRequest) (*models.Collection, []string, error) {
	coll := models.Collection{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Template:    req.Template,
		CoverImage:  req.CoverImage,
		CoverFit:    defaultCoverFit(req.CoverFit),
		FolderID:    req.FolderID,
	}

	var err error
	if coll.FieldSchema, err = marshalJSON(req.FieldSchema); err != nil {
		return nil, nil, err
	}
	if coll.Tags, err = marshalJSON(req.Tags); err != nil {
		return nil, nil, err
	}

	if req.FolderID != nil {
		if err := s.checkFolderOwnership(ctx, userID, *req.FolderID); err != nil {
			return nil, nil, err
		}
	}

	if err := s.db.WithContext(ctx).Create(&coll).Error; err != nil {
		return nil, nil, fmt.Errorf("create collection: %w", err)
	}

	s.cache.Invalidate(listKey(userID))
	newly := s.achievements.CheckBestEffort(userID, "create_collection")
	return &coll, newly, nil
}

// Update applies partial changes to an owned collection.
func (s *CollectionService) Update(ctx context.Context, userID, collectionID uuid.UUID, req *dto.UpdateCollectionRequest) (*models.Collection, error) {
	coll, err := s.ownedCollection(ctx, userID, collectionID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Template != nil {
		updates["template"] = *req.Template
	}
	if req.CoverImage != nil {
		updates["cover_image"] = *req.CoverImage
	}
	if req.CoverFit != nil {
		updates["cover_fit"] = defaultCoverFit(*req.CoverFit)
	}
	if req.FieldSchema != nil {
		raw, err := marshalJSON(*req.FieldSchema)
		if err != nil {
			return nil, err
		}
		updates["field_schema"] = raw
	}
	if req.Tags != nil {
		raw, err := marshalJSON(*req.Tags)
		if err != nil {
			return nil, err
		}
		updates["tags"] = raw
	}
	if req.FolderID != nil {
		if err := s.checkFolderOwnership(ctx, userID, *req.FolderID); err != nil {
			return nil, err
		}
		updates["folder_id"] = *req.FolderID
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(coll).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update collection: %w", err)
		}
	}

	s.cache.Invalidate(listKey(userID))
	s.achievements.CheckBestEffort(userID, "update_collection")
	return coll, nil
}

// Delete removes a collection and its items. The community fork, if any,
// stays in the marketplace; it is owned independently.
func (s *CollectionService) Delete(ctx context.Context, userID, collectionID uuid.UUID) error {
	coll, err := s.ownedCollection(ctx, userID, collectionID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection_id = ?", coll.ID).Delete(&models.Item{}).Error; err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		if err := tx.Delete(coll).Error; err != nil {
			return fmt.Errorf("delete collection: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(listKey(userID))
	s.achievements.CheckBestEffort(userID, "delete_collection")
	return nil
}

// CreateItem adds an item to an owned collection. Custom field keys must
// exist in the collection's schema.
func (s *CollectionService) CreateItem(ctx context.Context, userID, collectionID uuid.UUID, req *dto.CreateItemRequest) (*models.Item, []string, error) {
	coll, err := s.ownedCollection(ctx, userID, collectionID)
	if err != nil {
		return nil, nil, err
	}

	customFields, err := validateCustomFields(coll.FieldSchema, req.CustomFields)
	if err != nil {
		return nil, nil, err
	}

	item := models.Item{
		ID:           uuid.New(),
		CollectionID: coll.ID,
		Name:         req.Name,
		Number:       req.Number,
		Notes:        req.Notes,
		Image:        req.Image,
		Owned:        req.Owned,
		CustomFields: customFields,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, nil, fmt.Errorf("create item: %w", err)
	}

	newly := s.achievements.CheckBestEffort(userID, "create_item")
	return &item, newly, nil
}

// UpdateItem applies partial changes to an item in an owned collection.
func (s *CollectionService) UpdateItem(ctx context.Context, userID, collectionID, itemID uuid.UUID, req *dto.UpdateItemRequest) (*models.Item, []string, error) {
	coll, err := s.ownedCollection(ctx, userID, collectionID)
	if err != nil {
		return nil, nil, err
	}

	var item models.Item
	if err := s.db.WithContext(ctx).
		First(&item, "id = ? AND collection_id = ?", itemID, coll.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("item %s: %w", itemID, apperr.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("load item: %w", err)
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Number != nil {
		updates["number"] = *req.Number
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.Owned != nil {
		updates["owned"] = *req.Owned
	}
	if req.CustomFields != nil {
		raw, err := validateCustomFields(coll.FieldSchema, *req.CustomFields)
		if err != nil {
			return nil, nil, err
		}
		updates["custom_fields"] = raw
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&item).Updates(updates).Error; err != nil {
			return nil, nil, fmt.Errorf("update item: %w", err)
		}
	}

	newly := s.achievements.CheckBestEffort(userID, "update_item")
	return &item, newly, nil
}

// DeleteItem removes one item from an owned collection.
func (s *CollectionService) DeleteItem(ctx context.Context, userID, collectionID, itemID uuid.UUID) error {
	coll, err := s.ownedCollection(ctx, userID, collectionID)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("id = ? AND collection_id = ?", itemID, coll.ID).
		Delete(&models.Item{})
	if result.Error != nil {
		return fmt.Errorf("delete item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("item %s: %w", itemID, apperr.ErrNotFound)
	}

	s.achievements.CheckBestEffort(userID, "delete_item")
	return nil
}

// EnableShareToken issues (or returns the existing) public share token.
func (s *CollectionService) EnableShareToken(ctx context.Context, userID, collectionID uuid.UUID) (string, error) {
	coll, err := s.ownedCollection(ctx, userID, collectionID)
	if err != nil {
		return "", err
	}
	if coll.ShareToken != nil {
		return *coll.ShareToken, nil
	}

	raw, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}
	token := "shr-" + raw

	if err := s.db.WithContext(ctx).Model(coll).
		Update("share_token", token).Error; err != nil {
		return "", fmt.Errorf("store share token: %w", err)
	}
	return token, nil
}

// RevokeShareToken disables the public share link.
func (s *CollectionService) RevokeShareToken(ctx context.Context, userID, collectionID uuid.UUID) error {
	coll, err := s.ownedCollection(ctx, userID, collectionID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(coll).
		Update("share_token", nil).Error; err != nil {
		return fmt.Errorf("revoke share token: %w", err)
	}
	return nil
}

func (s *CollectionService) ownedCollection(ctx context.Context, userID, collectionID uuid.UUID) (*models.Collection, error) {
	var coll models.Collection
	if err := s.db.WithContext(ctx).First(&coll, "id = ?", collectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("collection %s: %w", collectionID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("load collection: %w", err)
	}
	if coll.UserID != userID {
		return nil, fmt.Errorf("collection %s: %w", collectionID, apperr.ErrForbidden)
	}
	return &coll, nil
}

func (s *CollectionService) checkFolderOwnership(ctx context.Context, userID, folderID uuid.UUID) error {
	var folder models.Folder
	if err := s.db.WithContext(ctx).First(&folder, "id = ?", folderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("folder %s: %w", folderID, apperr.ErrNotFound)
		}
		return fmt.Errorf("load folder: %w", err)
	}
	if folder.UserID != userID {
		return fmt.Errorf("folder %s: %w", folderID, apperr.ErrForbidden)
	}
	return nil
}

// validateCustomFields rejects values whose keys are absent from the schema.
func validateCustomFields(schema datatypes.JSON, values map[string]string) (datatypes.JSON, error) {
	if len(values) == 0 {
		return nil, nil
	}

	var defs []models.FieldDef
	if len(schema) > 0 {
		if err := json.Unmarshal(schema, &defs); err != nil {
			return nil, fmt.Errorf("decode field schema: %w", err)
		}
	}
	known := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		known[d.Name] = struct{}{}
	}
	for key := range values {
		if _, ok := known[key]; !ok {
			return nil, apperr.Validationf("custom field %q is not in the collection schema", key)
		}
	}

	b, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encode custom fields: %w", err)
	}
	return datatypes.JSON(b), nil
}

func marshalJSON(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode json field: %w", err)
	}
	return datatypes.JSON(b), nil
}

func defaultCoverFit(fit string) string {
	if fit == "" {
		return "cover"
	}
	return fit
}
