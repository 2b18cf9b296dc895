package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/collectiq/collectiq-backend/internal/apperr"
	"github.com/collectiq/collectiq-backend/internal/covers"
	"github.com/collectiq/collectiq-backend/internal/dto"
	"github.com/collectiq/collectiq-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AdminService runs batched maintenance and curates the recommended catalog.
type AdminService struct {
	db           *gorm.DB
	covers       covers.Generator
	coverTimeout time.Duration
}

func NewAdminService(db *gorm.DB, coverGen covers.Generator, coverTimeout time.Duration) *AdminService {
	return &AdminService{db: db, covers: coverGen, coverTimeout: coverTimeout}
}

// BulkGenerateCovers renders a cover for every collection missing one and
// updates each row independently. One collection failing, in generation or
// persistence, never aborts the rest; failures land in the errors list keyed
// by collection name. Generated and updated counts can diverge when a cover
// renders but its update fails.
func (s *AdminService) BulkGenerateCovers(ctx context.Context) (*dto.BulkGenerateCoversResponse, error) {
	var colls []models.Collection
	if err := s.db.WithContext(ctx).
		Where("cover_image IS NULL OR cover_image = ''").
		Find(&colls).Error; err != nil {
		return nil, fmt.Errorf("find collections without covers: %w", err)
	}

	resp := &dto.BulkGenerateCoversResponse{Errors: []dto.CoverError{}}
	for i := range colls {
		coll := &colls[i]

		genCtx, cancel := context.WithTimeout(ctx, s.coverTimeout)
		cover, err := s.covers.Generate(genCtx, coll.Name, coll.Category)
		cancel()
		if err != nil {
			slog.Error("cover generation failed", "collection", coll.Name, "error", err.Error())
			resp.Errors = append(resp.Errors, dto.CoverError{Collection: coll.Name, Error: err.Error()})
			continue
		}
		resp.Generated++

		if err := s.db.WithContext(ctx).Model(coll).
			Update("cover_image", cover).Error; err != nil {
			slog.Error("cover update failed", "collection", coll.Name, "error", err.Error())
			resp.Errors = append(resp.Errors, dto.CoverError{Collection: coll.Name, Error: err.Error()})
			continue
		}
		resp.Updated++
	}
	return resp, nil
}

// BulkUpdateItemImages assigns images to items of one collection. The whole
// batch is validated first: any item id not belonging to the collection
// rejects the entire request before a single write. Valid batches apply in
// one transaction.
func (s *AdminService) BulkUpdateItemImages(ctx context.Context, req *dto.BulkUpdateItemImagesRequest) (*dto.BulkUpdateItemImagesResponse, error) {
	if len(req.Updates) == 0 {
		return nil, apperr.Validationf("updates must not be empty")
	}

	var coll models.Collection
	if err := s.db.WithContext(ctx).First(&coll, "id = ?", req.CollectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("collection %s: %w", req.CollectionID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("load collection: %w", err)
	}

	var items []models.Item
	if err := s.db.WithContext(ctx).
		Select("id").
		Where("collection_id = ?", coll.ID).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load item ids: %w", err)
	}
	member := make(map[uuid.UUID]struct{}, len(items))
	for _, it := range items {
		member[it.ID] = struct{}{}
	}
	for _, u := range req.Updates {
		if _, ok := member[u.ItemID]; !ok {
			return nil, apperr.Validationf("item %s does not belong to collection %s", u.ItemID, coll.ID)
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range req.Updates {
			if err := tx.Model(&models.Item{}).
				Where("id = ?", u.ItemID).
				Update("image", u.Image).Error; err != nil {
				return fmt.Errorf("update item %s: %w", u.ItemID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updatedIDs := make([]uuid.UUID, len(req.Updates))
	for i, u := range req.Updates {
		updatedIDs[i] = u.ItemID
	}
	var updated []models.Item
	if err := s.db.WithContext(ctx).
		Where("id IN ?", updatedIDs).
		Order("number ASC, name ASC").
		Find(&updated).Error; err != nil {
		return nil, fmt.Errorf("reload items: %w", err)
	}

	return &dto.BulkUpdateItemImagesResponse{Updated: len(updated), Items: updated}, nil
}

// CreateRecommended adds a catalog collection.
func (s *AdminService) CreateRecommended(ctx context.Context, req *dto.CreateRecommendedRequest) (*models.RecommendedCollection, error) {
	coll := models.RecommendedCollection{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Template:    req.Template,
		CoverImage:  req.CoverImage,
		CoverFit:    defaultCoverFit(req.CoverFit),
	}

	var err error
	if coll.FieldSchema, err = marshalJSON(req.FieldSchema); err != nil {
		return nil, err
	}
	if coll.Tags, err = marshalJSON(req.Tags); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&coll).Error; err != nil {
		return nil, fmt.Errorf("create recommended collection: %w", err)
	}
	return &coll, nil
}

// UpdateRecommended applies partial changes to a catalog collection.
func (s *AdminService) UpdateRecommended(ctx context.Context, collectionID uuid.UUID, req *dto.UpdateRecommendedRequest) (*models.RecommendedCollection, error) {
	var coll models.RecommendedCollection
	if err := s.db.WithContext(ctx).First(&coll, "id = ?", collectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recommended collection %s: %w", collectionID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("load recommended collection: %w", err)
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

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&coll).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update recommended collection: %w", err)
		}
	}
	return &coll, nil
}

// BulkImportItems inserts catalog items, skipping names already present in
// the collection.
func (s *AdminService) BulkImportItems(ctx context.Context, collectionID uuid.UUID, req *dto.BulkImportItemsRequest) (*dto.BulkImportItemsResponse, error) {
	if len(req.Items) == 0 {
		return nil, apperr.Validationf("items must not be empty")
	}

	var coll models.RecommendedCollection
	if err := s.db.WithContext(ctx).First(&coll, "id = ?", collectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recommended collection %s: %w", collectionID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("load recommended collection: %w", err)
	}

	rows := make([]models.RecommendedItem, len(req.Items))
	for i, in := range req.Items {
		customFields, err := marshalJSON(in.CustomFields)
		if err != nil {
			return nil, err
		}
		rows[i] = models.RecommendedItem{
			ID:           uuid.New(),
			CollectionID: coll.ID,
			Name:         in.Name,
			Number:       in.Number,
			Notes:        in.Notes,
			Image:        in.Image,
			CustomFields: customFields,
		}
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(rows, 100)
	if result.Error != nil {
		return nil, fmt.Errorf("import items: %w", result.Error)
	}

	imported := int(result.RowsAffected)
	return &dto.BulkImportItemsResponse{
		Imported: imported,
		Skipped:  len(rows) - imported,
	}, nil
}

// DeleteRecommended removes a catalog collection and its items atomically.
func (s *AdminService) DeleteRecommended(ctx context.Context, collectionID uuid.UUID) error {
	var coll models.RecommendedCollection
	if err := s.db.WithContext(ctx).First(&coll, "id = ?", collectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("recommended collection %s: %w", collectionID, apperr.ErrNotFound)
		}
		return fmt.Errorf("load recommended collection: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection_id = ?", coll.ID).Delete(&models.RecommendedItem{}).Error; err != nil {
			return fmt.Errorf("delete recommended items: %w", err)
		}
		if err := tx.Delete(&coll).Error; err != nil {
			return fmt.Errorf("delete recommended collection: %w", err)
		}
		return nil
	})
}

// ListRecommended pages the catalog.
func (s *AdminService) ListRecommended(ctx context.Context, limit, offset int) ([]models.RecommendedCollection, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.RecommendedCollection{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count recommended collections: %w", err)
	}

	var colls []models.RecommendedCollection
	if err := s.db.WithContext(ctx).
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&colls).Error; err != nil {
		return nil, 0, fmt.Errorf("list recommended collections: %w", err)
	}
	return colls, total, nil
}

// GetRecommended loads one catalog entry and its items.
func (s *AdminService) GetRecommended(ctx context.Context, id uuid.UUID) (*models.RecommendedCollection, []models.RecommendedItem, error) {
	var coll models.RecommendedCollection
	if err := s.db.WithContext(ctx).First(&coll, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("recommended collection %s: %w", id, apperr.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("load recommended collection: %w", err)
	}

	var items []models.RecommendedItem
	if err := s.db.WithContext(ctx).
		Where("collection_id = ?", id).
		Order("number ASC, name ASC").
		Find(&items).Error; err != nil {
		return nil, nil, fmt.Errorf("load recommended items: %w", err)
	}
	return &coll, items, nil
}

// SetVerified flips a user's verified flag.
func (s *AdminService) SetVerified(ctx context.Context, userID uuid.UUID, verified bool) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("verified", verified)
	if result.Error != nil {
		return fmt.Errorf("set verified: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
	}
	return nil
}

// SetBadge assigns a display badge to a user.
func (s *AdminService) SetBadge(ctx context.Context, userID uuid.UUID, badge string) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("badge", badge)
	if result.Error != nil {
		return fmt.Errorf("set badge: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
	}
	return nil
}
