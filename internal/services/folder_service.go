package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/collectiq/collectiq-backend/internal/apperr"
	"github.com/collectiq/collectiq-backend/internal/dto"
	"github.com/collectiq/collectiq-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FolderService manages the folder tree. Collections reference folders
// weakly: deleting a folder nulls their FolderID and never touches the
// collections themselves.
type FolderService struct {
	db           *gorm.DB
	achievements *AchievementService
}

func NewFolderService(db *gorm.DB, achievements *AchievementService) *FolderService {
	return &FolderService{db: db, achievements: achievements}
}

func (s *FolderService) List(ctx context.Context, userID uuid.UUID) ([]models.Folder, error) {
	var folders []models.Folder
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&folders).Error; err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return folders, nil
}

func (s *FolderService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateFolderRequest) (*models.Folder, []string, error) {
	if req.ParentID != nil {
		if _, err := s.ownedFolder(ctx, userID, *req.ParentID); err != nil {
			return nil, nil, err
		}
	}

	folder := models.Folder{
		ID:       uuid.New(),
		UserID:   userID,
		Name:     req.Name,
		ParentID: req.ParentID,
	}
	if err := s.db.WithContext(ctx).Create(&folder).Error; err != nil {
		return nil, nil, fmt.Errorf("create folder: %w", err)
	}

	newly := s.achievements.CheckBestEffort(userID, "create_folder")
	return &folder, newly, nil
}

// Update renames a folder or moves it under a new parent. A move that would
// make the folder its own ancestor is rejected.
func (s *FolderService) Update(ctx context.Context, userID, folderID uuid.UUID, req *dto.UpdateFolderRequest) (*models.Folder, error) {
	folder, err := s.ownedFolder(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.ParentID != nil {
		parentID := *req.ParentID
		if parentID == folder.ID {
			return nil, apperr.Validationf("folder cannot be its own parent")
		}
		if _, err := s.ownedFolder(ctx, userID, parentID); err != nil {
			return nil, err
		}
		cycle, err := s.wouldCycle(ctx, folder.ID, parentID)
		if err != nil {
			return nil, err
		}
		if cycle {
			return nil, apperr.Validationf("move would create a folder cycle")
		}
		updates["parent_id"] = parentID
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(folder).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update folder: %w", err)
		}
	}
	return folder, nil
}

// Delete removes the folder, reparents child folders to the deleted folder's
// parent and detaches member collections.
func (s *FolderService) Delete(ctx context.Context, userID, folderID uuid.UUID) error {
	folder, err := s.ownedFolder(ctx, userID, folderID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Collection{}).
			Where("folder_id = ?", folder.ID).
			Update("folder_id", nil).Error; err != nil {
			return fmt.Errorf("detach collections: %w", err)
		}
		if err := tx.Model(&models.Folder{}).
			Where("parent_id = ?", folder.ID).
			Update("parent_id", folder.ParentID).Error; err != nil {
			return fmt.Errorf("reparent child folders: %w", err)
		}
		if err := tx.Delete(folder).Error; err != nil {
			return fmt.Errorf("delete folder: %w", err)
		}
		return nil
	})
}

// wouldCycle walks up from newParent; hitting folderID means the move would
// close a loop.
func (s *FolderService) wouldCycle(ctx context.Context, folderID, newParentID uuid.UUID) (bool, error) {
	current := &newParentID
	for depth := 0; current != nil && depth < 100; depth++ {
		if *current == folderID {
			return true, nil
		}
		var parent models.Folder
		if err := s.db.WithContext(ctx).
			Select("parent_id").
			First(&parent, "id = ?", *current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("walk folder tree: %w", err)
		}
		current = parent.ParentID
	}
	return false, nil
}

func (s *FolderService) ownedFolder(ctx context.Context, userID, folderID uuid.UUID) (*models.Folder, error) {
	var folder models.Folder
	if err := s.db.WithContext(ctx).First(&folder, "id = ?", folderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("folder %s: %w", folderID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("load folder: %w", err)
	}
	if folder.UserID != userID {
		return nil, fmt.Errorf("folder %s: %w", folderID, apperr.ErrForbidden)
	}
	return &folder, nil
}
