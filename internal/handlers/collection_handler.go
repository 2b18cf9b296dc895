package handlers

import (
	"github.com/collectiq/collectiq-backend/internal/authctx"
	"github.com/collectiq/collectiq-backend/internal/dto"
	"github.com/collectiq/collectiq-backend/internal/models"
	"github.com/collectiq/collectiq-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CollectionHandler struct {
	collections *services.CollectionService
}

func NewCollectionHandler(collections *services.CollectionService) *CollectionHandler {
	return &CollectionHandler{collections: collections}
}

func (h *CollectionHandler) List(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	colls, total, err := h.collections.ListForUser(c.Context(), userID)
	if err != nil {
		return serviceError(c, err)
	}

	// Folder filtering happens after the cached read so the cache keeps one
	// entry per user, not one per folder.
	if raw := c.Query("folder_id"); raw != "" {
		folderID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid folder_id",
			})
		}
		// Copy: the unfiltered slice may be shared with the cache.
		filtered := make([]models.Collection, 0, len(colls))
		for _, coll := range colls {
			if coll.FolderID != nil && *coll.FolderID == folderID {
				filtered = append(filtered, coll)
			}
		}
		colls = filtered
		total = int64(len(filtered))
	}

	return c.JSON(dto.CollectionListResponse{Collections: colls, Total: total})
}

func (h *CollectionHandler) Get(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	collectionID, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	coll, items, ownedCount, err := h.collections.Get(c.Context(), userID, collectionID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.CollectionResponse{Collection: *coll, Items: items, OwnedCount: ownedCount})
}

// GetShared resolves a public share link. No authentication.
func (h *CollectionHandler) GetShared(c *fiber.Ctx) error {
	coll, items, ownedCount, err := h.collections.GetByShareToken(c.Context(), c.Params("token"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.CollectionResponse{Collection: *coll, Items: items, OwnedCount: ownedCount})
}

func (h *CollectionHandler) Create(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateCollectionRequest
	if !parseBody(c, &req) {
		return nil
	}

	coll, newly, err := h.collections.Create(c.Context(), userID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"collection":                  coll,
		"newly_unlocked_achievements": newly,
	})
}

func (h *CollectionHandler) Update(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	collectionID, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	var req dto.UpdateCollectionRequest
	if !parseBody(c, &req) {
		return nil
	}

	coll, err := h.collections.Update(c.Context(), userID, collectionID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"collection": coll})
}

func (h *CollectionHandler) Delete(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	collectionID, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	if err := h.collections.Delete(c.Context(), userID, collectionID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *CollectionHandler) CreateItem(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	collectionID, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	var req dto.CreateItemRequest
	if !parseBody(c, &req) {
		return nil
	}

	item, newly, err := h.collections.CreateItem(c.Context(), userID, collectionID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"item":                        item,
		"newly_unlocked_achievements": newly,
	})
}

func (h *CollectionHandler) UpdateItem(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	collectionID, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}
	itemID, ok := pathUUID(c, "itemId")
	if !ok {
		return nil
	}

	var req dto.UpdateItemRequest
	if !parseBody(c, &req) {
		return nil
	}

	item, newly, err := h.collections.UpdateItem(c.Context(), userID, collectionID, itemID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{
		"item":                        item,
		"newly_unlocked_achievements": newly,
	})
}

func (h *CollectionHandler) DeleteItem(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	collectionID, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}
	itemID, ok := pathUUID(c, "itemId")
	if !ok {
		return nil
	}

	if err := h.collections.DeleteItem(c.Context(), userID, collectionID, itemID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *CollectionHandler) EnableShareToken(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	collectionID, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	token, err := h.collections.EnableShareToken(c.Context(), userID, collectionID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.ShareTokenResponse{ShareToken: token})
}

func (h *CollectionHandler) RevokeShareToken(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	collectionID, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	if err := h.collections.RevokeShareToken(c.Context(), userID, collectionID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
