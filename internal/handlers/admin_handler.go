package handlers

import (
	"github.com/collectiq/collectiq-backend/internal/dto"
	"github.com/collectiq/collectiq-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	admin *services.AdminService
}

func NewAdminHandler(admin *services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func (h *AdminHandler) BulkGenerateCovers(c *fiber.Ctx) error {
	resp, err := h.admin.BulkGenerateCovers(c.Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

func (h *AdminHandler) BulkUpdateItemImages(c *fiber.Ctx) error {
	var req dto.BulkUpdateItemImagesRequest
	if !parseBody(c, &req) {
		return nil
	}

	resp, err := h.admin.BulkUpdateItemImages(c.Context(), &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

func (h *AdminHandler) CreateRecommended(c *fiber.Ctx) error {
	var req dto.CreateRecommendedRequest
	if !parseBody(c, &req) {
		return nil
	}

	coll, err := h.admin.CreateRecommended(c.Context(), &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"collection": coll})
}

func (h *AdminHandler) UpdateRecommended(c *fiber.Ctx) error {
	collectionID, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	var req dto.UpdateRecommendedRequest
	if !parseBody(c, &req) {
		return nil
	}

	coll, err := h.admin.UpdateRecommended(c.Context(), collectionID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"collection": coll})
}

func (h *AdminHandler) BulkImportItems(c *fiber.Ctx) error {
	collectionID, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	var req dto.BulkImportItemsRequest
	if !parseBody(c, &req) {
		return nil
	}

	resp, err := h.admin.BulkImportItems(c.Context(), collectionID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

func (h *AdminHandler) DeleteRecommended(c *fiber.Ctx) error {
	collectionID, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	if err := h.admin.DeleteRecommended(c.Context(), collectionID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *AdminHandler) ListRecommended(c *fiber.Ctx) error {
	limit := queryInt(c, "limit", 20, 100)
	offset := queryInt(c, "offset", 0, 1<<30)

	colls, total, err := h.admin.ListRecommended(c.Context(), limit, offset)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.RecommendedListResponse{Collections: colls, Total: total})
}

func (h *AdminHandler) GetRecommended(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	coll, items, err := h.admin.GetRecommended(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.RecommendedCollectionResponse{Collection: *coll, Items: items})
}

func (h *AdminHandler) SetVerified(c *fiber.Ctx) error {
	userID, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	var req dto.SetVerifiedRequest
	if !parseBody(c, &req) {
		return nil
	}

	if err := h.admin.SetVerified(c.Context(), userID, *req.Verified); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *AdminHandler) SetBadge(c *fiber.Ctx) error {
	userID, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	var req dto.SetBadgeRequest
	if !parseBody(c, &req) {
		return nil
	}

	if err := h.admin.SetBadge(c.Context(), userID, req.Badge); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
