package handlers

import (
	"github.com/collectiq/collectiq-backend/internal/authctx"
	"github.com/collectiq/collectiq-backend/internal/dto"
	"github.com/collectiq/collectiq-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type FolderHandler struct {
	folders *services.FolderService
}

func NewFolderHandler(folders *services.FolderService) *FolderHandler {
	return &FolderHandler{folders: folders}
}

func (h *FolderHandler) List(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	folders, err := h.folders.List(c.Context(), userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"folders": folders})
}

func (h *FolderHandler) Create(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateFolderRequest
	if !parseBody(c, &req) {
		return nil
	}

	folder, newly, err := h.folders.Create(c.Context(), userID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"folder":                      folder,
		"newly_unlocked_achievements": newly,
	})
}

func (h *FolderHandler) Update(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	folderID, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	var req dto.UpdateFolderRequest
	if !parseBody(c, &req) {
		return nil
	}

	folder, err := h.folders.Update(c.Context(), userID, folderID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"folder": folder})
}

func (h *FolderHandler) Delete(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	folderID, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	if err := h.folders.Delete(c.Context(), userID, folderID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
