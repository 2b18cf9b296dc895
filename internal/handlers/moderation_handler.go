package handlers

import (
	"github.com/collectiq/collectiq-backend/internal/authctx"
	"github.com/collectiq/collectiq-backend/internal/dto"
	"github.com/collectiq/collectiq-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ModerationHandler struct {
	moderation *services.ModerationService
}

func NewModerationHandler(moderation *services.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderation: moderation}
}

func (h *ModerationHandler) CreateReport(c *fiber.Ctx) error {
	reporterID, err := authctx.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateReportRequest
	if !parseBody(c, &req) {
		return nil
	}

	report, err := h.moderation.CreateReport(c.Context(), reporterID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"report": report})
}

func (h *ModerationHandler) ListReports(c *fiber.Ctx) error {
	limit := queryInt(c, "limit", 50, 200)
	offset := queryInt(c, "offset", 0, 1<<30)

	reports, total, err := h.moderation.ListReports(c.Context(), c.Query("status"), limit, offset)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"reports": reports, "total": total})
}

func (h *ModerationHandler) ActionReport(c *fiber.Ctx) error {
	reportID, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	var req dto.ActionReportRequest
	if !parseBody(c, &req) {
		return nil
	}

	if err := h.moderation.ActionReport(c.Context(), reportID, &req); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
