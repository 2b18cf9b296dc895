package handlers

import (
	"github.com/collectiq/collectiq-backend/internal/achievements"
	"github.com/collectiq/collectiq-backend/internal/authctx"
	"github.com/collectiq/collectiq-backend/internal/dto"
	"github.com/collectiq/collectiq-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AchievementHandler struct {
	achievements *services.AchievementService
}

func NewAchievementHandler(svc *services.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievements: svc}
}

// List returns the full catalog annotated with the caller's unlock state.
func (h *AchievementHandler) List(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	unlocked, err := h.achievements.Unlocked(userID)
	if err != nil {
		return serviceError(c, err)
	}
	have := make(map[string]bool, len(unlocked))
	for _, id := range unlocked {
		have[id] = true
	}

	views := make([]dto.AchievementView, len(achievements.Catalog))
	for i, def := range achievements.Catalog {
		views[i] = dto.AchievementView{
			ID:          def.ID,
			Title:       def.Title,
			Description: def.Description,
			Unlocked:    have[def.ID],
		}
	}
	return c.JSON(dto.AchievementListResponse{Achievements: views})
}

// Check re-evaluates the caller's stats and returns anything newly unlocked.
func (h *AchievementHandler) Check(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	newly, err := h.achievements.ApplyUnlocks(userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.CheckAchievementsResponse{NewlyUnlocked: newly})
}
