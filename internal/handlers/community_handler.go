package handlers

import (
	"strconv"

	"github.com/collectiq/collectiq-backend/internal/authctx"
	"github.com/collectiq/collectiq-backend/internal/dto"
	"github.com/collectiq/collectiq-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type CommunityHandler struct {
	community *services.CommunityService
}

func NewCommunityHandler(community *services.CommunityService) *CommunityHandler {
	return &CommunityHandler{community: community}
}

func (h *CommunityHandler) Browse(c *fiber.Ctx) error {
	limit := queryInt(c, "limit", 20, 100)
	offset := queryInt(c, "offset", 0, 1<<30)

	colls, total, err := h.community.Browse(c.Context(), limit, offset)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.CommunityListResponse{Collections: colls, Total: total})
}

func (h *CommunityHandler) Get(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	coll, items, author, err := h.community.Get(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.CommunityCollectionResponse{
		Collection: *coll,
		Items:      items,
		Author: dto.AuthorSummary{
			ID:          author.ID,
			DisplayName: author.DisplayName,
			Badge:       author.Badge,
			Verified:    author.Verified,
		},
	})
}

func (h *CommunityHandler) Share(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.ShareRequest
	if !parseBody(c, &req) {
		return nil
	}

	fork, items, newly, err := h.community.Share(c.Context(), userID, req.CollectionID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"collection":                  fork,
		"items":                       items,
		"newly_unlocked_achievements": newly,
	})
}

func (h *CommunityHandler) Unshare(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.UnshareRequest
	if !parseBody(c, &req) {
		return nil
	}

	if err := h.community.Unshare(c.Context(), userID, req.CollectionID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.UnshareResponse{Success: true})
}

// AddToAccount clones a community collection into the caller's account.
func (h *CommunityHandler) AddToAccount(c *fiber.Ctx) error {
	return h.addToAccount(c, services.CloneCommunity)
}

// AddRecommended clones a recommended catalog collection.
func (h *CommunityHandler) AddRecommended(c *fiber.Ctx) error {
	return h.addToAccount(c, services.CloneRecommended)
}

func (h *CommunityHandler) addToAccount(c *fiber.Ctx, kind services.CloneKind) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	sourceID, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	coll, items, newly, err := h.community.AddToAccount(c.Context(), userID, services.CloneSource{
		Kind: kind, ID: sourceID,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AddToAccountResponse{
		Collection:                *coll,
		Items:                     items,
		NewlyUnlockedAchievements: newly,
	})
}

func queryInt(c *fiber.Ctx, name string, fallback, max int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	if v > max {
		return max
	}
	return v
}
