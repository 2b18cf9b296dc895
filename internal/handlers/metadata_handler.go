package handlers

import (
	"github.com/collectiq/collectiq-backend/internal/dto"
	"github.com/collectiq/collectiq-backend/internal/metadata"
	"github.com/gofiber/fiber/v2"
)

type MetadataHandler struct {
	registry *metadata.Registry
}

func NewMetadataHandler(registry *metadata.Registry) *MetadataHandler {
	return &MetadataHandler{registry: registry}
}

// Sources lists the available external lookup source ids.
func (h *MetadataHandler) Sources(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"sources": h.registry.IDs()})
}

// Search proxies an item lookup to one registered source.
func (h *MetadataHandler) Search(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Query parameter q is required",
		})
	}

	candidates, err := h.registry.Search(c.Context(), c.Params("source"), query)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"results": candidates})
}
