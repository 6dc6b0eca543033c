package handler

import (
	"go-feed-catalog/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.CatalogService
}

func NewDashboardHandler(s service.CatalogService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetDashboardStats returns overview statistics for the whole catalog
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats()
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(stats)
}

// GetFacets returns the distinct filter values
func (h *DashboardHandler) GetFacets(c *fiber.Ctx) error {
	facets, err := h.service.GetFacets()
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(facets)
}
