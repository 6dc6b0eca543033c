package handler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go-feed-catalog/internal/feed"
	"go-feed-catalog/internal/fetch"
	"go-feed-catalog/internal/model"
	"go-feed-catalog/internal/service"

	"github.com/gofiber/fiber/v2"
)

// parseFilterSpec reads list filters from the query string. List values may
// be repeated or comma separated.
func parseFilterSpec(c *fiber.Ctx) (model.FilterSpec, error) {
	spec := model.DefaultFilterSpec()

	if v := c.Query("stock_status"); v != "" {
		spec.StockStatus = model.StockFilter(v)
	}
	if v := c.Query("price_type"); v != "" {
		spec.PriceType = model.PriceType(v)
	}
	if v := c.Query("variations"); v != "" {
		spec.Variations = model.VariationFilter(v)
	}
	if v := c.Query("sort_by"); v != "" {
		spec.SortBy = model.SortField(v)
	}
	if v := c.Query("sort_order"); v != "" {
		spec.SortOrder = model.SortOrder(v)
	}
	spec.SearchQuery = c.Query("q")

	var err error
	if spec.PriceRange.Min, err = queryFloat(c, "min_price", spec.PriceRange.Min); err != nil {
		return spec, err
	}
	if spec.PriceRange.Max, err = queryFloat(c, "max_price", spec.PriceRange.Max); err != nil {
		return spec, err
	}

	spec.Categories = queryList(c, "category")
	spec.CategoryOnes = queryList(c, "category_one")
	spec.CategoryTwos = queryList(c, "category_two")
	spec.Colors = queryList(c, "color")
	return spec, nil
}

func queryFloat(c *fiber.Ctx, key string, fallback float64) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %s must be a number", service.ErrInvalidInput, key)
	}
	return v, nil
}

func queryList(c *fiber.Ctx, key string) []string {
	var out []string
	for _, raw := range c.Context().QueryArgs().PeekMulti(key) {
		for _, v := range strings.Split(string(raw), ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// errorStatus maps service and collaborator errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrProductNotFound), errors.Is(err, service.ErrNoImages):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrSyncInProgress):
		return fiber.StatusConflict
	case errors.Is(err, feed.ErrUnreadableFeed):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, service.ErrCatalogEmpty):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, fetch.ErrUnexpectedStatus):
		return fiber.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	return c.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
}
