package handler

import (
	"context"
	"io"

	"go-feed-catalog/internal/middleware"
	"go-feed-catalog/internal/model"
	"go-feed-catalog/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SyncHandler struct {
	service service.SyncService
}

func NewSyncHandler(s service.SyncService) *SyncHandler {
	return &SyncHandler{service: s}
}

// TriggerSync pulls both remote feeds and waits for the result
// Body (optional): {"product_url": "...", "stock_url": "..."}
func (h *SyncHandler) TriggerSync(c *fiber.Ctx) error {
	var req service.SyncRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
		}
	}

	run, err := h.service.Sync(c.UserContext(), req, middleware.Operator(c))
	if err != nil {
		if run != nil {
			return c.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error(), "run": run})
		}
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Sync complete", "run": run})
}

func (h *SyncHandler) UploadProducts(c *fiber.Ctx) error {
	return h.upload(c, h.service.LoadProductFeed)
}

func (h *SyncHandler) UploadStock(c *fiber.Ctx) error {
	return h.upload(c, h.service.LoadStockFeed)
}

type loadFunc = func(ctx context.Context, r io.Reader, operator string) (*model.SyncRun, error)

// upload reads the multipart "file" field and hands it to load.
func (h *SyncHandler) upload(c *fiber.Ctx, load loadFunc) error {
	header, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Missing file field"})
	}
	file, err := header.Open()
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Failed to read uploaded file"})
	}
	defer file.Close()

	run, err := load(c.UserContext(), file, middleware.Operator(c))
	if err != nil {
		if run != nil {
			return c.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error(), "run": run})
		}
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Feed loaded", "file": header.Filename, "run": run})
}

func (h *SyncHandler) GetStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.Status())
}

// GetHistory lists recent sync runs
// Query params: limit (default 20)
func (h *SyncHandler) GetHistory(c *fiber.Ctx) error {
	runs, err := h.service.History(c.QueryInt("limit", 20))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch sync history"})
	}
	return c.JSON(fiber.Map{"data": runs})
}
