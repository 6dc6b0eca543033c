package handler

import (
	"bufio"
	"bytes"
	"context"
	"strconv"
	"time"

	"go-feed-catalog/internal/service"

	"github.com/gofiber/fiber/v2"
)

const imageExportTimeout = 10 * time.Minute

type ExportHandler struct {
	service service.ExportService
}

func NewExportHandler(s service.ExportService) *ExportHandler {
	return &ExportHandler{service: s}
}

// ExportCSV writes the filtered catalog as CSV (same query params as /products)
func (h *ExportHandler) ExportCSV(c *fiber.Ctx) error {
	spec, err := parseFilterSpec(c)
	if err != nil {
		return respondError(c, err)
	}

	var buf bytes.Buffer
	rows, err := h.service.WriteCSV(&buf, spec)
	if err != nil {
		return respondError(c, err)
	}
	c.Set("X-Export-Rows", strconv.Itoa(rows))
	c.Attachment("products.csv")
	return c.Send(buf.Bytes())
}

func (h *ExportHandler) ExportSQLite(c *fiber.Ctx) error {
	spec, err := parseFilterSpec(c)
	if err != nil {
		return respondError(c, err)
	}

	data, err := h.service.SQLiteSnapshot(c.UserContext(), spec)
	if err != nil {
		return respondError(c, err)
	}
	c.Attachment("products.sqlite")
	c.Set(fiber.HeaderContentType, "application/vnd.sqlite3")
	return c.Send(data)
}

// ExportImages streams the images of the selected products as one zip
// Body: {"skus": ["...", ...]} (at most 200)
func (h *ExportHandler) ExportImages(c *fiber.Ctx) error {
	var req service.ImageExportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	products, err := h.service.SelectImageProducts(req)
	if err != nil {
		return respondError(c, err)
	}

	// The stream outlives the handler, so it gets its own deadline.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.UserContext()), imageExportTimeout)
	c.Set("X-Images-Products", strconv.Itoa(len(products)))
	c.Attachment("product-images.zip")
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		if _, err := h.service.WriteImages(ctx, w, products); err == nil {
			w.Flush()
		}
	})
	return nil
}

func setBundleHeaders(c *fiber.Ctx, written, failed int) {
	c.Set("X-Images-Written", strconv.Itoa(written))
	c.Set("X-Images-Failed", strconv.Itoa(failed))
}
