package handler

import (
	"bytes"

	"go-feed-catalog/internal/catalog"
	"go-feed-catalog/internal/model"
	"go-feed-catalog/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	service service.CatalogService
	exports service.ExportService
}

func NewCatalogHandler(s service.CatalogService, e service.ExportService) *CatalogHandler {
	return &CatalogHandler{service: s, exports: e}
}

// GetProducts returns one page of the filtered catalog
// Query params: filters, q, sort_by, sort_order, limit (default 100), offset
func (h *CatalogHandler) GetProducts(c *fiber.Ctx) error {
	spec, err := parseFilterSpec(c)
	if err != nil {
		return respondError(c, err)
	}

	page, err := h.service.ListProducts(c.UserContext(), spec, c.QueryInt("limit", 100), c.QueryInt("offset", 0))
	if err != nil {
		return respondError(c, err)
	}
	if page.Cached {
		c.Set("X-Cache", "HIT")
	} else {
		c.Set("X-Cache", "MISS")
	}
	return c.JSON(page)
}

func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.Params("sku"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

func (h *CatalogHandler) GetVariations(c *fiber.Ctx) error {
	products, err := h.service.GetVariations(c.Params("sku"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"sku": c.Params("sku"), "data": products})
}

// GetPricing runs the resale calculator
// Query params: markup_percent, ebay_fee_percent, paypal_fee_percent, paypal_fixed_fee
func (h *CatalogHandler) GetPricing(c *fiber.Ctx) error {
	in := model.DefaultPriceInput(0)
	var err error
	if in.MarkupPercent, err = queryFloat(c, "markup_percent", in.MarkupPercent); err != nil {
		return respondError(c, err)
	}
	if in.EbayFeePercent, err = queryFloat(c, "ebay_fee_percent", in.EbayFeePercent); err != nil {
		return respondError(c, err)
	}
	if in.PaypalPercent, err = queryFloat(c, "paypal_fee_percent", in.PaypalPercent); err != nil {
		return respondError(c, err)
	}
	if in.PaypalFixedFee, err = queryFloat(c, "paypal_fixed_fee", in.PaypalFixedFee); err != nil {
		return respondError(c, err)
	}

	breakdown, err := h.service.GetPricing(c.Params("sku"), &in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"sku": c.Params("sku"), "data": breakdown})
}

// GetDescription returns the combined description
// Query params: format (plain|html, default plain)
func (h *CatalogHandler) GetDescription(c *fiber.Ctx) error {
	format := catalog.DescriptionFormat(c.Query("format", string(catalog.FormatPlain)))
	if format != catalog.FormatPlain && format != catalog.FormatHTML {
		return c.Status(400).JSON(fiber.Map{"error": "format must be plain or html"})
	}

	text, err := h.service.GetDescription(c.Params("sku"), format)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"sku": c.Params("sku"), "format": format, "description": text})
}

// GetProductImages downloads every image of one product as a zip
func (h *CatalogHandler) GetProductImages(c *fiber.Ctx) error {
	var buf bytes.Buffer
	summary, err := h.exports.WriteProductImages(c.UserContext(), &buf, c.Params("sku"))
	if err != nil {
		return respondError(c, err)
	}
	setBundleHeaders(c, summary.Written, summary.Failed)
	c.Attachment(c.Params("sku") + "-images.zip")
	return c.Send(buf.Bytes())
}
