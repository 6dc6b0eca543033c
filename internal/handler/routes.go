package handler

import (
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Catalog   *CatalogHandler
	Dashboard *DashboardHandler
	Export    *ExportHandler
	Sync      *SyncHandler
}

// Register mounts the API under api. Mutating routes go through operator.
func Register(api fiber.Router, h Handlers, operator fiber.Handler) {
	// ============ CATALOG ============
	api.Get("/products", h.Catalog.GetProducts)
	api.Get("/products/:sku", h.Catalog.GetProduct)
	api.Get("/products/:sku/variations", h.Catalog.GetVariations)
	api.Get("/products/:sku/pricing", h.Catalog.GetPricing)
	api.Get("/products/:sku/description", h.Catalog.GetDescription)
	api.Get("/products/:sku/images.zip", h.Catalog.GetProductImages)

	// Dashboard Routes
	api.Get("/dashboard/stats", h.Dashboard.GetDashboardStats)
	api.Get("/dashboard/facets", h.Dashboard.GetFacets)

	// Export Routes
	api.Get("/export/products.csv", h.Export.ExportCSV)
	api.Get("/export/products.sqlite", h.Export.ExportSQLite)
	api.Post("/export/images.zip", operator, h.Export.ExportImages)

	// ============ SYNC ============
	api.Get("/sync/status", h.Sync.GetStatus)
	api.Get("/sync/history", h.Sync.GetHistory)
	api.Post("/sync", operator, h.Sync.TriggerSync)
	api.Post("/feeds/products", operator, h.Sync.UploadProducts)
	api.Post("/feeds/stock", operator, h.Sync.UploadStock)
}
