package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go-feed-catalog/internal/export"
	"go-feed-catalog/internal/model"

	"go.uber.org/zap"
)

var ErrNoImages = export.ErrNoImages

// ImageExportRequest selects the products of a batch image bundle.
type ImageExportRequest struct {
	SKUs []string `json:"skus" validate:"required,min=1,max=200,dive,required"`
}

type ExportService interface {
	WriteCSV(w io.Writer, spec model.FilterSpec) (int, error)
	SQLiteSnapshot(ctx context.Context, spec model.FilterSpec) ([]byte, error)
	WriteProductImages(ctx context.Context, w io.Writer, sku string) (export.BundleSummary, error)
	SelectImageProducts(req ImageExportRequest) ([]model.Product, error)
	WriteImages(ctx context.Context, w io.Writer, products []model.Product) (export.BundleSummary, error)
}

type exportService struct {
	catalog CatalogService
	bundler *export.ImageBundler
	logger  *zap.Logger
}

func NewExportService(catalog CatalogService, bundler *export.ImageBundler, logger *zap.Logger) ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &exportService{catalog: catalog, bundler: bundler, logger: logger}
}

// WriteCSV writes the filtered products and returns how many rows were
// written.
func (s *exportService) WriteCSV(w io.Writer, spec model.FilterSpec) (int, error) {
	products, err := s.catalog.FilterProducts(spec)
	if err != nil {
		return 0, err
	}
	if err := export.WriteCSV(w, products); err != nil {
		return 0, fmt.Errorf("failed to write csv export: %w", err)
	}
	return len(products), nil
}

// SQLiteSnapshot builds the database in a temporary directory and returns
// its bytes.
func (s *exportService) SQLiteSnapshot(ctx context.Context, spec model.FilterSpec) ([]byte, error) {
	products, err := s.catalog.FilterProducts(spec)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "catalog-export-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create export dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "products.sqlite")
	if err := export.WriteSQLite(ctx, path, products); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sqlite export: %w", err)
	}
	s.logger.Info("sqlite snapshot exported", zap.Int("products", len(products)), zap.Int("bytes", len(data)))
	return data, nil
}

func (s *exportService) WriteProductImages(ctx context.Context, w io.Writer, sku string) (export.BundleSummary, error) {
	p, err := s.catalog.GetProduct(sku)
	if err != nil {
		return export.BundleSummary{}, err
	}
	return s.bundler.WriteZip(ctx, w, []model.Product{*p})
}

// SelectImageProducts resolves the requested SKUs, dropping repeats. Every
// SKU must exist and at least one of the products must have images.
func (s *exportService) SelectImageProducts(req ImageExportRequest) ([]model.Product, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}

	products := make([]model.Product, 0, len(req.SKUs))
	seen := make(map[string]bool, len(req.SKUs))
	images := 0
	for _, sku := range req.SKUs {
		p, err := s.catalog.GetProduct(sku)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sku, err)
		}
		if seen[p.SKU] {
			continue
		}
		seen[p.SKU] = true
		images += len(p.Images)
		products = append(products, *p)
	}
	if images == 0 {
		return nil, ErrNoImages
	}
	return products, nil
}

// WriteImages streams the bundle of already selected products to w.
func (s *exportService) WriteImages(ctx context.Context, w io.Writer, products []model.Product) (export.BundleSummary, error) {
	summary, err := s.bundler.WriteZip(ctx, w, products)
	if err != nil {
		s.logger.Error("image bundle failed", zap.Int("products", len(products)), zap.Error(err))
		return summary, err
	}
	s.logger.Info("image bundle exported",
		zap.Int("products", len(products)),
		zap.Int("requested", summary.Requested),
		zap.Int("written", summary.Written),
		zap.Int("failed", summary.Failed))
	return summary, nil
}
