package service

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-feed-catalog/internal/cache"
	"go-feed-catalog/internal/catalog"
	"go-feed-catalog/internal/model"
	"go-feed-catalog/internal/query"
	"go-feed-catalog/internal/repository"
	"go-feed-catalog/pkg/validator"

	"go.uber.org/zap"
)

var (
	ErrCatalogEmpty    = errors.New("catalog has not been synced yet")
	ErrProductNotFound = repository.ErrProductNotFound
	ErrInvalidInput    = errors.New("validation failed")
)

const (
	maxPageSize = 1000
	pageTTL     = 10 * time.Minute
)

// ProductPage is one window of a filtered product list. Stats cover the
// whole filtered set, not only the page.
type ProductPage struct {
	Total  int                  `json:"total"`
	Stats  model.DashboardStats `json:"stats"`
	Data   []model.Product      `json:"data"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`

	// Cached is set when the page came from the page cache.
	Cached bool `json:"-"`
}

type CatalogService interface {
	Current() (*repository.Generation, error)
	ListProducts(ctx context.Context, spec model.FilterSpec, limit, offset int) (*ProductPage, error)
	FilterProducts(spec model.FilterSpec) ([]model.Product, error)
	GetProduct(sku string) (*model.Product, error)
	GetVariations(sku string) ([]model.Product, error)
	GetPricing(sku string, input *model.PriceInput) (*model.PriceBreakdown, error)
	GetDescription(sku string, format catalog.DescriptionFormat) (string, error)
	GetFacets() (*model.Facets, error)
	GetDashboardStats() (*model.DashboardStats, error)
}

type catalogService struct {
	repo   repository.CatalogRepository
	engine *query.Engine
	pages  cache.PageCache
	logger *zap.Logger
}

func NewCatalogService(repo repository.CatalogRepository, engine *query.Engine, pages cache.PageCache, logger *zap.Logger) CatalogService {
	if engine == nil {
		engine = query.NewEngine(nil)
	}
	if pages == nil {
		pages = cache.NopCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &catalogService{repo: repo, engine: engine, pages: pages, logger: logger}
}

func (s *catalogService) Current() (*repository.Generation, error) {
	g := s.repo.Current()
	if g == nil {
		return nil, ErrCatalogEmpty
	}
	return g, nil
}

// ListProducts filters the live generation and returns one page. Pages are
// cached per generation, so a new sync never serves stale entries.
func (s *catalogService) ListProducts(ctx context.Context, spec model.FilterSpec, limit, offset int) (*ProductPage, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	if err := validate(&spec); err != nil {
		return nil, err
	}
	g, err := s.Current()
	if err != nil {
		return nil, err
	}

	key := pageKey(g, spec, limit, offset)
	var cached ProductPage
	switch err := s.pages.Get(ctx, key, &cached); {
	case err == nil:
		cached.Cached = true
		return &cached, nil
	case !errors.Is(err, cache.ErrMiss):
		s.logger.Warn("page cache read failed", zap.String("key", key), zap.Error(err))
	}

	filtered := s.engine.Apply(g.Products, spec)
	start := min(offset, len(filtered))
	end := min(start+limit, len(filtered))
	page := &ProductPage{
		Total:  len(filtered),
		Stats:  catalog.CalculateStats(filtered),
		Data:   filtered[start:end],
		Limit:  limit,
		Offset: offset,
	}
	if err := s.pages.Set(ctx, key, page, pageTTL); err != nil {
		s.logger.Warn("page cache write failed", zap.String("key", key), zap.Error(err))
	}
	return page, nil
}

func pageKey(g *repository.Generation, spec model.FilterSpec, limit, offset int) string {
	raw, _ := json.Marshal(struct {
		Spec   model.FilterSpec
		Limit  int
		Offset int
	}{spec, limit, offset})
	return fmt.Sprintf(cache.ProductListKey, g.ID, fmt.Sprintf("%x", sha256.Sum256(raw)))
}

func (s *catalogService) FilterProducts(spec model.FilterSpec) ([]model.Product, error) {
	if err := validate(&spec); err != nil {
		return nil, err
	}
	g, err := s.Current()
	if err != nil {
		return nil, err
	}
	return s.engine.Apply(g.Products, spec), nil
}

func (s *catalogService) GetProduct(sku string) (*model.Product, error) {
	g, err := s.Current()
	if err != nil {
		return nil, err
	}
	return g.FindBySKU(sku)
}

func (s *catalogService) GetVariations(sku string) ([]model.Product, error) {
	g, err := s.Current()
	if err != nil {
		return nil, err
	}
	if _, err := g.FindBySKU(sku); err != nil {
		return nil, err
	}
	return catalog.Variations(g.Products, sku), nil
}

// GetPricing runs the resale calculator for a product. A nil input uses
// the default markup and fees; the wholesale price always comes from the
// catalog.
func (s *catalogService) GetPricing(sku string, input *model.PriceInput) (*model.PriceBreakdown, error) {
	p, err := s.GetProduct(sku)
	if err != nil {
		return nil, err
	}
	in := model.DefaultPriceInput(p.WholesalePrice)
	if input != nil {
		in = *input
		in.WholesalePrice = p.WholesalePrice
	}
	if err := validate(&in); err != nil {
		return nil, err
	}
	breakdown := catalog.CalculatePrice(in)
	return &breakdown, nil
}

func (s *catalogService) GetDescription(sku string, format catalog.DescriptionFormat) (string, error) {
	p, err := s.GetProduct(sku)
	if err != nil {
		return "", err
	}
	return catalog.Description(*p, format), nil
}

func (s *catalogService) GetFacets() (*model.Facets, error) {
	g, err := s.Current()
	if err != nil {
		return nil, err
	}
	return &g.Facets, nil
}

func (s *catalogService) GetDashboardStats() (*model.DashboardStats, error) {
	g, err := s.Current()
	if err != nil {
		return nil, err
	}
	return &g.Stats, nil
}

// validate reports the first failed rule as an ErrInvalidInput.
func validate(v interface{}) error {
	if errs := validator.ValidateStruct(v); len(errs) > 0 {
		firstErr := errs[0]
		return fmt.Errorf("%w: field '%s' failed on tag '%s'", ErrInvalidInput, firstErr.FailedField, firstErr.Tag)
	}
	return nil
}
