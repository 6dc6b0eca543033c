package repository

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"go-feed-catalog/internal/catalog"
	"go-feed-catalog/internal/model"

	"github.com/google/uuid"
)

var ErrProductNotFound = errors.New("product not found")

// Generation is one complete, immutable catalog build. Readers holding a
// generation keep seeing it even after a newer one is stored.
type Generation struct {
	ID       uuid.UUID
	Source   model.SyncSource
	SyncedAt time.Time
	Products []model.Product
	Stats    model.DashboardStats
	Facets   model.Facets

	// Raw feeds the products were merged from.
	ProductFeed []model.ProductFeedItem
	StockFeed   []model.StockFeedItem

	bySKU map[string]int
}

// NewGeneration merges the feeds and precomputes stats, facets and the SKU
// index.
func NewGeneration(source model.SyncSource, products []model.ProductFeedItem, stock []model.StockFeedItem) *Generation {
	return newGeneration(source, catalog.Merge(products, stock), products, stock)
}

// NewGenerationFromMerged wraps an already merged product set.
func NewGenerationFromMerged(source model.SyncSource, merged []model.Product, products []model.ProductFeedItem, stock []model.StockFeedItem) *Generation {
	return newGeneration(source, merged, products, stock)
}

func newGeneration(source model.SyncSource, merged []model.Product, products []model.ProductFeedItem, stock []model.StockFeedItem) *Generation {
	g := &Generation{
		ID:          uuid.New(),
		Source:      source,
		SyncedAt:    time.Now(),
		Products:    merged,
		Stats:       catalog.CalculateStats(merged),
		Facets:      catalog.ExtractFacets(merged),
		ProductFeed: products,
		StockFeed:   stock,
		bySKU:       make(map[string]int, len(merged)),
	}
	for i := range merged {
		g.bySKU[strings.ToLower(merged[i].SKU)] = i
	}
	return g
}

// FindBySKU looks a product up case-insensitively.
func (g *Generation) FindBySKU(sku string) (*model.Product, error) {
	i, ok := g.bySKU[strings.ToLower(strings.TrimSpace(sku))]
	if !ok {
		return nil, ErrProductNotFound
	}
	p := g.Products[i]
	return &p, nil
}

type CatalogRepository interface {
	// Current returns the live generation, or nil before the first build.
	Current() *Generation
	// Replace makes g the live generation in a single step.
	Replace(g *Generation)
}

type catalogRepo struct {
	current atomic.Pointer[Generation]
}

func NewCatalogRepo() CatalogRepository {
	return &catalogRepo{}
}

func (r *catalogRepo) Current() *Generation {
	return r.current.Load()
}

func (r *catalogRepo) Replace(g *Generation) {
	r.current.Store(g)
}
