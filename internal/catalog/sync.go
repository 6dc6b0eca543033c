package catalog

import (
	"context"
	"fmt"
	"io"
	"math"

	"go-feed-catalog/internal/feed"
	"go-feed-catalog/internal/model"

	"go.uber.org/zap"
)

// Fetcher retrieves a remote feed document. A non-success response must be
// returned as an error carrying the remote status text.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

type Stage string

const (
	StageFetchingProducts Stage = "fetching-products"
	StageParsingProducts  Stage = "parsing-products"
	StageFetchingStock    Stage = "fetching-stock"
	StageParsingStock     Stage = "parsing-stock"
	StageMerging          Stage = "merging"
	StageComplete         Stage = "complete"
)

type SyncProgress struct {
	Stage   Stage   `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

type SyncProgressFunc func(SyncProgress)

type SyncResult struct {
	Products     []model.Product      `json:"products"`
	Stats        model.DashboardStats `json:"stats"`
	ProductCount int                  `json:"product_count"`
	StockCount   int                  `json:"stock_count"`

	// Parsed feeds, kept so a later single-feed upload can re-merge.
	ProductFeed []model.ProductFeedItem `json:"-"`
	StockFeed   []model.StockFeedItem   `json:"-"`
}

// Syncer pulls both feeds and builds a merged product set. It keeps no
// state between runs; callers decide what to do with the result.
type Syncer struct {
	fetcher Fetcher
	parser  *feed.Parser
	logger  *zap.Logger
}

func NewSyncer(fetcher Fetcher, parser *feed.Parser, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{fetcher: fetcher, parser: parser, logger: logger}
}

// Run fetches, parses and merges the product and stock feeds. Any failure
// aborts the run and nothing partial is returned.
func (s *Syncer) Run(ctx context.Context, productURL, stockURL string, onProgress SyncProgressFunc) (*SyncResult, error) {
	report := func(stage Stage, percent float64, msg string) {
		if onProgress != nil {
			onProgress(SyncProgress{Stage: stage, Percent: percent, Message: msg})
		}
	}

	report(StageFetchingProducts, 0, "Fetching product feed...")
	productBody, err := s.fetcher.Fetch(ctx, productURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product feed: %w", err)
	}
	report(StageParsingProducts, 20, "Parsing product feed...")
	products, err := s.parser.ParseProducts(ctx, productBody, func(p feed.Progress) {
		report(StageParsingProducts, 20+p.Percent*0.2, fmt.Sprintf("Parsing products: %d%%", int(math.Round(p.Percent))))
	})
	productBody.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to parse product feed: %w", err)
	}
	s.logger.Info("product feed parsed", zap.Int("products", len(products)))

	report(StageFetchingStock, 40, "Fetching stock feed...")
	stockBody, err := s.fetcher.Fetch(ctx, stockURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stock feed: %w", err)
	}
	report(StageParsingStock, 60, "Parsing stock feed...")
	stock, err := s.parser.ParseStock(ctx, stockBody, func(p feed.Progress) {
		report(StageParsingStock, 60+p.Percent*0.2, fmt.Sprintf("Parsing stock: %d%%", int(math.Round(p.Percent))))
	})
	stockBody.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to parse stock feed: %w", err)
	}
	s.logger.Info("stock feed parsed", zap.Int("stock_rows", len(stock)))

	report(StageMerging, 80, "Merging product and stock data...")
	merged := Merge(products, stock)
	stats := CalculateStats(merged)

	report(StageComplete, 100, "Sync complete!")
	return &SyncResult{
		Products:     merged,
		Stats:        stats,
		ProductCount: len(products),
		StockCount:   len(stock),
		ProductFeed:  products,
		StockFeed:    stock,
	}, nil
}
