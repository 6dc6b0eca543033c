package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go-feed-catalog/internal/catalog"
	"go-feed-catalog/internal/events"
	"go-feed-catalog/internal/feed"
	"go-feed-catalog/internal/model"
	"go-feed-catalog/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrSyncInProgress = errors.New("a sync is already in progress")

// Websocket message types.
const (
	MsgSyncProgress   = "sync_progress"
	MsgSyncFailed     = "sync_failed"
	MsgFeedLoaded     = "feed_loaded"
	MsgCatalogUpdated = "catalog_updated"
)

// Broadcaster fans messages out to live clients without blocking.
type Broadcaster interface {
	Publish(msgType string, payload any)
}

type nopBroadcaster struct{}

func (nopBroadcaster) Publish(string, any) {}

// SyncRequest overrides the configured feed locations for one run.
type SyncRequest struct {
	ProductURL string `json:"product_url" validate:"omitempty,feed_url"`
	StockURL   string `json:"stock_url" validate:"omitempty,feed_url"`
}

type SyncStatus struct {
	Busy         bool             `json:"busy"`
	GenerationID string           `json:"generation_id,omitempty"`
	Source       model.SyncSource `json:"source,omitempty"`
	LastSyncedAt *time.Time       `json:"last_synced_at,omitempty"`
	ProductCount int              `json:"product_count"`
	StockCount   int              `json:"stock_count"`
	MergedCount  int              `json:"merged_count"`
}

type SyncService interface {
	Sync(ctx context.Context, req SyncRequest, operator string) (*model.SyncRun, error)
	LoadProductFeed(ctx context.Context, r io.Reader, operator string) (*model.SyncRun, error)
	LoadStockFeed(ctx context.Context, r io.Reader, operator string) (*model.SyncRun, error)
	Status() SyncStatus
	History(limit int) ([]model.SyncRun, error)
	RunScheduler(ctx context.Context, autoSync bool, interval time.Duration)
}

type syncService struct {
	syncer      *catalog.Syncer
	parser      *feed.Parser
	catalogRepo repository.CatalogRepository
	historyRepo repository.SyncRunRepository
	hub         Broadcaster
	publisher   events.Publisher
	logger      *zap.Logger

	productURL string
	stockURL   string

	busy atomic.Bool

	// Feeds held for re-merging after a single-feed upload.
	mu           sync.Mutex
	heldProducts []model.ProductFeedItem
	heldStock    []model.StockFeedItem
}

func NewSyncService(
	syncer *catalog.Syncer,
	parser *feed.Parser,
	catalogRepo repository.CatalogRepository,
	historyRepo repository.SyncRunRepository,
	hub Broadcaster,
	publisher events.Publisher,
	productURL, stockURL string,
	logger *zap.Logger,
) SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if hub == nil {
		hub = nopBroadcaster{}
	}
	if historyRepo == nil {
		historyRepo = repository.NewMemorySyncRunRepo(100)
	}
	return &syncService{
		syncer:      syncer,
		parser:      parser,
		catalogRepo: catalogRepo,
		historyRepo: historyRepo,
		hub:         hub,
		publisher:   publisher,
		logger:      logger,
		productURL:  productURL,
		stockURL:    stockURL,
	}
}

// Sync fetches both feeds and, only when everything succeeded, replaces the
// live catalog. A second caller while a run is active gets
// ErrSyncInProgress.
func (s *syncService) Sync(ctx context.Context, req SyncRequest, operator string) (*model.SyncRun, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer s.busy.Store(false)

	productURL, stockURL := s.productURL, s.stockURL
	if req.ProductURL != "" {
		productURL = req.ProductURL
	}
	if req.StockURL != "" {
		stockURL = req.StockURL
	}

	run := s.startRun(model.SourceRemote, operator)
	run.ProductURL = productURL
	run.StockURL = stockURL

	s.logger.Info("sync started",
		zap.String("run_id", run.ID.String()),
		zap.String("operator", operator),
		zap.String("product_url", productURL),
		zap.String("stock_url", stockURL))

	result, err := s.syncer.Run(ctx, productURL, stockURL, func(p catalog.SyncProgress) {
		s.hub.Publish(MsgSyncProgress, p)
	})
	if err != nil {
		s.failRun(run, err)
		return run, err
	}

	s.mu.Lock()
	s.heldProducts = result.ProductFeed
	s.heldStock = result.StockFeed
	s.mu.Unlock()

	g := repository.NewGenerationFromMerged(model.SourceRemote, result.Products, result.ProductFeed, result.StockFeed)
	s.commit(ctx, g, run)
	return run, nil
}

// LoadProductFeed parses an uploaded product feed and re-merges it with the
// stock feed currently held.
func (s *syncService) LoadProductFeed(ctx context.Context, r io.Reader, operator string) (*model.SyncRun, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer s.busy.Store(false)

	run := s.startRun(model.SourceProductFile, operator)
	products, err := s.parser.ParseProducts(ctx, r, s.uploadProgress(catalog.StageParsingProducts, "Parsing products"))
	if err != nil {
		err = fmt.Errorf("failed to parse product feed: %w", err)
		s.failRun(run, err)
		return run, err
	}

	s.mu.Lock()
	s.heldProducts = products
	stock := s.heldStock
	s.mu.Unlock()

	s.hub.Publish(MsgFeedLoaded, map[string]any{"kind": "products", "rows": len(products)})
	s.commit(ctx, repository.NewGeneration(model.SourceProductFile, products, stock), run)
	return run, nil
}

// LoadStockFeed parses an uploaded stock feed. The catalog is rebuilt only
// when a product feed is already held.
func (s *syncService) LoadStockFeed(ctx context.Context, r io.Reader, operator string) (*model.SyncRun, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer s.busy.Store(false)

	run := s.startRun(model.SourceStockFile, operator)
	stock, err := s.parser.ParseStock(ctx, r, s.uploadProgress(catalog.StageParsingStock, "Parsing stock"))
	if err != nil {
		err = fmt.Errorf("failed to parse stock feed: %w", err)
		s.failRun(run, err)
		return run, err
	}

	s.mu.Lock()
	s.heldStock = stock
	products := s.heldProducts
	s.mu.Unlock()

	s.hub.Publish(MsgFeedLoaded, map[string]any{"kind": "stock", "rows": len(stock)})
	if products == nil {
		run.StockCount = len(stock)
		s.finishRun(run, model.SyncStatusHeld, nil)
		s.logger.Info("stock feed held until a product feed is loaded", zap.Int("stock_rows", len(stock)))
		return run, nil
	}
	s.commit(ctx, repository.NewGeneration(model.SourceStockFile, products, stock), run)
	return run, nil
}

func (s *syncService) Status() SyncStatus {
	status := SyncStatus{Busy: s.busy.Load()}
	g := s.catalogRepo.Current()
	if g == nil {
		return status
	}
	status.GenerationID = g.ID.String()
	status.Source = g.Source
	status.ProductCount = len(g.ProductFeed)
	status.StockCount = len(g.StockFeed)
	status.MergedCount = len(g.Products)

	syncedAt := g.SyncedAt
	if last, err := s.historyRepo.FindLastSucceeded(); err == nil && last.FinishedAt != nil {
		syncedAt = *last.FinishedAt
	}
	status.LastSyncedAt = &syncedAt
	return status
}

func (s *syncService) History(limit int) ([]model.SyncRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.historyRepo.FindRecent(limit)
}

// RunScheduler syncs once on start when autoSync is set, then on every
// interval tick until ctx is done. A tick that finds a sync running is
// skipped.
func (s *syncService) RunScheduler(ctx context.Context, autoSync bool, interval time.Duration) {
	if autoSync {
		s.scheduledSync(ctx)
	}
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scheduledSync(ctx)
		}
	}
}

func (s *syncService) scheduledSync(ctx context.Context) {
	_, err := s.Sync(ctx, SyncRequest{}, "system")
	switch {
	case err == nil:
	case errors.Is(err, ErrSyncInProgress):
		s.logger.Debug("scheduled sync skipped, another sync is running")
	case ctx.Err() != nil:
		s.logger.Info("scheduled sync cancelled")
	default:
		s.logger.Error("scheduled sync failed", zap.Error(err))
	}
}

func (s *syncService) uploadProgress(stage catalog.Stage, label string) feed.ProgressFunc {
	return func(p feed.Progress) {
		s.hub.Publish(MsgSyncProgress, catalog.SyncProgress{
			Stage:   stage,
			Percent: p.Percent,
			Message: fmt.Sprintf("%s: %d%%", label, int(math.Round(p.Percent))),
		})
	}
}

func (s *syncService) startRun(source model.SyncSource, operator string) *model.SyncRun {
	run := &model.SyncRun{
		Source:    source,
		Status:    model.SyncStatusRunning,
		StartedAt: time.Now(),
	}
	run.ID = uuid.New()
	run.CreatedBy = operator
	if err := s.historyRepo.Create(run); err != nil {
		s.logger.Warn("failed to record sync run", zap.Error(err))
	}
	return run
}

func (s *syncService) finishRun(run *model.SyncRun, status string, runErr error) {
	now := time.Now()
	run.FinishedAt = &now
	run.Status = status
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if err := s.historyRepo.Update(run); err != nil {
		s.logger.Warn("failed to update sync run", zap.String("run_id", run.ID.String()), zap.Error(err))
	}
}

func (s *syncService) failRun(run *model.SyncRun, err error) {
	s.finishRun(run, model.SyncStatusFailed, err)
	s.logger.Error("sync failed",
		zap.String("run_id", run.ID.String()),
		zap.String("source", string(run.Source)),
		zap.Error(err))
	s.hub.Publish(MsgSyncFailed, syncFailure{RunID: run.ID.String(), Error: err.Error()})
}

// commit swaps in the new generation and announces it.
func (s *syncService) commit(ctx context.Context, g *repository.Generation, run *model.SyncRun) {
	s.catalogRepo.Replace(g)

	run.ProductCount = len(g.ProductFeed)
	run.StockCount = len(g.StockFeed)
	run.MergedCount = len(g.Products)
	s.finishRun(run, model.SyncStatusSucceeded, nil)

	s.logger.Info("catalog updated",
		zap.String("run_id", run.ID.String()),
		zap.String("generation_id", g.ID.String()),
		zap.String("source", string(g.Source)),
		zap.Int("products", run.MergedCount),
		zap.Int("stock_rows", run.StockCount))

	event := events.CatalogSyncedEvent{
		EventID:      uuid.NewString(),
		Type:         events.TypeCatalogSynced,
		GenerationID: g.ID.String(),
		Source:       g.Source,
		ProductCount: run.ProductCount,
		StockCount:   run.StockCount,
		MergedCount:  run.MergedCount,
		Stats:        g.Stats,
		Timestamp:    g.SyncedAt.UTC(),
	}
	s.hub.Publish(MsgCatalogUpdated, event)

	// Publish failures never roll back the generation.
	if err := s.publisher.PublishCatalogSynced(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn("failed to publish catalog event", zap.String("generation_id", g.ID.String()), zap.Error(err))
	}
}

type syncFailure struct {
	RunID string `json:"run_id"`
	Error string `json:"error"`
}
