package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"go-feed-catalog/internal/cache"
	"go-feed-catalog/internal/catalog"
	"go-feed-catalog/internal/events"
	"go-feed-catalog/internal/feed"
	"go-feed-catalog/internal/model"
	"go-feed-catalog/internal/repository"
)

const (
	productFeed = "sku\ttitle\tcategory\tcolour\tshort_description\timages\n" +
		"CHAIR-BLK\tChair Black\tFurniture\tBlack\tA <b>sturdy</b> chair\thttp://img.example/c1.jpg\n" +
		"CHAIR-WHT\tChair White\tFurniture\tWhite\tA chair\thttp://img.example/c2.jpg\n" +
		"TABLE\tDining Table\tFurniture\tOak\tA table\t\n"
	stockFeed = "sku,stock,price,wholesale_price\n" +
		"CHAIR-BLK,25,49.99,20\n" +
		"CHAIR-WHT,4,49.99,20\n" +
		"TABLE,0,199,90\n"
)

var errStatus = errors.New("unexpected response status: 404 Not Found")

type stubFetcher struct {
	docs map[string]string

	// When gate is set every fetch waits for it to close.
	gate  chan struct{}
	began chan struct{}
	once  sync.Once
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	if f.gate != nil {
		f.once.Do(func() { close(f.began) })
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	body, ok := f.docs[url]
	if !ok {
		return nil, errStatus
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

type recordingHub struct {
	mu    sync.Mutex
	types []string
}

func (h *recordingHub) Publish(msgType string, _ any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.types = append(h.types, msgType)
}

func (h *recordingHub) count(msgType string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, t := range h.types {
		if t == msgType {
			n++
		}
	}
	return n
}

type recordingPublisher struct {
	events []events.CatalogSyncedEvent
	err    error
}

func (p *recordingPublisher) PublishCatalogSynced(_ context.Context, ev events.CatalogSyncedEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	fetcher   *stubFetcher
	hub       *recordingHub
	publisher *recordingPublisher
	catalog   repository.CatalogRepository
	history   repository.SyncRunRepository
	sync      SyncService
	reads     CatalogService
}

func newFixture() *fixture {
	f := &fixture{
		fetcher:   &stubFetcher{docs: map[string]string{"http://feeds.example/p.txt": productFeed, "http://feeds.example/s.csv": stockFeed}},
		hub:       &recordingHub{},
		publisher: &recordingPublisher{},
		catalog:   repository.NewCatalogRepo(),
		history:   repository.NewMemorySyncRunRepo(10),
	}
	parser := feed.NewParser(nil)
	f.sync = NewSyncService(
		catalog.NewSyncer(f.fetcher, parser, nil),
		parser,
		f.catalog,
		f.history,
		f.hub,
		f.publisher,
		"http://feeds.example/p.txt",
		"http://feeds.example/s.csv",
		nil,
	)
	f.reads = NewCatalogService(f.catalog, nil, nil, nil)
	return f
}

func TestSync_CommitsGeneration(t *testing.T) {
	f := newFixture()

	run, err := f.sync.Sync(context.Background(), SyncRequest{}, "ops")
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != model.SyncStatusSucceeded || run.MergedCount != 3 || run.StockCount != 3 || run.CreatedBy != "ops" {
		t.Fatalf("unexpected run: %+v", run)
	}

	g := f.catalog.Current()
	if g == nil || len(g.Products) != 3 {
		t.Fatalf("expected a 3-product generation, got %+v", g)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].GenerationID != g.ID.String() {
		t.Fatalf("unexpected events: %+v", f.publisher.events)
	}
	if f.hub.count(MsgCatalogUpdated) != 1 || f.hub.count(MsgSyncProgress) == 0 {
		t.Fatalf("unexpected hub messages: %v", f.hub.types)
	}

	status := f.sync.Status()
	if status.Busy || status.GenerationID != g.ID.String() || status.MergedCount != 3 || status.LastSyncedAt == nil {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestSync_FailureKeepsPreviousGeneration(t *testing.T) {
	f := newFixture()
	if _, err := f.sync.Sync(context.Background(), SyncRequest{}, "ops"); err != nil {
		t.Fatal(err)
	}
	before := f.catalog.Current()

	run, err := f.sync.Sync(context.Background(), SyncRequest{StockURL: "http://feeds.example/missing.csv"}, "ops")
	if err == nil || !strings.Contains(err.Error(), "failed to fetch stock feed: unexpected response status: 404 Not Found") {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Status != model.SyncStatusFailed || run.Error == "" {
		t.Fatalf("unexpected run: %+v", run)
	}
	if f.catalog.Current() != before {
		t.Fatal("failed sync replaced the generation")
	}
	if f.hub.count(MsgSyncFailed) != 1 || len(f.publisher.events) != 1 {
		t.Fatalf("unexpected notifications: hub=%v events=%d", f.hub.types, len(f.publisher.events))
	}

	runs, err := f.sync.History(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].Status != model.SyncStatusFailed {
		t.Fatalf("unexpected history: %+v", runs)
	}
}

func TestSync_PublishErrorIsNotFatal(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("broker down")
	if _, err := f.sync.Sync(context.Background(), SyncRequest{}, "ops"); err != nil {
		t.Fatalf("publish failure should not fail the sync: %v", err)
	}
	if f.catalog.Current() == nil {
		t.Fatal("expected generation to be committed")
	}
}

func TestSync_RejectsConcurrentRun(t *testing.T) {
	f := newFixture()
	f.fetcher.gate = make(chan struct{})
	f.fetcher.began = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.sync.Sync(context.Background(), SyncRequest{}, "first")
		done <- err
	}()
	<-f.fetcher.began

	if !f.sync.Status().Busy {
		t.Fatal("expected busy status")
	}
	if _, err := f.sync.Sync(context.Background(), SyncRequest{}, "second"); !errors.Is(err, ErrSyncInProgress) {
		t.Fatalf("expected ErrSyncInProgress, got %v", err)
	}
	if _, err := f.sync.LoadStockFeed(context.Background(), strings.NewReader(stockFeed), "second"); !errors.Is(err, ErrSyncInProgress) {
		t.Fatalf("expected ErrSyncInProgress for upload, got %v", err)
	}

	close(f.fetcher.gate)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if f.sync.Status().Busy {
		t.Fatal("busy flag not released")
	}
}

func TestSync_InvalidOverride(t *testing.T) {
	f := newFixture()
	_, err := f.sync.Sync(context.Background(), SyncRequest{ProductURL: "file:///etc/passwd"}, "ops")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUploads_ReMerge(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	run, err := f.sync.LoadStockFeed(ctx, strings.NewReader(stockFeed), "ops")
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != model.SyncStatusHeld || run.StockCount != 3 {
		t.Fatalf("unexpected run: %+v", run)
	}
	if f.catalog.Current() != nil {
		t.Fatal("stock alone must not build a catalog")
	}
	if _, err := f.history.FindLastSucceeded(); err == nil {
		t.Fatal("a held stock feed must not count as a successful sync")
	}

	productRun, err := f.sync.LoadProductFeed(ctx, strings.NewReader(productFeed), "ops")
	if err != nil {
		t.Fatal(err)
	}
	if status := f.sync.Status(); status.LastSyncedAt == nil || !status.LastSyncedAt.Equal(*productRun.FinishedAt) {
		t.Fatalf("last synced at should come from the committing run: %+v", status)
	}
	g := f.catalog.Current()
	if g == nil || g.Source != model.SourceProductFile {
		t.Fatalf("unexpected generation: %+v", g)
	}
	p, err := g.FindBySKU("chair-blk")
	if err != nil {
		t.Fatal(err)
	}
	if p.StockQuantity != 25 || p.StockStatus != model.InStock {
		t.Fatalf("stock not merged: %+v", p)
	}

	update := "sku,stock\nCHAIR-BLK,0\n"
	if _, err := f.sync.LoadStockFeed(ctx, strings.NewReader(update), "ops"); err != nil {
		t.Fatal(err)
	}
	p, _ = f.catalog.Current().FindBySKU("CHAIR-BLK")
	if p.StockStatus != model.OutOfStock {
		t.Fatalf("expected re-merge with new stock, got %+v", p)
	}
	if f.hub.count(MsgFeedLoaded) != 3 {
		t.Fatalf("unexpected hub messages: %v", f.hub.types)
	}
}

func TestNewSyncService_Defaults(t *testing.T) {
	parser := feed.NewParser(nil)
	svc := NewSyncService(nil, parser, repository.NewCatalogRepo(), nil, nil, nil, "", "", nil)

	run, err := svc.LoadProductFeed(context.Background(), strings.NewReader(productFeed), "ops")
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != model.SyncStatusSucceeded || run.MergedCount != 3 {
		t.Fatalf("unexpected run: %+v", run)
	}
	if runs, err := svc.History(0); err != nil || len(runs) != 1 {
		t.Fatalf("history: %v (err %v)", runs, err)
	}
}

func TestRunScheduler_AutoSyncOnce(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	f.sync.RunScheduler(ctx, true, 0)
	if f.catalog.Current() == nil {
		t.Fatal("expected auto sync to build a catalog")
	}
}

func TestRunScheduler_StopsWithContext(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		f.sync.RunScheduler(ctx, false, 10*time.Millisecond)
		close(done)
	}()

	deadline := time.After(5 * time.Second)
	for f.catalog.Current() == nil {
		select {
		case <-deadline:
			t.Fatal("scheduler never synced")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestCatalogService_Empty(t *testing.T) {
	f := newFixture()
	if _, err := f.reads.ListProducts(context.Background(), model.DefaultFilterSpec(), 10, 0); !errors.Is(err, ErrCatalogEmpty) {
		t.Fatalf("expected ErrCatalogEmpty, got %v", err)
	}
	if _, err := f.reads.GetDashboardStats(); !errors.Is(err, ErrCatalogEmpty) {
		t.Fatalf("expected ErrCatalogEmpty, got %v", err)
	}
}

func TestCatalogService_Reads(t *testing.T) {
	f := newFixture()
	if _, err := f.sync.Sync(context.Background(), SyncRequest{}, "ops"); err != nil {
		t.Fatal(err)
	}

	page, err := f.reads.ListProducts(context.Background(), model.DefaultFilterSpec(), 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 3 || len(page.Data) != 2 || page.Stats.TotalProducts != 3 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Data[0].SKU != "CHAIR-WHT" || page.Data[1].SKU != "TABLE" {
		t.Fatalf("unexpected page order: %s, %s", page.Data[0].SKU, page.Data[1].SKU)
	}

	page, err = f.reads.ListProducts(context.Background(), model.DefaultFilterSpec(), 10, 50)
	if err != nil || len(page.Data) != 0 || page.Total != 3 {
		t.Fatalf("offset past end: page=%+v err=%v", page, err)
	}

	bad := model.DefaultFilterSpec()
	bad.SortBy = "colour"
	if _, err := f.reads.ListProducts(context.Background(), bad, 10, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	variations, err := f.reads.GetVariations("chair-blk")
	if err != nil || len(variations) != 1 || variations[0].SKU != "CHAIR-WHT" {
		t.Fatalf("unexpected variations %v (err %v)", variations, err)
	}
	if _, err := f.reads.GetVariations("NOPE"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	pricing, err := f.reads.GetPricing("CHAIR-BLK", nil)
	if err != nil {
		t.Fatal(err)
	}
	if pricing.WholesalePrice != 20 || pricing.SellingPrice != 26 {
		t.Fatalf("unexpected pricing: %+v", pricing)
	}

	custom := model.DefaultPriceInput(999)
	custom.MarkupPercent = 50
	pricing, err = f.reads.GetPricing("CHAIR-BLK", &custom)
	if err != nil || pricing.WholesalePrice != 20 || pricing.SellingPrice != 30 {
		t.Fatalf("custom pricing: %+v (err %v)", pricing, err)
	}

	for _, fee := range []float64{math.Inf(1), math.NaN(), 1001} {
		bad := model.DefaultPriceInput(0)
		bad.PaypalFixedFee = fee
		if _, err := f.reads.GetPricing("CHAIR-BLK", &bad); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("fixed fee %v: expected ErrInvalidInput, got %v", fee, err)
		}
	}

	desc, err := f.reads.GetDescription("CHAIR-BLK", catalog.FormatPlain)
	if err != nil || desc != "A sturdy chair" {
		t.Fatalf("unexpected description %q (err %v)", desc, err)
	}

	facets, err := f.reads.GetFacets()
	if err != nil || len(facets.Colors) != 3 {
		t.Fatalf("unexpected facets %+v (err %v)", facets, err)
	}
}

type memoryCache struct {
	entries map[string][]byte
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, data interface{}, _ time.Duration) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func TestCatalogService_PageCache(t *testing.T) {
	f := newFixture()
	pages := &memoryCache{entries: map[string][]byte{}}
	reads := NewCatalogService(f.catalog, nil, pages, nil)
	ctx := context.Background()
	if _, err := f.sync.Sync(ctx, SyncRequest{}, "ops"); err != nil {
		t.Fatal(err)
	}

	first, err := reads.ListProducts(ctx, model.DefaultFilterSpec(), 2, 0)
	if err != nil || first.Cached {
		t.Fatalf("first call: cached=%v err=%v", first != nil && first.Cached, err)
	}
	second, err := reads.ListProducts(ctx, model.DefaultFilterSpec(), 2, 0)
	if err != nil || !second.Cached {
		t.Fatalf("second call should hit the cache (err %v)", err)
	}
	if second.Total != first.Total || second.Data[0].SKU != first.Data[0].SKU {
		t.Fatalf("cached page differs: %+v vs %+v", second, first)
	}

	other, err := reads.ListProducts(ctx, model.DefaultFilterSpec(), 2, 1)
	if err != nil || other.Cached {
		t.Fatalf("different window must miss (err %v)", err)
	}

	if _, err := f.sync.Sync(ctx, SyncRequest{}, "ops"); err != nil {
		t.Fatal(err)
	}
	fresh, err := reads.ListProducts(ctx, model.DefaultFilterSpec(), 2, 0)
	if err != nil || fresh.Cached {
		t.Fatalf("new generation must miss (err %v)", err)
	}
	if len(pages.entries) != 3 {
		t.Fatalf("expected 3 cached pages, got %d", len(pages.entries))
	}
}
