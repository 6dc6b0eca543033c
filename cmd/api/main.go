package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go-feed-catalog/internal/cache"
	"go-feed-catalog/internal/catalog"
	"go-feed-catalog/internal/events"
	"go-feed-catalog/internal/export"
	"go-feed-catalog/internal/feed"
	"go-feed-catalog/internal/fetch"
	"go-feed-catalog/internal/handler"
	"go-feed-catalog/internal/middleware"
	"go-feed-catalog/internal/model"
	"go-feed-catalog/internal/query"
	"go-feed-catalog/internal/repository"
	"go-feed-catalog/internal/service"
	"go-feed-catalog/internal/ws"
	"go-feed-catalog/pkg/config"
	"go-feed-catalog/pkg/database"
	"go-feed-catalog/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Env
	cfg, dotenv, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()
	if !dotenv {
		zlog.Warn(".env file not found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Setup Sync History (Postgres when configured)
	historyRepo := repository.NewMemorySyncRunRepo(100)
	if cfg.HistoryEnabled() {
		db, err := database.ConnectDB(cfg.DatabaseURL, zlog)
		if err != nil {
			zlog.Fatal("failed to connect to database", zap.Error(err))
		}
		if err := db.AutoMigrate(&model.SyncRun{}); err != nil {
			zlog.Fatal("failed to migrate sync history", zap.Error(err))
		}
		historyRepo = repository.NewSyncRunRepo(db)
	} else {
		zlog.Info("DATABASE_URL not set, sync history kept in memory")
	}

	// 3. Setup Event Publisher
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.EventsEnabled() {
		publisher = events.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic, zlog)
		zlog.Info("catalog events enabled", zap.String("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}
	defer publisher.Close()

	// 4. Setup Page Cache (Redis when configured)
	var pages cache.PageCache = cache.NopCache{}
	if cfg.CacheEnabled() {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		redisCache, err := cache.NewRedisCache(pingCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cancel()
		if err != nil {
			zlog.Warn("redis unavailable, page cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			pages = redisCache
			defer redisCache.Close()
		}
	}

	// 5. Setup WebSocket Hub
	wsHub := ws.NewHub(zlog.Named("ws"))
	go wsHub.Run(ctx)

	// 6. Dependency Injection (Wiring Layers)
	fetcher := fetch.NewHTTPFetcher(fetch.Options{Timeout: cfg.FetchTimeout})
	parser := feed.NewParser(zlog.Named("feed"))
	syncer := catalog.NewSyncer(fetcher, parser, zlog.Named("sync"))
	bundler := export.NewImageBundler(fetcher, cfg.ImageFetchConcurrency, zlog.Named("images"))
	catalogRepo := repository.NewCatalogRepo()

	catalogService := service.NewCatalogService(catalogRepo, query.NewEngine(query.NewFuzzyMatcher()), pages, zlog.Named("catalog"))
	syncService := service.NewSyncService(
		syncer,
		parser,
		catalogRepo,
		historyRepo,
		wsHub,
		publisher,
		cfg.ProductFeedURL,
		cfg.StockFeedURL,
		zlog.Named("sync"),
	)
	exportService := service.NewExportService(catalogService, bundler, zlog.Named("export"))

	handlers := handler.Handlers{
		Catalog:   handler.NewCatalogHandler(catalogService, exportService),
		Dashboard: handler.NewDashboardHandler(catalogService),
		Export:    handler.NewExportHandler(exportService),
		Sync:      handler.NewSyncHandler(syncService),
	}

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:   cfg.AppName,
		BodyLimit: int(cfg.MaxUploadBytes),
	})

	// Middleware
	middleware.Use(app, zlog)

	// 8. Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":     "ok",
			"ws_clients": wsHub.ClientCount(),
			"sync":       syncService.Status(),
		})
	})

	api := app.Group("/api/v1")
	handler.Register(api, handlers, middleware.RequireOperator([]byte(cfg.JWTSecret)))

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !wsHub.Join(c) {
			return
		}
		defer wsHub.Leave(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 9. Auto Sync
	go syncService.RunScheduler(ctx, cfg.AutoSync, cfg.SyncInterval)

	// 10. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	zlog.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}

	zlog.Info("server exited")
}
