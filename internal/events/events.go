package events

import (
	"context"
	"time"

	"go-feed-catalog/internal/model"
)

const TypeCatalogSynced = "catalog.synced"

// CatalogSyncedEvent announces a newly committed catalog generation.
type CatalogSyncedEvent struct {
	EventID      string               `json:"event_id"`
	Type         string               `json:"type"`
	GenerationID string               `json:"generation_id"`
	Source       model.SyncSource     `json:"source"`
	ProductCount int                  `json:"product_count"`
	StockCount   int                  `json:"stock_count"`
	MergedCount  int                  `json:"merged_count"`
	Stats        model.DashboardStats `json:"stats"`
	Timestamp    time.Time            `json:"timestamp"`
}

type Publisher interface {
	PublishCatalogSynced(ctx context.Context, event CatalogSyncedEvent) error
	Close() error
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishCatalogSynced(context.Context, CatalogSyncedEvent) error { return nil }
func (NopPublisher) Close() error                                                 { return nil }
