package model

import "time"

type SyncSource string

const (
	SourceRemote      SyncSource = "remote"
	SourceProductFile SyncSource = "product_upload"
	SourceStockFile   SyncSource = "stock_upload"
)

const (
	SyncStatusRunning   = "running"
	SyncStatusSucceeded = "succeeded"
	SyncStatusFailed    = "failed"
	// The feed was parsed and kept but no catalog was built from it.
	SyncStatusHeld      = "held"
)

// SyncRun is one attempt at building a catalog generation.
type SyncRun struct {
	BaseModel
	Source       SyncSource `gorm:"type:varchar(20);not null" json:"source"`
	Status       string     `gorm:"type:varchar(20);not null;index" json:"status"`
	ProductURL   string     `gorm:"type:text" json:"product_url,omitempty"`
	StockURL     string     `gorm:"type:text" json:"stock_url,omitempty"`
	ProductCount int        `gorm:"default:0" json:"product_count"`
	StockCount   int        `gorm:"default:0" json:"stock_count"`
	MergedCount  int        `gorm:"default:0" json:"merged_count"`
	Error        string     `gorm:"type:text" json:"error,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}
