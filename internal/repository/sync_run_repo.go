package repository

import (
	"errors"
	"sort"
	"sync"
	"time"

	"go-feed-catalog/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNoSyncRuns = errors.New("no successful sync recorded")

type SyncRunRepository interface {
	Create(run *model.SyncRun) error
	Update(run *model.SyncRun) error
	FindRecent(limit int) ([]model.SyncRun, error)
	FindLastSucceeded() (*model.SyncRun, error)
}

type syncRunRepo struct {
	db *gorm.DB
}

func NewSyncRunRepo(db *gorm.DB) SyncRunRepository {
	return &syncRunRepo{db}
}

func (r *syncRunRepo) Create(run *model.SyncRun) error {
	return r.db.Create(run).Error
}

func (r *syncRunRepo) Update(run *model.SyncRun) error {
	return r.db.Save(run).Error
}

func (r *syncRunRepo) FindRecent(limit int) ([]model.SyncRun, error) {
	var runs []model.SyncRun
	err := r.db.Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

func (r *syncRunRepo) FindLastSucceeded() (*model.SyncRun, error) {
	var run model.SyncRun
	err := r.db.Where("status = ?", model.SyncStatusSucceeded).
		Order("finished_at DESC").
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSyncRuns
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// memorySyncRunRepo keeps history in process when no database is
// configured. Only the most recent runs are retained.
type memorySyncRunRepo struct {
	mu       sync.RWMutex
	runs     []model.SyncRun
	capacity int
}

func NewMemorySyncRunRepo(capacity int) SyncRunRepository {
	if capacity <= 0 {
		capacity = 100
	}
	return &memorySyncRunRepo{capacity: capacity}
}

func (r *memorySyncRunRepo) Create(run *model.SyncRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	run.CreatedAt = time.Now()
	run.UpdatedAt = run.CreatedAt
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, *run)
	if len(r.runs) > r.capacity {
		r.runs = r.runs[len(r.runs)-r.capacity:]
	}
	return nil
}

func (r *memorySyncRunRepo) Update(run *model.SyncRun) error {
	run.UpdatedAt = time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.runs {
		if r.runs[i].ID == run.ID {
			r.runs[i] = *run
			return nil
		}
	}
	r.runs = append(r.runs, *run)
	return nil
}

func (r *memorySyncRunRepo) FindRecent(limit int) ([]model.SyncRun, error) {
	r.mu.RLock()
	out := make([]model.SyncRun, len(r.runs))
	copy(out, r.runs)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memorySyncRunRepo) FindLastSucceeded() (*model.SyncRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.runs) - 1; i >= 0; i-- {
		if r.runs[i].Status == model.SyncStatusSucceeded {
			run := r.runs[i]
			return &run, nil
		}
	}
	return nil, ErrNoSyncRuns
}
