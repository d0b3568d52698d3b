package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/anime-shed/frame-inspector-go/pkg/models"
)

// MemoryAnalysisRepository keeps the most recent records in a fixed ring.
// Older records are evicted once capacity is reached.
type MemoryAnalysisRepository struct {
	mu   sync.RWMutex
	ring []*models.AnalysisRecord
	next int
	size int
	byID map[string]*models.AnalysisRecord
}

func NewMemoryAnalysisRepository(capacity int) *MemoryAnalysisRepository {
	if capacity < 1 {
		capacity = 1
	}
	return &MemoryAnalysisRepository{
		ring: make([]*models.AnalysisRecord, capacity),
		byID: make(map[string]*models.AnalysisRecord, capacity),
	}
}

func (r *MemoryAnalysisRepository) SaveAnalysis(ctx context.Context, record *models.AnalysisRecord) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("analysis record must have an id")
	}

	stored := *record

	r.mu.Lock()
	defer r.mu.Unlock()

	if old := r.ring[r.next]; old != nil {
		delete(r.byID, old.ID)
	}
	r.ring[r.next] = &stored
	r.byID[stored.ID] = &stored
	r.next = (r.next + 1) % len(r.ring)
	if r.size < len(r.ring) {
		r.size++
	}
	return nil
}

func (r *MemoryAnalysisRepository) GetAnalysis(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAnalysisNotFound, id)
	}
	out := *record
	return &out, nil
}

// ListRecent returns up to limit records, newest first. A limit <= 0 returns
// everything held.
func (r *MemoryAnalysisRepository) ListRecent(ctx context.Context, limit int) ([]*models.AnalysisRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > r.size {
		limit = r.size
	}
	out := make([]*models.AnalysisRecord, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (r.next - i + len(r.ring)) % len(r.ring)
		record := *r.ring[idx]
		out = append(out, &record)
	}
	return out, nil
}
