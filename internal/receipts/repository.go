package receipts

import (
	"context"
	"sync"
)

// Repository provides receipt persistence operations.
type Repository interface {
	Save(ctx context.Context, r *Receipt) error
	Get(ctx context.Context, submissionID string) (*Receipt, error)
}

// MemoryRepository keeps receipts in process memory. Used by the dev server
// and as the fallback when Redis is not configured.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]Receipt
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]Receipt)}
}

func (m *MemoryRepository) Save(ctx context.Context, r *Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[r.SubmissionID] = *r
	return nil
}

func (m *MemoryRepository) Get(ctx context.Context, submissionID string) (*Receipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.store[submissionID]
	if !ok {
		return nil, nil
	}
	cp := r
	return &cp, nil
}
