package shares

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/avolkovs/keepsake/internal/common"
)

type InMemoryRepository struct {
	mu     sync.RWMutex
	shares map[string]*Share
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{shares: make(map[string]*Share)}
}

func (r *InMemoryRepository) Create(ctx context.Context, share *Share) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	share.CreatedAt = time.Now()
	clone := *share
	r.shares[share.ID] = &clone
	return nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Share, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	share, ok := r.shares[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	clone := *share
	return &clone, nil
}

func (r *InMemoryRepository) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.shares[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.shares, id)
	return nil
}

func (r *InMemoryRepository) ListByUser(ctx context.Context, userID string) ([]*Share, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Share
	for _, share := range r.shares {
		if share.UserID == userID {
			clone := *share
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *InMemoryRepository) ListExpired(ctx context.Context, now time.Time) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for id, share := range r.shares {
		if share.Expired(now) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
