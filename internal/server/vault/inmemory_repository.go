package vault

import (
	"context"
	"sync"
	"time"

	"github.com/avolkovs/keepsake/internal/common"
)

type InMemoryTreeRepository struct {
	mu    sync.RWMutex
	trees map[string]*TreeRecord
}

func NewInMemoryTreeRepository() *InMemoryTreeRepository {
	return &InMemoryTreeRepository{trees: make(map[string]*TreeRecord)}
}

func (r *InMemoryTreeRepository) Get(ctx context.Context, userID string) (*TreeRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.trees[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	clone := *rec
	return &clone, nil
}

func (r *InMemoryTreeRepository) Put(ctx context.Context, userID, tree string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.trees[userID] = &TreeRecord{UserID: userID, Tree: tree, UpdatedAt: time.Now()}
	return nil
}
