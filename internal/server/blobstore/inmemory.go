package blobstore

import (
	"context"
	"sync"

	"github.com/avolkovs/keepsake/internal/common"
)

// InMemoryStore is a map-backed Store used by tests and by the in-memory
// repository manager.
type InMemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]map[string]string // userID -> path -> content
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{blobs: make(map[string]map[string]string)}
}

func (s *InMemoryStore) Get(ctx context.Context, userID, path string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.blobs[userID][path]
	if !ok {
		return "", common.ErrorNotFound
	}
	return content, nil
}

func (s *InMemoryStore) Put(ctx context.Context, userID, path, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.blobs[userID] == nil {
		s.blobs[userID] = make(map[string]string)
	}
	s.blobs[userID][path] = content
	return nil
}

func (s *InMemoryStore) Delete(ctx context.Context, userID, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs[userID], path)
	return nil
}

func (s *InMemoryStore) Move(ctx context.Context, userID, oldPath, newPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, ok := s.blobs[userID][oldPath]
	if !ok {
		return common.ErrorNotFound
	}
	s.blobs[userID][newPath] = content
	delete(s.blobs[userID], oldPath)
	return nil
}

// Len reports the number of blobs stored for userID. Test helper.
func (s *InMemoryStore) Len(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs[userID])
}
