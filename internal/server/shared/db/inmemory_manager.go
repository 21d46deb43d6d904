package db

import (
	"context"
	"database/sql"

	"github.com/avolkovs/keepsake/internal/server/blobstore"
	"github.com/avolkovs/keepsake/internal/server/refreshtokens"
	"github.com/avolkovs/keepsake/internal/server/shares"
	"github.com/avolkovs/keepsake/internal/server/users"
	"github.com/avolkovs/keepsake/internal/server/vault"
)

// InMemoryRepositoryManager backs every repository with maps. Used by tests.
type InMemoryRepositoryManager struct {
	users         users.Repository
	refreshTokens refreshtokens.Repository
	trees         vault.TreeRepository
	blobs         blobstore.Store
	shares        shares.Repository
}

func NewInMemoryRepositoryManager() RepositoryManager {
	return &InMemoryRepositoryManager{
		users:         users.NewInMemoryRepository(),
		refreshTokens: refreshtokens.NewInMemoryRepository(),
		trees:         vault.NewInMemoryTreeRepository(),
		blobs:         blobstore.NewInMemoryStore(),
		shares:        shares.NewInMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) Conn() *sql.DB {
	return nil
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) RefreshTokens() refreshtokens.Repository {
	return m.refreshTokens
}

func (m *InMemoryRepositoryManager) Trees() vault.TreeRepository {
	return m.trees
}

func (m *InMemoryRepositoryManager) Blobs() blobstore.Store {
	return m.blobs
}

func (m *InMemoryRepositoryManager) Shares() shares.Repository {
	return m.shares
}
