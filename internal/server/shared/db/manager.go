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

// RepositoryManager owns the storage connections and hands out the
// per-entity repositories built on them.
type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Users() users.Repository
	RefreshTokens() refreshtokens.Repository
	Trees() vault.TreeRepository
	Blobs() blobstore.Store
	Shares() shares.Repository
}
