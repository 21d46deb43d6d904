package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avolkovs/keepsake/internal/server/blobstore"
	"github.com/avolkovs/keepsake/internal/server/config"
	"github.com/avolkovs/keepsake/internal/server/migrations"
	"github.com/avolkovs/keepsake/internal/server/refreshtokens"
	"github.com/avolkovs/keepsake/internal/server/shares"
	"github.com/avolkovs/keepsake/internal/server/users"
	"github.com/avolkovs/keepsake/internal/server/vault"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct {
	db            *sql.DB
	users         users.Repository
	refreshTokens refreshtokens.Repository
	trees         vault.TreeRepository
	blobs         blobstore.Store
	shares        shares.Repository
}

func (m *PostgresRepositoryManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *PostgresRepositoryManager) RefreshTokens() refreshtokens.Repository {
	return m.refreshTokens
}

func (m *PostgresRepositoryManager) Trees() vault.TreeRepository {
	return m.trees
}

func (m *PostgresRepositoryManager) Blobs() blobstore.Store {
	return m.blobs
}

func (m *PostgresRepositoryManager) Shares() shares.Repository {
	return m.shares
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}

	return nil
}

// NewPostgresRepositoryManager opens the database, builds all repositories
// and applies migrations. Content blobs go to S3 when the config selects the
// s3 backend; everything else always lives in Postgres.
func NewPostgresRepositoryManager(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	userRepo, err := users.NewPostgresRepository(db)
	if err != nil {
		return nil, fmt.Errorf("user repo creation error: %w", err)
	}

	refreshTokenRepo, err := refreshtokens.NewPostgresRepository(db)
	if err != nil {
		return nil, fmt.Errorf("refresh token repo creation error: %w", err)
	}

	treeRepo, err := vault.NewPostgresTreeRepository(db)
	if err != nil {
		return nil, fmt.Errorf("tree repo creation error: %w", err)
	}

	shareRepo, err := shares.NewPostgresRepository(db)
	if err != nil {
		return nil, fmt.Errorf("share repo creation error: %w", err)
	}

	var blobs blobstore.Store
	switch cfg.BlobBackend {
	case config.BlobBackendS3:
		blobs, err = blobstore.NewS3Store(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("s3 blob store creation error: %w", err)
		}
	case config.BlobBackendPostgres:
		blobs, err = blobstore.NewPostgresStore(db)
		if err != nil {
			return nil, fmt.Errorf("postgres blob store creation error: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown blob backend: %q", cfg.BlobBackend)
	}

	m := &PostgresRepositoryManager{
		db:            db,
		users:         userRepo,
		refreshTokens: refreshTokenRepo,
		trees:         treeRepo,
		blobs:         blobs,
		shares:        shareRepo,
	}

	if err := m.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
