package blobstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avolkovs/keepsake/internal/common"
	"github.com/avolkovs/keepsake/internal/dbx"
)

// PostgresStore keeps content blobs in the contents table, one row per
// (user_id, path).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Get(ctx context.Context, userID, path string) (string, error) {

	query := `SELECT content FROM contents WHERE user_id = $1 AND path = $2`

	var content string
	err := s.db.QueryRowContext(ctx, query, userID, path).Scan(&content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("error performing sql request: %w", err)
	}

	return content, nil
}

func (s *PostgresStore) Put(ctx context.Context, userID, path, content string) error {

	query :=
		`INSERT INTO contents (user_id, path, content, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (user_id, path)
		 DO UPDATE SET content = EXCLUDED.content, updated_at = now()
		 `

	if _, err := s.db.ExecContext(ctx, query, userID, path, content); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID, path string) error {

	query := `DELETE FROM contents WHERE user_id = $1 AND path = $2`

	// Zero rows affected is fine: delete is idempotent.
	if _, err := s.db.ExecContext(ctx, query, userID, path); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	return nil
}

func (s *PostgresStore) Move(ctx context.Context, userID, oldPath, newPath string) error {

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM contents WHERE user_id = $1 AND path = $2`, userID, newPath); err != nil {
			return fmt.Errorf("error performing sql request: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE contents SET path = $3, updated_at = now() WHERE user_id = $1 AND path = $2`,
			userID, oldPath, newPath)
		if err != nil {
			return fmt.Errorf("error performing sql request: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return common.ErrorNotFound
		}

		return nil
	})
}
