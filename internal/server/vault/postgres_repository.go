package vault

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avolkovs/keepsake/internal/common"
)

type PostgresTreeRepository struct {
	db *sql.DB
}

func NewPostgresTreeRepository(db *sql.DB) (*PostgresTreeRepository, error) {
	return &PostgresTreeRepository{db: db}, nil
}

func (r *PostgresTreeRepository) Get(ctx context.Context, userID string) (*TreeRecord, error) {

	query := `SELECT user_id, tree, updated_at FROM file_trees WHERE user_id = $1`

	rec := &TreeRecord{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&rec.UserID, &rec.Tree, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return rec, nil
}

func (r *PostgresTreeRepository) Put(ctx context.Context, userID, tree string) error {

	query :=
		`INSERT INTO file_trees (user_id, tree, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (user_id)
		 DO UPDATE SET tree = EXCLUDED.tree, updated_at = now()
		 `

	if _, err := r.db.ExecContext(ctx, query, userID, tree); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	return nil
}
