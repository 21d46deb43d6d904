package shares

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avolkovs/keepsake/internal/common"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Create(ctx context.Context, share *Share) error {

	query :=
		`INSERT INTO shares (id, user_id, password_hash, strategy, max_date, iv, content)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		share.ID, share.UserID, share.PasswordHash, share.Strategy,
		share.MaxDate, share.IV, share.Content).Scan(&share.CreatedAt)

	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Share, error) {

	query :=
		`SELECT id, user_id, password_hash, strategy, max_date, iv, content, created_at
		 FROM shares WHERE id = $1
		 `

	share := &Share{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&share.ID, &share.UserID, &share.PasswordHash, &share.Strategy,
		&share.MaxDate, &share.IV, &share.Content, &share.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return share, nil
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) error {

	query := `DELETE FROM shares WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*Share, error) {

	query :=
		`SELECT id, user_id, password_hash, strategy, max_date, iv, content, created_at
		 FROM shares WHERE user_id = $1 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var out []*Share
	for rows.Next() {
		share := &Share{}
		if err := rows.Scan(
			&share.ID, &share.UserID, &share.PasswordHash, &share.Strategy,
			&share.MaxDate, &share.IV, &share.Content, &share.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		out = append(out, share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return out, nil
}

func (r *PostgresRepository) ListExpired(ctx context.Context, now time.Time) ([]string, error) {

	query := `SELECT id FROM shares WHERE max_date < $1`

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return ids, nil
}
