package shares

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, share *Share) error
	GetByID(ctx context.Context, id string) (*Share, error)
	DeleteByID(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]*Share, error)
	// ListExpired returns the ids of shares whose max date is before now.
	ListExpired(ctx context.Context, now time.Time) ([]string, error)
}
