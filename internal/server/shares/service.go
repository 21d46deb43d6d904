package shares

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avolkovs/keepsake/internal/common"
	"github.com/avolkovs/keepsake/internal/cryptox"
	"github.com/google/uuid"
)

type Service struct {
	repo Repository
	// now is a test seam; real code uses time.Now.
	now func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create stores a new share and returns its opaque identifier. The server
// hashes the optional password but never sees the share plaintext: content
// and IV arrive already encrypted under the share scheme.
func (s *Service) Create(ctx context.Context, userID, strategy string, maxDate time.Time, password, iv, content string) (*Share, error) {

	if strategy != StrategyOneRead && strategy != StrategyMultipleRead {
		return nil, fmt.Errorf("%w: unknown strategy %q", common.ErrorInvalidInput, strategy)
	}
	if content == "" || iv == "" {
		return nil, fmt.Errorf("%w: empty content", common.ErrorInvalidInput)
	}
	if maxDate.Before(s.now()) {
		return nil, fmt.Errorf("%w: max date in the past", common.ErrorInvalidInput)
	}

	share := &Share{
		ID:       uuid.NewString(),
		UserID:   userID,
		Strategy: strategy,
		MaxDate:  maxDate,
		IV:       iv,
		Content:  content,
	}
	if password != "" {
		share.PasswordHash = cryptox.HashSharePassword(password)
	}

	if err := s.repo.Create(ctx, share); err != nil {
		return nil, fmt.Errorf("error creating share: %w", err)
	}

	return share, nil
}

// Fetch resolves a share for an anonymous reader.
//
// Lifecycle rules, in order:
//   - unknown id               -> common.ErrorNotFound
//   - past max date            -> common.ErrorExpired, record deleted now
//   - password missing/wrong   -> common.ErrPasswordRequired
//   - one-read strategy        -> record deleted before the content is returned
//
// The expired-vs-missing distinction is deliberate: 410 tells the reader the
// link existed and is gone for good, 404 that it never existed.
func (s *Service) Fetch(ctx context.Context, id, password string) (*Share, error) {

	share, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	if share.Expired(s.now()) {
		if err := s.repo.DeleteByID(ctx, id); err != nil && !errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInternal
		}
		return nil, common.ErrorExpired
	}

	if share.Protected() && !cryptox.VerifySharePassword(share.PasswordHash, password) {
		return nil, common.ErrPasswordRequired
	}

	if share.Strategy == StrategyOneRead {
		// Delete synchronously so a second reader gets NotFound even if the
		// first response is still in flight.
		if err := s.repo.DeleteByID(ctx, id); err != nil && !errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInternal
		}
	}

	return share, nil
}

// Delete removes a share on behalf of its owner. A share owned by
// someone else reads as missing so the call does not confirm the id.
func (s *Service) Delete(ctx context.Context, userID, id string) error {

	share, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if share.UserID != userID {
		return common.ErrorNotFound
	}

	return s.repo.DeleteByID(ctx, id)
}

// ListByUser returns the user's live shares.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*Share, error) {
	return s.repo.ListByUser(ctx, userID)
}

// SweepExpired deletes every share past its max date, continuing past
// per-row failures. Returns the number of shares removed and the first
// error encountered, if any.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {

	ids, err := s.repo.ListExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("listing expired shares: %w", err)
	}

	removed := 0
	var firstErr error
	for _, id := range ids {
		if err := s.repo.DeleteByID(ctx, id); err != nil {
			if !errors.Is(err, common.ErrorNotFound) && firstErr == nil {
				firstErr = fmt.Errorf("deleting share %s: %w", id, err)
			}
			continue
		}
		removed++
	}

	return removed, firstErr
}
