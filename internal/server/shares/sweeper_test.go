package shares

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/avolkovs/keepsake/internal/common"
	"github.com/avolkovs/keepsake/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeper_RemovesExpiredShares(t *testing.T) {
	s := newTestService()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	share, err := s.Create(ctx, "u1", StrategyMultipleRead, time.Now().Add(50*time.Millisecond), "", "aa", "ct")
	require.NoError(t, err)

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	sweeper := NewSweeper(s, logger, 20*time.Millisecond)
	go sweeper.Run(ctx)

	assert.Eventually(t, func() bool {
		_, err := s.repo.GetByID(context.Background(), share.ID)
		return err == common.ErrorNotFound
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSweeper_StopsOnContextCancel(t *testing.T) {
	s := newTestService()
	ctx, cancel := context.WithCancel(context.Background())

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	sweeper := NewSweeper(s, logger, time.Millisecond)

	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}
