// Package server initializes and runs the keepsake server: it wires the
// repositories, runs migrations, starts the HTTP API and the share
// sweeper, and handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/avolkovs/keepsake/internal/logging"
	"github.com/avolkovs/keepsake/internal/server/config"
	"github.com/avolkovs/keepsake/internal/server/httpapi"
	"github.com/avolkovs/keepsake/internal/server/shared/db"
	"github.com/avolkovs/keepsake/internal/server/shares"
	"github.com/avolkovs/keepsake/internal/server/users"
	"github.com/avolkovs/keepsake/internal/server/vault"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config       *config.Config
	logger       logging.Logger
	repos        db.RepositoryManager
	userService  *users.Service
	vaultService *vault.Service
	shareService *shares.Service
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	rm, err := db.NewPostgresRepositoryManager(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	return &App{
		config:       cfg,
		logger:       logger,
		repos:        rm,
		userService:  users.NewService(rm.Users(), rm.RefreshTokens(), cfg),
		vaultService: vault.NewService(rm.Trees(), rm.Blobs()),
		shareService: shares.NewService(rm.Shares()),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	api := httpapi.New(app.logger, app.userService, app.vaultService, app.shareService, []byte(app.config.SecretKey))

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: api,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server error", "error", err)
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		shares.NewSweeper(app.shareService, app.logger, app.config.ShareSweepInterval).Run(ctx)
	}()

	wg.Wait()

	if conn := app.repos.Conn(); conn != nil {
		if err := conn.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}
}
