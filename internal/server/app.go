// Package server initializes and runs the application server.
// It wires the PostgreSQL metadata store, the Redis challenge and token
// stores, the S3 blob backend, and the HTTP API, and handles graceful
// shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"secureshare/internal/logging"
	"secureshare/internal/server/auth"
	"secureshare/internal/server/config"
	"secureshare/internal/server/httpapi"
	"secureshare/internal/server/migrations"
	"secureshare/internal/server/repositories/blacklist"
	"secureshare/internal/server/repositories/files"
	"secureshare/internal/server/repositories/shares"
	"secureshare/internal/server/repositories/users"
	"secureshare/internal/server/repositories/verification"
	"secureshare/internal/server/services"
	"secureshare/internal/server/storage"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	redis  *redis.Client
	server *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	zl, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}
	logger := logging.NewZapLogger(zl)

	db, err := sql.Open("pgx", c.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     c.Redis.Host + ":" + c.Redis.Port,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	})

	blobs, err := storage.NewS3Store(ctx, c.S3)
	if err != nil {
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	userRepo := users.NewPostgresRepository(db)
	fileRepo := files.NewPostgresRepository(db)
	shareRepo := shares.NewPostgresRepository(db)

	authService := services.NewAuthService(
		userRepo,
		verification.NewRedisRepository(rdb),
		blacklist.NewRedisRepository(rdb),
		&auth.LogSender{Log: logger},
		[]byte(c.JWTSecret),
		c.AccessTokenValidity,
		c.VerificationValidity,
	)
	fileService := services.NewFileService(fileRepo, shareRepo, blobs)
	shareService := services.NewShareService(shareRepo, fileRepo, blobs)

	if err := authService.EnsureAdmin(ctx, c.Admin.Email, []byte(c.Admin.Password)); err != nil {
		return nil, fmt.Errorf("admin seed error: %w", err)
	}

	srv := httpapi.NewServer(authService, fileService, shareService, logger)

	return &App{config: c, logger: logger, db: db, redis: rdb, server: srv}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	return goose.UpContext(ctx, db, ".")
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting server", "addr", app.config.ListenAddr)

	app.initSignalHandler(cancelFunc)

	hs := &http.Server{
		Addr:    app.config.ListenAddr,
		Handler: app.server.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := hs.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "http server shutdown error", "error", err)
	}
	if err := app.redis.Close(); err != nil {
		app.logger.Error(shutdownCtx, "redis close error", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(shutdownCtx, "db close error", "error", err)
	}

	return nil
}
