package container

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/go-user-rating/app/db"
	"github.com/FACorreiaa/go-user-rating/app/observability/metrics"
	"github.com/FACorreiaa/go-user-rating/config"
	"github.com/FACorreiaa/go-user-rating/internal/api/auth"
	"github.com/FACorreiaa/go-user-rating/internal/api/user"
	"github.com/FACorreiaa/go-user-rating/internal/router"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *slog.Logger
	Pool        *pgxpool.Pool
	Metrics     *metrics.AppMetrics
	Tokens      *auth.TokenService
	UserRepo    user.UserRepo
	UserService user.UserService
	UserHandler *user.HandlerImpl
}

// NewContainer prepares the database (migrations, pool, readiness) and wires
// the user stack on top of it.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, m *metrics.AppMetrics) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("database config: %w", err)
	}

	// Migrations run before the main pool is opened
	if err = database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	pool, err := database.Init(ctx, dbConfig.ConnectionURL, logger)
	if err != nil {
		return nil, fmt.Errorf("database pool: %w", err)
	}
	if !database.WaitForDB(ctx, pool, logger) {
		pool.Close()
		return nil, errors.New("database not ready after waiting")
	}

	c, err := New(cfg, pool, logger, m)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return c, nil
}

// New wires repositories, services and handlers over an existing store.
func New(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger, m *metrics.AppMetrics) (*Container, error) {
	tokens, err := auth.NewTokenService(cfg.JWT)
	if err != nil {
		return nil, fmt.Errorf("token service: %w", err)
	}

	var db database.DB
	if pool != nil {
		db = pool
	}
	userRepo := user.NewPostgresUserRepo(db, logger, m)
	userService := user.NewUserService(userRepo, auth.NewPBKDF2Hasher(), tokens, m, logger)
	userHandler := user.NewHandlerImpl(userService, cfg.Pagination, logger)

	return &Container{
		Config:      cfg,
		Logger:      logger,
		Pool:        pool,
		Metrics:     m,
		Tokens:      tokens,
		UserRepo:    userRepo,
		UserService: userService,
		UserHandler: userHandler,
	}, nil
}

// RouterConfig returns the dependencies the API router needs.
func (c *Container) RouterConfig() *router.Config {
	return &router.Config{
		UserHandler:    c.UserHandler,
		Tokens:         c.Tokens,
		Logger:         c.Logger,
		LoginPerMinute: c.Config.RateLimit.LoginPerMinute,
	}
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
