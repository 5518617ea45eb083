// Package app wires configuration, storage, cache and services into one value.
package app

import (
	"context"
	"errors"
	"fmt"

	"warbler/internal/auth"
	"warbler/internal/cache"
	"warbler/internal/config"
	"warbler/internal/database"
	"warbler/internal/observability"
	"warbler/internal/repository"
	"warbler/internal/service"

	"gorm.io/gorm"
)

// App holds the initialized data layer.
type App struct {
	Config *config.Config
	DB     *gorm.DB
	Cache  *cache.Cache
	Hasher auth.Hasher

	UserRepo    repository.UserRepository
	MessageRepo repository.MessageRepository
	FollowRepo  repository.FollowRepository
	LikeRepo    repository.LikeRepository

	Users  *service.UserService
	Social *service.SocialService

	shutdownTracing func(context.Context) error
}

// New initializes logging and tracing, connects to the database and Redis,
// applies the schema and builds the services.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	observability.InitLogger(cfg.Env, cfg.LogLevel)

	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  "warbler",
		Environment:  cfg.Env,
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := database.ApplySchema(ctx, db); err != nil {
		_ = database.Close(db)
		_ = shutdown(ctx)
		return nil, err
	}

	a := NewWithDeps(cfg, db, cache.Connect(ctx, cfg.RedisURL))
	a.shutdownTracing = shutdown
	return a, nil
}

// NewWithDeps builds an App from already-initialized dependencies. c may be nil.
func NewWithDeps(cfg *config.Config, db *gorm.DB, c *cache.Cache) *App {
	a := &App{
		Config: cfg,
		DB:     db,
		Cache:  c,
		Hasher: auth.NewBcryptHasher(cfg.BcryptCost, cfg.PasswordMinLength),
	}
	a.UserRepo = repository.NewUserRepository(db, c)
	a.MessageRepo = repository.NewMessageRepository(db)
	a.FollowRepo = repository.NewFollowRepository(db)
	a.LikeRepo = repository.NewLikeRepository(db)

	a.Users = service.NewUserService(a.UserRepo, a.Hasher)
	a.Social = service.NewSocialService(a.MessageRepo, a.FollowRepo, a.LikeRepo)
	return a
}

// NewSession starts a unit of work on the app database.
func (a *App) NewSession() *database.Session {
	return database.NewSession(a.DB)
}

// Close releases the cache, the database pool and the tracer.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.Cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close cache: %w", err))
	}
	if a.DB != nil {
		if err := database.Close(a.DB); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
		}
	}
	return errors.Join(errs...)
}
