package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/upb/tokengate/config"
	"github.com/upb/tokengate/handlers"
	"github.com/upb/tokengate/internal/observability"
	"github.com/upb/tokengate/middleware"
	"github.com/upb/tokengate/repositories"
	"github.com/upb/tokengate/repositories/postgres"
	"github.com/upb/tokengate/services"
	"github.com/upb/tokengate/token"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	RepoFactory *postgres.RepositoryFactory
	Users       repositories.UserRepository

	// Metrics
	Registry *prometheus.Registry
	Metrics  *observability.AuthMetrics

	// Auth
	Verifier       *token.Verifier
	Authenticator  *services.Authenticator
	AuthMiddleware *middleware.AuthMiddleware

	// Services and handlers
	UserService   *services.UserService
	HealthHandler *handlers.HealthHandler
	UserHandler   *handlers.UserHandler
}

// NewDependencies connects to PostgreSQL and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.Users = deps.RepoFactory.NewRepositories().Users
	logger.Info("repositories initialized")

	if err := deps.initServices(cfg, deps.DB); err != nil {
		_ = deps.RepoFactory.Close()
		return nil, err
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// NewDependenciesWithRepositories wires everything above the storage layer
// around an existing user store. db may be nil when readiness should not
// depend on a database.
func NewDependenciesWithRepositories(cfg *config.Config, logger *zap.Logger, users repositories.UserRepository, db handlers.HealthChecker) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
		Users:  users,
	}

	if err := deps.initServices(cfg, db); err != nil {
		return nil, err
	}
	return deps, nil
}

// initDatabase opens the connection pool and optionally creates the schema
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	if cfg.Database.InitSchema {
		if err := factory.InitSchema(ctx); err != nil {
			_ = factory.Close()
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
		d.Logger.Info("database schema initialized")
	}

	return nil
}

// initServices builds the verifier, auth pipeline, metrics and handlers
func (d *Dependencies) initServices(cfg *config.Config, db handlers.HealthChecker) error {
	verifier, err := token.NewVerifier(token.Config{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.Issuer,
		Leeway: cfg.Auth.Leeway,
	})
	if err != nil {
		return fmt.Errorf("failed to create token verifier: %w", err)
	}
	d.Verifier = verifier

	d.Registry = prometheus.NewRegistry()
	d.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	d.Metrics = observability.NewAuthMetrics(d.Registry)

	d.Authenticator = services.NewAuthenticator(verifier, d.Users)
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Authenticator, d.Logger, d.Metrics)

	d.UserService = services.NewUserService(d.Users, d.Logger)
	d.UserHandler = handlers.NewUserHandler(d.UserService, d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(db, d.Logger)

	d.Logger.Info("auth pipeline initialized",
		zap.Bool("issuer_pinned", cfg.Auth.Issuer != ""),
		zap.Duration("leeway", cfg.Auth.Leeway))
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	_ = d.Logger.Sync()

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
