// file: internal/services/service_collection.go
package services

import (
	"context"
	"fmt"
	"time"

	"jobmatchhub/internal/cache"
	"jobmatchhub/internal/config"
	"jobmatchhub/internal/database"
	"jobmatchhub/internal/events"
	"jobmatchhub/internal/repositories"

	"go.uber.org/zap"
)

// ServiceCollection holds all services with dependency injection
type ServiceCollection struct {
	// Core services
	AuthService        AuthService
	UserService        UserService
	JobService         JobService
	ApplicationService ApplicationService

	// Infrastructure services
	EmailService EmailService
	FileService  FileService

	// Repository collection
	Repositories *repositories.Collection

	// Infrastructure components
	Cache    cache.Cache
	EventBus events.EventBus
	Logger   *zap.Logger
	Config   *config.Config
}

// NewServiceCollection wires the full service graph in dependency
// order: infrastructure, repositories, then services.
func NewServiceCollection(
	dbManager *database.Manager,
	cfg *config.Config,
	logger *zap.Logger,
) (*ServiceCollection, error) {
	if dbManager == nil {
		return nil, fmt.Errorf("database manager is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	// Infrastructure
	appCache, err := cache.NewCache(&cache.Config{
		Provider: cfg.Cache.Backend,
		RedisURL: cfg.Cache.RedisURL,
		Prefix:   cfg.Cache.Prefix,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	eventBus := events.NewEventBus(events.DefaultEventBusConfig(), logger)
	if err := eventBus.Start(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to start event bus: %w", err)
	}

	// Repositories
	repos, err := repositories.NewCollection(dbManager, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	// Services
	cld, err := NewCloudinaryClient(&cfg.Cloudinary)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	collection := &ServiceCollection{
		Repositories: repos,
		Cache:        appCache,
		EventBus:     eventBus,
		Logger:       logger,
		Config:       cfg,
	}

	collection.AuthService = NewAuthService(repos.User, eventBus, logger, &cfg.Auth)
	collection.UserService = NewUserService(repos.User, logger)
	collection.JobService = NewJobService(repos.Job, repos.User, eventBus, logger)
	collection.ApplicationService = NewApplicationService(repos.Application, repos.Job, repos.User, eventBus, logger)
	collection.EmailService = NewEmailService(&cfg.Email, cfg.Server.BaseURL, logger)
	collection.FileService = NewFileService(cld, &cfg.Cloudinary, eventBus, logger)

	if err := RegisterEmailHandlers(eventBus, collection.EmailService, logger); err != nil {
		return nil, fmt.Errorf("failed to register email handlers: %w", err)
	}

	logger.Info("Service collection initialized")

	return collection, nil
}

// Health reports the status of the collection's dependencies
func (c *ServiceCollection) Health(ctx context.Context) map[string]interface{} {
	health := c.Repositories.HealthCheck(ctx)
	health["cache"] = statusString(c.Cache.Health(ctx))
	health["events"] = statusString(c.EventBus.Health())
	return health
}

func statusString(err error) string {
	if err != nil {
		return fmt.Sprintf("unhealthy: %v", err)
	}
	return "healthy"
}

// Shutdown stops background components in reverse dependency order
func (c *ServiceCollection) Shutdown(ctx context.Context) error {
	c.Logger.Info("Shutting down service collection")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := c.EventBus.Stop(shutdownCtx); err != nil {
		c.Logger.Warn("Event bus shutdown failed", zap.Error(err))
	}
	if err := c.Cache.Close(); err != nil {
		c.Logger.Warn("Cache shutdown failed", zap.Error(err))
	}

	return c.Repositories.Close()
}
