package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	"jobmatchhub/internal/config"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// DB is the global database manager instance
var DB *Manager

// initMutex prevents concurrent initialization
var initMutex sync.Mutex

// InitDB initializes the database manager and runs migrations.
// Connection attempts use exponential backoff so the server survives
// a database that comes up slightly after it does.
func InitDB(cfg *config.Config, logger *zap.Logger) error {
	initMutex.Lock()
	defer initMutex.Unlock()

	if DB != nil {
		logger.Info("database manager already initialized")
		return nil
	}

	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	logger.Info("starting database initialization",
		zap.String("environment", cfg.Server.Environment))

	var manager *Manager
	connect := func() error {
		var err error
		manager, err = NewManager(&cfg.Database, logger)
		if err != nil {
			logger.Warn("database connection attempt failed", zap.Error(err))
			return err
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = cfg.Database.RetryBackoff
	policy.MaxElapsedTime = 0

	retries := uint64(cfg.Database.MaxRetryAttempts)
	if err := backoff.Retry(connect, backoff.WithMaxRetries(policy, retries)); err != nil {
		return fmt.Errorf("failed to connect to database after %d attempts: %w", cfg.Database.MaxRetryAttempts, err)
	}

	DB = manager

	migrationsPath := determineMigrationsPath(cfg.Database.MigrationsPath)
	logger.Info("running migrations", zap.String("path", migrationsPath))

	if err := manager.Migrate(migrationsPath); err != nil {
		DB = nil
		manager.Close()
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	stats := manager.Stats()
	logger.Info("database initialized",
		zap.String("migrations_path", migrationsPath),
		zap.Int("max_open_connections", stats.MaxOpenConnections),
		zap.Int("open_connections", stats.OpenConnections),
	)

	return nil
}

// determineMigrationsPath resolves the migrations directory with fallbacks
func determineMigrationsPath(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	paths := []string{
		"./migrations",
		"./internal/database/migrations",
		"./db/migrations",
		"../migrations",
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "./migrations"
}

// GetDB returns the global database manager
func GetDB() *Manager {
	return DB
}

// Close closes the global database manager
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// Health reports the health of the global database manager
func Health(ctx context.Context) *HealthStatus {
	if DB == nil {
		return &HealthStatus{
			Status:    StatusUnhealthy,
			Timestamp: time.Now(),
			Errors:    []string{"database not initialized"},
		}
	}
	return DB.Health(ctx)
}

// IsConnected reports whether the database is reachable
func IsConnected(ctx context.Context) bool {
	if DB == nil {
		return false
	}
	return DB.Health(ctx).Status == StatusHealthy
}

// ExecuteTransaction runs fn inside a transaction, rolling back on
// error or panic.
func ExecuteTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed: %v, rollback failed: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
