package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"jobmatchhub/internal/database"
	"jobmatchhub/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// BaseRepository provides common database operations shared by the
// concrete repositories.
type BaseRepository struct {
	db     *database.Manager
	logger *zap.Logger
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *database.Manager, logger *zap.Logger) *BaseRepository {
	return &BaseRepository{
		db:     db,
		logger: logger,
	}
}

// ===============================
// CORE DATABASE OPERATIONS
// ===============================

// ExecContext executes a query. Slow-query logging happens in the
// database manager.
func (r *BaseRepository) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return r.db.ExecContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows
func (r *BaseRepository) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return r.db.QueryContext(ctx, query, args...)
}

// QueryRowContext executes a query that returns a single row
func (r *BaseRepository) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return r.db.QueryRowContext(ctx, query, args...)
}

// BeginTx starts a new transaction
func (r *BaseRepository) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, opts)
}

// ===============================
// PAGINATION HELPERS
// ===============================

// allowedSortColumns guards ORDER BY against injection; anything not
// listed falls back to created_at.
var allowedSortColumns = map[string]bool{
	"created_at":         true,
	"updated_at":         true,
	"applied_at":         true,
	"title":              true,
	"company":            true,
	"applications_count": true,
	"views_count":        true,
	"id":                 true,
}

// BuildPaginatedQuery appends ORDER BY / LIMIT / OFFSET to a query that
// already contains its WHERE clause. args carries the existing
// positional parameters; the returned slice includes limit and offset.
func (r *BaseRepository) BuildPaginatedQuery(query string, args []interface{}, params models.PaginationParams) (string, []interface{}) {
	params.Normalize()

	sort := params.Sort
	if !allowedSortColumns[sort] {
		sort = "created_at"
	}
	order := "DESC"
	if strings.EqualFold(params.Order, "asc") {
		order = "ASC"
	}

	argIndex := len(args) + 1
	query += fmt.Sprintf(" ORDER BY %s %s LIMIT $%d OFFSET $%d", sort, order, argIndex, argIndex+1)
	args = append(args, params.PageSize, params.Offset())

	return query, args
}

// GetTotalCount executes a count query
func (r *BaseRepository) GetTotalCount(ctx context.Context, countQuery string, args ...interface{}) (int64, error) {
	var total int64
	err := r.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	return total, err
}

// ===============================
// TRANSACTION HELPERS
// ===============================

// WithTransaction executes fn within a database transaction, rolling
// back on error or panic.
func (r *BaseRepository) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.BeginTx(ctx, nil)
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
			r.logger.Error("failed to rollback transaction",
				zap.NamedError("rollback_error", rbErr),
				zap.Error(err),
			)
		}
		return err
	}

	return tx.Commit()
}

// ===============================
// ERROR HELPERS
// ===============================

// IsNotFound checks if error is a "not found" error
func (r *BaseRepository) IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// HandleNotFound converts sql.ErrNoRows to nil for optional queries
func (r *BaseRepository) HandleNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}

// IsUniqueViolation reports whether err is a Postgres unique
// constraint violation, optionally on a specific constraint. Exposed
// at package level so services can map the race loser of a concurrent
// insert to the same conflict the sequential pre-check returns.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

func (r *BaseRepository) IsUniqueViolation(err error, constraint string) bool {
	return IsUniqueViolation(err, constraint)
}

// GetDB returns the underlying database manager
func (r *BaseRepository) GetDB() *database.Manager {
	return r.db
}

// GetLogger returns the logger instance
func (r *BaseRepository) GetLogger() *zap.Logger {
	return r.logger
}
