// file: internal/repositories/user_repository.go
package repositories

import (
	"context"
	"fmt"
	"time"

	"jobmatchhub/internal/database"
	"jobmatchhub/internal/models"

	"go.uber.org/zap"
)

// userRepository implements UserRepository on top of Postgres
type userRepository struct {
	*BaseRepository
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Manager, logger *zap.Logger) UserRepository {
	return &userRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const userColumns = `
	u.id, u.name, u.email, u.password_hash, u.role, u.profile,
	u.is_active, u.password_reset_token, u.password_reset_expires,
	u.last_login, u.created_at, u.updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.Role, &user.Profile, &user.IsActive,
		&user.PasswordResetToken, &user.PasswordResetExpires,
		&user.LastLogin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ===============================
// BASIC CRUD OPERATIONS
// ===============================

// Create inserts a new user. The email unique constraint surfaces as a
// pq unique violation that callers map to a conflict.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, role, profile, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		user.Name, user.Email, user.PasswordHash,
		user.Role, user.Profile, user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if r.IsUniqueViolation(err, "users_email_key") {
			return err
		}
		r.GetLogger().Error("Failed to create user",
			zap.Error(err),
			zap.String("email", user.Email),
		)
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.GetLogger().Info("User created",
		zap.Int64("user_id", user.ID),
		zap.String("role", user.Role),
	)

	return nil
}

// GetByID retrieves a user by ID, including inactive accounts so
// callers can distinguish deactivated from missing
func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users u WHERE u.id = $1`, userColumns)

	user, err := scanUser(r.QueryRowContext(ctx, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by normalized email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users u WHERE u.email = $1`, userColumns)

	user, err := scanUser(r.QueryRowContext(ctx, query, email))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// Update persists name, role, and profile changes
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $2, role = $3, profile = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.QueryRowContext(
		ctx, query,
		user.ID, user.Name, user.Role, user.Profile,
	).Scan(&user.UpdatedAt)

	if err != nil {
		if r.IsNotFound(err) {
			return fmt.Errorf("user not found")
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// Delete removes a user row permanently. Application and job rows
// cascade via foreign keys; prefer SetActive for soft removal.
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}

	r.GetLogger().Info("User deleted", zap.Int64("user_id", id))
	return nil
}

// ===============================
// AUTH SUPPORT
// ===============================

func (r *userRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $2,
		    password_reset_token = NULL,
		    password_reset_expires = NULL,
		    updated_at = NOW()
		WHERE id = $1`

	if _, err := r.ExecContext(ctx, query, userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	r.GetLogger().Info("Password updated", zap.Int64("user_id", userID))
	return nil
}

// SetResetToken stores the hashed reset token with its expiry
func (r *userRepository) SetResetToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET password_reset_token = $2, password_reset_expires = $3, updated_at = NOW()
		WHERE id = $1`

	if _, err := r.ExecContext(ctx, query, userID, tokenHash, expiresAt); err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}

	return nil
}

// GetByResetToken looks up a user by hashed reset token, requiring the
// token to be unexpired
func (r *userRepository) GetByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users u
		WHERE u.password_reset_token = $1 AND u.password_reset_expires > NOW()`,
		userColumns)

	user, err := scanUser(r.QueryRowContext(ctx, query, tokenHash))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by reset token: %w", err)
	}

	return user, nil
}

func (r *userRepository) ClearResetToken(ctx context.Context, userID int64) error {
	query := `
		UPDATE users
		SET password_reset_token = NULL, password_reset_expires = NULL, updated_at = NOW()
		WHERE id = $1`

	if _, err := r.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to clear reset token: %w", err)
	}

	return nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, userID int64) error {
	if _, err := r.ExecContext(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// ===============================
// ACCOUNT STATE
// ===============================

// SetActive toggles the account flag. Deactivated users fail auth and
// their jobs drop out of public listings.
func (r *userRepository) SetActive(ctx context.Context, userID int64, active bool) error {
	result, err := r.ExecContext(ctx,
		`UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`,
		userID, active,
	)
	if err != nil {
		return fmt.Errorf("failed to set user active state: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}

	r.GetLogger().Info("User active state changed",
		zap.Int64("user_id", userID),
		zap.Bool("active", active),
	)

	return nil
}

// ===============================
// LISTING
// ===============================

func (r *userRepository) List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.User], error) {
	return r.listUsers(ctx,
		fmt.Sprintf(`SELECT %s FROM users u`, userColumns),
		`SELECT COUNT(*) FROM users u`,
		nil, params,
	)
}

func (r *userRepository) GetByRole(ctx context.Context, role string, params models.PaginationParams) (*models.PaginatedResponse[*models.User], error) {
	return r.listUsers(ctx,
		fmt.Sprintf(`SELECT %s FROM users u WHERE u.role = $1`, userColumns),
		`SELECT COUNT(*) FROM users u WHERE u.role = $1`,
		[]interface{}{role}, params,
	)
}

func (r *userRepository) listUsers(ctx context.Context, query, countQuery string, args []interface{}, params models.PaginationParams) (*models.PaginatedResponse[*models.User], error) {
	total, err := r.GetTotalCount(ctx, countQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	pagedQuery, pagedArgs := r.BuildPaginatedQuery(query, args, params)
	rows, err := r.QueryContext(ctx, pagedQuery, pagedArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0, params.PageSize)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return &models.PaginatedResponse[*models.User]{
		Data:       users,
		Pagination: models.NewPaginationMeta(params, total),
	}, nil
}
