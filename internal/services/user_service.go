// file: internal/services/user_service.go
package services

import (
	"context"

	"jobmatchhub/internal/models"
	"jobmatchhub/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// userService implements UserService
type userService struct {
	userRepo repositories.UserRepository
	logger   *zap.Logger
	validate *validator.Validate
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, logger *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger,
		validate: validator.New(),
	}
}

// GetUserByID returns a user's public view
func (s *userService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if id <= 0 {
		return nil, NewValidationError("invalid user ID", nil)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, NewInternalError("failed to get user", err)
	}
	if user == nil || !user.IsActive {
		return nil, EntityNotFoundError("user", id)
	}

	return user, nil
}

// GetCurrentUser returns the caller's own account, including a
// deactivated one so they can see their state
func (s *userService) GetCurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to get user", err)
	}
	if user == nil {
		return nil, EntityNotFoundError("user", userID)
	}

	return user, nil
}

// UpdateProfile merges the submitted profile fields into the stored
// profile. Empty fields in the request leave existing values intact.
func (s *userService) UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid profile data", err)
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, NewInternalError("failed to get user", err)
	}
	if user == nil {
		return nil, EntityNotFoundError("user", req.UserID)
	}

	if req.Name != nil {
		user.Name = models.SanitizeString(*req.Name)
	}
	if req.Profile != nil {
		user.Profile.Merge(*req.Profile)
	}

	if verrs := user.Validate(); verrs.HasErrors() {
		return nil, NewValidationError(verrs.Error(), nil)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, NewInternalError("failed to update profile", err)
	}

	s.logger.Info("Profile updated", zap.Int64("user_id", user.ID))

	return user, nil
}

// ===============================
// ADMIN OPERATIONS
// ===============================

func (s *userService) ListUsers(ctx context.Context, req *ListUsersRequest) (*models.PaginatedResponse[*models.User], error) {
	if req.Role != "" {
		if !models.ValidRoles[req.Role] {
			return nil, NewValidationError("invalid role filter", nil)
		}
		return s.userRepo.GetByRole(ctx, req.Role, req.Pagination)
	}
	return s.userRepo.List(ctx, req.Pagination)
}

// SetUserActive deactivates or reactivates an account. Admins cannot
// deactivate themselves, which would lock the last admin out.
func (s *userService) SetUserActive(ctx context.Context, req *SetUserActiveRequest) error {
	if req.AdminID == req.UserID && !req.Active {
		return NewBusinessError("you cannot deactivate your own account", "SELF_DEACTIVATION")
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return NewInternalError("failed to get user", err)
	}
	if user == nil {
		return EntityNotFoundError("user", req.UserID)
	}

	if err := s.userRepo.SetActive(ctx, req.UserID, req.Active); err != nil {
		return NewInternalError("failed to update account state", err)
	}

	s.logger.Info("Account state changed by admin",
		zap.Int64("admin_id", req.AdminID),
		zap.Int64("user_id", req.UserID),
		zap.Bool("active", req.Active),
	)

	return nil
}

// UpdateUserRole changes a user's role. Admins cannot demote
// themselves.
func (s *userService) UpdateUserRole(ctx context.Context, req *UpdateUserRoleRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid role", err)
	}
	if req.AdminID == req.UserID {
		return nil, NewBusinessError("you cannot change your own role", "SELF_ROLE_CHANGE")
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, NewInternalError("failed to get user", err)
	}
	if user == nil {
		return nil, EntityNotFoundError("user", req.UserID)
	}

	user.Role = req.Role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, NewInternalError("failed to update role", err)
	}

	s.logger.Info("User role changed",
		zap.Int64("admin_id", req.AdminID),
		zap.Int64("user_id", req.UserID),
		zap.String("role", req.Role),
	)

	return user, nil
}

// DeleteUser permanently removes an account and its data
func (s *userService) DeleteUser(ctx context.Context, adminID, userID int64) error {
	if adminID == userID {
		return NewBusinessError("you cannot delete your own account", "SELF_DELETION")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return NewInternalError("failed to get user", err)
	}
	if user == nil {
		return EntityNotFoundError("user", userID)
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return NewInternalError("failed to delete user", err)
	}

	s.logger.Info("User deleted by admin",
		zap.Int64("admin_id", adminID),
		zap.Int64("user_id", userID),
	)

	return nil
}
