// file: internal/services/auth_service.go
package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"jobmatchhub/internal/config"
	"jobmatchhub/internal/events"
	"jobmatchhub/internal/models"
	"jobmatchhub/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// authService implements AuthService with JWT tokens and bcrypt hashing
type authService struct {
	userRepo repositories.UserRepository
	events   events.EventBus
	logger   *zap.Logger
	validate *validator.Validate
	cfg      *config.AuthConfig
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo repositories.UserRepository,
	eventBus events.EventBus,
	logger *zap.Logger,
	cfg *config.AuthConfig,
) AuthService {
	return &authService{
		userRepo: userRepo,
		events:   eventBus,
		logger:   logger,
		validate: validator.New(),
		cfg:      cfg,
	}
}

// jwtClaims is the token payload issued on login and registration
type jwtClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// ===============================
// AUTHENTICATION
// ===============================

// Register creates a new account and issues a token. Admin accounts
// cannot be self-registered.
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid registration data", err)
	}

	if verr := models.PasswordValidator("password", req.Password); verr != nil {
		return nil, NewValidationError(verr.Message, nil)
	}

	role := req.Role
	if role == "" {
		role = models.RoleJobSeeker
	}
	if role == models.RoleAdmin {
		return nil, NewForbiddenError("admin accounts cannot be self-registered")
	}

	email := models.NormalizeEmail(req.Email)

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, NewInternalError("failed to check existing account", err)
	}
	if existing != nil {
		return nil, EntityAlreadyExistsError("account", "email", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BCryptCost)
	if err != nil {
		return nil, NewInternalError("failed to hash password", err)
	}

	user := &models.User{
		Name:         models.SanitizeString(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Concurrent registrations race past the pre-check; the email
		// unique constraint picks the winner
		if repositories.IsUniqueViolation(err, "users_email_key") {
			return nil, EntityAlreadyExistsError("account", "email", email)
		}
		return nil, NewInternalError("failed to create account", err)
	}

	s.events.PublishAsync(ctx, events.NewUserRegisteredEvent(user.ID, user.Name, user.Email, user.Role))

	s.logger.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("role", user.Role),
	)

	return s.issueToken(user)
}

// Login verifies credentials and issues a token. Failed lookups and
// bad passwords return the same message so emails cannot be probed.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("email and password are required", nil)
	}

	user, err := s.userRepo.GetByEmail(ctx, models.NormalizeEmail(req.Email))
	if err != nil {
		return nil, NewInternalError("failed to look up account", err)
	}
	if user == nil {
		return nil, NewUnauthorizedError("invalid email or password")
	}
	if !user.IsActive {
		return nil, NewUnauthorizedError("account is deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Failed login attempt", zap.Int64("user_id", user.ID))
		return nil, NewUnauthorizedError("invalid email or password")
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		// Login still succeeds if the timestamp write fails
		s.logger.Warn("Failed to record last login", zap.Error(err), zap.Int64("user_id", user.ID))
	}

	s.events.PublishAsync(ctx, events.NewUserLoggedInEvent(user.ID, ""))

	return s.issueToken(user)
}

func (s *authService) issueToken(user *models.User) (*AuthResponse, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.JWTExpiry)

	claims := &jwtClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    s.cfg.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, NewInternalError("failed to sign token", err)
	}

	return &AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// ValidateToken parses and verifies a JWT and checks the account is
// still active
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*TokenClaims, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, NewUnauthorizedError("invalid or expired token")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, NewUnauthorizedError("invalid token subject")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to look up account", err)
	}
	if user == nil || !user.IsActive {
		return nil, NewUnauthorizedError("account no longer active")
	}

	return &TokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, nil
}

// ===============================
// PASSWORD MANAGEMENT
// ===============================

func (s *authService) ChangePassword(ctx context.Context, req *ChangePasswordRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return NewValidationError("invalid password change data", nil)
	}
	if verr := models.PasswordValidator("new_password", req.NewPassword); verr != nil {
		return NewValidationError(verr.Message, nil)
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return NewInternalError("failed to look up account", err)
	}
	if user == nil {
		return NewNotFoundError("user not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return NewUnauthorizedError("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cfg.BCryptCost)
	if err != nil {
		return NewInternalError("failed to hash password", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return NewInternalError("failed to update password", err)
	}

	s.events.PublishAsync(ctx, events.NewPasswordChangedEvent(user.ID, user.Email))

	return nil
}

// ForgotPassword issues a single-use reset token. The response is the
// same whether or not the email exists.
func (s *authService) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return NewValidationError("a valid email is required", nil)
	}

	user, err := s.userRepo.GetByEmail(ctx, models.NormalizeEmail(req.Email))
	if err != nil {
		return NewInternalError("failed to look up account", err)
	}
	if user == nil || !user.IsActive {
		// Do not reveal whether the account exists
		return nil
	}

	token, err := generateResetToken()
	if err != nil {
		return NewInternalError("failed to generate reset token", err)
	}

	expiresAt := time.Now().Add(s.cfg.ResetTokenExpiry)
	if err := s.userRepo.SetResetToken(ctx, user.ID, hashResetToken(token), expiresAt); err != nil {
		return NewInternalError("failed to store reset token", err)
	}

	s.events.PublishAsync(ctx, events.NewPasswordResetRequestedEvent(user.ID, user.Name, user.Email, token, expiresAt))

	s.logger.Info("Password reset requested", zap.Int64("user_id", user.ID))
	return nil
}

// ResetPassword consumes a reset token. Only the sha256 hash is stored
// so a database leak cannot replay tokens.
func (s *authService) ResetPassword(ctx context.Context, req *ResetPasswordRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return NewValidationError("token and new password are required", nil)
	}
	if verr := models.PasswordValidator("new_password", req.NewPassword); verr != nil {
		return NewValidationError(verr.Message, nil)
	}

	user, err := s.userRepo.GetByResetToken(ctx, hashResetToken(req.Token))
	if err != nil {
		return NewInternalError("failed to look up reset token", err)
	}
	if user == nil {
		return NewUnauthorizedError("reset token is invalid or expired")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cfg.BCryptCost)
	if err != nil {
		return NewInternalError("failed to hash password", err)
	}

	// UpdatePassword clears the reset token in the same statement
	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return NewInternalError("failed to update password", err)
	}

	s.events.PublishAsync(ctx, events.NewPasswordChangedEvent(user.ID, user.Email))

	s.logger.Info("Password reset completed", zap.Int64("user_id", user.ID))
	return nil
}

// ===============================
// TOKEN HELPERS
// ===============================

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashResetToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
