package auth

import (
	"encoding/json"
	"net/http"

	"jobmatchhub/internal/contextutils"
	"jobmatchhub/internal/response"
	"jobmatchhub/internal/services"

	"go.uber.org/zap"
)

// AuthController handles authentication and account endpoints
type AuthController struct {
	services *services.ServiceCollection
	logger   *zap.Logger
	builder  *response.Builder
}

// NewAuthController creates a new auth controller
func NewAuthController(services *services.ServiceCollection, logger *zap.Logger, builder *response.Builder) *AuthController {
	return &AuthController{
		services: services,
		logger:   logger,
		builder:  builder,
	}
}

// Register handles account creation
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	result, err := c.services.AuthService.Register(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteCreated(w, r, result)
}

// Login handles credential authentication
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	result, err := c.services.AuthService.Login(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, result)
}

// Me returns the authenticated account, including a deactivated one
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())

	user, err := c.services.UserService.GetCurrentUser(r.Context(), userID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, user)
}

// ChangePassword updates the authenticated user's password
func (c *AuthController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req services.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.UserID = contextutils.GetUserID(r.Context())

	if err := c.services.AuthService.ChangePassword(r.Context(), &req); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, map[string]string{"message": "password changed"})
}

// ForgotPassword starts the password reset flow. It always responds with
// success so account existence is not leaked.
func (c *AuthController) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req services.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	if err := c.services.AuthService.ForgotPassword(r.Context(), &req); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, map[string]string{
		"message": "if the account exists, a reset email has been sent",
	})
}

// ResetPassword completes the password reset flow using the emailed token
func (c *AuthController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req services.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	if err := c.services.AuthService.ResetPassword(r.Context(), &req); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, map[string]string{"message": "password has been reset"})
}
