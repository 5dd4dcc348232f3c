package middleware

import (
	"net/http"
	"strings"

	"jobmatchhub/internal/contextutils"
	"jobmatchhub/internal/models"
	"jobmatchhub/internal/response"
	"jobmatchhub/internal/services"

	"go.uber.org/zap"
)

// ===============================
// AUTHENTICATION MIDDLEWARE
// ===============================

// AuthMiddleware authenticates requests using bearer tokens
type AuthMiddleware struct {
	auth   services.AuthService
	logger *zap.Logger
}

// NewAuthMiddleware creates authentication middleware backed by the auth service
func NewAuthMiddleware(auth services.AuthService, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		auth:   auth,
		logger: logger,
	}
}

// RequireAuth rejects requests that do not carry a valid bearer token.
// On success the user ID and role are stored in the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			response.QuickError(w, r, services.NewUnauthorizedError("authentication required"))
			return
		}

		claims, err := m.auth.ValidateToken(r.Context(), token)
		if err != nil {
			m.logger.Debug("Token validation failed",
				zap.String("request_id", contextutils.GetRequestID(r.Context())),
				zap.Error(err),
			)
			response.QuickError(w, r, err)
			return
		}

		ctx := contextutils.WithUserID(r.Context(), claims.UserID)
		ctx = contextutils.WithUserRole(ctx, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth attaches identity when a valid token is present but lets
// anonymous requests through. Invalid tokens are treated as anonymous.
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.auth.ValidateToken(r.Context(), token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := contextutils.WithUserID(r.Context(), claims.UserID)
		ctx = contextutils.WithUserRole(ctx, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole restricts a route to users holding one of the given roles.
// Must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := contextutils.GetUserRole(r.Context())
			if role == "" {
				response.QuickError(w, r, services.NewUnauthorizedError("authentication required"))
				return
			}

			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			m.logger.Debug("Role check failed",
				zap.String("request_id", contextutils.GetRequestID(r.Context())),
				zap.Int64("user_id", contextutils.GetUserID(r.Context())),
				zap.String("role", role),
			)
			response.QuickError(w, r, services.NewForbiddenError("insufficient permissions"))
		})
	}
}

// RequireRecruiter restricts a route to recruiters and admins
func (m *AuthMiddleware) RequireRecruiter(next http.Handler) http.Handler {
	return m.RequireRole(models.RoleRecruiter, models.RoleAdmin)(next)
}

// RequireAdmin restricts a route to admins
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireRole(models.RoleAdmin)(next)
}

// extractBearerToken pulls the token out of the Authorization header
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
