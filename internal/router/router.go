package router

import (
	"net/http"

	"jobmatchhub/internal/config"
	"jobmatchhub/internal/handlers/api/v1/applications"
	"jobmatchhub/internal/handlers/api/v1/auth"
	"jobmatchhub/internal/handlers/api/v1/jobs"
	"jobmatchhub/internal/handlers/api/v1/users"
	"jobmatchhub/internal/middleware"
	"jobmatchhub/internal/models"
	"jobmatchhub/internal/response"
	"jobmatchhub/internal/services"

	"go.uber.org/zap"
)

// New wires all HTTP routes and the middleware stack into a single handler
func New(sc *services.ServiceCollection, cfg *config.Config, logger *zap.Logger) http.Handler {
	builder := response.NewBuilder(&response.Config{
		PrettyJSON:         cfg.Server.Environment == "development",
		IncludeRequestID:   true,
		IncludeTimestamp:   true,
		APIVersion:         "v1",
		MaskInternalErrors: cfg.Server.Environment == "production",
	}, logger)

	authMW := middleware.NewAuthMiddleware(sc.AuthService, logger)
	limiter := middleware.NewRateLimiter(sc.Cache, &cfg.RateLimit, logger)

	authController := auth.NewAuthController(sc, logger, builder)
	userController := users.NewUserController(sc, logger, builder)
	jobController := jobs.NewJobController(sc, logger, builder)
	appController := applications.NewApplicationController(sc, logger, builder)

	// Route-level chains. Identity is resolved before rate limiting so
	// authenticated traffic is counted per user rather than per IP.
	authLimited := func(h http.HandlerFunc) http.Handler {
		return limiter.LimitAuth(h)
	}
	public := func(h http.HandlerFunc) http.Handler {
		return authMW.OptionalAuth(limiter.LimitAPI(h))
	}
	protected := func(h http.HandlerFunc) http.Handler {
		return authMW.RequireAuth(limiter.LimitAPI(h))
	}
	recruiter := func(h http.HandlerFunc) http.Handler {
		return authMW.RequireAuth(authMW.RequireRecruiter(limiter.LimitAPI(h)))
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return authMW.RequireAuth(authMW.RequireAdmin(limiter.LimitAPI(h)))
	}
	seeker := func(h http.HandlerFunc) http.Handler {
		return authMW.RequireAuth(authMW.RequireRole(models.RoleJobSeeker)(limiter.LimitApply(h)))
	}

	mux := http.NewServeMux()

	// Health
	mux.Handle("GET /health", healthHandler(sc, builder))

	// Auth
	mux.Handle("POST /api/v1/auth/register", authLimited(authController.Register))
	mux.Handle("POST /api/v1/auth/login", authLimited(authController.Login))
	mux.Handle("POST /api/v1/auth/forgot-password", authLimited(authController.ForgotPassword))
	mux.Handle("POST /api/v1/auth/reset-password", authLimited(authController.ResetPassword))
	mux.Handle("POST /api/v1/auth/change-password", protected(authController.ChangePassword))
	mux.Handle("GET /api/v1/auth/me", protected(authController.Me))

	// Jobs
	mux.Handle("GET /api/v1/jobs", public(jobController.ListJobs))
	mux.Handle("GET /api/v1/jobs/mine", recruiter(jobController.MyJobs))
	mux.Handle("GET /api/v1/jobs/{id}", public(jobController.GetJob))
	mux.Handle("POST /api/v1/jobs", recruiter(jobController.CreateJob))
	mux.Handle("PUT /api/v1/jobs/{id}", recruiter(jobController.UpdateJob))
	mux.Handle("DELETE /api/v1/jobs/{id}", recruiter(jobController.DeleteJob))
	mux.Handle("POST /api/v1/jobs/{id}/close", recruiter(jobController.CloseJob))

	// Applications
	mux.Handle("POST /api/v1/applications", seeker(appController.Apply))
	mux.Handle("GET /api/v1/applications", admin(appController.ListAll))
	mux.Handle("GET /api/v1/applications/my-applications", protected(appController.ListMine))
	mux.Handle("GET /api/v1/applications/job/{jobId}", recruiter(appController.ListForJob))
	mux.Handle("GET /api/v1/applications/stats", recruiter(appController.Stats))
	mux.Handle("GET /api/v1/applications/{id}", protected(appController.GetApplication))
	mux.Handle("DELETE /api/v1/applications/{id}", protected(appController.Withdraw))
	mux.Handle("PATCH /api/v1/applications/{id}/status", recruiter(appController.UpdateStatus))

	// Users
	mux.Handle("GET /api/v1/users/{id}", protected(userController.GetUser))
	mux.Handle("PUT /api/v1/users/me", protected(userController.UpdateProfile))
	mux.Handle("POST /api/v1/users/me/resume", protected(userController.UploadResume))
	mux.Handle("POST /api/v1/users/me/avatar", protected(userController.UploadAvatar))
	mux.Handle("GET /api/v1/users", admin(userController.ListUsers))
	mux.Handle("PATCH /api/v1/users/{id}/active", admin(userController.SetUserActive))
	mux.Handle("PATCH /api/v1/users/{id}/role", admin(userController.UpdateUserRole))
	mux.Handle("DELETE /api/v1/users/{id}", admin(userController.DeleteUser))

	// Global middleware, outermost first
	var handler http.Handler = mux
	handler = response.Middleware(builder)(handler)
	corsOrigin := ""
	if len(cfg.Server.CORSAllowedOrigins) > 0 {
		corsOrigin = cfg.Server.CORSAllowedOrigins[0]
	}
	handler = middleware.CORS(corsOrigin)(handler)
	handler = middleware.SecureHeaders(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RecoverPanic(logger)(handler)
	handler = middleware.RequestID(logger)(handler)

	return handler
}

// healthHandler reports the status of the database, cache, and event bus
func healthHandler(sc *services.ServiceCollection, builder *response.Builder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		health := sc.Health(r.Context())
		builder.WriteSuccess(w, r, health)
	})
}
