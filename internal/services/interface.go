// file: internal/services/interface.go
package services

import (
	"context"

	"jobmatchhub/internal/models"
)

// ===============================
// CORE SERVICE INTERFACES
// ===============================

// AuthService defines authentication and account business logic
type AuthService interface {
	// Authentication
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)

	// Password management
	ChangePassword(ctx context.Context, req *ChangePasswordRequest) error
	ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *ResetPasswordRequest) error

	// Token handling
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
}

// UserService defines user and profile business logic
type UserService interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetCurrentUser(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*models.User, error)

	// Admin operations
	ListUsers(ctx context.Context, req *ListUsersRequest) (*models.PaginatedResponse[*models.User], error)
	SetUserActive(ctx context.Context, req *SetUserActiveRequest) error
	UpdateUserRole(ctx context.Context, req *UpdateUserRoleRequest) (*models.User, error)
	DeleteUser(ctx context.Context, adminID, userID int64) error
}

// JobService defines job posting business logic
type JobService interface {
	CreateJob(ctx context.Context, req *CreateJobRequest) (*models.Job, error)
	GetJobByID(ctx context.Context, jobID int64, viewerID *int64) (*models.Job, error)
	UpdateJob(ctx context.Context, req *UpdateJobRequest) (*models.Job, error)
	DeleteJob(ctx context.Context, jobID, userID int64, isAdmin bool) error
	CloseJob(ctx context.Context, jobID, userID int64, isAdmin bool) error

	// Listing and search
	ListJobs(ctx context.Context, req *ListJobsRequest) (*models.PaginatedResponse[*models.Job], error)
	GetMyJobs(ctx context.Context, posterID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Job], error)
}

// ApplicationService defines the application lifecycle business logic
type ApplicationService interface {
	// Submission
	Apply(ctx context.Context, req *ApplyRequest) (*models.Application, error)
	Withdraw(ctx context.Context, applicationID, userID int64) (*models.Application, error)

	// Recruiter review
	UpdateStatus(ctx context.Context, req *UpdateApplicationStatusRequest) (*models.Application, error)

	// Retrieval
	GetByID(ctx context.Context, applicationID, viewerID int64, isAdmin bool) (*models.Application, error)
	ListMine(ctx context.Context, req *ListMyApplicationsRequest) (*models.PaginatedResponse[*models.Application], error)
	ListForJob(ctx context.Context, req *ListJobApplicationsRequest) (*models.PaginatedResponse[*models.Application], error)
	ListAll(ctx context.Context, req *ListAllApplicationsRequest) (*models.PaginatedResponse[*models.Application], error)

	// Analytics
	GetRecruiterStats(ctx context.Context, recruiterID int64) (*models.ApplicationStats, error)
}

// ===============================
// INFRASTRUCTURE SERVICES
// ===============================

// EmailService handles outbound notification email
type EmailService interface {
	SendWelcomeEmail(ctx context.Context, to, name string) error
	SendPasswordResetEmail(ctx context.Context, to, token string) error
	SendApplicationReceivedEmail(ctx context.Context, to, applicantName, jobTitle string) error
	SendStatusChangeEmail(ctx context.Context, to, jobTitle string, status models.ApplicationStatus, feedback string) error
}

// FileService handles resume and avatar uploads
type FileService interface {
	UploadResume(ctx context.Context, req *FileUploadRequest) (*FileUploadResult, error)
	UploadAvatar(ctx context.Context, req *FileUploadRequest) (*FileUploadResult, error)
	DeleteFile(ctx context.Context, publicID string) error
}
