// file: internal/repositories/interfaces.go
package repositories

import (
	"context"
	"time"

	"jobmatchhub/internal/models"
)

// ===============================
// CORE REPOSITORY INTERFACES
// ===============================

// UserRepository defines the contract for user data operations
type UserRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error

	// Auth support
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	SetResetToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error
	GetByResetToken(ctx context.Context, tokenHash string) (*models.User, error)
	ClearResetToken(ctx context.Context, userID int64) error
	UpdateLastLogin(ctx context.Context, userID int64) error

	// Account state
	SetActive(ctx context.Context, userID int64, active bool) error

	// Listing
	List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.User], error)
	GetByRole(ctx context.Context, role string, params models.PaginationParams) (*models.PaginatedResponse[*models.User], error)
}

// JobFilter narrows job listings
type JobFilter struct {
	JobType         string
	ExperienceLevel string
	Location        string
	Company         string
	Search          string
	MinSalary       *int64
	MaxSalary       *int64
	PostedBy        *int64
	IncludeInactive bool
}

// JobRepository defines the contract for job posting data operations
type JobRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id int64) (*models.Job, error)
	Update(ctx context.Context, job *models.Job) error
	Delete(ctx context.Context, id int64) error

	// Listing and filtering
	List(ctx context.Context, filter JobFilter, params models.PaginationParams) (*models.PaginatedResponse[*models.Job], error)
	GetByPoster(ctx context.Context, posterID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Job], error)

	// Counters
	IncrementViews(ctx context.Context, jobID int64) error

	// State
	SetActive(ctx context.Context, jobID int64, active bool) error
}

// ApplicationRepository defines the contract for application data
// operations. Submit and withdraw adjust the owning job's
// applications_count in the same transaction as the row change.
type ApplicationRepository interface {
	// Create inserts a new application and increments the job counter
	Create(ctx context.Context, app *models.Application) error

	// Reopen resets a withdrawn application to pending with a fresh
	// cover letter and increments the job counter
	Reopen(ctx context.Context, app *models.Application) error

	GetByID(ctx context.Context, id int64) (*models.Application, error)
	GetByJobAndApplicant(ctx context.Context, jobID, applicantID int64) (*models.Application, error)

	// Withdraw marks the application withdrawn and decrements the job
	// counter
	Withdraw(ctx context.Context, appID int64) error

	// UpdateStatus sets status, notes, and feedback, stamping the
	// reviewer and review time
	UpdateStatus(ctx context.Context, appID int64, status models.ApplicationStatus, reviewerID int64, notes, feedback string) error

	// Listing
	ListByApplicant(ctx context.Context, applicantID int64, status models.ApplicationStatus, params models.PaginationParams) (*models.PaginatedResponse[*models.Application], error)
	ListByJob(ctx context.Context, jobID int64, status models.ApplicationStatus, params models.PaginationParams) (*models.PaginatedResponse[*models.Application], error)
	ListAll(ctx context.Context, status models.ApplicationStatus, params models.PaginationParams) (*models.PaginatedResponse[*models.Application], error)

	// Stats aggregates counts by status across a recruiter's jobs
	GetRecruiterStats(ctx context.Context, recruiterID int64) (*models.ApplicationStats, error)

	Delete(ctx context.Context, id int64) error
}
