// file: internal/services/types.go
package services

import (
	"io"
	"time"

	"jobmatchhub/internal/models"
)

// ===============================
// AUTH SERVICE TYPES
// ===============================

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Role     string `json:"role" validate:"omitempty,oneof=job_seeker recruiter"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the issued token alongside the account summary
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type ChangePasswordRequest struct {
	UserID          int64  `json:"-"`
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

// TokenClaims is the authenticated identity extracted from a JWT
type TokenClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// ===============================
// USER SERVICE TYPES
// ===============================

type UpdateProfileRequest struct {
	UserID  int64           `json:"-"`
	Name    *string         `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Profile *models.Profile `json:"profile,omitempty"`
}

type ListUsersRequest struct {
	Role       string                  `json:"role,omitempty"`
	Pagination models.PaginationParams `json:"pagination"`
}

type SetUserActiveRequest struct {
	AdminID int64 `json:"-"`
	UserID  int64 `json:"-"`
	Active  bool  `json:"active"`
}

type UpdateUserRoleRequest struct {
	AdminID int64  `json:"-"`
	UserID  int64  `json:"-"`
	Role    string `json:"role" validate:"required,oneof=job_seeker recruiter admin"`
}

// ===============================
// JOB SERVICE TYPES
// ===============================

type CreateJobRequest struct {
	PosterID        int64      `json:"-"`
	Title           string     `json:"title" validate:"required,min=3,max=100"`
	Company         string     `json:"company" validate:"required,max=100"`
	Description     string     `json:"description" validate:"required,min=10,max=2000"`
	Requirements    string     `json:"requirements" validate:"required,max=1000"`
	Location        string     `json:"location" validate:"required,max=100"`
	JobType         string     `json:"job_type" validate:"required,oneof=full-time part-time contract internship remote"`
	ExperienceLevel string     `json:"experience_level" validate:"required,oneof=entry-level mid-level senior-level executive"`
	SalaryMin       *int64     `json:"salary_min,omitempty" validate:"omitempty,min=0"`
	SalaryMax       *int64     `json:"salary_max,omitempty" validate:"omitempty,min=0"`
	SalaryCurrency  string     `json:"salary_currency,omitempty" validate:"omitempty,len=3"`
	Skills          []string   `json:"skills,omitempty"`
	Benefits        []string   `json:"benefits,omitempty"`
	Deadline        *time.Time `json:"application_deadline,omitempty"`
}

type UpdateJobRequest struct {
	JobID           int64      `json:"-"`
	UserID          int64      `json:"-"`
	IsAdmin         bool       `json:"-"`
	Title           *string    `json:"title,omitempty" validate:"omitempty,min=3,max=100"`
	Company         *string    `json:"company,omitempty" validate:"omitempty,max=100"`
	Description     *string    `json:"description,omitempty" validate:"omitempty,min=10,max=2000"`
	Requirements    *string    `json:"requirements,omitempty" validate:"omitempty,max=1000"`
	Location        *string    `json:"location,omitempty" validate:"omitempty,max=100"`
	JobType         *string    `json:"job_type,omitempty" validate:"omitempty,oneof=full-time part-time contract internship remote"`
	ExperienceLevel *string    `json:"experience_level,omitempty" validate:"omitempty,oneof=entry-level mid-level senior-level executive"`
	SalaryMin       *int64     `json:"salary_min,omitempty" validate:"omitempty,min=0"`
	SalaryMax       *int64     `json:"salary_max,omitempty" validate:"omitempty,min=0"`
	SalaryCurrency  *string    `json:"salary_currency,omitempty" validate:"omitempty,len=3"`
	Skills          []string   `json:"skills,omitempty"`
	Benefits        []string   `json:"benefits,omitempty"`
	Deadline        *time.Time `json:"application_deadline,omitempty"`
	IsActive        *bool      `json:"is_active,omitempty"`
}

type ListJobsRequest struct {
	JobType         string                  `json:"job_type,omitempty"`
	ExperienceLevel string                  `json:"experience_level,omitempty"`
	Location        string                  `json:"location,omitempty"`
	Company         string                  `json:"company,omitempty"`
	Search          string                  `json:"search,omitempty"`
	MinSalary       *int64                  `json:"min_salary,omitempty"`
	MaxSalary       *int64                  `json:"max_salary,omitempty"`
	Pagination      models.PaginationParams `json:"pagination"`
}

// ===============================
// APPLICATION SERVICE TYPES
// ===============================

type ApplyRequest struct {
	JobID       int64  `json:"job_id" validate:"required,min=1"`
	ApplicantID int64  `json:"-"`
	CoverLetter string `json:"cover_letter,omitempty" validate:"omitempty,max=1000"`
	ResumeURL   string `json:"resume_url,omitempty" validate:"omitempty,url"`
}

type UpdateApplicationStatusRequest struct {
	ApplicationID int64                    `json:"-"`
	ReviewerID    int64                    `json:"-"`
	IsAdmin       bool                     `json:"-"`
	Status        models.ApplicationStatus `json:"status" validate:"required"`
	Notes         string                   `json:"notes,omitempty" validate:"omitempty,max=500"`
	Feedback      string                   `json:"feedback,omitempty" validate:"omitempty,max=1000"`
}

type ListMyApplicationsRequest struct {
	ApplicantID int64                    `json:"-"`
	Status      models.ApplicationStatus `json:"status,omitempty"`
	Pagination  models.PaginationParams  `json:"pagination"`
}

type ListJobApplicationsRequest struct {
	JobID      int64                    `json:"-"`
	ViewerID   int64                    `json:"-"`
	IsAdmin    bool                     `json:"-"`
	Status     models.ApplicationStatus `json:"status,omitempty"`
	Pagination models.PaginationParams  `json:"pagination"`
}

type ListAllApplicationsRequest struct {
	Status     models.ApplicationStatus `json:"status,omitempty"`
	Pagination models.PaginationParams  `json:"pagination"`
}

// ===============================
// FILE SERVICE TYPES
// ===============================

type FileUploadRequest struct {
	UserID      int64     `json:"-"`
	File        io.Reader `json:"-"`
	Filename    string    `json:"filename" validate:"required"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
}

type FileUploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Size     int64  `json:"size"`
	Format   string `json:"format,omitempty"`
}
