// file: internal/models/models.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// ===============================
// ROLES
// ===============================

// User roles recognized by the platform
const (
	RoleJobSeeker = "job_seeker"
	RoleRecruiter = "recruiter"
	RoleAdmin     = "admin"
)

// ValidRoles is the closed set of user roles
var ValidRoles = map[string]bool{
	RoleJobSeeker: true,
	RoleRecruiter: true,
	RoleAdmin:     true,
}

// ===============================
// USER MODEL
// ===============================

// User represents a platform account (job seeker, recruiter, or admin)
type User struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name" validate:"required,max=50"`
	Email string `json:"email" db:"email" validate:"required,email,max=320"`

	// Authentication - never serialized outward
	PasswordHash string `json:"-" db:"password_hash"`

	Role     string  `json:"role" db:"role" validate:"required,oneof=job_seeker recruiter admin"`
	Profile  Profile `json:"profile" db:"profile"`
	IsActive bool    `json:"is_active" db:"is_active"`

	// Password reset - hashed token, never serialized
	PasswordResetToken   *string    `json:"-" db:"password_reset_token"`
	PasswordResetExpires *time.Time `json:"-" db:"password_reset_expires"`

	LastLogin time.Time `json:"last_login" db:"last_login"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsRecruiter reports whether the user may post and manage jobs
func (u *User) IsRecruiter() bool {
	return u.Role == RoleRecruiter || u.Role == RoleAdmin
}

// IsJobSeeker reports whether the user may submit applications
func (u *User) IsJobSeeker() bool {
	return u.Role == RoleJobSeeker
}

// IsAdmin reports whether the user has admin privileges
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Summary returns the lightweight projection embedded in responses
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserSummary is the denormalized user projection embedded in responses
type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Profile holds the free-form profile sub-record, stored as JSONB
type Profile struct {
	Phone      string   `json:"phone,omitempty"`
	Location   string   `json:"location,omitempty"`
	Bio        string   `json:"bio,omitempty" validate:"omitempty,max=500"`
	Skills     []string `json:"skills,omitempty"`
	Experience string   `json:"experience,omitempty"`
	Education  string   `json:"education,omitempty"`
	Resume     string   `json:"resume,omitempty"`
	Avatar     string   `json:"avatar,omitempty"`

	// Recruiter fields
	Company string `json:"company,omitempty" validate:"omitempty,max=100"`
	Website string `json:"website,omitempty" validate:"omitempty,url"`
}

// Value implements driver.Valuer for JSONB storage
func (p Profile) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner
func (p *Profile) Scan(value interface{}) error {
	if value == nil {
		*p = Profile{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("cannot scan %T into Profile", value)
	}
}

// Merge overlays non-empty fields from other onto p
func (p *Profile) Merge(other Profile) {
	if other.Phone != "" {
		p.Phone = other.Phone
	}
	if other.Location != "" {
		p.Location = other.Location
	}
	if other.Bio != "" {
		p.Bio = other.Bio
	}
	if len(other.Skills) > 0 {
		p.Skills = other.Skills
	}
	if other.Experience != "" {
		p.Experience = other.Experience
	}
	if other.Education != "" {
		p.Education = other.Education
	}
	if other.Resume != "" {
		p.Resume = other.Resume
	}
	if other.Avatar != "" {
		p.Avatar = other.Avatar
	}
	if other.Company != "" {
		p.Company = other.Company
	}
	if other.Website != "" {
		p.Website = other.Website
	}
}

// ===============================
// JOB MODEL
// ===============================

// Job type enum
const (
	JobTypeFullTime   = "full-time"
	JobTypePartTime   = "part-time"
	JobTypeContract   = "contract"
	JobTypeInternship = "internship"
	JobTypeRemote     = "remote"
)

// ValidJobTypes is the closed set of job types
var ValidJobTypes = map[string]bool{
	JobTypeFullTime:   true,
	JobTypePartTime:   true,
	JobTypeContract:   true,
	JobTypeInternship: true,
	JobTypeRemote:     true,
}

// Experience level enum
const (
	ExperienceEntry     = "entry-level"
	ExperienceMid       = "mid-level"
	ExperienceSenior    = "senior-level"
	ExperienceExecutive = "executive"
)

// ValidExperienceLevels is the closed set of experience levels
var ValidExperienceLevels = map[string]bool{
	ExperienceEntry:     true,
	ExperienceMid:       true,
	ExperienceSenior:    true,
	ExperienceExecutive: true,
}

// Salary represents an optional salary range with currency
type Salary struct {
	Min      *int64 `json:"min,omitempty" validate:"omitempty,min=0"`
	Max      *int64 `json:"max,omitempty" validate:"omitempty,min=0"`
	Currency string `json:"currency,omitempty"`
}

// Job represents a job posting owned by a recruiter
type Job struct {
	ID              int64       `json:"id" db:"id"`
	Title           string      `json:"title" db:"title" validate:"required,max=100"`
	Company         string      `json:"company" db:"company" validate:"required,max=100"`
	Description     string      `json:"description" db:"description" validate:"required,max=2000"`
	Requirements    string      `json:"requirements" db:"requirements" validate:"required,max=1000"`
	Location        string      `json:"location" db:"location" validate:"required,max=100"`
	JobType         string      `json:"job_type" db:"job_type" validate:"required,oneof=full-time part-time contract internship remote"`
	ExperienceLevel string      `json:"experience_level" db:"experience_level" validate:"required,oneof=entry-level mid-level senior-level executive"`
	SalaryMin       *int64      `json:"-" db:"salary_min"`
	SalaryMax       *int64      `json:"-" db:"salary_max"`
	SalaryCurrency  string      `json:"-" db:"salary_currency"`
	Salary          Salary      `json:"salary" db:"-"`
	Skills          StringArray `json:"skills" db:"skills"`
	Benefits        StringArray `json:"benefits" db:"benefits"`

	ApplicationDeadline *time.Time `json:"application_deadline,omitempty" db:"application_deadline"`

	PostedBy          int64 `json:"posted_by" db:"posted_by"`
	IsActive          bool  `json:"is_active" db:"is_active"`
	ApplicationsCount int64 `json:"applications_count" db:"applications_count"`
	ViewsCount        int64 `json:"views_count" db:"views_count"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Joined fields (not in jobs table)
	PosterName    *string `json:"poster_name,omitempty" db:"-"`
	PosterCompany *string `json:"poster_company,omitempty" db:"-"`
}

// SyncSalary copies between the flat DB columns and the nested JSON view.
// Call after scanning (fromDB=true) or before persisting (fromDB=false).
func (j *Job) SyncSalary(fromDB bool) {
	if fromDB {
		j.Salary = Salary{Min: j.SalaryMin, Max: j.SalaryMax, Currency: j.SalaryCurrency}
		return
	}
	j.SalaryMin = j.Salary.Min
	j.SalaryMax = j.Salary.Max
	j.SalaryCurrency = j.Salary.Currency
}

// DeadlinePassed reports whether the stored application deadline is in the past.
// Jobs without a deadline never expire.
func (j *Job) DeadlinePassed(now time.Time) bool {
	return j.ApplicationDeadline != nil && j.ApplicationDeadline.Before(now)
}

// OwnedBy reports whether userID posted this job
func (j *Job) OwnedBy(userID int64) bool {
	return j.PostedBy == userID
}

// Summary returns the lightweight projection embedded in responses
func (j *Job) Summary() *JobSummary {
	if j == nil {
		return nil
	}
	return &JobSummary{
		ID:       j.ID,
		Title:    j.Title,
		Company:  j.Company,
		Location: j.Location,
		JobType:  j.JobType,
		IsActive: j.IsActive,
	}
}

// JobSummary is the denormalized job projection embedded in responses
type JobSummary struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	JobType  string `json:"job_type"`
	IsActive bool   `json:"is_active"`
}

// ===============================
// PAGINATION
// ===============================

// PaginationParams carries 1-indexed page parameters
type PaginationParams struct {
	Page     int    `json:"page" validate:"min=1"`
	PageSize int    `json:"page_size" validate:"min=1,max=100"`
	Sort     string `json:"sort,omitempty"`
	Order    string `json:"order,omitempty" validate:"omitempty,oneof=asc desc"`
}

// Normalize applies defaults and caps
func (p *PaginationParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 10
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	if p.Sort == "" {
		p.Sort = "created_at"
	}
	if p.Order == "" {
		p.Order = "desc"
	}
}

// Offset converts the 1-indexed page to a row offset
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse[T any] struct {
	Data       []T            `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
	Filters    map[string]any `json:"filters,omitempty"`
}

// PaginationMeta contains pagination metadata
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NewPaginationMeta derives metadata from normalized params and a total count
func NewPaginationMeta(params PaginationParams, total int64) PaginationMeta {
	totalPages := 0
	if params.PageSize > 0 {
		totalPages = int((total + int64(params.PageSize) - 1) / int64(params.PageSize))
	}
	return PaginationMeta{
		Page:       params.Page,
		PageSize:   params.PageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}

// ===============================
// CUSTOM TYPES
// ===============================

// StringArray handles PostgreSQL text[] columns, delegating to pq so
// quoted and escaped elements round-trip intact
type StringArray []string

// Scan implements sql.Scanner
func (s *StringArray) Scan(value interface{}) error {
	return (*pq.StringArray)(s).Scan(value)
}

// Value implements driver.Valuer. Nil stays "{}" because the columns
// are NOT NULL.
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	return pq.StringArray(s).Value()
}
