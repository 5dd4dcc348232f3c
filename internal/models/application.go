// file: internal/models/application.go
package models

import "time"

// ===============================
// APPLICATION STATUS
// ===============================

// ApplicationStatus is the lifecycle state of an application
type ApplicationStatus string

// Application lifecycle states
const (
	StatusPending     ApplicationStatus = "pending"
	StatusReviewed    ApplicationStatus = "reviewed"
	StatusShortlisted ApplicationStatus = "shortlisted"
	StatusInterviewed ApplicationStatus = "interviewed"
	StatusOffered     ApplicationStatus = "offered"
	StatusRejected    ApplicationStatus = "rejected"
	StatusWithdrawn   ApplicationStatus = "withdrawn"
)

// AllStatuses lists every recognized lifecycle state
var AllStatuses = []ApplicationStatus{
	StatusPending,
	StatusReviewed,
	StatusShortlisted,
	StatusInterviewed,
	StatusOffered,
	StatusRejected,
	StatusWithdrawn,
}

// ValidStatuses is the closed set of lifecycle states
var ValidStatuses = map[ApplicationStatus]bool{
	StatusPending:     true,
	StatusReviewed:    true,
	StatusShortlisted: true,
	StatusInterviewed: true,
	StatusOffered:     true,
	StatusRejected:    true,
	StatusWithdrawn:   true,
}

// IsValid reports whether s is a recognized lifecycle state
func (s ApplicationStatus) IsValid() bool {
	return ValidStatuses[s]
}

// IsTerminal reports whether no further recruiter transitions apply.
// Withdrawn is terminal for the applicant but can be reopened by re-applying.
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusOffered || s == StatusRejected || s == StatusWithdrawn
}

// withdrawableFrom is the single transition table consulted by every
// applicant-initiated withdrawal. Recruiter updates may set any valid
// status; withdrawal is only permitted from in-flight states.
var withdrawableFrom = map[ApplicationStatus]bool{
	StatusPending:     true,
	StatusReviewed:    true,
	StatusShortlisted: true,
	StatusInterviewed: true,
}

// CanWithdraw reports whether an applicant may withdraw from state s
func (s ApplicationStatus) CanWithdraw() bool {
	return withdrawableFrom[s]
}

// ===============================
// APPLICATION MODEL
// ===============================

// Application links a job seeker to a job posting.
// At most one row exists per (job, applicant) pair; a withdrawn
// application is reopened in place when the seeker re-applies.
type Application struct {
	ID          int64             `json:"id" db:"id"`
	JobID       int64             `json:"job_id" db:"job_id"`
	ApplicantID int64             `json:"applicant_id" db:"applicant_id"`
	Status      ApplicationStatus `json:"status" db:"status"`
	CoverLetter string            `json:"cover_letter,omitempty" db:"cover_letter" validate:"omitempty,max=1000"`
	ResumeURL   string            `json:"resume_url,omitempty" db:"resume_url"`

	// Recruiter-only fields
	Notes    string `json:"notes,omitempty" db:"notes" validate:"omitempty,max=500"`
	Feedback string `json:"feedback,omitempty" db:"feedback" validate:"omitempty,max=1000"`

	// Set on every recruiter status change, cleared when a withdrawn
	// application is reopened
	ReviewedAt *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
	ReviewedBy *int64     `json:"reviewed_by,omitempty" db:"reviewed_by"`

	AppliedAt time.Time `json:"applied_at" db:"applied_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Joined fields (not in applications table)
	Job       *JobSummary  `json:"job,omitempty" db:"-"`
	Applicant *UserSummary `json:"applicant,omitempty" db:"-"`
}

// VisibleTo reports whether userID may read this application.
// Applicants see their own; the job owner sees applications to their
// jobs; admins see everything.
func (a *Application) VisibleTo(userID int64, isAdmin bool, jobOwnerID int64) bool {
	if isAdmin {
		return true
	}
	return a.ApplicantID == userID || jobOwnerID == userID
}

// ApplicationStats aggregates a recruiter's application pipeline
type ApplicationStats struct {
	Total    int64                       `json:"total"`
	ByStatus map[ApplicationStatus]int64 `json:"by_status"`
	Recent   []*Application              `json:"recent"`
}
