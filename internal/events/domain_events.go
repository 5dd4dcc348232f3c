package events

import "time"

// Event types published by the application services
const (
	EventUserRegistered           = "user.registered"
	EventUserLoggedIn             = "user.logged_in"
	EventPasswordResetRequested   = "password.reset_requested"
	EventPasswordChanged          = "password.changed"
	EventJobCreated               = "job.created"
	EventApplicationSubmitted     = "application.submitted"
	EventApplicationStatusChanged = "application.status_changed"
	EventApplicationWithdrawn     = "application.withdrawn"
	EventFileUploaded             = "file.uploaded"
)

// ===============================
// USER EVENTS
// ===============================

// UserRegisteredEvent is emitted after a successful registration
type UserRegisteredEvent struct {
	BaseEvent
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// NewUserRegisteredEvent creates a new user registered event
func NewUserRegisteredEvent(userID int64, name, email, role string) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventUserRegistered,
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		UserID: userID,
		Name:   name,
		Email:  email,
		Role:   role,
	}
}

// UserLoggedInEvent is emitted after a successful login
type UserLoggedInEvent struct {
	BaseEvent
	LoginAt   time.Time `json:"login_at"`
	IPAddress string    `json:"ip_address,omitempty"`
}

// NewUserLoggedInEvent creates a new user logged in event
func NewUserLoggedInEvent(userID int64, ipAddress string) *UserLoggedInEvent {
	return &UserLoggedInEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventUserLoggedIn,
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		LoginAt:   time.Now(),
		IPAddress: ipAddress,
	}
}

// PasswordResetRequestedEvent is emitted when a reset token is issued.
// The raw token travels only on this event so the email handler can
// build the reset link; only its hash is stored.
type PasswordResetRequestedEvent struct {
	BaseEvent
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	ResetToken string    `json:"-"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// NewPasswordResetRequestedEvent creates a new password reset requested event
func NewPasswordResetRequestedEvent(userID int64, name, email, resetToken string, expiresAt time.Time) *PasswordResetRequestedEvent {
	return &PasswordResetRequestedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventPasswordResetRequested,
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		Email:      email,
		Name:       name,
		ResetToken: resetToken,
		ExpiresAt:  expiresAt,
	}
}

// PasswordChangedEvent is emitted after a password change or reset
type PasswordChangedEvent struct {
	BaseEvent
	Email     string    `json:"email"`
	ChangedAt time.Time `json:"changed_at"`
}

// NewPasswordChangedEvent creates a new password changed event
func NewPasswordChangedEvent(userID int64, email string) *PasswordChangedEvent {
	return &PasswordChangedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventPasswordChanged,
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		Email:     email,
		ChangedAt: time.Now(),
	}
}

// ===============================
// JOB EVENTS
// ===============================

// JobCreatedEvent is emitted when a recruiter posts a job
type JobCreatedEvent struct {
	BaseEvent
	JobID   int64  `json:"job_id"`
	Title   string `json:"title"`
	Company string `json:"company"`
}

// NewJobCreatedEvent creates a new job created event
func NewJobCreatedEvent(jobID, posterID int64, title, company string) *JobCreatedEvent {
	return &JobCreatedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventJobCreated,
			Timestamp: time.Now(),
			UserID:    &posterID,
		},
		JobID:   jobID,
		Title:   title,
		Company: company,
	}
}

// ===============================
// APPLICATION EVENTS
// ===============================

// ApplicationSubmittedEvent is emitted when a seeker applies (or
// re-applies after withdrawing)
type ApplicationSubmittedEvent struct {
	BaseEvent
	ApplicationID  int64  `json:"application_id"`
	JobID          int64  `json:"job_id"`
	JobTitle       string `json:"job_title"`
	Company        string `json:"company"`
	ApplicantName  string `json:"applicant_name"`
	ApplicantEmail string `json:"applicant_email"`
	RecruiterEmail string `json:"recruiter_email,omitempty"`
	Reapplied      bool   `json:"reapplied"`
}

// NewApplicationSubmittedEvent creates a new application submitted event
func NewApplicationSubmittedEvent(applicationID, jobID, applicantID int64, jobTitle, company, applicantName, applicantEmail, recruiterEmail string, reapplied bool) *ApplicationSubmittedEvent {
	return &ApplicationSubmittedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventApplicationSubmitted,
			Timestamp: time.Now(),
			UserID:    &applicantID,
		},
		ApplicationID:  applicationID,
		JobID:          jobID,
		JobTitle:       jobTitle,
		Company:        company,
		ApplicantName:  applicantName,
		ApplicantEmail: applicantEmail,
		RecruiterEmail: recruiterEmail,
		Reapplied:      reapplied,
	}
}

// ApplicationStatusChangedEvent is emitted when a recruiter moves an
// application through the pipeline
type ApplicationStatusChangedEvent struct {
	BaseEvent
	ApplicationID  int64  `json:"application_id"`
	JobID          int64  `json:"job_id"`
	JobTitle       string `json:"job_title"`
	Company        string `json:"company"`
	OldStatus      string `json:"old_status"`
	NewStatus      string `json:"new_status"`
	Feedback       string `json:"feedback,omitempty"`
	ApplicantName  string `json:"applicant_name"`
	ApplicantEmail string `json:"applicant_email"`
}

// NewApplicationStatusChangedEvent creates a new status changed event
func NewApplicationStatusChangedEvent(applicationID, jobID, actorID int64, jobTitle, company, oldStatus, newStatus, feedback, applicantName, applicantEmail string) *ApplicationStatusChangedEvent {
	return &ApplicationStatusChangedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventApplicationStatusChanged,
			Timestamp: time.Now(),
			UserID:    &actorID,
		},
		ApplicationID:  applicationID,
		JobID:          jobID,
		JobTitle:       jobTitle,
		Company:        company,
		OldStatus:      oldStatus,
		NewStatus:      newStatus,
		Feedback:       feedback,
		ApplicantName:  applicantName,
		ApplicantEmail: applicantEmail,
	}
}

// ApplicationWithdrawnEvent is emitted when a seeker withdraws
type ApplicationWithdrawnEvent struct {
	BaseEvent
	ApplicationID int64  `json:"application_id"`
	JobID         int64  `json:"job_id"`
	JobTitle      string `json:"job_title"`
}

// NewApplicationWithdrawnEvent creates a new application withdrawn event
func NewApplicationWithdrawnEvent(applicationID, jobID, applicantID int64, jobTitle string) *ApplicationWithdrawnEvent {
	return &ApplicationWithdrawnEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventApplicationWithdrawn,
			Timestamp: time.Now(),
			UserID:    &applicantID,
		},
		ApplicationID: applicationID,
		JobID:         jobID,
		JobTitle:      jobTitle,
	}
}

// ===============================
// FILE EVENTS
// ===============================

// FileUploadedEvent is emitted when a resume or avatar upload succeeds
type FileUploadedEvent struct {
	BaseEvent
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size"`
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// NewFileUploadedEvent creates a new file uploaded event
func NewFileUploadedEvent(fileType string, fileSize int64, url, publicID string, userID *int64) *FileUploadedEvent {
	return &FileUploadedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventFileUploaded,
			Timestamp: time.Now(),
			UserID:    userID,
		},
		FileType: fileType,
		FileSize: fileSize,
		URL:      url,
		PublicID: publicID,
	}
}
