// file: internal/services/application_service.go
package services

import (
	"context"
	"errors"
	"time"

	"jobmatchhub/internal/events"
	"jobmatchhub/internal/models"
	"jobmatchhub/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// timeNow is swappable so deadline checks can be pinned in tests
var timeNow = time.Now

// applicationService implements the application lifecycle
type applicationService struct {
	appRepo  repositories.ApplicationRepository
	jobRepo  repositories.JobRepository
	userRepo repositories.UserRepository
	events   events.EventBus
	logger   *zap.Logger
	validate *validator.Validate
}

// NewApplicationService creates a new application service
func NewApplicationService(
	appRepo repositories.ApplicationRepository,
	jobRepo repositories.JobRepository,
	userRepo repositories.UserRepository,
	eventBus events.EventBus,
	logger *zap.Logger,
) ApplicationService {
	return &applicationService{
		appRepo:  appRepo,
		jobRepo:  jobRepo,
		userRepo: userRepo,
		events:   eventBus,
		logger:   logger,
		validate: validator.New(),
	}
}

// ===============================
// SUBMISSION
// ===============================

// Apply submits an application. A withdrawn application for the same
// job is reopened instead of inserting a second row, so the unique
// (job, applicant) pair holds across the whole lifecycle.
func (s *applicationService) Apply(ctx context.Context, req *ApplyRequest) (*models.Application, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid application data", err)
	}

	applicant, err := s.userRepo.GetByID(ctx, req.ApplicantID)
	if err != nil {
		return nil, NewInternalError("failed to look up applicant", err)
	}
	if applicant == nil || !applicant.IsActive {
		return nil, NewUnauthorizedError("account no longer active")
	}
	if !applicant.IsJobSeeker() {
		return nil, NewForbiddenError("only job seekers can apply to jobs")
	}

	job, err := s.jobRepo.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, NewInternalError("failed to look up job", err)
	}
	if job == nil || !job.IsActive {
		return nil, EntityNotFoundError("job", req.JobID)
	}
	if job.DeadlinePassed(timeNow()) {
		return nil, NewConflictError("the application deadline for this job has passed", "DEADLINE_PASSED")
	}

	// Fall back to the resume on file when the request carries none
	resumeURL := req.ResumeURL
	if resumeURL == "" {
		resumeURL = applicant.Profile.Resume
	}
	if resumeURL == "" {
		return nil, NewValidationError("a resume is required to apply", nil)
	}

	existing, err := s.appRepo.GetByJobAndApplicant(ctx, req.JobID, req.ApplicantID)
	if err != nil {
		return nil, NewInternalError("failed to check existing application", err)
	}

	var (
		app       *models.Application
		reapplied bool
	)
	switch {
	case existing == nil:
		app = &models.Application{
			JobID:       req.JobID,
			ApplicantID: req.ApplicantID,
			Status:      models.StatusPending,
			CoverLetter: models.SanitizeString(req.CoverLetter),
			ResumeURL:   resumeURL,
		}
		if verrs := app.Validate(); verrs.HasErrors() {
			return nil, NewValidationError(verrs.Error(), nil)
		}
		if err := s.appRepo.Create(ctx, app); err != nil {
			// The pre-check races against concurrent applies; the
			// unique constraint decides the winner and the loser gets
			// the same conflict the sequential path returns
			if repositories.IsUniqueViolation(err, "applications_job_id_applicant_id_key") {
				return nil, NewConflictError("you have already applied to this job", "ALREADY_APPLIED")
			}
			return nil, NewInternalError("failed to submit application", err)
		}

	case existing.Status == models.StatusWithdrawn:
		existing.CoverLetter = models.SanitizeString(req.CoverLetter)
		existing.ResumeURL = resumeURL
		if verrs := existing.Validate(); verrs.HasErrors() {
			return nil, NewValidationError(verrs.Error(), nil)
		}
		if err := s.appRepo.Reopen(ctx, existing); err != nil {
			// A concurrent re-apply already flipped the row back
			if errors.Is(err, repositories.ErrApplicationNotWithdrawn) {
				return nil, NewConflictError("you have already applied to this job", "ALREADY_APPLIED")
			}
			return nil, NewInternalError("failed to reopen application", err)
		}
		app = existing
		reapplied = true

	default:
		return nil, NewConflictError("you have already applied to this job", "ALREADY_APPLIED")
	}

	app.Job = job.Summary()
	app.Applicant = applicant.Summary()

	recruiterEmail := ""
	if recruiter, err := s.userRepo.GetByID(ctx, job.PostedBy); err == nil && recruiter != nil {
		recruiterEmail = recruiter.Email
	}

	s.events.PublishAsync(ctx, events.NewApplicationSubmittedEvent(
		app.ID, job.ID, applicant.ID,
		job.Title, job.Company,
		applicant.Name, applicant.Email,
		recruiterEmail, reapplied,
	))

	s.logger.Info("Application submitted",
		zap.Int64("application_id", app.ID),
		zap.Int64("job_id", job.ID),
		zap.Bool("reapplied", reapplied),
	)

	return app, nil
}

// Withdraw pulls an application out of the running. Only the applicant
// may withdraw, and only while the application is still in play.
func (s *applicationService) Withdraw(ctx context.Context, applicationID, userID int64) (*models.Application, error) {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, NewInternalError("failed to get application", err)
	}
	if app == nil {
		return nil, EntityNotFoundError("application", applicationID)
	}
	if app.ApplicantID != userID {
		return nil, NewForbiddenError("you can only withdraw your own applications")
	}

	if app.Status == models.StatusWithdrawn {
		return nil, NewConflictError("application is already withdrawn", "ALREADY_WITHDRAWN")
	}
	if !app.Status.CanWithdraw() {
		return nil, NewConflictError(
			"application can no longer be withdrawn in its current status",
			"WITHDRAW_NOT_ALLOWED",
		)
	}

	if err := s.appRepo.Withdraw(ctx, applicationID); err != nil {
		// A concurrent withdraw or decision landed after the read above
		if errors.Is(err, repositories.ErrApplicationNotWithdrawable) {
			return nil, NewConflictError(
				"application can no longer be withdrawn in its current status",
				"WITHDRAW_NOT_ALLOWED",
			)
		}
		return nil, NewInternalError("failed to withdraw application", err)
	}
	app.Status = models.StatusWithdrawn

	jobTitle := ""
	if app.Job != nil {
		jobTitle = app.Job.Title
	}
	s.events.PublishAsync(ctx, events.NewApplicationWithdrawnEvent(app.ID, app.JobID, app.ApplicantID, jobTitle))

	return app, nil
}

// ===============================
// RECRUITER REVIEW
// ===============================

// UpdateStatus moves an application through the review pipeline. Only
// the job owner or an admin may change status, and withdrawn
// applications are off limits until the applicant re-applies.
func (s *applicationService) UpdateStatus(ctx context.Context, req *UpdateApplicationStatusRequest) (*models.Application, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid status update", err)
	}
	if !req.Status.IsValid() {
		return nil, NewValidationError("unknown application status", nil)
	}
	if req.Status == models.StatusWithdrawn {
		return nil, NewForbiddenError("only the applicant can withdraw an application")
	}

	app, err := s.appRepo.GetByID(ctx, req.ApplicationID)
	if err != nil {
		return nil, NewInternalError("failed to get application", err)
	}
	if app == nil {
		return nil, EntityNotFoundError("application", req.ApplicationID)
	}

	job, err := s.jobRepo.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, NewInternalError("failed to look up job", err)
	}
	if job == nil {
		return nil, EntityNotFoundError("job", app.JobID)
	}
	if !job.OwnedBy(req.ReviewerID) && !req.IsAdmin {
		return nil, InsufficientPermissionsError("review", "application")
	}

	if app.Status == models.StatusWithdrawn {
		return nil, NewConflictError("a withdrawn application cannot be reviewed", "APPLICATION_WITHDRAWN")
	}

	oldStatus := app.Status

	notes := app.Notes
	if req.Notes != "" {
		notes = models.SanitizeString(req.Notes)
	}
	feedback := app.Feedback
	if req.Feedback != "" {
		feedback = models.SanitizeString(req.Feedback)
	}

	// Any status in the enum is accepted, regressions included, so
	// recruiters can revise earlier decisions
	if err := s.appRepo.UpdateStatus(ctx, app.ID, req.Status, req.ReviewerID, notes, feedback); err != nil {
		// A withdrawal committed after the read above
		if errors.Is(err, repositories.ErrApplicationWithdrawn) {
			return nil, NewConflictError("a withdrawn application cannot be reviewed", "APPLICATION_WITHDRAWN")
		}
		return nil, NewInternalError("failed to update application status", err)
	}
	now := timeNow()
	app.Status = req.Status
	app.Notes = notes
	app.Feedback = feedback
	app.ReviewedAt = &now
	app.ReviewedBy = &req.ReviewerID

	applicantName, applicantEmail := "", ""
	if app.Applicant != nil {
		applicantName = app.Applicant.Name
		applicantEmail = app.Applicant.Email
	}
	s.events.PublishAsync(ctx, events.NewApplicationStatusChangedEvent(
		app.ID, app.JobID, req.ReviewerID,
		job.Title, job.Company,
		string(oldStatus), string(req.Status),
		feedback, applicantName, applicantEmail,
	))

	s.logger.Info("Application status changed",
		zap.Int64("application_id", app.ID),
		zap.String("from", string(oldStatus)),
		zap.String("to", string(req.Status)),
	)

	return app, nil
}

// ===============================
// RETRIEVAL
// ===============================

// GetByID returns an application to the applicant, the job owner, or
// an admin; anyone else is refused
func (s *applicationService) GetByID(ctx context.Context, applicationID, viewerID int64, isAdmin bool) (*models.Application, error) {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, NewInternalError("failed to get application", err)
	}
	if app == nil {
		return nil, EntityNotFoundError("application", applicationID)
	}

	job, err := s.jobRepo.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, NewInternalError("failed to look up job", err)
	}

	jobOwnerID := int64(0)
	if job != nil {
		jobOwnerID = job.PostedBy
	}
	if !app.VisibleTo(viewerID, isAdmin, jobOwnerID) {
		return nil, InsufficientPermissionsError("view", "application")
	}

	return app, nil
}

// ListMine returns the caller's own applications
func (s *applicationService) ListMine(ctx context.Context, req *ListMyApplicationsRequest) (*models.PaginatedResponse[*models.Application], error) {
	if req.Status != "" && !req.Status.IsValid() {
		return nil, NewValidationError("unknown application status", nil)
	}
	return s.appRepo.ListByApplicant(ctx, req.ApplicantID, req.Status, req.Pagination)
}

// ListForJob returns applications for a job the viewer owns
func (s *applicationService) ListForJob(ctx context.Context, req *ListJobApplicationsRequest) (*models.PaginatedResponse[*models.Application], error) {
	if req.Status != "" && !req.Status.IsValid() {
		return nil, NewValidationError("unknown application status", nil)
	}

	job, err := s.jobRepo.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, NewInternalError("failed to look up job", err)
	}
	if job == nil {
		return nil, EntityNotFoundError("job", req.JobID)
	}
	if !job.OwnedBy(req.ViewerID) && !req.IsAdmin {
		return nil, InsufficientPermissionsError("list applications for", "job")
	}

	return s.appRepo.ListByJob(ctx, req.JobID, req.Status, req.Pagination)
}

// ListAll pages through every application. Admin only; the route
// gating enforces the role.
func (s *applicationService) ListAll(ctx context.Context, req *ListAllApplicationsRequest) (*models.PaginatedResponse[*models.Application], error) {
	if req.Status != "" && !req.Status.IsValid() {
		return nil, NewValidationError("unknown application status", nil)
	}
	return s.appRepo.ListAll(ctx, req.Status, req.Pagination)
}

// GetRecruiterStats aggregates the pipeline across a recruiter's jobs
func (s *applicationService) GetRecruiterStats(ctx context.Context, recruiterID int64) (*models.ApplicationStats, error) {
	stats, err := s.appRepo.GetRecruiterStats(ctx, recruiterID)
	if err != nil {
		return nil, NewInternalError("failed to get application stats", err)
	}
	return stats, nil
}
