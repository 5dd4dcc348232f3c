// file: internal/services/job_service.go
package services

import (
	"context"
	"time"

	"jobmatchhub/internal/events"
	"jobmatchhub/internal/models"
	"jobmatchhub/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// jobService implements JobService
type jobService struct {
	jobRepo  repositories.JobRepository
	userRepo repositories.UserRepository
	events   events.EventBus
	logger   *zap.Logger
	validate *validator.Validate
}

// NewJobService creates a new job service
func NewJobService(
	jobRepo repositories.JobRepository,
	userRepo repositories.UserRepository,
	eventBus events.EventBus,
	logger *zap.Logger,
) JobService {
	return &jobService{
		jobRepo:  jobRepo,
		userRepo: userRepo,
		events:   eventBus,
		logger:   logger,
		validate: validator.New(),
	}
}

// CreateJob creates a new posting. Only recruiters and admins may
// post; the handler enforces the role, this re-checks it.
func (s *jobService) CreateJob(ctx context.Context, req *CreateJobRequest) (*models.Job, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid job data", err)
	}

	poster, err := s.userRepo.GetByID(ctx, req.PosterID)
	if err != nil {
		return nil, NewInternalError("failed to look up poster", err)
	}
	if poster == nil || !poster.IsActive {
		return nil, NewUnauthorizedError("account no longer active")
	}
	if !poster.IsRecruiter() {
		return nil, InsufficientPermissionsError("create", "job")
	}

	job := &models.Job{
		Title:               models.SanitizeString(req.Title),
		Company:             models.SanitizeString(req.Company),
		Description:         req.Description,
		Requirements:        req.Requirements,
		Location:            req.Location,
		JobType:             req.JobType,
		ExperienceLevel:     req.ExperienceLevel,
		SalaryMin:           req.SalaryMin,
		SalaryMax:           req.SalaryMax,
		SalaryCurrency:      req.SalaryCurrency,
		Skills:              req.Skills,
		Benefits:            req.Benefits,
		ApplicationDeadline: req.Deadline,
		PostedBy:            req.PosterID,
		IsActive:            true,
	}
	job.SyncSalary(true)

	if verrs := job.Validate(); verrs.HasErrors() {
		return nil, NewValidationError(verrs.Error(), nil)
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, NewInternalError("failed to create job", err)
	}

	s.events.PublishAsync(ctx, events.NewJobCreatedEvent(job.ID, job.PostedBy, job.Title, job.Company))

	return job, nil
}

// GetJobByID retrieves a job. Inactive postings are only visible to
// their owner; views from other users bump the counter.
func (s *jobService) GetJobByID(ctx context.Context, jobID int64, viewerID *int64) (*models.Job, error) {
	if jobID <= 0 {
		return nil, NewValidationError("invalid job ID", nil)
	}

	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, NewInternalError("failed to get job", err)
	}
	if job == nil {
		return nil, EntityNotFoundError("job", jobID)
	}

	isOwner := viewerID != nil && job.OwnedBy(*viewerID)
	if !job.IsActive && !isOwner {
		return nil, EntityNotFoundError("job", jobID)
	}

	if !isOwner {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.jobRepo.IncrementViews(ctx, jobID); err != nil {
				s.logger.Warn("Failed to increment job views",
					zap.Error(err),
					zap.Int64("job_id", jobID),
				)
			}
		}()
	}

	return job, nil
}

// UpdateJob applies partial updates after an ownership check
func (s *jobService) UpdateJob(ctx context.Context, req *UpdateJobRequest) (*models.Job, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid job data", err)
	}

	job, err := s.jobRepo.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, NewInternalError("failed to get job", err)
	}
	if job == nil {
		return nil, EntityNotFoundError("job", req.JobID)
	}
	if !job.OwnedBy(req.UserID) && !req.IsAdmin {
		return nil, InsufficientPermissionsError("update", "job")
	}

	if req.Title != nil {
		job.Title = models.SanitizeString(*req.Title)
	}
	if req.Company != nil {
		job.Company = models.SanitizeString(*req.Company)
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.Requirements != nil {
		job.Requirements = *req.Requirements
	}
	if req.Location != nil {
		job.Location = *req.Location
	}
	if req.JobType != nil {
		job.JobType = *req.JobType
	}
	if req.ExperienceLevel != nil {
		job.ExperienceLevel = *req.ExperienceLevel
	}
	if req.SalaryMin != nil {
		job.SalaryMin = req.SalaryMin
	}
	if req.SalaryMax != nil {
		job.SalaryMax = req.SalaryMax
	}
	if req.SalaryCurrency != nil {
		job.SalaryCurrency = *req.SalaryCurrency
	}
	if req.Skills != nil {
		job.Skills = req.Skills
	}
	if req.Benefits != nil {
		job.Benefits = req.Benefits
	}
	if req.Deadline != nil {
		job.ApplicationDeadline = req.Deadline
	}
	if req.IsActive != nil {
		job.IsActive = *req.IsActive
	}
	job.SyncSalary(true)

	if verrs := job.Validate(); verrs.HasErrors() {
		return nil, NewValidationError(verrs.Error(), nil)
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, NewInternalError("failed to update job", err)
	}

	return job, nil
}

// DeleteJob removes a posting and its applications
func (s *jobService) DeleteJob(ctx context.Context, jobID, userID int64, isAdmin bool) error {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return NewInternalError("failed to get job", err)
	}
	if job == nil {
		return EntityNotFoundError("job", jobID)
	}
	if !job.OwnedBy(userID) && !isAdmin {
		return InsufficientPermissionsError("delete", "job")
	}

	if err := s.jobRepo.Delete(ctx, jobID); err != nil {
		return NewInternalError("failed to delete job", err)
	}

	return nil
}

// CloseJob marks a posting inactive without touching its applications
func (s *jobService) CloseJob(ctx context.Context, jobID, userID int64, isAdmin bool) error {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return NewInternalError("failed to get job", err)
	}
	if job == nil {
		return EntityNotFoundError("job", jobID)
	}
	if !job.OwnedBy(userID) && !isAdmin {
		return InsufficientPermissionsError("close", "job")
	}
	if !job.IsActive {
		return NewBusinessError("job is already closed", "JOB_ALREADY_CLOSED")
	}

	if err := s.jobRepo.SetActive(ctx, jobID, false); err != nil {
		return NewInternalError("failed to close job", err)
	}

	return nil
}

// ListJobs returns publicly visible jobs, filtered and paginated
func (s *jobService) ListJobs(ctx context.Context, req *ListJobsRequest) (*models.PaginatedResponse[*models.Job], error) {
	if req.JobType != "" && !models.ValidJobTypes[req.JobType] {
		return nil, NewValidationError("invalid job type filter", nil)
	}
	if req.ExperienceLevel != "" && !models.ValidExperienceLevels[req.ExperienceLevel] {
		return nil, NewValidationError("invalid experience level filter", nil)
	}

	if req.MinSalary != nil && req.MaxSalary != nil && *req.MinSalary > *req.MaxSalary {
		return nil, NewValidationError("min_salary cannot exceed max_salary", nil)
	}

	filter := repositories.JobFilter{
		JobType:         req.JobType,
		ExperienceLevel: req.ExperienceLevel,
		Location:        req.Location,
		Company:         req.Company,
		Search:          req.Search,
		MinSalary:       req.MinSalary,
		MaxSalary:       req.MaxSalary,
	}

	return s.jobRepo.List(ctx, filter, req.Pagination)
}

// GetMyJobs returns every posting owned by the caller
func (s *jobService) GetMyJobs(ctx context.Context, posterID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Job], error) {
	return s.jobRepo.GetByPoster(ctx, posterID, params)
}
