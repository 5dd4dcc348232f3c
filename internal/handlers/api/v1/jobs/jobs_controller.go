package jobs

import (
	"encoding/json"
	"net/http"
	"strconv"

	"jobmatchhub/internal/contextutils"
	"jobmatchhub/internal/models"
	"jobmatchhub/internal/response"
	"jobmatchhub/internal/services"

	"go.uber.org/zap"
)

// JobController handles job posting endpoints
type JobController struct {
	services *services.ServiceCollection
	logger   *zap.Logger
	builder  *response.Builder
}

// NewJobController creates a new job controller
func NewJobController(services *services.ServiceCollection, logger *zap.Logger, builder *response.Builder) *JobController {
	return &JobController{
		services: services,
		logger:   logger,
		builder:  builder,
	}
}

// CreateJob handles job creation by recruiters
func (c *JobController) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req services.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.PosterID = contextutils.GetUserID(r.Context())

	job, err := c.services.JobService.CreateJob(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteCreated(w, r, job)
}

// ListJobs returns a filtered page of open jobs
func (c *JobController) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &services.ListJobsRequest{
		JobType:         query.Get("job_type"),
		ExperienceLevel: query.Get("experience_level"),
		Location:        query.Get("location"),
		Company:         query.Get("company"),
		Search:          query.Get("search"),
		Pagination:      response.ParsePagination(r),
	}

	if raw := query.Get("min_salary"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.builder.WriteError(w, r, services.NewValidationError("invalid min_salary filter", err))
			return
		}
		req.MinSalary = &n
	}
	if raw := query.Get("max_salary"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.builder.WriteError(w, r, services.NewValidationError("invalid max_salary filter", err))
			return
		}
		req.MaxSalary = &n
	}

	page, err := c.services.JobService.ListJobs(r.Context(), req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WritePaginated(w, r, page.Data, page.Pagination)
}

// GetJob returns a single job. Views by anyone but the poster bump the
// view counter.
func (c *JobController) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid job ID", err))
		return
	}

	var viewerID *int64
	if userID := contextutils.GetUserID(r.Context()); userID != 0 {
		viewerID = &userID
	}

	job, err := c.services.JobService.GetJobByID(r.Context(), jobID, viewerID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, job)
}

// UpdateJob handles partial updates by the poster or an admin
func (c *JobController) UpdateJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid job ID", err))
		return
	}

	var req services.UpdateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.JobID = jobID
	req.UserID = contextutils.GetUserID(r.Context())
	req.IsAdmin = contextutils.GetUserRole(r.Context()) == models.RoleAdmin

	job, err := c.services.JobService.UpdateJob(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, job)
}

// DeleteJob removes a job and its applications
func (c *JobController) DeleteJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid job ID", err))
		return
	}

	userID := contextutils.GetUserID(r.Context())
	isAdmin := contextutils.GetUserRole(r.Context()) == models.RoleAdmin

	if err := c.services.JobService.DeleteJob(r.Context(), jobID, userID, isAdmin); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteNoContent(w, r)
}

// CloseJob stops a job from accepting new applications
func (c *JobController) CloseJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid job ID", err))
		return
	}

	userID := contextutils.GetUserID(r.Context())
	isAdmin := contextutils.GetUserRole(r.Context()) == models.RoleAdmin

	if err := c.services.JobService.CloseJob(r.Context(), jobID, userID, isAdmin); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, map[string]interface{}{
		"job_id":    jobID,
		"is_active": false,
	})
}

// MyJobs returns the authenticated recruiter's postings, closed ones included
func (c *JobController) MyJobs(w http.ResponseWriter, r *http.Request) {
	posterID := contextutils.GetUserID(r.Context())

	page, err := c.services.JobService.GetMyJobs(r.Context(), posterID, response.ParsePagination(r))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WritePaginated(w, r, page.Data, page.Pagination)
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
