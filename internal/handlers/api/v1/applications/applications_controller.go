package applications

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

// ApplicationController handles the application lifecycle endpoints
type ApplicationController struct {
	services *services.ServiceCollection
	logger   *zap.Logger
	builder  *response.Builder
}

// NewApplicationController creates a new application controller
func NewApplicationController(services *services.ServiceCollection, logger *zap.Logger, builder *response.Builder) *ApplicationController {
	return &ApplicationController{
		services: services,
		logger:   logger,
		builder:  builder,
	}
}

// Apply submits an application to a job. Re-applying to a job the user
// previously withdrew from reopens the old application.
func (c *ApplicationController) Apply(w http.ResponseWriter, r *http.Request) {
	var req services.ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.ApplicantID = contextutils.GetUserID(r.Context())

	application, err := c.services.ApplicationService.Apply(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteCreated(w, r, application)
}

// ListForJob returns a job's applications to its poster or an admin
func (c *ApplicationController) ListForJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "jobId")
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid job ID", err))
		return
	}

	req := &services.ListJobApplicationsRequest{
		JobID:      jobID,
		ViewerID:   contextutils.GetUserID(r.Context()),
		IsAdmin:    contextutils.GetUserRole(r.Context()) == models.RoleAdmin,
		Status:     models.ApplicationStatus(r.URL.Query().Get("status")),
		Pagination: response.ParsePagination(r),
	}

	page, err := c.services.ApplicationService.ListForJob(r.Context(), req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WritePaginated(w, r, page.Data, page.Pagination)
}

// ListMine returns the authenticated job seeker's applications
func (c *ApplicationController) ListMine(w http.ResponseWriter, r *http.Request) {
	req := &services.ListMyApplicationsRequest{
		ApplicantID: contextutils.GetUserID(r.Context()),
		Status:      models.ApplicationStatus(r.URL.Query().Get("status")),
		Pagination:  response.ParsePagination(r),
	}

	page, err := c.services.ApplicationService.ListMine(r.Context(), req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WritePaginated(w, r, page.Data, page.Pagination)
}

// ListAll returns every application in the system for admins
func (c *ApplicationController) ListAll(w http.ResponseWriter, r *http.Request) {
	req := &services.ListAllApplicationsRequest{
		Status:     models.ApplicationStatus(r.URL.Query().Get("status")),
		Pagination: response.ParsePagination(r),
	}

	page, err := c.services.ApplicationService.ListAll(r.Context(), req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WritePaginated(w, r, page.Data, page.Pagination)
}

// GetApplication returns one application to its applicant, the job's
// poster, or an admin
func (c *ApplicationController) GetApplication(w http.ResponseWriter, r *http.Request) {
	applicationID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid application ID", err))
		return
	}

	viewerID := contextutils.GetUserID(r.Context())
	isAdmin := contextutils.GetUserRole(r.Context()) == models.RoleAdmin

	application, err := c.services.ApplicationService.GetByID(r.Context(), applicationID, viewerID, isAdmin)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, application)
}

// Withdraw lets the applicant pull an application out of consideration
func (c *ApplicationController) Withdraw(w http.ResponseWriter, r *http.Request) {
	applicationID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid application ID", err))
		return
	}

	userID := contextutils.GetUserID(r.Context())

	application, err := c.services.ApplicationService.Withdraw(r.Context(), applicationID, userID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, application)
}

// UpdateStatus moves an application through the review lifecycle
func (c *ApplicationController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	applicationID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid application ID", err))
		return
	}

	var req services.UpdateApplicationStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.ApplicationID = applicationID
	req.ReviewerID = contextutils.GetUserID(r.Context())
	req.IsAdmin = contextutils.GetUserRole(r.Context()) == models.RoleAdmin

	application, err := c.services.ApplicationService.UpdateStatus(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, application)
}

// Stats summarizes applications across the recruiter's postings
func (c *ApplicationController) Stats(w http.ResponseWriter, r *http.Request) {
	recruiterID := contextutils.GetUserID(r.Context())

	stats, err := c.services.ApplicationService.GetRecruiterStats(r.Context(), recruiterID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, stats)
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
