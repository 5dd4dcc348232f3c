package services

import (
	"context"
	"testing"
	"time"

	"jobmatchhub/internal/events"
	"jobmatchhub/internal/models"
	"jobmatchhub/internal/repositories"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ===============================
// IN-MEMORY FAKES
// ===============================

type fakeUserRepo struct {
	users  map[int64]*models.User
	nextID int64

	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User), nextID: 1}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return EntityAlreadyExistsError("user", "email", user.Email)
		}
	}
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	if u := r.users[userID]; u != nil {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (r *fakeUserRepo) SetResetToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	if u := r.users[userID]; u != nil {
		u.PasswordResetToken = &tokenHash
		u.PasswordResetExpires = &expiresAt
	}
	return nil
}

func (r *fakeUserRepo) GetByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	for _, u := range r.users {
		if u.PasswordResetToken != nil && *u.PasswordResetToken == tokenHash {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ClearResetToken(ctx context.Context, userID int64) error {
	if u := r.users[userID]; u != nil {
		u.PasswordResetToken = nil
		u.PasswordResetExpires = nil
	}
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, userID int64) error {
	if u := r.users[userID]; u != nil {
		u.LastLogin = time.Now()
	}
	return nil
}

func (r *fakeUserRepo) SetActive(ctx context.Context, userID int64, active bool) error {
	if u := r.users[userID]; u != nil {
		u.IsActive = active
	}
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.User], error) {
	out := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return &models.PaginatedResponse[*models.User]{
		Data:       out,
		Pagination: models.NewPaginationMeta(params, int64(len(out))),
	}, nil
}

func (r *fakeUserRepo) GetByRole(ctx context.Context, role string, params models.PaginationParams) (*models.PaginatedResponse[*models.User], error) {
	out := make([]*models.User, 0)
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return &models.PaginatedResponse[*models.User]{
		Data:       out,
		Pagination: models.NewPaginationMeta(params, int64(len(out))),
	}, nil
}

type fakeJobRepo struct {
	jobs   map[int64]*models.Job
	nextID int64

	lastFilter repositories.JobFilter
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[int64]*models.Job), nextID: 1}
}

func (r *fakeJobRepo) Create(ctx context.Context, job *models.Job) error {
	job.ID = r.nextID
	r.nextID++
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt
	r.jobs[job.ID] = job
	return nil
}

func (r *fakeJobRepo) GetByID(ctx context.Context, id int64) (*models.Job, error) {
	return r.jobs[id], nil
}

func (r *fakeJobRepo) Update(ctx context.Context, job *models.Job) error {
	r.jobs[job.ID] = job
	return nil
}

func (r *fakeJobRepo) Delete(ctx context.Context, id int64) error {
	delete(r.jobs, id)
	return nil
}

func (r *fakeJobRepo) List(ctx context.Context, filter repositories.JobFilter, params models.PaginationParams) (*models.PaginatedResponse[*models.Job], error) {
	r.lastFilter = filter
	out := make([]*models.Job, 0)
	for _, j := range r.jobs {
		if !j.IsActive && !filter.IncludeInactive {
			continue
		}
		out = append(out, j)
	}
	return &models.PaginatedResponse[*models.Job]{
		Data:       out,
		Pagination: models.NewPaginationMeta(params, int64(len(out))),
	}, nil
}

func (r *fakeJobRepo) GetByPoster(ctx context.Context, posterID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Job], error) {
	out := make([]*models.Job, 0)
	for _, j := range r.jobs {
		if j.PostedBy == posterID {
			out = append(out, j)
		}
	}
	return &models.PaginatedResponse[*models.Job]{
		Data:       out,
		Pagination: models.NewPaginationMeta(params, int64(len(out))),
	}, nil
}

func (r *fakeJobRepo) IncrementViews(ctx context.Context, jobID int64) error {
	if j := r.jobs[jobID]; j != nil {
		j.ViewsCount++
	}
	return nil
}

func (r *fakeJobRepo) SetActive(ctx context.Context, jobID int64, active bool) error {
	if j := r.jobs[jobID]; j != nil {
		j.IsActive = active
	}
	return nil
}

type fakeApplicationRepo struct {
	apps   map[int64]*models.Application
	jobs   *fakeJobRepo
	nextID int64

	// Injected failures for race-loser paths
	createErr       error
	reopenErr       error
	withdrawErr     error
	updateStatusErr error
}

func newFakeApplicationRepo(jobs *fakeJobRepo) *fakeApplicationRepo {
	return &fakeApplicationRepo{apps: make(map[int64]*models.Application), jobs: jobs, nextID: 1}
}

func (r *fakeApplicationRepo) Create(ctx context.Context, app *models.Application) error {
	if r.createErr != nil {
		return r.createErr
	}
	app.ID = r.nextID
	r.nextID++
	app.AppliedAt = time.Now()
	app.UpdatedAt = app.AppliedAt
	r.apps[app.ID] = app
	if j := r.jobs.jobs[app.JobID]; j != nil {
		j.ApplicationsCount++
	}
	return nil
}

func (r *fakeApplicationRepo) Reopen(ctx context.Context, app *models.Application) error {
	if r.reopenErr != nil {
		return r.reopenErr
	}
	stored := r.apps[app.ID]
	if stored == nil {
		return EntityNotFoundError("application", app.ID)
	}
	stored.Status = models.StatusPending
	stored.CoverLetter = app.CoverLetter
	stored.ResumeURL = app.ResumeURL
	stored.Notes = ""
	stored.Feedback = ""
	stored.ReviewedAt = nil
	stored.ReviewedBy = nil
	stored.UpdatedAt = time.Now()
	app.Status = models.StatusPending
	app.ReviewedAt = nil
	app.ReviewedBy = nil
	if j := r.jobs.jobs[stored.JobID]; j != nil {
		j.ApplicationsCount++
	}
	return nil
}

func (r *fakeApplicationRepo) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	return r.apps[id], nil
}

func (r *fakeApplicationRepo) GetByJobAndApplicant(ctx context.Context, jobID, applicantID int64) (*models.Application, error) {
	for _, a := range r.apps {
		if a.JobID == jobID && a.ApplicantID == applicantID {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeApplicationRepo) Withdraw(ctx context.Context, appID int64) error {
	if r.withdrawErr != nil {
		return r.withdrawErr
	}
	a := r.apps[appID]
	if a == nil {
		return EntityNotFoundError("application", appID)
	}
	a.Status = models.StatusWithdrawn
	a.UpdatedAt = time.Now()
	if j := r.jobs.jobs[a.JobID]; j != nil && j.ApplicationsCount > 0 {
		j.ApplicationsCount--
	}
	return nil
}

func (r *fakeApplicationRepo) UpdateStatus(ctx context.Context, appID int64, status models.ApplicationStatus, reviewerID int64, notes, feedback string) error {
	if r.updateStatusErr != nil {
		return r.updateStatusErr
	}
	a := r.apps[appID]
	if a == nil {
		return EntityNotFoundError("application", appID)
	}
	now := time.Now()
	a.Status = status
	a.Notes = notes
	a.Feedback = feedback
	a.ReviewedAt = &now
	a.ReviewedBy = &reviewerID
	a.UpdatedAt = now
	return nil
}

func (r *fakeApplicationRepo) ListByApplicant(ctx context.Context, applicantID int64, status models.ApplicationStatus, params models.PaginationParams) (*models.PaginatedResponse[*models.Application], error) {
	out := make([]*models.Application, 0)
	for _, a := range r.apps {
		if a.ApplicantID != applicantID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		out = append(out, a)
	}
	return &models.PaginatedResponse[*models.Application]{
		Data:       out,
		Pagination: models.NewPaginationMeta(params, int64(len(out))),
	}, nil
}

func (r *fakeApplicationRepo) ListByJob(ctx context.Context, jobID int64, status models.ApplicationStatus, params models.PaginationParams) (*models.PaginatedResponse[*models.Application], error) {
	out := make([]*models.Application, 0)
	for _, a := range r.apps {
		if a.JobID != jobID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		out = append(out, a)
	}
	return &models.PaginatedResponse[*models.Application]{
		Data:       out,
		Pagination: models.NewPaginationMeta(params, int64(len(out))),
	}, nil
}

func (r *fakeApplicationRepo) ListAll(ctx context.Context, status models.ApplicationStatus, params models.PaginationParams) (*models.PaginatedResponse[*models.Application], error) {
	out := make([]*models.Application, 0, len(r.apps))
	for _, a := range r.apps {
		if status != "" && a.Status != status {
			continue
		}
		out = append(out, a)
	}
	return &models.PaginatedResponse[*models.Application]{
		Data:       out,
		Pagination: models.NewPaginationMeta(params, int64(len(out))),
	}, nil
}

func (r *fakeApplicationRepo) GetRecruiterStats(ctx context.Context, recruiterID int64) (*models.ApplicationStats, error) {
	stats := &models.ApplicationStats{ByStatus: make(map[models.ApplicationStatus]int64)}
	for _, a := range r.apps {
		j := r.jobs.jobs[a.JobID]
		if j == nil || j.PostedBy != recruiterID {
			continue
		}
		stats.Total++
		stats.ByStatus[a.Status]++
	}
	return stats, nil
}

func (r *fakeApplicationRepo) Delete(ctx context.Context, id int64) error {
	delete(r.apps, id)
	return nil
}

// ===============================
// FIXTURES
// ===============================

type appServiceFixture struct {
	svc     ApplicationService
	users   *fakeUserRepo
	jobs    *fakeJobRepo
	apps    *fakeApplicationRepo
	seeker  *models.User
	poster  *models.User
	openJob *models.Job
}

func newAppServiceFixture(t *testing.T) *appServiceFixture {
	t.Helper()

	users := newFakeUserRepo()
	jobs := newFakeJobRepo()
	apps := newFakeApplicationRepo(jobs)
	bus := events.NewInMemoryEventBus(nil, zap.NewNop())

	seeker := &models.User{
		Name:     "Jane Seeker",
		Email:    "jane@example.com",
		Role:     models.RoleJobSeeker,
		IsActive: true,
		Profile:  models.Profile{Resume: "https://cdn.example.com/jane-resume.pdf"},
	}
	require.NoError(t, users.Create(context.Background(), seeker))

	poster := &models.User{Name: "Rick Recruiter", Email: "rick@example.com", Role: models.RoleRecruiter, IsActive: true}
	require.NoError(t, users.Create(context.Background(), poster))

	job := &models.Job{
		Title:           "Backend Engineer",
		Company:         "Acme",
		Description:     "Build services",
		Requirements:    "Go experience",
		Location:        "Remote",
		JobType:         models.JobTypeFullTime,
		ExperienceLevel: models.ExperienceMid,
		PostedBy:        poster.ID,
		IsActive:        true,
	}
	require.NoError(t, jobs.Create(context.Background(), job))

	return &appServiceFixture{
		svc:     NewApplicationService(apps, jobs, users, bus, zap.NewNop()),
		users:   users,
		jobs:    jobs,
		apps:    apps,
		seeker:  seeker,
		poster:  poster,
		openJob: job,
	}
}

// ===============================
// APPLY
// ===============================

func TestApplicationServiceApply(t *testing.T) {
	ctx := context.Background()

	t.Run("submits a pending application and bumps the counter", func(t *testing.T) {
		fx := newAppServiceFixture(t)

		app, err := fx.svc.Apply(ctx, &ApplyRequest{
			JobID:       fx.openJob.ID,
			ApplicantID: fx.seeker.ID,
			CoverLetter: "I am a great fit.",
			ResumeURL:   "https://cdn.example.com/tailored-resume.pdf",
		})
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, app.Status)
		assert.Equal(t, fx.openJob.ID, app.JobID)
		assert.Equal(t, fx.seeker.ID, app.ApplicantID)
		assert.Equal(t, "https://cdn.example.com/tailored-resume.pdf", app.ResumeURL)
		assert.Equal(t, int64(1), fx.openJob.ApplicationsCount)

		// Job and applicant summaries come back attached
		require.NotNil(t, app.Job)
		assert.Equal(t, fx.openJob.Title, app.Job.Title)
		require.NotNil(t, app.Applicant)
		assert.Equal(t, fx.seeker.Email, app.Applicant.Email)
	})

	t.Run("falls back to the resume on file", func(t *testing.T) {
		fx := newAppServiceFixture(t)

		app, err := fx.svc.Apply(ctx, &ApplyRequest{JobID: fx.openJob.ID, ApplicantID: fx.seeker.ID})
		require.NoError(t, err)
		assert.Equal(t, fx.seeker.Profile.Resume, app.ResumeURL)
	})

	t.Run("rejects applications without any resume", func(t *testing.T) {
		fx := newAppServiceFixture(t)
		fx.seeker.Profile.Resume = ""

		_, err := fx.svc.Apply(ctx, &ApplyRequest{JobID: fx.openJob.ID, ApplicantID: fx.seeker.ID})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("rejects a second application to the same job", func(t *testing.T) {
		fx := newAppServiceFixture(t)
		req := &ApplyRequest{JobID: fx.openJob.ID, ApplicantID: fx.seeker.ID}

		_, err := fx.svc.Apply(ctx, req)
		require.NoError(t, err)

		_, err = fx.svc.Apply(ctx, req)
		require.Error(t, err)
		serr := GetServiceError(err)
		assert.Equal(t, "CONFLICT", serr.Type)
		assert.Equal(t, "ALREADY_APPLIED", serr.Code)
	})

	t.Run("a racing duplicate insert loses with the same conflict", func(t *testing.T) {
		fx := newAppServiceFixture(t)
		// The pre-check saw no row; the unique constraint fires on insert
		fx.apps.createErr = &pq.Error{Code: "23505", Constraint: "applications_job_id_applicant_id_key"}

		_, err := fx.svc.Apply(ctx, &ApplyRequest{JobID: fx.openJob.ID, ApplicantID: fx.seeker.ID})
		require.Error(t, err)
		assert.True(t, IsConflictError(err))
		assert.Equal(t, "ALREADY_APPLIED", GetServiceError(err).Code)
	})

	t.Run("a racing re-apply loses with the same conflict", func(t *testing.T) {
		fx := newAppServiceFixture(t)

		app, err := fx.svc.Apply(ctx, &ApplyRequest{JobID: fx.openJob.ID, ApplicantID: fx.seeker.ID})
		require.NoError(t, err)
		_, err = fx.svc.Withdraw(ctx, app.ID, fx.seeker.ID)
		require.NoError(t, err)

		// Another request reopened the row between the read and the update
		fx.apps.reopenErr = repositories.ErrApplicationNotWithdrawn

		_, err = fx.svc.Apply(ctx, &ApplyRequest{JobID: fx.openJob.ID, ApplicantID: fx.seeker.ID})
		require.Error(t, err)
		assert.True(t, IsConflictError(err))
		assert.Equal(t, "ALREADY_APPLIED", GetServiceError(err).Code)
	})

	t.Run("reopens a withdrawn application instead of inserting", func(t *testing.T) {
		fx := newAppServiceFixture(t)

		first, err := fx.svc.Apply(ctx, &ApplyRequest{JobID: fx.openJob.ID, ApplicantID: fx.seeker.ID})
		require.NoError(t, err)

		_, err = fx.svc.UpdateStatus(ctx, &UpdateApplicationStatusRequest{
			ApplicationID: first.ID,
			ReviewerID:    fx.poster.ID,
			Status:        models.StatusReviewed,
		})
		require.NoError(t, err)

		_, err = fx.svc.Withdraw(ctx, first.ID, fx.seeker.ID)
		require.NoError(t, err)

		second, err := fx.svc.Apply(ctx, &ApplyRequest{
			JobID:       fx.openJob.ID,
			ApplicantID: fx.seeker.ID,
			CoverLetter: "Taking another shot.",
		})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, models.StatusPending, second.Status)
		assert.Equal(t, "Taking another shot.", second.CoverLetter)
		assert.Nil(t, second.ReviewedAt)
		assert.Nil(t, second.ReviewedBy)
		assert.Equal(t, int64(1), fx.openJob.ApplicationsCount)
	})

	t.Run("rejects applications past the deadline", func(t *testing.T) {
		fx := newAppServiceFixture(t)
		past := time.Now().Add(-time.Hour)
		fx.openJob.ApplicationDeadline = &past

		_, err := fx.svc.Apply(ctx, &ApplyRequest{JobID: fx.openJob.ID, ApplicantID: fx.seeker.ID})
		require.Error(t, err)
		serr := GetServiceError(err)
		assert.Equal(t, "CONFLICT", serr.Type)
		assert.Equal(t, "DEADLINE_PASSED", serr.Code)
	})

	t.Run("rejects applications to inactive jobs as not found", func(t *testing.T) {
		fx := newAppServiceFixture(t)
		fx.openJob.IsActive = false

		_, err := fx.svc.Apply(ctx, &ApplyRequest{JobID: fx.openJob.ID, ApplicantID: fx.seeker.ID})
		require.Error(t, err)
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("rejects recruiters applying to jobs", func(t *testing.T) {
		fx := newAppServiceFixture(t)

		_, err := fx.svc.Apply(ctx, &ApplyRequest{JobID: fx.openJob.ID, ApplicantID: fx.poster.ID})
		require.Error(t, err)
		assert.True(t, IsForbiddenError(err))
	})

	t.Run("rejects deactivated accounts", func(t *testing.T) {
		fx := newAppServiceFixture(t)
		fx.seeker.IsActive = false

		_, err := fx.svc.Apply(ctx, &ApplyRequest{JobID: fx.openJob.ID, ApplicantID: fx.seeker.ID})
		require.Error(t, err)
		assert.True(t, IsErrorType(err, "UNAUTHORIZED"))
	})
}

// ===============================
// WITHDRAW
// ===============================

func TestApplicationServiceWithdraw(t *testing.T) {
	ctx := context.Background()

	t.Run("applicant withdraws a pending application", func(t *testing.T) {
		fx := newAppServiceFixture(t)
		app, err := fx.svc.Apply(ctx, &ApplyRequest{JobID: fx.openJob.ID, ApplicantID: fx.seeker.ID})
		require.NoError(t, err)

		withdrawn, err := fx.svc.Withdraw(ctx, app.ID, fx.seeker.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusWithdrawn, withdrawn.Status)
		assert.Equal(t, int64(0), fx.openJob.ApplicationsCount)
	})

	t.Run("only the applicant may withdraw", func(t *testing.T) {
		fx := newAppServiceFixture(t)
		app, err := fx.svc.Apply(ctx, &ApplyRequest{JobID: fx.openJob.ID, ApplicantID: fx.seeker.ID})
		require.NoError(t, err)

		_, err = fx.svc.Withdraw(ctx, app.ID, fx.poster.ID)
		require.Error(t, err)
		assert.True(t, IsForbiddenError(err))
	})

	t.Run("withdrawing twice is rejected", func(t *testing.T) {
		fx := newAppServiceFixture(t)
		app, err := fx.svc.Apply(ctx, &ApplyRequest{JobID: fx.openJob.ID, ApplicantID: fx.seeker.ID})
		require.NoError(t, err)

		_, err = fx.svc.Withdraw(ctx, app.ID, fx.seeker.ID)
		require.NoError(t, err)

		_, err = fx.svc.Withdraw(ctx, app.ID, fx.seeker.ID)
		require.Error(t, err)
		assert.Equal(t, "ALREADY_WITHDRAWN", GetServiceError(err).Code)
	})

	t.Run("terminal applications cannot be withdrawn", func(t *testing.T) {
		for _, status := range []models.ApplicationStatus{models.StatusOffered, models.StatusRejected} {
			fx := newAppServiceFixture(t)
			app, err := fx.svc.Apply(ctx, &ApplyRequest{JobID: fx.openJob.ID, ApplicantID: fx.seeker.ID})
			require.NoError(t, err)
			fx.apps.apps[app.ID].Status = status

			_, err = fx.svc.Withdraw(ctx, app.ID, fx.seeker.ID)
			require.Error(t, err)
			assert.Equal(t, "WITHDRAW_NOT_ALLOWED", GetServiceError(err).Code)
		}
	})

	t.Run("unknown application is not found", func(t *testing.T) {
		fx := newAppServiceFixture(t)
		_, err := fx.svc.Withdraw(ctx, 9999, fx.seeker.ID)
		require.Error(t, err)
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("a racing state change loses with a conflict", func(t *testing.T) {
		fx := newAppServiceFixture(t)
		app, err := fx.svc.Apply(ctx, &ApplyRequest{JobID: fx.openJob.ID, ApplicantID: fx.seeker.ID})
		require.NoError(t, err)

		// The row left withdrawable statuses after the read above
		fx.apps.withdrawErr = repositories.ErrApplicationNotWithdrawable

		_, err = fx.svc.Withdraw(ctx, app.ID, fx.seeker.ID)
		require.Error(t, err)
		assert.True(t, IsConflictError(err))
		assert.Equal(t, "WITHDRAW_NOT_ALLOWED", GetServiceError(err).Code)
	})
}

// ===============================
// STATUS UPDATES
// ===============================

func TestApplicationServiceUpdateStatus(t *testing.T) {
	ctx := context.Background()

	submit := func(t *testing.T, fx *appServiceFixture) *models.Application {
		t.Helper()
		app, err := fx.svc.Apply(ctx, &ApplyRequest{JobID: fx.openJob.ID, ApplicantID: fx.seeker.ID})
		require.NoError(t, err)
		return app
	}

	t.Run("job owner moves the application through the pipeline", func(t *testing.T) {
		fx := newAppServiceFixture(t)
		app := submit(t, fx)

		updated, err := fx.svc.UpdateStatus(ctx, &UpdateApplicationStatusRequest{
			ApplicationID: app.ID,
			ReviewerID:    fx.poster.ID,
			Status:        models.StatusShortlisted,
			Notes:         "strong resume",
		})
		require.NoError(t, err)
		assert.Equal(t, models.StatusShortlisted, updated.Status)
		assert.Equal(t, "strong resume", updated.Notes)
		require.NotNil(t, updated.ReviewedAt)
		require.NotNil(t, updated.ReviewedBy)
		assert.Equal(t, fx.poster.ID, *updated.ReviewedBy)
	})

	t.Run("admins may review any application", func(t *testing.T) {
		fx := newAppServiceFixture(t)
		app := submit(t, fx)

		updated, err := fx.svc.UpdateStatus(ctx, &UpdateApplicationStatusRequest{
			ApplicationID: app.ID,
			ReviewerID:    12345,
			IsAdmin:       true,
			Status:        models.StatusReviewed,
		})
		require.NoError(t, err)
		assert.Equal(t, models.StatusReviewed, updated.Status)
	})

	t.Run("non-owners are rejected", func(t *testing.T) {
		fx := newAppServiceFixture(t)
		app := submit(t, fx)

		other := &models.User{Name: "Other", Email: "other@example.com", Role: models.RoleRecruiter, IsActive: true}
		require.NoError(t, fx.users.Create(ctx, other))

		_, err := fx.svc.UpdateStatus(ctx, &UpdateApplicationStatusRequest{
			ApplicationID: app.ID,
			ReviewerID:    other.ID,
			Status:        models.StatusReviewed,
		})
		require.Error(t, err)
		assert.True(t, IsForbiddenError(err))
	})

	t.Run("recruiters cannot set withdrawn", func(t *testing.T) {
		fx := newAppServiceFixture(t)
		app := submit(t, fx)

		_, err := fx.svc.UpdateStatus(ctx, &UpdateApplicationStatusRequest{
			ApplicationID: app.ID,
			ReviewerID:    fx.poster.ID,
			Status:        models.StatusWithdrawn,
		})
		require.Error(t, err)
		assert.True(t, IsForbiddenError(err))
	})

	t.Run("withdrawn applications cannot be reviewed", func(t *testing.T) {
		fx := newAppServiceFixture(t)
		app := submit(t, fx)
		_, err := fx.svc.Withdraw(ctx, app.ID, fx.seeker.ID)
		require.NoError(t, err)

		_, err = fx.svc.UpdateStatus(ctx, &UpdateApplicationStatusRequest{
			ApplicationID: app.ID,
			ReviewerID:    fx.poster.ID,
			Status:        models.StatusReviewed,
		})
		require.Error(t, err)
		assert.Equal(t, "APPLICATION_WITHDRAWN", GetServiceError(err).Code)
	})

	t.Run("repeating the current status re-stamps the review", func(t *testing.T) {
		fx := newAppServiceFixture(t)
		app := submit(t, fx)

		updated, err := fx.svc.UpdateStatus(ctx, &UpdateApplicationStatusRequest{
			ApplicationID: app.ID,
			ReviewerID:    fx.poster.ID,
			Status:        models.StatusPending,
		})
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, updated.Status)
		require.NotNil(t, updated.ReviewedAt)
		require.NotNil(t, updated.ReviewedBy)
		assert.Equal(t, fx.poster.ID, *updated.ReviewedBy)
	})

	t.Run("regressing to an earlier status is allowed", func(t *testing.T) {
		fx := newAppServiceFixture(t)
		app := submit(t, fx)

		_, err := fx.svc.UpdateStatus(ctx, &UpdateApplicationStatusRequest{
			ApplicationID: app.ID,
			ReviewerID:    fx.poster.ID,
			Status:        models.StatusShortlisted,
		})
		require.NoError(t, err)

		updated, err := fx.svc.UpdateStatus(ctx, &UpdateApplicationStatusRequest{
			ApplicationID: app.ID,
			ReviewerID:    fx.poster.ID,
			Status:        models.StatusReviewed,
		})
		require.NoError(t, err)
		assert.Equal(t, models.StatusReviewed, updated.Status)
	})

	t.Run("unknown status is a validation error", func(t *testing.T) {
		fx := newAppServiceFixture(t)
		app := submit(t, fx)

		_, err := fx.svc.UpdateStatus(ctx, &UpdateApplicationStatusRequest{
			ApplicationID: app.ID,
			ReviewerID:    fx.poster.ID,
			Status:        models.ApplicationStatus("archived"),
		})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("a withdrawal committing mid-review is a conflict", func(t *testing.T) {
		fx := newAppServiceFixture(t)
		app := submit(t, fx)

		// The applicant withdrew between the read and the update
		fx.apps.updateStatusErr = repositories.ErrApplicationWithdrawn

		_, err := fx.svc.UpdateStatus(ctx, &UpdateApplicationStatusRequest{
			ApplicationID: app.ID,
			ReviewerID:    fx.poster.ID,
			Status:        models.StatusReviewed,
		})
		require.Error(t, err)
		assert.True(t, IsConflictError(err))
		assert.Equal(t, "APPLICATION_WITHDRAWN", GetServiceError(err).Code)
	})
}

// ===============================
// RETRIEVAL
// ===============================

func TestApplicationServiceGetByID(t *testing.T) {
	ctx := context.Background()
	fx := newAppServiceFixture(t)

	app, err := fx.svc.Apply(ctx, &ApplyRequest{JobID: fx.openJob.ID, ApplicantID: fx.seeker.ID})
	require.NoError(t, err)

	t.Run("applicant sees own application", func(t *testing.T) {
		got, err := fx.svc.GetByID(ctx, app.ID, fx.seeker.ID, false)
		require.NoError(t, err)
		assert.Equal(t, app.ID, got.ID)
	})

	t.Run("job owner sees the application", func(t *testing.T) {
		got, err := fx.svc.GetByID(ctx, app.ID, fx.poster.ID, false)
		require.NoError(t, err)
		assert.Equal(t, app.ID, got.ID)
	})

	t.Run("admin sees the application", func(t *testing.T) {
		got, err := fx.svc.GetByID(ctx, app.ID, 777, true)
		require.NoError(t, err)
		assert.Equal(t, app.ID, got.ID)
	})

	t.Run("unrelated viewer is forbidden", func(t *testing.T) {
		_, err := fx.svc.GetByID(ctx, app.ID, 777, false)
		require.Error(t, err)
		assert.True(t, IsForbiddenError(err))
	})
}

func TestApplicationServiceListForJob(t *testing.T) {
	ctx := context.Background()
	fx := newAppServiceFixture(t)

	_, err := fx.svc.Apply(ctx, &ApplyRequest{JobID: fx.openJob.ID, ApplicantID: fx.seeker.ID})
	require.NoError(t, err)

	t.Run("owner lists applications", func(t *testing.T) {
		page, err := fx.svc.ListForJob(ctx, &ListJobApplicationsRequest{
			JobID:      fx.openJob.ID,
			ViewerID:   fx.poster.ID,
			Pagination: models.PaginationParams{Page: 1, PageSize: 10},
		})
		require.NoError(t, err)
		assert.Len(t, page.Data, 1)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		_, err := fx.svc.ListForJob(ctx, &ListJobApplicationsRequest{
			JobID:      fx.openJob.ID,
			ViewerID:   fx.seeker.ID,
			Pagination: models.PaginationParams{Page: 1, PageSize: 10},
		})
		require.Error(t, err)
		assert.True(t, IsForbiddenError(err))
	})

	t.Run("invalid status filter is rejected", func(t *testing.T) {
		_, err := fx.svc.ListForJob(ctx, &ListJobApplicationsRequest{
			JobID:      fx.openJob.ID,
			ViewerID:   fx.poster.ID,
			Status:     models.ApplicationStatus("archived"),
			Pagination: models.PaginationParams{Page: 1, PageSize: 10},
		})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})
}

func TestApplicationServiceListAll(t *testing.T) {
	ctx := context.Background()
	fx := newAppServiceFixture(t)

	app, err := fx.svc.Apply(ctx, &ApplyRequest{JobID: fx.openJob.ID, ApplicantID: fx.seeker.ID})
	require.NoError(t, err)

	t.Run("pages through every application", func(t *testing.T) {
		page, err := fx.svc.ListAll(ctx, &ListAllApplicationsRequest{
			Pagination: models.PaginationParams{Page: 1, PageSize: 10},
		})
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Equal(t, app.ID, page.Data[0].ID)
	})

	t.Run("status filter narrows the page", func(t *testing.T) {
		page, err := fx.svc.ListAll(ctx, &ListAllApplicationsRequest{
			Status:     models.StatusOffered,
			Pagination: models.PaginationParams{Page: 1, PageSize: 10},
		})
		require.NoError(t, err)
		assert.Empty(t, page.Data)
	})

	t.Run("invalid status filter is rejected", func(t *testing.T) {
		_, err := fx.svc.ListAll(ctx, &ListAllApplicationsRequest{
			Status:     models.ApplicationStatus("archived"),
			Pagination: models.PaginationParams{Page: 1, PageSize: 10},
		})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})
}

func TestApplicationServiceRecruiterStats(t *testing.T) {
	ctx := context.Background()
	fx := newAppServiceFixture(t)

	app, err := fx.svc.Apply(ctx, &ApplyRequest{JobID: fx.openJob.ID, ApplicantID: fx.seeker.ID})
	require.NoError(t, err)

	_, err = fx.svc.UpdateStatus(ctx, &UpdateApplicationStatusRequest{
		ApplicationID: app.ID,
		ReviewerID:    fx.poster.ID,
		Status:        models.StatusShortlisted,
	})
	require.NoError(t, err)

	stats, err := fx.svc.GetRecruiterStats(ctx, fx.poster.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)
	assert.Equal(t, int64(1), stats.ByStatus[models.StatusShortlisted])
}
