// file: internal/repositories/job_repository.go
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"jobmatchhub/internal/database"
	"jobmatchhub/internal/models"

	"go.uber.org/zap"
)

// jobRepository implements JobRepository on top of Postgres
type jobRepository struct {
	*BaseRepository
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *database.Manager, logger *zap.Logger) JobRepository {
	return &jobRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const jobColumns = `
	j.id, j.title, j.company, j.description, j.requirements, j.location,
	j.job_type, j.experience_level, j.salary_min, j.salary_max, j.salary_currency,
	j.skills, j.benefits, j.application_deadline, j.posted_by, j.is_active,
	j.applications_count, j.views_count, j.created_at, j.updated_at,
	u.name as poster_name, u.profile->>'company' as poster_company`

func scanJob(row interface{ Scan(...interface{}) error }) (*models.Job, error) {
	var job models.Job
	err := row.Scan(
		&job.ID, &job.Title, &job.Company, &job.Description,
		&job.Requirements, &job.Location, &job.JobType, &job.ExperienceLevel,
		&job.SalaryMin, &job.SalaryMax, &job.SalaryCurrency,
		&job.Skills, &job.Benefits, &job.ApplicationDeadline,
		&job.PostedBy, &job.IsActive,
		&job.ApplicationsCount, &job.ViewsCount,
		&job.CreatedAt, &job.UpdatedAt,
		&job.PosterName, &job.PosterCompany,
	)
	if err != nil {
		return nil, err
	}
	job.SyncSalary(true)
	return &job, nil
}

// ===============================
// BASIC CRUD OPERATIONS
// ===============================

// Create inserts a new job posting
func (r *jobRepository) Create(ctx context.Context, job *models.Job) error {
	job.SyncSalary(false)

	query := `
		INSERT INTO jobs (
			title, company, description, requirements, location,
			job_type, experience_level, salary_min, salary_max, salary_currency,
			skills, benefits, application_deadline, posted_by, is_active
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		) RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		job.Title, job.Company, job.Description, job.Requirements, job.Location,
		job.JobType, job.ExperienceLevel,
		job.SalaryMin, job.SalaryMax, job.SalaryCurrency,
		job.Skills, job.Benefits, job.ApplicationDeadline,
		job.PostedBy, job.IsActive,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)

	if err != nil {
		r.GetLogger().Error("Failed to create job",
			zap.Error(err),
			zap.String("title", job.Title),
			zap.Int64("posted_by", job.PostedBy),
		)
		return fmt.Errorf("failed to create job: %w", err)
	}

	r.GetLogger().Info("Job created",
		zap.Int64("job_id", job.ID),
		zap.Int64("posted_by", job.PostedBy),
	)

	return nil
}

// GetByID retrieves a job with its poster summary, regardless of active
// state so owners can see their closed postings
func (r *jobRepository) GetByID(ctx context.Context, id int64) (*models.Job, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM jobs j
		INNER JOIN users u ON j.posted_by = u.id
		WHERE j.id = $1`, jobColumns)

	job, err := scanJob(r.QueryRowContext(ctx, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job by ID: %w", err)
	}

	return job, nil
}

// Update persists all mutable job fields
func (r *jobRepository) Update(ctx context.Context, job *models.Job) error {
	job.SyncSalary(false)

	query := `
		UPDATE jobs SET
			title = $2, company = $3, description = $4, requirements = $5,
			location = $6, job_type = $7, experience_level = $8,
			salary_min = $9, salary_max = $10, salary_currency = $11,
			skills = $12, benefits = $13, application_deadline = $14,
			is_active = $15, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.QueryRowContext(
		ctx, query,
		job.ID, job.Title, job.Company, job.Description, job.Requirements,
		job.Location, job.JobType, job.ExperienceLevel,
		job.SalaryMin, job.SalaryMax, job.SalaryCurrency,
		job.Skills, job.Benefits, job.ApplicationDeadline, job.IsActive,
	).Scan(&job.UpdatedAt)

	if err != nil {
		if r.IsNotFound(err) {
			return fmt.Errorf("job not found")
		}
		return fmt.Errorf("failed to update job: %w", err)
	}

	return nil
}

// Delete removes a job and its applications in one transaction
func (r *jobRepository) Delete(ctx context.Context, id int64) error {
	return r.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM applications WHERE job_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete job applications: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete job: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check delete result: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("job not found")
		}

		r.GetLogger().Info("Job deleted", zap.Int64("job_id", id))
		return nil
	})
}

// ===============================
// LISTING AND FILTERING
// ===============================

// List retrieves jobs matching the filter. Public listings only show
// active jobs from active posters.
func (r *jobRepository) List(ctx context.Context, filter JobFilter, params models.PaginationParams) (*models.PaginatedResponse[*models.Job], error) {
	conditions := []string{"u.is_active = true"}
	args := []interface{}{}

	if !filter.IncludeInactive {
		conditions = append(conditions, "j.is_active = true")
	}
	if filter.JobType != "" {
		args = append(args, filter.JobType)
		conditions = append(conditions, fmt.Sprintf("j.job_type = $%d", len(args)))
	}
	if filter.ExperienceLevel != "" {
		args = append(args, filter.ExperienceLevel)
		conditions = append(conditions, fmt.Sprintf("j.experience_level = $%d", len(args)))
	}
	if filter.Location != "" {
		args = append(args, "%"+filter.Location+"%")
		conditions = append(conditions, fmt.Sprintf("j.location ILIKE $%d", len(args)))
	}
	if filter.Company != "" {
		args = append(args, "%"+filter.Company+"%")
		conditions = append(conditions, fmt.Sprintf("j.company ILIKE $%d", len(args)))
	}
	if filter.MinSalary != nil {
		args = append(args, *filter.MinSalary)
		conditions = append(conditions, fmt.Sprintf("j.salary_min >= $%d", len(args)))
	}
	if filter.MaxSalary != nil {
		args = append(args, *filter.MaxSalary)
		conditions = append(conditions, fmt.Sprintf("j.salary_max <= $%d", len(args)))
	}
	if filter.PostedBy != nil {
		args = append(args, *filter.PostedBy)
		conditions = append(conditions, fmt.Sprintf("j.posted_by = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(`(
			j.title ILIKE $%d OR
			j.description ILIKE $%d OR
			array_to_string(j.skills, ' ') ILIKE $%d
		)`, n, n, n))
	}

	where := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*) FROM jobs j
		INNER JOIN users u ON j.posted_by = u.id
		WHERE %s`, where)

	total, err := r.GetTotalCount(ctx, countQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}

	baseQuery := fmt.Sprintf(`
		SELECT %s FROM jobs j
		INNER JOIN users u ON j.posted_by = u.id
		WHERE %s`, jobColumns, where)

	pagedQuery, pagedArgs := r.BuildPaginatedQuery(baseQuery, args, params)

	rows, err := r.QueryContext(ctx, pagedQuery, pagedArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]*models.Job, 0, params.PageSize)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}

	return &models.PaginatedResponse[*models.Job]{
		Data:       jobs,
		Pagination: models.NewPaginationMeta(params, total),
	}, nil
}

// GetByPoster retrieves every job a recruiter has posted, active or not
func (r *jobRepository) GetByPoster(ctx context.Context, posterID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Job], error) {
	return r.List(ctx, JobFilter{PostedBy: &posterID, IncludeInactive: true}, params)
}

// ===============================
// COUNTERS AND STATE
// ===============================

// IncrementViews bumps the view counter. Best effort, callers should
// not fail a read on a counter error.
func (r *jobRepository) IncrementViews(ctx context.Context, jobID int64) error {
	if _, err := r.ExecContext(ctx, `UPDATE jobs SET views_count = views_count + 1 WHERE id = $1`, jobID); err != nil {
		return fmt.Errorf("failed to increment job views: %w", err)
	}
	return nil
}

// SetActive opens or closes a posting
func (r *jobRepository) SetActive(ctx context.Context, jobID int64, active bool) error {
	result, err := r.ExecContext(ctx,
		`UPDATE jobs SET is_active = $2, updated_at = NOW() WHERE id = $1`,
		jobID, active,
	)
	if err != nil {
		return fmt.Errorf("failed to set job active state: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("job not found")
	}

	return nil
}
