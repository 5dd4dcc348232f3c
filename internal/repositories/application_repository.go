// file: internal/repositories/application_repository.go
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"jobmatchhub/internal/database"
	"jobmatchhub/internal/models"

	"go.uber.org/zap"
)

// Sentinel errors for state transitions the UPDATE predicates refuse.
// The pre-checks in the service layer race against concurrent commits,
// so the store re-checks the status and the service maps these to the
// same conflicts the sequential path returns.
var (
	ErrApplicationNotWithdrawable = errors.New("application is not in a withdrawable status")
	ErrApplicationWithdrawn       = errors.New("application is withdrawn")
	ErrApplicationNotWithdrawn    = errors.New("application is not withdrawn")
)

// applicationRepository implements ApplicationRepository on top of
// Postgres. Row changes that affect a job's applications_count run in
// a transaction so the counter never drifts from the rows.
type applicationRepository struct {
	*BaseRepository
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *database.Manager, logger *zap.Logger) ApplicationRepository {
	return &applicationRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const applicationColumns = `
	a.id, a.job_id, a.applicant_id, a.status, a.cover_letter, a.resume_url,
	a.notes, a.feedback, a.reviewed_at, a.reviewed_by, a.applied_at, a.updated_at,
	j.title, j.company, j.location, j.job_type, j.is_active,
	u.name, u.email`

func scanApplication(row interface{ Scan(...interface{}) error }) (*models.Application, error) {
	var (
		app        models.Application
		job        models.JobSummary
		applicant  models.UserSummary
		reviewedAt sql.NullTime
		reviewedBy sql.NullInt64
	)
	err := row.Scan(
		&app.ID, &app.JobID, &app.ApplicantID, &app.Status,
		&app.CoverLetter, &app.ResumeURL, &app.Notes, &app.Feedback,
		&reviewedAt, &reviewedBy,
		&app.AppliedAt, &app.UpdatedAt,
		&job.Title, &job.Company, &job.Location, &job.JobType, &job.IsActive,
		&applicant.Name, &applicant.Email,
	)
	if err != nil {
		return nil, err
	}
	if reviewedAt.Valid {
		app.ReviewedAt = &reviewedAt.Time
	}
	if reviewedBy.Valid {
		app.ReviewedBy = &reviewedBy.Int64
	}
	job.ID = app.JobID
	applicant.ID = app.ApplicantID
	app.Job = &job
	app.Applicant = &applicant
	return &app, nil
}

const applicationJoins = `
	FROM applications a
	INNER JOIN jobs j ON a.job_id = j.id
	INNER JOIN users u ON a.applicant_id = u.id`

// ===============================
// SUBMIT AND REOPEN
// ===============================

// Create inserts a new application and bumps the job counter. A
// duplicate (job_id, applicant_id) pair surfaces as a pq unique
// violation for the caller to map.
func (r *applicationRepository) Create(ctx context.Context, app *models.Application) error {
	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO applications (job_id, applicant_id, status, cover_letter, resume_url)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, applied_at, updated_at`

		err := tx.QueryRowContext(
			ctx, query,
			app.JobID, app.ApplicantID, app.Status,
			app.CoverLetter, app.ResumeURL,
		).Scan(&app.ID, &app.AppliedAt, &app.UpdatedAt)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE jobs SET applications_count = applications_count + 1 WHERE id = $1`,
			app.JobID,
		)
		return err
	})

	if err != nil {
		if r.IsUniqueViolation(err, "applications_job_id_applicant_id_key") {
			return err
		}
		r.GetLogger().Error("Failed to create application",
			zap.Error(err),
			zap.Int64("job_id", app.JobID),
			zap.Int64("applicant_id", app.ApplicantID),
		)
		return fmt.Errorf("failed to create application: %w", err)
	}

	r.GetLogger().Info("Application submitted",
		zap.Int64("application_id", app.ID),
		zap.Int64("job_id", app.JobID),
	)

	return nil
}

// Reopen resets a withdrawn application to pending with fresh content
// and restores the job counter the withdrawal decremented
func (r *applicationRepository) Reopen(ctx context.Context, app *models.Application) error {
	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE applications
			SET status = $2, cover_letter = $3, resume_url = $4,
			    notes = '', feedback = '',
			    reviewed_at = NULL, reviewed_by = NULL,
			    applied_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND status = $5
			RETURNING applied_at, updated_at`

		err := tx.QueryRowContext(
			ctx, query,
			app.ID, models.StatusPending, app.CoverLetter, app.ResumeURL,
			models.StatusWithdrawn,
		).Scan(&app.AppliedAt, &app.UpdatedAt)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE jobs SET applications_count = applications_count + 1 WHERE id = $1`,
			app.JobID,
		)
		return err
	})

	if err != nil {
		if r.IsNotFound(err) {
			return ErrApplicationNotWithdrawn
		}
		return fmt.Errorf("failed to reopen application: %w", err)
	}

	app.Status = models.StatusPending
	app.Notes = ""
	app.Feedback = ""
	app.ReviewedAt = nil
	app.ReviewedBy = nil

	r.GetLogger().Info("Application reopened",
		zap.Int64("application_id", app.ID),
		zap.Int64("job_id", app.JobID),
	)

	return nil
}

// ===============================
// LOOKUPS
// ===============================

func (r *applicationRepository) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE a.id = $1`, applicationColumns, applicationJoins)

	app, err := scanApplication(r.QueryRowContext(ctx, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application by ID: %w", err)
	}

	return app, nil
}

// GetByJobAndApplicant fetches the single application a user holds for
// a job, in any status
func (r *applicationRepository) GetByJobAndApplicant(ctx context.Context, jobID, applicantID int64) (*models.Application, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE a.job_id = $1 AND a.applicant_id = $2`,
		applicationColumns, applicationJoins)

	app, err := scanApplication(r.QueryRowContext(ctx, query, jobID, applicantID))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return app, nil
}

// ===============================
// STATUS CHANGES
// ===============================

// Withdraw marks the application withdrawn and decrements the job
// counter. The status predicate keeps two racing withdrawals from
// decrementing twice: only the request that flips a still-live row
// runs the counter update.
func (r *applicationRepository) Withdraw(ctx context.Context, appID int64) error {
	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		var jobID int64
		query := `
			UPDATE applications
			SET status = $2, updated_at = NOW()
			WHERE id = $1
			  AND status IN ('pending', 'reviewed', 'shortlisted', 'interviewed')
			RETURNING job_id`

		if err := tx.QueryRowContext(ctx, query, appID, models.StatusWithdrawn).Scan(&jobID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			`UPDATE jobs SET applications_count = applications_count - 1
			 WHERE id = $1 AND applications_count > 0`,
			jobID,
		)
		return err
	})

	if err != nil {
		if r.IsNotFound(err) {
			return ErrApplicationNotWithdrawable
		}
		return fmt.Errorf("failed to withdraw application: %w", err)
	}

	r.GetLogger().Info("Application withdrawn", zap.Int64("application_id", appID))
	return nil
}

// UpdateStatus sets the recruiter-controlled fields and stamps who
// reviewed the application and when. Withdrawn rows never match: a
// withdrawal committing after the caller's read cannot be pulled back
// into the pipeline here, only a re-apply reopens it.
func (r *applicationRepository) UpdateStatus(ctx context.Context, appID int64, status models.ApplicationStatus, reviewerID int64, notes, feedback string) error {
	query := `
		UPDATE applications
		SET status = $2, notes = $3, feedback = $4,
		    reviewed_at = NOW(), reviewed_by = $5, updated_at = NOW()
		WHERE id = $1 AND status <> $6`

	result, err := r.ExecContext(ctx, query, appID, status, notes, feedback, reviewerID, models.StatusWithdrawn)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return ErrApplicationWithdrawn
	}

	r.GetLogger().Info("Application status updated",
		zap.Int64("application_id", appID),
		zap.String("status", string(status)),
	)

	return nil
}

// ===============================
// LISTING
// ===============================

func (r *applicationRepository) ListByApplicant(ctx context.Context, applicantID int64, status models.ApplicationStatus, params models.PaginationParams) (*models.PaginatedResponse[*models.Application], error) {
	where := "a.applicant_id = $1"
	args := []interface{}{applicantID}

	if status != "" {
		args = append(args, status)
		where += fmt.Sprintf(" AND a.status = $%d", len(args))
	}

	return r.listApplications(ctx, where, args, params)
}

func (r *applicationRepository) ListByJob(ctx context.Context, jobID int64, status models.ApplicationStatus, params models.PaginationParams) (*models.PaginatedResponse[*models.Application], error) {
	where := "a.job_id = $1"
	args := []interface{}{jobID}

	if status != "" {
		args = append(args, status)
		where += fmt.Sprintf(" AND a.status = $%d", len(args))
	}

	return r.listApplications(ctx, where, args, params)
}

// ListAll pages through every application, admin reporting only
func (r *applicationRepository) ListAll(ctx context.Context, status models.ApplicationStatus, params models.PaginationParams) (*models.PaginatedResponse[*models.Application], error) {
	where := "TRUE"
	args := []interface{}{}

	if status != "" {
		args = append(args, status)
		where = "a.status = $1"
	}

	return r.listApplications(ctx, where, args, params)
}

func (r *applicationRepository) listApplications(ctx context.Context, where string, args []interface{}, params models.PaginationParams) (*models.PaginatedResponse[*models.Application], error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) %s WHERE %s`, applicationJoins, where)
	total, err := r.GetTotalCount(ctx, countQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	if params.Sort == "" {
		params.Sort = "applied_at"
		params.Order = "desc"
	}

	baseQuery := fmt.Sprintf(`SELECT %s %s WHERE %s`, applicationColumns, applicationJoins, where)
	pagedQuery, pagedArgs := r.BuildPaginatedQuery(baseQuery, args, params)

	rows, err := r.QueryContext(ctx, pagedQuery, pagedArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := make([]*models.Application, 0, params.PageSize)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applications: %w", err)
	}

	return &models.PaginatedResponse[*models.Application]{
		Data:       apps,
		Pagination: models.NewPaginationMeta(params, total),
	}, nil
}

// ===============================
// STATS
// ===============================

// GetRecruiterStats aggregates application counts by status across all
// jobs a recruiter has posted, plus the five most recent submissions
func (r *applicationRepository) GetRecruiterStats(ctx context.Context, recruiterID int64) (*models.ApplicationStats, error) {
	stats := &models.ApplicationStats{
		ByStatus: make(map[models.ApplicationStatus]int64),
	}

	countQuery := `
		SELECT a.status, COUNT(*)
		FROM applications a
		INNER JOIN jobs j ON a.job_id = j.id
		WHERE j.posted_by = $1
		GROUP BY a.status`

	rows, err := r.QueryContext(ctx, countQuery, recruiterID)
	if err != nil {
		return nil, fmt.Errorf("failed to get application stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status models.ApplicationStatus
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan application stats: %w", err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate application stats: %w", err)
	}

	recentQuery := fmt.Sprintf(`
		SELECT %s %s
		WHERE j.posted_by = $1
		ORDER BY a.applied_at DESC
		LIMIT 5`, applicationColumns, applicationJoins)

	recentRows, err := r.QueryContext(ctx, recentQuery, recruiterID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent applications: %w", err)
	}
	defer recentRows.Close()

	for recentRows.Next() {
		app, err := scanApplication(recentRows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recent application: %w", err)
		}
		stats.Recent = append(stats.Recent, app)
	}
	if err := recentRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recent applications: %w", err)
	}

	return stats, nil
}

// Delete removes an application row and fixes the counter. Used by
// admin cleanup only; normal flows withdraw instead.
func (r *applicationRepository) Delete(ctx context.Context, id int64) error {
	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		var (
			jobID  int64
			status models.ApplicationStatus
		)
		if err := tx.QueryRowContext(ctx,
			`DELETE FROM applications WHERE id = $1 RETURNING job_id, status`, id,
		).Scan(&jobID, &status); err != nil {
			return err
		}

		// Withdrawn rows already gave their count back
		if status == models.StatusWithdrawn {
			return nil
		}

		_, err := tx.ExecContext(ctx,
			`UPDATE jobs SET applications_count = applications_count - 1
			 WHERE id = $1 AND applications_count > 0`,
			jobID,
		)
		return err
	})

	if err != nil {
		if r.IsNotFound(err) {
			return fmt.Errorf("application not found")
		}
		return fmt.Errorf("failed to delete application: %w", err)
	}

	r.GetLogger().Info("Application deleted", zap.Int64("application_id", id))
	return nil
}
