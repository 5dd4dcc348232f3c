package repositories

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"jobmatchhub/internal/database"
	"jobmatchhub/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockRepo(t *testing.T) (ApplicationRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	manager := database.NewManagerWithDB(db, nil, zap.NewNop())
	return NewApplicationRepository(manager, zap.NewNop()), mock
}

func TestApplicationRepositoryCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts the row and bumps the job counter in one transaction", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO applications")).
			WithArgs(int64(7), int64(3), models.StatusPending, "cover", "").
			WillReturnRows(sqlmock.NewRows([]string{"id", "applied_at", "updated_at"}).AddRow(int64(11), now, now))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs SET applications_count = applications_count + 1")).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		app := &models.Application{
			JobID:       7,
			ApplicantID: 3,
			Status:      models.StatusPending,
			CoverLetter: "cover",
		}
		require.NoError(t, repo.Create(ctx, app))
		assert.Equal(t, int64(11), app.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("surfaces duplicate applications as the pq unique violation", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		pqErr := &pq.Error{Code: "23505", Constraint: "applications_job_id_applicant_id_key"}
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO applications")).
			WillReturnError(pqErr)
		mock.ExpectRollback()

		err := repo.Create(ctx, &models.Application{JobID: 7, ApplicantID: 3, Status: models.StatusPending})
		require.Error(t, err)

		var got *pq.Error
		require.True(t, errors.As(err, &got))
		assert.Equal(t, "applications_job_id_applicant_id_key", got.Constraint)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the counter update fails", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO applications")).
			WillReturnRows(sqlmock.NewRows([]string{"id", "applied_at", "updated_at"}).AddRow(int64(11), now, now))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs SET applications_count = applications_count + 1")).
			WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		err := repo.Create(ctx, &models.Application{JobID: 7, ApplicantID: 3, Status: models.StatusPending})
		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestApplicationRepositoryReopen(t *testing.T) {
	ctx := context.Background()

	t.Run("resets a withdrawn row and restores the counter", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE applications")).
			WithArgs(int64(11), models.StatusPending, "new cover", "", models.StatusWithdrawn).
			WillReturnRows(sqlmock.NewRows([]string{"applied_at", "updated_at"}).AddRow(now, now))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs SET applications_count = applications_count + 1")).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		app := &models.Application{
			ID:          11,
			JobID:       7,
			ApplicantID: 3,
			Status:      models.StatusWithdrawn,
			CoverLetter: "new cover",
			Notes:       "old notes",
		}
		require.NoError(t, repo.Reopen(ctx, app))
		assert.Equal(t, models.StatusPending, app.Status)
		assert.Empty(t, app.Notes)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("refuses rows that are not withdrawn", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE applications")).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		err := repo.Reopen(ctx, &models.Application{ID: 11, JobID: 7, Status: models.StatusPending})
		require.ErrorIs(t, err, ErrApplicationNotWithdrawn)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestApplicationRepositoryWithdraw(t *testing.T) {
	ctx := context.Background()

	t.Run("marks the row withdrawn and decrements the guarded counter", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE applications")).
			WithArgs(int64(11), models.StatusWithdrawn).
			WillReturnRows(sqlmock.NewRows([]string{"job_id"}).AddRow(int64(7)))
		mock.ExpectExec(regexp.QuoteMeta("applications_count = applications_count - 1")).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Withdraw(ctx, 11))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("a second withdrawal finds no live row and skips the counter", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		// The racing request already flipped the row to withdrawn, so
		// the guarded UPDATE matches nothing and the decrement never runs
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("status IN ('pending', 'reviewed', 'shortlisted', 'interviewed')")).
			WithArgs(int64(11), models.StatusWithdrawn).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		err := repo.Withdraw(ctx, 11)
		require.ErrorIs(t, err, ErrApplicationNotWithdrawable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports missing applications", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE applications")).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		err := repo.Withdraw(ctx, 999)
		require.ErrorIs(t, err, ErrApplicationNotWithdrawable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestApplicationRepositoryUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("updates status, notes, and feedback", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE applications")).
			WithArgs(int64(11), models.StatusShortlisted, "strong resume", "", int64(9), models.StatusWithdrawn).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateStatus(ctx, 11, models.StatusShortlisted, 9, "strong resume", ""))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("never matches a row a concurrent withdrawal already flipped", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND status <> $6")).
			WithArgs(int64(11), models.StatusReviewed, "", "", int64(9), models.StatusWithdrawn).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(ctx, 11, models.StatusReviewed, 9, "", "")
		require.ErrorIs(t, err, ErrApplicationWithdrawn)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestApplicationRepositoryGetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("returns nil without error when no row matches", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(regexp.QuoteMeta("FROM applications a")).
			WithArgs(int64(999)).
			WillReturnError(sql.ErrNoRows)

		app, err := repo.GetByID(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, app)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("scans the joined job and applicant summaries", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		now := time.Now()

		rows := sqlmock.NewRows([]string{
			"id", "job_id", "applicant_id", "status", "cover_letter", "resume_url",
			"notes", "feedback", "reviewed_at", "reviewed_by", "applied_at", "updated_at",
			"title", "company", "location", "job_type", "is_active",
			"name", "email",
		}).AddRow(
			int64(11), int64(7), int64(3), string(models.StatusPending), "cover", "",
			"", "", nil, nil, now, now,
			"Backend Engineer", "Acme", "Remote", "full-time", true,
			"Jane Seeker", "jane@example.com",
		)
		mock.ExpectQuery(regexp.QuoteMeta("FROM applications a")).
			WithArgs(int64(11)).
			WillReturnRows(rows)

		app, err := repo.GetByID(ctx, 11)
		require.NoError(t, err)
		assert.Equal(t, int64(11), app.ID)
		require.NotNil(t, app.Job)
		assert.Equal(t, int64(7), app.Job.ID)
		assert.Equal(t, "Backend Engineer", app.Job.Title)
		require.NotNil(t, app.Applicant)
		assert.Equal(t, int64(3), app.Applicant.ID)
		assert.Equal(t, "jane@example.com", app.Applicant.Email)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
