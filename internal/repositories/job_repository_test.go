package repositories

import (
	"context"
	"regexp"
	"testing"

	"jobmatchhub/internal/database"
	"jobmatchhub/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockJobRepo(t *testing.T) (JobRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	manager := database.NewManagerWithDB(db, nil, zap.NewNop())
	return NewJobRepository(manager, zap.NewNop()), mock
}

func TestJobRepositoryList(t *testing.T) {
	ctx := context.Background()

	t.Run("binds salary bounds as range predicates", func(t *testing.T) {
		repo, mock := newMockJobRepo(t)

		min, max := int64(90000), int64(150000)
		predicates := regexp.QuoteMeta("j.salary_min >= $1 AND j.salary_max <= $2")

		mock.ExpectQuery(predicates).
			WithArgs(min, max).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
		mock.ExpectQuery(predicates).
			WithArgs(min, max, 20, 0).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		page, err := repo.List(ctx, JobFilter{MinSalary: &min, MaxSalary: &max},
			models.PaginationParams{Page: 1, PageSize: 20})
		require.NoError(t, err)
		assert.Empty(t, page.Data)
		assert.Equal(t, int64(0), page.Pagination.Total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("omits salary predicates when no bounds are given", func(t *testing.T) {
		repo, mock := newMockJobRepo(t)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM jobs")).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
		mock.ExpectQuery(regexp.QuoteMeta("WHERE u.is_active = true AND j.is_active = true ORDER BY")).
			WithArgs(20, 0).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.List(ctx, JobFilter{}, models.PaginationParams{Page: 1, PageSize: 20})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
