package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobSyncSalary(t *testing.T) {
	min := int64(50000)
	max := int64(90000)

	t.Run("from db columns", func(t *testing.T) {
		job := Job{SalaryMin: &min, SalaryMax: &max, SalaryCurrency: "EUR"}
		job.SyncSalary(true)

		require.NotNil(t, job.Salary.Min)
		assert.Equal(t, min, *job.Salary.Min)
		assert.Equal(t, max, *job.Salary.Max)
		assert.Equal(t, "EUR", job.Salary.Currency)
	})

	t.Run("to db columns", func(t *testing.T) {
		job := Job{Salary: Salary{Min: &min, Currency: "USD"}}
		job.SyncSalary(false)

		require.NotNil(t, job.SalaryMin)
		assert.Equal(t, min, *job.SalaryMin)
		assert.Nil(t, job.SalaryMax)
		assert.Equal(t, "USD", job.SalaryCurrency)
	})
}

func TestJobDeadlinePassed(t *testing.T) {
	now := time.Now()

	job := Job{}
	assert.False(t, job.DeadlinePassed(now), "no deadline never expires")

	past := now.Add(-time.Hour)
	job.ApplicationDeadline = &past
	assert.True(t, job.DeadlinePassed(now))

	future := now.Add(time.Hour)
	job.ApplicationDeadline = &future
	assert.False(t, job.DeadlinePassed(now))
}

func TestProfileMerge(t *testing.T) {
	p := Profile{Bio: "original bio", Location: "Nairobi", Skills: []string{"go"}}
	p.Merge(Profile{Bio: "new bio", Company: "Acme"})

	assert.Equal(t, "new bio", p.Bio)
	assert.Equal(t, "Nairobi", p.Location, "empty incoming fields leave existing values alone")
	assert.Equal(t, []string{"go"}, p.Skills)
	assert.Equal(t, "Acme", p.Company)
}

func TestPaginationNormalize(t *testing.T) {
	p := PaginationParams{}
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.PageSize)
	assert.Equal(t, "created_at", p.Sort)
	assert.Equal(t, "desc", p.Order)

	p = PaginationParams{Page: 3, PageSize: 500, Sort: "title", Order: "asc"}
	p.Normalize()
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 100, p.PageSize, "page size is capped")
	assert.Equal(t, "title", p.Sort)
}

func TestPaginationOffset(t *testing.T) {
	p := PaginationParams{Page: 3, PageSize: 20}
	assert.Equal(t, 40, p.Offset())

	p = PaginationParams{Page: 0, PageSize: 20}
	assert.Equal(t, 0, p.Offset())
}

func TestNewPaginationMeta(t *testing.T) {
	params := PaginationParams{Page: 2, PageSize: 10}
	meta := NewPaginationMeta(params, 25)

	assert.Equal(t, int64(25), meta.Total)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)

	meta = NewPaginationMeta(PaginationParams{Page: 1, PageSize: 10}, 0)
	assert.Equal(t, 0, meta.TotalPages)
	assert.False(t, meta.HasNext)
	assert.False(t, meta.HasPrev)
}

func TestStringArrayRoundTrip(t *testing.T) {
	arr := StringArray{"go", "sql", "distributed systems"}

	value, err := arr.Value()
	require.NoError(t, err)

	var scanned StringArray
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, arr, scanned)
}

func TestStringArrayRoundTripSpecialCharacters(t *testing.T) {
	arr := StringArray{`CI/CD, pipelines`, `says "hello"`, `back\slash`}

	value, err := arr.Value()
	require.NoError(t, err)

	var scanned StringArray
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, arr, scanned)
}

func TestStringArrayScanEmpty(t *testing.T) {
	var arr StringArray
	require.NoError(t, arr.Scan("{}"))
	assert.Empty(t, arr)

	require.NoError(t, arr.Scan(nil))
	assert.Nil(t, arr)
}
