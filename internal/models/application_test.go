package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplicationStatusIsValid(t *testing.T) {
	for _, status := range AllStatuses {
		assert.True(t, status.IsValid(), "expected %q to be valid", status)
	}
	assert.False(t, ApplicationStatus("archived").IsValid())
	assert.False(t, ApplicationStatus("").IsValid())
}

func TestApplicationStatusCanWithdraw(t *testing.T) {
	tests := []struct {
		status ApplicationStatus
		want   bool
	}{
		{StatusPending, true},
		{StatusReviewed, true},
		{StatusShortlisted, true},
		{StatusInterviewed, true},
		{StatusOffered, false},
		{StatusRejected, false},
		{StatusWithdrawn, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.CanWithdraw())
		})
	}
}

func TestApplicationStatusIsTerminal(t *testing.T) {
	assert.True(t, StatusOffered.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusWithdrawn.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusInterviewed.IsTerminal())
}

func TestApplicationVisibleTo(t *testing.T) {
	app := &Application{ApplicantID: 7, JobID: 3}
	jobOwnerID := int64(9)

	assert.True(t, app.VisibleTo(7, false, jobOwnerID), "applicant sees own application")
	assert.True(t, app.VisibleTo(9, false, jobOwnerID), "job owner sees applications to their job")
	assert.True(t, app.VisibleTo(1, true, jobOwnerID), "admin sees everything")
	assert.False(t, app.VisibleTo(5, false, jobOwnerID), "unrelated user sees nothing")
}
