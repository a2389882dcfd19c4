package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeforeSaveDedupesGoalsAndTopics(t *testing.T) {
	path := newActivePath(4)
	path.Status = StatusDraft
	path.Goals = []string{"learn Go", "learn Go", "  ", "ship a project"}
	path.PreferredTopics = []string{"backend", "", "backend", "databases"}

	require.NoError(t, path.BeforeSave(nil))

	assert.Equal(t, []string{"learn Go", "ship a project"}, []string(path.Goals))
	assert.Equal(t, []string{"backend", "databases"}, []string(path.PreferredTopics))
}

func TestBeforeSaveStampsScheduleOnActivation(t *testing.T) {
	path := newActivePath(6)

	require.NoError(t, path.BeforeSave(nil))

	require.NotNil(t, path.StartDate)
	require.NotNil(t, path.ExpectedEndDate)
	assert.Equal(t, path.StartDate.AddDate(0, 0, 42), *path.ExpectedEndDate)

	// Saving again must not move the schedule.
	start, end := *path.StartDate, *path.ExpectedEndDate
	require.NoError(t, path.BeforeSave(nil))
	assert.Equal(t, start, *path.StartDate)
	assert.Equal(t, end, *path.ExpectedEndDate)
}

func TestBeforeSaveInitializesProgress(t *testing.T) {
	path := newActivePath(4)

	require.NoError(t, path.BeforeSave(nil))

	assert.Equal(t, 1, path.Progress.CurrentWeek)
	assert.NotNil(t, path.Progress.CompletedWeeks)
	assert.NotNil(t, path.Progress.WeekProgress)
	assert.NotNil(t, path.Progress.ResourceInteractions)
	assert.NotNil(t, path.Progress.Sessions)
	assert.False(t, path.Progress.LastActivity.IsZero())
}

func TestProgressColumnRoundTrip(t *testing.T) {
	path := newActivePath(4)
	path.CompleteWeek(1, CompleteWeekInput{HoursSpent: 5, ReflectionNotes: "good start"})
	path.TrackResourceInteraction("res-1", "viewed", nil)

	value, err := path.Progress.Value()
	require.NoError(t, err)

	var restored Progress
	require.NoError(t, restored.Scan(value))

	assert.Equal(t, path.Progress.CompletionPercentage, restored.CompletionPercentage)
	assert.Equal(t, path.Progress.CompletedWeeks, restored.CompletedWeeks)
	assert.Equal(t, path.Progress.TotalHoursLogged, restored.TotalHoursLogged)
	assert.Equal(t, "good start", restored.WeekProgress["1"].ReflectionNotes)
	require.Len(t, restored.ResourceInteractions, 1)
}

func TestIsOverdue(t *testing.T) {
	path := newActivePath(4)
	assert.False(t, path.IsOverdue(time.Now()))

	past := time.Now().Add(-24 * time.Hour)
	path.ExpectedEndDate = &past
	assert.True(t, path.IsOverdue(time.Now()))

	path.Status = StatusCompleted
	assert.False(t, path.IsOverdue(time.Now()))
}

func TestTotalLearningHours(t *testing.T) {
	path := newActivePath(6)
	path.AvailableTimePerWeek = 8
	assert.Equal(t, 48, path.TotalLearningHours())
}
