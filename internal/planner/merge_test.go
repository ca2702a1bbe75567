package planner

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routine-planner/internal/model"
)

func dated(id, window string, date *string) model.Schedule {
	return model.Schedule{ID: id, Time: window, Date: date}
}

func routine(id, window, day string) model.Schedule {
	return model.Schedule{ID: id, Time: window, IsRoutine: true, Day: day}
}

func ids(schedules []model.Schedule) []string {
	out := make([]string, len(schedules))
	for i, s := range schedules {
		out[i] = s.ID
	}
	return out
}

func strPtr(s string) *string { return &s }

func TestMergeToday(t *testing.T) {
	now := time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC) // Monday
	day := TodayOf(now)

	datedSet := []model.Schedule{
		dated("d-late", "18:00 - 19:00", strPtr("2025-03-10")),
		dated("d-undated", "09:00 - 10:00", nil),
		dated("d-tomorrow", "06:00 - 07:00", strPtr("2025-03-11")),
		dated("d-tie", "09:00 - 09:30", strPtr("2025-03-10")),
	}
	routines := []model.Schedule{
		routine("r-gym", "06:30 - 07:30", "Monday"),
		routine("r-tie", "09:00 - 11:00", "monday"),
		routine("r-tuesday", "05:00 - 06:00", "Tuesday"),
	}

	merged, err := Merge(day, datedSet, routines)
	require.NoError(t, err)
	assert.Equal(t, []string{"r-gym", "d-undated", "d-tie", "r-tie", "d-late"}, ids(merged))
}

func TestMergeWeekday(t *testing.T) {
	now := time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC) // Monday
	day := WeekdayOf(now, time.Wednesday)
	assert.Equal(t, "2025-03-12", day.Date)

	datedSet := []model.Schedule{
		dated("d-wed", "09:00 - 10:00", strPtr("2025-03-12")),
		dated("d-undated", "08:00 - 09:00", nil),
	}
	routines := []model.Schedule{
		routine("r-wed", "09:00 - 09:45", "Wednesday"),
	}

	merged, err := Merge(day, datedSet, routines)
	require.NoError(t, err)
	assert.Equal(t, []string{"r-wed", "d-wed"}, ids(merged))
}

func TestMergeIdempotent(t *testing.T) {
	day := TodayOf(time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC))
	datedSet := []model.Schedule{
		dated("a", "10:00 - 11:00", nil),
		dated("b", "10:00 - 10:30", nil),
		dated("c", "08:00 - 09:00", nil),
	}
	routines := []model.Schedule{routine("d", "10:00 - 12:00", "Monday")}

	first, err := Merge(day, datedSet, routines)
	require.NoError(t, err)
	second, err := Merge(day, datedSet, routines)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 4)
}

func TestMergeFailsOnMalformedTime(t *testing.T) {
	day := TodayOf(time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC))
	_, err := Merge(day, []model.Schedule{dated("bad", "soon-ish", nil)}, nil)
	var fe *FormatError
	require.Error(t, err)
	assert.True(t, errors.As(err, &fe))
	assert.Contains(t, err.Error(), "bad")
}

func TestWeekdayOfToday(t *testing.T) {
	now := time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)
	day := WeekdayOf(now, time.Monday)
	assert.Equal(t, "2025-03-10", day.Date)
	assert.False(t, day.Today)

	sunday := WeekdayOf(now, time.Sunday)
	assert.Equal(t, "2025-03-16", sunday.Date)
}

func TestParseWeekday(t *testing.T) {
	d, ok := ParseWeekday("Friday")
	assert.True(t, ok)
	assert.Equal(t, time.Friday, d)

	d, ok = ParseWeekday(" sun ")
	assert.True(t, ok)
	assert.Equal(t, time.Sunday, d)

	_, ok = ParseWeekday("fr")
	assert.False(t, ok)
	_, ok = ParseWeekday("someday")
	assert.False(t, ok)
}
