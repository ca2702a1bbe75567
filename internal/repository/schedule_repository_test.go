package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routine-planner/internal/model"
)

func TestScheduleInsertAssignsID(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	user := newTestUser(t, db, 1)
	repo := NewScheduleRepository(db)

	s := &model.Schedule{UserID: user.ID, Title: "Gym", Time: "07:00 - 08:00", Date: strPtr("2025-03-10")}
	require.NoError(t, repo.InsertSchedule(ctx, s))
	assert.NotEmpty(t, s.ID)

	got, err := repo.FindByID(ctx, user.ID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryPersonal, got.Category)
	assert.Equal(t, model.StatusTodo, got.Status)
}

func TestScheduleCategoryConstraint(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	user := newTestUser(t, db, 1)
	repo := NewScheduleRepository(db)

	err := repo.InsertSchedule(ctx, &model.Schedule{UserID: user.ID, Title: "x", Time: "07:00 - 08:00", Category: "Sports"})
	assert.Error(t, err)
}

func TestQuerySchedulesFilters(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	alice := newTestUser(t, db, 1)
	bob := newTestUser(t, db, 2)
	repo := NewScheduleRepository(db)

	seed := []model.Schedule{
		{UserID: alice.ID, Title: "today", Time: "09:00 - 10:00", Date: strPtr("2025-03-10")},
		{UserID: alice.ID, Title: "undated", Time: "10:00 - 11:00"},
		{UserID: alice.ID, Title: "tomorrow", Time: "11:00 - 12:00", Date: strPtr("2025-03-11")},
		{UserID: alice.ID, Title: "monday routine", Time: "06:00 - 07:00", IsRoutine: true, Day: "Monday"},
		{UserID: alice.ID, Title: "friday routine", Time: "06:00 - 07:00", IsRoutine: true, Day: "Friday"},
		{UserID: bob.ID, Title: "bob today", Time: "09:00 - 10:00", Date: strPtr("2025-03-10")},
	}
	require.NoError(t, repo.InsertSchedules(ctx, seed))

	titles := func(f model.ScheduleFilter) []string {
		list, err := repo.QuerySchedules(ctx, f)
		require.NoError(t, err)
		var out []string
		for _, s := range list {
			out = append(out, s.Title)
		}
		return out
	}

	assert.Equal(t, []string{"today"}, titles(model.ScheduleFilter{UserID: alice.ID, Kind: model.KindDated, Date: "2025-03-10"}))
	assert.Equal(t, []string{"today", "undated"}, titles(model.ScheduleFilter{UserID: alice.ID, Kind: model.KindDated, Date: "2025-03-10", IncludeUndated: true}))
	assert.Equal(t, []string{"monday routine"}, titles(model.ScheduleFilter{UserID: alice.ID, Kind: model.KindRoutine, Day: "monday"}))
	assert.Equal(t, []string{"today", "tomorrow"}, titles(model.ScheduleFilter{UserID: alice.ID, Kind: model.KindDated, Since: "2025-03-10"}))
	assert.Equal(t, []string{"today", "bob today"}, titles(model.ScheduleFilter{Kind: model.KindDated, Date: "2025-03-10"}))
}

func TestInsertSchedulesIsAtomic(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	user := newTestUser(t, db, 1)
	repo := NewScheduleRepository(db)

	err := repo.InsertSchedules(ctx, []model.Schedule{
		{UserID: user.ID, Title: "ok", Time: "09:00 - 10:00"},
		{UserID: user.ID, Title: "bad", Time: "10:00 - 11:00", Category: "Nope"},
	})
	require.Error(t, err)

	list, err := repo.QuerySchedules(ctx, model.ScheduleFilter{UserID: user.ID})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateAndDeleteSchedule(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	user := newTestUser(t, db, 1)
	repo := NewScheduleRepository(db)

	s := &model.Schedule{UserID: user.ID, Title: "Read", Time: "20:00 - 21:00", Status: model.StatusUpcoming}
	require.NoError(t, repo.InsertSchedule(ctx, s))

	done := model.StatusDone
	day := "2025-03-10"
	work := model.CategoryWork
	require.NoError(t, repo.UpdateSchedule(ctx, s.ID, model.SchedulePatch{Status: &done, CompletedOn: &day, Category: &work}))

	got, err := repo.FindByID(ctx, user.ID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, got.Status)
	assert.Equal(t, model.CategoryWork, got.Category)
	require.NotNil(t, got.CompletedOn)
	assert.Equal(t, day, *got.CompletedOn)

	err = repo.UpdateSchedule(ctx, "missing", model.SchedulePatch{Status: &done})
	assert.True(t, errors.Is(err, model.ErrNotFound))

	require.NoError(t, repo.DeleteSchedule(ctx, user.ID, s.ID))
	err = repo.DeleteSchedule(ctx, user.ID, s.ID)
	assert.True(t, errors.Is(err, model.ErrNotFound))

	_, err = repo.FindByID(ctx, user.ID, s.ID)
	var opErr *OpError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "find", opErr.Op)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestDeleteScheduleChecksOwner(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	alice := newTestUser(t, db, 1)
	bob := newTestUser(t, db, 2)
	repo := NewScheduleRepository(db)

	s := &model.Schedule{UserID: alice.ID, Title: "Mine", Time: "20:00 - 21:00"}
	require.NoError(t, repo.InsertSchedule(ctx, s))
	assert.True(t, errors.Is(repo.DeleteSchedule(ctx, bob.ID, s.ID), model.ErrNotFound))
}
