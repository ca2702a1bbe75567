package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routine-planner/internal/model"
	"routine-planner/internal/repository"
)

func TestBreakdownPeriods(t *testing.T) {
	counter := &fakeCounter{counts: []repository.CategoryCount{
		{Category: model.CategoryWork, Count: 3},
		{Category: model.CategoryPersonal, Count: 1},
	}}
	svc := NewStatsService(counter)
	user := &model.User{ID: 4}
	ctx := context.Background()
	now := monday(12, 0)

	b, err := svc.Breakdown(ctx, user, PeriodDay, now)
	require.NoError(t, err)
	assert.Equal(t, repository.CategoryQuery{UserID: 4, Date: "2025-03-10"}, counter.last)
	assert.Equal(t, 4, b.Total)
	assert.Equal(t, 75, b.Percent(b.Counts[0]))
	assert.Equal(t, 25, b.Percent(b.Counts[1]))

	_, err = svc.Breakdown(ctx, user, PeriodWeek, now)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-03", counter.last.Since)

	_, err = svc.Breakdown(ctx, user, PeriodMonth, now)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-10", counter.last.Since)

	_, err = svc.Breakdown(ctx, user, PeriodYear, now)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", counter.last.Since)

	_, err = svc.Breakdown(ctx, user, Period("decade"), now)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod(" Month ")
	require.NoError(t, err)
	assert.Equal(t, PeriodMonth, p)

	p, err = ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, PeriodDay, p)

	_, err = ParsePeriod("fortnight")
	assert.Error(t, err)
}

func TestPercentOfEmptyBreakdown(t *testing.T) {
	assert.Zero(t, Breakdown{}.Percent(repository.CategoryCount{Count: 3}))
}
