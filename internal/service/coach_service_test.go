package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routine-planner/internal/llm"
	"routine-planner/internal/model"
	"routine-planner/internal/repository"
)

func TestAutoScheduleStoresNormalisedBatch(t *testing.T) {
	store := newFakeScheduleStore()
	changes := &countingInvalidator{}
	completer := &fakeCompleter{answer: `{"schedules":[
		{"title":"Write report","date":"2025-03-11","startTime":"09:00","endTime":"11:00","category":"WORK"},
		{"title":"Call mom","startTime":"19:00","endTime":"19:00","category":"family"}
	]}`}
	coach := NewCoachService(completer, NewScheduleService(store, nil, changes), nil, zerolog.Nop())

	got, err := coach.AutoSchedule(context.Background(), &model.User{ID: 3}, "tomorrow report, call mom tonight", monday(8, 0))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, model.CategoryWork, got[0].Category)
	assert.Equal(t, 120, got[0].Duration)
	assert.Equal(t, "2025-03-11", *got[0].Date)

	assert.Equal(t, model.CategoryPersonal, got[1].Category)
	assert.Equal(t, 60, got[1].Duration)
	assert.Equal(t, "19:00 - 20:00", got[1].Time)
	assert.Equal(t, "2025-03-10", *got[1].Date)
	assert.Equal(t, model.StatusUpcoming, got[1].Status)

	assert.Len(t, store.schedules, 2)
	assert.Equal(t, 1, changes.calls)
	assert.True(t, completer.opts.JSON)
	require.Len(t, completer.messages, 2)
	assert.Contains(t, completer.messages[0].Content, "- Tuesday: 2025-03-11")
}

func TestAutoScheduleRejectsBadOutput(t *testing.T) {
	store := newFakeScheduleStore()
	completer := &fakeCompleter{answer: `{"schedules":[{"title":"x","startTime":"morning"}]}`}
	coach := NewCoachService(completer, NewScheduleService(store, nil, nil), nil, zerolog.Nop())

	_, err := coach.AutoSchedule(context.Background(), &model.User{ID: 1}, "something", monday(8, 0))
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Empty(t, store.schedules)

	completer.answer = "not json"
	_, err = coach.AutoSchedule(context.Background(), &model.User{ID: 1}, "something", monday(8, 0))
	assert.Error(t, err)
}

func TestAutoScheduleValidation(t *testing.T) {
	coach := NewCoachService(&fakeCompleter{}, NewScheduleService(newFakeScheduleStore(), nil, nil), nil, zerolog.Nop())
	_, err := coach.AutoSchedule(context.Background(), &model.User{ID: 1}, "   ", monday(8, 0))
	assert.ErrorIs(t, err, model.ErrValidation)

	disabled := NewCoachService(nil, nil, nil, zerolog.Nop())
	assert.False(t, disabled.Enabled())
	_, err = disabled.AutoSchedule(context.Background(), &model.User{ID: 1}, "plan", monday(8, 0))
	assert.ErrorIs(t, err, ErrCoachDisabled)
}

func TestAnalyzeNeedsActiveSchedules(t *testing.T) {
	done := dated("a", 1, "06:00 - 07:00", "2025-03-10")
	done.Status = model.StatusDone
	store := newFakeScheduleStore(done)
	coach := NewCoachService(&fakeCompleter{answer: "ok"}, NewScheduleService(store, nil, nil), nil, zerolog.Nop())

	_, err := coach.Analyze(context.Background(), &model.User{ID: 1}, monday(8, 0))
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestAnalyzeSendsSummary(t *testing.T) {
	store := newFakeScheduleStore(
		dated("a", 1, "09:00 - 10:30", "2025-03-10"),
		routine("r", 1, "18:00 - 18:30", "Monday"),
	)
	counter := &fakeCounter{counts: []repository.CategoryCount{{Category: model.CategoryWork, Count: 1}}}
	completer := &fakeCompleter{answer: "Сосредоточьтесь на главном."}
	coach := NewCoachService(completer, NewScheduleService(store, nil, nil), NewStatsService(counter), zerolog.Nop())

	out, err := coach.Analyze(context.Background(), &model.User{ID: 1}, monday(8, 0))
	require.NoError(t, err)
	assert.Equal(t, "Сосредоточьтесь на главном.", out)
	assert.False(t, completer.opts.JSON)

	summary := completer.messages[1].Content
	assert.Contains(t, summary, "task a (Work, 90 min)")
	assert.Contains(t, summary, "routine r (Health, 30 min)")
	assert.Contains(t, summary, "- Work: 100%")
	assert.True(t, strings.Index(summary, "task a") < strings.Index(summary, "routine r"))
}

func TestAnalyzeEmptyAnswerFallsBack(t *testing.T) {
	store := newFakeScheduleStore(dated("a", 1, "09:00 - 10:30", "2025-03-10"))
	completer := &fakeCompleter{err: llm.ErrEmptyResponse}
	coach := NewCoachService(completer, NewScheduleService(store, nil, nil), nil, zerolog.Nop())

	out, err := coach.Analyze(context.Background(), &model.User{ID: 1}, monday(8, 0))
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	completer.err = errors.New("boom")
	_, err = coach.Analyze(context.Background(), &model.User{ID: 1}, monday(8, 0))
	assert.Error(t, err)
}
