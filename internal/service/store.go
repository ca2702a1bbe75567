package service

import (
	"context"

	"routine-planner/internal/model"
	"routine-planner/internal/repository"
)

// ScheduleStore is the schedule persistence the services need.
type ScheduleStore interface {
	QuerySchedules(ctx context.Context, filter model.ScheduleFilter) ([]model.Schedule, error)
	FindByID(ctx context.Context, userID uint, id string) (*model.Schedule, error)
	InsertSchedule(ctx context.Context, s *model.Schedule) error
	InsertSchedules(ctx context.Context, schedules []model.Schedule) error
	UpdateSchedule(ctx context.Context, id string, patch model.SchedulePatch) error
	DeleteSchedule(ctx context.Context, userID uint, id string) error
}

// ProfileStore reads and writes reward profiles.
type ProfileStore interface {
	ReadProfile(ctx context.Context, userID uint) (model.Profile, error)
	WriteProfile(ctx context.Context, p model.Profile) error
}

// CategoryCounter aggregates schedules per category.
type CategoryCounter interface {
	CountByCategory(ctx context.Context, q repository.CategoryQuery) ([]repository.CategoryCount, error)
}

// StatusSource reports the last status the reconciler computed for a schedule.
type StatusSource interface {
	StatusOf(id string) (model.Status, bool)
}

// Invalidator is told when schedules change outside the reconciler.
type Invalidator interface {
	Invalidate()
}

var (
	_ ScheduleStore   = (*repository.Store)(nil)
	_ ProfileStore    = (*repository.Store)(nil)
	_ CategoryCounter = (*repository.CategoryRepository)(nil)
)
