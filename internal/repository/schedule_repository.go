package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"routine-planner/internal/model"
)

// ScheduleRepository handles CRUD for schedules.
type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// QuerySchedules lists schedules matching f in creation order.
func (r *ScheduleRepository) QuerySchedules(ctx context.Context, f model.ScheduleFilter) ([]model.Schedule, error) {
	q := r.db.WithContext(ctx).Model(&model.Schedule{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	switch f.Kind {
	case model.KindDated:
		q = q.Where("is_routine = ?", false)
	case model.KindRoutine:
		q = q.Where("is_routine = ?", true)
	}
	if f.Date != "" {
		if f.IncludeUndated {
			q = q.Where("(date = ? OR date IS NULL)", f.Date)
		} else {
			q = q.Where("date = ?", f.Date)
		}
	}
	if f.Since != "" {
		q = q.Where("date >= ?", f.Since)
	}
	if f.Day != "" {
		q = q.Where("LOWER(day) = LOWER(?)", f.Day)
	}

	var schedules []model.Schedule
	if err := q.Order("created_at ASC, id ASC").Find(&schedules).Error; err != nil {
		return nil, wrapErr("query", "schedules", "", err)
	}
	return schedules, nil
}

func (r *ScheduleRepository) FindByID(ctx context.Context, userID uint, id string) (*model.Schedule, error) {
	var schedule model.Schedule
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&schedule).Error; err != nil {
		return nil, wrapErr("find", "schedule", id, err)
	}
	return &schedule, nil
}

func (r *ScheduleRepository) InsertSchedule(ctx context.Context, s *model.Schedule) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return wrapErr("insert", "schedule", s.ID, err)
	}
	return nil
}

// InsertSchedules stores all records or none.
func (r *ScheduleRepository) InsertSchedules(ctx context.Context, schedules []model.Schedule) error {
	if len(schedules) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range schedules {
			if err := tx.Create(&schedules[i]).Error; err != nil {
				return fmt.Errorf("insert %q: %w", schedules[i].Title, err)
			}
		}
		return nil
	})
	return wrapErr("bulk insert", "schedules", "", err)
}

// UpdateSchedule applies the non-nil fields of patch.
func (r *ScheduleRepository) UpdateSchedule(ctx context.Context, id string, patch model.SchedulePatch) error {
	updates := patchColumns(patch)
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&model.Schedule{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return wrapErr("update", "schedule", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return wrapErr("update", "schedule", id, model.ErrNotFound)
	}
	return nil
}

// DeleteSchedule removes a schedule owned by userID, routine or not.
func (r *ScheduleRepository) DeleteSchedule(ctx context.Context, userID uint, id string) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&model.Schedule{})
	if res.Error != nil {
		return wrapErr("delete", "schedule", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return wrapErr("delete", "schedule", id, model.ErrNotFound)
	}
	return nil
}

func patchColumns(p model.SchedulePatch) map[string]interface{} {
	updates := make(map[string]interface{})
	if p.Title != nil {
		updates["title"] = *p.Title
	}
	if p.Time != nil {
		updates["time"] = *p.Time
	}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	if p.Category != nil {
		updates["category"] = string(*p.Category)
	}
	if p.Status != nil {
		updates["status"] = string(*p.Status)
	}
	if p.Day != nil {
		updates["day"] = *p.Day
	}
	if p.Duration != nil {
		updates["duration"] = *p.Duration
	}
	if p.CompletedOn != nil {
		updates["completed_on"] = *p.CompletedOn
	}
	return updates
}
