package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"routine-planner/internal/model"
	"routine-planner/internal/planner"
)

// ScheduleInput represents data required to create a schedule.
type ScheduleInput struct {
	Title       string
	Time        string // "HH:MM - HH:MM" or a lone "HH:MM"
	Description string
	Category    string
	Date        string // dated only, YYYY-MM-DD; empty means today
	Day         string // routines only, weekday name
}

// ScheduleEdit lists the fields an edit may change. Empty strings keep the stored value.
type ScheduleEdit struct {
	Title       string
	Time        string
	Description *string
	Category    string
	Day         string
}

// ScheduleView is a schedule with its parsed window and last known status.
type ScheduleView struct {
	model.Schedule
	Window planner.Window
	Status model.Status
}

// ScheduleService wraps schedule-related business logic.
type ScheduleService struct {
	store    ScheduleStore
	statuses StatusSource
	changes  Invalidator
}

// NewScheduleService wires the store. statuses and changes may be nil.
func NewScheduleService(store ScheduleStore, statuses StatusSource, changes Invalidator) *ScheduleService {
	return &ScheduleService{store: store, statuses: statuses, changes: changes}
}

// CreateDated stores a one-off schedule. It starts out upcoming.
func (s *ScheduleService) CreateDated(ctx context.Context, user *model.User, input ScheduleInput, now time.Time) (*model.Schedule, error) {
	schedule, err := buildSchedule(user, input)
	if err != nil {
		return nil, err
	}
	date := strings.TrimSpace(input.Date)
	if date == "" {
		date = now.Format(model.DateLayout)
	}
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD", model.ErrValidation, date)
	}
	schedule.Date = &date
	schedule.Status = model.StatusUpcoming

	if err := s.store.InsertSchedule(ctx, schedule); err != nil {
		return nil, fmt.Errorf("create schedule: %w", err)
	}
	s.changed()
	return schedule, nil
}

// CreateRoutine stores a schedule repeating every week on input.Day.
func (s *ScheduleService) CreateRoutine(ctx context.Context, user *model.User, input ScheduleInput) (*model.Schedule, error) {
	schedule, err := buildSchedule(user, input)
	if err != nil {
		return nil, err
	}
	weekday, ok := planner.ParseWeekday(input.Day)
	if !ok {
		return nil, fmt.Errorf("%w: unknown weekday %q", model.ErrValidation, input.Day)
	}
	schedule.IsRoutine = true
	schedule.Day = weekday.String()
	schedule.Status = model.StatusTodo

	if err := s.store.InsertSchedule(ctx, schedule); err != nil {
		return nil, fmt.Errorf("create routine: %w", err)
	}
	s.changed()
	return schedule, nil
}

// CreateBatch stores drafted dated schedules all at once.
func (s *ScheduleService) CreateBatch(ctx context.Context, schedules []model.Schedule) error {
	if len(schedules) == 0 {
		return nil
	}
	if err := s.store.InsertSchedules(ctx, schedules); err != nil {
		return fmt.Errorf("create schedules: %w", err)
	}
	s.changed()
	return nil
}

// Update applies an edit to a schedule owned by user and returns the stored result.
func (s *ScheduleService) Update(ctx context.Context, user *model.User, id string, edit ScheduleEdit) (*model.Schedule, error) {
	current, err := s.store.FindByID(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}

	var patch model.SchedulePatch
	if title := strings.TrimSpace(edit.Title); title != "" {
		patch.Title = &title
	}
	if strings.TrimSpace(edit.Time) != "" {
		text, err := planner.Canonical(edit.Time)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", model.ErrValidation, err)
		}
		w, _ := planner.ParseWindow(text)
		duration := w.Duration()
		patch.Time = &text
		patch.Duration = &duration
	}
	if edit.Description != nil {
		description := strings.TrimSpace(*edit.Description)
		patch.Description = &description
	}
	if strings.TrimSpace(edit.Category) != "" {
		category := planner.NormalizeCategory(edit.Category)
		patch.Category = &category
	}
	if strings.TrimSpace(edit.Day) != "" {
		if !current.IsRoutine {
			return nil, fmt.Errorf("%w: only routines have a weekday", model.ErrValidation)
		}
		weekday, ok := planner.ParseWeekday(edit.Day)
		if !ok {
			return nil, fmt.Errorf("%w: unknown weekday %q", model.ErrValidation, edit.Day)
		}
		day := weekday.String()
		patch.Day = &day
	}

	if err := s.store.UpdateSchedule(ctx, current.ID, patch); err != nil {
		return nil, fmt.Errorf("update schedule: %w", err)
	}
	s.changed()
	return s.store.FindByID(ctx, user.ID, id)
}

func (s *ScheduleService) Delete(ctx context.Context, user *model.User, id string) error {
	if err := s.store.DeleteSchedule(ctx, user.ID, id); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	s.changed()
	return nil
}

func (s *ScheduleService) Get(ctx context.Context, user *model.User, id string) (*model.Schedule, error) {
	return s.store.FindByID(ctx, user.ID, id)
}

// Today is the daily view: dated entries for today (or without a date) first,
// then today's routines, ordered by start time.
func (s *ScheduleService) Today(ctx context.Context, user *model.User, now time.Time) ([]ScheduleView, error) {
	return s.view(ctx, user, planner.TodayOf(now))
}

// Week is the weekly view for weekday: routines first, then entries dated on
// the matching day of the next seven days.
func (s *ScheduleService) Week(ctx context.Context, user *model.User, weekday time.Weekday, now time.Time) ([]ScheduleView, error) {
	return s.view(ctx, user, planner.WeekdayOf(now, weekday))
}

func (s *ScheduleService) view(ctx context.Context, user *model.User, day planner.Day) ([]ScheduleView, error) {
	dated, err := s.store.QuerySchedules(ctx, model.ScheduleFilter{
		UserID:         user.ID,
		Kind:           model.KindDated,
		Date:           day.Date,
		IncludeUndated: day.Today,
	})
	if err != nil {
		return nil, fmt.Errorf("load dated schedules: %w", err)
	}
	routines, err := s.store.QuerySchedules(ctx, model.ScheduleFilter{
		UserID: user.ID,
		Kind:   model.KindRoutine,
		Day:    day.Weekday.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("load routines: %w", err)
	}

	merged, err := planner.Merge(day, dated, routines)
	if err != nil {
		return nil, err
	}
	views := make([]ScheduleView, 0, len(merged))
	for _, schedule := range merged {
		w, _ := planner.ParseWindow(schedule.Time)
		views = append(views, ScheduleView{Schedule: schedule, Window: w, Status: s.statusOf(schedule, day.Date)})
	}
	return views, nil
}

// statusOf prefers the reconciler's last computed status and otherwise falls
// back to what is stored.
func (s *ScheduleService) statusOf(schedule model.Schedule, date string) model.Status {
	if s.statuses != nil {
		if status, ok := s.statuses.StatusOf(schedule.ID); ok {
			return status
		}
	}
	return storedStatus(schedule, date)
}

func (s *ScheduleService) changed() {
	if s.changes != nil {
		s.changes.Invalidate()
	}
}

// storedStatus reads the persisted status as it applies on date. A routine
// completed on another day is back to todo.
func storedStatus(schedule model.Schedule, date string) model.Status {
	switch {
	case schedule.DoneOn(date):
		return model.StatusDone
	case schedule.Status == model.StatusDone:
		return model.StatusTodo
	case schedule.Status == "":
		return model.StatusTodo
	default:
		return schedule.Status
	}
}

func buildSchedule(user *model.User, input ScheduleInput) (*model.Schedule, error) {
	if user == nil {
		return nil, errors.New("user is required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", model.ErrValidation)
	}
	text, err := planner.Canonical(input.Time)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrValidation, err)
	}
	w, _ := planner.ParseWindow(text)

	return &model.Schedule{
		UserID:      user.ID,
		Title:       title,
		Time:        text,
		Description: strings.TrimSpace(input.Description),
		Category:    planner.NormalizeCategory(input.Category),
		Duration:    w.Duration(),
	}, nil
}
