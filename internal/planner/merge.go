package planner

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"routine-planner/internal/model"
)

// Day identifies the day a view is built for.
type Day struct {
	Date    string // YYYY-MM-DD
	Weekday time.Weekday
	// Today marks the daily view: dated schedules without a date belong to it.
	Today bool
}

// TodayOf returns the daily-view Day for t.
func TodayOf(t time.Time) Day {
	return Day{Date: t.Format(model.DateLayout), Weekday: t.Weekday(), Today: true}
}

// WeekdayOf returns the weekly-view Day for weekday, resolved to its date
// within the seven days starting at now.
func WeekdayOf(now time.Time, weekday time.Weekday) Day {
	offset := (int(weekday) - int(now.Weekday()) + 7) % 7
	date := now.AddDate(0, 0, offset)
	return Day{Date: date.Format(model.DateLayout), Weekday: weekday}
}

// ParseWeekday accepts English weekday names, full or three-letter, in any case.
func ParseWeekday(name string) (time.Weekday, bool) {
	value := strings.ToLower(strings.TrimSpace(name))
	if len(value) < 3 {
		return 0, false
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if value == full || value == full[:3] {
			return d, true
		}
	}
	return 0, false
}

// MatchesDay reports whether a schedule belongs to day.
func MatchesDay(s model.Schedule, day Day) bool {
	if s.IsRoutine {
		return strings.EqualFold(s.Day, day.Weekday.String())
	}
	if s.Date == nil {
		return day.Today
	}
	return *s.Date == day.Date
}

// Merge filters dated and routine schedules for day, concatenates them and
// sorts them by start time. Equal start times keep their concatenation order.
// The daily view lists dated entries first, the weekly view routines first.
// A malformed time fails the whole merge rather than hiding the entry.
func Merge(day Day, dated, routines []model.Schedule) ([]model.Schedule, error) {
	var first, second []model.Schedule
	datedForDay := filter(day, dated, false)
	routinesForDay := filter(day, routines, true)
	if day.Today {
		first, second = datedForDay, routinesForDay
	} else {
		first, second = routinesForDay, datedForDay
	}

	merged := make([]model.Schedule, 0, len(first)+len(second))
	merged = append(merged, first...)
	merged = append(merged, second...)
	return SortByStart(merged)
}

// SortByStart stable-sorts schedules by the parsed start of their window.
func SortByStart(schedules []model.Schedule) ([]model.Schedule, error) {
	type keyed struct {
		start    int
		schedule model.Schedule
	}
	items := make([]keyed, 0, len(schedules))
	for _, s := range schedules {
		w, err := ParseWindow(s.Time)
		if err != nil {
			return nil, fmt.Errorf("schedule %s: %w", s.ID, err)
		}
		items = append(items, keyed{start: w.Start, schedule: s})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].start < items[j].start
	})
	sorted := make([]model.Schedule, len(items))
	for i, item := range items {
		sorted[i] = item.schedule
	}
	return sorted, nil
}

func filter(day Day, schedules []model.Schedule, routine bool) []model.Schedule {
	var out []model.Schedule
	for _, s := range schedules {
		if s.IsRoutine != routine {
			continue
		}
		if MatchesDay(s, day) {
			out = append(out, s)
		}
	}
	return out
}
