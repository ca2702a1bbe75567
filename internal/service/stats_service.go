package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"routine-planner/internal/model"
	"routine-planner/internal/repository"
)

// Period is the window a category breakdown covers.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod accepts a period name in any case; empty means day.
func ParsePeriod(raw string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return PeriodDay, nil
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown period %q", model.ErrValidation, raw)
	}
}

// Breakdown is the share of schedules per category.
type Breakdown struct {
	Period Period
	Counts []repository.CategoryCount
	Total  int
}

// Percent is the share of c in the breakdown, rounded down.
func (b Breakdown) Percent(c repository.CategoryCount) int {
	if b.Total == 0 {
		return 0
	}
	return c.Count * 100 / b.Total
}

// StatsService aggregates schedules for the statistics screen.
type StatsService struct {
	counter CategoryCounter
}

func NewStatsService(counter CategoryCounter) *StatsService {
	return &StatsService{counter: counter}
}

// Breakdown counts the user's schedules per category. The day period covers
// today's dated entries plus every routine; longer periods cover dated entries
// from now minus the period.
func (s *StatsService) Breakdown(ctx context.Context, user *model.User, period Period, now time.Time) (Breakdown, error) {
	q := repository.CategoryQuery{UserID: user.ID}
	switch period {
	case PeriodDay, "":
		period = PeriodDay
		q.Date = now.Format(model.DateLayout)
	case PeriodWeek:
		q.Since = now.AddDate(0, 0, -7).Format(model.DateLayout)
	case PeriodMonth:
		q.Since = now.AddDate(0, -1, 0).Format(model.DateLayout)
	case PeriodYear:
		q.Since = now.AddDate(-1, 0, 0).Format(model.DateLayout)
	default:
		return Breakdown{}, fmt.Errorf("%w: unknown period %q", model.ErrValidation, period)
	}

	counts, err := s.counter.CountByCategory(ctx, q)
	if err != nil {
		return Breakdown{}, fmt.Errorf("count categories: %w", err)
	}
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	return Breakdown{Period: period, Counts: counts, Total: total}, nil
}
