package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"routine-planner/internal/llm"
	"routine-planner/internal/model"
	"routine-planner/internal/planner"
)

// Completer is the language-model call the coach depends on.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message, opts llm.Options) (string, error)
}

// ErrCoachDisabled is returned when no model is configured.
var ErrCoachDisabled = errors.New("coach is not configured")

const autoScheduleInstructions = `You turn a free-form plan into schedule entries.
Answer with one JSON object: {"schedules":[{"title":"","date":"YYYY-MM-DD","startTime":"HH:MM","endTime":"HH:MM","category":"Personal|Work|Study|Health","description":""}]}.
Resolve weekday names with the calendar below. Use 24-hour clock times.`

const analyzeInstructions = `You are a productivity coach. Read the user's schedule summary and
answer in Russian with three short, concrete observations and one suggestion. No markdown.`

type draft struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type draftBatch struct {
	Schedules []draft `json:"schedules"`
}

// CoachService turns text into schedules and comments on the day.
type CoachService struct {
	model     Completer
	schedules *ScheduleService
	stats     *StatsService
	log       zerolog.Logger
}

// NewCoachService wires the coach. completer may be nil, which disables it.
func NewCoachService(completer Completer, schedules *ScheduleService, stats *StatsService, log zerolog.Logger) *CoachService {
	return &CoachService{model: completer, schedules: schedules, stats: stats, log: log.With().Str("component", "coach").Logger()}
}

// Enabled reports whether a model is configured.
func (s *CoachService) Enabled() bool {
	return s != nil && s.model != nil
}

// AutoSchedule asks the model to split text into dated schedules and stores
// them in one batch. Categories are normalised; a non-positive duration
// becomes one hour.
func (s *CoachService) AutoSchedule(ctx context.Context, user *model.User, text string, now time.Time) ([]model.Schedule, error) {
	if !s.Enabled() {
		return nil, ErrCoachDisabled
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: describe your plan", model.ErrValidation)
	}

	prompt := autoScheduleInstructions + "\n\nCalendar:\n" + calendarReference(now)
	answer, err := s.model.Complete(ctx, []llm.Message{
		{Role: "system", Content: prompt},
		{Role: "user", Content: text},
	}, llm.Options{JSON: true, Temperature: 0.2})
	if err != nil {
		return nil, fmt.Errorf("auto schedule: %w", err)
	}

	schedules, err := draftsToSchedules(user, answer, now)
	if err != nil {
		return nil, err
	}
	if err := s.schedules.CreateBatch(ctx, schedules); err != nil {
		return nil, err
	}
	s.log.Info().Uint("user_id", user.ID).Int("count", len(schedules)).Msg("auto schedule stored")
	return schedules, nil
}

// Analyze summarises today's active schedules and asks the model to comment.
func (s *CoachService) Analyze(ctx context.Context, user *model.User, now time.Time) (string, error) {
	if !s.Enabled() {
		return "", ErrCoachDisabled
	}
	views, err := s.schedules.Today(ctx, user, now)
	if err != nil {
		return "", err
	}
	var active []ScheduleView
	for _, v := range views {
		if v.Status != model.StatusDone {
			active = append(active, v)
		}
	}
	if len(active) == 0 {
		return "", fmt.Errorf("%w: no active schedules to analyse", model.ErrValidation)
	}

	summary := activitySummary(active)
	if s.stats != nil {
		breakdown, err := s.stats.Breakdown(ctx, user, PeriodWeek, now)
		if err != nil {
			return "", err
		}
		summary += "\nLast 7 days by category:\n"
		for _, c := range breakdown.Counts {
			summary += fmt.Sprintf("- %s: %d%%\n", c.Category, breakdown.Percent(c))
		}
	}

	answer, err := s.model.Complete(ctx, []llm.Message{
		{Role: "system", Content: analyzeInstructions},
		{Role: "user", Content: summary},
	}, llm.Options{Temperature: 0.7})
	if errors.Is(err, llm.ErrEmptyResponse) {
		return "Не удалось проанализировать расписание.", nil
	}
	if err != nil {
		return "", fmt.Errorf("analyze: %w", err)
	}
	return answer, nil
}

func draftsToSchedules(user *model.User, answer string, now time.Time) ([]model.Schedule, error) {
	var batch draftBatch
	if err := json.Unmarshal([]byte(answer), &batch); err != nil {
		return nil, fmt.Errorf("decode auto schedule: %w", err)
	}
	if len(batch.Schedules) == 0 {
		return nil, fmt.Errorf("%w: nothing to schedule", model.ErrValidation)
	}

	today := now.Format(model.DateLayout)
	schedules := make([]model.Schedule, 0, len(batch.Schedules))
	for _, d := range batch.Schedules {
		title := strings.TrimSpace(d.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: schedule without a title", model.ErrValidation)
		}
		w, err := planner.NewWindow(d.StartTime, d.EndTime)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", model.ErrValidation, title, err)
		}
		if w.Duration() <= 0 {
			// Reset to the default length so the stored text matches the duration.
			w, _ = planner.ParseWindow(planner.FormatClock(w.Start))
		}
		duration := w.Duration()
		if duration <= 0 {
			duration = planner.DefaultLength
		}
		date := strings.TrimSpace(d.Date)
		if date == "" {
			date = today
		}
		if _, err := time.Parse(model.DateLayout, date); err != nil {
			return nil, fmt.Errorf("%w: %q: bad date %q", model.ErrValidation, title, date)
		}

		schedules = append(schedules, model.Schedule{
			UserID:      user.ID,
			Title:       title,
			Time:        w.String(),
			Description: strings.TrimSpace(d.Description),
			Category:    planner.NormalizeCategory(d.Category),
			Status:      model.StatusUpcoming,
			Date:        &date,
			Duration:    duration,
		})
	}
	return schedules, nil
}

// calendarReference lists the next seven days as "- Monday: 2025-03-10".
func calendarReference(now time.Time) string {
	var sb strings.Builder
	for i := 0; i < 7; i++ {
		d := now.AddDate(0, 0, i)
		sb.WriteString(fmt.Sprintf("- %s: %s\n", d.Weekday(), d.Format(model.DateLayout)))
	}
	return sb.String()
}

func activitySummary(active []ScheduleView) string {
	var sb strings.Builder
	sb.WriteString("Today's remaining schedules:\n")
	minutes := make(map[model.Category]int)
	for _, v := range active {
		sb.WriteString(fmt.Sprintf("- %s %s (%s, %d min)\n", v.Time, v.Title, v.Category, v.Window.Duration()))
		minutes[v.Category] += v.Window.Duration()
	}
	sb.WriteString("Planned minutes by category:\n")
	for _, c := range model.Categories {
		if m, ok := minutes[c]; ok {
			sb.WriteString(fmt.Sprintf("- %s: %d\n", c, m))
		}
	}
	return sb.String()
}
