package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"routine-planner/internal/model"
)

// ReminderService builds human-readable summaries for daily notifications.
type ReminderService struct {
	schedules *ScheduleService
	rewards   *RewardService
}

func NewReminderService(schedules *ScheduleService, rewards *RewardService) *ReminderService {
	return &ReminderService{schedules: schedules, rewards: rewards}
}

// DailySummary renders today's agenda with statuses and the reward profile.
func (s *ReminderService) DailySummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	views, err := s.schedules.Today(ctx, &user, now)
	if err != nil {
		return "", err
	}

	var pending, done []ScheduleView
	for _, v := range views {
		if v.Status == model.StatusDone {
			done = append(done, v)
			continue
		}
		pending = append(pending, v)
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Ежедневный отчёт</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("02.01.2006")))

	builder.WriteString("🔥 <b>Впереди</b>\n")
	if len(pending) == 0 {
		builder.WriteString("— на сегодня больше ничего нет\n")
	} else {
		for _, v := range pending {
			builder.WriteString(FormatScheduleLine(v))
		}
	}

	builder.WriteString("\n✅ <b>Выполнено</b>\n")
	if len(done) == 0 {
		builder.WriteString("— пока ничего\n")
	} else {
		for _, v := range done {
			builder.WriteString(FormatScheduleLine(v))
		}
	}

	if s.rewards != nil {
		profile, err := s.rewards.Profile(ctx, user.ID)
		if err != nil {
			return "", err
		}
		builder.WriteString(fmt.Sprintf("\n🏆 Уровень %d · %d очков (до следующего: %d)\n",
			profile.Level, profile.Points, profile.ToNextLevel))
	}

	return strings.TrimSpace(builder.String()), nil
}

// StatusIcon is the marker shown next to a schedule.
func StatusIcon(status model.Status) string {
	switch status {
	case model.StatusDone:
		return "✅"
	case model.StatusOngoing:
		return "▶️"
	case model.StatusSoon:
		return "⏳"
	case model.StatusUpcoming:
		return "🕒"
	default:
		return "▫️"
	}
}

// FormatScheduleLine renders one agenda line as HTML.
func FormatScheduleLine(v ScheduleView) string {
	var sb strings.Builder

	title := html.EscapeString(strings.TrimSpace(v.Title))
	sb.WriteString(fmt.Sprintf("%s <code>%s</code> %s", StatusIcon(v.Status), v.Time, title))
	sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(CategoryLabel(v.Category))))
	if v.IsRoutine {
		sb.WriteString(" ♻️")
	}
	if desc := strings.TrimSpace(v.Description); desc != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(desc)))
	}

	sb.WriteByte('\n')
	return sb.String()
}

// CategoryLabel is the Russian display name of a category.
func CategoryLabel(c model.Category) string {
	switch c {
	case model.CategoryWork:
		return "Работа"
	case model.CategoryStudy:
		return "Учёба"
	case model.CategoryHealth:
		return "Здоровье"
	default:
		return "Личное"
	}
}
