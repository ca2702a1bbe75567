package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"routine-planner/internal/model"
	"routine-planner/internal/service"
)

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "друг"
	}

	text := fmt.Sprintf(
		"👋 Привет, %s!\n<b>Я планировщик дня: слежу за расписанием и сам отмечаю завершённые дела.</b>\n"+
			"За каждое завершённое дело начисляю 20 очков, каждые 100 очков дают новый уровень.\n\n"+
			"Начни с /add или открой /help.",
		escape(name),
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Подсказки</b>\n" +
		"• /today — расписание на сегодня\n" +
		"• /week [день] — расписание на день недели (например, /week пт)\n" +
		"• /add — добавить дело на дату\n" +
		"• /routine — добавить еженедельную рутину\n" +
		"• /edit &lt;id&gt; — изменить дело\n" +
		"• /delete &lt;id&gt; — удалить дело\n" +
		"• /auto [текст] — составить расписание из описания\n" +
		"• /coach — короткий разбор дня от ассистента\n" +
		"• /profile — уровень и очки\n" +
		"• /stats [day|week|month|year] — категории за период\n" +
		"• /report — отчёт за сегодня\n" +
		"• /cancel — отменить текущий ввод\n\n" +
		"Время указывай как <code>08:00 - 09:30</code> или просто <code>08:00</code> (тогда дело займёт час)."
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleToday(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	now := b.now()
	views, err := b.schedules.Today(ctx, user, now)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Не удалось получить расписание: "+escape(err.Error()))
	}
	header := fmt.Sprintf("📅 <b>Сегодня</b>, %s %s", weekdayLabel(now.Weekday()), now.Format("02.01"))
	return b.sendScheduleList(msg.Chat.ID, header, views)
}

func (b *Bot) handleWeek(ctx context.Context, msg *tgbotapi.Message) error {
	arg := ""
	if msg.IsCommand() {
		arg = strings.TrimSpace(msg.CommandArguments())
	}
	if arg == "" {
		return b.sendWithReplyMarkup(msg.Chat.ID, "🗓 Выбери день недели:", weekdayInlineKeyboard())
	}
	weekday, ok := weekdayFromInput(arg)
	if !ok {
		return b.sendText(msg.Chat.ID, "Не понял день недели. Например: /week пн или /week friday")
	}
	return b.sendWeekday(ctx, msg.Chat.ID, msg.From, weekday)
}

func (b *Bot) sendWeekday(ctx context.Context, chatID int64, from *tgbotapi.User, weekday time.Weekday) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}
	views, err := b.schedules.Week(ctx, user, weekday, b.now())
	if err != nil {
		return b.sendText(chatID, "Не удалось получить расписание: "+escape(err.Error()))
	}
	header := fmt.Sprintf("🗓 <b>%s</b>", weekdayLabel(weekday))
	return b.sendScheduleList(chatID, header, views)
}

func (b *Bot) sendScheduleList(chatID int64, header string, views []service.ScheduleView) error {
	text, markup := renderScheduleList(header, views)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = *markup
	} else {
		msg.ReplyMarkup = mainMenuKeyboard()
	}
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) handleEdit(ctx context.Context, msg *tgbotapi.Message) error {
	id := strings.TrimSpace(msg.CommandArguments())
	if id == "" {
		return b.sendText(msg.Chat.ID, "Укажи ID дела: /edit &lt;id&gt;. Проще нажать ✏️ в списке /today.")
	}
	return b.startEdit(ctx, msg.Chat.ID, msg.From, id)
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	id := strings.TrimSpace(msg.CommandArguments())
	if id == "" {
		return b.sendText(msg.Chat.ID, "Укажи ID дела: /delete &lt;id&gt;. Проще нажать 🗑 в списке /today.")
	}
	return b.askDeleteConfirmation(ctx, msg.Chat.ID, msg.From, id)
}

func (b *Bot) askDeleteConfirmation(ctx context.Context, chatID int64, from *tgbotapi.User, id string) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}
	schedule, err := b.schedules.Get(ctx, user, id)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}

	text := fmt.Sprintf("Удалить «%s» (%s)?", escape(normalizeTitle(schedule.Title)), schedule.Time)
	b.setConfirmation(from.ID, confirmationRequest{scheduleID: schedule.ID})
	return b.sendWithReplyMarkup(chatID, text, confirmInlineKeyboard(schedule.ID))
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.deleteAndRefresh(ctx, msg.Chat.ID, msg.From, req.scheduleID)
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendMenuPlaceholder(msg.Chat.ID)
	default:
		return b.sendWithReplyMarkup(msg.Chat.ID, "Подтверди или отмени удаление.", confirmKeyboard())
	}
}

func (b *Bot) deleteAndRefresh(ctx context.Context, chatID int64, from *tgbotapi.User, id string) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}
	schedule, err := b.schedules.Get(ctx, user, id)
	if err != nil {
		return b.sendTextWithRemove(chatID, errorText(err))
	}
	if err := b.schedules.Delete(ctx, user, id); err != nil {
		return b.sendTextWithRemove(chatID, errorText(err))
	}

	b.log.Info().Str("schedule_id", id).Uint("user_id", user.ID).Msg("schedule deleted")
	if err := b.sendTextWithRemove(chatID, fmt.Sprintf("🗑 «%s» удалено.", escape(normalizeTitle(schedule.Title)))); err != nil {
		return err
	}
	if schedule.IsRoutine {
		if weekday, ok := weekdayFromInput(schedule.Day); ok {
			return b.sendWeekday(ctx, chatID, from, weekday)
		}
	}
	views, err := b.schedules.Today(ctx, user, b.now())
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	return b.sendScheduleList(chatID, "📅 <b>Сегодня</b>", views)
}

func (b *Bot) handleAuto(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.coach.Enabled() {
		return b.sendText(msg.Chat.ID, errorText(service.ErrCoachDisabled))
	}
	text := strings.TrimSpace(msg.CommandArguments())
	if text == "" {
		if _, err := b.ensureUser(ctx, msg.From); err != nil {
			return err
		}
		b.setConversation(msg.From.ID, &conversationState{kind: flowAuto, stage: stageAutoText})
		return b.sendWithReplyMarkup(msg.Chat.ID,
			"🤖 Опиши планы свободным текстом, например: «завтра с 9 до 11 отчёт, в пятницу в 18:00 спортзал».",
			cancelKeyboard())
	}
	return b.runAutoSchedule(ctx, msg.Chat.ID, msg.From, text)
}

func (b *Bot) runAutoSchedule(ctx context.Context, chatID int64, from *tgbotapi.User, text string) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}
	_ = b.sendChatAction(chatID)
	created, err := b.coach.AutoSchedule(ctx, user, text, b.now())
	if err != nil {
		b.log.Warn().Err(err).Uint("user_id", user.ID).Msg("auto schedule failed")
		return b.sendTextWithRemove(chatID, "Не удалось составить расписание. "+errorText(err))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🤖 <b>Добавлено дел: %d</b>\n", len(created)))
	for _, s := range created {
		date := ""
		if s.Date != nil {
			date = formatDate(*s.Date)
		}
		sb.WriteString(fmt.Sprintf("• %s <code>%s</code> %s <i>(%s)</i>\n",
			date, s.Time, escape(normalizeTitle(s.Title)), service.CategoryLabel(s.Category)))
	}
	return b.sendTextWithRemove(chatID, strings.TrimSpace(sb.String()))
}

func (b *Bot) handleCoach(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.coach.Enabled() {
		return b.sendText(msg.Chat.ID, errorText(service.ErrCoachDisabled))
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	_ = b.sendChatAction(msg.Chat.ID)
	analysis, err := b.coach.Analyze(ctx, user, b.now())
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	return b.sendText(msg.Chat.ID, "🧠 <b>Разбор дня</b>\n"+escape(analysis))
}

func (b *Bot) handleProfile(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	profile, err := b.rewards.Profile(ctx, user.ID)
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	return b.sendText(msg.Chat.ID, renderProfile(profile))
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) error {
	arg := ""
	if msg.IsCommand() {
		arg = msg.CommandArguments()
	}
	period, err := service.ParsePeriod(arg)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Период: day, week, month или year. Например: /stats week")
	}
	return b.sendStats(ctx, msg.Chat.ID, msg.From, period)
}

func (b *Bot) sendStats(ctx context.Context, chatID int64, from *tgbotapi.User, period service.Period) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}
	breakdown, err := b.stats.Breakdown(ctx, user, period, b.now())
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	return b.sendWithReplyMarkup(chatID, renderBreakdown(breakdown), periodInlineKeyboard())
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	text, err := b.reminders.DailySummary(ctx, *user, b.now())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось сформировать отчёт: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}
	b.ackCallback(cb)

	action, arg := parseCallback(cb.Data)
	b.log.Info().Int64("from", cb.From.ID).Str("action", action).Str("arg", arg).Msg("callback received")
	chatID := cb.Message.Chat.ID

	switch action {
	case cbEdit:
		return b.startEdit(ctx, chatID, cb.From, arg)
	case cbDelete:
		return b.askDeleteConfirmation(ctx, chatID, cb.From, arg)
	case cbConfirm:
		b.clearConfirmation(cb.From.ID)
		return b.deleteAndRefresh(ctx, chatID, cb.From, arg)
	case cbCancel:
		b.clearConfirmation(cb.From.ID)
		return nil
	case cbWeek:
		weekday, ok := weekdayFromInput(arg)
		if !ok {
			return nil
		}
		return b.sendWeekday(ctx, chatID, cb.From, weekday)
	case cbStats:
		period, err := service.ParsePeriod(arg)
		if err != nil {
			return nil
		}
		return b.sendStats(ctx, chatID, cb.From, period)
	default:
		return nil
	}
}

func (b *Bot) sendChatAction(chatID int64) error {
	_, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
	return err
}

func renderProfile(p service.ProfileView) string {
	const barWidth = 10
	filled := p.Points * barWidth / 100
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("🟩", filled) + strings.Repeat("⬜", barWidth-filled)
	return fmt.Sprintf("🏆 <b>Профиль</b>\nУровень: <b>%d</b>\nОчки: %d/100\n%s\nДо следующего уровня: %d",
		p.Level, p.Points, bar, p.ToNextLevel)
}

func renderBreakdown(b service.Breakdown) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 <b>Категории</b> · %s\n", periodLabel(b.Period)))
	if b.Total == 0 {
		sb.WriteString("— нет дел за этот период")
		return sb.String()
	}
	for _, c := range b.Counts {
		sb.WriteString(fmt.Sprintf("%s %s: %d (%d%%)\n", categoryIcon(c.Category), service.CategoryLabel(c.Category), c.Count, b.Percent(c)))
	}
	sb.WriteString(fmt.Sprintf("Всего: %d", b.Total))
	return sb.String()
}

func periodLabel(p service.Period) string {
	switch p {
	case service.PeriodWeek:
		return "неделя"
	case service.PeriodMonth:
		return "месяц"
	case service.PeriodYear:
		return "год"
	default:
		return "сегодня"
	}
}

func formatDate(date string) string {
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("02.01")
}
