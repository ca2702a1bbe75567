package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"routine-planner/internal/model"
	"routine-planner/internal/planner"
)

func (b *Bot) startConversation(ctx context.Context, msg *tgbotapi.Message, kind conversationKind) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}
	b.setConversation(msg.From.ID, &conversationState{kind: kind, stage: stageTitle})

	intro := "🆕 Новое дело."
	if kind == flowRoutine {
		intro = "♻️ Новая рутина: она будет повторяться каждую неделю."
	}
	return b.sendWithReplyMarkup(msg.Chat.ID, intro+"\n<b>Шаг 1:</b> как его назвать?", cancelKeyboard())
}

func (b *Bot) startEdit(ctx context.Context, chatID int64, from *tgbotapi.User, id string) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}
	schedule, err := b.schedules.Get(ctx, user, id)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}

	b.setConversation(from.ID, &conversationState{
		kind:       flowEdit,
		stage:      stageTitle,
		scheduleID: schedule.ID,
		isRoutine:  schedule.IsRoutine,
	})
	text := fmt.Sprintf("✏️ Меняем «%s» (%s).\nНовое название (или «Пропустить»):",
		escape(normalizeTitle(schedule.Title)), schedule.Time)
	return b.sendWithReplyMarkup(chatID, text, skipKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}
	if state.kind == flowEdit {
		return b.handleEditStep(ctx, msg, state)
	}
	if state.kind == flowAuto {
		b.clearConversation(msg.From.ID)
		return b.runAutoSchedule(ctx, msg.Chat.ID, msg.From, msg.Text)
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageTitle:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Название не может быть пустым.", cancelKeyboard())
		}
		state.input.Title = text
		state.stage = stageTime
		return b.sendWithReplyMarkup(msg.Chat.ID, "🕒 Во сколько? Например <code>08:00 - 09:30</code> или <code>08:00</code>.", cancelKeyboard())
	case stageTime:
		canonical, err := planner.Canonical(text)
		if err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Не могу распознать время. Формат <code>ЧЧ:ММ - ЧЧ:ММ</code>.", cancelKeyboard())
		}
		state.input.Time = canonical
		state.stage = stageCategory
		return b.sendWithReplyMarkup(msg.Chat.ID, "🏷 Выбери категорию (или «Пропустить»).", categoryKeyboard())
	case stageCategory:
		if !isSkipInput(text) {
			state.input.Category = string(categoryFromInput(text))
		}
		state.stage = stageDescription
		return b.sendWithReplyMarkup(msg.Chat.ID, "✏️ Добавь короткое описание (или нажми «Пропустить»).", skipKeyboard())
	case stageDescription:
		if !isSkipInput(text) {
			state.input.Description = text
		}
		if state.kind == flowRoutine {
			state.stage = stageWeekday
			return b.sendWithReplyMarkup(msg.Chat.ID, "📆 В какой день недели?", weekdayKeyboard())
		}
		state.stage = stageDate
		return b.sendWithReplyMarkup(msg.Chat.ID, "📅 Дата в формате <code>2025-11-30</code> («Пропустить» — сегодня).", skipKeyboard())
	case stageDate:
		if !isSkipInput(text) {
			state.input.Date = text
		}
		err := b.finishCreation(ctx, msg.From, state, msg.Chat.ID)
		b.clearConversation(msg.From.ID)
		return err
	case stageWeekday:
		weekday, ok := weekdayFromInput(text)
		if !ok {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Выбери день недели кнопкой.", weekdayKeyboard())
		}
		state.input.Day = weekday.String()
		err := b.finishCreation(ctx, msg.From, state, msg.Chat.ID)
		b.clearConversation(msg.From.ID)
		return err
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Диалог сброшен. Попробуй ещё раз через /add.")
	}
}

func (b *Bot) finishCreation(ctx context.Context, from *tgbotapi.User, state *conversationState, chatID int64) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	var schedule *model.Schedule
	if state.kind == flowRoutine {
		schedule, err = b.schedules.CreateRoutine(ctx, user, state.input)
	} else {
		schedule, err = b.schedules.CreateDated(ctx, user, state.input, b.now())
	}
	if err != nil {
		return b.sendTextWithRemove(chatID, "Не удалось сохранить дело. "+errorText(err))
	}

	b.log.Info().Str("schedule_id", schedule.ID).Uint("user_id", user.ID).Bool("routine", schedule.IsRoutine).Msg("schedule created")
	return b.sendTextWithRemove(chatID, renderSaved("✅ <b>Дело сохранено</b>", *schedule))
}

func (b *Bot) handleEditStep(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	text := strings.TrimSpace(msg.Text)
	skip := isSkipInput(text)

	switch state.stage {
	case stageTitle:
		if !skip {
			state.edit.Title = text
		}
		state.stage = stageTime
		return b.sendWithReplyMarkup(msg.Chat.ID, "🕒 Новое время (или «Пропустить»):", skipKeyboard())
	case stageTime:
		if !skip {
			if _, err := planner.ParseWindow(text); err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Не могу распознать время. Формат <code>ЧЧ:ММ - ЧЧ:ММ</code>.", skipKeyboard())
			}
			state.edit.Time = text
		}
		state.stage = stageCategory
		return b.sendWithReplyMarkup(msg.Chat.ID, "🏷 Новая категория (или «Пропустить»):", categoryKeyboard())
	case stageCategory:
		if !skip {
			state.edit.Category = string(categoryFromInput(text))
		}
		state.stage = stageDescription
		return b.sendWithReplyMarkup(msg.Chat.ID, "✏️ Новое описание (или «Пропустить»):", skipKeyboard())
	case stageDescription:
		if !skip {
			description := text
			state.edit.Description = &description
		}
		if state.isRoutine {
			state.stage = stageWeekday
			return b.sendWithReplyMarkup(msg.Chat.ID, "📆 Новый день недели (или «Пропустить»):", weekdayKeyboard())
		}
		return b.finishEdit(ctx, msg, state)
	case stageWeekday:
		if !skip {
			weekday, ok := weekdayFromInput(text)
			if !ok {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Выбери день недели кнопкой.", weekdayKeyboard())
			}
			state.edit.Day = weekday.String()
		}
		return b.finishEdit(ctx, msg, state)
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Диалог сброшен.")
	}
}

func (b *Bot) finishEdit(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	b.clearConversation(msg.From.ID)
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	schedule, err := b.schedules.Update(ctx, user, state.scheduleID, state.edit)
	if err != nil {
		return b.sendTextWithRemove(msg.Chat.ID, "Не удалось изменить дело. "+errorText(err))
	}
	b.log.Info().Str("schedule_id", schedule.ID).Uint("user_id", user.ID).Msg("schedule updated")
	return b.sendTextWithRemove(msg.Chat.ID, renderSaved("✏️ <b>Дело обновлено</b>", *schedule))
}

func renderSaved(header string, s model.Schedule) string {
	var sb strings.Builder
	sb.WriteString(header + "\n")
	sb.WriteString(fmt.Sprintf("• <b>Название:</b> %s\n", escape(normalizeTitle(s.Title))))
	sb.WriteString(fmt.Sprintf("• <b>Время:</b> %s (%d мин)\n", s.Time, s.Duration))
	sb.WriteString(fmt.Sprintf("• <b>Категория:</b> %s\n", categoryTitle(s.Category)))
	if s.Description != "" {
		sb.WriteString(fmt.Sprintf("• <b>Описание:</b> %s\n", escape(s.Description)))
	}
	if s.IsRoutine {
		if weekday, ok := planner.ParseWeekday(s.Day); ok {
			sb.WriteString(fmt.Sprintf("• <b>Повтор:</b> еженедельно, %s\n", weekdayLabel(weekday)))
		}
	} else if s.Date != nil {
		sb.WriteString(fmt.Sprintf("• <b>Дата:</b> %s\n", *s.Date))
	}
	sb.WriteString(fmt.Sprintf("• <b>ID:</b> <code>%s</code>", s.ID))
	return sb.String()
}
