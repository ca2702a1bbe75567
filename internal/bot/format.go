package bot

import (
	"html"
	"strings"
	"time"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"routine-planner/internal/model"
	"routine-planner/internal/planner"
	"routine-planner/internal/service"
)

const (
	cbEdit    = "edit"
	cbDelete  = "delete"
	cbConfirm = "confirm"
	cbCancel  = "cancel"
	cbWeek    = "week"
	cbStats   = "stats"
)

const (
	btnSkip          = "⏭️ Пропустить"
	btnConfirm       = "✅ Подтвердить"
	btnCancel        = "↩️ Отмена"
	btnCancelDialog  = "⏪ Отменить ввод"
	menuLabelAdd     = "➕ Новое дело"
	menuLabelRoutine = "♻️ Рутина"
	menuLabelToday   = "📅 Сегодня"
	menuLabelWeek    = "🗓 Неделя"
	menuLabelProfile = "🏆 Профиль"
	menuLabelHelp    = "ℹ️ Помощь"
)

var weekdayNames = map[time.Weekday][2]string{
	time.Monday:    {"Понедельник", "пн"},
	time.Tuesday:   {"Вторник", "вт"},
	time.Wednesday: {"Среда", "ср"},
	time.Thursday:  {"Четверг", "чт"},
	time.Friday:    {"Пятница", "пт"},
	time.Saturday:  {"Суббота", "сб"},
	time.Sunday:    {"Воскресенье", "вс"},
}

// weekOrder starts the week on Monday.
var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

func weekdayLabel(d time.Weekday) string {
	return weekdayNames[d][0]
}

// weekdayFromInput accepts Russian full or short names and English names.
func weekdayFromInput(text string) (time.Weekday, bool) {
	value := strings.ToLower(strings.TrimSpace(text))
	for d, names := range weekdayNames {
		if value == strings.ToLower(names[0]) || value == names[1] {
			return d, true
		}
	}
	return planner.ParseWeekday(value)
}

var categoryInputs = map[string]model.Category{
	"личное":   model.CategoryPersonal,
	"работа":   model.CategoryWork,
	"учеба":    model.CategoryStudy,
	"учёба":    model.CategoryStudy,
	"здоровье": model.CategoryHealth,
}

// categoryFromInput maps a keyboard label or free text onto a category.
func categoryFromInput(text string) model.Category {
	value := strings.ToLower(strings.TrimSpace(text))
	for _, c := range model.Categories {
		if value == strings.ToLower(categoryTitle(c)) {
			return c
		}
	}
	if c, ok := categoryInputs[value]; ok {
		return c
	}
	return planner.NormalizeCategory(value)
}

func categoryIcon(c model.Category) string {
	switch c {
	case model.CategoryWork:
		return "💼"
	case model.CategoryStudy:
		return "🎓"
	case model.CategoryHealth:
		return "🩺"
	default:
		return "🧩"
	}
}

func categoryTitle(c model.Category) string {
	return categoryIcon(c) + " " + service.CategoryLabel(c)
}

// renderScheduleList renders a day view with edit and delete buttons per entry.
func renderScheduleList(header string, views []service.ScheduleView) (string, *tgbotapi.InlineKeyboardMarkup) {
	var builder strings.Builder
	builder.WriteString(header + "\n\n")
	if len(views) == 0 {
		builder.WriteString("Пока пусто. Добавь дело через /add или рутину через /routine.")
		return builder.String(), nil
	}

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, v := range views {
		builder.WriteString(service.FormatScheduleLine(v))
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ "+shortTitle(v.Title, 20), callbackData(cbEdit, v.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑", callbackData(cbDelete, v.ID)),
		))
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(buttons...)
	return strings.TrimSpace(builder.String()), &markup
}

func callbackData(action, arg string) string {
	return action + ":" + arg
}

func parseCallback(data string) (string, string) {
	action, arg, _ := strings.Cut(data, ":")
	return action, arg
}

func menuAction(text string) string {
	switch strings.TrimSpace(strings.ToLower(text)) {
	case strings.ToLower(menuLabelAdd):
		return "add"
	case strings.ToLower(menuLabelRoutine):
		return "routine"
	case strings.ToLower(menuLabelToday):
		return "today"
	case strings.ToLower(menuLabelWeek):
		return "week"
	case strings.ToLower(menuLabelProfile):
		return "profile"
	case strings.ToLower(menuLabelHelp):
		return "help"
	default:
		return ""
	}
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	clean = normalizeTitle(clean)
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func escape(s string) string {
	return html.EscapeString(s)
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == strings.ToLower(btnSkip) || value == "пропустить" || value == "skip"
}

func isConfirmInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnConfirm) || value == "подтвердить" || value == "да"
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancel) || value == "отмена"
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "отменить ввод" || value == "отмена"
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func confirmInlineKeyboard(id string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(btnConfirm, callbackData(cbConfirm, id)),
		tgbotapi.NewInlineKeyboardButtonData(btnCancel, callbackData(cbCancel, id)),
	))
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelToday),
			tgbotapi.NewKeyboardButton(menuLabelWeek),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelAdd),
			tgbotapi.NewKeyboardButton(menuLabelRoutine),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelProfile),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func categoryKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(categoryTitle(model.CategoryPersonal)),
			tgbotapi.NewKeyboardButton(categoryTitle(model.CategoryWork)),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(categoryTitle(model.CategoryStudy)),
			tgbotapi.NewKeyboardButton(categoryTitle(model.CategoryHealth)),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func weekdayKeyboard() tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	var row []tgbotapi.KeyboardButton
	for _, d := range weekOrder {
		row = append(row, tgbotapi.NewKeyboardButton(weekdayLabel(d)))
		if len(row) == 4 {
			rows = append(rows, row)
			row = nil
		}
	}
	row = append(row, tgbotapi.NewKeyboardButton(btnCancelDialog))
	rows = append(rows, row)

	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func weekdayInlineKeyboard() tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, d := range weekOrder {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(weekdayNames[d][1], callbackData(cbWeek, d.String())))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func periodInlineKeyboard() tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, p := range []service.Period{service.PeriodDay, service.PeriodWeek, service.PeriodMonth, service.PeriodYear} {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(periodLabel(p), callbackData(cbStats, string(p))))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}
