package bot

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routine-planner/internal/events"
	"routine-planner/internal/model"
	"routine-planner/internal/planner"
	"routine-planner/internal/repository"
	"routine-planner/internal/service"
)

func TestWeekdayFromInput(t *testing.T) {
	cases := map[string]time.Weekday{
		"Понедельник": time.Monday,
		" пт ":        time.Friday,
		"среда":       time.Wednesday,
		"Sunday":      time.Sunday,
		"sat":         time.Saturday,
	}
	for in, want := range cases {
		got, ok := weekdayFromInput(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := weekdayFromInput("завтра")
	assert.False(t, ok)
}

func TestCategoryFromInput(t *testing.T) {
	assert.Equal(t, model.CategoryWork, categoryFromInput(categoryTitle(model.CategoryWork)))
	assert.Equal(t, model.CategoryStudy, categoryFromInput("Учёба"))
	assert.Equal(t, model.CategoryHealth, categoryFromInput("HEALTH"))
	assert.Equal(t, model.CategoryPersonal, categoryFromInput("покупки"))
}

func TestCallbackRoundTrip(t *testing.T) {
	id := "0b6f3c52-9a1e-4d4b-8c35-1f0e2d3c4b5a"
	data := callbackData(cbDelete, id)
	assert.LessOrEqual(t, len(data), 64)

	action, arg := parseCallback(data)
	assert.Equal(t, cbDelete, action)
	assert.Equal(t, id, arg)

	action, arg = parseCallback("garbage")
	assert.Equal(t, "garbage", action)
	assert.Empty(t, arg)
}

func TestRenderScheduleList(t *testing.T) {
	text, markup := renderScheduleList("📅 <b>Сегодня</b>", nil)
	assert.Contains(t, text, "Пока пусто")
	assert.Nil(t, markup)

	views := []service.ScheduleView{
		{
			Schedule: model.Schedule{ID: "a", Title: "run & stretch", Time: "07:00 - 07:30", Category: model.CategoryHealth},
			Window:   planner.Window{Start: 420, End: 450},
			Status:   model.StatusDone,
		},
		{
			Schedule: model.Schedule{ID: "b", Title: "standup", Time: "09:00 - 09:15", Category: model.CategoryWork, IsRoutine: true},
			Window:   planner.Window{Start: 540, End: 555},
			Status:   model.StatusSoon,
		},
	}
	text, markup = renderScheduleList("header", views)
	assert.True(t, strings.HasPrefix(text, "header\n\n"))
	assert.Contains(t, text, "✅ <code>07:00 - 07:30</code> run &amp; stretch")
	assert.Contains(t, text, "⏳ <code>09:00 - 09:15</code> standup <i>(Работа)</i> ♻️")
	assert.Less(t, strings.Index(text, "run"), strings.Index(text, "standup"))

	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, 2)
	require.NotNil(t, markup.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "edit:b", *markup.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "delete:b", *markup.InlineKeyboard[1][1].CallbackData)
}

func TestEventText(t *testing.T) {
	assert.Contains(t, eventText(events.Event{Kind: events.KindScheduleDone, Title: "gym"}), "«Gym» завершено")
	assert.Contains(t, eventText(events.Event{Kind: events.KindLevelUp, Level: 3}), "<b>3</b>")
	assert.Empty(t, eventText(events.Event{Kind: events.KindProfileChanged}))
}

func TestErrorText(t *testing.T) {
	assert.Equal(t, "Дело не найдено или уже удалено.", errorText(fmt.Errorf("get: %w", model.ErrNotFound)))
	assert.Equal(t, "⚠️ title is required", errorText(fmt.Errorf("%w: title is required", model.ErrValidation)))
	assert.Equal(t, "🤖 Ассистент не настроен.", errorText(service.ErrCoachDisabled))
	assert.Equal(t, "Ошибка: a &lt; b", errorText(fmt.Errorf("a < b")))
}

func TestRenderProfile(t *testing.T) {
	text := renderProfile(service.ProfileView{Level: 2, Points: 40, ToNextLevel: 60})
	assert.Contains(t, text, "Уровень: <b>2</b>")
	assert.Contains(t, text, "Очки: 40/100")
	assert.Equal(t, 4, strings.Count(text, "🟩"))
	assert.Equal(t, 6, strings.Count(text, "⬜"))
}

func TestRenderBreakdown(t *testing.T) {
	empty := renderBreakdown(service.Breakdown{Period: service.PeriodWeek})
	assert.Contains(t, empty, "неделя")
	assert.Contains(t, empty, "нет дел")

	text := renderBreakdown(service.Breakdown{
		Period: service.PeriodDay,
		Total:  4,
		Counts: []repository.CategoryCount{{Category: model.CategoryWork, Count: 3}, {Category: model.CategoryPersonal, Count: 1}},
	})
	assert.Contains(t, text, "💼 Работа: 3 (75%)")
	assert.Contains(t, text, "🧩 Личное: 1 (25%)")
	assert.Contains(t, text, "Всего: 4")
}

func TestMenuAction(t *testing.T) {
	assert.Equal(t, "today", menuAction(menuLabelToday))
	assert.Equal(t, "routine", menuAction(" "+menuLabelRoutine+" "))
	assert.Empty(t, menuAction("привет"))
}

func TestInputPredicates(t *testing.T) {
	assert.True(t, isSkipInput(btnSkip))
	assert.True(t, isSkipInput("-"))
	assert.True(t, isConfirmInput("Да"))
	assert.True(t, isCancelInput(btnCancel))
	assert.True(t, isCancelDialogInput(btnCancelDialog))
	assert.False(t, isSkipInput("завтра"))
}

func TestShortTitle(t *testing.T) {
	assert.Equal(t, "Short", shortTitle("short", 10))
	assert.Equal(t, "Abcd…", shortTitle("abcdefgh", 5))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "11.03", formatDate("2025-03-11"))
	assert.Equal(t, "soon", formatDate("soon"))
}
