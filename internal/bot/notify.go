package bot

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"routine-planner/internal/events"
)

// reportConcurrency bounds parallel report delivery.
const reportConcurrency = 4

// forwardEvents tells owners about completions and level-ups until ctx ends.
func (b *Bot) forwardEvents(ctx context.Context) {
	if b.events == nil {
		return
	}
	feed := b.events.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-feed:
			if !ok {
				return
			}
			text := eventText(evt)
			if text == "" {
				continue
			}
			if err := b.notifyUser(ctx, evt.UserID, text); err != nil {
				b.log.Warn().Err(err).Str("kind", string(evt.Kind)).Uint("user_id", evt.UserID).Msg("notify user")
			}
		}
	}
}

func (b *Bot) notifyUser(ctx context.Context, userID uint, text string) error {
	user, err := b.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	return b.sendText(user.TelegramID, text)
}

// eventText is the message for an event; empty means stay silent.
func eventText(evt events.Event) string {
	switch evt.Kind {
	case events.KindScheduleDone:
		return fmt.Sprintf("✅ «%s» завершено. Так держать!", escape(normalizeTitle(evt.Title)))
	case events.KindLevelUp:
		return fmt.Sprintf("🎉 Новый уровень: <b>%d</b>!", evt.Level)
	default:
		return ""
	}
}

// SendDailyReports sends a summary to every known user.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	users, err := b.users.ListAll(ctx)
	if err != nil {
		return err
	}
	now := b.now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reportConcurrency)
	for _, user := range users {
		user := user
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := b.reminders.DailySummary(gctx, user, now)
			if err != nil {
				b.log.Error().Err(err).Int64("telegram_id", user.TelegramID).Msg("build summary")
				return nil
			}
			if err := b.sendText(user.TelegramID, text); err != nil {
				b.log.Error().Err(err).Int64("telegram_id", user.TelegramID).Msg("send summary")
			}
			return nil
		})
	}
	return g.Wait()
}
