package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"vitameter/internal/dates"
	"vitameter/internal/metrics"
)

// sendLifeStats answers the stats menu command: breakdown text plus the
// life-timeline chart. Without a stored birth date the user gets a pointer
// to the set-date flow instead.
func (b *Bot) sendLifeStats(ctx context.Context, userID, chatID int64) {
	birthDate, ok, err := b.store.GetBirthDate(ctx, userID)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("get birth date failed")
		b.reply(chatID, msgInternalError)
		return
	}
	if !ok {
		b.reply(chatID, msgNoBirthDate)
		return
	}

	if err := b.sendReport(chatID, birthDate, lifeStatsCaption, "life_chart.png"); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("send life stats failed")
		b.reply(chatID, msgInternalError)
		return
	}
	metrics.IncReportSent("command")
}

// DeliverReport implements the scheduler's sender: one weekly report for one
// user. Deliveries are rate limited since many jobs can land on one minute.
func (b *Bot) DeliverReport(ctx context.Context, deliveryID string, userID int64, birthDate time.Time) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	if err := b.sendReport(userID, birthDate, weeklyReportCaption, "weekly_life_chart.png"); err != nil {
		return fmt.Errorf("delivery %s: %w", deliveryID, err)
	}
	metrics.IncReportSent("reminder")
	return nil
}

// sendReport renders the chart and sends it as a photo with the stats text
// as caption. A render failure degrades to a text-only message.
func (b *Bot) sendReport(chatID int64, birthDate time.Time, caption, filename string) error {
	stats := formatLifeStats(dates.Between(birthDate, b.now()))
	text := caption + "\n" + stats

	png, err := b.renderer.Render(birthDate, b.now())
	if err != nil {
		b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("chart render failed, sending text only")
		if _, err := b.tg.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			return err
		}
		return nil
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: filename, Bytes: png})
	photo.Caption = text
	if _, err := b.tg.Send(photo); err != nil {
		return err
	}
	return nil
}
