package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"vitameter/internal/dates"
	"vitameter/internal/metrics"
)

var menuCommands = map[string]struct{}{
	btnSetDate:     {},
	btnLifeStats:   {},
	btnCalcTo:      {},
	btnCalcAfter:   {},
	btnCalcBetween: {},
	btnReminder:    {},
	btnDeleteDate:  {},
	btnHelp:        {},
	btnGitHub:      {},
	btnWelcome:     {},
	"/start":       {},
	"/help":        {},
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	text := normalizeCommand(msg.Text)
	if _, ok := menuCommands[text]; ok {
		b.handleCommand(ctx, userID, chatID, text)
		return
	}
	b.handleFreeText(ctx, userID, chatID, msg.Text)
}

// normalizeCommand reduces a slash command to its bare form: bot mentions
// ("/start@VitameterBot") and deep-link payloads ("/start ref123") are
// stripped. Non-command text passes through unchanged.
func normalizeCommand(text string) string {
	if !strings.HasPrefix(text, "/") {
		return text
	}
	cmd := text
	if i := strings.IndexAny(cmd, " \t"); i >= 0 {
		cmd = cmd[:i]
	}
	if i := strings.Index(cmd, "@"); i >= 0 {
		cmd = cmd[:i]
	}
	return cmd
}

// handleCommand dispatches a top-level menu command. The pending input mode
// is cleared first, so a stale prompt can never swallow a menu click.
func (b *Bot) handleCommand(ctx context.Context, userID, chatID int64, command string) {
	b.sessions.reset(userID)
	metrics.IncCommandHandled(command)

	switch command {
	case "/start", btnWelcome:
		b.replyWithMenu(chatID, msgWelcome)

	case btnSetDate:
		b.reply(chatID, msgAskBirthDate)
		b.sessions.set(userID, ModeAwaitBirthDate)

	case btnLifeStats:
		b.sendLifeStats(ctx, userID, chatID)

	case btnCalcTo:
		b.reply(chatID, msgAskTargetDate)
		b.sessions.set(userID, ModeAwaitTargetDate)

	case btnCalcAfter:
		b.reply(chatID, msgAskPastDate)
		b.sessions.set(userID, ModeAwaitPastDate)

	case btnCalcBetween:
		b.reply(chatID, msgAskRange)
		b.sessions.set(userID, ModeAwaitDateRange)

	case btnReminder:
		b.reply(chatID, msgAskReminder)
		b.sessions.set(userID, ModeAwaitReminderSpec)

	case btnDeleteDate:
		// The reminder job stays armed; its fire becomes a silent no-op
		// until a new birth date appears.
		if err := b.store.ClearBirthDate(ctx, userID); err != nil {
			b.logger.Error().Err(err).Int64("user_id", userID).Msg("clear birth date failed")
			b.reply(chatID, msgInternalError)
			return
		}
		b.reply(chatID, msgDateDeleted)

	case "/help", btnHelp:
		b.reply(chatID, msgHelp)

	case btnGitHub:
		b.reply(chatID, msgGitHub)
	}
}

// handleFreeText interprets a plain message through the user's pending mode.
func (b *Bot) handleFreeText(ctx context.Context, userID, chatID int64, text string) {
	switch b.sessions.get(userID) {
	case ModeAwaitBirthDate:
		date, err := dates.ParseDate(text)
		if err != nil {
			b.reply(chatID, msgInvalidDate) // mode kept, retry in place
			return
		}
		if err := b.store.SetBirthDate(ctx, userID, date); err != nil {
			b.logger.Error().Err(err).Int64("user_id", userID).Msg("set birth date failed")
			b.reply(chatID, msgInternalError)
			b.sessions.reset(userID)
			return
		}
		b.reply(chatID, msgBirthDateSaved)
		b.sessions.reset(userID)

	case ModeAwaitTargetDate:
		date, err := dates.ParseDate(text)
		if err != nil {
			b.reply(chatID, msgInvalidDate)
			return
		}
		bd := dates.Between(b.now(), date)
		b.reply(chatID, "До этой даты осталось:\n"+formatSpan(bd))
		b.sessions.reset(userID)

	case ModeAwaitPastDate:
		date, err := dates.ParseDate(text)
		if err != nil || date.After(b.now()) {
			b.reply(chatID, msgMustBePast) // mode kept, retry in place
			return
		}
		bd := dates.Between(date, b.now())
		b.reply(chatID, "С этой даты прошло:\n"+formatSpan(bd))
		b.sessions.reset(userID)

	case ModeAwaitDateRange:
		from, to, err := dates.ParseRange(text)
		if err != nil {
			b.reply(chatID, msgInvalidRange)
			return
		}
		bd := dates.Between(from, to)
		b.reply(chatID, "Между этими датами:\n"+formatSpan(bd))
		b.sessions.reset(userID)

	case ModeAwaitReminderSpec:
		// Unlike the date branches, any parse error here resets the mode.
		b.sessions.reset(userID)
		spec, err := dates.ParseReminderSpec(text)
		if err != nil {
			b.reply(chatID, msgInvalidReminder)
			return
		}
		if err := b.store.SetReminder(ctx, userID, spec); err != nil {
			b.logger.Error().Err(err).Int64("user_id", userID).Msg("set reminder failed")
			b.reply(chatID, msgInternalError)
			return
		}
		next := b.registrar.RegisterOrReplace(userID, spec)
		if next.IsZero() {
			// Scheduler is shutting down; the spec is persisted and will be
			// armed on the next startup, so confirm without a fire instant.
			b.reply(chatID, formatReminderConfirmation(""))
			return
		}
		b.reply(chatID, formatReminderConfirmation(next.In(b.loc).Format("02.01.2006 15:04")))

	default:
		b.reply(chatID, msgFallback)
	}
}
