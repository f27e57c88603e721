// Package bot maps inbound Telegram messages onto the per-user input mode
// and sends replies and life reports back out.
package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"vitameter/internal/dates"
)

type telegramClient interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

type realTelegramClient struct {
	api *tgbotapi.BotAPI
}

func (c *realTelegramClient) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	return c.api.Send(msg)
}

func (c *realTelegramClient) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return c.api.GetUpdatesChan(cfg)
}

// UserStore is the durable per-user record access the bot needs.
type UserStore interface {
	GetBirthDate(ctx context.Context, userID int64) (time.Time, bool, error)
	SetBirthDate(ctx context.Context, userID int64, birthDate time.Time) error
	ClearBirthDate(ctx context.Context, userID int64) error
	SetReminder(ctx context.Context, userID int64, spec dates.ReminderSpec) error
}

// Registrar arms the weekly report job after a reminder spec is persisted.
type Registrar interface {
	RegisterOrReplace(userID int64, spec dates.ReminderSpec) time.Time
}

// Renderer produces the life-timeline PNG.
type Renderer interface {
	Render(birthDate, now time.Time) ([]byte, error)
}

// Options tunes outbound delivery.
type Options struct {
	// RatePerSecond and Burst bound reminder deliveries, which can pile up
	// when many users pick the same weekday and minute.
	RatePerSecond float64
	Burst         int
}

// Bot is the Telegram front of the service.
type Bot struct {
	tg        telegramClient
	store     UserStore
	registrar Registrar
	renderer  Renderer
	sessions  *sessionStore
	limiter   *rate.Limiter
	loc       *time.Location
	logger    *zerolog.Logger
	now       func() time.Time
}

// New connects to Telegram and builds the bot.
func New(token string, store UserStore, renderer Renderer, loc *time.Location, opts Options, logger *zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return newBot(&realTelegramClient{api: api}, store, renderer, loc, opts, logger), nil
}

// NewWithTelegramClient allows injecting a mocked Telegram client for tests.
func NewWithTelegramClient(tg telegramClient, store UserStore, renderer Renderer, loc *time.Location, opts Options, logger *zerolog.Logger) *Bot {
	return newBot(tg, store, renderer, loc, opts, logger)
}

func newBot(tg telegramClient, store UserStore, renderer Renderer, loc *time.Location, opts Options, logger *zerolog.Logger) *Bot {
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 20
	}
	if opts.Burst <= 0 {
		opts.Burst = 30
	}
	return &Bot{
		tg:       tg,
		store:    store,
		renderer: renderer,
		sessions: newSessionStore(),
		limiter:  rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst),
		loc:      loc,
		logger:   logger,
		// All calendar arithmetic happens in loc, whatever the host zone is.
		now: func() time.Time { return time.Now().In(loc) },
	}
}

// SetRegistrar wires the scheduler in. The scheduler also needs the bot as
// its sender, so this link is established after both exist.
func (b *Bot) SetRegistrar(r Registrar) {
	b.registrar = r
}

// Start consumes updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.tg.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("bot stopping")
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, upd)
		}
	}
}

// HandleUpdate processes a single inbound update.
func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message == nil || upd.Message.From == nil || upd.Message.Text == "" {
		return
	}
	b.handleMessage(ctx, upd.Message)
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSetDate),
			tgbotapi.NewKeyboardButton(btnLifeStats),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCalcTo),
			tgbotapi.NewKeyboardButton(btnCalcAfter),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCalcBetween),
			tgbotapi.NewKeyboardButton(btnReminder),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnDeleteDate),
			tgbotapi.NewKeyboardButton(btnHelp),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnGitHub),
			tgbotapi.NewKeyboardButton(btnWelcome),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.tg.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send reply failed")
	}
}

func (b *Bot) replyWithMenu(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = mainMenuKeyboard()
	if _, err := b.tg.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send reply failed")
	}
}
