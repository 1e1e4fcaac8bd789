// Package bot drives journal conversations over Telegram.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/voice-journal/internal/bot/handlers"
	"github.com/Proton-105/voice-journal/internal/bot/keyboard"
	"github.com/Proton-105/voice-journal/internal/capture"
	"github.com/Proton-105/voice-journal/internal/conversation"
	apperrors "github.com/Proton-105/voice-journal/internal/errors"
	"github.com/Proton-105/voice-journal/internal/ratelimit"
	"github.com/Proton-105/voice-journal/internal/speech"
	"github.com/Proton-105/voice-journal/pkg/config"
)

// MachineBuilder creates the conversation of one chat, speaking through speaker
// and reporting capture progress to status.
type MachineBuilder func(ctx context.Context, sessionID string, speaker conversation.Speaker, status capture.StatusSink) (*conversation.Machine, error)

// Options carries the optional collaborators of a Bot.
type Options struct {
	Log        *slog.Logger
	ErrHandler *apperrors.Handler
	Limiter    ratelimit.Limiter
	// Sender overrides the telebot client used for outgoing messages.
	Sender Sender
	// Offline skips the getMe call. Used by tests.
	Offline bool
}

// Bot wraps telebot.Bot with the journal registry and router.
type Bot struct {
	telebot    *telebot.Bot
	sender     Sender
	log        *slog.Logger
	sessions   *conversation.Registry
	router     *Router
	keyboard   *keyboard.Builder
	errHandler *apperrors.Handler
	limiter    ratelimit.Limiter
	rule       ratelimit.Rule
}

// New builds a telegram bot instance. Every chat gets its own conversation built by build.
func New(cfg config.BotConfig, build MachineBuilder, opts Options) (*Bot, error) {
	if build == nil {
		return nil, errors.New("bot: machine builder is required")
	}
	if cfg.Token == "" && !opts.Offline {
		return nil, apperrors.NewValidationError("bot token is required")
	}

	log := opts.Log
	if log == nil {
		log = slog.Default()
	}

	tb, err := telebot.NewBot(telebot.Settings{
		Token:   cfg.Token,
		Poller:  &telebot.LongPoller{Timeout: cfg.PollTimeout},
		Offline: opts.Offline,
		OnError: func(err error, c telebot.Context) {
			log.Error("telebot error", slog.Any("error", err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	sender := opts.Sender
	if sender == nil {
		sender = tb
	}

	errHandler := opts.ErrHandler
	if errHandler == nil {
		errHandler = apperrors.NewHandler(log, false)
	}

	b := &Bot{
		telebot:    tb,
		sender:     sender,
		log:        log,
		router:     NewRouter(log),
		keyboard:   keyboard.NewBuilder(log),
		errHandler: errHandler,
		limiter:    opts.Limiter,
		rule:       ratelimit.Rule{Limit: cfg.RateLimit.Limit, Window: cfg.RateLimit.Window},
	}

	b.sessions = conversation.NewRegistry(func(ctx context.Context, sessionID string) (*conversation.Machine, error) {
		chat, err := chatOf(sessionID)
		if err != nil {
			return nil, err
		}

		speaker := speech.NewQueue(chatPlayer{sender: b.sender, chat: chat, log: log}, log)
		return build(ctx, sessionID, speaker, chatStatus{sender: b.sender, chat: chat, log: log})
	})

	b.setupRouter()
	b.registerTelebotHandlers()

	return b, nil
}

// Start runs the telegram bot event loop. It blocks until Stop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.log.Info("starting telegram bot")
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	b.log.Info("stopping telegram bot...")
	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

// Sessions returns the per-chat conversations.
func (b *Bot) Sessions() *conversation.Registry {
	return b.sessions
}

// Route handles one update. telebot calls it for every text, media and callback update.
func (b *Bot) Route(c telebot.Context) error {
	return b.router.Route(c)
}

func (b *Bot) setupRouter() {
	b.router.Use(RecoveryMiddleware(b.log, b.errHandler))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler))
	b.router.Use(RateLimitMiddleware(b.limiter, b.rule, b.log))
	b.router.Use(MetricsMiddleware)

	sell := handlers.NewSellHandler(b.sessions, b.log)
	cancel := handlers.NewCancelHandler(b.sessions, b.log)

	b.router.RegisterCommand(CommandStart, handlers.NewStartHandler(b.sessions, b.keyboard, b.log))
	b.router.RegisterCommand(CommandSell, sell)
	b.router.RegisterCommand(CommandCancel, cancel)
	b.router.RegisterCommand(CommandStatus, handlers.NewStatusHandler(b.sessions, b.keyboard))
	b.router.RegisterCommand(CommandHelp, handlers.NewHelpHandler())

	b.router.RegisterCallback(CallbackSell, handlers.CallbackHandler(sell))
	b.router.RegisterCallback(CallbackCancel, handlers.CallbackHandler(cancel))

	b.router.SetDefault(handlers.NewTextHandler(b.sessions, b.log))
	b.router.SetVoice(handlers.NewVoiceHandler(b.sessions, b.log))
	b.router.SetUnknownCommand(handlers.NewHelpHandler())
}

func (b *Bot) registerTelebotHandlers() {
	for _, endpoint := range []string{
		telebot.OnText,
		telebot.OnCallback,
		telebot.OnVoice,
		telebot.OnAudio,
		telebot.OnVideoNote,
	} {
		b.telebot.Handle(endpoint, b.Route)
	}
}

func chatOf(sessionID string) (telebot.ChatID, error) {
	id, err := strconv.ParseInt(sessionID, 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError(fmt.Sprintf("session id %q is not a chat id", sessionID))
	}
	return telebot.ChatID(id), nil
}
