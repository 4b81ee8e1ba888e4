package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	botpkg "github.com/botfoundry/menubot/bot"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/mymmrac/telego"
	"github.com/sony/gobreaker"
)

const pollRestartDelay = 5 * time.Second

// Bot wraps telego with application configuration. Outbound API calls go
// through a per-chat rate limiter and a circuit breaker so a Telegram
// outage cannot pile up blocked handlers.
type Bot struct {
	client  *telego.Bot
	breaker *gobreaker.CircuitBreaker
	limiter *RateLimiter
	logger  botpkg.Logger
}

// New creates a new Telegram bot client.
func New(cfg botpkg.Config, logger botpkg.Logger) (*Bot, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger required")
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 200 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.HTTPClient.Timeout = 2 * time.Minute
	retryClient.Logger = nil

	options := []telego.BotOption{
		telego.WithHTTPClient(retryClient.StandardClient()),
		telego.WithLogger(telegoLogger{logger: logger}),
	}

	apiServer := strings.TrimRight(cfg.GetString("BotAPI"), "/")
	if apiServer != "" && apiServer != "https://api.telegram.org" {
		options = append(options, telego.WithAPIServer(apiServer))
	}
	if cfg.GetBool("BotDebug") {
		options = append(options, telego.WithDebugMode())
	}

	client, err := telego.NewBot(cfg.GetString("BOT_TOKEN"), options...)
	if err != nil {
		return nil, err
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "telegram-api",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})

	limiter := NewRateLimiter(cfg.GetFloat64("RateLimitPerSecond"), cfg.GetInt("RateLimitBurst"))
	limiter.SetLogger(logger)

	return &Bot{client: client, breaker: breaker, limiter: limiter, logger: logger}, nil
}

// Client exposes the underlying bot client.
func (b *Bot) Client() *telego.Bot {
	return b.client
}

// GetMe retrieves bot info.
func (b *Bot) GetMe(ctx context.Context) (*telego.User, error) {
	return b.client.GetMe(ctx)
}

// Send delivers a Response to a chat. This is the single send primitive
// handler logic uses; text, optional keyboard, and optional parse mode
// map directly onto one message.
func (b *Bot) Send(ctx context.Context, chatID int64, resp botpkg.Response) error {
	params := &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: chatID},
		Text:   resp.Text,
	}
	if resp.Keyboard != nil {
		params.ReplyMarkup = resp.Keyboard
	}
	if resp.ParseMode != "" {
		params.ParseMode = resp.ParseMode
	}

	return WithRetry(ctx, b.limiter, chatID, func() error {
		_, err := b.breaker.Execute(func() (any, error) {
			return b.client.SendMessage(ctx, params)
		})
		return err
	})
}

// AnswerCallback acknowledges a callback query, optionally with a toast.
func (b *Bot) AnswerCallback(ctx context.Context, queryID string, text string) error {
	params := &telego.AnswerCallbackQueryParams{CallbackQueryID: queryID}
	if text != "" {
		params.Text = text
	}
	_, err := b.breaker.Execute(func() (any, error) {
		return nil, b.client.AnswerCallbackQuery(ctx, params)
	})
	return err
}

// SetCommands publishes the command list shown in the Telegram UI.
func (b *Bot) SetCommands(ctx context.Context, commands []telego.BotCommand) error {
	return b.client.SetMyCommands(ctx, &telego.SetMyCommandsParams{Commands: commands})
}

// Start consumes updates via long polling and hands each one to handle.
// It blocks until ctx is canceled, restarting polling if the updates
// channel closes underneath it.
func (b *Bot) Start(ctx context.Context, handle func(ctx context.Context, update telego.Update)) error {
	updates, err := b.client.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return fmt.Errorf("start polling: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				b.logger.Warn("updates channel closed, restarting polling")
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(pollRestartDelay):
				}
				updates, err = b.client.UpdatesViaLongPolling(ctx, nil)
				if err != nil {
					b.logger.Error("restart polling failed", "error", err)
					continue
				}
				continue
			}
			handle(ctx, update)
		}
	}
}

type telegoLogger struct {
	logger botpkg.Logger
}

func (l telegoLogger) Debugf(format string, args ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l telegoLogger) Errorf(format string, args ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Error(fmt.Sprintf(format, args...))
}
