package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wordreminder/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v3"
)

// Sender is the part of *tele.Bot the notifier uses
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Config holds retry and rate limit settings
type Config struct {
	MaxRetries    int
	RetryDelay    time.Duration
	RatePerSecond float64
	Burst         int
}

// Telegram sends messages to users through the bot API.
// Sends are rate limited across all users and retried with linear backoff.
type Telegram struct {
	sender     Sender
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// NewTelegram creates a new Telegram notifier
func NewTelegram(sender Sender, cfg Config, logger *zap.Logger) *Telegram {
	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Telegram{
		sender:     sender,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		maxRetries: maxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
		sleep:      sleepContext,
	}
}

// SendMessage delivers text to the user's private chat
func (n *Telegram) SendMessage(ctx context.Context, userID int64, text string, format domain.Format) error {
	var opts []interface{}
	if mode := parseMode(format); mode != tele.ModeDefault {
		opts = append(opts, mode)
	}

	var lastErr error
	for attempt := 1; attempt <= n.maxRetries; attempt++ {
		if err := n.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		_, err := n.sender.Send(tele.ChatID(userID), text, opts...)
		if err == nil {
			return nil
		}
		lastErr = err

		if permanent(err) {
			return fmt.Errorf("send message to %d: %w", userID, err)
		}
		if attempt == n.maxRetries {
			break
		}

		delay := n.retryDelay * time.Duration(attempt)
		var flood tele.FloodError
		if errors.As(err, &flood) && flood.RetryAfter > 0 {
			delay = time.Duration(flood.RetryAfter) * time.Second
		}

		n.logger.Warn("Failed to send message, retrying",
			zap.Int64("user_id", userID),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if err := n.sleep(ctx, delay); err != nil {
			return err
		}
	}

	return fmt.Errorf("send message to %d after %d attempts: %w", userID, n.maxRetries, lastErr)
}

// permanent reports errors a retry cannot fix
func permanent(err error) bool {
	return errors.Is(err, tele.ErrBlockedByUser) ||
		errors.Is(err, tele.ErrUserIsDeactivated) ||
		errors.Is(err, tele.ErrChatNotFound)
}

func parseMode(format domain.Format) tele.ParseMode {
	switch format {
	case domain.FormatMarkdown:
		return tele.ModeMarkdown
	case domain.FormatHTML:
		return tele.ModeHTML
	default:
		return tele.ModeDefault
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
