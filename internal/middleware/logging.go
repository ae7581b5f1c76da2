package middleware

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Logging logs every update with its outcome and duration
func Logging(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()
			err := next(c)

			fields := []zap.Field{
				zap.Int64("user_id", senderID(c)),
				zap.String("kind", updateKind(c)),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				logger.Error("Update handling failed", append(fields, zap.Error(err))...)
				return err
			}
			logger.Debug("Update handled", fields...)
			return nil
		}
	}
}

// Recover turns a panic in a handler into an error reply
func Recover(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Panic in handler",
						zap.Int64("user_id", senderID(c)),
						zap.Any("panic", r),
						zap.Stack("stack"),
					)
					err = fmt.Errorf("handler panic: %v", r)
					if sendErr := c.Send("Произошла ошибка. Попробуйте позже."); sendErr != nil {
						logger.Warn("Failed to notify user about panic", zap.Error(sendErr))
					}
				}
			}()
			return next(c)
		}
	}
}

func senderID(c tele.Context) int64 {
	if s := c.Sender(); s != nil {
		return s.ID
	}
	return 0
}

func updateKind(c tele.Context) string {
	switch {
	case c.Callback() != nil:
		return "callback"
	case c.Message() != nil && c.Message().Text != "" && c.Message().Text[0] == '/':
		return "command"
	case c.Message() != nil:
		return "message"
	default:
		return "other"
	}
}
