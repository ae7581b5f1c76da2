package handler

import (
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	msgWelcome = "Приветствую.\n\n" +
		"Цель этого Телеграм бота -- помочь вам запомнить новые изученные слова. " +
		"Для этого он использует научно доказанный подход -- кривую забывания Эббингауза.\n\n" +
		"Пожалуйста, укажите примерное время утром в формате: 9:00"
	msgAskMorning = "Укажите примерное время утром в формате: 9:00"
)

// handleStart handles /start command
func (h *Handler) handleStart(c tele.Context) error {
	userID := c.Sender().ID

	h.logger.Info("User started bot",
		zap.Int64("user_id", userID),
		zap.String("username", c.Sender().Username),
	)

	h.settings.BeginOnboarding(userID)
	return c.Send(msgWelcome)
}

// handleSettings starts the reminder time dialog again
func (h *Handler) handleSettings(c tele.Context) error {
	h.settings.BeginOnboarding(c.Sender().ID)
	return c.Send(msgAskMorning, cancelMarkup())
}

// handleStop cancels the running reminder chain
func (h *Handler) handleStop(c tele.Context) error {
	userID := c.Sender().ID

	if !h.reminders.Cancel(userID) {
		return c.Send("Активных напоминаний нет.")
	}

	h.logger.Info("Reminder chain stopped by user", zap.Int64("user_id", userID))
	return c.Send("Напоминания остановлены. Новое слово с переводом запустит их снова.")
}
