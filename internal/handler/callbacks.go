package handler

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"wordreminder/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Telegram rejects messages longer than 4096 characters
const maxMessageLen = 4000

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// handleEditError handles errors from c.Edit() - if message is not modified, just acknowledge callback
// Otherwise, acknowledge callback and return error so caller can send new message
func (h *Handler) handleEditError(err error, c tele.Context, userID int64) error {
	if err == nil {
		return nil
	}

	// Already edited by another callback
	if strings.Contains(err.Error(), "message is not modified") {
		h.logger.Debug("Message already modified by another callback, acknowledging",
			zap.Int64("user_id", userID),
			zap.String("callback_id", c.Callback().ID),
		)
		_ = c.Respond()
		return nil
	}

	h.logger.Warn("Failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("user_id", userID),
		zap.String("callback_id", c.Callback().ID),
	)
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// handleCallback handles callbacks not routed by their unique
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	key := callback.Unique
	if key == "" {
		key = cleanCallbackData(callback.Data)
	}

	switch key {
	case btnShowDictionary.Unique:
		return h.handleDictionary(c)
	case btnDeleteWord.Unique:
		return h.handleDeletePrompt(c)
	case btnCancel.Unique:
		return h.handleCancel(c)
	}

	h.logger.Warn("Unhandled callback",
		zap.String("data", callback.Data),
		zap.String("unique", callback.Unique),
		zap.Int64("user_id", c.Sender().ID),
	)
	return c.Respond()
}

// handleDictionary shows the user's dictionary, from /dictionary or the button
func (h *Handler) handleDictionary(c tele.Context) error {
	userID := c.Sender().ID
	h.logger.Info("Dictionary requested", zap.Int64("user_id", userID))

	if c.Callback() != nil {
		defer func() { _ = c.Respond() }()
	}

	words, err := h.words.Dictionary(context.Background(), userID)
	if err != nil {
		h.logger.Error("Failed to get dictionary", zap.Int64("user_id", userID), zap.Error(err))
		return c.Send(msgInternalError)
	}

	if len(words) == 0 {
		return c.Send("Ваш словарь пуст.")
	}

	chunks := splitMessage(formatDictionary(words), maxMessageLen)
	for i, chunk := range chunks {
		if i == len(chunks)-1 {
			return c.Send(chunk, deleteMarkup())
		}
		if err := c.Send(chunk); err != nil {
			return err
		}
	}
	return nil
}

// handleDeletePrompt asks which word to delete
func (h *Handler) handleDeletePrompt(c tele.Context) error {
	userID := c.Sender().ID
	h.logger.Info("Word deletion requested", zap.Int64("user_id", userID))

	h.sessions.SetState(userID, domain.StateAwaitingWordDeletion)

	if c.Callback() != nil {
		if err := c.Respond(); err != nil {
			h.logger.Warn("Failed to acknowledge callback", zap.Error(err))
		}
	}
	return c.Send("Введите слово, которое вы хотите удалить.", cancelMarkup())
}

// handleCancel ends the current dialog
func (h *Handler) handleCancel(c tele.Context) error {
	userID := c.Sender().ID

	h.sessions.Reset(userID)

	const text = "Действие отменено."
	if err := c.Edit(text); err != nil {
		if handleErr := h.handleEditError(err, c, userID); handleErr == nil {
			return nil
		}
		return c.Send(text)
	}
	return c.Respond()
}

// formatDictionary lists words in the order they were added
func formatDictionary(words []domain.Word) string {
	var b strings.Builder
	b.WriteString("Ваш словарь:")
	for _, w := range words {
		translation := "(без перевода)"
		if w.Translation != nil {
			translation = *w.Translation
		}
		fmt.Fprintf(&b, "\n%s - %s", w.Word, translation)
	}
	return b.String()
}

// splitMessage cuts text on line boundaries into chunks of at most limit bytes.
// A single line longer than limit is cut at a rune boundary.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	for _, line := range strings.Split(text, "\n") {
		for len(line) > limit {
			if current.Len() > 0 {
				chunks = append(chunks, current.String())
				current.Reset()
			}
			cut := limit
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if current.Len() > 0 && current.Len()+1+len(line) > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
