package handler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"wordreminder/internal/domain"
	"wordreminder/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleText handles all text messages based on state
func (h *Handler) handleText(c tele.Context) error {
	text := strings.TrimSpace(c.Text())

	// Ignore commands (starting with /)
	if strings.HasPrefix(text, "/") {
		return nil
	}

	ctx := context.Background()
	return h.processText(ctx, c.Sender().ID, c.Text()).send(c)
}

// processText runs the conversation state machine for one message
func (h *Handler) processText(ctx context.Context, userID int64, text string) reply {
	switch h.sessions.State(userID) {
	case domain.StateAwaitingMorningTime:
		return h.onMorningTime(userID, text)
	case domain.StateAwaitingEveningTime:
		return h.onEveningTime(ctx, userID, text)
	case domain.StateAwaitingReminderAnswer:
		return h.onReminderAnswer(userID, text)
	case domain.StateAwaitingWordDeletion:
		return h.onWordDeletion(ctx, userID, text)
	default:
		return h.onWord(ctx, userID, text)
	}
}

func (h *Handler) onMorningTime(userID int64, text string) reply {
	if _, err := h.settings.SubmitMorning(userID, text); err != nil {
		return reply{text: "Неверный формат времени. Пожалуйста, укажите время в формате ЧЧ:ММ (например, 9:00)."}
	}
	return reply{text: "Теперь укажите время вечером в формате: 21:00"}
}

func (h *Handler) onEveningTime(ctx context.Context, userID int64, text string) reply {
	settings, err := h.settings.SubmitEvening(ctx, userID, text)
	if errors.Is(err, domain.ErrMalformedTime) {
		return reply{text: "Неверный формат времени. Пожалуйста, укажите время в формате ЧЧ:ММ (например, 21:00)."}
	}
	if err != nil {
		h.logger.Error("Failed to save reminder times", zap.Int64("user_id", userID), zap.Error(err))
		return reply{text: msgInternalError}
	}

	return reply{text: fmt.Sprintf(
		"Напоминания установлены. Утро: %s, Вечер: %s\n"+
			"Теперь вы можете отправлять слова, чтобы добавить их в словарь.",
		settings.Morning, settings.Evening,
	)}
}

func (h *Handler) onReminderAnswer(userID int64, text string) reply {
	report, err := h.quiz.Answer(userID, text)
	if err != nil {
		return reply{text: "Пожалуйста, ответьте на все вопросы, один ответ на строку."}
	}
	return reply{text: formatReport(report)}
}

func (h *Handler) onWordDeletion(ctx context.Context, userID int64, text string) reply {
	// the dialog ends whatever the outcome
	defer h.sessions.Reset(userID)

	word := strings.ToLower(strings.TrimSpace(text))
	err := h.words.Delete(ctx, userID, word)
	switch {
	case err == nil:
		h.logger.Info("Word deleted", zap.Int64("user_id", userID), zap.String("word", word))
		return reply{text: fmt.Sprintf("Слово %s удалено.", bold(word)), html: true}
	case errors.Is(err, domain.ErrWordNotFound), errors.Is(err, domain.ErrEmptyInput):
		return reply{text: fmt.Sprintf("Слово %s не найдено в вашем словаре.", bold(word)), html: true}
	default:
		h.logger.Error("Failed to delete word", zap.Int64("user_id", userID), zap.Error(err))
		return reply{text: msgInternalError}
	}
}

func (h *Handler) onWord(ctx context.Context, userID int64, text string) reply {
	result, err := h.words.Submit(ctx, userID, text)
	switch {
	case errors.Is(err, domain.ErrDuplicateWord):
		return reply{text: "Упс, это слово уже добавлено в словарь."}
	case errors.Is(err, domain.ErrEmptyInput):
		return reply{text: "Отправьте слово текстом."}
	case err != nil:
		h.logger.Error("Failed to submit word", zap.Int64("user_id", userID), zap.Error(err))
		return reply{text: msgInternalError}
	}

	if result.Kind == service.SubmitTranslationAdded {
		return reply{
			text: fmt.Sprintf("Слово %s и его перевод %s добавлены в ваш словарь!",
				bold(result.Word), bold(result.Translation)),
			markup: dictionaryMarkup(),
			html:   true,
		}
	}

	return reply{
		text: fmt.Sprintf("Отлично, слово %s добавлено, теперь напишите его перевод!", bold(result.Word)),
		html: true,
	}
}

// formatReport renders one line per graded answer
func formatReport(report domain.GradeReport) string {
	lines := make([]string, 0, len(report.Verdicts)+2)
	for _, v := range report.Verdicts {
		if v.Correct {
			lines = append(lines, fmt.Sprintf("✅ %s: правильно!", v.Expected))
		} else {
			lines = append(lines, fmt.Sprintf("❌ %s: неверно. Правильный перевод: %s", v.Answer, v.Expected))
		}
	}
	lines = append(lines, "", fmt.Sprintf("Верно %d из %d.", report.CorrectCount(), len(report.Verdicts)))
	return strings.Join(lines, "\n")
}

func bold(s string) string {
	return "<b>" + html.EscapeString(s) + "</b>"
}
