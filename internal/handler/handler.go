package handler

import (
	"wordreminder/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const msgInternalError = "Произошла ошибка. Попробуйте позже."

// Handler manages all bot interactions
type Handler struct {
	bot       *tele.Bot
	sessions  service.SessionStore
	words     *service.WordService
	settings  *service.SettingsService
	quiz      *service.QuizService
	reminders service.ReminderScheduler
	logger    *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(
	bot *tele.Bot,
	sessions service.SessionStore,
	words *service.WordService,
	settings *service.SettingsService,
	quiz *service.QuizService,
	reminders service.ReminderScheduler,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:       bot,
		sessions:  sessions,
		words:     words,
		settings:  settings,
		quiz:      quiz,
		reminders: reminders,
		logger:    logger,
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/settings", h.handleSettings)
	h.bot.Handle("/dictionary", h.handleDictionary)
	h.bot.Handle("/stop", h.handleStop)

	// Text messages
	h.bot.Handle(tele.OnText, h.handleText)

	// Callback queries (inline buttons)
	h.bot.Handle(&btnShowDictionary, h.handleDictionary)
	h.bot.Handle(&btnDeleteWord, h.handleDeletePrompt)
	h.bot.Handle(&btnCancel, h.handleCancel)

	// Generic callback handler for buttons whose unique did not come through
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

// reply is a message to send back to the user
type reply struct {
	text   string
	markup *tele.ReplyMarkup
	html   bool
}

func (r reply) send(c tele.Context) error {
	var opts []interface{}
	if r.markup != nil {
		opts = append(opts, r.markup)
	}
	if r.html {
		opts = append(opts, tele.ModeHTML)
	}
	return c.Send(r.text, opts...)
}

// Inline keyboard buttons
var (
	btnShowDictionary = tele.Btn{
		Unique: "show_dictionary",
		Text:   "📖 Мой словарь",
	}
	btnDeleteWord = tele.Btn{
		Unique: "delete_word",
		Text:   "🗑 Удалить слово",
	}
	btnCancel = tele.Btn{
		Unique: "cancel",
		Text:   "❌ Отменить",
	}
)

// dictionaryMarkup returns the keyboard shown after a word is translated
func dictionaryMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(btnShowDictionary))
	return menu
}

// deleteMarkup returns the keyboard shown under the dictionary
func deleteMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(btnDeleteWord))
	return menu
}

func cancelMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(btnCancel))
	return menu
}
