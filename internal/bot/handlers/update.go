package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/glucose-insights/internal/bot/state"
	"github.com/vladimiradmaev/glucose-insights/internal/domain"
	apperrors "github.com/vladimiradmaev/glucose-insights/internal/errors"
	"github.com/vladimiradmaev/glucose-insights/internal/logger"
)

// Update kinds reported to metrics
const (
	UpdateCallback = "callback"
	UpdateCommand  = "command"
	UpdateText     = "text"
	UpdatePhoto    = "photo"
	UpdateDocument = "document"
	UpdateOther    = "other"
)

// SubjectName is the subject a telegram user is registered as
func SubjectName(telegramID int64) string {
	return fmt.Sprintf("telegram:%d", telegramID)
}

// UpdateHandler handles telegram updates and coordinates other handlers
type UpdateHandler struct {
	base
	callbackHandler *CallbackHandler
	commandHandler  *CommandHandler
	textHandler     *TextHandler
	photoHandler    *PhotoHandler
	documentHandler *DocumentHandler
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(api Sender, deps Dependencies, stateManager state.StateManager) *UpdateHandler {
	b := base{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
		errors:       apperrors.NewHandler(logger.GetLogger()),
	}
	return &UpdateHandler{
		base:            b,
		callbackHandler: &CallbackHandler{base: b},
		commandHandler:  &CommandHandler{base: b},
		textHandler:     &TextHandler{base: b},
		photoHandler:    &PhotoHandler{base: b},
		documentHandler: &DocumentHandler{base: b},
	}
}

// session returns the chat's subject session, registering the telegram
// user on first contact
func (h *UpdateHandler) session(ctx context.Context, userID int64) (domain.Session, error) {
	if sess, ok := h.stateManager.GetSession(userID); ok {
		return sess, nil
	}
	sess, err := h.deps.Subjects.LoginOrRegister(ctx, SubjectName(userID))
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to get/create subject: %w", err)
	}
	h.stateManager.SetSession(userID, *sess)
	logger.Info("Chat linked to subject", "chat_user", userID, "subject_id", sess.SubjectID)
	return *sess, nil
}

// Handle processes a telegram update
func (h *UpdateHandler) Handle(ctx context.Context, update tgbotapi.Update) error {
	var userID int64
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		userID = update.CallbackQuery.From.ID
	case update.Message != nil && update.Message.From != nil:
		userID = update.Message.From.ID
	default:
		return nil
	}

	sess, err := h.session(ctx, userID)
	if err != nil {
		logger.Error("Error getting/creating subject", "chat_user", userID, "error", err)
		return err
	}

	if update.CallbackQuery != nil {
		h.deps.Metrics.ObserveBotUpdate(UpdateCallback)
		return h.callbackHandler.Handle(ctx, update.CallbackQuery, userID, sess)
	}

	message := update.Message
	switch {
	case message.IsCommand():
		h.deps.Metrics.ObserveBotUpdate(UpdateCommand)
		return h.commandHandler.Handle(ctx, message, userID, sess)
	case message.Document != nil:
		h.deps.Metrics.ObserveBotUpdate(UpdateDocument)
		return h.documentHandler.Handle(ctx, message, userID, sess)
	case len(message.Photo) > 0:
		h.deps.Metrics.ObserveBotUpdate(UpdatePhoto)
		return h.photoHandler.Handle(ctx, message, userID, sess)
	case message.Text != "":
		h.deps.Metrics.ObserveBotUpdate(UpdateText)
		return h.textHandler.Handle(ctx, message, userID, sess)
	default:
		h.deps.Metrics.ObserveBotUpdate(UpdateOther)
		return nil
	}
}
