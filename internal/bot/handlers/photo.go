package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/glucose-insights/internal/bot/menus"
	"github.com/vladimiradmaev/glucose-insights/internal/bot/state"
	"github.com/vladimiradmaev/glucose-insights/internal/domain"
	"github.com/vladimiradmaev/glucose-insights/internal/logger"
)

// PhotoHandler digitizes glucose chart photos
type PhotoHandler struct {
	base
}

// Handle processes a photo message
func (h *PhotoHandler) Handle(ctx context.Context, message *tgbotapi.Message, userID int64, sess domain.Session) error {
	chatID := message.Chat.ID
	if !h.deps.chartEnabled() {
		return h.reply(chatID, "Chart reading is not configured on this bot.")
	}
	h.stateManager.SetUserState(userID, state.None)

	// Get the largest photo
	photo := message.Photo[len(message.Photo)-1]
	image, err := h.download(ctx, photo.FileID)
	if err != nil {
		logger.Error("Failed to download chart photo", "subject_id", sess.SubjectID, "error", err)
		return h.reply(chatID, "I couldn't download that photo. Please try again.")
	}

	processing, err := h.api.Send(tgbotapi.NewMessage(chatID, "Reading your chart..."))
	if err != nil {
		return err
	}

	result, err := h.deps.Chart.Analyze(ctx, sess, image, "jpeg")

	if _, delErr := h.api.Request(tgbotapi.NewDeleteMessage(chatID, processing.MessageID)); delErr != nil {
		logger.Warn("Failed to delete processing message", "error", delErr)
	}
	if err != nil {
		return h.replyError(ctx, chatID, err)
	}
	return h.reply(chatID, menus.FormatChart(result))
}
