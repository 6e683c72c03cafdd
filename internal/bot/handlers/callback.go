package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/glucose-insights/internal/bot/keyboards"
	"github.com/vladimiradmaev/glucose-insights/internal/bot/state"
	"github.com/vladimiradmaev/glucose-insights/internal/domain"
	"github.com/vladimiradmaev/glucose-insights/internal/logger"
	"github.com/vladimiradmaev/glucose-insights/internal/services"
)

// CallbackHandler handles callback query messages
type CallbackHandler struct {
	base
}

// Handle processes a callback query
func (h *CallbackHandler) Handle(ctx context.Context, query *tgbotapi.CallbackQuery, userID int64, sess domain.Session) error {
	// Answer the callback query first to remove the loading state
	if _, err := h.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		logger.Warn("Failed to answer callback query", "error", err)
	}
	if query.Message == nil || query.Message.Chat == nil {
		return nil
	}
	chatID := query.Message.Chat.ID

	switch query.Data {
	case keyboards.LogReading:
		h.stateManager.SetUserState(userID, state.WaitingForReading)
		return h.reply(chatID, "Enter your blood sugar in mg/dL:")
	case keyboards.Analysis:
		return h.analyze(ctx, chatID, sess, 0)
	case keyboards.Recipes:
		return h.recipes(ctx, chatID, sess, services.RecipeQuery{})
	case keyboards.Summary:
		return h.summary(ctx, chatID, sess)
	case keyboards.Chart:
		h.stateManager.SetUserState(userID, state.WaitingForChart)
		return h.reply(chatID, "Send a photo or screenshot of your glucose chart.")
	case keyboards.Import:
		h.stateManager.SetUserState(userID, state.WaitingForImport)
		return h.reply(chatID, "Send a CSV file with columns timestamp,value[,measurement_type[,notes]].")
	case keyboards.MainMenu:
		h.stateManager.SetUserState(userID, state.None)
		return h.mainMenu(chatID)
	default:
		logger.Warn("Unknown callback data", "data", query.Data)
		return nil
	}
}
