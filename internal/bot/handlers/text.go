package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/glucose-insights/internal/bot/keyboards"
	"github.com/vladimiradmaev/glucose-insights/internal/bot/state"
	"github.com/vladimiradmaev/glucose-insights/internal/domain"
)

// TextHandler handles text messages
type TextHandler struct {
	base
}

// Handle processes a text message
func (h *TextHandler) Handle(ctx context.Context, message *tgbotapi.Message, userID int64, sess domain.Session) error {
	switch h.stateManager.GetUserState(userID) {
	case state.WaitingForReading:
		return h.handleReading(ctx, message, userID, sess)
	default:
		return h.handleChat(ctx, message, sess)
	}
}

// handleReading stores the typed value; the chat stays in the waiting
// state until a valid number arrives
func (h *TextHandler) handleReading(ctx context.Context, message *tgbotapi.Message, userID int64, sess domain.Session) error {
	chatID := message.Chat.ID
	value, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(message.Text), ",", "."), 64)
	if err != nil {
		return h.reply(chatID, "Please enter a number in mg/dL, for example 120")
	}

	reading, err := h.deps.Tracking.AddReading(ctx, sess, value, domain.MeasurementManual, "", time.Time{})
	if err != nil {
		return h.replyError(ctx, chatID, err)
	}

	h.stateManager.SetUserState(userID, state.None)
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("✅ Reading %.0f mg/dL saved", reading.Value))
	msg.ReplyMarkup = keyboards.Main(h.deps.chartEnabled())
	return h.send(msg)
}

func (h *TextHandler) handleChat(ctx context.Context, message *tgbotapi.Message, sess domain.Session) error {
	if h.deps.Chat == nil {
		return h.reply(message.Chat.ID, "Please use the menu to choose an action.")
	}
	answer, err := h.deps.Chat.Reply(ctx, sess, message.Text)
	if err != nil {
		return h.replyError(ctx, message.Chat.ID, err)
	}
	return h.reply(message.Chat.ID, answer.AgentResponse)
}
