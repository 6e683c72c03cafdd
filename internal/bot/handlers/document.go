package handlers

import (
	"bytes"
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/glucose-insights/internal/bot/menus"
	"github.com/vladimiradmaev/glucose-insights/internal/bot/state"
	"github.com/vladimiradmaev/glucose-insights/internal/domain"
	"github.com/vladimiradmaev/glucose-insights/internal/logger"
)

// DocumentHandler imports CSV reading exports
type DocumentHandler struct {
	base
}

func isCSV(doc *tgbotapi.Document) bool {
	return strings.HasSuffix(strings.ToLower(doc.FileName), ".csv") ||
		doc.MimeType == "text/csv" || doc.MimeType == "text/comma-separated-values"
}

// Handle processes a document message
func (h *DocumentHandler) Handle(ctx context.Context, message *tgbotapi.Message, userID int64, sess domain.Session) error {
	chatID := message.Chat.ID
	if !isCSV(message.Document) {
		return h.reply(chatID, "Only CSV files can be imported.")
	}
	if message.Document.FileSize > maxFileBytes {
		return h.reply(chatID, "That file is too large to import.")
	}
	h.stateManager.SetUserState(userID, state.None)

	data, err := h.download(ctx, message.Document.FileID)
	if err != nil {
		logger.Error("Failed to download import file", "subject_id", sess.SubjectID, "error", err)
		return h.reply(chatID, "I couldn't download that file. Please try again.")
	}

	report, err := h.deps.Import.ImportReadings(ctx, sess, bytes.NewReader(data))
	if err != nil {
		if report != nil && report.Imported > 0 {
			if sendErr := h.reply(chatID, menus.FormatImport(report)); sendErr != nil {
				return sendErr
			}
		}
		return h.replyError(ctx, chatID, err)
	}
	return h.reply(chatID, menus.FormatImport(report))
}
