package handlers

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/glucose-insights/internal/bot/menus"
	"github.com/vladimiradmaev/glucose-insights/internal/bot/state"
	"github.com/vladimiradmaev/glucose-insights/internal/domain"
	"github.com/vladimiradmaev/glucose-insights/internal/logger"
	"github.com/vladimiradmaev/glucose-insights/internal/services"
)

// CommandHandler handles bot commands
type CommandHandler struct {
	base
}

// Handle processes a command message
func (h *CommandHandler) Handle(ctx context.Context, message *tgbotapi.Message, userID int64, sess domain.Session) error {
	logger.Infof("Handling command %s from subject %d", message.Command(), sess.SubjectID)
	chatID := message.Chat.ID
	args := strings.Fields(message.CommandArguments())

	switch message.Command() {
	case "start":
		h.stateManager.SetUserState(userID, state.None)
		return h.mainMenu(chatID)
	case "help":
		return h.send(tgbotapi.NewMessage(chatID, menus.HelpText))
	case "analyze":
		days := 0
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return h.reply(chatID, "Usage: /analyze [days], for example /analyze 14")
			}
			days = n
		}
		return h.analyze(ctx, chatID, sess, days)
	case "summary":
		return h.summary(ctx, chatID, sess)
	case "trend":
		prediction, err := h.deps.Analysis.PredictTrend(ctx, sess)
		if err != nil {
			return h.replyError(ctx, chatID, err)
		}
		return h.reply(chatID, menus.FormatTrend(prediction))
	case "recipes":
		q, ok := parseRecipeArgs(args)
		if !ok {
			return h.reply(chatID, "Usage: /recipes [meal] [max carbs], for example /recipes salad 20")
		}
		return h.recipes(ctx, chatID, sess, q)
	case "emergency":
		if len(args) == 0 {
			return h.reply(chatID, "Usage: /emergency <value>, for example /emergency 65")
		}
		value, err := strconv.ParseFloat(args[0], 64)
		if err != nil || !finite(value) {
			return h.reply(chatID, "Please enter a number, for example /emergency 65")
		}
		return h.reply(chatID, menus.FormatGuidance(h.deps.Analysis.Emergency(value)))
	default:
		return h.reply(chatID, "Unknown command. Use /help to see the available commands.")
	}
}

// parseRecipeArgs reads "[meal] [max carbs]" in either order
func parseRecipeArgs(args []string) (services.RecipeQuery, bool) {
	var q services.RecipeQuery
	for _, arg := range args {
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			if v <= 0 || !finite(v) || q.MaxCarbs != 0 {
				return q, false
			}
			q.MaxCarbs = v
			continue
		}
		if q.MealType != "" {
			return q, false
		}
		q.MealType = arg
	}
	return q, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (b *base) analyze(ctx context.Context, chatID int64, sess domain.Session, days int) error {
	result, err := b.deps.Analysis.Analyze(ctx, sess, days)
	if err != nil {
		return b.replyError(ctx, chatID, err)
	}
	return b.reply(chatID, menus.FormatAnalysis(result))
}

func (b *base) summary(ctx context.Context, chatID int64, sess domain.Session) error {
	summary, err := b.deps.Analysis.DailySummary(ctx, sess, time.Now())
	if err != nil {
		return b.replyError(ctx, chatID, err)
	}
	return b.reply(chatID, menus.FormatSummary(summary))
}

func (b *base) recipes(ctx context.Context, chatID int64, sess domain.Session, q services.RecipeQuery) error {
	recs, err := b.deps.Analysis.RecommendRecipes(ctx, sess, q)
	if err != nil {
		return b.replyError(ctx, chatID, err)
	}
	return b.reply(chatID, menus.FormatRecipes(recs))
}
