package keyboards

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data of the inline buttons
const (
	LogReading = "log_reading"
	Analysis   = "analysis"
	Recipes    = "recipes"
	Summary    = "summary"
	Chart      = "chart"
	Import     = "import"
	MainMenu   = "main_menu"
)

// Main creates the main menu keyboard. The chart button is only shown when
// digitization is configured.
func Main(chartEnabled bool) tgbotapi.InlineKeyboardMarkup {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🩸 Log reading", LogReading),
			tgbotapi.NewInlineKeyboardButtonData("📊 Analysis", Analysis),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🥗 Recipes", Recipes),
			tgbotapi.NewInlineKeyboardButtonData("📅 Today", Summary),
		),
	)

	last := tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📄 Import CSV", Import),
	)
	if chartEnabled {
		last = append(last, tgbotapi.NewInlineKeyboardButtonData("📈 Chart photo", Chart))
	}
	keyboard.InlineKeyboard = append(keyboard.InlineKeyboard, last)
	return keyboard
}

// Back creates a single "main menu" button
func Back() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Main menu", MainMenu),
		),
	)
}
