package menus

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/glucose-insights/internal/analysis"
	"github.com/vladimiradmaev/glucose-insights/internal/bot/keyboards"
	"github.com/vladimiradmaev/glucose-insights/internal/domain"
	"github.com/vladimiradmaev/glucose-insights/internal/services"
)

const mainMenuText = `🤖 *Glucose Insights* helps you understand your blood sugar

🩸 Log readings, meals, insulin and daily health
📊 Get pattern analysis and recommendations
🥗 Find recipes that fit your patterns

⚠️ *Important:* this is reference information, always consult your doctor!

Choose an action:`

// HelpText lists the commands
const HelpText = `Available commands:
/start - Show the main menu
/help - Show this message
/analyze [days] - Analyze the last days (default 30)
/summary - Today's summary
/trend - Predict the next two hours
/recipes [meal] [max carbs] - Recipe suggestions
/emergency <value> - What to do right now at this reading

Send a CSV export (timestamp,value) to import readings.
Any other message is answered by the assistant.`

// MainMenu builds the main menu message
func MainMenu(chatID int64, chartEnabled bool) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, mainMenuText)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = keyboards.Main(chartEnabled)
	return msg
}

// Text builds a plain message with the back button
func Text(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboards.Back()
	return msg
}

func FormatAnalysis(result *domain.AnalysisResult) string {
	if result.IsEmpty() {
		return "No readings in this period yet. Log a few readings and try again."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Analysis %s to %s\n\n", result.DateRange.Start.Format("Jan 2"), result.DateRange.End.Format("Jan 2"))
	fmt.Fprintf(&sb, "Readings: %d\n", result.ReadingCount)
	fmt.Fprintf(&sb, "Average: %.1f mg/dL\n", result.AverageValue)
	fmt.Fprintf(&sb, "Time in range: %.1f%%\n", result.TimeInRange)

	if len(result.Patterns) > 0 {
		sb.WriteString("\nPatterns:\n")
		for _, p := range result.Patterns {
			fmt.Fprintf(&sb, "• %s (%s, %s)\n", p.PatternType, p.Severity, p.Frequency)
		}
	}
	writeList(&sb, "Recommendations", result.Recommendations)
	writeList(&sb, "Risk factors", result.RiskFactors)
	writeList(&sb, "Going well", result.PositiveTrends)
	return strings.TrimRight(sb.String(), "\n")
}

func FormatSummary(s *services.DailySummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 %s\n\n", s.Date)
	if s.ReadingCount == 0 {
		sb.WriteString("No readings today.\n")
	} else {
		fmt.Fprintf(&sb, "Readings: %d (avg %.1f, min %.0f, max %.0f)\n", s.ReadingCount, s.Average, s.Min, s.Max)
		fmt.Fprintf(&sb, "Time in range: %.1f%%\n", s.TimeInRange)
	}
	fmt.Fprintf(&sb, "Meals: %d, %.0f kcal, %.1f g carbs\n", s.MealCount, s.Nutrition.Calories, s.Nutrition.Carbohydrates)
	fmt.Fprintf(&sb, "Insulin: %.1f units in %d doses", s.InsulinUnits, s.InsulinDoses)
	return sb.String()
}

func FormatTrend(p analysis.TrendPrediction) string {
	if p.Insufficient {
		return p.Message
	}
	return fmt.Sprintf("📈 In two hours: ~%.1f mg/dL (%s)\nRisk: %s\nConfidence: %s",
		p.PredictedValue, p.Direction, p.RiskLevel, p.Confidence)
}

func FormatRecipes(recs []domain.Recipe) string {
	if len(recs) == 0 {
		return "No recipes match right now. Try a higher carb limit."
	}
	var sb strings.Builder
	sb.WriteString("🥗 Recipes for you:\n")
	for i, r := range recs {
		fmt.Fprintf(&sb, "\n%d. %s\n   %.0f kcal, %.0f g carbs, %.0f g protein\n", i+1, r.Name,
			r.NutritionalInfo.Calories, r.NutritionalInfo.Carbohydrates, r.NutritionalInfo.Protein)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func FormatGuidance(g analysis.Guidance) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🚨 %s\n", g.Situation)
	if g.Message != "" {
		fmt.Fprintf(&sb, "\n%s\n", g.Message)
	}
	writeList(&sb, "Do now", g.ImmediateActions)
	if len(g.Recipes) > 0 {
		names := make([]string, len(g.Recipes))
		for i, r := range g.Recipes {
			names[i] = r.Name
		}
		writeList(&sb, "Quick options", names)
	}
	for _, line := range []string{g.Warning, g.FollowUp, g.Maintenance} {
		if line != "" {
			fmt.Fprintf(&sb, "\n%s\n", line)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func FormatChart(c *services.ChartAnalysis) string {
	if c.Summary.Error != "" {
		return "I couldn't find any readings in that image. " + c.Summary.Error
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📈 Extracted %d readings\n\n", c.Summary.TotalReadings)
	fmt.Fprintf(&sb, "Average: %.1f mg/dL (min %.0f, max %.0f)\n", c.Summary.Average, c.Summary.Min, c.Summary.Max)
	fmt.Fprintf(&sb, "Time in range: %.1f%%\n", c.Summary.TimeInRange)
	writeList(&sb, "Patterns", c.Summary.Patterns)
	writeList(&sb, "Recommendations", c.Summary.Recommendations)
	return strings.TrimRight(sb.String(), "\n")
}

func FormatImport(r *services.ImportReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📄 Imported %d readings, skipped %d", r.Imported, r.Skipped)
	const maxShown = 5
	for i, e := range r.Errors {
		if i == maxShown {
			fmt.Fprintf(&sb, "\n… and %d more", len(r.Errors)-maxShown)
			break
		}
		fmt.Fprintf(&sb, "\nline %d: %s", e.Line, e.Reason)
	}
	return sb.String()
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(sb, "• %s\n", item)
	}
}
