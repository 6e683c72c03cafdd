package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vladimiradmaev/glucose-insights/internal/domain"
)

// Chat message types
const (
	ChatTopicGlucose  = "glucose"
	ChatTopicPatterns = "patterns"
	ChatTopicRecipes  = "recipes"
	ChatTopicExercise = "exercise"
	ChatTopicGeneral  = "general"
)

const chatRecipeCount = 3

// chatTopics are checked in order; the first topic with a keyword in the
// message wins
var chatTopics = []struct {
	topic    string
	keywords []string
}{
	{ChatTopicGlucose, []string{"blood sugar", "glucose", "reading"}},
	{ChatTopicPatterns, []string{"pattern", "trend", "why"}},
	{ChatTopicRecipes, []string{"recipe", "food", "meal", "eat"}},
	{ChatTopicExercise, []string{"exercise", "workout", "activity"}},
}

// ChatService answers free-text questions from templates over the last
// week's analysis and keeps every exchange
type ChatService struct {
	analysis *AnalysisService
	store    domain.RecordStore
	log      *slog.Logger
	now      func() time.Time
}

func NewChatService(analysisService *AnalysisService, store domain.RecordStore, log *slog.Logger) *ChatService {
	if log == nil {
		log = slog.Default()
	}
	return &ChatService{
		analysis: analysisService,
		store:    store,
		log:      log,
		now:      time.Now,
	}
}

// ClassifyMessage returns the chat topic of message
func ClassifyMessage(message string) string {
	lower := strings.ToLower(message)
	for _, t := range chatTopics {
		for _, kw := range t.keywords {
			if strings.Contains(lower, kw) {
				return t.topic
			}
		}
	}
	return ChatTopicGeneral
}

func (s *ChatService) Reply(ctx context.Context, sess domain.Session, message string) (*domain.ChatMessage, error) {
	now := s.now()
	result, err := s.analysis.Evaluate(ctx, sess, domain.LastDays(now, recentPatternDays))
	if err != nil {
		return nil, err
	}
	subject, err := s.store.GetSubject(ctx, sess.SubjectID)
	if err != nil {
		return nil, err
	}

	topic := ClassifyMessage(message)
	var response string
	switch topic {
	case ChatTopicGlucose:
		response = glucoseReply(result, s.analysis.targetFor(subject))
	case ChatTopicPatterns:
		response = patternsReply(result)
	case ChatTopicRecipes:
		response, err = s.recipesReply(ctx, sess)
		if err != nil {
			return nil, err
		}
	case ChatTopicExercise:
		response = "Regular exercise is great for blood sugar control! Aim for at least 150 minutes of moderate activity per week. " +
			"Remember to check your blood sugar before and after exercise, and have a carb snack if needed."
	default:
		response = "I'm here to help you manage your diabetes! I can help with blood sugar analysis, meal planning, " +
			"recipe suggestions, and general diabetes management advice. What would you like to know?"
	}

	msg := &domain.ChatMessage{
		SubjectID:     sess.SubjectID,
		Timestamp:     now,
		UserMessage:   message,
		AgentResponse: response,
		MessageType:   topic,
	}
	if err := s.store.InsertChatMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save chat message: %w", err)
	}
	return msg, nil
}

// History returns the stored exchanges inside window, oldest first
func (s *ChatService) History(ctx context.Context, sess domain.Session, window domain.TimeWindow) ([]domain.ChatMessage, error) {
	return s.store.QueryChatMessages(ctx, sess.SubjectID, window)
}

func glucoseReply(result *domain.AnalysisResult, target domain.TargetRange) string {
	if result.IsEmpty() {
		return "I don't have any recent blood sugar readings yet. Log a reading and I'll take a look."
	}
	avg := result.AverageValue
	switch {
	case avg > target.High:
		return fmt.Sprintf("Your average blood sugar is %.1f mg/dL, which is above the target range. "+
			"I recommend focusing on lower-carb meals and consistent insulin timing. Would you like me to suggest some recipes?", avg)
	case avg < target.Low:
		return fmt.Sprintf("Your average blood sugar is %.1f mg/dL, which is below the target range. "+
			"Make sure to eat regular meals and consider reducing insulin doses. Do you need help with meal planning?", avg)
	default:
		return fmt.Sprintf("Your average blood sugar is %.1f mg/dL, which is within the target range. Great job! "+
			"Your time in range is %.1f%%. Keep up the good work!", avg, result.TimeInRange)
	}
}

func patternsReply(result *domain.AnalysisResult) string {
	if len(result.Patterns) == 0 {
		return "I don't see any significant patterns in your recent blood sugar data. This is good! " +
			"Keep monitoring and let me know if you notice any changes."
	}
	lines := make([]string, len(result.Patterns))
	for i, p := range result.Patterns {
		lines[i] = fmt.Sprintf("- %s: %s severity", p.PatternType, p.Severity)
	}
	return "I've identified these patterns in your blood sugar:\n" + strings.Join(lines, "\n") +
		"\n\nWould you like specific recommendations for managing these patterns?"
}

func (s *ChatService) recipesReply(ctx context.Context, sess domain.Session) (string, error) {
	recs, err := s.analysis.RecommendRecipes(ctx, sess, RecipeQuery{})
	if err != nil {
		return "", err
	}
	if len(recs) == 0 {
		return "I'd be happy to suggest some recipes! What type of meal are you looking for (breakfast, lunch, dinner, or snack)?", nil
	}
	if len(recs) > chatRecipeCount {
		recs = recs[:chatRecipeCount]
	}
	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.Name
	}
	return fmt.Sprintf("Here are some diabetes-friendly recipes I recommend: %s. Would you like the full recipe details for any of these?",
		strings.Join(names, ", ")), nil
}
