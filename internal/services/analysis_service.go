package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/vladimiradmaev/glucose-insights/internal/analysis"
	"github.com/vladimiradmaev/glucose-insights/internal/domain"
	apperrors "github.com/vladimiradmaev/glucose-insights/internal/errors"
	"github.com/vladimiradmaev/glucose-insights/internal/metrics"
	"github.com/vladimiradmaev/glucose-insights/internal/nutrition"
	"github.com/vladimiradmaev/glucose-insights/internal/recipes"
)

const (
	DefaultAnalysisDays = 30
	MaxMealPlanDays     = 31
	// recipe ranking and chat look at patterns from this many recent days
	recentPatternDays = 7
	trendHoursAhead   = 2.0
)

// AnalysisService runs the pattern engine over stored records and keeps
// every result as an audit trail
type AnalysisService struct {
	store         domain.RecordStore
	analyzer      *analysis.Analyzer
	recommender   *recipes.Recommender
	metrics       *metrics.Collector
	log           *slog.Logger
	defaultDays   int
	defaultTarget domain.TargetRange
	now           func() time.Time
}

// AnalysisOptions configures NewAnalysisService. Zero values use defaults.
type AnalysisOptions struct {
	Days    int
	Target  domain.TargetRange
	Trend   analysis.TrendEstimator
	Metrics *metrics.Collector
}

func NewAnalysisService(store domain.RecordStore, opts AnalysisOptions, log *slog.Logger) *AnalysisService {
	if log == nil {
		log = slog.Default()
	}
	if opts.Days <= 0 {
		opts.Days = DefaultAnalysisDays
	}
	if opts.Target.High == 0 {
		opts.Target = domain.DefaultTargetRange()
	}
	return &AnalysisService{
		store:         store,
		analyzer:      analysis.NewAnalyzer(opts.Trend),
		recommender:   recipes.NewRecommender(),
		metrics:       opts.Metrics,
		log:           log,
		defaultDays:   opts.Days,
		defaultTarget: opts.Target,
		now:           time.Now,
	}
}

// targetFor prefers the subject's own bounds over the configured default
func (s *AnalysisService) targetFor(subject *domain.Subject) domain.TargetRange {
	target := s.defaultTarget
	if subject.TargetLow > 0 {
		target.Low = subject.TargetLow
	}
	if subject.TargetHigh > 0 {
		target.High = subject.TargetHigh
	}
	return target
}

func (s *AnalysisService) loadInput(ctx context.Context, subject *domain.Subject, window domain.TimeWindow) (analysis.FeatureInput, error) {
	in := analysis.FeatureInput{Target: s.targetFor(subject)}

	var err error
	if in.Readings, err = s.store.QueryReadings(ctx, subject.ID, window); err != nil {
		return in, fmt.Errorf("failed to load readings: %w", err)
	}
	if in.Meals, err = s.store.QueryMeals(ctx, subject.ID, window); err != nil {
		return in, fmt.Errorf("failed to load meals: %w", err)
	}
	if in.Insulin, err = s.store.QueryInsulinDoses(ctx, subject.ID, window); err != nil {
		return in, fmt.Errorf("failed to load insulin doses: %w", err)
	}
	if in.Health, err = s.store.QueryHealthStats(ctx, subject.ID, window); err != nil {
		return in, fmt.Errorf("failed to load health stats: %w", err)
	}
	return in, nil
}

// Analyze runs the engine over the last days (the configured default when
// days <= 0) and persists the result. No data yields an empty result.
func (s *AnalysisService) Analyze(ctx context.Context, sess domain.Session, days int) (*domain.AnalysisResult, error) {
	if days <= 0 {
		days = s.defaultDays
	}
	return s.AnalyzeWindow(ctx, sess, domain.LastDays(s.now(), days))
}

// Evaluate runs the engine over window without storing the result
func (s *AnalysisService) Evaluate(ctx context.Context, sess domain.Session, window domain.TimeWindow) (*domain.AnalysisResult, error) {
	subject, err := s.store.GetSubject(ctx, sess.SubjectID)
	if err != nil {
		return nil, err
	}
	in, err := s.loadInput(ctx, subject, window)
	if err != nil {
		return nil, err
	}

	result := s.analyzer.Analyze(in, window)
	result.SubjectID = subject.ID
	result.CreatedAt = s.now()
	return result, nil
}

// AnalyzeWindow is Analyze over an explicit window
func (s *AnalysisService) AnalyzeWindow(ctx context.Context, sess domain.Session, window domain.TimeWindow) (*domain.AnalysisResult, error) {
	result, err := s.Evaluate(ctx, sess, window)
	if err != nil {
		return nil, err
	}
	if err := s.store.InsertAnalysis(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}

	patternTypes := make([]string, len(result.Patterns))
	for i, p := range result.Patterns {
		patternTypes[i] = p.PatternType
	}
	s.metrics.ObserveAnalysis(patternTypes)
	s.log.Info("Analysis completed",
		"subject_id", result.SubjectID,
		"readings", result.ReadingCount,
		"time_in_range", result.TimeInRange,
		"patterns", patternTypes)
	return result, nil
}

// History returns the stored analyses inside window, oldest first
func (s *AnalysisService) History(ctx context.Context, sess domain.Session, window domain.TimeWindow) ([]domain.AnalysisResult, error) {
	return s.store.QueryAnalyses(ctx, sess.SubjectID, window)
}

// RecentPatterns returns the patterns of the latest stored analysis from
// the last week, or none
func (s *AnalysisService) RecentPatterns(ctx context.Context, sess domain.Session) ([]domain.Pattern, error) {
	results, err := s.store.QueryAnalyses(ctx, sess.SubjectID, domain.LastDays(s.now(), recentPatternDays))
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return []domain.Pattern{}, nil
	}
	return results[len(results)-1].Patterns, nil
}

// PredictTrend estimates the value a couple of hours past the most recent
// readings of the default window
func (s *AnalysisService) PredictTrend(ctx context.Context, sess domain.Session) (analysis.TrendPrediction, error) {
	readings, err := s.store.QueryReadings(ctx, sess.SubjectID, domain.LastDays(s.now(), s.defaultDays))
	if err != nil {
		return analysis.TrendPrediction{}, err
	}
	values := make([]float64, len(readings))
	for i, r := range readings {
		values[i] = r.Value
	}
	return s.analyzer.PredictTrend(values, trendHoursAhead), nil
}

// DailySummary aggregates one calendar day of records
type DailySummary struct {
	Date         string                `json:"date"`
	ReadingCount int                   `json:"reading_count"`
	Average      float64               `json:"average_blood_sugar"`
	Min          float64               `json:"min_blood_sugar"`
	Max          float64               `json:"max_blood_sugar"`
	TimeInRange  float64               `json:"time_in_range"`
	MealCount    int                   `json:"meal_count"`
	Nutrition    nutrition.DailyTotals `json:"nutrition"`
	InsulinUnits float64               `json:"insulin_units"`
	InsulinDoses int                   `json:"insulin_doses"`
	Health       *domain.HealthStat    `json:"health,omitempty"`
}

func (s *AnalysisService) DailySummary(ctx context.Context, sess domain.Session, day time.Time) (*DailySummary, error) {
	subject, err := s.store.GetSubject(ctx, sess.SubjectID)
	if err != nil {
		return nil, err
	}
	start := domain.StartOfDay(day)
	window := domain.TimeWindow{Start: start, End: start.AddDate(0, 0, 1).Add(-time.Nanosecond)}

	in, err := s.loadInput(ctx, subject, window)
	if err != nil {
		return nil, err
	}

	summary := &DailySummary{
		Date:         domain.DayKey(start),
		ReadingCount: len(in.Readings),
		MealCount:    len(in.Meals),
		Nutrition:    nutrition.DailyNutrition(in.Meals, start),
		InsulinDoses: len(in.Insulin),
	}
	values := make([]float64, len(in.Readings))
	for i, r := range in.Readings {
		values[i] = r.Value
	}
	if avg, ok := analysis.Mean(values); ok {
		summary.Average = avg
		summary.Min, summary.Max, _ = analysis.MinMax(values)
		summary.TimeInRange = analysis.TimeInRange(values, in.Target)
	}
	for _, d := range in.Insulin {
		summary.InsulinUnits += d.Units
	}
	if len(in.Health) > 0 {
		summary.Health = &in.Health[0]
	}
	return summary, nil
}

// RecipeQuery narrows RecommendRecipes. Zero MaxCarbs uses the default ceiling.
type RecipeQuery struct {
	MealType string
	MaxCarbs float64
}

// RecommendRecipes ranks recipes for the subject's dietary restrictions and
// recent patterns
func (s *AnalysisService) RecommendRecipes(ctx context.Context, sess domain.Session, q RecipeQuery) ([]domain.Recipe, error) {
	if math.IsNaN(q.MaxCarbs) || math.IsInf(q.MaxCarbs, 0) {
		return nil, apperrors.NewValidationError("max carbs must be a finite number")
	}
	subject, err := s.store.GetSubject(ctx, sess.SubjectID)
	if err != nil {
		return nil, err
	}
	patterns, err := s.RecentPatterns(ctx, sess)
	if err != nil {
		return nil, err
	}
	if q.MaxCarbs <= 0 {
		q.MaxCarbs = recipes.DefaultCarbCeiling
	}
	return s.recommender.Recommend(recipes.Request{
		CarbCeiling:  q.MaxCarbs,
		MealType:     q.MealType,
		Restrictions: subject.DietaryRestrictions,
		Patterns:     patterns,
	}), nil
}

// MealPlan builds a plan of up to MaxMealPlanDays days; zero uses a week
func (s *AnalysisService) MealPlan(ctx context.Context, sess domain.Session, days int) (recipes.MealPlan, error) {
	if days > MaxMealPlanDays {
		return nil, apperrors.NewValidationError(fmt.Sprintf("days must be at most %d", MaxMealPlanDays))
	}
	subject, err := s.store.GetSubject(ctx, sess.SubjectID)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = recentPatternDays
	}
	return s.recommender.MealPlan(days, subject.DietaryRestrictions), nil
}

// RecipeImpact estimates a recipe's effect from the latest reading, or the
// target midpoint when there is none
func (s *AnalysisService) RecipeImpact(ctx context.Context, sess domain.Session, recipe domain.Recipe) (recipes.Impact, error) {
	readings, err := s.store.QueryReadings(ctx, sess.SubjectID, domain.LastDays(s.now(), 1))
	if err != nil {
		return recipes.Impact{}, err
	}
	current := (s.defaultTarget.Low + s.defaultTarget.High) / 2
	if len(readings) > 0 {
		current = readings[len(readings)-1].Value
	}
	return recipes.AnalyzeImpact(recipe, current), nil
}

// Emergency classifies a current value. It needs no stored data.
func (s *AnalysisService) Emergency(value float64) analysis.Guidance {
	return analysis.EmergencyGuidance(value)
}
