package interfaces

import (
	"context"
	"io"
	"time"

	"github.com/vladimiradmaev/glucose-insights/internal/analysis"
	"github.com/vladimiradmaev/glucose-insights/internal/domain"
	"github.com/vladimiradmaev/glucose-insights/internal/nutrition"
	"github.com/vladimiradmaev/glucose-insights/internal/recipes"
	"github.com/vladimiradmaev/glucose-insights/internal/services"
)

// SubjectServiceInterface defines the contract for subject identity
type SubjectServiceInterface interface {
	Register(ctx context.Context, subject *domain.Subject) (*domain.Session, error)
	Login(ctx context.Context, name string) (*domain.Session, error)
	LoginOrRegister(ctx context.Context, name string) (*domain.Session, error)
	Get(ctx context.Context, id uint) (*domain.Subject, error)
}

// TrackingServiceInterface defines the contract for record ingestion
type TrackingServiceInterface interface {
	AddReading(ctx context.Context, sess domain.Session, value float64, measurementType, notes string, at time.Time) (*domain.GlucoseReading, error)
	AddMeal(ctx context.Context, sess domain.Session, mealType string, portions []nutrition.Portion, notes string, at time.Time) (*domain.MealRecord, error)
	AddInsulinDose(ctx context.Context, sess domain.Session, dose domain.InsulinDose) (*domain.InsulinDose, error)
	AddHealthStat(ctx context.Context, sess domain.Session, stat domain.HealthStat) (*domain.HealthStat, error)
}

// AnalysisServiceInterface defines the contract for analysis and recommendations
type AnalysisServiceInterface interface {
	Analyze(ctx context.Context, sess domain.Session, days int) (*domain.AnalysisResult, error)
	DailySummary(ctx context.Context, sess domain.Session, day time.Time) (*services.DailySummary, error)
	PredictTrend(ctx context.Context, sess domain.Session) (analysis.TrendPrediction, error)
	RecommendRecipes(ctx context.Context, sess domain.Session, q services.RecipeQuery) ([]domain.Recipe, error)
	MealPlan(ctx context.Context, sess domain.Session, days int) (recipes.MealPlan, error)
	Emergency(value float64) analysis.Guidance
}

// ImportServiceInterface defines the contract for CSV reading imports
type ImportServiceInterface interface {
	ImportReadings(ctx context.Context, sess domain.Session, r io.Reader) (*services.ImportReport, error)
}

// ChartServiceInterface defines the contract for chart image digitization
type ChartServiceInterface interface {
	Enabled() bool
	Analyze(ctx context.Context, sess domain.Session, image []byte, format string) (*services.ChartAnalysis, error)
}

// ChatServiceInterface defines the contract for templated chat
type ChatServiceInterface interface {
	Reply(ctx context.Context, sess domain.Session, message string) (*domain.ChatMessage, error)
}

var (
	_ SubjectServiceInterface  = (*services.SubjectService)(nil)
	_ TrackingServiceInterface = (*services.TrackingService)(nil)
	_ AnalysisServiceInterface = (*services.AnalysisService)(nil)
	_ ImportServiceInterface   = (*services.ImportService)(nil)
	_ ChartServiceInterface    = (*services.ChartService)(nil)
	_ ChatServiceInterface     = (*services.ChatService)(nil)
)
