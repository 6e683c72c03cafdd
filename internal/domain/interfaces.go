package domain

import (
	"context"
)

// SubjectStore handles subject identity
type SubjectStore interface {
	CreateSubject(ctx context.Context, subject *Subject) error
	GetSubject(ctx context.Context, id uint) (*Subject, error)
	FindSubjectByName(ctx context.Context, name string) (*Subject, error)
	NextSubjectID(ctx context.Context) (uint, error)
}

// RecordStore is the durable, subject-scoped storage the analysis core reads
// from and writes to. Inserts are append-only and visible to subsequent
// queries. Queries return records ascending by timestamp (date for health
// stats) within the window.
type RecordStore interface {
	SubjectStore

	InsertReading(ctx context.Context, reading *GlucoseReading) error
	InsertMeal(ctx context.Context, meal *MealRecord) error
	InsertInsulinDose(ctx context.Context, dose *InsulinDose) error
	InsertHealthStat(ctx context.Context, stat *HealthStat) error
	InsertAnalysis(ctx context.Context, result *AnalysisResult) error
	InsertChatMessage(ctx context.Context, msg *ChatMessage) error

	QueryReadings(ctx context.Context, subjectID uint, window TimeWindow) ([]GlucoseReading, error)
	QueryMeals(ctx context.Context, subjectID uint, window TimeWindow) ([]MealRecord, error)
	QueryInsulinDoses(ctx context.Context, subjectID uint, window TimeWindow) ([]InsulinDose, error)
	QueryHealthStats(ctx context.Context, subjectID uint, window TimeWindow) ([]HealthStat, error)
	QueryAnalyses(ctx context.Context, subjectID uint, window TimeWindow) ([]AnalysisResult, error)
	QueryChatMessages(ctx context.Context, subjectID uint, window TimeWindow) ([]ChatMessage, error)
}
