package repository

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/vladimiradmaev/glucose-insights/internal/database"
	"github.com/vladimiradmaev/glucose-insights/internal/domain"
)

func toJSON(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(b)
}

func fromJSON(raw datatypes.JSON, v interface{}) {
	if len(raw) == 0 {
		return
	}
	_ = json.Unmarshal(raw, v)
}

func stringsFromJSON(raw datatypes.JSON) []string {
	out := []string{}
	fromJSON(raw, &out)
	if out == nil {
		out = []string{}
	}
	return out
}

func subjectModel(s *domain.Subject) *database.Subject {
	return &database.Subject{
		Name:                s.Name,
		Age:                 s.Age,
		DiabetesType:        s.DiabetesType,
		DiagnosisDate:       s.DiagnosisDate,
		Medications:         toJSON(nonNil(s.Medications)),
		DietaryRestrictions: toJSON(nonNil(s.DietaryRestrictions)),
		Allergies:           toJSON(nonNil(s.Allergies)),
		TargetLow:           s.TargetLow,
		TargetHigh:          s.TargetHigh,
	}
}

func subjectDomain(m *database.Subject) *domain.Subject {
	return &domain.Subject{
		ID:                  m.ID,
		Name:                m.Name,
		Age:                 m.Age,
		DiabetesType:        m.DiabetesType,
		DiagnosisDate:       m.DiagnosisDate,
		Medications:         stringsFromJSON(m.Medications),
		DietaryRestrictions: stringsFromJSON(m.DietaryRestrictions),
		Allergies:           stringsFromJSON(m.Allergies),
		TargetLow:           m.TargetLow,
		TargetHigh:          m.TargetHigh,
		CreatedAt:           m.CreatedAt,
	}
}

func readingDomain(m database.GlucoseReading) domain.GlucoseReading {
	return domain.GlucoseReading{
		ID:              m.ID,
		SubjectID:       m.SubjectID,
		Timestamp:       m.Timestamp,
		Value:           m.Value,
		MeasurementType: m.MeasurementType,
		Notes:           m.Notes,
	}
}

func mealModel(m *domain.MealRecord) *database.MealRecord {
	return &database.MealRecord{
		SubjectID:     m.SubjectID,
		Timestamp:     m.Timestamp,
		MealType:      m.MealType,
		FoodItems:     toJSON(m.FoodItems),
		TotalCalories: m.TotalCalories,
		TotalCarbs:    m.TotalCarbs,
		TotalProtein:  m.TotalProtein,
		TotalFat:      m.TotalFat,
		Notes:         m.Notes,
	}
}

func mealDomain(m database.MealRecord) domain.MealRecord {
	items := []domain.FoodItem{}
	fromJSON(m.FoodItems, &items)
	return domain.MealRecord{
		ID:            m.ID,
		SubjectID:     m.SubjectID,
		Timestamp:     m.Timestamp,
		MealType:      m.MealType,
		FoodItems:     items,
		TotalCalories: m.TotalCalories,
		TotalCarbs:    m.TotalCarbs,
		TotalProtein:  m.TotalProtein,
		TotalFat:      m.TotalFat,
		Notes:         m.Notes,
	}
}

func doseDomain(m database.InsulinDose) domain.InsulinDose {
	return domain.InsulinDose{
		ID:            m.ID,
		SubjectID:     m.SubjectID,
		Timestamp:     m.Timestamp,
		InsulinType:   m.InsulinType,
		Units:         m.Units,
		InjectionSite: m.InjectionSite,
		Notes:         m.Notes,
	}
}

func healthModel(s *domain.HealthStat) *database.HealthStat {
	return &database.HealthStat{
		SubjectID:       s.SubjectID,
		Day:             s.CalendarDay(),
		Date:            s.Date,
		Steps:           s.Steps,
		Weight:          s.Weight,
		Height:          s.Height,
		WorkoutDuration: s.WorkoutDuration,
		WorkoutType:     s.WorkoutType,
		SleepHours:      s.SleepHours,
		StressLevel:     s.StressLevel,
		Notes:           s.Notes,
	}
}

func healthDomain(m database.HealthStat) domain.HealthStat {
	return domain.HealthStat{
		ID:              m.ID,
		SubjectID:       m.SubjectID,
		Date:            m.Date,
		Day:             m.Day,
		Steps:           m.Steps,
		Weight:          m.Weight,
		Height:          m.Height,
		WorkoutDuration: m.WorkoutDuration,
		WorkoutType:     m.WorkoutType,
		SleepHours:      m.SleepHours,
		StressLevel:     m.StressLevel,
		Notes:           m.Notes,
	}
}

func analysisModel(r *domain.AnalysisResult) *database.AnalysisResult {
	return &database.AnalysisResult{
		SubjectID:       r.SubjectID,
		StartDate:       r.DateRange.Start,
		EndDate:         r.DateRange.End,
		AverageValue:    r.AverageValue,
		TimeInRange:     r.TimeInRange,
		ReadingCount:    r.ReadingCount,
		Patterns:        toJSON(r.Patterns),
		Recommendations: toJSON(nonNil(r.Recommendations)),
		RiskFactors:     toJSON(nonNil(r.RiskFactors)),
		PositiveTrends:  toJSON(nonNil(r.PositiveTrends)),
	}
}

func analysisDomain(m database.AnalysisResult) domain.AnalysisResult {
	patterns := []domain.Pattern{}
	fromJSON(m.Patterns, &patterns)
	return domain.AnalysisResult{
		ID:              m.ID,
		SubjectID:       m.SubjectID,
		CreatedAt:       m.CreatedAt,
		DateRange:       domain.DateRange{Start: m.StartDate, End: m.EndDate},
		AverageValue:    m.AverageValue,
		TimeInRange:     m.TimeInRange,
		ReadingCount:    m.ReadingCount,
		Patterns:        patterns,
		Recommendations: stringsFromJSON(m.Recommendations),
		RiskFactors:     stringsFromJSON(m.RiskFactors),
		PositiveTrends:  stringsFromJSON(m.PositiveTrends),
	}
}

func chatDomain(m database.ChatMessage) domain.ChatMessage {
	return domain.ChatMessage{
		ID:            m.ID,
		SubjectID:     m.SubjectID,
		Timestamp:     m.Timestamp,
		UserMessage:   m.UserMessage,
		AgentResponse: m.AgentResponse,
		MessageType:   m.MessageType,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
