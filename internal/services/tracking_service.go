package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/vladimiradmaev/glucose-insights/internal/domain"
	"github.com/vladimiradmaev/glucose-insights/internal/nutrition"
)

// TrackingService is the ingestion boundary: every record is validated
// before it reaches the store.
type TrackingService struct {
	store domain.RecordStore
	log   *slog.Logger
	now   func() time.Time
}

func NewTrackingService(store domain.RecordStore, log *slog.Logger) *TrackingService {
	if log == nil {
		log = slog.Default()
	}
	return &TrackingService{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

func (s *TrackingService) at(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t
}

func (s *TrackingService) requireSubject(ctx context.Context, sess domain.Session) error {
	_, err := s.store.GetSubject(ctx, sess.SubjectID)
	return err
}

// AddReading stores a glucose reading. A zero at means now.
func (s *TrackingService) AddReading(ctx context.Context, sess domain.Session, value float64, measurementType, notes string, at time.Time) (*domain.GlucoseReading, error) {
	if measurementType == "" {
		measurementType = domain.MeasurementManual
	}
	reading := &domain.GlucoseReading{
		SubjectID:       sess.SubjectID,
		Timestamp:       s.at(at),
		Value:           value,
		MeasurementType: measurementType,
		Notes:           notes,
	}
	if err := domain.ValidateReading(reading); err != nil {
		return nil, err
	}
	if err := s.requireSubject(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.store.InsertReading(ctx, reading); err != nil {
		return nil, err
	}
	return reading, nil
}

// AddMeal resolves each portion against the food table and stores a meal
// whose totals are the item sums
func (s *TrackingService) AddMeal(ctx context.Context, sess domain.Session, mealType string, portions []nutrition.Portion, notes string, at time.Time) (*domain.MealRecord, error) {
	items := make([]domain.FoodItem, 0, len(portions))
	for _, p := range portions {
		if err := domain.Validate(p); err != nil {
			return nil, err
		}
		item, err := nutrition.BuildFoodItem(p)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	meal := nutrition.NewMeal(mealType, s.at(at), items, notes)
	return s.RecordMeal(ctx, sess, meal)
}

// RecordMeal stores a pre-built meal, rejecting totals that differ from
// the item sums
func (s *TrackingService) RecordMeal(ctx context.Context, sess domain.Session, meal domain.MealRecord) (*domain.MealRecord, error) {
	meal.SubjectID = sess.SubjectID
	meal.Timestamp = s.at(meal.Timestamp)
	if err := domain.ValidateMeal(&meal); err != nil {
		return nil, err
	}
	if err := s.requireSubject(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.store.InsertMeal(ctx, &meal); err != nil {
		return nil, err
	}
	return &meal, nil
}

func (s *TrackingService) AddInsulinDose(ctx context.Context, sess domain.Session, dose domain.InsulinDose) (*domain.InsulinDose, error) {
	dose.SubjectID = sess.SubjectID
	dose.Timestamp = s.at(dose.Timestamp)
	if err := domain.Validate(&dose); err != nil {
		return nil, err
	}
	if err := s.requireSubject(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.store.InsertInsulinDose(ctx, &dose); err != nil {
		return nil, err
	}
	return &dose, nil
}

// AddHealthStat stores the day's health stat. A second stat for the same
// calendar day fails with ErrDuplicateHealthStat.
func (s *TrackingService) AddHealthStat(ctx context.Context, sess domain.Session, stat domain.HealthStat) (*domain.HealthStat, error) {
	stat.SubjectID = sess.SubjectID
	stat.Date = s.at(stat.Date)
	stat.Day = domain.DayKey(stat.Date)
	if err := domain.Validate(&stat); err != nil {
		return nil, err
	}
	if err := s.requireSubject(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.store.InsertHealthStat(ctx, &stat); err != nil {
		return nil, err
	}
	return &stat, nil
}
