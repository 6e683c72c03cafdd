package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vladimiradmaev/glucose-insights/internal/domain"
	apperrors "github.com/vladimiradmaev/glucose-insights/internal/errors"
)

// MemoryStore is a process-local RecordStore used for tests and the
// "memory" store driver
type MemoryStore struct {
	mu sync.RWMutex

	nextID   uint
	subjects map[uint]*domain.Subject
	readings []domain.GlucoseReading
	meals    []domain.MealRecord
	doses    []domain.InsulinDose
	health   []domain.HealthStat
	analyses []domain.AnalysisResult
	chats    []domain.ChatMessage
	now      func() time.Time
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subjects: make(map[uint]*domain.Subject),
		now:      time.Now,
	}
}

func (s *MemoryStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *MemoryStore) CreateSubject(_ context.Context, subject *domain.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.subjects {
		if existing.Name == subject.Name {
			return apperrors.NewSubjectExistsError(subject.Name)
		}
	}
	subject.ID = s.id()
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = s.now()
	}
	stored := *subject
	s.subjects[stored.ID] = &stored
	return nil
}

func (s *MemoryStore) GetSubject(_ context.Context, id uint) (*domain.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subject, ok := s.subjects[id]
	if !ok {
		return nil, apperrors.NewSubjectNotFoundError(id)
	}
	out := *subject
	return &out, nil
}

func (s *MemoryStore) FindSubjectByName(_ context.Context, name string) (*domain.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, subject := range s.subjects {
		if subject.Name == name {
			out := *subject
			return &out, nil
		}
	}
	return nil, apperrors.NewSubjectNotFoundError(name)
}

func (s *MemoryStore) NextSubjectID(_ context.Context) (uint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID + 1, nil
}

func (s *MemoryStore) InsertReading(_ context.Context, r *domain.GlucoseReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.id()
	s.readings = append(s.readings, *r)
	return nil
}

func (s *MemoryStore) InsertMeal(_ context.Context, meal *domain.MealRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	meal.ID = s.id()
	stored := *meal
	stored.FoodItems = append([]domain.FoodItem(nil), meal.FoodItems...)
	s.meals = append(s.meals, stored)
	return nil
}

func (s *MemoryStore) InsertInsulinDose(_ context.Context, d *domain.InsulinDose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.id()
	s.doses = append(s.doses, *d)
	return nil
}

// InsertHealthStat rejects a second stat for the same subject and day
func (s *MemoryStore) InsertHealthStat(_ context.Context, stat *domain.HealthStat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := stat.CalendarDay()
	for _, existing := range s.health {
		if existing.SubjectID == stat.SubjectID && existing.CalendarDay() == day {
			return apperrors.NewDuplicateHealthStatError(day)
		}
	}
	stat.ID = s.id()
	stat.Day = day
	s.health = append(s.health, *stat)
	return nil
}

func (s *MemoryStore) InsertAnalysis(_ context.Context, r *domain.AnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.id()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	s.analyses = append(s.analyses, *r)
	return nil
}

func (s *MemoryStore) InsertChatMessage(_ context.Context, msg *domain.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.ID = s.id()
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}
	s.chats = append(s.chats, *msg)
	return nil
}

// selectWindow copies the subject's records inside w, ascending by the
// key time and then by insertion order
func selectWindow[T any](all []T, subjectID uint, w domain.TimeWindow, subject func(T) uint, key func(T) time.Time) []T {
	out := make([]T, 0)
	for _, rec := range all {
		if subject(rec) == subjectID && w.Contains(key(rec)) {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return key(out[i]).Before(key(out[j]))
	})
	return out
}

func (s *MemoryStore) QueryReadings(_ context.Context, subjectID uint, w domain.TimeWindow) ([]domain.GlucoseReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return selectWindow(s.readings, subjectID, w,
		func(r domain.GlucoseReading) uint { return r.SubjectID },
		func(r domain.GlucoseReading) time.Time { return r.Timestamp }), nil
}

func (s *MemoryStore) QueryMeals(_ context.Context, subjectID uint, w domain.TimeWindow) ([]domain.MealRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := selectWindow(s.meals, subjectID, w,
		func(m domain.MealRecord) uint { return m.SubjectID },
		func(m domain.MealRecord) time.Time { return m.Timestamp })
	for i := range out {
		out[i].FoodItems = append([]domain.FoodItem(nil), out[i].FoodItems...)
	}
	return out, nil
}

func (s *MemoryStore) QueryInsulinDoses(_ context.Context, subjectID uint, w domain.TimeWindow) ([]domain.InsulinDose, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return selectWindow(s.doses, subjectID, w,
		func(d domain.InsulinDose) uint { return d.SubjectID },
		func(d domain.InsulinDose) time.Time { return d.Timestamp }), nil
}

func (s *MemoryStore) QueryHealthStats(_ context.Context, subjectID uint, w domain.TimeWindow) ([]domain.HealthStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return selectWindow(s.health, subjectID, dayWindow(w),
		func(h domain.HealthStat) uint { return h.SubjectID },
		func(h domain.HealthStat) time.Time { return h.Date }), nil
}

func (s *MemoryStore) QueryAnalyses(_ context.Context, subjectID uint, w domain.TimeWindow) ([]domain.AnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return selectWindow(s.analyses, subjectID, w,
		func(r domain.AnalysisResult) uint { return r.SubjectID },
		func(r domain.AnalysisResult) time.Time { return r.CreatedAt }), nil
}

func (s *MemoryStore) QueryChatMessages(_ context.Context, subjectID uint, w domain.TimeWindow) ([]domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return selectWindow(s.chats, subjectID, w,
		func(m domain.ChatMessage) uint { return m.SubjectID },
		func(m domain.ChatMessage) time.Time { return m.Timestamp }), nil
}

var _ domain.RecordStore = (*MemoryStore)(nil)
