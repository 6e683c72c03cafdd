package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/vladimiradmaev/glucose-insights/internal/database"
	"github.com/vladimiradmaev/glucose-insights/internal/domain"
	apperrors "github.com/vladimiradmaev/glucose-insights/internal/errors"
)

// GormStore is the postgres-backed RecordStore
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open connection
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// GetDB returns the underlying GORM database instance
func (s *GormStore) GetDB() *gorm.DB {
	return s.db
}

func windowScope(column string, w domain.TimeWindow) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !w.Start.IsZero() {
			db = db.Where(column+" >= ?", w.Start)
		}
		if !w.End.IsZero() {
			db = db.Where(column+" <= ?", w.End)
		}
		return db.Order(column + " ASC").Order("id ASC")
	}
}

// dayWindow widens the start to midnight so day-granular rows on the first
// day are included
func dayWindow(w domain.TimeWindow) domain.TimeWindow {
	if !w.Start.IsZero() {
		w.Start = domain.StartOfDay(w.Start)
	}
	return w
}

func (s *GormStore) CreateSubject(ctx context.Context, subject *domain.Subject) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&database.Subject{}).Where("name = ?", subject.Name).Count(&count).Error; err != nil {
		return apperrors.NewDatabaseError(err)
	}
	if count > 0 {
		return apperrors.NewSubjectExistsError(subject.Name)
	}

	m := subjectModel(subject)
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.NewSubjectExistsError(subject.Name)
		}
		return apperrors.NewDatabaseError(err)
	}
	subject.ID = m.ID
	subject.CreatedAt = m.CreatedAt
	return nil
}

func (s *GormStore) GetSubject(ctx context.Context, id uint) (*domain.Subject, error) {
	var m database.Subject
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewSubjectNotFoundError(id)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return subjectDomain(&m), nil
}

func (s *GormStore) FindSubjectByName(ctx context.Context, name string) (*domain.Subject, error) {
	var m database.Subject
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewSubjectNotFoundError(name)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return subjectDomain(&m), nil
}

func (s *GormStore) NextSubjectID(ctx context.Context) (uint, error) {
	var maxID uint
	if err := s.db.WithContext(ctx).Unscoped().Model(&database.Subject{}).
		Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
		return 0, apperrors.NewDatabaseError(err)
	}
	return maxID + 1, nil
}

func (s *GormStore) InsertReading(ctx context.Context, r *domain.GlucoseReading) error {
	m := database.GlucoseReading{
		SubjectID:       r.SubjectID,
		Timestamp:       r.Timestamp,
		Value:           r.Value,
		MeasurementType: r.MeasurementType,
		Notes:           r.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return apperrors.NewDatabaseError(err)
	}
	r.ID = m.ID
	return nil
}

func (s *GormStore) InsertMeal(ctx context.Context, meal *domain.MealRecord) error {
	m := mealModel(meal)
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperrors.NewDatabaseError(err)
	}
	meal.ID = m.ID
	return nil
}

func (s *GormStore) InsertInsulinDose(ctx context.Context, d *domain.InsulinDose) error {
	m := database.InsulinDose{
		SubjectID:     d.SubjectID,
		Timestamp:     d.Timestamp,
		InsulinType:   d.InsulinType,
		Units:         d.Units,
		InjectionSite: d.InjectionSite,
		Notes:         d.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return apperrors.NewDatabaseError(err)
	}
	d.ID = m.ID
	return nil
}

// InsertHealthStat rejects a second stat for the same subject and day
func (s *GormStore) InsertHealthStat(ctx context.Context, stat *domain.HealthStat) error {
	m := healthModel(stat)

	var count int64
	if err := s.db.WithContext(ctx).Model(&database.HealthStat{}).
		Where("subject_id = ? AND day = ?", m.SubjectID, m.Day).Count(&count).Error; err != nil {
		return apperrors.NewDatabaseError(err)
	}
	if count > 0 {
		return apperrors.NewDuplicateHealthStatError(m.Day)
	}

	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.NewDuplicateHealthStatError(m.Day)
		}
		return apperrors.NewDatabaseError(err)
	}
	stat.ID = m.ID
	stat.Day = m.Day
	return nil
}

func (s *GormStore) InsertAnalysis(ctx context.Context, r *domain.AnalysisResult) error {
	m := analysisModel(r)
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperrors.NewDatabaseError(err)
	}
	r.ID = m.ID
	r.CreatedAt = m.CreatedAt
	return nil
}

func (s *GormStore) InsertChatMessage(ctx context.Context, msg *domain.ChatMessage) error {
	m := database.ChatMessage{
		SubjectID:     msg.SubjectID,
		Timestamp:     msg.Timestamp,
		UserMessage:   msg.UserMessage,
		AgentResponse: msg.AgentResponse,
		MessageType:   msg.MessageType,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return apperrors.NewDatabaseError(err)
	}
	msg.ID = m.ID
	return nil
}

func (s *GormStore) QueryReadings(ctx context.Context, subjectID uint, w domain.TimeWindow) ([]domain.GlucoseReading, error) {
	var rows []database.GlucoseReading
	if err := s.db.WithContext(ctx).Where("subject_id = ?", subjectID).
		Scopes(windowScope("timestamp", w)).Find(&rows).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	out := make([]domain.GlucoseReading, len(rows))
	for i, m := range rows {
		out[i] = readingDomain(m)
	}
	return out, nil
}

func (s *GormStore) QueryMeals(ctx context.Context, subjectID uint, w domain.TimeWindow) ([]domain.MealRecord, error) {
	var rows []database.MealRecord
	if err := s.db.WithContext(ctx).Where("subject_id = ?", subjectID).
		Scopes(windowScope("timestamp", w)).Find(&rows).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	out := make([]domain.MealRecord, len(rows))
	for i, m := range rows {
		out[i] = mealDomain(m)
	}
	return out, nil
}

func (s *GormStore) QueryInsulinDoses(ctx context.Context, subjectID uint, w domain.TimeWindow) ([]domain.InsulinDose, error) {
	var rows []database.InsulinDose
	if err := s.db.WithContext(ctx).Where("subject_id = ?", subjectID).
		Scopes(windowScope("timestamp", w)).Find(&rows).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	out := make([]domain.InsulinDose, len(rows))
	for i, m := range rows {
		out[i] = doseDomain(m)
	}
	return out, nil
}

func (s *GormStore) QueryHealthStats(ctx context.Context, subjectID uint, w domain.TimeWindow) ([]domain.HealthStat, error) {
	var rows []database.HealthStat
	if err := s.db.WithContext(ctx).Where("subject_id = ?", subjectID).
		Scopes(windowScope("date", dayWindow(w))).Find(&rows).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	out := make([]domain.HealthStat, len(rows))
	for i, m := range rows {
		out[i] = healthDomain(m)
	}
	return out, nil
}

func (s *GormStore) QueryAnalyses(ctx context.Context, subjectID uint, w domain.TimeWindow) ([]domain.AnalysisResult, error) {
	var rows []database.AnalysisResult
	if err := s.db.WithContext(ctx).Where("subject_id = ?", subjectID).
		Scopes(windowScope("created_at", w)).Find(&rows).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	out := make([]domain.AnalysisResult, len(rows))
	for i, m := range rows {
		out[i] = analysisDomain(m)
	}
	return out, nil
}

func (s *GormStore) QueryChatMessages(ctx context.Context, subjectID uint, w domain.TimeWindow) ([]domain.ChatMessage, error) {
	var rows []database.ChatMessage
	if err := s.db.WithContext(ctx).Where("subject_id = ?", subjectID).
		Scopes(windowScope("timestamp", w)).Find(&rows).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	out := make([]domain.ChatMessage, len(rows))
	for i, m := range rows {
		out[i] = chatDomain(m)
	}
	return out, nil
}

var _ domain.RecordStore = (*GormStore)(nil)
