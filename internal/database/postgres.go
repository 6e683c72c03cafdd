package database

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vladimiradmaev/glucose-insights/internal/config"
	"github.com/vladimiradmaev/glucose-insights/internal/database/migrations"
)

type Subject struct {
	gorm.Model
	Name                string `gorm:"uniqueIndex;size:100;not null"`
	Age                 int
	DiabetesType        string `gorm:"size:50"`
	DiagnosisDate       *time.Time
	Medications         datatypes.JSON `gorm:"type:jsonb"`
	DietaryRestrictions datatypes.JSON `gorm:"type:jsonb"`
	Allergies           datatypes.JSON `gorm:"type:jsonb"`
	TargetLow           float64
	TargetHigh          float64
}

type GlucoseReading struct {
	gorm.Model
	SubjectID       uint `gorm:"index;not null"`
	Subject         Subject
	Timestamp       time.Time `gorm:"not null"`
	Value           float64   `gorm:"not null"`
	MeasurementType string    `gorm:"size:32"`
	Notes           string
}

type MealRecord struct {
	gorm.Model
	SubjectID     uint `gorm:"index;not null"`
	Subject       Subject
	Timestamp     time.Time      `gorm:"not null"`
	MealType      string         `gorm:"size:16"`
	FoodItems     datatypes.JSON `gorm:"type:jsonb"`
	TotalCalories float64
	TotalCarbs    float64
	TotalProtein  float64
	TotalFat      float64
	Notes         string
}

type InsulinDose struct {
	gorm.Model
	SubjectID     uint `gorm:"index;not null"`
	Subject       Subject
	Timestamp     time.Time `gorm:"not null"`
	InsulinType   string    `gorm:"size:50"`
	Units         float64
	InjectionSite string `gorm:"size:50"`
	Notes         string
}

type HealthStat struct {
	gorm.Model
	SubjectID uint `gorm:"index;not null"`
	Subject   Subject
	// Day is the YYYY-MM-DD key; at most one row per subject and day
	Day             string    `gorm:"size:10;not null"`
	Date            time.Time `gorm:"not null"`
	Steps           *int
	Weight          *float64
	Height          *float64
	WorkoutDuration *int   // minutes
	WorkoutType     string `gorm:"size:50"`
	SleepHours      *float64
	StressLevel     *int
	Notes           string
}

type AnalysisResult struct {
	gorm.Model
	SubjectID       uint `gorm:"index;not null"`
	Subject         Subject
	StartDate       time.Time
	EndDate         time.Time
	AverageValue    float64
	TimeInRange     float64
	ReadingCount    int
	Patterns        datatypes.JSON `gorm:"type:jsonb"`
	Recommendations datatypes.JSON `gorm:"type:jsonb"`
	RiskFactors     datatypes.JSON `gorm:"type:jsonb"`
	PositiveTrends  datatypes.JSON `gorm:"type:jsonb"`
}

type ChatMessage struct {
	gorm.Model
	SubjectID     uint `gorm:"index;not null"`
	Subject       Subject
	Timestamp     time.Time `gorm:"not null"`
	UserMessage   string
	AgentResponse string
	MessageType   string `gorm:"size:32"`
}

// Models lists every table in migration order
func Models() []interface{} {
	return []interface{}{
		&Subject{},
		&GlucoseReading{},
		&MealRecord{},
		&InsulinDose{},
		&HealthStat{},
		&AnalysisResult{},
		&ChatMessage{},
	}
}

// NewPostgresDB connects, creates the tables and applies the SQL migrations
func NewPostgresDB(cfg config.DBConfig, log *slog.Logger) (*gorm.DB, error) {
	if log == nil {
		log = slog.Default()
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	// SQL migrations add indexes on top of the generated tables
	if err := migrations.LoadSQLMigrations(migrations.SQLFiles); err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	if err := migrations.RunMigrations(db, log); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database connection established and migrations completed", "host", cfg.Host, "database", cfg.DBName)
	return db, nil
}
