package domain

import (
	"time"
)

// Glucose thresholds in mg/dL shared by the target range, the rule battery
// and emergency guidance.
const (
	HypoThreshold         = 70.0
	HyperThreshold        = 180.0
	SevereHyperThreshold  = 300.0
	MinPlausibleGlucose   = 20.0
	MaxPlausibleGlucose   = 600.0
	ChartMinGlucose       = 50.0
	ChartMaxGlucose       = 500.0
	DefaultHealthSleepHrs = 8.0
)

// Measurement types
const (
	MeasurementFasting      = "fasting"
	MeasurementPreMeal      = "pre-meal"
	MeasurementPostMeal     = "post-meal"
	MeasurementRandom       = "random"
	MeasurementBedtime      = "bedtime"
	MeasurementManual       = "manual"
	MeasurementImported     = "imported"
	MeasurementChartDerived = "chart-derived"
)

// Meal types
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
	MealNone      = "none"
)

// Pattern vocabulary
const (
	PatternDawnPhenomenon      = "Dawn Phenomenon"
	PatternPostMealHyper       = "Post-Meal Hyperglycemia"
	PatternNocturnalHypo       = "Nocturnal Hypoglycemia"
	PatternHighVariability     = "High Blood Sugar Variability"
	PatternExerciseInducedHypo = "Exercise-Induced Hypoglycemia"
)

const (
	FrequencyDaily      = "Daily"
	FrequencyOccasional = "Occasional"
	FrequencyWeekly     = "Weekly"

	SeverityMild     = "Mild"
	SeverityModerate = "Moderate"
	SeveritySevere   = "Severe"
)

// TargetRange is the inclusive glucose range a subject aims for
type TargetRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// DefaultTargetRange returns 70-180 mg/dL
func DefaultTargetRange() TargetRange {
	return TargetRange{Low: HypoThreshold, High: HyperThreshold}
}

// Contains reports whether low <= v <= high
func (r TargetRange) Contains(v float64) bool {
	return v >= r.Low && v <= r.High
}

// Subject is the person whose records are analyzed. Name is the only lookup key.
type Subject struct {
	ID                  uint       `json:"id"`
	Name                string     `json:"name" validate:"required,max=100"`
	Age                 int        `json:"age,omitempty" validate:"omitempty,gte=0,lte=130"`
	DiabetesType        string     `json:"diabetes_type,omitempty" validate:"max=50"`
	DiagnosisDate       *time.Time `json:"diagnosis_date,omitempty"`
	Medications         []string   `json:"medications,omitempty"`
	DietaryRestrictions []string   `json:"dietary_restrictions,omitempty"`
	Allergies           []string   `json:"allergies,omitempty"`
	TargetLow           float64    `json:"target_low,omitempty" validate:"omitempty,gte=40,lte=200"`
	TargetHigh          float64    `json:"target_high,omitempty" validate:"omitempty,gte=80,lte=400"`
	CreatedAt           time.Time  `json:"created_at"`
}

// TargetRange returns the subject's configured range, falling back to the
// defaults for unset bounds.
func (s *Subject) TargetRange() TargetRange {
	r := DefaultTargetRange()
	if s == nil {
		return r
	}
	if s.TargetLow > 0 {
		r.Low = s.TargetLow
	}
	if s.TargetHigh > 0 {
		r.High = s.TargetHigh
	}
	return r
}

// GlucoseReading is a single measurement
type GlucoseReading struct {
	ID              uint      `json:"id,omitempty"`
	SubjectID       uint      `json:"subject_id,omitempty"`
	Timestamp       time.Time `json:"timestamp" validate:"required"`
	Value           float64   `json:"value" validate:"gte=20,lte=600"`
	MeasurementType string    `json:"measurement_type" validate:"max=32"`
	Notes           string    `json:"notes,omitempty" validate:"max=500"`
}

// FoodItem belongs to exactly one MealRecord. Quantity is in Unit, grams after normalization.
type FoodItem struct {
	Name          string   `json:"name" validate:"required"`
	Quantity      float64  `json:"quantity" validate:"gt=0"`
	Unit          string   `json:"unit"`
	Calories      float64  `json:"calories" validate:"gte=0"`
	Carbohydrates float64  `json:"carbohydrates" validate:"gte=0"`
	Protein       float64  `json:"protein" validate:"gte=0"`
	Fat           float64  `json:"fat" validate:"gte=0"`
	Fiber         *float64 `json:"fiber,omitempty" validate:"omitempty,gte=0"`
	Sugar         *float64 `json:"sugar,omitempty" validate:"omitempty,gte=0"`
}

// FiberGrams returns fiber or 0 when unknown
func (f FoodItem) FiberGrams() float64 {
	if f.Fiber == nil {
		return 0
	}
	return *f.Fiber
}

// SugarGrams returns sugar or 0 when unknown
func (f FoodItem) SugarGrams() float64 {
	if f.Sugar == nil {
		return 0
	}
	return *f.Sugar
}

// MealRecord totals must equal the sums over FoodItems
type MealRecord struct {
	ID            uint       `json:"id,omitempty"`
	SubjectID     uint       `json:"subject_id,omitempty"`
	Timestamp     time.Time  `json:"timestamp" validate:"required"`
	MealType      string     `json:"meal_type" validate:"oneof=breakfast lunch dinner snack"`
	FoodItems     []FoodItem `json:"food_items" validate:"dive"`
	TotalCalories float64    `json:"total_calories"`
	TotalCarbs    float64    `json:"total_carbs"`
	TotalProtein  float64    `json:"total_protein"`
	TotalFat      float64    `json:"total_fat"`
	Notes         string     `json:"notes,omitempty" validate:"max=500"`
}

// TotalFiber sums the fiber of all items
func (m MealRecord) TotalFiber() float64 {
	var total float64
	for _, item := range m.FoodItems {
		total += item.FiberGrams()
	}
	return total
}

// TotalSugar sums the sugar of all items
func (m MealRecord) TotalSugar() float64 {
	var total float64
	for _, item := range m.FoodItems {
		total += item.SugarGrams()
	}
	return total
}

// InsulinDose is one injection
type InsulinDose struct {
	ID            uint      `json:"id,omitempty"`
	SubjectID     uint      `json:"subject_id,omitempty"`
	Timestamp     time.Time `json:"timestamp" validate:"required"`
	InsulinType   string    `json:"insulin_type" validate:"required,max=50"`
	Units         float64   `json:"units" validate:"gt=0,lte=300"`
	InjectionSite string    `json:"injection_site" validate:"max=50"`
	Notes         string    `json:"notes,omitempty" validate:"max=500"`
}

// HealthStat holds daily context. Date has day granularity.
type HealthStat struct {
	ID              uint      `json:"id,omitempty"`
	SubjectID       uint      `json:"subject_id,omitempty"`
	Date            time.Time `json:"date" validate:"required"`
	Day             string    `json:"day,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Steps           *int      `json:"steps,omitempty" validate:"omitempty,gte=0"`
	Weight          *float64  `json:"weight,omitempty" validate:"omitempty,gt=0"`
	Height          *float64  `json:"height,omitempty" validate:"omitempty,gt=0"`
	WorkoutDuration *int      `json:"workout_duration,omitempty" validate:"omitempty,gte=0"`
	WorkoutType     string    `json:"workout_type,omitempty" validate:"max=50"`
	SleepHours      *float64  `json:"sleep_hours,omitempty" validate:"omitempty,gte=0,lte=24"`
	StressLevel     *int      `json:"stress_level,omitempty" validate:"omitempty,min=1,max=10"`
	Notes           string    `json:"notes,omitempty" validate:"max=500"`
}

// Pattern is a detected glucose pattern with its fixed explanation
type Pattern struct {
	PatternType     string   `json:"pattern_type"`
	Frequency       string   `json:"frequency"`
	Severity        string   `json:"severity"`
	PotentialCauses []string `json:"potential_causes"`
	Recommendations []string `json:"recommendations"`
}

// DateRange spans an analysis
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AnalysisResult is append-only; a new one is stored for every run
type AnalysisResult struct {
	ID              uint      `json:"id,omitempty"`
	SubjectID       uint      `json:"subject_id,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
	DateRange       DateRange `json:"date_range"`
	AverageValue    float64   `json:"average_blood_sugar"`
	TimeInRange     float64   `json:"time_in_range"`
	ReadingCount    int       `json:"reading_count"`
	Patterns        []Pattern `json:"patterns"`
	Recommendations []string  `json:"recommendations"`
	RiskFactors     []string  `json:"risk_factors"`
	PositiveTrends  []string  `json:"positive_trends"`
}

// IsEmpty reports whether the result was produced from zero readings
func (r *AnalysisResult) IsEmpty() bool {
	return r.ReadingCount == 0
}

// HasPattern reports whether a pattern of the given type was detected
func (r *AnalysisResult) HasPattern(patternType string) bool {
	for _, p := range r.Patterns {
		if p.PatternType == patternType {
			return true
		}
	}
	return false
}

// NutritionalInfo of a recipe serving
type NutritionalInfo struct {
	Calories      float64 `json:"calories"`
	Carbohydrates float64 `json:"carbohydrates"`
	Protein       float64 `json:"protein"`
	Fat           float64 `json:"fat"`
	Fiber         float64 `json:"fiber"`
}

// Recipe is static catalog data
type Recipe struct {
	Name                  string          `json:"name"`
	Description           string          `json:"description"`
	Ingredients           []string        `json:"ingredients"`
	Instructions          []string        `json:"instructions"`
	NutritionalInfo       NutritionalInfo `json:"nutritional_info"`
	DiabetesFriendlyScore float64         `json:"diabetes_friendly_score"`
	PrepTime              int             `json:"prep_time"`
	CookTime              int             `json:"cook_time"`
	Servings              int             `json:"servings"`
}

// ChatMessage is one persisted exchange with the assistant
type ChatMessage struct {
	ID            uint      `json:"id,omitempty"`
	SubjectID     uint      `json:"subject_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	UserMessage   string    `json:"user_message"`
	AgentResponse string    `json:"agent_response"`
	MessageType   string    `json:"message_type"`
}

// Session identifies who a call acts for. It is passed explicitly to every
// service call instead of living in shared state.
type Session struct {
	SubjectID uint   `json:"subject_id"`
	Token     string `json:"token"`
}

// TimeWindow bounds a query. Zero Start or End means unbounded on that side.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// LastDays returns the window [now-days, now]
func LastDays(now time.Time, days int) TimeWindow {
	return TimeWindow{Start: now.AddDate(0, 0, -days), End: now}
}

// Contains reports whether t falls inside the window (both bounds inclusive)
func (w TimeWindow) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && t.After(w.End) {
		return false
	}
	return true
}

// CalendarDay is the stored YYYY-MM-DD key, or the date's own when unset
func (s HealthStat) CalendarDay() string {
	if s.Day != "" {
		return s.Day
	}
	return DayKey(s.Date)
}

// DayKey returns the calendar date of t in its own location
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
