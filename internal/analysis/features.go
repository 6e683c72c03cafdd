package analysis

import (
	"sort"
	"time"

	"github.com/vladimiradmaev/glucose-insights/internal/domain"
)

const (
	shortWindow = 2 * time.Hour
	longWindow  = 4 * time.Hour
)

// LevelCategory is a coarse classification of a single reading
type LevelCategory string

const (
	LevelLow      LevelCategory = "low"
	LevelNormal   LevelCategory = "normal"
	LevelHigh     LevelCategory = "high"
	LevelVeryHigh LevelCategory = "very_high"
)

// TimeBuckets flags the time-of-day buckets an hour belongs to. The buckets
// overlap at hours 6 and 22 and leave 11 and 17 uncovered.
type TimeBuckets struct {
	Morning   bool
	Afternoon bool
	Evening   bool
	Night     bool
}

// BucketsForHour classifies an hour of day 0-23
func BucketsForHour(hour int) TimeBuckets {
	return TimeBuckets{
		Morning:   hour >= 6 && hour <= 10,
		Afternoon: hour >= 12 && hour <= 16,
		Evening:   hour >= 18 && hour <= 22,
		Night:     hour >= 22 || hour <= 6,
	}
}

// FeatureRow annotates one glucose reading with its context
type FeatureRow struct {
	Timestamp time.Time
	Value     float64
	HourOfDay int
	DayOfWeek time.Weekday
	Date      string

	Carbs2h        float64
	Carbs4h        float64
	LastMealType2h string
	Insulin2h      float64
	Insulin4h      float64

	StepsToday      int
	HadWorkoutToday bool
	SleepHoursToday float64
	// StressToday is 0 when no stress level was recorded for the day
	StressToday int

	Buckets TimeBuckets
	Level   LevelCategory

	RollingMean3 float64
	RollingMean6 float64
	RollingStd3  float64
}

// FeatureTable holds one row per input reading, in input order. The Has*
// flags record which secondary series were supplied at all.
type FeatureTable struct {
	Rows       []FeatureRow
	HasMeals   bool
	HasInsulin bool
	HasHealth  bool
}

// Len returns the number of rows
func (t *FeatureTable) Len() int {
	return len(t.Rows)
}

// Values returns the glucose values in row order
func (t *FeatureTable) Values() []float64 {
	return t.ValuesWhere(nil)
}

// ValuesWhere returns the values of rows matching pred; nil pred matches all
func (t *FeatureTable) ValuesWhere(pred func(FeatureRow) bool) []float64 {
	values := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if pred == nil || pred(row) {
			values = append(values, row.Value)
		}
	}
	return values
}

// FeatureInput is everything the builder joins. Readings must be non-empty.
type FeatureInput struct {
	Readings []domain.GlucoseReading
	Meals    []domain.MealRecord
	Insulin  []domain.InsulinDose
	Health   []domain.HealthStat
	Target   domain.TargetRange
}

type dayContext struct {
	steps   int
	workout bool
	sleep   float64
	stress  int
}

// BuildFeatures joins the secondary series onto the readings by time.
// Meal and insulin order in the input does not affect any feature.
func BuildFeatures(in FeatureInput) *FeatureTable {
	table := &FeatureTable{
		Rows:       make([]FeatureRow, len(in.Readings)),
		HasMeals:   len(in.Meals) > 0,
		HasInsulin: len(in.Insulin) > 0,
		HasHealth:  len(in.Health) > 0,
	}

	meals := sortedMeals(in.Meals)
	doses := sortedDoses(in.Insulin)
	days := healthByDay(in.Health)

	for i, r := range in.Readings {
		ts := r.Timestamp
		row := FeatureRow{
			Timestamp:      ts,
			Value:          r.Value,
			HourOfDay:      ts.Hour(),
			DayOfWeek:      ts.Weekday(),
			Date:           domain.DayKey(ts),
			LastMealType2h: domain.MealNone,
			Buckets:        BucketsForHour(ts.Hour()),
			Level:          categorize(r.Value, in.Target),
		}

		row.Carbs2h, row.LastMealType2h = mealWindow(meals, ts, shortWindow)
		row.Carbs4h, _ = mealWindow(meals, ts, longWindow)
		row.Insulin2h = doseWindow(doses, ts, shortWindow)
		row.Insulin4h = doseWindow(doses, ts, longWindow)

		ctx, ok := days[row.Date]
		if !ok {
			ctx = dayContext{sleep: domain.DefaultHealthSleepHrs}
		}
		row.StepsToday = ctx.steps
		row.HadWorkoutToday = ctx.workout
		row.SleepHoursToday = ctx.sleep
		row.StressToday = ctx.stress

		table.Rows[i] = row
	}

	applyRolling(table.Rows)
	return table
}

func categorize(v float64, target domain.TargetRange) LevelCategory {
	switch {
	case v < target.Low:
		return LevelLow
	case v <= target.High:
		return LevelNormal
	case v <= domain.SevereHyperThreshold:
		return LevelHigh
	default:
		return LevelVeryHigh
	}
}

func sortedMeals(in []domain.MealRecord) []domain.MealRecord {
	meals := make([]domain.MealRecord, len(in))
	copy(meals, in)
	sort.SliceStable(meals, func(i, j int) bool {
		a, b := meals[i], meals[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if a.MealType != b.MealType {
			return a.MealType < b.MealType
		}
		return a.TotalCarbs < b.TotalCarbs
	})
	return meals
}

func sortedDoses(in []domain.InsulinDose) []domain.InsulinDose {
	doses := make([]domain.InsulinDose, len(in))
	copy(doses, in)
	sort.SliceStable(doses, func(i, j int) bool {
		a, b := doses[i], doses[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.Units < b.Units
	})
	return doses
}

// mealWindow sums carbs over meals in (at-width, at] and returns the type of
// the latest one. meals must be sorted by sortedMeals.
func mealWindow(meals []domain.MealRecord, at time.Time, width time.Duration) (float64, string) {
	from := at.Add(-width)
	lo := sort.Search(len(meals), func(i int) bool { return meals[i].Timestamp.After(from) })
	hi := sort.Search(len(meals), func(i int) bool { return meals[i].Timestamp.After(at) })

	var carbs float64
	for _, m := range meals[lo:hi] {
		carbs += m.TotalCarbs
	}
	if hi > lo {
		return carbs, meals[hi-1].MealType
	}
	return carbs, domain.MealNone
}

func doseWindow(doses []domain.InsulinDose, at time.Time, width time.Duration) float64 {
	from := at.Add(-width)
	lo := sort.Search(len(doses), func(i int) bool { return doses[i].Timestamp.After(from) })
	hi := sort.Search(len(doses), func(i int) bool { return doses[i].Timestamp.After(at) })

	var units float64
	for _, d := range doses[lo:hi] {
		units += d.Units
	}
	return units
}

// healthByDay keeps the first stat seen for each calendar date
func healthByDay(stats []domain.HealthStat) map[string]dayContext {
	days := make(map[string]dayContext, len(stats))
	for _, s := range stats {
		key := s.CalendarDay()
		if _, seen := days[key]; seen {
			continue
		}
		ctx := dayContext{sleep: domain.DefaultHealthSleepHrs}
		if s.Steps != nil {
			ctx.steps = *s.Steps
		}
		ctx.workout = s.WorkoutDuration != nil
		// a recorded 0 is treated like a missing value
		if s.SleepHours != nil && *s.SleepHours != 0 {
			ctx.sleep = *s.SleepHours
		}
		if s.StressLevel != nil {
			ctx.stress = *s.StressLevel
		}
		days[key] = ctx
	}
	return days
}

// applyRolling fills trailing-window statistics in row order. A window with
// a single point has a standard deviation of 0.
func applyRolling(rows []FeatureRow) {
	values := make([]float64, len(rows))
	for i := range rows {
		values[i] = rows[i].Value
	}
	for i := range rows {
		w3 := values[max(0, i-2) : i+1]
		w6 := values[max(0, i-5) : i+1]
		rows[i].RollingMean3, _ = Mean(w3)
		rows[i].RollingMean6, _ = Mean(w6)
		rows[i].RollingStd3, _ = StdDev(w3)
	}
}
