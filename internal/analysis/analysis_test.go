package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/glucose-insights/internal/domain"
)

var day = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func reading(hour int, value float64) domain.GlucoseReading {
	return domain.GlucoseReading{Timestamp: at(hour, 0), Value: value, MeasurementType: domain.MeasurementRandom}
}

func readingsOf(values ...float64) []domain.GlucoseReading {
	out := make([]domain.GlucoseReading, len(values))
	for i, v := range values {
		out[i] = domain.GlucoseReading{Timestamp: day.Add(time.Duration(i) * time.Hour), Value: v}
	}
	return out
}

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func patternTypes(patterns []domain.Pattern) []string {
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = p.PatternType
	}
	return out
}

func TestTimeInRange(t *testing.T) {
	target := domain.DefaultTargetRange()

	assert.Equal(t, 60.0, TimeInRange([]float64{60, 90, 120, 200, 90}, target))
	assert.Equal(t, 100.0, TimeInRange([]float64{70, 180}, target))
	assert.Equal(t, 0.0, TimeInRange(nil, target))
}

func TestStdDev(t *testing.T) {
	std, ok := StdDev([]float64{1, 2, 3, 4})
	require.True(t, ok)
	assert.InDelta(t, 1.2910, std, 0.0001)

	_, ok = StdDev([]float64{5})
	assert.False(t, ok)
}

func TestBucketsForHour(t *testing.T) {
	tests := []struct {
		hour int
		want TimeBuckets
	}{
		{0, TimeBuckets{Night: true}},
		{6, TimeBuckets{Morning: true, Night: true}},
		{10, TimeBuckets{Morning: true}},
		{11, TimeBuckets{}},
		{12, TimeBuckets{Afternoon: true}},
		{17, TimeBuckets{}},
		{18, TimeBuckets{Evening: true}},
		{22, TimeBuckets{Evening: true, Night: true}},
		{23, TimeBuckets{Night: true}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketsForHour(tt.hour), "hour %d", tt.hour)
	}
}

func TestBuildFeatures_MealAndInsulinWindows(t *testing.T) {
	meals := []domain.MealRecord{
		{Timestamp: at(8, 0), MealType: domain.MealBreakfast, TotalCarbs: 50},
		{Timestamp: at(10, 0), MealType: domain.MealSnack, TotalCarbs: 10},
		{Timestamp: at(11, 0), MealType: domain.MealSnack, TotalCarbs: 20},
		{Timestamp: at(12, 0), MealType: domain.MealLunch, TotalCarbs: 30},
		{Timestamp: at(12, 30), MealType: domain.MealSnack, TotalCarbs: 40},
	}
	doses := []domain.InsulinDose{
		{Timestamp: at(9, 0), Units: 2},
		{Timestamp: at(11, 30), Units: 4},
		{Timestamp: at(12, 0), Units: 1},
	}

	table := BuildFeatures(FeatureInput{
		Readings: []domain.GlucoseReading{reading(12, 150)},
		Meals:    meals,
		Insulin:  doses,
		Target:   domain.DefaultTargetRange(),
	})
	require.Equal(t, 1, table.Len())
	row := table.Rows[0]

	assert.Equal(t, 50.0, row.Carbs2h, "(t-2h, t]: 11:00 and 12:00")
	assert.Equal(t, 60.0, row.Carbs4h, "(t-4h, t]: 10:00, 11:00 and 12:00")
	assert.Equal(t, domain.MealLunch, row.LastMealType2h)
	assert.Equal(t, 5.0, row.Insulin2h)
	assert.Equal(t, 7.0, row.Insulin4h)
	assert.Equal(t, 12, row.HourOfDay)
	assert.Equal(t, time.Monday, row.DayOfWeek)
	assert.Equal(t, "2024-03-04", row.Date)
	assert.True(t, table.HasMeals)
	assert.True(t, table.HasInsulin)
	assert.False(t, table.HasHealth)
}

func TestBuildFeatures_NoMealInWindow(t *testing.T) {
	table := BuildFeatures(FeatureInput{
		Readings: []domain.GlucoseReading{reading(20, 120)},
		Meals:    []domain.MealRecord{{Timestamp: at(8, 0), MealType: domain.MealBreakfast, TotalCarbs: 40}},
		Target:   domain.DefaultTargetRange(),
	})
	assert.Equal(t, 0.0, table.Rows[0].Carbs2h)
	assert.Equal(t, domain.MealNone, table.Rows[0].LastMealType2h)
}

func TestBuildFeatures_SecondaryOrderDoesNotMatter(t *testing.T) {
	readings := []domain.GlucoseReading{reading(9, 140), reading(12, 190), reading(13, 175), reading(18, 110)}
	meals := []domain.MealRecord{
		{Timestamp: at(8, 0), MealType: domain.MealBreakfast, TotalCarbs: 35.3},
		{Timestamp: at(12, 0), MealType: domain.MealLunch, TotalCarbs: 60.1},
		{Timestamp: at(12, 0), MealType: domain.MealSnack, TotalCarbs: 12.7},
		{Timestamp: at(17, 0), MealType: domain.MealDinner, TotalCarbs: 45.9},
	}
	doses := []domain.InsulinDose{
		{Timestamp: at(7, 50), Units: 3.3},
		{Timestamp: at(11, 45), Units: 6.1},
		{Timestamp: at(16, 55), Units: 4.7},
	}

	reversedMeals := []domain.MealRecord{meals[3], meals[2], meals[1], meals[0]}
	reversedDoses := []domain.InsulinDose{doses[2], doses[0], doses[1]}

	a := BuildFeatures(FeatureInput{Readings: readings, Meals: meals, Insulin: doses, Target: domain.DefaultTargetRange()})
	b := BuildFeatures(FeatureInput{Readings: readings, Meals: reversedMeals, Insulin: reversedDoses, Target: domain.DefaultTargetRange()})

	assert.Equal(t, a, b)
	for i, row := range a.Rows {
		assert.Equal(t, readings[i].Value, row.Value, "row %d keeps input order", i)
	}
}

func TestBuildFeatures_HealthJoinsOnStoredDay(t *testing.T) {
	// logged at local midnight east of UTC, so the instant falls on the previous UTC date
	stats := []domain.HealthStat{{Date: day.Add(-2 * time.Hour), Day: domain.DayKey(day), Steps: intPtr(4000)}}

	table := BuildFeatures(FeatureInput{
		Readings: []domain.GlucoseReading{reading(10, 120)},
		Health:   stats,
		Target:   domain.DefaultTargetRange(),
	})

	require.Len(t, table.Rows, 1)
	assert.Equal(t, 4000, table.Rows[0].StepsToday)
}

func TestBuildFeatures_HealthContext(t *testing.T) {
	nextDay := day.AddDate(0, 0, 1)
	stats := []domain.HealthStat{
		{Date: day, Steps: intPtr(1000), WorkoutDuration: intPtr(30), SleepHours: floatPtr(0), StressLevel: intPtr(8)},
		{Date: day, Steps: intPtr(5000)},
		{Date: nextDay.AddDate(0, 0, 1), SleepHours: floatPtr(6)},
	}
	readings := []domain.GlucoseReading{
		reading(10, 120),
		{Timestamp: nextDay.Add(10 * time.Hour), Value: 130},
	}

	table := BuildFeatures(FeatureInput{Readings: readings, Health: stats, Target: domain.DefaultTargetRange()})

	first := table.Rows[0]
	assert.Equal(t, 1000, first.StepsToday, "first stat of the day wins")
	assert.True(t, first.HadWorkoutToday)
	assert.Equal(t, 8.0, first.SleepHoursToday, "zero sleep falls back to default")
	assert.Equal(t, 8, first.StressToday)

	second := table.Rows[1]
	assert.Equal(t, 0, second.StepsToday)
	assert.False(t, second.HadWorkoutToday)
	assert.Equal(t, 8.0, second.SleepHoursToday)
	assert.Equal(t, 0, second.StressToday)
}

func TestBuildFeatures_LevelCategory(t *testing.T) {
	table := BuildFeatures(FeatureInput{Readings: readingsOf(69, 70, 180, 181, 300, 301), Target: domain.DefaultTargetRange()})

	var got []LevelCategory
	for _, r := range table.Rows {
		got = append(got, r.Level)
	}
	assert.Equal(t, []LevelCategory{LevelLow, LevelNormal, LevelNormal, LevelHigh, LevelHigh, LevelVeryHigh}, got)

	custom := BuildFeatures(FeatureInput{Readings: readingsOf(75), Target: domain.TargetRange{Low: 80, High: 140}})
	assert.Equal(t, LevelLow, custom.Rows[0].Level)
}

func TestBuildFeatures_Rolling(t *testing.T) {
	table := BuildFeatures(FeatureInput{Readings: readingsOf(100, 110, 120, 130), Target: domain.DefaultTargetRange()})

	assert.Equal(t, 100.0, table.Rows[0].RollingMean3)
	assert.Equal(t, 0.0, table.Rows[0].RollingStd3)
	assert.Equal(t, 105.0, table.Rows[1].RollingMean3)
	assert.Equal(t, 110.0, table.Rows[2].RollingMean3)
	assert.InDelta(t, 10.0, table.Rows[2].RollingStd3, 1e-9)
	assert.Equal(t, 120.0, table.Rows[3].RollingMean3)
	assert.Equal(t, 115.0, table.Rows[3].RollingMean6)
}

func TestDetectPatterns_DawnBoundary(t *testing.T) {
	target := domain.DefaultTargetRange()

	tests := []struct {
		name     string
		readings []domain.GlucoseReading
		want     []string
		severity string
	}{
		{"mean equal to high does not fire", []domain.GlucoseReading{reading(7, 190), reading(8, 170)}, []string{}, ""},
		{"moderate", []domain.GlucoseReading{reading(7, 190), reading(8, 200)}, []string{domain.PatternDawnPhenomenon}, domain.SeverityModerate},
		{"severe", []domain.GlucoseReading{reading(7, 210), reading(8, 200)}, []string{domain.PatternDawnPhenomenon}, domain.SeveritySevere},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := BuildFeatures(FeatureInput{Readings: tt.readings, Target: target})
			got := DetectPatterns(table, target)
			assert.Equal(t, tt.want, patternTypes(got))
			if tt.severity != "" {
				assert.Equal(t, tt.severity, got[0].Severity)
				assert.Equal(t, domain.FrequencyDaily, got[0].Frequency)
				assert.Equal(t, "Natural hormone release in early morning", got[0].PotentialCauses[0])
			}
		})
	}
}

func TestDetectPatterns_BatteryOrderAndDeterminism(t *testing.T) {
	target := domain.DefaultTargetRange()
	readings := []domain.GlucoseReading{
		reading(13, 300),
		reading(2, 40),
		reading(7, 250),
		reading(3, 45),
		reading(8, 260),
	}
	table := BuildFeatures(FeatureInput{Readings: readings, Target: target})

	first := DetectPatterns(table, target)
	second := DetectPatterns(table, target)

	assert.Equal(t, []string{
		domain.PatternDawnPhenomenon,
		domain.PatternPostMealHyper,
		domain.PatternNocturnalHypo,
		domain.PatternHighVariability,
	}, patternTypes(first))
	assert.Equal(t, first, second)

	for _, p := range first {
		assert.Equal(t, domain.SeveritySevere, p.Severity, p.PatternType)
	}
}

func TestDetectPatterns_UnbucketedHoursNeverFire(t *testing.T) {
	target := domain.DefaultTargetRange()
	table := BuildFeatures(FeatureInput{Readings: []domain.GlucoseReading{reading(11, 260), reading(17, 265)}, Target: target})
	assert.Empty(t, DetectPatterns(table, target))
}

func TestDetectPatterns_ExerciseInducedHypo(t *testing.T) {
	target := domain.DefaultTargetRange()
	table := BuildFeatures(FeatureInput{
		Readings: []domain.GlucoseReading{reading(14, 60), reading(15, 65)},
		Health:   []domain.HealthStat{{Date: day, WorkoutDuration: intPtr(45)}},
		Target:   target,
	})

	patterns := DetectPatterns(table, target)
	require.Equal(t, []string{domain.PatternExerciseInducedHypo}, patternTypes(patterns))
	assert.Equal(t, domain.SeverityModerate, patterns[0].Severity)
	assert.Equal(t, domain.FrequencyOccasional, patterns[0].Frequency)

	score := ScoreFeatures(table, patterns, target)
	assert.Equal(t, []string{
		"Focus on improving time in range - aim for 70% or higher",
		"Consider eating a carb snack before exercise to prevent lows",
	}, score.Recommendations)
	assert.Equal(t, []string{
		"Frequent hypoglycemia episodes",
		"Low time in range increases long-term complication risk",
	}, score.RiskFactors)
	assert.Equal(t, []string{"Regular exercise routine", "Consistent sleep schedule"}, score.PositiveTrends)
}

func TestScoreFeatures_MealsAndRisk(t *testing.T) {
	target := domain.DefaultTargetRange()
	table := BuildFeatures(FeatureInput{
		Readings: []domain.GlucoseReading{reading(13, 150), reading(14, 320), reading(15, 160)},
		Meals:    []domain.MealRecord{{Timestamp: at(12, 30), MealType: domain.MealLunch, TotalCarbs: 65}},
		Target:   target,
	})

	score := ScoreFeatures(table, nil, target)
	assert.Equal(t, []string{
		"Focus on improving time in range - aim for 70% or higher",
		"Consider reducing carb portions or timing insulin better for high-carb meals",
	}, score.Recommendations)
	assert.Equal(t, []string{
		"Frequent very high blood sugar readings (>300 mg/dL)",
		"High blood sugar variability increases complication risk",
	}, score.RiskFactors)
	assert.Empty(t, score.PositiveTrends)
}

func TestScoreFeatures_StressAndSleep(t *testing.T) {
	target := domain.DefaultTargetRange()
	table := BuildFeatures(FeatureInput{
		Readings: []domain.GlucoseReading{reading(9, 120), reading(15, 130)},
		Health:   []domain.HealthStat{{Date: day, SleepHours: floatPtr(5.5), StressLevel: intPtr(9)}},
		Target:   target,
	})

	score := ScoreFeatures(table, nil, target)
	assert.Equal(t, []string{
		"Improve sleep quality - aim for 7-9 hours per night",
		"Practice stress management techniques - stress affects blood sugar",
	}, score.Recommendations)
}

func TestScoreFeatures_ImprovingTrend(t *testing.T) {
	target := domain.DefaultTargetRange()

	improving := BuildFeatures(FeatureInput{
		Readings: readingsOf(250, 250, 250, 250, 250, 250, 250, 120, 120, 120, 120, 120, 120, 120),
		Target:   target,
	})
	assert.Contains(t, ScoreFeatures(improving, nil, target).PositiveTrends, "Improving time in range over the past week")

	sevenOnly := BuildFeatures(FeatureInput{Readings: readingsOf(250, 250, 250, 120, 120, 120, 120), Target: target})
	assert.NotContains(t, ScoreFeatures(sevenOnly, nil, target).PositiveTrends, "Improving time in range over the past week")
}

func TestScoreFeatures_MealVariety(t *testing.T) {
	target := domain.DefaultTargetRange()
	table := BuildFeatures(FeatureInput{
		Readings: []domain.GlucoseReading{reading(8, 120), reading(13, 130), reading(20, 125)},
		Meals: []domain.MealRecord{
			{Timestamp: at(7, 30), MealType: domain.MealBreakfast, TotalCarbs: 30},
			{Timestamp: at(12, 30), MealType: domain.MealLunch, TotalCarbs: 40},
		},
		Target: target,
	})

	assert.Equal(t, []string{"Consistent meal timing throughout the day"}, ScoreFeatures(table, nil, target).PositiveTrends)
}

func TestAnalyzer_Analyze(t *testing.T) {
	window := domain.TimeWindow{Start: day, End: day.Add(24 * time.Hour)}
	result := NewAnalyzer(nil).Analyze(FeatureInput{Readings: readingsOf(60, 90, 120, 200, 90)}, window)

	assert.Equal(t, 5, result.ReadingCount)
	assert.Equal(t, 112.0, result.AverageValue)
	assert.Equal(t, 60.0, result.TimeInRange)
	assert.Equal(t, window.Start, result.DateRange.Start)
	assert.Equal(t, window.End, result.DateRange.End)
	assert.Contains(t, result.Recommendations, "Focus on improving time in range - aim for 70% or higher")
	assert.Contains(t, result.RiskFactors, "Frequent hypoglycemia episodes")
}

func TestAnalyzer_AnalyzeEmpty(t *testing.T) {
	window := domain.TimeWindow{Start: day, End: day.AddDate(0, 0, 30)}
	result := NewAnalyzer(nil).Analyze(FeatureInput{}, window)

	require.NotNil(t, result)
	assert.True(t, result.IsEmpty())
	assert.Equal(t, 0.0, result.AverageValue)
	assert.Equal(t, 0.0, result.TimeInRange)
	assert.NotNil(t, result.Patterns)
	assert.Empty(t, result.Patterns)
	assert.Empty(t, result.Recommendations)
	assert.Empty(t, result.RiskFactors)
	assert.Empty(t, result.PositiveTrends)
	assert.Equal(t, window.Start, result.DateRange.Start)
}

func TestLinearTrend_Predict(t *testing.T) {
	tests := []struct {
		name       string
		values     []float64
		hours      float64
		predicted  float64
		direction  string
		risk       string
		confidence string
	}{
		{"rising within range", []float64{100, 110, 120}, 2, 140, DirectionIncreasing, "Low - Within target range", ConfidenceLow},
		{"falling", []float64{200, 190, 180}, 1, 170, DirectionDecreasing, "Low - Within target range", ConfidenceLow},
		{"hyper risk", []float64{100, 150, 200}, 3, 350, DirectionIncreasing, "High - Risk of hyperglycemia", ConfidenceLow},
		{"above target", []float64{170, 180, 190}, 1, 200, DirectionIncreasing, "Medium - Above target range", ConfidenceLow},
		{"hypo risk", []float64{120, 120, 120, 120, 120, 120, 120, 100, 80, 60}, 1, 40, DirectionDecreasing, "High - Risk of hypoglycemia", ConfidenceMedium},
		{"flat is decreasing", []float64{120, 120, 120}, 2, 120, DirectionDecreasing, "Low - Within target range", ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LinearTrend{}.Predict(tt.values, tt.hours)
			assert.False(t, got.Insufficient)
			assert.InDelta(t, tt.predicted, got.PredictedValue, 1e-9)
			assert.Equal(t, tt.direction, got.Direction)
			assert.Equal(t, tt.risk, got.RiskLevel)
			assert.Equal(t, tt.confidence, got.Confidence)
		})
	}
}

func TestLinearTrend_Insufficient(t *testing.T) {
	got := NewAnalyzer(nil).PredictTrend([]float64{100, 110}, 2)
	assert.True(t, got.Insufficient)
	assert.Equal(t, "Insufficient data for prediction", got.Message)
}

func TestEmergencyGuidance(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{40, SituationHypoglycemia},
		{69.9, SituationHypoglycemia},
		{70, SituationNormal},
		{180, SituationNormal},
		{180.1, SituationHyperglycemia},
		{300, SituationHyperglycemia},
		{300.1, SituationSevereHyperglycemia},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EmergencyGuidance(tt.value).Situation, "value %.1f", tt.value)
	}

	low := EmergencyGuidance(55)
	assert.Len(t, low.ImmediateActions, 4)
	assert.Len(t, low.Recipes, 2)
	assert.Equal(t, "Monitor blood sugar every 15 minutes until stable", low.FollowUp)

	severe := EmergencyGuidance(350)
	assert.Equal(t, "If you have ketones or feel very ill, seek medical attention immediately", severe.Warning)
	assert.Empty(t, severe.Recipes)
}

func TestSummarizeChart(t *testing.T) {
	target := domain.DefaultTargetRange()

	morning := SummarizeChart([]domain.GlucoseReading{reading(7, 150), reading(8, 160)}, target)
	assert.Equal(t, 2, morning.TotalReadings)
	assert.Equal(t, 155.0, morning.Average)
	assert.Equal(t, 100.0, morning.TimeInRange)
	assert.Equal(t, []string{"High morning blood sugar (Dawn phenomenon)"}, morning.Patterns)
	assert.Empty(t, morning.Recommendations)

	night := SummarizeChart([]domain.GlucoseReading{reading(2, 55), reading(3, 60)}, target)
	assert.Equal(t, []string{"Nighttime hypoglycemia"}, night.Patterns)
	assert.Equal(t, []string{
		"Monitor for hypoglycemia and consider reducing insulin",
		"Keep glucose tablets or snacks available",
	}, night.Recommendations)

	high := SummarizeChart([]domain.GlucoseReading{reading(13, 350), reading(14, 200)}, target)
	assert.Contains(t, high.Patterns, "Post-meal blood sugar spikes")
	assert.Contains(t, high.Recommendations, "Seek immediate medical attention for very high readings")

	empty := SummarizeChart(nil, target)
	assert.Equal(t, "No blood sugar data to analyze", empty.Error)
}

func TestClampChartValue(t *testing.T) {
	assert.Equal(t, 50.0, ClampChartValue(30))
	assert.Equal(t, 500.0, ClampChartValue(640))
	assert.Equal(t, 123.0, ClampChartValue(123))
}
