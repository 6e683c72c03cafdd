package analysis

import (
	"github.com/vladimiradmaev/glucose-insights/internal/domain"
)

const (
	targetTIR           = 70.0
	lowTIR              = 50.0
	highCarbMeal        = 50.0
	minSleepHours       = 7.0
	highStress          = 7
	hypoShareLimit      = 0.10
	riskStdDev          = 60.0
	trendWindow         = 7
	trendImprovement    = 10.0
	minMealTypes        = 3
	exerciseShare       = 0.3
	sleepConsistencyStd = 1.5
)

// Score is the scorer output for one feature table
type Score struct {
	Recommendations []string
	RiskFactors     []string
	PositiveTrends  []string
}

// ScoreFeatures runs the recommendation, risk and trend checks. Each list
// keeps the order of its checks.
func ScoreFeatures(table *FeatureTable, patterns []domain.Pattern, target domain.TargetRange) Score {
	score := Score{
		Recommendations: []string{},
		RiskFactors:     []string{},
		PositiveTrends:  []string{},
	}
	if table == nil || table.Len() == 0 {
		return score
	}

	score.Recommendations = recommendations(table, patterns, target)
	score.RiskFactors = riskFactors(table, target)
	score.PositiveTrends = positiveTrends(table, target)
	return score
}

func recommendations(table *FeatureTable, patterns []domain.Pattern, target domain.TargetRange) []string {
	recs := []string{}

	if TimeInRange(table.Values(), target) < targetTIR {
		recs = append(recs, "Focus on improving time in range - aim for 70% or higher")
	}

	if table.HasMeals && anyRow(table, func(r FeatureRow) bool { return r.Carbs2h > highCarbMeal }) {
		recs = append(recs, "Consider reducing carb portions or timing insulin better for high-carb meals")
	}

	if hasPattern(patterns, domain.PatternExerciseInducedHypo) {
		recs = append(recs, "Consider eating a carb snack before exercise to prevent lows")
	}

	if table.HasHealth {
		sleep := make([]float64, 0, table.Len())
		for _, r := range table.Rows {
			sleep = append(sleep, r.SleepHoursToday)
		}
		if avg, ok := Mean(sleep); ok && avg < minSleepHours {
			recs = append(recs, "Improve sleep quality - aim for 7-9 hours per night")
		}
		if anyRow(table, func(r FeatureRow) bool { return r.StressToday > highStress }) {
			recs = append(recs, "Practice stress management techniques - stress affects blood sugar")
		}
	}

	return recs
}

func riskFactors(table *FeatureTable, target domain.TargetRange) []string {
	risks := []string{}
	values := table.Values()
	n := len(values)

	if countWhere(values, func(v float64) bool { return v > domain.SevereHyperThreshold }) > 0 {
		risks = append(risks, "Frequent very high blood sugar readings (>300 mg/dL)")
	}

	lows := countWhere(values, func(v float64) bool { return v < domain.HypoThreshold })
	if float64(lows) > float64(n)*hypoShareLimit {
		risks = append(risks, "Frequent hypoglycemia episodes")
	}

	if std, ok := StdDev(values); ok && std > riskStdDev {
		risks = append(risks, "High blood sugar variability increases complication risk")
	}

	if TimeInRange(values, target) < lowTIR {
		risks = append(risks, "Low time in range increases long-term complication risk")
	}

	return risks
}

// positiveTrends compares the first and last readings by position, not by
// calendar time; unsorted input changes the outcome.
func positiveTrends(table *FeatureTable, target domain.TargetRange) []string {
	trends := []string{}
	values := table.Values()
	n := len(values)

	if n >= trendWindow {
		recent := TimeInRange(values[n-trendWindow:], target)
		earliest := TimeInRange(values[:trendWindow], target)
		if recent > earliest+trendImprovement {
			trends = append(trends, "Improving time in range over the past week")
		}
	}

	if table.HasMeals {
		types := make(map[string]struct{})
		for _, r := range table.Rows {
			types[r.LastMealType2h] = struct{}{}
		}
		if len(types) >= minMealTypes {
			trends = append(trends, "Consistent meal timing throughout the day")
		}
	}

	if table.HasHealth {
		workouts := 0
		sleep := make([]float64, 0, n)
		for _, r := range table.Rows {
			if r.HadWorkoutToday {
				workouts++
			}
			sleep = append(sleep, r.SleepHoursToday)
		}
		if float64(workouts)/float64(n) > exerciseShare {
			trends = append(trends, "Regular exercise routine")
		}
		if std, ok := StdDev(sleep); ok && std < sleepConsistencyStd {
			trends = append(trends, "Consistent sleep schedule")
		}
	}

	return trends
}

func anyRow(table *FeatureTable, pred func(FeatureRow) bool) bool {
	for _, r := range table.Rows {
		if pred(r) {
			return true
		}
	}
	return false
}

func hasPattern(patterns []domain.Pattern, patternType string) bool {
	for _, p := range patterns {
		if p.PatternType == patternType {
			return true
		}
	}
	return false
}
