package analysis

import (
	"github.com/vladimiradmaev/glucose-insights/internal/domain"
)

// Analyzer turns one subject's records into an AnalysisResult
type Analyzer struct {
	trend TrendEstimator
}

// NewAnalyzer uses LinearTrend when estimator is nil
func NewAnalyzer(estimator TrendEstimator) *Analyzer {
	if estimator == nil {
		estimator = LinearTrend{}
	}
	return &Analyzer{trend: estimator}
}

// Analyze builds features, runs the rule battery and scores the result.
// No readings is not an error: the result has zero statistics and empty
// lists, with the date range taken from window.
func (a *Analyzer) Analyze(in FeatureInput, window domain.TimeWindow) *domain.AnalysisResult {
	if in.Target.High == 0 {
		in.Target = domain.DefaultTargetRange()
	}

	result := &domain.AnalysisResult{
		DateRange:       domain.DateRange{Start: window.Start, End: window.End},
		Patterns:        []domain.Pattern{},
		Recommendations: []string{},
		RiskFactors:     []string{},
		PositiveTrends:  []string{},
	}
	if len(in.Readings) == 0 {
		return result
	}

	table := BuildFeatures(in)
	values := table.Values()

	result.ReadingCount = len(values)
	result.AverageValue, _ = Mean(values)
	result.TimeInRange = TimeInRange(values, in.Target)
	result.Patterns = DetectPatterns(table, in.Target)

	score := ScoreFeatures(table, result.Patterns, in.Target)
	result.Recommendations = score.Recommendations
	result.RiskFactors = score.RiskFactors
	result.PositiveTrends = score.PositiveTrends

	first, last := in.Readings[0].Timestamp, in.Readings[len(in.Readings)-1].Timestamp
	if window.Start.IsZero() {
		result.DateRange.Start = first
	}
	if window.End.IsZero() {
		result.DateRange.End = last
	}
	return result
}

// PredictTrend delegates to the configured estimator
func (a *Analyzer) PredictTrend(values []float64, hoursAhead float64) TrendPrediction {
	return a.trend.Predict(values, hoursAhead)
}
