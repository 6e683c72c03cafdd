package analysis

import (
	"math"

	"github.com/vladimiradmaev/glucose-insights/internal/domain"
)

const (
	chartMorningHigh = 140.0
	chartStdHigh     = 50.0
)

// ChartSummary describes readings digitized from a chart image
type ChartSummary struct {
	TotalReadings   int      `json:"total_readings"`
	Average         float64  `json:"average_blood_sugar"`
	Min             float64  `json:"min_blood_sugar"`
	Max             float64  `json:"max_blood_sugar"`
	StdDev          float64  `json:"std_deviation"`
	TimeInRange     float64  `json:"time_in_range"`
	Patterns        []string `json:"patterns"`
	Recommendations []string `json:"recommendations"`
	Error           string   `json:"error,omitempty"`
}

// ClampChartValue bounds a digitized value to the chart range. Only
// chart-derived readings are clamped; manual entry rejects out-of-range values.
func ClampChartValue(v float64) float64 {
	return math.Min(math.Max(v, domain.ChartMinGlucose), domain.ChartMaxGlucose)
}

// SummarizeChart computes the image-derived summary
func SummarizeChart(readings []domain.GlucoseReading, target domain.TargetRange) ChartSummary {
	if len(readings) == 0 {
		return ChartSummary{Patterns: []string{}, Recommendations: []string{}, Error: "No blood sugar data to analyze"}
	}

	values := make([]float64, len(readings))
	for i, r := range readings {
		values[i] = r.Value
	}
	mean, _ := Mean(values)
	min, max, _ := MinMax(values)
	std, hasStd := StdDev(values)

	summary := ChartSummary{
		TotalReadings:   len(values),
		Average:         mean,
		Min:             min,
		Max:             max,
		StdDev:          std,
		TimeInRange:     TimeInRange(values, target),
		Patterns:        []string{},
		Recommendations: []string{},
	}

	byBucket := func(pred func(TimeBuckets) bool) []float64 {
		var out []float64
		for _, r := range readings {
			if pred(BucketsForHour(r.Timestamp.Hour())) {
				out = append(out, r.Value)
			}
		}
		return out
	}

	if m, ok := Mean(byBucket(func(b TimeBuckets) bool { return b.Morning })); ok && m > chartMorningHigh {
		summary.Patterns = append(summary.Patterns, "High morning blood sugar (Dawn phenomenon)")
	}
	if m, ok := Mean(byBucket(func(b TimeBuckets) bool { return b.Afternoon })); ok && m > domain.HyperThreshold {
		summary.Patterns = append(summary.Patterns, "Post-meal blood sugar spikes")
	}
	if m, ok := Mean(byBucket(func(b TimeBuckets) bool { return b.Night })); ok && m < domain.HypoThreshold {
		summary.Patterns = append(summary.Patterns, "Nighttime hypoglycemia")
	}
	highStd := hasStd && std > chartStdHigh
	if highStd {
		summary.Patterns = append(summary.Patterns, "High blood sugar variability")
	}

	switch {
	case mean > domain.HyperThreshold:
		summary.Recommendations = append(summary.Recommendations,
			"Consider adjusting insulin dosage or meal timing",
			"Focus on low-carb meals and regular exercise")
	case mean < domain.HypoThreshold:
		summary.Recommendations = append(summary.Recommendations,
			"Monitor for hypoglycemia and consider reducing insulin",
			"Keep glucose tablets or snacks available")
	}
	if highStd {
		summary.Recommendations = append(summary.Recommendations,
			"Work on consistent meal timing and insulin administration",
			"Consider continuous glucose monitoring")
	}
	if max > domain.SevereHyperThreshold {
		summary.Recommendations = append(summary.Recommendations,
			"Seek immediate medical attention for very high readings")
	}

	return summary
}
