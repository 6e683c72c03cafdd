package analysis

import (
	"github.com/vladimiradmaev/glucose-insights/internal/domain"
)

const (
	minTrendPoints        = 3
	mediumConfidencePoint = 10
)

// Trend directions and confidence levels
const (
	DirectionIncreasing = "increasing"
	DirectionDecreasing = "decreasing"

	ConfidenceLow    = "Low"
	ConfidenceMedium = "Medium"
)

// TrendPrediction is the estimated value some hours ahead. Insufficient is
// set, with Message, when there is not enough data to estimate.
type TrendPrediction struct {
	Insufficient   bool    `json:"insufficient,omitempty"`
	Message        string  `json:"message,omitempty"`
	PredictedValue float64 `json:"predicted_value,omitempty"`
	Direction      string  `json:"trend_direction,omitempty"`
	RiskLevel      string  `json:"risk_level,omitempty"`
	Confidence     string  `json:"confidence,omitempty"`
}

// TrendEstimator predicts a future value from an ordered series
type TrendEstimator interface {
	Predict(values []float64, hoursAhead float64) TrendPrediction
}

// LinearTrend fits a least-squares line through the last three values,
// one step per hour.
type LinearTrend struct{}

// Predict implements TrendEstimator
func (LinearTrend) Predict(values []float64, hoursAhead float64) TrendPrediction {
	if len(values) < minTrendPoints {
		return TrendPrediction{Insufficient: true, Message: "Insufficient data for prediction"}
	}

	recent := values[len(values)-minTrendPoints:]
	slope := leastSquaresSlope(recent)
	predicted := round1(recent[len(recent)-1] + slope*hoursAhead)

	direction := DirectionDecreasing
	if slope > 0 {
		direction = DirectionIncreasing
	}
	confidence := ConfidenceMedium
	if len(values) < mediumConfidencePoint {
		confidence = ConfidenceLow
	}

	return TrendPrediction{
		PredictedValue: predicted,
		Direction:      direction,
		RiskLevel:      trendRisk(predicted),
		Confidence:     confidence,
	}
}

func leastSquaresSlope(ys []float64) float64 {
	n := float64(len(ys))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func trendRisk(predicted float64) string {
	switch {
	case predicted < domain.HypoThreshold:
		return "High - Risk of hypoglycemia"
	case predicted > domain.SevereHyperThreshold:
		return "High - Risk of hyperglycemia"
	case predicted > domain.HyperThreshold:
		return "Medium - Above target range"
	default:
		return "Low - Within target range"
	}
}
