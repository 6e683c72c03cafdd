// Package analysis derives features, patterns and recommendations from a
// subject's glucose history. Everything here is a pure function of its input.
package analysis

import (
	"math"

	"github.com/vladimiradmaev/glucose-insights/internal/domain"
)

// TimeInRange is the single time-in-range formula used across the service:
// 100 * count(low <= v <= high) / N. Empty input yields 0.
func TimeInRange(values []float64, target domain.TargetRange) float64 {
	if len(values) == 0 {
		return 0
	}
	in := 0
	for _, v := range values {
		if target.Contains(v) {
			in++
		}
	}
	return float64(in) / float64(len(values)) * 100
}

// Mean returns the arithmetic mean; ok is false for empty input
func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// StdDev returns the sample standard deviation (n-1 denominator); ok is
// false with fewer than two values.
func StdDev(values []float64) (float64, bool) {
	if len(values) < 2 {
		return 0, false
	}
	mean, _ := Mean(values)
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)-1)), true
}

// MinMax returns the smallest and largest value; ok is false for empty input
func MinMax(values []float64) (min, max float64, ok bool) {
	if len(values) == 0 {
		return 0, 0, false
	}
	min, max = values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, true
}

func countWhere(values []float64, pred func(float64) bool) int {
	n := 0
	for _, v := range values {
		if pred(v) {
			n++
		}
	}
	return n
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
