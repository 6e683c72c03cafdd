package services

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vladimiradmaev/glucose-insights/internal/analysis"
	"github.com/vladimiradmaev/glucose-insights/internal/domain"
	"github.com/vladimiradmaev/glucose-insights/internal/utils"
)

// Extraction sources
const (
	ChartSourceJSON = "json"
	ChartSourceText = "text"
	ChartSourceNone = "none"
)

const chartNotes = "Extracted from chart image"

// bare numbers are assumed to be readings two hours apart
const barePointSpacing = 2 * time.Hour

var (
	timeValueRe = regexp.MustCompile(`\b(\d{1,2}:\d{2})\s+(\d{2,3})\b`)
	unitValueRe = regexp.MustCompile(`(?i)\b(\d{2,3})\s*mg/dl`)
	bareValueRe = regexp.MustCompile(`\b(\d{2,3})\b`)
)

type chartPayload struct {
	Readings []struct {
		Time  string  `json:"time"`
		Value float64 `json:"value"`
	} `json:"readings"`
}

type chartPoint struct {
	at    time.Time
	value float64
}

// parseChartText turns a model response into chart points relative to ref.
// A JSON payload wins; otherwise time-value pairs, then "N mg/dL" values,
// then bare 2-3 digit numbers are tried, stopping at the first that matches.
func parseChartText(text string, ref time.Time) ([]chartPoint, string) {
	if points := parseChartJSON(text, ref); len(points) > 0 {
		return points, ChartSourceJSON
	}

	var points []chartPoint
	for _, m := range timeValueRe.FindAllStringSubmatch(text, -1) {
		at, err := clockBefore(ref, m[1])
		if err != nil {
			continue
		}
		v, _ := strconv.ParseFloat(m[2], 64)
		points = append(points, chartPoint{at: at, value: analysis.ClampChartValue(v)})
	}
	if len(points) == 0 {
		for i, m := range unitValueRe.FindAllStringSubmatch(text, -1) {
			v, _ := strconv.ParseFloat(m[1], 64)
			points = append(points, chartPoint{
				at:    ref.Add(-time.Duration(i) * barePointSpacing),
				value: analysis.ClampChartValue(v),
			})
		}
	}
	if len(points) > 0 {
		return sortPoints(points), ChartSourceText
	}

	// bare numbers are noisy, so out-of-range ones are dropped rather than clamped
	i := 0
	for _, m := range bareValueRe.FindAllStringSubmatch(text, -1) {
		v, _ := strconv.ParseFloat(m[1], 64)
		if v < domain.ChartMinGlucose || v > domain.ChartMaxGlucose {
			continue
		}
		points = append(points, chartPoint{at: ref.Add(-time.Duration(i) * barePointSpacing), value: v})
		i++
	}
	if len(points) == 0 {
		return nil, ChartSourceNone
	}
	return sortPoints(points), ChartSourceText
}

func parseChartJSON(text string, ref time.Time) []chartPoint {
	raw := extractJSON(text)
	if raw == "" {
		return nil
	}
	var payload chartPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil
	}

	var points []chartPoint
	for _, r := range payload.Readings {
		at, err := clockBefore(ref, r.Time)
		if err != nil || r.Value <= 0 {
			continue
		}
		points = append(points, chartPoint{at: at, value: analysis.ClampChartValue(r.Value)})
	}
	return sortPoints(points)
}

// clockBefore places an HH:MM time on ref's day, or the day before when
// that would be after ref
func clockBefore(ref time.Time, clock string) (time.Time, error) {
	at, err := utils.AtClock(ref, clock)
	if err != nil {
		return time.Time{}, err
	}
	if at.After(ref) {
		at = at.AddDate(0, 0, -1)
	}
	return at, nil
}

func sortPoints(points []chartPoint) []chartPoint {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].at.Before(points[j].at)
	})
	return points
}

// extractJSON returns the outermost {...} of s, which may be wrapped in a
// code block or prose
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(s, "}")
	if end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}
