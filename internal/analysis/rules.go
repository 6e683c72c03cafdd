package analysis

import (
	"github.com/vladimiradmaev/glucose-insights/internal/domain"
)

const (
	variabilityThreshold       = 50.0
	severeVariabilityThreshold = 80.0
	severeDawnMean             = 200.0
	severePostMealMean         = 250.0
	severeNocturnalMean        = 50.0
)

type patternText struct {
	causes          []string
	recommendations []string
}

var patternCatalog = map[string]patternText{
	domain.PatternDawnPhenomenon: {
		causes: []string{
			"Natural hormone release in early morning",
			"Insufficient overnight insulin",
			"High-carb dinner the night before",
		},
		recommendations: []string{
			"Consider adjusting overnight insulin timing",
			"Eat a low-carb dinner",
			"Monitor blood sugar more frequently in the morning",
		},
	},
	domain.PatternPostMealHyper: {
		causes: []string{
			"Insufficient pre-meal insulin",
			"High-carb meals",
			"Delayed insulin administration",
		},
		recommendations: []string{
			"Take insulin 15-20 minutes before meals",
			"Choose lower-carb meal options",
			"Consider insulin-to-carb ratio adjustments",
		},
	},
	domain.PatternNocturnalHypo: {
		causes: []string{
			"Too much insulin at dinner",
			"Insufficient bedtime snack",
			"Exercise without carb adjustment",
		},
		recommendations: []string{
			"Reduce dinner insulin dose",
			"Eat a protein-rich bedtime snack",
			"Monitor blood sugar before bed",
		},
	},
	domain.PatternHighVariability: {
		causes: []string{
			"Inconsistent meal timing",
			"Variable insulin absorption",
			"Stress and illness",
		},
		recommendations: []string{
			"Maintain consistent meal timing",
			"Rotate injection sites regularly",
			"Consider continuous glucose monitoring",
		},
	},
	domain.PatternExerciseInducedHypo: {
		causes: []string{
			"Insufficient carb intake before exercise",
			"Too much insulin before exercise",
			"Long-duration exercise without fuel",
		},
		recommendations: []string{
			"Eat carbs before exercise",
			"Reduce insulin before exercise",
			"Monitor blood sugar during exercise",
		},
	},
}

func newPattern(patternType, frequency, severity string) domain.Pattern {
	text := patternCatalog[patternType]
	return domain.Pattern{
		PatternType:     patternType,
		Frequency:       frequency,
		Severity:        severity,
		PotentialCauses: append([]string(nil), text.causes...),
		Recommendations: append([]string(nil), text.recommendations...),
	}
}

// Rule evaluates one trigger condition against the feature table
type Rule struct {
	PatternType string
	Evaluate    func(table *FeatureTable, target domain.TargetRange) (domain.Pattern, bool)
}

// Battery is the fixed rule order; detected patterns are reported in it
var Battery = []Rule{
	{PatternType: domain.PatternDawnPhenomenon, Evaluate: dawnPhenomenon},
	{PatternType: domain.PatternPostMealHyper, Evaluate: postMealHyperglycemia},
	{PatternType: domain.PatternNocturnalHypo, Evaluate: nocturnalHypoglycemia},
	{PatternType: domain.PatternHighVariability, Evaluate: highVariability},
	{PatternType: domain.PatternExerciseInducedHypo, Evaluate: exerciseInducedHypoglycemia},
}

// DetectPatterns runs every rule of the battery and returns those that fired
func DetectPatterns(table *FeatureTable, target domain.TargetRange) []domain.Pattern {
	patterns := []domain.Pattern{}
	if table == nil || table.Len() == 0 {
		return patterns
	}
	for _, rule := range Battery {
		if p, ok := rule.Evaluate(table, target); ok {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

func dawnPhenomenon(table *FeatureTable, target domain.TargetRange) (domain.Pattern, bool) {
	mean, ok := Mean(table.ValuesWhere(func(r FeatureRow) bool { return r.Buckets.Morning }))
	if !ok || mean <= target.High {
		return domain.Pattern{}, false
	}
	severity := domain.SeverityModerate
	if mean >= severeDawnMean {
		severity = domain.SeveritySevere
	}
	return newPattern(domain.PatternDawnPhenomenon, domain.FrequencyDaily, severity), true
}

func postMealHyperglycemia(table *FeatureTable, target domain.TargetRange) (domain.Pattern, bool) {
	mean, ok := Mean(table.ValuesWhere(func(r FeatureRow) bool { return r.Buckets.Afternoon }))
	if !ok || mean <= target.High {
		return domain.Pattern{}, false
	}
	severity := domain.SeverityModerate
	if mean >= severePostMealMean {
		severity = domain.SeveritySevere
	}
	return newPattern(domain.PatternPostMealHyper, domain.FrequencyDaily, severity), true
}

func nocturnalHypoglycemia(table *FeatureTable, target domain.TargetRange) (domain.Pattern, bool) {
	mean, ok := Mean(table.ValuesWhere(func(r FeatureRow) bool { return r.Buckets.Night }))
	if !ok || mean >= target.Low {
		return domain.Pattern{}, false
	}
	severity := domain.SeverityModerate
	if mean <= severeNocturnalMean {
		severity = domain.SeveritySevere
	}
	return newPattern(domain.PatternNocturnalHypo, domain.FrequencyOccasional, severity), true
}

func highVariability(table *FeatureTable, _ domain.TargetRange) (domain.Pattern, bool) {
	std, ok := StdDev(table.Values())
	if !ok || std <= variabilityThreshold {
		return domain.Pattern{}, false
	}
	severity := domain.SeverityModerate
	if std >= severeVariabilityThreshold {
		severity = domain.SeveritySevere
	}
	return newPattern(domain.PatternHighVariability, domain.FrequencyDaily, severity), true
}

func exerciseInducedHypoglycemia(table *FeatureTable, target domain.TargetRange) (domain.Pattern, bool) {
	if !table.HasHealth {
		return domain.Pattern{}, false
	}
	mean, ok := Mean(table.ValuesWhere(func(r FeatureRow) bool { return r.HadWorkoutToday }))
	if !ok || mean >= target.Low {
		return domain.Pattern{}, false
	}
	return newPattern(domain.PatternExerciseInducedHypo, domain.FrequencyOccasional, domain.SeverityModerate), true
}
