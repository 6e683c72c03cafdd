package recipes

import (
	"fmt"

	"github.com/vladimiradmaev/glucose-insights/internal/domain"
)

const (
	planTopChoices   = 3
	snackCarbCeiling = 15.0
)

// MealSlot names a column of the meal plan
type MealSlot struct {
	Name        string
	CarbCeiling float64
}

// PlanSlots are the meal-plan columns in display order
var PlanSlots = []MealSlot{
	{Name: domain.MealBreakfast, CarbCeiling: DefaultCarbCeiling},
	{Name: domain.MealLunch, CarbCeiling: DefaultCarbCeiling},
	{Name: domain.MealDinner, CarbCeiling: DefaultCarbCeiling},
	{Name: "snacks", CarbCeiling: snackCarbCeiling},
}

// MealPlan maps slot name to one recipe per day
type MealPlan map[string][]domain.Recipe

// MealPlan picks, for every slot and day, one of the slot's top three
// recommendations, rotating by day. A slot whose name matches no recipe
// falls back to the whole catalog under the same carb ceiling.
func (r *Recommender) MealPlan(days int, restrictions []string) MealPlan {
	plan := make(MealPlan, len(PlanSlots))
	for _, slot := range PlanSlots {
		req := Request{CarbCeiling: slot.CarbCeiling, MealType: slot.Name, Restrictions: restrictions}
		choices := r.Recommend(req)
		if len(choices) == 0 {
			req.MealType = MealTypeAny
			choices = r.Recommend(req)
		}
		if len(choices) > planTopChoices {
			choices = choices[:planTopChoices]
		}

		plan[slot.Name] = []domain.Recipe{}
		if len(choices) == 0 {
			continue
		}
		for day := 0; day < days; day++ {
			plan[slot.Name] = append(plan[slot.Name], choices[day%len(choices)])
		}
	}
	return plan
}

// Impact is the estimated glucose effect of eating one serving
type Impact struct {
	NetCarbs          float64  `json:"net_carbs"`
	EstimatedRise     float64  `json:"estimated_blood_sugar_rise"`
	PredictedValue    float64  `json:"predicted_blood_sugar"`
	RiskLevel         string   `json:"risk_level"`
	Recommendations   []string `json:"recommendations"`
	InsulinSuggestion string   `json:"insulin_suggestion"`
}

// AnalyzeImpact estimates a rise of 3 mg/dL per gram of net carbs. The
// insulin suggestion is advisory text only.
func AnalyzeImpact(recipe domain.Recipe, current float64) Impact {
	info := recipe.NutritionalInfo
	net := info.Carbohydrates - info.Fiber
	rise := net * 3
	predicted := current + rise

	var risk string
	switch {
	case predicted > domain.SevereHyperThreshold:
		risk = "High - May cause dangerous hyperglycemia"
	case predicted > domain.HyperThreshold:
		risk = "Medium - Above target range"
	case predicted < domain.HypoThreshold:
		risk = "High - May cause hypoglycemia"
	default:
		risk = "Low - Within safe range"
	}

	recs := []string{}
	if net > 30 {
		recs = append(recs, "Consider reducing portion size")
	}
	if info.Fiber < 5 {
		recs = append(recs, "Add more fiber-rich foods")
	}
	if info.Protein < 15 {
		recs = append(recs, "Add protein to slow glucose absorption")
	}

	return Impact{
		NetCarbs:          net,
		EstimatedRise:     rise,
		PredictedValue:    predicted,
		RiskLevel:         risk,
		Recommendations:   recs,
		InsulinSuggestion: fmt.Sprintf("Consider %.1f units of rapid-acting insulin", net*0.1),
	}
}
