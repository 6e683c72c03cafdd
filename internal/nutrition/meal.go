package nutrition

import (
	"time"

	"github.com/vladimiradmaev/glucose-insights/internal/domain"
)

const glycemicLoadFactor = 0.7

// Impact levels
const (
	ImpactLow    = "Low"
	ImpactMedium = "Medium"
	ImpactHigh   = "High"
)

// Portion is a requested food and amount before lookup
type Portion struct {
	Name     string  `json:"name" validate:"required"`
	Quantity float64 `json:"quantity" validate:"gt=0"`
	Unit     string  `json:"unit"`
}

// BuildFoodItem resolves the food and scales its nutrition to the portion.
// The returned item is always in grams.
func BuildFoodItem(p Portion) (domain.FoodItem, error) {
	food, err := Resolve(p.Name)
	if err != nil {
		return domain.FoodItem{}, err
	}
	grams, err := ToGrams(p.Quantity, p.Unit)
	if err != nil {
		return domain.FoodItem{}, err
	}

	m := grams / 100
	n := food.Nutrition
	fiber := n.Fiber * m
	sugar := n.Sugar * m
	return domain.FoodItem{
		Name:          food.Name,
		Quantity:      grams,
		Unit:          UnitGrams,
		Calories:      n.Calories * m,
		Carbohydrates: n.Carbohydrates * m,
		Protein:       n.Protein * m,
		Fat:           n.Fat * m,
		Fiber:         &fiber,
		Sugar:         &sugar,
	}, nil
}

// NewMeal builds a meal whose totals are derived from its items
func NewMeal(mealType string, at time.Time, items []domain.FoodItem, notes string) domain.MealRecord {
	meal := domain.MealRecord{
		Timestamp: at,
		MealType:  mealType,
		FoodItems: items,
		Notes:     notes,
	}
	for _, item := range items {
		meal.TotalCalories += item.Calories
		meal.TotalCarbs += item.Carbohydrates
		meal.TotalProtein += item.Protein
		meal.TotalFat += item.Fat
	}
	return meal
}

// MealImpact is the expected glucose effect of a logged meal
type MealImpact struct {
	NetCarbs        float64  `json:"net_carbs"`
	CarbImpact      string   `json:"carb_impact"`
	GlycemicLoad    float64  `json:"glycemic_load_value"`
	GlycemicLevel   string   `json:"glycemic_load"`
	Recommendations []string `json:"recommendations"`
}

// AnalyzeMealImpact rates net carbs (carbs minus fiber) and a simplified
// glycemic load of 0.7 per net gram.
func AnalyzeMealImpact(meal domain.MealRecord) MealImpact {
	fiber := meal.TotalFiber()
	net := meal.TotalCarbs - fiber
	load := net * glycemicLoadFactor

	impact := MealImpact{
		NetCarbs:        net,
		CarbImpact:      ImpactLow,
		GlycemicLoad:    load,
		GlycemicLevel:   ImpactLow,
		Recommendations: []string{},
	}

	switch {
	case net > 60:
		impact.CarbImpact = ImpactHigh
	case net > 30:
		impact.CarbImpact = ImpactMedium
	}
	switch {
	case load > 20:
		impact.GlycemicLevel = ImpactHigh
	case load > 10:
		impact.GlycemicLevel = ImpactMedium
	}

	if impact.CarbImpact == ImpactHigh {
		impact.Recommendations = append(impact.Recommendations, "Consider reducing portion size or choosing lower-carb alternatives")
	}
	if fiber < 5 {
		impact.Recommendations = append(impact.Recommendations, "Add more fiber-rich foods to slow glucose absorption")
	}
	if meal.TotalSugar() > 20 {
		impact.Recommendations = append(impact.Recommendations, "Reduce added sugars in this meal")
	}
	if meal.TotalProtein < 15 {
		impact.Recommendations = append(impact.Recommendations, "Add protein to help stabilize blood sugar")
	}
	return impact
}

// DailyTotals sums a day's nutrition
type DailyTotals struct {
	Calories      float64 `json:"calories"`
	Carbohydrates float64 `json:"carbohydrates"`
	Protein       float64 `json:"protein"`
	Fat           float64 `json:"fat"`
	Fiber         float64 `json:"fiber"`
	Sugar         float64 `json:"sugar"`
}

// DailyNutrition sums the meals that fall on the calendar day of day
func DailyNutrition(meals []domain.MealRecord, day time.Time) DailyTotals {
	key := domain.DayKey(day)
	var totals DailyTotals
	for _, m := range meals {
		if domain.DayKey(m.Timestamp) != key {
			continue
		}
		totals.Calories += m.TotalCalories
		totals.Carbohydrates += m.TotalCarbs
		totals.Protein += m.TotalProtein
		totals.Fat += m.TotalFat
		totals.Fiber += m.TotalFiber()
		totals.Sugar += m.TotalSugar()
	}
	return totals
}

// MealTemplate is a quick suggestion for a meal slot
type MealTemplate struct {
	Name    string  `json:"name"`
	Carbs   float64 `json:"carbs"`
	Protein float64 `json:"protein"`
	Fat     float64 `json:"fat"`
}

var mealTemplates = map[string][]MealTemplate{
	domain.MealBreakfast: {
		{"Greek Yogurt Bowl", 15, 20, 8},
		{"Eggs with Vegetables", 8, 18, 12},
		{"Avocado Toast", 20, 8, 15},
	},
	domain.MealLunch: {
		{"Grilled Chicken Salad", 12, 35, 15},
		{"Salmon with Vegetables", 10, 25, 18},
		{"Turkey Lettuce Wraps", 8, 22, 10},
	},
	domain.MealDinner: {
		{"Baked Fish with Quinoa", 25, 30, 12},
		{"Stir-fried Tofu", 15, 20, 14},
		{"Grilled Steak with Vegetables", 12, 35, 20},
	},
}

// MealSuggestions returns the templates for mealType within maxCarbs
func MealSuggestions(mealType string, maxCarbs float64) []MealTemplate {
	out := []MealTemplate{}
	for _, t := range mealTemplates[mealType] {
		if t.Carbs <= maxCarbs {
			out = append(out, t)
		}
	}
	return out
}
