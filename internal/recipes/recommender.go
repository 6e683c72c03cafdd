package recipes

import (
	"sort"
	"strings"

	"github.com/vladimiradmaev/glucose-insights/internal/domain"
)

const (
	// MealTypeAny disables the meal-type filter
	MealTypeAny = "any"

	DefaultCarbCeiling = 30.0
	maxRecommendations = 5
)

var vegetarianWords = []string{"chicken", "beef", "pork", "turkey", "fish", "salmon", "cod"}

// restrictionWords lists, per dietary restriction, words whose presence in a
// recipe's ingredients or instructions excludes it
var restrictionWords = map[string][]string{
	"vegetarian":  vegetarianWords,
	"vegan":       append(append([]string{}, vegetarianWords...), "cheese", "yogurt", "egg", "milk", "butter"),
	"gluten-free": {"bread", "pasta", "flour", "wheat"},
	"dairy-free":  {"cheese", "milk", "yogurt", "butter"},
	"nut-free":    {"almond", "walnut", "peanut", "cashew"},
}

// Request holds the hard constraints and optional patterns for ranking
type Request struct {
	CarbCeiling  float64
	MealType     string
	Restrictions []string
	Patterns     []domain.Pattern
}

// Recommender ranks a fixed catalog
type Recommender struct {
	catalog []domain.Recipe
}

// NewRecommender uses the built-in catalog
func NewRecommender() *Recommender {
	return &Recommender{catalog: Catalog()}
}

// NewRecommenderWithCatalog ranks the given recipes instead of the built-in ones
func NewRecommenderWithCatalog(catalog []domain.Recipe) *Recommender {
	return &Recommender{catalog: cloneRecipes(catalog)}
}

type scoredRecipe struct {
	recipe domain.Recipe
	score  float64
}

// Recommend filters by carb ceiling, meal type and restrictions, then
// returns the top five by friendliness score plus pattern bonus. Ties keep
// catalog order. A negative or NaN ceiling uses DefaultCarbCeiling.
func (r *Recommender) Recommend(req Request) []domain.Recipe {
	mealType := strings.ToLower(strings.TrimSpace(req.MealType))
	if mealType == "" {
		mealType = MealTypeAny
	}
	ceiling := req.CarbCeiling
	if !(ceiling >= 0) {
		ceiling = DefaultCarbCeiling
	}

	scored := make([]scoredRecipe, 0, len(r.catalog))
	for _, recipe := range r.catalog {
		if recipe.NutritionalInfo.Carbohydrates > ceiling {
			continue
		}
		if mealType != MealTypeAny && !strings.Contains(strings.ToLower(recipe.Name), mealType) {
			continue
		}
		if violatesRestrictions(recipe, req.Restrictions) {
			continue
		}
		scored = append(scored, scoredRecipe{
			recipe: recipe,
			score:  recipe.DiabetesFriendlyScore + patternBonus(recipe, req.Patterns),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > maxRecommendations {
		scored = scored[:maxRecommendations]
	}
	out := make([]domain.Recipe, len(scored))
	for i, s := range scored {
		out[i] = s.recipe
	}
	return cloneRecipes(out)
}

func violatesRestrictions(recipe domain.Recipe, restrictions []string) bool {
	if len(restrictions) == 0 {
		return false
	}
	text := strings.ToLower(strings.Join(append(append([]string{}, recipe.Ingredients...), recipe.Instructions...), " "))
	for _, restriction := range restrictions {
		for _, word := range restrictionWords[strings.ToLower(strings.TrimSpace(restriction))] {
			if strings.Contains(text, word) {
				return true
			}
		}
	}
	return false
}

func patternBonus(recipe domain.Recipe, patterns []domain.Pattern) float64 {
	info := recipe.NutritionalInfo
	var bonus float64
	for _, p := range patterns {
		switch p.PatternType {
		case domain.PatternDawnPhenomenon:
			if info.Carbohydrates < 20 {
				bonus++
			}
		case domain.PatternPostMealHyper:
			if info.Fiber > 5 {
				bonus++
			}
			if info.Carbohydrates < 25 {
				bonus++
			}
		case domain.PatternNocturnalHypo:
			if info.Protein > 15 {
				bonus++
			}
		case domain.PatternHighVariability:
			if info.Protein > 10 && info.Fat > 5 {
				bonus++
			}
		}
	}
	return bonus
}
