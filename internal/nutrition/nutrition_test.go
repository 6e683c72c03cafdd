package nutrition

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/glucose-insights/internal/domain"
	apperrors "github.com/vladimiradmaev/glucose-insights/internal/errors"
)

func TestToGrams(t *testing.T) {
	tests := []struct {
		quantity float64
		unit     string
		want     float64
	}{
		{2, "cups", 480},
		{2, "Cups", 480},
		{150, "", 150},
		{1.5, "kg", 1500},
		{1, "lbs", 453.6},
		{2, "oz", 56.7},
		{3, "tbsp", 45},
		{2, "teaspoons", 10},
		{2, "pieces", 100},
		{2, "slices", 60},
	}
	for _, tt := range tests {
		got, err := ToGrams(tt.quantity, tt.unit)
		require.NoError(t, err, tt.unit)
		assert.InDelta(t, tt.want, got, 1e-9, "%v %s", tt.quantity, tt.unit)
	}

	two, err := ToGrams(2, "cups")
	require.NoError(t, err)
	assert.Equal(t, 480.0, two)
}

func TestToGrams_UnknownUnit(t *testing.T) {
	_, err := ToGrams(1, "handful")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnknownUnit))
}

func TestIsApproximate(t *testing.T) {
	assert.False(t, IsApproximate("kg"))
	assert.True(t, IsApproximate("cups"))
}

func TestLookup(t *testing.T) {
	f, err := Lookup("  White   Rice ")
	require.NoError(t, err)
	assert.Equal(t, "white rice", f.Name)
	assert.Equal(t, 28.0, f.Nutrition.Carbohydrates)

	_, err = Lookup("pizza")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrFoodNotFound))
}

func TestSearch(t *testing.T) {
	names := func(fs []Food) []string {
		out := []string{}
		for _, f := range fs {
			out = append(out, f.Name)
		}
		return out
	}

	assert.Equal(t, []string{"white rice", "brown rice"}, names(Search("rice")))
	assert.Equal(t, []string{"chicken breast"}, names(Search("grilled chicken")))
	assert.Empty(t, Search("pizza"))
	assert.NotNil(t, Search(""))
	assert.Len(t, Foods(), 30)
}

func TestBuildFoodItem(t *testing.T) {
	item, err := BuildFoodItem(Portion{Name: "white rice", Quantity: 2, Unit: "cups"})
	require.NoError(t, err)

	assert.Equal(t, 480.0, item.Quantity)
	assert.Equal(t, UnitGrams, item.Unit)
	assert.InDelta(t, 134.4, item.Carbohydrates, 1e-9)
	assert.InDelta(t, 624.0, item.Calories, 1e-9)
	require.NotNil(t, item.Fiber)
	assert.InDelta(t, 1.92, *item.Fiber, 1e-9)
}

func TestBuildFoodItem_FallsBackToSearch(t *testing.T) {
	item, err := BuildFoodItem(Portion{Name: "chicken", Quantity: 100, Unit: "g"})
	require.NoError(t, err)
	assert.Equal(t, "chicken breast", item.Name)
	assert.Equal(t, 31.0, item.Protein)
}

func TestBuildFoodItem_Errors(t *testing.T) {
	_, err := BuildFoodItem(Portion{Name: "pizza", Quantity: 1, Unit: "slices"})
	assert.True(t, errors.Is(err, apperrors.ErrFoodNotFound))

	_, err = BuildFoodItem(Portion{Name: "apple", Quantity: 1, Unit: "bushel"})
	assert.True(t, errors.Is(err, apperrors.ErrUnknownUnit))
}

func TestNewMeal_TotalsMatchItems(t *testing.T) {
	rice, err := BuildFoodItem(Portion{Name: "brown rice", Quantity: 150})
	require.NoError(t, err)
	salmon, err := BuildFoodItem(Portion{Name: "salmon", Quantity: 6, Unit: "oz"})
	require.NoError(t, err)

	meal := NewMeal(domain.MealDinner, time.Now(), []domain.FoodItem{rice, salmon}, "")
	assert.InDelta(t, rice.Carbohydrates+salmon.Carbohydrates, meal.TotalCarbs, 1e-9)
	assert.NoError(t, domain.ValidateMeal(&meal))
}

func TestAnalyzeMealImpact(t *testing.T) {
	rice, err := BuildFoodItem(Portion{Name: "white rice", Quantity: 2, Unit: "cups"})
	require.NoError(t, err)
	meal := NewMeal(domain.MealLunch, time.Now(), []domain.FoodItem{rice}, "")

	impact := AnalyzeMealImpact(meal)
	assert.InDelta(t, 132.48, impact.NetCarbs, 1e-9)
	assert.Equal(t, ImpactHigh, impact.CarbImpact)
	assert.Equal(t, ImpactHigh, impact.GlycemicLevel)
	assert.Equal(t, []string{
		"Consider reducing portion size or choosing lower-carb alternatives",
		"Add more fiber-rich foods to slow glucose absorption",
		"Add protein to help stabilize blood sugar",
	}, impact.Recommendations)

	chicken, err := BuildFoodItem(Portion{Name: "chicken breast", Quantity: 200})
	require.NoError(t, err)
	lentils, err := BuildFoodItem(Portion{Name: "lentils", Quantity: 100})
	require.NoError(t, err)
	balanced := AnalyzeMealImpact(NewMeal(domain.MealDinner, time.Now(), []domain.FoodItem{chicken, lentils}, ""))

	assert.Equal(t, ImpactLow, balanced.CarbImpact)
	assert.Equal(t, ImpactLow, balanced.GlycemicLevel)
	assert.Empty(t, balanced.Recommendations)
}

func TestSubstitutions(t *testing.T) {
	subs, err := Substitutions("white rice")
	require.NoError(t, err)

	var got []string
	for _, s := range subs {
		got = append(got, s.Name)
	}
	assert.Equal(t, []string{"chicken breast", "salmon", "olive oil", "cheese", "eggs"}, got)

	_, err = Substitutions("pizza")
	assert.True(t, errors.Is(err, apperrors.ErrFoodNotFound))
}

func TestDailyNutrition(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	fiber := 3.0
	meals := []domain.MealRecord{
		{Timestamp: day.Add(8 * time.Hour), TotalCarbs: 30, TotalCalories: 300, FoodItems: []domain.FoodItem{{Fiber: &fiber}}},
		{Timestamp: day.Add(13 * time.Hour), TotalCarbs: 45, TotalCalories: 500},
		{Timestamp: day.Add(26 * time.Hour), TotalCarbs: 100, TotalCalories: 900},
	}

	totals := DailyNutrition(meals, day.Add(12*time.Hour))
	assert.Equal(t, 75.0, totals.Carbohydrates)
	assert.Equal(t, 800.0, totals.Calories)
	assert.Equal(t, 3.0, totals.Fiber)
}

func TestMealSuggestions(t *testing.T) {
	got := MealSuggestions(domain.MealBreakfast, 15)
	require.Len(t, got, 2)
	assert.Equal(t, "Greek Yogurt Bowl", got[0].Name)
	assert.Empty(t, MealSuggestions(domain.MealSnack, 100))
}
