package nutrition

import (
	"strings"

	apperrors "github.com/vladimiradmaev/glucose-insights/internal/errors"
)

// UnitGrams is the canonical unit of FoodItem quantities
const UnitGrams = "grams"

// gramsPerUnit converts quantities to grams. Everything except mass units
// is an approximation: cups assume a water-like density, pieces an average
// fruit, slices an average slice of bread.
var gramsPerUnit = map[string]float64{
	"grams":       1,
	"gram":        1,
	"g":           1,
	"kg":          1000,
	"pounds":      453.6,
	"lbs":         453.6,
	"ounces":      28.35,
	"oz":          28.35,
	"cups":        240,
	"cup":         240,
	"tablespoons": 15,
	"tbsp":        15,
	"teaspoons":   5,
	"tsp":         5,
	"pieces":      50,
	"piece":       50,
	"slices":      30,
	"slice":       30,
}

// ToGrams converts quantity in unit to grams. An empty unit means grams.
func ToGrams(quantity float64, unit string) (float64, error) {
	u := strings.ToLower(strings.TrimSpace(unit))
	if u == "" {
		u = UnitGrams
	}
	factor, ok := gramsPerUnit[u]
	if !ok {
		return 0, apperrors.NewUnknownUnitError(unit)
	}
	return quantity * factor, nil
}

// IsApproximate reports whether converting from unit is an estimate
func IsApproximate(unit string) bool {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", "grams", "gram", "g", "kg", "pounds", "lbs", "ounces", "oz":
		return false
	default:
		return true
	}
}
