// Package nutrition provides the typed food lookup table, unit conversion
// and meal-level nutrition heuristics.
package nutrition

import (
	"sort"
	"strings"

	apperrors "github.com/vladimiradmaev/glucose-insights/internal/errors"
)

const (
	maxSearchResults = 10
	maxSubstitutions = 5
)

// Per100g is the nutrition of 100 grams of a food
type Per100g struct {
	Calories      float64 `json:"calories"`
	Carbohydrates float64 `json:"carbohydrates"`
	Protein       float64 `json:"protein"`
	Fat           float64 `json:"fat"`
	Fiber         float64 `json:"fiber"`
	Sugar         float64 `json:"sugar"`
}

// Food is one entry of the lookup table
type Food struct {
	Name      string  `json:"name"`
	Nutrition Per100g `json:"nutrition"`
}

// foods is kept in a fixed order so searches are deterministic
var foods = []Food{
	{"white rice", Per100g{130, 28, 2.7, 0.3, 0.4, 0.1}},
	{"brown rice", Per100g{112, 22, 2.6, 0.9, 1.8, 0.4}},
	{"quinoa", Per100g{120, 22, 4.4, 1.9, 2.8, 0.9}},
	{"oats", Per100g{154, 27, 5.3, 2.6, 4.0, 1.0}},
	{"whole wheat bread", Per100g{81, 13.8, 4.0, 1.1, 1.9, 1.4}},
	{"white bread", Per100g{75, 14.2, 2.4, 0.9, 0.6, 1.4}},

	{"chicken breast", Per100g{165, 0, 31, 3.6, 0, 0}},
	{"salmon", Per100g{208, 0, 25, 12, 0, 0}},
	{"eggs", Per100g{155, 1.1, 13, 11, 0, 1.1}},
	{"tofu", Per100g{76, 1.9, 8, 4.8, 0.3, 0.6}},
	{"greek yogurt", Per100g{100, 6, 10, 0.4, 0, 6}},
	{"cottage cheese", Per100g{98, 3.4, 11, 4.3, 0, 2.7}},

	{"broccoli", Per100g{34, 7, 2.8, 0.4, 2.6, 1.5}},
	{"spinach", Per100g{23, 3.6, 2.9, 0.4, 2.2, 0.4}},
	{"carrots", Per100g{41, 10, 0.9, 0.2, 2.8, 4.7}},
	{"sweet potato", Per100g{86, 20, 1.6, 0.1, 3.0, 4.2}},
	{"bell peppers", Per100g{31, 7, 1.0, 0.3, 2.5, 4.2}},

	{"apple", Per100g{52, 14, 0.3, 0.2, 2.4, 10.4}},
	{"banana", Per100g{89, 23, 1.1, 0.3, 2.6, 12.2}},
	{"berries", Per100g{57, 14, 0.7, 0.3, 2.4, 10}},
	{"orange", Per100g{47, 12, 0.9, 0.1, 2.4, 9.4}},

	{"olive oil", Per100g{884, 0, 0, 100, 0, 0}},
	{"avocado", Per100g{160, 9, 2, 15, 7, 0.7}},
	{"almonds", Per100g{579, 22, 21, 50, 12, 4.4}},
	{"walnuts", Per100g{654, 14, 15, 65, 6.7, 2.6}},

	{"milk", Per100g{42, 5, 3.4, 1, 0, 5}},
	{"cheese", Per100g{113, 1, 7, 9, 0, 0.1}},

	{"black beans", Per100g{132, 24, 8.9, 0.5, 8.7, 0.3}},
	{"lentils", Per100g{116, 20, 9, 0.4, 7.9, 1.8}},
	{"chickpeas", Per100g{164, 27, 8.9, 2.6, 7.6, 4.8}},
}

var foodIndex = func() map[string]int {
	idx := make(map[string]int, len(foods))
	for i, f := range foods {
		idx[f.Name] = i
	}
	return idx
}()

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Foods returns the whole table in its fixed order
func Foods() []Food {
	return append([]Food(nil), foods...)
}

// Lookup finds a food by exact normalized name
func Lookup(name string) (Food, error) {
	if i, ok := foodIndex[normalizeName(name)]; ok {
		return foods[i], nil
	}
	return Food{}, apperrors.NewFoodNotFoundError(name)
}

// Search returns foods whose name contains the query or any of its words,
// at most ten, in table order. An empty result is not an error.
func Search(query string) []Food {
	q := normalizeName(query)
	if q == "" {
		return []Food{}
	}
	words := strings.Fields(q)

	results := []Food{}
	for _, f := range foods {
		if matches(f.Name, q, words) {
			results = append(results, f)
			if len(results) == maxSearchResults {
				break
			}
		}
	}
	return results
}

func matches(name, query string, words []string) bool {
	if strings.Contains(name, query) {
		return true
	}
	for _, w := range words {
		if strings.Contains(name, w) {
			return true
		}
	}
	return false
}

// Resolve tries an exact lookup, then the first search hit
func Resolve(name string) (Food, error) {
	if f, err := Lookup(name); err == nil {
		return f, nil
	}
	if hits := Search(name); len(hits) > 0 {
		return hits[0], nil
	}
	return Food{}, apperrors.NewFoodNotFoundError(name)
}

// Substitutions lists up to five foods with fewer carbs than name, largest
// reduction first.
func Substitutions(name string) ([]Food, error) {
	current, err := Lookup(name)
	if err != nil {
		return nil, err
	}

	var lower []Food
	for _, f := range foods {
		if f.Nutrition.Carbohydrates < current.Nutrition.Carbohydrates {
			lower = append(lower, f)
		}
	}
	sort.SliceStable(lower, func(i, j int) bool {
		return lower[i].Nutrition.Carbohydrates < lower[j].Nutrition.Carbohydrates
	})
	if len(lower) > maxSubstitutions {
		lower = lower[:maxSubstitutions]
	}
	if lower == nil {
		lower = []Food{}
	}
	return lower, nil
}
