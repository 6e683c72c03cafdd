// Package recipes holds the static recipe catalog and ranks it against a
// subject's constraints and detected glucose patterns.
package recipes

import (
	"github.com/vladimiradmaev/glucose-insights/internal/domain"
)

// Catalog returns a fresh copy of the recipe catalog in its fixed order
func Catalog() []domain.Recipe {
	return cloneRecipes(catalog)
}

// HypoglycemiaRecovery returns the recipes used to treat a low
func HypoglycemiaRecovery() []domain.Recipe {
	return cloneRecipes(recoveryRecipes)
}

func cloneRecipes(in []domain.Recipe) []domain.Recipe {
	out := make([]domain.Recipe, len(in))
	for i, r := range in {
		r.Ingredients = append([]string(nil), r.Ingredients...)
		r.Instructions = append([]string(nil), r.Instructions...)
		out[i] = r
	}
	return out
}

var catalog = []domain.Recipe{
	{
		Name:        "Greek Yogurt Parfait",
		Description: "Protein-rich breakfast with berries and nuts",
		Ingredients: []string{
			"1 cup Greek yogurt (unsweetened)",
			"1/2 cup mixed berries",
			"2 tbsp chopped almonds",
			"1 tbsp chia seeds",
			"1 tsp honey (optional)",
		},
		Instructions: []string{
			"Layer Greek yogurt in a bowl",
			"Top with mixed berries",
			"Sprinkle with chopped almonds and chia seeds",
			"Drizzle with honey if desired",
		},
		NutritionalInfo:       domain.NutritionalInfo{Calories: 280, Carbohydrates: 18, Protein: 20, Fat: 12, Fiber: 8},
		DiabetesFriendlyScore: 9.0,
		PrepTime:              5,
		CookTime:              0,
		Servings:              1,
	},
	{
		Name:        "Vegetable Omelet",
		Description: "Low-carb, high-protein breakfast",
		Ingredients: []string{
			"3 large eggs",
			"1/4 cup diced bell peppers",
			"1/4 cup spinach",
			"2 tbsp diced onions",
			"1 oz cheese (feta or cheddar)",
			"1 tbsp olive oil",
			"Salt and pepper to taste",
		},
		Instructions: []string{
			"Heat olive oil in a non-stick pan",
			"Sauté vegetables until tender",
			"Beat eggs and pour over vegetables",
			"Add cheese and cook until set",
			"Season with salt and pepper",
		},
		NutritionalInfo:       domain.NutritionalInfo{Calories: 320, Carbohydrates: 8, Protein: 22, Fat: 22, Fiber: 2},
		DiabetesFriendlyScore: 9.5,
		PrepTime:              10,
		CookTime:              8,
		Servings:              1,
	},
	{
		Name:        "Grilled Chicken Caesar Salad",
		Description: "Protein-rich salad with healthy fats",
		Ingredients: []string{
			"6 oz grilled chicken breast",
			"2 cups romaine lettuce",
			"1/4 cup parmesan cheese",
			"2 tbsp Caesar dressing (low-carb)",
			"1 tbsp olive oil",
			"1 tsp lemon juice",
		},
		Instructions: []string{
			"Grill chicken breast and slice",
			"Toss lettuce with dressing and olive oil",
			"Top with chicken and parmesan",
			"Drizzle with lemon juice",
		},
		NutritionalInfo:       domain.NutritionalInfo{Calories: 380, Carbohydrates: 6, Protein: 45, Fat: 18, Fiber: 3},
		DiabetesFriendlyScore: 9.0,
		PrepTime:              15,
		CookTime:              12,
		Servings:              1,
	},
	{
		Name:        "Salmon with Roasted Vegetables",
		Description: "Omega-3 rich meal with low glycemic vegetables",
		Ingredients: []string{
			"6 oz salmon fillet",
			"1 cup broccoli florets",
			"1 cup cauliflower florets",
			"1/2 cup bell peppers",
			"2 tbsp olive oil",
			"1 tsp herbs (thyme, rosemary)",
			"Salt and pepper to taste",
		},
		Instructions: []string{
			"Preheat oven to 400°F",
			"Season salmon with herbs, salt, and pepper",
			"Toss vegetables with olive oil and seasonings",
			"Roast vegetables for 20 minutes",
			"Add salmon and cook for 12-15 minutes",
		},
		NutritionalInfo:       domain.NutritionalInfo{Calories: 420, Carbohydrates: 12, Protein: 38, Fat: 24, Fiber: 6},
		DiabetesFriendlyScore: 9.5,
		PrepTime:              15,
		CookTime:              25,
		Servings:              1,
	},
	{
		Name:        "Zucchini Noodles with Turkey Meatballs",
		Description: "Low-carb pasta alternative with lean protein",
		Ingredients: []string{
			"2 large zucchinis (spiralized)",
			"1 lb ground turkey",
			"1/2 cup marinara sauce (low-sugar)",
			"1/4 cup parmesan cheese",
			"1 egg",
			"2 tbsp breadcrumbs (almond flour)",
			"1 tsp Italian seasoning",
			"Salt and pepper to taste",
		},
		Instructions: []string{
			"Mix turkey with egg, breadcrumbs, and seasonings",
			"Form into meatballs and bake at 375°F for 20 minutes",
			"Sauté zucchini noodles for 3-4 minutes",
			"Top with marinara sauce and meatballs",
			"Sprinkle with parmesan cheese",
		},
		NutritionalInfo:       domain.NutritionalInfo{Calories: 380, Carbohydrates: 15, Protein: 35, Fat: 18, Fiber: 4},
		DiabetesFriendlyScore: 8.5,
		PrepTime:              20,
		CookTime:              25,
		Servings:              2,
	},
	{
		Name:        "Baked Cod with Asparagus",
		Description: "Light, protein-rich dinner",
		Ingredients: []string{
			"6 oz cod fillet",
			"1 bunch asparagus",
			"2 tbsp olive oil",
			"1 tsp garlic powder",
			"1 tsp lemon zest",
			"1 tbsp fresh dill",
			"Salt and pepper to taste",
		},
		Instructions: []string{
			"Preheat oven to 425°F",
			"Season cod with garlic powder, salt, and pepper",
			"Toss asparagus with olive oil and seasonings",
			"Bake cod for 12-15 minutes",
			"Add asparagus and cook for 8-10 minutes",
			"Garnish with lemon zest and dill",
		},
		NutritionalInfo:       domain.NutritionalInfo{Calories: 280, Carbohydrates: 8, Protein: 32, Fat: 12, Fiber: 4},
		DiabetesFriendlyScore: 9.5,
		PrepTime:              10,
		CookTime:              20,
		Servings:              1,
	},
	{
		Name:        "Almond Butter Celery Sticks",
		Description: "Quick, protein-rich snack",
		Ingredients: []string{
			"4 celery stalks",
			"2 tbsp almond butter",
			"1 tsp chia seeds",
		},
		Instructions: []string{
			"Cut celery into sticks",
			"Spread almond butter on celery",
			"Sprinkle with chia seeds",
		},
		NutritionalInfo:       domain.NutritionalInfo{Calories: 180, Carbohydrates: 8, Protein: 8, Fat: 14, Fiber: 6},
		DiabetesFriendlyScore: 9.0,
		PrepTime:              5,
		CookTime:              0,
		Servings:              1,
	},
	{
		Name:        "Cheese and Vegetable Plate",
		Description: "Low-carb, high-protein snack",
		Ingredients: []string{
			"2 oz cheddar cheese",
			"1/2 cup cucumber slices",
			"1/2 cup bell pepper strips",
			"1/4 cup cherry tomatoes",
			"2 tbsp hummus",
		},
		Instructions: []string{
			"Arrange cheese and vegetables on a plate",
			"Serve with hummus for dipping",
		},
		NutritionalInfo:       domain.NutritionalInfo{Calories: 220, Carbohydrates: 12, Protein: 14, Fat: 14, Fiber: 4},
		DiabetesFriendlyScore: 8.5,
		PrepTime:              5,
		CookTime:              0,
		Servings:              1,
	},
	{
		Name:        "Quinoa and Black Bean Bowl",
		Description: "High-fiber, plant-based protein meal",
		Ingredients: []string{
			"1/2 cup cooked quinoa",
			"1/2 cup black beans",
			"1/4 cup diced tomatoes",
			"1/4 cup diced avocado",
			"2 tbsp cilantro",
			"1 tbsp lime juice",
			"1 tsp cumin",
			"Salt to taste",
		},
		Instructions: []string{
			"Cook quinoa according to package directions",
			"Mix quinoa with black beans",
			"Add tomatoes, avocado, and cilantro",
			"Season with lime juice, cumin, and salt",
		},
		NutritionalInfo:       domain.NutritionalInfo{Calories: 320, Carbohydrates: 45, Protein: 14, Fat: 8, Fiber: 12},
		DiabetesFriendlyScore: 8.0,
		PrepTime:              10,
		CookTime:              15,
		Servings:              1,
	},
	{
		Name:        "Lentil and Vegetable Soup",
		Description: "High-fiber, low-glycemic soup",
		Ingredients: []string{
			"1/2 cup red lentils",
			"1 cup vegetable broth",
			"1/2 cup diced carrots",
			"1/2 cup diced celery",
			"1/4 cup diced onions",
			"1 tsp garlic",
			"1 tsp turmeric",
			"Salt and pepper to taste",
		},
		Instructions: []string{
			"Sauté onions and garlic until soft",
			"Add carrots and celery, cook for 5 minutes",
			"Add lentils, broth, and seasonings",
			"Simmer for 20-25 minutes until lentils are tender",
		},
		NutritionalInfo:       domain.NutritionalInfo{Calories: 280, Carbohydrates: 45, Protein: 18, Fat: 2, Fiber: 15},
		DiabetesFriendlyScore: 8.5,
		PrepTime:              10,
		CookTime:              30,
		Servings:              2,
	},
}

var recoveryRecipes = []domain.Recipe{
	{
		Name:        "Quick Glucose Recovery",
		Description: "Fast-acting carbs for hypoglycemia treatment",
		Ingredients: []string{
			"4 oz fruit juice",
			"1 tbsp honey",
			"2 glucose tablets (if available)",
		},
		Instructions: []string{
			"Drink fruit juice immediately",
			"Follow with honey if needed",
			"Wait 15 minutes and recheck blood sugar",
		},
		NutritionalInfo:       domain.NutritionalInfo{Calories: 120, Carbohydrates: 30},
		DiabetesFriendlyScore: 10.0,
		PrepTime:              1,
		Servings:              1,
	},
	{
		Name:        "Stable Recovery Snack",
		Description: "Protein + carb combo to prevent rebound",
		Ingredients: []string{
			"1 slice whole grain bread",
			"1 tbsp peanut butter",
			"1 small apple",
		},
		Instructions: []string{
			"Spread peanut butter on bread",
			"Eat with apple slices",
			"Monitor blood sugar for 1 hour",
		},
		NutritionalInfo:       domain.NutritionalInfo{Calories: 280, Carbohydrates: 35, Protein: 12, Fat: 12, Fiber: 6},
		DiabetesFriendlyScore: 9.0,
		PrepTime:              2,
		Servings:              1,
	},
}
