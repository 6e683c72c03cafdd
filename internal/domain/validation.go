package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/vladimiradmaev/glucose-insights/internal/errors"
)

// mealTotalTolerance absorbs float rounding when comparing declared totals to item sums
const mealTotalTolerance = 0.01

var validate = validator.New()

// Validate checks struct tags and converts the first failure into an
// ErrInvalidInput naming the field.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperrors.NewValidationError(fmt.Sprintf("field %s failed %s validation", fe.Namespace(), fieldRule(fe))).
			WithContext("field", fe.Field())
	}
	return apperrors.Wrap(err, apperrors.ErrorTypeValidation, "INVALID_INPUT", "invalid input")
}

func fieldRule(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// ValidateReading rejects implausible glucose values with ErrInvalidReading
func ValidateReading(r *GlucoseReading) error {
	if r.Value < MinPlausibleGlucose || r.Value > MaxPlausibleGlucose || math.IsNaN(r.Value) {
		return apperrors.NewInvalidReadingError(r.Value)
	}
	return Validate(r)
}

// ValidateMeal checks the meal fields and that every total equals the sum
// over its food items.
func ValidateMeal(m *MealRecord) error {
	m.MealType = strings.ToLower(strings.TrimSpace(m.MealType))
	if err := Validate(m); err != nil {
		return err
	}

	var calories, carbs, protein, fat float64
	for _, item := range m.FoodItems {
		calories += item.Calories
		carbs += item.Carbohydrates
		protein += item.Protein
		fat += item.Fat
	}

	checks := []struct {
		field    string
		declared float64
		computed float64
	}{
		{"total_calories", m.TotalCalories, calories},
		{"total_carbs", m.TotalCarbs, carbs},
		{"total_protein", m.TotalProtein, protein},
		{"total_fat", m.TotalFat, fat},
	}
	for _, c := range checks {
		if math.Abs(c.declared-c.computed) > mealTotalTolerance {
			return apperrors.NewInconsistentMealError(c.field, c.declared, c.computed)
		}
	}
	return nil
}

// ValidateSubject checks the profile and that a custom target range is ordered
func ValidateSubject(s *Subject) error {
	s.Name = strings.TrimSpace(s.Name)
	if err := Validate(s); err != nil {
		return err
	}
	r := s.TargetRange()
	if r.Low >= r.High {
		return apperrors.NewValidationError(fmt.Sprintf("target range %.0f-%.0f is not ordered", r.Low, r.High)).
			WithContext("field", "TargetLow")
	}
	return nil
}
