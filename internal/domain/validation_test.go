package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vladimiradmaev/glucose-insights/internal/errors"
)

func intPtr(v int) *int { return &v }

func TestValidateReading(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		value   float64
		wantErr error
	}{
		{"lower bound", 20, nil},
		{"upper bound", 600, nil},
		{"typical", 120, nil},
		{"negative", -5, apperrors.ErrInvalidReading},
		{"below plausible", 19.9, apperrors.ErrInvalidReading},
		{"above plausible", 601, apperrors.ErrInvalidReading},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReading(&GlucoseReading{Timestamp: now, Value: tt.value})
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestValidateReading_RequiresTimestamp(t *testing.T) {
	err := ValidateReading(&GlucoseReading{Value: 100})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestValidate_HealthStatStress(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, Validate(&HealthStat{Date: day, StressLevel: intPtr(10)}))
	assert.NoError(t, Validate(&HealthStat{Date: day}))

	err := Validate(&HealthStat{Date: day, StressLevel: intPtr(11)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "StressLevel")

	err = Validate(&HealthStat{Date: day, StressLevel: intPtr(0)})
	assert.Error(t, err)
}

func TestValidate_InsulinUnits(t *testing.T) {
	now := time.Now()
	assert.NoError(t, Validate(&InsulinDose{Timestamp: now, InsulinType: "rapid", Units: 4}))
	assert.Error(t, Validate(&InsulinDose{Timestamp: now, InsulinType: "rapid", Units: 0}))
}

func TestValidateMeal(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []FoodItem{
		{Name: "rice", Quantity: 100, Unit: "grams", Calories: 130, Carbohydrates: 28, Protein: 2.7, Fat: 0.3},
		{Name: "chicken", Quantity: 100, Unit: "grams", Calories: 165, Carbohydrates: 0, Protein: 31, Fat: 3.6},
	}

	t.Run("consistent totals", func(t *testing.T) {
		m := &MealRecord{Timestamp: now, MealType: "Lunch", FoodItems: items,
			TotalCalories: 295, TotalCarbs: 28, TotalProtein: 33.7, TotalFat: 3.9}
		require.NoError(t, ValidateMeal(m))
		assert.Equal(t, MealLunch, m.MealType)
	})

	t.Run("carbs do not match items", func(t *testing.T) {
		m := &MealRecord{Timestamp: now, MealType: "lunch", FoodItems: items,
			TotalCalories: 295, TotalCarbs: 40, TotalProtein: 33.7, TotalFat: 3.9}
		err := ValidateMeal(m)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrInconsistentMeal))
	})

	t.Run("unknown meal type", func(t *testing.T) {
		m := &MealRecord{Timestamp: now, MealType: "brunch"}
		err := ValidateMeal(m)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	})
}

func TestValidateSubject(t *testing.T) {
	assert.NoError(t, ValidateSubject(&Subject{Name: " Ana "}))
	assert.Error(t, ValidateSubject(&Subject{Name: ""}))
	assert.Error(t, ValidateSubject(&Subject{Name: "Ana", TargetLow: 150, TargetHigh: 120}))
}

func TestSubject_TargetRange(t *testing.T) {
	var nilSubject *Subject
	assert.Equal(t, DefaultTargetRange(), nilSubject.TargetRange())
	assert.Equal(t, TargetRange{Low: 80, High: 180}, (&Subject{TargetLow: 80}).TargetRange())
}

func TestTimeWindow_Contains(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	w := TimeWindow{Start: start, End: start.Add(24 * time.Hour)}

	assert.True(t, w.Contains(start))
	assert.True(t, w.Contains(start.Add(24*time.Hour)))
	assert.False(t, w.Contains(start.Add(-time.Second)))
	assert.True(t, TimeWindow{}.Contains(start))
}
