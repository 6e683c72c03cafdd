package analysis

import (
	"github.com/vladimiradmaev/glucose-insights/internal/domain"
	"github.com/vladimiradmaev/glucose-insights/internal/recipes"
)

// Situations reported by EmergencyGuidance
const (
	SituationHypoglycemia        = "Hypoglycemia (Low Blood Sugar)"
	SituationSevereHyperglycemia = "Severe Hyperglycemia"
	SituationHyperglycemia       = "Hyperglycemia (High Blood Sugar)"
	SituationNormal              = "Normal Blood Sugar"
)

// Guidance is advisory text for a single current reading
type Guidance struct {
	Situation        string          `json:"situation"`
	ImmediateActions []string        `json:"immediate_actions,omitempty"`
	Recipes          []domain.Recipe `json:"recipes,omitempty"`
	Warning          string          `json:"warning,omitempty"`
	FollowUp         string          `json:"follow_up,omitempty"`
	Message          string          `json:"message,omitempty"`
	Maintenance      string          `json:"maintenance,omitempty"`
}

// EmergencyGuidance classifies value with the same 70/180/300 thresholds
// as the target range and the rule battery.
func EmergencyGuidance(value float64) Guidance {
	switch {
	case value < domain.HypoThreshold:
		return Guidance{
			Situation: SituationHypoglycemia,
			ImmediateActions: []string{
				"Eat 15g of fast-acting carbs (4 glucose tablets, 4oz juice, or 1 tbsp honey)",
				"Wait 15 minutes and recheck blood sugar",
				"If still low, repeat with another 15g of carbs",
				"Once blood sugar is above 70, eat a protein snack to prevent rebound",
			},
			Recipes:  recipes.HypoglycemiaRecovery(),
			FollowUp: "Monitor blood sugar every 15 minutes until stable",
		}
	case value > domain.SevereHyperThreshold:
		return Guidance{
			Situation: SituationSevereHyperglycemia,
			ImmediateActions: []string{
				"Check for ketones if you have a meter",
				"Take correction insulin as prescribed",
				"Drink plenty of water",
				"Avoid exercise until blood sugar is below 250",
			},
			Warning:  "If you have ketones or feel very ill, seek medical attention immediately",
			FollowUp: "Recheck blood sugar in 1 hour and contact your doctor if not improving",
		}
	case value > domain.HyperThreshold:
		return Guidance{
			Situation: SituationHyperglycemia,
			ImmediateActions: []string{
				"Take correction insulin if prescribed",
				"Drink water to stay hydrated",
				"Avoid high-carb foods",
				"Consider light exercise if feeling well",
			},
			FollowUp: "Recheck blood sugar in 2 hours",
		}
	default:
		return Guidance{
			Situation:   SituationNormal,
			Message:     "Your blood sugar is within the target range. Keep up the good work!",
			Maintenance: "Continue with your regular diabetes management routine",
		}
	}
}
