package models

// Goal identifies the health goal a user is working towards
type Goal string

const (
	GoalWeightLoss         Goal = "weight_loss"
	GoalMuscleGain         Goal = "muscle_gain"
	GoalCardioHealth       Goal = "cardio_health"
	GoalDiabetesManagement Goal = "diabetes_management"
	GoalStressAnxiety      Goal = "stress_anxiety"
	GoalBackPain           Goal = "back_pain"
	GoalFlexibility        Goal = "flexibility"
	GoalGeneralFitness     Goal = "general_fitness"
)

// Goals lists every supported goal in display order
var Goals = []Goal{
	GoalWeightLoss,
	GoalMuscleGain,
	GoalCardioHealth,
	GoalDiabetesManagement,
	GoalStressAnxiety,
	GoalBackPain,
	GoalFlexibility,
	GoalGeneralFitness,
}

// IsValid reports whether g is a known goal
func (g Goal) IsValid() bool {
	switch g {
	case GoalWeightLoss, GoalMuscleGain, GoalCardioHealth, GoalDiabetesManagement,
		GoalStressAnxiety, GoalBackPain, GoalFlexibility, GoalGeneralFitness:
		return true
	default:
		return false
	}
}

// OrDefault returns g when valid, otherwise general fitness
func (g Goal) OrDefault() Goal {
	if g.IsValid() {
		return g
	}
	return GoalGeneralFitness
}

// goalNames holds the display names shown in prompts and reports
var goalNames = map[Goal]string{
	GoalWeightLoss:         "Weight Loss",
	GoalMuscleGain:         "Muscle Building",
	GoalCardioHealth:       "Heart Health",
	GoalDiabetesManagement: "Diabetes Management",
	GoalStressAnxiety:      "Stress & Anxiety",
	GoalBackPain:           "Back Pain Recovery",
	GoalFlexibility:        "Flexibility",
	GoalGeneralFitness:     "General Fitness",
}

// DisplayName returns a human readable goal name
func (g Goal) DisplayName() string {
	if name, ok := goalNames[g]; ok {
		return name
	}
	return goalNames[GoalGeneralFitness]
}

// Plan identifies a plan intensity tier
type Plan string

const (
	PlanFast   Plan = "fast"
	PlanMedium Plan = "medium"
	PlanSlow   Plan = "slow"
)

// IsValid reports whether p is a known plan
func (p Plan) IsValid() bool {
	switch p {
	case PlanFast, PlanMedium, PlanSlow:
		return true
	default:
		return false
	}
}

// TasksPerDay returns the daily task count for the plan.
// Unknown plans get the slow tier.
func (p Plan) TasksPerDay() int {
	switch p {
	case PlanFast:
		return 4
	case PlanMedium:
		return 3
	default:
		return 2
	}
}

// Days returns the plan length in days, 0 for unknown plans
func (p Plan) Days() int {
	switch p {
	case PlanFast:
		return 30
	case PlanMedium:
		return 60
	case PlanSlow:
		return 90
	default:
		return 0
	}
}

// DisplayName returns a human readable plan name
func (p Plan) DisplayName() string {
	switch p {
	case PlanFast:
		return "Fast Plan"
	case PlanMedium:
		return "Medium Plan"
	case PlanSlow:
		return "Slow Plan"
	default:
		return "your health plan"
	}
}
