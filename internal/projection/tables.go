package projection

import "github.com/jengzang/healthtwin-backend/internal/models"

// AgeFactor scales yearly change by current age.
func AgeFactor(age int) float64 {
	switch {
	case age < 25:
		return 1.3
	case age < 35:
		return 1.1
	case age < 45:
		return 1.0
	case age < 55:
		return 0.85
	case age < 65:
		return 0.7
	default:
		return 0.5
	}
}

// AgeDegradation is the unavoidable score loss over the horizon.
func AgeDegradation(age, years int) float64 {
	if age+years > 50 {
		return float64(years) * 1.5
	}
	return float64(years) * 0.5
}

// StreakMultiplier rewards long streaks.
func StreakMultiplier(streak int) float64 {
	switch {
	case streak > 30:
		return 1.5
	case streak > 14:
		return 1.3
	case streak > 7:
		return 1.15
	case streak > 3:
		return 1.05
	default:
		return 1.0
	}
}

// BaseYearlyChange is the score change per year for a completion rate.
func BaseYearlyChange(rate float64) float64 {
	switch {
	case rate >= 80:
		return 10
	case rate >= 65:
		return 5
	case rate >= 50:
		return 1
	case rate >= 35:
		return -5
	case rate >= 25:
		return -10
	default:
		return -15
	}
}

// VitalYearlyChange is the per-vital change per year for a completion rate.
func VitalYearlyChange(rate float64) float64 {
	switch {
	case rate >= 80:
		return 4
	case rate >= 65:
		return 2.5
	case rate >= 50:
		return 0.5
	case rate >= 35:
		return -2
	case rate >= 25:
		return -3.5
	default:
		return -5
	}
}

// vitalAgeFactor adapts the age factor per gauge: strength and flexibility
// respond worse with age, mental wellness better.
func vitalAgeFactor(v models.Vital, ageFactor float64) float64 {
	switch v {
	case models.VitalMuscleStrength, models.VitalFlexibility:
		if f := ageFactor - 0.15; f > 0.3 {
			return f
		}
		return 0.3
	case models.VitalMentalWellness:
		if f := ageFactor + 0.15; f < 1.45 {
			return f
		}
		return 1.45
	default:
		return ageFactor
	}
}

// vitalAgeDecay is the yearly loss per gauge once the future age passes
// ageDecayOnset.
var vitalAgeDecay = map[models.Vital]float64{
	models.VitalMuscleStrength: 0.8,
	models.VitalFlexibility:    0.8,
	models.VitalHeartHealth:    0.5,
	models.VitalEnergyLevel:    0.5,
	models.VitalMentalWellness: 0.2,
}

const ageDecayOnset = 40

// Trend labels
const (
	TrendRapidlyImproving = "rapidly_improving"
	TrendImproving        = "improving"
	TrendStable           = "stable"
	TrendDeclining        = "declining"
	TrendRapidlyDeclining = "rapidly_declining"
)

// TrendFor classifies the compounded yearly change.
func TrendFor(compoundedChange float64) string {
	switch {
	case compoundedChange >= 8:
		return TrendRapidlyImproving
	case compoundedChange >= 2:
		return TrendImproving
	case compoundedChange > -2:
		return TrendStable
	case compoundedChange > -8:
		return TrendDeclining
	default:
		return TrendRapidlyDeclining
	}
}

// Risk levels
const (
	RiskMinimal  = "minimal"
	RiskLow      = "low"
	RiskModerate = "moderate"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// RiskLevelFor bands the projected score.
func RiskLevelFor(score float64) string {
	switch {
	case score >= 80:
		return RiskMinimal
	case score >= 60:
		return RiskLow
	case score >= 40:
		return RiskModerate
	case score >= 20:
		return RiskHigh
	default:
		return RiskCritical
	}
}

type bodyStep struct {
	min   float64
	label string
}

// projectedBodyTables are ordered highest first; the last label is the fallback.
var projectedBodyTables = map[models.Goal][]bodyStep{
	models.GoalMuscleGain: {
		{85, "bodybuilder"}, {70, "muscular"}, {55, "athletic"}, {40, "normal"}, {25, "thin"}, {0, "frail"},
	},
	models.GoalWeightLoss: {
		{80, "athletic"}, {65, "fit"}, {50, "normal"}, {35, "overweight"}, {0, "obese"},
	},
	models.GoalCardioHealth: {
		{85, "athletic"}, {70, "very_fit"}, {55, "fit"}, {40, "normal"}, {25, "weak"}, {0, "critical_cardio"},
	},
	models.GoalDiabetesManagement: {
		{75, "fit"}, {55, "stable"}, {40, "normal"}, {25, "weak"}, {0, "critical"},
	},
	models.GoalStressAnxiety: {
		{75, "excellent"}, {55, "fit"}, {40, "normal"}, {25, "weak"}, {0, "burnout"},
	},
	models.GoalBackPain: {
		{75, "athletic"}, {55, "fit"}, {40, "normal"}, {25, "weak"}, {0, "chronic_pain"},
	},
	models.GoalFlexibility: {
		{80, "very_flexible"}, {60, "flexible"}, {40, "normal"}, {25, "stiff"}, {0, "weak"},
	},
	models.GoalGeneralFitness: {
		{85, "excellent"}, {70, "very_fit"}, {55, "fit"}, {40, "normal"}, {25, "weak"}, {0, "critical"},
	},
}

// ProjectedBodyState labels the future body for a goal from the dominant
// projected value.
func ProjectedBodyState(goal models.Goal, value float64) string {
	table := projectedBodyTables[goal.OrDefault()]
	for _, step := range table {
		if value >= step.min {
			return step.label
		}
	}
	return table[len(table)-1].label
}

// ageLifespanAdjustment shifts the illustrative lifespan by age band.
func ageLifespanAdjustment(age int) float64 {
	switch {
	case age < 30:
		return 2
	case age < 50:
		return 0
	case age < 70:
		return -2
	default:
		return -4
	}
}
