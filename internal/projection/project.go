package projection

import (
	"fmt"
	"math"

	"github.com/jengzang/healthtwin-backend/internal/models"
)

// RiskFactor is a discrete deduction applied to the projected score.
type RiskFactor struct {
	Label     string  `json:"label"`
	Impact    string  `json:"impact"` // low, moderate or high
	Deduction float64 `json:"deduction"`
}

// Projection is a forecast of future health. It is derived on every call and
// never persisted.
type Projection struct {
	Years             int               `json:"years"`
	CurrentAge        int               `json:"current_age"`
	FutureAge         int               `json:"future_age"`
	CurrentScore      float64           `json:"current_score"`
	ScoreBeforeRisk   float64           `json:"score_before_risk"`
	ProjectedScore    float64           `json:"projected_score"`
	BodyState         string            `json:"body_state"`
	Vitals            models.VitalSigns `json:"vitals"`
	Trend             string            `json:"trend"`
	RiskLevel         string            `json:"risk_level"`
	RiskFactors       []RiskFactor      `json:"risk_factors"`
	CompletionRate    float64           `json:"completion_rate"`
	YearlyChange      float64           `json:"yearly_change"`
	CompoundedChange  float64           `json:"compounded_change"`
	StreakBonusPct    float64           `json:"streak_bonus_pct"`
	CompoundGrowthPct float64           `json:"compound_growth_pct"`
	AgeFactor         float64           `json:"age_factor"`
	EstimatedLifespan float64           `json:"estimated_lifespan"`
	Summary           string            `json:"summary"`
}

// Project forecasts health years ahead from in. It is pure and safe for
// concurrent use; missing inputs fall back to neutral defaults.
func Project(in Input, years int) Projection {
	if years < 0 {
		years = 0
	}
	if years > maxYears {
		years = maxYears
	}
	n := normalize(in)
	futureAge := n.age + years

	ageFactor := AgeFactor(n.age)
	degradation := AgeDegradation(n.age, years)
	streakMult := StreakMultiplier(n.streak)
	compound := math.Pow(1+n.rate/500, float64(years))

	yearly := BaseYearlyChange(n.rate) * ageFactor * streakMult
	compounded := yearly * compound
	beforeRisk := clampScore(n.score + compounded*float64(years) - degradation)

	risks := riskFactors(n, futureAge)
	score := beforeRisk
	for _, r := range risks {
		score -= r.Deduction
	}
	score = clampScore(score)

	vitals := projectVitals(n, years, futureAge, ageFactor, compound)

	dominant := score
	if v, ok := models.PrimaryVital(n.goal); ok {
		dominant = vitals.Get(v)
	}

	p := Projection{
		Years:             years,
		CurrentAge:        n.age,
		FutureAge:         futureAge,
		CurrentScore:      n.score,
		ScoreBeforeRisk:   round1(beforeRisk),
		ProjectedScore:    round1(score),
		BodyState:         ProjectedBodyState(n.goal, dominant),
		Vitals:            vitals,
		Trend:             TrendFor(compounded),
		RiskLevel:         RiskLevelFor(score),
		RiskFactors:       risks,
		CompletionRate:    round1(n.rate),
		YearlyChange:      round1(yearly),
		CompoundedChange:  round1(compounded),
		StreakBonusPct:    round1((streakMult - 1) * 100),
		CompoundGrowthPct: round1((compound - 1) * 100),
		AgeFactor:         ageFactor,
		EstimatedLifespan: round1(80 + (score-50)/5 + ageLifespanAdjustment(n.age)),
	}
	p.Summary = summarize(p)
	return p
}

func riskFactors(n normalized, futureAge int) []RiskFactor {
	risks := []RiskFactor{}
	add := func(label, impact string, points float64) {
		risks = append(risks, RiskFactor{Label: label, Impact: impact, Deduction: points})
	}

	if n.missedFrac > 0.5 {
		add("High task abandonment", "high", 10)
	}
	if n.missedFrac > 0.3 {
		add("Inconsistent adherence", "moderate", 5)
	}
	if futureAge > 60 && n.rate < 50 {
		add("Age-related decline without consistent habits", "high", 8)
	}
	if n.streak == 0 && n.day > 7 {
		add("No active streak", "low", 3)
	}

	switch n.goal {
	case models.GoalCardioHealth:
		if n.vitals.HeartHealth < 40 {
			add("Low cardiovascular baseline", "high", 7)
		}
	case models.GoalDiabetesManagement:
		if n.rate < 60 {
			add("Blood sugar management at risk", "high", 8)
		}
	case models.GoalMuscleGain:
		if n.vitals.MuscleStrength < 35 {
			add("Muscle loss risk", "moderate", 4)
		}
	case models.GoalStressAnxiety:
		if n.vitals.MentalWellness < 35 {
			add("Chronic stress risk", "moderate", 5)
		}
	case models.GoalWeightLoss:
		if n.vitals.EnergyLevel < 35 {
			add("Weight gain risk", "moderate", 5)
		}
	}
	return risks
}

func projectVitals(n normalized, years, futureAge int, ageFactor, compound float64) models.VitalSigns {
	change := VitalYearlyChange(n.rate)
	out := n.vitals
	for _, v := range models.AllVitals {
		delta := change * vitalAgeFactor(v, ageFactor) * compound * float64(years)
		if futureAge > ageDecayOnset {
			delta -= vitalAgeDecay[v] * float64(years)
		}
		out.Set(v, round1(n.vitals.Get(v)+delta))
	}
	return out
}

func summarize(p Projection) string {
	if p.Years == 0 {
		return fmt.Sprintf("Your health score today is %.0f/100 (%s risk).", p.ProjectedScore, p.RiskLevel)
	}
	return fmt.Sprintf("In %d years, at age %d, your projected health score is %.0f/100: %s outlook with %s risk.",
		p.Years, p.FutureAge, p.ProjectedScore, trendPhrase(p.Trend), p.RiskLevel)
}

func trendPhrase(trend string) string {
	switch trend {
	case TrendRapidlyImproving:
		return "a rapidly improving"
	case TrendImproving:
		return "an improving"
	case TrendDeclining:
		return "a declining"
	case TrendRapidlyDeclining:
		return "a rapidly declining"
	default:
		return "a stable"
	}
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return defaultScore
	}
	return models.Clamp(v, 0, 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
