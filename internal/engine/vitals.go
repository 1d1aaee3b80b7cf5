package engine

import (
	"math"
	"time"

	"github.com/jengzang/healthtwin-backend/internal/models"
)

const (
	// targetedBoostPerTask is the per-completion gain of a goal's primary vital.
	targetedBoostPerTask = 5
	// generalBoostPerTask is the per-completion gain of every vital under general fitness.
	generalBoostPerTask = 2
	// maxBoost caps the gain above the 50 baseline.
	maxBoost = 45
)

// BoostValue returns the vital value earned after completed lifetime tasks.
func BoostValue(completed, perTask int) float64 {
	return math.Min(100, models.DefaultVitalValue+math.Min(float64(completed*perTask), maxBoost))
}

// boostVitals raises the goal's vitals after a completion. A boost never
// lowers a vital that is already higher.
func boostVitals(s *State, completed int) {
	goal := s.Profile.Goal.OrDefault()
	if primary, ok := models.PrimaryVital(goal); ok {
		v := BoostValue(completed, targetedBoostPerTask)
		s.Vitals.Set(primary, math.Max(s.Vitals.Get(primary), v))
		return
	}
	v := BoostValue(completed, generalBoostPerTask)
	for _, name := range models.AllVitals {
		s.Vitals.Set(name, math.Max(s.Vitals.Get(name), v))
	}
}

// HealthScore derives the overall score from vitals and adherence.
func HealthScore(v models.VitalSigns, completionRate float64) float64 {
	return models.Clamp(round(0.7*v.Mean()+0.3*completionRate), 0, 100)
}

func refreshScore(s *State) {
	s.HealthScore = HealthScore(s.Vitals, s.CompletionRate())
	s.BodyState = CurrentBodyState(s.Profile.Goal, s.Vitals, s.HealthScore)
}

// RecomputeTarget is the value the periodic blend pulls vitals towards.
func RecomputeTarget(completionRate float64, streak, day int) float64 {
	streakBonus := math.Min(float64(streak*2), 15)
	consistency := math.Min(float64(day)*0.5, 10)
	return models.Clamp(25+completionRate*0.5+streakBonus+consistency, 0, 100)
}

func recomputeHealth(s *State) {
	target := RecomputeTarget(s.CompletionRate(), s.Streak, s.CurrentDay)
	for _, name := range models.AllVitals {
		s.Vitals.Set(name, round(0.8*s.Vitals.Get(name)+0.2*target))
	}
	refreshScore(s)
}

func appendHistory(s *State, at time.Time) {
	s.History = append(s.History, models.HistoryEntry{
		Day:            s.CurrentDay,
		HealthScore:    s.HealthScore,
		CompletionRate: s.CompletionRate(),
		Streak:         s.Streak,
		Vitals:         s.Vitals,
		BodyState:      s.BodyState,
		RecordedAt:     at,
	})
	if over := len(s.History) - models.MaxHistoryEntries; over > 0 {
		s.History = append([]models.HistoryEntry{}, s.History[over:]...)
	}
}

type bodyThreshold struct {
	min   float64
	label models.BodyState
}

var (
	muscleBodyTable = []bodyThreshold{
		{85, models.BodyVeryMuscular},
		{70, models.BodyMuscular},
		{60, models.BodyFit},
		{40, models.BodyNormal},
		{25, models.BodyThin},
	}
	weightBodyTable = []bodyThreshold{
		{80, models.BodyExcellent},
		{60, models.BodyFit},
		{40, models.BodyNormal},
		{25, models.BodyOverweight},
	}
	targetedBodyTable = []bodyThreshold{
		{80, models.BodyExcellent},
		{60, models.BodyFit},
		{40, models.BodyNormal},
		{25, models.BodyWeak},
	}
	generalBodyTable = []bodyThreshold{
		{85, models.BodyExcellent},
		{70, models.BodyFit},
		{45, models.BodyNormal},
		{25, models.BodyWeak},
	}
)

func lookupBody(table []bodyThreshold, v float64, fallback models.BodyState) models.BodyState {
	for _, t := range table {
		if v >= t.min {
			return t.label
		}
	}
	return fallback
}

// CurrentBodyState labels the present body from the goal's primary vital and
// the overall score. It is distinct from the projection model's table.
func CurrentBodyState(goal models.Goal, v models.VitalSigns, score float64) models.BodyState {
	if score < 20 {
		return models.BodyCritical
	}
	goal = goal.OrDefault()
	primary, ok := models.PrimaryVital(goal)
	if !ok {
		return lookupBody(generalBodyTable, score, models.BodyCritical)
	}
	p := v.Get(primary)
	switch goal {
	case models.GoalMuscleGain:
		return lookupBody(muscleBodyTable, p, models.BodyWeak)
	case models.GoalWeightLoss:
		return lookupBody(weightBodyTable, p, models.BodyWeak)
	default:
		return lookupBody(targetedBodyTable, p, models.BodyCritical)
	}
}
