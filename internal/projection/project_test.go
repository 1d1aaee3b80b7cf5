package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/healthtwin-backend/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestProjectZeroYearsKeepsScore(t *testing.T) {
	p := Project(Input{Goal: models.GoalCardioHealth, Age: 40, Completed: 10, Missed: 2, CurrentScore: ptr(63.0)}, 0)
	assert.Equal(t, 0, p.Years)
	assert.Equal(t, 40, p.FutureAge)
	assert.Equal(t, 63.0, p.ScoreBeforeRisk)
	assert.Equal(t, 63.0, p.CurrentScore)
}

func TestProjectDefaultMuscleGain(t *testing.T) {
	assert.LessOrEqual(t, BaseYearlyChange(defaultRate), 1.0)

	p := Project(Input{Goal: models.GoalMuscleGain}, 5)
	assert.Equal(t, 30, p.CurrentAge)
	assert.Equal(t, 35, p.FutureAge)
	assert.Equal(t, 50.0, p.CompletionRate)
	assert.Empty(t, p.RiskFactors)
	assert.Equal(t, TrendStable, p.Trend)
	assert.Equal(t, RiskModerate, p.RiskLevel)
	assert.InDelta(t, 56.4, p.ProjectedScore, 0.05)
	assert.Equal(t, p.ScoreBeforeRisk, p.ProjectedScore)
	assert.NotEmpty(t, p.Summary)
}

func TestProjectStaysInBounds(t *testing.T) {
	for _, age := range []int{-5, 0, 18, 30, 45, 60, 80, 150} {
		for _, completed := range []int{0, 1, 10, 1000} {
			for _, missed := range []int{0, 3, 1000} {
				for _, streak := range []int{0, 5, 40} {
					for _, years := range []int{-1, 0, 1, 10, 100, 500} {
						in := Input{
							Goal:       models.GoalWeightLoss,
							Age:        age,
							Completed:  completed,
							Missed:     missed,
							Streak:     streak,
							CurrentDay: 30,
						}
						p := Project(in, years)
						require.True(t, p.ProjectedScore >= 0 && p.ProjectedScore <= 100, "score %v for %+v/%d", p.ProjectedScore, in, years)
						require.True(t, p.ScoreBeforeRisk >= 0 && p.ScoreBeforeRisk <= 100)
						require.GreaterOrEqual(t, p.Years, 0)
						require.LessOrEqual(t, p.Years, maxYears)
						for _, v := range models.AllVitals {
							val := p.Vitals.Get(v)
							require.True(t, val >= 0 && val <= 100, "%s=%v", v, val)
						}
					}
				}
			}
		}
	}
}

func TestProjectIsPure(t *testing.T) {
	vitals := models.DefaultVitalSigns()
	in := Input{Goal: models.GoalFlexibility, Age: 50, Completed: 7, Missed: 3, Vitals: &vitals}
	a := Project(in, 10)
	b := Project(in, 10)
	assert.Equal(t, a, b)
	assert.Equal(t, models.DefaultVitalSigns(), vitals)
}

func TestRiskFactors(t *testing.T) {
	labels := func(p Projection) []string {
		out := []string{}
		for _, r := range p.RiskFactors {
			out = append(out, r.Label)
		}
		return out
	}

	t.Run("abandonment also counts as inconsistency", func(t *testing.T) {
		p := Project(Input{Completed: 4, Missed: 6}, 1)
		assert.Contains(t, labels(p), "High task abandonment")
		assert.Contains(t, labels(p), "Inconsistent adherence")

		var total float64
		for _, r := range p.RiskFactors {
			if r.Label == "High task abandonment" || r.Label == "Inconsistent adherence" {
				total += r.Deduction
			}
		}
		assert.Equal(t, 15.0, total)
	})

	t.Run("inconsistent adherence", func(t *testing.T) {
		p := Project(Input{Completed: 6, Missed: 4}, 1)
		assert.Contains(t, labels(p), "Inconsistent adherence")
		assert.NotContains(t, labels(p), "High task abandonment")
	})

	t.Run("age decline", func(t *testing.T) {
		p := Project(Input{Age: 58, Completed: 4, Missed: 6}, 5)
		assert.Contains(t, labels(p), "Age-related decline without consistent habits")
	})

	t.Run("no streak after first week", func(t *testing.T) {
		p := Project(Input{CurrentDay: 10}, 1)
		assert.Equal(t, []string{"No active streak"}, labels(p))
		assert.InDelta(t, p.ScoreBeforeRisk-3, p.ProjectedScore, 0.11)
	})

	t.Run("goal specific", func(t *testing.T) {
		v := models.DefaultVitalSigns()
		v.HeartHealth = 30
		p := Project(Input{Goal: models.GoalCardioHealth, Vitals: &v}, 1)
		assert.Contains(t, labels(p), "Low cardiovascular baseline")
	})
}

func TestProjectYearsClamped(t *testing.T) {
	assert.Equal(t, 0, Project(Input{}, -3).Years)
	assert.Equal(t, maxYears, Project(Input{}, 1000).Years)
}

func TestTables(t *testing.T) {
	assert.Equal(t, 1.3, AgeFactor(20))
	assert.Equal(t, 1.0, AgeFactor(40))
	assert.Equal(t, 0.5, AgeFactor(70))

	assert.Equal(t, 0.5*10, AgeDegradation(30, 10))
	assert.Equal(t, 1.5*30, AgeDegradation(30, 30))

	assert.Equal(t, 1.0, StreakMultiplier(3))
	assert.Equal(t, 1.05, StreakMultiplier(4))
	assert.Equal(t, 1.5, StreakMultiplier(31))

	assert.Equal(t, 10.0, BaseYearlyChange(80))
	assert.Equal(t, -15.0, BaseYearlyChange(10))

	assert.Equal(t, TrendRapidlyImproving, TrendFor(8))
	assert.Equal(t, TrendStable, TrendFor(-1.9))
	assert.Equal(t, TrendRapidlyDeclining, TrendFor(-8))

	assert.Equal(t, RiskMinimal, RiskLevelFor(80))
	assert.Equal(t, RiskCritical, RiskLevelFor(19.9))

	assert.Equal(t, "bodybuilder", ProjectedBodyState(models.GoalMuscleGain, 90))
	assert.Equal(t, "frail", ProjectedBodyState(models.GoalMuscleGain, 3))
	assert.Equal(t, "obese", ProjectedBodyState(models.GoalWeightLoss, 10))
	assert.Equal(t, "normal", ProjectedBodyState(models.Goal(""), 45))
}
