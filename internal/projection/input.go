package projection

import (
	"math"

	"github.com/jengzang/healthtwin-backend/internal/models"
)

const (
	defaultAge   = 30
	defaultScore = 50.0
	defaultRate  = 50.0
	maxAge       = 120
	maxYears     = 100
)

// Input is the history the projection is computed from. Optional fields are
// pointers; nil values are replaced with neutral defaults.
type Input struct {
	Goal         models.Goal        `json:"goal"`
	Age          int                `json:"age"`
	Completed    int                `json:"completed"`
	Missed       int                `json:"missed"`
	Streak       int                `json:"streak"`
	CurrentDay   int                `json:"current_day"`
	CurrentScore *float64           `json:"current_score,omitempty"`
	Vitals       *models.VitalSigns `json:"vitals,omitempty"`
}

// normalized is Input with every default applied.
type normalized struct {
	goal       models.Goal
	age        int
	completed  int
	missed     int
	streak     int
	day        int
	score      float64
	vitals     models.VitalSigns
	rate       float64
	missedFrac float64
}

func normalize(in Input) normalized {
	n := normalized{
		goal:      in.Goal.OrDefault(),
		age:       in.Age,
		completed: maxInt(in.Completed, 0),
		missed:    maxInt(in.Missed, 0),
		streak:    maxInt(in.Streak, 0),
		day:       maxInt(in.CurrentDay, 1),
		score:     defaultScore,
		vitals:    models.DefaultVitalSigns(),
		rate:      defaultRate,
	}
	if n.age <= 0 {
		n.age = defaultAge
	}
	if n.age > maxAge {
		n.age = maxAge
	}
	if in.CurrentScore != nil && !math.IsNaN(*in.CurrentScore) {
		n.score = models.Clamp(*in.CurrentScore, 0, 100)
	}
	if in.Vitals != nil {
		for _, v := range models.AllVitals {
			val := in.Vitals.Get(v)
			if math.IsNaN(val) {
				val = models.DefaultVitalValue
			}
			n.vitals.Set(v, val)
		}
	}
	if total := n.completed + n.missed; total > 0 {
		n.rate = float64(n.completed) / float64(total) * 100
		n.missedFrac = float64(n.missed) / float64(total)
	}
	return n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
