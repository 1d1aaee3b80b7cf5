// Package simulate drives an engine through many days without a server.
package simulate

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/jengzang/healthtwin-backend/internal/engine"
	"github.com/jengzang/healthtwin-backend/internal/models"
)

var (
	ErrInvalidProbability = errors.New("completion probability must be between 0 and 1")
	ErrInvalidDays        = errors.New("days must not be negative")
)

// Config describes a simulated run.
type Config struct {
	Goal        models.Goal
	Plan        models.Plan
	Age         int
	Days        int
	Seed        uint64
	Probability float64 // chance each task is completed, otherwise it is failed
	Start       time.Time
}

// Day summarizes one simulated day.
type Day struct {
	Day         int
	Completed   int
	Failed      int
	FullDay     bool
	Level       int
	XP          int
	Coins       int
	Streak      int
	HealthScore float64
	BodyState   models.BodyState
}

// Result is the final state and the per-day log.
type Result struct {
	Days  []Day
	State *engine.State
}

type noTimer struct{}

func (noTimer) Stop() bool { return false }

// frozenMood never fires, so the celebrating mood stays until the next change.
type frozenMood struct{}

func (frozenMood) AfterFunc(time.Duration, func()) engine.Timer { return noTimer{} }

// Run simulates cfg.Days days. The same config always yields the same result.
func Run(cfg Config) (*Result, error) {
	if cfg.Probability < 0 || cfg.Probability > 1 {
		return nil, ErrInvalidProbability
	}
	if cfg.Days < 0 {
		return nil, ErrInvalidDays
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	}

	clock := cfg.Start
	e := engine.New(nil,
		engine.WithSeed(cfg.Seed),
		engine.WithScheduler(frozenMood{}),
		engine.WithClock(func() time.Time { return clock }),
	)
	defer e.Close()

	u := engine.ProfileUpdate{Goal: &cfg.Goal, Plan: &cfg.Plan}
	if cfg.Age > 0 {
		u.Age = &cfg.Age
	}
	if err := e.UpdateProfile(u); err != nil {
		return nil, err
	}

	dice := rand.New(rand.NewPCG(cfg.Seed, ^cfg.Seed))
	out := &Result{Days: make([]Day, 0, cfg.Days)}
	for i := 0; i < cfg.Days; i++ {
		d := Day{Day: e.Snapshot().CurrentDay}
		for _, t := range e.Tasks() {
			if dice.Float64() < cfg.Probability {
				if e.CompleteTask(t.ID) {
					d.Completed++
				}
			} else if e.FailTask(t.ID) {
				d.Failed++
			}
		}
		d.FullDay = e.AdvanceDay()
		clock = clock.Add(24 * time.Hour)

		st := e.Snapshot()
		d.Level, d.XP, d.Coins, d.Streak = st.Level, st.XP, st.Coins, st.Streak
		d.HealthScore, d.BodyState = st.HealthScore, st.BodyState
		out.Days = append(out.Days, d)
	}
	out.State = e.Snapshot()
	return out, nil
}
