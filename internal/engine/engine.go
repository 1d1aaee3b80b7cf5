package engine

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jengzang/healthtwin-backend/internal/models"
	"github.com/jengzang/healthtwin-backend/internal/projection"
)

// CelebrationDuration is how long the celebrating mood lasts before it
// reverts to happy.
const CelebrationDuration = 3 * time.Second

// Timer is a pending scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. It exists so tests can fire the mood revert
// deterministically.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Engine owns one user's State and applies every mutation under a lock.
type Engine struct {
	mu       sync.Mutex
	st       *State
	rng      *rand.Rand
	sched    Scheduler
	now      func() time.Time
	pending  Timer
	onRevert func(*State)
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand pins the random source used for task sampling.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithSeed seeds the task sampler.
func WithSeed(seed uint64) Option {
	return func(e *Engine) { e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithScheduler replaces the timer implementation behind the mood revert.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithClock replaces time.Now for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// OnMoodRevert registers a callback receiving a copy of the state after the
// celebrating mood has reverted. The callback runs outside the engine lock.
func OnMoodRevert(fn func(*State)) Option {
	return func(e *Engine) { e.onRevert = fn }
}

// New wraps st (or a fresh state when nil) in an Engine.
func New(st *State, opts ...Option) *Engine {
	if st == nil {
		st = NewState()
	}
	st.normalize()
	e := &Engine{
		st:    st,
		sched: realScheduler{},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		seed := uint64(time.Now().UnixNano())
		e.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return e
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() *State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.Clone()
}

// Tasks returns a copy of today's task list.
func (e *Engine) Tasks() []models.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.Task{}, e.st.DailyTasks...)
}

// Project forecasts the current state years ahead. It never mutates state.
func (e *Engine) Project(years int) projection.Projection {
	e.mu.Lock()
	in := ProjectionInput(e.st)
	e.mu.Unlock()
	return projection.Project(in, years)
}

// ProjectionInput converts a state into the projection model's input.
func ProjectionInput(s *State) projection.Input {
	score := s.HealthScore
	vitals := s.Vitals
	return projection.Input{
		Goal:         s.Profile.Goal,
		Age:          s.Profile.Age,
		Completed:    len(s.CompletedTasks),
		Missed:       len(s.MissedTasks),
		Streak:       s.Streak,
		CurrentDay:   s.CurrentDay,
		CurrentScore: &score,
		Vitals:       &vitals,
	}
}

// setMood changes the mood and invalidates any pending revert.
func (e *Engine) setMood(m models.Mood) {
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
	e.st.Mood = m
	e.st.MoodVersion++
}

func (e *Engine) scheduleRevert() {
	version := e.st.MoodVersion
	e.pending = e.sched.AfterFunc(CelebrationDuration, func() {
		e.mu.Lock()
		if e.st.MoodVersion != version || e.st.Mood != models.MoodCelebrating {
			e.mu.Unlock()
			return
		}
		e.pending = nil
		e.st.Mood = models.MoodHappy
		e.st.MoodVersion++
		snap := e.st.Clone()
		fn := e.onRevert
		e.mu.Unlock()

		if fn != nil {
			fn(snap)
		}
	})
}

// Restore replaces the state with a copy of st, typically a snapshot taken
// before a mutation that could not be persisted. A pending revert survives
// only when the mood is unchanged.
func (e *Engine) Restore(st *State) {
	if st == nil {
		return
	}
	restored := st.Clone()
	restored.normalize()

	e.mu.Lock()
	defer e.mu.Unlock()
	if restored.MoodVersion == e.st.MoodVersion {
		e.st = restored
		return
	}
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
	e.st = restored
	if restored.Mood == models.MoodCelebrating {
		e.scheduleRevert()
	}
}

// Close stops the pending mood revert, if any.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
}
