package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jengzang/healthtwin-backend/internal/engine"
	"github.com/jengzang/healthtwin-backend/internal/models"
	"github.com/jengzang/healthtwin-backend/internal/platform/logger"
	"github.com/jengzang/healthtwin-backend/internal/projection"
	"github.com/jengzang/healthtwin-backend/internal/stats"
)

// StateStore loads and saves engine states by user.
type StateStore interface {
	Get(ctx context.Context, userID string) (*engine.State, error)
	Save(ctx context.Context, userID string, st *engine.State) error
}

// revertSaveTimeout bounds the background save after a mood revert.
const revertSaveTimeout = 5 * time.Second

type userEngine struct {
	mu  sync.Mutex // serializes mutate-then-save per user
	eng *engine.Engine
}

// ProgressService owns one engine per user and persists every mutation.
type ProgressService struct {
	store StateStore
	log   *logger.Logger
	opts  []engine.Option

	mu      sync.Mutex
	engines map[string]*userEngine
}

// NewProgressService creates a progress service. opts are applied to every
// engine it creates.
func NewProgressService(store StateStore, log *logger.Logger, opts ...engine.Option) *ProgressService {
	if log == nil {
		log = logger.Nop()
	}
	return &ProgressService{
		store:   store,
		log:     log.With("service", "ProgressService"),
		opts:    opts,
		engines: make(map[string]*userEngine),
	}
}

// entry returns the cached engine for userID, loading it on first use. The
// load runs outside s.mu; when two loads race the first one stored wins.
func (s *ProgressService) entry(ctx context.Context, userID string) (*userEngine, error) {
	s.mu.Lock()
	ue, ok := s.engines[userID]
	s.mu.Unlock()
	if ok {
		return ue, nil
	}

	st, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	ue = &userEngine{}
	opts := append([]engine.Option{}, s.opts...)
	opts = append(opts, engine.OnMoodRevert(func(*engine.State) {
		s.persistRevert(userID, ue)
	}))
	ue.eng = engine.New(st, opts...)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.engines[userID]; ok {
		ue.eng.Close()
		return existing, nil
	}
	s.engines[userID] = ue
	return ue, nil
}

func (s *ProgressService) persistRevert(userID string, ue *userEngine) {
	ue.mu.Lock()
	defer ue.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), revertSaveTimeout)
	defer cancel()
	if err := s.store.Save(ctx, userID, ue.eng.Snapshot()); err != nil {
		s.log.Warn("Failed to persist mood revert", "user_id", userID, "error", err)
	}
}

// mutate runs fn against the user's engine and saves the resulting state.
func (s *ProgressService) mutate(ctx context.Context, userID string, fn func(*engine.Engine) error) (*engine.State, error) {
	ue, err := s.entry(ctx, userID)
	if err != nil {
		return nil, err
	}

	ue.mu.Lock()
	defer ue.mu.Unlock()

	before := ue.eng.Snapshot()
	if err := fn(ue.eng); err != nil {
		ue.eng.Restore(before)
		return nil, err
	}
	snap := ue.eng.Snapshot()
	if err := s.store.Save(ctx, userID, snap); err != nil {
		ue.eng.Restore(before)
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}
	return snap, nil
}

// State returns the user's current state, creating defaults for new users.
func (s *ProgressService) State(ctx context.Context, userID string) (*engine.State, error) {
	ue, err := s.entry(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ue.eng.Snapshot(), nil
}

// Tasks returns today's tasks.
func (s *ProgressService) Tasks(ctx context.Context, userID string) ([]models.Task, error) {
	ue, err := s.entry(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ue.eng.Tasks(), nil
}

// PlanProgress returns progress through the selected plan.
func (s *ProgressService) PlanProgress(ctx context.Context, userID string) (engine.PlanProgress, error) {
	ue, err := s.entry(ctx, userID)
	if err != nil {
		return engine.PlanProgress{}, err
	}
	return ue.eng.PlanProgress(), nil
}

// UpdateProfile applies onboarding answers.
func (s *ProgressService) UpdateProfile(ctx context.Context, userID string, u engine.ProfileUpdate) (*engine.State, error) {
	return s.mutate(ctx, userID, func(e *engine.Engine) error {
		return engineError(e.UpdateProfile(u))
	})
}

func taskLookup(e *engine.Engine, id string) (models.Task, bool) {
	for _, t := range e.Tasks() {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

// CompleteTask completes a task of today's list. Completing it again reports
// changed=false without error.
func (s *ProgressService) CompleteTask(ctx context.Context, userID, taskID string) (st *engine.State, changed bool, err error) {
	st, err = s.mutate(ctx, userID, func(e *engine.Engine) error {
		if _, ok := taskLookup(e, taskID); !ok {
			return ErrTaskNotFound
		}
		changed = e.CompleteTask(taskID)
		return nil
	})
	return st, changed, err
}

// FailTask moves a pending task to missed history.
func (s *ProgressService) FailTask(ctx context.Context, userID, taskID string) (*engine.State, error) {
	return s.mutate(ctx, userID, func(e *engine.Engine) error {
		t, ok := taskLookup(e, taskID)
		if !ok {
			return ErrTaskNotFound
		}
		if t.Completed {
			return ErrTaskAlreadyCompleted
		}
		e.FailTask(taskID)
		return nil
	})
}

// AdvanceDay closes the day. Without force it refuses while tasks are pending.
func (s *ProgressService) AdvanceDay(ctx context.Context, userID string, force bool) (st *engine.State, fullDay bool, err error) {
	st, err = s.mutate(ctx, userID, func(e *engine.Engine) error {
		if !force && !e.AllTasksCompleted() {
			return ErrTasksPending
		}
		fullDay = e.AdvanceDay()
		return nil
	})
	return st, fullDay, err
}

// Reset restores the user's state to defaults.
func (s *ProgressService) Reset(ctx context.Context, userID string) (*engine.State, error) {
	return s.mutate(ctx, userID, func(e *engine.Engine) error {
		e.Reset()
		return nil
	})
}

// Activity is a manual step and workout log.
type Activity struct {
	Steps          int `json:"steps"`
	WorkoutMinutes int `json:"workout_minutes"`
}

// LogActivity adds steps and workout minutes.
func (s *ProgressService) LogActivity(ctx context.Context, userID string, a Activity) (*engine.State, error) {
	return s.mutate(ctx, userID, func(e *engine.Engine) error {
		if a.Steps < 0 || a.WorkoutMinutes < 0 {
			return engineError(engine.ErrNegativeAmount)
		}
		if err := e.AddSteps(a.Steps); err != nil {
			return engineError(err)
		}
		return engineError(e.AddWorkoutMinutes(a.WorkoutMinutes))
	})
}

// Purchase buys a shop item.
func (s *ProgressService) Purchase(ctx context.Context, userID, itemID string) (*engine.State, error) {
	return s.mutate(ctx, userID, func(e *engine.Engine) error {
		return engineError(e.Purchase(itemID))
	})
}

// Equip wears an owned item.
func (s *ProgressService) Equip(ctx context.Context, userID, itemID string) (*engine.State, error) {
	return s.mutate(ctx, userID, func(e *engine.Engine) error {
		return engineError(e.Equip(itemID))
	})
}

// Unequip removes a worn item.
func (s *ProgressService) Unequip(ctx context.Context, userID, itemID string) (*engine.State, error) {
	return s.mutate(ctx, userID, func(e *engine.Engine) error {
		if !e.Unequip(itemID) {
			return ErrItemNotEquipped
		}
		return nil
	})
}

// Project forecasts the user's health years ahead.
func (s *ProgressService) Project(ctx context.Context, userID string, years int) (projection.Projection, error) {
	ue, err := s.entry(ctx, userID)
	if err != nil {
		return projection.Projection{}, err
	}
	return ue.eng.Project(years), nil
}

// HistoryReport is recorded history with its trend summary.
type HistoryReport struct {
	Entries []models.HistoryEntry `json:"entries"`
	Trend   stats.TrendSummary    `json:"trend"`
}

// History returns recorded days and their trend.
func (s *ProgressService) History(ctx context.Context, userID string) (*HistoryReport, error) {
	st, err := s.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &HistoryReport{Entries: st.History, Trend: stats.SummarizeHistory(st.History)}, nil
}

// Close stops pending timers of every cached engine.
func (s *ProgressService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ue := range s.engines {
		ue.eng.Close()
	}
}
