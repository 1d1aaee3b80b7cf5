package engine

import (
	"github.com/jengzang/healthtwin-backend/internal/models"
)

// CompleteTask marks a task of today's list as completed and awards its
// coins and XP. It reports false, changing nothing, when the id is unknown or
// the task is already completed.
func (e *Engine) CompleteTask(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.st
	idx := s.findTask(id)
	if idx < 0 || s.DailyTasks[idx].Completed {
		return false
	}

	task := s.DailyTasks[idx]
	task.Completed = true
	s.DailyTasks[idx] = task

	now := e.now().UTC()
	s.CompletedTasks = append(s.CompletedTasks, models.TaskRecord{Task: task, CompletedAt: &now})
	s.Coins += task.Coins

	// Single-step level up: a large overflow still advances one level.
	s.XP += task.XP
	if threshold := s.XPForNextLevel(); s.XP >= threshold {
		s.XP -= threshold
		s.Level++
	}

	if s.CompletedToday() == len(s.DailyTasks) {
		e.setMood(models.MoodCelebrating)
		e.scheduleRevert()
	} else {
		e.setMood(models.MoodHappy)
	}

	boostVitals(s, len(s.CompletedTasks))
	refreshScore(s)
	return true
}

// FailTask drops a pending task into missed history and applies the XP
// penalty. It reports false when the id is unknown or already completed.
func (e *Engine) FailTask(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.st
	idx := s.findTask(id)
	if idx < 0 || s.DailyTasks[idx].Completed {
		return false
	}

	task := s.DailyTasks[idx]
	s.DailyTasks = append(s.DailyTasks[:idx:idx], s.DailyTasks[idx+1:]...)

	now := e.now().UTC()
	s.MissedTasks = append(s.MissedTasks, models.TaskRecord{Task: task, MissedAt: &now})

	s.XP -= FailXPPenalty
	if s.XP < 0 {
		s.XP = 0
	}
	// Demotion leaves DemotionXP rather than zero.
	if s.XP == 0 && s.Level > 1 {
		s.Level--
		s.XP = DemotionXP
	}

	s.FailedToday++
	if s.FailedToday >= 2 {
		e.setMood(models.MoodCrying)
	} else {
		e.setMood(models.MoodDisappointed)
	}

	s.Streak = 0
	refreshScore(s)
	return true
}

// AdvanceDay closes the current day and starts the next one. It reports
// whether the outgoing day counted towards the streak, which it does when
// every task left in today's list is completed. Failed tasks are no longer in
// the list and an empty list counts as complete.
func (e *Engine) AdvanceDay() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.st
	full := s.CompletedToday() == len(s.DailyTasks)
	if full {
		s.Streak++
	} else {
		s.Streak = 0
	}

	recomputeHealth(s)
	appendHistory(s, e.now().UTC())

	s.CurrentDay++
	s.FailedToday = 0
	e.setMood(models.MoodHappy)
	s.DailyTasks = []models.Task{}
	e.generateLocked()
	return full
}

// AllTasksCompleted reports whether no task of today's list is pending.
func (e *Engine) AllTasksCompleted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.CompletedToday() == len(e.st.DailyTasks)
}

// RecomputeHealth blends the vitals towards the adherence target and
// re-derives the score and body state.
func (e *Engine) RecomputeHealth() {
	e.mu.Lock()
	defer e.mu.Unlock()
	recomputeHealth(e.st)
}

// GenerateDailyTasks replaces today's list with a fresh sample. It does
// nothing until a plan has been selected.
func (e *Engine) GenerateDailyTasks() []models.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generateLocked()
	return append([]models.Task{}, e.st.DailyTasks...)
}

func (e *Engine) generateLocked() {
	s := e.st
	if !s.Profile.Plan.IsValid() {
		return
	}
	s.DailyTasks = GenerateTasksForDay(s.Profile.Goal, s.Profile.Plan, s.CurrentDay, e.rng)
}

// Reset restores every field to its initial default.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	version := e.st.MoodVersion
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
	e.st = NewState()
	e.st.MoodVersion = version + 1
}
