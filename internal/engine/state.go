package engine

import (
	"math"

	"github.com/jengzang/healthtwin-backend/internal/models"
)

const (
	// StartingCoins is the coin balance of a fresh state.
	StartingCoins = 100

	// XPPerLevel scales the level-up threshold: level N needs N*XPPerLevel XP.
	XPPerLevel = 100

	// FailXPPenalty is the flat XP loss for a failed task.
	FailXPPenalty = 20

	// DemotionXP is the XP a companion is left with after losing a level.
	DemotionXP = 50

	// DefaultCompletionRate is used while no task has been completed or missed.
	DefaultCompletionRate = 50.0
)

// State is the engine's mutable snapshot. It is plain data so the host can
// persist it as JSON and restore it at startup.
type State struct {
	Profile models.Profile `json:"profile"`

	CurrentDay  int         `json:"current_day"`
	Coins       int         `json:"coins"`
	Level       int         `json:"level"`
	XP          int         `json:"xp"`
	Mood        models.Mood `json:"mood"`
	MoodVersion int64       `json:"mood_version"`
	Streak      int         `json:"streak"`
	FailedToday int         `json:"failed_today"`

	DailyTasks     []models.Task       `json:"daily_tasks"`
	CompletedTasks []models.TaskRecord `json:"completed_tasks"`
	MissedTasks    []models.TaskRecord `json:"missed_tasks"`

	Vitals      models.VitalSigns     `json:"vitals"`
	HealthScore float64               `json:"health_score"`
	BodyState   models.BodyState      `json:"body_state"`
	History     []models.HistoryEntry `json:"history"`

	PurchasedItems []string `json:"purchased_items"`
	EquippedItems  []string `json:"equipped_items"`

	TotalSteps          int `json:"total_steps"`
	TotalWorkoutMinutes int `json:"total_workout_minutes"`
}

// NewState returns the initial defaults used at onboarding and by Reset.
func NewState() *State {
	return &State{
		Profile:        models.Profile{AvatarColor: models.DefaultAvatarColor},
		CurrentDay:     1,
		Coins:          StartingCoins,
		Level:          1,
		Mood:           models.MoodHappy,
		DailyTasks:     []models.Task{},
		CompletedTasks: []models.TaskRecord{},
		MissedTasks:    []models.TaskRecord{},
		Vitals:         models.DefaultVitalSigns(),
		HealthScore:    models.DefaultVitalValue,
		BodyState:      models.BodyNormal,
		History:        []models.HistoryEntry{},
		PurchasedItems: []string{},
		EquippedItems:  []string{},
	}
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	if s.Profile.StartDate != nil {
		t := *s.Profile.StartDate
		c.Profile.StartDate = &t
	}
	c.DailyTasks = append([]models.Task{}, s.DailyTasks...)
	c.CompletedTasks = append([]models.TaskRecord{}, s.CompletedTasks...)
	c.MissedTasks = append([]models.TaskRecord{}, s.MissedTasks...)
	c.History = append([]models.HistoryEntry{}, s.History...)
	c.PurchasedItems = append([]string{}, s.PurchasedItems...)
	c.EquippedItems = append([]string{}, s.EquippedItems...)
	return &c
}

// normalize repairs a state restored from storage so the invariants hold.
func (s *State) normalize() {
	if s.CurrentDay < 1 {
		s.CurrentDay = 1
	}
	if s.Coins < 0 {
		s.Coins = 0
	}
	if s.Level < 1 {
		s.Level = 1
	}
	if s.XP < 0 {
		s.XP = 0
	}
	if s.Streak < 0 {
		s.Streak = 0
	}
	if s.Mood == "" {
		s.Mood = models.MoodHappy
	}
	if s.Profile.AvatarColor == "" {
		s.Profile.AvatarColor = models.DefaultAvatarColor
	}
	if s.BodyState == "" {
		s.BodyState = models.BodyNormal
	}
	for _, v := range models.AllVitals {
		s.Vitals.Set(v, s.Vitals.Get(v))
	}
	s.HealthScore = models.Clamp(s.HealthScore, 0, 100)
	if s.DailyTasks == nil {
		s.DailyTasks = []models.Task{}
	}
	if s.CompletedTasks == nil {
		s.CompletedTasks = []models.TaskRecord{}
	}
	if s.MissedTasks == nil {
		s.MissedTasks = []models.TaskRecord{}
	}
	if s.History == nil {
		s.History = []models.HistoryEntry{}
	}
	if s.PurchasedItems == nil {
		s.PurchasedItems = []string{}
	}
	if s.EquippedItems == nil {
		s.EquippedItems = []string{}
	}
}

// CompletionRate returns completed / (completed + missed) * 100, or
// DefaultCompletionRate when there is no history yet.
func (s *State) CompletionRate() float64 {
	total := len(s.CompletedTasks) + len(s.MissedTasks)
	if total == 0 {
		return DefaultCompletionRate
	}
	return float64(len(s.CompletedTasks)) / float64(total) * 100
}

// CompletedToday counts completed tasks in today's list.
func (s *State) CompletedToday() int {
	n := 0
	for _, t := range s.DailyTasks {
		if t.Completed {
			n++
		}
	}
	return n
}

// XPForNextLevel returns the XP threshold of the current level.
func (s *State) XPForNextLevel() int {
	return s.Level * XPPerLevel
}

func (s *State) findTask(id string) int {
	for i, t := range s.DailyTasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *State) owns(itemID string) bool {
	for _, id := range s.PurchasedItems {
		if id == itemID {
			return true
		}
	}
	return false
}

func round(v float64) float64 {
	return math.Round(v)
}
