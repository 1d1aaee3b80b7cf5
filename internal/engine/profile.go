package engine

import (
	"strings"

	"github.com/jengzang/healthtwin-backend/internal/models"
)

// ProfileUpdate carries onboarding answers. Nil fields are left unchanged.
type ProfileUpdate struct {
	Age            *int         `json:"age,omitempty"`
	Goal           *models.Goal `json:"goal,omitempty"`
	Plan           *models.Plan `json:"plan,omitempty"`
	CompanionName  *string      `json:"companion_name,omitempty"`
	CompanionAge   *int         `json:"companion_age,omitempty"`
	CompanionEmail *string      `json:"companion_email,omitempty"`
	AvatarColor    *string      `json:"avatar_color,omitempty"`
}

// UpdateProfile validates and applies an onboarding update atomically.
// Selecting a plan stamps the start date and generates the first day's tasks.
func (e *Engine) UpdateProfile(u ProfileUpdate) error {
	if u.Age != nil && (*u.Age < 1 || *u.Age > 120) {
		return ErrInvalidAge
	}
	if u.Goal != nil && !u.Goal.IsValid() {
		return ErrInvalidGoal
	}
	if u.Plan != nil && !u.Plan.IsValid() {
		return ErrInvalidPlan
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	p := &e.st.Profile
	if u.Age != nil {
		p.Age = *u.Age
	}
	if u.Goal != nil {
		p.Goal = *u.Goal
	}
	if u.CompanionName != nil {
		p.CompanionName = strings.TrimSpace(*u.CompanionName)
	}
	if u.CompanionAge != nil {
		p.CompanionAge = *u.CompanionAge
	}
	if u.CompanionEmail != nil {
		p.CompanionEmail = strings.TrimSpace(*u.CompanionEmail)
	}
	if u.AvatarColor != nil && strings.TrimSpace(*u.AvatarColor) != "" {
		p.AvatarColor = strings.TrimSpace(*u.AvatarColor)
	}
	if u.Plan != nil {
		p.Plan = *u.Plan
		start := e.now().UTC()
		p.StartDate = &start
		if len(e.st.DailyTasks) == 0 {
			e.generateLocked()
		}
	}
	refreshScore(e.st)
	return nil
}

// PlanProgress describes how far the user is through the selected plan.
type PlanProgress struct {
	PlanDays      int     `json:"plan_days"`
	DaysRemaining int     `json:"days_remaining"`
	Percent       float64 `json:"percent"`
}

// PlanProgress returns progress through the selected plan, zero without one.
func (e *Engine) PlanProgress() PlanProgress {
	e.mu.Lock()
	defer e.mu.Unlock()

	days := e.st.Profile.Plan.Days()
	if days == 0 {
		return PlanProgress{}
	}
	remaining := days - e.st.CurrentDay + 1
	if remaining < 0 {
		remaining = 0
	}
	pct := models.Clamp(float64(e.st.CurrentDay-1)/float64(days)*100, 0, 100)
	return PlanProgress{PlanDays: days, DaysRemaining: remaining, Percent: pct}
}

// AddSteps adds to the lifetime step counter.
func (e *Engine) AddSteps(n int) error {
	if n < 0 {
		return ErrNegativeAmount
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.st.TotalSteps += n
	return nil
}

// AddWorkoutMinutes adds to the lifetime workout counter.
func (e *Engine) AddWorkoutMinutes(n int) error {
	if n < 0 {
		return ErrNegativeAmount
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.st.TotalWorkoutMinutes += n
	return nil
}
