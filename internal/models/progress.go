package models

import "time"

// Mood is the companion's current emotional state
type Mood string

const (
	MoodHappy        Mood = "happy"
	MoodCelebrating  Mood = "celebrating"
	MoodSad          Mood = "sad"
	MoodDisappointed Mood = "disappointed"
	MoodCrying       Mood = "crying"
)

// BodyState is a display label summarizing vitals
type BodyState string

const (
	BodyThin         BodyState = "thin"
	BodyNormal       BodyState = "normal"
	BodyFit          BodyState = "fit"
	BodyMuscular     BodyState = "muscular"
	BodyVeryMuscular BodyState = "very_muscular"
	BodyOverweight   BodyState = "overweight"
	BodyWeak         BodyState = "weak"
	BodyCritical     BodyState = "critical"
	BodyExcellent    BodyState = "excellent"
)

// HistoryEntry is a daily snapshot kept for trend views
type HistoryEntry struct {
	Day            int        `json:"day"`
	HealthScore    float64    `json:"health_score"`
	CompletionRate float64    `json:"completion_rate"`
	Streak         int        `json:"streak"`
	Vitals         VitalSigns `json:"vitals"`
	BodyState      BodyState  `json:"body_state"`
	RecordedAt     time.Time  `json:"recorded_at"`
}

// MaxHistoryEntries caps the progress history length
const MaxHistoryEntries = 90

// Profile holds onboarding answers
type Profile struct {
	Age            int        `json:"age,omitempty"`
	Goal           Goal       `json:"goal,omitempty"`
	Plan           Plan       `json:"plan,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	CompanionName  string     `json:"companion_name,omitempty"`
	CompanionAge   int        `json:"companion_age,omitempty"`
	CompanionEmail string     `json:"companion_email,omitempty"`
	AvatarColor    string     `json:"avatar_color"`
}

// DefaultAvatarColor is the initial avatar colour
const DefaultAvatarColor = "#FFB6C1"
