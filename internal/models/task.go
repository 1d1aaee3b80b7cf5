package models

import "time"

// Task represents a unit of daily activity
type Task struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Duration  string `json:"duration"`
	Coins     int    `json:"coins"`
	XP        int    `json:"xp"`
	Day       int    `json:"day"`
	Completed bool   `json:"completed"`
}

// TaskRecord is a task copied into completed or missed history
type TaskRecord struct {
	Task
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	MissedAt    *time.Time `json:"missed_at,omitempty"`
}

// TaskTemplate is an entry of a goal's task pool
type TaskTemplate struct {
	Name     string `json:"name"`
	Duration string `json:"duration"`
	Coins    int    `json:"coins"`
	XP       int    `json:"xp"`
}
