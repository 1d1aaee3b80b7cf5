package engine

import (
	"fmt"
	"math/rand/v2"

	"github.com/jengzang/healthtwin-backend/internal/models"
)

// TaskPools maps every goal to its five candidate tasks.
var TaskPools = map[models.Goal][]models.TaskTemplate{
	models.GoalWeightLoss: {
		{Name: "Morning Walk", Duration: "30 min", Coins: 10, XP: 15},
		{Name: "Low-calorie meal prep", Duration: "20 min", Coins: 8, XP: 10},
		{Name: "HIIT Workout", Duration: "20 min", Coins: 15, XP: 20},
		{Name: "Track calorie intake", Duration: "5 min", Coins: 5, XP: 5},
		{Name: "Evening jog", Duration: "25 min", Coins: 12, XP: 15},
	},
	models.GoalMuscleGain: {
		{Name: "Strength Training", Duration: "45 min", Coins: 20, XP: 25},
		{Name: "Protein-rich breakfast", Duration: "15 min", Coins: 8, XP: 10},
		{Name: "Push-ups & Pull-ups", Duration: "20 min", Coins: 12, XP: 15},
		{Name: "Core workout", Duration: "15 min", Coins: 10, XP: 12},
		{Name: "Stretching routine", Duration: "10 min", Coins: 5, XP: 8},
	},
	models.GoalCardioHealth: {
		{Name: "Brisk Walking", Duration: "40 min", Coins: 15, XP: 18},
		{Name: "Cycling", Duration: "30 min", Coins: 12, XP: 15},
		{Name: "Swimming", Duration: "30 min", Coins: 15, XP: 20},
		{Name: "Heart rate monitoring", Duration: "5 min", Coins: 5, XP: 5},
		{Name: "Meditation", Duration: "15 min", Coins: 8, XP: 10},
	},
	models.GoalDiabetesManagement: {
		{Name: "Blood sugar check", Duration: "5 min", Coins: 5, XP: 5},
		{Name: "Low-GI meal prep", Duration: "25 min", Coins: 10, XP: 12},
		{Name: "Light walking", Duration: "30 min", Coins: 12, XP: 15},
		{Name: "Yoga session", Duration: "20 min", Coins: 10, XP: 12},
		{Name: "Hydration tracking", Duration: "5 min", Coins: 5, XP: 5},
	},
	models.GoalStressAnxiety: {
		{Name: "Guided Meditation", Duration: "20 min", Coins: 10, XP: 12},
		{Name: "Deep breathing exercises", Duration: "10 min", Coins: 8, XP: 10},
		{Name: "Journaling", Duration: "15 min", Coins: 8, XP: 10},
		{Name: "Nature walk", Duration: "30 min", Coins: 12, XP: 15},
		{Name: "Sleep hygiene routine", Duration: "15 min", Coins: 10, XP: 12},
	},
	models.GoalBackPain: {
		{Name: "Gentle stretching", Duration: "15 min", Coins: 8, XP: 10},
		{Name: "Core strengthening", Duration: "20 min", Coins: 12, XP: 15},
		{Name: "Posture exercises", Duration: "10 min", Coins: 8, XP: 10},
		{Name: "Heat therapy", Duration: "20 min", Coins: 5, XP: 8},
		{Name: "Swimming or water walking", Duration: "30 min", Coins: 15, XP: 18},
	},
	models.GoalFlexibility: {
		{Name: "Morning Yoga", Duration: "30 min", Coins: 12, XP: 15},
		{Name: "Dynamic stretching", Duration: "15 min", Coins: 8, XP: 10},
		{Name: "Pilates session", Duration: "30 min", Coins: 15, XP: 18},
		{Name: "Foam rolling", Duration: "15 min", Coins: 8, XP: 10},
		{Name: "Evening stretch routine", Duration: "20 min", Coins: 10, XP: 12},
	},
	models.GoalGeneralFitness: {
		{Name: "Morning Run", Duration: "30 min", Coins: 15, XP: 18},
		{Name: "Bodyweight exercises", Duration: "25 min", Coins: 12, XP: 15},
		{Name: "Healthy meal prep", Duration: "20 min", Coins: 10, XP: 10},
		{Name: "Step count goal (8000)", Duration: "All day", Coins: 15, XP: 20},
		{Name: "Evening workout", Duration: "30 min", Coins: 15, XP: 18},
	},
}

// TaskID returns the identifier of the idx-th task generated for day.
func TaskID(day, idx int) string {
	return fmt.Sprintf("day%d_task%d", day, idx)
}

// GenerateTasksForDay samples plan.TasksPerDay() tasks without replacement from
// the goal's pool. Unknown goals use the general fitness pool.
func GenerateTasksForDay(goal models.Goal, plan models.Plan, day int, r *rand.Rand) []models.Task {
	pool := append([]models.TaskTemplate{}, TaskPools[goal.OrDefault()]...)
	r.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	n := plan.TasksPerDay()
	if n > len(pool) {
		n = len(pool)
	}

	tasks := make([]models.Task, 0, n)
	for i, tpl := range pool[:n] {
		tasks = append(tasks, models.Task{
			ID:       TaskID(day, i),
			Name:     tpl.Name,
			Duration: tpl.Duration,
			Coins:    tpl.Coins,
			XP:       tpl.XP,
			Day:      day,
		})
	}
	return tasks
}
