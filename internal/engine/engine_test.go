package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/healthtwin-backend/internal/models"
)

type fakeTimer struct {
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (t *fakeTimer) fire() {
	if t.stopped || t.fired {
		return
	}
	t.fired = true
	t.f()
}

type fakeScheduler struct {
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) last() *fakeTimer {
	if len(s.timers) == 0 {
		return nil
	}
	return s.timers[len(s.timers)-1]
}

var testNow = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, goal models.Goal, plan models.Plan) (*Engine, *fakeScheduler) {
	t.Helper()
	sched := &fakeScheduler{}
	e := New(nil, WithSeed(42), WithScheduler(sched), WithClock(func() time.Time { return testNow }))
	age := 30
	require.NoError(t, e.UpdateProfile(ProfileUpdate{Age: &age, Goal: &goal, Plan: &plan}))
	return e, sched
}

// engineWithTasks builds an engine whose current day holds exactly tasks.
func engineWithTasks(t *testing.T, goal models.Goal, tasks ...models.Task) (*Engine, *fakeScheduler) {
	t.Helper()
	st := NewState()
	st.Profile.Goal = goal
	st.Profile.Plan = models.PlanFast
	st.DailyTasks = tasks
	sched := &fakeScheduler{}
	return New(st, WithSeed(7), WithScheduler(sched), WithClock(func() time.Time { return testNow })), sched
}

func task(day, idx, xp int) models.Task {
	return models.Task{ID: TaskID(day, idx), Name: "Task", Duration: "10 min", Coins: 10, XP: xp, Day: day}
}

func TestGenerateTasksForDay(t *testing.T) {
	cases := []struct {
		plan models.Plan
		want int
	}{
		{models.PlanFast, 4},
		{models.PlanMedium, 3},
		{models.PlanSlow, 2},
	}
	for _, tc := range cases {
		t.Run(string(tc.plan), func(t *testing.T) {
			r := New(nil, WithSeed(1)).rng
			tasks := GenerateTasksForDay(models.GoalMuscleGain, tc.plan, 3, r)
			require.Len(t, tasks, tc.want)

			seen := map[string]bool{}
			names := map[string]bool{}
			for i, task := range tasks {
				assert.Equal(t, TaskID(3, i), task.ID)
				assert.Equal(t, 3, task.Day)
				assert.False(t, task.Completed)
				assert.False(t, seen[task.ID], "duplicate id %s", task.ID)
				assert.False(t, names[task.Name], "task sampled twice: %s", task.Name)
				seen[task.ID] = true
				names[task.Name] = true
			}
		})
	}
}

func TestGenerateTasksForDayDeterministicWithSeed(t *testing.T) {
	a := GenerateTasksForDay(models.GoalFlexibility, models.PlanFast, 1, New(nil, WithSeed(99)).rng)
	b := GenerateTasksForDay(models.GoalFlexibility, models.PlanFast, 1, New(nil, WithSeed(99)).rng)
	assert.Equal(t, a, b)
}

func TestGenerateTasksForUnknownGoalUsesGeneralPool(t *testing.T) {
	tasks := GenerateTasksForDay(models.Goal("juggling"), models.PlanSlow, 1, New(nil, WithSeed(3)).rng)
	require.Len(t, tasks, 2)
	general := map[string]bool{}
	for _, tpl := range TaskPools[models.GoalGeneralFitness] {
		general[tpl.Name] = true
	}
	for _, task := range tasks {
		assert.True(t, general[task.Name])
	}
}

func TestSelectPlanGeneratesFirstDay(t *testing.T) {
	e, _ := newTestEngine(t, models.GoalWeightLoss, models.PlanMedium)
	st := e.Snapshot()
	assert.Len(t, st.DailyTasks, 3)
	require.NotNil(t, st.Profile.StartDate)
	assert.Equal(t, testNow, *st.Profile.StartDate)
}

func TestCompleteTaskIsIdempotent(t *testing.T) {
	e, _ := engineWithTasks(t, models.GoalCardioHealth, task(1, 0, 15), task(1, 1, 15))

	require.True(t, e.CompleteTask(TaskID(1, 0)))
	once := e.Snapshot()

	assert.False(t, e.CompleteTask(TaskID(1, 0)))
	twice := e.Snapshot()

	assert.Equal(t, once, twice)
	assert.Equal(t, StartingCoins+10, twice.Coins)
	assert.Equal(t, 15, twice.XP)
	assert.Len(t, twice.CompletedTasks, 1)
}

func TestCompleteUnknownTaskIsNoop(t *testing.T) {
	e, _ := engineWithTasks(t, models.GoalCardioHealth, task(1, 0, 15))
	before := e.Snapshot()
	assert.False(t, e.CompleteTask("day9_task9"))
	assert.Equal(t, before, e.Snapshot())
}

func TestCompleteTaskLevelsUpOneStep(t *testing.T) {
	e, _ := engineWithTasks(t, models.GoalMuscleGain, task(1, 0, 15), task(1, 1, 15))
	e.st.XP = 95

	require.True(t, e.CompleteTask(TaskID(1, 0)))
	st := e.Snapshot()
	assert.Equal(t, 2, st.Level)
	assert.Equal(t, 10, st.XP)
}

func TestCompleteTaskLargeOverflowStillSingleStep(t *testing.T) {
	e, _ := engineWithTasks(t, models.GoalMuscleGain, task(1, 0, 500), task(1, 1, 10))

	require.True(t, e.CompleteTask(TaskID(1, 0)))
	st := e.Snapshot()
	assert.Equal(t, 2, st.Level)
	assert.Equal(t, 400, st.XP)
}

func TestCelebratingMoodRevertsAfterDelay(t *testing.T) {
	var reverted *State
	st := NewState()
	st.Profile.Goal = models.GoalCardioHealth
	st.DailyTasks = []models.Task{task(1, 0, 10), task(1, 1, 10)}
	sched := &fakeScheduler{}
	e := New(st, WithSeed(1), WithScheduler(sched), OnMoodRevert(func(s *State) { reverted = s }))

	require.True(t, e.CompleteTask(TaskID(1, 0)))
	assert.Equal(t, models.MoodHappy, e.Snapshot().Mood)
	assert.Nil(t, sched.last())

	require.True(t, e.CompleteTask(TaskID(1, 1)))
	assert.Equal(t, models.MoodCelebrating, e.Snapshot().Mood)
	require.NotNil(t, sched.last())

	sched.last().fire()
	assert.Equal(t, models.MoodHappy, e.Snapshot().Mood)
	require.NotNil(t, reverted)
	assert.Equal(t, models.MoodHappy, reverted.Mood)
}

func TestStaleRevertDoesNotClobberNewerMood(t *testing.T) {
	e, sched := engineWithTasks(t, models.GoalCardioHealth, task(1, 0, 10))

	require.True(t, e.CompleteTask(TaskID(1, 0)))
	timer := sched.last()
	require.NotNil(t, timer)

	e.AdvanceDay()
	assert.True(t, timer.stopped, "advancing the day cancels the pending revert")

	// Run the callback anyway, as a timer that fired while the lock was held would.
	e.st.Mood = models.MoodCrying
	timer.f()
	assert.Equal(t, models.MoodCrying, e.Snapshot().Mood)
}

func TestFailTaskMoodProgression(t *testing.T) {
	e, _ := engineWithTasks(t, models.GoalStressAnxiety, task(1, 0, 10), task(1, 1, 10), task(1, 2, 10))

	require.True(t, e.FailTask(TaskID(1, 0)))
	assert.Equal(t, models.MoodDisappointed, e.Snapshot().Mood)

	require.True(t, e.FailTask(TaskID(1, 1)))
	assert.Equal(t, models.MoodCrying, e.Snapshot().Mood)

	st := e.Snapshot()
	assert.Equal(t, 2, st.FailedToday)
	assert.Len(t, st.DailyTasks, 1)
	assert.Len(t, st.MissedTasks, 2)
	require.NotNil(t, st.MissedTasks[0].MissedAt)
}

func TestFailTaskDemotesAtZeroXP(t *testing.T) {
	e, _ := engineWithTasks(t, models.GoalCardioHealth, task(1, 0, 10))
	e.st.Level = 2
	e.st.XP = 0

	require.True(t, e.FailTask(TaskID(1, 0)))
	st := e.Snapshot()
	assert.Equal(t, 1, st.Level)
	assert.Equal(t, DemotionXP, st.XP)
}

func TestFailTaskFloorsXPAtLevelOne(t *testing.T) {
	e, _ := engineWithTasks(t, models.GoalCardioHealth, task(1, 0, 10))
	e.st.XP = 5

	require.True(t, e.FailTask(TaskID(1, 0)))
	st := e.Snapshot()
	assert.Equal(t, 1, st.Level)
	assert.Equal(t, 0, st.XP)
}

func TestFailTaskResetsStreak(t *testing.T) {
	e, _ := engineWithTasks(t, models.GoalCardioHealth, task(1, 0, 10), task(1, 1, 10))
	e.st.Streak = 12

	require.True(t, e.CompleteTask(TaskID(1, 0)))
	require.True(t, e.FailTask(TaskID(1, 1)))
	assert.Equal(t, 0, e.Snapshot().Streak)
}

func TestFailCompletedTaskIsNoop(t *testing.T) {
	e, _ := engineWithTasks(t, models.GoalCardioHealth, task(1, 0, 10), task(1, 1, 10))
	require.True(t, e.CompleteTask(TaskID(1, 0)))
	before := e.Snapshot()

	assert.False(t, e.FailTask(TaskID(1, 0)))
	assert.Equal(t, before, e.Snapshot())
}

func TestAdvanceDayStreak(t *testing.T) {
	t.Run("all completed", func(t *testing.T) {
		e, _ := engineWithTasks(t, models.GoalCardioHealth, task(1, 0, 10), task(1, 1, 10))
		e.st.Streak = 2
		e.CompleteTask(TaskID(1, 0))
		e.CompleteTask(TaskID(1, 1))

		assert.True(t, e.AdvanceDay())
		st := e.Snapshot()
		assert.Equal(t, 3, st.Streak)
		assert.Equal(t, 2, st.CurrentDay)
		assert.Equal(t, models.MoodHappy, st.Mood)
		assert.Equal(t, 0, st.FailedToday)
		require.Len(t, st.DailyTasks, 4)
		for _, task := range st.DailyTasks {
			assert.Equal(t, 2, task.Day)
			assert.False(t, task.Completed)
		}
	})

	t.Run("pending task", func(t *testing.T) {
		e, _ := engineWithTasks(t, models.GoalCardioHealth, task(1, 0, 10), task(1, 1, 10))
		e.st.Streak = 5
		e.CompleteTask(TaskID(1, 0))

		assert.False(t, e.AdvanceDay())
		assert.Equal(t, 0, e.Snapshot().Streak)
	})

	t.Run("empty list", func(t *testing.T) {
		e, _ := engineWithTasks(t, models.GoalCardioHealth)
		e.st.Streak = 5
		assert.True(t, e.AdvanceDay())
		assert.Equal(t, 6, e.Snapshot().Streak)
	})

	t.Run("failed then rest completed", func(t *testing.T) {
		e, _ := engineWithTasks(t, models.GoalCardioHealth, task(1, 0, 10), task(1, 1, 10))
		require.True(t, e.FailTask(TaskID(1, 0)))
		require.True(t, e.CompleteTask(TaskID(1, 1)))
		assert.True(t, e.AllTasksCompleted())

		assert.True(t, e.AdvanceDay())
		assert.Equal(t, 1, e.Snapshot().Streak)
	})
}

func TestAdvanceDayRecordsHistory(t *testing.T) {
	e, _ := engineWithTasks(t, models.GoalCardioHealth, task(1, 0, 10))
	e.CompleteTask(TaskID(1, 0))
	e.AdvanceDay()

	st := e.Snapshot()
	require.Len(t, st.History, 1)
	entry := st.History[0]
	assert.Equal(t, 1, entry.Day)
	assert.Equal(t, 1, entry.Streak)
	assert.Equal(t, 100.0, entry.CompletionRate)
	assert.Equal(t, st.Vitals, entry.Vitals)
	assert.Equal(t, testNow, entry.RecordedAt)
}

func TestHistoryIsCapped(t *testing.T) {
	e, _ := newTestEngine(t, models.GoalGeneralFitness, models.PlanSlow)
	for i := 0; i < models.MaxHistoryEntries+5; i++ {
		e.AdvanceDay()
	}
	st := e.Snapshot()
	require.Len(t, st.History, models.MaxHistoryEntries)
	assert.Equal(t, 6, st.History[0].Day)
	assert.Equal(t, models.MaxHistoryEntries+5, st.History[len(st.History)-1].Day)
}

func TestCardioCompletionsRaiseHeartHealth(t *testing.T) {
	tasks := make([]models.Task, 6)
	for i := range tasks {
		tasks[i] = task(1, i, 10)
	}
	e, _ := engineWithTasks(t, models.GoalCardioHealth, tasks...)

	prev := e.Snapshot().Vitals.HeartHealth
	reachedFit := false
	for i := 0; i < 5; i++ {
		require.True(t, e.CompleteTask(TaskID(1, i)))
		st := e.Snapshot()
		assert.Greater(t, st.Vitals.HeartHealth, prev)
		prev = st.Vitals.HeartHealth
		if st.Vitals.HeartHealth >= 60 {
			assert.Contains(t, []models.BodyState{models.BodyFit, models.BodyExcellent}, st.BodyState)
			reachedFit = true
		}
	}
	assert.True(t, reachedFit)
	assert.Equal(t, 75.0, prev)
	assert.Equal(t, models.DefaultVitalValue, e.Snapshot().Vitals.MuscleStrength)
}

func TestGeneralFitnessBoostsAllVitals(t *testing.T) {
	e, _ := engineWithTasks(t, models.GoalGeneralFitness, task(1, 0, 10), task(1, 1, 10))
	e.CompleteTask(TaskID(1, 0))
	st := e.Snapshot()
	for _, v := range models.AllVitals {
		assert.Equal(t, 52.0, st.Vitals.Get(v), string(v))
	}
}

func TestBoostValueCaps(t *testing.T) {
	assert.Equal(t, 55.0, BoostValue(1, 5))
	assert.Equal(t, 95.0, BoostValue(9, 5))
	assert.Equal(t, 95.0, BoostValue(500, 5))
}

func TestCurrentBodyState(t *testing.T) {
	vitals := func(v models.Vital, value float64) models.VitalSigns {
		vs := models.DefaultVitalSigns()
		vs.Set(v, value)
		return vs
	}
	cases := []struct {
		name  string
		goal  models.Goal
		v     models.VitalSigns
		score float64
		want  models.BodyState
	}{
		{"muscle very muscular", models.GoalMuscleGain, vitals(models.VitalMuscleStrength, 85), 60, models.BodyVeryMuscular},
		{"muscle muscular", models.GoalMuscleGain, vitals(models.VitalMuscleStrength, 70), 60, models.BodyMuscular},
		{"muscle fit", models.GoalMuscleGain, vitals(models.VitalMuscleStrength, 60), 60, models.BodyFit},
		{"muscle thin", models.GoalMuscleGain, vitals(models.VitalMuscleStrength, 30), 40, models.BodyThin},
		{"muscle weak", models.GoalMuscleGain, vitals(models.VitalMuscleStrength, 10), 40, models.BodyWeak},
		{"weight overweight", models.GoalWeightLoss, vitals(models.VitalEnergyLevel, 30), 40, models.BodyOverweight},
		{"weight excellent", models.GoalWeightLoss, vitals(models.VitalEnergyLevel, 80), 70, models.BodyExcellent},
		{"cardio fit", models.GoalCardioHealth, vitals(models.VitalHeartHealth, 60), 60, models.BodyFit},
		{"cardio critical", models.GoalCardioHealth, vitals(models.VitalHeartHealth, 10), 40, models.BodyCritical},
		{"general excellent", models.GoalGeneralFitness, models.DefaultVitalSigns(), 85, models.BodyExcellent},
		{"general normal", models.GoalGeneralFitness, models.DefaultVitalSigns(), 50, models.BodyNormal},
		{"low score overrides", models.GoalMuscleGain, vitals(models.VitalMuscleStrength, 90), 15, models.BodyCritical},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CurrentBodyState(tc.goal, tc.v, tc.score))
		})
	}
}

func TestInvariantsHoldOverRandomSequence(t *testing.T) {
	e, _ := newTestEngine(t, models.GoalMuscleGain, models.PlanFast)
	for step := 0; step < 400; step++ {
		tasks := e.Tasks()
		switch {
		case len(tasks) == 0 || step%7 == 0:
			e.AdvanceDay()
		case step%3 == 0:
			e.FailTask(tasks[step%len(tasks)].ID)
		default:
			e.CompleteTask(tasks[step%len(tasks)].ID)
		}

		st := e.Snapshot()
		require.GreaterOrEqual(t, st.Level, 1)
		require.GreaterOrEqual(t, st.XP, 0)
		require.Less(t, st.XP, st.Level*XPPerLevel)
		require.GreaterOrEqual(t, st.Coins, 0)
		require.GreaterOrEqual(t, st.Streak, 0)
		require.True(t, st.HealthScore >= 0 && st.HealthScore <= 100)
		for _, v := range models.AllVitals {
			val := st.Vitals.Get(v)
			require.True(t, val >= 0 && val <= 100, "%s=%v", v, val)
		}
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	e, sched := engineWithTasks(t, models.GoalCardioHealth, task(1, 0, 10))
	e.CompleteTask(TaskID(1, 0))
	require.NoError(t, e.Purchase("shirt_red"))

	e.Reset()
	st := e.Snapshot()
	want := NewState()
	want.MoodVersion = st.MoodVersion
	assert.Equal(t, want, st)
	assert.True(t, sched.last().stopped)
}

func TestShopPurchaseAndEquip(t *testing.T) {
	e, _ := engineWithTasks(t, models.GoalCardioHealth)

	assert.ErrorIs(t, e.Purchase("nope"), ErrUnknownItem)
	assert.ErrorIs(t, e.Purchase("cape_hero"), ErrInsufficientCoins)
	assert.ErrorIs(t, e.Equip("hat_cap"), ErrNotOwned)

	require.NoError(t, e.Purchase("hat_cap"))
	assert.ErrorIs(t, e.Purchase("hat_cap"), ErrAlreadyOwned)
	require.NoError(t, e.Purchase("shirt_red"))
	assert.Equal(t, StartingCoins-80, e.Snapshot().Coins)

	require.NoError(t, e.Equip("hat_cap"))
	require.NoError(t, e.Equip("shirt_red"))
	assert.Equal(t, []string{"hat_cap", "shirt_red"}, e.Snapshot().EquippedItems)

	e.st.Coins = 100
	require.NoError(t, e.Purchase("hat_beanie"))
	require.NoError(t, e.Equip("hat_beanie"))
	assert.Equal(t, []string{"shirt_red", "hat_beanie"}, e.Snapshot().EquippedItems)

	assert.True(t, e.Unequip("shirt_red"))
	assert.False(t, e.Unequip("shirt_red"))
	assert.Equal(t, []string{"hat_beanie"}, e.Snapshot().EquippedItems)
}

func TestUpdateProfileValidation(t *testing.T) {
	e := New(nil, WithSeed(1))
	bad := models.Goal("flying")
	assert.ErrorIs(t, e.UpdateProfile(ProfileUpdate{Goal: &bad}), ErrInvalidGoal)
	plan := models.Plan("turbo")
	assert.ErrorIs(t, e.UpdateProfile(ProfileUpdate{Plan: &plan}), ErrInvalidPlan)
	age := 0
	assert.ErrorIs(t, e.UpdateProfile(ProfileUpdate{Age: &age}), ErrInvalidAge)

	name := "  Buddy "
	require.NoError(t, e.UpdateProfile(ProfileUpdate{CompanionName: &name}))
	assert.Equal(t, "Buddy", e.Snapshot().Profile.CompanionName)
	assert.Empty(t, e.Snapshot().DailyTasks, "no tasks before a plan is chosen")
}

func TestPlanProgress(t *testing.T) {
	e, _ := newTestEngine(t, models.GoalBackPain, models.PlanFast)
	for i := 0; i < 3; i++ {
		e.AdvanceDay()
	}
	p := e.PlanProgress()
	assert.Equal(t, 30, p.PlanDays)
	assert.Equal(t, 27, p.DaysRemaining)
	assert.InDelta(t, 10.0, p.Percent, 0.001)
}

func TestActivityCounters(t *testing.T) {
	e := New(nil, WithSeed(1))
	require.NoError(t, e.AddSteps(1200))
	require.NoError(t, e.AddWorkoutMinutes(30))
	assert.ErrorIs(t, e.AddSteps(-1), ErrNegativeAmount)
	st := e.Snapshot()
	assert.Equal(t, 1200, st.TotalSteps)
	assert.Equal(t, 30, st.TotalWorkoutMinutes)
}

func TestProjectDoesNotMutate(t *testing.T) {
	e, _ := newTestEngine(t, models.GoalMuscleGain, models.PlanFast)
	before := e.Snapshot()
	p := e.Project(5)
	assert.Equal(t, 5, p.Years)
	assert.Equal(t, before, e.Snapshot())
}

func TestRestore(t *testing.T) {
	t.Run("undoes a completion", func(t *testing.T) {
		e, _ := engineWithTasks(t, models.GoalCardioHealth, task(1, 0, 10), task(1, 1, 10))
		before := e.Snapshot()
		require.True(t, e.CompleteTask(TaskID(1, 0)))

		e.Restore(before)
		st := e.Snapshot()
		assert.Equal(t, before.Coins, st.Coins)
		assert.Equal(t, before.XP, st.XP)
		assert.False(t, st.DailyTasks[0].Completed)
		assert.Empty(t, st.CompletedTasks)
		assert.True(t, e.CompleteTask(TaskID(1, 0)), "the task can be completed again")
	})

	t.Run("cancels a revert scheduled after the snapshot", func(t *testing.T) {
		e, sched := engineWithTasks(t, models.GoalCardioHealth, task(1, 0, 10))
		before := e.Snapshot()
		require.True(t, e.CompleteTask(TaskID(1, 0)))
		timer := sched.last()
		require.NotNil(t, timer)

		e.Restore(before)
		assert.True(t, timer.stopped)
		assert.Equal(t, models.MoodHappy, e.Snapshot().Mood)
	})

	t.Run("keeps the revert when the mood is unchanged", func(t *testing.T) {
		e, sched := engineWithTasks(t, models.GoalCardioHealth, task(1, 0, 10))
		require.True(t, e.CompleteTask(TaskID(1, 0)))
		before := e.Snapshot()
		require.NoError(t, e.AddSteps(500))

		e.Restore(before)
		assert.Zero(t, e.Snapshot().TotalSteps)
		timer := sched.last()
		require.NotNil(t, timer)
		assert.False(t, timer.stopped)

		timer.fire()
		assert.Equal(t, models.MoodHappy, e.Snapshot().Mood)
	})

	t.Run("nil is ignored", func(t *testing.T) {
		e, _ := engineWithTasks(t, models.GoalCardioHealth, task(1, 0, 10))
		e.Restore(nil)
		assert.Len(t, e.Snapshot().DailyTasks, 1)
	})
}
