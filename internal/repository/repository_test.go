package repository

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/healthtwin-backend/internal/database"
	"github.com/jengzang/healthtwin-backend/internal/engine"
	"github.com/jengzang/healthtwin-backend/internal/models"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "twin.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStateRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewStateRepository(openDB(t))

	missing, err := repo.Get(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	e := engine.New(nil, engine.WithSeed(5))
	goal, plan := models.GoalCardioHealth, models.PlanMedium
	require.NoError(t, e.UpdateProfile(engine.ProfileUpdate{Goal: &goal, Plan: &plan}))
	e.CompleteTask(e.Tasks()[0].ID)
	want := e.Snapshot()

	require.NoError(t, repo.Save(ctx, "u1", want))
	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Coins, got.Coins)
	assert.Equal(t, want.Vitals, got.Vitals)
	assert.Equal(t, want.DailyTasks, got.DailyTasks)
	assert.Len(t, got.CompletedTasks, 1)

	want.Coins = 999
	require.NoError(t, repo.Save(ctx, "u1", want))
	got, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 999, got.Coins)

	require.NoError(t, repo.Delete(ctx, "u1"))
	got, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestChatRepositoryKeepsLatestMessages(t *testing.T) {
	ctx := context.Background()
	repo := NewChatRepository(openDB(t))

	for i := 0; i < MaxChatMessages+10; i++ {
		require.NoError(t, repo.Append(ctx, "u1", models.ChatMessage{
			Role:    models.ChatRoleUser,
			Content: fmt.Sprintf("message %d", i),
		}))
	}
	require.NoError(t, repo.Append(ctx, "u2", models.ChatMessage{Role: models.ChatRoleUser, Content: "other"}))

	all, err := repo.Recent(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, all, MaxChatMessages)
	assert.Equal(t, "message 10", all[0].Content)
	assert.Equal(t, fmt.Sprintf("message %d", MaxChatMessages+9), all[len(all)-1].Content)

	last, err := repo.Recent(ctx, "u1", 5)
	require.NoError(t, err)
	require.Len(t, last, 5)
	assert.Equal(t, fmt.Sprintf("message %d", MaxChatMessages+5), last[0].Content)

	require.NoError(t, repo.Clear(ctx, "u1"))
	none, err := repo.Recent(ctx, "u1", 5)
	require.NoError(t, err)
	assert.Empty(t, none)

	other, err := repo.Recent(ctx, "u2", 5)
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestChatRepositoryRejectsUnknownRole(t *testing.T) {
	repo := NewChatRepository(openDB(t))
	err := repo.Append(context.Background(), "u1", models.ChatMessage{Role: "system", Content: "x"})
	assert.Error(t, err)
}

func TestReportRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewReportRepository(openDB(t))

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, kind := range []string{models.RecipientGuider, models.RecipientDoctor} {
		require.NoError(t, repo.Create(ctx, models.Report{
			ID:            fmt.Sprintf("r%d", i),
			UserID:        "u1",
			RecipientType: kind,
			ToEmail:       "someone@example.com",
			Subject:       "Progress",
			CreatedAt:     base.Add(time.Duration(i) * time.Hour),
		}))
	}

	reports, err := repo.ListByUser(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "r1", reports[0].ID)
	assert.Equal(t, models.RecipientDoctor, reports[0].RecipientType)
	assert.True(t, reports[0].CreatedAt.Equal(base.Add(time.Hour)))
}
