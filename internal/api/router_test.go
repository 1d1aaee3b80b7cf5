package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/healthtwin-backend/internal/config"
	"github.com/jengzang/healthtwin-backend/internal/database"
	"github.com/jengzang/healthtwin-backend/internal/engine"
	"github.com/jengzang/healthtwin-backend/internal/middleware"
	"github.com/jengzang/healthtwin-backend/internal/models"
	"github.com/jengzang/healthtwin-backend/internal/repository"
	"github.com/jengzang/healthtwin-backend/internal/service"
)

func init() { gin.SetMode(gin.TestMode) }

type idleTimer struct{}

func (idleTimer) Stop() bool { return true }

type idleScheduler struct{}

func (idleScheduler) AfterFunc(time.Duration, func()) engine.Timer { return idleTimer{} }

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func (c *client) do(method, path string, body any) (int, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.Defaults()
	progress := service.NewProgressService(repository.NewStateRepository(db), nil,
		engine.WithSeed(1), engine.WithScheduler(idleScheduler{}))
	t.Cleanup(progress.Close)
	chats := repository.NewChatRepository(db)

	return SetupRouter(cfg, Services{
		Auth:       middleware.NewAuth("test-secret", nil),
		Progress:   progress,
		Prediction: service.NewPredictionService(progress, nil, nil, nil, service.AIOptions{}),
		Timeline:   service.NewTimelineService(progress, nil, nil, nil, service.AIOptions{}),
		Chat:       service.NewChatService(progress, chats, nil, nil, nil, service.AIOptions{}),
		Report:     service.NewReportService(progress, chats, repository.NewReportRepository(db), nil, nil),
	})
}

func login(t *testing.T, r *gin.Engine) *client {
	t.Helper()
	c := &client{t: t, router: r}
	status, env := c.do(http.MethodPost, "/api/v1/auth/guest", nil)
	require.Equal(t, http.StatusOK, status)
	tok := decode[struct {
		UserID string `json:"user_id"`
		Token  string `json:"token"`
	}](t, env)
	require.NotEmpty(t, tok.UserID)
	c.token = tok.Token
	return c
}

type stateBody struct {
	CurrentDay  int           `json:"current_day"`
	Coins       int           `json:"coins"`
	XP          int           `json:"xp"`
	Streak      int           `json:"streak"`
	Mood        models.Mood   `json:"mood"`
	DailyTasks  []models.Task `json:"daily_tasks"`
	MissedTasks []any         `json:"missed_tasks"`
}

func TestHealthIsPublic(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t)}
	status, env := c.do(http.MethodGet, "/api/v1/progress", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, http.StatusUnauthorized, env.Code)
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	c := login(t, newTestRouter(t))

	status, env := c.do(http.MethodPut, "/api/v1/progress/profile", map[string]any{
		"age": 35, "goal": "cardio_health", "plan": "medium",
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	st := decode[stateBody](t, env)
	require.Len(t, st.DailyTasks, 3)

	status, env = c.do(http.MethodPost, "/api/v1/progress/tasks/"+st.DailyTasks[0].ID+"/complete", nil)
	require.Equal(t, http.StatusOK, status)
	done := decode[struct {
		Changed bool      `json:"changed"`
		State   stateBody `json:"state"`
	}](t, env)
	assert.True(t, done.Changed)
	assert.Equal(t, models.MoodHappy, done.State.Mood)
	assert.Greater(t, done.State.Coins, engine.StartingCoins)

	status, env = c.do(http.MethodPost, "/api/v1/progress/tasks/"+st.DailyTasks[0].ID+"/complete", nil)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, decode[struct {
		Changed bool `json:"changed"`
	}](t, env).Changed)

	status, env = c.do(http.MethodPost, "/api/v1/progress/tasks/"+st.DailyTasks[0].ID+"/fail", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "task_already_completed", env.Error)

	status, env = c.do(http.MethodPost, "/api/v1/progress/tasks/"+st.DailyTasks[1].ID+"/fail", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[stateBody](t, env).MissedTasks, 1)

	status, env = c.do(http.MethodPost, "/api/v1/progress/tasks/nope/complete", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "task_not_found", env.Error)

	status, env = c.do(http.MethodPost, "/api/v1/progress/advance", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "tasks_pending", env.Error)

	status, env = c.do(http.MethodPost, "/api/v1/progress/advance?force=true", nil)
	require.Equal(t, http.StatusOK, status)
	adv := decode[struct {
		FullDay bool      `json:"full_day"`
		State   stateBody `json:"state"`
	}](t, env)
	assert.False(t, adv.FullDay)
	assert.Equal(t, 2, adv.State.CurrentDay)
	assert.Len(t, adv.State.DailyTasks, 3)

	status, env = c.do(http.MethodGet, "/api/v1/progress/history", nil)
	require.Equal(t, http.StatusOK, status)
	hist := decode[service.HistoryReport](t, env)
	assert.Len(t, hist.Entries, 1)
}

func TestStateIsPerUser(t *testing.T) {
	r := newTestRouter(t)
	alice, bob := login(t, r), login(t, r)

	status, _ := alice.do(http.MethodPut, "/api/v1/progress/profile", map[string]any{"goal": "muscle_gain", "plan": "fast"})
	require.Equal(t, http.StatusOK, status)

	_, env := bob.do(http.MethodGet, "/api/v1/progress/tasks", nil)
	assert.Empty(t, decode[[]models.Task](t, env))
	_, env = alice.do(http.MethodGet, "/api/v1/progress/tasks", nil)
	assert.Len(t, decode[[]models.Task](t, env), 4)
}

func TestShopOverHTTP(t *testing.T) {
	c := login(t, newTestRouter(t))

	status, env := c.do(http.MethodPost, "/api/v1/shop/hat_cap/purchase", nil)
	require.Equal(t, http.StatusOK, status)
	shop := decode[struct {
		Coins int      `json:"coins"`
		Owned []string `json:"owned"`
	}](t, env)
	assert.Equal(t, engine.StartingCoins-50, shop.Coins)
	assert.Equal(t, []string{"hat_cap"}, shop.Owned)

	status, env = c.do(http.MethodPost, "/api/v1/shop/hat_cap/purchase", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "already_owned", env.Error)

	status, env = c.do(http.MethodPost, "/api/v1/shop/wings_angel/purchase", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "insufficient_coins", env.Error)

	status, _ = c.do(http.MethodPost, "/api/v1/shop/hat_cap/equip", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = c.do(http.MethodPost, "/api/v1/shop/hat_cap/unequip", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestProjectionAndPredictionOverHTTP(t *testing.T) {
	c := login(t, newTestRouter(t))

	status, env := c.do(http.MethodGet, "/api/v1/projection?years=10", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 10, decode[struct {
		Years int `json:"years"`
	}](t, env).Years)

	status, env = c.do(http.MethodGet, "/api/v1/projection?years=500", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_years", env.Error)

	status, env = c.do(http.MethodPost, "/api/v1/predictions", map[string]any{"years": 3})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, service.SourceFallback, decode[service.Prediction](t, env).Source)

	status, env = c.do(http.MethodPost, "/api/v1/predictions/timeline", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[service.Timeline](t, env).Years, service.TimelineYears)

	status, env = c.do(http.MethodPost, "/api/v1/predictions/future-look", nil)
	require.Equal(t, http.StatusOK, status)
	look := decode[service.FutureLook](t, env)
	assert.Equal(t, service.SourceFallback, look.Source)
	assert.NotEmpty(t, look.Message)
}

func TestChatAndReportOverHTTP(t *testing.T) {
	c := login(t, newTestRouter(t))

	status, env := c.do(http.MethodPost, "/api/v1/chat", map[string]any{"message": "How should I sleep?"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, service.SourceFallback, decode[service.ChatReply](t, env).Source)

	_, env = c.do(http.MethodGet, "/api/v1/chat/history", nil)
	assert.Len(t, decode[[]models.ChatMessage](t, env), 2)

	_, env = c.do(http.MethodGet, "/api/v1/chat/status", nil)
	assert.Equal(t, "offline", decode[service.ChatStatus](t, env).Status)

	status, env = c.do(http.MethodPost, "/api/v1/reports", map[string]any{"to_email": "doc@example.com", "recipient_type": "doctor"})
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "email_unavailable", env.Error)
}
