package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/healthtwin-backend/internal/engine"
	"github.com/jengzang/healthtwin-backend/internal/middleware"
	"github.com/jengzang/healthtwin-backend/internal/service"
	"github.com/jengzang/healthtwin-backend/pkg/response"
)

// ProgressHandler handles HTTP requests for the task and progress engine
type ProgressHandler struct {
	progressService *service.ProgressService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progressService *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// StateView is the full state plus derived fields
type StateView struct {
	*engine.State
	CompletionRate float64             `json:"completion_rate"`
	XPForNextLevel int                 `json:"xp_for_next_level"`
	CompletedToday int                 `json:"completed_today"`
	PlanProgress   engine.PlanProgress `json:"plan_progress"`
}

func newStateView(st *engine.State, pp engine.PlanProgress) StateView {
	return StateView{
		State:          st,
		CompletionRate: st.CompletionRate(),
		XPForNextLevel: st.XPForNextLevel(),
		CompletedToday: st.CompletedToday(),
		PlanProgress:   pp,
	}
}

func (h *ProgressHandler) respondState(c *gin.Context, st *engine.State) {
	pp, err := h.progressService.PlanProgress(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, newStateView(st, pp))
}

// GetState handles GET /api/v1/progress
func (h *ProgressHandler) GetState(c *gin.Context) {
	st, err := h.progressService.State(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	h.respondState(c, st)
}

// UpdateProfile handles PUT /api/v1/progress/profile
func (h *ProgressHandler) UpdateProfile(c *gin.Context) {
	var req engine.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	st, err := h.progressService.UpdateProfile(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	h.respondState(c, st)
}

// GetTasks handles GET /api/v1/progress/tasks
func (h *ProgressHandler) GetTasks(c *gin.Context) {
	tasks, err := h.progressService.Tasks(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, tasks)
}

// CompleteTaskResult reports whether the call changed anything
type CompleteTaskResult struct {
	Changed bool      `json:"changed"`
	State   StateView `json:"state"`
}

// CompleteTask handles POST /api/v1/progress/tasks/:id/complete
func (h *ProgressHandler) CompleteTask(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	st, changed, err := h.progressService.CompleteTask(ctx, userID, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	pp, err := h.progressService.PlanProgress(ctx, userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, CompleteTaskResult{Changed: changed, State: newStateView(st, pp)})
}

// FailTask handles POST /api/v1/progress/tasks/:id/fail
func (h *ProgressHandler) FailTask(c *gin.Context) {
	st, err := h.progressService.FailTask(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	h.respondState(c, st)
}

// AdvanceDayResult reports whether the closed day extended the streak
type AdvanceDayResult struct {
	FullDay bool      `json:"full_day"`
	State   StateView `json:"state"`
}

// AdvanceDay handles POST /api/v1/progress/advance
func (h *ProgressHandler) AdvanceDay(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	force := false
	if raw := c.Query("force"); raw != "" {
		var err error
		if force, err = strconv.ParseBool(raw); err != nil {
			response.BadRequest(c, "Invalid force parameter")
			return
		}
	}

	st, full, err := h.progressService.AdvanceDay(ctx, userID, force)
	if err != nil {
		response.FromError(c, err)
		return
	}
	pp, err := h.progressService.PlanProgress(ctx, userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, AdvanceDayResult{FullDay: full, State: newStateView(st, pp)})
}

// Reset handles POST /api/v1/progress/reset
func (h *ProgressHandler) Reset(c *gin.Context) {
	st, err := h.progressService.Reset(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	h.respondState(c, st)
}

// LogActivity handles POST /api/v1/progress/activity
func (h *ProgressHandler) LogActivity(c *gin.Context) {
	var req service.Activity
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	st, err := h.progressService.LogActivity(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	h.respondState(c, st)
}

// GetHistory handles GET /api/v1/progress/history
func (h *ProgressHandler) GetHistory(c *gin.Context) {
	report, err := h.progressService.History(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, report)
}

// GetProjection handles GET /api/v1/projection?years=N
func (h *ProgressHandler) GetProjection(c *gin.Context) {
	years, err := strconv.Atoi(c.DefaultQuery("years", "5"))
	if err != nil {
		response.BadRequest(c, "Invalid years parameter")
		return
	}
	if years < 0 || years > 100 {
		response.FromError(c, service.ErrInvalidYears)
		return
	}

	p, err := h.progressService.Project(c.Request.Context(), middleware.UserID(c), years)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, p)
}
