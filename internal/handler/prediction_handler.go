package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/healthtwin-backend/internal/middleware"
	"github.com/jengzang/healthtwin-backend/internal/service"
	"github.com/jengzang/healthtwin-backend/pkg/response"
)

// PredictionHandler handles HTTP requests for AI-assisted forecasts
type PredictionHandler struct {
	predictionService *service.PredictionService
	timelineService   *service.TimelineService
}

// NewPredictionHandler creates a new prediction handler
func NewPredictionHandler(predictionService *service.PredictionService, timelineService *service.TimelineService) *PredictionHandler {
	return &PredictionHandler{
		predictionService: predictionService,
		timelineService:   timelineService,
	}
}

// PredictRequest selects the forecast horizon, five years when omitted
type PredictRequest struct {
	Years *int `json:"years"`
}

// Predict handles POST /api/v1/predictions
func (h *PredictionHandler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "Invalid request body")
		return
	}
	years := 5
	if req.Years != nil {
		years = *req.Years
	}

	pred, err := h.predictionService.Predict(c.Request.Context(), middleware.UserID(c), years)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, pred)
}

// Timeline handles POST /api/v1/predictions/timeline
func (h *PredictionHandler) Timeline(c *gin.Context) {
	tl, err := h.timelineService.Timeline(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, tl)
}

// FutureLook handles POST /api/v1/predictions/future-look
func (h *PredictionHandler) FutureLook(c *gin.Context) {
	fl, err := h.timelineService.FutureLook(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, fl)
}
