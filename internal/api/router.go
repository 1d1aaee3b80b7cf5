package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/healthtwin-backend/internal/config"
	"github.com/jengzang/healthtwin-backend/internal/handler"
	"github.com/jengzang/healthtwin-backend/internal/middleware"
	"github.com/jengzang/healthtwin-backend/internal/platform/logger"
	"github.com/jengzang/healthtwin-backend/internal/service"
)

// Services are the dependencies the router exposes over HTTP
type Services struct {
	Log        *logger.Logger
	Auth       *middleware.Auth
	Limiter    *middleware.RateLimiter // applied to AI and email routes, may be nil
	Progress   *service.ProgressService
	Prediction *service.PredictionService
	Timeline   *service.TimelineService
	Chat       *service.ChatService
	Report     *service.ReportService
}

// SetupRouter sets up the HTTP routes
func SetupRouter(cfg *config.Config, s Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(s.Log), middleware.CORS(cfg.CORSOrigins))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Health Twin API is running",
		})
	})

	authHandler := handler.NewAuthHandler(s.Auth)
	progressHandler := handler.NewProgressHandler(s.Progress)
	shopHandler := handler.NewShopHandler(s.Progress)
	chatHandler := handler.NewChatHandler(s.Chat)
	predictionHandler := handler.NewPredictionHandler(s.Prediction, s.Timeline)
	reportHandler := handler.NewReportHandler(s.Report)

	var limited []gin.HandlerFunc
	if s.Limiter != nil {
		limited = []gin.HandlerFunc{s.Limiter.Middleware()}
	}
	withLimit := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, limited...), h)
	}

	v1 := r.Group("/api/v1")
	v1.POST("/auth/guest", withLimit(authHandler.Guest)...)

	api := v1.Group("", s.Auth.RequireAuth())
	{
		progress := api.Group("/progress")
		{
			progress.GET("", progressHandler.GetState)
			progress.PUT("/profile", progressHandler.UpdateProfile)
			progress.GET("/tasks", progressHandler.GetTasks)
			progress.POST("/tasks/:id/complete", progressHandler.CompleteTask)
			progress.POST("/tasks/:id/fail", progressHandler.FailTask)
			progress.POST("/advance", progressHandler.AdvanceDay)
			progress.POST("/reset", progressHandler.Reset)
			progress.POST("/activity", progressHandler.LogActivity)
			progress.GET("/history", progressHandler.GetHistory)
		}

		api.GET("/projection", progressHandler.GetProjection)

		shop := api.Group("/shop")
		{
			shop.GET("", shopHandler.GetShop)
			shop.POST("/:id/purchase", shopHandler.Purchase)
			shop.POST("/:id/equip", shopHandler.Equip)
			shop.POST("/:id/unequip", shopHandler.Unequip)
		}

		chat := api.Group("/chat")
		{
			chat.POST("", withLimit(chatHandler.Send)...)
			chat.GET("/status", chatHandler.GetStatus)
			chat.GET("/history", chatHandler.GetHistory)
			chat.DELETE("/history", chatHandler.ClearHistory)
		}

		predictions := api.Group("/predictions", limited...)
		{
			predictions.POST("", predictionHandler.Predict)
			predictions.POST("/timeline", predictionHandler.Timeline)
			predictions.POST("/future-look", predictionHandler.FutureLook)
		}

		reports := api.Group("/reports")
		{
			reports.POST("", withLimit(reportHandler.Send)...)
			reports.GET("", reportHandler.List)
		}
	}

	return r
}
