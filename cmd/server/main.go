package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/healthtwin-backend/internal/api"
	"github.com/jengzang/healthtwin-backend/internal/cache"
	"github.com/jengzang/healthtwin-backend/internal/config"
	"github.com/jengzang/healthtwin-backend/internal/database"
	"github.com/jengzang/healthtwin-backend/internal/middleware"
	"github.com/jengzang/healthtwin-backend/internal/platform/gemini"
	"github.com/jengzang/healthtwin-backend/internal/platform/logger"
	"github.com/jengzang/healthtwin-backend/internal/platform/sendgrid"
	"github.com/jengzang/healthtwin-backend/internal/repository"
	"github.com/jengzang/healthtwin-backend/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		boot, _ := logger.New(os.Getenv("LOG_MODE"), logger.Options{})
		boot.Fatal("Failed to load config", "error", err)
	}

	log, err := logger.New(cfg.LogMode, logger.Options{HashSalt: cfg.JWTSecret})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.LogMode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化数据库
	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatal("Failed to initialize database", "error", err)
	}
	defer database.Close()
	db := database.GetDB()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	responses := newCache(ctx, cfg, log)
	defer responses.Close()

	var (
		text service.TextGenerator
		keys service.KeyStatser
	)
	if len(cfg.Gemini.APIKeys) > 0 {
		client := gemini.New(log, gemini.Config{
			BaseURL: cfg.Gemini.BaseURL,
			Model:   cfg.Gemini.Model,
			Timeout: cfg.Gemini.Timeout,
		}, gemini.NewKeyManager(cfg.Gemini.APIKeys))
		text, keys = client, client.Keys()
		log.Info("Generative text enabled", "model", cfg.Gemini.Model, "keys", len(cfg.Gemini.APIKeys))
	} else {
		log.Warn("No Gemini API keys configured, using local fallbacks")
	}

	var mailer service.Mailer
	if cfg.EmailEnabled() {
		sg, err := sendgrid.New(log, sendgrid.Config{
			APIKey:           cfg.SendGrid.APIKey,
			BaseURL:          cfg.SendGrid.BaseURL,
			DefaultFromEmail: cfg.SendGrid.FromEmail,
			DefaultFromName:  cfg.SendGrid.FromName,
		})
		if err != nil {
			log.Fatal("Failed to create email client", "error", err)
		}
		mailer = sg
	} else {
		log.Warn("SendGrid not configured, reports are disabled")
	}

	states := repository.NewStateRepository(db)
	chats := repository.NewChatRepository(db)
	reports := repository.NewReportRepository(db)

	aiOpts := service.AIOptions{Timeout: cfg.Gemini.Timeout, CacheTTL: cfg.Cache.TTL}
	progress := service.NewProgressService(states, log)
	defer progress.Close()

	limiter := middleware.NewRateLimiter(cfg.Rate.RequestsPerMinute, cfg.Rate.Burst)
	defer limiter.Stop()

	// 初始化路由
	router := api.SetupRouter(cfg, api.Services{
		Log:        log,
		Auth:       middleware.NewAuth(cfg.JWTSecret, log),
		Limiter:    limiter,
		Progress:   progress,
		Prediction: service.NewPredictionService(progress, text, responses, log, aiOpts),
		Timeline:   service.NewTimelineService(progress, text, responses, log, aiOpts),
		Chat:       service.NewChatService(progress, chats, text, keys, log, aiOpts),
		Report:     service.NewReportService(progress, chats, reports, mailer, log),
	})

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 启动服务器
	go func() {
		log.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
	}
}

// newCache prefers Redis when configured and reachable, else an in-process LRU.
func newCache(ctx context.Context, cfg *config.Config, log *logger.Logger) cache.Cache {
	if cfg.Redis.Addr != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		rc, err := cache.NewRedis(pingCtx, cache.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err == nil {
			log.Info("Using Redis response cache", "addr", cfg.Redis.Addr)
			return rc
		}
		log.Warn("Redis unavailable, falling back to memory cache", "addr", cfg.Redis.Addr, "error", err)
	}
	return cache.NewMemory(cfg.Cache.Size, cfg.Cache.TTL)
}
