// Package main runs the live Q&A HTTP server with WebSocket fanout and
// graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/askstage/backend/config"
	"github.com/askstage/backend/internal/auth"
	"github.com/askstage/backend/internal/middleware"
	"github.com/askstage/backend/internal/questions"
	"github.com/askstage/backend/internal/realtime"
	"github.com/askstage/backend/internal/speakers"
	"github.com/askstage/backend/pkg/database"
	"github.com/askstage/backend/pkg/redis"
	"github.com/askstage/backend/pkg/response"
	"github.com/askstage/backend/pkg/utils"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()

	// Question store: flat JSON file by default, Postgres when configured.
	var store questions.Store
	switch cfg.Store.Driver {
	case config.StorePostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns), logger)
		if err != nil {
			logger.Fatal("database", zap.Error(err))
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
		store = questions.NewPostgresStore(pool)
	default:
		fileStore, err := questions.NewFileStore(cfg.Store.QuestionsPath)
		if err != nil {
			logger.Fatal("question store", zap.Error(err))
		}
		store = fileStore
	}

	// Redis is optional; without it the hub fans out locally only.
	var pub realtime.Publisher
	var sub realtime.Subscriber
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		bridge := realtime.NewRedisPubSub(rdb.Client, logger)
		pub, sub = bridge, bridge
	}
	hub := realtime.NewHub(logger, pub, sub)

	speakerRepo, err := speakers.NewRepository(cfg.Store.SpeakersPath)
	if err != nil {
		logger.Fatal("speakers", zap.Error(err))
	}
	speakerHandler := speakers.NewHandler(speakerRepo)

	questionHandler := questions.NewHandler(store, hub)

	// Moderator auth is optional: configured key -> JWT-guarded mod routes.
	var jwtService *auth.JWTService
	var loginHandler *auth.Handler
	if cfg.Mod.Key != "" {
		keyHash, err := utils.HashKey(cfg.Mod.Key)
		if err != nil {
			logger.Fatal("hash moderator key", zap.Error(err))
		}
		jwtService = auth.NewJWTService(cfg.Mod.JWTSecret, cfg.Mod.ExpireHours)
		loginHandler = auth.NewHandler(keyHash, jwtService, logger)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	api := router.Group("/api")
	{
		api.GET("/speakers", speakerHandler.List)
		api.GET("/questions", questionHandler.ListBySpeaker)
		api.POST("/questions", questionHandler.Create)
		api.POST("/questions/:id/vote", questionHandler.Vote)
		api.POST("/questions/:id/unvote", questionHandler.Unvote)

		mod := api.Group("")
		mod.Use(middleware.Moderator(jwtService))
		{
			mod.POST("/mod/approve", questionHandler.Approve)
			mod.DELETE("/questions/:id", questionHandler.Delete)
		}

		if loginHandler != nil {
			api.POST("/mod/login", loginHandler.Login)
		}
	}

	router.GET("/ws", realtime.ServeWs(hub, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
