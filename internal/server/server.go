package server

import (
	"net/http"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ankeapp/anke-backend/internal/autovoter"
	"github.com/ankeapp/anke-backend/internal/config"
	"github.com/ankeapp/anke-backend/internal/database"
	"github.com/ankeapp/anke-backend/internal/handlers"
	"github.com/ankeapp/anke-backend/internal/middleware"
)

type Server struct {
	cfg     *config.Config
	db      database.Service
	handler *handlers.Handler
	log     *zap.Logger
}

// NewServer wires the engine, handlers and routes into an http.Server.
func NewServer(cfg *config.Config, db database.Service, log *zap.Logger) *http.Server {
	gormDB := db.GetDB()

	store := autovoter.NewStore(gormDB)
	engine := autovoter.New(store, autovoter.Config{
		EnvAPIKey: cfg.OpenAIAPIKey,
		Model:     cfg.OpenAIModel,
		BaseURL:   cfg.OpenAIBaseURL,
	}, log)

	newServer := &Server{
		cfg:     cfg,
		db:      db,
		handler: handlers.NewHandler(gormDB, engine, store, cfg.CronSecret, log),
		log:     log,
	}

	router := newServer.RegisterRoutes()

	return &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		// Long enough for a full simulator batch, which waits on the
		// LLM once per comment action.
		WriteTimeout: 5 * time.Minute,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()

	if s.cfg.SentryDSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.db.Health())
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// One trigger every few seconds per caller is plenty; this is
	// throttling only, overlapping runs are still possible.
	triggerLimit := middleware.NewRateLimiter(rate.Every(10*time.Second), 3)

	// API routes
	api := r.Group("/api")
	{
		// Public reads
		api.GET("/posts", s.handler.Post.GetPosts)
		api.GET("/posts/:id", s.handler.Post.GetPost)
		api.GET("/posts/:id/comments", s.handler.Comment.GetComments)
		api.GET("/users/:id", s.handler.User.GetUserProfile)

		// Public vote with optional authentication
		api.POST("/vote", middleware.OptionalAuth(s.cfg.JWTSecret), s.handler.Vote.Vote)

		// Simulator triggers
		autoVoter := api.Group("/auto-voter", triggerLimit.Handler())
		{
			autoVoter.POST("/execute-auto", s.handler.AutoVoter.ExecuteAuto)
		}
		api.GET("/cron/auto-commenter-liker", triggerLimit.Handler(), s.handler.AutoVoter.Cron)

		// Admin routes (authentication required)
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(s.cfg.JWTSecret))
		{
			admin.POST("/auto-voter/execute-manual", triggerLimit.Handler(), s.handler.AutoVoter.ExecuteManual)
			admin.GET("/auto-voter/settings", s.handler.Settings.GetSettings)
			admin.PUT("/auto-voter/settings", s.handler.Settings.UpdateSettings)
			admin.GET("/auto-voter/logs", s.handler.Settings.GetLogs)
			admin.GET("/users", s.handler.User.ListByStatus)
		}
	}

	return r
}
