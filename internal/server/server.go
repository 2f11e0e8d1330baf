package server

import (
	"context"
	"net/http"
	"time"

	"anoa.com/signupform/internal/config"
	"anoa.com/signupform/internal/middleware"
	notiHttp "anoa.com/signupform/internal/modules/notification/delivery/http"
	signupHttp "anoa.com/signupform/internal/modules/signup/delivery/http"
	signupRepo "anoa.com/signupform/internal/modules/signup/repository"
	signupService "anoa.com/signupform/internal/modules/signup/service"
	"anoa.com/signupform/pkg/preview"
	"anoa.com/signupform/pkg/validator"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	engine   *gin.Engine
	cfg      *config.Config
	sessions signupRepo.SessionRepository
	limiter  *middleware.RateLimiter
	logger   *zap.Logger
}

func NewServer(cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) (*Server, error) {
	if err := validator.RegisterGin(); err != nil {
		return nil, err
	}

	sessions := signupRepo.NewSessionRepository()
	previews := preview.NewMemoryStore(cfg.PreviewBaseURL)
	sessionMiddleware := middleware.NewSessionMiddleware(cfg.SessionSecret, cfg.SessionTTL)

	signupHandler := signupHttp.NewSignupHandler(sessions, previews, sessionMiddleware, redisClient, logger, signupHttp.Options{
		MaxUploadBytes: cfg.MaxUploadBytes,
		ControllerOptions: []signupService.Option{
			signupService.WithPlaceholder(cfg.PlaceholderPreview),
			signupService.WithResetOnSuccess(cfg.ResetOnSuccess),
		},
	})
	notificationHandler := notiHttp.NewNotificationHandler(redisClient, logger, cfg.AllowedOrigins)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz"},
	}))
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst, logger)
	router.Use(limiter.Handler())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": sessions.Count()})
	})

	api := router.Group("/api")

	// Public routes
	api.POST("/signup/sessions", signupHandler.CreateSession)
	api.GET("/previews/:id", signupHandler.GetPreview)

	// Session routes
	form := api.Group("/signup")
	form.Use(sessionMiddleware.RequireSession())
	{
		form.GET("", signupHandler.GetDraft)
		form.PATCH("/fields", signupHandler.UpdateField)
		form.POST("/show-password", signupHandler.ToggleShowPassword)
		form.POST("/submit", signupHandler.Submit)
		form.DELETE("", signupHandler.DiscardSession)
		form.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{
		engine:   router,
		cfg:      cfg,
		sessions: sessions,
		limiter:  limiter,
		logger:   logger,
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// StartSessionSweeper discards idle sessions, releasing their previews, and
// evicts idle rate limiters until ctx is done.
func (s *Server) StartSessionSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.cfg.SessionSweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweep(time.Now())
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *Server) sweep(now time.Time) {
	if n := s.sessions.Sweep(now.Add(-s.cfg.SessionTTL)); n > 0 {
		s.logger.Info("discarded idle signup sessions", zap.Int("count", n))
	}
	if n := s.limiter.Evict(now); n > 0 {
		s.logger.Debug("evicted idle rate limiters", zap.Int("count", n))
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", middleware.RefreshedTokenHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
