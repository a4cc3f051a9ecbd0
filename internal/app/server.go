// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"riverrevive_backend/internal/common"
	"riverrevive_backend/internal/config"
	"riverrevive_backend/internal/event"
	"riverrevive_backend/internal/flood"
	"riverrevive_backend/internal/gate"
	"riverrevive_backend/internal/jobs"
	"riverrevive_backend/internal/middleware"
	"riverrevive_backend/internal/notification"
	"riverrevive_backend/internal/platform/database"
	platformElasticsearch "riverrevive_backend/internal/platform/elasticsearch"
	"riverrevive_backend/internal/profile"
	"riverrevive_backend/internal/report"
	"riverrevive_backend/internal/waterquality"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	// Exposed for startup tasks in main (Elasticsearch index bootstrap).
	ESClient  *platformElasticsearch.ESClientWrapper
	AppLogger *zap.Logger

	// Handlers
	gateHandler         *gate.Handler
	profileHandler      *profile.Handler
	reportHandler       *report.Handler
	eventHandler        *event.Handler
	waterQualityHandler *waterquality.Handler
	floodHandler        *flood.Handler
	notificationHandler *notification.Handler

	// Jobs
	eventReminderJob *jobs.EventReminderJob

	// Middleware instances
	authMW      gin.HandlerFunc
	adminRoleMW gin.HandlerFunc
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	esClient *platformElasticsearch.ESClientWrapper,
	gateService *gate.Service,
	gateHandler *gate.Handler,
	profileHandler *profile.Handler,
	reportHandler *report.Handler,
	eventHandler *event.Handler,
	waterQualityHandler *waterquality.Handler,
	floodHandler *flood.Handler,
	notificationHandler *notification.Handler,
	eventReminderJob *jobs.EventReminderJob,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to run schema migration: %w", err)
	}

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	// CORS Middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	// Create middleware instances. Every request behind authMW has passed the
	// approval gate; the role middlewares then narrow by profile role.
	authMW := middleware.AuthMiddleware(gateService, logger.Named("AuthMiddleware"))
	adminRoleMW := middleware.RoleAuthMiddleware(common.RoleAdmin)
	collectorRoleMW := middleware.RoleAuthMiddleware(common.RoleCollector, common.RoleAdmin)

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "RiverRevive API is healthy!"})
	})

	// Uploaded report photos are served straight from disk.
	router.Static("/uploads", cfg.FileStoragePath)

	v1 := router.Group("/api/v1")

	// Auth and session routes stay outside the auth middleware: they are the
	// endpoints a not-yet-authorized client must be able to reach.
	gateHandler.RegisterRoutes(v1)

	profileHandler.RegisterRoutes(v1, authMW, adminRoleMW)
	reportHandler.RegisterRoutes(v1, authMW, collectorRoleMW, adminRoleMW)
	eventHandler.RegisterRoutes(v1, authMW, collectorRoleMW)
	waterQualityHandler.RegisterRoutes(v1, authMW, collectorRoleMW)
	floodHandler.RegisterRoutes(v1, authMW, adminRoleMW)

	// Register notification routes (these require authentication)
	if notificationHandler != nil {
		notificationGroup := v1.Group("/notifications", authMW)
		notificationHandler.RegisterRoutes(notificationGroup)
	} else {
		logger.Warn("Notification handler is nil, routes will not be registered.")
	}

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:          httpServer,
		router:              router,
		cfg:                 cfg,
		logger:              logger,
		ESClient:            esClient,
		AppLogger:           logger,
		gateHandler:         gateHandler,
		profileHandler:      profileHandler,
		reportHandler:       reportHandler,
		eventHandler:        eventHandler,
		waterQualityHandler: waterQualityHandler,
		floodHandler:        floodHandler,
		notificationHandler: notificationHandler,
		eventReminderJob:    eventReminderJob,
		authMW:              authMW,
		adminRoleMW:         adminRoleMW,
	}, nil
}

func (s *Server) Start() error {
	if s.eventReminderJob != nil {
		err := s.eventReminderJob.SetupAndStart()
		if err != nil {
			s.logger.Error("Failed to setup and start event reminder job", zap.Error(err))
		}
	} else {
		s.logger.Info("Event reminder job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped gracefully or an error occurred")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.eventReminderJob != nil {
		s.eventReminderJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
