// Package api is the HTTP surface of the monitoring backend: agent
// ingestion, device management, the USB whitelist and approval
// workflow, alerts, and the dashboard stats/stream endpoints.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/devwatch/sentinel/pkg/approval"
	"github.com/devwatch/sentinel/pkg/config"
	"github.com/devwatch/sentinel/pkg/liveness"
	"github.com/devwatch/sentinel/pkg/rules"
	"github.com/devwatch/sentinel/pkg/store"
)

// Server is the backend API server
type Server struct {
	router   *gin.Engine
	store    *store.Store
	config   config.Config
	logger   *logrus.Logger
	liveness *liveness.Evaluator
	keywords *rules.Keywords
	dedup    *rules.Deduplicator
	approval *approval.Service
	hub      *Hub
}

// NewServer creates the API server with all routes configured
func NewServer(cfg config.Config, st *store.Store, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	if cfg.ListenPort == "" {
		cfg.ListenPort = "8080"
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router:   router,
		store:    st,
		config:   cfg,
		logger:   logger,
		liveness: liveness.NewEvaluator(cfg.OfflineThreshold),
		keywords: rules.NewKeywords(cfg.OffHoursStart, cfg.OffHoursEnd),
		dedup:    rules.NewDeduplicator(st, cfg.DedupWindow),
		approval: approval.NewService(st, logger),
		hub:      NewHub(logger),
	}

	s.setupRoutes()

	return s
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	if s.config.EnableCORS {
		s.router.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, X-Admin-Key, accept, origin, Cache-Control, X-Requested-With")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(204)
				return
			}

			c.Next()
		})
	}

	api := s.router.Group("/api")
	{
		// agent ingestion
		api.POST("/log", s.handleIngestLog)
		api.GET("/logs", s.handleListLogs)

		devices := api.Group("/devices")
		{
			devices.GET("", s.handleListDevices)
			devices.POST("/register", s.handleRegisterDevice)
			devices.GET("/:id", s.handleGetDevice)
			devices.DELETE("/:id", s.adminOnly(), s.handleDeleteDevice)
			devices.PUT("/quarantine", s.adminOnly(), s.handleQuarantine)
			devices.PUT("/release", s.adminOnly(), s.handleRelease)
			devices.POST("/hardware-lock", s.adminOnly(), s.handleHardwareLock)
		}

		usb := api.Group("/usb")
		{
			usb.GET("/whitelist", s.handleListWhitelist)
			usb.POST("/whitelist", s.adminOnly(), s.handleAddWhitelist)
			usb.PUT("/whitelist/:id", s.adminOnly(), s.handleUpdateWhitelist)
			usb.DELETE("/whitelist/:id", s.adminOnly(), s.handleDeleteWhitelist)

			usb.POST("/requests", s.handleSubmitRequest)
			usb.GET("/requests", s.adminOnly(), s.handleListRequests)
			usb.PUT("/requests/:id", s.adminOnly(), s.handleReviewRequest)
		}

		api.GET("/alerts", s.handleListAlerts)
		api.PUT("/alerts/:id/resolve", s.adminOnly(), s.handleResolveAlert)

		api.GET("/stats", s.handleStats)
	}

	if s.config.EnableStream {
		s.router.GET("/ws/alerts", s.handleAlertStream)
	}
}

// adminOnly guards mutating admin routes with the shared bootstrap key.
// When no key is configured the guard is open (development mode).
func (s *Server) adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.config.AdminKey == "" {
			c.Next()
			return
		}
		if c.GetHeader("X-Admin-Key") != s.config.AdminKey {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: Admin access required"})
			return
		}
		c.Next()
	}
}

// Router exposes the gin engine, for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the API server
func (s *Server) Start() error {
	s.logger.Infof("API server listening on :%s", s.config.ListenPort)
	return s.router.Run(":" + s.config.ListenPort)
}
