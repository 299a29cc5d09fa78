package server

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"market-sync/src/aggregator"
	"market-sync/src/connection"
	"market-sync/src/logger"
	"market-sync/src/models"
)

// -----------------------------------------------------------------------------
// StatusServer exposes the aggregator's in-memory view and the connection
// health over a small read-only REST surface, mainly for dashboards and
// operational poking.
// -----------------------------------------------------------------------------

type StatusServer struct {
	Config  *models.MConfig
	Logger  *logger.Logger
	engine  *gin.Engine
	agg     *aggregator.Aggregator
	manager *connection.Manager
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewStatusServer(cfg *models.MConfig, agg *aggregator.Aggregator, manager *connection.Manager, log *logger.Logger) *StatusServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &StatusServer{
		Config:  cfg,
		Logger:  log,
		engine:  gin.Default(),
		agg:     agg,
		manager: manager,
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *StatusServer) setupRoutes() {
	s.engine.GET("/api/records", s.getRecords)
	s.engine.GET("/api/records/:symbol", s.getRecord)
	s.engine.GET("/api/predictions", s.getPredictions)
	s.engine.GET("/api/accuracy", s.getAccuracy)
	s.engine.GET("/api/metrics", s.getMetrics)
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/config", s.getConfig)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *StatusServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting status server on %s", addr)
	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *StatusServer) getRecords(c *gin.Context) {
	c.JSON(200, s.agg.Records())
}

// -----------------------------------------------------------------------------

func (s *StatusServer) getRecord(c *gin.Context) {
	symbol := c.Param("symbol")
	rec, ok := s.agg.Record(symbol)
	if !ok {
		c.JSON(404, gin.H{"error": "unknown symbol", "symbol": symbol})
		return
	}
	c.JSON(200, rec)
}

// -----------------------------------------------------------------------------

func (s *StatusServer) getPredictions(c *gin.Context) {
	c.JSON(200, s.agg.Predictions())
}

// -----------------------------------------------------------------------------

func (s *StatusServer) getAccuracy(c *gin.Context) {
	c.JSON(200, s.agg.AccuracyMetrics())
}

// -----------------------------------------------------------------------------

func (s *StatusServer) getMetrics(c *gin.Context) {
	metrics := s.manager.Metrics()
	c.JSON(200, gin.H{
		"state":   s.manager.State().String(),
		"metrics": metrics,
	})
}

// -----------------------------------------------------------------------------

func (s *StatusServer) getHealth(c *gin.Context) {
	state := s.manager.State()
	status := "ok"
	if state == connection.StateError {
		status = "degraded"
	}

	c.JSON(200, gin.H{
		"status":     status,
		"connection": state.String(),
		"queued":     s.manager.QueueLen(),
		"symbols":    len(s.Config.Sync.Symbols),
	})
}

// -----------------------------------------------------------------------------

func (s *StatusServer) getConfig(c *gin.Context) {
	// Operational knobs only; the auth token never leaves the process
	c.JSON(200, gin.H{
		"name":    s.Config.Name,
		"symbols": s.Config.Sync.Symbols,
		"connection": gin.H{
			"reconnect_attempts":    s.Config.Connection.ReconnectAttempts,
			"reconnect_interval_ms": s.Config.Connection.ReconnectIntervalMs,
			"heartbeat_interval_ms": s.Config.Connection.HeartbeatIntervalMs,
			"max_queue_size":        s.Config.Connection.MaxQueueSize,
		},
		"request": gin.H{
			"timeout_ms":                s.Config.Request.TimeoutMs,
			"cache_ttl_ms":              s.Config.Request.CacheTTLMs,
			"circuit_breaker_threshold": s.Config.Request.CircuitBreakerThreshold,
		},
	})
}
