package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mamadbah2/steelrolls/internal/observability"
	"github.com/mamadbah2/steelrolls/internal/server/handlers"
)

const requestIDHeader = "X-Request-ID"

// Deps groups what the router serves.
type Deps struct {
	Rolls    *handlers.RollsHandler
	Reports  *handlers.ReportsHandler
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
}

// New wires the Gin engine with required routes and middlewares.
func New(deps Deps, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(metricsMiddleware(deps.Metrics))

	api := r.Group("/api")
	{
		rolls := api.Group("/rolls")
		rolls.POST("", deps.Rolls.Create)
		rolls.GET("", deps.Rolls.List)
		rolls.GET("/statistics", deps.Rolls.Statistics)
		rolls.GET("/statistics/daily", deps.Rolls.Daily)
		rolls.GET("/:id", deps.Rolls.Get)
		rolls.DELETE("/:id", deps.Rolls.Delete)

		if deps.Reports != nil {
			api.GET("/reports", deps.Reports.List)
		}
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

// requestIDMiddleware propagates the caller's X-Request-ID or assigns a new one.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")))
	}
}

func metricsMiddleware(metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
