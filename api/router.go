// Package api wires the HTTP surface: routing, authentication, and
// rate limiting around the crawl orchestrator.
package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/sitelens/api/handler"
	"github.com/use-agent/sitelens/api/middleware"
	"github.com/use-agent/sitelens/config"
	"github.com/use-agent/sitelens/crawler"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(orc *crawler.Orchestrator, stats handler.StatsSource, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(stats, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Crawl
	protected.POST("/crawl", handler.PostCrawl(orc, cfg.Audit.Enabled, cfg.Webhook.Secret))
	protected.GET("/crawl/:id", handler.GetCrawl())

	return r
}
