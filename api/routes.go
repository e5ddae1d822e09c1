package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/config"
	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/pkg/cache"
	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/pkg/logger"
)

// Deps holds what the handlers need. Cache may be nil when caching is
// disabled.
type Deps struct {
	Log      *logger.Logger
	Cache    cache.Cache
	CacheTTL time.Duration
	Fetch    config.FetchConfig
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Deps) {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/evaluate", EvaluateRatePlans(deps))
		v1.POST("/precheck", PrecheckRatePlans(deps))
	}
}
