// Package router wires the recommendation service routes.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/coursewise/course-recommender/internal/recommender/handler"
)

// Register registers the recommendation service routes.
func Register(engine *gin.Engine, h *handler.RecommendHandler) {
	v1 := engine.Group("/v1")
	{
		v1.POST("/recommend", h.Recommend)
		v1.GET("/stats", h.Stats)
	}

	// Unversioned alias kept for existing clients.
	engine.POST("/recommend", h.Recommend)

	engine.GET("/healthz", h.Healthz)
	engine.GET("/readyz", h.Readyz)
	engine.GET("/metrics", h.Metrics)

	logger.Info("HTTP routes registered")
}
