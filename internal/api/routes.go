package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, handler *Handler, metrics http.Handler) {
	// Health and readiness checks
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)

	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Scoring endpoints
		score := v1.Group("/score")
		{
			score.POST("", handler.Score)            // POST /api/v1/score
			score.POST("/batch", handler.ScoreBatch) // POST /api/v1/score/batch
		}

		// Detector inspection endpoints
		detectors := v1.Group("/detectors")
		{
			detectors.GET("", handler.ListDetectors)      // GET /api/v1/detectors
			detectors.GET("/:name", handler.GetDetector)  // GET /api/v1/detectors/:name
		}

		// Profile management endpoints
		profiles := v1.Group("/profiles")
		{
			profiles.POST("", handler.CreateProfile)         // POST /api/v1/profiles
			profiles.PUT("/:name", handler.UpdateProfile)    // PUT /api/v1/profiles/:name
			profiles.DELETE("/:name", handler.DeleteProfile) // DELETE /api/v1/profiles/:name
		}

		// Statistics endpoints
		stats := v1.Group("/stats")
		{
			stats.GET("", handler.GetStats)            // GET /api/v1/stats
			stats.GET("/history", handler.GetHistory)  // GET /api/v1/stats/history
		}
	}
}
