package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aa-ray-man/safehaven/internal/config"
	"github.com/aa-ray-man/safehaven/internal/handler"
	"github.com/aa-ray-man/safehaven/internal/middleware"
)

// SetupRouter wires middleware and routes.
func SetupRouter(cfg *config.Config, safety *handler.SafetyHandler, sos *handler.SOSHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.RateLimit(cfg.RateLimit, cfg.RateLimitWindow))

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "SafeHaven API is running",
		})
	})

	api := r.Group("/api/v1")
	{
		safetyGroup := api.Group("/safety")
		{
			safetyGroup.GET("/routes", safety.GetSafeRoutes)
			safetyGroup.GET("/reports", safety.GetReports)
			safetyGroup.POST("/report", safety.SubmitReport)
			safetyGroup.GET("/model-status", safety.GetModelStatus)
		}

		api.POST("/sos", middleware.Auth(cfg.JWTSecret), sos.SendSOS)
	}

	return r
}
