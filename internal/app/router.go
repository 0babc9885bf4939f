// internal/app/router.go
package app

import (
	"net/http"

	agentHandler "leaddist-service/internal/handlers/agent"
	authHandler "leaddist-service/internal/handlers/auth"
	recordHandler "leaddist-service/internal/handlers/record"
	"leaddist-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	AuthHandler    *authHandler.AuthHandler
	AgentHandler   *agentHandler.AgentHandler
	RecordHandler  *recordHandler.RecordHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// SetupRouter mounts middleware and every route on r.
func SetupRouter(r *gin.Engine, logger *zap.Logger, corsOrigins []string, h *Handlers) {
	r.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.RequestLogger(logger),
		middleware.CORSMiddleware(corsOrigins),
	)

	// ==================== Health Check ====================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ==================== Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/register", h.AuthHandler.Register)
		authPublic.POST("/login", h.AuthHandler.Login)
	}

	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.GET("/verify", h.AuthHandler.Verify)
		authProtected.POST("/logout", h.AuthHandler.Logout)
	}

	// ==================== Agent Routes ====================
	agents := api.Group("/agents")
	agents.Use(h.AuthMiddleware.Auth())
	{
		agents.GET("/count", h.AgentHandler.Count)
		agents.POST("/recount", h.AgentHandler.Recount)
		agents.GET("", h.AgentHandler.List)
		agents.POST("", h.AgentHandler.Create)
		agents.GET("/:id", h.AgentHandler.Get)
		agents.PUT("/:id", h.AgentHandler.Update)
		agents.DELETE("/:id", h.AgentHandler.Delete)
	}

	// ==================== Record Routes ====================
	records := api.Group("/records")
	records.Use(h.AuthMiddleware.Auth())
	{
		records.POST("/upload", h.RecordHandler.Upload)
		records.GET("/stats", h.RecordHandler.Stats)
		records.GET("/batch/:batchId", h.RecordHandler.Batch)
		records.GET("/agent/:agentId", h.RecordHandler.ByAgent)
		records.GET("", h.RecordHandler.List)
		records.PUT("/:id/status", h.RecordHandler.UpdateStatus)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Route not found"})
	})
}
