package api

import (
	"github.com/gin-gonic/gin"
	"github.com/relayaudit/credprobe/internal/api/handlers"
	"github.com/relayaudit/credprobe/internal/api/middleware"
	"github.com/relayaudit/credprobe/internal/config"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/relayaudit/credprobe/internal/api/docs" // swagger docs
)

// RegisterRoutes wires the control API's routes onto r.
func RegisterRoutes(r *gin.Engine, h *handlers.Handler, cfg *config.Config) {
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")

	if cfg != nil && cfg.API.APIKey != "" {
		api.Use(middleware.RequireAPIKey(cfg.API.APIKey))
	}

	api.GET("/health", h.Health)
	api.GET("/stats", h.Stats)

	api.POST("/probes", h.StartProbe)
	api.GET("/probes", h.ListProbes)
	api.GET("/probes/:id", h.GetProbe)
	api.GET("/probes/:id/results", h.GetProbeResults)
	api.GET("/probes/:id/stop", h.StopProbe)
}
