package router

import (
	"github.com/gin-gonic/gin"

	"scanno/internal/config"
	"scanno/internal/handler"
	"scanno/internal/middleware"
)

// New assembles the gin engine with middleware and all routes.
func New(
	cfg *config.Config,
	analyzeHandler *handler.AnalyzeHandler,
	historyHandler *handler.HistoryHandler,
	healthHandler *handler.HealthHandler,
) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/analyses", analyzeHandler.Analyze)
		v1.GET("/analyses", historyHandler.List)
		v1.GET("/analyses/export", historyHandler.Export)
		v1.GET("/analyses/:id", historyHandler.GetByID)
	}

	return r
}
