package api

import (
	"github.com/gin-gonic/gin"

	"github.com/voxreel/voxreel/internal/api/handler"
	"github.com/voxreel/voxreel/internal/api/middleware"
	"github.com/voxreel/voxreel/internal/config"
	"github.com/voxreel/voxreel/internal/repository"
	"github.com/voxreel/voxreel/internal/storage"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	store repository.JobStore,
	objectStorage storage.ObjectStorage,
	runner handler.JobRunner,
	cfg *config.ServerConfig,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	jobHandler := handler.NewJobHandler(store, objectStorage, runner)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.POST("/jobs", jobHandler.CreateJob)
		v1.GET("/jobs/:id", jobHandler.GetJob)
	}

	return r
}
