package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fishmad/grokstatev3-sub001/internal/api/handlers"
	"github.com/fishmad/grokstatev3-sub001/internal/api/middleware"
	"github.com/fishmad/grokstatev3-sub001/internal/config"
	"github.com/fishmad/grokstatev3-sub001/internal/services"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database, taskClient handlers.IAsynqClient) *gin.Engine {
	propertyService := services.NewPropertyService(db, cfg)

	r := gin.Default()

	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)
	r.Use(rateLimiter.Limit())

	exportHandler := handlers.NewExportHandler(propertyService, taskClient)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	{
		v1.POST("/properties/:id/export", exportHandler.TriggerExport)
	}

	return r
}
