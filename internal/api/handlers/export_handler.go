package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/fishmad/grokstatev3-sub001/internal/services"
	"github.com/fishmad/grokstatev3-sub001/internal/tasks"
)

// IAsynqClient abstracts the asynq client for testability.
type IAsynqClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ExportHandler triggers listing exports. The export itself runs on a
// background worker; the handler only enqueues the first attempt.
type ExportHandler struct {
	properties services.IPropertyService
	taskClient IAsynqClient
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(properties services.IPropertyService, taskClient IAsynqClient) *ExportHandler {
	return &ExportHandler{properties: properties, taskClient: taskClient}
}

// TriggerExport handles POST /v1/properties/:id/export.
func (h *ExportHandler) TriggerExport(c *gin.Context) {
	propertyID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	// Confirm the property resolves before queueing work for it. It can
	// still be deleted before the worker runs; the orchestrator handles
	// that as a terminal not-found outcome.
	if _, err := h.properties.FindPropertyWithRelations(c.Request.Context(), propertyID); err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
			return
		}
		log.Printf("Error loading property %d for export trigger: %v", propertyID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load property"})
		return
	}

	task, err := tasks.NewListingExportTask(propertyID, 1)
	if err != nil {
		log.Printf("Error building export task for property %d: %v", propertyID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build export task"})
		return
	}

	info, err := h.taskClient.EnqueueContext(c.Request.Context(), task, asynq.Queue(tasks.QueueExports))
	if err != nil {
		log.Printf("Error enqueuing export for property %d: %v", propertyID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue export"})
		return
	}

	log.Printf("Export enqueued: property=%d task=%s", propertyID, info.ID)
	c.JSON(http.StatusAccepted, gin.H{"task_id": info.ID, "property_id": propertyID})
}
