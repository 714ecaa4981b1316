package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fishmad/grokstatev3-sub001/internal/api/handlers"
	"github.com/fishmad/grokstatev3-sub001/internal/models"
	"github.com/fishmad/grokstatev3-sub001/internal/services"
)

type MockPropertyService struct {
	mock.Mock
}

func (m *MockPropertyService) FindPropertyWithRelations(ctx context.Context, propertyID int64) (*models.Property, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) CreateProperty(ctx context.Context, property *models.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *MockPropertyService) SetExternalListingID(ctx context.Context, propertyID int64, listingID string) error {
	args := m.Called(ctx, propertyID, listingID)
	return args.Error(0)
}

func (m *MockPropertyService) DeleteProperty(ctx context.Context, propertyID int64) error {
	args := m.Called(ctx, propertyID)
	return args.Error(0)
}

type MockAsynqClient struct {
	mock.Mock
}

func (m *MockAsynqClient) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}

func setupExportRouter(properties services.IPropertyService, client handlers.IAsynqClient) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handlers.NewExportHandler(properties, client)
	r.POST("/v1/properties/:id/export", h.TriggerExport)
	return r
}

func TestTriggerExport_Accepted(t *testing.T) {
	properties := new(MockPropertyService)
	client := new(MockAsynqClient)

	properties.On("FindPropertyWithRelations", mock.Anything, int64(42)).Return(&models.Property{ID: 42}, nil)
	client.On("EnqueueContext", mock.Anything, mock.AnythingOfType("*asynq.Task"), mock.Anything).
		Return(&asynq.TaskInfo{ID: "task-1"}, nil)

	r := setupExportRouter(properties, client)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/v1/properties/42/export", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "task-1")
	assert.Contains(t, w.Body.String(), "42")
	client.AssertNumberOfCalls(t, "EnqueueContext", 1)
}

func TestTriggerExport_InvalidID(t *testing.T) {
	properties := new(MockPropertyService)
	client := new(MockAsynqClient)

	r := setupExportRouter(properties, client)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/v1/properties/abc/export", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	properties.AssertNotCalled(t, "FindPropertyWithRelations", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "EnqueueContext", mock.Anything, mock.Anything, mock.Anything)
}

func TestTriggerExport_NotFound(t *testing.T) {
	properties := new(MockPropertyService)
	client := new(MockAsynqClient)

	properties.On("FindPropertyWithRelations", mock.Anything, int64(99)).Return(nil, services.ErrPropertyNotFound)

	r := setupExportRouter(properties, client)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/v1/properties/99/export", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	client.AssertNotCalled(t, "EnqueueContext", mock.Anything, mock.Anything, mock.Anything)
}

func TestTriggerExport_LoadError(t *testing.T) {
	properties := new(MockPropertyService)
	client := new(MockAsynqClient)

	properties.On("FindPropertyWithRelations", mock.Anything, int64(7)).Return(nil, errors.New("db down"))

	r := setupExportRouter(properties, client)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/v1/properties/7/export", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	client.AssertNotCalled(t, "EnqueueContext", mock.Anything, mock.Anything, mock.Anything)
}

func TestTriggerExport_EnqueueFails(t *testing.T) {
	properties := new(MockPropertyService)
	client := new(MockAsynqClient)

	properties.On("FindPropertyWithRelations", mock.Anything, int64(42)).Return(&models.Property{ID: 42}, nil)
	client.On("EnqueueContext", mock.Anything, mock.AnythingOfType("*asynq.Task"), mock.Anything).
		Return(nil, errors.New("redis unavailable"))

	r := setupExportRouter(properties, client)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/v1/properties/42/export", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
