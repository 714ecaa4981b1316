package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fishmad/grokstatev3-sub001/internal/config"
	"github.com/fishmad/grokstatev3-sub001/internal/models"
)

// ErrPropertyNotFound is returned when a property id no longer resolves
// (deleted or never existed).
var ErrPropertyNotFound = errors.New("property not found")

// IPropertyService defines the interface for property-related operations.
type IPropertyService interface {
	// FindPropertyWithRelations loads the full aggregate (address, agent,
	// features, price are embedded in the property document).
	FindPropertyWithRelations(ctx context.Context, propertyID int64) (*models.Property, error)
	CreateProperty(ctx context.Context, property *models.Property) error
	SetExternalListingID(ctx context.Context, propertyID int64, listingID string) error
	DeleteProperty(ctx context.Context, propertyID int64) error
}

const propertiesCollection = "properties"

// propertyService implements IPropertyService.
type propertyService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewPropertyService creates a new PropertyService.
func NewPropertyService(db *mongo.Database, cfg *config.Config) IPropertyService {
	return &propertyService{db: db, cfg: cfg}
}

// FindPropertyWithRelations finds a non-deleted property by its ID.
func (s *propertyService) FindPropertyWithRelations(ctx context.Context, propertyID int64) (*models.Property, error) {
	var property models.Property
	collection := s.db.Collection(propertiesCollection)
	filter := bson.M{
		"_id":     propertyID,
		"deleted": false,
	}

	err := collection.FindOne(ctx, filter).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("error finding property %d: %w", propertyID, err)
	}
	return &property, nil
}

// CreateProperty inserts a new property aggregate.
func (s *propertyService) CreateProperty(ctx context.Context, property *models.Property) error {
	now := time.Now().UTC()
	property.CreatedAt = now
	property.UpdatedAt = now

	if property.Price != nil {
		if err := property.Price.Validate(); err != nil {
			return fmt.Errorf("invalid price for property %d: %w", property.ID, err)
		}
	}
	if property.Status != "" && !models.IsValidStatus(property.Status) {
		return fmt.Errorf("invalid status %q for property %d", property.Status, property.ID)
	}

	collection := s.db.Collection(propertiesCollection)
	if _, err := collection.InsertOne(ctx, property); err != nil {
		return fmt.Errorf("failed to insert property %d: %w", property.ID, err)
	}
	return nil
}

// SetExternalListingID records the listing id assigned by the remote
// network on first successful export.
func (s *propertyService) SetExternalListingID(ctx context.Context, propertyID int64, listingID string) error {
	collection := s.db.Collection(propertiesCollection)

	filter := bson.M{"_id": propertyID, "deleted": false}
	update := bson.M{"$set": bson.M{
		"external_listing_id": listingID,
		"updated_at":          time.Now().UTC(),
	}}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("db error setting external listing id for property %d: %w", propertyID, err)
	}
	if result.MatchedCount == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

// DeleteProperty performs a soft delete by setting the deleted flag.
func (s *propertyService) DeleteProperty(ctx context.Context, propertyID int64) error {
	collection := s.db.Collection(propertiesCollection)

	update := bson.M{"$set": bson.M{
		"deleted":    true,
		"updated_at": time.Now().UTC(),
	}}

	result, err := collection.UpdateOne(ctx, bson.M{"_id": propertyID, "deleted": false}, update)
	if err != nil {
		return fmt.Errorf("db error deleting property %d: %w", propertyID, err)
	}
	if result.MatchedCount == 0 {
		return ErrPropertyNotFound
	}
	return nil
}
