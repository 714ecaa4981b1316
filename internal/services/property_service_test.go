package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fishmad/grokstatev3-sub001/internal/config"
	"github.com/fishmad/grokstatev3-sub001/internal/models"
	"github.com/fishmad/grokstatev3-sub001/internal/utils"
)

func amount(v float64) *float64 { return &v }

func testProperty(id int64) *models.Property {
	return &models.Property{
		ID:       id,
		Headline: "Renovated terrace",
		Status:   models.StatusCurrent,
		Address: &models.Address{
			StreetNumber: "5",
			StreetName:   "King Street",
			Suburb:       "Newtown",
			State:        "NSW",
			Postcode:     "2042",
		},
		Agent: &models.Agent{
			Name:  "Kim Ho",
			Email: "kim@agency.example.com",
		},
		Price: &models.Price{PriceType: models.PriceTypeSale, Amount: amount(1200000)},
	}
}

func TestPropertyService_CreateAndFind(t *testing.T) {
	db := utils.SetupTestDB(t, "testdb_property_service_crud", "properties")
	svc := NewPropertyService(db, &config.Config{})
	ctx := context.Background()

	err := svc.CreateProperty(ctx, testProperty(101))
	require.NoError(t, err)

	found, err := svc.FindPropertyWithRelations(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, "Renovated terrace", found.Headline)
	require.NotNil(t, found.Address)
	assert.Equal(t, "King Street", found.Address.StreetName)
	require.NotNil(t, found.Agent)
	assert.Equal(t, "kim@agency.example.com", found.Agent.Email)
	require.NotNil(t, found.Price)
	assert.Equal(t, models.PriceTypeSale, found.Price.PriceType)
}

func TestPropertyService_FindNotFound(t *testing.T) {
	db := utils.SetupTestDB(t, "testdb_property_service_notfound", "properties")
	svc := NewPropertyService(db, &config.Config{})
	ctx := context.Background()

	found, err := svc.FindPropertyWithRelations(ctx, 999)
	assert.Nil(t, found)
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestPropertyService_CreateRejectsInvalidPrice(t *testing.T) {
	db := utils.SetupTestDB(t, "testdb_property_service_badprice", "properties")
	svc := NewPropertyService(db, &config.Config{})
	ctx := context.Background()

	p := testProperty(102)
	p.Price = &models.Price{PriceType: models.PriceTypeOffersBetween, RangeMin: amount(500000)}
	err := svc.CreateProperty(ctx, p)
	assert.Error(t, err)
}

func TestPropertyService_CreateRejectsInvalidStatus(t *testing.T) {
	db := utils.SetupTestDB(t, "testdb_property_service_badstatus", "properties")
	svc := NewPropertyService(db, &config.Config{})
	ctx := context.Background()

	p := testProperty(103)
	p.Status = "under-the-hammer"
	err := svc.CreateProperty(ctx, p)
	assert.Error(t, err)
}

func TestPropertyService_SetExternalListingID(t *testing.T) {
	db := utils.SetupTestDB(t, "testdb_property_service_extid", "properties")
	svc := NewPropertyService(db, &config.Config{})
	ctx := context.Background()

	require.NoError(t, svc.CreateProperty(ctx, testProperty(104)))

	err := svc.SetExternalListingID(ctx, 104, "REA-55")
	require.NoError(t, err)

	found, err := svc.FindPropertyWithRelations(ctx, 104)
	require.NoError(t, err)
	require.NotNil(t, found.ExternalListingID)
	assert.Equal(t, "REA-55", *found.ExternalListingID)

	// Unknown property
	err = svc.SetExternalListingID(ctx, 9999, "REA-56")
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestPropertyService_DeleteHidesProperty(t *testing.T) {
	db := utils.SetupTestDB(t, "testdb_property_service_delete", "properties")
	svc := NewPropertyService(db, &config.Config{})
	ctx := context.Background()

	require.NoError(t, svc.CreateProperty(ctx, testProperty(105)))
	require.NoError(t, svc.DeleteProperty(ctx, 105))

	found, err := svc.FindPropertyWithRelations(ctx, 105)
	assert.Nil(t, found)
	assert.ErrorIs(t, err, ErrPropertyNotFound)

	// Deleting twice reports not found
	assert.ErrorIs(t, svc.DeleteProperty(ctx, 105), ErrPropertyNotFound)
}
