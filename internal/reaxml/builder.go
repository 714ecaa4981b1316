package reaxml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fishmad/grokstatev3-sub001/internal/models"
)

// ValidationError reports every required field missing from a property, so
// a caller sees the complete picture in one failure rather than fixing
// fields one at a time.
type ValidationError struct {
	PropertyID    int64
	MissingFields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("property %d cannot be exported, missing required fields: %s",
		e.PropertyID, strings.Join(e.MissingFields, ", "))
}

// IDocumentBuilder builds wire documents from property aggregates.
type IDocumentBuilder interface {
	Build(property *models.Property) (*Document, error)
}

type documentBuilder struct{}

// NewDocumentBuilder creates a new REAXML document builder.
func NewDocumentBuilder() IDocumentBuilder {
	return &documentBuilder{}
}

// Build validates the property and maps it field-for-field into a Document.
// Validation collects all missing required fields before failing.
func (b *documentBuilder) Build(property *models.Property) (*Document, error) {
	var missing []string

	if property.Headline == "" {
		missing = append(missing, "headline")
	}
	if property.Status == "" {
		missing = append(missing, "status")
	}
	if property.Address == nil {
		missing = append(missing, "address")
	} else {
		if property.Address.StreetName == "" {
			missing = append(missing, "address.street_name")
		}
		if property.Address.Suburb == "" {
			missing = append(missing, "address.suburb")
		}
		if property.Address.State == "" {
			missing = append(missing, "address.state")
		}
		if property.Address.Postcode == "" {
			missing = append(missing, "address.postcode")
		}
	}
	if property.Agent == nil {
		missing = append(missing, "agent")
	} else {
		if property.Agent.Name == "" {
			missing = append(missing, "agent.name")
		}
		if property.Agent.Email == "" {
			missing = append(missing, "agent.email")
		}
	}

	if len(missing) > 0 {
		return nil, &ValidationError{PropertyID: property.ID, MissingFields: missing}
	}

	doc := &Document{
		UniqueID:    uniqueID(property),
		Status:      property.Status,
		Headline:    property.Headline,
		Description: property.Description,
		Price:       property.Price.DisplayValue(),
		Authority:   property.Authority,
		Address: AddressBlock{
			UnitNumber:   property.Address.UnitNumber,
			StreetNumber: property.Address.StreetNumber,
			Street:       property.Address.StreetName,
			Suburb:       property.Address.Suburb,
			State:        property.Address.State,
			Postcode:     property.Address.Postcode,
			Country:      country(property.Address),
			Latitude:     formatCoord(property.Address.Latitude),
			Longitude:    formatCoord(property.Address.Longitude),
		},
		Agent: AgentBlock{
			Name:          property.Agent.Name,
			Email:         property.Agent.Email,
			Phone:         property.Agent.Phone,
			Agency:        property.Agent.AgencyName,
			LicenseNumber: property.Agent.LicenseNumber,
		},
	}

	if property.Features != nil {
		doc.Features = &FeaturesBlock{
			Bedrooms:  formatCount(property.Features.Bedrooms),
			Bathrooms: formatCount(property.Features.Bathrooms),
			CarSpaces: formatCount(property.Features.CarSpaces),
			LandSize:  formatLandSize(property.Features.LandSize),
		}
	}

	return doc, nil
}

// uniqueID prefers the id assigned by the remote network on a previous
// export so re-exports update the same remote listing.
func uniqueID(property *models.Property) string {
	if property.ExternalListingID != nil && *property.ExternalListingID != "" {
		return *property.ExternalListingID
	}
	return strconv.FormatInt(property.ID, 10)
}

func country(addr *models.Address) string {
	if addr.Country != "" {
		return addr.Country
	}
	return models.DefaultCountry
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatCount(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatLandSize(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
