package models

import (
	"time"
)

// Property statuses accepted by the syndication network.
const (
	StatusCurrent   = "current"
	StatusWithdrawn = "withdrawn"
	StatusSold      = "sold"
	StatusLeased    = "leased"
	StatusOffMarket = "offmarket"
)

// ValidStatuses lists the statuses a property may carry.
var ValidStatuses = []string{StatusCurrent, StatusWithdrawn, StatusSold, StatusLeased, StatusOffMarket}

// DefaultCountry is used when a property address carries no country.
const DefaultCountry = "Australia"

// Address is the physical location of a property. All fields except
// UnitNumber, Latitude and Longitude are required for syndication.
type Address struct {
	UnitNumber   string   `bson:"unit_number,omitempty" json:"unit_number,omitempty"`
	StreetNumber string   `bson:"street_number" json:"street_number"`
	StreetName   string   `bson:"street_name" json:"street_name"`
	Suburb       string   `bson:"suburb" json:"suburb"`
	State        string   `bson:"state" json:"state"`
	Postcode     string   `bson:"postcode" json:"postcode"`
	Country      string   `bson:"country,omitempty" json:"country,omitempty"`
	Latitude     *float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude    *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`
}

// Agent is the listing agent attached to a property. Name and Email are
// required for syndication; the rest is optional.
type Agent struct {
	Name          string `bson:"name" json:"name"`
	Email         string `bson:"email" json:"email"`
	Phone         string `bson:"phone,omitempty" json:"phone,omitempty"`
	AgencyName    string `bson:"agency_name,omitempty" json:"agency_name,omitempty"`
	LicenseNumber string `bson:"license_number,omitempty" json:"license_number,omitempty"`
}

// Features holds the countable attributes of a property. The whole record
// is optional; individual counts within it are optional too.
type Features struct {
	Bedrooms  *int     `bson:"bedrooms,omitempty" json:"bedrooms,omitempty"`
	Bathrooms *int     `bson:"bathrooms,omitempty" json:"bathrooms,omitempty"`
	CarSpaces *int     `bson:"car_spaces,omitempty" json:"car_spaces,omitempty"`
	LandSize  *float64 `bson:"land_size,omitempty" json:"land_size,omitempty"` // square metres
}

// Property is the aggregate read by the export pipeline. Address, agent,
// features and price are embedded so a single find returns the whole
// aggregate.
type Property struct {
	ID                int64     `bson:"_id" json:"id"`
	ExternalListingID *string   `bson:"external_listing_id,omitempty" json:"external_listing_id,omitempty"` // assigned by the remote network on first successful export
	Headline          string    `bson:"headline" json:"headline"`
	Description       string    `bson:"description,omitempty" json:"description,omitempty"`
	Status            string    `bson:"status" json:"status"`
	Authority         string    `bson:"authority,omitempty" json:"authority,omitempty"`
	Address           *Address  `bson:"address,omitempty" json:"address,omitempty"`
	Agent             *Agent    `bson:"agent,omitempty" json:"agent,omitempty"`
	Features          *Features `bson:"features,omitempty" json:"features,omitempty"`
	Price             *Price    `bson:"price,omitempty" json:"price,omitempty"`
	CreatedAt         time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at" json:"updated_at"`
	Deleted           bool      `bson:"deleted" json:"-"` // Soft delete flag
}

// IsValidStatus reports whether s is one of the accepted property statuses.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}
