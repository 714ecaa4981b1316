// Package reaxml maps property aggregates into the XML document expected
// by the REA listing syndication network.
package reaxml

import (
	"encoding/xml"
	"fmt"
)

// Document is the wire document for one listing. Element names are stable:
// the remote network consumes exactly this field set under a <listing> root.
type Document struct {
	XMLName     xml.Name       `xml:"listing"`
	UniqueID    string         `xml:"uniqueID"`
	Status      string         `xml:"status"`
	Headline    string         `xml:"headline"`
	Description string         `xml:"description"`
	Price       string         `xml:"price"` // resolved display value
	Authority   string         `xml:"authority"`
	Address     AddressBlock   `xml:"address"`
	Agent       AgentBlock     `xml:"agent"`
	Features    *FeaturesBlock `xml:"features,omitempty"` // present only when the property has a features record
}

// AddressBlock carries the property location. Absent source values are
// emitted as empty elements.
type AddressBlock struct {
	UnitNumber   string `xml:"unitNumber"`
	StreetNumber string `xml:"streetNumber"`
	Street       string `xml:"street"`
	Suburb       string `xml:"suburb"`
	State        string `xml:"state"`
	Postcode     string `xml:"postcode"`
	Country      string `xml:"country"`
	Latitude     string `xml:"latitude"`
	Longitude    string `xml:"longitude"`
}

// AgentBlock carries the listing agent contact details.
type AgentBlock struct {
	Name          string `xml:"name"`
	Email         string `xml:"email"`
	Phone         string `xml:"phone"`
	Agency        string `xml:"agency"`
	LicenseNumber string `xml:"licenseNumber"`
}

// FeaturesBlock carries the countable property attributes.
type FeaturesBlock struct {
	Bedrooms  string `xml:"bedrooms"`
	Bathrooms string `xml:"bathrooms"`
	CarSpaces string `xml:"carspaces"`
	LandSize  string `xml:"landSize"`
}

// ContentType is the content type the export endpoint expects for a
// serialized document.
const ContentType = "application/xml"

// Serialize renders the document as indented XML with the standard header.
func (d *Document) Serialize() ([]byte, error) {
	body, err := xml.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal listing document: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// Parse decodes a serialized listing document. Used by tests and the
// document archive tooling; the service itself only ever serializes.
func Parse(data []byte) (*Document, error) {
	var d Document
	if err := xml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal listing document: %w", err)
	}
	return &d, nil
}
