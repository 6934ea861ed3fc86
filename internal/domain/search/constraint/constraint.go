// Package constraint models the structured query accepted by the remote search API.
package constraint

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/alprsearch/internal/domain/search/params"
)

// Type discriminates constraint payloads.
type Type string

// Constraint types understood by the search API.
const (
	TypeSimple      Type = "simple"
	TypeGeoPolygon  Type = "geoPolygon"
	TypeGeoDistance Type = "geoDistance"
	TypeAdvanced    Type = "advanced"
)

// UnitMiles is the only distance unit the builder emits.
const UnitMiles = "miles"

// Wildcard stands in for an open range bound.
const Wildcard = "*"

// Constraint is one predicate of a constraint group. Only the fields of its
// Type are populated; empty ids are omitted from the wire form.
type Constraint struct {
	Type Type `json:"type"`

	// simple
	SearchTerm string `json:"searchTerm,omitempty"`

	// geoPolygon, geoDistance
	PropertyTypeID string        `json:"propertyTypeId,omitempty"`
	Zones          []params.Zone `json:"zones,omitempty"`
	Latitude       *float64      `json:"latitude,omitempty"`
	Longitude      *float64      `json:"longitude,omitempty"`
	Radius         *float64      `json:"radius,omitempty"`
	Unit           string        `json:"unit,omitempty"`

	// advanced
	SearchFields []SearchField `json:"searchFields,omitempty"`
}

// SearchField is one property match inside an advanced constraint.
type SearchField struct {
	SearchTerm string `json:"searchTerm"`
	Property   string `json:"property,omitempty"`
	Exact      bool   `json:"exact"`
}

// Group is one clause of a query. Groups are ANDed; Min relaxes a group to
// "at least Min of its constraints".
type Group struct {
	Constraints []Constraint `json:"constraints"`
	Min         int          `json:"min,omitempty"`
}

// Simple builds a free-text constraint.
func Simple(searchTerm string) Constraint {
	return Constraint{Type: TypeSimple, SearchTerm: searchTerm}
}

// GeoPolygon matches points inside any of zones.
func GeoPolygon(propertyTypeID string, zones []params.Zone) Constraint {
	return Constraint{Type: TypeGeoPolygon, PropertyTypeID: propertyTypeID, Zones: zones}
}

// GeoDistance matches points within radius miles of (lat, lon).
func GeoDistance(propertyTypeID string, lat, lon, radius float64) Constraint {
	return Constraint{
		Type:           TypeGeoDistance,
		PropertyTypeID: propertyTypeID,
		Latitude:       &lat,
		Longitude:      &lon,
		Radius:         &radius,
		Unit:           UnitMiles,
	}
}

// Advanced matches term against one property, exactly or as a substring.
func Advanced(propertyTypeID, term string, exact bool) Constraint {
	return Constraint{
		Type:         TypeAdvanced,
		SearchFields: []SearchField{{SearchTerm: term, Property: propertyTypeID, Exact: exact}},
	}
}

// DateSearchTerm renders a range query over a date-time property.
func DateSearchTerm(propertyTypeID, start, end string) string {
	return fmt.Sprintf("%s:[%s TO %s]", propertyTypeID, start, end)
}

// SearchTerm renders an exact-phrase query over one property.
func SearchTerm(propertyTypeID, value string) string {
	b, _ := json.Marshal(value)
	return fmt.Sprintf("%s:%s", propertyTypeID, b)
}
