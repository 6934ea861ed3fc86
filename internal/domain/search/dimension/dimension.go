// Package dimension decides which search dimensions a set of parameters activates.
package dimension

import (
	"slices"
	"strings"

	"github.com/kailas-cloud/alprsearch/internal/domain/search/params"
)

// Dimension tags one independently constrainable aspect of a search.
type Dimension string

// Dimension constants.
const (
	Plate       Dimension = "PLATE"
	TimeRange   Dimension = "TIME_RANGE"
	GeoZones    Dimension = "GEO_ZONES"
	GeoRadius   Dimension = "GEO_RADIUS"
	Department  Dimension = "DEPARTMENT"
	Device      Dimension = "DEVICE"
	Make        Dimension = "MAKE"
	Model       Dimension = "MODEL"
	Color       Dimension = "COLOR"
	Accessories Dimension = "ACCESSORIES"
	Style       Dimension = "STYLE"
	Label       Dimension = "LABEL"
	Hotlist     Dimension = "HOTLIST"
)

const (
	// MinPlateLength is the shortest trimmed plate fragment that counts as a plate search.
	MinPlateLength = 3
	// MinRequired is how many of plate / time range / geo must be present.
	MinRequired = 2
)

// Set is an ordered list of active dimensions.
type Set []Dimension

// Has reports whether d is active.
func (s Set) Has(d Dimension) bool { return slices.Contains(s, d) }

// attributes are the optional vehicle-attribute filters, in emission order.
var attributes = []struct {
	dim   Dimension
	field params.Field
}{
	{Make, params.Make},
	{Model, params.Model},
	{Color, params.Color},
	{Accessories, params.Accessories},
	{Style, params.Style},
	{Label, params.Label},
}

// Active returns the active dimensions of p, or an empty set when p does not
// meet the minimum search policy: case number and reason are mandatory, and at
// least two of plate / time range / geo must be usable.
func Active(p params.Parameters) Set {
	if p.CaseNumber == "" || p.Reason == "" {
		return Set{}
	}

	active := make(Set, 0, 8)
	required := 0

	if PlateActive(p) {
		active = append(active, Plate)
		required++
	}
	if TimeRangeActive(p) {
		active = append(active, TimeRange)
		required++
	}
	// Zones win over a radius when both are present.
	switch {
	case GeoZonesActive(p):
		active = append(active, GeoZones)
		required++
	case GeoRadiusActive(p):
		active = append(active, GeoRadius)
		required++
	}

	if required < MinRequired {
		return Set{}
	}

	if p.DepartmentID != "" {
		active = append(active, Department)
	}
	if p.Device != "" {
		active = append(active, Device)
	}
	for _, a := range attributes {
		if strings.TrimSpace(p.Get(a.field)) != "" {
			active = append(active, a.dim)
		}
	}
	return active
}

// Ready reports whether p may be submitted.
func Ready(p params.Parameters) bool {
	return len(Active(p)) > 0
}

// PlateActive reports whether the trimmed plate is long enough to search.
func PlateActive(p params.Parameters) bool {
	return len([]rune(strings.TrimSpace(p.Plate))) >= MinPlateLength
}

// TimeRangeActive reports whether both bounds parse as date-times.
func TimeRangeActive(p params.Parameters) bool {
	_, okStart := params.ParseDateTime(p.Start)
	_, okEnd := params.ParseDateTime(p.End)
	return okStart && okEnd
}

// GeoZonesActive reports whether at least one polygon zone is drawn.
func GeoZonesActive(p params.Parameters) bool {
	return len(p.SearchZones) > 0
}

// GeoRadiusActive reports whether latitude, longitude and radius all parse as numbers.
func GeoRadiusActive(p params.Parameters) bool {
	_, okLat := params.ParseNumber(p.Latitude)
	_, okLon := params.ParseNumber(p.Longitude)
	_, okRad := params.ParseNumber(p.Radius)
	return okLat && okLon && okRad
}
