// Package query assembles constraint-group search requests from search parameters.
package query

import (
	"slices"
	"strings"

	"github.com/kailas-cloud/alprsearch/internal/domain/edm"
	"github.com/kailas-cloud/alprsearch/internal/domain/search/constraint"
	"github.com/kailas-cloud/alprsearch/internal/domain/search/dimension"
	"github.com/kailas-cloud/alprsearch/internal/domain/search/params"
)

// Input is everything a request is built from. Registries and the hotlist are
// read-only.
type Input struct {
	// EntitySetID is the primary vehicle-records entity set.
	EntitySetID   string
	PropertyTypes edm.PropertyTypeRegistry
	Params        params.Parameters
	// Hotlist holds lowercase flagged plates.
	Hotlist  []string
	Agencies edm.AgencyEntitySets
}

// step is one row of the dimension table.
type step struct {
	dim    dimension.Dimension
	active func(in *Input, fields dimension.Set) bool
	build  func(in *Input, b *builder)
}

// steps is iterated in order; the order is part of the output contract.
var steps = []step{
	{dimension.TimeRange, whenActive(dimension.TimeRange), buildTimeRange},
	{dimension.GeoZones, whenActive(dimension.GeoZones), buildGeoZones},
	{dimension.GeoRadius, whenActive(dimension.GeoRadius), buildGeoRadius},
	{dimension.Plate, whenActive(dimension.Plate), buildPlate},
	{dimension.Department, whenActive(dimension.Department), buildDepartment},
	{dimension.Device, whenActive(dimension.Device), fuzzy(edm.PropCameraID, params.Device)},
	{dimension.Make, whenActive(dimension.Make), exact(edm.PropMake, params.Make)},
	{dimension.Model, whenActive(dimension.Model), fuzzy(edm.PropModel, params.Model)},
	{dimension.Color, whenActive(dimension.Color), exact(edm.PropColor, params.Color)},
	{dimension.Accessories, whenActive(dimension.Accessories), exact(edm.PropAccessories, params.Accessories)},
	{dimension.Style, whenActive(dimension.Style), exact(edm.PropStyle, params.Style)},
	{dimension.Label, whenActive(dimension.Label), exact(edm.PropLabel, params.Label)},
	{dimension.Hotlist, hotlistActive, buildHotlist},
}

type builder struct {
	entitySetIDs []string
	groups       []constraint.Group
}

func (b *builder) add(g constraint.Group) { b.groups = append(b.groups, g) }

// Build assembles the search request for in. It does not enforce the minimum
// search policy; callers gate on dimension.Ready first. A property type missing
// from the registry yields an empty id that the search API rejects.
func Build(in Input) constraint.Request {
	fields := dimension.Active(in.Params)
	b := &builder{}
	for _, s := range steps {
		if s.active(&in, fields) {
			s.build(&in, b)
		}
	}

	// No department scoping: search the primary set and every agency set.
	if b.entitySetIDs == nil {
		b.entitySetIDs = append([]string{in.EntitySetID}, in.Agencies.IDs()...)
	}
	if b.groups == nil {
		b.groups = []constraint.Group{}
	}

	return constraint.Request{
		EntitySetIDs: b.entitySetIDs,
		Start:        0,
		MaxHits:      constraint.DefaultMaxHits,
		Constraints:  b.groups,
	}
}

// Dimensions reports which table rows fire for in, in emission order.
func Dimensions(in Input) []dimension.Dimension {
	fields := dimension.Active(in.Params)
	var out []dimension.Dimension
	for _, s := range steps {
		if s.active(&in, fields) {
			out = append(out, s.dim)
		}
	}
	return out
}

func whenActive(d dimension.Dimension) func(*Input, dimension.Set) bool {
	return func(_ *Input, fields dimension.Set) bool { return fields.Has(d) }
}

func hotlistActive(in *Input, _ dimension.Set) bool {
	return in.Params.HotlistOnly && len(in.Hotlist) > 0
}

func buildTimeRange(in *Input, b *builder) {
	start := constraint.Wildcard
	if t, ok := params.ParseDateTime(in.Params.Start); ok {
		start = params.FormatDateTime(t)
	}
	end := constraint.Wildcard
	if t, ok := params.ParseDateTime(in.Params.End); ok {
		end = params.FormatDateTime(t)
	}
	term := constraint.DateSearchTerm(in.PropertyTypes.ID(edm.PropTimestamp), start, end)
	b.add(constraint.Group{Constraints: []constraint.Constraint{constraint.Simple(term)}})
}

func buildGeoZones(in *Input, b *builder) {
	zones := in.Params.WithZones(in.Params.SearchZones).SearchZones
	b.add(constraint.Group{
		Min:         1,
		Constraints: []constraint.Constraint{constraint.GeoPolygon(in.PropertyTypes.ID(edm.PropCoordinate), zones)},
	})
}

func buildGeoRadius(in *Input, b *builder) {
	lat, _ := params.ParseNumber(in.Params.Latitude)
	lon, _ := params.ParseNumber(in.Params.Longitude)
	radius, _ := params.ParseNumber(in.Params.Radius)
	b.add(constraint.Group{Constraints: []constraint.Constraint{
		constraint.GeoDistance(in.PropertyTypes.ID(edm.PropCoordinate), lat, lon, radius),
	}})
}

func buildPlate(in *Input, b *builder) {
	plate := strings.TrimSpace(in.Params.Plate)
	b.add(single(constraint.Advanced(in.PropertyTypes.ID(edm.PropPlate), plate, false)))
}

func buildDepartment(in *Input, b *builder) {
	name := in.Params.Department
	if id, ok := in.Agencies.Lookup(name); ok {
		b.entitySetIDs = []string{id}
	} else {
		b.entitySetIDs = []string{in.EntitySetID}
	}
	b.add(single(constraint.Advanced(in.PropertyTypes.ID(edm.PropAgencyName), name, true)))
}

func buildHotlist(in *Input, b *builder) {
	plates := slices.Clone(in.Hotlist)
	slices.Sort(plates)
	plates = slices.Compact(plates)

	propertyID := in.PropertyTypes.ID(edm.PropPlate)
	cs := make([]constraint.Constraint, len(plates))
	for i, plate := range plates {
		cs[i] = constraint.Advanced(propertyID, plate, false)
	}
	b.add(constraint.Group{Constraints: cs, Min: 1})
}

func exact(prop edm.FQN, field params.Field) func(*Input, *builder) {
	return attribute(prop, field, true)
}

func fuzzy(prop edm.FQN, field params.Field) func(*Input, *builder) {
	return attribute(prop, field, false)
}

func attribute(prop edm.FQN, field params.Field, isExact bool) func(*Input, *builder) {
	return func(in *Input, b *builder) {
		b.add(single(constraint.Advanced(in.PropertyTypes.ID(prop), in.Params.Get(field), isExact)))
	}
}

func single(c constraint.Constraint) constraint.Group {
	return constraint.Group{Constraints: []constraint.Constraint{c}}
}
