// Package params models the user-entered search parameters of a search session.
//
// Parameters is an immutable value: every update function returns a new value
// and never touches the receiver, zone slices included.
package params

import (
	"fmt"
	"time"
)

// lookbackYears is the default time range ending at session start.
const lookbackYears = 1

// Zone is a polygon ring of [longitude, latitude] pairs.
type Zone [][]float64

// Parameters is the sparse set of search fields a user fills in.
type Parameters struct {
	CaseNumber   string `json:"caseNumber"`
	Reason       string `json:"reason"`
	Plate        string `json:"plate"`
	Address      string `json:"address"`
	Latitude     string `json:"latitude"`
	Longitude    string `json:"longitude"`
	Radius       string `json:"radius"`
	SearchZones  []Zone `json:"searchZones"`
	Start        string `json:"start"`
	End          string `json:"end"`
	Department   string `json:"department"`
	DepartmentID string `json:"departmentId"`
	Device       string `json:"device"`
	Make         string `json:"make,omitempty"`
	Model        string `json:"model,omitempty"`
	Color        string `json:"color,omitempty"`
	Accessories  string `json:"accessories,omitempty"`
	Style        string `json:"style,omitempty"`
	Label        string `json:"label,omitempty"`
	HotlistOnly  bool   `json:"hotlistOnly,omitempty"`
}

// Field names a string-valued parameter.
type Field string

// Field constants, named as the UI sends them.
const (
	CaseNumber   Field = "caseNumber"
	Reason       Field = "reason"
	Plate        Field = "plate"
	Address      Field = "address"
	Latitude     Field = "latitude"
	Longitude    Field = "longitude"
	Radius       Field = "radius"
	Start        Field = "start"
	End          Field = "end"
	Department   Field = "department"
	DepartmentID Field = "departmentId"
	Device       Field = "device"
	Make         Field = "make"
	Model        Field = "model"
	Color        Field = "color"
	Accessories  Field = "accessories"
	Style        Field = "style"
	Label        Field = "label"
)

// Defaults returns the parameters of a fresh search session: empty fields,
// no zones and a one-year lookback ending at now.
func Defaults(now time.Time) Parameters {
	return Parameters{
		Start:       FormatDateTime(now.AddDate(-lookbackYears, 0, 0)),
		End:         FormatDateTime(now),
		SearchZones: []Zone{},
	}
}

// Set returns a copy of p with field replaced by value.
func (p Parameters) Set(field Field, value string) (Parameters, error) {
	out := p.clone()
	ptr := out.fieldPtr(field)
	if ptr == nil {
		return p, fmt.Errorf("unknown search field %q", field)
	}
	*ptr = value
	return out, nil
}

// Get returns the value of a string field, or "" for unknown fields.
func (p Parameters) Get(field Field) string {
	ptr := p.fieldPtr(field)
	if ptr == nil {
		return ""
	}
	return *ptr
}

// WithZones returns a copy of p holding a deep copy of zones.
func (p Parameters) WithZones(zones []Zone) Parameters {
	out := p.clone()
	out.SearchZones = cloneZones(zones)
	return out
}

// SelectAddress sets the geocoded point and its display name.
func (p Parameters) SelectAddress(lat, lon, display string) Parameters {
	out := p.clone()
	out.Latitude = lat
	out.Longitude = lon
	out.Address = display
	return out
}

// SelectAgency sets the department by display name and id. A device picked
// for a previous agency no longer applies, so it is cleared.
func (p Parameters) SelectAgency(name, id string) Parameters {
	out := p.clone()
	out.Department = name
	out.DepartmentID = id
	out.Device = ""
	return out
}

// WithHotlistOnly toggles the hotlist-only filter.
func (p Parameters) WithHotlistOnly(on bool) Parameters {
	out := p.clone()
	out.HotlistOnly = on
	return out
}

// EditOptions reopens the full search form; reopening drops drawn zones.
func (p Parameters) EditOptions(open bool) Parameters {
	if !open {
		return p
	}
	return p.WithZones([]Zone{})
}

func (p Parameters) clone() Parameters {
	out := p
	out.SearchZones = cloneZones(p.SearchZones)
	return out
}

func (p *Parameters) fieldPtr(field Field) *string {
	switch field {
	case CaseNumber:
		return &p.CaseNumber
	case Reason:
		return &p.Reason
	case Plate:
		return &p.Plate
	case Address:
		return &p.Address
	case Latitude:
		return &p.Latitude
	case Longitude:
		return &p.Longitude
	case Radius:
		return &p.Radius
	case Start:
		return &p.Start
	case End:
		return &p.End
	case Department:
		return &p.Department
	case DepartmentID:
		return &p.DepartmentID
	case Device:
		return &p.Device
	case Make:
		return &p.Make
	case Model:
		return &p.Model
	case Color:
		return &p.Color
	case Accessories:
		return &p.Accessories
	case Style:
		return &p.Style
	case Label:
		return &p.Label
	}
	return nil
}

func cloneZones(zones []Zone) []Zone {
	if zones == nil {
		return nil
	}
	out := make([]Zone, len(zones))
	for i, z := range zones {
		ring := make(Zone, len(z))
		for j, pt := range z {
			ring[j] = append([]float64(nil), pt...)
		}
		out[i] = ring
	}
	return out
}
