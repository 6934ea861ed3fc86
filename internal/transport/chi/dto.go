package chi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kailas-cloud/alprsearch/internal/domain/audit"
	"github.com/kailas-cloud/alprsearch/internal/domain/pagination"
	"github.com/kailas-cloud/alprsearch/internal/domain/quality"
	"github.com/kailas-cloud/alprsearch/internal/domain/search/constraint"
	"github.com/kailas-cloud/alprsearch/internal/domain/search/dimension"
	"github.com/kailas-cloud/alprsearch/internal/domain/search/params"
	searchuc "github.com/kailas-cloud/alprsearch/internal/usecase/search"
)

// ErrorCode is a machine-readable error code returned to clients.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest             ErrorCode = "bad_request"
	ErrorCodeValidationFailed       ErrorCode = "validation_failed"
	ErrorCodeInsufficientParameters ErrorCode = "insufficient_parameters"
	ErrorCodeUnauthorized           ErrorCode = "unauthorized"
	ErrorCodeNotFound               ErrorCode = "not_found"
	ErrorCodeRateLimited            ErrorCode = "rate_limited"
	ErrorCodeAuditFailed            ErrorCode = "audit_failed"
	ErrorCodeUpstreamError          ErrorCode = "upstream_error"
	ErrorCodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

var validate = newValidator()

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationMessage flattens validator errors into "field: tag" pairs.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// SearchParamsRequest is the search form as the UI submits it. Numbers and
// dates stay strings: a value that does not parse only makes its dimension
// inactive.
type SearchParamsRequest struct {
	CaseNumber   string        `json:"caseNumber" validate:"max=64"`
	Reason       string        `json:"reason" validate:"max=256"`
	Plate        string        `json:"plate" validate:"max=16"`
	Address      string        `json:"address" validate:"max=512"`
	Latitude     string        `json:"latitude" validate:"max=32"`
	Longitude    string        `json:"longitude" validate:"max=32"`
	Radius       string        `json:"radius" validate:"max=32"`
	SearchZones  []params.Zone `json:"searchZones" validate:"max=20,dive,min=4,max=1000,dive,len=2"`
	Start        string        `json:"start" validate:"max=64"`
	End          string        `json:"end" validate:"max=64"`
	Department   string        `json:"department" validate:"max=256"`
	DepartmentID string        `json:"departmentId" validate:"max=128"`
	Device       string        `json:"device" validate:"max=128"`
	Make         string        `json:"make" validate:"max=64"`
	Model        string        `json:"model" validate:"max=64"`
	Color        string        `json:"color" validate:"max=64"`
	Accessories  string        `json:"accessories" validate:"max=64"`
	Style        string        `json:"style" validate:"max=64"`
	Label        string        `json:"label" validate:"max=64"`
	HotlistOnly  bool          `json:"hotlistOnly"`
}

func (r SearchParamsRequest) toParams() params.Parameters {
	p := params.Parameters{
		CaseNumber:   r.CaseNumber,
		Reason:       r.Reason,
		Plate:        r.Plate,
		Address:      r.Address,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		Radius:       r.Radius,
		Start:        r.Start,
		End:          r.End,
		Department:   r.Department,
		DepartmentID: r.DepartmentID,
		Device:       r.Device,
		Make:         r.Make,
		Model:        r.Model,
		Color:        r.Color,
		Accessories:  r.Accessories,
		Style:        r.Style,
		Label:        r.Label,
	}
	return p.WithZones(r.SearchZones).WithHotlistOnly(r.HotlistOnly)
}

// HotlistRequest replaces the hotlist.
type HotlistRequest struct {
	Plates []string `json:"plates" validate:"required,max=100000,dive,required,max=16"`
}

// FieldsResponse lists the active dimensions of a search form.
type FieldsResponse struct {
	Dimensions []string `json:"dimensions"`
	Ready      bool     `json:"ready"`
}

// PreviewResponse is the request a search would send.
type PreviewResponse struct {
	Dimensions []string           `json:"dimensions"`
	Request    constraint.Request `json:"request"`
}

// SearchResponse is an executed search.
type SearchResponse struct {
	AuditID    string             `json:"auditId"`
	Dimensions []string           `json:"dimensions"`
	Request    constraint.Request `json:"request"`
	NumHits    int                `json:"numHits"`
	Hits       []map[string]any   `json:"hits"`
	NumPages   int                `json:"numPages"`
	Page       *PageResponse      `json:"page,omitempty"`
}

// PageResponse is a pagination window with its derived shortcut flags.
type PageResponse struct {
	pagination.Window
	ShowFrontJump bool `json:"showFrontJump"`
	ShowBackJump  bool `json:"showBackJump"`
}

// PlatesResponse is a list of plates.
type PlatesResponse struct {
	Plates []string `json:"plates"`
}

// AuditResponse lists audit entries, newest first.
type AuditResponse struct {
	Entries []audit.Entry `json:"entries"`
}

// DashboardResponse is the per-bucket record count over a window.
type DashboardResponse struct {
	Window quality.Window  `json:"window"`
	Counts []quality.Count `json:"counts"`
}

// AgencyCountsResponse is the per-agency record count over a window.
type AgencyCountsResponse struct {
	Window quality.Window        `json:"window"`
	Counts []quality.AgencyCount `json:"counts"`
}

// HealthResponse is the aggregated health report.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func dimensionNames(dims []dimension.Dimension) []string {
	out := make([]string, len(dims))
	for i, d := range dims {
		out[i] = string(d)
	}
	return out
}

func pageToResponse(w pagination.Window) *PageResponse {
	return &PageResponse{
		Window:        w,
		ShowFrontJump: w.ShowFrontJump(),
		ShowBackJump:  w.ShowBackJump(),
	}
}

func outcomeToResponse(o searchuc.Outcome) SearchResponse {
	resp := SearchResponse{
		AuditID:    o.AuditID,
		Dimensions: dimensionNames(o.Dimensions),
		Request:    o.Request,
		NumHits:    o.Results.NumHits,
		Hits:       o.Results.Hits,
		NumPages:   o.NumPages,
	}
	if resp.Hits == nil {
		resp.Hits = []map[string]any{}
	}
	if o.Page != nil {
		resp.Page = pageToResponse(*o.Page)
	}
	return resp
}
