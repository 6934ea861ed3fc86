package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/alprsearch/internal/domain"
	"github.com/kailas-cloud/alprsearch/internal/domain/audit"
	"github.com/kailas-cloud/alprsearch/internal/domain/pagination"
	"github.com/kailas-cloud/alprsearch/internal/domain/quality"
	"github.com/kailas-cloud/alprsearch/internal/domain/search/params"
	"github.com/kailas-cloud/alprsearch/internal/logger"
	healthuc "github.com/kailas-cloud/alprsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/alprsearch/internal/usecase/search"
)

const (
	// UserHeader carries the identity of the officer running a search.
	UserHeader    = "X-User-Email"
	anonymousUser = "anonymous"

	defaultAuditLimit = 50
	maxAuditLimit     = 500
	maxBodyBytes      = 1 << 20
)

// searchService is the consumer interface for the search use case (ISP).
type searchService interface {
	Fields(p params.Parameters) searchuc.Fields
	Preview(ctx context.Context, p params.Parameters) (searchuc.Draft, error)
	Execute(ctx context.Context, user string, p params.Parameters) (searchuc.Outcome, error)
	RecentPlates(ctx context.Context, user string) ([]string, error)
	AuditTrail(ctx context.Context, n int) ([]audit.Entry, error)
}

// hotlistService is the consumer interface for the hotlist use case (ISP).
type hotlistService interface {
	Plates(ctx context.Context) ([]string, error)
	Replace(ctx context.Context, plates []string) ([]string, error)
}

// qualityService is the consumer interface for the data-quality dashboard (ISP).
type qualityService interface {
	Dashboard(ctx context.Context, w quality.Window) ([]quality.Count, error)
	AgencyCounts(ctx context.Context, w quality.Window) ([]quality.AgencyCount, error)
}

// healthService is the consumer interface for health checks (ISP).
type healthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the vehicle search HTTP API.
type Server struct {
	search        searchService
	hotlist       hotlistService
	quality       qualityService
	health        healthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search searchService,
	hotlist hotlistService,
	quality qualityService,
	health healthService,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:  search,
		hotlist: hotlist,
		quality: quality,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInsufficientParameters,
			http.StatusUnprocessableEntity, ErrorCodeInsufficientParameters),
		sentinelHandler(domain.ErrInvalidParameter, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrAuditFailed, http.StatusServiceUnavailable, ErrorCodeAuditFailed),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, ErrorCodeRateLimited),
		sentinelHandler(domain.ErrUpstream, http.StatusBadGateway, ErrorCodeUpstreamError),
	}
	return s
}

// Routes registers the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search/fields", s.SearchFields)
		r.Post("/search/preview", s.PreviewSearch)
		r.Post("/search", s.ExecuteSearch)
		r.Get("/pagination", s.Pagination)
		r.Get("/plates/recent", s.RecentPlates)
		r.Get("/hotlist", s.GetHotlist)
		r.Put("/hotlist", s.ReplaceHotlist)
		r.Get("/audit", s.ListAudit)
		r.Get("/quality/dashboard", s.QualityDashboard)
		r.Get("/quality/agencies", s.QualityAgencies)
	})
}

// SearchFields handles POST /api/v1/search/fields.
func (s *Server) SearchFields(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodeParams(w, r)
	if !ok {
		return
	}
	f := s.search.Fields(p)
	writeJSON(w, http.StatusOK, FieldsResponse{
		Dimensions: dimensionNames(f.Dimensions),
		Ready:      f.Ready,
	})
}

// PreviewSearch handles POST /api/v1/search/preview.
func (s *Server) PreviewSearch(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodeParams(w, r)
	if !ok {
		return
	}
	d, err := s.search.Preview(r.Context(), p)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PreviewResponse{
		Dimensions: dimensionNames(d.Dimensions),
		Request:    d.Request,
	})
}

// ExecuteSearch handles POST /api/v1/search.
func (s *Server) ExecuteSearch(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodeParams(w, r)
	if !ok {
		return
	}
	out, err := s.search.Execute(r.Context(), userFromRequest(r), p)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcomeToResponse(out))
}

// Pagination handles GET /api/v1/pagination.
func (s *Server) Pagination(w http.ResponseWriter, r *http.Request) {
	var activePage, numPages int
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, true, "active_page", q, &activePage); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid active_page")
		return
	}
	if err := runtime.BindQueryParameter("form", true, true, "num_pages", q, &numPages); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid num_pages")
		return
	}
	if numPages < 0 || activePage < pagination.StartPage || (numPages > 0 && activePage > numPages) {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
			"active_page must be between 1 and num_pages")
		return
	}

	win, ok := pagination.Compute(activePage, numPages)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, pageToResponse(win))
}

// RecentPlates handles GET /api/v1/plates/recent.
func (s *Server) RecentPlates(w http.ResponseWriter, r *http.Request) {
	plates, err := s.search.RecentPlates(r.Context(), userFromRequest(r))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PlatesResponse{Plates: plates})
}

// GetHotlist handles GET /api/v1/hotlist.
func (s *Server) GetHotlist(w http.ResponseWriter, r *http.Request) {
	plates, err := s.hotlist.Plates(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PlatesResponse{Plates: plates})
}

// ReplaceHotlist handles PUT /api/v1/hotlist.
func (s *Server) ReplaceHotlist(w http.ResponseWriter, r *http.Request) {
	var req HotlistRequest
	if !decodeBody(w, r, &req) {
		return
	}
	plates, err := s.hotlist.Replace(r.Context(), req.Plates)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	logger.FromContext(r.Context()).Info("hotlist replaced",
		zap.String("user", userFromRequest(r)),
		zap.Int("plates", len(plates)),
	)
	writeJSON(w, http.StatusOK, PlatesResponse{Plates: plates})
}

// ListAudit handles GET /api/v1/audit.
func (s *Server) ListAudit(w http.ResponseWriter, r *http.Request) {
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid limit")
		return
	}
	n := defaultAuditLimit
	if limit != nil {
		n = *limit
	}
	if n < 1 || n > maxAuditLimit {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "limit must be between 1 and 500")
		return
	}

	entries, err := s.search.AuditTrail(r.Context(), n)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	writeJSON(w, http.StatusOK, AuditResponse{Entries: entries})
}

// QualityDashboard handles GET /api/v1/quality/dashboard.
func (s *Server) QualityDashboard(w http.ResponseWriter, r *http.Request) {
	win, ok := bindWindow(w, r)
	if !ok {
		return
	}
	counts, err := s.quality.Dashboard(r.Context(), win)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DashboardResponse{Window: win, Counts: counts})
}

// QualityAgencies handles GET /api/v1/quality/agencies.
func (s *Server) QualityAgencies(w http.ResponseWriter, r *http.Request) {
	win, ok := bindWindow(w, r)
	if !ok {
		return
	}
	counts, err := s.quality.AgencyCounts(r.Context(), win)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AgencyCountsResponse{Window: win, Counts: counts})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) decodeParams(w http.ResponseWriter, r *http.Request) (params.Parameters, bool) {
	var req SearchParamsRequest
	if !decodeBody(w, r, &req) {
		return params.Parameters{}, false
	}
	return req.toParams(), true
}

// decodeBody reads and validates a JSON body, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, validationMessage(err))
		return false
	}
	return true
}

func bindWindow(w http.ResponseWriter, r *http.Request) (quality.Window, bool) {
	var raw *string
	if err := runtime.BindQueryParameter("form", true, false, "window", r.URL.Query(), &raw); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid window")
		return "", false
	}
	var name string
	if raw != nil {
		name = *raw
	}
	win, err := quality.ParseWindow(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return "", false
	}
	return win, true
}

func userFromRequest(r *http.Request) string {
	if u := strings.TrimSpace(r.Header.Get(UserHeader)); u != "" {
		return u
	}
	return anonymousUser
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInsufficientParameters,
		domain.ErrInvalidParameter,
		domain.ErrNotFound,
		domain.ErrAuditFailed,
		domain.ErrRateLimited,
		domain.ErrUpstream,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
