package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/alprsearch/internal/domain"
	"github.com/kailas-cloud/alprsearch/internal/domain/audit"
	"github.com/kailas-cloud/alprsearch/internal/domain/edm"
	"github.com/kailas-cloud/alprsearch/internal/domain/pagination"
	"github.com/kailas-cloud/alprsearch/internal/domain/search/constraint"
	"github.com/kailas-cloud/alprsearch/internal/domain/search/dimension"
	"github.com/kailas-cloud/alprsearch/internal/domain/search/params"
	"github.com/kailas-cloud/alprsearch/internal/domain/search/query"
	"github.com/kailas-cloud/alprsearch/internal/logger"
	"github.com/kailas-cloud/alprsearch/internal/metrics"
)

// DefaultPageSize is the number of hits shown per results page.
const DefaultPageSize = 25

// Config holds the entity sets a search runs against.
type Config struct {
	EntitySetID string
	Agencies    edm.AgencyEntitySets
	PageSize    int
}

// Fields reports which dimensions a set of parameters activates.
type Fields struct {
	Dimensions dimension.Set
	Ready      bool
}

// Draft is the request a search would send and the dimensions it covers.
type Draft struct {
	Request    constraint.Request
	Dimensions []dimension.Dimension
}

// Outcome is the result of an executed search.
type Outcome struct {
	AuditID    string
	Request    constraint.Request
	Dimensions []dimension.Dimension
	Results    constraint.Results
	NumPages   int
	// Page is nil when the results fit on one page.
	Page *pagination.Window
}

// Service validates, builds, audits and executes vehicle searches.
type Service struct {
	registry RegistryProvider
	hotlist  HotlistProvider
	recent   RecentPlates
	audit    AuditLog
	searcher Searcher
	cfg      Config
	now      func() time.Time
}

// New creates a search service.
func New(
	registry RegistryProvider, hotlist HotlistProvider, recent RecentPlates,
	auditLog AuditLog, searcher Searcher, cfg Config,
) *Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &Service{
		registry: registry,
		hotlist:  hotlist,
		recent:   recent,
		audit:    auditLog,
		searcher: searcher,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Fields returns the active dimensions of p and whether p may be submitted.
func (s *Service) Fields(p params.Parameters) Fields {
	dims := dimension.Active(p)
	return Fields{Dimensions: dims, Ready: len(dims) > 0}
}

// Preview builds the request Execute would send. It neither audits, records
// recent plates nor runs the search, but a hotlist-only preview may load the
// hotlist and warm its cache.
func (s *Service) Preview(ctx context.Context, p params.Parameters) (Draft, error) {
	in, err := s.prepare(ctx, p)
	if err != nil {
		return Draft{}, err
	}
	return Draft{Request: query.Build(in), Dimensions: query.Dimensions(in)}, nil
}

// Execute runs a search on behalf of user. The search is audited before it
// runs; if the audit record cannot be written the search is not executed.
func (s *Service) Execute(ctx context.Context, user string, p params.Parameters) (Outcome, error) {
	log := logger.FromContext(ctx)
	searchedAt := s.now()

	in, err := s.prepare(ctx, p)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientParameters) {
			metrics.SearchesTotal.WithLabelValues("insufficient").Inc()
		}
		return Outcome{}, err
	}
	req := query.Build(in)
	dims := query.Dimensions(in)

	if dimension.PlateActive(p) {
		if err := s.recent.Save(ctx, user, p.Plate); err != nil {
			log.Warn("failed to save recent plate", zap.Error(err))
		}
	}

	entry, err := s.audit.Save(ctx, audit.New(user, p.CaseNumber, p.Reason, req, searchedAt))
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("audit_failed").Inc()
		log.Error("search audit failed, search not executed", zap.Error(err))
		return Outcome{}, fmt.Errorf("%w: %w", domain.ErrAuditFailed, err)
	}

	res, err := s.searcher.ExecuteSearch(ctx, req)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("upstream_error").Inc()
		return Outcome{}, fmt.Errorf("execute search: %w", err)
	}

	metrics.SearchesTotal.WithLabelValues("ok").Inc()
	metrics.SearchHits.Observe(float64(len(res.Hits)))
	for _, d := range dims {
		metrics.SearchDimensions.WithLabelValues(string(d)).Inc()
	}

	out := Outcome{
		AuditID:    entry.ID,
		Request:    req,
		Dimensions: dims,
		Results:    res,
		NumPages:   pagination.NumPagesFor(len(res.Hits), s.cfg.PageSize),
	}
	if w, ok := pagination.Compute(pagination.StartPage, out.NumPages); ok {
		out.Page = &w
	}

	log.Info("search executed",
		zap.String("audit_id", entry.ID),
		zap.String("case_number", p.CaseNumber),
		zap.Int("dimensions", len(dims)),
		zap.Int("num_hits", res.NumHits),
	)
	return out, nil
}

// RecentPlates returns the plates user searched for most recently.
func (s *Service) RecentPlates(ctx context.Context, user string) ([]string, error) {
	plates, err := s.recent.List(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("recent plates: %w", err)
	}
	return plates, nil
}

// AuditTrail returns the n most recent audit entries.
func (s *Service) AuditTrail(ctx context.Context, n int) ([]audit.Entry, error) {
	entries, err := s.audit.Recent(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("audit trail: %w", err)
	}
	return entries, nil
}

// prepare gates p on the minimum search policy and gathers the builder inputs.
func (s *Service) prepare(ctx context.Context, p params.Parameters) (query.Input, error) {
	if !dimension.Ready(p) {
		return query.Input{}, domain.ErrInsufficientParameters
	}

	reg, err := s.registry.Registry(ctx)
	if err != nil {
		return query.Input{}, fmt.Errorf("load property types: %w", err)
	}

	var hot []string
	if p.HotlistOnly {
		if hot, err = s.hotlist.Plates(ctx); err != nil {
			return query.Input{}, fmt.Errorf("load hotlist: %w", err)
		}
	}

	return query.Input{
		EntitySetID:   s.cfg.EntitySetID,
		PropertyTypes: reg,
		Params:        p,
		Hotlist:       hot,
		Agencies:      s.cfg.Agencies,
	}, nil
}
