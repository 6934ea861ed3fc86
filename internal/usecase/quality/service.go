package quality

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/alprsearch/internal/domain/edm"
	domquality "github.com/kailas-cloud/alprsearch/internal/domain/quality"
	"github.com/kailas-cloud/alprsearch/internal/domain/search/constraint"
)

// DefaultConcurrency bounds the number of in-flight count searches.
const DefaultConcurrency = 5

// Config holds the entity sets the dashboard reads from.
type Config struct {
	RecordsEntitySetID  string
	AgenciesEntitySetID string
	Concurrency         int
}

// Service computes data-quality dashboard counts.
type Service struct {
	counter  Counter
	reader   EntitySetReader
	registry RegistryProvider
	cfg      Config
	now      func() time.Time
}

// New creates a quality dashboard service.
func New(counter Counter, reader EntitySetReader, registry RegistryProvider, cfg Config) *Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Service{counter: counter, reader: reader, registry: registry, cfg: cfg, now: time.Now}
}

// Dashboard returns read counts per increment of the window, oldest first.
func (s *Service) Dashboard(ctx context.Context, w domquality.Window) ([]domquality.Count, error) {
	reg, err := s.registry.Registry(ctx)
	if err != nil {
		return nil, fmt.Errorf("load property types: %w", err)
	}
	tsID := reg.ID(edm.PropTimestamp)

	buckets := domquality.Buckets(w, s.now())
	terms := make([]string, len(buckets))
	for i, b := range buckets {
		terms[i] = constraint.DateSearchTerm(tsID, b.StartTerm(), b.EndTerm())
	}

	counts, err := s.countAll(ctx, terms)
	if err != nil {
		return nil, err
	}

	out := make([]domquality.Count, len(buckets))
	for i, b := range buckets {
		out[i] = domquality.Count{Label: b.Label, Count: counts[i]}
	}
	return out, nil
}

// Agencies lists the agencies entity set. The name falls back to the
// description, then to "".
func (s *Service) Agencies(ctx context.Context) ([]domquality.Agency, error) {
	if s.cfg.AgenciesEntitySetID == "" {
		return []domquality.Agency{}, nil
	}
	rows, err := s.reader.EntitySetData(ctx, s.cfg.AgenciesEntitySetID)
	if err != nil {
		return nil, fmt.Errorf("load agencies: %w", err)
	}

	out := make([]domquality.Agency, 0, len(rows))
	seen := make(map[string]int, len(rows))
	for _, row := range rows {
		id := first(row, edm.PropID)
		if id == "" {
			continue
		}
		name := first(row, edm.PropName)
		if name == "" {
			name = first(row, edm.PropDescription)
		}
		// Later rows win, like a keyed map.
		if i, ok := seen[id]; ok {
			out[i].Name = name
			continue
		}
		seen[id] = len(out)
		out = append(out, domquality.Agency{ID: id, Name: name})
	}
	return out, nil
}

// AgencyCounts returns read counts per agency over the whole window.
func (s *Service) AgencyCounts(ctx context.Context, w domquality.Window) ([]domquality.AgencyCount, error) {
	agencies, err := s.Agencies(ctx)
	if err != nil {
		return nil, err
	}
	reg, err := s.registry.Registry(ctx)
	if err != nil {
		return nil, fmt.Errorf("load property types: %w", err)
	}

	span := domquality.Span(w, s.now())
	dateTerm := constraint.DateSearchTerm(reg.ID(edm.PropTimestamp), span.StartTerm(), span.EndTerm())
	agencyPTID := reg.ID(edm.PropAgencyName)

	terms := make([]string, len(agencies))
	for i, a := range agencies {
		terms[i] = constraint.SearchTerm(agencyPTID, a.ID) + " AND " + dateTerm
	}

	counts, err := s.countAll(ctx, terms)
	if err != nil {
		return nil, err
	}

	out := make([]domquality.AgencyCount, len(agencies))
	for i, a := range agencies {
		out[i] = domquality.AgencyCount{AgencyID: a.ID, Name: a.Name, Count: counts[i]}
	}
	return out, nil
}

// countAll runs one count-only search per term concurrently, preserving order.
func (s *Service) countAll(ctx context.Context, terms []string) ([]int, error) {
	counts := make([]int, len(terms))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for i, term := range terms {
		g.Go(func() error {
			res, err := s.counter.SearchEntitySet(gctx, s.cfg.RecordsEntitySetID, constraint.EntitySetSearch{
				SearchTerm: term,
				Start:      0,
				MaxHits:    0,
				Fuzzy:      false,
			})
			if err != nil {
				return fmt.Errorf("count %q: %w", term, err)
			}
			counts[i] = res.NumHits
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}

func first(row map[string][]any, fqn edm.FQN) string {
	vals := row[fqn.String()]
	if len(vals) == 0 || vals[0] == nil {
		return ""
	}
	if s, ok := vals[0].(string); ok {
		return s
	}
	return fmt.Sprint(vals[0])
}
