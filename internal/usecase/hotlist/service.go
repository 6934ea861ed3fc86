package hotlist

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/alprsearch/internal/domain/edm"
	"github.com/kailas-cloud/alprsearch/internal/logger"
	"github.com/kailas-cloud/alprsearch/internal/metrics"
	hotlistrepo "github.com/kailas-cloud/alprsearch/internal/repository/hotlist"
)

// Service serves the hotlist from cache, loading it from the hotlist entity set on a miss.
// Concurrent misses share one load.
type Service struct {
	cache       Cache
	src         EntitySetReader
	entitySetID string
	group       singleflight.Group
}

// New creates a hotlist service. An empty entitySetID disables remote loading.
func New(cache Cache, src EntitySetReader, entitySetID string) *Service {
	return &Service{cache: cache, src: src, entitySetID: entitySetID}
}

// Plates returns the lowercase, sorted hotlist plates.
func (s *Service) Plates(ctx context.Context) ([]string, error) {
	log := logger.FromContext(ctx)

	plates, loaded, err := s.cache.Plates(ctx)
	switch {
	case err != nil:
		log.Warn("hotlist cache read failed", zap.Error(err))
	case loaded:
		metrics.CacheTotal.WithLabelValues("hotlist", "hit").Inc()
		return plates, nil
	}
	metrics.CacheTotal.WithLabelValues("hotlist", "miss").Inc()

	if s.entitySetID == "" {
		return []string{}, nil
	}

	v, err, _ := s.group.Do(s.entitySetID, func() (any, error) {
		return s.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]string)), nil
}

// load reads the hotlist entity set and caches its plates.
func (s *Service) load(ctx context.Context) ([]string, error) {
	log := logger.FromContext(ctx)

	rows, err := s.src.EntitySetData(ctx, s.entitySetID)
	if err != nil {
		return nil, fmt.Errorf("load hotlist entity set: %w", err)
	}

	raw := make([]string, 0, len(rows))
	for _, row := range rows {
		if id, ok := firstString(row, edm.PropID); ok {
			raw = append(raw, id)
		}
	}

	stored, err := s.cache.Replace(ctx, raw)
	if err != nil {
		log.Warn("hotlist cache write failed", zap.Error(err))
		return hotlistrepo.Normalize(raw), nil
	}
	return stored, nil
}

// Replace overwrites the cached hotlist, e.g. after an import.
func (s *Service) Replace(ctx context.Context, plates []string) ([]string, error) {
	stored, err := s.cache.Replace(ctx, plates)
	if err != nil {
		return nil, fmt.Errorf("replace hotlist: %w", err)
	}
	return stored, nil
}

// firstString returns the first value of property fqn rendered as a string.
func firstString(row map[string][]any, fqn edm.FQN) (string, bool) {
	vals := row[fqn.String()]
	if len(vals) == 0 || vals[0] == nil {
		return "", false
	}
	if s, ok := vals[0].(string); ok {
		return s, s != ""
	}
	return fmt.Sprint(vals[0]), true
}
