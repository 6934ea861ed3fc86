package edm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	domedm "github.com/kailas-cloud/alprsearch/internal/domain/edm"
	"github.com/kailas-cloud/alprsearch/internal/logger"
	"github.com/kailas-cloud/alprsearch/internal/metrics"
)

// DefaultTTL is how long a loaded registry is served before refreshing.
const DefaultTTL = 15 * time.Minute

// RetryBackoff is how long a stale registry is served after a failed refresh
// before the next attempt.
const RetryBackoff = 30 * time.Second

// Service serves the property-type registry from memory, refreshing it from
// the remote API once the TTL elapses. A failed refresh keeps the stale copy.
// Concurrent refreshes share one upstream call, made without holding mu.
type Service struct {
	src     PropertyTypeSource
	ttl     time.Duration
	backoff time.Duration
	now     func() time.Time
	group   singleflight.Group

	mu   sync.RWMutex
	reg  domedm.PropertyTypeRegistry
	next time.Time
	have bool
}

// New creates a registry service. ttl <= 0 falls back to DefaultTTL.
func New(src PropertyTypeSource, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{src: src, ttl: ttl, backoff: RetryBackoff, now: time.Now}
}

// Registry returns the current property-type registry.
func (s *Service) Registry(ctx context.Context) (domedm.PropertyTypeRegistry, error) {
	if reg, ok := s.cached(); ok {
		metrics.CacheTotal.WithLabelValues("property_types", "hit").Inc()
		return reg, nil
	}
	metrics.CacheTotal.WithLabelValues("property_types", "miss").Inc()

	v, err, _ := s.group.Do("registry", func() (any, error) {
		// A flight that finished while this caller waited already refreshed.
		if reg, ok := s.cached(); ok {
			return reg, nil
		}
		return s.refresh(ctx)
	})
	if err != nil {
		return domedm.PropertyTypeRegistry{}, err
	}
	return v.(domedm.PropertyTypeRegistry), nil
}

func (s *Service) cached() (domedm.PropertyTypeRegistry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.have && s.now().Before(s.next) {
		return s.reg, true
	}
	return domedm.PropertyTypeRegistry{}, false
}

func (s *Service) refresh(ctx context.Context) (domedm.PropertyTypeRegistry, error) {
	types, err := s.src.PropertyTypes(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if s.have {
			s.next = s.now().Add(s.backoff)
			logger.FromContext(ctx).Warn("property type refresh failed, serving stale registry",
				zap.Error(err), zap.Time("retry_at", s.next))
			return s.reg, nil
		}
		return domedm.PropertyTypeRegistry{}, fmt.Errorf("load property types: %w", err)
	}

	s.reg = domedm.NewPropertyTypeRegistry(types)
	s.next = s.now().Add(s.ttl)
	s.have = true
	return s.reg, nil
}

// Warm loads the registry eagerly, typically at startup.
func (s *Service) Warm(ctx context.Context) error {
	_, err := s.Registry(ctx)
	return err
}
