// Package alerts implements the urgent-alert digest behind
// GET /public/alerts.
package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/okani-health/okani/internal/cache"
	"github.com/okani-health/okani/internal/domain"
)

const (
	// maxAlerts caps the digest; the selection query is bounded by it too.
	maxAlerts = 4

	// cacheKey is fixed: the digest takes no parameters.
	cacheKey = "alerts:latest"

	defaultTTL = 300 * time.Second
)

// Service renders the public alert digest through a read-through cache.
type Service struct {
	repo       Repository
	cache      cache.Cache
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
	ttl        time.Duration
	now        func() time.Time
}

// New creates an alerts service.
func New(repo Repository, c cache.Cache, logger *zap.Logger) *Service {
	return &Service{repo: repo, cache: c, logger: logger, ttl: defaultTTL, now: time.Now}
}

// WithTTL overrides the cache TTL.
func (s *Service) WithTTL(ttl time.Duration) *Service {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// WithCacheMetrics attaches the cache lookup counter (labels: op, result).
func (s *Service) WithCacheMetrics(counter *prometheus.CounterVec) *Service {
	s.cacheTotal = counter
	return s
}

// WithClock overrides the clock used for relative dates.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// GetAlerts returns at most four digests of published HIGH/URGENT
// announcements targeting everyone, most recent first.
func (s *Service) GetAlerts(ctx context.Context) ([]domain.AlertDigest, error) {
	if cached, ok := s.fromCache(ctx); ok {
		s.incCache("hit")
		return cached, nil
	}
	s.incCache("miss")

	eligible, err := s.repo.FindAlertEligible(ctx, maxAlerts)
	if err != nil {
		return nil, fmt.Errorf("find alert announcements: %w", err)
	}

	now := s.now()
	digests := make([]domain.AlertDigest, 0, len(eligible))
	for _, a := range eligible {
		digests = append(digests, domain.DigestFromAnnouncement(a, now))
	}

	s.toCache(ctx, digests)
	return digests, nil
}

func (s *Service) fromCache(ctx context.Context) ([]domain.AlertDigest, bool) {
	data, err := s.cache.Get(ctx, cacheKey)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("alerts cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var out []domain.AlertDigest
	if err := json.Unmarshal(data, &out); err != nil {
		s.logger.Warn("alerts cache entry malformed", zap.Error(err))
		return nil, false
	}
	return out, true
}

func (s *Service) toCache(ctx context.Context, v []domain.AlertDigest) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.SetWithTTL(ctx, cacheKey, data, s.ttl); err != nil {
		s.logger.Warn("alerts cache write failed", zap.Error(err))
	}
}

func (s *Service) incCache(result string) {
	if s.cacheTotal != nil {
		s.cacheTotal.WithLabelValues("alerts", result).Inc()
	}
}
