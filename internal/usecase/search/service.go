// Package search implements the ranked multi-source search behind
// GET /public/search: one normalized query fanned out concurrently to
// facilities, announcements and articles, merged under fixed source
// priority.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/okani-health/okani/internal/cache"
	"github.com/okani-health/okani/internal/domain"
	"github.com/okani-health/okani/internal/domain/text"
)

// Limit bounds for search.
const (
	DefaultLimit = 10
	MaxLimit     = 50

	defaultTTL = 60 * time.Second
)

// fallbackSuggestions is returned when a query matches nothing, so the
// client can offer common health topics instead of a blank page.
var fallbackSuggestions = []string{
	"paludisme",
	"vaccination",
	"cholera",
	"grossesse",
	"hypertension",
	"centre de sante",
}

// Service answers full-text queries through a read-through cache.
type Service struct {
	repo       Repository
	cache      cache.Cache
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
	ttl        time.Duration
}

// New creates a search service.
func New(repo Repository, c cache.Cache, logger *zap.Logger) *Service {
	return &Service{repo: repo, cache: c, logger: logger, ttl: defaultTTL}
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

// Search runs the three-source ranked search. A blank query returns empty
// results and empty suggestions without touching the cache or the store.
// A failing source degrades to zero rows; the request only errors when
// every source fails.
func (s *Service) Search(ctx context.Context, rawQuery string, limit int) (domain.SearchResult, error) {
	query := strings.TrimSpace(rawQuery)
	if query == "" {
		return domain.SearchResult{Results: []domain.SearchItem{}, Suggestions: []string{}}, nil
	}
	limit = clampLimit(limit)

	key := "search:" + strings.ToLower(query) + ":" + strconv.Itoa(limit)
	if cached, ok := s.fromCache(ctx, key); ok {
		s.incCache("hit")
		return cached, nil
	}
	s.incCache("miss")

	result, err := s.compute(ctx, query, limit)
	if err != nil {
		return domain.SearchResult{}, err
	}

	s.toCache(ctx, key, result)
	return result, nil
}

func (s *Service) compute(ctx context.Context, query string, limit int) (domain.SearchResult, error) {
	normalized := text.Normalize(query)

	var (
		facilities, announcements, articles []domain.SearchItem
		facErr, annErr, artErr              error
	)

	// The three source queries are independent; issue them concurrently
	// and join before merging. Errors are collected per source, not
	// propagated, so one failing source cannot cancel the others.
	var g errgroup.Group
	g.Go(func() error {
		facilities, facErr = s.repo.RankFacilities(ctx, normalized, limit)
		return nil
	})
	g.Go(func() error {
		announcements, annErr = s.repo.RankAnnouncements(ctx, normalized, limit)
		return nil
	})
	g.Go(func() error {
		articles, artErr = s.repo.RankArticles(ctx, normalized, limit)
		return nil
	})
	_ = g.Wait()

	failures := 0
	for src, err := range map[string]error{
		"facilities": facErr, "announcements": annErr, "articles": artErr,
	} {
		if err != nil {
			failures++
			s.logger.Warn("search source failed", zap.String("source", src), zap.Error(err))
		}
	}
	if failures == 3 {
		return domain.SearchResult{}, fmt.Errorf("%w: all search sources failed: %v",
			domain.ErrUnavailable, facErr)
	}

	results := merge(facilities, announcements, articles, limit)

	suggestions := []string{}
	if len(results) == 0 {
		suggestions = append(suggestions, fallbackSuggestions...)
	}

	return domain.SearchResult{Results: results, Suggestions: suggestions}, nil
}

func clampLimit(l int) int {
	switch {
	case l <= 0:
		return DefaultLimit
	case l > MaxLimit:
		return MaxLimit
	default:
		return l
	}
}

func (s *Service) fromCache(ctx context.Context, key string) (domain.SearchResult, bool) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("search cache read failed", zap.String("key", key), zap.Error(err))
		}
		return domain.SearchResult{}, false
	}
	var out domain.SearchResult
	if err := json.Unmarshal(data, &out); err != nil {
		s.logger.Warn("search cache entry malformed", zap.String("key", key), zap.Error(err))
		return domain.SearchResult{}, false
	}
	return out, true
}

func (s *Service) toCache(ctx context.Context, key string, v domain.SearchResult) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.SetWithTTL(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("search cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) incCache(result string) {
	if s.cacheTotal != nil {
		s.cacheTotal.WithLabelValues("search", result).Inc()
	}
}
