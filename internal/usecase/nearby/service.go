// Package nearby implements the geospatial proximity engine behind
// GET /public/organizations/nearby.
package nearby

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/okani-health/okani/internal/cache"
	"github.com/okani-health/okani/internal/domain"
	"github.com/okani-health/okani/internal/domain/geo"
)

// Radius and limit bounds for proximity search.
const (
	DefaultRadiusKm = 20.0
	MinRadiusKm     = 1.0
	MaxRadiusKm     = 100.0
	DefaultLimit    = 50
	MinLimit        = 5
	MaxLimit        = 50

	defaultTTL = 300 * time.Second
)

// Params are the proximity search inputs. Zero RadiusKm and Limit select
// the defaults.
type Params struct {
	Lat      float64
	Lng      float64
	RadiusKm float64
	Limit    int
	Types    []string
}

// Service answers proximity queries through a read-through cache.
type Service struct {
	repo       Repository
	cache      cache.Cache
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
	ttl        time.Duration
}

// New creates a nearby service.
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

// FindNearby returns ACTIVE facilities within the radius, ordered by
// ascending distance, ties broken by ID. Coordinates are validated before
// any cache or store access.
func (s *Service) FindNearby(ctx context.Context, p Params) ([]domain.NearbyFacility, error) {
	if p.Lat < -90 || p.Lat > 90 {
		return nil, domain.NewValidation("lat", "must be between -90 and 90")
	}
	if p.Lng < -180 || p.Lng > 180 {
		return nil, domain.NewValidation("lng", "must be between -180 and 180")
	}

	radius := clampRadius(p.RadiusKm)
	limit := clampLimit(p.Limit)
	types := domain.ParseFacilityTypes(p.Types)

	key := cacheKey(p.Lat, p.Lng, radius, types, limit)
	if cached, ok := s.fromCache(ctx, key); ok {
		s.incCache("hit")
		return cached, nil
	}
	s.incCache("miss")

	results, err := s.compute(ctx, p.Lat, p.Lng, radius, types, limit)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, key, results)
	return results, nil
}

func (s *Service) compute(
	ctx context.Context, lat, lng, radius float64, types []domain.FacilityType, limit int,
) ([]domain.NearbyFacility, error) {
	box := geo.BoxAround(lat, lng, radius)
	candidates, err := s.repo.FindActiveInBox(ctx, box, types)
	if err != nil {
		return nil, fmt.Errorf("find facilities: %w", err)
	}

	results := make([]domain.NearbyFacility, 0, len(candidates))
	for _, f := range candidates {
		if f.Latitude == nil || f.Longitude == nil {
			continue
		}
		d := geo.Haversine(lat, lng, *f.Latitude, *f.Longitude)
		if d > radius {
			continue
		}
		results = append(results, domain.NearbyFacility{
			ID:         f.ID,
			Name:       f.Name,
			Type:       string(f.Type),
			Phone:      f.Phone,
			Address:    f.Address,
			City:       f.City,
			Region:     f.Region,
			Latitude:   *f.Latitude,
			Longitude:  *f.Longitude,
			DistanceKm: d,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].DistanceKm != results[j].DistanceKm {
			return results[i].DistanceKm < results[j].DistanceKm
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func clampRadius(r float64) float64 {
	switch {
	case r == 0:
		return DefaultRadiusKm
	case r < MinRadiusKm:
		return MinRadiusKm
	case r > MaxRadiusKm:
		return MaxRadiusKm
	default:
		return r
	}
}

func clampLimit(l int) int {
	switch {
	case l == 0:
		return DefaultLimit
	case l < MinLimit:
		return MinLimit
	case l > MaxLimit:
		return MaxLimit
	default:
		return l
	}
}

// cacheKey derives the entry key from the 3-decimal grid cell, radius,
// sorted type filter and limit, so requests rounding to the same cell and
// parameters share one entry.
func cacheKey(lat, lng, radius float64, types []domain.FacilityType, limit int) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return fmt.Sprintf("nearby:%s:%s:%g:%s:%d",
		geo.CellKey(lat), geo.CellKey(lng), radius, strings.Join(names, ","), limit)
}

func (s *Service) fromCache(ctx context.Context, key string) ([]domain.NearbyFacility, bool) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("nearby cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var out []domain.NearbyFacility
	if err := json.Unmarshal(data, &out); err != nil {
		s.logger.Warn("nearby cache entry malformed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return out, true
}

func (s *Service) toCache(ctx context.Context, key string, v []domain.NearbyFacility) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.SetWithTTL(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("nearby cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) incCache(result string) {
	if s.cacheTotal != nil {
		s.cacheTotal.WithLabelValues("nearby", result).Inc()
	}
}
