package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/okani-health/okani/internal/domain"
	healthuc "github.com/okani-health/okani/internal/usecase/health"
	nearbyuc "github.com/okani-health/okani/internal/usecase/nearby"
)

// Error codes returned to clients.
const (
	codeValidationFailed = "validation_failed"
	codeRateLimited      = "rate_limited"
	codeUnavailable      = "service_unavailable"
	codeInternalError    = "internal_error"
)

// AlertsService renders the public alert digest.
type AlertsService interface {
	GetAlerts(ctx context.Context) ([]domain.AlertDigest, error)
}

// NearbyService answers facility proximity queries.
type NearbyService interface {
	FindNearby(ctx context.Context, p nearbyuc.Params) ([]domain.NearbyFacility, error)
}

// SearchService answers ranked multi-source queries.
type SearchService interface {
	Search(ctx context.Context, query string, limit int) (domain.SearchResult, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server exposes the discovery endpoints.
type Server struct {
	alerts        AlertsService
	nearby        NearbyService
	search        SearchService
	health        HealthService
	logger        *zap.Logger
	searchRate    int
	errorHandlers []errorHandler
}

// NewServer creates the HTTP API server. searchRatePerMin bounds
// GET /public/search per client IP.
func NewServer(
	alerts AlertsService,
	nearby NearbyService,
	search SearchService,
	health HealthService,
	searchRatePerMin int,
	logger *zap.Logger,
) *Server {
	s := &Server{
		alerts:     alerts,
		nearby:     nearby,
		search:     search,
		health:     health,
		logger:     logger,
		searchRate: searchRatePerMin,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrUnavailable, http.StatusServiceUnavailable, codeUnavailable),
	}
	return s
}

// RegisterRoutes mounts the discovery endpoints on the router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/public", func(r chi.Router) {
		r.Get("/alerts", s.handleAlerts)
		r.Get("/organizations/nearby", s.handleNearby)

		// Search is the only rate-limited operation in this surface.
		r.Group(func(r chi.Router) {
			r.Use(httprate.Limit(s.searchRate, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
					writeError(w, http.StatusTooManyRequests, codeRateLimited,
						"rate limit exceeded, retry in a minute")
				}),
			))
			r.Get("/search", s.handleSearch)
		})
	})
}

// handleAlerts handles GET /public/alerts.
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	digests, err := s.alerts.GetAlerts(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, digests)
}

// handleNearby handles GET /public/organizations/nearby.
func (s *Server) handleNearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, err := requireFloat(q, "lat")
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	lng, err := requireFloat(q, "lng")
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	radius, err := optionalPositiveFloat(q, "radius")
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	limit, err := optionalPositiveInt(q, "limit")
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	results, err := s.nearby.FindNearby(r.Context(), nearbyuc.Params{
		Lat:      lat,
		Lng:      lng,
		RadiusKm: radius,
		Limit:    limit,
		Types:    q["types"],
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// searchResponse is the GET /public/search success body.
type searchResponse struct {
	Status      string              `json:"status"`
	Data        []domain.SearchItem `json:"data"`
	Suggestions []string            `json:"suggestions"`
}

// handleSearch handles GET /public/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := optionalPositiveInt(q, "limit")
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	result, err := s.search.Search(r.Context(), q.Get("q"), limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Status:      "success",
		Data:        result.Results,
		Suggestions: result.Suggestions,
	})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// handleMetrics handles GET /metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// requireFloat parses a mandatory float query parameter.
func requireFloat(q url.Values, name string) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, domain.NewValidation(name, "is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, domain.NewValidation(name, "must be a number")
	}
	return v, nil
}

// optionalPositiveFloat parses an optional float parameter that must be
// positive when present. Absent values return 0, the "use default" marker.
func optionalPositiveFloat(q url.Values, name string) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, domain.NewValidation(name, "must be a number")
	}
	if v <= 0 {
		return 0, domain.NewValidation(name, "must be positive")
	}
	return v, nil
}

// optionalPositiveInt parses an optional integer parameter that must be
// positive when present. Absent values return 0, the "use default" marker.
func optionalPositiveInt(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidation(name, "must be an integer")
	}
	if v <= 0 {
		return 0, domain.NewValidation(name, "must be positive")
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}

// validationHandler surfaces field-level validation messages to clients.
func validationHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrValidation) {
		return false
	}
	msg := domain.ErrValidation.Error()
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		msg = ve.Field + " " + ve.Message
	}
	writeError(w, http.StatusBadRequest, codeValidationFailed, msg)
	return true
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			s.logger.Warn("request rejected", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
