package nearby

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/okani-health/okani/internal/cache"
	"github.com/okani-health/okani/internal/domain"
	"github.com/okani-health/okani/internal/domain/geo"
)

type mockRepo struct {
	facilities []domain.Facility
	err        error
	calls      int
	lastBox    geo.BoundingBox
	lastTypes  []domain.FacilityType
}

func (m *mockRepo) FindActiveInBox(
	_ context.Context, box geo.BoundingBox, types []domain.FacilityType,
) ([]domain.Facility, error) {
	m.calls++
	m.lastBox = box
	m.lastTypes = types
	return m.facilities, m.err
}

type fakeCache struct {
	entries map[string][]byte
	getErr  error
	setErr  error
	gets    int
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.gets++
	if c.getErr != nil {
		return nil, c.getErr
	}
	v, ok := c.entries[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = value
	return nil
}

func fptr(v float64) *float64 { return &v }

func almost(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

// Yaoundé city centre with two facilities, one ~0.5km away and one ~1km.
func yaoundeFixtures() []domain.Facility {
	return []domain.Facility{
		{
			ID: "fac-hospital", Name: "Hôpital Central", Type: domain.FacilityHospitalPublic,
			Status: domain.FacilityActive, City: "Yaoundé",
			Latitude: fptr(3.8525), Longitude: fptr(11.5021),
		},
		{
			ID: "fac-clinic", Name: "Clinique de la Cité", Type: domain.FacilityClinic,
			Status: domain.FacilityActive, City: "Yaoundé",
			Latitude: fptr(3.857), Longitude: fptr(11.5021),
		},
	}
}

func TestFindNearby_InvalidCoordinatesRejectedBeforeIO(t *testing.T) {
	repo := &mockRepo{}
	fc := newFakeCache()
	svc := New(repo, fc, zap.NewNop())

	cases := []Params{
		{Lat: 91, Lng: 0},
		{Lat: -90.5, Lng: 0},
		{Lat: 0, Lng: 181},
		{Lat: 0, Lng: -180.01},
	}
	for _, p := range cases {
		_, err := svc.FindNearby(context.Background(), p)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("params %+v: want validation error, got %v", p, err)
		}
	}
	if repo.calls != 0 {
		t.Errorf("repository must not be touched on invalid input, got %d calls", repo.calls)
	}
	if fc.gets != 0 {
		t.Errorf("cache must not be touched on invalid input, got %d gets", fc.gets)
	}
}

func TestFindNearby_SortsByDistanceAndFiltersRadius(t *testing.T) {
	far := domain.Facility{
		ID: "fac-far", Name: "Hôpital Laquintinie", Type: domain.FacilityHospitalPublic,
		Status: domain.FacilityActive, City: "Douala",
		Latitude: fptr(4.0511), Longitude: fptr(9.7679),
	}
	repo := &mockRepo{facilities: append(yaoundeFixtures(), far)}
	svc := New(repo, newFakeCache(), zap.NewNop())

	got, err := svc.FindNearby(context.Background(), Params{Lat: 3.848, Lng: 11.5021, RadiusKm: 20})
	if err != nil {
		t.Fatalf("FindNearby: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 results inside 20km, got %d", len(got))
	}
	if got[0].ID != "fac-hospital" || got[1].ID != "fac-clinic" {
		t.Errorf("want ascending distance order, got %s then %s", got[0].ID, got[1].ID)
	}
	if !almost(got[0].DistanceKm, 0.5, 0.05) {
		t.Errorf("want hospital distance ~0.5km, got %f", got[0].DistanceKm)
	}
	if got[0].DistanceKm > got[1].DistanceKm {
		t.Errorf("results out of order: %f before %f", got[0].DistanceKm, got[1].DistanceKm)
	}
}

func TestFindNearby_TypeFilterForwardedToRepository(t *testing.T) {
	repo := &mockRepo{facilities: yaoundeFixtures()[:1]}
	svc := New(repo, newFakeCache(), zap.NewNop())

	got, err := svc.FindNearby(context.Background(), Params{
		Lat: 3.848, Lng: 11.5021, RadiusKm: 20,
		Types: []string{"HOSPITAL_PUBLIC", "SPA"},
	})
	if err != nil {
		t.Fatalf("FindNearby: %v", err)
	}
	if len(repo.lastTypes) != 1 || repo.lastTypes[0] != domain.FacilityHospitalPublic {
		t.Errorf("want only the known type forwarded, got %v", repo.lastTypes)
	}
	if len(got) != 1 || got[0].ID != "fac-hospital" {
		t.Errorf("want exactly the hospital, got %v", got)
	}
}

func TestFindNearby_ClampsRadiusAndLimit(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, newFakeCache(), zap.NewNop())

	if _, err := svc.FindNearby(context.Background(), Params{Lat: 0, Lng: 0, RadiusKm: 500}); err != nil {
		t.Fatalf("FindNearby: %v", err)
	}
	// MaxRadiusKm box half-height in degrees
	wantHalf := MaxRadiusKm / 111.32
	if gotHalf := repo.lastBox.MaxLat - 0; !almost(gotHalf, wantHalf, 1e-9) {
		t.Errorf("radius not clamped to %f km: box half-height %f deg", MaxRadiusKm, gotHalf)
	}

	if got := clampRadius(0.2); got != MinRadiusKm {
		t.Errorf("want radius floor %f, got %f", MinRadiusKm, got)
	}
	if got := clampLimit(2); got != MinLimit {
		t.Errorf("want limit floor %d, got %d", MinLimit, got)
	}
	if got := clampLimit(999); got != MaxLimit {
		t.Errorf("want limit ceiling %d, got %d", MaxLimit, got)
	}
	if got := clampLimit(0); got != DefaultLimit {
		t.Errorf("want default limit %d, got %d", DefaultLimit, got)
	}
}

func TestFindNearby_LimitCapsResults(t *testing.T) {
	facilities := make([]domain.Facility, 10)
	for i := range facilities {
		lat := 3.848 + float64(i)*0.001
		facilities[i] = domain.Facility{
			ID: string(rune('a' + i)), Name: "f", Type: domain.FacilityClinic,
			Status: domain.FacilityActive, Latitude: fptr(lat), Longitude: fptr(11.5),
		}
	}
	repo := &mockRepo{facilities: facilities}
	svc := New(repo, newFakeCache(), zap.NewNop())

	got, err := svc.FindNearby(context.Background(), Params{Lat: 3.848, Lng: 11.5, Limit: 5})
	if err != nil {
		t.Fatalf("FindNearby: %v", err)
	}
	if len(got) != 5 {
		t.Errorf("want 5 results, got %d", len(got))
	}
}

func TestFindNearby_CacheHitSkipsRepository(t *testing.T) {
	repo := &mockRepo{facilities: yaoundeFixtures()}
	fc := newFakeCache()
	svc := New(repo, fc, zap.NewNop())

	p := Params{Lat: 3.848, Lng: 11.5021, RadiusKm: 20}
	first, err := svc.FindNearby(context.Background(), p)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if fc.sets != 1 {
		t.Fatalf("want 1 cache write, got %d", fc.sets)
	}

	// The cached entry keeps serving even after the store changes.
	repo.facilities = nil

	second, err := svc.FindNearby(context.Background(), p)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if repo.calls != 1 {
		t.Errorf("want repository hit exactly once, got %d", repo.calls)
	}
	if len(second) != len(first) {
		t.Errorf("cache hit must return the stored payload: %d vs %d results", len(second), len(first))
	}
}

func TestFindNearby_NearbyRequestsShareCacheCell(t *testing.T) {
	repo := &mockRepo{facilities: yaoundeFixtures()}
	svc := New(repo, newFakeCache(), zap.NewNop())

	// Both coordinates round to the same 3-decimal cell.
	if _, err := svc.FindNearby(context.Background(), Params{Lat: 3.8480, Lng: 11.5021}); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := svc.FindNearby(context.Background(), Params{Lat: 3.84804, Lng: 11.50211}); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if repo.calls != 1 {
		t.Errorf("requests in one grid cell must share a cache entry, got %d repo calls", repo.calls)
	}
}

func TestFindNearby_CacheFaultFallsThrough(t *testing.T) {
	repo := &mockRepo{facilities: yaoundeFixtures()}
	fc := newFakeCache()
	fc.getErr = errors.New("connection refused")
	fc.setErr = errors.New("connection refused")
	svc := New(repo, fc, zap.NewNop())

	got, err := svc.FindNearby(context.Background(), Params{Lat: 3.848, Lng: 11.5021})
	if err != nil {
		t.Fatalf("cache fault must not fail the request: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("want 2 results, got %d", len(got))
	}
	if repo.calls != 1 {
		t.Errorf("want repository fallback, got %d calls", repo.calls)
	}
}

func TestFindNearby_RepositoryErrorPropagates(t *testing.T) {
	repo := &mockRepo{err: errors.New("pq: relation does not exist")}
	svc := New(repo, newFakeCache(), zap.NewNop())

	if _, err := svc.FindNearby(context.Background(), Params{Lat: 0, Lng: 0}); err == nil {
		t.Fatal("want error when the store fails")
	}
}

func TestFindNearby_EmptyResultIsNotNil(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, newFakeCache(), zap.NewNop())

	got, err := svc.FindNearby(context.Background(), Params{Lat: 0, Lng: 0})
	if err != nil {
		t.Fatalf("FindNearby: %v", err)
	}
	if got == nil {
		t.Error("want empty slice so the JSON body is [], got nil")
	}
}
