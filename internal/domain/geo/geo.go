package geo

import (
	"math"
	"strconv"
)

// EarthRadiusKm is the mean radius of Earth used for Haversine distance.
const EarthRadiusKm = 6371.0

// kmPerDegreeLat is the approximate north-south span of one degree of
// latitude, used for bounding-box prefilters.
const kmPerDegreeLat = 111.32

// Haversine returns the great-circle distance in kilometers between two
// points specified by latitude and longitude in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// CellKey rounds a coordinate to 3 decimal places (~110m grid) so nearby
// requests landing in the same grid cell share a cache entry.
func CellKey(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', 3, 64)
}

// BoundingBox is a latitude/longitude rectangle.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// BoxAround returns a bounding box that fully contains the circle of
// radiusKm around (lat, lng). The box over-selects near the poles and the
// antimeridian; callers must still filter by exact distance.
func BoxAround(lat, lng, radiusKm float64) BoundingBox {
	dLat := radiusKm / kmPerDegreeLat

	// Longitude degrees shrink with latitude. The cosine is floored so the
	// box stays finite at high latitudes.
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	dLng := radiusKm / (kmPerDegreeLat * cosLat)

	return BoundingBox{
		MinLat: math.Max(lat-dLat, -90),
		MaxLat: math.Min(lat+dLat, 90),
		MinLng: math.Max(lng-dLng, -180),
		MaxLng: math.Min(lng+dLng, 180),
	}
}
