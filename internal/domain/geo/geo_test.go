package geo

import (
	"math"
	"testing"
)

func almost(a, b, eps float64) bool {
	if a > b {
		return a-b < eps
	}
	return b-a < eps
}

func TestHaversine_SamePoint(t *testing.T) {
	d := Haversine(3.848, 11.5021, 3.848, 11.5021)
	if d != 0 {
		t.Fatalf("want 0, got %f", d)
	}
}

func TestHaversine_YaoundeDouala(t *testing.T) {
	// Yaoundé to Douala: ~211 km
	d := Haversine(3.848, 11.5021, 4.0511, 9.7679)
	if !almost(d, 211, 5) {
		t.Fatalf("want ~211km, got %.1fkm", d)
	}
}

func TestHaversine_Antipodal(t *testing.T) {
	// Half circumference
	d := Haversine(0, 0, 0, 180)
	expected := math.Pi * EarthRadiusKm
	if !almost(d, expected, 0.001) {
		t.Fatalf("want ~%.0fkm, got %.0fkm", expected, d)
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	d1 := Haversine(3.848, 11.5021, 4.0511, 9.7679)
	d2 := Haversine(4.0511, 9.7679, 3.848, 11.5021)
	if !almost(d1, d2, 1e-9) {
		t.Fatalf("distance not symmetric: %f vs %f", d1, d2)
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		lat, lon float64
		valid    bool
	}{
		{0, 0, true},
		{90, 180, true},
		{-90, -180, true},
		{3.848, 11.5021, true},
		{91, 0, false},
		{-91, 0, false},
		{0, 181, false},
		{0, -181, false},
	}
	for _, tt := range tests {
		if got := ValidateCoordinates(tt.lat, tt.lon); got != tt.valid {
			t.Errorf("ValidateCoordinates(%f, %f) = %v, want %v", tt.lat, tt.lon, got, tt.valid)
		}
	}
}

func TestCellKey_Rounds(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{3.848, "3.848"},
		{3.8481, "3.848"},
		{3.84849, "3.848"},
		{3.8485, "3.849"},
		{-11.50214, "-11.502"},
		{0, "0.000"},
	}
	for _, tt := range tests {
		if got := CellKey(tt.in); got != tt.want {
			t.Errorf("CellKey(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCellKey_SameCellSharesKey(t *testing.T) {
	if CellKey(3.8479) != CellKey(3.84795) {
		t.Error("coordinates rounding to the same grid cell must share a key")
	}
}

func TestBoxAround_ContainsRadius(t *testing.T) {
	lat, lng, radius := 3.848, 11.5021, 20.0
	box := BoxAround(lat, lng, radius)

	// All four box edges must be at least radius away from the center.
	if d := Haversine(lat, lng, box.MaxLat, lng); d < radius {
		t.Errorf("north edge %.1fkm < radius", d)
	}
	if d := Haversine(lat, lng, box.MinLat, lng); d < radius {
		t.Errorf("south edge %.1fkm < radius", d)
	}
	if d := Haversine(lat, lng, lat, box.MaxLng); d < radius {
		t.Errorf("east edge %.1fkm < radius", d)
	}
	if d := Haversine(lat, lng, lat, box.MinLng); d < radius {
		t.Errorf("west edge %.1fkm < radius", d)
	}
}

func TestBoxAround_ClampsAtPole(t *testing.T) {
	box := BoxAround(89.9, 0, 100)
	if box.MaxLat > 90 {
		t.Errorf("MaxLat %.3f exceeds 90", box.MaxLat)
	}
	if box.MinLng < -180 || box.MaxLng > 180 {
		t.Errorf("longitude not clamped: [%f, %f]", box.MinLng, box.MaxLng)
	}
}
