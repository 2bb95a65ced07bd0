package domain

import "sort"

// FacilityType is a closed enumeration of discoverable facility categories.
type FacilityType string

const (
	FacilityHospitalPublic  FacilityType = "HOSPITAL_PUBLIC"
	FacilityHospitalPrivate FacilityType = "HOSPITAL_PRIVATE"
	FacilityClinic          FacilityType = "CLINIC"
	FacilityHealthCenter    FacilityType = "HEALTH_CENTER"
	FacilityPharmacy        FacilityType = "PHARMACY"
	FacilityDispensary      FacilityType = "DISPENSARY"
	FacilityLaboratory      FacilityType = "LABORATORY"
)

// facilityTypes is the allow-list used when mapping raw filter strings.
var facilityTypes = map[string]FacilityType{
	string(FacilityHospitalPublic):  FacilityHospitalPublic,
	string(FacilityHospitalPrivate): FacilityHospitalPrivate,
	string(FacilityClinic):          FacilityClinic,
	string(FacilityHealthCenter):    FacilityHealthCenter,
	string(FacilityPharmacy):        FacilityPharmacy,
	string(FacilityDispensary):      FacilityDispensary,
	string(FacilityLaboratory):      FacilityLaboratory,
}

// ParseFacilityTypes maps raw filter strings through the allow-list.
// Unknown values are dropped, not errored: filters narrow the result set
// and an unrecognized category can never widen it. The result is sorted
// and de-duplicated so equal filter sets produce equal cache keys.
func ParseFacilityTypes(raw []string) []FacilityType {
	if len(raw) == 0 {
		return nil
	}
	seen := make(map[FacilityType]struct{}, len(raw))
	out := make([]FacilityType, 0, len(raw))
	for _, r := range raw {
		ft, ok := facilityTypes[r]
		if !ok {
			continue
		}
		if _, dup := seen[ft]; dup {
			continue
		}
		seen[ft] = struct{}{}
		out = append(out, ft)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	if len(out) == 0 {
		return nil
	}
	return out
}

// FacilityStatus is the lifecycle status of an organization record.
type FacilityStatus string

const (
	FacilityActive   FacilityStatus = "ACTIVE"
	FacilityInactive FacilityStatus = "INACTIVE"
	FacilityPending  FacilityStatus = "PENDING"
)

// Facility is a registered health-service provider. Coordinates are
// nullable: records without a geocoded address exist but are excluded
// from proximity search.
type Facility struct {
	ID        string
	Name      string
	Type      FacilityType
	Status    FacilityStatus
	Phone     string
	Address   string
	City      string
	Region    string
	Latitude  *float64
	Longitude *float64
}

// NearbyFacility is a facility hit from proximity search. Coordinates and
// distance are plain floats because the consumer renders them on a map.
type NearbyFacility struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Phone      string  `json:"phone"`
	Address    string  `json:"address"`
	City       string  `json:"city"`
	Region     string  `json:"region"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	DistanceKm float64 `json:"distance"`
}
