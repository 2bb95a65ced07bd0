package domain

import (
	"reflect"
	"testing"
)

func TestParseFacilityTypes_DropsUnknown(t *testing.T) {
	got := ParseFacilityTypes([]string{"HOSPITAL_PUBLIC", "SPA", "CLINIC", "hospital_public"})
	want := []FacilityType{FacilityClinic, FacilityHospitalPublic}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseFacilityTypes_Dedup(t *testing.T) {
	got := ParseFacilityTypes([]string{"CLINIC", "CLINIC"})
	if len(got) != 1 {
		t.Fatalf("want 1 type, got %v", got)
	}
}

func TestParseFacilityTypes_SortedForStableCacheKeys(t *testing.T) {
	a := ParseFacilityTypes([]string{"PHARMACY", "CLINIC"})
	b := ParseFacilityTypes([]string{"CLINIC", "PHARMACY"})
	if !reflect.DeepEqual(a, b) {
		t.Errorf("order of raw filters must not matter: %v vs %v", a, b)
	}
}

func TestParseFacilityTypes_AllUnknownIsNil(t *testing.T) {
	if got := ParseFacilityTypes([]string{"SPA", "GYM"}); got != nil {
		t.Errorf("want nil, got %v", got)
	}
	if got := ParseFacilityTypes(nil); got != nil {
		t.Errorf("want nil for empty input, got %v", got)
	}
}

func TestWeightForSource(t *testing.T) {
	tests := []struct {
		src  SourceType
		want int
	}{
		{SourceFacility, 1},
		{SourceAnnouncement, 2},
		{SourceArticle, 3},
	}
	for _, tt := range tests {
		if got := WeightForSource(tt.src); got != tt.want {
			t.Errorf("WeightForSource(%s) = %d, want %d", tt.src, got, tt.want)
		}
	}
}
