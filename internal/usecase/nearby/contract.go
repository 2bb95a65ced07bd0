package nearby

import (
	"context"

	"github.com/okani-health/okani/internal/domain"
	"github.com/okani-health/okani/internal/domain/geo"
)

// Repository defines the storage contract for proximity candidate reads.
type Repository interface {
	FindActiveInBox(
		ctx context.Context, box geo.BoundingBox, types []domain.FacilityType,
	) ([]domain.Facility, error)
}
