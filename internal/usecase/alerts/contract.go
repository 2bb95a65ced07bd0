package alerts

import (
	"context"

	"github.com/okani-health/okani/internal/domain"
)

// Repository defines the storage contract for alert-eligible reads.
type Repository interface {
	FindAlertEligible(ctx context.Context, limit int) ([]domain.Announcement, error)
}
