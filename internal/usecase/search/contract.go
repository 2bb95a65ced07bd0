package search

import (
	"context"

	"github.com/okani-health/okani/internal/domain"
)

// Repository defines the ranked reads for each content source. Every
// method orders by the store's relevance score descending and returns at
// most limit rows.
type Repository interface {
	RankFacilities(ctx context.Context, query string, limit int) ([]domain.SearchItem, error)
	RankAnnouncements(ctx context.Context, query string, limit int) ([]domain.SearchItem, error)
	RankArticles(ctx context.Context, query string, limit int) ([]domain.SearchItem, error)
}
