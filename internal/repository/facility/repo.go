package facility

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/okani-health/okani/internal/domain"
	"github.com/okani-health/okani/internal/domain/geo"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// store is the consumer interface for facility reads (ISP).
type store interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Repo reads organization records for proximity search.
type Repo struct {
	db store
}

// New creates a facility repository.
func New(db store) *Repo {
	return &Repo{db: db}
}

// FindActiveInBox returns ACTIVE facilities with non-null coordinates
// inside the bounding box, optionally narrowed to the given types. The box
// is a cheap prefilter; exact radius filtering is the caller's job.
func (r *Repo) FindActiveInBox(
	ctx context.Context, box geo.BoundingBox, types []domain.FacilityType,
) ([]domain.Facility, error) {
	b := psql.Select(
		"id", "name", "type", "status", "phone", "address", "city", "region",
		"latitude", "longitude",
	).
		From("organizations").
		Where(sq.Eq{"status": string(domain.FacilityActive)}).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Where(sq.GtOrEq{"latitude": box.MinLat}).
		Where(sq.LtOrEq{"latitude": box.MaxLat}).
		Where(sq.GtOrEq{"longitude": box.MinLng}).
		Where(sq.LtOrEq{"longitude": box.MaxLng})

	if len(types) > 0 {
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = string(t)
		}
		b = b.Where(sq.Eq{"type": names})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build facility query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query facilities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Facility
	for rows.Next() {
		var (
			f                            domain.Facility
			phone, address, city, region sql.NullString
			lat, lng                     sql.NullFloat64
		)
		if err := rows.Scan(
			&f.ID, &f.Name, &f.Type, &f.Status,
			&phone, &address, &city, &region, &lat, &lng,
		); err != nil {
			return nil, fmt.Errorf("scan facility: %w", err)
		}
		f.Phone = phone.String
		f.Address = address.String
		f.City = city.String
		f.Region = region.String
		if lat.Valid {
			v := lat.Float64
			f.Latitude = &v
		}
		if lng.Valid {
			v := lng.Float64
			f.Longitude = &v
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return out, nil
}
