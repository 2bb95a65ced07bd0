package announcement

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/okani-health/okani/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// store is the consumer interface for announcement reads (ISP).
type store interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Repo reads announcement records for the alert digest.
type Repo struct {
	db store
}

// New creates an announcement repository.
func New(db store) *Repo {
	return &Repo{db: db}
}

// FindAlertEligible returns PUBLISHED announcements with urgency HIGH or
// URGENT whose audience contains the universal tag, newest first, joined
// with the linked location city and owning organization name.
func (r *Repo) FindAlertEligible(ctx context.Context, limit int) ([]domain.Announcement, error) {
	b := psql.Select(
		"a.id", "a.title", "a.summary", "a.body", "a.urgency", "a.slug",
		"a.created_at", "l.city", "o.name",
	).
		From("announcements a").
		LeftJoin("locations l ON l.id = a.location_id").
		LeftJoin("organizations o ON o.id = a.organization_id").
		Where(sq.Eq{"a.status": string(domain.StatusPublished)}).
		Where("a.urgency = ANY(?)", pq.Array([]string{
			string(domain.UrgencyHigh), string(domain.UrgencyUrgent),
		})).
		Where("? = ANY(a.audience)", domain.AudienceAll).
		OrderBy("a.created_at DESC").
		Limit(uint64(limit))

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build announcement query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query announcements: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Announcement
	for rows.Next() {
		var (
			a                            domain.Announcement
			summary, slug, city, orgName sql.NullString
		)
		if err := rows.Scan(
			&a.ID, &a.Title, &summary, &a.Body, &a.Urgency, &slug,
			&a.CreatedAt, &city, &orgName,
		); err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		a.Status = domain.StatusPublished
		if summary.Valid {
			a.Summary = &summary.String
		}
		if slug.Valid {
			a.Slug = &slug.String
		}
		if city.Valid {
			a.LocationCity = &city.String
		}
		if orgName.Valid {
			a.OrgName = &orgName.String
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return out, nil
}
