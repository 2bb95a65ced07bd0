// Package search runs the store's relevance ranking for each content
// source. The tsvector column is maintained by the write side from the
// same accent-folded text the query normalizer produces; this package
// treats "rank rows against a normalized query" as an opaque capability
// of the store.
package search

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/okani-health/okani/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// store is the consumer interface for ranked reads (ISP).
type store interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Repo ranks rows of each searchable source by relevance.
type Repo struct {
	db store
}

// New creates a search repository.
func New(db store) *Repo {
	return &Repo{db: db}
}

// RankFacilities ranks ACTIVE organizations against the normalized query.
func (r *Repo) RankFacilities(ctx context.Context, query string, limit int) ([]domain.SearchItem, error) {
	b := psql.Select("id", "name AS title", "city AS excerpt", "'' AS slug").
		From("organizations").
		Where(sq.Eq{"status": string(domain.FacilityActive)})
	return r.rank(ctx, b, query, limit)
}

// RankAnnouncements ranks PUBLISHED announcements against the normalized query.
func (r *Repo) RankAnnouncements(ctx context.Context, query string, limit int) ([]domain.SearchItem, error) {
	b := psql.Select("id", "title", "summary AS excerpt", "slug").
		From("announcements").
		Where(sq.Eq{"status": string(domain.StatusPublished)})
	return r.rank(ctx, b, query, limit)
}

// RankArticles ranks PUBLISHED articles against the normalized query.
func (r *Repo) RankArticles(ctx context.Context, query string, limit int) ([]domain.SearchItem, error) {
	b := psql.Select("id", "title", "excerpt", "slug").
		From("articles").
		Where(sq.Eq{"status": string(domain.StatusPublished)})
	return r.rank(ctx, b, query, limit)
}

// rank appends the relevance predicate and ordering shared by all sources
// and executes the query.
func (r *Repo) rank(
	ctx context.Context, b sq.SelectBuilder, query string, limit int,
) ([]domain.SearchItem, error) {
	b = b.
		Where("search_vector @@ plainto_tsquery('simple', ?)", query).
		OrderByClause("ts_rank(search_vector, plainto_tsquery('simple', ?)) DESC", query).
		Limit(uint64(limit))

	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build rank query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query ranked rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.SearchItem
	for rows.Next() {
		var (
			item          domain.SearchItem
			excerpt, slug sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.Title, &excerpt, &slug); err != nil {
			return nil, fmt.Errorf("scan ranked row: %w", err)
		}
		if excerpt.Valid && excerpt.String != "" {
			item.Excerpt = &excerpt.String
		}
		item.Slug = slug.String
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return out, nil
}
