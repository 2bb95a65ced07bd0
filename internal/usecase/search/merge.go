package search

import "github.com/okani-health/okani/internal/domain"

// merge concatenates the source result sets in fixed priority order
// (facilities, then announcements, then articles) and truncates to limit.
// Every facility match outranks every announcement match, which outranks
// every article match, regardless of per-source relevance scores. Each
// item is tagged with its source type and static weight for rendering.
func merge(facilities, announcements, articles []domain.SearchItem, limit int) []domain.SearchItem {
	out := make([]domain.SearchItem, 0, len(facilities)+len(announcements)+len(articles))
	out = appendTagged(out, facilities, domain.SourceFacility)
	out = appendTagged(out, announcements, domain.SourceAnnouncement)
	out = appendTagged(out, articles, domain.SourceArticle)

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func appendTagged(dst, src []domain.SearchItem, t domain.SourceType) []domain.SearchItem {
	for _, item := range src {
		item.Type = t
		item.Weight = domain.WeightForSource(t)
		dst = append(dst, item)
	}
	return dst
}
