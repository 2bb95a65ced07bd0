package domain

// SourceType identifies which content source produced a search hit.
type SourceType string

const (
	SourceFacility     SourceType = "organization"
	SourceAnnouncement SourceType = "announcement"
	SourceArticle      SourceType = "article"
)

// WeightForSource returns the static relevance weight attached to each
// result for downstream rendering. Informational only: ordering is fixed
// by source priority, never re-sorted by weight.
func WeightForSource(t SourceType) int {
	switch t {
	case SourceFacility:
		return 1
	case SourceAnnouncement:
		return 2
	default:
		return 3
	}
}

// SearchItem is a single hit from the ranked multi-source search.
type SearchItem struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Excerpt *string    `json:"excerpt,omitempty"`
	Slug    string     `json:"slug,omitempty"`
	Type    SourceType `json:"type"`
	Weight  int        `json:"weight"`
}

// SearchResult is the merged outcome of a search request. Suggestions are
// non-empty exactly when Results is empty.
type SearchResult struct {
	Results     []SearchItem `json:"results"`
	Suggestions []string     `json:"suggestions"`
}
