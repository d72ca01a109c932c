package domain

import "time"

// BundleItem is one selected material with its display score.
type BundleItem struct {
	// Material is the selected course material.
	Material CourseMaterial

	// RelevanceScore is the fused score normalized to 0-100 for display.
	// The mapping is monotonic: item order and score order always agree.
	RelevanceScore int
}

// RetrievalBundle is the ordered, token-budgeted result of one query.
// Bundles are ephemeral: produced per query, never persisted.
type RetrievalBundle struct {
	// ID uniquely identifies the bundle.
	ID string

	// CourseID is the scoped course, or empty for a multi-course bundle.
	CourseID string

	// Items are the selected materials in rank order. Item materialIDs
	// are unique within a bundle.
	Items []BundleItem

	// Degraded is true when a ranking signal (typically semantic) was
	// unavailable and the bundle was assembled from the remaining signal.
	Degraded bool

	// GeneratedAt is when the bundle was assembled.
	GeneratedAt time.Time
}

// Citation is the bundle item shape delivered to the answer-rendering
// layer. Inline markers ([1], [2], ...) resolve against the ordered
// citation list by position.
type Citation struct {
	ID             string     `json:"id"`
	SourceType     SourceType `json:"sourceType"`
	SourceTitle    string     `json:"sourceTitle"`
	Excerpt        string     `json:"excerpt"`
	RelevanceScore int        `json:"relevanceScore"`
	URL            string     `json:"url,omitempty"`
	Reference      string     `json:"reference,omitempty"`
}

// Citations derives the ordered citation list from the bundle.
// An empty bundle yields an empty (non-nil) slice so downstream
// renderers never special-case zero citations.
func (b *RetrievalBundle) Citations() []Citation {
	citations := make([]Citation, 0, len(b.Items))
	for i := range b.Items {
		item := &b.Items[i]
		citations = append(citations, Citation{
			ID:             item.Material.ID,
			SourceType:     item.Material.SourceType,
			SourceTitle:    item.Material.Title,
			Excerpt:        item.Material.Excerpt,
			RelevanceScore: item.RelevanceScore,
			URL:            item.Material.URL,
			Reference:      item.Material.Reference,
		})
	}
	return citations
}

// Empty returns true if the bundle contains no items.
func (b *RetrievalBundle) Empty() bool {
	return len(b.Items) == 0
}
