package domain

import "strings"

// SourceType classifies where a course material excerpt came from.
type SourceType string

const (
	// SourceTypeLecture is an excerpt from lecture notes or a transcript.
	SourceTypeLecture SourceType = "lecture"
	// SourceTypeTextbook is an excerpt from an assigned textbook.
	SourceTypeTextbook SourceType = "textbook"
	// SourceTypeSlides is an excerpt from slide decks.
	SourceTypeSlides SourceType = "slides"
	// SourceTypeReading is an excerpt from supplementary readings.
	SourceTypeReading SourceType = "reading"
	// SourceTypeVideo is an excerpt from a video transcript.
	SourceTypeVideo SourceType = "video"
	// SourceTypeLab is an excerpt from lab instructions or handouts.
	SourceTypeLab SourceType = "lab"
	// SourceTypeOther is any material that fits no other category.
	SourceTypeOther SourceType = "other"
)

// Valid returns true if the source type is one of the known values.
func (t SourceType) Valid() bool {
	switch t {
	case SourceTypeLecture, SourceTypeTextbook, SourceTypeSlides,
		SourceTypeReading, SourceTypeVideo, SourceTypeLab, SourceTypeOther:
		return true
	}
	return false
}

// CourseMaterial represents an indexable excerpt of course content.
// Materials are immutable once indexed within a snapshot; a content change
// produces a new snapshot via re-indexing, never an in-place mutation.
type CourseMaterial struct {
	// ID is the unique identifier for the material.
	ID string

	// CourseID links the material to its course.
	CourseID string

	// SourceType classifies the material (lecture, textbook, slides, ...).
	SourceType SourceType

	// Title is the human-readable title of the source document.
	Title string

	// Excerpt is the citable text content. Excerpts are included in a
	// bundle whole or not at all, never truncated.
	Excerpt string

	// Keywords are curated index terms for the material. They also feed
	// course detection for course-agnostic queries.
	Keywords []string

	// Embedding is the vector representation for semantic scoring.
	// Nil when the material has not been embedded; absence excludes the
	// material from the semantic ranking, it is never scored as zero.
	Embedding []float32

	// URL is an optional web location for the source.
	URL string

	// Reference is an optional human-readable citation reference
	// (e.g., "Chapter 4, pp. 112-118").
	Reference string
}

// HasEmbedding returns true if the material carries an embedding vector.
func (m *CourseMaterial) HasEmbedding() bool {
	return len(m.Embedding) > 0
}

// Validate checks that the material is well-formed enough to index.
// Malformed materials are skipped during indexing, not fatal.
func (m *CourseMaterial) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return ErrInvalidMaterial
	}
	if strings.TrimSpace(m.CourseID) == "" {
		return ErrInvalidMaterial
	}
	if strings.TrimSpace(m.Excerpt) == "" {
		return ErrInvalidMaterial
	}
	return nil
}
