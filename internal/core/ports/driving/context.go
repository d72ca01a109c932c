package driving

import (
	"context"

	"github.com/doccloud/retrieval/internal/core/domain"
)

// ContextService assembles citation-ready retrieval bundles for the
// answer-generation layer. This is the engine's sole public entry point.
type ContextService interface {
	// BuildContext retrieves, ranks, and assembles course materials for a
	// query. An empty courseID triggers course detection and multi-course
	// fan-out. Signal failures degrade the bundle, they never error.
	BuildContext(ctx context.Context, courseID, query string, opts domain.ContextOptions) (*domain.RetrievalBundle, error)

	// Courses lists the courses currently available for retrieval.
	Courses(ctx context.Context) ([]CourseInfo, error)
}

// CourseInfo summarises one course's corpus.
type CourseInfo struct {
	// CourseID identifies the course.
	CourseID string

	// Materials is the number of indexable materials in the corpus.
	Materials int

	// Indexed is true if a snapshot is currently built for the course.
	Indexed bool
}
