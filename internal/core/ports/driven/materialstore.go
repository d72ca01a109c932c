package driven

import (
	"context"

	"github.com/doccloud/retrieval/internal/core/domain"
)

// MaterialStore supplies the raw corpus of indexable excerpts per course.
// The retrieval engine only ever reads from the store; indexing state is
// kept engine-side in versioned snapshots.
type MaterialStore interface {
	// ListMaterials returns all materials for a course.
	// Returns domain.ErrCourseNotFound if the course is unknown.
	ListMaterials(ctx context.Context, courseID string) ([]domain.CourseMaterial, error)

	// ListCourses returns the IDs of all courses with materials.
	ListCourses(ctx context.Context) ([]string, error)

	// Watch registers a callback invoked when a course's materials change.
	// The engine uses this to invalidate that course's index snapshot;
	// the next query rebuilds it. Callbacks must be non-blocking.
	Watch(fn func(courseID string))
}
