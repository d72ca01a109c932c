package cli

import (
	"context"
	"time"

	"github.com/doccloud/retrieval/internal/core/domain"
	"github.com/doccloud/retrieval/internal/core/ports/driving"
)

// mockContextService implements driving.ContextService for command tests.
type mockContextService struct {
	buildContextFn func(ctx context.Context, courseID, query string, opts domain.ContextOptions) (*domain.RetrievalBundle, error)
	coursesFn      func(ctx context.Context) ([]driving.CourseInfo, error)
}

var _ driving.ContextService = (*mockContextService)(nil)

func (m *mockContextService) BuildContext(ctx context.Context, courseID, query string, opts domain.ContextOptions) (*domain.RetrievalBundle, error) {
	if m.buildContextFn != nil {
		return m.buildContextFn(ctx, courseID, query, opts)
	}
	return &domain.RetrievalBundle{
		ID:       "bundle-1",
		CourseID: courseID,
		Items: []domain.BundleItem{
			{
				Material: domain.CourseMaterial{
					ID:         "m1",
					CourseID:   "bio-110",
					SourceType: domain.SourceTypeLecture,
					Title:      "Enzyme Kinetics",
					Excerpt:    "Enzymes lower activation energy.",
					Reference:  "Lecture 4",
				},
				RelevanceScore: 100,
			},
		},
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (m *mockContextService) Courses(ctx context.Context) ([]driving.CourseInfo, error) {
	if m.coursesFn != nil {
		return m.coursesFn(ctx)
	}
	return []driving.CourseInfo{
		{CourseID: "bio-110", Materials: 12, Indexed: true},
		{CourseID: "chem-200", Materials: 7, Indexed: false},
	}, nil
}

// setupTestServices injects a default mock service and returns a cleanup
// function restoring the previous wiring.
func setupTestServices() func() {
	previous := contextService
	contextService = &mockContextService{}
	return func() {
		contextService = previous
	}
}
