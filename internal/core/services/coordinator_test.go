package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doccloud/retrieval/internal/core/domain"
)

func twoCourseCorpus() map[string][]domain.CourseMaterial {
	bio := []domain.CourseMaterial{
		{
			ID: "bio-1", CourseID: "bio110", SourceType: domain.SourceTypeLecture,
			Title:    "Enzyme Kinetics I",
			Excerpt:  "Enzyme kinetics describes reaction rates as substrate concentration varies.",
			Keywords: []string{"enzyme", "kinetics"},
		},
		{
			ID: "bio-2", CourseID: "bio110", SourceType: domain.SourceTypeTextbook,
			Title:    "Michaelis-Menten",
			Excerpt:  "The Michaelis-Menten model relates enzyme velocity to substrate binding.",
			Keywords: []string{"enzyme", "michaelis"},
		},
		{
			ID: "bio-3", CourseID: "bio110", SourceType: domain.SourceTypeSlides,
			Title:    "Inhibitors",
			Excerpt:  "Competitive inhibitors slow enzyme kinetics by blocking the active site.",
			Keywords: []string{"enzyme", "inhibitor"},
		},
	}
	chem := []domain.CourseMaterial{
		{
			ID: "chem-1", CourseID: "chem200", SourceType: domain.SourceTypeLecture,
			Title:    "Reaction Rates",
			Excerpt:  "Rate laws and enzyme catalysis both follow kinetics principles.",
			Keywords: []string{"kinetics", "rate"},
		},
		{
			ID: "chem-2", CourseID: "chem200", SourceType: domain.SourceTypeReading,
			Title:    "Catalysis",
			Excerpt:  "A catalyst, including an enzyme, lowers activation energy and speeds kinetics.",
			Keywords: []string{"enzyme", "catalysis"},
		},
		{
			ID: "chem-3", CourseID: "chem200", SourceType: domain.SourceTypeLab,
			Title:    "Kinetics Lab",
			Excerpt:  "Measure kinetics of the enzyme reaction at five substrate levels.",
			Keywords: []string{"kinetics", "lab"},
		},
	}
	return map[string][]domain.CourseMaterial{"bio110": bio, "chem200": chem}
}

func multiCourseService(t *testing.T) (*ContextService, *mockMaterialStore) {
	t.Helper()
	store := newMockMaterialStore()
	for courseID, materials := range twoCourseCorpus() {
		store.setMaterials(courseID, materials)
	}
	return newTestService(t, store, nil), store
}

// TestBuildContext_MultiCourseCap is the per-course cap property: two
// matching courses with three relevant materials each, quota of two,
// never more than the quota per course in the merged bundle.
func TestBuildContext_MultiCourseCap(t *testing.T) {
	svc, _ := multiCourseService(t)

	bundle, err := svc.BuildContext(context.Background(), "", "enzyme kinetics", domain.ContextOptions{TopK: 5})
	require.NoError(t, err)

	assert.Empty(t, bundle.CourseID, "multi-course bundles carry no single course")
	require.NotEmpty(t, bundle.Items)

	perCourse := make(map[string]int)
	for _, item := range bundle.Items {
		perCourse[item.Material.CourseID]++
	}

	assert.Equal(t, 2, perCourse["bio110"], "per-course quota respected")
	assert.Equal(t, 2, perCourse["chem200"], "per-course quota respected")
	for courseID, n := range perCourse {
		assert.LessOrEqual(t, n, 2, "course %q exceeded the quota", courseID)
	}
}

func TestBuildContext_MultiCourse_MergeOrdering(t *testing.T) {
	svc, _ := multiCourseService(t)

	bundle, err := svc.BuildContext(context.Background(), "", "enzyme kinetics", domain.ContextOptions{TopK: 5})
	require.NoError(t, err)
	require.NotEmpty(t, bundle.Items)

	for i := 1; i < len(bundle.Items); i++ {
		assert.GreaterOrEqual(t, bundle.Items[i-1].RelevanceScore, bundle.Items[i].RelevanceScore,
			"merged pool must stay sorted by relevance")
	}
}

func TestBuildContext_MultiCourse_NoMatches(t *testing.T) {
	svc, _ := multiCourseService(t)

	bundle, err := svc.BuildContext(context.Background(), "", "medieval poetry", domain.ContextOptions{})
	require.NoError(t, err)
	assert.Empty(t, bundle.Items)
	assert.False(t, bundle.Degraded)
}

func TestBuildContext_MultiCourse_CourseLimit(t *testing.T) {
	store := newMockMaterialStore()
	// Five courses all matching "kinetics"; only CourseLimit may contribute.
	for _, id := range []string{"c1", "c2", "c3", "c4", "c5"} {
		store.setMaterials(id, []domain.CourseMaterial{
			{
				ID: id + "-m", CourseID: id,
				Title:    "Kinetics Notes",
				Excerpt:  "Kinetics content for " + id,
				Keywords: []string{"kinetics"},
			},
		})
	}
	svc := newTestService(t, store, nil)

	bundle, err := svc.BuildContext(context.Background(), "", "kinetics", domain.ContextOptions{TopK: 10})
	require.NoError(t, err)

	courses := make(map[string]bool)
	for _, item := range bundle.Items {
		courses[item.Material.CourseID] = true
	}
	assert.LessOrEqual(t, len(courses), DefaultCourseLimit)
}

func TestBuildContext_MultiCourse_Deterministic(t *testing.T) {
	svc, _ := multiCourseService(t)

	first, err := svc.BuildContext(context.Background(), "", "enzyme kinetics", domain.ContextOptions{TopK: 5})
	require.NoError(t, err)
	second, err := svc.BuildContext(context.Background(), "", "enzyme kinetics", domain.ContextOptions{TopK: 5})
	require.NoError(t, err)

	require.Equal(t, len(first.Items), len(second.Items))
	for i := range first.Items {
		assert.Equal(t, first.Items[i].Material.ID, second.Items[i].Material.ID)
	}
}

func TestBuildContext_MultiCourse_GlobalTopK(t *testing.T) {
	svc, _ := multiCourseService(t)

	bundle, err := svc.BuildContext(context.Background(), "", "enzyme kinetics", domain.ContextOptions{TopK: 3})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(bundle.Items), 3)
}
