package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doccloud/retrieval/internal/core/domain"
)

func newTestStore(t *testing.T) *MaterialStore {
	t.Helper()
	store, err := NewMaterialStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestMaterialStore_SaveAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	m := &domain.CourseMaterial{
		ID:         "m1",
		CourseID:   "bio-110",
		SourceType: domain.SourceTypeLecture,
		Title:      "Enzyme Kinetics",
		Excerpt:    "Enzymes lower activation energy.",
		Keywords:   []string{"enzyme", "kinetics"},
		Embedding:  []float32{0.1, -0.5, 0.25},
		URL:        "https://example.edu/bio-110/lec4",
		Reference:  "Lecture 4",
	}
	require.NoError(t, store.SaveMaterial(ctx, m))

	got, err := store.ListMaterials(ctx, "bio-110")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, *m, got[0], "round-trip preserves all fields including the embedding")
}

func TestMaterialStore_SaveUpserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	m := &domain.CourseMaterial{
		ID: "m1", CourseID: "bio-110", SourceType: domain.SourceTypeLecture,
		Title: "Cells", Excerpt: "First pass.",
	}
	require.NoError(t, store.SaveMaterial(ctx, m))

	m.Excerpt = "Second pass."
	require.NoError(t, store.SaveMaterial(ctx, m))

	got, err := store.ListMaterials(ctx, "bio-110")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Second pass.", got[0].Excerpt)
}

func TestMaterialStore_ListMaterials_UnknownCourse(t *testing.T) {
	store := newTestStore(t)

	_, err := store.ListMaterials(context.Background(), "ghost-101")
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)
}

func TestMaterialStore_DeleteMaterial(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	m := &domain.CourseMaterial{
		ID: "m1", CourseID: "bio-110", SourceType: domain.SourceTypeLecture,
		Title: "Cells", Excerpt: "Cell structure.",
	}
	require.NoError(t, store.SaveMaterial(ctx, m))
	require.NoError(t, store.DeleteMaterial(ctx, "bio-110", "m1"))

	_, err := store.ListMaterials(ctx, "bio-110")
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)

	assert.ErrorIs(t, store.DeleteMaterial(ctx, "bio-110", "m1"), domain.ErrNotFound)
}

func TestMaterialStore_ListCourses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, courseID := range []string{"chem-200", "bio-110"} {
		m := &domain.CourseMaterial{
			ID: "m1", CourseID: courseID, SourceType: domain.SourceTypeLecture,
			Title: "Intro", Excerpt: "Welcome.",
		}
		require.NoError(t, store.SaveMaterial(ctx, m))
	}

	courses, err := store.ListCourses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"bio-110", "chem-200"}, courses)
}

func TestMaterialStore_WatchNotifiesOnMutation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var notified []string
	store.Watch(func(courseID string) { notified = append(notified, courseID) })

	m := &domain.CourseMaterial{
		ID: "m1", CourseID: "bio-110", SourceType: domain.SourceTypeLecture,
		Title: "Cells", Excerpt: "Cell structure.",
	}
	require.NoError(t, store.SaveMaterial(ctx, m))
	require.NoError(t, store.DeleteMaterial(ctx, "bio-110", "m1"))

	assert.Equal(t, []string{"bio-110", "bio-110"}, notified)
}

func TestMaterialStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewMaterialStore(dir)
	require.NoError(t, err)
	m := &domain.CourseMaterial{
		ID: "m1", CourseID: "bio-110", SourceType: domain.SourceTypeLecture,
		Title: "Cells", Excerpt: "Cell structure.",
	}
	require.NoError(t, store.SaveMaterial(ctx, m))
	require.NoError(t, store.Close())

	reopened, err := NewMaterialStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.ListMaterials(ctx, "bio-110")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
