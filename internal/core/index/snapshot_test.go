package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doccloud/retrieval/internal/core/domain"
)

func TestBuildSnapshot_SkipsMalformed(t *testing.T) {
	materials := []domain.CourseMaterial{
		{ID: "mat-1", CourseID: "cs101", Title: "Heaps", Excerpt: "A heap is a complete binary tree."},
		{ID: "", CourseID: "cs101", Excerpt: "orphaned excerpt"},     // missing id
		{ID: "mat-3", CourseID: "cs101", Excerpt: "   "},             // blank excerpt
		{ID: "mat-4", CourseID: "cs101", Excerpt: "Heapify is O(n)"}, // fine
	}

	snap := BuildSnapshot("cs101", 1, materials, NewTokenizer(), DefaultBM25Params())

	assert.Equal(t, 2, snap.Size())
	assert.NotNil(t, snap.Material("mat-1"))
	assert.Nil(t, snap.Material("mat-3"))
	assert.Equal(t, uint64(1), snap.Version())
	assert.Equal(t, "cs101", snap.CourseID())
}

func TestSnapshot_ScoreLexical(t *testing.T) {
	materials := []domain.CourseMaterial{
		{ID: "mat-1", CourseID: "cs101", Title: "Heaps", Excerpt: "A heap is a complete binary tree."},
		{ID: "mat-2", CourseID: "cs101", Title: "Hashing", Excerpt: "Hash tables give constant expected lookups."},
	}

	snap := BuildSnapshot("cs101", 1, materials, NewTokenizer(), DefaultBM25Params())
	candidates := snap.ScoreLexical(snap.TokenizeQuery("how does a heap work?"))

	require.Len(t, candidates, 1)
	assert.Equal(t, "mat-1", candidates[0].MaterialID)
}

func TestSnapshot_KeywordMatch(t *testing.T) {
	materials := []domain.CourseMaterial{
		{
			ID:       "mat-1",
			CourseID: "bio110",
			Title:    "Photosynthesis Overview",
			Excerpt:  "Light reactions capture energy in the thylakoid membrane.",
			Keywords: []string{"photosynthesis", "chloroplast"},
		},
	}

	snap := BuildSnapshot("bio110", 1, materials, NewTokenizer(), DefaultBM25Params())

	full := snap.KeywordMatch(snap.TokenizeQuery("photosynthesis chloroplast"))
	partial := snap.KeywordMatch(snap.TokenizeQuery("photosynthesis homework"))
	none := snap.KeywordMatch(snap.TokenizeQuery("linear algebra"))

	assert.InDelta(t, 1.0, full, 1e-9)
	assert.InDelta(t, 0.5, partial, 1e-9)
	assert.InDelta(t, 0.0, none, 1e-9)
	assert.InDelta(t, 0.0, snap.KeywordMatch(nil), 1e-9)
}

func TestSnapshot_ScoreSemantic(t *testing.T) {
	materials := []domain.CourseMaterial{
		{ID: "mat-1", CourseID: "cs101", Excerpt: "a", Embedding: []float32{1, 0}},
		{ID: "mat-2", CourseID: "cs101", Excerpt: "b"},
	}

	snap := BuildSnapshot("cs101", 3, materials, NewTokenizer(), DefaultBM25Params())
	candidates := snap.ScoreSemantic([]float32{1, 0})

	require.Len(t, candidates, 1)
	assert.Equal(t, "mat-1", candidates[0].MaterialID)
}
