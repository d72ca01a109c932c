package index

import (
	"math"
	"sort"

	"github.com/doccloud/retrieval/internal/core/domain"
)

// CosineSimilarity computes dot(a,b) / (|a|*|b|) for two vectors.
// Mismatched dimensions or a zero vector yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// ScoreSemantic ranks materials by cosine similarity to the query
// embedding. Materials without an embedding are skipped: absence of a
// vector is absence of evidence, not a zero score. The result is sorted
// descending by similarity with materialID as the deterministic tie-break.
func ScoreSemantic(queryEmbedding []float32, materials []domain.CourseMaterial) []domain.ScoredCandidate {
	if len(queryEmbedding) == 0 {
		return nil
	}

	var candidates []domain.ScoredCandidate
	for i := range materials {
		m := &materials[i]
		if !m.HasEmbedding() {
			continue
		}
		candidates = append(candidates, domain.ScoredCandidate{
			MaterialID:    m.ID,
			SemanticScore: CosineSimilarity(queryEmbedding, m.Embedding),
			HasSemantic:   true,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].SemanticScore != candidates[j].SemanticScore {
			return candidates[i].SemanticScore > candidates[j].SemanticScore
		}
		return candidates[i].MaterialID < candidates[j].MaterialID
	})

	return candidates
}
