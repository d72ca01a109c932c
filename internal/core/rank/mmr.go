package rank

import (
	"github.com/doccloud/retrieval/internal/core/domain"
	"github.com/doccloud/retrieval/internal/core/index"
)

// DefaultMMRLambda balances 70% relevance against 30% diversity.
const DefaultMMRLambda = 0.7

// SelectDiverse greedily picks up to topK candidates with maximal
// marginal relevance:
//
//	mmr(d) = lambda * relevance(d) - (1-lambda) * max sim(d, s) over selected s
//
// relevance is the fused score normalized so the top candidate scores 1,
// and sim is embedding cosine similarity. A material without an embedding
// has a similarity term of 0: it cannot be measured for redundancy, so it
// is never penalized for it. Fewer candidates than topK returns them all.
//
// The fused ordering is consumed rank-first, so equal mmr scores resolve
// to the higher fused rank and selection stays deterministic.
func SelectDiverse(fused []domain.ScoredCandidate, embeddingOf func(materialID string) []float32, topK int, lambda float64) []domain.ScoredCandidate {
	if topK <= 0 || len(fused) == 0 {
		return nil
	}

	maxFused := fused[0].FusedScore
	for i := range fused {
		if fused[i].FusedScore > maxFused {
			maxFused = fused[i].FusedScore
		}
	}

	relevance := func(c *domain.ScoredCandidate) float64 {
		if maxFused == 0 {
			return 0
		}
		return c.FusedScore / maxFused
	}

	selected := make([]domain.ScoredCandidate, 0, topK)
	remaining := make([]domain.ScoredCandidate, len(fused))
	copy(remaining, fused)

	for len(selected) < topK && len(remaining) > 0 {
		bestIdx := -1
		bestScore := 0.0

		for i := range remaining {
			c := &remaining[i]

			// The penalty is the true max similarity, which can be
			// negative: anti-similar selections grant a small bonus,
			// per the formula. Unmeasurable pairs contribute nothing.
			penalty := 0.0
			measured := false
			if emb := embeddingOf(c.MaterialID); len(emb) > 0 {
				for j := range selected {
					other := embeddingOf(selected[j].MaterialID)
					if len(other) == 0 {
						continue
					}
					sim := index.CosineSimilarity(emb, other)
					if !measured || sim > penalty {
						penalty = sim
						measured = true
					}
				}
			}

			score := lambda*relevance(c) - (1-lambda)*penalty
			if bestIdx < 0 || score > bestScore {
				bestIdx = i
				bestScore = score
			}
		}

		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}
