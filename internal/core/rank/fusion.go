package rank

import (
	"sort"

	"github.com/doccloud/retrieval/internal/core/domain"
)

// Default fusion parameters. k=60 is the conventional RRF constant that
// keeps top ranks from dominating; equal weights treat both signals as
// equally trustworthy.
const (
	DefaultRRFK           = 60.0
	DefaultLexicalWeight  = 1.0
	DefaultSemanticWeight = 1.0
)

// FusionParams tunes reciprocal rank fusion.
type FusionParams struct {
	K              float64
	LexicalWeight  float64
	SemanticWeight float64
}

// DefaultFusionParams returns the conventional RRF settings.
func DefaultFusionParams() FusionParams {
	return FusionParams{
		K:              DefaultRRFK,
		LexicalWeight:  DefaultLexicalWeight,
		SemanticWeight: DefaultSemanticWeight,
	}
}

// Fuse merges the lexical and semantic rankings with reciprocal rank
// fusion: fused(d) = sum over rankings r of weight_r / (k + rank_r(d)).
//
// A document absent from one ranking is treated as ranked just past its
// end (len+1), a soft penalty rather than exclusion, so a material found
// by only one signal still competes. Ties on the fused score break by
// higher lexical score, then materialID ascending, giving a deterministic
// total order. FusedRank is assigned 1..n on the sorted result.
func Fuse(lexical, semantic []domain.ScoredCandidate, params FusionParams) []domain.ScoredCandidate {
	if len(lexical) == 0 && len(semantic) == 0 {
		return nil
	}

	merged := make(map[string]*domain.ScoredCandidate)

	candidate := func(id string) *domain.ScoredCandidate {
		if c, ok := merged[id]; ok {
			return c
		}
		c := &domain.ScoredCandidate{MaterialID: id}
		merged[id] = c
		return c
	}

	lexicalRank := make(map[string]int, len(lexical))
	for i := range lexical {
		c := candidate(lexical[i].MaterialID)
		c.LexicalScore = lexical[i].LexicalScore
		lexicalRank[lexical[i].MaterialID] = i + 1
	}

	semanticRank := make(map[string]int, len(semantic))
	for i := range semantic {
		c := candidate(semantic[i].MaterialID)
		c.SemanticScore = semantic[i].SemanticScore
		c.HasSemantic = true
		semanticRank[semantic[i].MaterialID] = i + 1
	}

	// Rank just past the end of a list the document missed.
	lexicalMiss := len(lexical) + 1
	semanticMiss := len(semantic) + 1

	results := make([]domain.ScoredCandidate, 0, len(merged))
	for id, c := range merged {
		rl, ok := lexicalRank[id]
		if !ok {
			rl = lexicalMiss
		}
		rs, ok := semanticRank[id]
		if !ok {
			rs = semanticMiss
		}

		c.FusedScore = params.LexicalWeight/(params.K+float64(rl)) +
			params.SemanticWeight/(params.K+float64(rs))
		results = append(results, *c)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].FusedScore != results[j].FusedScore {
			return results[i].FusedScore > results[j].FusedScore
		}
		if results[i].LexicalScore != results[j].LexicalScore {
			return results[i].LexicalScore > results[j].LexicalScore
		}
		return results[i].MaterialID < results[j].MaterialID
	})

	for i := range results {
		results[i].FusedRank = i + 1
	}

	return results
}
