package index

import (
	"math"
	"sort"

	"github.com/doccloud/retrieval/internal/core/domain"
)

// Default BM25 parameters (standard values).
const (
	DefaultK1 = 1.2  // Term frequency saturation
	DefaultB  = 0.75 // Length normalization
)

// BM25Params tunes the lexical scoring function.
type BM25Params struct {
	K1 float64
	B  float64
}

// DefaultBM25Params returns the conventional k1/b defaults.
func DefaultBM25Params() BM25Params {
	return BM25Params{K1: DefaultK1, B: DefaultB}
}

// lexicalDoc holds per-material term statistics.
type lexicalDoc struct {
	materialID string
	length     int
	freqs      map[string]int
}

// LexicalIndex holds the term-frequency statistics for one course corpus.
// It is immutable once built.
type LexicalIndex struct {
	params    BM25Params
	docs      []lexicalDoc
	docFreqs  map[string]int
	avgLength float64
}

// BuildLexical compiles term statistics for the given materials.
// Material text is the excerpt plus title and keywords, so a query can
// match a slide deck by its title even when the excerpt phrasing differs.
func BuildLexical(materials []domain.CourseMaterial, tokenizer *Tokenizer, params BM25Params) *LexicalIndex {
	idx := &LexicalIndex{
		params:   params,
		docs:     make([]lexicalDoc, 0, len(materials)),
		docFreqs: make(map[string]int),
	}

	totalLength := 0
	for i := range materials {
		m := &materials[i]
		tokens := tokenizer.Tokenize(m.Title + " " + m.Excerpt)
		for _, kw := range m.Keywords {
			tokens = append(tokens, tokenizer.Tokenize(kw)...)
		}

		doc := lexicalDoc{
			materialID: m.ID,
			length:     len(tokens),
			freqs:      TermFrequency(tokens),
		}
		for term := range doc.freqs {
			idx.docFreqs[term]++
		}
		totalLength += doc.length
		idx.docs = append(idx.docs, doc)
	}

	if len(idx.docs) > 0 {
		idx.avgLength = float64(totalLength) / float64(len(idx.docs))
	}

	return idx
}

// Size returns the number of indexed materials.
func (idx *LexicalIndex) Size() int {
	return len(idx.docs)
}

// Score ranks the corpus against the query tokens using BM25.
// Materials sharing no terms with the query are excluded from the ranking
// entirely rather than ranked last with a zero score. An empty query
// yields an empty ranking. The result is sorted descending by score with
// materialID as the deterministic tie-break.
func (idx *LexicalIndex) Score(queryTokens []string) []domain.ScoredCandidate {
	if len(queryTokens) == 0 || len(idx.docs) == 0 {
		return nil
	}

	n := float64(len(idx.docs))
	var candidates []domain.ScoredCandidate

	for i := range idx.docs {
		doc := &idx.docs[i]
		score := 0.0
		matched := false

		for _, term := range queryTokens {
			tf := float64(doc.freqs[term])
			if tf == 0 {
				continue
			}
			matched = true

			df := float64(idx.docFreqs[term])
			// Lucene-style non-negative IDF keeps scores >= 0 even for
			// terms present in most of the corpus.
			idf := math.Log(1 + (n-df+0.5)/(df+0.5))

			denom := tf + idx.params.K1*(1-idx.params.B+idx.params.B*float64(doc.length)/idx.avgLength)
			score += idf * (tf * (idx.params.K1 + 1)) / denom
		}

		if matched {
			candidates = append(candidates, domain.ScoredCandidate{
				MaterialID:   doc.materialID,
				LexicalScore: score,
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].LexicalScore != candidates[j].LexicalScore {
			return candidates[i].LexicalScore > candidates[j].LexicalScore
		}
		return candidates[i].MaterialID < candidates[j].MaterialID
	})

	return candidates
}
