package domain

// ScoredCandidate carries a material through the ranking pipeline.
// Each signal fills in its own score; fusion assigns FusedScore and
// FusedRank, which is a deterministic total order over the candidates.
type ScoredCandidate struct {
	// MaterialID identifies the scored material.
	MaterialID string

	// LexicalScore is the raw BM25 score (>= 0). A material sharing no
	// terms with the query never appears in the lexical ranking at all.
	LexicalScore float64

	// SemanticScore is the cosine similarity to the query embedding,
	// in [-1, 1]. Only meaningful when HasSemantic is true.
	SemanticScore float64

	// HasSemantic is true when the material was present in the semantic
	// ranking. Materials without embeddings are absent, not scored zero.
	HasSemantic bool

	// FusedScore is the reciprocal-rank-fusion score across signals.
	FusedScore float64

	// FusedRank is the 1-based position in the fused ordering.
	FusedRank int
}

// ContextOptions configures one retrieval request.
type ContextOptions struct {
	// TopK is the maximum number of materials to select (default 5).
	TopK int

	// TokenBudget bounds the total estimated tokens of assembled excerpts
	// (default 1500). Excerpts are included whole or omitted.
	TokenBudget int
}
