package index

import (
	"time"

	"github.com/doccloud/retrieval/internal/core/domain"
	"github.com/doccloud/retrieval/internal/logger"
)

// Snapshot is one immutable, versioned index of a course corpus.
// Every query observes exactly one snapshot end-to-end; rebuilds publish
// a new snapshot rather than mutating a live one.
type Snapshot struct {
	courseID   string
	version    uint64
	builtAt    time.Time
	materials  []domain.CourseMaterial
	byID       map[string]*domain.CourseMaterial
	lexical    *LexicalIndex
	vocabulary map[string]struct{}
	tokenizer  *Tokenizer
}

// BuildSnapshot compiles a course corpus into a snapshot. Malformed
// materials are skipped with a warning; the snapshot still builds from
// the remaining corpus.
func BuildSnapshot(courseID string, version uint64, materials []domain.CourseMaterial, tokenizer *Tokenizer, params BM25Params) *Snapshot {
	valid := make([]domain.CourseMaterial, 0, len(materials))
	for i := range materials {
		if err := materials[i].Validate(); err != nil {
			logger.Warn("Skipping malformed material %q in course %q: %v", materials[i].ID, courseID, err)
			continue
		}
		valid = append(valid, materials[i])
	}

	snap := &Snapshot{
		courseID:   courseID,
		version:    version,
		builtAt:    time.Now(),
		materials:  valid,
		byID:       make(map[string]*domain.CourseMaterial, len(valid)),
		lexical:    BuildLexical(valid, tokenizer, params),
		vocabulary: make(map[string]struct{}),
		tokenizer:  tokenizer,
	}

	for i := range snap.materials {
		m := &snap.materials[i]
		snap.byID[m.ID] = m
		for _, kw := range m.Keywords {
			for _, token := range tokenizer.Tokenize(kw) {
				snap.vocabulary[token] = struct{}{}
			}
		}
		for _, token := range tokenizer.Tokenize(m.Title) {
			snap.vocabulary[token] = struct{}{}
		}
	}

	return snap
}

// CourseID returns the course this snapshot indexes.
func (s *Snapshot) CourseID() string {
	return s.courseID
}

// Version returns the snapshot's monotonically increasing version.
func (s *Snapshot) Version() uint64 {
	return s.version
}

// BuiltAt returns when the snapshot was compiled.
func (s *Snapshot) BuiltAt() time.Time {
	return s.builtAt
}

// Size returns the number of indexed materials.
func (s *Snapshot) Size() int {
	return len(s.materials)
}

// Material returns the indexed material with the given ID, or nil.
func (s *Snapshot) Material(id string) *domain.CourseMaterial {
	return s.byID[id]
}

// Materials returns the indexed materials. Callers must not mutate.
func (s *Snapshot) Materials() []domain.CourseMaterial {
	return s.materials
}

// TokenizeQuery normalizes query text with the snapshot's tokenizer.
func (s *Snapshot) TokenizeQuery(query string) []string {
	return s.tokenizer.Tokenize(query)
}

// ScoreLexical ranks the corpus against the query with BM25.
func (s *Snapshot) ScoreLexical(queryTokens []string) []domain.ScoredCandidate {
	return s.lexical.Score(queryTokens)
}

// ScoreSemantic ranks the corpus by cosine similarity to the query
// embedding. Materials without embeddings are absent from the ranking.
func (s *Snapshot) ScoreSemantic(queryEmbedding []float32) []domain.ScoredCandidate {
	return ScoreSemantic(queryEmbedding, s.materials)
}

// KeywordMatch measures how strongly the query tokens overlap the
// course's indexed vocabulary (keywords and titles). Used for course
// detection on course-agnostic queries; 0 means no overlap.
func (s *Snapshot) KeywordMatch(queryTokens []string) float64 {
	if len(queryTokens) == 0 || len(s.vocabulary) == 0 {
		return 0
	}
	matched := 0
	for _, token := range queryTokens {
		if _, ok := s.vocabulary[token]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}
