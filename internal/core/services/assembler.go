package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/doccloud/retrieval/internal/core/domain"
	"github.com/doccloud/retrieval/internal/core/index"
	"github.com/doccloud/retrieval/internal/core/ports/driven"
	"github.com/doccloud/retrieval/internal/core/ports/driving"
	"github.com/doccloud/retrieval/internal/core/rank"
	"github.com/doccloud/retrieval/internal/logger"
)

// Ensure ContextService implements the interface.
var _ driving.ContextService = (*ContextService)(nil)

// ContextService assembles citation-ready retrieval bundles.
// It is the engine's sole public entry point.
type ContextService struct {
	registry *IndexRegistry
	embedder driven.EmbeddingService
	params   Params
}

// NewContextService creates the retrieval service.
// The embedder is optional (can be nil); without it every bundle is
// assembled lexical-only and marked degraded.
func NewContextService(store driven.MaterialStore, embedder driven.EmbeddingService, params Params) *ContextService {
	return &ContextService{
		registry: NewIndexRegistry(store, embedder, params.BM25),
		embedder: embedder,
		params:   params,
	}
}

// BuildContext retrieves, ranks, and assembles course materials for a
// query. An empty courseID triggers course detection and multi-course
// fan-out. Ranking-signal failures degrade the bundle; only a store-level
// failure returns an error.
func (s *ContextService) BuildContext(ctx context.Context, courseID, query string, opts domain.ContextOptions) (*domain.RetrievalBundle, error) {
	logger.Section("Context Assembly")
	logger.Debug("Query: %q course: %q", query, courseID)

	opts = s.normalizeOptions(opts)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning empty bundle")
		return emptyBundle(courseID, false), nil
	}

	if courseID == "" {
		return s.buildMultiCourseContext(ctx, query, opts)
	}
	return s.buildCourseContext(ctx, courseID, query, opts)
}

// Courses lists the courses currently available for retrieval.
func (s *ContextService) Courses(ctx context.Context) ([]driving.CourseInfo, error) {
	ids, indexed, err := s.registry.Courses(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]driving.CourseInfo, 0, len(ids))
	for _, id := range ids {
		info := driving.CourseInfo{CourseID: id}
		if snap, ok := indexed[id]; ok {
			info.Indexed = true
			info.Materials = snap.Size()
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// buildCourseContext runs the single-course pipeline: snapshot -> lexical
// -> semantic (best-effort) -> fuse -> diversify -> trim to budget.
func (s *ContextService) buildCourseContext(ctx context.Context, courseID, query string, opts domain.ContextOptions) (*domain.RetrievalBundle, error) {
	snap, err := s.registry.Snapshot(ctx, courseID)
	if err != nil {
		if errors.Is(err, domain.ErrCourseNotFound) {
			logger.Warn("Course %q not found, returning empty bundle", courseID)
			return emptyBundle(courseID, false), nil
		}
		return nil, fmt.Errorf("build context: %w", err)
	}
	if snap.Size() == 0 {
		logger.Warn("Course %q has no indexable materials", courseID)
		return emptyBundle(courseID, false), nil
	}

	queryTokens := snap.TokenizeQuery(query)
	logger.Debug("Query tokens: %v", queryTokens)

	lexical := snap.ScoreLexical(queryTokens)
	logger.Debug("Lexical ranking: %d candidates", len(lexical))

	semantic, degraded := s.semanticRanking(ctx, snap, query)
	logger.Debug("Semantic ranking: %d candidates (degraded=%t)", len(semantic), degraded)

	fused := rank.Fuse(lexical, semantic, s.params.Fusion)
	logger.Debug("Fused ranking: %d candidates", len(fused))

	selected := rank.SelectDiverse(fused, func(id string) []float32 {
		if m := snap.Material(id); m != nil {
			return m.Embedding
		}
		return nil
	}, opts.TopK, s.params.MMRLambda)
	logger.Debug("Diversified selection: %d of top-%d", len(selected), opts.TopK)

	items := s.assembleItems(snap, selected, opts.TokenBudget)
	logger.Info("Bundle: course=%q items=%d degraded=%t", courseID, len(items), degraded)

	return &domain.RetrievalBundle{
		ID:          uuid.NewString(),
		CourseID:    courseID,
		Items:       items,
		Degraded:    degraded,
		GeneratedAt: time.Now(),
	}, nil
}

// semanticRanking embeds the query and scores the corpus by cosine
// similarity. One short best-effort attempt: a nil embedder, provider
// error, or timeout yields an empty ranking and degraded=true. No error
// ever escapes this path.
func (s *ContextService) semanticRanking(ctx context.Context, snap *index.Snapshot, query string) ([]domain.ScoredCandidate, bool) {
	if s.embedder == nil {
		logger.Debug("No embedding service configured, lexical-only")
		return nil, true
	}

	embedCtx, cancel := context.WithTimeout(ctx, s.params.EmbedTimeout)
	defer cancel()

	embedding, err := s.embedder.Embed(embedCtx, query)
	if err != nil {
		logger.Warn("Query embedding failed, proceeding lexical-only: %v", err)
		return nil, true
	}

	return snap.ScoreSemantic(embedding), false
}

// assembleItems trims the diversified selection to the token budget and
// normalizes fused scores to 0-100 for display. Excerpts are accumulated
// whole in rank order; assembly stops at the first excerpt that would
// exceed the budget, so lower-ranked excerpts drop first and nothing is
// ever truncated mid-sentence.
func (s *ContextService) assembleItems(snap *index.Snapshot, selected []domain.ScoredCandidate, tokenBudget int) []domain.BundleItem {
	items := make([]domain.BundleItem, 0, len(selected))

	maxFused := 0.0
	for i := range selected {
		if selected[i].FusedScore > maxFused {
			maxFused = selected[i].FusedScore
		}
	}

	usedTokens := 0
	for i := range selected {
		material := snap.Material(selected[i].MaterialID)
		if material == nil {
			continue
		}

		cost := EstimateTokens(material.Excerpt)
		if usedTokens+cost > tokenBudget {
			logger.Debug("Token budget reached at %d/%d, dropping remaining %d excerpts",
				usedTokens, tokenBudget, len(selected)-i)
			break
		}
		usedTokens += cost

		items = append(items, domain.BundleItem{
			Material:       *material,
			RelevanceScore: normalizeScore(selected[i].FusedScore, maxFused),
		})
	}

	return items
}

// normalizeScore maps a fused score to 0-100 against the selection
// maximum. The mapping is monotonic, so display order always matches
// rank order.
func normalizeScore(fused, maxFused float64) int {
	if maxFused <= 0 {
		return 0
	}
	return int(math.Round(100 * fused / maxFused))
}

// normalizeOptions applies the configured defaults to zero-valued fields.
func (s *ContextService) normalizeOptions(opts domain.ContextOptions) domain.ContextOptions {
	if opts.TopK <= 0 {
		opts.TopK = s.params.TopK
	}
	if opts.TokenBudget <= 0 {
		opts.TokenBudget = s.params.TokenBudget
	}
	return opts
}

// emptyBundle builds a well-formed bundle with no items.
func emptyBundle(courseID string, degraded bool) *domain.RetrievalBundle {
	return &domain.RetrievalBundle{
		ID:          uuid.NewString(),
		CourseID:    courseID,
		Items:       []domain.BundleItem{},
		Degraded:    degraded,
		GeneratedAt: time.Now(),
	}
}
