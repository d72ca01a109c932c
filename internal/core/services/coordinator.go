package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/doccloud/retrieval/internal/core/domain"
	"github.com/doccloud/retrieval/internal/logger"
)

// courseMatch pairs a candidate course with its detection strength.
type courseMatch struct {
	courseID string
	strength float64
}

// buildMultiCourseContext handles course-agnostic queries:
// Detect -> FanOut -> PerCourseAssemble (parallel) -> Merge -> Output.
//
// Each candidate course is assembled concurrently and capped to the
// per-course quota so one verbose course cannot dominate. A failing
// course contributes nothing; the request never aborts because of it.
func (s *ContextService) buildMultiCourseContext(ctx context.Context, query string, opts domain.ContextOptions) (*domain.RetrievalBundle, error) {
	logger.Section("Multi-Course Coordination")

	candidates, err := s.detectCourses(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		logger.Info("No candidate courses matched the query")
		return emptyBundle("", false), nil
	}

	logger.Debug("Candidate courses: %d (limit %d)", len(candidates), s.params.CourseLimit)

	// Per-course assembly is capped to the quota; the merge below
	// re-ranks the combined pool and truncates to the global topK.
	perCourseOpts := domain.ContextOptions{
		TopK:        s.params.CourseQuota,
		TokenBudget: opts.TokenBudget,
	}

	bundles := make([]*domain.RetrievalBundle, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.params.CourseLimit)
	for i, match := range candidates {
		i, match := i, match
		g.Go(func() error {
			bundle, err := s.buildCourseContext(gctx, match.courseID, query, perCourseOpts)
			if err != nil {
				// Degrade this course's contribution to empty.
				logger.Warn("Course %q assembly failed: %v", match.courseID, err)
				return nil
			}
			bundles[i] = bundle
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return s.mergeBundles(bundles, opts), nil
}

// detectCourses matches query tokens against each course's indexed
// keyword vocabulary and returns up to CourseLimit candidates ranked by
// match strength. Courses whose snapshot cannot be built are skipped.
func (s *ContextService) detectCourses(ctx context.Context, query string) ([]courseMatch, error) {
	ids, _, err := s.registry.Courses(ctx)
	if err != nil {
		return nil, err
	}

	var matches []courseMatch
	for _, id := range ids {
		snap, err := s.registry.Snapshot(ctx, id)
		if err != nil {
			logger.Warn("Skipping course %q during detection: %v", id, err)
			continue
		}

		strength := snap.KeywordMatch(snap.TokenizeQuery(query))
		logger.Debug("Course %q match strength: %.2f", id, strength)
		if strength > 0 {
			matches = append(matches, courseMatch{courseID: id, strength: strength})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].strength != matches[j].strength {
			return matches[i].strength > matches[j].strength
		}
		return matches[i].courseID < matches[j].courseID
	})

	if len(matches) > s.params.CourseLimit {
		matches = matches[:s.params.CourseLimit]
	}
	return matches, nil
}

// mergeBundles concatenates per-course results, re-ranks the combined
// pool by display relevance (per-course scores are already normalized to
// 0-100), and truncates to the global topK and token budget.
func (s *ContextService) mergeBundles(bundles []*domain.RetrievalBundle, opts domain.ContextOptions) *domain.RetrievalBundle {
	var pool []domain.BundleItem
	degraded := false
	seen := make(map[string]bool)

	for _, bundle := range bundles {
		if bundle == nil {
			continue
		}
		degraded = degraded || bundle.Degraded
		for _, item := range bundle.Items {
			if seen[item.Material.ID] {
				continue
			}
			seen[item.Material.ID] = true
			pool = append(pool, item)
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].RelevanceScore != pool[j].RelevanceScore {
			return pool[i].RelevanceScore > pool[j].RelevanceScore
		}
		if pool[i].Material.CourseID != pool[j].Material.CourseID {
			return pool[i].Material.CourseID < pool[j].Material.CourseID
		}
		return pool[i].Material.ID < pool[j].Material.ID
	})

	if len(pool) > opts.TopK {
		pool = pool[:opts.TopK]
	}

	// Per-course assembly respected the budget individually; the merged
	// pool must respect it as a whole too.
	items := make([]domain.BundleItem, 0, len(pool))
	usedTokens := 0
	for _, item := range pool {
		cost := EstimateTokens(item.Material.Excerpt)
		if usedTokens+cost > opts.TokenBudget {
			break
		}
		usedTokens += cost
		items = append(items, item)
	}

	logger.Info("Merged bundle: items=%d degraded=%t", len(items), degraded)

	return &domain.RetrievalBundle{
		ID:          uuid.NewString(),
		CourseID:    "",
		Items:       items,
		Degraded:    degraded,
		GeneratedAt: time.Now(),
	}
}
