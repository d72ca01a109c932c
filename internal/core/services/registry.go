package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/time/rate"

	"github.com/doccloud/retrieval/internal/core/domain"
	"github.com/doccloud/retrieval/internal/core/index"
	"github.com/doccloud/retrieval/internal/core/ports/driven"
	"github.com/doccloud/retrieval/internal/logger"
)

// embedBatchSize bounds how many excerpts go to the provider per call.
const embedBatchSize = 32

// IndexRegistry owns the per-course index snapshots.
//
// Snapshots are built lazily on the first query for a course and rebuilt
// wholesale after the material store signals a change. Publication is an
// atomic pointer swap under the registry lock: readers that already hold
// a snapshot keep it for their whole query, so a rebuild never mutates an
// index an in-flight query observes.
type IndexRegistry struct {
	store     driven.MaterialStore
	embedder  driven.EmbeddingService
	tokenizer *index.Tokenizer
	params    index.BM25Params

	// limiter paces bulk embedding calls during index builds so a large
	// corpus rebuild cannot starve interactive query embeddings.
	limiter *rate.Limiter

	mu        sync.RWMutex
	snapshots map[string]*index.Snapshot
	versions  map[string]uint64
	stale     map[string]bool
}

// NewIndexRegistry creates a registry over the given material store.
// The embedder is optional; without it, snapshots index lexically only.
// Change notifications from the store invalidate the affected course.
func NewIndexRegistry(store driven.MaterialStore, embedder driven.EmbeddingService, params index.BM25Params) *IndexRegistry {
	r := &IndexRegistry{
		store:     store,
		embedder:  embedder,
		tokenizer: index.NewTokenizer(),
		params:    params,
		limiter:   rate.NewLimiter(rate.Limit(4), 1),
		snapshots: make(map[string]*index.Snapshot),
		versions:  make(map[string]uint64),
		stale:     make(map[string]bool),
	}
	store.Watch(r.Invalidate)
	return r
}

// Invalidate marks a course's snapshot stale. The snapshot itself stays
// untouched; the next query for the course triggers a rebuild.
func (r *IndexRegistry) Invalidate(courseID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.snapshots[courseID]; ok {
		logger.Debug("Invalidating index for course %q", courseID)
		r.stale[courseID] = true
	}
}

// Snapshot returns the current index snapshot for a course, building one
// if none exists or the cached one is stale.
//
// Returns domain.ErrCourseNotFound when the store has no such course and
// wraps store failures in domain.ErrStoreUnavailable.
func (r *IndexRegistry) Snapshot(ctx context.Context, courseID string) (*index.Snapshot, error) {
	r.mu.RLock()
	snap, ok := r.snapshots[courseID]
	fresh := ok && !r.stale[courseID]
	r.mu.RUnlock()

	if fresh {
		return snap, nil
	}

	return r.rebuild(ctx, courseID)
}

// rebuild lists the corpus, embeds what it can, and publishes a new
// snapshot version.
func (r *IndexRegistry) rebuild(ctx context.Context, courseID string) (*index.Snapshot, error) {
	logger.Section("Index Build")
	logger.Debug("Building index for course %q", courseID)

	materials, err := r.store.ListMaterials(ctx, courseID)
	if err != nil {
		if errors.Is(err, domain.ErrCourseNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: list materials for %q: %w", domain.ErrStoreUnavailable, courseID, err)
	}

	r.embedMissing(ctx, materials)

	r.mu.Lock()
	defer r.mu.Unlock()

	version := r.versions[courseID] + 1
	snap := index.BuildSnapshot(courseID, version, materials, r.tokenizer, r.params)

	r.snapshots[courseID] = snap
	r.versions[courseID] = version
	delete(r.stale, courseID)

	logger.Info("Index built: course=%q version=%d materials=%d", courseID, version, snap.Size())
	return snap, nil
}

// embedMissing fills in embeddings for materials that lack one.
// Best-effort: a provider failure leaves those materials lexical-only,
// it never fails the build.
func (r *IndexRegistry) embedMissing(ctx context.Context, materials []domain.CourseMaterial) {
	if r.embedder == nil {
		return
	}

	var pending []int
	for i := range materials {
		if !materials[i].HasEmbedding() && materials[i].Validate() == nil {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return
	}

	logger.Debug("Embedding %d materials with %s", len(pending), r.embedder.ModelName())

	for start := 0; start < len(pending); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		if err := r.limiter.Wait(ctx); err != nil {
			logger.Warn("Bulk embedding aborted: %v", err)
			return
		}

		texts := make([]string, len(batch))
		for i, idx := range batch {
			texts[i] = materials[idx].Excerpt
		}

		embeddings, err := r.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			logger.Warn("Bulk embedding failed, materials stay lexical-only: %v", err)
			return
		}

		for i, idx := range batch {
			if i < len(embeddings) {
				materials[idx].Embedding = embeddings[i]
			}
		}
	}
}

// Courses summarises the courses known to the store along with whether a
// snapshot is currently built for each.
func (r *IndexRegistry) Courses(ctx context.Context) ([]string, map[string]*index.Snapshot, error) {
	ids, err := r.store.ListCourses(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: list courses: %w", domain.ErrStoreUnavailable, err)
	}
	sort.Strings(ids)

	r.mu.RLock()
	defer r.mu.RUnlock()
	indexed := make(map[string]*index.Snapshot, len(r.snapshots))
	for id, snap := range r.snapshots {
		if !r.stale[id] {
			indexed[id] = snap
		}
	}
	return ids, indexed, nil
}
