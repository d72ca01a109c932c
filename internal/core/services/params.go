package services

import (
	"time"

	"github.com/doccloud/retrieval/internal/core/index"
	"github.com/doccloud/retrieval/internal/core/ports/driven"
	"github.com/doccloud/retrieval/internal/core/rank"
)

// Default tuning values. Interactive latency dominates over completeness,
// so the embedding call gets one short best-effort attempt and no retry.
const (
	DefaultTopK         = 5
	DefaultTokenBudget  = 1500
	DefaultEmbedTimeout = 500 * time.Millisecond
	DefaultCourseLimit  = 3
	DefaultCourseQuota  = 2
)

// Params holds the engine tuning knobs with their loaded values.
type Params struct {
	// BM25 tunes the lexical scorer.
	BM25 index.BM25Params

	// Fusion tunes reciprocal rank fusion.
	Fusion rank.FusionParams

	// MMRLambda balances relevance against diversity in selection.
	MMRLambda float64

	// EmbedTimeout bounds the query-embedding call. On timeout the
	// request proceeds lexical-only and is marked degraded.
	EmbedTimeout time.Duration

	// CourseLimit caps how many candidate courses a course-agnostic
	// query fans out to.
	CourseLimit int

	// CourseQuota caps how many items each course contributes to a
	// multi-course bundle.
	CourseQuota int

	// TopK and TokenBudget are the request defaults applied when the
	// caller leaves ContextOptions fields zero.
	TopK        int
	TokenBudget int
}

// DefaultParams returns the engine defaults.
func DefaultParams() Params {
	return Params{
		BM25:         index.DefaultBM25Params(),
		Fusion:       rank.DefaultFusionParams(),
		MMRLambda:    rank.DefaultMMRLambda,
		EmbedTimeout: DefaultEmbedTimeout,
		CourseLimit:  DefaultCourseLimit,
		CourseQuota:  DefaultCourseQuota,
		TopK:         DefaultTopK,
		TokenBudget:  DefaultTokenBudget,
	}
}

// LoadParams reads tuning values from a config store, falling back to the
// defaults for missing keys. A nil store returns the defaults.
func LoadParams(cfg driven.ConfigStore) Params {
	p := DefaultParams()
	if cfg == nil {
		return p
	}

	// Float keys are presence-checked rather than compared against zero:
	// bm25.b = 0.0 (no length normalization) and mmr.lambda = 0.0 (pure
	// diversity) are legitimate tunings.
	if v, ok := getFloat(cfg, "bm25.k1"); ok && v >= 0 {
		p.BM25.K1 = v
	}
	if v, ok := getFloat(cfg, "bm25.b"); ok && v >= 0 {
		p.BM25.B = v
	}
	if v, ok := getFloat(cfg, "fusion.k"); ok && v > 0 {
		p.Fusion.K = v
	}
	if v, ok := getFloat(cfg, "fusion.lexical_weight"); ok && v >= 0 {
		p.Fusion.LexicalWeight = v
	}
	if v, ok := getFloat(cfg, "fusion.semantic_weight"); ok && v >= 0 {
		p.Fusion.SemanticWeight = v
	}
	if v, ok := getFloat(cfg, "mmr.lambda"); ok && v >= 0 {
		p.MMRLambda = v
	}
	if v := cfg.GetInt("embedding.timeout_ms"); v > 0 {
		p.EmbedTimeout = time.Duration(v) * time.Millisecond
	}
	if v := cfg.GetInt("multicourse.course_limit"); v > 0 {
		p.CourseLimit = v
	}
	if v := cfg.GetInt("multicourse.course_quota"); v > 0 {
		p.CourseQuota = v
	}
	if v := cfg.GetInt("defaults.top_k"); v > 0 {
		p.TopK = v
	}
	if v := cfg.GetInt("defaults.token_budget"); v > 0 {
		p.TokenBudget = v
	}

	return p
}

// getFloat reports whether the key is present, widening integer values
// the way TOML stores typically deliver them.
func getFloat(cfg driven.ConfigStore, key string) (float64, bool) {
	val, ok := cfg.Get(key)
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
