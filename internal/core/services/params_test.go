package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/doccloud/retrieval/internal/core/ports/driven"
)

// mockConfigStore implements driven.ConfigStore over a plain map.
type mockConfigStore struct {
	values map[string]any
}

var _ driven.ConfigStore = (*mockConfigStore)(nil)

func (m *mockConfigStore) Get(key string) (any, bool) {
	val, ok := m.values[key]
	return val, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if v, ok := m.values[key].(string); ok {
		return v
	}
	return ""
}

func (m *mockConfigStore) GetInt(key string) int {
	if v, ok := m.values[key].(int); ok {
		return v
	}
	return 0
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	switch v := m.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	if v, ok := m.values[key].(bool); ok {
		return v
	}
	return false
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error { return nil }
func (m *mockConfigStore) Load() error { return nil }
func (m *mockConfigStore) Path() string {
	return ":memory:"
}

func TestLoadParams_NilStoreReturnsDefaults(t *testing.T) {
	p := LoadParams(nil)

	assert.Equal(t, DefaultParams(), p)
}

func TestLoadParams_EmptyStoreReturnsDefaults(t *testing.T) {
	p := LoadParams(&mockConfigStore{values: map[string]any{}})

	assert.Equal(t, DefaultParams(), p)
}

func TestLoadParams_OverridesFromConfig(t *testing.T) {
	cfg := &mockConfigStore{values: map[string]any{
		"bm25.k1":                  1.5,
		"bm25.b":                   0.5,
		"fusion.k":                 90,
		"fusion.lexical_weight":    0.6,
		"fusion.semantic_weight":   0.4,
		"mmr.lambda":               0.8,
		"embedding.timeout_ms":     250,
		"multicourse.course_limit": 5,
		"multicourse.course_quota": 3,
		"defaults.top_k":           8,
		"defaults.token_budget":    2000,
	}}

	p := LoadParams(cfg)

	assert.InDelta(t, 1.5, p.BM25.K1, 1e-9)
	assert.InDelta(t, 0.5, p.BM25.B, 1e-9)
	assert.InDelta(t, 90.0, p.Fusion.K, 1e-9)
	assert.InDelta(t, 0.6, p.Fusion.LexicalWeight, 1e-9)
	assert.InDelta(t, 0.4, p.Fusion.SemanticWeight, 1e-9)
	assert.InDelta(t, 0.8, p.MMRLambda, 1e-9)
	assert.Equal(t, 250*time.Millisecond, p.EmbedTimeout)
	assert.Equal(t, 5, p.CourseLimit)
	assert.Equal(t, 3, p.CourseQuota)
	assert.Equal(t, 8, p.TopK)
	assert.Equal(t, 2000, p.TokenBudget)
}

func TestLoadParams_ZeroFloatsAreHonored(t *testing.T) {
	// 0.0 is a legitimate tuning for these knobs, not an absent key.
	cfg := &mockConfigStore{values: map[string]any{
		"bm25.b":     0.0,
		"mmr.lambda": 0.0,
	}}

	p := LoadParams(cfg)

	assert.Equal(t, 0.0, p.BM25.B)
	assert.Equal(t, 0.0, p.MMRLambda)
}

func TestLoadParams_IgnoresNonPositiveValues(t *testing.T) {
	cfg := &mockConfigStore{values: map[string]any{
		"bm25.k1":        -1.0,
		"defaults.top_k": 0,
	}}

	p := LoadParams(cfg)

	assert.Equal(t, DefaultParams().BM25.K1, p.BM25.K1)
	assert.Equal(t, DefaultParams().TopK, p.TopK)
}
