package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidMaterial indicates a material is too malformed to index.
	// The material is skipped; the course index still builds without it.
	ErrInvalidMaterial = errors.New("invalid material")

	// ErrCourseNotFound indicates no such course exists in the material store.
	// Retrieval treats this as an empty corpus, never as a caller-visible error.
	ErrCourseNotFound = errors.New("course not found")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or failed. Semantic scoring is skipped and the bundle is
	// marked degraded; retrieval continues lexical-only.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrStoreUnavailable indicates the course material store itself is
	// unreachable. This is the one unrecoverable retrieval condition that
	// propagates to the caller.
	ErrStoreUnavailable = errors.New("material store unavailable")
)
