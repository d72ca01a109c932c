// Package domain defines the core business entities for the retrieval engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - CourseMaterial: An indexable excerpt of course content
//   - ScoredCandidate: A material with per-signal and fused scores
//   - RetrievalBundle: The ordered, token-budgeted result of one query
//   - Citation: The bundle item shape delivered to the answer layer
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
