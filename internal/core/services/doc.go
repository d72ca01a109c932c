// Package services implements the core retrieval use cases.
//
// ContextService is the engine's sole public entry point: it assembles a
// citation-ready bundle for one course, or detects candidate courses and
// fans out when the query is course-agnostic. IndexRegistry owns the
// versioned per-course snapshots, rebuilding them lazily on first query
// and after invalidation.
package services
