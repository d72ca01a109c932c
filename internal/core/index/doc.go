// Package index builds and scores per-course retrieval indexes.
//
// A course corpus is compiled into an immutable Snapshot holding the
// lexical (BM25) statistics, the material embeddings, and the keyword
// vocabulary used for course detection. Snapshots are versioned: a
// rebuild produces a new Snapshot and the registry swaps it in atomically,
// so an in-flight query never observes a half-built index.
package index
