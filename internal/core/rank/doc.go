// Package rank merges and refines per-signal rankings.
//
// Fuse combines the lexical and semantic rankings with reciprocal rank
// fusion, which needs no comparable score scales between signals.
// SelectDiverse then picks a top-K subset with maximal marginal relevance
// so near-duplicate materials cannot crowd out distinct ones.
package rank
