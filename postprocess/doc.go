// Package postprocess shapes ranked chunks into the context handed to a
// language model.
//
// The stages are plain functions over []core.ScoredChunk:
//
//   - Deduplicate drops repeated texts, keeping the first occurrence
//   - Rerank reorders by raw keyword overlap with a positional tie-breaker
//   - Truncate keeps the longest prefix that fits a character budget
//
// Rerank is an alternate ranking path. It double-counts keyword signal when
// applied after hybrid fusion, so a Processor runs it only under
// StrategyRerank, where the search itself is purely semantic.
package postprocess
