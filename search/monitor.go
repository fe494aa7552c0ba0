package search

import (
	"github.com/poiesic/hybridrag/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string, topK int, alpha float64)
	CacheHit(query string)
	AfterQueryEmbedding(dimension int)
	AfterKeywordExtraction(keywords []string)
	AfterSnapshot(chunkCount int)
	Finish(results []core.ScoredChunk)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int, _ float64)  {}
func (n *noopMonitor) CacheHit(_ string)                 {}
func (n *noopMonitor) AfterQueryEmbedding(_ int)         {}
func (n *noopMonitor) AfterKeywordExtraction(_ []string) {}
func (n *noopMonitor) AfterSnapshot(_ int)               {}
func (n *noopMonitor) Finish(_ []core.ScoredChunk)       {}
