package search

import (
	"crypto/sha256"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/poiesic/hybridrag/core"
)

// DefaultCacheSize is the number of queries remembered when caching is on.
const DefaultCacheSize = 1000

// queryCache remembers ranked results keyed by query parameters and the
// store length. The store is append-only, so a longer store never matches
// an older entry.
type queryCache struct {
	entries *lru.Cache[[32]byte, []core.ScoredChunk]
}

func newQueryCache(size int) (*queryCache, error) {
	entries, err := lru.New[[32]byte, []core.ScoredChunk](size)
	if err != nil {
		return nil, err
	}
	return &queryCache{entries: entries}, nil
}

func cacheKey(query string, topK int, alpha float64, storeLen int) [32]byte {
	return sha256.Sum256(fmt.Appendf(nil, "%s|%d|%g|%d", query, topK, alpha, storeLen))
}

func (c *queryCache) get(key [32]byte) ([]core.ScoredChunk, bool) {
	results, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	return cloneResults(results), true
}

func (c *queryCache) put(key [32]byte, results []core.ScoredChunk) {
	c.entries.Add(key, cloneResults(results))
}

func (c *queryCache) purge() {
	c.entries.Purge()
}

func (c *queryCache) len() int {
	return c.entries.Len()
}

// cloneResults deep-copies results so callers can modify them without
// touching cached state.
func cloneResults(results []core.ScoredChunk) []core.ScoredChunk {
	out := make([]core.ScoredChunk, len(results))
	for i, r := range results {
		r.Chunk = r.Chunk.Clone()
		out[i] = r
	}
	return out
}
