package search

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/hybridrag/ai"
	"github.com/poiesic/hybridrag/core"
	"github.com/poiesic/hybridrag/keywords"
	"github.com/poiesic/hybridrag/similarity"
	"github.com/poiesic/hybridrag/storage"
)

const (
	// DefaultAlpha weights semantic similarity over keyword overlap.
	DefaultAlpha = 0.75

	// DefaultTopK is the number of results returned when callers have no preference.
	DefaultTopK = 5

	// checkEvery is how many chunks are scored between cancellation checks.
	checkEvery = 512
)

// Ranker performs hybrid semantic and keyword ranking over a chunk store.
type Ranker struct {
	store    storage.ChunkStore
	embedder ai.Embedder
	cache    *queryCache
	logger   *slog.Logger
}

// Option configures a Ranker.
type Option func(*Ranker) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Ranker) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithCache enables an LRU cache of ranked results holding up to size queries.
// Caching is off by default.
func WithCache(size int) Option {
	return func(r *Ranker) error {
		if size <= 0 {
			return fmt.Errorf("%w: cache size %d", core.ErrInvalidParameter, size)
		}
		cache, err := newQueryCache(size)
		if err != nil {
			return err
		}
		r.cache = cache
		return nil
	}
}

// NewRanker creates a new ranker over store, embedding queries with embedder.
func NewRanker(store storage.ChunkStore, embedder ai.Embedder, opts ...Option) (*Ranker, error) {
	if store == nil {
		return nil, ErrChunkStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Ranker{
		store:    store,
		embedder: embedder,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "ranker")

	return r, nil
}

// Search ranks every stored chunk against query and returns the best topK.
// alpha must be in [0, 1]; 1 is purely semantic and 0 purely lexical.
func (r *Ranker) Search(ctx context.Context, query string, topK int, alpha float64) ([]core.ScoredChunk, error) {
	return r.SearchWithMonitor(ctx, query, topK, alpha, nil)
}

// SearchWithMonitor is Search with callbacks at each stage.
func (r *Ranker) SearchWithMonitor(ctx context.Context, query string, topK int, alpha float64, monitor SearchMonitor) ([]core.ScoredChunk, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if err := validateParams(topK, alpha); err != nil {
		return nil, err
	}

	monitor.Start(query, topK, alpha)

	if topK == 0 {
		results := []core.ScoredChunk{}
		monitor.Finish(results)
		return results, nil
	}
	if r.store.Len() == 0 {
		// All reports a closed store.
		if _, err := r.store.All(ctx); err != nil {
			r.logger.Error("error loading chunk snapshot", "err", err)
			return nil, err
		}
		results := []core.ScoredChunk{}
		monitor.Finish(results)
		return results, nil
	}

	if r.cache != nil {
		if results, ok := r.cache.get(cacheKey(query, topK, alpha, r.store.Len())); ok {
			r.logger.Debug("query cache hit", "query", query)
			monitor.CacheHit(query)
			monitor.Finish(results)
			return results, nil
		}
	}

	embedding, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	monitor.AfterQueryEmbedding(len(embedding))

	results, err := r.searchVector(ctx, embedding, query, topK, alpha, monitor)
	if err != nil {
		return nil, err
	}

	monitor.Finish(results)
	return results, nil
}

// SearchVector ranks stored chunks against a precomputed query embedding.
// query is only used for keyword scoring.
func (r *Ranker) SearchVector(ctx context.Context, queryVector []float32, query string, topK int, alpha float64) ([]core.ScoredChunk, error) {
	if err := validateParams(topK, alpha); err != nil {
		return nil, err
	}
	return r.searchVector(ctx, queryVector, query, topK, alpha, &noopMonitor{})
}

func (r *Ranker) searchVector(ctx context.Context, queryVector []float32, query string, topK int, alpha float64, monitor SearchMonitor) ([]core.ScoredChunk, error) {
	kw := keywords.Extract(query)
	monitor.AfterKeywordExtraction(kw.Sorted())

	chunks, err := r.store.All(ctx)
	if err != nil {
		r.logger.Error("error loading chunk snapshot", "err", err)
		return nil, err
	}
	monitor.AfterSnapshot(len(chunks))
	r.logger.Debug("scanning chunks", "count", len(chunks), "keywords", kw.Len())

	results, err := Rank(ctx, chunks, queryVector, kw, topK, alpha)
	if err != nil {
		r.logger.Error("error ranking chunks", "count", len(chunks), "err", err)
		return nil, err
	}

	if r.cache != nil {
		r.cache.put(cacheKey(query, topK, alpha, len(chunks)), results)
	}
	return results, nil
}

// InvalidateCache drops every cached result.
func (r *Ranker) InvalidateCache() {
	if r.cache != nil {
		r.cache.purge()
	}
}

// Rank scores chunks against a query vector and keyword set, sorts them by
// final score descending with ties in input order, and keeps the first topK.
// It never modifies chunks.
func Rank(ctx context.Context, chunks []core.Chunk, queryVector []float32, kw keywords.Set, topK int, alpha float64) ([]core.ScoredChunk, error) {
	if err := validateParams(topK, alpha); err != nil {
		return nil, err
	}
	if topK == 0 || len(chunks) == 0 {
		return []core.ScoredChunk{}, nil
	}
	if err := core.ValidateEmbedding(queryVector, chunks[0].Dimension()); err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	scored := make([]core.ScoredChunk, 0, len(chunks))
	for i := range chunks {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		sc, err := Score(&chunks[i], queryVector, kw, alpha)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", chunks[i].Position, err)
		}
		scored = append(scored, sc)
	}

	slices.SortStableFunc(scored, func(a, b core.ScoredChunk) int {
		return cmp.Compare(b.FinalScore, a.FinalScore)
	})

	if len(scored) > topK {
		scored = scored[:topK:topK]
	}
	return scored, nil
}

// Score computes the semantic, keyword and fused scores of one chunk.
// The returned value holds its own copy of the chunk.
func Score(chunk *core.Chunk, queryVector []float32, kw keywords.Set, alpha float64) (core.ScoredChunk, error) {
	semantic, err := similarity.Cosine(queryVector, chunk.Embedding)
	if err != nil {
		return core.ScoredChunk{}, err
	}
	keyword := keywords.Score(kw, chunk.Text)

	return core.ScoredChunk{
		Chunk:         chunk.Clone(),
		SemanticScore: semantic,
		KeywordScore:  keyword,
		FinalScore:    alpha*semantic + (1-alpha)*keyword,
	}, nil
}

func validateParams(topK int, alpha float64) error {
	if err := core.ValidateAlpha(alpha); err != nil {
		return err
	}
	return core.ValidateTopK(topK)
}
