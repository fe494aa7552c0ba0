// Package memory provides an in-process ChunkStore backed by a slice.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/hybridrag/core"
	"github.com/poiesic/hybridrag/storage"
)

// Store is an append-only, slice-backed ChunkStore.
//
// Published elements of the backing slice are never rewritten. Chunks are
// copied out under the read lock, so callers never share memory with the store.
type Store struct {
	mu     sync.RWMutex
	chunks []core.Chunk
	dim    int
	closed bool
	logger *slog.Logger
}

var _ storage.ChunkStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store) error

// WithDimension fixes the embedding dimension up front.
// Without it the first accepted batch decides.
func WithDimension(dim int) Option {
	return func(s *Store) error {
		if dim <= 0 {
			return fmt.Errorf("%w: dimension %d", core.ErrInvalidParameter, dim)
		}
		s.dim = dim
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewStore creates an empty in-memory chunk store.
func NewStore(opts ...Option) (storage.ChunkStore, error) {
	return newStore(opts...)
}

func newStore(opts ...Option) (*Store, error) {
	s := &Store{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "memory-store")
	return s, nil
}

// Add appends a batch of chunks atomically.
func (s *Store) Add(ctx context.Context, filename string, texts []string, embeddings [][]float32) ([]core.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(texts) != len(embeddings) {
		return nil, fmt.Errorf("%w: %d texts, %d embeddings", core.ErrShapeMismatch, len(texts), len(embeddings))
	}
	if len(texts) == 0 {
		return []core.Chunk{}, nil
	}

	// Copy caller-owned vectors outside the lock.
	owned := make([][]float32, len(embeddings))
	for i, emb := range embeddings {
		owned[i] = append([]float32(nil), emb...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	dim, err := core.ValidateBatch(texts, owned, s.dim)
	if err != nil {
		return nil, err
	}

	base := uint64(len(s.chunks))
	for i, text := range texts {
		s.chunks = append(s.chunks, core.Chunk{
			ID:        core.IDFromContent(text),
			Position:  base + uint64(i),
			Filename:  filename,
			Text:      text,
			Embedding: owned[i],
		})
	}
	s.dim = dim

	s.logger.Debug("added chunks", "filename", filename, "count", len(texts), "total", len(s.chunks))

	return cloneChunks(s.chunks[base:]), nil
}

// All returns a snapshot of every chunk in insertion order. The snapshot
// is a copy; writing to it never affects the store.
func (s *Store) All(ctx context.Context) ([]core.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrStorageClosed
	}
	return cloneChunks(s.chunks), nil
}

func cloneChunks(chunks []core.Chunk) []core.Chunk {
	out := make([]core.Chunk, len(chunks))
	for i := range chunks {
		out[i] = chunks[i].Clone()
	}
	return out
}

// Len returns the number of stored chunks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Dimension returns the embedding dimension, or 0 before the first chunk.
func (s *Store) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dim
}

// Close drops the stored chunks. Snapshots already taken remain valid.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.chunks = nil
	return nil
}
