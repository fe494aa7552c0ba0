package storage

import (
	"context"

	"github.com/poiesic/hybridrag/core"
)

// ChunkStore holds chunks in insertion order.
// Implementations must be thread-safe and support concurrent access.
type ChunkStore interface {
	// Add appends one chunk per (text, embedding) pair, in order.
	// Returns core.ErrShapeMismatch if the slices differ in length and
	// core.ErrDimensionMismatch if any embedding disagrees with the store
	// dimension. On error nothing is stored.
	// Returns copies of the chunks as stored, with ID and Position populated.
	Add(ctx context.Context, filename string, texts []string, embeddings [][]float32) ([]core.Chunk, error)

	// All returns a consistent snapshot of every chunk in insertion order.
	// The returned chunks are copies owned by the caller.
	All(ctx context.Context) ([]core.Chunk, error)

	// Len returns the number of stored chunks.
	Len() int

	// Dimension returns the embedding dimension, or 0 before the first chunk.
	Dimension() int

	// Close releases the store's resources.
	Close() error
}
