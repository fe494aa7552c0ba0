package core

import (
	"encoding/binary"
	"slices"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored chunks.
// It is derived from chunk text so identical text yields identical IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Chunk is one stored unit of retrievable text together with its embedding.
// Chunks are immutable once added to a store.
type Chunk struct {
	ID        ID
	Position  uint64    // Insertion index within the owning store
	Filename  string    // Originating document
	Text      string    // May be empty
	Embedding []float32 // Length is fixed per store
}

// ScoredChunk is a chunk paired with the scores computed for a single query.
// It is never written back into a store.
type ScoredChunk struct {
	Chunk         Chunk
	SemanticScore float64
	KeywordScore  float64
	FinalScore    float64
}

// Clone returns a copy of the chunk that shares no memory with c.
func (c Chunk) Clone() Chunk {
	c.Embedding = slices.Clone(c.Embedding)
	return c
}

// Dimension returns the embedding length of the chunk.
func (c *Chunk) Dimension() int {
	return len(c.Embedding)
}
