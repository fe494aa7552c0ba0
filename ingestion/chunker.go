package ingestion

import (
	"fmt"

	"github.com/poiesic/hybridrag/core"
)

const (
	// DefaultChunkSize is the default window length in characters.
	DefaultChunkSize = 500

	// DefaultOverlap is the default number of characters shared by
	// consecutive windows.
	DefaultOverlap = 100
)

// Chunker splits text into fixed-size overlapping windows. Sizes are
// measured in characters (runes), not bytes.
type Chunker struct {
	size    int
	overlap int
}

// ChunkerOption configures a Chunker.
type ChunkerOption func(*Chunker) error

// WithChunkSize sets the window length.
// Default is DefaultChunkSize.
func WithChunkSize(size int) ChunkerOption {
	return func(c *Chunker) error {
		if size <= 0 {
			return fmt.Errorf("%w: chunk size %d must be positive", core.ErrInvalidParameter, size)
		}
		c.size = size
		return nil
	}
}

// WithOverlap sets the number of characters repeated between windows.
// Default is DefaultOverlap.
func WithOverlap(overlap int) ChunkerOption {
	return func(c *Chunker) error {
		if overlap < 0 {
			return fmt.Errorf("%w: overlap %d is negative", core.ErrInvalidParameter, overlap)
		}
		c.overlap = overlap
		return nil
	}
}

// NewChunker creates a chunker. The overlap must be smaller than the
// chunk size.
func NewChunker(opts ...ChunkerOption) (*Chunker, error) {
	c := &Chunker{
		size:    DefaultChunkSize,
		overlap: DefaultOverlap,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.overlap >= c.size {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d",
			core.ErrInvalidParameter, c.overlap, c.size)
	}
	return c, nil
}

// Size returns the window length.
func (c *Chunker) Size() int {
	return c.size
}

// Overlap returns the overlap length.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Split returns the windows of text in order. Each window starts
// size-overlap characters after the previous one; the last may be shorter.
// Empty text yields no windows.
func (c *Chunker) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := c.size - c.overlap
	chunks := make([]string, 0, (len(runes)+step-1)/step)
	for start := 0; start < len(runes); start += step {
		end := min(start+c.size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
