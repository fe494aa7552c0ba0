package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/hybridrag/core"
	"github.com/poiesic/hybridrag/storage"
)

// checkEvery is how many chunks are decoded between cancellation checks.
const checkEvery = 256

// ChunkStore implements storage.ChunkStore on top of BadgerDB.
//
// Chunk values are written first and then published by bumping a count key
// in a single transaction. Readers load the count and iterate in the same
// read transaction, so they only ever see whole batches.
type ChunkStore struct {
	backend *Backend
	logger  *slog.Logger

	mu    sync.RWMutex // writers take the write lock
	count uint64
	dim   int
}

var _ storage.ChunkStore = (*ChunkStore)(nil)

// Option configures a ChunkStore.
type Option func(*ChunkStore) error

// WithDimension fixes the embedding dimension up front.
func WithDimension(dim int) Option {
	return func(s *ChunkStore) error {
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
	return func(s *ChunkStore) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewChunkStore opens an in-memory badger database and returns a store over it.
func NewChunkStore(opts ...Option) (storage.ChunkStore, error) {
	return newChunkStore(opts...)
}

func newChunkStore(opts ...Option) (*ChunkStore, error) {
	s := &ChunkStore{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	backend, err := OpenBackend(s.logger)
	if err != nil {
		return nil, err
	}
	s.backend = backend
	s.logger = s.logger.With("component", "badger-chunk-store")
	return s, nil
}

// Add appends a batch of chunks. The batch becomes visible all at once.
func (s *ChunkStore) Add(ctx context.Context, filename string, texts []string, embeddings [][]float32) ([]core.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(texts) != len(embeddings) {
		return nil, fmt.Errorf("%w: %d texts, %d embeddings", core.ErrShapeMismatch, len(texts), len(embeddings))
	}
	if len(texts) == 0 {
		return []core.Chunk{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	dim, err := core.ValidateBatch(texts, embeddings, s.dim)
	if err != nil {
		return nil, err
	}

	added := make([]core.Chunk, len(texts))
	wb := s.backend.NewWriteBatch()
	defer wb.Cancel()

	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		added[i] = core.Chunk{
			ID:        core.IDFromContent(text),
			Position:  s.count + uint64(i),
			Filename:  filename,
			Text:      text,
			Embedding: append([]float32(nil), embeddings[i]...),
		}
		if err := wb.Set(makeChunkKey(added[i].Position), storage.MarshalChunk(&added[i])); err != nil {
			s.logger.Error("error writing chunk", "position", added[i].Position, "err", err)
			return nil, err
		}
	}
	if err := wb.Flush(); err != nil {
		s.logger.Error("error flushing chunk batch", "filename", filename, "err", err)
		return nil, err
	}

	// Publish. Keys past the old count stay invisible until this commits.
	newCount := s.count + uint64(len(texts))
	err = s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(chunkCountKey, encodeUint64(newCount)); err != nil {
			return err
		}
		if err := tx.Set(chunkDimKey, encodeUint64(uint64(dim))); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		s.logger.Error("error publishing chunk batch", "filename", filename, "err", err)
		return nil, err
	}

	s.count = newCount
	s.dim = dim
	s.logger.Debug("added chunks", "filename", filename, "count", len(texts), "total", newCount)
	return added, nil
}

// All returns every published chunk in insertion order.
func (s *ChunkStore) All(ctx context.Context) ([]core.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var chunks []core.Chunk
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		count, err := readCount(tx)
		if err != nil {
			return err
		}
		chunks = make([]core.Chunk, 0, count)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid() && uint64(len(chunks)) < count; iter.Next() {
			if len(chunks)%checkEvery == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}

			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			chunks = append(chunks, *chunk)
		}

		if uint64(len(chunks)) != count {
			return fmt.Errorf("%w: expected %d chunks, found %d", storage.ErrTruncatedData, count, len(chunks))
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

func readCount(tx *badger.Txn) (uint64, error) {
	item, err := tx.Get(chunkCountKey)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return 0, err
	}
	return decodeUint64(val), nil
}

// Len returns the number of published chunks.
func (s *ChunkStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int(s.count)
}

// Dimension returns the embedding dimension, or 0 before the first chunk.
func (s *ChunkStore) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dim
}

// Close closes the underlying database.
func (s *ChunkStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend.IsClosed() {
		return nil
	}
	return s.backend.Close()
}
