package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/poiesic/hybridrag/ai"
	"github.com/poiesic/hybridrag/core"
	"github.com/poiesic/hybridrag/similarity"
	"github.com/poiesic/hybridrag/storage"
)

const (
	// DefaultBatchSize is the number of chunks sent to the embedder per call.
	DefaultBatchSize = 32

	// DefaultMaxRetries is the number of attempts per embedding batch.
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the delay before the first retry.
	DefaultRetryDelay = 500 * time.Millisecond
)

// Document is a named document waiting to be ingested.
type Document struct {
	Filename string
	Data     []byte
}

// Report describes the outcome of ingesting one document.
type Report struct {
	BatchID       string `json:"batch_id"`
	Filename      string `json:"filename"`
	ChunksCreated int    `json:"chunks_created"`
}

// Pipeline orchestrates extraction, chunking, embedding and storage of
// documents. Embedding batches run concurrently on a shared worker pool.
type Pipeline struct {
	store       storage.ChunkStore
	embedder    ai.Embedder
	chunker     *Chunker
	chunkerOpts []ChunkerOption
	pool        *ants.Pool
	batchSize   int
	maxRetries  int
	retryDelay  time.Duration
	parallelism int
	progress    io.Writer
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the number of concurrent embedding calls.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many chunks are embedded per call.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("%w: batch size %d must be positive", core.ErrInvalidParameter, size)
		}
		p.batchSize = size
		return nil
	}
}

// WithChunking configures the chunker used to split extracted text.
func WithChunking(opts ...ChunkerOption) Option {
	return func(p *Pipeline) error {
		p.chunkerOpts = append(p.chunkerOpts, opts...)
		return nil
	}
}

// WithRetry sets the number of attempts per embedding batch and the
// initial backoff delay.
// Default is DefaultMaxRetries and DefaultRetryDelay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		if baseDelay < 0 {
			return fmt.Errorf("%w: retry delay %s is negative", core.ErrInvalidParameter, baseDelay)
		}
		p.maxRetries = maxAttempts
		p.retryDelay = baseDelay
		return nil
	}
}

// WithParallelism sets how many documents IngestDocuments processes at once.
// Default is 4.
func WithParallelism(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			n = 1
		}
		p.parallelism = n
		return nil
	}
}

// WithProgress enables progress output for every ingested document.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline writing to store.
func NewPipeline(store storage.ChunkStore, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, ErrChunkStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := max(runtime.NumCPU()/2, 1)
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		store:       store,
		embedder:    embedder,
		pool:        pool,
		batchSize:   DefaultBatchSize,
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		parallelism: 4,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	chunker, err := NewChunker(p.chunkerOpts...)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.chunker = chunker
	p.logger = p.logger.With("component", "ingestion")

	return p, nil
}

// IngestDocument extracts text from data and ingests it under filename.
func (p *Pipeline) IngestDocument(ctx context.Context, filename string, data []byte) (*Report, error) {
	text, err := Extract(filename, data)
	if err != nil {
		p.logger.Error("error extracting text", "filename", filename, "err", err)
		return nil, err
	}
	return p.IngestText(ctx, filename, text)
}

// IngestText chunks text, embeds every chunk and appends the chunks to the
// store in one batch. Text that produces no chunks stores nothing.
func (p *Pipeline) IngestText(ctx context.Context, filename, text string) (*Report, error) {
	report := &Report{
		BatchID:  uuid.NewString(),
		Filename: filename,
	}

	chunks := p.chunker.Split(text)
	if len(chunks) == 0 {
		p.logger.Info("no text to ingest", "filename", filename, "batch", report.BatchID)
		return report, nil
	}

	p.logger.Info("ingesting document",
		"filename", filename,
		"batch", report.BatchID,
		"chunks", len(chunks))

	embeddings, err := p.embed(ctx, filename, chunks)
	if err != nil {
		p.logger.Error("error generating embeddings", "filename", filename, "err", err)
		return nil, err
	}

	added, err := p.store.Add(ctx, filename, chunks, embeddings)
	if err != nil {
		p.logger.Error("error storing chunks", "filename", filename, "err", err)
		return nil, err
	}

	report.ChunksCreated = len(added)
	return report, nil
}

// IngestDocuments ingests docs concurrently. The first failure cancels the
// remaining documents and is returned. Reports are in input order.
func (p *Pipeline) IngestDocuments(ctx context.Context, docs ...Document) ([]*Report, error) {
	reports := make([]*Report, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallelism)
	for i, doc := range docs {
		g.Go(func() error {
			report, err := p.IngestDocument(gctx, doc.Filename, doc.Data)
			if err != nil {
				return fmt.Errorf("%s: %w", doc.Filename, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// embed computes normalized embeddings for texts, batchSize texts per call,
// with batches running on the worker pool.
func (p *Pipeline) embed(ctx context.Context, filename string, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var tracker *ProgressTracker
	if p.progress != nil {
		tracker = NewProgressTracker(p.progress, filename, len(texts), p.batchSize)
		tracker.Start()
	}

	embeddings := make([][]float32, len(texts))

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for start := 0; start < len(texts); start += p.batchSize {
		end := min(start+p.batchSize, len(texts))

		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			if err := p.embedBatch(ctx, texts[start:end], embeddings[start:end]); err != nil {
				fail(err)
				return
			}
			if tracker != nil {
				tracker.Increment(end - start)
			}
		})
		if submitErr != nil {
			wg.Done()
			fail(submitErr)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if tracker != nil {
		tracker.Finish()
	}
	return embeddings, nil
}

func (p *Pipeline) embedBatch(ctx context.Context, texts []string, out [][]float32) error {
	var vectors [][]float32
	err := RetryWithBackoff(ctx, p.logger, func() error {
		var err error
		vectors, err = p.embedder.EmbedTexts(ctx, texts)
		return err
	}, p.maxRetries, p.retryDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", p.maxRetries, err)
	}

	if len(vectors) != len(texts) {
		return fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingCountMismatch, len(texts), len(vectors))
	}

	for i, v := range vectors {
		out[i] = similarity.Normalize(v)
	}
	return nil
}

// Chunker returns the chunker used to split text.
func (p *Pipeline) Chunker() *Chunker {
	return p.chunker
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
