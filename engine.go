// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hybridrag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/hybridrag/ai"
	"github.com/poiesic/hybridrag/ai/openai"
	"github.com/poiesic/hybridrag/config"
	"github.com/poiesic/hybridrag/core"
	"github.com/poiesic/hybridrag/ingestion"
	"github.com/poiesic/hybridrag/postprocess"
	"github.com/poiesic/hybridrag/search"
	"github.com/poiesic/hybridrag/storage"
	"github.com/poiesic/hybridrag/storage/badger"
	"github.com/poiesic/hybridrag/storage/memory"
)

// Engine ties together storage, ranking, post-processing and ingestion.
// It is safe for concurrent use.
type Engine struct {
	store     storage.ChunkStore
	provider  ai.AIProvider
	ranker    *search.Ranker
	processor *postprocess.Processor
	pipeline  *ingestion.Pipeline
	topK      int
	alpha     float64
	logger    *slog.Logger
}

// Answer is the result of Ask.
type Answer struct {
	// Text is the generated answer.
	Text string

	// Query is the text used for retrieval. It is the rewritten question
	// when a search ran, otherwise the original question.
	Query string

	// UsedSearch reports whether the question was classified as
	// information seeking and answered from retrieved context.
	UsedSearch bool

	// Sources are the chunks given to the model as context.
	Sources []core.ScoredChunk
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions) error

type engineOptions struct {
	store         storage.ChunkStore
	backend       string
	dimension     int
	provider      ai.AIProvider
	aiConfig      *ai.Config
	topK          int
	alpha         float64
	strategy      postprocess.Strategy
	maxChars      int
	cacheSize     int
	ingestionOpts []ingestion.Option
	logger        *slog.Logger
}

// WithStore uses an existing chunk store. The engine takes ownership and
// closes it on Close.
func WithStore(store storage.ChunkStore) EngineOption {
	return func(o *engineOptions) error {
		o.store = store
		return nil
	}
}

// WithBackend selects the store created when WithStore is not given:
// config.BackendMemory (default) or config.BackendBadger.
func WithBackend(backend string) EngineOption {
	return func(o *engineOptions) error {
		switch backend {
		case "", config.BackendMemory, config.BackendBadger:
			o.backend = backend
			return nil
		default:
			return fmt.Errorf("%w: unknown store backend %q", core.ErrInvalidParameter, backend)
		}
	}
}

// WithDimension fixes the embedding dimension of a store created by the engine.
func WithDimension(dim int) EngineOption {
	return func(o *engineOptions) error {
		if dim < 0 {
			return fmt.Errorf("%w: dimension %d", core.ErrInvalidParameter, dim)
		}
		o.dimension = dim
		return nil
	}
}

// WithProvider uses an existing AI provider. The engine takes ownership
// and closes it on Close.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) error {
		o.provider = provider
		return nil
	}
}

// WithAIConfig sets the configuration for the OpenAI-compatible provider
// created when WithProvider is not given.
func WithAIConfig(cfg *ai.Config) EngineOption {
	return func(o *engineOptions) error {
		o.aiConfig = cfg
		return nil
	}
}

// WithTopK sets the default number of results for Search and Ask.
func WithTopK(topK int) EngineOption {
	return func(o *engineOptions) error {
		if err := core.ValidateTopK(topK); err != nil {
			return err
		}
		o.topK = topK
		return nil
	}
}

// WithAlpha sets the default semantic weight for Search and Ask.
func WithAlpha(alpha float64) EngineOption {
	return func(o *engineOptions) error {
		if err := core.ValidateAlpha(alpha); err != nil {
			return err
		}
		o.alpha = alpha
		return nil
	}
}

// WithStrategy selects the ranking strategy used by Search and Ask.
func WithStrategy(strategy postprocess.Strategy) EngineOption {
	return func(o *engineOptions) error {
		o.strategy = strategy
		return nil
	}
}

// WithMaxChars sets the context budget used by Search and Ask.
func WithMaxChars(maxChars int) EngineOption {
	return func(o *engineOptions) error {
		o.maxChars = maxChars
		return nil
	}
}

// WithCacheSize sets the number of cached query results. Zero disables
// the cache.
func WithCacheSize(size int) EngineOption {
	return func(o *engineOptions) error {
		if size < 0 {
			return fmt.Errorf("%w: cache size %d", core.ErrInvalidParameter, size)
		}
		o.cacheSize = size
		return nil
	}
}

// WithIngestionOptions passes options through to the ingestion pipeline.
func WithIngestionOptions(opts ...ingestion.Option) EngineOption {
	return func(o *engineOptions) error {
		o.ingestionOpts = append(o.ingestionOpts, opts...)
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithConfig applies every section of a loaded configuration.
func WithConfig(cfg *config.Config) EngineOption {
	return func(o *engineOptions) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		strategy, err := postprocess.ParseStrategy(cfg.Search.Strategy)
		if err != nil {
			return err
		}
		delay, err := cfg.Ingestion.RetryDelayDuration()
		if err != nil {
			return err
		}

		o.aiConfig = cfg.AI.Config()
		o.backend = cfg.Store.Backend
		o.dimension = cfg.Store.Dimension
		o.topK = cfg.Search.TopK
		o.alpha = cfg.Search.Alpha
		o.strategy = strategy
		o.maxChars = cfg.Search.MaxChars
		o.cacheSize = cfg.Search.CacheSize

		ing := cfg.Ingestion
		o.ingestionOpts = append(o.ingestionOpts,
			ingestion.WithChunking(ingestion.WithChunkSize(ing.ChunkSize), ingestion.WithOverlap(ing.Overlap)))
		if ing.BatchSize > 0 {
			o.ingestionOpts = append(o.ingestionOpts, ingestion.WithBatchSize(ing.BatchSize))
		}
		if ing.PoolSize > 0 {
			o.ingestionOpts = append(o.ingestionOpts, ingestion.WithPoolSize(ing.PoolSize))
		}
		if ing.Parallelism > 0 {
			o.ingestionOpts = append(o.ingestionOpts, ingestion.WithParallelism(ing.Parallelism))
		}
		if ing.MaxRetries > 0 {
			o.ingestionOpts = append(o.ingestionOpts, ingestion.WithRetry(ing.MaxRetries, delay))
		}
		return nil
	}
}

// NewEngine creates an engine. Without WithStore an empty in-memory store
// is created; without WithProvider an OpenAI-compatible provider is built
// from WithAIConfig or ai.DefaultConfig().
func NewEngine(opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		backend:   config.BackendMemory,
		topK:      search.DefaultTopK,
		alpha:     search.DefaultAlpha,
		strategy:  postprocess.StrategyHybrid,
		maxChars:  postprocess.DefaultMaxChars,
		cacheSize: search.DefaultCacheSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	logger := options.logger

	processor, err := postprocess.NewProcessor(
		postprocess.WithStrategy(options.strategy),
		postprocess.WithMaxChars(options.maxChars),
		postprocess.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	store := options.store
	if store == nil {
		store, err = newStore(options, logger)
		if err != nil {
			return nil, err
		}
	}

	provider := options.provider
	if provider == nil {
		aiConfig := options.aiConfig
		if aiConfig == nil {
			aiConfig = ai.DefaultConfig()
		}
		provider, err = openai.NewProvider(aiConfig)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	rankerOpts := []search.Option{search.WithLogger(logger)}
	if options.cacheSize > 0 {
		rankerOpts = append(rankerOpts, search.WithCache(options.cacheSize))
	}
	ranker, err := search.NewRanker(store, provider.Embedder(), rankerOpts...)
	if err != nil {
		provider.Close()
		store.Close()
		return nil, err
	}

	pipelineOpts := append([]ingestion.Option{ingestion.WithLogger(logger)}, options.ingestionOpts...)
	pipeline, err := ingestion.NewPipeline(store, provider.Embedder(), pipelineOpts...)
	if err != nil {
		provider.Close()
		store.Close()
		return nil, err
	}

	return &Engine{
		store:     store,
		provider:  provider,
		ranker:    ranker,
		processor: processor,
		pipeline:  pipeline,
		topK:      options.topK,
		alpha:     options.alpha,
		logger:    logger.With("component", "engine"),
	}, nil
}

func newStore(options *engineOptions, logger *slog.Logger) (storage.ChunkStore, error) {
	if options.backend == config.BackendBadger {
		opts := []badger.Option{badger.WithLogger(logger)}
		if options.dimension > 0 {
			opts = append(opts, badger.WithDimension(options.dimension))
		}
		return badger.NewChunkStore(opts...)
	}

	opts := []memory.Option{memory.WithLogger(logger)}
	if options.dimension > 0 {
		opts = append(opts, memory.WithDimension(options.dimension))
	}
	return memory.NewStore(opts...)
}

// Close releases the pipeline, the provider and the store.
func (e *Engine) Close() error {
	e.pipeline.Release()

	var errs []error
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
		errs = append(errs, err)
	}
	if err := e.store.Close(); err != nil {
		e.logger.Error("error closing chunk store", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Store returns the underlying chunk store.
func (e *Engine) Store() storage.ChunkStore {
	return e.store
}

// Ranker returns the underlying ranker.
func (e *Engine) Ranker() *search.Ranker {
	return e.ranker
}

// Ingest appends precomputed chunks to the store as one batch.
func (e *Engine) Ingest(ctx context.Context, filename string, texts []string, embeddings [][]float32) error {
	added, err := e.store.Add(ctx, filename, texts, embeddings)
	if err != nil {
		e.logger.Error("error ingesting chunks", "filename", filename, "err", err)
		return err
	}
	e.logger.Debug("ingested chunks", "filename", filename, "count", len(added))
	return nil
}

// IngestText chunks and embeds text, then stores it under filename.
func (e *Engine) IngestText(ctx context.Context, filename, text string) (*ingestion.Report, error) {
	return e.pipeline.IngestText(ctx, filename, text)
}

// IngestDocument extracts, chunks, embeds and stores a document.
func (e *Engine) IngestDocument(ctx context.Context, filename string, data []byte) (*ingestion.Report, error) {
	return e.pipeline.IngestDocument(ctx, filename, data)
}

// IngestFiles reads and ingests files concurrently. Chunks are stored
// under each file's base name.
func (e *Engine) IngestFiles(ctx context.Context, paths ...string) ([]*ingestion.Report, error) {
	docs := make([]ingestion.Document, len(paths))
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		docs[i] = ingestion.Document{Filename: filepath.Base(path), Data: data}
	}
	return e.pipeline.IngestDocuments(ctx, docs...)
}

// Query ranks every stored chunk against text and returns the best topK
// by alpha-weighted hybrid score. No post-processing is applied.
func (e *Engine) Query(ctx context.Context, text string, topK int, alpha float64) ([]core.ScoredChunk, error) {
	return e.ranker.Search(ctx, text, topK, alpha)
}

// Search retrieves context for text with the engine's defaults and ranking
// strategy: ranked, deduplicated and truncated to the context budget.
func (e *Engine) Search(ctx context.Context, text string) ([]core.ScoredChunk, error) {
	results, err := e.ranker.Search(ctx, text, e.topK, e.processor.SearchAlpha(e.alpha))
	if err != nil {
		return nil, err
	}
	return e.processor.Process(results, text), nil
}

// Ask answers a question. Questions classified as information seeking are
// rewritten, used for retrieval and answered from the retrieved context;
// anything else is answered directly.
func (e *Engine) Ask(ctx context.Context, question string) (*Answer, error) {
	chat := e.provider.ChatModel()

	isSearch, err := chat.IsSearchQuery(ctx, question)
	if err != nil {
		e.logger.Error("error classifying question", "err", err)
		return nil, err
	}

	if !isSearch {
		text, err := chat.GenerateAnswer(ctx, question, "")
		if err != nil {
			e.logger.Error("error generating answer", "err", err)
			return nil, err
		}
		return &Answer{Text: text, Query: question}, nil
	}

	query, err := chat.RewriteQuery(ctx, question)
	if err != nil {
		e.logger.Error("error rewriting question", "err", err)
		return nil, err
	}
	e.logger.Debug("rewrote question", "original", question, "rewritten", query)

	sources, err := e.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	text, err := chat.GenerateAnswer(ctx, query, postprocess.BuildContext(sources))
	if err != nil {
		e.logger.Error("error generating answer", "err", err)
		return nil, err
	}

	return &Answer{
		Text:       text,
		Query:      query,
		UsedSearch: true,
		Sources:    sources,
	}, nil
}
