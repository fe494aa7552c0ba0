package hybridrag

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/hybridrag/ai/mock"
	"github.com/poiesic/hybridrag/config"
	"github.com/poiesic/hybridrag/core"
	"github.com/poiesic/hybridrag/postprocess"
	"github.com/poiesic/hybridrag/storage"
	"github.com/poiesic/hybridrag/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const question = "What is the capital of France?"

var (
	fixtureTexts = []string{
		"Paris is the capital of France",
		"Berlin is the capital of Germany",
		"Bananas are yellow",
	}
	fixtureEmbeddings = [][]float32{{1, 0}, {0.8, 0.6}, {0, 1}}
)

func newTestEngine(t *testing.T, opts ...EngineOption) (*Engine, *mock.MockEmbedder, *mock.MockChatModel) {
	t.Helper()

	embedder := mock.NewMockEmbedderWithVectors(map[string][]float32{
		"capital of France": {1, 0},
		question:            {1, 0},
	})
	chat := mock.NewMockChatModel()
	provider := mock.NewMockProviderWithServices(embedder, chat)

	engine, err := NewEngine(append([]EngineOption{WithProvider(provider)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	return engine, embedder, chat
}

func seed(t *testing.T, engine *Engine) {
	t.Helper()
	require.NoError(t, engine.Ingest(context.Background(), "facts.txt", fixtureTexts, fixtureEmbeddings))
}

func texts(results []core.ScoredChunk) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Chunk.Text
	}
	return out
}

func TestNewEngine_InvalidOptions(t *testing.T) {
	provider := mock.NewMockProvider()
	tests := []struct {
		name string
		opt  EngineOption
	}{
		{"negative topK", WithTopK(-1)},
		{"alpha above one", WithAlpha(2)},
		{"unknown backend", WithBackend("postgres")},
		{"negative max chars", WithMaxChars(-1)},
		{"negative cache size", WithCacheSize(-1)},
		{"negative dimension", WithDimension(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewEngine(WithProvider(provider), tt.opt)
			assert.ErrorIs(t, err, core.ErrInvalidParameter)
			assert.Nil(t, engine)
		})
	}
}

func TestEngine_Query(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	seed(t, engine)

	results, err := engine.Query(context.Background(), "capital of France", 3, 0.75)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, fixtureTexts, texts(results))
	assert.InDelta(t, 1.0, results[0].FinalScore, 1e-6)
	assert.InDelta(t, 0.725, results[1].FinalScore, 1e-6)
	assert.InDelta(t, 0.0, results[2].FinalScore, 1e-6)
	assert.Equal(t, "facts.txt", results[0].Chunk.Filename)
}

func TestEngine_Query_ResultsAreCopies(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	seed(t, engine)

	ctx := context.Background()
	results, err := engine.Query(ctx, "capital of France", 1, 0.75)
	require.NoError(t, err)
	require.Len(t, results, 1)
	results[0].Chunk.Embedding[0] = -1

	all, err := engine.Store().All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, all[0].Embedding)
}

func TestEngine_Query_Errors(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	results, err := engine.Query(context.Background(), "capital of France", 3, 0.75)
	require.NoError(t, err)
	assert.Empty(t, results, "empty store yields no results")

	seed(t, engine)

	_, err = engine.Query(context.Background(), "capital of France", 3, 1.5)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)

	_, err = engine.Query(context.Background(), "capital of France", -1, 0.5)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestEngine_Ingest_Errors(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	err := engine.Ingest(ctx, "a.txt", []string{"one", "two"}, [][]float32{{1, 0}})
	assert.ErrorIs(t, err, core.ErrShapeMismatch)
	assert.Zero(t, engine.Store().Len())

	seed(t, engine)

	err = engine.Ingest(ctx, "b.txt", []string{"three"}, [][]float32{{1, 0, 0}})
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
	assert.Equal(t, 3, engine.Store().Len())
}

func TestEngine_Search_Hybrid(t *testing.T) {
	engine, _, _ := newTestEngine(t, WithTopK(2))
	seed(t, engine)
	require.NoError(t, engine.Ingest(context.Background(), "dup.txt", fixtureTexts[:1], fixtureEmbeddings[:1]))

	results, err := engine.Search(context.Background(), "capital of France")
	require.NoError(t, err)

	// the duplicate Paris chunk takes the second slot and is then removed
	assert.Equal(t, []string{fixtureTexts[0]}, texts(results))
}

func TestEngine_Ask_Search(t *testing.T) {
	engine, embedder, chat := newTestEngine(t)
	seed(t, engine)

	answer, err := engine.Ask(context.Background(), "  "+question+"  ")
	require.NoError(t, err)

	assert.True(t, answer.UsedSearch)
	assert.Equal(t, question, answer.Query)
	assert.Equal(t, fixtureTexts, texts(answer.Sources))
	assert.Equal(t, 1, embedder.CallCount())

	q, contextText := chat.LastPrompt()
	assert.Equal(t, question, q)
	assert.Equal(t, postprocess.BuildContext(answer.Sources), contextText)
	assert.Contains(t, answer.Text, "answer: "+question)
	assert.Contains(t, answer.Text, "Paris is the capital of France")
}

func TestEngine_Ask_NoSearch(t *testing.T) {
	engine, embedder, chat := newTestEngine(t)
	seed(t, engine)

	answer, err := engine.Ask(context.Background(), "hello there")
	require.NoError(t, err)

	assert.False(t, answer.UsedSearch)
	assert.Equal(t, "hello there", answer.Query)
	assert.Empty(t, answer.Sources)
	assert.Equal(t, "answer: hello there", answer.Text)
	assert.Zero(t, embedder.CallCount())

	_, contextText := chat.LastPrompt()
	assert.Empty(t, contextText)
}

func TestEngine_Ask_RerankStrategy(t *testing.T) {
	engine, _, _ := newTestEngine(t, WithStrategy(postprocess.StrategyRerank))
	seed(t, engine)

	answer, err := engine.Ask(context.Background(), question)
	require.NoError(t, err)

	require.Len(t, answer.Sources, 3)
	assert.Equal(t, fixtureTexts, texts(answer.Sources))
	assert.InDelta(t, 2.03, answer.Sources[0].FinalScore, 1e-9)
	assert.InDelta(t, 1.02, answer.Sources[1].FinalScore, 1e-9)
	assert.InDelta(t, 0.01, answer.Sources[2].FinalScore, 1e-9)
}

func TestEngine_Ask_Errors(t *testing.T) {
	engine, _, chat := newTestEngine(t)
	failure := errors.New("model unavailable")

	chat.IsSearchQueryFunc = func(context.Context, string) (bool, error) { return false, failure }
	_, err := engine.Ask(context.Background(), question)
	assert.ErrorIs(t, err, failure)

	chat.Reset()
	chat.RewriteQueryFunc = func(context.Context, string) (string, error) { return "", failure }
	_, err = engine.Ask(context.Background(), question)
	assert.ErrorIs(t, err, failure)

	chat.Reset()
	chat.GenerateAnswerFunc = func(context.Context, string, string) (string, error) { return "", failure }
	_, err = engine.Ask(context.Background(), "no question mark")
	assert.ErrorIs(t, err, failure)
}

func TestEngine_IngestText(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	report, err := engine.IngestText(context.Background(), "notes.txt", "Lyon is a city in France")
	require.NoError(t, err)
	assert.Equal(t, 1, report.ChunksCreated)
	assert.Equal(t, 1, engine.Store().Len())
}

func TestEngine_IngestFiles(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	dir := t.TempDir()

	first := filepath.Join(dir, "first.txt")
	second := filepath.Join(dir, "second.md")
	require.NoError(t, os.WriteFile(first, []byte("Paris is the capital of France"), 0o600))
	require.NoError(t, os.WriteFile(second, []byte("# Germany\n\nBerlin is the capital."), 0o600))

	reports, err := engine.IngestFiles(context.Background(), first, second)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "first.txt", reports[0].Filename)
	assert.Equal(t, "second.md", reports[1].Filename)
	assert.Equal(t, 2, engine.Store().Len())

	_, err = engine.IngestFiles(context.Background(), filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEngine_BadgerBackend(t *testing.T) {
	engine, _, _ := newTestEngine(t, WithBackend(config.BackendBadger), WithDimension(2))
	_, ok := engine.Store().(*badger.ChunkStore)
	require.True(t, ok)
	assert.Equal(t, 2, engine.Store().Dimension())

	seed(t, engine)

	results, err := engine.Query(context.Background(), "capital of France", 2, 0.75)
	require.NoError(t, err)
	assert.Equal(t, fixtureTexts[:2], texts(results))
}

func TestEngine_WithConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Search.TopK = 1
	cfg.Search.Strategy = "rerank"

	engine, _, _ := newTestEngine(t, WithConfig(cfg))
	seed(t, engine)

	results, err := engine.Search(context.Background(), "capital of France")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, fixtureTexts[0], results[0].Chunk.Text)

	bad := config.Default()
	bad.Search.Alpha = 7
	_, err = NewEngine(WithProvider(mock.NewMockProvider()), WithConfig(bad))
	assert.Error(t, err)
}

func TestEngine_Close(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	engine, err := NewEngine(WithProvider(mock.NewMockProviderWithServices(embedder, nil)))
	require.NoError(t, err)

	require.NoError(t, engine.Close())

	err = engine.Ingest(context.Background(), "a.txt", []string{"x"}, [][]float32{{1}})
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
