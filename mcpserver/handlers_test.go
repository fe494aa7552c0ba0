package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/hybridrag"
	"github.com/poiesic/hybridrag/ai/mock"
	"github.com/poiesic/hybridrag/core"
)

func setupServer(t *testing.T) (*Server, *hybridrag.Engine) {
	t.Helper()

	embedder := mock.NewMockEmbedderWithVectors(map[string][]float32{
		"capital of France": {1, 0},
	})
	engine, err := hybridrag.NewEngine(hybridrag.WithProvider(mock.NewMockProviderWithServices(embedder, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	require.NoError(t, engine.Ingest(context.Background(), "facts.txt",
		[]string{"Paris is the capital of France", "Bananas are yellow"},
		[][]float32{{1, 0}, {0, 1}}))

	s, err := NewServer(engine)
	require.NoError(t, err)
	return s, engine
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func decodeResult(t *testing.T, result *mcp.CallToolResult, v any) {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)

	var text string
	switch c := result.Content[0].(type) {
	case mcp.TextContent:
		text = c.Text
	case *mcp.TextContent:
		text = c.Text
	default:
		t.Fatalf("unexpected content type %T", c)
	}
	require.NoError(t, json.Unmarshal([]byte(text), v))
}

func TestNewServer_RequiresEngine(t *testing.T) {
	_, err := NewServer(nil)
	assert.ErrorIs(t, err, ErrEngineRequired)
}

func TestHandleSearchChunks(t *testing.T) {
	s, _ := setupServer(t)

	result, err := s.handleSearchChunks(context.Background(), callRequest("search_chunks", map[string]any{
		"query": "capital of France",
		"top_k": float64(1),
	}))
	require.NoError(t, err)

	var payload struct {
		Query   string        `json:"query"`
		Results []chunkResult `json:"results"`
	}
	decodeResult(t, result, &payload)

	assert.Equal(t, "capital of France", payload.Query)
	require.Len(t, payload.Results, 1)
	assert.Equal(t, "Paris is the capital of France", payload.Results[0].Text)
	assert.Equal(t, "facts.txt", payload.Results[0].Filename)
	assert.InDelta(t, 1.0, payload.Results[0].FinalScore, 1e-6)
	assert.Equal(t, uint64(core.IDFromContent("Paris is the capital of France")), payload.Results[0].ID)
}

func TestHandleSearchChunks_InvalidParams(t *testing.T) {
	s, _ := setupServer(t)

	_, err := s.handleSearchChunks(context.Background(), callRequest("search_chunks", map[string]any{}))
	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, ErrorCodeInvalidParams, toolErr.Code)

	tests := []struct {
		name string
		args map[string]any
	}{
		{"alpha above one", map[string]any{"query": "capital", "alpha": 1.5}},
		{"alpha below zero", map[string]any{"query": "capital", "alpha": -0.5}},
		{"negative top_k", map[string]any{"query": "capital", "top_k": float64(-3)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.handleSearchChunks(context.Background(), callRequest("search_chunks", tt.args))
			var toolErr *ToolError
			require.True(t, errors.As(err, &toolErr))
			assert.Equal(t, ErrorCodeInvalidParams, toolErr.Code)
			assert.ErrorIs(t, err, core.ErrInvalidParameter)
		})
	}
}

func TestHandleSearchChunks_ClosedEngine(t *testing.T) {
	s, engine := setupServer(t)
	require.NoError(t, engine.Close())

	_, err := s.handleSearchChunks(context.Background(), callRequest("search_chunks", map[string]any{
		"query": "capital of France",
	}))
	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, ErrorCodeInternalError, toolErr.Code)
}

func TestHandleIngestDocument(t *testing.T) {
	s, engine := setupServer(t)

	result, err := s.handleIngestDocument(context.Background(), callRequest("ingest_document", map[string]any{
		"filename": "notes.md",
		"content":  "# Lyon\n\nLyon is a city in France.",
	}))
	require.NoError(t, err)

	var report struct {
		BatchID       string `json:"batch_id"`
		Filename      string `json:"filename"`
		ChunksCreated int    `json:"chunks_created"`
	}
	decodeResult(t, result, &report)
	assert.NotEmpty(t, report.BatchID)
	assert.Equal(t, "notes.md", report.Filename)
	assert.Equal(t, 1, report.ChunksCreated)
	assert.Equal(t, 3, engine.Store().Len())
}

func TestHandleIngestDocument_Path(t *testing.T) {
	s, engine := setupServer(t)

	path := filepath.Join(t.TempDir(), "lyon.txt")
	require.NoError(t, os.WriteFile(path, []byte("Lyon is a city in France."), 0o600))

	result, err := s.handleIngestDocument(context.Background(), callRequest("ingest_document", map[string]any{
		"path": path,
	}))
	require.NoError(t, err)

	var report struct {
		Filename string `json:"filename"`
	}
	decodeResult(t, result, &report)
	assert.Equal(t, "lyon.txt", report.Filename)
	assert.Equal(t, 3, engine.Store().Len())
}

func TestHandleIngestDocument_InvalidParams(t *testing.T) {
	s, _ := setupServer(t)

	_, err := s.handleIngestDocument(context.Background(), callRequest("ingest_document", map[string]any{
		"filename": "notes.txt",
	}))
	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, ErrorCodeInvalidParams, toolErr.Code)
}

func TestHandleAsk(t *testing.T) {
	s, _ := setupServer(t)

	result, err := s.handleAsk(context.Background(), callRequest("ask", map[string]any{
		"question": "good morning",
	}))
	require.NoError(t, err)

	var payload struct {
		Answer     string        `json:"answer"`
		UsedSearch bool          `json:"used_search"`
		Sources    []chunkResult `json:"sources"`
	}
	decodeResult(t, result, &payload)
	assert.Equal(t, "answer: good morning", payload.Answer)
	assert.False(t, payload.UsedSearch)
	assert.Empty(t, payload.Sources)

	_, err = s.handleAsk(context.Background(), callRequest("ask", map[string]any{}))
	assert.Error(t, err)
}
