package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/poiesic/hybridrag/core"
)

// JSON-RPC error codes returned by the tools.
const (
	ErrorCodeInvalidParams = -32602
	ErrorCodeInternalError = -32603
)

// ToolError is returned by a tool handler when a call fails.
type ToolError struct {
	Code    int
	Message string
	Err     error
}

func (e *ToolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("MCP error %d: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

func invalidParams(message string) error {
	return &ToolError{Code: ErrorCodeInvalidParams, Message: message}
}

func internalError(message string, err error) error {
	return &ToolError{Code: ErrorCodeInternalError, Message: message, Err: err}
}

type chunkResult struct {
	ID            uint64  `json:"id"`
	Filename      string  `json:"filename"`
	Position      uint64  `json:"position"`
	Text          string  `json:"text"`
	SemanticScore float64 `json:"semantic_score"`
	KeywordScore  float64 `json:"keyword_score"`
	FinalScore    float64 `json:"final_score"`
}

func toChunkResults(chunks []core.ScoredChunk) []chunkResult {
	out := make([]chunkResult, len(chunks))
	for i, c := range chunks {
		out[i] = chunkResult{
			ID:            uint64(c.Chunk.ID),
			Filename:      c.Chunk.Filename,
			Position:      c.Chunk.Position,
			Text:          c.Chunk.Text,
			SemanticScore: c.SemanticScore,
			KeywordScore:  c.KeywordScore,
			FinalScore:    c.FinalScore,
		}
	}
	return out
}

func (s *Server) handleIngestDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return nil, invalidParams("invalid arguments")
	}

	if path, _ := args["path"].(string); path != "" {
		reports, err := s.engine.IngestFiles(ctx, path)
		if err != nil {
			s.logger.Error("error ingesting file", "path", path, "err", err)
			return nil, internalError("ingestion failed", err)
		}
		return textResult(reports[0])
	}

	filename, _ := args["filename"].(string)
	content, _ := args["content"].(string)
	if filename == "" || content == "" {
		return nil, invalidParams("either path or filename and content are required")
	}

	report, err := s.engine.IngestDocument(ctx, filename, []byte(content))
	if err != nil {
		s.logger.Error("error ingesting content", "filename", filename, "err", err)
		return nil, internalError("ingestion failed", err)
	}
	return textResult(report)
}

func (s *Server) handleSearchChunks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return nil, invalidParams("invalid arguments")
	}

	query, _ := args["query"].(string)
	if query == "" {
		return nil, invalidParams("query parameter is required")
	}
	topK := getIntDefault(args, "top_k", s.defaultTopK)
	alpha := getFloatDefault(args, "alpha", s.defaultAlpha)

	results, err := s.engine.Query(ctx, query, topK, alpha)
	if errors.Is(err, core.ErrInvalidParameter) {
		return nil, &ToolError{Code: ErrorCodeInvalidParams, Message: "invalid search parameters", Err: err}
	}
	if err != nil {
		return nil, internalError("search failed", err)
	}
	return textResult(map[string]any{
		"query":   query,
		"results": toChunkResults(results),
	})
}

func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return nil, invalidParams("invalid arguments")
	}

	question, _ := args["question"].(string)
	if question == "" {
		return nil, invalidParams("question parameter is required")
	}

	answer, err := s.engine.Ask(ctx, question)
	if err != nil {
		return nil, internalError("ask failed", err)
	}
	return textResult(map[string]any{
		"answer":      answer.Text,
		"query":       answer.Query,
		"used_search": answer.UsedSearch,
		"sources":     toChunkResults(answer.Sources),
	})
}

func textResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, internalError("failed to encode result", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// getIntDefault reads an integer argument. JSON numbers arrive as float64.
func getIntDefault(args map[string]any, key string, defaultValue int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return defaultValue
	}
}

func getFloatDefault(args map[string]any, key string, defaultValue float64) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return defaultValue
	}
}
