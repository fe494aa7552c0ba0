package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func ingestDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "ingest_document",
		Description: "Extract, chunk, embed and store a document so it can be searched",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"path": map[string]any{
					"type":        "string",
					"description": "Path of a file to ingest (pdf, md, docx, xlsx, txt). Takes precedence over content",
				},
				"filename": map[string]any{
					"type":        "string",
					"description": "Name to store inline content under; its extension selects the format",
				},
				"content": map[string]any{
					"type":        "string",
					"description": "Inline text content to ingest",
				},
			},
		},
	}
}

func searchChunksTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_chunks",
		Description: "Rank stored chunks against a query by semantic similarity and keyword overlap",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Search query",
				},
				"top_k": map[string]any{
					"type":        "integer",
					"description": "Maximum number of results",
					"minimum":     0,
				},
				"alpha": map[string]any{
					"type":        "number",
					"description": "Semantic weight between 0 (keywords only) and 1 (embeddings only)",
					"minimum":     0,
					"maximum":     1,
				},
			},
			Required: []string{"query"},
		},
	}
}

func askTool() mcp.Tool {
	return mcp.Tool{
		Name:        "ask",
		Description: "Answer a question, using retrieved chunks as context when the question needs them",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"question": map[string]any{
					"type":        "string",
					"description": "The question to answer",
				},
			},
			Required: []string{"question"},
		},
	}
}
