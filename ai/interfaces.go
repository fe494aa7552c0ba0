package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatModel is the conversational model used around retrieval: it decides
// whether a message needs document context, cleans up queries, and writes
// the final answer.
// Implementations must be thread-safe for concurrent use.
type ChatModel interface {
	// IsSearchQuery reports whether text asks for information that should
	// be looked up in the indexed documents, as opposed to small talk.
	IsSearchQuery(ctx context.Context, text string) (bool, error)

	// RewriteQuery returns text with grammar and clarity fixed for retrieval.
	RewriteQuery(ctx context.Context, text string) (string, error)

	// GenerateAnswer answers question. contextText holds the retrieved
	// passages and may be empty.
	GenerateAnswer(ctx context.Context, question, contextText string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// ChatModel returns the chat service.
	// The returned ChatModel is safe for concurrent use.
	ChatModel() ChatModel

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
