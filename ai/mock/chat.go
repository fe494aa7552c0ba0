package mock

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
)

// MockChatModel is a test double for ai.ChatModel.
type MockChatModel struct {
	// IsSearchQueryFunc is called by IsSearchQuery if set.
	// If nil, a message counts as a search when it contains a question mark.
	IsSearchQueryFunc func(ctx context.Context, text string) (bool, error)

	// RewriteQueryFunc is called by RewriteQuery if set.
	// If nil, the text is returned trimmed.
	RewriteQueryFunc func(ctx context.Context, text string) (string, error)

	// GenerateAnswerFunc is called by GenerateAnswer if set.
	// If nil, the answer echoes the question and context.
	GenerateAnswerFunc func(ctx context.Context, question, contextText string) (string, error)

	callCount atomic.Int64

	mu           sync.Mutex
	lastQuestion string
	lastContext  string
}

// NewMockChatModel creates a mock chat model with default behavior.
func NewMockChatModel() *MockChatModel {
	return &MockChatModel{}
}

// IsSearchQuery classifies text.
func (m *MockChatModel) IsSearchQuery(ctx context.Context, text string) (bool, error) {
	m.callCount.Add(1)
	if m.IsSearchQueryFunc != nil {
		return m.IsSearchQueryFunc(ctx, text)
	}
	return strings.Contains(text, "?"), nil
}

// RewriteQuery rewrites text.
func (m *MockChatModel) RewriteQuery(ctx context.Context, text string) (string, error) {
	m.callCount.Add(1)
	if m.RewriteQueryFunc != nil {
		return m.RewriteQueryFunc(ctx, text)
	}
	return strings.TrimSpace(text), nil
}

// GenerateAnswer answers question and records the inputs.
func (m *MockChatModel) GenerateAnswer(ctx context.Context, question, contextText string) (string, error) {
	m.callCount.Add(1)

	m.mu.Lock()
	m.lastQuestion = question
	m.lastContext = contextText
	m.mu.Unlock()

	if m.GenerateAnswerFunc != nil {
		return m.GenerateAnswerFunc(ctx, question, contextText)
	}
	if contextText == "" {
		return "answer: " + question, nil
	}
	return "answer: " + question + "\ncontext: " + contextText, nil
}

// LastPrompt returns the question and context of the most recent
// GenerateAnswer call.
func (m *MockChatModel) LastPrompt() (question, contextText string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastQuestion, m.lastContext
}

// CallCount returns the number of times any method was called.
func (m *MockChatModel) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears call counts, recorded prompts and injected behavior.
func (m *MockChatModel) Reset() {
	m.callCount.Store(0)
	m.IsSearchQueryFunc = nil
	m.RewriteQueryFunc = nil
	m.GenerateAnswerFunc = nil
	m.mu.Lock()
	m.lastQuestion, m.lastContext = "", ""
	m.mu.Unlock()
}
