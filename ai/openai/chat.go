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


package openai

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/hybridrag/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrEmptyResponse is returned when the model produces no choices.
var ErrEmptyResponse = errors.New("model returned no choices")

// ChatModel implements ai.ChatModel using OpenAI-compatible chat APIs.
type ChatModel struct {
	client      llms.Model
	temperature float64
	logger      *slog.Logger
}

// newChatModel is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newChatModel(config *ai.Config) (*ChatModel, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &ChatModel{
		client:      client,
		temperature: config.Temperature,
		logger:      slog.Default().With("component", "openai-chat"),
	}, nil
}

// NewChatModel creates a new chat model using the provided configuration.
//
// Returns ai.ChatModel interface to enforce abstraction.
func NewChatModel(config *ai.Config) (ai.ChatModel, error) {
	return newChatModel(config)
}

// IsSearchQuery asks the model whether text should trigger a document search.
func (c *ChatModel) IsSearchQuery(ctx context.Context, text string) (bool, error) {
	reply, err := c.complete(ctx, intentPrompt, text, 0.0)
	if err != nil {
		c.logger.Error("intent classification failed", "err", err)
		return false, err
	}
	isSearch := isAffirmative(reply)
	c.logger.Debug("classified intent", "search", isSearch, "reply", reply)
	return isSearch, nil
}

// RewriteQuery asks the model to clean up text for retrieval.
// Falls back to the original text if the model answers with nothing.
func (c *ChatModel) RewriteQuery(ctx context.Context, text string) (string, error) {
	reply, err := c.complete(ctx, rewritePrompt, text, 0.0)
	if err != nil {
		c.logger.Error("query rewrite failed", "err", err)
		return "", err
	}
	rewritten := cleanReply(reply)
	if rewritten == "" {
		c.logger.Warn("model returned empty rewrite, keeping original query")
		return text, nil
	}
	c.logger.Debug("rewrote query", "original", text, "rewritten", rewritten)
	return rewritten, nil
}

// GenerateAnswer answers question, grounding it in contextText when present.
func (c *ChatModel) GenerateAnswer(ctx context.Context, question, contextText string) (string, error) {
	reply, err := c.complete(ctx, "", buildAnswerPrompt(question, contextText), c.temperature)
	if err != nil {
		c.logger.Error("answer generation failed", "err", err)
		return "", err
	}
	return reply, nil
}

// complete sends an optional system message and one user message and
// returns the first choice.
func (c *ChatModel) complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	content := make([]llms.MessageContent, 0, 2)
	if system != "" {
		content = append(content, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(system)},
		})
	}
	content = append(content, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(user)},
	})

	response, err := c.client.GenerateContent(ctx, content, llms.WithTemperature(temperature))
	if err != nil {
		return "", err
	}
	if len(response.Choices) < 1 {
		return "", ErrEmptyResponse
	}
	return response.Choices[0].Content, nil
}
