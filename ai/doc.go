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


// Package ai provides abstractions for the model services hybridrag talks to.
//
// Two services are involved:
//
//   - Embedder: turns chunk and query text into vectors
//   - ChatModel: classifies intent, rewrites queries and writes answers
//
// AIProvider bundles both so they share configuration and lifecycle.
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible APIs (Ollama, LocalAI, vLLM, OpenAI) via langchaingo
//   - ai/mock: deterministic test doubles
//
// # Constructor Return Type Pattern
//
// Public constructors in ai/openai return interface types. Test constructors
// in ai/mock return concrete types so tests can inject behavior and inspect
// call counts:
//
//	provider, err := openai.NewProvider(config)  // returns ai.AIProvider
//	embedder := mock.NewMockEmbedder()           // returns *mock.MockEmbedder
//
// # Usage Example
//
//	provider, err := openai.NewProvider(ai.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "Hello world")
//	ok, err := provider.ChatModel().IsSearchQuery(ctx, "What is in the report?")
package ai
