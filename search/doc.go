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


// Package search provides hybrid semantic and keyword ranking over a chunk store.
//
// The Ranker scores every chunk in a store snapshot with two signals:
//   - Semantic: cosine similarity between the query and chunk embeddings
//   - Keyword: fraction of query keywords found in the chunk text
//
// The signals are fused as alpha*semantic + (1-alpha)*keyword. Results are
// sorted by the fused score, highest first, with ties kept in insertion order.
//
// Search is an exhaustive linear scan; there is no approximate index.
package search
