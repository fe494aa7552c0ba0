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


// Package storage provides the chunk storage abstraction for hybridrag.
//
// A ChunkStore is an append-only collection of chunks, each pairing a piece
// of text with its embedding. Every store in a process fixes its embedding
// dimension with the first accepted batch and rejects batches that disagree.
//
// # Constructor Return Type Pattern
//
// Public constructors return the storage.ChunkStore interface:
//
//	store, err := memory.NewStore()          // storage.ChunkStore
//	store, err := badger.NewChunkStore()     // storage.ChunkStore
//
// Internal constructors may return concrete types since they are only used
// within the implementation package.
//
// # Snapshots
//
// All returns a point-in-time view in insertion order. A scan over a
// snapshot never observes a batch that was only partially written, and
// concurrent Add calls never disturb a snapshot already taken. Snapshots
// are copies: writing to one never changes the stored chunks.
//
// # Thread Safety
//
// All store implementations must be safe for concurrent use. Writers are
// serialized; readers proceed concurrently with each other.
//
// # Context Support
//
// Store methods accept context.Context for cancellation. A cancelled Add
// stores nothing.
package storage
