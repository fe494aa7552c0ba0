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


package storage

import (
	"fmt"
	"math"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/hybridrag/core"
)

// Chunk wire layout, in order:
//
//	ID        varint uint64
//	Position  varint uint64
//	Filename  ord string
//	Text      ord string
//	len       varint uint64
//	Embedding len x varint uint32 (IEEE-754 bits)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return core.ID(v), nil
}

// chunkSize returns the encoded length of chunk.
func chunkSize(chunk *core.Chunk) int {
	size := varint.Uint64.Size(uint64(chunk.ID))
	size += varint.Uint64.Size(chunk.Position)
	size += ord.String.Size(chunk.Filename)
	size += ord.String.Size(chunk.Text)
	size += varint.Uint64.Size(uint64(len(chunk.Embedding)))
	for _, f := range chunk.Embedding {
		size += varint.Uint32.Size(math.Float32bits(f))
	}
	return size
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	buf := make([]byte, chunkSize(chunk))
	n := varint.Uint64.Marshal(uint64(chunk.ID), buf)
	n += varint.Uint64.Marshal(chunk.Position, buf[n:])
	n += ord.String.Marshal(chunk.Filename, buf[n:])
	n += ord.String.Marshal(chunk.Text, buf[n:])
	n += varint.Uint64.Marshal(uint64(len(chunk.Embedding)), buf[n:])
	for _, f := range chunk.Embedding {
		n += varint.Uint32.Marshal(math.Float32bits(f), buf[n:])
	}
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	var (
		chunk core.Chunk
		total int
	)

	id, n, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	chunk.ID = core.ID(id)
	total += n

	chunk.Position, n, err = varint.Uint64.Unmarshal(data[total:])
	if err != nil {
		return nil, fmt.Errorf("%w: position: %w", ErrSerializationFailed, err)
	}
	total += n

	chunk.Filename, n, err = ord.String.Unmarshal(data[total:])
	if err != nil {
		return nil, fmt.Errorf("%w: filename: %w", ErrSerializationFailed, err)
	}
	total += n

	chunk.Text, n, err = ord.String.Unmarshal(data[total:])
	if err != nil {
		return nil, fmt.Errorf("%w: text: %w", ErrSerializationFailed, err)
	}
	total += n

	length, n, err := varint.Uint64.Unmarshal(data[total:])
	if err != nil {
		return nil, fmt.Errorf("%w: embedding length: %w", ErrSerializationFailed, err)
	}
	total += n

	// every component occupies at least one byte
	if length > uint64(len(data)-total) {
		return nil, fmt.Errorf("%w: embedding claims %d components, %d bytes left", ErrTruncatedData, length, len(data)-total)
	}

	chunk.Embedding = make([]float32, length)
	for i := range chunk.Embedding {
		bits, n, err := varint.Uint32.Unmarshal(data[total:])
		if err != nil {
			return nil, fmt.Errorf("%w: embedding[%d]: %w", ErrSerializationFailed, i, err)
		}
		chunk.Embedding[i] = math.Float32frombits(bits)
		total += n
	}

	return &chunk, nil
}
