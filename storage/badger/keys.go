package badger

import (
	"encoding/binary"
)

// Key prefixes for different data types
const (
	chunkPrefix  = "chunk:"
	chunkMetaKey = "chunkmeta:"
)

var (
	// chunkCountKey holds the number of published chunks.
	chunkCountKey = []byte(chunkMetaKey + "count")
	// chunkDimKey holds the store's embedding dimension.
	chunkDimKey = []byte(chunkMetaKey + "dim")
)

// makeChunkKey generates a key for a chunk by insertion position.
// Format: prefix:position
func makeChunkKey(position uint64) []byte {
	prefixBytes := []byte(chunkPrefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort matches insertion order
	binary.BigEndian.PutUint64(buf[offset:], position)
	return buf
}

func encodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func decodeUint64(buf []byte) uint64 {
	if len(buf) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(buf)
}
