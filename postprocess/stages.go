package postprocess

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/hybridrag/core"
	"github.com/poiesic/hybridrag/keywords"
)

// positionWeight is the per-rank bonus Rerank gives to earlier inputs.
const positionWeight = 0.01

// Deduplicate removes chunks whose text already appeared earlier in the
// sequence. Comparison is exact; order of survivors is preserved.
func Deduplicate(chunks []core.ScoredChunk) []core.ScoredChunk {
	seen := make(map[string]struct{}, len(chunks))
	out := make([]core.ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		if _, dup := seen[c.Chunk.Text]; dup {
			continue
		}
		seen[c.Chunk.Text] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Rerank scores each chunk by how many query keywords its text contains
// plus (N-i)*0.01 for input index i, and sorts by that value descending.
// KeywordScore is refreshed against query and FinalScore holds the
// combined value on the returned copies.
func Rerank(chunks []core.ScoredChunk, query string) []core.ScoredChunk {
	kw := keywords.Extract(query)
	n := len(chunks)

	out := make([]core.ScoredChunk, n)
	for i, c := range chunks {
		overlap := keywords.CountOverlap(kw, c.Chunk.Text)
		c.KeywordScore = float64(overlap) / float64(max(1, kw.Len()))
		c.FinalScore = float64(overlap) + float64(n-i)*positionWeight
		out[i] = c
	}

	slices.SortStableFunc(out, func(a, b core.ScoredChunk) int {
		return cmp.Compare(b.FinalScore, a.FinalScore)
	})
	return out
}

// Truncate returns the longest prefix of chunks whose combined text length,
// in characters, is at most maxChars. It stops at the first chunk that
// would overflow even if a later one would fit.
func Truncate(chunks []core.ScoredChunk, maxChars int) []core.ScoredChunk {
	total := 0
	for i, c := range chunks {
		size := utf8.RuneCountInString(c.Chunk.Text)
		if total+size > maxChars {
			return chunks[:i:i]
		}
		total += size
	}
	return chunks[:len(chunks):len(chunks)]
}

// BuildContext joins chunk texts with blank lines.
func BuildContext(chunks []core.ScoredChunk) string {
	var b strings.Builder
	for i, c := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(c.Chunk.Text)
	}
	return b.String()
}
