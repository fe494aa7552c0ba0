package postprocess

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/poiesic/hybridrag/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(texts ...string) []core.ScoredChunk {
	out := make([]core.ScoredChunk, len(texts))
	for i, t := range texts {
		out[i] = core.ScoredChunk{
			Chunk:      core.Chunk{Text: t, Position: uint64(i), Embedding: []float32{float32(i + 1)}},
			FinalScore: float64(len(texts) - i),
		}
	}
	return out
}

func textsOf(chunks []core.ScoredChunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Chunk.Text
	}
	return out
}

func TestDeduplicate(t *testing.T) {
	t.Run("first occurrence wins", func(t *testing.T) {
		in := scored("cats are great", "dogs are great", "cats are great")
		out := Deduplicate(in)

		require.Len(t, out, 2)
		assert.Equal(t, []string{"cats are great", "dogs are great"}, textsOf(out))
		assert.Equal(t, uint64(0), out[0].Chunk.Position, "kept the earlier copy")
	})

	t.Run("exact comparison only", func(t *testing.T) {
		out := Deduplicate(scored("Cats", "cats", "cats "))
		assert.Len(t, out, 3)
	})

	t.Run("idempotent", func(t *testing.T) {
		in := scored("a", "b", "a", "c", "b")
		once := Deduplicate(in)
		assert.Equal(t, once, Deduplicate(once))
		assert.LessOrEqual(t, len(once), len(in))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, Deduplicate(nil))
	})
}

func TestRerank(t *testing.T) {
	t.Run("keyword overlap dominates", func(t *testing.T) {
		in := scored("nothing relevant", "the capital", "capital of france")
		out := Rerank(in, "capital France")

		assert.Equal(t, []string{"capital of france", "the capital", "nothing relevant"}, textsOf(out))
		assert.InDelta(t, 2+1*positionWeight, out[0].FinalScore, 1e-9)
		assert.InDelta(t, 1.0, out[0].KeywordScore, 1e-9)
		assert.InDelta(t, 0.5, out[1].KeywordScore, 1e-9)
	})

	t.Run("ties keep prior order", func(t *testing.T) {
		in := scored("alpha", "beta", "gamma")
		out := Rerank(in, "unrelated")

		assert.Equal(t, []string{"alpha", "beta", "gamma"}, textsOf(out))
		assert.InDelta(t, 3*positionWeight, out[0].FinalScore, 1e-9)
		assert.InDelta(t, 1*positionWeight, out[2].FinalScore, 1e-9)
	})

	t.Run("does not modify input", func(t *testing.T) {
		in := scored("nothing", "capital")
		before := append([]core.ScoredChunk(nil), in...)
		_ = Rerank(in, "capital")
		assert.Equal(t, before, in)
	})

	t.Run("preserves semantic score", func(t *testing.T) {
		in := scored("capital")
		in[0].SemanticScore = 0.42
		out := Rerank(in, "capital")
		assert.InDelta(t, 0.42, out[0].SemanticScore, 1e-9)
	})
}

func TestTruncate(t *testing.T) {
	t.Run("stops at first overflow", func(t *testing.T) {
		in := scored("aaaaa", "bbbbbb", "ccc")
		out := Truncate(in, 10)
		assert.Equal(t, []string{"aaaaa"}, textsOf(out))
	})

	t.Run("exact fit", func(t *testing.T) {
		in := scored("aaaaa", "bbbbb")
		assert.Len(t, Truncate(in, 10), 2)
	})

	t.Run("zero budget keeps empty texts", func(t *testing.T) {
		in := scored("", "", "x")
		assert.Len(t, Truncate(in, 0), 2)
	})

	t.Run("negative budget", func(t *testing.T) {
		assert.Empty(t, Truncate(scored("a"), -1))
	})

	t.Run("counts characters not bytes", func(t *testing.T) {
		in := scored("café", "über")
		assert.Len(t, Truncate(in, 8), 2)
	})

	t.Run("properties", func(t *testing.T) {
		in := scored(strings.Repeat("a", 700), strings.Repeat("b", 1200), strings.Repeat("c", 900), strings.Repeat("d", 500))
		for _, budget := range []int{0, 699, 700, 1900, 2000, 2800, 3000, 5000} {
			out := Truncate(in, budget)

			total := 0
			for _, c := range out {
				total += utf8.RuneCountInString(c.Chunk.Text)
			}
			assert.LessOrEqual(t, total, budget)
			assert.Equal(t, in[:len(out)], out, "output must be a prefix")
			assert.Equal(t, out, Truncate(out, budget), "idempotent")
		}
	})

	t.Run("appending to result does not clobber input", func(t *testing.T) {
		in := scored("aaaaa", "bbbbbb")
		out := Truncate(in, 5)
		_ = append(out, core.ScoredChunk{Chunk: core.Chunk{Text: "zzz"}})
		assert.Equal(t, "bbbbbb", in[1].Chunk.Text)
	})
}

func TestBuildContext(t *testing.T) {
	assert.Equal(t, "", BuildContext(nil))
	assert.Equal(t, "one", BuildContext(scored("one")))
	assert.Equal(t, "one\n\ntwo", BuildContext(scored("one", "two")))
}
