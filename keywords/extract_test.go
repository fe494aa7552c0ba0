package keywords

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "drops stopwords and short tokens",
			text: "What is the capital of France?",
			want: []string{"capital", "france"},
		},
		{
			name: "empty input",
			text: "",
			want: []string{},
		},
		{
			name: "only stopwords",
			text: "the and of",
			want: []string{},
		},
		{
			name: "duplicates collapse",
			text: "Paris paris PARIS",
			want: []string{"paris"},
		},
		{
			name: "punctuation splits tokens",
			text: "error-handling, retry_policy!",
			want: []string{"error", "handling", "policy", "retry"},
		},
		{
			name: "digits are kept",
			text: "release 2024 v12",
			want: []string{"2024", "release", "v12"},
		},
		{
			name: "two rune tokens dropped",
			text: "go to db",
			want: []string{},
		},
		{
			name: "unicode letters",
			text: "Über café",
			want: []string{"café", "über"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			assert.Equal(t, tt.want, got.Sorted())
		})
	}
}

func TestExtract_Deterministic(t *testing.T) {
	text := "Hybrid retrieval blends semantic similarity with keyword overlap"
	assert.Equal(t, Extract(text).Sorted(), Extract(text).Sorted())
}

func TestSet_Contains(t *testing.T) {
	set := Extract("capital France")
	assert.True(t, set.Contains("capital"))
	assert.False(t, set.Contains("Capital"))
	assert.Equal(t, 2, set.Len())
}

func TestCountOverlap(t *testing.T) {
	set := Extract("capital France")

	assert.Equal(t, 2, CountOverlap(set, "Paris is the capital of France."))
	assert.Equal(t, 1, CountOverlap(set, "France borders Spain."))
	assert.Equal(t, 0, CountOverlap(set, "Bananas are yellow."))
	// substring containment, not token equality
	assert.Equal(t, 1, CountOverlap(set, "capitalism"))
	assert.Equal(t, 0, CountOverlap(Set{}, "anything"))
}

func TestScore(t *testing.T) {
	set := Extract("capital France")

	assert.InDelta(t, 1.0, Score(set, "Paris is the capital of France."), 1e-9)
	assert.InDelta(t, 0.5, Score(set, "France borders Spain."), 1e-9)
	assert.InDelta(t, 0.0, Score(Set{}, "Paris"), 1e-9)
}

func TestIsStopWord(t *testing.T) {
	assert.True(t, IsStopWord("the"))
	assert.True(t, IsStopWord("wouldn't"))
	assert.False(t, IsStopWord("capital"))
	assert.Len(t, stopWords, 179)
}

func TestExtract_IdempotentOnOutput(t *testing.T) {
	first := Extract("Buddy the dog chased the Frisbee across 3 parks in 2023!")
	second := Extract(strings.Join(first.Sorted(), " "))
	assert.Equal(t, first.Sorted(), second.Sorted())
	assert.True(t, first.Contains("buddy"))
}
