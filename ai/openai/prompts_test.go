package openai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildAnswerPrompt(t *testing.T) {
	t.Run("without context", func(t *testing.T) {
		assert.Equal(t, "Hello there", buildAnswerPrompt("Hello there", ""))
	})

	t.Run("with context", func(t *testing.T) {
		prompt := buildAnswerPrompt("What is the capital?", "Paris is the capital of France.")

		assert.True(t, strings.HasPrefix(prompt, answerPreamble))
		assert.Contains(t, prompt, "Context:\nParis is the capital of France.\n\n")
		assert.True(t, strings.HasSuffix(prompt, "Question: What is the capital?"))
	})
}
