package openai

import "fmt"

const intentPrompt = "You are an intent classifier. Given a user message, determine if it is an " +
	"information-seeking query that should trigger a document search in a knowledge base. " +
	"Only respond with 'YES' or 'NO'."

const rewritePrompt = "You are a text cleaner. Your job is to rewrite user queries to improve grammar, clarity, and spelling " +
	"while preserving the original meaning. Do not change the intent. " +
	"Respond with the cleaned query only, no explanation, no formatting, no prefix."

const answerPreamble = "You are a helpful assistant. Use the following context to answer the question. Be brief and polite."

// buildAnswerPrompt renders the user prompt for answer generation.
// Without context the question is sent as is.
func buildAnswerPrompt(question, contextText string) string {
	if contextText == "" {
		return question
	}
	return fmt.Sprintf("%s \n\nContext:\n%s\n\nQuestion: %s", answerPreamble, contextText, question)
}
