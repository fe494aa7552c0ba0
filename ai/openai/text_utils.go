package openai

import "strings"

// cleanReply strips markdown fences, wrapping quotes and surrounding
// whitespace that chat models like to add around short answers.
func cleanReply(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

// isAffirmative reports whether a classifier reply starts with "yes",
// ignoring case, whitespace and leading punctuation.
func isAffirmative(reply string) bool {
	reply = strings.TrimLeft(cleanReply(reply), "*_`'\" ")
	return strings.HasPrefix(strings.ToLower(reply), "yes")
}
