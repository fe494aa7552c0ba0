package keywords

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTokenLength is the shortest token kept, in runes.
const minTokenLength = 3

// Set is an unordered collection of distinct keywords.
type Set map[string]struct{}

// Contains reports whether word is in the set.
func (s Set) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Len returns the number of keywords.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the keywords in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}

// Extract returns the keyword set of text.
func Extract(text string) Set {
	set := make(Set)
	for _, tok := range Tokenize(text) {
		if utf8.RuneCountInString(tok) < minTokenLength || IsStopWord(tok) {
			continue
		}
		set[tok] = struct{}{}
	}
	return set
}

// Tokenize lowercases text and splits it into maximal runs of letters and digits.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// CountOverlap returns how many keywords occur as substrings of text.
// text is lowercased before matching.
func CountOverlap(set Set, text string) int {
	if len(set) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	n := 0
	for w := range set {
		if strings.Contains(lower, w) {
			n++
		}
	}
	return n
}

// Score returns the fraction of keywords found in text, in [0, 1].
// An empty set scores 0.
func Score(set Set, text string) float64 {
	return float64(CountOverlap(set, text)) / float64(max(1, len(set)))
}
